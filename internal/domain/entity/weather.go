package entity

import "time"

// CurrentConditions is the present-moment weather at the active place.
type CurrentConditions struct {
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Summary     string    `json:"summary"`
}

// DailyForecast is one day of the multi-day forecast.
type DailyForecast struct {
	Date    time.Time `json:"date"`
	MinTemp float64   `json:"minTemp"`
	MaxTemp float64   `json:"maxTemp"`
	Summary string    `json:"summary"`
}

// WeatherReport bundles current conditions with a chronological forecast.
type WeatherReport struct {
	Current  CurrentConditions `json:"current"`
	Forecast []DailyForecast   `json:"forecast"`
}
