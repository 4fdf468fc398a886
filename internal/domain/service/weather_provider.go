package service

import (
	"context"

	"skycast/internal/domain/entity"
)

// WeatherProvider fetches current conditions and a multi-day forecast for a
// coordinate. Implementations own their retry and timeout policy.
type WeatherProvider interface {
	Fetch(ctx context.Context, lat, lon float64) (*entity.WeatherReport, error)
}
