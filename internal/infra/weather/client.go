// Package weather implements the weather provider client with per-attempt
// timeouts, retry with exponential backoff on transient failures, and a
// circuit breaker around the transport.
package weather

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"skycast/config"
	"skycast/internal/domain/apperr"
	"skycast/internal/domain/entity"
	"skycast/internal/domain/service"
	"skycast/internal/errors"

	"github.com/sony/gobreaker"
)

// Client fetches current conditions and a daily forecast from a
// One Call-style endpoint. It implements service.WeatherProvider.
type Client struct {
	baseURL     string
	apiKey      string
	units       string
	exclude     string
	maxRetries  int
	backoffBase time.Duration
	httpClient  *http.Client
	circuit     *gobreaker.CircuitBreaker
	logger      *slog.Logger
}

// New is the fx provider for the weather client.
func New(cfg *config.Config, logger *slog.Logger) service.WeatherProvider {
	return NewClient(cfg.Weather, logger)
}

// NewClient builds a Client from configuration. The per-attempt timeout lives
// on the HTTP client; total load time is bounded by timeout*(1+retries) plus
// backoff delays.
func NewClient(cfg *config.WeatherConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		units:       cfg.Units,
		exclude:     cfg.Exclude,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "weather",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		logger: logger,
	}
}

var _ service.WeatherProvider = (*Client)(nil)

// oneCallPayload mirrors the provider's wire format.
type oneCallPayload struct {
	Current struct {
		Temp      float64 `json:"temp"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		Sunrise   int64   `json:"sunrise"`
		Sunset    int64   `json:"sunset"`
		Weather   []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temp"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"daily"`
}

// Fetch retrieves the weather report for a coordinate. Transport failures and
// 5xx responses are retried up to maxRetries extra attempts with delay
// backoffBase * 2^attempt; 4xx responses and decode failures surface
// immediately.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (*entity.WeatherReport, error) {
	reqURL, err := c.buildURL(lat, lon)
	if err != nil {
		return nil, apperr.InvalidURL(err)
	}

	var lastErr error
	attempts := c.maxRetries + 1

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, apperr.Network(ctx.Err())
		}

		report, attemptErr := c.fetchOnce(ctx, reqURL)
		if attemptErr == nil {
			return report, nil
		}

		if errors.Is(attemptErr, gobreaker.ErrOpenState) || errors.Is(attemptErr, gobreaker.ErrTooManyRequests) {
			return nil, apperr.Network(attemptErr)
		}

		lastErr = attemptErr
		if !apperr.IsRetryable(attemptErr) {
			return nil, attemptErr
		}
		if attempt == attempts-1 {
			break
		}

		delay := c.backoffBase << uint(attempt)
		if c.logger != nil {
			c.logger.Warn("weather fetch attempt failed, backing off",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", attemptErr.Error()),
			)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, apperr.Network(ctx.Err())
		case <-timer.C:
		}
	}

	return nil, errors.Wrapf(lastErr, "weather fetch exhausted after %d attempts", attempts)
}

func (c *Client) buildURL(lat, lon float64) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("units", c.units)
	if c.exclude != "" {
		values.Set("exclude", c.exclude)
	}
	if c.apiKey != "" {
		values.Set("appid", c.apiKey)
	}
	base.RawQuery = values.Encode()

	return base.String(), nil
}

// fetchOnce performs a single attempt through the circuit breaker and
// classifies the outcome. Decoding happens outside the breaker so malformed
// payloads do not count as transport failures.
func (c *Client) fetchOnce(ctx context.Context, reqURL string) (*entity.WeatherReport, error) {
	result, err := c.circuit.Execute(func() (any, error) {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if reqErr != nil {
			return nil, apperr.InvalidURL(reqErr)
		}

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, apperr.Network(doErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()

			return nil, apperr.InvalidResponse(resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, apperr.MissingData("unexpected circuit breaker result")
	}
	defer resp.Body.Close()

	var payload oneCallPayload
	if decErr := json.NewDecoder(resp.Body).Decode(&payload); decErr != nil {
		return nil, apperr.Decoding(decErr)
	}

	return toReport(payload), nil
}

func toReport(payload oneCallPayload) *entity.WeatherReport {
	report := &entity.WeatherReport{
		Current: entity.CurrentConditions{
			Temperature: payload.Current.Temp,
			Pressure:    payload.Current.Pressure,
			Humidity:    payload.Current.Humidity,
			WindSpeed:   payload.Current.WindSpeed,
			Sunrise:     time.Unix(payload.Current.Sunrise, 0).UTC(),
			Sunset:      time.Unix(payload.Current.Sunset, 0).UTC(),
			Summary:     summaryOf(payload.Current.Weather),
		},
	}

	report.Forecast = make([]entity.DailyForecast, 0, len(payload.Daily))
	for _, day := range payload.Daily {
		report.Forecast = append(report.Forecast, entity.DailyForecast{
			Date:    time.Unix(day.Dt, 0).UTC(),
			MinTemp: day.Temp.Min,
			MaxTemp: day.Temp.Max,
			Summary: summaryOf(day.Weather),
		})
	}

	return report
}

func summaryOf(weather []struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}) string {
	if len(weather) == 0 {
		return ""
	}
	if weather[0].Description != "" {
		return weather[0].Description
	}

	return weather[0].Main
}
