package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"skycast/config"
	"skycast/internal/domain/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"current": {
		"temp": 18.5,
		"pressure": 1012,
		"humidity": 63,
		"wind_speed": 4.2,
		"sunrise": 1700202000,
		"sunset": 1700235600,
		"weather": [{"main": "Clouds", "description": "scattered clouds"}]
	},
	"daily": [
		{"dt": 1700216400, "temp": {"min": 11.0, "max": 19.2}, "weather": [{"main": "Clouds", "description": "scattered clouds"}]},
		{"dt": 1700302800, "temp": {"min": 9.4, "max": 17.8}, "weather": [{"main": "Rain", "description": "light rain"}]}
	]
}`

func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()

	return NewClient(&config.WeatherConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Units:       "metric",
		MaxRetries:  maxRetries,
		Timeout:     2 * time.Second,
		BackoffBase: time.Millisecond,
	}, nil)
}

func TestFetch_Success(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(validPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	report, err := client.Fetch(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, int32(1), attempts.Load())

	assert.InDelta(t, 18.5, report.Current.Temperature, 0.001)
	assert.Equal(t, "scattered clouds", report.Current.Summary)
	require.Len(t, report.Forecast, 2)
	assert.InDelta(t, 11.0, report.Forecast[0].MinTemp, 0.001)
	assert.InDelta(t, 19.2, report.Forecast[0].MaxTemp, 0.001)
	assert.True(t, report.Forecast[0].Date.Before(report.Forecast[1].Date))
}

func TestFetch_RetriesServerErrorsThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}
		w.Write([]byte(validPayload))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	report, err := client.Fetch(context.Background(), 51.5074, -0.1278)
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.NotEmpty(t, report.Forecast)
}

func TestFetch_ExhaustsRetriesOnPersistent503(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	_, err := client.Fetch(context.Background(), 51.5074, -0.1278)
	require.Error(t, err)
	assert.Equal(t, int32(3), attempts.Load())

	assert.Equal(t, apperr.KindInvalidResponse, apperr.KindOf(err))
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.StatusCode())
}

func TestFetch_NoRetryOnNotFound(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	_, err := client.Fetch(context.Background(), 51.5074, -0.1278)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindInvalidResponse, appErr.Kind())
	assert.Equal(t, http.StatusNotFound, appErr.StatusCode())
}

func TestFetch_NoRetryOnMalformedPayload(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.Write([]byte(`{"current": not json`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	_, err := client.Fetch(context.Background(), 51.5074, -0.1278)
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
	assert.Equal(t, apperr.KindDecoding, apperr.KindOf(err))
}

func TestFetch_TransportFailureIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	server.Close() // refuse all connections

	client := newTestClient(t, server.URL, 1)

	_, err := client.Fetch(context.Background(), 51.5074, -0.1278)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
}

func TestFetch_InvalidBaseURL(t *testing.T) {
	client := newTestClient(t, "://not-a-url", 0)

	_, err := client.Fetch(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidURL, apperr.KindOf(err))
}
