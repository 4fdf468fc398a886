package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_FillsEverySection(t *testing.T) {
	cfg := &Config{}

	cfg.ApplyDefaults()

	require.NotNil(t, cfg.Weather)
	assert.Equal(t, 2, cfg.Weather.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Weather.BackoffBase)
	assert.Equal(t, "metric", cfg.Weather.Units)

	require.NotNil(t, cfg.POI)
	assert.Equal(t, 5, cfg.POI.Limit)
	assert.InDelta(t, 2000, cfg.POI.RadiusMeters, 0.001)

	require.NotNil(t, cfg.Dashboard)
	assert.Equal(t, "London", cfg.Dashboard.DefaultName)
	assert.InDelta(t, 51.5074, cfg.Dashboard.DefaultLatitude, 0.0001)
	assert.InDelta(t, 0.05, cfg.Dashboard.DefaultSpan, 0.0001)
}

func TestApplyDefaults_KeepsConfiguredValues(t *testing.T) {
	cfg := &Config{
		Weather:   &WeatherConfig{MaxRetries: 4, Units: "imperial"},
		Dashboard: &DashboardConfig{DefaultName: "Oslo", DefaultLatitude: 59.9139, DefaultLongitude: 10.7522},
	}

	cfg.ApplyDefaults()

	assert.Equal(t, 4, cfg.Weather.MaxRetries)
	assert.Equal(t, "imperial", cfg.Weather.Units)
	assert.Equal(t, "Oslo", cfg.Dashboard.DefaultName)
}

func TestLoadWithEnv_FileValuesAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
http:
  port: 8080
weather:
  apikey: from-file
  maxretries: 3
  timeout: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Chdir(dir)
	t.Setenv("WEATHER_APIKEY", "from-env")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "from-env", cfg.Weather.APIKey, "environment overrides the file")
	assert.Equal(t, 3, cfg.Weather.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.Weather.Timeout)
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")

	assert.Error(t, err)
}
