// Package config loads the service configuration from YAML files with
// environment variable overrides, using koanf.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres"`

	// Weather configures the weather provider client.
	Weather *WeatherConfig `json:"weather" yaml:"weather"`

	// Geocoding configures the forward-geocoding provider client.
	Geocoding *GeocodingConfig `json:"geocoding" yaml:"geocoding"`

	// POI configures nearby point-of-interest discovery.
	POI *POIConfig `json:"poi" yaml:"poi"`

	// Snapshot configures the flat bootstrap snapshot store.
	Snapshot *SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// Dashboard configures orchestration defaults such as the fallback location.
	Dashboard *DashboardConfig `json:"dashboard" yaml:"dashboard"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PostgresConfig holds the connection settings for the structured store.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	UserName string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbname" yaml:"dbname"`
	SSLMode  string `json:"sslmode" yaml:"sslmode"`
	TimeZone string `json:"timezone" yaml:"timezone"`
}

// WeatherConfig holds weather provider settings.
type WeatherConfig struct {
	BaseURL     string        `json:"baseUrl" yaml:"baseUrl"`
	APIKey      string        `json:"apiKey" yaml:"apiKey"`
	Units       string        `json:"units" yaml:"units"`
	Exclude     string        `json:"exclude" yaml:"exclude"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	BackoffBase time.Duration `json:"backoffBase" yaml:"backoffBase"`
}

// GeocodingConfig holds geocoding provider settings.
type GeocodingConfig struct {
	BaseURL   string        `json:"baseUrl" yaml:"baseUrl"`
	UserAgent string        `json:"userAgent" yaml:"userAgent"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
}

// POIConfig holds point-of-interest discovery settings.
type POIConfig struct {
	BaseURL      string        `json:"baseUrl" yaml:"baseUrl"`
	UserAgent    string        `json:"userAgent" yaml:"userAgent"`
	Category     string        `json:"category" yaml:"category"`
	RadiusMeters float64       `json:"radiusMeters" yaml:"radiusMeters"`
	Limit        int           `json:"limit" yaml:"limit"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
}

// SnapshotConfig holds flat snapshot store settings.
type SnapshotConfig struct {
	Dir string `json:"dir" yaml:"dir"`
	Key string `json:"key" yaml:"key"`
}

// DashboardConfig holds orchestration defaults.
type DashboardConfig struct {
	// Fallback location used when a search cannot be resolved. Loading it
	// must never depend on the geocoding provider.
	DefaultName      string  `json:"defaultName" yaml:"defaultName"`
	DefaultLatitude  float64 `json:"defaultLatitude" yaml:"defaultLatitude"`
	DefaultLongitude float64 `json:"defaultLongitude" yaml:"defaultLongitude"`

	// DefaultSpan is the latitude/longitude delta of the map focus region.
	DefaultSpan float64 `json:"defaultSpan" yaml:"defaultSpan"`
}

// LoadWithEnv loads .yaml files through koanf with environment overrides.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for the config file.
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	// Environment variables override file values, e.g. WEATHER_APIKEY -> weather.apikey.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides.
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

// ApplyDefaults fills in any section left empty by the config file so the
// orchestration layer never has to nil-check configuration.
func (cfg *Config) ApplyDefaults() {
	if cfg.Weather == nil {
		cfg.Weather = &WeatherConfig{}
	}
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = "https://api.openweathermap.org/data/3.0/onecall"
	}
	if cfg.Weather.Units == "" {
		cfg.Weather.Units = "metric"
	}
	if cfg.Weather.MaxRetries == 0 {
		cfg.Weather.MaxRetries = 2
	}
	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = 15 * time.Second
	}
	if cfg.Weather.BackoffBase == 0 {
		cfg.Weather.BackoffBase = 500 * time.Millisecond
	}

	if cfg.Geocoding == nil {
		cfg.Geocoding = &GeocodingConfig{}
	}
	if cfg.Geocoding.BaseURL == "" {
		cfg.Geocoding.BaseURL = "https://nominatim.openstreetmap.org/search"
	}
	if cfg.Geocoding.UserAgent == "" {
		cfg.Geocoding.UserAgent = "skycast/1.0"
	}
	if cfg.Geocoding.Timeout == 0 {
		cfg.Geocoding.Timeout = 10 * time.Second
	}

	if cfg.POI == nil {
		cfg.POI = &POIConfig{}
	}
	if cfg.POI.BaseURL == "" {
		cfg.POI.BaseURL = "https://nominatim.openstreetmap.org/search"
	}
	if cfg.POI.UserAgent == "" {
		cfg.POI.UserAgent = "skycast/1.0"
	}
	if cfg.POI.Category == "" {
		cfg.POI.Category = "tourist attraction"
	}
	if cfg.POI.RadiusMeters == 0 {
		cfg.POI.RadiusMeters = 2000
	}
	if cfg.POI.Limit == 0 {
		cfg.POI.Limit = 5
	}
	if cfg.POI.Timeout == 0 {
		cfg.POI.Timeout = 10 * time.Second
	}

	if cfg.Snapshot == nil {
		cfg.Snapshot = &SnapshotConfig{}
	}
	if cfg.Snapshot.Dir == "" {
		cfg.Snapshot.Dir = "./data/snapshot"
	}
	if cfg.Snapshot.Key == "" {
		cfg.Snapshot.Key = "visited_places.json"
	}

	if cfg.Dashboard == nil {
		cfg.Dashboard = &DashboardConfig{}
	}
	if cfg.Dashboard.DefaultName == "" {
		cfg.Dashboard.DefaultName = "London"
		cfg.Dashboard.DefaultLatitude = 51.5074
		cfg.Dashboard.DefaultLongitude = -0.1278
	}
	if cfg.Dashboard.DefaultSpan == 0 {
		cfg.Dashboard.DefaultSpan = 0.05
	}
}
