package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	AppEnv       string `mapstructure:"APP_ENV"`
	ClientOrigin string `mapstructure:"CLIENT_ORIGIN"`

	Geocode   GeocodeConfig   `mapstructure:",squash"`
	Routing   RoutingConfig   `mapstructure:",squash"`
	Fuel      FuelConfig      `mapstructure:",squash"`
	Relay     RelayConfig     `mapstructure:",squash"`
	Providers ProvidersConfig `mapstructure:",squash"`
}

type GeocodeConfig struct {
	Provider    string        `mapstructure:"GEOCODE_PROVIDER"`
	BaseURL     string        `mapstructure:"GEOCODE_BASE_URL"`
	Country     string        `mapstructure:"GEOCODE_COUNTRY"`
	UserAgent   string        `mapstructure:"GEOCODE_USER_AGENT"`
	MinInterval time.Duration `mapstructure:"GEOCODE_MIN_INTERVAL"`
	CacheTTL    time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`
	MaxRetries  int           `mapstructure:"GEOCODE_MAX_RETRIES"`
	RetryDelay  time.Duration `mapstructure:"GEOCODE_RETRY_DELAY"`
}

type RoutingConfig struct {
	Provider         string        `mapstructure:"ROUTE_PROVIDER"`
	BaseURL          string        `mapstructure:"ROUTE_BASE_URL"`
	ElevationBaseURL string        `mapstructure:"ELEVATION_BASE_URL"`
	MaxRetries       int           `mapstructure:"ROUTE_MAX_RETRIES"`
	RetryDelay       time.Duration `mapstructure:"ROUTE_RETRY_DELAY"`
	// RouteAwareMPG is the default for plans that do not choose explicitly.
	RouteAwareMPG bool `mapstructure:"ROUTE_AWARE_MPG"`
}

type FuelConfig struct {
	EIAAPIKey  string        `mapstructure:"EIA_API_KEY"`
	EIABaseURL string        `mapstructure:"EIA_BASE_URL"`
	PriceTTL   time.Duration `mapstructure:"FUEL_PRICE_TTL"`
}

// RelayConfig routes outbound provider calls through a CORS relay when set.
type RelayConfig struct {
	URL string `mapstructure:"CORS_RELAY_URL"`
	Key string `mapstructure:"CORS_RELAY_KEY"`
}

type ProvidersConfig struct {
	GoogleMapsAPIKey string        `mapstructure:"GOOGLE_MAPS_API_KEY"`
	Timeout          time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVER_PORT":          "8080",
	"APP_ENV":              "development",
	"CLIENT_ORIGIN":        "*",
	"GEOCODE_PROVIDER":     "nominatim",
	"GEOCODE_BASE_URL":     "https://nominatim.openstreetmap.org",
	"GEOCODE_COUNTRY":      "us",
	"GEOCODE_USER_AGENT":   "RVR-App/1.0",
	"GEOCODE_MIN_INTERVAL": "1s",
	"GEOCODE_CACHE_TTL":    "24h",
	"GEOCODE_MAX_RETRIES":  3,
	"GEOCODE_RETRY_DELAY":  "1s",
	"ROUTE_PROVIDER":       "osrm",
	"ROUTE_BASE_URL":       "https://router.project-osrm.org",
	"ROUTE_MAX_RETRIES":    2,
	"ROUTE_RETRY_DELAY":    "1s",
	"ELEVATION_BASE_URL":   "https://api.open-elevation.com",
	"ROUTE_AWARE_MPG":      false,
	"EIA_API_KEY":          "",
	"EIA_BASE_URL":         "https://api.eia.gov/v2",
	"FUEL_PRICE_TTL":       "6h",
	"CORS_RELAY_URL":       "",
	"CORS_RELAY_KEY":       "",
	"GOOGLE_MAPS_API_KEY":  "",
	"PROVIDER_TIMEOUT":     "10s",
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env") // Name of config file (without extension)
	v.SetConfigType("env")

	// Every key needs a default so that Unmarshal sees environment-only values.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv() // Read in environment variables that match

	err := v.ReadInConfig() // Find and read the config file
	if err != nil {
		// Handle errors reading the config file, but allow it if it's just "not found"
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Println("No .env file found.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	cfg.Geocode.Provider = strings.ToLower(strings.TrimSpace(cfg.Geocode.Provider))
	cfg.Routing.Provider = strings.ToLower(strings.TrimSpace(cfg.Routing.Provider))
	if !strings.HasPrefix(cfg.ServerPort, ":") {
		cfg.ServerPort = ":" + cfg.ServerPort
	}

	return &cfg, nil
}
