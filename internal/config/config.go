package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the address validation engine.
// It includes the environment, server ports, geocoding provider settings,
// zone service settings, and database configuration.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - Port: The port for the monitoring server.
// - APIPort: The port for the HTTP API server.
// - ProviderType: The type of geocoding provider to use (google, nominatim).
// - APIKey: The API key for the geocoding provider (required for Google).
// - ZoneServiceURL: The base URL of the delivery zone service.
// - ZoneAPIKey: The resolved credential passed through to the zone service.
// - ProviderTimeout: The timeout applied to provider and zone service calls.
// - Debounce: The idle window before a suggestion search is issued.
// - SettleDelay: The delay between suggestion selection and zone validation.
// - SuggestionLimit: The maximum number of suggestions returned per search.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env             string         `yaml:"env"`
	Port            int            `yaml:"monitor.port"`
	APIPort         int            `yaml:"api.port"`
	ProviderType    string         `yaml:"provider.type"`
	APIKey          string         `yaml:"provider.api_key"`
	ZoneServiceURL  string         `yaml:"zone.url"`
	ZoneAPIKey      string         `yaml:"zone.api_key"`
	ProviderTimeout time.Duration  `yaml:"provider.timeout"`
	Debounce        time.Duration  `yaml:"search.debounce"`
	SettleDelay     time.Duration  `yaml:"validation.settle_delay"`
	SuggestionLimit int            `yaml:"search.limit"`
	Database        PostgresConfig `yaml:"postgres"`
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from environment variables and returns a Config struct.
func MustLoad() *Config {
	_ = godotenv.Load()

	monitorPort, err := strconv.Atoi(setDefaultEnv("HERMES_MONITOR_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	apiPort, err := strconv.Atoi(setDefaultEnv("HERMES_API_PORT", "8081"))
	if err != nil {
		panic("failed to parse port for API server from configuration")
	}

	providerTimeout, err := time.ParseDuration(setDefaultEnv("HERMES_PROVIDER_TIMEOUT", "10s"))
	if err != nil {
		panic("failed to parse provider timeout from configuration")
	}

	debounce, err := time.ParseDuration(setDefaultEnv("HERMES_SEARCH_DEBOUNCE", "250ms"))
	if err != nil {
		panic("failed to parse search debounce from configuration")
	}

	settleDelay, err := time.ParseDuration(setDefaultEnv("HERMES_SETTLE_DELAY", "300ms"))
	if err != nil {
		panic("failed to parse settle delay from configuration")
	}

	suggestionLimit, err := strconv.Atoi(setDefaultEnv("HERMES_SUGGESTION_LIMIT", "5"))
	if err != nil {
		panic("failed to parse suggestion limit from configuration, must be an integer type")
	}

	return &Config{
		Env:             setDefaultEnv("HERMES_ENV", "production"),
		Port:            monitorPort,
		APIPort:         apiPort,
		ProviderType:    setDefaultEnv("HERMES_PROVIDER_TYPE", "google"),
		APIKey:          os.Getenv("HERMES_PROVIDER_KEY"),
		ZoneServiceURL:  os.Getenv("HERMES_ZONE_URL"),
		ZoneAPIKey:      os.Getenv("HERMES_ZONE_KEY"),
		ProviderTimeout: providerTimeout,
		Debounce:        debounce,
		SettleDelay:     settleDelay,
		SuggestionLimit: suggestionLimit,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
