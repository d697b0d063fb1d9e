package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "openmeteo"

	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreMongo  = "mongo"
)

type Config struct {
	Server struct {
		Port           string
		ReadTimeout    time.Duration
		WriteTimeout   time.Duration
		LogLevel       string
		AllowedOrigins string
	}

	Weather struct {
		Provider          string
		OpenWeatherAPIKey string
		OpenWeatherURL    string
		OpenMeteoURL      string
		Timeout           time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Store struct {
		Driver        string
		BadgerPath    string
		MongoURI      string
		MongoDatabase string
	}

	Scheduler struct {
		MaintenanceSchedule string
	}

	Kafka struct {
		Brokers       []string
		ActivityTopic string
	}

	Recommendation struct {
		DefaultLimit          int
		SimilarLimit          int
		BackfillExcludeRecent bool
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("FIBER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("FIBER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("FIBER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.Server.AllowedOrigins = getEnv("CORS_ALLOW_ORIGINS", "*")

	// Weather provider configuration
	cfg.Weather.OpenWeatherAPIKey = getEnv("OPENWEATHER_API_KEY", "")
	defaultProvider := ProviderOpenMeteo
	if cfg.Weather.OpenWeatherAPIKey != "" {
		defaultProvider = ProviderOpenWeather
	}
	cfg.Weather.Provider = strings.ToLower(getEnv("WEATHER_PROVIDER", defaultProvider))
	cfg.Weather.OpenWeatherURL = getEnv("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5")
	cfg.Weather.OpenMeteoURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.Weather.Timeout = parseDuration(getEnv("WEATHER_TIMEOUT", "5s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Store configuration
	cfg.Store.Driver = strings.ToLower(getEnv("STORE_DRIVER", StoreMemory))
	cfg.Store.BadgerPath = getEnv("BADGER_PATH", "./data")
	cfg.Store.MongoURI = getEnv("MONGODB_URI", "")
	cfg.Store.MongoDatabase = getEnv("MONGODB_DATABASE", "storefront")

	cfg.Scheduler.MaintenanceSchedule = getEnv("STORE_MAINTENANCE_SCHEDULE", "@every 30m")

	// Activity stream, disabled without brokers
	cfg.Kafka.Brokers = parseList(getEnv("KAFKA_BROKERS", ""))
	cfg.Kafka.ActivityTopic = getEnv("KAFKA_ACTIVITY_TOPIC", "storefront-activity")

	cfg.Recommendation.DefaultLimit = parseInt(getEnv("RECOMMENDATION_DEFAULT_LIMIT", "8"))
	cfg.Recommendation.SimilarLimit = parseInt(getEnv("SIMILAR_DEFAULT_LIMIT", "4"))
	cfg.Recommendation.BackfillExcludeRecent = parseBool(getEnv("RECOMMENDATION_BACKFILL_EXCLUDE_RECENT", "false"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether activity events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

func (c *Config) validate() error {
	switch c.Weather.Provider {
	case ProviderOpenWeather:
		if c.Weather.OpenWeatherAPIKey == "" {
			return fmt.Errorf("OPENWEATHER_API_KEY is required for provider %q", ProviderOpenWeather)
		}
	case ProviderOpenMeteo:
	default:
		return fmt.Errorf("unknown WEATHER_PROVIDER %q", c.Weather.Provider)
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreBadger:
		if c.Store.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for store driver %q", StoreBadger)
		}
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for store driver %q", StoreMongo)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("WEATHER_TIMEOUT must be positive")
	}
	if c.Recommendation.DefaultLimit <= 0 || c.Recommendation.SimilarLimit <= 0 {
		return fmt.Errorf("recommendation limits must be positive")
	}
	if _, err := cron.ParseStandard(c.Scheduler.MaintenanceSchedule); err != nil {
		return fmt.Errorf("invalid STORE_MAINTENANCE_SCHEDULE: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		zap.L().Warn("Failed to parse bool", zap.String("value", value), zap.Error(err))
		return false
	}
	return b
}

func parseList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
