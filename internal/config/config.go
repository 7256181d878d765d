package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	Port               string
	DBDriver           string
	DBPath             string
	DatabaseURL        string
	SeedPath           string
	RedisURL           string
	CacheTTL           time.Duration
	LogLevel           string
	LogFormat          string
	RateLimitRPS       float64
	RateLimitBurst     int
	DefaultStrategy    string
	CompareParallelism int
	ORSAPIKey          string
	ORSBaseURL         string
	ORSProfile         string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "data/app.db")
	v.SetDefault("SEED_PATH", "data/seeds/instances.json")
	v.SetDefault("CACHE_TTL", "1h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("RATE_LIMIT_RPS", 20.0)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("DEFAULT_STRATEGY", "savings-merge")
	v.SetDefault("COMPARE_PARALLELISM", 2)
	v.SetDefault("ORS_BASE_URL", "https://api.openrouteservice.org")
	v.SetDefault("ORS_PROFILE", "driving-car")
}

// New returns a viper instance with defaults, environment binding and an optional
// config.yaml from the working directory or ./data.
func New() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./data/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	return v, nil
}

// Load resolves and validates the full configuration.
func Load() (Config, error) {
	v, err := New()
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:               v.GetString("PORT"),
		DBDriver:           strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DBPath:             v.GetString("DB_PATH"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		SeedPath:           v.GetString("SEED_PATH"),
		RedisURL:           v.GetString("REDIS_URL"),
		CacheTTL:           v.GetDuration("CACHE_TTL"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		RateLimitRPS:       v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		DefaultStrategy:    v.GetString("DEFAULT_STRATEGY"),
		CompareParallelism: v.GetInt("COMPARE_PARALLELISM"),
		ORSAPIKey:          v.GetString("ORS_API_KEY"),
		ORSBaseURL:         v.GetString("ORS_BASE_URL"),
		ORSProfile:         v.GetString("ORS_PROFILE"),
	}

	switch cfg.DBDriver {
	case "sqlite":
		if strings.TrimSpace(cfg.DBPath) == "" {
			return Config{}, errors.New("config: DB_PATH is required for sqlite")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return Config{}, errors.New("config: DATABASE_URL is required for postgres")
		}
	default:
		return Config{}, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.CompareParallelism < 1 {
		return Config{}, fmt.Errorf("config: COMPARE_PARALLELISM must be at least 1, got %d", cfg.CompareParallelism)
	}
	if cfg.CacheTTL < 0 {
		return Config{}, fmt.Errorf("config: CACHE_TTL must not be negative, got %s", cfg.CacheTTL)
	}

	return cfg, nil
}

// Get returns the string value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	v := viper.New()
	v.AutomaticEnv()
	if s := strings.TrimSpace(v.GetString(key)); s != "" {
		return s
	}
	return fallback
}
