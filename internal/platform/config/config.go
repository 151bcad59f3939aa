package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

const insecureDefaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     slog.Level

	StoreDriver     string
	DatabaseURL     string
	EnableDBCheck   bool
	SQLitePath      string
	StoreTimeout    time.Duration
	StoreMaxRetries uint

	CurrenciesFile string
	AutosaveCron   string

	JWTSecret string
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreDriverMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("SQLITE_PATH", "data/economy.db")
	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("STORE_MAX_RETRIES", 3)
	v.SetDefault("CURRENCIES_FILE", "")
	v.SetDefault("AUTOSAVE_CRON", "")
	v.SetDefault("JWT_SECRET", insecureDefaultJWTSecret)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetString("PORT"),
		IsProduction:   v.GetBool("IS_PRODUCTION"),
		StoreDriver:    strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		DatabaseURL:    v.GetString("PGSQL_URL"),
		EnableDBCheck:  v.GetBool("ENABLE_DB_CHECK"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		CurrenciesFile: v.GetString("CURRENCIES_FILE"),
		AutosaveCron:   strings.TrimSpace(v.GetString("AUTOSAVE_CRON")),
		JWTSecret:      v.GetString("JWT_SECRET"),
		RateLimit:      v.GetString("RATE_LIMIT"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v.GetString("LOG_LEVEL"), err)
	}

	timeoutStr := v.GetString("STORE_TIMEOUT")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT %q", timeoutStr)
	}
	cfg.StoreTimeout = timeout

	retries := v.GetInt("STORE_MAX_RETRIES")
	if retries < 1 {
		return nil, fmt.Errorf("STORE_MAX_RETRIES must be at least 1, got %d", retries)
	}
	cfg.StoreMaxRetries = uint(retries)

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("PGSQL_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
		}
	case StoreDriverSQLite:
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER=%s", StoreDriverSQLite)
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == insecureDefaultJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = insecureDefaultJWTSecret
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}

	return cfg, nil
}
