package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"kasa/internal/logger"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	// Runtime
	Env  string
	Port string

	// Persistence. StorePath is the database file for sqlite and the
	// snapshot directory for the file store.
	StoreDriver string
	StorePath   string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Engine
	RecomputeDebounce time.Duration
	SeedDefaults      bool

	// HTTP
	CORSOrigins []string
}

// Load loads configuration from environment variables, reading .env first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Get().Debugw(".env file not loaded", "error", err)
	}

	cfg := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		StoreDriver: getEnv("STORE_DRIVER", StoreSQLite),
		StorePath:   getEnv("STORE_PATH", "./data/kasa.db"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "kasa"),
		DBPassword:  getEnv("DB_PASSWORD", "kasa"),
		DBName:      getEnv("DB_NAME", "kasa"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		RecomputeDebounce: getEnvDuration("RECOMPUTE_DEBOUNCE", 300*time.Millisecond),
		SeedDefaults:      getEnvBool("SEED_DEFAULTS", true),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreDriver {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if c.StorePath == "" {
			problems = append(problems, fmt.Sprintf("STORE_PATH cannot be empty when using the %s store", c.StoreDriver))
		}
	case StorePostgres:
		if c.DBHost == "" || c.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required when using the postgres store")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store driver '%s': must be one of memory, file, sqlite, postgres", c.StoreDriver))
	}

	if c.RecomputeDebounce < 0 {
		problems = append(problems, fmt.Sprintf("invalid recompute debounce %v: must not be negative", c.RecomputeDebounce))
	} else if c.RecomputeDebounce > 10*time.Second {
		problems = append(problems, fmt.Sprintf("invalid recompute debounce %v: must be at most 10s", c.RecomputeDebounce))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logger.Get().Warnw("invalid duration, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
