package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"equipment-maintenance-api/internal/lifecycle"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	// Application settings
	Port     int
	LogLevel string

	// Storage settings
	Storage StorageConfig

	// Seeding of an empty store with demo data
	Seed SeedConfig

	// Due-soon horizon in days for the maintenance dashboard
	DueSoonHorizonDays int

	// Security settings
	Security SecurityConfig

	// Performance settings
	Server ServerConfig
}

// StorageConfig selects and configures the persistence backend. The default
// is a local sqlite file; postgres is available for shared deployments.
type StorageConfig struct {
	Driver string

	// sqlite settings
	Path string

	// postgres settings
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// SeedConfig controls demo-data seeding of an empty store at startup.
type SeedConfig struct {
	Enabled bool
	Count   int
	// RandSeed of 0 means seed from the wall clock.
	RandSeed int64
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	RateLimitRPS    int
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
	AllowedOrigins  []string
	TrustedProxies  []string
}

// ServerConfig holds server performance configuration.
type ServerConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// LoadConfig loads and validates the configuration from environment variables.
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", DriverSQLite),
			Path:            getEnv("STORAGE_PATH", "hospital_maintenance.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},

		Seed: SeedConfig{
			Enabled:  getEnvAsBool("SEED_ON_START", true),
			Count:    getEnvAsInt("SEED_COUNT", 30),
			RandSeed: getEnvAsInt64("SEED_RAND_SEED", 0),
		},

		DueSoonHorizonDays: getEnvAsInt("DUE_SOON_HORIZON_DAYS", lifecycle.DefaultDueSoonHorizonDays),

		Security: SecurityConfig{
			RateLimitRPS:    getEnvAsInt("RATE_LIMIT_RPS", 100),
			RateLimitBurst:  getEnvAsInt("RATE_LIMIT_BURST", 200),
			RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
			EnableCORS:      getEnvAsBool("ENABLE_CORS", true),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			TrustedProxies:  getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		},

		Server: ServerConfig{
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1MB
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// validateConfig performs basic validation on the configuration.
func validateConfig(config *Config) error {
	var errs []string

	switch config.Storage.Driver {
	case DriverSQLite:
		if config.Storage.Path == "" {
			errs = append(errs, "storage path is required for the sqlite driver")
		}
	case DriverPostgres:
		if config.Storage.User == "" {
			errs = append(errs, "database user is required for the postgres driver")
		}
		if config.Storage.Name == "" {
			errs = append(errs, "database name is required for the postgres driver")
		}
		if config.Storage.Port < 1 || config.Storage.Port > 65535 {
			errs = append(errs, "database port must be between 1 and 65535")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown storage driver %q (expected %s or %s)",
			config.Storage.Driver, DriverSQLite, DriverPostgres))
	}

	if config.Port < 1 || config.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if config.Seed.Count < 0 {
		errs = append(errs, "seed count cannot be negative")
	}
	if config.DueSoonHorizonDays < 1 {
		errs = append(errs, "due-soon horizon must be at least 1 day")
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetPostgresDSN returns the postgres connection string.
func (c *Config) GetPostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Storage.Host, c.Storage.Port, c.Storage.User,
		c.Storage.Password, c.Storage.Name, c.Storage.SSLMode)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
