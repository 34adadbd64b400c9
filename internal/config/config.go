package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	Addr              string
	DBDriver          string
	DBPath            string
	LogLevel          string
	JWTSecret         string
	JWTTTL            time.Duration
	ReconcileInterval time.Duration
	WorkerCount       int
	WorkerQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBDriver:          envOr("DB_DRIVER", DriverSQLite),
		DBPath:            envOr("DB_PATH", "file:heartgame.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		JWTSecret:         envOr("JWT_SECRET", "change-me-in-production"),
		JWTTTL:            time.Duration(envIntOr("JWT_TTL_HOURS", 72)) * time.Hour,
		ReconcileInterval: time.Duration(envIntOr("RECONCILE_INTERVAL_MINUTES", 0)) * time.Minute,
		WorkerCount:       envIntOr("WORKER_COUNT", 1),
		WorkerQueueSize:   envIntOr("WORKER_QUEUE_SIZE", 16),
	}
}

// Validate returns the first configuration problem found.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBDriver != DriverSQLite && c.DBDriver != DriverPostgres {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive")
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL_MINUTES cannot be negative")
	}
	if c.WorkerCount < 1 || c.WorkerCount > 16 {
		return fmt.Errorf("WORKER_COUNT must be between 1 and 16")
	}
	if c.WorkerQueueSize < 1 {
		return fmt.Errorf("WORKER_QUEUE_SIZE must be at least 1")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
