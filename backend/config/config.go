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
	ModeHosted = "hosted"
	ModeDemo   = "demo"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	JWTSecret  string
	ServerPort string

	// BackendMode selects the hosted database or the demo key-value store.
	BackendMode      string
	RedisURL         string
	DBConnectRetries int
	DBRetryDelay     time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// AdminPassword is given to the seeded admin account in hosted mode.
	AdminPassword string

	TaxRate     float64
	CORSOrigins string
	Env         string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "edulms"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		BackendMode:      strings.ToLower(getEnv("BACKEND_MODE", ModeHosted)),
		RedisURL:         getEnv("REDIS_URL", ""),
		DBConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 3),
		DBRetryDelay:     getEnvDuration("DB_RETRY_DELAY", 2*time.Second),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),

		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		TaxRate:     getEnvFloat("TAX_RATE", 0.05),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		Env:         getEnv("GO_ENV", "development"),
	}

	if cfg.BackendMode != ModeHosted && cfg.BackendMode != ModeDemo {
		return nil, fmt.Errorf("BACKEND_MODE must be %q or %q, got %q", ModeHosted, ModeDemo, cfg.BackendMode)
	}
	if cfg.TaxRate < 0 || cfg.TaxRate >= 1 {
		return nil, fmt.Errorf("TAX_RATE must be at least 0 and below 1, got %v", cfg.TaxRate)
	}
	return cfg, nil
}

// DSN is the Postgres connection string for the hosted backend.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c *Config) IsDemo() bool {
	return c.BackendMode == ModeDemo
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GoogleEnabled reports whether federated sign-in is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}
