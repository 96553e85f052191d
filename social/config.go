// social/config.go
package social

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the complete application configuration. The admin credentials
// must come from the environment; there is no built-in default password.
type Config struct {
	Addr             string
	DatabaseURL      string
	AdminUsername    string
	AdminPassword    string
	AdminDisplayName string
	SessionLifetime  time.Duration
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:             getEnvOrDefault("EDIRT_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		AdminUsername:    getEnvOrDefault("EDIRT_ADMIN_USERNAME", "admin"),
		AdminPassword:    os.Getenv("EDIRT_ADMIN_PASSWORD"),
		AdminDisplayName: os.Getenv("EDIRT_ADMIN_DISPLAY_NAME"),
		SessionLifetime:  24 * time.Hour,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("EDIRT_ADMIN_PASSWORD environment variable is required")
	}

	if v := os.Getenv("EDIRT_SESSION_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid EDIRT_SESSION_LIFETIME: %w", err)
		}
		cfg.SessionLifetime = d
	}

	return cfg, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
