package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DBDriver      string
	DBPath        string
	DBBusyTimeout time.Duration
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Jobs
	JobsAPIKey        string
	RolloverSchedule  string
	RolloverOnStartup bool

	CORSOrigins []string
}

var appConfig *Config

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	v := viper.New()
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "firedues.db")
	v.SetDefault("DB_BUSY_TIMEOUT_MS", 5000)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "firedues")
	v.SetDefault("DB_PASSWORD", "firedues")
	v.SetDefault("DB_NAME", "firedues")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", "fallback-secret-key-for-dev-only")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("JOBS_API_KEY", "")
	v.SetDefault("ROLLOVER_SCHEDULE", "@every 24h")
	v.SetDefault("ROLLOVER_ON_STARTUP", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.AutomaticEnv()

	cfg := &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetString("PORT"),

		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DBPath:        v.GetString("DB_PATH"),
		DBBusyTimeout: time.Duration(v.GetInt("DB_BUSY_TIMEOUT_MS")) * time.Millisecond,
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASSWORD"),
		DBName:        v.GetString("DB_NAME"),
		DBSSLMode:     v.GetString("DB_SSLMODE"),

		JWTSecret: v.GetString("JWT_SECRET"),

		JobsAPIKey:        v.GetString("JOBS_API_KEY"),
		RolloverSchedule:  v.GetString("ROLLOVER_SCHEDULE"),
		RolloverOnStartup: v.GetBool("ROLLOVER_ON_STARTUP"),

		CORSOrigins: parseOrigins(v.GetString("CORS_ORIGINS")),
	}

	expStr := v.GetString("JWT_EXPIRES_IN")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	cfg.JWTExpirationDur = expDur

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	appConfig = cfg
	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
		if c.DBBusyTimeout < 0 {
			return fmt.Errorf("DB_BUSY_TIMEOUT_MS must be non-negative")
		}
	case "postgres":
		if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required for the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}

	if c.Env == "production" && c.JWTSecret == "fallback-secret-key-for-dev-only" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	if _, err := cron.ParseStandard(c.RolloverSchedule); err != nil {
		return fmt.Errorf("ROLLOVER_SCHEDULE is not a valid cron spec: %w", err)
	}

	return nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
