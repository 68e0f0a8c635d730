package database

import (
	"fmt"
	"net/url"
	"time"

	"firedues/internal/config"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig extracts the database settings from the application config.
func NewConfig(cfg *config.Config) *Config {
	return &Config{
		Driver:      cfg.DBDriver,
		Path:        cfg.DBPath,
		BusyTimeout: cfg.DBBusyTimeout,
		Host:        cfg.DBHost,
		Port:        cfg.DBPort,
		User:        cfg.DBUser,
		Password:    cfg.DBPassword,
		DBName:      cfg.DBName,
		SSLMode:     cfg.DBSSLMode,
	}
}

// DSN returns the connection string for the gorm driver.
// SQLite connections use WAL, a busy timeout, enforced foreign keys and
// BEGIN IMMEDIATE so concurrent writers queue instead of failing on upgrade.
func (c *Config) DSN() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return SQLiteDSN(c.Path, c.BusyTimeout)
}

// MigrateURL returns the golang-migrate database URL.
func (c *Config) MigrateURL() string {
	if c.Driver == DriverPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.DBName, c.SSLMode)
	}
	return "sqlite3://" + c.Path + "?_foreign_keys=on"
}

// SQLiteDSN builds a file DSN with the pragmas every connection needs.
func SQLiteDSN(path string, busyTimeout time.Duration) string {
	ms := busyTimeout.Milliseconds()
	if ms <= 0 {
		ms = 5000
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on&_txlock=immediate", path, ms)
}
