package database

import (
	"fmt"

	"kasa/internal/config"
)

// Supported dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// Config holds database configuration
type Config struct {
	Dialect  string
	Path     string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig derives the database configuration from the application config.
func NewConfig(app *config.Config) *Config {
	dialect := DialectSQLite
	if app.StoreDriver == config.StorePostgres {
		dialect = DialectPostgres
	}
	return &Config{
		Dialect:  dialect,
		Path:     app.StorePath,
		Host:     app.DBHost,
		Port:     app.DBPort,
		User:     app.DBUser,
		Password: app.DBPassword,
		DBName:   app.DBName,
		SSLMode:  app.DBSSLMode,
	}
}

// DSN returns the connection string for the configured dialect.
func (c *Config) DSN() string {
	if c.Dialect == DialectPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
	}
	return c.Path
}

// MigrationURL returns the URL form golang-migrate expects for the dialect.
func (c *Config) MigrationURL() string {
	if c.Dialect == DialectPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	}
	return "sqlite3://" + c.Path
}
