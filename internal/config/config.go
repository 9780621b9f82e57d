package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSourceLocation is the published order export the dashboard was built around.
const DefaultSourceLocation = "https://raw.githubusercontent.com/Kanaieu/analisis-ecommerce/main/dashboard/all_data.csv"

// Config holds the configuration settings for the dashboard.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port of the dashboard HTTP server.
// - Granularity: Whether rankings use raw order rows or per-city aggregates.
// - Source: Where the order table is loaded from on every render pass.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env         string         `yaml:"env"`         // Env is the current environment: local, dev, prod.
	Port        int            `yaml:"port"`        // Port is the dashboard server port.
	Granularity string         `yaml:"granularity"` // Granularity is "order" or "city".
	Source      SourceConfig   `yaml:"source"`      // Source describes the order table provider.
	Database    PostgresConfig `yaml:"postgres"`    // Database holds the postgres database configuration
}

// SourceConfig describes the provider of the order table.
type SourceConfig struct {
	Type      string        `yaml:"type"`       // Type is one of http, file, xlsx, postgres.
	Location  string        `yaml:"location"`   // Location is a URL or a file path.
	Sheet     string        `yaml:"sheet"`      // Sheet is the workbook sheet for xlsx sources.
	Timeout   time.Duration `yaml:"timeout"`    // Timeout bounds a single remote fetch.
	RateLimit int           `yaml:"rate_limit"` // RateLimit is the maximum remote fetches per second.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// MustLoad reads the configuration from the environment (and an optional .env file).
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := newViper()

	timeout, err := time.ParseDuration(vpr.GetString("source.timeout"))
	if err != nil {
		panic("failed to parse source timeout from configuration")
	}

	port, err := strconv.Atoi(vpr.GetString("port"))
	if err != nil {
		panic("failed to parse port for dashboard server from configuration")
	}

	rateLimit, err := strconv.Atoi(vpr.GetString("source.rate_limit"))
	if err != nil || rateLimit <= 0 {
		panic("failed to parse source rate limit from configuration, must be a positive integer")
	}

	return &Config{
		Env:         vpr.GetString("env"),
		Port:        port,
		Granularity: strings.ToLower(vpr.GetString("granularity")),
		Source: SourceConfig{
			Type:      strings.ToLower(vpr.GetString("source.type")),
			Location:  vpr.GetString("source.location"),
			Sheet:     vpr.GetString("source.sheet"),
			Timeout:   timeout,
			RateLimit: rateLimit,
		},
		Database: PostgresConfig{
			Host:     vpr.GetString("db.host"),
			Port:     vpr.GetString("db.port"),
			User:     vpr.GetString("db.user"),
			Password: vpr.GetString("db.password"),
			Name:     vpr.GetString("db.name"),
		},
	}
}

func newViper() *viper.Viper {
	vpr := viper.New()

	bindings := map[string]string{
		"env":               "MERIDIAN_ENV",
		"port":              "MERIDIAN_PORT",
		"granularity":       "MERIDIAN_GRANULARITY",
		"source.type":       "MERIDIAN_SOURCE_TYPE",
		"source.location":   "MERIDIAN_SOURCE_LOCATION",
		"source.sheet":      "MERIDIAN_SOURCE_SHEET",
		"source.timeout":    "MERIDIAN_SOURCE_TIMEOUT",
		"source.rate_limit": "MERIDIAN_SOURCE_RATE",
		"db.host":           "DB_HOST",
		"db.port":           "DB_PORT",
		"db.user":           "DB_USERNAME",
		"db.password":       "DB_PASSWORD",
		"db.name":           "DB_NAME",
	}
	for key, env := range bindings {
		_ = vpr.BindEnv(key, env)
	}

	vpr.SetDefault("env", "production")
	vpr.SetDefault("port", "8080")
	vpr.SetDefault("granularity", "order")
	vpr.SetDefault("source.type", "http")
	vpr.SetDefault("source.location", DefaultSourceLocation)
	vpr.SetDefault("source.timeout", "30s")
	vpr.SetDefault("source.rate_limit", "1")
	vpr.SetDefault("db.port", "5432")

	return vpr
}
