// Package config handles loading and parsing application configuration.
// Values come from (lowest to highest priority):
//  1. env-default tags on the structs below
//  2. A YAML file:              --config=/path/to/config.yaml or CONFIG_PATH
//  3. Environment variables, optionally seeded from a .env file
//
// The parsed values are returned as a *Config pointer that is built once
// at startup and handed to the store and the server; nothing reads the
// environment after that.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in storage.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage    Storage `yaml:"storage"`
	HTTPServer `yaml:"http_server"`
}

// Storage selects and configures the Record Store engine.
type Storage struct {
	// Driver is DriverSQLite or DriverPostgres.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`

	// Path is the filesystem path to the SQLite .db file.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/students.db"`

	// ConnectTimeout bounds the first connection attempt (and SQLite's busy
	// wait) so a dead store surfaces as an init error instead of hanging.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"STORAGE_CONNECT_TIMEOUT" env-default:"5s"`

	Postgres Postgres `yaml:"postgres"`
}

// Postgres holds connection settings used when Driver is DriverPostgres.
type Postgres struct {
	Host     string `yaml:"host"     env:"DB_HOST"     env-default:"localhost"`
	Port     string `yaml:"port"     env:"DB_PORT"     env-default:"5432"`
	User     string `yaml:"user"     env:"DB_USER"     env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname"   env:"DB_NAME"     env-default:"student_phones"`
	SSLMode  string `yaml:"sslmode"  env:"DB_SSLMODE"  env-default:"disable"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"localhost:8082"`
}

// DSN builds a postgres:// URL for the pgx driver. Every part is escaped,
// so an empty password or one with spaces cannot swallow the next setting.
func (p Postgres) DSN(timeout time.Duration) string {
	q := url.Values{}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	q.Set("connect_timeout", strconv.Itoa(int(timeout.Seconds())))

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Load reads the optional .env file in the working directory, then the YAML
// file at path (skipped when path is empty), then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: read .env: %w", err)
	}

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
	} else {
		// Verify the file exists before trying to read it, for a clearer
		// message than the decoder's "open: no such file".
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config.Load: config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Storage.Postgres.Host == "" || c.Storage.Postgres.DBName == "" {
			return errors.New("storage.postgres.host and storage.postgres.dbname are required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q: must be %q or %q", c.Storage.Driver, DriverSQLite, DriverPostgres)
	}
	if c.Storage.ConnectTimeout <= 0 {
		return errors.New("storage.connect_timeout must be positive")
	}
	return nil
}

// LogValue renders the config for structured logs with secrets masked.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("env", c.Env),
		slog.String("http_address", c.HTTPServer.Addr),
		slog.Group("storage",
			slog.String("driver", c.Storage.Driver),
			slog.String("path", c.Storage.Path),
			slog.Duration("connect_timeout", c.Storage.ConnectTimeout),
			slog.String("pg_host", c.Storage.Postgres.Host),
			slog.String("pg_user", c.Storage.Postgres.User),
			slog.String("pg_password", mask(c.Storage.Postgres.Password)),
			slog.String("pg_dbname", c.Storage.Postgres.DBName),
		),
	)
}

// mask keeps the first and last character; short values are fully hidden.
func mask(s string) string {
	r := []rune(s)
	if len(r) <= 2 {
		return "****"
	}
	return string(r[:1]) + "****" + string(r[len(r)-1:])
}
