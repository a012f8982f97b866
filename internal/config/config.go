package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds
const (
	StoreDynamoDB = "dynamodb"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config represents the service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// StoreConfig selects and configures the record store backend
type StoreConfig struct {
	Kind     string         `yaml:"kind"` // dynamodb, sqlite or memory
	DynamoDB DynamoDBConfig `yaml:"dynamodb"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// DynamoDBConfig contains DynamoDB connection settings
type DynamoDBConfig struct {
	TableName       string `yaml:"table_name"`
	Region          string `yaml:"region"`
	EndpointURL     string `yaml:"endpoint_url"` // Optional: DynamoDB Local or LocalStack
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// SQLiteConfig contains SQLite settings
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// UIConfig contains settings for the HTML dashboard
type UIConfig struct {
	Enabled  *bool  `yaml:"enabled"`
	TimeZone string `yaml:"time_zone"`
}

// IsEnabled reports whether the dashboard pages are served (default true)
func (u UIConfig) IsEnabled() bool {
	return u.Enabled == nil || *u.Enabled
}

// Location resolves the configured time zone
func (u UIConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", u.TimeZone, err)
	}
	return loc, nil
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Load reads the configuration file, applies environment overrides and
// defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Expand environment variables in the config
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv lets deployment environment variables win over the file
func applyEnv(cfg *Config) error {
	if v := os.Getenv("TEST_RUNS_TABLE_NAME"); v != "" {
		cfg.Store.DynamoDB.TableName = v
	}
	if v := os.Getenv("STORE_KIND"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}
	if v := os.Getenv("AWS_ENDPOINT_URL_DYNAMODB"); v != "" {
		cfg.Store.DynamoDB.EndpointURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Store.Kind == "" {
		cfg.Store.Kind = StoreDynamoDB
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = "test-runs.db"
	}
	if cfg.UI.TimeZone == "" {
		cfg.UI.TimeZone = "UTC"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks settings that would prevent startup. A missing table
// name is not one of them: requests report it as a configuration error.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreDynamoDB, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("unsupported store kind: %s", c.Store.Kind)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := c.UI.Location(); err != nil {
		return err
	}
	if (c.Store.DynamoDB.AccessKeyID == "") != (c.Store.DynamoDB.SecretAccessKey == "") {
		return errors.New("dynamodb access_key_id and secret_access_key must be set together")
	}
	return nil
}
