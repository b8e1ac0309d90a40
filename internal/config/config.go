// Package config loads the prepboard YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverS3       = "s3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	DisableChecksum bool   `yaml:"disable_checksum"`
	Prefix          string `yaml:"prefix"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Timeout bounds a single load or persist call.
	Timeout  time.Duration  `yaml:"timeout"`
	S3       S3Config       `yaml:"s3"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	StaticDir       string        `yaml:"static_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type SeedConfig struct {
	// Path to a YAML board catalogue. Empty means the built-in catalogue.
	Path string `yaml:"path"`
}

type NotifyConfig struct {
	FeedSize int `yaml:"feed_size"`
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Seed    SeedConfig    `yaml:"seed"`
	Notify  NotifyConfig  `yaml:"notify"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			StaticDir:       "static",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver:  DriverMemory,
			Timeout: 10 * time.Second,
			S3:      S3Config{Region: "us-east-1", Prefix: "boards/"},
			SQLite:  SQLiteConfig{Path: "prepboard.db"},
			Redis:   RedisConfig{URL: "redis://localhost:6379/0", Prefix: "prepboard:board:"},
		},
		Log:    LogConfig{Level: "info"},
		Notify: NotifyConfig{FeedSize: 20},
	}
}

// Load reads path on top of the defaults. A missing file is not an error
// so the server can start with defaults and environment overrides alone.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PREPBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PREPBOARD_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("PREPBOARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PREPBOARD_POSTGRES_URL"); v != "" {
		c.Storage.Postgres.URL = v
	}
	if v := os.Getenv("PREPBOARD_REDIS_URL"); v != "" {
		c.Storage.Redis.URL = v
	}
}

// Validate checks the settings required by the selected storage driver.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Storage.Timeout <= 0 {
		return errors.New("storage.timeout must be positive")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverS3:
		if c.Storage.S3.Endpoint == "" {
			return errors.New("storage.s3.endpoint is required")
		}
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required")
		}
	case DriverSQLite:
		if c.Storage.SQLite.Path == "" {
			return errors.New("storage.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Storage.Postgres.URL == "" {
			return errors.New("storage.postgres.url is required")
		}
	case DriverRedis:
		if c.Storage.Redis.URL == "" {
			return errors.New("storage.redis.url is required")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
