package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Backend names accepted by COSMOS_BACKEND.
const (
	BackendREST   = "rest"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// MongoConfig configures the local emulation backend.
type MongoConfig struct {
	URI             string `env:"MONGODB_URI"`
	CatalogDatabase string `env:"MONGODB_CATALOG_DATABASE" envDefault:"cosmos_catalog"`
	DatabasePrefix  string `env:"MONGODB_DATABASE_PREFIX" envDefault:"cosmos_"`
}

// AuditConfig enables the Redis audit stream when URL is set. A failed
// append is retried Retries times, RetryDelay apart.
type AuditConfig struct {
	RedisURL        string        `env:"REDIS_URL"`
	Stream          string        `env:"AUDIT_STREAM" envDefault:"cosmos-admin:audit"`
	StreamMaxLength int64         `env:"AUDIT_STREAM_MAX_LENGTH" envDefault:"10000"`
	Retries         int           `env:"AUDIT_RETRIES" envDefault:"1"`
	RetryDelay      time.Duration `env:"AUDIT_RETRY_DELAY" envDefault:"100ms"`
}

// Enabled reports whether audit events should be published.
func (a AuditConfig) Enabled() bool {
	return a.RedisURL != ""
}

// AdminHTTPConfig configures the serve subcommand.
type AdminHTTPConfig struct {
	Addr      string `env:"ADMIN_HTTP_ADDR" envDefault:"localhost:3000"`
	JWTSecret string `env:"ADMIN_JWT_SECRET"`
}

// LogConfig selects level, format and backend of the diagnostic logger.
type LogConfig struct {
	Level   string `env:"LOG_LEVEL" envDefault:"info"`
	Format  string `env:"LOG_FORMAT" envDefault:"text"`
	Backend string `env:"LOG_BACKEND" envDefault:"logrus"`
}

// Config holds all configuration for the cosmos admin client.
type Config struct {
	Host           string        `env:"COSMOS_HOST"`
	MasterKey      string        `env:"COSMOS_MASTER_KEY"`
	DatabaseID     string        `env:"COSMOS_DATABASE_ID"`
	CollectionID   string        `env:"COSMOS_COLLECTION_ID"`
	Backend        string        `env:"COSMOS_BACKEND" envDefault:"rest"`
	RequestTimeout time.Duration `env:"COSMOS_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxRetries     int32         `env:"COSMOS_MAX_RETRIES" envDefault:"3"`
	SettingsFile   string        `env:"COSMOS_SETTINGS_FILE"`

	Mongo MongoConfig
	Audit AuditConfig
	Admin AdminHTTPConfig
	Log   LogConfig
}

// Settings mirrors the account settings file.
type Settings struct {
	Host         string `yaml:"host"`
	MasterKey    string `yaml:"master_key"`
	DatabaseID   string `yaml:"database_id"`
	CollectionID string `yaml:"collection_id"`
}

// LoadConfig loads configuration from environment variables, then fills the
// account fields still empty from the settings file, if one is named.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load cosmos configuration from environment: %w", err)
	}

	if cfg.SettingsFile != "" {
		settings, err := LoadSettings(cfg.SettingsFile)
		if err != nil {
			return nil, err
		}
		cfg.ApplySettings(settings)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

// LoadSettings reads a YAML settings file.
func LoadSettings(path string) (*Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	settings := &Settings{}
	if err := yaml.Unmarshal(raw, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// ApplySettings copies settings into fields the environment left empty.
func (c *Config) ApplySettings(s *Settings) {
	if s == nil {
		return
	}
	if c.Host == "" {
		c.Host = s.Host
	}
	if c.MasterKey == "" {
		c.MasterKey = s.MasterKey
	}
	if c.DatabaseID == "" {
		c.DatabaseID = s.DatabaseID
	}
	if c.CollectionID == "" {
		c.CollectionID = s.CollectionID
	}
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return errors.New("COSMOS_REQUEST_TIMEOUT must be positive")
	}

	switch c.Backend {
	case BackendREST:
		if c.Host == "" {
			return errors.New("COSMOS_HOST environment variable is not set")
		}
		u, err := url.Parse(c.Host)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("COSMOS_HOST %q is not an absolute URL", c.Host)
		}
		if c.MasterKey == "" {
			return errors.New("COSMOS_MASTER_KEY environment variable is not set")
		}
		if _, err := base64.StdEncoding.DecodeString(c.MasterKey); err != nil {
			return fmt.Errorf("COSMOS_MASTER_KEY is not valid base64: %w", err)
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI environment variable is not set")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown COSMOS_BACKEND %q (want %s, %s or %s)", c.Backend, BackendREST, BackendMongo, BackendMemory)
	}
	return nil
}

// DefaultConfig returns a Config with default values for the in-memory backend.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendMemory,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     3,
		Mongo: MongoConfig{
			URI:             "mongodb://localhost:27017",
			CatalogDatabase: "cosmos_catalog",
			DatabasePrefix:  "cosmos_",
		},
		Audit: AuditConfig{
			Stream:          "cosmos-admin:audit",
			StreamMaxLength: 10000,
			Retries:         1,
			RetryDelay:      100 * time.Millisecond,
		},
		Admin: AdminHTTPConfig{Addr: "localhost:3000"},
		Log:   LogConfig{Level: "info", Format: "text", Backend: "logrus"},
	}
}
