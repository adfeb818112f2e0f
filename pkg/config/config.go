package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Source   SourceConfig   `yaml:"source" json:"source" jsonschema:"required,description=Newsletter API access"`
	Book     BookConfig     `yaml:"book" json:"book" jsonschema:"required,description=Produced book settings"`
	Database DatabaseConfig `yaml:"database" json:"database" jsonschema:"description=Archive database configuration"`
	Sync     SyncConfig     `yaml:"sync" json:"sync" jsonschema:"description=Discovery and backfill pacing"`
}

// SourceConfig describes how to reach the newsletter
type SourceConfig struct {
	BaseURL    string        `yaml:"base_url" json:"base_url" jsonschema:"required,description=Newsletter base URL (e.g. https://foo.substack.com/)"`
	SessionID  string        `yaml:"session_id" json:"session_id,omitempty" jsonschema:"description=Session cookie value for subscriber-only posts (can use environment variable)"`
	CookieName string        `yaml:"cookie_name" json:"cookie_name" jsonschema:"default=substack.sid,description=Name of the session cookie"`
	UserAgent  string        `yaml:"user_agent" json:"user_agent,omitempty" jsonschema:"description=User agent for API requests, browser-like if empty"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"description=Request timeout (default 30s)"`
}

// BookConfig holds settings of the produced book
type BookConfig struct {
	Name      string `yaml:"name" json:"name" jsonschema:"required,description=Newsletter name, the date span is appended to form the title"`
	Author    string `yaml:"author" json:"author,omitempty" jsonschema:"description=Book author, defaults to the newsletter name"`
	OutputDir string `yaml:"output_dir" json:"output_dir" jsonschema:"default=.,description=Directory for the produced epub"`
	Lang      string `yaml:"lang" json:"lang" jsonschema:"default=en,description=Book language"`
}

// DatabaseConfig holds archive database settings
type DatabaseConfig struct {
	DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:postbook.db?mode=rwc&_txlock=immediate,description=Database connection string"`
	MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=1,minimum=1,description=Maximum number of open connections"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
}

// SyncConfig controls discovery paging and backfill pacing
type SyncConfig struct {
	PageSize int           `yaml:"page_size" json:"page_size" jsonschema:"default=50,minimum=1,description=Posts requested per archive page"`
	DelayMin time.Duration `yaml:"delay_min" json:"delay_min" jsonschema:"description=Minimum pause after each fetched body (default 500ms)"`
	DelayMax time.Duration `yaml:"delay_max" json:"delay_max" jsonschema:"description=Maximum pause after each fetched body (default 1.5s)"`
}

// default values
const (
	DefaultDSN        = "file:postbook.db?mode=rwc&_txlock=immediate"
	DefaultCookieName = "substack.sid"
	DefaultPageSize   = 50
	DefaultTimeout    = 30 * time.Second
	DefaultDelayMin   = 500 * time.Millisecond
	DefaultDelayMax   = 1500 * time.Millisecond
)

// New returns a configuration with all defaults set
func New() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// Load reads configuration from a YAML file and fills in defaults.
// The result is not validated, call Validate once all overrides are applied.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills every unset field with its default value
func (c *Config) SetDefaults() {
	// set defaults for source
	if c.Source.CookieName == "" {
		c.Source.CookieName = DefaultCookieName
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = DefaultTimeout
	}

	// set defaults for book
	if c.Book.OutputDir == "" {
		c.Book.OutputDir = "."
	}
	if c.Book.Lang == "" {
		c.Book.Lang = "en"
	}

	// set defaults for database
	if c.Database.DSN == "" {
		c.Database.DSN = DefaultDSN
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 1
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// set defaults for sync
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = DefaultPageSize
	}
	if c.Sync.DelayMin == 0 {
		c.Sync.DelayMin = DefaultDelayMin
	}
	if c.Sync.DelayMax == 0 {
		c.Sync.DelayMax = DefaultDelayMax
	}
}

// Validate checks configuration for correctness and verifies it against the embedded schema
func (c *Config) Validate() error {
	if err := validate(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if err := VerifyAgainstEmbeddedSchema(c); err != nil {
		return fmt.Errorf("verify config: %w", err)
	}
	return nil
}

// Author returns the book author, the newsletter name if no author is set
func (c *Config) Author() string {
	if c.Book.Author != "" {
		return c.Book.Author
	}
	return c.Book.Name
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate source config
	if cfg.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	u, err := url.Parse(cfg.Source.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source.base_url %q is not an absolute url", cfg.Source.BaseURL)
	}
	if cfg.Source.Timeout < time.Second {
		return errors.New("source.timeout must be at least 1 second")
	}

	// validate book config
	if cfg.Book.Name == "" {
		return errors.New("book.name is required")
	}

	// validate sync config
	if cfg.Sync.PageSize < 1 {
		return errors.New("sync.page_size must be at least 1")
	}
	if cfg.Sync.DelayMin < 0 || cfg.Sync.DelayMax < 0 {
		return errors.New("sync delays must be non-negative")
	}
	if cfg.Sync.DelayMax < cfg.Sync.DelayMin {
		return errors.New("sync.delay_max must not be less than sync.delay_min")
	}

	// validate database config
	if cfg.Database.MaxOpenConns < 1 {
		return errors.New("database.max_open_conns must be at least 1")
	}

	return nil
}
