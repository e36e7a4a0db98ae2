// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// MailboxSource declares one IMAP mailbox to crawl
type MailboxSource struct {
	Address   string `json:"address" validate:"required,email"`
	Host      string `json:"host" validate:"required,hostname_port"`
	SecretRef string `json:"secret_ref" validate:"required"` // env var holding the app password
	Folder    string `json:"folder,omitempty"`
}

// DirectorySource declares one directory root to walk
type DirectorySource struct {
	Root       string   `json:"root" validate:"required"`
	Extensions []string `json:"extensions,omitempty"` // allow-list; defaults applied if empty
}

// Config represents the pipeline configuration loaded from a JSON file.
// The classification threshold and backfill start year are empirically chosen
// constants from operational experience; they are configurable rather than
// assumed optimal.
type Config struct {
	DatabaseURL string `json:"database_url,omitempty"`

	// Sources
	Mailboxes   []MailboxSource   `json:"mailboxes,omitempty"`
	Directories []DirectorySource `json:"directories,omitempty"`

	// Batching
	BatchLimit         int `json:"batch_limit,omitempty"`          // per-invocation fetch cap
	BackfillBatchLimit int `json:"backfill_batch_limit,omitempty"` // relaxed cap for historical windows
	BackfillStartYear  int `json:"backfill_start_year,omitempty"`

	// Concurrency
	FetchConcurrency int `json:"fetch_concurrency,omitempty"` // source-scoped I/O limit
	Workers          int `json:"workers,omitempty"`           // CPU pool size

	// Retry
	MaxRetries   int           `json:"max_retries,omitempty"`
	RetryBackoff time.Duration `json:"retry_backoff,omitempty"` // nanoseconds in JSON
	FetchTimeout time.Duration `json:"fetch_timeout,omitempty"`

	// Classification
	ClassifyMinHits int `json:"classify_min_hits,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the documented default configuration
func Defaults() Config {
	return Config{
		BatchLimit:         200,
		BackfillBatchLimit: 500,
		BackfillStartYear:  2011,
		FetchConcurrency:   4,
		Workers:            8,
		MaxRetries:         3,
		RetryBackoff:       2 * time.Second,
		FetchTimeout:       60 * time.Second,
		ClassifyMinHits:    5,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values. Source declarations
// are checked syntactically only; authentication is not attempted here.
func (c *Config) Validate() error {
	validate := validator.New()

	for i, mb := range c.Mailboxes {
		if err := validate.Struct(mb); err != nil {
			return fmt.Errorf("config error: mailbox %d (%s): %w", i, mb.Address, err)
		}
	}

	for i, dir := range c.Directories {
		if err := validate.Struct(dir); err != nil {
			return fmt.Errorf("config error: directory %d: %w", i, err)
		}
		if _, err := os.Stat(dir.Root); os.IsNotExist(err) {
			return fmt.Errorf("config error: directory root not found: %s", dir.Root)
		}
	}

	if c.BatchLimit < 0 {
		return fmt.Errorf("config error: 'batch_limit' must be non-negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if c.FetchConcurrency < 0 {
		return fmt.Errorf("config error: 'fetch_concurrency' must be non-negative")
	}
	if c.ClassifyMinHits < 0 {
		return fmt.Errorf("config error: 'classify_min_hits' must be non-negative")
	}
	if c.BackfillStartYear != 0 && (c.BackfillStartYear < 1990 || c.BackfillStartYear > time.Now().Year()) {
		return fmt.Errorf("config error: 'backfill_start_year' out of range: %d", c.BackfillStartYear)
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.BatchLimit == 0 {
		result.BatchLimit = defaults.BatchLimit
	}
	if result.BackfillBatchLimit == 0 {
		result.BackfillBatchLimit = defaults.BackfillBatchLimit
	}
	if result.BackfillStartYear == 0 {
		result.BackfillStartYear = defaults.BackfillStartYear
	}
	if result.FetchConcurrency == 0 {
		result.FetchConcurrency = defaults.FetchConcurrency
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.RetryBackoff == 0 {
		result.RetryBackoff = defaults.RetryBackoff
	}
	if result.FetchTimeout == 0 {
		result.FetchTimeout = defaults.FetchTimeout
	}
	if result.ClassifyMinHits == 0 {
		result.ClassifyMinHits = defaults.ClassifyMinHits
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
