// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and COURTQUOTE_* env vars over the defaults.
// - Errors returned to callers wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"regexp"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the persistence backend: memory, sqlite or dynamodb.
	Store string `koanf:"store"`

	// SQLiteDSN is the sqlite3 data source; empty uses the repository default.
	SQLiteDSN string `koanf:"sqlite_dsn"`

	// DynamoDBEndpoint points at DynamoDB Local when set.
	DynamoDBEndpoint string `koanf:"dynamodb_endpoint"`
	DynamoDBRegion   string `koanf:"dynamodb_region"`
	QuotationsTable  string `koanf:"quotations_table"`
	CountersTable    string `koanf:"counters_table"`

	// CatalogPath is a catalog YAML document; empty uses the built-in one.
	CatalogPath     string `koanf:"catalog_path"`
	CatalogCategory string `koanf:"catalog_category"`

	// QuotationPrefix precedes the six digit sequence, e.g. NXR000001.
	QuotationPrefix string `koanf:"quotation_prefix"`

	// NumberingMaxRetries bounds attempts to claim a free quotation number.
	NumberingMaxRetries int `koanf:"numbering_max_retries"`

	// PersistenceTimeoutMS bounds each store call.
	PersistenceTimeoutMS int `koanf:"persistence_timeout_ms"`

	// MaxListLimit caps GET /quotations?limit.
	MaxListLimit int `koanf:"max_list_limit"`

	// RenderWorkers and RenderQueueSize size the document pre-render pool.
	RenderWorkers   int `koanf:"render_workers"`
	RenderQueueSize int `koanf:"render_queue_size"`

	DocumentCacheSize    int `koanf:"document_cache_size"`
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// GSTPercent is applied to the subtotal on rendered documents.
	GSTPercent float64 `koanf:"gst_percent"`

	// RecomputeEquipment reprices submitted equipment from the catalog
	// instead of trusting client totals.
	RecomputeEquipment bool `koanf:"recompute_equipment"`
}

var prefixPattern = regexp.MustCompile(`^[A-Za-z]+$`)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":8080",
		Store:                "memory",
		DynamoDBRegion:       "us-east-1",
		QuotationsTable:      "quotations",
		CountersTable:        "counters",
		CatalogCategory:      "default",
		QuotationPrefix:      "NXR",
		NumberingMaxRetries:  5,
		PersistenceTimeoutMS: 5000,
		MaxListLimit:         500,
		RenderWorkers:        runtime.NumCPU(),
		RenderQueueSize:      256,
		DocumentCacheSize:    128,
		IdempotencyCacheSize: 10_000,
		GSTPercent:           18,
	}
}

// PersistenceTimeout returns PersistenceTimeoutMS as a duration.
func (c *Config) PersistenceTimeout() time.Duration {
	return time.Duration(c.PersistenceTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.Store != "memory" && c.Store != "sqlite" && c.Store != "dynamodb":
		return fmt.Errorf("%w: store %q", ErrInvalidConfig, c.Store)
	case !prefixPattern.MatchString(c.QuotationPrefix):
		return fmt.Errorf("%w: quotation_prefix %q must be letters", ErrInvalidConfig, c.QuotationPrefix)
	case c.NumberingMaxRetries < 1:
		return fmt.Errorf("%w: numbering_max_retries must be positive", ErrInvalidConfig)
	case c.PersistenceTimeoutMS < 1:
		return fmt.Errorf("%w: persistence_timeout_ms must be positive", ErrInvalidConfig)
	case c.MaxListLimit < 1:
		return fmt.Errorf("%w: max_list_limit must be positive", ErrInvalidConfig)
	case c.RenderWorkers < 1 || c.RenderQueueSize < 1:
		return fmt.Errorf("%w: render pool sizes must be positive", ErrInvalidConfig)
	case c.DocumentCacheSize < 0 || c.IdempotencyCacheSize < 0:
		return fmt.Errorf("%w: cache sizes must not be negative", ErrInvalidConfig)
	case c.GSTPercent < 0:
		return fmt.Errorf("%w: gst_percent must not be negative", ErrInvalidConfig)
	}
	return nil
}
