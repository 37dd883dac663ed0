// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"paint-quote/core/coerce"
	"paint-quote/core/engine"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

// Environment variables that override file values
const (
	EnvDBPath       = "PAINTQUOTE_DB_PATH"
	EnvAddr         = "PAINTQUOTE_ADDR"
	EnvKafkaBrokers = "PAINTQUOTE_KAFKA_BROKERS"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Pricing contains pricing defaults
	Pricing PricingConfig `json:"pricing"`

	// Storage contains database configuration
	Storage StorageConfig `json:"storage"`

	// Server contains HTTP server configuration
	Server ServerConfig `json:"server"`

	// Events contains event publishing configuration
	Events EventsConfig `json:"events"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Cache contains cache configuration
	Cache CacheConfig `json:"cache"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// PricingConfig holds the defaults used when neither a request nor a
// scheme pins a mode
type PricingConfig struct {
	// Currency is the display currency
	Currency string `json:"currency"`

	// TaxMode is materials_only or full_subtotal
	TaxMode types.TaxMode `json:"tax_mode"`

	// GallonRounding is whole or quarter; empty follows the material mode
	GallonRounding types.GallonRounding `json:"gallon_rounding,omitempty"`

	// MaterialMode is per_item or per_surface
	MaterialMode types.MaterialMode `json:"material_mode"`

	// Tier is the tier priced when a request names none
	Tier types.Tier `json:"tier"`

	// MaterialDefaults fill paint defaults a scheme leaves unset
	MaterialDefaults types.MaterialDefaults `json:"material_defaults"`
}

// Policy converts the pricing defaults into engine policy
func (p PricingConfig) Policy() engine.Policy {
	return engine.Policy{
		TaxMode:          p.TaxMode,
		GallonRounding:   p.GallonRounding,
		MaterialMode:     p.MaterialMode,
		Tier:             p.Tier,
		MaterialDefaults: p.MaterialDefaults,
	}
}

// StorageConfig contains database settings
type StorageConfig struct {
	// Backend is sqlite or memory
	Backend string `json:"backend"`

	// Path is the SQLite database file
	Path string `json:"path"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// RateLimit is requests per second per client; zero disables limiting
	RateLimit float64 `json:"rate_limit"`

	// RateBurst is the limiter burst size
	RateBurst int `json:"rate_burst"`

	// RequestTimeoutSeconds bounds each request
	RequestTimeoutSeconds int `json:"request_timeout_seconds"`
}

// RequestTimeout returns the request timeout as a duration
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// EventsConfig contains event publishing settings
type EventsConfig struct {
	// Brokers are Kafka broker addresses; empty disables publishing
	Brokers []string `json:"brokers,omitempty"`

	// Topic receives quote events
	Topic string `json:"topic"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`

	// ShowDetails shows per-item lines
	ShowDetails bool `json:"show_details"`
}

// CacheConfig contains cache-related settings
type CacheConfig struct {
	// Enabled enables the tenant data cache
	Enabled bool `json:"enabled"`

	// TTLSeconds is how long tenant data stays cached
	TTLSeconds int `json:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".paint-quote", "quotes.db")

	return &Config{
		Version: "1.0",
		Pricing: PricingConfig{
			Currency:     "USD",
			TaxMode:      types.TaxMaterialsOnly,
			MaterialMode: types.MaterialPerItem,
			Tier:         types.TierBetter,
			MaterialDefaults: types.MaterialDefaults{
				CostPerGallon: coerce.FromDecimal(types.DefaultCostPerGallon),
				Coverage:      coerce.FromDecimal(types.DefaultCoverage),
				Coats:         coerce.FromInt(int64(types.DefaultCoats)),
			},
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			Path:    dbPath,
		},
		Server: ServerConfig{
			Addr:                  ":8080",
			RateLimit:             20,
			RateBurst:             40,
			RequestTimeoutSeconds: 30,
		},
		Events: EventsConfig{
			Topic: "quotes",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowDetails:   true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 300,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Config("read config file", err)
		default:
			if err := json.Unmarshal(data, config); err != nil {
				return nil, errors.Config("parse config file", err)
			}
		}
	}

	config.ApplyEnv(os.LookupEnv)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides file values with environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvKafkaBrokers); ok {
		c.Events.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Events.Brokers = append(c.Events.Brokers, b)
			}
		}
	}
}

// Validate checks the pricing modes
func (c *Config) Validate() error {
	p := c.Pricing
	if p.TaxMode != "" && !p.TaxMode.IsValid() {
		return errors.Validation("pricing.tax_mode", "unknown tax mode "+string(p.TaxMode))
	}
	if p.GallonRounding != "" && !p.GallonRounding.IsValid() {
		return errors.Validation("pricing.gallon_rounding", "unknown gallon rounding "+string(p.GallonRounding))
	}
	if p.MaterialMode != "" && !p.MaterialMode.IsValid() {
		return errors.Validation("pricing.material_mode", "unknown material mode "+string(p.MaterialMode))
	}
	if p.Tier != "" {
		if _, ok := types.ParseTier(string(p.Tier)); !ok {
			return errors.Validation("pricing.tier", "unknown tier "+string(p.Tier))
		}
	}
	return nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Internal("encode config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Config("write config file", err)
	}
	return nil
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".paint-quote", "config.json")
}

var (
	mu           sync.RWMutex
	globalConfig = Default()
)

// Get returns the global configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = config
}
