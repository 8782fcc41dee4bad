// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging or production
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CatalogConfig holds catalog source settings.
//
// Environment Variables:
//   - CATALOG_PATH: catalog file (.csv or .jsonl)
//   - CATALOG_FORMAT: auto, csv or jsonl (default: auto)
//   - CATALOG_WATCH: reload when the file changes (default: false)
//   - CATALOG_RELOAD_INTERVAL: periodic reload, 0 disables (default: 0)
//   - CATALOG_SNAPSHOT_DIR: BadgerDB directory for the last good catalog
type CatalogConfig struct {
	Path           string        `koanf:"path"`
	Format         string        `koanf:"format"`
	Watch          bool          `koanf:"watch"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
	SnapshotDir    string        `koanf:"snapshot_dir"`
}

// RecommendConfig holds ranking settings.
type RecommendConfig struct {
	MaxResults    int     `koanf:"max_results"`
	DefaultLimit  int     `koanf:"default_limit"`
	DislikeWeight float64 `koanf:"dislike_weight"`
	Metric        string  `koanf:"metric"`     // cosine or euclidean
	ColdStart     string  `koanf:"cold_start"` // popularity or mean_features
}

// EmbeddingConfig holds the text embedding model settings. With provider
// "none" free-text search reports the feature as unavailable.
type EmbeddingConfig struct {
	Provider          string        `koanf:"provider"` // none or openai
	BaseURL           string        `koanf:"base_url"`
	APIKey            string        `koanf:"api_key"`
	Model             string        `koanf:"model"`
	Dimensions        int           `koanf:"dimensions"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxInputLength    int           `koanf:"max_input_length"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	CacheSize         int           `koanf:"cache_size"`
	CacheTTL          time.Duration `koanf:"cache_ttl"`
}

// Enabled reports whether a model provider is configured.
func (e *EmbeddingConfig) Enabled() bool {
	return e.Provider != "" && e.Provider != EmbeddingProviderNone
}

// Embedding providers
const (
	EmbeddingProviderNone   = "none"
	EmbeddingProviderOpenAI = "openai"
)

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}
