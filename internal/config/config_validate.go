// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"fmt"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateEmbedding(); err != nil {
		return err
	}
	return c.validateSecurity()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT must not be negative")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

var validCatalogFormats = map[string]bool{
	"":      true,
	"auto":  true,
	"csv":   true,
	"jsonl": true,
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" {
		return fmt.Errorf("CATALOG_PATH is required")
	}
	if !validCatalogFormats[c.Catalog.Format] {
		return fmt.Errorf("CATALOG_FORMAT must be one of: auto, csv, jsonl")
	}
	if c.Catalog.ReloadInterval < 0 {
		return fmt.Errorf("CATALOG_RELOAD_INTERVAL must not be negative")
	}
	if c.Catalog.ReloadInterval > 0 && c.Catalog.ReloadInterval < time.Second {
		return fmt.Errorf("CATALOG_RELOAD_INTERVAL must be at least 1s, got %v", c.Catalog.ReloadInterval)
	}
	return nil
}

// Result size bounds
const (
	maxResultsCeiling = 1000
)

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxResults < 1 || r.MaxResults > maxResultsCeiling {
		return fmt.Errorf("RECOMMEND_MAX_RESULTS must be between 1 and %d", maxResultsCeiling)
	}
	if r.DefaultLimit < 1 || r.DefaultLimit > r.MaxResults {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be between 1 and RECOMMEND_MAX_RESULTS (%d)", r.MaxResults)
	}
	if r.DislikeWeight < 0 {
		return fmt.Errorf("RECOMMEND_DISLIKE_WEIGHT must not be negative")
	}
	switch r.Metric {
	case "cosine", "euclidean":
	default:
		return fmt.Errorf("RECOMMEND_METRIC must be one of: cosine, euclidean")
	}
	switch r.ColdStart {
	case "popularity", "mean_features":
	default:
		return fmt.Errorf("RECOMMEND_COLD_START must be one of: popularity, mean_features")
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	switch e.Provider {
	case "", EmbeddingProviderNone:
		return nil
	case EmbeddingProviderOpenAI:
	default:
		return fmt.Errorf("EMBEDDING_PROVIDER must be one of: none, openai")
	}

	if e.Model == "" {
		return fmt.Errorf("EMBEDDING_MODEL is required when EMBEDDING_PROVIDER=%s", e.Provider)
	}
	if e.BaseURL == "" && e.APIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required when EMBEDDING_BASE_URL is not set")
	}
	if e.Dimensions < 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must not be negative")
	}
	if e.Timeout <= 0 {
		return fmt.Errorf("EMBEDDING_TIMEOUT must be positive")
	}
	if e.MaxInputLength < 1 {
		return fmt.Errorf("EMBEDDING_MAX_INPUT_LENGTH must be positive")
	}
	if e.RequestsPerSecond < 0 {
		return fmt.Errorf("EMBEDDING_REQUESTS_PER_SECOND must not be negative")
	}
	if e.CacheSize < 0 {
		return fmt.Errorf("EMBEDDING_CACHE_SIZE must not be negative")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

func (c *Config) validateSecurity() error {
	if c.hasWildcardCORS() && len(c.Security.CORSOrigins) > 1 {
		return fmt.Errorf("CORS_ORIGINS must not mix * with explicit origins")
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard CORS origin in production, which
// is worth a startup warning.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.hasWildcardCORS()
}
