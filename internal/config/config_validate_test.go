// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"empty log format", func(c *Config) { c.Logging.Format = "" }, false},
		{"no catalog path", func(c *Config) { c.Catalog.Path = "" }, true},
		{"bad catalog format", func(c *Config) { c.Catalog.Format = "parquet" }, true},
		{"reload interval too short", func(c *Config) { c.Catalog.ReloadInterval = time.Millisecond }, true},
		{"reload interval ok", func(c *Config) { c.Catalog.ReloadInterval = time.Minute }, false},
		{"max results zero", func(c *Config) { c.Recommend.MaxResults = 0 }, true},
		{"default above max", func(c *Config) { c.Recommend.DefaultLimit = 101 }, true},
		{"negative dislike weight", func(c *Config) { c.Recommend.DislikeWeight = -0.1 }, true},
		{"zero dislike weight", func(c *Config) { c.Recommend.DislikeWeight = 0 }, false},
		{"bad metric", func(c *Config) { c.Recommend.Metric = "dot" }, true},
		{"bad cold start", func(c *Config) { c.Recommend.ColdStart = "random" }, true},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, true},
		{"openai without key or url", func(c *Config) { c.Embedding.Provider = EmbeddingProviderOpenAI }, true},
		{"openai with key", func(c *Config) {
			c.Embedding.Provider = EmbeddingProviderOpenAI
			c.Embedding.APIKey = "sk-test"
		}, false},
		{"openai local endpoint", func(c *Config) {
			c.Embedding.Provider = EmbeddingProviderOpenAI
			c.Embedding.BaseURL = "http://localhost:11434/v1"
		}, false},
		{"openai zero timeout", func(c *Config) {
			c.Embedding.Provider = EmbeddingProviderOpenAI
			c.Embedding.APIKey = "sk-test"
			c.Embedding.Timeout = 0
		}, true},
		{"rate limit zero", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"rate limit disabled", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, false},
		{"rate window too long", func(c *Config) { c.Security.RateLimitWindow = 2 * time.Hour }, true},
		{"mixed cors", func(c *Config) { c.Security.CORSOrigins = []string{"*", "https://a.example"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.ShouldWarnAboutCORS() {
		t.Error("development wildcard should not warn")
	}
	cfg.Server.Environment = "Production"
	if !cfg.ShouldWarnAboutCORS() {
		t.Error("production wildcard should warn")
	}
	cfg.Security.CORSOrigins = []string{"https://app.example"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("explicit origins should not warn")
	}
}
