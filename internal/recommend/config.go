// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"strings"

	"github.com/tomtom215/cinematch/internal/similarity"
)

// ColdStartStrategy selects the ordering served when nothing is known about
// the caller.
type ColdStartStrategy string

const (
	// ColdStartPopularity orders by popularity descending, ties by id.
	ColdStartPopularity ColdStartStrategy = "popularity"

	// ColdStartMeanFeatures orders by similarity to the catalog's mean
	// feature vector.
	ColdStartMeanFeatures ColdStartStrategy = "mean_features"
)

// ParseColdStartStrategy converts a configuration string.
func ParseColdStartStrategy(s string) (ColdStartStrategy, error) {
	switch ColdStartStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ColdStartPopularity:
		return ColdStartPopularity, nil
	case ColdStartMeanFeatures:
		return ColdStartMeanFeatures, nil
	default:
		return "", fmt.Errorf("unknown cold start strategy %q", s)
	}
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// MaxResults is the hard upper bound on any result list.
	// Default: 100.
	MaxResults int `json:"max_results"`

	// DefaultLimit is used by transports when the caller omits a limit.
	// Default: 20.
	DefaultLimit int `json:"default_limit"`

	// DislikeWeight is alpha in normalize(sum(liked) - alpha * sum(disliked)).
	// Default: 1.0.
	DislikeWeight float64 `json:"dislike_weight"`

	// Metric scores feature and embedding similarity.
	// Default: cosine.
	Metric similarity.Metric `json:"metric"`

	// ColdStart selects the initial ordering.
	// Default: popularity.
	ColdStart ColdStartStrategy `json:"cold_start"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxResults:    100,
		DefaultLimit:  20,
		DislikeWeight: 1.0,
		Metric:        similarity.Cosine,
		ColdStart:     ColdStartPopularity,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.DefaultLimit > c.MaxResults {
		return fmt.Errorf("default_limit must be <= max_results, got %d > %d", c.DefaultLimit, c.MaxResults)
	}
	if c.DislikeWeight < 0 {
		return fmt.Errorf("dislike_weight must be non-negative, got %f", c.DislikeWeight)
	}
	if c.Metric != similarity.Cosine && c.Metric != similarity.Euclidean {
		return fmt.Errorf("unknown metric %d", c.Metric)
	}
	if _, err := ParseColdStartStrategy(string(c.ColdStart)); err != nil {
		return err
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ClampLimit bounds limit to [0, MaxResults].
func (c *Config) ClampLimit(limit int) int {
	switch {
	case limit < 0:
		return 0
	case limit > c.MaxResults:
		return c.MaxResults
	default:
		return limit
	}
}
