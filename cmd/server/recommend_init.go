// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/embedding"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/similarity"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Store    *catalog.Store
	Engine   *recommend.Engine
	Embedder *embedding.Embedder // nil when text search is disabled

	snapshot *catalog.SnapshotStore
}

// Close releases the snapshot store, if any.
func (c *RecommendComponents) Close() error {
	if c.snapshot == nil {
		return nil
	}
	return c.snapshot.Close()
}

// initRecommend opens the catalog and builds the engine. A catalog that
// cannot be loaded (and has no snapshot to fall back to) is fatal.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	comps := &RecommendComponents{}

	format, err := catalog.ParseFormat(cfg.Catalog.Format)
	if err != nil {
		return nil, err
	}
	storeCfg := catalog.StoreConfig{Path: cfg.Catalog.Path, Format: format}

	if cfg.Catalog.SnapshotDir != "" {
		snap, err := catalog.OpenSnapshotStore(cfg.Catalog.SnapshotDir)
		if err != nil {
			return nil, fmt.Errorf("open catalog snapshot: %w", err)
		}
		comps.snapshot = snap
		storeCfg.Snapshot = snap
		logger.Info().Str("dir", cfg.Catalog.SnapshotDir).Msg("catalog snapshot store enabled")
	}

	comps.Store = catalog.NewStore(storeCfg, logger)
	if err := comps.Store.Open(ctx); err != nil {
		_ = comps.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// keep the interface nil when disabled so the engine sees no embedder
	var textEmbedder recommend.TextEmbedder
	if cfg.Embedding.Enabled() {
		comps.Embedder, err = buildEmbedder(&cfg.Embedding, logger)
		if err != nil {
			_ = comps.Close()
			return nil, err
		}
		textEmbedder = comps.Embedder
	} else {
		logger.Info().Msg("Text search disabled (EMBEDDING_PROVIDER=none)")
	}

	engineCfg, err := buildEngineConfig(&cfg.Recommend)
	if err != nil {
		_ = comps.Close()
		return nil, err
	}

	comps.Engine, err = recommend.NewEngine(engineCfg, comps.Store, nil, textEmbedder, logger)
	if err != nil {
		_ = comps.Close()
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	stats := comps.Engine.Stats()
	logger.Info().
		Str("catalog_version", stats.CatalogVersion).
		Int("items", stats.Items).
		Int("dimensions", stats.Dimensions).
		Int("embedded_items", stats.EmbeddedItems).
		Bool("text_search", stats.TextSearch).
		Str("metric", stats.Metric).
		Str("cold_start", stats.ColdStart).
		Msg("Recommendation engine initialized")

	return comps, nil
}

// buildEngineConfig maps the recommend config section onto the engine config.
func buildEngineConfig(rc *config.RecommendConfig) (*recommend.Config, error) {
	metric, err := similarity.ParseMetric(rc.Metric)
	if err != nil {
		return nil, err
	}
	coldStart, err := recommend.ParseColdStartStrategy(rc.ColdStart)
	if err != nil {
		return nil, err
	}

	engineCfg := recommend.DefaultConfig()
	engineCfg.MaxResults = rc.MaxResults
	engineCfg.DefaultLimit = rc.DefaultLimit
	engineCfg.DislikeWeight = rc.DislikeWeight
	engineCfg.Metric = metric
	engineCfg.ColdStart = coldStart
	return engineCfg, engineCfg.Validate()
}

// buildEmbedder creates the text embedder for the configured provider.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func buildEmbedder(ec *config.EmbeddingConfig, logger zerolog.Logger) (*embedding.Embedder, error) {
	if ec.Provider != config.EmbeddingProviderOpenAI {
		return nil, fmt.Errorf("unsupported embedding provider %q", ec.Provider)
	}

	model, err := embedding.NewOpenAIModel(embedding.OpenAIConfig{
		BaseURL:    ec.BaseURL,
		APIKey:     ec.APIKey,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding model: %w", err)
	}

	logger.Info().
		Str("provider", ec.Provider).
		Str("model", ec.Model).
		Bool("custom_base_url", ec.BaseURL != "").
		Dur("timeout", ec.Timeout).
		Msg("Text search enabled")

	return embedding.New(model, embedding.Config{
		Timeout:           ec.Timeout,
		MaxInputRunes:     ec.MaxInputLength,
		Dimensions:        ec.Dimensions,
		RequestsPerSecond: ec.RequestsPerSecond,
		Burst:             ec.Burst,
		CacheSize:         ec.CacheSize,
		CacheTTL:          ec.CacheTTL,
		Breaker:           embedding.DefaultBreakerConfig(),
	}, logger), nil
}
