// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/metrics"
)

// Snapshotter persists the last good catalog.
type Snapshotter interface {
	Save(c *Catalog) error
	Load() (*Catalog, error)
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// Path is the catalog file. Reload is an error when empty.
	Path string

	// Format selects the parser; FormatAuto detects by extension.
	Format Format

	// Snapshot is optional. When set, every successful load is saved and
	// Open falls back to it when the source file cannot be read.
	Snapshot Snapshotter
}

// Store publishes catalog snapshots. Readers call Current and get either the
// previous or the next snapshot in full, never a partial one.
type Store struct {
	current atomic.Pointer[Catalog]
	cfg     StoreConfig
	logger  zerolog.Logger

	// reloadMu serializes loads so two reloads cannot publish out of order.
	reloadMu sync.Mutex
}

// NewStore creates an empty store. Call Open or Swap before serving.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(cfg StoreConfig, logger zerolog.Logger) *Store {
	if cfg.Format == "" {
		cfg.Format = FormatAuto
	}
	return &Store{
		cfg:    cfg,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Current returns the published snapshot, or nil before the first publish.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Ready reports whether a snapshot has been published.
func (s *Store) Ready() bool {
	return s.current.Load() != nil
}

// Swap publishes c and returns the snapshot it replaced.
func (s *Store) Swap(c *Catalog) *Catalog {
	prev := s.current.Swap(c)
	if c != nil {
		metrics.SetCatalogPublished(c.Len(), c.EmbeddedCount(), time.Now())
		s.logger.Info().
			Str("version", c.Version()).
			Str("source", c.Source()).
			Int("items", c.Len()).
			Int("dimensions", c.Dimensions()).
			Int("embedded_items", c.EmbeddedCount()).
			Msg("Catalog published")
	}
	return prev
}

// Open performs the initial load. A *DataIntegrityError is always returned
// as is. Any other failure falls back to the snapshot when one is configured.
func (s *Store) Open(ctx context.Context) error {
	_, err := s.Reload(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataIntegrity) || s.cfg.Snapshot == nil {
		return err
	}

	s.logger.Warn().Err(err).Msg("Catalog source unavailable, restoring last snapshot")
	start := time.Now()
	c, snapErr := s.cfg.Snapshot.Load()
	if snapErr != nil {
		return fmt.Errorf("load catalog: %w (snapshot: %w)", err, snapErr)
	}
	metrics.RecordCatalogReload("snapshot", time.Since(start))
	s.Swap(c)
	return nil
}

// Reload loads the configured file and publishes it. On any error the
// currently published snapshot stays in place.
func (s *Store) Reload(ctx context.Context) (*Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cfg.Path == "" {
		return nil, errors.New("catalog path is not configured")
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	c, err := LoadFile(s.cfg.Path, s.cfg.Format)
	if err != nil {
		result := "io_error"
		if errors.Is(err, ErrDataIntegrity) {
			result = "integrity_error"
		}
		metrics.RecordCatalogReload(result, time.Since(start))
		s.logger.Error().Err(err).Str("path", s.cfg.Path).Str("result", result).Msg("Catalog load failed")
		return nil, err
	}
	metrics.RecordCatalogReload("success", time.Since(start))

	s.Swap(c)

	if s.cfg.Snapshot != nil {
		if err := s.cfg.Snapshot.Save(c); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to save catalog snapshot")
		}
	}
	return c, nil
}
