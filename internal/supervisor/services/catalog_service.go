// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/providers/file"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
)

// DefaultWatchDebounce is how long file events must settle before a reload.
const DefaultWatchDebounce = 500 * time.Millisecond

// CatalogReloader loads and publishes a fresh catalog.
// Satisfied by *catalog.Store.
type CatalogReloader interface {
	Reload(ctx context.Context) (*catalog.Catalog, error)
}

// FileWatcher reports changes to a single file.
// Satisfied by *file.File from the koanf file provider.
type FileWatcher interface {
	Watch(cb func(event interface{}, err error)) error
	Unwatch() error
}

// CatalogServiceConfig holds configuration for the catalog reloader.
type CatalogServiceConfig struct {
	// Path is the catalog file, watched when Watch is set.
	Path string

	// Watch reloads after the file changes.
	Watch bool

	// ReloadInterval reloads on a fixed schedule. 0 disables it.
	ReloadInterval time.Duration

	// Debounce delays a watch-triggered reload until events settle.
	// Default: 500ms
	Debounce time.Duration
}

// CatalogService keeps the published catalog fresh under supervision.
// A failed reload leaves the current snapshot in place.
type CatalogService struct {
	store      CatalogReloader
	config     CatalogServiceConfig
	logger     zerolog.Logger
	newWatcher func(path string) FileWatcher
	name       string

	reloads  atomic.Int64
	failures atomic.Int64
}

// NewCatalogService creates a catalog reloader service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCatalogService(store CatalogReloader, cfg CatalogServiceConfig, logger zerolog.Logger) *CatalogService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultWatchDebounce
	}
	return &CatalogService{
		store:  store,
		config: cfg,
		logger: logger.With().Str("service", "catalog-reloader").Logger(),
		newWatcher: func(path string) FileWatcher {
			return file.Provider(path)
		},
		name: "catalog-reloader",
	}
}

// Serve implements suture.Service.
func (s *CatalogService) Serve(ctx context.Context) error {
	s.logger.Info().
		Str("path", s.config.Path).
		Bool("watch", s.config.Watch).
		Dur("reload_interval", s.config.ReloadInterval).
		Msg("catalog reloader starting")

	changes := make(chan struct{}, 1)
	if s.config.Watch {
		w := s.newWatcher(s.config.Path)
		err := w.Watch(func(_ interface{}, err error) {
			if err != nil {
				s.logger.Warn().Err(err).Msg("catalog file watch error")
				return
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return fmt.Errorf("watch catalog file %s: %w", s.config.Path, err)
		}
		defer func() {
			if err := w.Unwatch(); err != nil {
				s.logger.Debug().Err(err).Msg("catalog file unwatch failed")
			}
		}()
	}

	var tick <-chan time.Time
	if s.config.ReloadInterval > 0 {
		ticker := time.NewTicker(s.config.ReloadInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var (
		settle  *time.Timer
		settleC <-chan time.Time
	)
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("catalog reloader shutting down")
			return ctx.Err()

		case <-tick:
			s.reload(ctx, "interval")

		case <-changes:
			if settle == nil {
				settle = time.NewTimer(s.config.Debounce)
			} else {
				settle.Reset(s.config.Debounce)
			}
			settleC = settle.C

		case <-settleC:
			settleC = nil
			s.reload(ctx, "watch")
		}
	}
}

func (s *CatalogService) reload(ctx context.Context, trigger string) {
	start := time.Now()
	c, err := s.store.Reload(ctx)
	if err != nil {
		s.failures.Add(1)
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("catalog reload failed, keeping current snapshot")
		return
	}
	s.reloads.Add(1)
	s.logger.Info().
		Str("trigger", trigger).
		Str("version", c.Version()).
		Int("items", c.Len()).
		Dur("duration", time.Since(start)).
		Msg("catalog reloaded")
}

// Reloads returns the number of successful reloads.
func (s *CatalogService) Reloads() int64 {
	return s.reloads.Load()
}

// Failures returns the number of failed reloads.
func (s *CatalogService) Failures() int64 {
	return s.failures.Load()
}

// String implements fmt.Stringer for supervisor logs.
func (s *CatalogService) String() string {
	return s.name
}
