// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// Recommender is the engine surface used by the handlers.
// *recommend.Engine implements it.
type Recommender interface {
	Initial(ctx context.Context, limit int) (*recommend.Response, error)
	ByPreferences(ctx context.Context, signals []preference.Signal, limit int) (*recommend.Response, error)
	Similar(ctx context.Context, seedID string, limit int) (*recommend.Response, error)
	Search(ctx context.Context, text string, limit int, exclude []string) (*recommend.Response, error)
	ByGenres(ctx context.Context, genres []string, limit int) (*recommend.Response, error)
	Genres() ([]string, error)
	Item(id string) (*recommend.ItemView, error)
	Stats() recommend.Stats
}

// Handler serves the API endpoints.
type Handler struct {
	engine       Recommender
	defaultLimit int
	startTime    time.Time
}

// NewHandler creates a handler. defaultLimit applies when a request omits
// its limit; values below one fall back to the engine default.
func NewHandler(engine Recommender, defaultLimit int) *Handler {
	if defaultLimit < 1 {
		defaultLimit = recommend.DefaultConfig().DefaultLimit
	}
	return &Handler{
		engine:       engine,
		defaultLimit: defaultLimit,
		startTime:    time.Now(),
	}
}
