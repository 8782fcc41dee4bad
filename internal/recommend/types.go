// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/preference"
)

// Mode identifies the entry point that produced a response.
type Mode int

const (
	// ModeInitial serves the cold-start ordering.
	ModeInitial Mode = iota
	// ModePreferences ranks by a like/dislike history.
	ModePreferences
	// ModeSimilar ranks by similarity to one seed item.
	ModeSimilar
	// ModeText ranks by similarity to a free-text query.
	ModeText
	// ModeGenres ranks by similarity to a set of genres.
	ModeGenres
)

// String returns the metric label and wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeInitial:
		return "initial"
	case ModePreferences:
		return "preferences"
	case ModeSimilar:
		return "similar"
	case ModeText:
		return "text"
	case ModeGenres:
		return "genres"
	default:
		return "unknown"
	}
}

// Recommendation is one ranked item.
type Recommendation struct {
	ItemID string   `json:"item_id"`
	Title  string   `json:"title,omitempty"`
	Score  float64  `json:"score"`
	Genres []string `json:"genres,omitempty"`
}

// Response contains ranked items plus metadata about the call.
type Response struct {
	Items    []Recommendation `json:"items"`
	Metadata ResponseMetadata `json:"metadata"`
}

// IDs returns the item ids in rank order.
func (r *Response) IDs() []string {
	ids := make([]string, len(r.Items))
	for i := range r.Items {
		ids[i] = r.Items[i].ItemID
	}
	return ids
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID      string    `json:"request_id,omitempty"`
	Mode           string    `json:"mode"`
	ColdStart      bool      `json:"cold_start,omitempty"`
	Metric         string    `json:"metric"`
	CatalogVersion string    `json:"catalog_version"`
	Limit          int       `json:"limit"`
	LatencyMS      int64     `json:"latency_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// ItemView is the public description of one catalog item.
type ItemView struct {
	ID           string   `json:"id"`
	Title        string   `json:"title,omitempty"`
	Popularity   float64  `json:"popularity"`
	Genres       []string `json:"genres,omitempty"`
	HasEmbedding bool     `json:"has_embedding"`
}

// Stats summarises engine state for health and admin endpoints.
type Stats struct {
	Ready          bool      `json:"ready"`
	CatalogVersion string    `json:"catalog_version,omitempty"`
	CatalogSource  string    `json:"catalog_source,omitempty"`
	LoadedAt       time.Time `json:"loaded_at"`
	Items          int       `json:"items"`
	Dimensions     int       `json:"dimensions"`
	EmbeddedItems  int       `json:"embedded_items"`
	Genres         int       `json:"genres"`
	TextSearch     bool      `json:"text_search"`
	ColdStart      string    `json:"cold_start"`
	Metric         string    `json:"metric"`
	MaxResults     int       `json:"max_results"`
	Requests       int64     `json:"requests"`
	Errors         int64     `json:"errors"`
}

// CatalogSource hands out the currently published catalog snapshot.
// *catalog.Store implements it.
type CatalogSource interface {
	Current() *catalog.Catalog
}

// Aggregator builds a query vector from preference signals.
// *preference.Aggregator implements it.
type Aggregator interface {
	Aggregate(signals []preference.Signal, lookup preference.Lookup) ([]float64, error)
}

// TextEmbedder maps free text to an embedding vector.
// *embedding.Embedder implements it.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

var (
	// ErrInvalidQuery matches every *InvalidQueryError.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrCatalogNotReady is returned before the first catalog is published.
	ErrCatalogNotReady = errors.New("catalog not loaded")
)

// InvalidQueryError reports a malformed request. It is raised before the
// catalog is consulted.
type InvalidQueryError struct {
	Field  string
	Reason string
}

func invalidQuery(field, reason string) *InvalidQueryError {
	return &InvalidQueryError{Field: field, Reason: reason}
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query: %s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidQuery.
func (e *InvalidQueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}
