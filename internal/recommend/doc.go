// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend is the recommendation orchestrator. It turns each kind
// of request into a query vector, an exclusion set and a limit, and ranks the
// catalog with the similarity package.
//
// # Entry Points
//
//   - Initial: cold-start ordering (popularity, or similarity to the mean
//     feature vector)
//   - ByPreferences: aggregated like/dislike history, rated items excluded
//   - Similar: one seed item, the seed excluded
//   - Search: free-text query through the text embedder, only items with an
//     embedding are ranked
//   - ByGenres: normalised multi-hot genre vector
//
// Every entry point clamps the limit to [0, MaxResults], returns unique ids
// ordered by score descending then id ascending, and records metrics.
//
// # Errors
//
//   - *InvalidQueryError (ErrInvalidQuery): malformed input
//   - *catalog.UnknownItemError (catalog.ErrUnknownItem): unknown seed or
//     rated id
//   - *embedding.UnavailableError (embedding.ErrUnavailable): text search
//     cannot be served
//   - ErrCatalogNotReady: no catalog published yet
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, nil, embedder, logger)
//	resp, err := engine.Similar(ctx, "tt0133093", 10)
//
// # Thread Safety
//
// The engine holds no per-caller state. Each call reads the catalog pointer
// once, so a concurrent reload is seen either fully or not at all.
package recommend
