// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/embedding"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/similarity"
)

// Engine answers recommendation queries against the published catalog.
// It holds no per-caller state and is safe for concurrent use. Each call
// takes one catalog snapshot and uses it throughout, so a concurrent reload
// never mixes two catalogs in one answer.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	store      CatalogSource
	aggregator Aggregator
	embedder   TextEmbedder

	// coldStart caches the mean_features ranking for one catalog version
	coldStart atomic.Pointer[coldStartRanking]

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

type coldStartRanking struct {
	version string
	results []similarity.Result
}

// NewEngine creates a recommendation engine. aggregator may be nil, in which
// case a preference.Aggregator is built from cfg.DislikeWeight. embedder may
// be nil, in which case text search reports the feature as unavailable.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, store CatalogSource, aggregator Aggregator, embedder TextEmbedder, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, errors.New("catalog source is required")
	}
	if aggregator == nil {
		agg, err := preference.NewAggregator(cfg.DislikeWeight)
		if err != nil {
			return nil, err
		}
		aggregator = agg
	}

	return &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		store:      store,
		aggregator: aggregator,
		embedder:   embedder,
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Initial returns the cold-start ordering.
func (e *Engine) Initial(ctx context.Context, limit int) (*Response, error) {
	call := e.begin(ctx, ModeInitial, limit)

	cat, err := e.snapshot()
	if err != nil {
		return call.fail(err)
	}
	if call.limit == 0 {
		return call.done(cat, nil)
	}

	results, err := e.initialResults(ctx, cat, call.limit)
	if err != nil {
		return call.fail(err)
	}
	call.coldStart = true
	return call.done(cat, results)
}

// ByPreferences ranks items against a like/dislike history. Every rated item
// is excluded from the result. An empty history is served the cold-start
// ordering and the aggregator is not consulted.
func (e *Engine) ByPreferences(ctx context.Context, signals []preference.Signal, limit int) (*Response, error) {
	call := e.begin(ctx, ModePreferences, limit)

	for i := range signals {
		if strings.TrimSpace(signals[i].ItemID) == "" {
			return call.fail(invalidQuery("preferences", fmt.Sprintf("entry %d has an empty item id", i)))
		}
		if p := signals[i].Polarity; math.IsNaN(p) || math.IsInf(p, 0) {
			return call.fail(invalidQuery("preferences", fmt.Sprintf("entry %d has a non-finite polarity", i)))
		}
	}

	cat, err := e.snapshot()
	if err != nil {
		return call.fail(err)
	}
	if call.limit == 0 {
		return call.done(cat, nil)
	}

	if len(signals) == 0 {
		results, err := e.initialResults(ctx, cat, call.limit)
		if err != nil {
			return call.fail(err)
		}
		call.coldStart = true
		return call.done(cat, results)
	}

	query, err := e.aggregator.Aggregate(signals, cat)
	if err != nil {
		return call.fail(err)
	}

	exclude := make(similarity.Set, len(signals))
	for i := range signals {
		exclude[signals[i].ItemID] = struct{}{}
	}

	results, err := similarity.TopK(ctx, query, featureCandidates(cat), call.limit, exclude, e.config.Metric)
	if err != nil {
		return call.fail(err)
	}
	return call.done(cat, results)
}

// Similar ranks items against one seed item. The seed never appears in its
// own result.
func (e *Engine) Similar(ctx context.Context, seedID string, limit int) (*Response, error) {
	call := e.begin(ctx, ModeSimilar, limit)

	seedID = strings.TrimSpace(seedID)
	if seedID == "" {
		return call.fail(invalidQuery("item_id", "is empty"))
	}

	cat, err := e.snapshot()
	if err != nil {
		return call.fail(err)
	}
	seed, ok := cat.Get(seedID)
	if !ok {
		return call.fail(catalog.NewUnknownItemError(seedID))
	}
	if call.limit == 0 {
		return call.done(cat, nil)
	}

	results, err := similarity.TopK(ctx, seed.Features, featureCandidates(cat), call.limit, similarity.NewSet(seedID), e.config.Metric)
	if err != nil {
		return call.fail(err)
	}
	return call.done(cat, results)
}

// Search ranks items by similarity between their text embedding and the
// embedded query. Items without an embedding are never returned. Ids in
// exclude are dropped whether or not they exist in the catalog.
func (e *Engine) Search(ctx context.Context, text string, limit int, exclude []string) (*Response, error) {
	call := e.begin(ctx, ModeText, limit)

	if strings.TrimSpace(text) == "" {
		return call.fail(invalidQuery("q", "is empty"))
	}

	cat, err := e.snapshot()
	if err != nil {
		return call.fail(err)
	}
	if e.embedder == nil {
		return call.fail(embedding.NewUnavailableError(embedding.ReasonNotConfigured, nil))
	}
	if !cat.HasEmbeddings() {
		return call.fail(embedding.NewUnavailableError(embedding.ReasonNotConfigured, errors.New("catalog has no text embeddings")))
	}
	if call.limit == 0 {
		return call.done(cat, nil)
	}

	query, err := e.embedder.Embed(ctx, text)
	if errors.Is(err, embedding.ErrEmptyText) {
		return call.fail(invalidQuery("q", "is empty"))
	}
	if err != nil {
		return call.fail(err)
	}
	if len(query) != cat.EmbeddingDimensions() {
		return call.fail(embedding.NewUnavailableError(embedding.ReasonDimensionMismatch,
			fmt.Errorf("query has %d dimensions, catalog embeddings have %d", len(query), cat.EmbeddingDimensions())))
	}

	results, err := similarity.TopK(ctx, query, embeddingCandidates(cat), call.limit, similarity.NewSet(exclude...), e.config.Metric)
	if err != nil {
		return call.fail(err)
	}
	return call.done(cat, results)
}

// ByGenres ranks items against the normalised multi-hot vector of the given
// genre names. Names match the catalog's genre columns ignoring case.
func (e *Engine) ByGenres(ctx context.Context, genres []string, limit int) (*Response, error) {
	call := e.begin(ctx, ModeGenres, limit)

	if len(genres) == 0 {
		return call.fail(invalidQuery("genres", "is empty"))
	}
	for _, g := range genres {
		if strings.TrimSpace(g) == "" {
			return call.fail(invalidQuery("genres", "contains an empty name"))
		}
	}

	cat, err := e.snapshot()
	if err != nil {
		return call.fail(err)
	}

	query := make([]float64, cat.Dimensions())
	var unknown []string
	for _, g := range genres {
		idx, ok := cat.GenreFeature(g)
		if !ok {
			unknown = append(unknown, strings.TrimSpace(g))
			continue
		}
		query[idx] = 1
	}
	if len(unknown) > 0 {
		return call.fail(invalidQuery("genres", "has unknown genre "+strings.Join(unknown, ", ")))
	}
	if call.limit == 0 {
		return call.done(cat, nil)
	}

	results, err := similarity.TopK(ctx, similarity.Normalize(query), featureCandidates(cat), call.limit, nil, e.config.Metric)
	if err != nil {
		return call.fail(err)
	}
	return call.done(cat, results)
}

// Genres returns the genre names known to the current catalog.
func (e *Engine) Genres() ([]string, error) {
	cat, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return cat.Genres(), nil
}

// Item describes one catalog item.
func (e *Engine) Item(id string) (*ItemView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, invalidQuery("item_id", "is empty")
	}
	cat, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	it, ok := cat.Get(id)
	if !ok {
		return nil, catalog.NewUnknownItemError(id)
	}
	return &ItemView{
		ID:           it.ID,
		Title:        it.Title,
		Popularity:   it.Popularity,
		Genres:       cat.ItemGenres(&it),
		HasEmbedding: it.HasEmbedding(),
	}, nil
}

// Stats returns the engine and catalog state.
func (e *Engine) Stats() Stats {
	s := Stats{
		ColdStart:  string(e.config.ColdStart),
		Metric:     e.config.Metric.String(),
		MaxResults: e.config.MaxResults,
		Requests:   e.requestCount.Load(),
		Errors:     e.errorCount.Load(),
	}
	cat := e.store.Current()
	if cat == nil {
		return s
	}
	s.Ready = true
	s.CatalogVersion = cat.Version()
	s.CatalogSource = cat.Source()
	s.LoadedAt = cat.LoadedAt()
	s.Items = cat.Len()
	s.Dimensions = cat.Dimensions()
	s.EmbeddedItems = cat.EmbeddedCount()
	s.Genres = len(cat.Genres())
	s.TextSearch = e.embedder != nil && cat.HasEmbeddings()
	return s
}

func (e *Engine) snapshot() (*catalog.Catalog, error) {
	cat := e.store.Current()
	if cat == nil {
		return nil, ErrCatalogNotReady
	}
	return cat, nil
}

// initialResults returns the first limit items of the cold-start ordering.
func (e *Engine) initialResults(ctx context.Context, cat *catalog.Catalog, limit int) ([]similarity.Result, error) {
	if e.config.ColdStart == ColdStartMeanFeatures {
		ranking, err := e.meanFeatureRanking(ctx, cat)
		if err != nil {
			return nil, err
		}
		return ranking[:min(limit, len(ranking))], nil
	}

	results := make([]similarity.Result, 0, min(limit, cat.Len()))
	for it := range cat.PopularityOrder() {
		if len(results) == limit {
			break
		}
		results = append(results, similarity.Result{ID: it.ID, Score: it.Popularity})
	}
	return results, nil
}

// meanFeatureRanking computes the mean_features ordering once per catalog
// version, MaxResults deep.
func (e *Engine) meanFeatureRanking(ctx context.Context, cat *catalog.Catalog) ([]similarity.Result, error) {
	if cached := e.coldStart.Load(); cached != nil && cached.version == cat.Version() {
		return cached.results, nil
	}

	results, err := similarity.TopK(ctx, cat.MeanFeatures(), featureCandidates(cat), e.config.MaxResults, nil, e.config.Metric)
	if err != nil {
		return nil, err
	}
	e.coldStart.Store(&coldStartRanking{version: cat.Version(), results: results})
	e.logger.Debug().Str("catalog_version", cat.Version()).Int("items", len(results)).Msg("cold start ranking computed")
	return results, nil
}

func featureCandidates(cat *catalog.Catalog) iter.Seq[similarity.Candidate] {
	return func(yield func(similarity.Candidate) bool) {
		for it := range cat.All() {
			if !yield(similarity.Candidate{ID: it.ID, Vector: it.Features}) {
				return
			}
		}
	}
}

// embeddingCandidates yields a nil vector for items without an embedding,
// which TopK skips.
func embeddingCandidates(cat *catalog.Catalog) iter.Seq[similarity.Candidate] {
	return func(yield func(similarity.Candidate) bool) {
		for it := range cat.All() {
			if !yield(similarity.Candidate{ID: it.ID, Vector: it.Embedding}) {
				return
			}
		}
	}
}

// call tracks one engine request from start to response.
type call struct {
	e         *Engine
	ctx       context.Context
	mode      Mode
	limit     int
	start     time.Time
	coldStart bool
}

func (e *Engine) begin(ctx context.Context, mode Mode, limit int) *call {
	e.requestCount.Add(1)
	return &call{
		e:     e,
		ctx:   ctx,
		mode:  mode,
		limit: e.config.ClampLimit(limit),
		start: time.Now(),
	}
}

func (c *call) done(cat *catalog.Catalog, results []similarity.Result) (*Response, error) {
	items := make([]Recommendation, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		rec := Recommendation{ItemID: r.ID, Score: r.Score}
		if it, ok := cat.Get(r.ID); ok {
			rec.Title = it.Title
			rec.Genres = cat.ItemGenres(&it)
		}
		items = append(items, rec)
	}

	elapsed := time.Since(c.start)
	metrics.RecordRecommendation(c.mode.String(), "success", len(items), elapsed)

	logging.CtxDebug(c.ctx).
		Str("component", "recommend").
		Str("mode", c.mode.String()).
		Int("limit", c.limit).
		Int("returned", len(items)).
		Bool("cold_start", c.coldStart).
		Dur("elapsed", elapsed).
		Msg("recommendation complete")

	return &Response{
		Items: items,
		Metadata: ResponseMetadata{
			RequestID:      logging.RequestIDFromContext(c.ctx),
			Mode:           c.mode.String(),
			ColdStart:      c.coldStart,
			Metric:         c.e.config.Metric.String(),
			CatalogVersion: cat.Version(),
			Limit:          c.limit,
			LatencyMS:      elapsed.Milliseconds(),
			Timestamp:      time.Now(),
		},
	}, nil
}

func (c *call) fail(err error) (*Response, error) {
	outcome := Outcome(err)
	metrics.RecordRecommendation(c.mode.String(), outcome, 0, time.Since(c.start))

	if outcome == "error" {
		c.e.errorCount.Add(1)
		c.e.logger.Error().Err(err).Str("mode", c.mode.String()).Msg("recommendation failed")
	} else {
		logging.CtxDebug(c.ctx).Err(err).Str("mode", c.mode.String()).Str("outcome", outcome).Msg("recommendation rejected")
	}
	return nil, err
}

// Outcome classifies an engine error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidQuery):
		return "invalid_query"
	case errors.Is(err, catalog.ErrUnknownItem):
		return "unknown_item"
	case errors.Is(err, embedding.ErrUnavailable):
		return "embedding_unavailable"
	case errors.Is(err, ErrCatalogNotReady):
		return "not_ready"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
