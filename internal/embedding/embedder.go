// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 5 * time.Second

// Model maps normalised text to a vector. Implementations must honour ctx.
type Model interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ModelFunc adapts a function to Model.
type ModelFunc func(ctx context.Context, text string) ([]float32, error)

// Embed calls f.
func (f ModelFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// Config configures an Embedder. Zero values select defaults; a zero
// RequestsPerSecond or CacheSize disables that layer.
type Config struct {
	Timeout       time.Duration
	MaxInputRunes int

	// Dimensions is the expected vector length. 0 accepts any length.
	Dimensions int

	RequestsPerSecond float64
	Burst             int

	CacheSize int
	CacheTTL  time.Duration

	Breaker BreakerConfig
}

// Embedder produces query vectors from free text.
type Embedder struct {
	model   Model
	cfg     Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]float64]
	cache   *cache.LRU[[]float64]
	flight  singleflight.Group
	logger  zerolog.Logger
}

// New creates an Embedder. model may be nil, in which case every call
// reports ReasonNotConfigured.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(model Model, cfg Config, logger zerolog.Logger) *Embedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxInputRunes <= 0 {
		cfg.MaxInputRunes = DefaultMaxInputRunes
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker = DefaultBreakerConfig()
	}

	e := &Embedder{
		model:  model,
		cfg:    cfg,
		logger: logger.With().Str("component", "embedding").Logger(),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	if cfg.CacheSize > 0 {
		e.cache = cache.NewLRU[[]float64](cfg.CacheSize, cfg.CacheTTL)
	}
	e.breaker = newBreaker(cfg.Breaker, e.logger)
	return e
}

// Configured reports whether a model is attached.
func (e *Embedder) Configured() bool {
	return e.model != nil
}

// Dimensions returns the configured vector length, 0 when unchecked.
func (e *Embedder) Dimensions() int {
	return e.cfg.Dimensions
}

// Embed returns the vector for text. The returned slice is owned by the
// caller.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	query := Normalize(text, e.cfg.MaxInputRunes)
	if query == "" {
		return nil, ErrEmptyText
	}
	if e.model == nil {
		metrics.RecordEmbedding(string(ReasonNotConfigured), 0, false)
		return nil, NewUnavailableError(ReasonNotConfigured, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.cache != nil {
		if vec, ok := e.cache.Get(query); ok {
			metrics.RecordEmbedding("cache_hit", 0, false)
			return slices.Clone(vec), nil
		}
	}

	ch := e.flight.DoChan(query, func() (any, error) {
		return e.call(ctx, query)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		vec, ok := res.Val.([]float64)
		if !ok {
			return nil, NewUnavailableError(ReasonModelError, fmt.Errorf("unexpected result type %T", res.Val))
		}
		return slices.Clone(vec), nil
	}
}

// call performs one shared model round trip. It is detached from the first
// caller's cancellation so that other callers waiting on the same flight are
// unaffected; the timeout still bounds it.
func (e *Embedder) call(parent context.Context, query string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), e.cfg.Timeout)
	defer cancel()

	start := time.Now()

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			metrics.RecordEmbedding(string(ReasonRejected), time.Since(start), false)
			return nil, NewUnavailableError(ReasonRejected, fmt.Errorf("rate limit: %w", err))
		}
	}

	vec, err := e.breaker.Execute(func() ([]float64, error) {
		raw, err := e.model.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		return e.convert(raw)
	})
	elapsed := time.Since(start)

	if err != nil {
		uerr := e.classify(ctx, err)
		metrics.RecordEmbedding(string(uerr.Reason), elapsed, uerr.Reason != ReasonRejected)
		if uerr.Reason == ReasonRejected {
			metrics.CircuitBreakerRequests.WithLabelValues(e.cfg.Breaker.Name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(e.cfg.Breaker.Name, "failure").Inc()
		}
		e.logger.Warn().Err(err).Str("reason", string(uerr.Reason)).Dur("elapsed", elapsed).Msg("Embedding request failed")
		return nil, uerr
	}

	metrics.CircuitBreakerRequests.WithLabelValues(e.cfg.Breaker.Name, "success").Inc()
	metrics.RecordEmbedding("success", elapsed, true)

	if e.cache != nil {
		e.cache.Add(query, vec)
	}
	return vec, nil
}

func (e *Embedder) convert(raw []float32) ([]float64, error) {
	if len(raw) == 0 {
		return nil, errors.New("model returned an empty vector")
	}
	if e.cfg.Dimensions > 0 && len(raw) != e.cfg.Dimensions {
		return nil, &dimensionError{got: len(raw), want: e.cfg.Dimensions}
	}
	vec := make([]float64, len(raw))
	for i, x := range raw {
		v := float64(x)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("model returned a non-finite component")
		}
		vec[i] = v
	}
	return vec, nil
}

type dimensionError struct {
	got, want int
}

func (d *dimensionError) Error() string {
	return fmt.Sprintf("model returned %d dimensions, want %d", d.got, d.want)
}

func (e *Embedder) classify(ctx context.Context, err error) *UnavailableError {
	var dim *dimensionError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return NewUnavailableError(ReasonRejected, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return NewUnavailableError(ReasonTimeout, fmt.Errorf("model call exceeded %s: %w", e.cfg.Timeout, context.DeadlineExceeded))
	case errors.As(err, &dim):
		return NewUnavailableError(ReasonDimensionMismatch, err)
	default:
		return NewUnavailableError(ReasonModelError, err)
	}
}

// CacheStats returns cache hit/miss counters, zeros when caching is off.
func (e *Embedder) CacheStats() (hits, misses int64, size int) {
	if e.cache == nil {
		return 0, 0, 0
	}
	return e.cache.Stats()
}

// BreakerState returns the circuit breaker state as a string.
func (e *Embedder) BreakerState() string {
	return stateToString(e.breaker.State())
}
