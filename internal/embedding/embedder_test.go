// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package embedding

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockModel records calls and returns a fixed vector unless fn is set.
type mockModel struct {
	calls atomic.Int32
	mu    sync.Mutex
	texts []string
	fn    func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockModel) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx, text)
	}
	return []float32{1, 0, 0}, nil
}

func newTestEmbedder(model Model, cfg Config) *Embedder {
	return New(model, cfg, zerolog.Nop())
}

func wantReason(t *testing.T, err error, reason Reason) {
	t.Helper()
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	var uerr *UnavailableError
	if !errors.As(err, &uerr) {
		t.Fatalf("error %T is not *UnavailableError", err)
	}
	if uerr.Reason != reason {
		t.Errorf("Reason = %q, want %q", uerr.Reason, reason)
	}
}

func TestEmbed_Success(t *testing.T) {
	t.Parallel()

	model := &mockModel{}
	e := newTestEmbedder(model, Config{Dimensions: 3})

	got, err := e.Embed(context.Background(), "  Space   OPERA ")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if !slices.Equal(got, []float64{1, 0, 0}) {
		t.Errorf("Embed() = %v, want [1 0 0]", got)
	}
	if len(model.texts) != 1 || model.texts[0] != "space opera" {
		t.Errorf("model saw %q, want normalised text", model.texts)
	}
}

func TestEmbed_NotConfigured(t *testing.T) {
	t.Parallel()

	e := newTestEmbedder(nil, Config{})
	if e.Configured() {
		t.Error("Configured() = true without a model")
	}
	_, err := e.Embed(context.Background(), "anything")
	wantReason(t, err, ReasonNotConfigured)
}

func TestEmbed_EmptyText(t *testing.T) {
	t.Parallel()

	model := &mockModel{}
	e := newTestEmbedder(model, Config{})

	if _, err := e.Embed(context.Background(), " \n\t "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Embed(blank) error = %v, want ErrEmptyText", err)
	}
	if model.calls.Load() != 0 {
		t.Error("model called for blank text")
	}
}

func TestEmbed_Timeout(t *testing.T) {
	t.Parallel()

	model := &mockModel{fn: func(ctx context.Context, _ string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	e := newTestEmbedder(model, Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := e.Embed(context.Background(), "slow")
	wantReason(t, err, ReasonTimeout)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want to wrap context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Embed() took %v, timeout not applied", elapsed)
	}
}

func TestEmbed_ModelError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	model := &mockModel{fn: func(context.Context, string) ([]float32, error) {
		return nil, boom
	}}
	e := newTestEmbedder(model, Config{})

	_, err := e.Embed(context.Background(), "query")
	wantReason(t, err, ReasonModelError)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want to wrap model error", err)
	}
}

func TestEmbed_BadVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		vec    []float32
		reason Reason
	}{
		{"wrong dimension", []float32{1, 2}, ReasonDimensionMismatch},
		{"empty", []float32{}, ReasonModelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			model := &mockModel{fn: func(context.Context, string) ([]float32, error) {
				return tt.vec, nil
			}}
			e := newTestEmbedder(model, Config{Dimensions: 3})
			_, err := e.Embed(context.Background(), "query")
			wantReason(t, err, tt.reason)
		})
	}
}

func TestEmbed_CallerCancelled(t *testing.T) {
	t.Parallel()

	model := &mockModel{}
	e := newTestEmbedder(model, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, "query")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Embed() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("caller cancellation reported as ErrUnavailable")
	}
}

func TestEmbed_Cache(t *testing.T) {
	t.Parallel()

	model := &mockModel{}
	e := newTestEmbedder(model, Config{CacheSize: 16, CacheTTL: time.Minute})

	first, err := e.Embed(context.Background(), "Heist Movie")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	first[0] = 42 // callers own the slice

	second, err := e.Embed(context.Background(), "heist   movie")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if model.calls.Load() != 1 {
		t.Errorf("model calls = %d, want 1", model.calls.Load())
	}
	if second[0] != 1 {
		t.Errorf("cached vector was mutated through a returned slice: %v", second)
	}
	if hits, _, _ := e.CacheStats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
}

func TestEmbed_FailuresNotCached(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	fail.Store(true)
	model := &mockModel{fn: func(context.Context, string) ([]float32, error) {
		if fail.Load() {
			return nil, errors.New("down")
		}
		return []float32{0, 1}, nil
	}}
	e := newTestEmbedder(model, Config{CacheSize: 16})

	if _, err := e.Embed(context.Background(), "q"); err == nil {
		t.Fatal("expected first call to fail")
	}
	fail.Store(false)
	got, err := e.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("Embed() after recovery error = %v", err)
	}
	if !slices.Equal(got, []float64{0, 1}) {
		t.Errorf("Embed() = %v, want [0 1]", got)
	}
}

func TestEmbed_SingleflightCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	model := &mockModel{fn: func(context.Context, string) ([]float32, error) {
		<-release
		return []float32{1, 1}, nil
	}}
	e := newTestEmbedder(model, Config{CacheSize: 16})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Embed(context.Background(), "same query")
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Embed() error = %v", err)
		}
	}
	if n := model.calls.Load(); n != 1 {
		t.Errorf("model calls = %d, want 1", n)
	}
}

func TestEmbed_BreakerOpens(t *testing.T) {
	t.Parallel()

	model := &mockModel{fn: func(context.Context, string) ([]float32, error) {
		return nil, errors.New("down")
	}}
	cfg := DefaultBreakerConfig()
	cfg.Name = "embedding-test-breaker"
	cfg.MinRequests = 3
	cfg.Timeout = time.Hour
	e := newTestEmbedder(model, Config{Breaker: cfg})

	for i := 0; i < 3; i++ {
		_, err := e.Embed(context.Background(), "q")
		wantReason(t, err, ReasonModelError)
	}
	if got := e.BreakerState(); got != "open" {
		t.Fatalf("BreakerState() = %q, want open", got)
	}

	_, err := e.Embed(context.Background(), "q")
	wantReason(t, err, ReasonRejected)
	if n := model.calls.Load(); n != 3 {
		t.Errorf("model calls = %d, want 3 (open breaker must not call the model)", n)
	}
}

func TestEmbed_RateLimited(t *testing.T) {
	t.Parallel()

	model := &mockModel{}
	e := newTestEmbedder(model, Config{
		Timeout:           20 * time.Millisecond,
		RequestsPerSecond: 0.001,
		Burst:             1,
	})

	if _, err := e.Embed(context.Background(), "first"); err != nil {
		t.Fatalf("first Embed() error = %v", err)
	}
	_, err := e.Embed(context.Background(), "second")
	wantReason(t, err, ReasonRejected)
	if n := model.calls.Load(); n != 1 {
		t.Errorf("model calls = %d, want 1", n)
	}
}

func TestUnavailableError(t *testing.T) {
	t.Parallel()

	err := NewUnavailableError(ReasonNotConfigured, nil)
	if got, want := err.Error(), "text embedding unavailable (not_configured)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := NewUnavailableError(ReasonModelError, errors.New("boom"))
	if got, want := wrapped.Error(), "text embedding unavailable (model_error): boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestModelFunc(t *testing.T) {
	t.Parallel()

	e := newTestEmbedder(ModelFunc(func(context.Context, string) ([]float32, error) {
		return []float32{0.5}, nil
	}), Config{})
	got, err := e.Embed(context.Background(), "x")
	if err != nil || !slices.Equal(got, []float64{0.5}) {
		t.Errorf("Embed() = %v, %v", got, err)
	}
}
