// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// testResponse mirrors APIResponse with a raw data payload.
type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

type fixedEmbedder struct {
	calls atomic.Int32
	vec   []float64
}

func (f *fixedEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	f.calls.Add(1)
	return slices.Clone(f.vec), nil
}

// testCatalog: A=[1,0] B=[0,1] C=[0.9,0.1]; A and C carry text embeddings.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Item{
		{ID: "A", Title: "Alpha", Popularity: 10, Features: []float64{1, 0}, Embedding: []float64{1, 0, 0}},
		{ID: "B", Title: "Bravo", Popularity: 30, Features: []float64{0, 1}},
		{ID: "C", Title: "Charlie", Popularity: 20, Features: []float64{0.9, 0.1}, Embedding: []float64{0, 1, 0}},
	}, []string{"genre_Action", "genre_Romance"}, "test")
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

type serverOptions struct {
	cat      *catalog.Catalog
	embedder recommend.TextEmbedder
	mw       *ChiMiddlewareConfig
}

func newTestServer(t *testing.T, opts serverOptions) http.Handler {
	t.Helper()

	store := catalog.NewStore(catalog.StoreConfig{}, zerolog.Nop())
	if opts.cat != nil {
		store.Swap(opts.cat)
	}

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), store, nil, opts.embedder, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	mwCfg := opts.mw
	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitDisabled = true
	}
	return NewRouter(NewHandler(engine, 20), NewChiMiddleware(mwCfg), 5*time.Second).SetupChi()
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, testResponse) {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp testResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func decodeRecommendations(t *testing.T, resp testResponse) *recommend.Response {
	t.Helper()
	var out recommend.Response
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		t.Fatalf("decode recommendations: %v", err)
	}
	return &out
}

func TestRecommendationEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{cat: testCatalog(t), embedder: &fixedEmbedder{vec: []float64{1, 0, 0}}})

	tests := []struct {
		name    string
		method  string
		target  string
		body    string
		wantIDs []string
		mode    string
	}{
		{"initial by popularity", http.MethodGet, "/api/v1/recommendations/initial?limit=2", "", []string{"B", "C"}, "initial"},
		{"initial default limit", http.MethodGet, "/api/v1/recommendations/initial", "", []string{"B", "C", "A"}, "initial"},
		{"like A ranks C before B", http.MethodPost, "/api/v1/recommendations/preferences", `{"preferences":[{"item_id":"A","polarity":1}],"limit":5}`, []string{"C", "B"}, "preferences"},
		{"empty history is cold start", http.MethodPost, "/api/v1/recommendations/preferences", `{"preferences":[]}`, []string{"B", "C", "A"}, "preferences"},
		{"similar excludes seed", http.MethodGet, "/api/v1/recommendations/similar/A?limit=2", "", []string{"C", "B"}, "similar"},
		{"search skips items without embeddings", http.MethodGet, "/api/v1/recommendations/search?q=space+opera", "", []string{"A", "C"}, "text"},
		{"search exclude", http.MethodGet, "/api/v1/recommendations/search?q=space&exclude=A,,unknown", "", []string{"C"}, "text"},
		{"genres case-insensitive", http.MethodGet, "/api/v1/recommendations/genres?genres=action&limit=1", "", []string{"A"}, "genres"},
		{"limit zero", http.MethodGet, "/api/v1/recommendations/similar/A?limit=0", "", []string{}, "similar"},
		{"limit above max is clamped", http.MethodGet, "/api/v1/recommendations/initial?limit=100000", "", []string{"B", "C", "A"}, "initial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, resp := doRequest(t, srv, tt.method, tt.target, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if !resp.Success {
				t.Fatalf("success = false: %+v", resp.Error)
			}

			got := decodeRecommendations(t, resp)
			if ids := got.IDs(); !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, tt.wantIDs)
			}
			if got.Metadata.Mode != tt.mode {
				t.Errorf("mode = %q, want %q", got.Metadata.Mode, tt.mode)
			}
			if got.Metadata.RequestID == "" || got.Metadata.RequestID != rec.Header().Get("X-Request-ID") {
				t.Errorf("metadata request id %q does not match header %q", got.Metadata.RequestID, rec.Header().Get("X-Request-ID"))
			}
			if resp.Meta == nil || resp.Meta.Count == nil || *resp.Meta.Count != len(tt.wantIDs) {
				t.Errorf("meta count = %+v, want %d", resp.Meta, len(tt.wantIDs))
			}
		})
	}
}

func TestRecommendationErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{cat: testCatalog(t)})

	tests := []struct {
		name     string
		method   string
		target   string
		body     string
		status   int
		code     string
		checkErr func(t *testing.T, e *APIError)
	}{
		{
			name: "unknown seed", method: http.MethodGet, target: "/api/v1/recommendations/similar/ZZ",
			status: http.StatusNotFound, code: ErrCodeUnknownItem,
			checkErr: func(t *testing.T, e *APIError) {
				details, _ := e.Details.(map[string]interface{})
				ids, _ := details["ids"].([]interface{})
				if len(ids) != 1 || ids[0] != "ZZ" {
					t.Errorf("details = %v, want ids [ZZ]", e.Details)
				}
			},
		},
		{
			name: "unknown preference ids", method: http.MethodPost, target: "/api/v1/recommendations/preferences",
			body:   `{"preferences":[{"item_id":"Z","polarity":1},{"item_id":"Y","polarity":-1}]}`,
			status: http.StatusNotFound, code: ErrCodeUnknownItem,
			checkErr: func(t *testing.T, e *APIError) {
				details, _ := e.Details.(map[string]interface{})
				ids, _ := details["ids"].([]interface{})
				if len(ids) != 2 || ids[0] != "Y" || ids[1] != "Z" {
					t.Errorf("details = %v, want ids [Y Z]", e.Details)
				}
			},
		},
		{
			name: "malformed body", method: http.MethodPost, target: "/api/v1/recommendations/preferences",
			body: `{"preferences":`, status: http.StatusBadRequest, code: ErrCodeBadRequest,
		},
		{
			name: "unknown body field", method: http.MethodPost, target: "/api/v1/recommendations/preferences",
			body: `{"prefs":[]}`, status: http.StatusBadRequest, code: ErrCodeBadRequest,
		},
		{
			name: "missing polarity", method: http.MethodPost, target: "/api/v1/recommendations/preferences",
			body: `{"preferences":[{"item_id":"A"}]}`, status: http.StatusBadRequest, code: ErrCodeValidationFailed,
			checkErr: func(t *testing.T, e *APIError) {
				details, _ := e.Details.(map[string]interface{})
				if details["field"] != "polarity" {
					t.Errorf("details = %v, want field polarity", e.Details)
				}
			},
		},
		{
			name: "blank item id", method: http.MethodPost, target: "/api/v1/recommendations/preferences",
			body: `{"preferences":[{"item_id":"  ","polarity":1}]}`, status: http.StatusBadRequest, code: ErrCodeValidationFailed,
		},
		{
			name: "negative body limit", method: http.MethodPost, target: "/api/v1/recommendations/preferences",
			body: `{"preferences":[],"limit":-1}`, status: http.StatusBadRequest, code: ErrCodeValidationFailed,
		},
		{
			name: "non-integer limit", method: http.MethodGet, target: "/api/v1/recommendations/initial?limit=ten",
			status: http.StatusBadRequest, code: ErrCodeInvalidQuery,
			checkErr: func(t *testing.T, e *APIError) {
				details, _ := e.Details.(map[string]interface{})
				if details["field"] != "limit" {
					t.Errorf("details = %v, want field limit", e.Details)
				}
			},
		},
		{
			name: "negative query limit", method: http.MethodGet, target: "/api/v1/recommendations/initial?limit=-3",
			status: http.StatusBadRequest, code: ErrCodeInvalidQuery,
		},
		{
			name: "blank search text", method: http.MethodGet, target: "/api/v1/recommendations/search?q=%20%20",
			status: http.StatusBadRequest, code: ErrCodeInvalidQuery,
		},
		{
			name: "search text too long", method: http.MethodGet, target: "/api/v1/recommendations/search?q=" + strings.Repeat("a", 1001),
			status: http.StatusBadRequest, code: ErrCodeValidationFailed,
		},
		{
			name: "search without embedder", method: http.MethodGet, target: "/api/v1/recommendations/search?q=heist",
			status: http.StatusServiceUnavailable, code: ErrCodeFeatureUnavailable,
			checkErr: func(t *testing.T, e *APIError) {
				details, _ := e.Details.(map[string]interface{})
				if details["reason"] != "not_configured" {
					t.Errorf("details = %v, want reason not_configured", e.Details)
				}
			},
		},
		{
			name: "missing genres", method: http.MethodGet, target: "/api/v1/recommendations/genres",
			status: http.StatusBadRequest, code: ErrCodeInvalidQuery,
		},
		{
			name: "unknown genre", method: http.MethodGet, target: "/api/v1/recommendations/genres?genres=Western",
			status: http.StatusBadRequest, code: ErrCodeInvalidQuery,
		},
		{
			name: "unknown route", method: http.MethodGet, target: "/api/v1/nothing-here",
			status: http.StatusNotFound, code: ErrCodeNotFound,
		},
		{
			name: "wrong method", method: http.MethodDelete, target: "/api/v1/recommendations/initial",
			status: http.StatusMethodNotAllowed, code: ErrCodeMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec, resp := doRequest(t, srv, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if resp.Success || resp.Error == nil {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
			if resp.Error.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.code)
			}
			if resp.Error.RequestID == "" {
				t.Error("error envelope has no request id")
			}
			if tt.checkErr != nil {
				tt.checkErr(t, resp.Error)
			}
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{cat: testCatalog(t)})

	t.Run("genres", func(t *testing.T) {
		t.Parallel()
		rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/genres", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var genres []string
		if err := json.Unmarshal(resp.Data, &genres); err != nil {
			t.Fatalf("decode genres: %v", err)
		}
		if !slices.Equal(genres, []string{"Action", "Romance"}) {
			t.Errorf("genres = %v", genres)
		}
	})

	t.Run("item", func(t *testing.T) {
		t.Parallel()
		rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/items/A", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var item recommend.ItemView
		if err := json.Unmarshal(resp.Data, &item); err != nil {
			t.Fatalf("decode item: %v", err)
		}
		if item.ID != "A" || item.Title != "Alpha" || !item.HasEmbedding {
			t.Errorf("item = %+v", item)
		}
	})

	t.Run("unknown item", func(t *testing.T) {
		t.Parallel()
		rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/items/nope", "")
		if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != ErrCodeUnknownItem {
			t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}

func TestCatalogNotReady(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})

	targets := []string{
		"/api/v1/recommendations/initial",
		"/api/v1/recommendations/similar/A",
		"/api/v1/recommendations/genres?genres=Action",
		"/api/v1/genres",
		"/api/v1/items/A",
	}
	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			t.Parallel()
			rec, resp := doRequest(t, srv, http.MethodGet, target, "")
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != ErrCodeCatalogNotReady {
				t.Errorf("error = %+v, want %s", resp.Error, ErrCodeCatalogNotReady)
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	ready := newTestServer(t, serverOptions{cat: testCatalog(t)})
	empty := newTestServer(t, serverOptions{})

	tests := []struct {
		name   string
		srv    http.Handler
		target string
		status int
	}{
		{"live before load", empty, "/api/v1/health/live", http.StatusOK},
		{"ready before load", empty, "/api/v1/health/ready", http.StatusServiceUnavailable},
		{"health before load", empty, "/api/v1/health", http.StatusOK},
		{"live", ready, "/api/v1/health/live", http.StatusOK},
		{"ready", ready, "/api/v1/health/ready", http.StatusOK},
		{"health", ready, "/api/v1/health", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, _ := doRequest(t, tt.srv, http.MethodGet, tt.target, "")
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}

	_, resp := doRequest(t, empty, http.MethodGet, "/api/v1/health", "")
	var status HealthStatus
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if status.Status != "degraded" || status.Engine.Ready {
		t.Errorf("health before load = %+v", status)
	}

	_, resp = doRequest(t, ready, http.MethodGet, "/api/v1/health", "")
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if status.Status != "healthy" || status.Engine.Items != 3 {
		t.Errorf("health after load = %+v", status)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitRequests = 1
	mw.RateLimitWindow = time.Minute
	srv := newTestServer(t, serverOptions{cat: testCatalog(t), mw: mw})

	if rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/genres", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	rec, resp := doRequest(t, srv, http.MethodGet, "/api/v1/genres", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeTooManyRequests {
		t.Errorf("error = %+v", resp.Error)
	}

	// probes are not rate limited
	for i := 0; i < 3; i++ {
		if rec, _ := doRequest(t, srv, http.MethodGet, "/api/v1/health/live", ""); rec.Code != http.StatusOK {
			t.Errorf("health probe %d status = %d", i, rec.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	mw := DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = []string{"https://movies.example.com"}
	mw.RateLimitDisabled = true
	srv := newTestServer(t, serverOptions{cat: testCatalog(t), mw: mw})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/recommendations/preferences", nil)
	req.Header.Set("Origin", "https://movies.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://movies.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{cat: testCatalog(t)})
	doRequest(t, srv, http.MethodGet, "/api/v1/recommendations/initial", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output has no api_requests_total series")
	}
}
