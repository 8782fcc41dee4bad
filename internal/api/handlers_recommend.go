// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// RecommendInitial handles GET /api/v1/recommendations/initial.
// Returns the cold-start ordering for a user with no history.
func (h *Handler) RecommendInitial(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.defaultLimit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	resp, err := h.engine.Initial(r.Context(), limit)
	h.respondRecommendations(w, r, resp, err)
}

// RecommendPreferences handles POST /api/v1/recommendations/preferences.
//
// Request body:
//
//	{"preferences": [{"item_id": "tt0133093", "polarity": 1}], "limit": 10}
//
// Positive polarity is a like, zero or negative a dislike. Rated items are
// never returned.
func (h *Handler) RecommendPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		NewResponseWriter(w, r).BadRequest(err.Error())
		return
	}
	if err := validateRequest(&req); err != nil {
		respondEngineError(w, r, err)
		return
	}

	limit := h.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	resp, err := h.engine.ByPreferences(r.Context(), req.signals(), limit)
	h.respondRecommendations(w, r, resp, err)
}

// RecommendSimilar handles GET /api/v1/recommendations/similar/{itemID}.
func (h *Handler) RecommendSimilar(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.defaultLimit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	resp, err := h.engine.Similar(r.Context(), chi.URLParam(r, "itemID"), limit)
	h.respondRecommendations(w, r, resp, err)
}

// RecommendSearch handles GET /api/v1/recommendations/search.
// Query parameters: q (required), limit, exclude (comma separated ids).
func (h *Handler) RecommendSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.defaultLimit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	q := searchQuery{
		Query:   r.URL.Query().Get("q"),
		Exclude: parseList(r, "exclude"),
	}
	if err := validateRequest(&q); err != nil {
		respondEngineError(w, r, err)
		return
	}

	resp, err := h.engine.Search(r.Context(), q.Query, limit, q.Exclude)
	h.respondRecommendations(w, r, resp, err)
}

// RecommendGenres handles GET /api/v1/recommendations/genres.
// Query parameters: genres (comma separated names, case-insensitive), limit.
func (h *Handler) RecommendGenres(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, h.defaultLimit)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	resp, err := h.engine.ByGenres(r.Context(), parseList(r, "genres"), limit)
	h.respondRecommendations(w, r, resp, err)
}

func (h *Handler) respondRecommendations(w http.ResponseWriter, r *http.Request, resp *recommend.Response, err error) {
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessList(resp, len(resp.Items))
}
