// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.engine.Genres()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessList(genres, len(genres))
}

// Item handles GET /api/v1/items/{itemID}.
func (h *Handler) Item(w http.ResponseWriter, r *http.Request) {
	item, err := h.engine.Item(chi.URLParam(r, "itemID"))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(item)
}
