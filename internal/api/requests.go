// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/preference"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// preferencesRequest is the body of POST /recommendations/preferences.
type preferencesRequest struct {
	Preferences []signalRequest `json:"preferences" validate:"max=1000,dive"`
	Limit       *int            `json:"limit,omitempty" validate:"omitempty,gte=0"`
}

type signalRequest struct {
	ItemID   string   `json:"item_id" validate:"notblank,max=256"`
	Polarity *float64 `json:"polarity" validate:"required"`
}

// signals converts the request to engine signals, keeping order.
func (p *preferencesRequest) signals() []preference.Signal {
	out := make([]preference.Signal, len(p.Preferences))
	for i, s := range p.Preferences {
		out[i] = preference.Signal{ItemID: s.ItemID, Polarity: *s.Polarity}
	}
	return out
}

// searchQuery holds the query string of GET /recommendations/search.
type searchQuery struct {
	Query   string   `json:"q" validate:"max=1000"`
	Exclude []string `json:"exclude" validate:"max=1000"`
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// parseLimit reads the limit query parameter. Omitted means def.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &recommend.InvalidQueryError{Field: "limit", Reason: "must be an integer"}
	}
	if n < 0 {
		return 0, &recommend.InvalidQueryError{Field: "limit", Reason: "must not be negative"}
	}
	return n, nil
}

// parseList splits a comma separated parameter, dropping blank entries.
func parseList(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validateRequest(req interface{}) error {
	if err := validation.ValidateStruct(req); err != nil {
		return err
	}
	return nil
}
