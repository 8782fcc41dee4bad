// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package validation provides struct validation using go-playground/validator v10.
//
// A singleton validator caches struct metadata across requests. Field names in
// errors follow the json tags, and a notblank tag rejects whitespace-only
// strings.
//
//	type searchRequest struct {
//	    Query string `json:"q" validate:"notblank,max=2048"`
//	    Limit int    `json:"limit" validate:"gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), verr.Details())
//	    return
//	}
package validation
