// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package embedding

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable matches every *UnavailableError.
	ErrUnavailable = errors.New("text embedding unavailable")

	// ErrEmptyText is returned when the query is blank after normalisation.
	ErrEmptyText = errors.New("text query is empty")
)

// Reason classifies why no embedding was produced. Values double as metric
// labels.
type Reason string

const (
	ReasonNotConfigured     Reason = "not_configured"
	ReasonTimeout           Reason = "timeout"
	ReasonRejected          Reason = "rejected"
	ReasonModelError        Reason = "model_error"
	ReasonDimensionMismatch Reason = "dimension_mismatch"
)

// UnavailableError reports that text search cannot be served right now.
type UnavailableError struct {
	Reason Reason
	Err    error
}

// NewUnavailableError builds an UnavailableError.
func NewUnavailableError(reason Reason, err error) *UnavailableError {
	return &UnavailableError{Reason: reason, Err: err}
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("text embedding unavailable (%s)", e.Reason)
	}
	return fmt.Sprintf("text embedding unavailable (%s): %v", e.Reason, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrUnavailable.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}
