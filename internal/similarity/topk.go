// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// cancelCheckInterval is how many candidates are scanned between context checks.
const cancelCheckInterval = 256

var (
	// ErrNegativeK is returned when k < 0.
	ErrNegativeK = errors.New("k must not be negative")

	// ErrDimensionMismatch is returned when a candidate vector and the query
	// have different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Candidate is one scorable vector. A nil Vector means the candidate cannot
// be scored in this space and is skipped.
type Candidate struct {
	ID     string
	Vector []float64
}

// Result is one ranked item.
type Result struct {
	ID    string  `json:"item_id"`
	Score float64 `json:"score"`
}

// Set is a set of item ids.
type Set map[string]struct{}

// NewSet builds a set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set. A nil set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// TopK returns the k candidates most similar to query, best first.
// Excluded ids are skipped before scoring, so fewer than k results come back
// when exclusion leaves fewer than k scorable candidates.
func TopK(ctx context.Context, query []float64, candidates iter.Seq[Candidate], k int, exclude Set, metric Metric) ([]Result, error) {
	if k < 0 {
		return nil, ErrNegativeK
	}
	if k == 0 {
		return []Result{}, nil
	}

	h := newBoundedHeap(k)
	scanned := 0
	for c := range candidates {
		if scanned%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		scanned++

		if c.Vector == nil || exclude.Has(c.ID) {
			continue
		}
		if len(c.Vector) != len(query) {
			return nil, fmt.Errorf("%w: candidate %s has %d components, query has %d",
				ErrDimensionMismatch, c.ID, len(c.Vector), len(query))
		}
		h.offer(Result{ID: c.ID, Score: metric.Score(query, c.Vector)})
	}

	return h.sorted(), nil
}
