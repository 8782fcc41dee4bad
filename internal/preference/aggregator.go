// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package preference turns a caller's like/dislike history into a query
// vector in the catalog feature space.
//
// The query is the normalised weighted centroid
//
//	normalize(sum(liked) - alpha * sum(disliked))
//
// Normalisation keeps the magnitude independent of how many signals the
// caller has accumulated. The aggregator never sees an empty history: the
// recommendation engine routes that case to cold start.
package preference

import (
	"errors"
	"fmt"

	"github.com/tomtom215/cinematch/internal/catalog"
	"github.com/tomtom215/cinematch/internal/similarity"
)

// DefaultDislikeWeight is the default alpha applied to disliked items.
const DefaultDislikeWeight = 1.0

// ErrNoSignals is returned when Aggregate is called without signals.
var ErrNoSignals = errors.New("no preference signals to aggregate")

// Signal is one like/dislike judgement. Polarity > 0 is a like; anything
// else is a dislike.
type Signal struct {
	ItemID   string  `json:"item_id"`
	Polarity float64 `json:"polarity"`
}

// Liked reports whether the signal is a like.
func (s Signal) Liked() bool {
	return s.Polarity > 0
}

// Lookup resolves item ids to feature vectors.
type Lookup interface {
	Get(id string) (catalog.Item, bool)
	Dimensions() int
}

// Aggregator builds query vectors from signals. It holds no per-caller state
// and is safe for concurrent use.
type Aggregator struct {
	dislikeWeight float64
}

// NewAggregator creates an aggregator with the given dislike weight (alpha).
func NewAggregator(dislikeWeight float64) (*Aggregator, error) {
	if dislikeWeight < 0 {
		return nil, fmt.Errorf("dislike weight must be >= 0, got %v", dislikeWeight)
	}
	return &Aggregator{dislikeWeight: dislikeWeight}, nil
}

// DislikeWeight returns alpha.
func (a *Aggregator) DislikeWeight() float64 {
	return a.dislikeWeight
}

// Aggregate returns the unit-length query vector for signals.
// Every id must be in the catalog; otherwise a *catalog.UnknownItemError
// lists all offending ids and no vector is produced. When the same id appears
// more than once the last signal wins.
func (a *Aggregator) Aggregate(signals []Signal, lookup Lookup) ([]float64, error) {
	if len(signals) == 0 {
		return nil, ErrNoSignals
	}

	latest := make(map[string]int, len(signals))
	var unknown []string
	for i, s := range signals {
		if _, ok := lookup.Get(s.ItemID); !ok {
			unknown = append(unknown, s.ItemID)
			continue
		}
		latest[s.ItemID] = i
	}
	if len(unknown) > 0 {
		return nil, catalog.NewUnknownItemError(unknown...)
	}

	query := make([]float64, lookup.Dimensions())
	for i, s := range signals {
		if latest[s.ItemID] != i {
			continue
		}
		item, _ := lookup.Get(s.ItemID)
		weight := 1.0
		if !s.Liked() {
			weight = -a.dislikeWeight
		}
		for j, x := range item.Features {
			query[j] += weight * x
		}
	}

	return similarity.Normalize(query), nil
}
