// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package similarity implements the k-nearest-neighbour primitive used by the
// recommendation engine.
//
// TopK scans a candidate sequence once, skipping excluded ids before scoring,
// and keeps the best k results in a bounded heap. Results are ordered by score
// descending with equal scores broken by ascending id, so the output does not
// depend on the order candidates are produced in.
//
// Two metrics are available:
//
//   - Cosine: dot(a, b) / (|a| |b|), 0 when either vector has zero length
//   - Euclidean: 1 / (1 + |a - b|), so identical vectors score 1
//
// The scan checks the context every 256 candidates and stops with ctx.Err()
// once the caller has gone away. Nothing is written during a scan, so an
// early stop has no side effects.
package similarity
