// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package cache provides a thread-safe LRU cache with TTL support.

The text embedder uses it to keep recently computed query vectors keyed by
normalised query text, so repeated searches skip the model round trip.

# Behaviour

  - O(1) Get, Add and Remove using a hashmap plus a doubly-linked list
  - least recently used entry evicted when capacity is reached
  - lazy expiration on Get, plus CleanupExpired for periodic sweeps
  - hit/miss counters exposed through Stats

# Usage

	c := cache.NewLRU[[]float64](1024, 10*time.Minute)
	c.Add("space opera", vec)
	if v, ok := c.Get("space opera"); ok {
		...
	}

Values are stored as given. Callers that hand out cached slices should copy
them first.
*/
package cache
