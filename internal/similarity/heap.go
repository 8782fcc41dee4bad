// Cinematch - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import "slices"

// worse reports whether a ranks below b: lower score, or equal score and a
// larger id.
func worse(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID > b.ID
}

// boundedHeap keeps the best k results seen so far. The root is the worst
// kept result, so a new candidate only has to beat the root to get in.
// Not safe for concurrent use; each scan owns its heap.
type boundedHeap struct {
	heap []Result
	k    int
}

// maxInitialCap bounds the up-front allocation; larger heaps grow by append.
const maxInitialCap = 64

func newBoundedHeap(k int) *boundedHeap {
	return &boundedHeap{heap: make([]Result, 0, min(k, maxInitialCap)), k: k}
}

// offer adds r if it ranks above the current worst kept result.
func (h *boundedHeap) offer(r Result) {
	if len(h.heap) < h.k {
		h.heap = append(h.heap, r)
		h.bubbleUp(len(h.heap) - 1)
		return
	}
	if !worse(h.heap[0], r) {
		return
	}
	h.heap[0] = r
	h.bubbleDown(0)
}

// sorted returns the kept results best first.
func (h *boundedHeap) sorted() []Result {
	out := slices.Clone(h.heap)
	slices.SortFunc(out, func(a, b Result) int {
		switch {
		case worse(b, a):
			return -1
		case worse(a, b):
			return 1
		default:
			return 0
		}
	})
	return out
}

// bubbleUp moves element at index i up to its correct position.
func (h *boundedHeap) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(h.heap[i], h.heap[parent]) {
			break
		}
		h.heap[i], h.heap[parent] = h.heap[parent], h.heap[i]
		i = parent
	}
}

// bubbleDown moves element at index i down to its correct position.
func (h *boundedHeap) bubbleDown(i int) {
	n := len(h.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && worse(h.heap[left], h.heap[smallest]) {
			smallest = left
		}
		if right < n && worse(h.heap[right], h.heap[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		h.heap[i], h.heap[smallest] = h.heap[smallest], h.heap[i]
		i = smallest
	}
}
