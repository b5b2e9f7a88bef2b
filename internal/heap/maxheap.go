// Package heap provides a max-heap for tracking k smallest distances.
package heap

import "math"

// MaxHeap tracks the k smallest distances seen so far. The largest tracked
// distance is at the root, so a new candidate only displaces the current
// worst.
type MaxHeap struct {
	Indices   []int
	Distances []float64
	K         int
}

// New creates a max-heap with capacity k.
func New(k int) *MaxHeap {
	h := &MaxHeap{
		Indices:   make([]int, k),
		Distances: make([]float64, k),
		K:         k,
	}
	for i := 0; i < k; i++ {
		h.Indices[i] = -1
		h.Distances[i] = math.Inf(1)
	}
	return h
}

// Push offers a candidate. It is kept only if closer than the current worst.
func (h *MaxHeap) Push(idx int, dist float64) bool {
	if dist >= h.Distances[0] {
		return false
	}
	h.Distances[0] = dist
	h.Indices[0] = idx
	h.siftDown(0, h.K)
	return true
}

func (h *MaxHeap) siftDown(i, n int) {
	for {
		left := 2*i + 1
		right := 2*i + 2
		if left >= n {
			return
		}
		swap := i
		if h.Distances[left] > h.Distances[swap] {
			swap = left
		}
		if right < n && h.Distances[right] > h.Distances[swap] {
			swap = right
		}
		if swap == i {
			return
		}
		h.Distances[i], h.Distances[swap] = h.Distances[swap], h.Distances[i]
		h.Indices[i], h.Indices[swap] = h.Indices[swap], h.Indices[i]
		i = swap
	}
}

// Sort reorders the heap ascending by distance. The heap property no longer
// holds afterwards.
func (h *MaxHeap) Sort() {
	for i := h.K - 1; i > 0; i-- {
		h.Distances[0], h.Distances[i] = h.Distances[i], h.Distances[0]
		h.Indices[0], h.Indices[i] = h.Indices[i], h.Indices[0]
		h.siftDown(0, i)
	}
}

// Reset clears the heap for reuse.
func (h *MaxHeap) Reset() {
	for i := 0; i < h.K; i++ {
		h.Indices[i] = -1
		h.Distances[i] = math.Inf(1)
	}
}
