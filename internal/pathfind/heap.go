// Package pathfind implements the three A* variants: single-chunk,
// multi-chunk (globally indexed across the loaded set), and chunk-level
// macro. All three share one open-set heap and the same octile heuristic /
// integer tenths-of-cell cost model; they differ only in what a "cell"
// addresses and how neighbors are generated.
package pathfind

import "container/heap"

// openEntry is one A* open-set item: a cell index with its f-score.
type openEntry struct {
	cell  int
	f     int32
	index int
}

type openHeap []*openEntry

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *openHeap) Push(x any) {
	e := x.(*openEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// octile computes the integer-tenths octile heuristic for a grid
// displacement (dx, dz).
func octile(dx, dz int) int32 {
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	lo, hi := dx, dz
	if lo > hi {
		lo, hi = hi, lo
	}
	return int32(10*hi + 4*lo)
}

// newOpenSet builds an initialized empty heap, ready for Push.
func newOpenSet() *openHeap {
	h := &openHeap{}
	heap.Init(h)
	return h
}
