// Package ecscore implements the entity table: a generational handle plus
// per-kind component stores and per-kind enabled bitsets. One-shot events
// are bitset transitions consumed by a later stage; no dynamic dispatch is
// involved.
package ecscore

import "sync"

// Handle is an opaque, stable, generational reference to an entity (an
// agent, a grid chunk record, a flow-field record, or a streaming anchor).
// Handles from a destroyed-then-recycled slot compare unequal to handles
// issued before the recycle, because Gen is bumped on free.
type Handle struct {
	Index uint32
	Gen   uint32
}

// Nil is the zero Handle; never issued by World.Create.
var Nil = Handle{}

// World allocates and recycles Handles. It does not itself store component
// data; Stores and Tags are keyed by Handle and live alongside it.
type World struct {
	mu        sync.Mutex
	gens      []uint32
	alive     []bool
	freeList  []uint32
}

// NewWorld creates an empty entity table.
func NewWorld() *World {
	return &World{}
}

// Create allocates a fresh Handle, reusing a freed slot's index when possible.
func (w *World) Create() Handle {
	w.mu.Lock()
	defer w.mu.Unlock()

	if n := len(w.freeList); n > 0 {
		idx := w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		w.alive[idx] = true
		return Handle{Index: idx, Gen: w.gens[idx]}
	}

	// Generations start at 1 so the zero Handle (Nil) is never issued.
	idx := uint32(len(w.gens))
	w.gens = append(w.gens, 1)
	w.alive = append(w.alive, true)
	return Handle{Index: idx, Gen: 1}
}

// Destroy frees a Handle's slot and bumps its generation so stale Handles
// referencing it become invalid.
func (w *World) Destroy(h Handle) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if int(h.Index) >= len(w.alive) || !w.alive[h.Index] || w.gens[h.Index] != h.Gen {
		return
	}
	w.alive[h.Index] = false
	w.gens[h.Index]++
	w.freeList = append(w.freeList, h.Index)
}

// Alive reports whether h still refers to a live entity.
func (w *World) Alive(h Handle) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int(h.Index) < len(w.alive) && w.alive[h.Index] && w.gens[h.Index] == h.Gen
}

// Len returns the number of currently live entities.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, a := range w.alive {
		if a {
			n++
		}
	}
	return n
}

// Each invokes fn for every live Handle. fn must not call Create/Destroy.
func (w *World) Each(fn func(Handle)) {
	w.mu.Lock()
	snapshot := make([]Handle, 0, len(w.alive))
	for i, a := range w.alive {
		if a {
			snapshot = append(snapshot, Handle{Index: uint32(i), Gen: w.gens[i]})
		}
	}
	w.mu.Unlock()

	for _, h := range snapshot {
		fn(h)
	}
}
