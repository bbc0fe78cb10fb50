package ecscore

import "sync"

// Tags is a per-kind enabled bitset used for the one-shot / request
// marker components (PathRequest, PathfindingSuccess, StartedMoving, ...).
// Enabling is idempotent; there is no payload, only presence.
type Tags struct {
	mu sync.RWMutex
	on map[Handle]struct{}
}

// NewTags creates an empty tag set.
func NewTags() *Tags {
	return &Tags{on: make(map[Handle]struct{})}
}

// Enable marks h as tagged.
func (t *Tags) Enable(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.on[h] = struct{}{}
}

// Disable clears the tag on h.
func (t *Tags) Disable(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.on, h)
}

// Has reports whether h is tagged.
func (t *Tags) Has(h Handle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.on[h]
	return ok
}

// Each invokes fn for every Handle tagged when the call began. It iterates a
// snapshot, so fn may call Enable/Disable on this Tags set; those changes are
// not seen by the current iteration.
func (t *Tags) Each(fn func(Handle)) {
	t.mu.RLock()
	snapshot := make([]Handle, 0, len(t.on))
	for h := range t.on {
		snapshot = append(snapshot, h)
	}
	t.mu.RUnlock()

	for _, h := range snapshot {
		fn(h)
	}
}

// Len returns the number of tagged handles.
func (t *Tags) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.on)
}

// Clear removes every tag. Used by the late-frame cleanup stage to expire
// one-shot visibility (StartedMoving/StoppedMoving) after exactly one frame.
func (t *Tags) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.on = make(map[Handle]struct{})
}
