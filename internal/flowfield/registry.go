package flowfield

import (
	"sync"

	"navcore/internal/config"
)

// Registry holds every live flow-field record, keyed by (destination_hash,
// chunk_coord). Which destination hashes are still wanted is worked out per
// frame by Engine.Step, not stored here.
type Registry struct {
	mu     sync.RWMutex
	fields map[FieldKey]*Field
}

// NewRegistry creates an empty field registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[FieldKey]*Field)}
}

// Get returns the field for key, or nil if it hasn't been built (or has
// expired).
func (r *Registry) Get(key FieldKey) *Field {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fields[key]
}

// Put inserts or replaces a built field.
func (r *Registry) Put(key FieldKey, f *Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields[key] = f
}

// ExpireOlderThan removes fields whose BuildTime predates now -
// fieldExpiry. Returns the number of fields released.
func (r *Registry) ExpireOlderThan(now float32, cfg *config.NavigationConfig) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiry := cfg.FieldExpirySec()
	removed := 0
	for key, f := range r.fields {
		if now-f.BuildTime > expiry {
			delete(r.fields, key)
			removed++
		}
	}
	return removed
}

// Keys returns every currently registered field key.
func (r *Registry) Keys() []FieldKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FieldKey, 0, len(r.fields))
	for k := range r.fields {
		out = append(out, k)
	}
	return out
}
