package flowfield

import (
	"navcore/internal/config"
	"navcore/internal/gridworld"
)

// Engine drives the flow-field stage: expiring stale records and
// (re)building fields only for destination hashes that still have at least
// one follower this frame.
type Engine struct {
	Registry *Registry
	store    *gridworld.ChunkStore
	cfg      *config.NavigationConfig
}

// NewEngine wires an Engine against a chunk store and config.
func NewEngine(store *gridworld.ChunkStore, cfg *config.NavigationConfig) *Engine {
	return &Engine{Registry: NewRegistry(), store: store, cfg: cfg}
}

// Follower describes one agent currently using a flow field this frame.
type Follower struct {
	DestHash uint64
	DestX    float32
	DestZ    float32
}

// Step expires old fields, then rebuilds one 3x3-chunk block per distinct
// destination hash among this frame's followers that doesn't already have a
// live, unexpired field for the destination's own chunk.
func (e *Engine) Step(followers []Follower, now float32) {
	e.Registry.ExpireOlderThan(now, e.cfg)

	seen := make(map[uint64]Follower)
	for _, f := range followers {
		seen[f.DestHash] = f
	}

	for hash, f := range seen {
		destChunk, _, _ := gridworld.WorldToCell(f.DestX, f.DestZ, e.cfg)
		key := FieldKey{DestHash: hash, Chunk: destChunk}
		if existing := e.Registry.Get(key); existing != nil && now-existing.BuildTime <= e.cfg.FieldExpirySec() {
			continue
		}
		built := Build(e.store, e.cfg, hash, f.DestX, f.DestZ, now)
		for k, field := range built {
			e.Registry.Put(k, field)
		}
	}
}
