package gridworld

import (
	"sync"

	"navcore/internal/config"
	"navcore/internal/ecscore"
)

// StreamingAnchor is a weighted streaming source: players get the default
// radii and priority 1, while a scripted camera or a high-priority AI squad
// can carry a larger radius or priority to pull chunks in ahead of need.
// The per-frame desired-state union takes, for each chunk, the highest state
// (Active over Ghost) requested by any anchor whose rings reach it.
type StreamingAnchor struct {
	Handle            ecscore.Handle
	WorldPosition     [2]float32
	CurrentChunk      ChunkCoord
	ActiveRingRadius  int
	GhostRingRadius   int
	Priority          int32
}

// AnchorTable stores StreamingAnchor components keyed by handle.
type AnchorTable struct {
	mu      sync.RWMutex
	anchors map[ecscore.Handle]*StreamingAnchor
}

// NewAnchorTable creates an empty anchor table.
func NewAnchorTable() *AnchorTable {
	return &AnchorTable{anchors: make(map[ecscore.Handle]*StreamingAnchor)}
}

// Add registers h as a streaming anchor. The config's ring radii are
// scaled by max(1, priority), so a high-priority anchor pulls in a wider
// ring of simulated chunks.
func (t *AnchorTable) Add(h ecscore.Handle, worldX, worldZ float32, priority int32, cfg *config.NavigationConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	weight := int(priority)
	if weight < 1 {
		weight = 1
	}
	t.anchors[h] = &StreamingAnchor{
		Handle:           h,
		WorldPosition:    [2]float32{worldX, worldZ},
		CurrentChunk:     WorldToChunk(worldX, worldZ, cfg),
		ActiveRingRadius: cfg.ActiveRingRadius() * weight,
		GhostRingRadius:  cfg.GhostRingRadius() * weight,
		Priority:         priority,
	}
}

// Remove deregisters an anchor, e.g. on entity despawn.
func (t *AnchorTable) Remove(h ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.anchors, h)
}

// UpdatePosition moves an anchor's world position, recomputing its current
// chunk coordinate. This is the per-frame anchor tracker stage: every
// mover writes its new position, then this runs once before streaming
// desired-state is computed.
func (t *AnchorTable) UpdatePosition(h ecscore.Handle, worldX, worldZ float32, cfg *config.NavigationConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.anchors[h]
	if !ok {
		return
	}
	a.WorldPosition = [2]float32{worldX, worldZ}
	a.CurrentChunk = WorldToChunk(worldX, worldZ, cfg)
}

// Snapshot returns a copy of every tracked anchor, safe to range over
// without holding the table's lock.
func (t *AnchorTable) Snapshot() []StreamingAnchor {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]StreamingAnchor, 0, len(t.anchors))
	for _, a := range t.anchors {
		out = append(out, *a)
	}
	return out
}
