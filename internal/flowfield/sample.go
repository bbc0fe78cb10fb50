package flowfield

import (
	"navcore/internal/config"
	"navcore/internal/gridworld"
)

// Sample looks up the field for (destHash, the agent's current chunk) and
// returns the gradient vector at the agent's current cell.
// ok is false if the field isn't ready or the vector has negligible length,
// signaling the caller (a flow-field mover) to fall back to direct steering.
func Sample(reg *Registry, cfg *config.NavigationConfig, destHash uint64, worldX, worldZ float32) (dx, dz float32, ok bool) {
	chunk, lx, lz := gridworld.WorldToCell(worldX, worldZ, cfg)
	f := reg.Get(FieldKey{DestHash: destHash, Chunk: chunk})
	if f == nil || !f.IsReady {
		return 0, 0, false
	}
	n := cfg.ChunkCellCount()
	if lx < 0 || lx >= n || lz < 0 || lz >= n {
		return 0, 0, false
	}
	v := f.Vectors[lz*n+lx]
	if v[0] == 0 && v[1] == 0 {
		return 0, 0, false
	}
	return v[0], v[1], true
}
