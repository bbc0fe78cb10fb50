// Package flowfield implements the shared flow-field engine: a Dijkstra
// wavefront integration pass plus a gradient pass, keyed by
// (destination_hash, chunk_coord) and shared across every agent following
// the same crowded destination. Each build is independent of the others.
package flowfield

import (
	"navcore/internal/config"
	"navcore/internal/gridworld"
)

// DestinationHash quantizes a world destination to the (x<<32)|z
// cell-coordinate key.
func DestinationHash(destX, destZ float32, cfg *config.NavigationConfig) uint64 {
	_, lx, lz := gridworld.WorldToCell(destX, destZ, cfg)
	chunk := gridworld.WorldToChunk(destX, destZ, cfg)
	gx := int64(chunk.X)*int64(cfg.ChunkCellCount()) + int64(lx)
	gz := int64(chunk.Z)*int64(cfg.ChunkCellCount()) + int64(lz)
	return uint64(uint32(gx))<<32 | uint64(uint32(gz))
}

// FieldKey identifies one built field: a destination plus the chunk it
// covers (each destination gets one field per neighboring chunk too).
type FieldKey struct {
	DestHash uint64
	Chunk    gridworld.ChunkCoord
}

// Field is one built flow-field record.
type Field struct {
	DestHash    uint64
	Chunk       gridworld.ChunkCoord
	Destination [2]float32
	CellCount   int
	Vectors     [][2]float32
	Integration []int32
	IsReady     bool
	BuildTime   float32
}

// CellIndexFor converts a local (x, z) cell coordinate into this field's
// flat Vectors/Integration index.
func (f *Field) CellIndexFor(x, z int) int {
	return z*f.CellCount + x
}
