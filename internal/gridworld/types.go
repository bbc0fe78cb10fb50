// Package gridworld implements the chunk streaming state machine and the
// static bake: the Unloaded/Ghost/Active lifecycle driven by a union of
// weighted streaming anchors, and the per-cell NodeStatic bake via ground
// ray + clearance check over a 2.5-D NxN cell grid per chunk.
package gridworld

import "navcore/internal/config"

// ChunkCoord identifies a chunk by its 2D chunk-space coordinate.
type ChunkCoord struct {
	X, Z int32
}

// ChunkState is the lifecycle state of a GridChunk.
type ChunkState int

const (
	Unloaded ChunkState = iota
	Ghost
	Active
)

func (s ChunkState) String() string {
	switch s {
	case Ghost:
		return "Ghost"
	case Active:
		return "Active"
	default:
		return "Unloaded"
	}
}

// Slope/walkability bit flags for NodeStatic.
const (
	SlopeTooSteep uint8 = 1 << 0

	WalkableFlying uint8 = 0b0000_0010
	WalkableAll    uint8 = 0xFF
	WalkableNone   uint8 = 0
)

// NodeStatic is the immutable-once-baked per-cell record (4 bytes in the
// original layout; kept as four uint8 fields here for clarity).
type NodeStatic struct {
	WalkableLayerMask uint8
	TerrainCostMask   uint8
	SlopeFlags        uint8
	Reserved          uint8
}

// Walkable reports whether this cell is traversable by an agent whose
// permissions are walkableLayers / isFlying.
func (n NodeStatic) Walkable(walkableLayers uint8, isFlying bool) bool {
	if n.WalkableLayerMask == 0 {
		return false
	}
	if n.WalkableLayerMask&walkableLayers == 0 {
		return false
	}
	if n.SlopeFlags&SlopeTooSteep != 0 && !isFlying {
		return false
	}
	return true
}

// MacroDirection indexes the 8 outward edge midpoints of a chunk, in the
// persisted-layout order: N, NE, E, SE, S, SW, W, NW.
type MacroDirection int

const (
	MacroN MacroDirection = iota
	MacroNE
	MacroE
	MacroSE
	MacroS
	MacroSW
	MacroW
	MacroNW
)

// MacroOffsets gives the chunk-coordinate delta for each MacroDirection.
var MacroOffsets = [8]ChunkCoord{
	MacroN:  {X: 0, Z: -1},
	MacroNE: {X: 1, Z: -1},
	MacroE:  {X: 1, Z: 0},
	MacroSE: {X: 1, Z: 1},
	MacroS:  {X: 0, Z: 1},
	MacroSW: {X: -1, Z: 1},
	MacroW:  {X: -1, Z: 0},
	MacroNW: {X: -1, Z: -1},
}

// ChunkStaticBlob is the immutable-once-baked per-chunk artifact: the
// persisted layout (row-major, z-major: index = z*N + x).
type ChunkStaticBlob struct {
	Coord             ChunkCoord
	CellCount         int32
	Nodes             []NodeStatic
	MacroConnectivity [8]uint8
}

// CellIndex converts a local (x, z) cell coordinate to a flat Nodes index.
func (b *ChunkStaticBlob) CellIndex(x, z int) int {
	return z*int(b.CellCount) + x
}

// NodeAt returns the NodeStatic at local (x, z), or a blocked node if out of
// range.
func (b *ChunkStaticBlob) NodeAt(x, z int) NodeStatic {
	n := int(b.CellCount)
	if x < 0 || x >= n || z < 0 || z >= n {
		return NodeStatic{}
	}
	return b.Nodes[b.CellIndex(x, z)]
}

// DynamicNode is the per-cell mutable state of an Active chunk.
type DynamicNode struct {
	OccupancyCount    uint8
	DynamicBlockFlags uint8
}

// ChunkDynamicData exists only while a chunk is Active.
type ChunkDynamicData struct {
	Nodes []DynamicNode
}

// GridChunk is the per-chunk record: lifecycle state plus the optional
// static/dynamic payloads tied to that state.
type GridChunk struct {
	Coord       ChunkCoord
	State       ChunkState
	StaticReady bool
	Static      *ChunkStaticBlob
	Dynamic     *ChunkDynamicData
}

// WorldToChunk converts a world-space (x, z) position to its chunk
// coordinate, given the active NavigationConfig's cell_size/chunk_cell_count.
func WorldToChunk(x, z float32, cfg *config.NavigationConfig) ChunkCoord {
	chunkSpan := cfg.CellSize() * float32(cfg.ChunkCellCount())
	return ChunkCoord{
		X: int32(floorDiv32(x, chunkSpan)),
		Z: int32(floorDiv32(z, chunkSpan)),
	}
}

func floorDiv32(v, span float32) int32 {
	q := v / span
	fq := int32(q)
	if q < 0 && float32(fq) != q {
		fq--
	}
	return fq
}

// ChunkCenterWorld returns the world-space center of a chunk.
func ChunkCenterWorld(c ChunkCoord, cfg *config.NavigationConfig) (float32, float32) {
	chunkSpan := cfg.CellSize() * float32(cfg.ChunkCellCount())
	return float32(c.X)*chunkSpan + chunkSpan/2, float32(c.Z)*chunkSpan + chunkSpan/2
}

// WorldToCell converts a world position to its chunk coordinate and the
// local cell (x, z) within that chunk.
func WorldToCell(x, z float32, cfg *config.NavigationConfig) (ChunkCoord, int, int) {
	cs := cfg.CellSize()
	n := cfg.ChunkCellCount()
	chunk := WorldToChunk(x, z, cfg)
	localX := int(floorDiv32(x, cs)) - int(chunk.X)*n
	localZ := int(floorDiv32(z, cs)) - int(chunk.Z)*n
	return chunk, localX, localZ
}

// CellCenterWorld returns the world-space center of local cell (x, z) within
// chunk c.
func CellCenterWorld(c ChunkCoord, x, z int, cfg *config.NavigationConfig) (float32, float32) {
	cs := cfg.CellSize()
	n := cfg.ChunkCellCount()
	worldX := (float32(c.X)*float32(n) + float32(x) + 0.5) * cs
	worldZ := (float32(c.Z)*float32(n) + float32(z) + 0.5) * cs
	return worldX, worldZ
}
