package gridworld

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"navcore/internal/config"
)

// BakeChunk builds a ChunkStaticBlob for coord: for every cell, cast a ray
// down from the cell center; no hit means blocked, a too-steep hit means
// flying-only, otherwise an obstacle-clearance sphere check can still zero
// the walkable mask. Macro connectivity is one ray per outward edge
// midpoint. All physics goes through the GroundQuery interface, so the
// core carries no physics engine of its own.
func BakeChunk(coord ChunkCoord, cfg *config.NavigationConfig, q GroundQuery) *ChunkStaticBlob {
	n := cfg.ChunkCellCount()
	blob := &ChunkStaticBlob{
		Coord:     coord,
		CellCount: int32(n),
		Nodes:     make([]NodeStatic, n*n),
	}

	rayHeight := cfg.BakeRaycastHeight()
	groundLayer := cfg.GroundLayer()
	unwalkableLayer := cfg.UnwalkableLayer()
	agentRadius := cfg.AgentRadius()
	maxSlopeRad := float64(cfg.MaxSlopeAngleDeg()) * math.Pi / 180

	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			worldX, worldZ := CellCenterWorld(coord, x, z, cfg)
			origin := mgl32.Vec3{worldX, rayHeight, worldZ}

			hit, normal, ok := q.RaycastDown(origin, rayHeight+2, groundLayer)
			node := NodeStatic{}
			if !ok {
				blob.Nodes[blob.CellIndex(x, z)] = node
				continue
			}

			slopeAngle := math.Acos(clamp64(float64(normal.Dot(mgl32.Vec3{0, 1, 0})), -1, 1))
			if slopeAngle > maxSlopeRad {
				node.SlopeFlags = SlopeTooSteep
				node.WalkableLayerMask = WalkableFlying
			} else {
				node.SlopeFlags = 0
				node.WalkableLayerMask = WalkableAll
			}

			clearancePoint := hit.Add(mgl32.Vec3{0, agentRadius, 0})
			if !q.SphereClear(clearancePoint, agentRadius*0.9, unwalkableLayer) {
				node.WalkableLayerMask = WalkableNone
			}

			blob.Nodes[blob.CellIndex(x, z)] = node
		}
	}

	for dir := 0; dir < 8; dir++ {
		blob.MacroConnectivity[dir] = bakeMacroEdge(coord, MacroDirection(dir), cfg, q)
	}

	return blob
}

// bakeMacroEdge casts a single downward ray at the outward edge midpoint in
// direction dir; 10 if it hits ground, 0 if blocked.
func bakeMacroEdge(coord ChunkCoord, dir MacroDirection, cfg *config.NavigationConfig, q GroundQuery) uint8 {
	n := cfg.ChunkCellCount()
	cs := cfg.CellSize()
	chunkSpan := cs * float32(n)
	cx := float32(coord.X)*chunkSpan + chunkSpan/2
	cz := float32(coord.Z)*chunkSpan + chunkSpan/2

	half := chunkSpan / 2
	off := MacroOffsets[dir]
	edgeX := cx + float32(off.X)*half
	edgeZ := cz + float32(off.Z)*half

	rayHeight := cfg.BakeRaycastHeight()
	origin := mgl32.Vec3{edgeX, rayHeight, edgeZ}
	_, _, ok := q.RaycastDown(origin, rayHeight+2, cfg.GroundLayer())
	if ok {
		return 10
	}
	return 0
}

func clamp64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
