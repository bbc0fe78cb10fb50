package pathfind

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/config"
	"navcore/internal/gridworld"
)

// FindSingleChunk runs A* over the cells of a single loaded chunk, used
// when start and end resolve to the same chunk. startX/startZ and endX/endZ are local cell coordinates;
// destWorldX/destWorldZ is the literal requested destination in world space,
// used for the final-waypoint rule.
func FindSingleChunk(
	blob *gridworld.ChunkStaticBlob,
	coord gridworld.ChunkCoord,
	cfg *config.NavigationConfig,
	startX, startZ, endX, endZ int,
	destWorldX, destWorldZ float32,
	walkableLayers uint8,
	isFlying bool,
) Result {
	n := int(blob.CellCount)
	walkable := func(x, z int) bool {
		if x < 0 || x >= n || z < 0 || z >= n {
			return false
		}
		return blob.NodeAt(x, z).Walkable(walkableLayers, isFlying)
	}

	sx, sz, ok := snapToWalkable(startX, startZ, walkable)
	if !ok {
		return Result{}
	}
	ex, ez, ok := snapToWalkable(endX, endZ, walkable)
	if !ok {
		return Result{}
	}
	if sx == ex && sz == ez {
		return Result{Success: true}
	}

	idx := func(x, z int) int { return z*n + x }
	startIdx, endIdx := idx(sx, sz), idx(ex, ez)

	size := n * n
	gCost := make([]int32, size)
	parent := make([]int, size)
	closed := make([]bool, size)
	for i := range gCost {
		gCost[i] = -1
		parent[i] = -1
	}
	gCost[startIdx] = 0

	open := newOpenSet()
	heap.Push(open, &openEntry{cell: startIdx, f: octile(ex-sx, ez-sz)})

	found := false
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openEntry)
		if closed[cur.cell] {
			continue
		}
		closed[cur.cell] = true
		if cur.cell == endIdx {
			found = true
			break
		}

		cx, cz := cur.cell%n, cur.cell/n
		for _, off := range neighborOffsets {
			nx, nz := cx+off.dx, cz+off.dz
			if !walkable(nx, nz) {
				continue
			}
			ni := idx(nx, nz)
			if closed[ni] {
				continue
			}
			mask := blob.NodeAt(nx, nz).TerrainCostMask
			cost := stepCost(off.dx, off.dz) + (cfg.TerrainCost(mask) - 10)
			tentative := gCost[cur.cell] + cost
			if gCost[ni] >= 0 && tentative >= gCost[ni] {
				continue
			}
			gCost[ni] = tentative
			parent[ni] = cur.cell
			f := tentative + octile(ex-nx, ez-nz)
			heap.Push(open, &openEntry{cell: ni, f: f})
		}
	}

	if !found {
		return Result{}
	}

	var cells []int
	for at := endIdx; at != -1; at = parent[at] {
		cells = append(cells, at)
		if at == startIdx {
			break
		}
	}
	// reverse into forward order
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	waypoints := make([]mgl32.Vec3, 0, len(cells))
	for i, c := range cells {
		x, z := c%n, c/n
		wx, wz := gridworld.CellCenterWorld(coord, x, z, cfg)
		if i == len(cells)-1 {
			if blob.NodeAt(x, z).Walkable(walkableLayers, isFlying) && x == endX && z == endZ {
				wx, wz = destWorldX, destWorldZ
			}
		}
		waypoints = append(waypoints, mgl32.Vec3{wx, 0, wz})
	}

	return Result{Success: true, Waypoints: waypoints}
}
