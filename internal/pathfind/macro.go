package pathfind

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/config"
	"navcore/internal/gridworld"
)

// FindMacro runs A* over the chunk graph using 8-way macro_connectivity
// values, used when either end-chunk is not loaded. The graph spans the unbounded chunk grid; a chunk with no baked
// static blob yet (not streamed in on either side of an edge) is treated as
// open rather than blocked, so a macro route can still be planned ahead of
// the chunks it crosses actually being baked. On success, MacroWaypoints
// holds chunk-center world points excluding the start chunk.
func FindMacro(store *gridworld.ChunkStore, cfg *config.NavigationConfig, start, end gridworld.ChunkCoord) Result {
	if start == end {
		return Result{Success: true, IsMacro: true}
	}

	type key = gridworld.ChunkCoord
	gCost := map[key]int32{start: 0}
	parent := map[key]key{}
	closed := map[key]bool{}

	h := func(c key) int32 { return octile(int(c.X-end.X), int(c.Z-end.Z)) }

	open := newOpenSet()
	coordOf := map[int]key{}
	idxOf := map[key]int{}
	nextIdx := 0
	alloc := func(c key) int {
		if i, ok := idxOf[c]; ok {
			return i
		}
		i := nextIdx
		nextIdx++
		idxOf[c] = i
		coordOf[i] = c
		return i
	}

	heap.Push(open, &openEntry{cell: alloc(start), f: h(start)})

	found := false
	for open.Len() > 0 {
		cur := heap.Pop(open).(*openEntry)
		curCoord := coordOf[cur.cell]
		if closed[curCoord] {
			continue
		}
		closed[curCoord] = true
		if curCoord == end {
			found = true
			break
		}

		for dir := 0; dir < 8; dir++ {
			off := gridworld.MacroOffsets[dir]
			n := key{X: curCoord.X + off.X, Z: curCoord.Z + off.Z}
			if closed[n] {
				continue
			}
			if !macroEdgeOpen(store, curCoord, dir) {
				continue
			}
			cost := stepCost(int(off.X), int(off.Z))
			tentative := gCost[curCoord] + cost
			if g, ok := gCost[n]; ok && tentative >= g {
				continue
			}
			gCost[n] = tentative
			parent[n] = curCoord
			heap.Push(open, &openEntry{cell: alloc(n), f: tentative + h(n)})
		}
	}

	if !found {
		return Result{IsMacro: true}
	}

	var chain []key
	for at := end; ; {
		chain = append(chain, at)
		p, ok := parent[at]
		if !ok {
			break
		}
		at = p
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	waypoints := make([]mgl32.Vec3, 0, len(chain)-1)
	for _, c := range chain {
		if c == start {
			continue
		}
		wx, wz := gridworld.ChunkCenterWorld(c, cfg)
		waypoints = append(waypoints, mgl32.Vec3{wx, 0, wz})
	}

	return Result{Success: true, IsMacro: true, MacroWaypoints: waypoints}
}

// macroEdgeOpen reports whether the edge leaving chunk c in direction dir is
// traversable: blocked only if a baked side of the edge says so.
func macroEdgeOpen(store *gridworld.ChunkStore, c gridworld.ChunkCoord, dir int) bool {
	if chunk := store.Get(c); chunk != nil && chunk.StaticReady {
		if chunk.Static.MacroConnectivity[dir] == 0 {
			return false
		}
		return true
	}

	off := gridworld.MacroOffsets[dir]
	neighbor := gridworld.ChunkCoord{X: c.X + off.X, Z: c.Z + off.Z}
	opposite := (dir + 4) % 8
	if chunk := store.Get(neighbor); chunk != nil && chunk.StaticReady {
		return chunk.Static.MacroConnectivity[opposite] != 0
	}
	return true
}
