package pathfind

import (
	"container/heap"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/config"
	"navcore/internal/gridworld"
)

// GlobalCell addresses a cell in the multi-chunk A* space: a chunk taken
// from a per-frame snapshot of the loaded set, plus a local cell coordinate.
type GlobalCell struct {
	Chunk gridworld.ChunkCoord
	X, Z  int
}

// multiIndex is a per-call bijection between GlobalCell and a dense integer,
// built from the snapshot so "chunk_index_within_loaded_set" is a pure
// function of that one snapshot (the loaded set can change between
// frames).
type multiIndex struct {
	n        int
	chunks   []gridworld.ChunkCoord
	chunkIdx map[gridworld.ChunkCoord]int
	blobs    map[gridworld.ChunkCoord]*gridworld.ChunkStaticBlob
}

func newMultiIndex(loaded map[gridworld.ChunkCoord]*gridworld.GridChunk, cellsPerChunk int) *multiIndex {
	mi := &multiIndex{
		n:        cellsPerChunk,
		chunks:   make([]gridworld.ChunkCoord, 0, len(loaded)),
		chunkIdx: make(map[gridworld.ChunkCoord]int, len(loaded)),
		blobs:    make(map[gridworld.ChunkCoord]*gridworld.ChunkStaticBlob, len(loaded)),
	}
	for coord, c := range loaded {
		if c.Static == nil {
			continue
		}
		mi.chunkIdx[coord] = len(mi.chunks)
		mi.chunks = append(mi.chunks, coord)
		mi.blobs[coord] = c.Static
	}
	return mi
}

func (mi *multiIndex) cellIndexOf(g GlobalCell) (int, bool) {
	ci, ok := mi.chunkIdx[g.Chunk]
	if !ok {
		return 0, false
	}
	return ci*mi.n*mi.n + g.Z*mi.n + g.X, true
}

func (mi *multiIndex) cellAt(flat int) GlobalCell {
	perChunk := mi.n * mi.n
	ci := flat / perChunk
	local := flat % perChunk
	return GlobalCell{Chunk: mi.chunks[ci], X: local % mi.n, Z: local / mi.n}
}

// normalizeLocal wraps a local coordinate that stepped outside [0, n) into
// the neighbor chunk it now belongs to.
func (mi *multiIndex) normalizeLocal(chunk gridworld.ChunkCoord, x, z int) (gridworld.ChunkCoord, int, int) {
	dcx, dcz := int32(0), int32(0)
	if x < 0 {
		dcx, x = -1, x+mi.n
	} else if x >= mi.n {
		dcx, x = 1, x-mi.n
	}
	if z < 0 {
		dcz, z = -1, z+mi.n
	} else if z >= mi.n {
		dcz, z = 1, z-mi.n
	}
	return gridworld.ChunkCoord{X: chunk.X + dcx, Z: chunk.Z + dcz}, x, z
}

func (mi *multiIndex) walkable(g GlobalCell, walkableLayers uint8, isFlying bool) bool {
	blob, ok := mi.blobs[g.Chunk]
	if !ok {
		return false
	}
	if g.X < 0 || g.X >= mi.n || g.Z < 0 || g.Z >= mi.n {
		return false
	}
	return blob.NodeAt(g.X, g.Z).Walkable(walkableLayers, isFlying)
}

// FindMultiChunk runs A* over the global cell space of every currently
// loaded chunk, used when start and end resolve to different, both-loaded
// chunks, so walls in intermediate chunks are respected rather than
// skipped.
func FindMultiChunk(
	loaded map[gridworld.ChunkCoord]*gridworld.GridChunk,
	cfg *config.NavigationConfig,
	start, end GlobalCell,
	destWorldX, destWorldZ float32,
	walkableLayers uint8,
	isFlying bool,
) Result {
	mi := newMultiIndex(loaded, cfg.ChunkCellCount())

	walkableAt := func(g GlobalCell) bool { return mi.walkable(g, walkableLayers, isFlying) }

	snapGlobal := func(g GlobalCell) (GlobalCell, bool) {
		x, z, ok := snapToWalkable(g.X, g.Z, func(x, z int) bool {
			return walkableAt(GlobalCell{Chunk: g.Chunk, X: x, Z: z})
		})
		if !ok {
			return GlobalCell{}, false
		}
		return GlobalCell{Chunk: g.Chunk, X: x, Z: z}, true
	}

	snappedStart, ok := snapGlobal(start)
	if !ok {
		return Result{}
	}
	snappedEnd, ok := snapGlobal(end)
	if !ok {
		return Result{}
	}
	if snappedStart == snappedEnd {
		return Result{Success: true}
	}

	startIdx, ok := mi.cellIndexOf(snappedStart)
	if !ok {
		return Result{}
	}
	endIdx, ok := mi.cellIndexOf(snappedEnd)
	if !ok {
		return Result{}
	}

	gCost := make(map[int]int32)
	parent := make(map[int]int)
	closed := make(map[int]bool)
	gCost[startIdx] = 0
	parent[startIdx] = -1

	heuristic := func(from GlobalCell) int32 {
		dx := int(from.Chunk.X-snappedEnd.Chunk.X)*mi.n + (from.X - snappedEnd.X)
		dz := int(from.Chunk.Z-snappedEnd.Chunk.Z)*mi.n + (from.Z - snappedEnd.Z)
		return octile(dx, dz)
	}

	open := newOpenSet()
	heap.Push(open, &openEntry{cell: startIdx, f: heuristic(snappedStart)})

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

		curCell := mi.cellAt(cur.cell)
		for _, off := range neighborOffsets {
			nChunk, nx, nz := mi.normalizeLocal(curCell.Chunk, curCell.X+off.dx, curCell.Z+off.dz)
			ng := GlobalCell{Chunk: nChunk, X: nx, Z: nz}
			if !walkableAt(ng) {
				continue
			}
			ni, ok := mi.cellIndexOf(ng)
			if !ok || closed[ni] {
				continue
			}
			mask := mi.blobs[nChunk].NodeAt(nx, nz).TerrainCostMask
			cost := stepCost(off.dx, off.dz) + (cfg.TerrainCost(mask) - 10)
			tentative := gCost[cur.cell] + cost
			if g, ok := gCost[ni]; ok && tentative >= g {
				continue
			}
			gCost[ni] = tentative
			parent[ni] = cur.cell
			heap.Push(open, &openEntry{cell: ni, f: tentative + heuristic(ng)})
		}
	}

	if !found {
		return Result{}
	}

	var cells []int
	for at := endIdx; ; {
		cells = append(cells, at)
		p, ok := parent[at]
		if !ok || p == -1 {
			break
		}
		at = p
	}
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}

	waypoints := make([]mgl32.Vec3, 0, len(cells))
	for i, c := range cells {
		g := mi.cellAt(c)
		wx, wz := gridworld.CellCenterWorld(g.Chunk, g.X, g.Z, cfg)
		if i == len(cells)-1 {
			if g == end && walkableAt(g) {
				wx, wz = destWorldX, destWorldZ
			}
		}
		waypoints = append(waypoints, mgl32.Vec3{wx, 0, wz})
	}

	return Result{Success: true, Waypoints: waypoints}
}
