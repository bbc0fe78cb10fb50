package flowfield

import (
	"math"

	"navcore/internal/config"
	"navcore/internal/gridworld"
)

var neighborOffsets = [8]struct{ dx, dz int }{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

func stepCost(dx, dz int) int32 {
	if dx != 0 && dz != 0 {
		return 14
	}
	return 10
}

// block3x3 is a local index over the destination chunk and its 8 neighbors,
// the span a destination's fields cover.
type block3x3 struct {
	n       int
	origin  gridworld.ChunkCoord
	chunks  map[gridworld.ChunkCoord]*gridworld.ChunkStaticBlob
}

func newBlock3x3(store *gridworld.ChunkStore, origin gridworld.ChunkCoord, n int) *block3x3 {
	b := &block3x3{n: n, origin: origin, chunks: make(map[gridworld.ChunkCoord]*gridworld.ChunkStaticBlob, 9)}
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			coord := gridworld.ChunkCoord{X: origin.X + int32(dx), Z: origin.Z + int32(dz)}
			if c := store.Get(coord); c != nil && c.StaticReady {
				b.chunks[coord] = c.Static
			}
		}
	}
	return b
}

// global is a flattened coordinate across the 3x3 block: chunk-relative
// offset in units of n, plus local cell.
func (b *block3x3) global(chunk gridworld.ChunkCoord, x, z int) (int, int) {
	gx := int(chunk.X-b.origin.X)*b.n + x
	gz := int(chunk.Z-b.origin.Z)*b.n + z
	return gx, gz
}

func (b *block3x3) fromGlobal(gx, gz int) (gridworld.ChunkCoord, int, int) {
	cx, x := floordiv(gx, b.n)
	cz, z := floordiv(gz, b.n)
	return gridworld.ChunkCoord{X: b.origin.X + int32(cx), Z: b.origin.Z + int32(cz)}, x, z
}

func floordiv(v, n int) (int, int) {
	q := v / n
	r := v % n
	if r < 0 {
		q--
		r += n
	}
	return q, r
}

func (b *block3x3) walkable(chunk gridworld.ChunkCoord, x, z int) bool {
	blob, ok := b.chunks[chunk]
	if !ok {
		return false
	}
	return blob.NodeAt(x, z).Walkable(0xFF, false)
}

func (b *block3x3) terrainCost(chunk gridworld.ChunkCoord, x, z int) uint8 {
	return b.chunks[chunk].NodeAt(x, z).TerrainCostMask
}

// Build runs the Dijkstra wavefront + gradient pass for destHash/destX/destZ
// across the destination chunk and its 8 neighbors, returning one Field per
// chunk that has baked static data. Integration is seeded at the
// destination's local cell, FIFO-relaxed with move costs 10/14 + terrain;
// the gradient picks the best walkable neighbor per cell.
func Build(store *gridworld.ChunkStore, cfg *config.NavigationConfig, destHash uint64, destX, destZ float32, now float32) map[FieldKey]*Field {
	n := cfg.ChunkCellCount()
	destChunk, dlx, dlz := gridworld.WorldToCell(destX, destZ, cfg)
	block := newBlock3x3(store, destChunk, n)

	if _, ok := block.chunks[destChunk]; !ok {
		return nil
	}

	gx0, gz0 := block.global(destChunk, dlx, dlz)
	type gcoord struct{ x, z int }
	start := gcoord{gx0, gz0}

	integration := map[gcoord]int32{start: 0}
	queue := []gcoord{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curChunk, cx, cz := block.fromGlobal(cur.x, cur.z)
		curCost := integration[cur]

		for _, off := range neighborOffsets {
			nx, nz := cur.x+off.dx, cur.z+off.dz
			nChunk, lx, lz := block.fromGlobal(nx, nz)
			if _, ok := block.chunks[nChunk]; !ok {
				continue
			}
			if !block.walkable(nChunk, lx, lz) {
				continue
			}
			mask := block.terrainCost(nChunk, lx, lz)
			cost := stepCost(off.dx, off.dz) + (cfg.TerrainCost(mask) - 10)
			tentative := curCost + cost
			nc := gcoord{nx, nz}
			if existing, ok := integration[nc]; ok && tentative >= existing {
				continue
			}
			integration[nc] = tentative
			queue = append(queue, nc)
		}
		_ = curChunk
		_ = cx
		_ = cz
	}

	out := make(map[FieldKey]*Field)
	for chunk, blob := range block.chunks {
		field := &Field{
			DestHash:    destHash,
			Chunk:       chunk,
			Destination: [2]float32{destX, destZ},
			CellCount:   n,
			Vectors:     make([][2]float32, n*n),
			Integration: make([]int32, n*n),
			IsReady:     true,
			BuildTime:   now,
		}
		for z := 0; z < n; z++ {
			for x := 0; x < n; x++ {
				idx := blob.CellIndex(x, z)
				gx, gz := block.global(chunk, x, z)
				cost, ok := integration[gcoord{gx, gz}]
				if !ok {
					field.Integration[idx] = -1
					continue
				}
				field.Integration[idx] = cost

				best := int32(-1)
				var bestDir [2]int
				for _, off := range neighborOffsets {
					nChunk, lx, lz := block.fromGlobal(gx+off.dx, gz+off.dz)
					if _, ok := block.chunks[nChunk]; !ok {
						continue
					}
					if !block.walkable(nChunk, lx, lz) {
						continue
					}
					nc, ok := integration[gcoord{gx + off.dx, gz + off.dz}]
					if !ok {
						continue
					}
					if best == -1 || nc < best {
						best = nc
						bestDir = [2]int{off.dx, off.dz}
					}
				}
				if best != -1 && best < cost {
					dx, dz := normalize(float32(bestDir[0]), float32(bestDir[1]))
					field.Vectors[idx] = [2]float32{dx, dz}
				}
			}
		}
		out[FieldKey{DestHash: destHash, Chunk: chunk}] = field
	}
	return out
}

func normalize(dx, dz float32) (float32, float32) {
	lenSq := dx*dx + dz*dz
	if lenSq == 0 {
		return 0, 0
	}
	l := sqrt32(lenSq)
	return dx / l, dz / l
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
