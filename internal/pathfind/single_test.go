package pathfind

import (
	"testing"

	"navcore/internal/config"
	"navcore/internal/gridworld"
)

func buildBlockedColumnBlob(n int, blockedX int) *gridworld.ChunkStaticBlob {
	blob := &gridworld.ChunkStaticBlob{
		Coord:     gridworld.ChunkCoord{X: 0, Z: 0},
		CellCount: int32(n),
		Nodes:     make([]gridworld.NodeStatic, n*n),
	}
	for z := 0; z < n; z++ {
		for x := 0; x < n; x++ {
			mask := gridworld.WalkableAll
			// The wall leaves the first and last rows open so a detour exists.
			if x == blockedX && z > 0 && z < n-1 {
				mask = gridworld.WalkableNone
			}
			blob.Nodes[blob.CellIndex(x, z)] = gridworld.NodeStatic{WalkableLayerMask: mask}
		}
	}
	for i := range blob.MacroConnectivity {
		blob.MacroConnectivity[i] = 10
	}
	return blob
}

func TestSingleChunkPathDetoursAroundWall(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	cfg.SetCellSize(1)
	cfg.SetChunkCellCount(8)

	blob := buildBlockedColumnBlob(8, 4)
	coord := gridworld.ChunkCoord{X: 0, Z: 0}

	result := FindSingleChunk(blob, coord, cfg, 1, 1, 6, 1, 6.5, 1.5, gridworld.WalkableAll, false)
	if !result.Success {
		t.Fatalf("expected path success")
	}
	if len(result.Waypoints) == 0 {
		t.Fatalf("expected non-empty waypoints")
	}

	last := result.Waypoints[len(result.Waypoints)-1]
	if last.X() != 6.5 || last.Z() != 1.5 {
		t.Fatalf("expected final waypoint to equal exact destination, got %+v", last)
	}

	sawDetour := false
	for _, wp := range result.Waypoints {
		if wp.Z() == 0.5 || wp.Z() == 7.5 {
			sawDetour = true
		}
	}
	if !sawDetour {
		t.Fatalf("expected path to detour through z in {0, 7}, got %+v", result.Waypoints)
	}
}

func TestSingleChunkUnreachableDestinationCellSnaps(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	cfg.SetCellSize(1)
	cfg.SetChunkCellCount(8)

	blob := &gridworld.ChunkStaticBlob{
		Coord:     gridworld.ChunkCoord{X: 0, Z: 0},
		CellCount: 8,
		Nodes:     make([]gridworld.NodeStatic, 64),
	}
	for z := 0; z < 8; z++ {
		for x := 0; x < 8; x++ {
			blob.Nodes[blob.CellIndex(x, z)] = gridworld.NodeStatic{WalkableLayerMask: gridworld.WalkableAll}
		}
	}
	blob.Nodes[blob.CellIndex(6, 1)] = gridworld.NodeStatic{WalkableLayerMask: gridworld.WalkableNone}
	coord := gridworld.ChunkCoord{X: 0, Z: 0}

	result := FindSingleChunk(blob, coord, cfg, 0, 1, 6, 1, 6.5, 1.5, gridworld.WalkableAll, false)
	if !result.Success {
		t.Fatalf("expected path success via snap")
	}
	last := result.Waypoints[len(result.Waypoints)-1]
	if last.X() == 6.5 && last.Z() == 1.5 {
		t.Fatalf("expected snapped final waypoint, not exact destination")
	}
}

func TestSingleChunkSameCellIsZeroLength(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	blob := buildBlockedColumnBlob(cfg.ChunkCellCount(), -1)
	coord := gridworld.ChunkCoord{X: 0, Z: 0}

	result := FindSingleChunk(blob, coord, cfg, 2, 2, 2, 2, 2.5, 2.5, gridworld.WalkableAll, false)
	if !result.Success {
		t.Fatalf("expected success for same-cell request")
	}
	if len(result.Waypoints) != 0 {
		t.Fatalf("expected zero waypoints, got %d", len(result.Waypoints))
	}
}
