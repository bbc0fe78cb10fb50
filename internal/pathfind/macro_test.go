package pathfind

import (
	"testing"

	"navcore/internal/config"
	"navcore/internal/gridworld"
)

func TestFindMacroRoutesThroughUnloadedIntermediateChunk(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	cfg.SetCellSize(1)
	cfg.SetChunkCellCount(8)

	store := gridworld.NewChunkStore()
	for _, coord := range []gridworld.ChunkCoord{{X: 0, Z: 0}, {X: 2, Z: 0}} {
		c := store.GetOrCreate(coord)
		c.State = gridworld.Active
		c.StaticReady = true
		c.Static = &gridworld.ChunkStaticBlob{Coord: coord, CellCount: 8}
		for i := range c.Static.MacroConnectivity {
			c.Static.MacroConnectivity[i] = 10
		}
	}

	result := FindMacro(store, cfg, gridworld.ChunkCoord{X: 0, Z: 0}, gridworld.ChunkCoord{X: 2, Z: 0})
	if !result.Success {
		t.Fatalf("expected macro path success")
	}
	if len(result.MacroWaypoints) != 2 {
		t.Fatalf("expected 2 macro waypoints (chunk 1 and chunk 2 centers), got %d", len(result.MacroWaypoints))
	}

	wantMid, _ := gridworld.ChunkCenterWorld(gridworld.ChunkCoord{X: 1, Z: 0}, cfg)
	if result.MacroWaypoints[0].X() != wantMid {
		t.Fatalf("expected first macro waypoint at intermediate chunk center x=%v, got %v", wantMid, result.MacroWaypoints[0].X())
	}
}

func TestFindMacroBlockedEdgeIsAvoided(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	store := gridworld.NewChunkStore()

	origin := store.GetOrCreate(gridworld.ChunkCoord{X: 0, Z: 0})
	origin.State = gridworld.Active
	origin.StaticReady = true
	origin.Static = &gridworld.ChunkStaticBlob{Coord: gridworld.ChunkCoord{X: 0, Z: 0}, CellCount: 8}
	origin.Static.MacroConnectivity[gridworld.MacroE] = 0

	result := FindMacro(store, cfg, gridworld.ChunkCoord{X: 0, Z: 0}, gridworld.ChunkCoord{X: 1, Z: 0})
	if result.Success && len(result.MacroWaypoints) == 1 {
		t.Fatalf("expected direct east edge to be blocked, forcing a detour or failure, got direct hop")
	}
}
