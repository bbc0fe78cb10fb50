package gridworld

import (
	"context"
	"testing"

	"navcore/internal/config"
	"navcore/internal/ecscore"
)

func TestChunkManagerStepsThroughLifecycle(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	cfg.SetActiveRingRadius(0)
	cfg.SetGhostRingRadius(1)

	store := NewChunkStore()
	anchors := NewAnchorTable()
	world := NewWorldAllocatorForTest()
	h := world.Create()
	anchors.Add(h, 0, 0, 1, cfg)

	mgr := NewChunkManager(store, cfg, NewFlatHeightfield(0), anchors)

	if err := mgr.Step(context.Background()); err != nil {
		t.Fatalf("step 1: %v", err)
	}
	origin := store.Get(ChunkCoord{0, 0})
	if origin == nil || origin.State != Active {
		t.Fatalf("expected origin chunk Active after first step, got %+v", origin)
	}
	if !origin.StaticReady {
		t.Fatalf("expected origin static blob baked")
	}
	neighbor := store.Get(ChunkCoord{1, 0})
	if neighbor == nil || neighbor.State != Ghost {
		t.Fatalf("expected neighbor chunk Ghost, got %+v", neighbor)
	}

	anchors.Remove(h)
	if err := mgr.Step(context.Background()); err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if store.Get(ChunkCoord{0, 0}) != nil {
		t.Fatalf("expected origin chunk to unload once anchor is gone")
	}
}

func TestAnchorPriorityWidensRings(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	cfg.SetActiveRingRadius(1)
	cfg.SetGhostRingRadius(1)

	store := NewChunkStore()
	anchors := NewAnchorTable()
	world := NewWorldAllocatorForTest()
	h := world.Create()
	anchors.Add(h, 0, 0, 3, cfg)

	mgr := NewChunkManager(store, cfg, NewFlatHeightfield(0), anchors)
	if err := mgr.Step(context.Background()); err != nil {
		t.Fatalf("step: %v", err)
	}

	edge := store.Get(ChunkCoord{3, 0})
	if edge == nil || edge.State != Active {
		t.Fatalf("expected chunk at priority-scaled active radius to be Active, got %+v", edge)
	}
	if store.Get(ChunkCoord{4, 0}) != nil {
		t.Fatalf("expected chunk beyond the scaled ring to stay untracked")
	}
}

// NewWorldAllocatorForTest is a tiny helper so gridworld tests don't need to
// import ecscore directly in every call site.
func NewWorldAllocatorForTest() *ecscore.World {
	return ecscore.NewWorld()
}
