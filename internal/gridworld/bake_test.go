package gridworld

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/config"
)

func TestBakeChunkFlatGroundAllWalkable(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	q := NewFlatHeightfield(0)

	blob := BakeChunk(ChunkCoord{X: 0, Z: 0}, cfg, q)

	n := cfg.ChunkCellCount()
	if len(blob.Nodes) != n*n {
		t.Fatalf("expected %d nodes, got %d", n*n, len(blob.Nodes))
	}
	for i, node := range blob.Nodes {
		if node.WalkableLayerMask != WalkableAll {
			t.Fatalf("node %d: expected WalkableAll, got %#x", i, node.WalkableLayerMask)
		}
		if node.SlopeFlags&SlopeTooSteep != 0 {
			t.Fatalf("node %d: unexpected steep flag on flat ground", i)
		}
	}
	for dir, conn := range blob.MacroConnectivity {
		if conn != 10 {
			t.Fatalf("macro dir %d: expected open connectivity 10, got %d", dir, conn)
		}
	}
}

func TestBakeChunkNoHitIsBlocked(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	q := &FlatHeightfield{
		HeightAt: func(x, z float32) (float32, bool) { return 0, false },
	}

	blob := BakeChunk(ChunkCoord{X: 0, Z: 0}, cfg, q)
	for i, node := range blob.Nodes {
		if node.WalkableLayerMask != WalkableNone {
			t.Fatalf("node %d: expected unreachable cell to be blocked, got %#x", i, node.WalkableLayerMask)
		}
	}
}

func TestBakeChunkObstacleClearanceBlocksNode(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	q := NewFlatHeightfield(0)
	q.Blocked = map[[2]int32]bool{{0, 0}: true}

	blob := BakeChunk(ChunkCoord{X: 0, Z: 0}, cfg, q)
	node := blob.NodeAt(0, 0)
	if node.WalkableLayerMask != WalkableNone {
		t.Fatalf("expected obstacle cell to be blocked, got %#x", node.WalkableLayerMask)
	}
}

func TestBakeChunkSteepSlopeFlyingOnly(t *testing.T) {
	config.Reset()
	cfg := config.Global()
	q := NewFlatHeightfield(0)
	q.SlopeAt = func(x, z float32) mgl32.Vec3 { return mgl32.Vec3{0.9, 0.1, 0} }

	blob := BakeChunk(ChunkCoord{X: 0, Z: 0}, cfg, q)
	node := blob.NodeAt(0, 0)
	if node.SlopeFlags&SlopeTooSteep == 0 {
		t.Fatalf("expected steep slope flag set")
	}
	if node.WalkableLayerMask != WalkableFlying {
		t.Fatalf("expected flying-only mask on steep slope, got %#x", node.WalkableLayerMask)
	}
}
