package movers

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/ecscore"
	"navcore/internal/navigate"
)

func TestAStarFollowerAdvancesAndStopsAtEnd(t *testing.T) {
	tables := navigate.NewTables()
	transforms := NewTransforms()

	world := ecscore.NewWorld()
	h := world.Create()
	tables.Spawn(h)
	tables.Nav[h].Mode = navigate.AStar
	tables.Movement[h].IsFollowingPath = true
	tables.Movement[h].Speed = 5
	tables.Movement[h].TurnSpeed = 100
	tables.Movement[h].TurnDistance = 0.1
	tables.PathWaypt[h] = []mgl32.Vec3{{1, 0, 0}, {2, 0, 0}}
	transforms.Set(h, &LocalTransform{Position: mgl32.Vec3{0, 0, 0}})

	for i := 0; i < 200; i++ {
		RunAStarFollower(tables, transforms, 0.05)
		if !tables.Movement[h].IsFollowingPath {
			break
		}
	}

	if tables.Movement[h].IsFollowingPath {
		t.Fatalf("expected follower to finish the path buffer")
	}
	pos := transforms.Get(h).Position
	if pos.X() < 1.5 {
		t.Fatalf("expected agent to have advanced near the final waypoint, got %+v", pos)
	}
}
