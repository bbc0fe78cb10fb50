package threat

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/combat"
	"navcore/internal/ecscore"
)

type fakeTransforms struct {
	pos map[ecscore.Handle]mgl32.Vec3
}

func (f fakeTransforms) Position3(h ecscore.Handle) (mgl32.Vec3, bool) {
	p, ok := f.pos[h]
	return p, ok
}

type alwaysClearLOS struct{}

func (alwaysClearLOS) Clear(from, to mgl32.Vec3, obstacleLayers uint8) bool { return true }

func TestScanAcquiresNearestEnemy(t *testing.T) {
	tables := combat.NewTables()
	world := ecscore.NewWorld()
	attacker := world.Create()
	enemy := world.Create()

	tables.Spawn(attacker, "attacker", 0.5, 1, 100, combat.Weapon{Type: combat.Melee, Range: 1}, 10, 1, 4)
	tables.Spawn(enemy, "enemy", 0.5, 2, 100, combat.Weapon{Type: combat.Melee, Range: 1}, 10, 1, 4)
	tables.Detection[attacker].DetectionRadius = 20
	tables.Detection[attacker].ChaseRange = 20

	tf := fakeTransforms{pos: map[ecscore.Handle]mgl32.Vec3{
		attacker: {0, 0, 0},
		enemy:    {3, 0, 0},
	}}

	if err := Scan(tables, tf, alwaysClearLOS{}, 0, 0.016); err != nil {
		t.Fatalf("scan: %v", err)
	}

	target := tables.Target[attacker]
	if !target.HasTarget || target.TargetEntity != enemy {
		t.Fatalf("expected attacker to target enemy, got %+v", target)
	}
}

func TestScanIgnoresSameFaction(t *testing.T) {
	tables := combat.NewTables()
	world := ecscore.NewWorld()
	a := world.Create()
	ally := world.Create()

	tables.Spawn(a, "a", 0.5, 1, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)
	tables.Spawn(ally, "ally", 0.5, 1, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)
	tables.Detection[a].DetectionRadius = 20

	tf := fakeTransforms{pos: map[ecscore.Handle]mgl32.Vec3{
		a:    {0, 0, 0},
		ally: {1, 0, 0},
	}}

	if err := Scan(tables, tf, alwaysClearLOS{}, 0, 0.016); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if tables.Target[a].HasTarget {
		t.Fatalf("expected no target among same-faction units")
	}
}
