package aidecision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/combat"
	"navcore/internal/command"
	"navcore/internal/ecscore"
	"navcore/internal/navigate"
)

type fakePositions struct {
	pos map[ecscore.Handle]mgl32.Vec3
}

func (f fakePositions) Position3(h ecscore.Handle) (mgl32.Vec3, bool) {
	p, ok := f.pos[h]
	return p, ok
}

func (f fakePositions) Position(h ecscore.Handle) (mgl32.Vec3, bool) {
	return f.Position3(h)
}

func TestAttackingDealsDamageOnCooldown(t *testing.T) {
	tables := combat.NewTables()
	nav := navigate.NewTables()
	intake := command.NewIntake()
	world := ecscore.NewWorld()

	attacker := world.Create()
	target := world.Create()
	tables.Spawn(attacker, "attacker", 0.5, 0, 100, combat.Weapon{Type: combat.Melee, Range: 1, DamageMult: 1}, 10, 1, 4)
	tables.Spawn(target, "target", 0.5, 1, 30, combat.Weapon{Type: combat.Melee, Range: 1, DamageMult: 1}, 10, 1, 4)
	nav.Spawn(attacker)
	nav.Spawn(target)

	tables.Target[attacker] = &combat.CurrentTarget{TargetEntity: target, HasTarget: true}

	positions := fakePositions{pos: map[ecscore.Handle]mgl32.Vec3{
		attacker: {0, 0, 0},
		target:   {1.2, 0, 0},
	}}

	Run(tables, nav, intake, positions, 0, 0.016)

	if tables.AI[attacker].State != combat.StateAttacking {
		t.Fatalf("expected attacker to enter Attacking, got %v", tables.AI[attacker].State)
	}
	if !tables.DamageReceivedEvent.Has(target) {
		t.Fatalf("expected DamageReceivedEvent enabled on target after first attack")
	}
	dmg, from := tables.TakeDamage(target)
	if dmg != 10 {
		t.Fatalf("expected 10 damage dealt, got %d", dmg)
	}
	if from != attacker {
		t.Fatalf("expected damage attributed to attacker")
	}
}

func TestMovingWhenOutOfRange(t *testing.T) {
	tables := combat.NewTables()
	nav := navigate.NewTables()
	intake := command.NewIntake()
	world := ecscore.NewWorld()

	attacker := world.Create()
	target := world.Create()
	tables.Spawn(attacker, "attacker", 0.5, 0, 100, combat.Weapon{Type: combat.Ranged, Range: 5, DamageMult: 1}, 10, 1, 4)
	tables.Spawn(target, "target", 0.5, 1, 30, combat.Weapon{Type: combat.Melee, Range: 1}, 10, 1, 4)
	nav.Spawn(attacker)
	nav.Spawn(target)
	tables.Target[attacker] = &combat.CurrentTarget{TargetEntity: target, HasTarget: true}

	positions := fakePositions{pos: map[ecscore.Handle]mgl32.Vec3{
		attacker: {0, 0, 0},
		target:   {50, 0, 0},
	}}

	Run(tables, nav, intake, positions, 0, 0.016)
	intake.Run(nav, positions, 0)

	if tables.AI[attacker].State != combat.StateMoving {
		t.Fatalf("expected attacker to enter Moving, got %v", tables.AI[attacker].State)
	}
	if !nav.Nav[attacker].HasDestination {
		t.Fatalf("expected a move command to have been issued")
	}
}

func TestNoTargetGoesIdleAndStops(t *testing.T) {
	tables := combat.NewTables()
	nav := navigate.NewTables()
	intake := command.NewIntake()
	world := ecscore.NewWorld()

	attacker := world.Create()
	tables.Spawn(attacker, "attacker", 0.5, 0, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)
	nav.Spawn(attacker)
	tables.AI[attacker].State = combat.StateMoving

	positions := fakePositions{pos: map[ecscore.Handle]mgl32.Vec3{attacker: {0, 0, 0}}}
	Run(tables, nav, intake, positions, 0, 0.016)

	if tables.AI[attacker].State != combat.StateIdle {
		t.Fatalf("expected Idle when no target, got %v", tables.AI[attacker].State)
	}
	if !nav.StopCommandTag.Has(attacker) {
		t.Fatalf("expected a stop command when no target")
	}
}
