package simrunner

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/combat"
	"navcore/internal/config"
	"navcore/internal/ecscore"
	"navcore/internal/flowfield"
	"navcore/internal/gridworld"
	"navcore/internal/movers"
	"navcore/internal/navigate"
	"navcore/internal/physics"
)

// recordingSink captures every published frame for assertions.
type recordingSink struct {
	frames []FrameEvents
}

func (r *recordingSink) PublishFrame(fe FrameEvents) {
	r.frames = append(r.frames, fe)
}

func newTestSim() *Sim {
	config.Reset()
	cfg := config.Global()
	cfg.SetCellSize(1)
	cfg.SetChunkCellCount(16)

	world := physics.NewWorld(physics.FlatGround(0))
	return NewSim(cfg, world, world)
}

func spawnMover(sim *Sim, x, z float32) ecscore.Handle {
	h := sim.World.Create()
	sim.Transforms.Set(h, &movers.LocalTransform{Position: mgl32.Vec3{x, 0, z}, Scale: 1})
	sim.Nav.Spawn(h)
	sim.Nav.Movement[h].Speed = 4
	sim.Nav.Movement[h].TurnSpeed = 50
	return h
}

func spawnFighter(sim *Sim, x, z float32, faction int32, maxHealth int32) ecscore.Handle {
	h := spawnMover(sim, x, z)
	sim.Combat.Spawn(h, "fighter", 0.5, faction, maxHealth,
		combat.Weapon{Type: combat.Melee, Range: 1.0, DamageMult: 1, SpeedMult: 1}, 10, 1, 4)
	det := sim.Combat.Detection[h]
	det.DetectionRadius = 20
	det.ChaseRange = 30
	det.PingRadius = 10
	return h
}

func TestMoveCommandPathsAndArrivesWithOneShotEvents(t *testing.T) {
	sim := newTestSim()
	sink := &recordingSink{}
	sim.Sink = sink

	anchor := sim.World.Create()
	sim.Anchors.Add(anchor, 8, 8, 1, sim.Config)

	h := spawnMover(sim, 1.5, 1.5)
	sim.Intake.Move(sim.Nav, h, mgl32.Vec3{6.5, 0, 1.5}, 1)

	ctx := context.Background()
	for i := 0; i < 200; i++ {
		if err := sim.Step(ctx, 0.1); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if sim.Nav.Nav[h].Mode == navigate.Idle && i > 0 {
			break
		}
	}

	if sim.Nav.Nav[h].Mode != navigate.Idle {
		t.Fatalf("expected arrival at destination, mode %v", sim.Nav.Nav[h].Mode)
	}
	if sim.Nav.Nav[h].HasDestination {
		t.Fatalf("arrival must clear has_destination")
	}
	pos := sim.Transforms.Get(h).Position
	dx, dz := pos.X()-6.5, pos.Z()-1.5
	if dx*dx+dz*dz > 1.5*1.5+0.1 {
		t.Fatalf("expected agent within arrival threshold of destination, got %+v", pos)
	}

	started, stopped := 0, 0
	for _, fe := range sink.frames {
		for _, e := range fe.Started {
			if e == h {
				started++
			}
		}
		for _, e := range fe.Stopped {
			if e == h {
				stopped++
			}
		}
	}
	if started != 1 {
		t.Fatalf("expected exactly one StartedMoving frame, got %d", started)
	}
	if stopped != 1 {
		t.Fatalf("expected exactly one StoppedMoving frame, got %d", stopped)
	}
}

func TestCrowdCollapsesToSharedFlowField(t *testing.T) {
	sim := newTestSim()

	anchor := sim.World.Create()
	sim.Anchors.Add(anchor, 8, 8, 1, sim.Config)

	dest := mgl32.Vec3{5.5, 0, 5.5}
	n := sim.Config.CrowdThreshold()
	handles := make([]ecscore.Handle, 0, n)
	for i := 0; i < n; i++ {
		h := spawnMover(sim, float32(i), 14.5)
		sim.Intake.Move(sim.Nav, h, dest, 1)
		handles = append(handles, h)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := sim.Step(ctx, 0.1); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	for _, h := range handles {
		if sim.Nav.Nav[h].Mode != navigate.FlowField {
			t.Fatalf("expected FlowField mode for crowded destination, got %v", sim.Nav.Nav[h].Mode)
		}
		if !sim.Nav.FlowFieldFollower.Has(h) {
			t.Fatalf("expected FlowFieldFollower enabled")
		}
	}

	hash := flowfield.DestinationHash(dest.X(), dest.Z(), sim.Config)
	destChunk := gridworld.WorldToChunk(dest.X(), dest.Z(), sim.Config)
	if sim.FlowField.Registry.Get(flowfield.FieldKey{DestHash: hash, Chunk: destChunk}) == nil {
		t.Fatalf("expected a flow field record for the shared destination")
	}
}

func TestCombatEndToEnd(t *testing.T) {
	sim := newTestSim()

	attacker := spawnFighter(sim, 0, 0, 0, 100)
	victim := spawnFighter(sim, 1.2, 0, 1, 30)

	ctx := context.Background()
	for i := 0; i < 16; i++ {
		if err := sim.Step(ctx, 0.5); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if !sim.Combat.DeadTag.Has(victim) {
		t.Fatalf("expected victim dead after repeated 10-damage hits on 30 health, health=%d",
			sim.Combat.Health[victim].Current)
	}
	if sim.Combat.Health[victim].Current != 0 {
		t.Fatalf("expected dead victim at 0 health, got %d", sim.Combat.Health[victim].Current)
	}
	if sim.Combat.AI[victim].State != combat.StateDead {
		t.Fatalf("expected victim in Dead state")
	}

	// attacker must have dropped the invalidated target and gone Idle
	if sim.Combat.Target[attacker].HasTarget {
		t.Fatalf("expected attacker to drop dead target")
	}
	if sim.Combat.AI[attacker].State != combat.StateIdle {
		t.Fatalf("expected attacker back to Idle, got %v", sim.Combat.AI[attacker].State)
	}

	// invariant: victim's slot counters drained once its attacker released
	slots := sim.Combat.Slots[victim]
	if slots.CurrentMelee != 0 || slots.CurrentRanged != 0 {
		t.Fatalf("expected released slot counters, got melee=%d ranged=%d", slots.CurrentMelee, slots.CurrentRanged)
	}
}

func TestSlotSaturationAdmitsMaxMeleeAndPromotesWaiter(t *testing.T) {
	sim := newTestSim()

	target := spawnFighter(sim, 0, 0, 1, 1000)
	attackers := make([]ecscore.Handle, 0, 5)
	for i := 0; i < 5; i++ {
		attackers = append(attackers, spawnFighter(sim, 2+float32(i)*0.5, 0, 0, 100))
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := sim.Step(ctx, 0.1); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	assigned := 0
	var waiter ecscore.Handle
	hasWaiter := false
	for _, a := range attackers {
		if sim.Combat.MeleeSlotAssignedTag.Has(a) {
			assign := sim.Combat.Assignment[a]
			if assign.TargetEntity != target {
				continue
			}
			if assign.SlotIndex < 0 || assign.SlotIndex >= assign.TotalSlots {
				t.Fatalf("slot index %d out of range [0,%d)", assign.SlotIndex, assign.TotalSlots)
			}
			assigned++
		} else if sim.Combat.Target[a].HasTarget {
			waiter = a
			hasWaiter = true
		}
	}
	if assigned != 4 {
		t.Fatalf("expected exactly 4 admitted melee attackers, got %d", assigned)
	}
	if !hasWaiter {
		t.Fatalf("expected the fifth attacker to keep the target while waiting")
	}

	// free one slot: the waiter must be promoted on the next slot-manager run
	var released ecscore.Handle
	for _, a := range attackers {
		if sim.Combat.MeleeSlotAssignedTag.Has(a) {
			released = a
			break
		}
	}
	sim.Combat.Target[released].HasTarget = false
	if err := sim.Step(ctx, 0.1); err != nil {
		t.Fatalf("promotion step: %v", err)
	}

	if !sim.Combat.MeleeSlotAssignedTag.Has(waiter) {
		t.Fatalf("expected waiting attacker promoted into the freed slot")
	}
}
