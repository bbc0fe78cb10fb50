package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/combat"
	"navcore/internal/ecscore"
	"navcore/internal/movers"
	"navcore/internal/physics"
	"navcore/internal/simrunner"
)

// buildDemoWorld is the built-in scene used when navsimd runs without an
// embedding host: flat ground with a wall splitting the two spawn areas,
// leaving a gap the squads must route through.
func buildDemoWorld(cfg worldLayers) *physics.World {
	w := physics.NewWorld(physics.FlatGround(0))

	// wall along x=20, z in [-40, -4] and [4, 40]; gap around z=0
	for _, span := range [][2]float32{{-40, -4}, {4, 40}} {
		w.AddBox(physics.Box{
			Min:   mgl32.Vec3{19, 0, span[0]},
			Max:   mgl32.Vec3{21, 3, span[1]},
			Layer: cfg.unwalkable | cfg.obstacle,
		})
	}
	return w
}

type worldLayers struct {
	unwalkable uint8
	obstacle   uint8
}

// spawnSquad creates size combat-capable agents for a faction in rows of
// four starting at origin, returning their handles. The first agent of faction 0
// doubles as the streaming anchor.
func spawnSquad(sim *simrunner.Sim, faction int32, origin mgl32.Vec3, size int, ranged bool) []ecscore.Handle {
	handles := make([]ecscore.Handle, 0, size)
	for i := 0; i < size; i++ {
		h := sim.World.Create()
		pos := origin.Add(mgl32.Vec3{float32(i%4) * 1.5, 0, float32(i/4) * 1.5})
		sim.Transforms.Set(h, &movers.LocalTransform{Position: pos, Scale: 1})
		sim.Nav.Spawn(h)

		weapon := combat.Weapon{Type: combat.Melee, Range: 1.0, DamageMult: 1, SpeedMult: 1}
		if ranged && i%3 == 2 {
			weapon = combat.Weapon{Type: combat.Ranged, Range: 8.0, DamageMult: 0.8, SpeedMult: 1.2}
		}
		name := fmt.Sprintf("f%d-unit%d", faction, i)
		sim.Combat.Spawn(h, name, 0.5, faction, 30, weapon, 10, 1, 4)

		det := sim.Combat.Detection[h]
		det.DetectionRadius = 20
		det.ChaseRange = 30
		det.PingRadius = 10
		det.ObstacleLayers = sim.Config.UnwalkableLayer()

		handles = append(handles, h)
	}
	return handles
}
