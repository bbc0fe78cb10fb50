// Package threat implements the threat scan + ally ping stage: a unit
// snapshot, line-of-sight rays for ranged scanners on the calling
// goroutine, a data-parallel scoring pass with hysteresis, and the
// ally-ping broadcast that lets nearby allies adopt a just-acquired
// target.
package threat

import (
	"math"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"navcore/internal/combat"
	"navcore/internal/ecscore"
)

// LineOfSight is the one physics query this stage needs: a ray from a
// scanner toward a candidate, true if unobstructed.
type LineOfSight interface {
	Clear(from, to mgl32.Vec3, obstacleLayers uint8) bool
}

// unitSnapshot is one entry of the per-frame flat live-unit array.
type unitSnapshot struct {
	handle      ecscore.Handle
	position    mgl32.Vec3
	factionID   int32
	radius      float32
	healthFrac  float32
	meleeSlots  int
	maxSlots    int
}

type positionReader interface {
	Position3(h ecscore.Handle) (mgl32.Vec3, bool)
}

// snapshot collects every live (non-Dead) unit into the flat array the rest
// of the stage scans against.
func snapshot(tables *combat.Tables, transforms positionReader) []unitSnapshot {
	var out []unitSnapshot
	for h, ai := range tables.AI {
		if ai.State == combat.StateDead {
			continue
		}
		pos, ok := transforms.Position3(h)
		if !ok {
			continue
		}
		unit := tables.Unit[h]
		health := tables.Health[h]
		slots := tables.Slots[h]
		if unit == nil || health == nil || slots == nil {
			continue
		}
		frac := float32(0)
		if health.Max > 0 {
			frac = float32(health.Current) / float32(health.Max)
		}
		out = append(out, unitSnapshot{
			handle:     h,
			position:   pos,
			factionID:  unit.FactionID,
			radius:     unit.Radius,
			healthFrac: frac,
			meleeSlots: slots.CurrentMelee,
			maxSlots:   slots.MaxMeleeSlots,
		})
	}
	return out
}

type losPair struct {
	scanner ecscore.Handle
	target  ecscore.Handle
}

// Scan runs the full threat-scan stage once for this frame: LoS rays on
// the caller's goroutine, then a parallel scoring pass.
func Scan(tables *combat.Tables, transforms positionReader, los LineOfSight, now float32, dt float32) error {
	units := snapshot(tables, transforms)
	byHandle := make(map[ecscore.Handle]unitSnapshot, len(units))
	for _, u := range units {
		byHandle[u.handle] = u
	}

	losSet := computeLineOfSight(tables, units, byHandle, los, now)

	g := new(errgroup.Group)
	var mu sync.Mutex
	for _, scanner := range units {
		scanner := scanner
		det := tables.Detection[scanner.handle]
		if det == nil || now < det.NextScanTime {
			continue
		}
		weapon := tables.Weapon[scanner.handle]
		g.Go(func() error {
			best, bestScore, found := pickBestTarget(tables, scanner, units, losSet, weapon)
			mu.Lock()
			applyTarget(tables, scanner, best, bestScore, found, byHandle, det, now)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func computeLineOfSight(tables *combat.Tables, units []unitSnapshot, byHandle map[ecscore.Handle]unitSnapshot, los LineOfSight, now float32) mapset.Set[losPair] {
	result := mapset.NewThreadUnsafeSet[losPair]()
	for _, scanner := range units {
		weapon := tables.Weapon[scanner.handle]
		det := tables.Detection[scanner.handle]
		if weapon == nil || det == nil || weapon.Type == combat.Melee {
			continue
		}
		if now < det.NextScanTime {
			continue
		}
		from := scanner.position.Add(mgl32.Vec3{0, 1, 0})
		for _, candidate := range units {
			if candidate.handle == scanner.handle {
				continue
			}
			dist := dist2D(scanner.position, candidate.position)
			if dist > det.DetectionRadius {
				continue
			}
			if los.Clear(from, candidate.position, det.ObstacleLayers) {
				result.Add(losPair{scanner: scanner.handle, target: candidate.handle})
			}
		}
	}
	return result
}

func pickBestTarget(
	tables *combat.Tables,
	scanner unitSnapshot,
	units []unitSnapshot,
	losSet mapset.Set[losPair],
	weapon *combat.Weapon,
) (ecscore.Handle, float32, bool) {
	det := tables.Detection[scanner.handle]
	var best ecscore.Handle
	bestScore := float32(1 << 30)
	found := false

	for _, candidate := range units {
		if candidate.handle == scanner.handle || candidate.factionID == scanner.factionID {
			continue
		}
		dist := dist2D(scanner.position, candidate.position)
		if dist > det.DetectionRadius {
			continue
		}
		if weapon != nil && weapon.Type != combat.Melee {
			if !losSet.Contains(losPair{scanner: scanner.handle, target: candidate.handle}) {
				continue
			}
		}
		score := scoreOf(dist, candidate.meleeSlots, candidate.maxSlots, candidate.healthFrac)
		if !found || score < bestScore {
			best, bestScore, found = candidate.handle, score, true
		}
	}
	return best, bestScore, found
}

func scoreOf(dist float32, meleeSlots, maxSlots int, healthFrac float32) float32 {
	slotFrac := float32(0)
	if maxSlots > 0 {
		slotFrac = float32(meleeSlots) / float32(maxSlots)
	}
	return dist - 30*slotFrac - 20*(1-healthFrac)
}

func applyTarget(
	tables *combat.Tables,
	scanner unitSnapshot,
	best ecscore.Handle,
	bestScore float32,
	found bool,
	byHandle map[ecscore.Handle]unitSnapshot,
	det *combat.Detection,
	now float32,
) {
	cur := tables.Target[scanner.handle]
	if cur == nil {
		cur = &combat.CurrentTarget{}
		tables.Target[scanner.handle] = cur
	}
	det.NextScanTime = now + det.ScanInterval

	if cur.HasTarget {
		if curUnit, ok := byHandle[cur.TargetEntity]; !ok || dist2D(scanner.position, curUnit.position) > det.ChaseRange {
			cur.HasTarget = false
		}
	}

	if !found {
		return
	}

	switchTarget := !cur.HasTarget
	if cur.HasTarget && cur.TargetEntity != best {
		if curUnit, ok := byHandle[cur.TargetEntity]; ok {
			curScore := scoreOf(dist2D(scanner.position, curUnit.position), curUnit.meleeSlots, curUnit.maxSlots, curUnit.healthFrac)
			if bestScore <= curScore-15 {
				switchTarget = true
			}
		} else {
			switchTarget = true
		}
	}

	if switchTarget {
		cur.TargetEntity = best
		cur.HasTarget = true
		cur.LastKnown = byHandle[best].position
	}
}

func dist2D(a, b mgl32.Vec3) float32 {
	dx, dz := a.X()-b.X(), a.Z()-b.Z()
	return float32(math.Sqrt(float64(dx*dx + dz*dz)))
}
