package threat

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/combat"
	"navcore/internal/ecscore"
)

// ping is one broadcast raised this frame by a unit that just acquired a
// target.
type ping struct {
	pingerPosition mgl32.Vec3
	pingRadius     float32
	factionID      int32
	targetEntity   ecscore.Handle
	targetPosition mgl32.Vec3
}

// RunAllyPing implements the ally-ping pass: units whose state_timer
// shows the target was acquired this frame broadcast a ping; targetless
// same-faction units within ping_radius adopt that target.
func RunAllyPing(tables *combat.Tables, transforms positionReader, dt float32) {
	units := snapshot(tables, transforms)
	byHandle := make(map[ecscore.Handle]unitSnapshot, len(units))
	for _, u := range units {
		byHandle[u.handle] = u
	}

	var pings []ping
	for _, u := range units {
		ai := tables.AI[u.handle]
		det := tables.Detection[u.handle]
		target := tables.Target[u.handle]
		if ai == nil || det == nil || target == nil || !target.HasTarget {
			continue
		}
		if ai.StateTimer >= 1.5*dt {
			continue
		}
		unit := tables.Unit[u.handle]
		if unit == nil {
			continue
		}
		targetPos := target.LastKnown
		if tu, ok := byHandle[target.TargetEntity]; ok {
			targetPos = tu.position
		}
		pings = append(pings, ping{
			pingerPosition: u.position,
			pingRadius:     det.PingRadius,
			factionID:      unit.FactionID,
			targetEntity:   target.TargetEntity,
			targetPosition: targetPos,
		})
	}

	if len(pings) == 0 {
		return
	}

	pingedFactions := mapset.NewThreadUnsafeSet[int32]()
	for _, p := range pings {
		pingedFactions.Add(p.factionID)
	}

	for _, u := range units {
		target := tables.Target[u.handle]
		unit := tables.Unit[u.handle]
		if target == nil || unit == nil || target.HasTarget {
			continue
		}
		if !pingedFactions.Contains(unit.FactionID) {
			continue
		}
		for _, p := range pings {
			if p.factionID != unit.FactionID || p.targetEntity == u.handle {
				continue
			}
			if dist2D(u.position, p.pingerPosition) > p.pingRadius {
				continue
			}
			target.TargetEntity = p.targetEntity
			target.HasTarget = true
			target.LastKnown = p.targetPosition
			break
		}
	}
}
