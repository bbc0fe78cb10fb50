// Package aidecision implements the per-agent combat AI state machine:
// target validation, desired-position computation for ranged/melee
// engagement styles, the Idle/Moving/Attacking transitions, and attack-
// cooldown gated damage events.
package aidecision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/combat"
	"navcore/internal/combatslots"
	"navcore/internal/command"
	"navcore/internal/ecscore"
	"navcore/internal/navigate"
	"navcore/internal/telemetry"
)

type positionReader interface {
	Position3(h ecscore.Handle) (mgl32.Vec3, bool)
}

// Run executes one frame of AI Decision for every live agent with combat
// state, emitting move/stop commands through intake and damage events
// through the combat tables.
func Run(tables *combat.Tables, nav *navigate.Tables, intake *command.Intake, positions positionReader, now, dt float32) {
	for h, ai := range tables.AI {
		ai.StateTimer += dt
		if ai.State == combat.StateDead {
			continue
		}

		target := tables.Target[h]
		if target == nil || !target.HasTarget {
			if ai.State != combat.StateIdle {
				ai.State = combat.StateIdle
				ai.StateTimer = 0
				intake.Stop(nav, h)
			}
			continue
		}

		if targetInvalid(tables, target.TargetEntity) {
			target.HasTarget = false
			if ai.State != combat.StateIdle {
				ai.State = combat.StateIdle
				ai.StateTimer = 0
			}
			intake.Stop(nav, h)
			continue
		}

		if ai.State == combat.StateHit {
			continue
		}

		selfPos, ok := positions.Position3(h)
		if !ok {
			continue
		}
		targetPos, ok := positions.Position3(target.TargetEntity)
		if !ok {
			continue
		}
		target.LastKnown = targetPos

		weapon := tables.Weapon[h]
		selfUnit := tables.Unit[h]
		targetUnit := tables.Unit[target.TargetEntity]
		if weapon == nil || selfUnit == nil || targetUnit == nil {
			continue
		}
		effectiveRange := weapon.Range + selfUnit.Radius + targetUnit.Radius

		dist, desiredPos := desiredPosition(tables, h, weapon, selfUnit, targetUnit, selfPos, targetPos, effectiveRange)

		inRange := dist <= effectiveRange
		if weapon.Type == combat.Melee {
			inRange = dist <= effectiveRange+0.5
		}

		if inRange {
			if ai.State != combat.StateAttacking {
				ai.State = combat.StateAttacking
				ai.StateTimer = 0
			}
			intake.Stop(nav, h)
		} else {
			if ai.State != combat.StateMoving {
				ai.State = combat.StateMoving
				ai.StateTimer = 0
			}
			intake.Move(nav, h, desiredPos, 1)
		}

		if ai.State == combat.StateAttacking {
			attack := tables.Attack[h]
			if attack != nil && now >= attack.LastAttackTime+attack.Cooldown {
				attack.LastAttackTime = now
				damage := int32(math.Round(float64(attack.BaseDamage) * float64(weapon.DamageMult)))
				tables.AttackHitEvent.Enable(h)
				tables.EnableDamage(h, target.TargetEntity, damage)
				telemetry.Attacks.Inc()
			}
		}
	}
}

// targetInvalid reports whether a target entity is gone or already dead.
func targetInvalid(tables *combat.Tables, target ecscore.Handle) bool {
	if _, ok := tables.Unit[target]; !ok {
		return true
	}
	return tables.DeadTag.Has(target)
}

// desiredPosition returns the flattened distance to target and the position
// the agent should move toward: a standoff point for ranged, an orbit slot
// for melee.
func desiredPosition(tables *combat.Tables, h ecscore.Handle, weapon *combat.Weapon, selfUnit, targetUnit *combat.UnitData, selfPos, targetPos mgl32.Vec3, effectiveRange float32) (float32, mgl32.Vec3) {
	dx, dz := selfPos.X()-targetPos.X(), selfPos.Z()-targetPos.Z()
	dist := float32(math.Sqrt(float64(dx*dx + dz*dz)))

	if weapon.Type != combat.Melee {
		standoff := effectiveRange - 0.2
		if dist < 1e-4 {
			return dist, targetPos
		}
		nx, nz := dx/dist, dz/dist
		return dist, mgl32.Vec3{targetPos.X() + nx*standoff, selfPos.Y(), targetPos.Z() + nz*standoff}
	}

	assign := tables.Assignment[h]
	if assign == nil {
		return dist, targetPos
	}
	angle := combatslots.OrbitAngle(assign.SlotIndex, assign.TotalSlots)
	radius := selfUnit.Radius + targetUnit.Radius + weapon.Range*0.5
	offset := mgl32.Vec3{float32(math.Cos(float64(angle))), 0, float32(math.Sin(float64(angle)))}.Mul(radius)
	orbit := targetPos.Add(offset)
	orbit[1] = selfPos.Y()
	return dist, orbit
}
