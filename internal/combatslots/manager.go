// Package combatslots implements the melee slot manager stage: release
// stale assignments, acquire slots for targeted agents, and hand back the
// orbit angle AI Decision turns into a world position.
package combatslots

import (
	"math"

	"navcore/internal/combat"
	"navcore/internal/config"
	"navcore/internal/ecscore"
)

// Run executes one frame of the Melee Slot Manager: Release then Acquire.
func Run(tables *combat.Tables, cfg *config.NavigationConfig) {
	release(tables)
	acquire(tables, cfg)
}

// release frees slots held by attackers whose target changed or was lost.
func release(tables *combat.Tables) {
	for h, assign := range tables.Assignment {
		if !tables.MeleeSlotAssignedTag.Has(h) {
			continue
		}
		target := tables.Target[h]
		stillValid := target != nil && target.HasTarget && target.TargetEntity == assign.TargetEntity
		if stillValid {
			continue
		}
		releaseSlot(tables, h, assign.TargetEntity)
	}
}

func releaseSlot(tables *combat.Tables, attacker, target ecscore.Handle) {
	slots := tables.Slots[target]
	weapon := tables.Weapon[attacker]
	if slots != nil && weapon != nil {
		switch weapon.Type {
		case combat.Melee:
			if slots.CurrentMelee > 0 {
				slots.CurrentMelee--
			}
		default:
			if slots.CurrentRanged > 0 {
				slots.CurrentRanged--
			}
		}
	}
	tables.MeleeSlotAssignedTag.Disable(attacker)
	delete(tables.Assignment, attacker)
}

// acquire admits targeted, unassigned agents into a slot on their target.
func acquire(tables *combat.Tables, cfg *config.NavigationConfig) {
	for h, target := range tables.Target {
		if !target.HasTarget {
			continue
		}
		if tables.MeleeSlotAssignedTag.Has(h) {
			continue
		}
		weapon := tables.Weapon[h]
		slots := tables.Slots[target.TargetEntity]
		if weapon == nil || slots == nil {
			continue
		}

		var slotIndex, totalSlots int
		switch weapon.Type {
		case combat.Melee:
			if slots.CurrentMelee >= slots.MaxMeleeSlots {
				continue
			}
			slots.CurrentMelee++
			slotIndex = slots.CurrentMelee - 1
			totalSlots = slots.MaxMeleeSlots
		default:
			slots.CurrentRanged++
			slotIndex = slots.CurrentRanged - 1
			totalSlots = cfg.RangedSlotTotal()
		}

		tables.Assignment[h] = &combat.MeleeSlotAssignment{
			TargetEntity: target.TargetEntity,
			SlotIndex:    slotIndex,
			TotalSlots:   totalSlots,
		}
		tables.MeleeSlotAssignedTag.Enable(h)
	}
}

// OrbitAngle returns the ring angle (radians) for a slot.
func OrbitAngle(slotIndex, totalSlots int) float32 {
	if totalSlots <= 0 {
		return 0
	}
	return (float32(slotIndex) / float32(totalSlots)) * 2 * float32(math.Pi)
}
