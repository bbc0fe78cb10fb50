package combatslots

import (
	"testing"

	"github.com/stretchr/testify/require"

	"navcore/internal/combat"
	"navcore/internal/config"
	"navcore/internal/ecscore"
)

func TestAcquireSaturatesAtMaxMeleeSlots(t *testing.T) {
	tables := combat.NewTables()
	cfg := config.Global()
	world := ecscore.NewWorld()

	target := world.Create()
	tables.Spawn(target, "target", 0.5, 1, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)

	var attackers []ecscore.Handle
	for i := 0; i < 5; i++ {
		h := world.Create()
		tables.Spawn(h, "attacker", 0.5, 0, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)
		tables.Target[h] = &combat.CurrentTarget{TargetEntity: target, HasTarget: true}
		attackers = append(attackers, h)
	}

	Run(tables, cfg)

	assigned := 0
	for _, h := range attackers {
		if tables.MeleeSlotAssignedTag.Has(h) {
			assigned++
		}
	}
	require.Equal(t, 4, assigned, "exactly max_melee_slots attackers admitted")
	require.Equal(t, 4, tables.Slots[target].CurrentMelee)

	var unassigned ecscore.Handle
	for _, h := range attackers {
		if !tables.MeleeSlotAssignedTag.Has(h) {
			unassigned = h
		}
	}

	releasedAttacker := attackers[0]
	if releasedAttacker == unassigned {
		releasedAttacker = attackers[1]
	}
	tables.Target[releasedAttacker] = &combat.CurrentTarget{}

	Run(tables, cfg)

	require.True(t, tables.MeleeSlotAssignedTag.Has(unassigned), "waiting attacker promoted after a slot freed")
	require.Equal(t, 4, tables.Slots[target].CurrentMelee)
}

func TestReleaseDecrementsOnTargetChange(t *testing.T) {
	tables := combat.NewTables()
	cfg := config.Global()
	world := ecscore.NewWorld()

	target := world.Create()
	tables.Spawn(target, "target", 0.5, 1, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)
	attacker := world.Create()
	tables.Spawn(attacker, "attacker", 0.5, 0, 100, combat.Weapon{Type: combat.Melee}, 10, 1, 4)
	tables.Target[attacker] = &combat.CurrentTarget{TargetEntity: target, HasTarget: true}

	Run(tables, cfg)
	require.Equal(t, 1, tables.Slots[target].CurrentMelee, "slot acquired")

	tables.Target[attacker] = &combat.CurrentTarget{}
	Run(tables, cfg)

	require.Equal(t, 0, tables.Slots[target].CurrentMelee, "slot released")
	require.False(t, tables.MeleeSlotAssignedTag.Has(attacker), "assignment tag disabled after release")
}
