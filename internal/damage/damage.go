// Package damage implements the damage, regen, and hit recovery stages:
// applying pending DamageReceivedEvents, transitioning units
// to Hit or Dead, out-of-combat health regeneration, and the timed return
// from Hit back to Attacking or Idle.
package damage

import (
	"math"

	"github.com/sirupsen/logrus"

	"navcore/internal/combat"
	"navcore/internal/command"
	"navcore/internal/config"
	"navcore/internal/ecscore"
	"navcore/internal/navigate"
)

var log = logrus.WithField("stage", "damage")

// ApplyDamage consumes every enabled DamageReceivedEvent this frame.
func ApplyDamage(tables *combat.Tables, nav *navigate.Tables, intake *command.Intake) {
	tables.DamageReceivedEvent.Each(func(h ecscore.Handle) {
		health := tables.Health[h]
		ai := tables.AI[h]
		if health == nil || ai == nil || ai.State == combat.StateDead {
			tables.DamageReceivedEvent.Disable(h)
			return
		}

		amount, attacker := tables.TakeDamage(h)
		health.Current -= amount
		if health.Current < 0 {
			health.Current = 0
		}
		tables.ResetCombatTimer(h)

		if health.Current <= 0 {
			ai.State = combat.StateDead
			ai.StateTimer = 0
			tables.DeadTag.Enable(h)
			// Dropping the target is what frees the dead unit's slot: the
			// next Melee Slot Manager release pass sees the lost target and
			// decrements the old target's counters.
			if target := tables.Target[h]; target != nil {
				target.HasTarget = false
			}
			intake.Stop(nav, h)
			tables.RecordDeath(h)
			log.WithFields(logrus.Fields{
				"entity":   h.Index,
				"attacker": attacker.Index,
			}).Info("unit died")
		} else {
			ai.State = combat.StateHit
			ai.StateTimer = 0
		}

		tables.DamageReceivedEvent.Disable(h)
	})
}

// RunRegen advances out-of-combat health regeneration for every living unit.
func RunRegen(tables *combat.Tables, cfg *config.NavigationConfig, dt float32) {
	delay := cfg.OutOfCombatDelay()
	rate := cfg.RegenRate()
	for h, health := range tables.Health {
		ai := tables.AI[h]
		if ai == nil || ai.State == combat.StateDead {
			continue
		}
		tables.AdvanceCombatTimer(h, dt)
		if health.Current >= health.Max {
			continue
		}
		if tables.TimeSinceLastDamage(h) < delay {
			continue
		}
		health.Current += int32(math.Round(float64(rate * dt)))
		if health.Current > health.Max {
			health.Current = health.Max
		}
	}
}

// RunHitRecovery returns units to Attacking (if they still have a target) or
// Idle once hit_anim_duration has elapsed.
func RunHitRecovery(tables *combat.Tables, cfg *config.NavigationConfig) {
	duration := cfg.HitAnimDuration()
	for h, ai := range tables.AI {
		if ai.State != combat.StateHit {
			continue
		}
		if ai.StateTimer < duration {
			continue
		}
		target := tables.Target[h]
		if target != nil && target.HasTarget {
			ai.State = combat.StateAttacking
		} else {
			ai.State = combat.StateIdle
		}
		ai.StateTimer = 0
	}
}
