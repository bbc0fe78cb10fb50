// Package combat holds the shared combat component tables consumed by the
// threat scan, melee slot manager, AI decision, and damage stages. One
// Tables instance is
// constructed per simulation and threaded through all four stages, the same
// way navigate.Tables is threaded through the navigation stages.
package combat

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/ecscore"
)

// WeaponType selects a unit's engagement style.
type WeaponType int

const (
	Melee WeaponType = iota
	Ranged
	RangedAOE
)

// AIStateKind is the per-agent combat state machine state.
type AIStateKind int

const (
	StateIdle AIStateKind = iota
	StateMoving
	StateAttacking
	StateHit
	StateDead
)

type UnitData struct {
	Name      string
	Radius    float32
	FactionID int32
}

type Health struct {
	Current int32
	Max     int32
}

type Weapon struct {
	Type            WeaponType
	Range           float32
	DamageMult      float32
	SpeedMult       float32
	DetectionRange  float32
}

type Attack struct {
	BaseDamage     int32
	BaseAttackSpeed float32
	Cooldown       float32
	LastAttackTime float32
}

type AIState struct {
	State      AIStateKind
	StateTimer float32
}

type Detection struct {
	DetectionRadius float32
	ChaseRange      float32
	PingRadius      float32
	ObstacleLayers  uint8
	ScanInterval    float32
	NextScanTime    float32
}

type CurrentTarget struct {
	TargetEntity ecscore.Handle
	LastKnown    mgl32.Vec3
	HasTarget    bool
}

type MeleeSlots struct {
	CurrentMelee   int
	CurrentRanged  int
	MaxMeleeSlots  int
}

type MeleeSlotAssignment struct {
	TargetEntity ecscore.Handle
	SlotIndex    int
	TotalSlots   int
}

// Tables bundles every combat component map plus the enableable event tags.
type Tables struct {
	mu sync.RWMutex

	Unit       map[ecscore.Handle]*UnitData
	Health     map[ecscore.Handle]*Health
	Weapon     map[ecscore.Handle]*Weapon
	Attack     map[ecscore.Handle]*Attack
	AI         map[ecscore.Handle]*AIState
	Detection  map[ecscore.Handle]*Detection
	Target     map[ecscore.Handle]*CurrentTarget
	Slots      map[ecscore.Handle]*MeleeSlots
	Assignment map[ecscore.Handle]*MeleeSlotAssignment

	AttackHitEvent      *ecscore.Tags
	DamageReceivedEvent *ecscore.Tags
	DeadTag             *ecscore.Tags
	MeleeSlotAssignedTag *ecscore.Tags

	damageAmount        map[ecscore.Handle]int32
	damageAttacker      map[ecscore.Handle]ecscore.Handle
	timeSinceLastDamage map[ecscore.Handle]float32

	attackLog []AttackRecord
	deathLog  []ecscore.Handle
}

// AttackRecord is the payload side of an AttackHitEvent: who hit whom for
// how much this frame. Drained once per frame by whoever observes events.
type AttackRecord struct {
	Attacker ecscore.Handle
	Target   ecscore.Handle
	Damage   int32
}

// NewTables builds an empty combat component set.
func NewTables() *Tables {
	return &Tables{
		Unit:       make(map[ecscore.Handle]*UnitData),
		Health:     make(map[ecscore.Handle]*Health),
		Weapon:     make(map[ecscore.Handle]*Weapon),
		Attack:     make(map[ecscore.Handle]*Attack),
		AI:         make(map[ecscore.Handle]*AIState),
		Detection:  make(map[ecscore.Handle]*Detection),
		Target:     make(map[ecscore.Handle]*CurrentTarget),
		Slots:      make(map[ecscore.Handle]*MeleeSlots),
		Assignment: make(map[ecscore.Handle]*MeleeSlotAssignment),

		AttackHitEvent:       ecscore.NewTags(),
		DamageReceivedEvent:  ecscore.NewTags(),
		DeadTag:              ecscore.NewTags(),
		MeleeSlotAssignedTag: ecscore.NewTags(),

		damageAmount:        make(map[ecscore.Handle]int32),
		damageAttacker:      make(map[ecscore.Handle]ecscore.Handle),
		timeSinceLastDamage: make(map[ecscore.Handle]float32),
	}
}

// ResetCombatTimer zeroes the out-of-combat clock for h; called whenever it
// takes damage.
func (t *Tables) ResetCombatTimer(h ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeSinceLastDamage[h] = 0
}

// AdvanceCombatTimer ticks h's out-of-combat clock forward by dt.
func (t *Tables) AdvanceCombatTimer(h ecscore.Handle, dt float32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timeSinceLastDamage[h] += dt
}

// TimeSinceLastDamage returns how long it has been since h last took
// damage; units with no clock yet (never damaged and never advanced by
// AdvanceCombatTimer) read as already elapsed.
func (t *Tables) TimeSinceLastDamage(h ecscore.Handle) float32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if v, ok := t.timeSinceLastDamage[h]; ok {
		return v
	}
	return math.MaxFloat32
}

// EnableDamage enables DamageReceivedEvent on target, carrying the amount
// and the attacker that dealt it; AI Decision's attack resolution goes
// through this, and the paired AttackRecord feeds the event feed.
func (t *Tables) EnableDamage(attacker, target ecscore.Handle, amount int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.damageAmount[target] = amount
	t.damageAttacker[target] = attacker
	t.attackLog = append(t.attackLog, AttackRecord{Attacker: attacker, Target: target, Damage: amount})
	t.DamageReceivedEvent.Enable(target)
}

// TakeDamage returns and clears the pending damage amount and attacker for h.
func (t *Tables) TakeDamage(h ecscore.Handle) (int32, ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	amt := t.damageAmount[h]
	attacker := t.damageAttacker[h]
	delete(t.damageAmount, h)
	delete(t.damageAttacker, h)
	return amt, attacker
}

// RecordDeath appends h to this frame's death log.
func (t *Tables) RecordDeath(h ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deathLog = append(t.deathLog, h)
}

// DrainFrameEvents returns and clears this frame's attack and death logs.
// Called once per frame, after the damage stage and before late cleanup.
func (t *Tables) DrainFrameEvents() ([]AttackRecord, []ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	attacks, deaths := t.attackLog, t.deathLog
	t.attackLog, t.deathLog = nil, nil
	return attacks, deaths
}

// Spawn registers a combat-capable unit with the given weapon/health/slot
// tuning; callers that only need navigation skip this entirely.
func (t *Tables) Spawn(h ecscore.Handle, name string, radius float32, faction int32, maxHealth int32, weapon Weapon, baseDamage int32, baseAttackSpeed float32, maxMeleeSlots int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Unit[h] = &UnitData{Name: name, Radius: radius, FactionID: faction}
	t.Health[h] = &Health{Current: maxHealth, Max: maxHealth}
	w := weapon
	t.Weapon[h] = &w
	cooldown := 1 / maxFloat32(0.01, baseAttackSpeed*weapon.SpeedMult)
	t.Attack[h] = &Attack{BaseDamage: baseDamage, BaseAttackSpeed: baseAttackSpeed, Cooldown: cooldown, LastAttackTime: -cooldown}
	t.AI[h] = &AIState{State: StateIdle}
	t.Detection[h] = &Detection{ScanInterval: 0.5}
	t.Target[h] = &CurrentTarget{}
	t.Slots[h] = &MeleeSlots{MaxMeleeSlots: maxMeleeSlots}
}

func maxFloat32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
