// Package navigate holds the per-agent navigation components and the stages
// that own them directly: the mode dispatcher, stuck detection and the path
// success handler.
// Components are plain structs behind handle-keyed tables.
package navigate

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/config"
	"navcore/internal/ecscore"
	"navcore/internal/gridworld"
)

// Mode is the navigation mode an agent is currently following.
type Mode int

const (
	Idle Mode = iota
	AStar
	FlowField
	MacroOnly
)

func (m Mode) String() string {
	switch m {
	case AStar:
		return "AStar"
	case FlowField:
		return "FlowField"
	case MacroOnly:
		return "MacroOnly"
	default:
		return "Idle"
	}
}

// AgentNavigation is the per-agent navigation state.
type AgentNavigation struct {
	Destination       mgl32.Vec3
	LastKnownPosition mgl32.Vec3
	Mode              Mode
	FlowFieldID       uint64
	RepathCooldown    float32
	StuckTimer        float32
	ArrivalThreshold  float32
	HasDestination    bool
	MacroPathDone     bool
}

// UnitMovement is the per-agent kinematic tuning + path cursor.
type UnitMovement struct {
	Speed                 float32
	TurnSpeed             float32
	TurnDistance          float32
	CurrentWaypointIndex  int
	IsFollowingPath       bool
	PrevIsFollowingPath   bool
}

// UnitLayerPermissions gates which cells an agent may use.
type UnitLayerPermissions struct {
	WalkableLayers  uint8
	CostLayerWeights uint8
	IsFlying        bool
}

// StuckDetection is the repath-trigger bookkeeping.
type StuckDetection struct {
	LastCheckedPosition   mgl32.Vec3
	NextCheckTime         float32
	CheckInterval         float32
	StuckDistanceThreshold float32
	StuckCount            int
	MaxStuckCount         int
}

// PathRequest is the enableable one-shot request tag/payload pair:
// priority ordering plus the endpoints to search between.
type PathRequest struct {
	Start       mgl32.Vec3
	End         mgl32.Vec3
	Priority    int32
	RequestTime float32
}

// Tables bundles every per-agent table the navigation stages touch. One
// instance is shared by command intake, the dispatcher, the A* runner and
// the path success handler.
type Tables struct {
	mu sync.RWMutex

	Nav         map[ecscore.Handle]*AgentNavigation
	Movement    map[ecscore.Handle]*UnitMovement
	Perms       map[ecscore.Handle]*UnitLayerPermissions
	Stuck       map[ecscore.Handle]*StuckDetection
	PathWaypt   map[ecscore.Handle][]mgl32.Vec3
	MacroWaypt  map[ecscore.Handle][]mgl32.Vec3
	PathReq     map[ecscore.Handle]PathRequest

	PathRequestTag      *ecscore.Tags
	PathfindingSuccess  *ecscore.Tags
	PathfindingFailed   *ecscore.Tags
	NeedsRepath         *ecscore.Tags
	MoveCommandTag      *ecscore.Tags
	StopCommandTag      *ecscore.Tags
	FlowFieldFollower   *ecscore.Tags
	StartedMoving       *ecscore.Tags
	StoppedMoving       *ecscore.Tags
}

// NewTables builds an empty, fully wired Tables set.
func NewTables() *Tables {
	return &Tables{
		Nav:        make(map[ecscore.Handle]*AgentNavigation),
		Movement:   make(map[ecscore.Handle]*UnitMovement),
		Perms:      make(map[ecscore.Handle]*UnitLayerPermissions),
		Stuck:      make(map[ecscore.Handle]*StuckDetection),
		PathWaypt:  make(map[ecscore.Handle][]mgl32.Vec3),
		MacroWaypt: make(map[ecscore.Handle][]mgl32.Vec3),
		PathReq:    make(map[ecscore.Handle]PathRequest),

		PathRequestTag:     ecscore.NewTags(),
		PathfindingSuccess: ecscore.NewTags(),
		PathfindingFailed:  ecscore.NewTags(),
		NeedsRepath:        ecscore.NewTags(),
		MoveCommandTag:     ecscore.NewTags(),
		StopCommandTag:     ecscore.NewTags(),
		FlowFieldFollower:  ecscore.NewTags(),
		StartedMoving:      ecscore.NewTags(),
		StoppedMoving:      ecscore.NewTags(),
	}
}

// Spawn registers every navigation component for a freshly created agent
// with reasonable defaults; callers overwrite speed/turn tuning afterward.
func (t *Tables) Spawn(h ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Nav[h] = &AgentNavigation{ArrivalThreshold: 1.0}
	t.Movement[h] = &UnitMovement{Speed: 3, TurnSpeed: 8, TurnDistance: 0.5}
	t.Perms[h] = &UnitLayerPermissions{WalkableLayers: 0xFF}
	t.Stuck[h] = &StuckDetection{CheckInterval: 1.0, StuckDistanceThreshold: 0.5, MaxStuckCount: 3}
}

// Despawn removes every table entry for h, e.g. on entity destroy.
func (t *Tables) Despawn(h ecscore.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.Nav, h)
	delete(t.Movement, h)
	delete(t.Perms, h)
	delete(t.Stuck, h)
	delete(t.PathWaypt, h)
	delete(t.MacroWaypt, h)
	delete(t.PathReq, h)
}

// DestinationChunk returns the chunk coordinate of an agent's current
// navigation destination.
func DestinationChunk(nav *AgentNavigation, cfg *config.NavigationConfig) gridworld.ChunkCoord {
	return gridworld.WorldToChunk(nav.Destination.X(), nav.Destination.Z(), cfg)
}
