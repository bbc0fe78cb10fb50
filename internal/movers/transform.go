// Package movers implements the three path-following movers (A* waypoint,
// macro chunk-center, flow-field direction), sharing one
// rotate-then-advance kinematic integrator, plus the movement-event stage
// that watches is_following_path transitions.
package movers

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/ecscore"
)

// LocalTransform is the only component movers may mutate.
type LocalTransform struct {
	Position mgl32.Vec3
	Yaw      float32 // radians, rotation about +Y
	Scale    float32
}

// Transforms is the handle-keyed LocalTransform table.
type Transforms struct {
	mu   sync.RWMutex
	data map[ecscore.Handle]*LocalTransform
}

// NewTransforms creates an empty transform table.
func NewTransforms() *Transforms {
	return &Transforms{data: make(map[ecscore.Handle]*LocalTransform)}
}

// Set installs or replaces the transform for h.
func (t *Transforms) Set(h ecscore.Handle, transform *LocalTransform) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.data[h] = transform
}

// Get returns the transform for h, or nil.
func (t *Transforms) Get(h ecscore.Handle) *LocalTransform {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.data[h]
}

// Position implements the positionReader interface that the dispatcher reads
// through.
func (t *Transforms) Position(h ecscore.Handle) (x, z float32, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.data[h]
	if !ok {
		return 0, 0, false
	}
	return tr.Position.X(), tr.Position.Z(), true
}

// Position3 returns the full 3D position, used by command intake.
func (t *Transforms) Position3(h ecscore.Handle) (mgl32.Vec3, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.data[h]
	if !ok {
		return mgl32.Vec3{}, false
	}
	return tr.Position, true
}
