package gridworld

import "github.com/go-gl/mathgl/mgl32"

// GroundQuery is the bake-time physics collaborator (the threat scan's
// line-of-sight query is the core's other physics dependency): a downward
// ray to find ground, and a sphere check for clearance. The core never
// implements physics itself; it is handed an implementation of this
// interface (a real physics engine in production, a synthetic heightfield
// in tests).
type GroundQuery interface {
	// RaycastDown casts a ray of the given length straight down from origin
	// against the ground layer. ok is false on no hit.
	RaycastDown(origin mgl32.Vec3, length float32, groundLayer uint8) (hit mgl32.Vec3, normal mgl32.Vec3, ok bool)

	// SphereClear reports whether a sphere of the given radius centered at
	// point is clear of the unwalkable layer.
	SphereClear(point mgl32.Vec3, radius float32, unwalkableLayer uint8) bool
}

// FlatHeightfield is a synthetic GroundQuery used by the gridworld tests in
// place of a real physics collaborator. It models
// ground as a per-(x,z) height function plus a set of "obstacle" points
// that fail clearance. Height is known directly, so no ray stepping is
// involved.
type FlatHeightfield struct {
	HeightAt func(x, z float32) (height float32, ok bool)
	SlopeAt  func(x, z float32) mgl32.Vec3 // surface normal; defaults to +Y
	Blocked  map[[2]int32]bool             // cell-quantized obstacle markers
}

// NewFlatHeightfield returns a heightfield at a constant height with an
// upward normal everywhere and no obstacles, the common "empty chunk"
// fixture used across gridworld tests.
func NewFlatHeightfield(height float32) *FlatHeightfield {
	return &FlatHeightfield{
		HeightAt: func(x, z float32) (float32, bool) { return height, true },
		Blocked:  make(map[[2]int32]bool),
	}
}

func (f *FlatHeightfield) RaycastDown(origin mgl32.Vec3, length float32, _ uint8) (mgl32.Vec3, mgl32.Vec3, bool) {
	h, ok := f.HeightAt(origin.X(), origin.Z())
	if !ok {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	if origin.Y()-h > length {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	normal := mgl32.Vec3{0, 1, 0}
	if f.SlopeAt != nil {
		normal = f.SlopeAt(origin.X(), origin.Z())
	}
	return mgl32.Vec3{origin.X(), h, origin.Z()}, normal, true
}

func (f *FlatHeightfield) SphereClear(point mgl32.Vec3, _ float32, _ uint8) bool {
	if f.Blocked == nil {
		return true
	}
	key := [2]int32{int32(point.X()), int32(point.Z())}
	return !f.Blocked[key]
}
