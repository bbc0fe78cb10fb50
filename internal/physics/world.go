// Package physics is the minimal physics collaborator the navigation core
// queries: a heightfield ground with layered axis-aligned obstacle boxes.
// The core itself only ever asks three things of it (downward ground ray,
// sphere clearance, line of sight), so the whole package is those three
// queries over a flat shape list.
package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// losStepSize is the sampling interval for the stepping line-of-sight ray.
const losStepSize = 0.05

// Box is one axis-aligned obstacle, tagged with the physics layer mask it
// occupies (the bake's unwalkable layer, the threat scan's obstacle layers).
type Box struct {
	Min, Max mgl32.Vec3
	Layer    uint8
}

// GroundFunc samples terrain height and surface normal at a world (x, z).
// ok is false where there is no ground at all (world edge, pit).
type GroundFunc func(x, z float32) (height float32, normal mgl32.Vec3, ok bool)

// FlatGround returns a GroundFunc for level terrain at the given height.
func FlatGround(height float32) GroundFunc {
	return func(x, z float32) (float32, mgl32.Vec3, bool) {
		return height, mgl32.Vec3{0, 1, 0}, true
	}
}

// World is a queryable static scene: one ground heightfield plus obstacle
// boxes. Safe for concurrent queries; AddBox is meant for setup time.
type World struct {
	mu     sync.RWMutex
	ground GroundFunc
	boxes  []Box
}

// NewWorld creates a World over the given terrain function.
func NewWorld(ground GroundFunc) *World {
	return &World{ground: ground}
}

// AddBox registers an obstacle box.
func (w *World) AddBox(b Box) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.boxes = append(w.boxes, b)
}

// RaycastDown casts a ray of the given length straight down from origin
// against the ground layer. Box tops on the ground layer count as standable
// ground; the highest hit under the origin wins.
func (w *World) RaycastDown(origin mgl32.Vec3, length float32, groundLayer uint8) (mgl32.Vec3, mgl32.Vec3, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	bestY := float32(math.Inf(-1))
	var bestNormal mgl32.Vec3
	found := false

	if w.ground != nil {
		if h, normal, ok := w.ground(origin.X(), origin.Z()); ok {
			if h <= origin.Y() && origin.Y()-h <= length {
				bestY, bestNormal, found = h, normal, true
			}
		}
	}

	for _, b := range w.boxes {
		if b.Layer&groundLayer == 0 {
			continue
		}
		if origin.X() < b.Min.X() || origin.X() > b.Max.X() ||
			origin.Z() < b.Min.Z() || origin.Z() > b.Max.Z() {
			continue
		}
		top := b.Max.Y()
		if top > origin.Y() || origin.Y()-top > length {
			continue
		}
		if top > bestY {
			bestY, bestNormal, found = top, mgl32.Vec3{0, 1, 0}, true
		}
	}

	if !found {
		return mgl32.Vec3{}, mgl32.Vec3{}, false
	}
	return mgl32.Vec3{origin.X(), bestY, origin.Z()}, bestNormal, true
}

// SphereClear reports whether a sphere at point is clear of every box on
// the given layer.
func (w *World) SphereClear(point mgl32.Vec3, radius float32, layer uint8) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, b := range w.boxes {
		if b.Layer&layer == 0 {
			continue
		}
		// distance from sphere center to the box, via the closest point on it
		cx := clamp(point.X(), b.Min.X(), b.Max.X())
		cy := clamp(point.Y(), b.Min.Y(), b.Max.Y())
		cz := clamp(point.Z(), b.Min.Z(), b.Max.Z())
		dx, dy, dz := point.X()-cx, point.Y()-cy, point.Z()-cz
		if dx*dx+dy*dy+dz*dz < radius*radius {
			return false
		}
	}
	return true
}

// Clear reports whether the segment from->to is unobstructed by boxes on
// obstacleLayers. Stepping sampler; endpoints themselves are not tested so
// a scanner standing against a wall still sees out of it.
func (w *World) Clear(from, to mgl32.Vec3, obstacleLayers uint8) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	delta := to.Sub(from)
	dist := delta.Len()
	if dist < losStepSize*2 {
		return true
	}
	dir := delta.Mul(1 / dist)

	steps := int(dist / losStepSize)
	for i := 1; i < steps; i++ {
		p := from.Add(dir.Mul(float32(i) * losStepSize))
		for _, b := range w.boxes {
			if b.Layer&obstacleLayers == 0 {
				continue
			}
			if p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
				p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
				p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z() {
				return false
			}
		}
	}
	return true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
