package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRaycastDownHitsGround(t *testing.T) {
	w := NewWorld(FlatGround(0))

	hit, normal, ok := w.RaycastDown(mgl32.Vec3{3, 10, 4}, 12, 0x01)
	if !ok {
		t.Fatalf("expected ground hit")
	}
	if hit.Y() != 0 {
		t.Fatalf("expected hit at y=0, got %v", hit.Y())
	}
	if normal.Y() != 1 {
		t.Fatalf("expected up normal, got %+v", normal)
	}
}

func TestRaycastDownMissesWhenOutOfRange(t *testing.T) {
	w := NewWorld(FlatGround(0))

	if _, _, ok := w.RaycastDown(mgl32.Vec3{0, 50, 0}, 10, 0x01); ok {
		t.Fatalf("expected miss: ground is 50 below, ray length 10")
	}
}

func TestRaycastDownPrefersBoxTopOverGround(t *testing.T) {
	w := NewWorld(FlatGround(0))
	w.AddBox(Box{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}, Layer: 0x01})

	hit, _, ok := w.RaycastDown(mgl32.Vec3{0, 10, 0}, 12, 0x01)
	if !ok {
		t.Fatalf("expected hit")
	}
	if hit.Y() != 2 {
		t.Fatalf("expected box top at y=2 to win over ground, got %v", hit.Y())
	}
}

func TestSphereClearDetectsNearbyBox(t *testing.T) {
	w := NewWorld(FlatGround(0))
	w.AddBox(Box{Min: mgl32.Vec3{2, 0, 2}, Max: mgl32.Vec3{3, 2, 3}, Layer: 0x02})

	if w.SphereClear(mgl32.Vec3{1.8, 1, 2.5}, 0.4, 0x02) {
		t.Fatalf("expected sphere overlapping box face to be blocked")
	}
	if !w.SphereClear(mgl32.Vec3{0, 1, 0}, 0.4, 0x02) {
		t.Fatalf("expected clear away from box")
	}
	if !w.SphereClear(mgl32.Vec3{1.8, 1, 2.5}, 0.4, 0x04) {
		t.Fatalf("expected clear on a layer the box does not occupy")
	}
}

func TestLineOfSightBlockedByWall(t *testing.T) {
	w := NewWorld(FlatGround(0))
	w.AddBox(Box{Min: mgl32.Vec3{4, 0, -5}, Max: mgl32.Vec3{5, 3, 5}, Layer: 0x02})

	from := mgl32.Vec3{0, 1, 0}
	to := mgl32.Vec3{10, 1, 0}
	if w.Clear(from, to, 0x02) {
		t.Fatalf("expected wall to block line of sight")
	}
	if !w.Clear(from, mgl32.Vec3{0, 1, 10}, 0x02) {
		t.Fatalf("expected clear sight parallel to wall")
	}
	if !w.Clear(from, to, 0x04) {
		t.Fatalf("expected clear sight through wall on a different layer")
	}
}
