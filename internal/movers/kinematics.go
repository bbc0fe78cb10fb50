package movers

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func vec3(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, y, z}
}

// integrate applies the shared mover kinematics: rotate the
// heading toward desiredDir at turnSpeed (radians/sec), compute alignment
// between the new forward and desired direction clamped to
// [alignmentMin, 1], and advance position by forward * speed * alignment *
// dt. desiredDir is always a ground-plane (x, z) direction.
func integrate(tr *LocalTransform, desiredDirX, desiredDirZ float32, speed, turnSpeed, dt, alignmentMin float32) {
	if desiredDirX == 0 && desiredDirZ == 0 {
		return
	}
	desiredYaw := float32(math.Atan2(float64(desiredDirX), float64(desiredDirZ)))
	tr.Yaw = turnToward(tr.Yaw, desiredYaw, turnSpeed, dt)

	forwardX := float32(math.Sin(float64(tr.Yaw)))
	forwardZ := float32(math.Cos(float64(tr.Yaw)))

	alignment := forwardX*desiredDirX + forwardZ*desiredDirZ
	if alignment < alignmentMin {
		alignment = alignmentMin
	}
	if alignment > 1 {
		alignment = 1
	}

	// y never changes from mover integration; snapping ground units to
	// terrain height is a physics-collaborator concern, outside this
	// package.
	tr.Position = tr.Position.Add(vec3(forwardX*speed*alignment*dt, 0, forwardZ*speed*alignment*dt))
}

// turnToward advances yaw toward target at rate turnSpeed (radians/sec),
// taking the shorter angular direction: slerp-at-a-rate collapsed to a
// single rotation axis since this is a 2.5-D world.
func turnToward(yaw, target, turnSpeed, dt float32) float32 {
	diff := wrapAngle(target - yaw)
	maxStep := turnSpeed * dt
	if diff > maxStep {
		diff = maxStep
	} else if diff < -maxStep {
		diff = -maxStep
	}
	return wrapAngle(yaw + diff)
}

func wrapAngle(a float32) float32 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func sqrt32(v float32) float32 {
	if v <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(v)))
}

func saturate01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
