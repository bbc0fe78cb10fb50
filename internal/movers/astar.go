package movers

import (
	"navcore/internal/navigate"
)

// RunAStarFollower advances every agent with is_following_path && mode ==
// AStar one step along its PathWaypoint[] buffer.
func RunAStarFollower(tables *navigate.Tables, transforms *Transforms, dt float32) {
	for h, mv := range tables.Movement {
		nav := tables.Nav[h]
		if nav == nil || nav.Mode != navigate.AStar || !mv.IsFollowingPath {
			continue
		}
		waypoints := tables.PathWaypt[h]
		tr := transforms.Get(h)
		if tr == nil || len(waypoints) == 0 {
			mv.IsFollowingPath = false
			continue
		}

		if mv.CurrentWaypointIndex >= len(waypoints) {
			mv.IsFollowingPath = false
			continue
		}

		target := waypoints[mv.CurrentWaypointIndex]
		dx := target.X() - tr.Position.X()
		dz := target.Z() - tr.Position.Z()
		dist := sqrt32(dx*dx + dz*dz)

		if dist <= mv.TurnDistance {
			mv.CurrentWaypointIndex++
			if mv.CurrentWaypointIndex >= len(waypoints) {
				mv.IsFollowingPath = false
				continue
			}
			target = waypoints[mv.CurrentWaypointIndex]
			dx = target.X() - tr.Position.X()
			dz = target.Z() - tr.Position.Z()
			dist = sqrt32(dx*dx + dz*dz)
		}

		speed := mv.Speed
		if mv.CurrentWaypointIndex == len(waypoints)-1 && mv.TurnDistance > 0 {
			speed *= saturate01(dist / (3 * mv.TurnDistance))
		}

		if dist > 0 {
			dx, dz = dx/dist, dz/dist
		}
		integrate(tr, dx, dz, speed, mv.TurnSpeed, dt, 0.25)
	}
}
