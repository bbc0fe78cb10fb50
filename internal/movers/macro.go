package movers

import (
	"navcore/internal/config"
	"navcore/internal/navigate"
)

// RunMacroFollower advances every agent in MacroOnly mode along
// MacroWaypoint[]: a fixed chunk_reach_dist threshold, and on
// exhausting the list, handoff back to AStar next frame via macro_path_done.
func RunMacroFollower(tables *navigate.Tables, transforms *Transforms, cfg *config.NavigationConfig, dt float32) {
	for h, mv := range tables.Movement {
		nav := tables.Nav[h]
		if nav == nil || nav.Mode != navigate.MacroOnly {
			continue
		}
		waypoints := tables.MacroWaypt[h]
		tr := transforms.Get(h)
		if tr == nil {
			continue
		}
		// a zero-length macro path (start and end in the same chunk) is
		// already exhausted; hand straight back to A*
		if len(waypoints) == 0 || mv.CurrentWaypointIndex >= len(waypoints) {
			nav.MacroPathDone = true
			nav.Mode = navigate.AStar
			mv.IsFollowingPath = false
			continue
		}

		target := waypoints[mv.CurrentWaypointIndex]
		dx := target.X() - tr.Position.X()
		dz := target.Z() - tr.Position.Z()
		dist := sqrt32(dx*dx + dz*dz)

		reach := cfg.ChunkReachDist()
		if dist <= reach {
			mv.CurrentWaypointIndex++
			if mv.CurrentWaypointIndex >= len(waypoints) {
				nav.MacroPathDone = true
				nav.Mode = navigate.AStar
				mv.IsFollowingPath = false
				continue
			}
			target = waypoints[mv.CurrentWaypointIndex]
			dx = target.X() - tr.Position.X()
			dz = target.Z() - tr.Position.Z()
			dist = sqrt32(dx*dx + dz*dz)
		}

		if dist > 0 {
			dx, dz = dx/dist, dz/dist
		}
		integrate(tr, dx, dz, mv.Speed, mv.TurnSpeed, dt, 0.25)
	}
}
