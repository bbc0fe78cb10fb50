package movers

import "navcore/internal/navigate"

// RunMovementEvents compares prev_is_following_path and is_following_path
// for every agent after the movers have run, enabling the matching
// one-shot tag on a transition.
func RunMovementEvents(tables *navigate.Tables) {
	for h, mv := range tables.Movement {
		if !mv.PrevIsFollowingPath && mv.IsFollowingPath {
			tables.StartedMoving.Enable(h)
		} else if mv.PrevIsFollowingPath && !mv.IsFollowingPath {
			tables.StoppedMoving.Enable(h)
		}
		mv.PrevIsFollowingPath = mv.IsFollowingPath
	}
}
