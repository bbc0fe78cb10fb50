package navigate

import "navcore/internal/ecscore"

// RunPathSuccessHandler is the stage trailing the pathfinder: for every
// agent with PathfindingSuccess enabled, start following the new path
// (AStar/MacroOnly modes only), then disable the tag.
func RunPathSuccessHandler(tables *Tables) {
	tables.PathfindingSuccess.Each(func(h ecscore.Handle) {
		nav := tables.Nav[h]
		mv := tables.Movement[h]
		if nav != nil && mv != nil && (nav.Mode == AStar || nav.Mode == MacroOnly) {
			mv.IsFollowingPath = true
			mv.CurrentWaypointIndex = 0
		}
		tables.PathfindingSuccess.Disable(h)
	})
}
