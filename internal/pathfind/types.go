package pathfind

import "github.com/go-gl/mathgl/mgl32"

// Result is the outcome of any of the three A* variants: either a waypoint
// list in forward order (cell centers, no collinear collapse) ready for a
// mover to follow, or MacroWaypoints when the macro variant ran instead.
type Result struct {
	Success        bool
	IsMacro        bool
	Waypoints      []mgl32.Vec3
	MacroWaypoints []mgl32.Vec3
}

// neighborOffsets is the 2-D 8-neighbourhood, ordered N, NE, E, SE, S, SW, W,
// NW, matching gridworld.MacroOffsets so the two stay easy to cross-reference.
var neighborOffsets = [8]struct{ dx, dz int }{
	{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

func stepCost(dx, dz int) int32 {
	if dx != 0 && dz != 0 {
		return 14
	}
	return 10
}
