package pathfind

// snapToWalkable performs a radius-4 outward BFS over local (x, z) cells
// from start, returning the nearest cell for which walkable returns true.
// Ties are broken by BFS visit order (nearest Chebyshev ring first, stable
// within a ring).
func snapToWalkable(startX, startZ int, walkable func(x, z int) bool) (int, int, bool) {
	if walkable(startX, startZ) {
		return startX, startZ, true
	}

	type cell struct{ x, z int }
	visited := map[cell]bool{{startX, startZ}: true}
	queue := []cell{{startX, startZ}}

	for radius := 0; radius < 4; radius++ {
		var next []cell
		for _, c := range queue {
			for _, off := range neighborOffsets {
				n := cell{c.x + off.dx, c.z + off.dz}
				if visited[n] {
					continue
				}
				visited[n] = true
				if walkable(n.x, n.z) {
					return n.x, n.z, true
				}
				next = append(next, n)
			}
		}
		queue = next
		if len(queue) == 0 {
			break
		}
	}
	return 0, 0, false
}
