package navigate

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"navcore/internal/config"
	"navcore/internal/ecscore"
	"navcore/internal/gridworld"
	"navcore/internal/telemetry"
)

// positionReader is the minimal read the dispatcher needs of wherever
// LocalTransform lives.
type positionReader interface {
	Position(h ecscore.Handle) (x, z float32, ok bool)
}

// Dispatcher selects each agent's navigation mode: arrival, macro
// handoff, in-flight protection, mode selection
// (AStar/FlowField/MacroOnly) with the crowd-threshold rule, and the
// stuck-detection pass.
type Dispatcher struct {
	tables *Tables
	store  *gridworld.ChunkStore
	cfg    *config.NavigationConfig
}

// NewDispatcher wires a Dispatcher against the navigation tables, the chunk
// store (for static_ready lookups) and the active config.
func NewDispatcher(tables *Tables, store *gridworld.ChunkStore, cfg *config.NavigationConfig) *Dispatcher {
	return &Dispatcher{tables: tables, store: store, cfg: cfg}
}

// destCellKey quantizes a world destination to a (chunk, local cell) key for
// crowd counting.
type destCellKey struct {
	chunk gridworld.ChunkCoord
	x, z  int
}

// Run evaluates every agent with has_destination. positions supplies each
// agent's current world (x, z); now is the simulation clock.
func (d *Dispatcher) Run(positions positionReader, now float32) {
	crowd := d.countDestinationCrowding(positions)

	for h, nav := range d.tables.Nav {
		if !nav.HasDestination {
			continue
		}
		px, pz, ok := positions.Position(h)
		if !ok {
			continue
		}
		mv := d.tables.Movement[h]

		arrival := nav.ArrivalThreshold
		if arrival < 1.5 {
			arrival = 1.5
		}
		dx, dz := px-nav.Destination.X(), pz-nav.Destination.Z()
		dist := sqrt32(dx*dx + dz*dz)
		if dist <= arrival {
			nav.Mode = Idle
			nav.HasDestination = false
			if mv != nil {
				mv.IsFollowingPath = false
			}
			d.tables.FlowFieldFollower.Disable(h)
			continue
		}

		if nav.MacroPathDone {
			nav.MacroPathDone = false
			nav.Mode = AStar
			d.issueRequest(h, px, pz, nav, now)
			nav.RepathCooldown = now + 0.5
			continue
		}

		if mv != nil && mv.IsFollowingPath && nav.Mode != Idle {
			continue
		}

		destChunk := DestinationChunk(nav, d.cfg)
		chunk := d.store.Get(destChunk)
		desired := AStar
		switch {
		case chunk == nil || !chunk.StaticReady:
			desired = MacroOnly
		default:
			_, lx, lz := gridworld.WorldToCell(nav.Destination.X(), nav.Destination.Z(), d.cfg)
			key := destCellKey{chunk: destChunk, x: lx, z: lz}
			if crowd[key] >= d.cfg.CrowdThreshold() {
				desired = FlowField
			}
		}

		modeChanged := desired != nav.Mode
		notFollowingAndReady := (mv == nil || !mv.IsFollowingPath) && now >= nav.RepathCooldown
		if !modeChanged && !notFollowingAndReady {
			continue
		}

		nav.Mode = desired
		switch desired {
		case FlowField:
			if mv != nil {
				mv.IsFollowingPath = false
			}
			d.tables.FlowFieldFollower.Enable(h)
			d.tables.PathRequestTag.Disable(h)
		case AStar, MacroOnly:
			d.tables.FlowFieldFollower.Disable(h)
			d.issueRequest(h, px, pz, nav, now)
		}
		nav.RepathCooldown = now + 0.5
	}
}

func (d *Dispatcher) issueRequest(h ecscore.Handle, px, pz float32, nav *AgentNavigation, now float32) {
	d.tables.PathReq[h] = PathRequest{
		Start:       vec3(px, 0, pz),
		End:         nav.Destination,
		Priority:    1,
		RequestTime: now,
	}
	d.tables.PathRequestTag.Enable(h)
}

func (d *Dispatcher) countDestinationCrowding(positions positionReader) map[destCellKey]int {
	counts := make(map[destCellKey]int)
	for _, nav := range d.tables.Nav {
		if !nav.HasDestination {
			continue
		}
		chunk := DestinationChunk(nav, d.cfg)
		_, lx, lz := gridworld.WorldToCell(nav.Destination.X(), nav.Destination.Z(), d.cfg)
		counts[destCellKey{chunk: chunk, x: lx, z: lz}]++
	}
	return counts
}

// RunStuckDetection implements the stuck-detection pass: agents moving
// less than stuck_distance_threshold while following a
// path accumulate stuck_count; hitting max_stuck_count clears the path and
// sets NeedsRepath, which the same call then turns into a PathRequest.
func (d *Dispatcher) RunStuckDetection(positions positionReader, now float32) {
	for h, stuck := range d.tables.Stuck {
		mv := d.tables.Movement[h]
		if mv == nil || !mv.IsFollowingPath {
			continue
		}
		if now < stuck.NextCheckTime {
			continue
		}
		px, pz, ok := positions.Position(h)
		if !ok {
			continue
		}
		dx := px - stuck.LastCheckedPosition.X()
		dz := pz - stuck.LastCheckedPosition.Z()
		moved := sqrt32(dx*dx + dz*dz)

		if moved < stuck.StuckDistanceThreshold {
			stuck.StuckCount++
		} else {
			stuck.StuckCount = 0
		}
		stuck.LastCheckedPosition = vec3(px, 0, pz)
		stuck.NextCheckTime = now + stuck.CheckInterval

		if stuck.StuckCount >= stuck.MaxStuckCount {
			stuck.StuckCount = 0
			mv.IsFollowingPath = false
			d.tables.PathWaypt[h] = nil
			d.tables.NeedsRepath.Enable(h)
			telemetry.Repaths.Inc()
		}
	}

	d.tables.NeedsRepath.Each(func(h ecscore.Handle) {
		nav := d.tables.Nav[h]
		if nav == nil {
			d.tables.NeedsRepath.Disable(h)
			return
		}
		px, pz, ok := positions.Position(h)
		if ok {
			d.tables.PathReq[h] = PathRequest{
				Start:       vec3(px, 0, pz),
				End:         nav.Destination,
				Priority:    2,
				RequestTime: now,
			}
			d.tables.PathRequestTag.Enable(h)
		}
		d.tables.NeedsRepath.Disable(h)
	})
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func vec3(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, y, z}
}
