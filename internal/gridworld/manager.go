package gridworld

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"navcore/internal/config"
	"navcore/internal/telemetry"
)

var log = logrus.WithField("stage", "gridworld")

// ChunkManager drives the Unloaded/Ghost/Active state machine. The job
// unit is "transition this chunk"; bakes run through a per-frame errgroup
// rather than a long-lived background queue, so every transition is
// visible at the stage barrier that scheduled it.
type ChunkManager struct {
	store   *ChunkStore
	cfg     *config.NavigationConfig
	query   GroundQuery
	anchors *AnchorTable
}

// NewChunkManager wires a ChunkManager against a store, config and ground
// query collaborator.
func NewChunkManager(store *ChunkStore, cfg *config.NavigationConfig, query GroundQuery, anchors *AnchorTable) *ChunkManager {
	return &ChunkManager{store: store, cfg: cfg, query: query, anchors: anchors}
}

// computeDesired unions every anchor's active/ghost rings, taking the max
// requested state per coord (Active beats Ghost beats absent/Unloaded).
func (m *ChunkManager) computeDesired() map[ChunkCoord]ChunkState {
	desired := make(map[ChunkCoord]ChunkState)
	for _, a := range m.anchors.Snapshot() {
		activeR := a.ActiveRingRadius
		ghostR := a.GhostRingRadius
		if ghostR < activeR {
			ghostR = activeR
		}
		for dz := -ghostR; dz <= ghostR; dz++ {
			for dx := -ghostR; dx <= ghostR; dx++ {
				coord := ChunkCoord{X: a.CurrentChunk.X + int32(dx), Z: a.CurrentChunk.Z + int32(dz)}
				want := Ghost
				if dx >= -activeR && dx <= activeR && dz >= -activeR && dz <= activeR {
					want = Active
				}
				if cur, ok := desired[coord]; !ok || want > cur {
					desired[coord] = want
				}
			}
		}
	}
	return desired
}

// Step moves every tracked-or-desired chunk toward its desired state,
// baking newly-Ghosted chunks in parallel via errgroup; a chunk baked in this
// Step whose desired state is Active is promoted in the same Step. It
// is meant to run once per frame, right after the anchor tracker.
func (m *ChunkManager) Step(ctx context.Context) error {
	desired := m.computeDesired()

	wanted := mapset.NewThreadUnsafeSet[ChunkCoord]()
	for coord := range desired {
		wanted.Add(coord)
		m.store.GetOrCreate(coord)
	}

	var toBake []ChunkCoord
	for _, c := range m.store.All() {
		want := Unloaded
		if wanted.Contains(c.Coord) {
			want = desired[c.Coord]
		}
		switch {
		case c.State == Unloaded && want >= Ghost:
			c.State = Ghost
			toBake = append(toBake, c.Coord)
		case c.State == Ghost && want == Active:
			c.Dynamic = &ChunkDynamicData{Nodes: make([]DynamicNode, len(c.Static.Nodes))}
			c.State = Active
		case c.State == Active && want == Ghost:
			c.Dynamic = nil
			c.State = Ghost
		case c.State >= Ghost && want == Unloaded:
			c.Dynamic = nil
			c.Static = nil
			c.StaticReady = false
			m.store.Delete(c.Coord)
			log.WithFields(logrus.Fields{"x": c.Coord.X, "z": c.Coord.Z}).Debug("chunk unloaded")
		}
	}

	if len(toBake) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, coord := range toBake {
		coord := coord
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			blob := BakeChunk(coord, m.cfg, m.query)
			c := m.store.Get(coord)
			if c == nil {
				return nil
			}
			c.Static = blob
			c.StaticReady = true
			telemetry.ChunksBaked.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// A freshly-baked chunk whose desired state is already Active skips the
	// extra Ghost frame: the bake happened synchronously above, so there is
	// no reason to wait another Step to promote it.
	for _, coord := range toBake {
		if desired[coord] != Active {
			continue
		}
		c := m.store.Get(coord)
		if c == nil || c.State != Ghost || !c.StaticReady {
			continue
		}
		c.Dynamic = &ChunkDynamicData{Nodes: make([]DynamicNode, len(c.Static.Nodes))}
		c.State = Active
	}
	return nil
}
