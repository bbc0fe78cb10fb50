package pathfind

import (
	"sort"

	"github.com/sirupsen/logrus"

	"navcore/internal/config"
	"navcore/internal/ecscore"
	"navcore/internal/gridworld"
	"navcore/internal/navigate"
	"navcore/internal/telemetry"
)

var log = logrus.WithField("stage", "pathfind")

// pending is one batched PathRequest lifted out of navigate.Tables for
// priority sorting.
type pending struct {
	handle  ecscore.Handle
	request navigate.PathRequest
}

// Run processes up to cfg.MaxRequestsPerFrame queued PathRequests this
// frame: for each, picks single-chunk, multi-chunk or macro A* based on
// which end-chunks are loaded, writes PathWaypoint/MacroWaypoint and the
// PathfindingSuccess/PathfindingFailed tags, and always disables PathRequest
// for the ones it processed. Requests left over persist to the next frame.
func Run(tables *navigate.Tables, store *gridworld.ChunkStore, cfg *config.NavigationConfig) {
	defer telemetry.Track("pathfind.Run")()
	var batch []pending
	tables.PathRequestTag.Each(func(h ecscore.Handle) {
		if tables.PathfindingSuccess.Has(h) {
			return
		}
		req, ok := tables.PathReq[h]
		if !ok {
			return
		}
		batch = append(batch, pending{handle: h, request: req})
	})

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].request.Priority > batch[j].request.Priority
	})

	limit := cfg.MaxRequestsPerFrame()
	if limit > len(batch) {
		limit = len(batch)
	}

	loaded := store.LoadedSnapshot()

	for i := 0; i < limit; i++ {
		item := batch[i]
		result := runOne(tables, store, loaded, cfg, item.handle, item.request)
		applyResult(tables, item.handle, result)
	}
}

func runOne(
	tables *navigate.Tables,
	store *gridworld.ChunkStore,
	loaded map[gridworld.ChunkCoord]*gridworld.GridChunk,
	cfg *config.NavigationConfig,
	h ecscore.Handle,
	req navigate.PathRequest,
) Result {
	perms := tables.Perms[h]
	walkableLayers, isFlying := uint8(0xFF), false
	if perms != nil {
		walkableLayers, isFlying = perms.WalkableLayers, perms.IsFlying
	}

	startChunk, sx, sz := gridworld.WorldToCell(req.Start.X(), req.Start.Z(), cfg)
	endChunk, ex, ez := gridworld.WorldToCell(req.End.X(), req.End.Z(), cfg)

	startLoaded, startOK := loaded[startChunk]
	_, endOK := loaded[endChunk]

	switch {
	case startChunk == endChunk && startOK:
		return FindSingleChunk(startLoaded.Static, startChunk, cfg, sx, sz, ex, ez, req.End.X(), req.End.Z(), walkableLayers, isFlying)
	case startOK && endOK:
		return FindMultiChunk(loaded, cfg,
			GlobalCell{Chunk: startChunk, X: sx, Z: sz},
			GlobalCell{Chunk: endChunk, X: ex, Z: ez},
			req.End.X(), req.End.Z(), walkableLayers, isFlying)
	default:
		res := FindMacro(store, cfg, startChunk, endChunk)
		return res
	}
}

func applyResult(tables *navigate.Tables, h ecscore.Handle, result Result) {
	nav := tables.Nav[h]
	tables.PathRequestTag.Disable(h)

	if !result.Success {
		tables.PathWaypt[h] = nil
		tables.MacroWaypt[h] = nil
		tables.PathfindingFailed.Enable(h)
		telemetry.PathsFailed.Inc()
		log.WithField("entity", h.Index).Debug("path request failed")
		return
	}
	telemetry.PathsSolved.Inc()

	if result.IsMacro {
		tables.MacroWaypt[h] = result.MacroWaypoints
		tables.PathWaypt[h] = nil
		if nav != nil {
			nav.Mode = navigate.MacroOnly
		}
	} else {
		tables.PathWaypt[h] = result.Waypoints
		tables.MacroWaypt[h] = nil
	}
	tables.PathfindingSuccess.Enable(h)
}
