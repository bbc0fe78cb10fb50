// Package telemetry is a lightweight per-frame CPU profiler plus a set of
// monotonic simulation counters, for stage-level insight into the frame
// pipeline.
package telemetry

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
)

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
)

// Monotonic counters, incremented by the stages that own the underlying
// event. Read via Counters for the stats surface.
var (
	Frames      atomic.Uint64
	ChunksBaked atomic.Uint64
	PathsSolved atomic.Uint64
	PathsFailed atomic.Uint64
	Repaths     atomic.Uint64
	Attacks     atomic.Uint64
)

// Track returns a stop function that records the elapsed time under the
// given name. Usage: defer telemetry.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	clear(frameTotals)
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame stage totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	maps.Copy(out, frameTotals)
	return out
}

// Counters returns the current values of every simulation counter.
func Counters() map[string]uint64 {
	return map[string]uint64{
		"frames":       Frames.Load(),
		"chunks_baked": ChunksBaked.Load(),
		"paths_solved": PathsSolved.Load(),
		"paths_failed": PathsFailed.Load(),
		"repaths":      Repaths.Load(),
		"attacks":      Attacks.Load(),
	}
}

// TopN formats the top N stage durations from the current frame totals.
// Example: "simrunner.Movers:4.2ms, pathfind.Run:2.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, fmt.Sprintf("%s:%.1fms", list[i].name, ms))
	}
	return strings.Join(parts, ", ")
}
