package simrunner

import (
	"navcore/internal/telemetry"
)

// Stats is a point-in-time observability snapshot of the simulation,
// suitable for serialization on a stats endpoint.
type Stats struct {
	Frame       uint64             `json:"frame"`
	Now         float32            `json:"now"`
	Agents      int                `json:"agents"`
	Chunks      map[string]int     `json:"chunks"`
	AgentModes  map[string]int     `json:"agent_modes"`
	Counters    map[string]uint64  `json:"counters"`
	StageMillis map[string]float64 `json:"stage_millis"`
}

// Stats collects the current frame's chunk-state counts, agent mode
// histogram, simulation counters and stage timings. Meant to be called
// between frames (the host's serving goroutine must not race Step; callers
// sample from the frame loop or accept slightly torn reads).
func (s *Sim) Stats() Stats {
	st := Stats{
		Frame:       telemetry.Frames.Load(),
		Now:         s.now,
		Chunks:      make(map[string]int),
		AgentModes:  make(map[string]int),
		Counters:    telemetry.Counters(),
		StageMillis: make(map[string]float64),
	}

	for _, c := range s.Store.All() {
		st.Chunks[c.State.String()]++
	}
	for _, nav := range s.Nav.Nav {
		st.AgentModes[nav.Mode.String()]++
		st.Agents++
	}
	for name, d := range telemetry.Snapshot() {
		st.StageMillis[name] = float64(d.Microseconds()) / 1000.0
	}
	return st
}
