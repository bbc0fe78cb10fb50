package eventsvc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"navcore/internal/ecscore"
	"navcore/internal/simrunner"
)

func TestStatsEndpointServesJSON(t *testing.T) {
	hub := NewHub()
	srv := NewServer(hub, func() simrunner.Stats {
		return simrunner.Stats{Frame: 7, Agents: 3, Chunks: map[string]int{"Active": 9}}
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("stats request: %v", err)
	}
	defer resp.Body.Close()

	var got simrunner.Stats
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Frame != 7 || got.Agents != 3 || got.Chunks["Active"] != 9 {
		t.Fatalf("unexpected stats payload: %+v", got)
	}
}

func TestFlattenProducesOneEventPerRecord(t *testing.T) {
	fe := simrunner.FrameEvents{
		Frame:   3,
		Started: []ecscore.Handle{{Index: 1}},
		Stopped: []ecscore.Handle{{Index: 2}},
		Deaths:  []ecscore.Handle{{Index: 4}},
	}
	events := flatten(fe)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	kinds := map[string]bool{}
	for _, e := range events {
		kinds[e.Kind] = true
		if e.Frame != 3 {
			t.Fatalf("expected frame 3 on every event, got %d", e.Frame)
		}
	}
	for _, k := range []string{"started_moving", "stopped_moving", "dead"} {
		if !kinds[k] {
			t.Fatalf("missing %s event", k)
		}
	}
}
