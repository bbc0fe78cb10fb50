// Package eventsvc exposes the simulation's observable surface over HTTP:
// a websocket feed of per-frame events (movement transitions, attacks,
// deaths) and a JSON stats endpoint. It is the collaborator-facing side of
// the simulation's one-shot event tags; a slow client holds up the frame
// loop for at most one write timeout before it is dropped.
package eventsvc

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"navcore/internal/simrunner"
)

var log = logrus.WithField("stage", "eventsvc")

// writeTimeout bounds each client write so a slow client is dropped instead
// of stalling PublishFrame.
const writeTimeout = 100 * time.Millisecond

// Event is one observable simulation event, serialized to feed clients.
type Event struct {
	Frame  uint64  `json:"frame"`
	Time   float32 `json:"time"`
	Kind   string  `json:"kind"`
	Entity uint32  `json:"entity"`
	Target uint32  `json:"target,omitempty"`
	Damage int32   `json:"damage,omitempty"`
}

// Hub fans frame events out to every connected websocket client. It
// implements simrunner.EventSink; a slow or dead client is dropped rather
// than allowed to stall the frame loop.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// PublishFrame converts FrameEvents into wire Events and broadcasts them.
func (h *Hub) PublishFrame(fe simrunner.FrameEvents) {
	events := flatten(fe)
	if len(events) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(events); err != nil {
			log.WithError(err).Debug("dropping event client")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func flatten(fe simrunner.FrameEvents) []Event {
	var out []Event
	for _, e := range fe.Started {
		out = append(out, Event{Frame: fe.Frame, Time: fe.Now, Kind: "started_moving", Entity: e.Index})
	}
	for _, e := range fe.Stopped {
		out = append(out, Event{Frame: fe.Frame, Time: fe.Now, Kind: "stopped_moving", Entity: e.Index})
	}
	for _, a := range fe.Attacks {
		out = append(out, Event{
			Frame:  fe.Frame,
			Time:   fe.Now,
			Kind:   "attack_hit",
			Entity: a.Attacker.Index,
			Target: a.Target.Index,
			Damage: a.Damage,
		})
	}
	for _, d := range fe.Deaths {
		out = append(out, Event{Frame: fe.Frame, Time: fe.Now, Kind: "dead", Entity: d.Index})
	}
	return out
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

// ClientCount returns the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
