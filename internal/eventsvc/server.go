package eventsvc

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"navcore/internal/simrunner"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// StatsFunc supplies the current simulation stats; called once per /stats
// request.
type StatsFunc func() simrunner.Stats

// Server serves the event websocket and the stats endpoint.
type Server struct {
	Hub    *Hub
	router *mux.Router
	stats  StatsFunc
}

// NewServer builds a Server around a hub and a stats supplier.
func NewServer(hub *Hub, stats StatsFunc) *Server {
	s := &Server{Hub: hub, router: mux.NewRouter(), stats: stats}
	s.router.HandleFunc("/events", s.serveEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/stats", s.serveStats).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.serveHealth).Methods(http.MethodGet)
	return s
}

// Handler returns the mux router, usable with http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.WithField("addr", addr).Info("event service listening")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) serveEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	s.Hub.add(conn)
}

func (s *Server) serveStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats()); err != nil {
		log.WithError(err).Warn("stats encode failed")
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
