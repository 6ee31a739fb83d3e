package server

import (
	"encoding/json"
	"net/http"

	"narrative-server/internal/engine"
	"narrative-server/internal/version"
	"narrative-server/pkg/logger"
)

// Server exposes the running campaign to spectators: a read-only websocket
// stream plus a few JSON inspection endpoints. Nothing reachable from here
// mutates simulation state.
type Server struct {
	Campaign *engine.Service
	Addr     string
}

func New(campaign *engine.Service, addr string) *Server {
	return &Server{Campaign: campaign, Addr: addr}
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))
	mux.HandleFunc("/snapshot", enableCORS(s.handleSnapshot))

	debug := NewDebugHandler(s.Campaign)
	debug.RegisterRoutes(mux)

	logger.Log.Infof("Narrative server listening on %s", s.Addr)
	return http.ListenAndServe(s.Addr, mux)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("Websocket upgrade failed")
		return
	}

	spectator := NewSpectator(s.Campaign, conn)
	go spectator.writePump()
	go spectator.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(version.Get())
}

// handleSnapshot serves the same view the websocket pushes, for one-shot
// polling clients.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Campaign.Snapshot())
}
