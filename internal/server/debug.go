package server

import (
	"encoding/json"
	"net/http"

	"narrative-server/internal/engine"
)

// DebugHandler exposes internal simulation state for inspection.
type DebugHandler struct {
	Campaign *engine.Service
}

func NewDebugHandler(c *engine.Service) *DebugHandler {
	return &DebugHandler{Campaign: c}
}

func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/gates", h.handleGates)
	mux.HandleFunc("/debug/units", h.handleUnits)
	mux.HandleFunc("/debug/diary", h.handleDiary)
	mux.HandleFunc("/debug/order", h.handleOrder)
}

// Gate records are written once during world construction and never while
// the loop runs, so the registry is safe to read here.
func (h *DebugHandler) handleGates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Campaign.Gates.AllGates())
}

func (h *DebugHandler) handleUnits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Campaign.Snapshot().Units)
}

func (h *DebugHandler) handleDiary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.Campaign.Diary.Entries())
}

func (h *DebugHandler) handleOrder(w http.ResponseWriter, _ *http.Request) {
	snap := h.Campaign.Snapshot()
	writeJSON(w, map[string]any{
		"round":        snap.Round,
		"globalTurn":   snap.Turn,
		"currentActor": snap.CurrentActor,
		"turnOrder":    snap.TurnOrder,
		"pending":      snap.CurrentActor != "",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
