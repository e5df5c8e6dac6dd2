package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"skyphase/pkg/phase"
	"skyphase/pkg/telemetry"
)

// StatusResponse is the combined telemetry and phase response.
type StatusResponse struct {
	Snapshot telemetry.Snapshot `json:"snapshot"`
	Phase    phase.Phase        `json:"phase"`
	Previous phase.Phase        `json:"previousPhase"`
	Category string             `json:"category"`
}

// StatusHandler holds the latest snapshot and phase for the HTTP API. It is
// fed from the sampler and transition bus callbacks.
type StatusHandler struct {
	mu       sync.RWMutex
	snapshot telemetry.Snapshot
	phase    phase.Phase
	previous phase.Phase
	category string

	history func() []phase.Transition
}

// NewStatusHandler creates a handler; historyFn supplies the transition log
// for the transitions endpoint.
func NewStatusHandler(historyFn func() []phase.Transition) *StatusHandler {
	return &StatusHandler{history: historyFn}
}

// UpdateSnapshot stores the latest snapshot. Implements the sampler
// callback signature.
func (h *StatusHandler) UpdateSnapshot(s telemetry.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshot = s
}

// UpdateTransition stores the latest phase. Implements the transition bus
// callback signature.
func (h *StatusHandler) UpdateTransition(tr phase.Transition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.previous = tr.From
	h.phase = tr.To
}

// SetCategory records the active aircraft category.
func (h *StatusHandler) SetCategory(category string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.category = category
}

func (h *StatusHandler) status() StatusResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return StatusResponse{
		Snapshot: h.snapshot,
		Phase:    h.phase,
		Previous: h.previous,
		Category: h.category,
	}
}

func (h *StatusHandler) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	snap := h.snapshot
	h.mu.RUnlock()

	writeJSON(w, snap)
}

func (h *StatusHandler) handlePhase(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.status())
}

func (h *StatusHandler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	trs := h.history()
	if trs == nil {
		trs = []phase.Transition{}
	}
	writeJSON(w, trs)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
