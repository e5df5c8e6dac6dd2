package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"skyphase/pkg/phase"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsEvent is the message pushed to websocket clients on every phase
// transition.
type wsEvent struct {
	Type       string           `json:"type"`
	Transition phase.Transition `json:"transition"`
	Status     StatusResponse   `json:"status"`
}

// WSHub pushes phase transitions to connected websocket clients.
type WSHub struct {
	status *StatusHandler
	logger *slog.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewWSHub creates a hub drawing status payloads from h.
func NewWSHub(h *StatusHandler) *WSHub {
	return &WSHub{
		status: h,
		logger: slog.Default().With("component", "ws"),
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// OnTransition broadcasts a transition to all clients. Intended as a
// transition bus subscriber.
func (hub *WSHub) OnTransition(tr phase.Transition) {
	ev := wsEvent{Type: "transition", Transition: tr, Status: hub.status.status()}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for conn := range hub.conns {
		if err := conn.WriteJSON(ev); err != nil {
			hub.logger.Debug("dropping websocket client", "error", err)
			conn.Close()
			delete(hub.conns, conn)
		}
	}
}

// ClientCount returns the number of connected clients.
func (hub *WSHub) ClientCount() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.conns)
}

func (hub *WSHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	// Greet with the current status so clients render without waiting for
	// the next transition. The greeting happens before the conn joins the
	// broadcast set: gorilla allows at most one concurrent writer, and a
	// transition published mid-greeting would otherwise write to the same
	// conn from the bus goroutine.
	if err := conn.WriteJSON(wsEvent{Type: "status", Status: hub.status.status()}); err != nil {
		conn.Close()
		return
	}

	hub.mu.Lock()
	hub.conns[conn] = struct{}{}
	hub.mu.Unlock()

	// Reader loop: we never expect client messages, but reading is what
	// detects the close handshake.
	go func() {
		defer func() {
			hub.mu.Lock()
			delete(hub.conns, conn)
			hub.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
