// Package api exposes the HTTP and websocket status surface: current
// telemetry, detected phase, transition history and flight export.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"skyphase/pkg/version"
)

// Exporter streams a recorded session as CSV.
type Exporter interface {
	ExportCSV(w io.Writer, sessionID string) error
	SessionID() string
}

// NewServer creates and configures the HTTP server.
func NewServer(addr string, status *StatusHandler, hub *WSHub, exp Exporter, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/telemetry", status.handleTelemetry)
	mux.HandleFunc("GET /api/phase", status.handlePhase)
	mux.HandleFunc("GET /api/transitions", status.handleTransitions)
	mux.HandleFunc("GET /ws", hub.handleWS)

	if exp != nil {
		mux.HandleFunc("GET /api/export", func(w http.ResponseWriter, r *http.Request) {
			session := r.URL.Query().Get("session")
			if session == "" {
				session = exp.SessionID()
			}
			if session == "" {
				http.Error(w, "no session", http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "text/csv")
			w.Header().Set("Content-Disposition",
				`attachment; filename="`+session+`.csv"`)
			if err := exp.ExportCSV(w, session); err != nil {
				slog.Error("CSV export failed", "session", session, "error", err)
			}
		})
	}

	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		// Shut down after the response flushes.
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"version": version.Version})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}
