package recorder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"skyphase/pkg/phase"
	"skyphase/pkg/telemetry"
)

// ErrNoSession is returned by operations that need an active session.
var ErrNoSession = errors.New("recorder: no active session")

// DefaultInterval is the decimation interval: at most one snapshot row per
// second regardless of the sampler's poll rate.
const DefaultInterval = time.Second

// Recorder persists one flight session at a time. OnSnapshot and
// OnTransition are safe to call from the sampler and detector callbacks.
type Recorder struct {
	db     *DB
	logger *slog.Logger

	mu        sync.Mutex
	interval  time.Duration
	sessionID string
	lastWrite time.Time
	phase     phase.Phase
}

// New creates a recorder over an initialized database. A non-positive
// interval falls back to DefaultInterval.
func New(db *DB, interval time.Duration) *Recorder {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Recorder{
		db:       db,
		logger:   slog.Default().With("component", "recorder"),
		interval: interval,
	}
}

// StartSession opens a new session and returns its ID. A session already in
// progress is ended first.
func (r *Recorder) StartSession(s telemetry.Snapshot) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID != "" {
		if err := r.endLocked(s.CapturedAt); err != nil {
			return "", err
		}
	}

	// A session opened before the first sampling cycle has a zero capture
	// time; fall back to the wall clock rather than persisting it.
	startedAt := s.CapturedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	id := uuid.NewString()
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, aircraft_title, aircraft_category)
		 VALUES (?, ?, ?, ?)`,
		id, startedAt.UTC(), s.AircraftTitle, s.AircraftCategory)
	if err != nil {
		return "", fmt.Errorf("start session: %w", err)
	}

	r.sessionID = id
	r.lastWrite = time.Time{}
	r.logger.Info("session started", "session", id, "aircraft", s.AircraftTitle)
	return id, nil
}

// EndSession closes the active session.
func (r *Recorder) EndSession() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionID == "" {
		return ErrNoSession
	}
	return r.endLocked(time.Now())
}

func (r *Recorder) endLocked(at time.Time) error {
	_, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		at.UTC(), r.sessionID)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	r.logger.Info("session ended", "session", r.sessionID)
	r.sessionID = ""
	return nil
}

// SessionID returns the active session ID, or "".
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// OnSnapshot records a snapshot row, decimated to the configured interval.
// Snapshots outside a session or with the simulation frozen are dropped.
func (r *Recorder) OnSnapshot(s telemetry.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessionID == "" || !s.SimRunning {
		return
	}
	if !r.lastWrite.IsZero() && s.CapturedAt.Sub(r.lastWrite) < r.interval {
		return
	}

	_, err := r.db.Exec(
		`INSERT INTO snapshots (session_id, captured_at, latitude, longitude,
			altitude_msl, altitude_agl, vertical_speed, pitch, bank, heading,
			indicated_airspeed, ground_speed, throttle_pct, flaps_pct,
			on_ground, phase)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.sessionID, s.CapturedAt.UTC(), s.Latitude, s.Longitude,
		s.AltitudeMSL, s.AltitudeAGL, s.VerticalSpeed, s.Pitch, s.Bank,
		s.Heading, s.IndicatedAirspeed, s.GroundSpeed, s.ThrottlePct,
		s.FlapsPct, s.OnGround, r.phase.String())
	if err != nil {
		r.logger.Error("snapshot insert failed", "error", err)
		return
	}
	r.lastWrite = s.CapturedAt
}

// OnTransition records a phase transition row and tracks the current phase
// for subsequent snapshot rows. Intended as a transition bus subscriber.
func (r *Recorder) OnTransition(tr phase.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.phase = tr.To
	if r.sessionID == "" {
		return
	}

	_, err := r.db.Exec(
		`INSERT INTO transitions (session_id, at, from_phase, to_phase,
			altitude_msl, indicated_airspeed, vertical_speed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.sessionID, tr.At.UTC(), tr.From.String(), tr.To.String(),
		tr.AltitudeMSL, tr.IndicatedAirspeed, tr.VerticalSpeed)
	if err != nil {
		r.logger.Error("transition insert failed", "error", err)
	}
}

// SnapshotCount returns the number of stored snapshot rows for a session.
func (r *Recorder) SnapshotCount(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM snapshots WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

var csvHeader = []string{
	"captured_at", "latitude", "longitude", "altitude_msl", "altitude_agl",
	"vertical_speed", "pitch", "bank", "heading", "indicated_airspeed",
	"ground_speed", "throttle_pct", "flaps_pct", "on_ground", "phase",
}

// ExportCSV streams a session's snapshot rows as CSV, oldest first.
func (r *Recorder) ExportCSV(w io.Writer, sessionID string) error {
	rows, err := r.db.Query(
		`SELECT captured_at, latitude, longitude, altitude_msl, altitude_agl,
			vertical_speed, pitch, bank, heading, indicated_airspeed,
			ground_speed, throttle_pct, flaps_pct, on_ground, phase
		 FROM snapshots WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for rows.Next() {
		var ts time.Time
		var lat, lon, msl, agl, vs, pitch, bank, hdg, ias, gs, thr, flaps float64
		var onGround bool
		var ph string
		if err := rows.Scan(&ts, &lat, &lon, &msl, &agl, &vs, &pitch, &bank,
			&hdg, &ias, &gs, &thr, &flaps, &onGround, &ph); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		rec := []string{
			ts.UTC().Format(time.RFC3339),
			fmtF(lat, 6), fmtF(lon, 6),
			fmtF(msl, 1), fmtF(agl, 1), fmtF(vs, 1),
			fmtF(pitch, 2), fmtF(bank, 2), fmtF(hdg, 1),
			fmtF(ias, 1), fmtF(gs, 1), fmtF(thr, 1), fmtF(flaps, 1),
			strconv.FormatBool(onGround), ph,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rows: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// Transitions returns a session's recorded transitions, oldest first.
func (r *Recorder) Transitions(sessionID string) ([]phase.Transition, error) {
	rows, err := r.db.Query(
		`SELECT at, from_phase, to_phase, altitude_msl, indicated_airspeed,
			vertical_speed
		 FROM transitions WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []phase.Transition
	for rows.Next() {
		var tr phase.Transition
		var from, to string
		if err := rows.Scan(&tr.At, &from, &to, &tr.AltitudeMSL,
			&tr.IndicatedAirspeed, &tr.VerticalSpeed); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.From = phase.Parse(from)
		tr.To = phase.Parse(to)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func fmtF(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
