// Package recorder persists flight sessions, decimated telemetry and phase
// transitions to SQLite, with CSV export for debrief tooling.
package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the recording database and runs migrations.
func Init(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// WAL mode plus a generous busy timeout keeps the writer responsive
	// while export queries run.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Single connection avoids SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME,
			ended_at DATETIME,
			aircraft_title TEXT,
			aircraft_category TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			captured_at DATETIME NOT NULL,
			latitude REAL,
			longitude REAL,
			altitude_msl REAL,
			altitude_agl REAL,
			vertical_speed REAL,
			pitch REAL,
			bank REAL,
			heading REAL,
			indicated_airspeed REAL,
			ground_speed REAL,
			throttle_pct REAL,
			flaps_pct REAL,
			on_ground BOOLEAN,
			phase TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_session
			ON snapshots(session_id, captured_at);`,
		`CREATE TABLE IF NOT EXISTS transitions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			at DATETIME NOT NULL,
			from_phase TEXT,
			to_phase TEXT,
			altitude_msl REAL,
			indicated_airspeed REAL,
			vertical_speed REAL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_session
			ON transitions(session_id, at);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec %.40q: %w", q, err)
		}
	}
	return nil
}
