package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mkastner/vigil/internal/violation"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id       TEXT PRIMARY KEY,
	participant_name TEXT NOT NULL,
	position         TEXT NOT NULL,
	start_time       TEXT NOT NULL,
	end_time         TEXT,
	duration         TEXT,
	final_score      INTEGER NOT NULL DEFAULT 100,
	report_generated INTEGER NOT NULL DEFAULT 0,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	severity    TEXT NOT NULL,
	message     TEXT NOT NULL,
	occurred_at TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS session_violations (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id      TEXT NOT NULL,
	category        TEXT NOT NULL,
	detail          TEXT,
	elapsed_ms      INTEGER NOT NULL DEFAULT 0,
	face_count      INTEGER NOT NULL DEFAULT 0,
	points_deducted INTEGER NOT NULL DEFAULT 0,
	occurred_at     TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE INDEX IF NOT EXISTS idx_session_events_session
ON session_events(session_id);

CREATE INDEX IF NOT EXISTS idx_session_violations_session
ON session_violations(session_id);
`

// #endregion schema

// #region store-struct
// Store persists session records in SQLite. It implements the monitor's
// Recorder contract; callers treat write failures as non-fatal.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Health pings the database.
func (s *Store) Health() error {
	return s.db.Ping()
}

// #endregion store-struct

// #region recorder
// CreateSession inserts the session-created record.
func (s *Store) CreateSession(sessionID, participantName, position string, start time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, participant_name, position, start_time, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, participantName, position,
		start.UTC().Format(time.RFC3339Nano),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// AppendEvent appends one event row for a session.
func (s *Store) AppendEvent(sessionID string, e violation.Event) error {
	_, err := s.db.Exec(
		`INSERT INTO session_events (session_id, severity, message, occurred_at)
		 VALUES (?, ?, ?, ?)`,
		sessionID, string(e.Severity), e.Message,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// AppendViolation appends one violation row for a session.
func (s *Store) AppendViolation(sessionID string, v violation.Violation) error {
	_, err := s.db.Exec(
		`INSERT INTO session_violations
		 (session_id, category, detail, elapsed_ms, face_count, points_deducted, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, string(v.Category), nullIfEmpty(v.Detail),
		v.ElapsedMS, v.Count, v.PointsDeducted,
		v.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert violation: %w", err)
	}
	return nil
}

// FinalizeSession sets the end-of-session fields. Finalizing twice or an
// unknown session is an error.
func (s *Store) FinalizeSession(sessionID string, end time.Time, duration string, finalScore int) error {
	result, err := s.db.Exec(
		`UPDATE sessions
		 SET end_time = ?, duration = ?, final_score = ?, report_generated = 1
		 WHERE session_id = ? AND end_time IS NULL`,
		end.UTC().Format(time.RFC3339Nano), duration, finalScore, sessionID,
	)
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("finalize session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s not found or already finalized", sessionID)
	}
	return nil
}

// #endregion recorder
