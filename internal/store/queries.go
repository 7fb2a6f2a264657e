package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mkastner/vigil/internal/violation"
)

// #region stored-session
// StoredSession is one persisted session row plus its ordered events and
// violations.
type StoredSession struct {
	SessionID       string
	ParticipantName string
	Position        string
	StartTime       time.Time
	EndTime         time.Time // zero when not finalized
	Duration        string
	FinalScore      int
	ReportGenerated bool
	Violations      []violation.Violation
	Events          []violation.Event
}

// #endregion stored-session

// #region get-session
// GetSession loads one session with its events and violations, oldest first.
func (s *Store) GetSession(sessionID string) (StoredSession, error) {
	var sess StoredSession
	var startStr string
	var endStr, duration sql.NullString
	var reportGenerated int

	err := s.db.QueryRow(
		`SELECT session_id, participant_name, position, start_time, end_time,
		        duration, final_score, report_generated
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&sess.SessionID, &sess.ParticipantName, &sess.Position, &startStr,
		&endStr, &duration, &sess.FinalScore, &reportGenerated)
	if err != nil {
		return StoredSession{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}

	sess.StartTime, _ = time.Parse(time.RFC3339Nano, startStr)
	if endStr.Valid {
		sess.EndTime, _ = time.Parse(time.RFC3339Nano, endStr.String)
	}
	if duration.Valid {
		sess.Duration = duration.String
	}
	sess.ReportGenerated = reportGenerated != 0

	if sess.Violations, err = s.sessionViolations(sessionID); err != nil {
		return StoredSession{}, err
	}
	if sess.Events, err = s.sessionEvents(sessionID); err != nil {
		return StoredSession{}, err
	}
	return sess, nil
}

func (s *Store) sessionViolations(sessionID string) ([]violation.Violation, error) {
	rows, err := s.db.Query(
		`SELECT category, detail, elapsed_ms, face_count, points_deducted, occurred_at
		 FROM session_violations WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var out []violation.Violation
	for rows.Next() {
		var v violation.Violation
		var category string
		var detail sql.NullString
		var occurredStr string
		if err := rows.Scan(&category, &detail, &v.ElapsedMS, &v.Count,
			&v.PointsDeducted, &occurredStr); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Category = violation.Category(category)
		if detail.Valid {
			v.Detail = detail.String
		}
		v.Timestamp, _ = time.Parse(time.RFC3339Nano, occurredStr)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) sessionEvents(sessionID string) ([]violation.Event, error) {
	rows, err := s.db.Query(
		`SELECT severity, message, occurred_at
		 FROM session_events WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []violation.Event
	for rows.Next() {
		var e violation.Event
		var severity, occurredStr string
		if err := rows.Scan(&severity, &e.Message, &occurredStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Severity = violation.Severity(severity)
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, occurredStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion get-session

// #region list-sessions
// SessionSummary is one row of the recent-session listing.
type SessionSummary struct {
	SessionID       string
	ParticipantName string
	Position        string
	StartTime       time.Time
	EndTime         time.Time
	FinalScore      int
	ReportGenerated bool
}

// ListSessions returns the most recently created sessions.
func (s *Store) ListSessions(limit int) ([]SessionSummary, error) {
	rows, err := s.db.Query(
		`SELECT session_id, participant_name, position, start_time, end_time,
		        final_score, report_generated
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		var startStr string
		var endStr sql.NullString
		var reportGenerated int
		if err := rows.Scan(&sum.SessionID, &sum.ParticipantName, &sum.Position,
			&startStr, &endStr, &sum.FinalScore, &reportGenerated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sum.StartTime, _ = time.Parse(time.RFC3339Nano, startStr)
		if endStr.Valid {
			sum.EndTime, _ = time.Parse(time.RFC3339Nano, endStr.String)
		}
		sum.ReportGenerated = reportGenerated != 0
		out = append(out, sum)
	}
	return out, rows.Err()
}

// #endregion list-sessions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
