package session

import (
	"errors"
	"time"

	"github.com/mkastner/vigil/internal/violation"
)

// #region errors
var (
	// ErrSessionActive is returned when a session is started while one is
	// already running.
	ErrSessionActive = errors.New("session already active")
	// ErrNoSession is returned when an operation needs an active session and
	// none has been started.
	ErrNoSession = errors.New("no active session")
	// ErrSessionStopped is returned for ticks or stops delivered after the
	// session was finalized.
	ErrSessionStopped = errors.New("session already stopped")
	// ErrMissingParticipant is returned when StartSession is called without
	// a participant name or position.
	ErrMissingParticipant = errors.New("participant name and position are required")
)

// #endregion errors

// #region session
// Session is the aggregate root for one monitored sitting. It owns all
// violation and event instances transitively and stops mutating once EndTime
// is set.
type Session struct {
	ID              string
	ParticipantName string
	Position        string
	StartTime       time.Time
	EndTime         time.Time // zero while live
	ReportGenerated bool
}

// Finalized reports whether the session has been stopped.
func (s *Session) Finalized() bool {
	return !s.EndTime.IsZero()
}

// #endregion session

// #region snapshot
// Snapshot is a read-only view of accumulated session state for external
// consumers. External readers never mutate session state directly.
type Snapshot struct {
	SessionID       string
	ParticipantName string
	Position        string
	StartTime       time.Time
	EndTime         time.Time
	Finalized       bool
	Score           int
	Violations      []violation.Violation
	Events          []violation.Event
}

// #endregion snapshot

// #region recorder
// Recorder is the persistence collaborator. All core logic succeeds purely
// in-memory when the recorder is nil or rejects writes; failures surface as
// warning events, never as faults.
type Recorder interface {
	CreateSession(sessionID, participantName, position string, start time.Time) error
	AppendEvent(sessionID string, e violation.Event) error
	AppendViolation(sessionID string, v violation.Violation) error
	FinalizeSession(sessionID string, end time.Time, duration string, finalScore int) error
}

// #endregion recorder

// #region notification
// Notification is one entry on the typed presentation channel. Exactly one of
// Event or Violation is set; Score is the integrity score after applying it.
type Notification struct {
	SessionID string
	Score     int
	Event     *violation.Event
	Violation *violation.Violation
}

// #endregion notification
