package violation

import "time"

// #region category
// Category enumerates the violation categories tracked per session.
type Category string

const (
	FaceAbsent     Category = "face_absent"
	FocusLost      Category = "focus_lost"
	MultipleFaces  Category = "multiple_faces"
	ObjectDetected Category = "object_detected"

	// ExcessiveMovement has a weight in the scoring table but no tracker
	// produces it yet; it routes through the "other" counter.
	ExcessiveMovement Category = "excessive_movement"
)

// #endregion category

// #region severity
// Severity classifies event log entries.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// #endregion severity

// #region violation
// Violation is an immutable record emitted by the state machine the moment a
// category transitions into Triggered. PointsDeducted is stamped by the
// scorer; consumers each hold their own copy.
type Violation struct {
	Category       Category  `json:"type"`
	Timestamp      time.Time `json:"timestamp"`
	Detail         string    `json:"details,omitempty"`
	ElapsedMS      int64     `json:"elapsedMs,omitempty"`
	Count          int       `json:"count,omitempty"`
	PointsDeducted int       `json:"pointsDeducted"`
}

// #endregion violation

// #region event
// Event is a single entry in the session event log. Violations always produce
// a corresponding event; session start/stop and object-disappearance notices
// are events with no score effect.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"type"`
	Message   string    `json:"message"`
}

// #endregion event
