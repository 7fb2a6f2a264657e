package report

import (
	"fmt"
	"time"

	"github.com/mkastner/vigil/internal/scoring"
	"github.com/mkastner/vigil/internal/violation"
)

// #region report
// Report is the exportable end-of-session record. Building one is a pure
// function of the inputs, so rebuilding after finalization always yields
// identical values.
type Report struct {
	SessionID       string    `json:"sessionId"`
	ParticipantName string    `json:"participantName"`
	Position        string    `json:"position"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime,omitzero"`
	Duration        string    `json:"duration"`
	InProgress      bool      `json:"inProgress"`

	InitialScore int `json:"initialScore"`
	FinalScore   int `json:"finalScore"`

	TotalViolations    int     `json:"totalViolations"`
	FocusViolations    int     `json:"focusViolations"`
	ObjectViolations   int     `json:"objectViolations"`
	PresenceViolations int     `json:"presenceViolations"`
	OtherViolations    int     `json:"otherViolations"`
	AbsenceDuration    float64 `json:"absenceDurationSeconds"`

	Recommendation string                `json:"recommendation"`
	Violations     []violation.Violation `json:"violations"`
	Events         []violation.Event     `json:"events"`
}

// #endregion report

// #region build-input
// BuildInput bundles the session metadata and accumulated state snapshots the
// builder combines.
type BuildInput struct {
	SessionID       string
	ParticipantName string
	Position        string
	StartTime       time.Time
	EndTime         time.Time // zero while the session is live
	Now             time.Time // duration reference for a live session

	Score      int
	Breakdown  scoring.Breakdown
	Absence    float64
	Violations []violation.Violation
	Events     []violation.Event
}

// #endregion build-input

// #region build
// Build combines scorer state, event log, and session metadata into the final
// record. A live session (zero EndTime) is marked in progress rather than
// rejected, since a live score is always well-defined.
func Build(in BuildInput) Report {
	r := Report{
		SessionID:       in.SessionID,
		ParticipantName: in.ParticipantName,
		Position:        in.Position,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		InitialScore:    scoring.InitialScore,
		FinalScore:      in.Score,

		TotalViolations:    len(in.Violations),
		FocusViolations:    in.Breakdown.Focus,
		ObjectViolations:   in.Breakdown.Object,
		PresenceViolations: in.Breakdown.Presence,
		OtherViolations:    in.Breakdown.Other,
		AbsenceDuration:    in.Absence,

		Recommendation: Recommendation(in.Score),
		Violations:     in.Violations,
		Events:         in.Events,
	}

	if in.EndTime.IsZero() {
		r.InProgress = true
		r.Duration = "session in progress"
		if !in.Now.IsZero() {
			r.Duration = FormatDuration(in.Now.Sub(in.StartTime))
		}
	} else {
		r.Duration = FormatDuration(in.EndTime.Sub(in.StartTime))
	}

	return r
}

// #endregion build

// #region recommendation
// Recommendation maps a final score to a coarse qualitative band.
func Recommendation(score int) string {
	switch {
	case score >= 90:
		return "Excellent - No significant integrity concerns detected."
	case score >= 80:
		return "Good - Minor issues detected, generally acceptable behavior."
	case score >= 70:
		return "Fair - Some concerning behaviors detected, may require review."
	case score >= 60:
		return "Poor - Multiple violations detected, session integrity questionable."
	default:
		return "Critical - Severe violations detected, session results unreliable."
	}
}

// #endregion recommendation

// #region format-duration
// FormatDuration renders an elapsed time as "1h 2m 3s", dropping leading
// zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d.Seconds())
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes%60, seconds%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// #endregion format-duration
