package session

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkastner/vigil/internal/detect"
	"github.com/mkastner/vigil/internal/eventlog"
	"github.com/mkastner/vigil/internal/report"
	"github.com/mkastner/vigil/internal/scoring"
	"github.com/mkastner/vigil/internal/tracker"
	"github.com/mkastner/vigil/internal/violation"
)

// #region config

// MonitorConfig bundles the component configurations for one monitor.
type MonitorConfig struct {
	Filter       detect.FilterConfig
	Tracker      tracker.Config
	Weights      scoring.Weights
	LogCapacity  int
	NotifyBuffer int

	// Recorder persists session records; nil runs fully in-memory.
	Recorder Recorder

	// Now supplies wall-clock time for session start/stop. Tick processing
	// uses tick timestamps exclusively.
	Now func() time.Time
}

// DefaultMonitorConfig returns production defaults with no recorder.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Filter:       detect.DefaultFilterConfig(),
		Tracker:      tracker.DefaultConfig(),
		Weights:      scoring.DefaultWeights(),
		LogCapacity:  eventlog.DefaultCapacity,
		NotifyBuffer: 64,
	}
}

// #endregion config

// #region monitor-struct

// Monitor is the single-session coordinator: it feeds filtered ticks through
// the per-category trackers and fans resulting violations out to the event
// log, the scorer, the recorder, and the notification channel. One tick is
// processed to completion before the next begins.
type Monitor struct {
	mu     sync.Mutex
	config MonitorConfig
	now    func() time.Time

	filter  *detect.Filter
	tracker *tracker.Tracker
	events  *eventlog.Log
	scorer  *scoring.Scorer

	sess    *Session
	stopped bool
	final   *report.Report

	notify chan Notification
}

// NewMonitor creates a monitor with no active session.
func NewMonitor(config MonitorConfig) *Monitor {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	buffer := config.NotifyBuffer
	if buffer <= 0 {
		buffer = 64
	}
	return &Monitor{
		config: config,
		now:    now,
		filter: detect.NewFilter(config.Filter),
		notify: make(chan Notification, buffer),
	}
}

// Notifications returns the presentation channel. Sends never block tick
// processing; entries are dropped when no subscriber keeps up.
func (m *Monitor) Notifications() <-chan Notification {
	return m.notify
}

// #endregion monitor-struct

// #region start

// StartSession opens a new session and returns its generated identifier.
// Starting while a session is active is an error with no state mutation.
func (m *Monitor) StartSession(participantName, position string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if participantName == "" || position == "" {
		return "", ErrMissingParticipant
	}
	if m.sess != nil && !m.stopped {
		return "", ErrSessionActive
	}

	start := m.now()
	m.sess = &Session{
		ID:              uuid.New().String(),
		ParticipantName: participantName,
		Position:        position,
		StartTime:       start,
	}
	m.stopped = false
	m.final = nil
	m.tracker = tracker.NewTracker(m.config.Tracker, start)
	m.events = eventlog.NewLog(m.config.LogCapacity)
	m.scorer = scoring.NewScorer(m.config.Weights)

	if m.config.Recorder != nil {
		if err := m.config.Recorder.CreateSession(m.sess.ID, participantName, position, start); err != nil {
			m.recordStoreFailure("create session", err)
		}
	}

	m.appendEvent(violation.Event{
		Timestamp: start,
		Severity:  violation.SeverityInfo,
		Message:   fmt.Sprintf("Session started for %s - %s", participantName, position),
	})

	log.Printf("[MON] session %s started for %s (%s)", m.sess.ID, participantName, position)
	return m.sess.ID, nil
}

// #endregion start

// #region tick

// Tick runs one evaluation cycle: filter, per-category state machines, then
// fan-out of whatever they emitted. Ticks after stop are rejected.
func (m *Monitor) Tick(in detect.TickInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return ErrNoSession
	}
	if m.stopped {
		return ErrSessionStopped
	}

	filtered := detect.TickInput{
		Timestamp:      in.Timestamp,
		FacesSampled:   in.FacesSampled,
		ObjectsSampled: in.ObjectsSampled,
	}
	if in.FacesSampled {
		filtered.Faces = m.filter.Faces(in.Faces)
	}
	if in.ObjectsSampled {
		filtered.Objects = m.filter.Objects(in.Objects)
	}

	res := m.tracker.Tick(filtered)

	for _, v := range res.Violations {
		stamped := m.scorer.Record(v)
		if m.config.Recorder != nil {
			if err := m.config.Recorder.AppendViolation(m.sess.ID, stamped); err != nil {
				m.recordStoreFailure("append violation", err)
			}
		}
		m.send(Notification{SessionID: m.sess.ID, Score: m.scorer.Score(), Violation: &stamped})
		log.Printf("[MON] violation %s score=%d", stamped.Category, m.scorer.Score())
	}

	for _, e := range res.Events {
		m.appendEvent(e)
	}

	return nil
}

// #endregion tick

// #region stop

// StopSession finalizes the session and returns the end-of-session report.
// No further ticks or score changes are accepted afterwards.
func (m *Monitor) StopSession() (report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return report.Report{}, ErrNoSession
	}
	if m.stopped {
		return report.Report{}, ErrSessionStopped
	}

	end := m.now()
	m.sess.EndTime = end
	m.stopped = true

	m.appendEvent(violation.Event{
		Timestamp: end,
		Severity:  violation.SeverityInfo,
		Message:   "Session ended",
	})

	r := m.buildReport()
	m.sess.ReportGenerated = true
	m.final = &r

	if m.config.Recorder != nil {
		if err := m.config.Recorder.FinalizeSession(m.sess.ID, end, r.Duration, r.FinalScore); err != nil {
			m.recordStoreFailure("finalize session", err)
		}
	}

	log.Printf("[MON] session %s finalized score=%d violations=%d",
		m.sess.ID, r.FinalScore, r.TotalViolations)
	return r, nil
}

// #endregion stop

// #region report

// Report returns the current report. After finalization it always returns
// the identical finalized record; on a live session it is marked in progress.
func (m *Monitor) Report() (report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return report.Report{}, ErrNoSession
	}
	if m.final != nil {
		return *m.final, nil
	}
	return m.buildReport(), nil
}

func (m *Monitor) buildReport() report.Report {
	in := report.BuildInput{
		SessionID:       m.sess.ID,
		ParticipantName: m.sess.ParticipantName,
		Position:        m.sess.Position,
		StartTime:       m.sess.StartTime,
		EndTime:         m.sess.EndTime,
		Score:           m.scorer.Score(),
		Breakdown:       m.scorer.Breakdown(),
		Absence:         m.scorer.AbsenceDuration(),
		Violations:      m.scorer.Violations(),
		Events:          m.events.Events(),
	}
	if m.sess.EndTime.IsZero() {
		in.Now = m.now()
	}
	return report.Build(in)
}

// #endregion report

// #region snapshot

// Snapshot returns a read-only view of the accumulated session state.
func (m *Monitor) Snapshot() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return Snapshot{}, ErrNoSession
	}
	return Snapshot{
		SessionID:       m.sess.ID,
		ParticipantName: m.sess.ParticipantName,
		Position:        m.sess.Position,
		StartTime:       m.sess.StartTime,
		EndTime:         m.sess.EndTime,
		Finalized:       m.sess.Finalized(),
		Score:           m.scorer.Score(),
		Violations:      m.scorer.Violations(),
		Events:          m.events.Events(),
	}, nil
}

// #endregion snapshot

// #region helpers

// appendEvent writes to the local log, the recorder, and the notification
// channel. Caller holds the mutex.
func (m *Monitor) appendEvent(e violation.Event) {
	m.events.Append(e)
	if m.config.Recorder != nil {
		if err := m.config.Recorder.AppendEvent(m.sess.ID, e); err != nil {
			m.recordStoreFailure("append event", err)
		}
	}
	m.send(Notification{SessionID: m.sess.ID, Score: m.scorer.Score(), Event: &e})
}

// recordStoreFailure logs a recorder failure as a warning-severity event and
// keeps the session going. No retry; that belongs to the transport layer.
func (m *Monitor) recordStoreFailure(op string, err error) {
	log.Printf("[MON] recorder %s failed: %v", op, err)
	m.events.Append(violation.Event{
		Timestamp: m.now(),
		Severity:  violation.SeverityWarning,
		Message:   fmt.Sprintf("Persistence unavailable (%s): %v", op, err),
	})
}

// send delivers a notification without ever blocking tick processing.
func (m *Monitor) send(n Notification) {
	select {
	case m.notify <- n:
	default:
	}
}

// #endregion helpers
