package eventlog

import (
	"time"

	"github.com/mkastner/vigil/internal/violation"
)

// DefaultCapacity bounds retained entries; eviction only affects audit
// completeness, never scoring.
const DefaultCapacity = 100

// #region stats
// Stats counts retained entries by severity.
type Stats struct {
	Total   int
	Info    int
	Warning int
	Danger  int
}

// #endregion stats

// #region log
// Log is an append-only, time-ordered, bounded event sequence. Insertion is
// at the head (most recent first); overflow evicts the oldest entry.
type Log struct {
	capacity int
	events   []violation.Event
}

// NewLog creates a log retaining at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// #endregion log

// #region append
// Append inserts an event at the head, evicting the tail on overflow.
func (l *Log) Append(e violation.Event) {
	l.events = append([]violation.Event{e}, l.events...)
	if len(l.events) > l.capacity {
		l.events = l.events[:l.capacity]
	}
}

// #endregion append

// #region queries
// Events returns a copy of the retained entries, most recent first.
func (l *Log) Events() []violation.Event {
	out := make([]violation.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return len(l.events)
}

// BySeverity returns retained entries with the given severity, most recent
// first.
func (l *Log) BySeverity(sev violation.Severity) []violation.Event {
	var out []violation.Event
	for _, e := range l.events {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

// InRange returns retained entries with from <= timestamp <= to, most recent
// first.
func (l *Log) InRange(from, to time.Time) []violation.Event {
	var out []violation.Event
	for _, e := range l.events {
		if !e.Timestamp.Before(from) && !e.Timestamp.After(to) {
			out = append(out, e)
		}
	}
	return out
}

// Stats returns severity counts over the retained entries.
func (l *Log) Stats() Stats {
	st := Stats{Total: len(l.events)}
	for _, e := range l.events {
		switch e.Severity {
		case violation.SeverityInfo:
			st.Info++
		case violation.SeverityWarning:
			st.Warning++
		case violation.SeverityDanger:
			st.Danger++
		}
	}
	return st
}

// #endregion queries
