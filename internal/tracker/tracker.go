package tracker

import (
	"fmt"
	"sort"
	"time"

	"github.com/mkastner/vigil/internal/detect"
	"github.com/mkastner/vigil/internal/violation"
)

// #region tick-result
// TickResult carries everything one evaluation cycle produced. Violations are
// order-preserving; Events is a superset view (every violation has a matching
// event, plus informational notices with no score effect).
type TickResult struct {
	Violations []violation.Violation
	Events     []violation.Event
}

// #endregion tick-result

// #region tracker-struct
// Tracker runs one independent hysteresis sub-machine per violation category
// over a filtered tick stream. Grace periods are timestamp-delta based: the
// current tick's timestamp is compared against a stored last-good timestamp,
// never against a scheduled timer, so irregular tick delivery does not
// accumulate drift.
type Tracker struct {
	config Config

	lastFaceSeen      time.Time
	faceAbsentState   State
	lastFocused       time.Time
	focusLostState    State
	multipleFaceState State
	objectsVisible    map[string]bool
}

// NewTracker creates a tracker; startAt seeds the last-good timestamps so a
// session that begins with no face accumulates from session start.
func NewTracker(config Config, startAt time.Time) *Tracker {
	return &Tracker{
		config:            config,
		lastFaceSeen:      startAt,
		faceAbsentState:   StateBaseline,
		lastFocused:       startAt,
		focusLostState:    StateBaseline,
		multipleFaceState: StateBaseline,
		objectsVisible:    make(map[string]bool),
	}
}

// #endregion tracker-struct

// #region tick
// Tick advances every sub-machine by one evaluation cycle. Input must already
// be filtered. A tick with no fresh data for a category is treated as "no
// detection this tick" for that category, never as an error.
func (t *Tracker) Tick(in detect.TickInput) TickResult {
	var res TickResult
	if in.Timestamp.IsZero() {
		// Malformed tick: nothing to compare timestamps against. The
		// sub-machines keep their accumulated state untouched.
		return res
	}

	facePresent := in.FacesSampled && len(in.Faces) > 0

	t.tickFaceAbsent(in.Timestamp, facePresent, &res)
	t.tickFocusLost(in.Timestamp, in.Faces, facePresent, &res)
	t.tickMultipleFaces(in.Timestamp, in, &res)
	if in.ObjectsSampled {
		t.tickObjects(in.Timestamp, in.Objects, &res)
	}

	return res
}

// #endregion tick

// #region face-absent
func (t *Tracker) tickFaceAbsent(now time.Time, facePresent bool, res *TickResult) {
	if facePresent {
		t.lastFaceSeen = now
		t.faceAbsentState = StateBaseline
		return
	}

	elapsed := now.Sub(t.lastFaceSeen)
	if elapsed < t.config.FaceAbsentGrace {
		if t.faceAbsentState == StateBaseline {
			t.faceAbsentState = StateSuspect
		}
		return
	}
	if t.faceAbsentState == StateTriggered {
		return
	}

	t.faceAbsentState = StateTriggered
	ms := elapsed.Milliseconds()
	res.Violations = append(res.Violations, violation.Violation{
		Category:  violation.FaceAbsent,
		Timestamp: now,
		Detail:    fmt.Sprintf("%dms", ms),
		ElapsedMS: ms,
	})
	res.Events = append(res.Events, violation.Event{
		Timestamp: now,
		Severity:  violation.SeverityDanger,
		Message:   "Face not detected for more than 10 seconds",
	})
}

// #endregion face-absent

// #region focus-lost
// The focus clock runs only while a face is visible but off-center. Ticks
// with no face at all belong to the face_absent tracker; double-charging
// them here would stack two violations for one underlying absence.
func (t *Tracker) tickFocusLost(now time.Time, faces []detect.FaceDetection, facePresent bool, res *TickResult) {
	if !facePresent || t.anyFocused(faces) {
		t.lastFocused = now
		if facePresent {
			t.focusLostState = StateBaseline
		}
		return
	}

	elapsed := now.Sub(t.lastFocused)
	if elapsed < t.config.FocusLostGrace {
		if t.focusLostState == StateBaseline {
			t.focusLostState = StateSuspect
		}
		return
	}
	if t.focusLostState == StateTriggered {
		return
	}

	t.focusLostState = StateTriggered
	ms := elapsed.Milliseconds()
	res.Violations = append(res.Violations, violation.Violation{
		Category:  violation.FocusLost,
		Timestamp: now,
		Detail:    fmt.Sprintf("%dms", ms),
		ElapsedMS: ms,
	})
	res.Events = append(res.Events, violation.Event{
		Timestamp: now,
		Severity:  violation.SeverityWarning,
		Message:   "Participant looking away for more than 5 seconds",
	})
}

// anyFocused reports whether at least one face is centered and large enough
// to count as attending to the screen.
func (t *Tracker) anyFocused(faces []detect.FaceDetection) bool {
	for _, f := range faces {
		hdev := abs(f.Box.CenterX - 0.5)
		vdev := abs(f.Box.CenterY - 0.5)
		if hdev <= t.config.MaxHorizontalDeviation &&
			vdev <= t.config.MaxVerticalDeviation &&
			f.Box.Area() >= t.config.MinFocusArea {
			return true
		}
	}
	return false
}

// #endregion focus-lost

// #region multiple-faces
// multiple_faces is a level trigger: it fires the tick the filtered count
// exceeds one and re-arms only after the count drops back.
func (t *Tracker) tickMultipleFaces(now time.Time, in detect.TickInput, res *TickResult) {
	count := 0
	if in.FacesSampled {
		count = len(in.Faces)
	}

	if count <= 1 {
		t.multipleFaceState = StateBaseline
		return
	}
	if t.multipleFaceState == StateTriggered {
		return
	}

	t.multipleFaceState = StateTriggered
	res.Violations = append(res.Violations, violation.Violation{
		Category:  violation.MultipleFaces,
		Timestamp: now,
		Detail:    fmt.Sprintf("%d faces", count),
		Count:     count,
	})
	res.Events = append(res.Events, violation.Event{
		Timestamp: now,
		Severity:  violation.SeverityDanger,
		Message:   fmt.Sprintf("Multiple faces detected (%d)", count),
	})
}

// #endregion multiple-faces

// #region objects
// tickObjects runs one edge-triggered sub-tracker per suspicious class: a
// violation the tick a class first appears, an informational notice the tick
// it disappears, and a fresh violation if it reappears later.
func (t *Tracker) tickObjects(now time.Time, objects []detect.ObjectDetection, res *TickResult) {
	current := make(map[string]bool, len(objects))
	for _, o := range objects {
		current[o.Class] = true
	}

	for _, class := range sortedKeys(current) {
		if t.objectsVisible[class] {
			continue
		}
		res.Violations = append(res.Violations, violation.Violation{
			Category:  violation.ObjectDetected,
			Timestamp: now,
			Detail:    class,
		})
		res.Events = append(res.Events, violation.Event{
			Timestamp: now,
			Severity:  violation.SeverityDanger,
			Message:   fmt.Sprintf("Suspicious object detected: %s", class),
		})
	}

	for _, class := range sortedKeys(t.objectsVisible) {
		if current[class] {
			continue
		}
		res.Events = append(res.Events, violation.Event{
			Timestamp: now,
			Severity:  violation.SeverityWarning,
			Message:   fmt.Sprintf("Suspicious object no longer visible: %s", class),
		})
	}

	t.objectsVisible = current
}

// #endregion objects

// #region introspection
// StateOf returns the current sub-machine state for a category. Object
// tracking reports Triggered while any suspicious class is visible.
func (t *Tracker) StateOf(cat violation.Category) State {
	switch cat {
	case violation.FaceAbsent:
		return t.faceAbsentState
	case violation.FocusLost:
		return t.focusLostState
	case violation.MultipleFaces:
		return t.multipleFaceState
	case violation.ObjectDetected:
		if len(t.objectsVisible) > 0 {
			return StateTriggered
		}
		return StateBaseline
	}
	return StateBaseline
}

// VisibleObjects returns the currently visible suspicious classes, sorted.
func (t *Tracker) VisibleObjects() []string {
	return sortedKeys(t.objectsVisible)
}

// #endregion introspection

// #region helpers
func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion helpers
