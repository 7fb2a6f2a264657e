package tracker

import (
	"testing"
	"time"

	"github.com/mkastner/vigil/internal/detect"
	"github.com/mkastner/vigil/internal/violation"
)

var sessionStart = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func centeredFace() detect.FaceDetection {
	return detect.FaceDetection{
		Confidence: 0.9,
		Box:        detect.BBox{CenterX: 0.5, CenterY: 0.5, Width: 0.4, Height: 0.4},
	}
}

func offCenterFace() detect.FaceDetection {
	return detect.FaceDetection{
		Confidence: 0.9,
		Box:        detect.BBox{CenterX: 0.9, CenterY: 0.5, Width: 0.4, Height: 0.4},
	}
}

func faceTick(at time.Time, faces ...detect.FaceDetection) detect.TickInput {
	return detect.TickInput{Timestamp: at, Faces: faces, FacesSampled: true}
}

func countByCategory(violations []violation.Violation, cat violation.Category) int {
	n := 0
	for _, v := range violations {
		if v.Category == cat {
			n++
		}
	}
	return n
}

// #region face-absent

func TestFaceAbsentGraceBoundary(t *testing.T) {
	tests := []struct {
		name      string
		elapsed   time.Duration
		wantCount int
	}{
		{"just under grace", 9999 * time.Millisecond, 0},
		{"exactly at grace", 10 * time.Second, 1},
		{"just over grace", 10001 * time.Millisecond, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(DefaultConfig(), sessionStart)
			res := tr.Tick(faceTick(sessionStart.Add(tt.elapsed)))
			got := countByCategory(res.Violations, violation.FaceAbsent)
			if got != tt.wantCount {
				t.Fatalf("face_absent violations after %v: got %d, want %d", tt.elapsed, got, tt.wantCount)
			}
		})
	}
}

func TestFaceAbsentViolationShape(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart.Add(12 * time.Second)
	res := tr.Tick(faceTick(at))

	if len(res.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(res.Violations))
	}
	v := res.Violations[0]
	if v.Category != violation.FaceAbsent {
		t.Errorf("category = %q, want %q", v.Category, violation.FaceAbsent)
	}
	if v.ElapsedMS != 12000 {
		t.Errorf("elapsedMs = %d, want 12000", v.ElapsedMS)
	}
	if v.Detail != "12000ms" {
		t.Errorf("details = %q, want %q", v.Detail, "12000ms")
	}
	if !v.Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", v.Timestamp, at)
	}
	if len(res.Events) != 1 || res.Events[0].Severity != violation.SeverityDanger {
		t.Errorf("expected one danger event, got %+v", res.Events)
	}
}

func TestFaceAbsentSingleIncident(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)

	// 30 consecutive ticks with no face, one per second. The incident must
	// produce exactly one violation no matter how long it drags on.
	total := 0
	for i := 1; i <= 30; i++ {
		res := tr.Tick(faceTick(sessionStart.Add(time.Duration(i) * time.Second)))
		total += countByCategory(res.Violations, violation.FaceAbsent)
	}
	if total != 1 {
		t.Fatalf("30s absence produced %d violations, want 1", total)
	}
	if tr.StateOf(violation.FaceAbsent) != StateTriggered {
		t.Fatalf("state = %v, want triggered", tr.StateOf(violation.FaceAbsent))
	}
}

func TestFaceAbsentRearmsAfterRecovery(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart

	// First incident.
	at = at.Add(11 * time.Second)
	res := tr.Tick(faceTick(at))
	if countByCategory(res.Violations, violation.FaceAbsent) != 1 {
		t.Fatal("expected first incident to fire")
	}

	// Face returns: machine resets to baseline.
	at = at.Add(time.Second)
	tr.Tick(faceTick(at, centeredFace()))
	if tr.StateOf(violation.FaceAbsent) != StateBaseline {
		t.Fatal("expected baseline after face returns")
	}

	// Second incident fires again once its own grace expires.
	at = at.Add(11 * time.Second)
	res = tr.Tick(faceTick(at))
	if countByCategory(res.Violations, violation.FaceAbsent) != 1 {
		t.Fatal("expected second incident to fire after recovery")
	}
}

func TestFaceAbsentUnsampledTickAccumulates(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)

	// Ticks where the face pipeline produced nothing at all count as absence.
	res := tr.Tick(detect.TickInput{Timestamp: sessionStart.Add(11 * time.Second)})
	if countByCategory(res.Violations, violation.FaceAbsent) != 1 {
		t.Fatal("expected unsampled ticks to accumulate toward face_absent")
	}
}

// #endregion face-absent

// #region focus-lost

func TestFocusLostFiresAfterGrace(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart

	// Attentive first, then off-center past the 5s grace.
	at = at.Add(time.Second)
	tr.Tick(faceTick(at, centeredFace()))

	var total int
	for i := 0; i < 7; i++ {
		at = at.Add(time.Second)
		res := tr.Tick(faceTick(at, offCenterFace()))
		total += countByCategory(res.Violations, violation.FocusLost)
	}
	if total != 1 {
		t.Fatalf("focus_lost violations = %d, want 1", total)
	}
}

func TestFocusLostNotChargedDuringAbsence(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)

	// A long absence belongs to face_absent alone. Stacking focus_lost on
	// the same ticks would double-charge one underlying incident.
	var focus, absent int
	for i := 1; i <= 11; i++ {
		res := tr.Tick(faceTick(sessionStart.Add(time.Duration(i) * time.Second)))
		focus += countByCategory(res.Violations, violation.FocusLost)
		absent += countByCategory(res.Violations, violation.FaceAbsent)
	}
	if absent != 1 {
		t.Fatalf("face_absent = %d, want 1", absent)
	}
	if focus != 0 {
		t.Fatalf("focus_lost = %d, want 0", focus)
	}
}

func TestFocusLostResetOnRecenter(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart

	// Off-center for 4s, recenter, off-center for 4s again: never fires.
	for i := 0; i < 4; i++ {
		at = at.Add(time.Second)
		res := tr.Tick(faceTick(at, offCenterFace()))
		if len(res.Violations) != 0 {
			t.Fatalf("unexpected violation at %v: %+v", at, res.Violations)
		}
	}
	at = at.Add(time.Second)
	tr.Tick(faceTick(at, centeredFace()))
	for i := 0; i < 4; i++ {
		at = at.Add(time.Second)
		res := tr.Tick(faceTick(at, offCenterFace()))
		if len(res.Violations) != 0 {
			t.Fatalf("unexpected violation after recenter: %+v", res.Violations)
		}
	}
}

func TestAnyFocusedThresholds(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)

	tests := []struct {
		name string
		box  detect.BBox
		want bool
	}{
		{"centered", detect.BBox{CenterX: 0.5, CenterY: 0.5, Width: 0.4, Height: 0.4}, true},
		{"max horizontal deviation", detect.BBox{CenterX: 0.8, CenterY: 0.5, Width: 0.4, Height: 0.4}, true},
		{"beyond horizontal", detect.BBox{CenterX: 0.81, CenterY: 0.5, Width: 0.4, Height: 0.4}, false},
		{"beyond vertical", detect.BBox{CenterX: 0.5, CenterY: 0.76, Width: 0.4, Height: 0.4}, false},
		{"too small to judge", detect.BBox{CenterX: 0.5, CenterY: 0.5, Width: 0.2, Height: 0.2}, false},
		{"area at floor", detect.BBox{CenterX: 0.5, CenterY: 0.5, Width: 0.25, Height: 0.2}, true},
	}

	for _, tt := range tests {
		got := tr.anyFocused([]detect.FaceDetection{{Confidence: 0.9, Box: tt.box}})
		if got != tt.want {
			t.Errorf("%s: anyFocused = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// #endregion focus-lost

// #region multiple-faces

func TestMultipleFacesLevelTrigger(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart
	two := []detect.FaceDetection{centeredFace(), offCenterFace()}

	at = at.Add(time.Second)
	res := tr.Tick(faceTick(at, two...))
	if countByCategory(res.Violations, violation.MultipleFaces) != 1 {
		t.Fatal("expected multiple_faces to fire on first tick with count > 1")
	}
	if res.Violations[0].Count != 2 {
		t.Fatalf("count = %d, want 2", res.Violations[0].Count)
	}

	// Held high: no repeat.
	for i := 0; i < 5; i++ {
		at = at.Add(time.Second)
		res = tr.Tick(faceTick(at, two...))
		if countByCategory(res.Violations, violation.MultipleFaces) != 0 {
			t.Fatal("level trigger must not repeat while held")
		}
	}

	// Drop to one face, then back to two: fires again.
	at = at.Add(time.Second)
	tr.Tick(faceTick(at, centeredFace()))
	at = at.Add(time.Second)
	res = tr.Tick(faceTick(at, two...))
	if countByCategory(res.Violations, violation.MultipleFaces) != 1 {
		t.Fatal("expected re-fire after count dropped to one")
	}
}

// #endregion multiple-faces

// #region objects

func objectTick(at time.Time, classes ...string) detect.TickInput {
	objs := make([]detect.ObjectDetection, len(classes))
	for i, c := range classes {
		objs[i] = detect.ObjectDetection{Class: c, Confidence: 0.8}
	}
	return detect.TickInput{Timestamp: at, Objects: objs, ObjectsSampled: true, Faces: []detect.FaceDetection{centeredFace()}, FacesSampled: true}
}

func TestObjectEdgeTrigger(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart

	at = at.Add(time.Second)
	res := tr.Tick(objectTick(at, "cell phone"))
	if countByCategory(res.Violations, violation.ObjectDetected) != 1 {
		t.Fatal("expected violation on first appearance")
	}
	if res.Violations[0].Detail != "cell phone" {
		t.Fatalf("details = %q, want class name", res.Violations[0].Detail)
	}

	// Still visible: no repeat.
	at = at.Add(time.Second)
	res = tr.Tick(objectTick(at, "cell phone"))
	if countByCategory(res.Violations, violation.ObjectDetected) != 0 {
		t.Fatal("persisting object must not re-fire")
	}

	// Disappears: warning event, no violation.
	at = at.Add(time.Second)
	res = tr.Tick(objectTick(at))
	if countByCategory(res.Violations, violation.ObjectDetected) != 0 {
		t.Fatal("disappearance must not produce a violation")
	}
	found := false
	for _, e := range res.Events {
		if e.Severity == violation.SeverityWarning && e.Message == "Suspicious object no longer visible: cell phone" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected disappearance warning, events: %+v", res.Events)
	}

	// Reappears: fresh violation.
	at = at.Add(time.Second)
	res = tr.Tick(objectTick(at, "cell phone"))
	if countByCategory(res.Violations, violation.ObjectDetected) != 1 {
		t.Fatal("expected fresh violation on reappearance")
	}
}

func TestObjectClassesTrackedIndependently(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart

	at = at.Add(time.Second)
	res := tr.Tick(objectTick(at, "cell phone", "book"))
	if countByCategory(res.Violations, violation.ObjectDetected) != 2 {
		t.Fatalf("expected one violation per class, got %d", countByCategory(res.Violations, violation.ObjectDetected))
	}

	// Book leaves, phone stays: one warning, no violation.
	at = at.Add(time.Second)
	res = tr.Tick(objectTick(at, "cell phone"))
	if countByCategory(res.Violations, violation.ObjectDetected) != 0 {
		t.Fatal("unchanged phone must not re-fire when book leaves")
	}
	if got := tr.VisibleObjects(); len(got) != 1 || got[0] != "cell phone" {
		t.Fatalf("visible objects = %v, want [cell phone]", got)
	}
}

func TestObjectStateHeldOnUnsampledTick(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	at := sessionStart

	at = at.Add(time.Second)
	tr.Tick(objectTick(at, "cell phone"))

	// Object detection runs at a slower cadence than the tick loop. Ticks
	// without an object sample hold the visible set instead of treating it
	// as a disappearance.
	at = at.Add(time.Second)
	res := tr.Tick(faceTick(at, centeredFace()))
	for _, e := range res.Events {
		if e.Severity == violation.SeverityWarning {
			t.Fatalf("unsampled tick produced disappearance event: %+v", e)
		}
	}

	// The next sampled tick with the phone still there must not re-fire.
	at = at.Add(time.Second)
	res = tr.Tick(objectTick(at, "cell phone"))
	if countByCategory(res.Violations, violation.ObjectDetected) != 0 {
		t.Fatal("held state must survive unsampled ticks without flapping")
	}
}

// #endregion objects

func TestZeroTimestampTickIsIgnored(t *testing.T) {
	tr := NewTracker(DefaultConfig(), sessionStart)
	res := tr.Tick(detect.TickInput{})
	if len(res.Violations) != 0 || len(res.Events) != 0 {
		t.Fatalf("zero-timestamp tick produced output: %+v", res)
	}
}
