package main

import (
	"time"

	"github.com/mkastner/vigil/internal/detect"
	"github.com/mkastner/vigil/internal/replay"
)

// #region demo-fixture

// demoFixture builds a synthetic 1Hz session: attentive start, a 13-second
// disappearance, recovery, then a phone that shows up and is put away.
func demoFixture() *replay.Fixture {
	centered := []detect.FaceDetection{{
		Confidence: 0.92,
		Box:        detect.BBox{CenterX: 0.5, CenterY: 0.48, Width: 0.3, Height: 0.35},
	}}
	phone := []detect.ObjectDetection{{Class: "cell phone", Confidence: 0.72}}

	fix := &replay.Fixture{
		Description:     "built-in demo scenario",
		ParticipantName: "Demo Participant",
		Position:        "Candidate",
		Start:           time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}

	addTick := func(offsetSec int, faces []detect.FaceDetection, objects []detect.ObjectDetection) {
		fix.Ticks = append(fix.Ticks, replay.TickRecord{
			OffsetMS: int64(offsetSec) * 1000,
			Faces:    faces,
			Objects:  objects,
		})
	}

	empty := []detect.FaceDetection{}
	noObjects := []detect.ObjectDetection{}

	// 5s attentive
	for s := 1; s <= 5; s++ {
		addTick(s, centered, noObjects)
	}
	// 13s gone: face_absent fires once past the 10s grace
	for s := 6; s <= 18; s++ {
		addTick(s, empty, noObjects)
	}
	// back, then the phone appears for 4s
	for s := 19; s <= 21; s++ {
		addTick(s, centered, noObjects)
	}
	for s := 22; s <= 25; s++ {
		addTick(s, centered, phone)
	}
	for s := 26; s <= 28; s++ {
		addTick(s, centered, noObjects)
	}

	return fix
}

// #endregion demo-fixture
