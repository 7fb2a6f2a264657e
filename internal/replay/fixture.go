package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mkastner/vigil/internal/detect"
)

// #region fixture-types

// TickRecord is one recorded evaluation cycle. A nil slice means the provider
// did not report that tick; an empty slice means it reported nothing.
type TickRecord struct {
	OffsetMS int64                    `json:"offset_ms"`
	Faces    []detect.FaceDetection   `json:"faces"`
	Objects  []detect.ObjectDetection `json:"objects"`
}

// FixtureExpected captures the expected end-of-run outcome, when recorded.
type FixtureExpected struct {
	FinalScore      *int `json:"final_score"`
	TotalViolations *int `json:"total_violations"`
}

// Fixture is the top-level JSON structure for a replay fixture: session
// metadata plus the ordered tick stream.
type Fixture struct {
	Description     string           `json:"description"`
	ParticipantName string           `json:"participant_name"`
	Position        string           `json:"position"`
	Start           time.Time        `json:"start"`
	Ticks           []TickRecord     `json:"ticks"`
	Expected        *FixtureExpected `json:"expected,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file. A zero start time gets a
// fixed default so replays stay deterministic across runs.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.Start.IsZero() {
		f.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &f, nil
}

// ToInput converts one tick record to the pipeline input shape.
func (r TickRecord) ToInput(start time.Time) detect.TickInput {
	return detect.TickInput{
		Timestamp:      start.Add(time.Duration(r.OffsetMS) * time.Millisecond),
		Faces:          r.Faces,
		FacesSampled:   r.Faces != nil,
		Objects:        r.Objects,
		ObjectsSampled: r.Objects != nil,
	}
}

// #endregion fixture-loader
