package replay

import (
	"github.com/mkastner/vigil/internal/detect"
	"github.com/mkastner/vigil/internal/eventlog"
	"github.com/mkastner/vigil/internal/scoring"
	"github.com/mkastner/vigil/internal/tracker"
	"github.com/mkastner/vigil/internal/violation"
)

// #region config
// Config bundles the pipeline configurations for a replay run.
type Config struct {
	Filter      detect.FilterConfig
	Tracker     tracker.Config
	Weights     scoring.Weights
	LogCapacity int
}

// DefaultConfig returns production defaults for all pipeline stages.
func DefaultConfig() Config {
	return Config{
		Filter:      detect.DefaultFilterConfig(),
		Tracker:     tracker.DefaultConfig(),
		Weights:     scoring.DefaultWeights(),
		LogCapacity: eventlog.DefaultCapacity,
	}
}

// #endregion config

// #region summary
// Summary captures the outcome of replaying one fixture through the full
// pipeline: filter, state machines, scorer, event log.
type Summary struct {
	TotalTicks      int
	FinalScore      int
	TotalViolations int
	Breakdown       scoring.Breakdown
	AbsenceSeconds  float64
	Violations      []violation.Violation
	Events          []violation.Event
	LogStats        eventlog.Stats
}

// #endregion summary

// #region replay
// Replay feeds the fixture's tick stream through a fresh pipeline and
// returns the accumulated outcome. Operates entirely in-memory; running the
// same fixture twice yields identical summaries.
func Replay(fix *Fixture, config Config) Summary {
	filter := detect.NewFilter(config.Filter)
	track := tracker.NewTracker(config.Tracker, fix.Start)
	scorer := scoring.NewScorer(config.Weights)
	events := eventlog.NewLog(config.LogCapacity)

	for _, rec := range fix.Ticks {
		in := rec.ToInput(fix.Start)

		filtered := detect.TickInput{
			Timestamp:      in.Timestamp,
			FacesSampled:   in.FacesSampled,
			ObjectsSampled: in.ObjectsSampled,
		}
		if in.FacesSampled {
			filtered.Faces = filter.Faces(in.Faces)
		}
		if in.ObjectsSampled {
			filtered.Objects = filter.Objects(in.Objects)
		}

		res := track.Tick(filtered)
		for _, v := range res.Violations {
			scorer.Record(v)
		}
		for _, e := range res.Events {
			events.Append(e)
		}
	}

	return Summary{
		TotalTicks:      len(fix.Ticks),
		FinalScore:      scorer.Score(),
		TotalViolations: scorer.TotalViolations(),
		Breakdown:       scorer.Breakdown(),
		AbsenceSeconds:  scorer.AbsenceDuration(),
		Violations:      scorer.Violations(),
		Events:          events.Events(),
		LogStats:        events.Stats(),
	}
}

// #endregion replay
