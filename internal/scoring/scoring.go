package scoring

import (
	"github.com/mkastner/vigil/internal/violation"
)

// #region weights
// Weights maps a violation category to the points deducted per occurrence.
// Weights are process-wide configuration, not session state.
type Weights map[violation.Category]int

// DefaultWeight applies to categories missing from the table.
const DefaultWeight = 5

// InitialScore is the score every session starts from.
const InitialScore = 100

// DefaultWeights returns the production deduction table.
func DefaultWeights() Weights {
	return Weights{
		violation.FaceAbsent:        15,
		violation.FocusLost:         8,
		violation.MultipleFaces:     20,
		violation.ObjectDetected:    12,
		violation.ExcessiveMovement: 5,
	}
}

// #endregion weights

// #region breakdown
// Breakdown holds per-category running counters for reporting. Presence
// covers face_absent and multiple_faces together.
type Breakdown struct {
	Focus    int
	Object   int
	Presence int
	Other    int
}

// #endregion breakdown

// #region summary
// CategorySummary aggregates all violations of one category.
type CategorySummary struct {
	Count       int
	TotalPoints int
	Details     []string
}

// #endregion summary

// #region scorer
// Scorer folds the ordered violation sequence into a monotonically
// non-increasing integrity score floored at zero. Deductions are
// irreversible; replaying the same ordered sequence through a fresh scorer
// yields the same final score and counters.
type Scorer struct {
	weights    Weights
	current    int
	violations []violation.Violation
	breakdown  Breakdown
}

// NewScorer creates a scorer starting at InitialScore.
func NewScorer(weights Weights) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	return &Scorer{
		weights: weights,
		current: InitialScore,
	}
}

// #endregion scorer

// #region record
// Record stamps the category weight onto the violation, deducts it, and
// returns the stamped copy. The scorer keeps its own copy; the caller owns
// the returned value.
func (s *Scorer) Record(v violation.Violation) violation.Violation {
	points, ok := s.weights[v.Category]
	if !ok {
		points = DefaultWeight
	}
	v.PointsDeducted = points

	s.current -= points
	if s.current < 0 {
		s.current = 0
	}
	s.violations = append(s.violations, v)

	switch v.Category {
	case violation.FocusLost:
		s.breakdown.Focus++
	case violation.ObjectDetected:
		s.breakdown.Object++
	case violation.FaceAbsent, violation.MultipleFaces:
		s.breakdown.Presence++
	default:
		s.breakdown.Other++
	}

	return v
}

// #endregion record

// #region accessors
// Score returns the current integrity score.
func (s *Scorer) Score() int {
	return s.current
}

// Breakdown returns the per-category counters.
func (s *Scorer) Breakdown() Breakdown {
	return s.breakdown
}

// Violations returns a copy of the recorded sequence in order.
func (s *Scorer) Violations() []violation.Violation {
	out := make([]violation.Violation, len(s.violations))
	copy(out, s.violations)
	return out
}

// TotalViolations returns the number of recorded violations.
func (s *Scorer) TotalViolations() int {
	return len(s.violations)
}

// #endregion accessors

// #region absence-duration
// defaultAbsenceMS stands in for face_absent violations recorded without an
// elapsed measurement.
const defaultAbsenceMS = 10000

// AbsenceDuration sums the elapsed payloads of all face_absent violations,
// in seconds. A coarse total-absence metric, not a precise timeline.
func (s *Scorer) AbsenceDuration() float64 {
	var totalMS int64
	for _, v := range s.violations {
		if v.Category != violation.FaceAbsent {
			continue
		}
		ms := v.ElapsedMS
		if ms == 0 {
			ms = defaultAbsenceMS
		}
		totalMS += ms
	}
	return float64(totalMS) / 1000.0
}

// #endregion absence-duration

// #region summary-by-type
// Summary aggregates the recorded violations by category.
func (s *Scorer) Summary() map[violation.Category]CategorySummary {
	out := make(map[violation.Category]CategorySummary)
	for _, v := range s.violations {
		sum := out[v.Category]
		sum.Count++
		sum.TotalPoints += v.PointsDeducted
		sum.Details = append(sum.Details, v.Detail)
		out[v.Category] = sum
	}
	return out
}

// #endregion summary-by-type
