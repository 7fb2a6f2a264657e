package scoring

import "github.com/mkastner/vigil/internal/violation"

// #region fold
// Fold replays an ordered violation sequence through a fresh scorer. The
// score is a pure, order-dependent fold: the same sequence always produces
// the same final score and counters.
func Fold(weights Weights, violations []violation.Violation) *Scorer {
	s := NewScorer(weights)
	for _, v := range violations {
		s.Record(v)
	}
	return s
}

// #endregion fold
