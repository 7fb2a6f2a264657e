package tracker

import "time"

// #region state
// State is the position of one category's sub-machine.
type State string

const (
	StateBaseline  State = "baseline"
	StateSuspect   State = "suspect"
	StateTriggered State = "triggered"
)

// #endregion state

// #region config
// Config holds the grace thresholds and focus geometry for the sub-machines.
type Config struct {
	FaceAbsentGrace        time.Duration // sustained absence before face_absent fires
	FocusLostGrace         time.Duration // sustained off-center before focus_lost fires
	MaxHorizontalDeviation float64       // centered when |cx - 0.5| is at most this
	MaxVerticalDeviation   float64       // centered when |cy - 0.5| is at most this
	MinFocusArea           float64       // faces smaller than this count as looking away
}

// DefaultConfig returns the production thresholds.
func DefaultConfig() Config {
	return Config{
		FaceAbsentGrace:        10 * time.Second,
		FocusLostGrace:         5 * time.Second,
		MaxHorizontalDeviation: 0.3,
		MaxVerticalDeviation:   0.25,
		MinFocusArea:           0.05,
	}
}

// #endregion config
