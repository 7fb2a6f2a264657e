package detect

import (
	"math"
	"time"
)

// #region bbox
// BBox is a normalized bounding box: center coordinates and extents are all
// fractions of the frame in [0, 1].
type BBox struct {
	CenterX float64 `json:"xCenter"`
	CenterY float64 `json:"yCenter"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Area returns the normalized box area.
func (b BBox) Area() float64 {
	return b.Width * b.Height
}

// CenterDistance returns the euclidean distance of the box center from the
// frame center (0.5, 0.5).
func (b BBox) CenterDistance() float64 {
	dx := b.CenterX - 0.5
	dy := b.CenterY - 0.5
	return math.Sqrt(dx*dx + dy*dy)
}

// #endregion bbox

// #region detections
// FaceDetection is one raw face candidate for the current tick.
type FaceDetection struct {
	Confidence float64 `json:"confidence"`
	Box        BBox    `json:"boundingBox"`
}

// ObjectDetection is one raw object-classifier prediction for the current tick.
type ObjectDetection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Box        *BBox   `json:"boundingBox,omitempty"`
}

// #endregion detections

// #region tick-input
// TickInput carries one evaluation cycle's worth of raw detections.
//
// Providers run at independent cadences (faces ~10Hz, objects ~0.5Hz), so a
// tick may carry fresh data for one category and none for the other. The
// sampled flags distinguish "provider reported nothing" (sampled, empty
// slice) from "provider did not report this tick" (not sampled).
type TickInput struct {
	Timestamp      time.Time
	Faces          []FaceDetection
	FacesSampled   bool
	Objects        []ObjectDetection
	ObjectsSampled bool
}

// #endregion tick-input
