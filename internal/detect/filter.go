package detect

import (
	"sort"
	"strings"
)

// #region filter-config
// FilterConfig holds the plausibility thresholds applied to raw detections
// before they reach the state machine.
type FilterConfig struct {
	MinFaceConfidence   float64 // faces below this are discarded
	MinFaceArea         float64 // normalized area floor
	MaxFaceArea         float64 // normalized area ceiling
	EdgeMargin          float64 // face centers inside the outer margin are edge artifacts
	MaxFaces            int     // cap after quality ranking
	MinObjectConfidence float64 // objects at or below this are discarded
	SuspiciousClasses   []string
	IgnoredClasses      []string
}

// DefaultFilterConfig returns the production thresholds.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinFaceConfidence:   0.3,
		MinFaceArea:         0.005,
		MaxFaceArea:         0.9,
		EdgeMargin:          0.05,
		MaxFaces:            2,
		MinObjectConfidence: 0.3,
		SuspiciousClasses: []string{
			"cell phone",
			"book",
			"laptop",
			"tv",
			"remote",
			"keyboard",
			"mouse",
			"backpack",
			"handbag",
			"bottle",
			"cup",
			"clock",
		},
		IgnoredClasses: []string{"person", "face", "head"},
	}
}

// #endregion filter-config

// #region filter
// Filter rejects detections that are too low-confidence or geometrically
// implausible. It is stateless: output is a pure function of the current
// tick's input and the static configuration.
type Filter struct {
	config FilterConfig
}

// NewFilter creates a filter with the given configuration.
func NewFilter(config FilterConfig) *Filter {
	return &Filter{config: config}
}

// #endregion filter

// #region faces
// Faces returns the face detections that survive the plausibility checks,
// capped at the MaxFaces highest quality-scored candidates.
func (f *Filter) Faces(raw []FaceDetection) []FaceDetection {
	if len(raw) == 0 {
		return nil
	}

	valid := make([]FaceDetection, 0, len(raw))
	for _, d := range raw {
		if d.Confidence < f.config.MinFaceConfidence {
			continue
		}
		area := d.Box.Area()
		if area < f.config.MinFaceArea || area > f.config.MaxFaceArea {
			continue
		}
		m := f.config.EdgeMargin
		if d.Box.CenterX < m || d.Box.CenterX > 1-m ||
			d.Box.CenterY < m || d.Box.CenterY > 1-m {
			continue
		}
		valid = append(valid, d)
	}

	// Multiple survivors: keep the top MaxFaces by quality so pathological
	// multi-face noise stays bounded while a genuine second face still
	// passes through.
	if len(valid) > f.config.MaxFaces {
		sort.SliceStable(valid, func(i, j int) bool {
			return QualityScore(valid[i]) > QualityScore(valid[j])
		})
		valid = valid[:f.config.MaxFaces]
	}

	return valid
}

// QualityScore ranks a face by confidence, size, and centering.
func QualityScore(d FaceDetection) float64 {
	return d.Confidence * d.Box.Area() * (1 - d.Box.CenterDistance())
}

// #endregion faces

// #region objects
// Objects returns the object detections that are on the suspicious-class list,
// not on the ignore list, and above the confidence cut.
func (f *Filter) Objects(raw []ObjectDetection) []ObjectDetection {
	if len(raw) == 0 {
		return nil
	}

	valid := make([]ObjectDetection, 0, len(raw))
	for _, d := range raw {
		class := strings.ToLower(d.Class)
		if matchesAny(class, f.config.IgnoredClasses) {
			continue
		}
		if !matchesAny(class, f.config.SuspiciousClasses) {
			continue
		}
		if d.Confidence <= f.config.MinObjectConfidence {
			continue
		}
		d.Class = class
		valid = append(valid, d)
	}
	return valid
}

// matchesAny reports whether class matches any list entry by case-insensitive
// substring in either direction ("cell phone" matches "phone" and vice versa).
func matchesAny(class string, list []string) bool {
	for _, entry := range list {
		entry = strings.ToLower(entry)
		if strings.Contains(class, entry) || strings.Contains(entry, class) {
			return true
		}
	}
	return false
}

// #endregion objects
