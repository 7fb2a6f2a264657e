package detect

import (
	"math"
	"testing"
)

func centeredFace(confidence, width, height float64) FaceDetection {
	return FaceDetection{
		Confidence: confidence,
		Box:        BBox{CenterX: 0.5, CenterY: 0.5, Width: width, Height: height},
	}
}

func TestFacesRejectLowConfidence(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	out := f.Faces([]FaceDetection{centeredFace(0.25, 0.3, 0.3)})
	if len(out) != 0 {
		t.Fatalf("expected confidence 0.25 face rejected, got %d faces", len(out))
	}

	out = f.Faces([]FaceDetection{centeredFace(0.3, 0.3, 0.3)})
	if len(out) != 1 {
		t.Fatalf("expected confidence 0.30 face kept, got %d faces", len(out))
	}
}

func TestFacesRejectImplausibleGeometry(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	tests := []struct {
		name string
		face FaceDetection
		keep bool
	}{
		{"too small", centeredFace(0.8, 0.05, 0.05), false},
		{"too large", centeredFace(0.8, 0.96, 0.96), false},
		{"normal", centeredFace(0.8, 0.3, 0.3), true},
		{"left edge", FaceDetection{Confidence: 0.8, Box: BBox{CenterX: 0.03, CenterY: 0.5, Width: 0.2, Height: 0.2}}, false},
		{"bottom edge", FaceDetection{Confidence: 0.8, Box: BBox{CenterX: 0.5, CenterY: 0.97, Width: 0.2, Height: 0.2}}, false},
		{"just inside margin", FaceDetection{Confidence: 0.8, Box: BBox{CenterX: 0.06, CenterY: 0.5, Width: 0.2, Height: 0.2}}, true},
	}

	for _, tt := range tests {
		out := f.Faces([]FaceDetection{tt.face})
		kept := len(out) == 1
		if kept != tt.keep {
			t.Errorf("%s: kept=%v, want %v", tt.name, kept, tt.keep)
		}
	}
}

func TestFacesCapAtTopTwoByQuality(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	// Five faces passing basic validity with distinct quality scores.
	faces := []FaceDetection{
		{Confidence: 0.5, Box: BBox{CenterX: 0.3, CenterY: 0.3, Width: 0.1, Height: 0.1}},
		{Confidence: 0.9, Box: BBox{CenterX: 0.5, CenterY: 0.5, Width: 0.4, Height: 0.4}},
		{Confidence: 0.6, Box: BBox{CenterX: 0.6, CenterY: 0.4, Width: 0.2, Height: 0.2}},
		{Confidence: 0.85, Box: BBox{CenterX: 0.45, CenterY: 0.55, Width: 0.35, Height: 0.35}},
		{Confidence: 0.4, Box: BBox{CenterX: 0.7, CenterY: 0.7, Width: 0.15, Height: 0.15}},
	}

	out := f.Faces(faces)
	if len(out) != 2 {
		t.Fatalf("expected exactly 2 faces after capping, got %d", len(out))
	}

	// The two largest centered high-confidence faces must win.
	for _, got := range out {
		if got.Confidence != 0.9 && got.Confidence != 0.85 {
			t.Errorf("unexpected survivor with confidence %.2f", got.Confidence)
		}
	}
}

func TestQualityScore(t *testing.T) {
	face := centeredFace(0.8, 0.5, 0.4)
	want := 0.8 * 0.2 * 1.0 // centered: distance 0
	if got := QualityScore(face); math.Abs(got-want) > 1e-9 {
		t.Fatalf("quality score = %f, want %f", got, want)
	}
}

func TestObjectsIgnoreListWins(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	out := f.Objects([]ObjectDetection{
		{Class: "person", Confidence: 0.99},
		{Class: "cell phone", Confidence: 0.6},
	})
	if len(out) != 1 || out[0].Class != "cell phone" {
		t.Fatalf("expected only cell phone to survive, got %+v", out)
	}
}

func TestObjectsSubstringMatchBothDirections(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	tests := []struct {
		class string
		keep  bool
	}{
		{"cell phone", true},
		{"phone", true}, // substring of the "cell phone" list entry
		{"Cell Phone", true},
		{"laptop computer", true}, // list entry "laptop" is a substring of the class
		{"tv", true},
		{"dog", false},
	}

	for _, tt := range tests {
		out := f.Objects([]ObjectDetection{{Class: tt.class, Confidence: 0.6}})
		kept := len(out) == 1
		if kept != tt.keep {
			t.Errorf("class %q: kept=%v, want %v", tt.class, kept, tt.keep)
		}
	}
}

func TestObjectsConfidenceCut(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	// The cut is strictly-greater-than: 0.3 exactly is discarded.
	out := f.Objects([]ObjectDetection{{Class: "book", Confidence: 0.3}})
	if len(out) != 0 {
		t.Fatalf("expected confidence 0.3 object rejected, got %+v", out)
	}

	out = f.Objects([]ObjectDetection{{Class: "book", Confidence: 0.31}})
	if len(out) != 1 {
		t.Fatalf("expected confidence 0.31 object kept, got %+v", out)
	}
}

func TestObjectsNormalizeClassCase(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())

	out := f.Objects([]ObjectDetection{{Class: "Cell Phone", Confidence: 0.6}})
	if len(out) != 1 || out[0].Class != "cell phone" {
		t.Fatalf("expected lowercased class, got %+v", out)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	f := NewFilter(DefaultFilterConfig())
	if out := f.Faces(nil); out != nil {
		t.Fatalf("expected nil for nil face input, got %+v", out)
	}
	if out := f.Objects(nil); out != nil {
		t.Fatalf("expected nil for nil object input, got %+v", out)
	}
}
