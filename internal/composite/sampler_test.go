package composite

import (
	"math"
	"testing"

	"github.com/felice68russo-ops/Suspended-Reality/internal/field"
	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
)

func testParams() Params {
	return Params{
		Reflection:         0.5,
		RefractionIndex:    1.3,
		DistortionStrength: 0.2,
		WaveHeight:         0.5,
		RippleStrength:     0.5,
		GrabRadius:         0.25,
		BlendSoftness:      0.5,
		SmearIntensity:     0.8,
		ColorBleed:         0.3,
	}
}

// rampSource encodes the sampling x coordinate into all channels, which
// makes coordinate displacement directly observable in the output color.
type rampSource struct{}

func (rampSource) Sample(x, y float64) Color {
	v := clampUnit(x)
	return Color{R: v, G: v, B: v}
}

func emptyInputs() *Inputs {
	return &Inputs{
		Params: testParams(),
		Time:   1.25,
		Field:  field.New(32, 18),
		Source: rampSource{},
	}
}

func TestSamplePixel_Deterministic(t *testing.T) {
	in := emptyInputs()
	in.Hands[0] = Hand{Gesture: gesture.Palm, X: 0.5, Y: 0.5, Proximity: 0.8}

	a := SamplePixel(in, 0.47, 0.52)
	b := SamplePixel(in, 0.47, 0.52)

	if a != b {
		t.Errorf("same inputs produced %+v and %+v", a, b)
	}
}

func TestSamplePixel_NeutralStateIsIdentity(t *testing.T) {
	in := emptyInputs()

	for _, pt := range [][2]float64{{0.2, 0.3}, {0.5, 0.5}, {0.9, 0.1}} {
		got := SamplePixel(in, pt[0], pt[1])
		want := in.Source.Sample(pt[0], pt[1])
		if math.Abs(got.R-want.R) > 1e-12 || math.Abs(got.G-want.G) > 1e-12 {
			t.Errorf("sample at (%f,%f) = %+v, want source %+v", pt[0], pt[1], got, want)
		}
	}
}

func TestSamplePixel_PalmRippleDisplaces(t *testing.T) {
	in := emptyInputs()
	in.Hands[0] = Hand{Gesture: gesture.Palm, X: 0.5, Y: 0.5, Proximity: 1.0}

	// Near the palm the ripple gradient displaces the sampling coordinate;
	// on the ramp source that shows up as a changed green channel somewhere
	// in the neighborhood.
	displaced := false
	for _, pt := range [][2]float64{{0.45, 0.5}, {0.52, 0.48}, {0.56, 0.55}, {0.48, 0.57}} {
		got := SamplePixel(in, pt[0], pt[1])
		want := in.Source.Sample(pt[0], pt[1])
		if math.Abs(got.G-want.G) > 1e-6 {
			displaced = true
			break
		}
	}
	if !displaced {
		t.Error("palm ripple produced no displacement near the anchor")
	}

	// Far from the palm the wave envelope has died out.
	far := SamplePixel(in, 0.02, 0.02)
	want := in.Source.Sample(0.02, 0.02)
	if math.Abs(far.G-want.G) > 0.05 {
		t.Errorf("sample far from palm = %f, want ~%f", far.G, want.G)
	}
}

func TestSamplePixel_ProximityModulatesRipple(t *testing.T) {
	near := emptyInputs()
	near.Hands[0] = Hand{Gesture: gesture.Palm, X: 0.5, Y: 0.5, Proximity: 1.0}

	farAway := emptyInputs()
	farAway.Hands[0] = Hand{Gesture: gesture.Palm, X: 0.5, Y: 0.5, Proximity: 0.0}

	// Zero proximity silences the ripple entirely.
	pt := [2]float64{0.46, 0.51}
	gotFar := SamplePixel(farAway, pt[0], pt[1])
	want := farAway.Source.Sample(pt[0], pt[1])
	if math.Abs(gotFar.G-want.G) > 1e-12 {
		t.Errorf("zero-proximity palm displaced the sample by %g", gotFar.G-want.G)
	}

	gotNear := SamplePixel(near, pt[0], pt[1])
	if gotNear == gotFar {
		t.Error("full-proximity palm output equals zero-proximity output")
	}
}

func TestSamplePixel_RipplePhaseFollowsTimeOnly(t *testing.T) {
	a := emptyInputs()
	a.Hands[0] = Hand{Gesture: gesture.Palm, X: 0.5, Y: 0.5, Proximity: 1.0}

	b := emptyInputs()
	b.Hands[0] = a.Hands[0]
	b.Time = a.Time + 0.5

	// The wave phase is driven by the pre-scaled time input and nothing
	// else: equal times agree exactly, different times diverge.
	pt := [2]float64{0.46, 0.51}
	same := emptyInputs()
	same.Hands[0] = a.Hands[0]
	if got, want := SamplePixel(same, pt[0], pt[1]), SamplePixel(a, pt[0], pt[1]); got != want {
		t.Errorf("equal times produced %+v and %+v", got, want)
	}
	if SamplePixel(a, pt[0], pt[1]) == SamplePixel(b, pt[0], pt[1]) {
		t.Error("advancing time did not move the ripple phase")
	}
}

func TestSamplePixel_StretchPullsTowardVector(t *testing.T) {
	in := emptyInputs()
	in.Params.Reflection = 0 // isolate the geometric term
	in.Hands[0] = Hand{
		Gesture:  gesture.Pinch,
		AnchorX:  0.5,
		AnchorY:  0.5,
		StretchX: 0.2,
		StretchY: 0,
	}

	// At the anchor the falloff is 1, so the sampling coordinate shifts by
	// the full -stretch: the green channel reads the ramp 0.2 to the left.
	got := SamplePixel(in, 0.5, 0.5)
	want := in.Source.Sample(0.3, 0.5)
	if math.Abs(got.G-want.G) > 1e-9 {
		t.Errorf("stretched sample G = %f, want %f", got.G, want.G)
	}

	// Outside the grab radius the pull is gone.
	edge := SamplePixel(in, 0.95, 0.5)
	wantEdge := in.Source.Sample(0.95, 0.5)
	if math.Abs(edge.G-wantEdge.G) > 1e-9 {
		t.Errorf("sample outside grab radius G = %f, want %f", edge.G, wantEdge.G)
	}
}

func TestSamplePixel_ReboundKeepsDeforming(t *testing.T) {
	in := emptyInputs()
	in.Params.Reflection = 0

	// Gesture already left PINCH but the spring still carries stretch.
	in.Hands[0] = Hand{
		Gesture:  gesture.None,
		AnchorX:  0.5,
		AnchorY:  0.5,
		StretchX: 0.1,
	}

	got := SamplePixel(in, 0.5, 0.5)
	want := in.Source.Sample(0.4, 0.5)
	if math.Abs(got.G-want.G) > 1e-9 {
		t.Errorf("rebound sample G = %f, want %f", got.G, want.G)
	}
}

func TestSamplePixel_SmearBlursAlongStroke(t *testing.T) {
	in := emptyInputs()

	// Light the field with a fast rightward stroke through the center.
	for i := 0; i < 6; i++ {
		in.Field.Step(field.Params{
			DecayRate:     0.05,
			BrushRadius:   0.2,
			IntensityGain: 0.5,
		}, []field.Brush{{X: 0.5, Y: 0.5, VX: 0.8, VY: 0}})
	}
	if in.Field.Sample(0.5, 0.5).Intensity < 0.8 {
		t.Fatal("setup: field not lit")
	}

	got := SamplePixel(in, 0.5, 0.5)

	// On a horizontal ramp a horizontal blur with color bleed separates the
	// red and blue channels.
	if math.Abs(got.R-got.B) < 1e-6 {
		t.Errorf("smear output R=%f B=%f, want channel separation from color bleed", got.R, got.B)
	}
}

func TestSamplePixel_SpecularAddsHighlight(t *testing.T) {
	lit := emptyInputs()
	lit.Params.DistortionStrength = 0 // isolate the highlight term
	lit.Hands[0] = Hand{Gesture: gesture.Palm, X: 0.5, Y: 0.5, Proximity: 1.0}

	dark := emptyInputs()
	dark.Params.DistortionStrength = 0
	dark.Hands[0] = lit.Hands[0]
	dark.Params.Reflection = 0

	// Find a point with a meaningful gradient and compare with and without
	// the reflection term.
	found := false
	for _, pt := range [][2]float64{{0.46, 0.5}, {0.5, 0.46}, {0.53, 0.52}} {
		a := SamplePixel(lit, pt[0], pt[1])
		b := SamplePixel(dark, pt[0], pt[1])
		if a.G > b.G+1e-6 {
			found = true
			break
		}
	}
	if !found {
		t.Error("reflection knob added no highlight near the ripple")
	}
}
