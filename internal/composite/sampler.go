// Package composite combines the ripple, stretch and smear fields into the
// final per-sample distortion and color result.
package composite

import (
	"math"

	"github.com/felice68russo-ops/Suspended-Reality/internal/field"
	"github.com/felice68russo-ops/Suspended-Reality/internal/gesture"
)

// Sampling constants.
const (
	// gradientEpsilon is the step for the numerical ripple-height
	// derivative.
	gradientEpsilon = 0.004

	// smearThreshold is the field intensity below which a sample gets the
	// undisturbed look (chromatic aberration) instead of directional blur.
	smearThreshold = 0.01

	// smearTaps is the number of samples in the directional blur.
	smearTaps = 5

	// rippleFrequency is the spatial frequency of the palm wave.
	rippleFrequency = 28.0

	// rippleFalloff controls how quickly the wave fades with distance from
	// the palm anchor.
	rippleFalloff = 12.0

	// coreSharpness shapes the exponential bump at the wave center.
	coreSharpness = 120.0

	// aberrationScale converts distortion magnitude into the default
	// chromatic offset.
	aberrationScale = 0.25

	// specularGain converts gradient magnitude into highlight strength.
	specularGain = 6.0
)

// Params are the tuning knobs the sampler reads. They are plain scalars,
// captured once per tick; the sampler itself is stateless.
type Params struct {
	Reflection         float64
	RefractionIndex    float64
	DistortionStrength float64
	WaveHeight         float64
	RippleStrength     float64
	GrabRadius         float64
	BlendSoftness      float64
	SmearIntensity     float64
	ColorBleed         float64
}

// Hand is the per-hand view the sampler needs: gesture plus the smoothed
// anchor from the classifier and the stretch state from physics.
type Hand struct {
	Gesture   gesture.Gesture
	X         float64
	Y         float64
	Proximity float64
	AnchorX   float64
	AnchorY   float64
	StretchX  float64
	StretchY  float64
}

// Color is a linear RGB sample with components in [0,1].
type Color struct {
	R, G, B float64
}

// Inputs bundles everything a sample evaluation depends on. Field is read
// through its current generation only; the generation swap upstream is the
// fence that makes concurrent per-sample evaluation safe.
type Inputs struct {
	Params Params
	Time   float64
	Hands  [2]Hand
	Field  *field.Field
	Source Source
}

// SamplePixel evaluates the composite at one normalized coordinate. It is a
// pure function of its inputs and carries no state, so callers may evaluate
// samples in parallel.
func SamplePixel(in *Inputs, x, y float64) Color {
	// 1. Ripple height gradient (palm hands), via central differences.
	gradX := (rippleHeight(in, x+gradientEpsilon, y) - rippleHeight(in, x-gradientEpsilon, y)) / (2 * gradientEpsilon)
	gradY := (rippleHeight(in, x, y+gradientEpsilon) - rippleHeight(in, x, y-gradientEpsilon)) / (2 * gradientEpsilon)

	refract := in.Params.RefractionIndex - 1.0
	offX := -gradX * in.Params.DistortionStrength * refract
	offY := -gradY * in.Params.DistortionStrength * refract

	// 2. Stretch translation (pinch hands), radially falling off around the
	// anchor.
	sx, sy := stretchOffset(in, x, y)
	offX += sx
	offY += sy

	// 3. Apply the combined offset to the sampling coordinate.
	px := x + offX
	py := y + offY

	distortion := math.Hypot(offX, offY)

	// 4. Smear: directional blur where the accumulation field is lit,
	// chromatic aberration as the undisturbed default.
	var c Color
	cell := in.Field.Sample(px, py)
	if float64(cell.Intensity) > smearThreshold {
		c = smearSample(in, px, py, cell)
	} else {
		c = aberrationSample(in, px, py, distortion)
	}

	// 5. Specular highlight from the local distortion gradient.
	gradMag := math.Hypot(gradX, gradY)
	highlight := in.Params.Reflection * math.Min(1.0, gradMag*specularGain)
	c.R = clampUnit(c.R + highlight)
	c.G = clampUnit(c.G + highlight)
	c.B = clampUnit(c.B + highlight)

	return c
}

// rippleHeight is the palm-driven height field: a noise-perturbed radial
// wave plus an exponential core bump, amplitude modulated by proximity,
// summed over active palm hands. Time arrives already scaled by the
// animation-speed knob.
func rippleHeight(in *Inputs, x, y float64) float64 {
	t := in.Time
	var h float64
	for i := range in.Hands {
		hand := &in.Hands[i]
		if hand.Gesture != gesture.Palm {
			continue
		}
		d := math.Hypot(x-hand.X, y-hand.Y)
		n := valueNoise(x*6+t*0.7, y*6-t*0.5)
		wave := math.Sin(d*rippleFrequency-t*3.0+n*2.0) * in.Params.RippleStrength
		core := math.Exp(-d*d*coreSharpness) * in.Params.WaveHeight
		h += hand.Proximity * (wave*math.Exp(-d*rippleFalloff) + core)
	}
	return h
}

// stretchOffset sums the pinch-drag translations: pixels inside the grab
// radius are pulled opposite the stretch vector so the image appears dragged
// with the pinch.
func stretchOffset(in *Inputs, x, y float64) (float64, float64) {
	var ox, oy float64
	for i := range in.Hands {
		hand := &in.Hands[i]
		if hand.StretchX == 0 && hand.StretchY == 0 {
			continue
		}
		if hand.Gesture != gesture.Pinch && !isRebounding(hand) {
			continue
		}

		d := math.Hypot(x-hand.AnchorX, y-hand.AnchorY)
		soft := math.Max(0.01, in.Params.BlendSoftness)
		inner := in.Params.GrabRadius * (1 - soft)
		if inner < 0 {
			inner = 0
		}
		outer := in.Params.GrabRadius * (1 + soft)
		fall := 1.0 - smoothstep(inner, outer, d)
		ox -= hand.StretchX * fall
		oy -= hand.StretchY * fall
	}
	return ox, oy
}

// isRebounding reports whether a released stretch is still springing back;
// the deformation keeps rendering until the spring settles.
func isRebounding(h *Hand) bool {
	return h.StretchX != 0 || h.StretchY != 0
}

// smearSample applies a direction-biased multi-tap blur along the stored
// stroke direction, weighted by intensity, with a channel-shifted color
// bleed.
func smearSample(in *Inputs, x, y float64, cell field.Cell) Color {
	intensity := float64(cell.Intensity)
	dirX := float64(cell.DirX)
	dirY := float64(cell.DirY)

	// Tap spacing stretches with the encoded stroke speed so fast strokes
	// smear longer.
	length := (0.015 + 0.03*float64(cell.Speed)) * intensity

	var acc Color
	for i := 0; i < smearTaps; i++ {
		// Taps from -0.5 to +0.5 of the smear length, biased along the
		// stroke direction.
		f := (float64(i)/float64(smearTaps-1) - 0.5) * length
		s := in.Source.Sample(x+dirX*f, y+dirY*f)
		acc.R += s.R
		acc.G += s.G
		acc.B += s.B
	}
	acc.R /= smearTaps
	acc.G /= smearTaps
	acc.B /= smearTaps

	// Color bleed: pull red and blue from opposite ends of the stroke.
	bleed := in.Params.ColorBleed * intensity * 0.01
	if bleed > 0 {
		acc.R = in.Source.Sample(x+dirX*length*0.5+dirX*bleed, y+dirY*length*0.5+dirY*bleed).R
		acc.B = in.Source.Sample(x-dirX*length*0.5-dirX*bleed, y-dirY*length*0.5-dirY*bleed).B
	}

	base := in.Source.Sample(x, y)
	blend := math.Min(1.0, intensity*in.Params.SmearIntensity*2.0)
	return Color{
		R: base.R + blend*(acc.R-base.R),
		G: base.G + blend*(acc.G-base.G),
		B: base.B + blend*(acc.B-base.B),
	}
}

// aberrationSample is the undisturbed look: a small chromatic offset
// proportional to the local distortion magnitude.
func aberrationSample(in *Inputs, x, y float64, distortion float64) Color {
	shift := distortion * aberrationScale
	if shift <= 0 {
		return in.Source.Sample(x, y)
	}
	return Color{
		R: in.Source.Sample(x+shift, y).R,
		G: in.Source.Sample(x, y).G,
		B: in.Source.Sample(x-shift, y).B,
	}
}

// valueNoise is a deterministic lattice noise in [-1,1] used to perturb the
// ripple phase.
func valueNoise(x, y float64) float64 {
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	tx := smootherstep(x - x0)
	ty := smootherstep(y - y0)

	n00 := hashNoise(x0, y0)
	n10 := hashNoise(x0+1, y0)
	n01 := hashNoise(x0, y0+1)
	n11 := hashNoise(x0+1, y0+1)

	top := n00 + tx*(n10-n00)
	bot := n01 + tx*(n11-n01)
	return top + ty*(bot-top)
}

// hashNoise maps integer lattice coordinates to a deterministic value in
// [-1,1].
func hashNoise(x, y float64) float64 {
	h := uint32(int32(x))*374761393 + uint32(int32(y))*668265263
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float64(h)/float64(math.MaxUint32)*2.0 - 1.0
}

func smoothstep(edge0, edge1, v float64) float64 {
	if edge1 <= edge0 {
		if v < edge0 {
			return 0
		}
		return 1
	}
	t := clampUnit((v - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func smootherstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
