// Package field maintains the persistent, decaying 2D accumulation field
// that records directional smear strokes from fingertip motion.
package field

import "math"

// Update constants.
const (
	// strokeThreshold is the minimum fingertip speed that counts as a
	// stroke; slower motion leaves no trace.
	strokeThreshold = 0.02

	// intensityEpsilon bounds the decay tail: intensities below it snap to
	// exactly zero.
	intensityEpsilon = 0.005

	// fullBlendWeight is the brush weight at which the stored stroke
	// direction and speed are fully overwritten instead of blended.
	fullBlendWeight = 0.5

	// momentumGain scales how much a fast prior stroke slows its own decay:
	// factor = 1 + momentumGain·prevSpeed.
	momentumGain = 2.0
)

// Cell is one grid sample of the accumulation field: a unit stroke
// direction, an encoded stroke speed in [0,1], and a stroke intensity in
// [0,1]. Buffers follow the float32 flat-slice layout common to grid
// solvers.
type Cell struct {
	DirX      float32
	DirY      float32
	Speed     float32
	Intensity float32
}

// Brush is one hand's fingertip contribution for a tick.
type Brush struct {
	X  float64
	Y  float64
	VX float64
	VY float64
}

// Params are the tuning knobs read once per Step.
type Params struct {
	// DecayRate is the per-tick base intensity decay, (0, 0.1].
	DecayRate float64
	// BrushRadius is the stroke falloff radius in normalized units,
	// [0.05, 0.4].
	BrushRadius float64
	// IntensityGain scales how fast brushing saturates intensity toward 1.
	IntensityGain float64
}

// Field is a double-buffered grid over normalized [0,1]² coordinates. The
// grid resolution is independent of the display resolution; keeping it low
// both softens the smear spatially and bounds the per-tick cost.
//
// Exactly one generation is readable as current at any time; Step writes the
// other generation for every cell and then swaps the roles. The swap is the
// only synchronization the read side needs: readers sampling between Steps
// always see one coherent generation.
type Field struct {
	width  int
	height int
	bufs   [2][]Cell
	cur    int
}

// New allocates a field with the given grid resolution. Both generations
// start fully cleared.
func New(width, height int) *Field {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Field{
		width:  width,
		height: height,
		bufs: [2][]Cell{
			make([]Cell, width*height),
			make([]Cell, width*height),
		},
	}
}

// Width returns the grid width in cells.
func (f *Field) Width() int { return f.width }

// Height returns the grid height in cells.
func (f *Field) Height() int { return f.height }

// Clear zeroes both generations.
func (f *Field) Clear() {
	for b := range f.bufs {
		for i := range f.bufs[b] {
			f.bufs[b][i] = Cell{}
		}
	}
}

// Step advances the field by one tick: every cell of the next generation is
// computed from the current one (decay plus brush accumulation from both
// hands), then the generations swap so the new one becomes current.
func (f *Field) Step(params Params, brushes []Brush) {
	decay := clamp(params.DecayRate, 0.001, 0.1)
	radius := clamp(params.BrushRadius, 0.05, 0.4)
	gain := clamp(params.IntensityGain, 0.0, 1.0)

	// Keep only brushes moving fast enough to count as strokes.
	active := make([]Brush, 0, len(brushes))
	for _, b := range brushes {
		if math.Hypot(b.VX, b.VY) >= strokeThreshold {
			active = append(active, b)
		}
	}

	src := f.bufs[f.cur]
	dst := f.bufs[1-f.cur]

	for y := 0; y < f.height; y++ {
		cy := (float64(y) + 0.5) / float64(f.height)
		for x := 0; x < f.width; x++ {
			cx := (float64(x) + 0.5) / float64(f.width)
			idx := y*f.width + x
			dst[idx] = f.nextCell(src[idx], cx, cy, decay, radius, gain, active)
		}
	}

	// Generation swap: the just-written buffer becomes current for both
	// the next Step's decay input and this tick's readers.
	f.cur = 1 - f.cur
}

// nextCell computes one cell's next generation value.
func (f *Field) nextCell(prev Cell, cx, cy, decay, radius, gain float64, brushes []Brush) Cell {
	// Decay, slowed by the momentum of the prior stroke: faster strokes
	// persist longer.
	momentum := 1.0 + momentumGain*float64(prev.Speed)
	intensity := float64(prev.Intensity) * (1.0 - decay/momentum)
	if intensity < intensityEpsilon {
		intensity = 0
	}

	// Brush accumulation across both hands: total weight plus a
	// weight-averaged stroke direction and speed.
	var weight, sumVX, sumVY float64
	for _, b := range brushes {
		d := math.Hypot(b.X-cx, b.Y-cy)
		if d >= radius {
			continue
		}
		t := 1.0 - d/radius
		w := t * t * (3.0 - 2.0*t) // smooth, not hard-edged
		weight += w
		sumVX += w * b.VX
		sumVY += w * b.VY
	}

	next := prev
	if weight > 0 {
		speed := math.Hypot(sumVX, sumVY) / weight
		if speed > 0 {
			dirX := sumVX / weight / speed
			dirY := sumVY / weight / speed

			// Full overwrite once the weight crosses the blend
			// threshold, partial blend below it: a trailing,
			// momentum-weighted stroke rather than a snapshot.
			blend := math.Min(weight/fullBlendWeight, 1.0)
			bx := float64(prev.DirX) + blend*(dirX-float64(prev.DirX))
			by := float64(prev.DirY) + blend*(dirY-float64(prev.DirY))
			if m := math.Hypot(bx, by); m > 1e-9 {
				next.DirX = float32(bx / m)
				next.DirY = float32(by / m)
			} else {
				next.DirX = float32(dirX)
				next.DirY = float32(dirY)
			}
			encoded := clamp(speed, 0, 1)
			next.Speed = float32(float64(prev.Speed) + blend*(encoded-float64(prev.Speed)))
		}

		intensity += weight * gain
	}

	next.Intensity = float32(clamp(intensity, 0, 1))
	return next
}

// Sample reads the current generation at normalized coordinates with
// bilinear filtering. Coordinates outside [0,1] clamp to the border.
func (f *Field) Sample(x, y float64) Cell {
	src := f.bufs[f.cur]

	fx := x*float64(f.width) - 0.5
	fy := y*float64(f.height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := src[f.clampIndex(x0, y0)]
	c10 := src[f.clampIndex(x0+1, y0)]
	c01 := src[f.clampIndex(x0, y0+1)]
	c11 := src[f.clampIndex(x0+1, y0+1)]

	lerp := func(a, b float32, t float64) float32 {
		return a + float32(t)*(b-a)
	}

	top := Cell{
		DirX:      lerp(c00.DirX, c10.DirX, tx),
		DirY:      lerp(c00.DirY, c10.DirY, tx),
		Speed:     lerp(c00.Speed, c10.Speed, tx),
		Intensity: lerp(c00.Intensity, c10.Intensity, tx),
	}
	bot := Cell{
		DirX:      lerp(c01.DirX, c11.DirX, tx),
		DirY:      lerp(c01.DirY, c11.DirY, tx),
		Speed:     lerp(c01.Speed, c11.Speed, tx),
		Intensity: lerp(c01.Intensity, c11.Intensity, tx),
	}

	return Cell{
		DirX:      lerp(top.DirX, bot.DirX, ty),
		DirY:      lerp(top.DirY, bot.DirY, ty),
		Speed:     lerp(top.Speed, bot.Speed, ty),
		Intensity: lerp(top.Intensity, bot.Intensity, ty),
	}
}

// CellAt reads a single cell of the current generation without filtering.
func (f *Field) CellAt(x, y int) Cell {
	return f.bufs[f.cur][f.clampIndex(x, y)]
}

// Stats summarizes the current generation for observability endpoints.
type Stats struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	MeanIntensity float64 `json:"mean_intensity"`
	MaxIntensity  float64 `json:"max_intensity"`
	ActiveCells   int     `json:"active_cells"`
}

// Stats computes summary statistics over the current generation.
func (f *Field) Stats() Stats {
	src := f.bufs[f.cur]
	st := Stats{Width: f.width, Height: f.height}

	var sum float64
	for i := range src {
		v := float64(src[i].Intensity)
		sum += v
		if v > st.MaxIntensity {
			st.MaxIntensity = v
		}
		if v > 0 {
			st.ActiveCells++
		}
	}
	if len(src) > 0 {
		st.MeanIntensity = sum / float64(len(src))
	}
	return st
}

func (f *Field) clampIndex(x, y int) int {
	if x < 0 {
		x = 0
	} else if x >= f.width {
		x = f.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.height {
		y = f.height - 1
	}
	return y*f.width + x
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
