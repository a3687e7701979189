package composite

import (
	"image"
	"runtime"
	"sync"
)

// Renderer evaluates SamplePixel for every pixel of an output image,
// splitting rows across workers. Because the sampler is stateless and the
// field generation is fixed for the duration of a render, rows need no
// coordination beyond the final wait.
type Renderer struct {
	workers int
}

// NewRenderer creates a Renderer with the given worker count; zero or
// negative means one worker per CPU.
func NewRenderer(workers int) *Renderer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Renderer{workers: workers}
}

// Render fills dst by evaluating the composite at every pixel center. It
// must only be called after the tick's field generation swap has completed.
func (r *Renderer) Render(dst *image.RGBA, in *Inputs) {
	bounds := dst.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return
	}

	workers := r.workers
	if workers > height {
		workers = height
	}

	rowsPer := (height + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		startRow := w * rowsPer
		endRow := startRow + rowsPer
		if endRow > height {
			endRow = height
		}
		if startRow >= endRow {
			break
		}

		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			r.renderRows(dst, in, bounds, width, y0, y1)
		}(startRow, endRow)
	}
	wg.Wait()
}

func (r *Renderer) renderRows(dst *image.RGBA, in *Inputs, bounds image.Rectangle, width, y0, y1 int) {
	height := bounds.Dy()
	for y := y0; y < y1; y++ {
		ny := (float64(y) + 0.5) / float64(height)
		row := dst.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < width; x++ {
			nx := (float64(x) + 0.5) / float64(width)
			c := SamplePixel(in, nx, ny)

			p := dst.Pix[row : row+4 : row+4]
			p[0] = uint8(clampUnit(c.R)*255 + 0.5)
			p[1] = uint8(clampUnit(c.G)*255 + 0.5)
			p[2] = uint8(clampUnit(c.B)*255 + 0.5)
			p[3] = 0xff
			row += 4
		}
	}
}

// Passthrough copies the source into dst without any distortion. Used when
// the effect pipeline is disabled.
func Passthrough(dst *image.RGBA, src Source) {
	bounds := dst.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	for y := 0; y < height; y++ {
		ny := (float64(y) + 0.5) / float64(height)
		row := dst.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < width; x++ {
			nx := (float64(x) + 0.5) / float64(width)
			c := src.Sample(nx, ny)

			p := dst.Pix[row : row+4 : row+4]
			p[0] = uint8(clampUnit(c.R)*255 + 0.5)
			p[1] = uint8(clampUnit(c.G)*255 + 0.5)
			p[2] = uint8(clampUnit(c.B)*255 + 0.5)
			p[3] = 0xff
			row += 4
		}
	}
}
