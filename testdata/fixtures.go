// Package testdata provides synthetic camera frames for tests. Real capture
// hardware is never required: frames are generated, not recorded.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// SolidFrame returns a single-color BGR frame. The caller closes the Mat.
func SolidFrame(width, height int, b, g, r uint8) gocv.Mat {
	mat := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC3)
	mat.SetTo(gocv.NewScalar(float64(b), float64(g), float64(r), 0))
	return mat
}

// GradientImage returns an RGBA image whose red channel ramps left to right.
// It doubles as a render source where coordinate displacement is visible.
func GradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / (width - 1))
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// FrameSequence returns count solid frames with increasing brightness, which
// registers as motion on every consecutive pair. The caller closes the Mats.
func FrameSequence(width, height, count int) []gocv.Mat {
	frames := make([]gocv.Mat, count)
	for i := range frames {
		v := uint8(30 + (200*i)/max(count-1, 1))
		frames[i] = SolidFrame(width, height, v, v, v)
	}
	return frames
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
