package composite

import "image"

// Source supplies the image being distorted. Sample takes normalized
// coordinates; implementations clamp out-of-range coordinates to the border
// and must be safe for concurrent reads.
type Source interface {
	Sample(x, y float64) Color
}

// ImageSource adapts an image.RGBA as a bilinear-filtered Source.
type ImageSource struct {
	img *image.RGBA
}

// NewImageSource wraps img. The image must not be mutated while sampling.
func NewImageSource(img *image.RGBA) *ImageSource {
	return &ImageSource{img: img}
}

// Sample reads the image at normalized coordinates with bilinear filtering.
func (s *ImageSource) Sample(x, y float64) Color {
	b := s.img.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w == 0 || h == 0 {
		return Color{}
	}

	fx := x*float64(w) - 0.5
	fy := y*float64(h) - 0.5

	x0 := int(fx)
	y0 := int(fy)
	if fx < 0 {
		x0--
	}
	if fy < 0 {
		y0--
	}
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := s.texel(x0, y0)
	c10 := s.texel(x0+1, y0)
	c01 := s.texel(x0, y0+1)
	c11 := s.texel(x0+1, y0+1)

	return Color{
		R: bilerp(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: bilerp(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: bilerp(c00.B, c10.B, c01.B, c11.B, tx, ty),
	}
}

func (s *ImageSource) texel(x, y int) Color {
	b := s.img.Bounds()
	if x < b.Min.X {
		x = b.Min.X
	} else if x >= b.Max.X {
		x = b.Max.X - 1
	}
	if y < b.Min.Y {
		y = b.Min.Y
	} else if y >= b.Max.Y {
		y = b.Max.Y - 1
	}
	i := s.img.PixOffset(x, y)
	p := s.img.Pix[i : i+3 : i+3]
	return Color{
		R: float64(p[0]) / 255.0,
		G: float64(p[1]) / 255.0,
		B: float64(p[2]) / 255.0,
	}
}

func bilerp(c00, c10, c01, c11, tx, ty float64) float64 {
	top := c00 + tx*(c10-c00)
	bot := c01 + tx*(c11-c01)
	return top + ty*(bot-top)
}

// UniformSource returns the same color everywhere. Used by tests and as the
// fallback when no camera frame is available.
type UniformSource struct {
	C Color
}

// Sample returns the uniform color regardless of coordinates.
func (s UniformSource) Sample(x, y float64) Color {
	return s.C
}
