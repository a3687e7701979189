package capture

import (
	"fmt"
	"image"
	"image/draw"

	"gocv.io/x/gocv"
)

// ToRGBA converts a captured BGR frame into an *image.RGBA suitable for the
// compositor. The Mat is not modified or closed.
func ToRGBA(frame *gocv.Mat) (*image.RGBA, error) {
	img, err := frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
