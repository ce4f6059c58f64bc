package conversion

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"op2mapviewer/internal/render"
)

// ScaleToFit shrinks img with OpenCV area interpolation so its longest
// side is at most maxSide. It satisfies render.Scaler.
func ScaleToFit(img image.Image, maxSide int) (image.Image, error) {
	size, ok := render.FitSize(img.Bounds(), maxSide)
	if !ok {
		return img, nil
	}
	return ResizeImage(img, size.X, size.Y, gocv.InterpolationArea)
}

// ResizeImage resizes img to width x height with the given interpolation
func ResizeImage(img image.Image, width, height int, interpolation gocv.InterpolationFlags) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}

	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("image to Mat conversion failed: %w", err)
	}
	defer src.Close()

	if src.Empty() {
		return nil, fmt.Errorf("image to Mat conversion produced an empty Mat")
	}

	dst := gocv.NewMat()
	defer dst.Close()

	gocv.Resize(src, &dst, image.Point{X: width, Y: height}, 0, 0, interpolation)
	if dst.Empty() {
		return nil, fmt.Errorf("resize to %dx%d failed", width, height)
	}

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
	}
	return out, nil
}

var _ render.Scaler = ScaleToFit
