package render

import (
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"

	"op2mapviewer/internal/mapfile"
)

// MaxExportSide bounds the longest side of a full-map render
const MaxExportSide = 16384

// RenderMap draws the whole of m at the configured cell size and zoom,
// shrinking the cell size when the result would exceed MaxExportSide
func RenderMap(m *mapfile.Map, tiles TileSource, cfg ViewConfig) *image.RGBA {
	cfg = cfg.Clamped()

	cs := int(cfg.CellSize * cfg.Zoom)
	longest := max(m.Info.Width, m.Info.Height, 1)
	cs = max(1, min(cs, MaxExportSide/longest))

	w, h := m.Info.Width*cs, m.Info.Height*cs
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	v := &Viewport{Config: cfg}
	v.Config.CellSize = float64(cs)
	v.Config.Zoom = 1
	v.Pan = Point{X: -float64(w) / 2, Y: -float64(h) / 2}

	Draw(dst, v, m, tiles)
	return dst
}

// EncodePNG writes img as PNG
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// Scaler shrinks an image so its longest side fits maxSide
type Scaler func(img image.Image, maxSide int) (image.Image, error)

// ScaleToFit is the pure Go Scaler using bilinear sampling. Images already
// within bounds, or a non-positive maxSide, are returned unchanged.
func ScaleToFit(img image.Image, maxSide int) (image.Image, error) {
	size, ok := FitSize(img.Bounds(), maxSide)
	if !ok {
		return img, nil
	}
	dst := image.NewRGBA(image.Rectangle{Max: size})
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}

// FitSize returns the size b shrinks to so its longest side is maxSide,
// and false when no shrinking is needed
func FitSize(b image.Rectangle, maxSide int) (image.Point, bool) {
	longest := max(b.Dx(), b.Dy())
	if maxSide <= 0 || longest <= maxSide {
		return b.Size(), false
	}
	ratio := float64(maxSide) / float64(longest)
	return image.Point{
		X: max(1, int(float64(b.Dx())*ratio)),
		Y: max(1, int(float64(b.Dy())*ratio)),
	}, true
}
