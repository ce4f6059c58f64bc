package render

import (
	"image/color"
)

const (
	MinZoom     = 0.1
	MaxZoom     = 5.0
	MinCellSize = 16
	MaxCellSize = 64

	DefaultCellSize = 32
)

// ViewConfig controls how a map is drawn
type ViewConfig struct {
	Zoom            float64
	ShowGrid        bool
	CellSize        float64
	GridColor       color.RGBA
	BackgroundColor color.RGBA
	UseTilesets     bool
}

// DefaultViewConfig returns the settings used before any are saved
func DefaultViewConfig() ViewConfig {
	return ViewConfig{
		Zoom:            1.0,
		ShowGrid:        false,
		CellSize:        DefaultCellSize,
		GridColor:       color.RGBA{R: 128, G: 128, B: 128, A: 255},
		BackgroundColor: color.RGBA{A: 255},
		UseTilesets:     true,
	}
}

// Clamped returns a copy with zoom and cell size forced into range
func (c ViewConfig) Clamped() ViewConfig {
	c.Zoom = clamp(c.Zoom, MinZoom, MaxZoom)
	c.CellSize = clamp(c.CellSize, MinCellSize, MaxCellSize)
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v != v { // NaN
		return lo
	}
	return max(lo, min(hi, v))
}
