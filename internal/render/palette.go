package render

import (
	"image/color"

	"op2mapviewer/internal/mapfile"
)

var (
	colorNormal   = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	colorLava     = color.RGBA{R: 255, A: 255}
	colorMicrobe  = color.RGBA{G: 255, A: 255}
	colorMine     = color.RGBA{R: 255, G: 255, A: 255}
	colorDepleted = color.RGBA{R: 96, G: 96, B: 96, A: 255}
	colorDirt     = color.RGBA{R: 139, G: 69, B: 19, A: 255}
	colorRock     = color.RGBA{R: 160, G: 160, B: 160, A: 255}
	colorTube     = color.RGBA{B: 255, A: 255}
	colorWall     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// CellColor is the flat colour drawn for a cell without a texture
func CellColor(t mapfile.CellType) color.RGBA {
	switch t.Kind {
	case mapfile.Lava:
		return colorLava
	case mapfile.Microbe:
		return colorMicrobe
	case mapfile.Mine:
		if t.Depleted() {
			return colorDepleted
		}
		return colorMine
	case mapfile.Dirt:
		return colorDirt
	case mapfile.Rock:
		return colorRock
	case mapfile.Tube:
		return colorTube
	case mapfile.Wall:
		return colorWall
	default:
		return colorNormal
	}
}
