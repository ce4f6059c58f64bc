package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"op2mapviewer/internal/mapfile"
)

// TileSource supplies tile textures by tileset name and index
type TileSource interface {
	Tile(name string, index int) (image.Image, bool)
}

// DrawStats summarises one Draw call
type DrawStats struct {
	Cells    int
	Textured int
}

// Draw paints the visible part of m into dst as seen through v. Cells are
// textured from tiles when enabled and available, otherwise filled with
// their flat colour.
func Draw(dst *image.RGBA, v *Viewport, m *mapfile.Map, tiles TileSource) DrawStats {
	var stats DrawStats
	bounds := dst.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	fill(dst, bounds, v.Config.BackgroundColor)
	if m == nil {
		return stats
	}

	cs := v.CellPixels()
	off := v.Offset(w, h)
	useTiles := v.Config.UseTilesets && tiles != nil

	vis := v.VisibleRange(w, h, m)
	for y := vis.MinY; y < vis.MaxY; y++ {
		for x := vis.MinX; x < vis.MaxX; x++ {
			cell, ok := m.Cell(x, y)
			if !ok {
				continue
			}

			rect := cellRect(off, cs, x, y).Add(bounds.Min)
			if rect.Intersect(bounds).Empty() {
				continue
			}
			stats.Cells++

			textured := false
			if useTiles && cell.Tile != nil {
				if tile, ok := tiles.Tile(cell.Tile.TilesetName, cell.Tile.TileIndex); ok {
					xdraw.NearestNeighbor.Scale(dst, rect, tile, tile.Bounds(), xdraw.Src, nil)
					textured = true
					stats.Textured++
				}
			}
			if !textured {
				fill(dst, rect, CellColor(cell.Type))
			}

			if v.Config.ShowGrid {
				outline(dst, rect, v.Config.GridColor)
			}
		}
	}

	return stats
}

// DrawImage paints a plain image at the viewport's zoom and pan, used when
// the viewer is showing a bitmap rather than a map
func DrawImage(dst *image.RGBA, v *Viewport, img image.Image) {
	bounds := dst.Bounds()
	fill(dst, bounds, v.Config.BackgroundColor)
	if img == nil {
		return
	}

	off := v.Offset(bounds.Dx(), bounds.Dy())
	src := img.Bounds()
	zoom := v.Config.Zoom
	target := image.Rect(
		int(math.Floor(off.X)),
		int(math.Floor(off.Y)),
		int(math.Floor(off.X+float64(src.Dx())*zoom)),
		int(math.Floor(off.Y+float64(src.Dy())*zoom)),
	).Add(bounds.Min)
	if target.Empty() {
		return
	}

	xdraw.ApproxBiLinear.Scale(dst, target, img, src, xdraw.Over, nil)
}

// cellRect returns the pixel rectangle of cell (x, y). Edges are floored
// independently so neighbouring cells share borders without gaps.
func cellRect(off Point, cs float64, x, y int) image.Rectangle {
	x0 := int(math.Floor(off.X + float64(x)*cs))
	y0 := int(math.Floor(off.Y + float64(y)*cs))
	x1 := int(math.Floor(off.X + float64(x+1)*cs))
	y1 := int(math.Floor(off.Y + float64(y+1)*cs))
	return image.Rect(x0, y0, x1, y1)
}

func fill(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fill(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fill(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fill(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
