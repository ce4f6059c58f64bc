package render

import (
	"math"

	"op2mapviewer/internal/mapfile"
)

// Point is a position in view pixels
type Point struct {
	X, Y float64
}

// CellRange is the half-open span of cells [MinX, MaxX) x [MinY, MaxY)
type CellRange struct {
	MinX, MinY int
	MaxX, MaxY int
}

// Empty reports whether the range holds no cells
func (r CellRange) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Viewport tracks zoom and pan for a view of w x h pixels. Pan is relative
// to the view centre, so a zero pan puts the map origin in the middle.
type Viewport struct {
	Config ViewConfig
	Pan    Point

	dragging  bool
	dragStart Point
	panStart  Point
}

// NewViewport returns a viewport for cfg with no pan
func NewViewport(cfg ViewConfig) *Viewport {
	return &Viewport{Config: cfg.Clamped()}
}

// CellPixels is the on-screen size of one cell
func (v *Viewport) CellPixels() float64 {
	return v.Config.CellSize * v.Config.Zoom
}

// Offset is the view position of the map origin
func (v *Viewport) Offset(w, h int) Point {
	return Point{X: v.Pan.X + float64(w)/2, Y: v.Pan.Y + float64(h)/2}
}

// VisibleRange returns the cells of m that intersect the view, with one
// cell of slack on each side, clamped to the map.
func (v *Viewport) VisibleRange(w, h int, m *mapfile.Map) CellRange {
	cs := v.CellPixels()
	off := v.Offset(w, h)

	r := CellRange{
		MinX: int(math.Floor(-off.X/cs - 1)),
		MinY: int(math.Floor(-off.Y/cs - 1)),
		MaxX: int(math.Ceil((float64(w)-off.X)/cs + 1)),
		MaxY: int(math.Ceil((float64(h)-off.Y)/cs + 1)),
	}
	r.MinX = max(r.MinX, 0)
	r.MinY = max(r.MinY, 0)
	r.MaxX = min(r.MaxX, m.Info.Width)
	r.MaxY = min(r.MaxY, m.Info.Height)
	return r
}

// CellAt converts a view pixel to a cell coordinate. The result may lie
// outside the map.
func (v *Viewport) CellAt(px, py float64, w, h int) mapfile.Position {
	cs := v.CellPixels()
	off := v.Offset(w, h)
	return mapfile.Position{
		X: int(math.Floor((px - off.X) / cs)),
		Y: int(math.Floor((py - off.Y) / cs)),
	}
}

// CenterOn pans so the middle of a width x height cell grid sits in the
// middle of the view
func (v *Viewport) CenterOn(width, height int) {
	cs := v.CellPixels()
	v.Pan = Point{X: -float64(width) * cs / 2, Y: -float64(height) * cs / 2}
}

// BeginDrag records the pointer position a pan starts from
func (v *Viewport) BeginDrag(px, py float64) {
	v.dragging = true
	v.dragStart = Point{X: px, Y: py}
	v.panStart = v.Pan
}

// DragTo pans by the pointer movement since BeginDrag
func (v *Viewport) DragTo(px, py float64) {
	if !v.dragging {
		v.BeginDrag(px, py)
		return
	}
	v.Pan = Point{
		X: v.panStart.X + px - v.dragStart.X,
		Y: v.panStart.Y + py - v.dragStart.Y,
	}
}

// EndDrag finishes a pan
func (v *Viewport) EndDrag() {
	v.dragging = false
}

// Dragging reports whether a pan is in progress
func (v *Viewport) Dragging() bool {
	return v.dragging
}

// SetZoom sets the zoom level, clamped to range
func (v *Viewport) SetZoom(zoom float64) {
	v.Config.Zoom = clamp(zoom, MinZoom, MaxZoom)
}

// ZoomAt scales the zoom by factor keeping the map point under (px, py)
// fixed on screen
func (v *Viewport) ZoomAt(factor, px, py float64, w, h int) {
	before := v.CellPixels()
	off := v.Offset(w, h)
	mx := (px - off.X) / before
	my := (py - off.Y) / before

	v.SetZoom(v.Config.Zoom * factor)
	after := v.CellPixels()

	v.Pan = Point{
		X: px - mx*after - float64(w)/2,
		Y: py - my*after - float64(h)/2,
	}
}

// Reset restores zoom to 1 and clears the pan
func (v *Viewport) Reset() {
	v.Config.Zoom = 1
	v.Pan = Point{}
	v.dragging = false
}
