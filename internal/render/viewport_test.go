package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"op2mapviewer/internal/mapfile"
)

func TestViewConfig_Clamped(t *testing.T) {
	cfg := ViewConfig{Zoom: 9, CellSize: 4}.Clamped()
	assert.Equal(t, MaxZoom, cfg.Zoom)
	assert.Equal(t, float64(MinCellSize), cfg.CellSize)

	cfg = ViewConfig{Zoom: math.NaN(), CellSize: 100}.Clamped()
	assert.Equal(t, MinZoom, cfg.Zoom)
	assert.Equal(t, float64(MaxCellSize), cfg.CellSize)
}

func TestViewport_CellAt(t *testing.T) {
	v := NewViewport(DefaultViewConfig())

	// zero pan puts the map origin at the view centre
	assert.Equal(t, mapfile.Position{X: 0, Y: 0}, v.CellAt(200, 150, 400, 300))
	assert.Equal(t, mapfile.Position{X: 1, Y: 0}, v.CellAt(232, 150, 400, 300))
	assert.Equal(t, mapfile.Position{X: -1, Y: -1}, v.CellAt(199, 149, 400, 300))

	v.SetZoom(2)
	assert.Equal(t, mapfile.Position{X: 0, Y: 0}, v.CellAt(263, 213, 400, 300))
	assert.Equal(t, mapfile.Position{X: 1, Y: 1}, v.CellAt(264, 214, 400, 300))
}

func TestViewport_VisibleRange(t *testing.T) {
	m := mapfile.New(mapfile.Info{Width: 100, Height: 100})
	v := NewViewport(DefaultViewConfig())

	r := v.VisibleRange(320, 320, m)
	assert.Equal(t, CellRange{MinX: 0, MinY: 0, MaxX: 6, MaxY: 6}, r)

	v.Pan = Point{X: -1600, Y: -1600}
	r = v.VisibleRange(320, 320, m)
	assert.Equal(t, CellRange{MinX: 44, MinY: 44, MaxX: 56, MaxY: 56}, r)

	v.Pan = Point{X: 10000, Y: 0}
	assert.True(t, v.VisibleRange(320, 320, m).Empty())
}

func TestViewport_Drag(t *testing.T) {
	v := NewViewport(DefaultViewConfig())
	v.Pan = Point{X: 5, Y: 5}

	v.BeginDrag(10, 10)
	assert.True(t, v.Dragging())
	v.DragTo(30, 0)
	assert.Equal(t, Point{X: 25, Y: -5}, v.Pan)
	v.DragTo(40, 40)
	assert.Equal(t, Point{X: 35, Y: 35}, v.Pan)
	v.EndDrag()
	assert.False(t, v.Dragging())

	// a drag without BeginDrag starts from the current position
	v.DragTo(0, 0)
	assert.Equal(t, Point{X: 35, Y: 35}, v.Pan)
	v.DragTo(1, 2)
	assert.Equal(t, Point{X: 36, Y: 37}, v.Pan)
}

func TestViewport_ZoomAtKeepsPointFixed(t *testing.T) {
	v := NewViewport(DefaultViewConfig())
	v.Pan = Point{X: -100, Y: -60}

	before := v.CellAt(310, 170, 400, 300)
	v.ZoomAt(2, 310, 170, 400, 300)
	assert.Equal(t, 2.0, v.Config.Zoom)
	assert.Equal(t, before, v.CellAt(310, 170, 400, 300))

	v.ZoomAt(100, 0, 0, 400, 300)
	assert.Equal(t, MaxZoom, v.Config.Zoom)
}

func TestViewport_CenterOnAndReset(t *testing.T) {
	v := NewViewport(DefaultViewConfig())
	v.CenterOn(10, 4)
	assert.Equal(t, Point{X: -160, Y: -64}, v.Pan)
	assert.Equal(t, mapfile.Position{X: 5, Y: 2}, v.CellAt(200, 150, 400, 300))

	v.SetZoom(3)
	v.Reset()
	assert.Equal(t, 1.0, v.Config.Zoom)
	assert.Equal(t, Point{}, v.Pan)
}
