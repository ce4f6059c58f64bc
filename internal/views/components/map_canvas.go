package components

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"op2mapviewer/internal/mapfile"
	"op2mapviewer/internal/render"
)

const (
	MapAreaMinWidth  = 480
	MapAreaMinHeight = 360

	// ZoomStep is the factor applied per zoom action or scroll notch
	ZoomStep = 1.1
)

// MapCanvas draws a map or plain image through a pannable, zoomable
// viewport. Dragging pans, scrolling zooms about the pointer, and hovering
// or tapping a cell reports it through OnCellSelected.
type MapCanvas struct {
	widget.BaseWidget

	mu       sync.Mutex
	viewport *render.Viewport
	m        *mapfile.Map
	img      image.Image
	tiles    render.TileSource
	pxScale  float64
	hovered  *mapfile.Position
	lastDraw render.DrawStats

	raster *canvas.Raster

	OnCellSelected func(mapfile.Position)
	OnViewChanged  func(render.ViewConfig)
}

var (
	_ fyne.Widget       = (*MapCanvas)(nil)
	_ fyne.Draggable    = (*MapCanvas)(nil)
	_ fyne.Tappable     = (*MapCanvas)(nil)
	_ fyne.Scrollable   = (*MapCanvas)(nil)
	_ desktop.Hoverable = (*MapCanvas)(nil)
)

// NewMapCanvas creates an empty canvas using cfg for drawing
func NewMapCanvas(cfg render.ViewConfig) *MapCanvas {
	mc := &MapCanvas{
		viewport: render.NewViewport(cfg),
		pxScale:  1,
	}
	mc.raster = canvas.NewRaster(mc.draw)
	mc.raster.ScaleMode = canvas.ImageScalePixels
	mc.ExtendBaseWidget(mc)
	return mc
}

func (mc *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(mc.raster)
}

func (mc *MapCanvas) MinSize() fyne.Size {
	return fyne.NewSize(MapAreaMinWidth, MapAreaMinHeight)
}

// draw renders the current content at w x h device pixels
func (mc *MapCanvas) draw(w, h int) image.Image {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if size := mc.Size(); size.Width > 0 {
		mc.pxScale = float64(w) / float64(size.Width)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if mc.img != nil {
		render.DrawImage(dst, mc.viewport, mc.img)
		return dst
	}
	mc.lastDraw = render.Draw(dst, mc.viewport, mc.m, mc.tiles)
	return dst
}

// SetMap shows m centred at the current zoom
func (mc *MapCanvas) SetMap(m *mapfile.Map) {
	mc.mu.Lock()
	mc.m = m
	mc.img = nil
	mc.hovered = nil
	if m != nil {
		mc.viewport.CenterOn(m.Info.Width, m.Info.Height)
	}
	mc.mu.Unlock()
	mc.Refresh()
}

// SetImage shows a plain image instead of a map
func (mc *MapCanvas) SetImage(img image.Image) {
	mc.mu.Lock()
	mc.m = nil
	mc.img = img
	mc.hovered = nil
	mc.viewport.Pan = render.Point{}
	mc.mu.Unlock()
	mc.Refresh()
}

// SetTiles changes the texture source, nil for flat colours only
func (mc *MapCanvas) SetTiles(tiles render.TileSource) {
	mc.mu.Lock()
	mc.tiles = tiles
	mc.mu.Unlock()
	mc.Refresh()
}

// SetViewConfig applies new display settings keeping the current pan
func (mc *MapCanvas) SetViewConfig(cfg render.ViewConfig) {
	mc.mu.Lock()
	mc.viewport.Config = cfg.Clamped()
	mc.mu.Unlock()
	mc.Refresh()
}

// ViewConfig returns the settings the canvas is drawing with
func (mc *MapCanvas) ViewConfig() render.ViewConfig {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.viewport.Config
}

// LastDraw reports what the most recent frame drew
func (mc *MapCanvas) LastDraw() render.DrawStats {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.lastDraw
}

// ZoomBy scales the zoom about the centre of the view
func (mc *MapCanvas) ZoomBy(factor float64) {
	w, h := mc.pixelSize()
	mc.mu.Lock()
	mc.viewport.ZoomAt(factor, float64(w)/2, float64(h)/2, w, h)
	cfg := mc.viewport.Config
	mc.mu.Unlock()
	mc.viewChanged(cfg)
}

// ResetView restores zoom 1 with the content centred
func (mc *MapCanvas) ResetView() {
	mc.mu.Lock()
	mc.viewport.Reset()
	if mc.m != nil {
		mc.viewport.CenterOn(mc.m.Info.Width, mc.m.Info.Height)
	}
	cfg := mc.viewport.Config
	mc.mu.Unlock()
	mc.viewChanged(cfg)
}

func (mc *MapCanvas) Dragged(ev *fyne.DragEvent) {
	mc.mu.Lock()
	px, py := mc.toPixels(ev.Position)
	mc.viewport.DragTo(px, py)
	mc.mu.Unlock()
	mc.Refresh()
}

func (mc *MapCanvas) DragEnd() {
	mc.mu.Lock()
	mc.viewport.EndDrag()
	mc.mu.Unlock()
}

func (mc *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	factor := ZoomStep
	if ev.Scrolled.DY < 0 {
		factor = 1 / ZoomStep
	} else if ev.Scrolled.DY == 0 {
		return
	}

	w, h := mc.pixelSize()
	mc.mu.Lock()
	px, py := mc.toPixels(ev.Position)
	mc.viewport.ZoomAt(factor, px, py, w, h)
	cfg := mc.viewport.Config
	mc.mu.Unlock()
	mc.viewChanged(cfg)
}

func (mc *MapCanvas) Tapped(ev *fyne.PointEvent) {
	mc.selectAt(ev.Position)
}

func (mc *MapCanvas) MouseIn(ev *desktop.MouseEvent) {
	mc.selectAt(ev.Position)
}

func (mc *MapCanvas) MouseMoved(ev *desktop.MouseEvent) {
	mc.mu.Lock()
	dragging := mc.viewport.Dragging()
	mc.mu.Unlock()
	if !dragging {
		mc.selectAt(ev.Position)
	}
}

// MouseOut keeps the last hovered cell selected
func (mc *MapCanvas) MouseOut() {}

// CellAt maps a position in canvas coordinates to the map cell under it
func (mc *MapCanvas) CellAt(pos fyne.Position) (mapfile.Position, bool) {
	w, h := mc.pixelSize()
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.m == nil {
		return mapfile.Position{}, false
	}
	px, py := mc.toPixels(pos)
	cell := mc.viewport.CellAt(px, py, w, h)
	return cell, mc.m.InBounds(cell.X, cell.Y)
}

func (mc *MapCanvas) selectAt(pos fyne.Position) {
	cell, ok := mc.CellAt(pos)
	if !ok {
		return
	}

	mc.mu.Lock()
	same := mc.hovered != nil && *mc.hovered == cell
	mc.hovered = &cell
	mc.mu.Unlock()

	if !same && mc.OnCellSelected != nil {
		mc.OnCellSelected(cell)
	}
}

func (mc *MapCanvas) viewChanged(cfg render.ViewConfig) {
	mc.Refresh()
	if mc.OnViewChanged != nil {
		mc.OnViewChanged(cfg)
	}
}

// toPixels converts canvas units to raster pixels; mu must be held
func (mc *MapCanvas) toPixels(pos fyne.Position) (float64, float64) {
	return float64(pos.X) * mc.pxScale, float64(pos.Y) * mc.pxScale
}

func (mc *MapCanvas) pixelSize() (int, int) {
	size := mc.Size()
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return int(float64(size.Width) * mc.pxScale), int(float64(size.Height) * mc.pxScale)
}
