package components

import (
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar gives one-click access to the most used menu actions
type Toolbar struct {
	toolbar *widget.Toolbar
	export  *widget.ToolbarAction

	openHandler     func()
	tilesetsHandler func()
	exportHandler   func()
	zoomInHandler   func()
	zoomOutHandler  func()
	resetHandler    func()
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.export = widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { call(t.exportHandler) })
	t.export.Disable()

	t.toolbar = widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { call(t.openHandler) }),
		widget.NewToolbarAction(theme.StorageIcon(), func() { call(t.tilesetsHandler) }),
		t.export,
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ZoomInIcon(), func() { call(t.zoomInHandler) }),
		widget.NewToolbarAction(theme.ZoomOutIcon(), func() { call(t.zoomOutHandler) }),
		widget.NewToolbarAction(theme.ViewRestoreIcon(), func() { call(t.resetHandler) }),
	)
	return t
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func (t *Toolbar) SetOpenHandler(fn func())     { t.openHandler = fn }
func (t *Toolbar) SetTilesetsHandler(fn func()) { t.tilesetsHandler = fn }
func (t *Toolbar) SetExportHandler(fn func())   { t.exportHandler = fn }
func (t *Toolbar) SetZoomInHandler(fn func())   { t.zoomInHandler = fn }
func (t *Toolbar) SetZoomOutHandler(fn func())  { t.zoomOutHandler = fn }
func (t *Toolbar) SetResetHandler(fn func())    { t.resetHandler = fn }

// EnableDocumentActions toggles the actions that need an open document
func (t *Toolbar) EnableDocumentActions(enabled bool) {
	if enabled {
		t.export.Enable()
	} else {
		t.export.Disable()
	}
}

// GetToolbar returns the toolbar widget
func (t *Toolbar) GetToolbar() *widget.Toolbar {
	return t.toolbar
}
