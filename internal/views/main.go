package views

import (
	"fmt"
	"image/color"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"op2mapviewer/internal/mapfile"
	"op2mapviewer/internal/models"
	"op2mapviewer/internal/render"
	"op2mapviewer/internal/tileset"
	"op2mapviewer/internal/views/components"
)

const (
	WindowWidth     = 1024
	WindowHeight    = 768
	SidePanelOffset = 0.78
)

var (
	errorColor = color.RGBA{R: 255, G: 64, B: 64, A: 255}

	mapExtensions     = []string{".map", ".png", ".jpg", ".jpeg", ".bmp", ".gif"}
	tilesetExtensions = []string{".zip"}
)

// MainView is the viewer window: menus, toolbar, map canvas, side panel
// and status bar. Its exported methods may be called from any goroutine.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	mapCanvas     *components.MapCanvas
	cellInfo      *components.CellInfoPanel
	statusBar     *components.StatusBar
	errorText     *canvas.Text

	gridItem  *fyne.MenuItem
	tilesItem *fyne.MenuItem
	mainMenu  *fyne.MainMenu

	version       string
	tilesetSource string

	openHandler         func(path string)
	loadTilesetsHandler func(path string)
	exportHandler       func(w fyne.URIWriteCloser)
	viewConfigHandler   func(render.ViewConfig)
	cellSelectedHandler func(mapfile.Position)
	quitHandler         func()
}

// NewMainView builds the view inside window, drawing with cfg
func NewMainView(window fyne.Window, cfg render.ViewConfig, version string) *MainView {
	mv := &MainView{
		window:  window,
		version: version,
	}

	mv.initializeComponents(cfg)
	mv.buildMenus(cfg)
	mv.buildLayout()
	mv.setupEventHandlers()

	return mv
}

func (mv *MainView) initializeComponents(cfg render.ViewConfig) {
	mv.toolbar = components.NewToolbar()
	mv.mapCanvas = components.NewMapCanvas(cfg)
	mv.cellInfo = components.NewCellInfoPanel()
	mv.statusBar = components.NewStatusBar()
	mv.statusBar.SetZoom(mv.mapCanvas.ViewConfig().Zoom)

	mv.errorText = canvas.NewText("", errorColor)
	mv.errorText.Hide()
}

func (mv *MainView) buildMenus(cfg render.ViewConfig) {
	mv.gridItem = fyne.NewMenuItem("Show Grid", func() {
		mv.updateViewConfig(func(c *render.ViewConfig) { c.ShowGrid = !c.ShowGrid })
	})
	mv.gridItem.Checked = cfg.ShowGrid

	mv.tilesItem = fyne.NewMenuItem("Use Tilesets", func() {
		mv.updateViewConfig(func(c *render.ViewConfig) { c.UseTilesets = !c.UseTilesets })
	})
	mv.tilesItem.Checked = cfg.UseTilesets

	quit := fyne.NewMenuItem("Quit", mv.quit)
	quit.IsQuit = true

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Map...", mv.ShowOpenDialog),
		fyne.NewMenuItem("Load Tilesets...", mv.ShowTilesetDialog),
		fyne.NewMenuItem("Export PNG...", mv.ShowExportDialog),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings", mv.ShowSettings),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mv.mapCanvas.ZoomBy(components.ZoomStep) }),
		fyne.NewMenuItem("Zoom Out", func() { mv.mapCanvas.ZoomBy(1 / components.ZoomStep) }),
		fyne.NewMenuItem("Reset View", mv.mapCanvas.ResetView),
		fyne.NewMenuItemSeparator(),
		mv.gridItem,
		mv.tilesItem,
	)
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("About...", mv.ShowAbout),
	)

	mv.mainMenu = fyne.NewMainMenu(file, view, help)
}

func (mv *MainView) buildLayout() {
	center := container.NewBorder(mv.errorText, nil, nil, nil, mv.mapCanvas)
	side := container.NewVScroll(container.NewPadded(mv.cellInfo.GetContainer()))

	split := container.NewHSplit(center, side)
	split.SetOffset(SidePanelOffset)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetToolbar(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		split,
	)

	mv.window.SetMainMenu(mv.mainMenu)
	mv.window.SetContent(mv.mainContainer)
	mv.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetOpenHandler(mv.ShowOpenDialog)
	mv.toolbar.SetTilesetsHandler(mv.ShowTilesetDialog)
	mv.toolbar.SetExportHandler(mv.ShowExportDialog)
	mv.toolbar.SetZoomInHandler(func() { mv.mapCanvas.ZoomBy(components.ZoomStep) })
	mv.toolbar.SetZoomOutHandler(func() { mv.mapCanvas.ZoomBy(1 / components.ZoomStep) })
	mv.toolbar.SetResetHandler(mv.mapCanvas.ResetView)

	mv.mapCanvas.OnCellSelected = func(pos mapfile.Position) {
		if mv.cellSelectedHandler != nil {
			mv.cellSelectedHandler(pos)
		}
	}
	mv.mapCanvas.OnViewChanged = func(cfg render.ViewConfig) {
		mv.statusBar.SetZoom(cfg.Zoom)
		if mv.viewConfigHandler != nil {
			mv.viewConfigHandler(cfg)
		}
	}
}

// Event handler setters - called by controller

func (mv *MainView) SetOpenHandler(handler func(path string)) {
	mv.openHandler = handler
}

func (mv *MainView) SetLoadTilesetsHandler(handler func(path string)) {
	mv.loadTilesetsHandler = handler
}

// SetExportHandler receives the chosen export destination; the handler
// owns closing it
func (mv *MainView) SetExportHandler(handler func(w fyne.URIWriteCloser)) {
	mv.exportHandler = handler
}

func (mv *MainView) SetViewConfigHandler(handler func(render.ViewConfig)) {
	mv.viewConfigHandler = handler
}

func (mv *MainView) SetCellSelectedHandler(handler func(mapfile.Position)) {
	mv.cellSelectedHandler = handler
}

func (mv *MainView) SetQuitHandler(handler func()) {
	mv.quitHandler = handler
}

// Dialogs

// ShowOpenDialog asks for a map or image file
func (mv *MainView) ShowOpenDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.ShowError(fmt.Sprintf("File selection error: %v", err))
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if mv.openHandler != nil {
			mv.openHandler(path)
		}
	}, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter(mapExtensions))
	d.Show()
}

// ShowTilesetDialog asks for a tileset archive
func (mv *MainView) ShowTilesetDialog() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mv.ShowError(fmt.Sprintf("File selection error: %v", err))
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if mv.loadTilesetsHandler != nil {
			mv.loadTilesetsHandler(path)
		}
	}, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter(tilesetExtensions))
	d.Show()
}

// ShowExportDialog asks where to write the rendered PNG
func (mv *MainView) ShowExportDialog() {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mv.ShowError(fmt.Sprintf("File selection error: %v", err))
			return
		}
		if writer == nil {
			return
		}
		if mv.exportHandler == nil {
			writer.Close()
			return
		}
		mv.exportHandler(writer)
	}, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.SetFileName("map.png")
	d.Show()
}

// ShowSettings opens the display settings dialog
func (mv *MainView) ShowSettings() {
	content := newSettingsContent(mv.window, mv.mapCanvas.ViewConfig(), mv.tilesetSource, func(cfg render.ViewConfig) {
		mv.applyViewConfig(cfg)
		if mv.viewConfigHandler != nil {
			mv.viewConfigHandler(mv.mapCanvas.ViewConfig())
		}
	})
	d := dialog.NewCustom("Settings", "Close", content, mv.window)
	d.Resize(fyne.NewSize(360, 420))
	d.Show()
}

// ShowAbout opens the about dialog
func (mv *MainView) ShowAbout() {
	dialog.ShowCustom("About "+AppName, "Close", newAboutContent(mv.version), mv.window)
}

// UI update methods - called by controller

// ShowDocument displays doc, or the empty state when doc is nil
func (mv *MainView) ShowDocument(doc *models.Document) {
	fyne.Do(func() {
		mv.ClearErrorNow()
		if doc == nil {
			mv.mapCanvas.SetMap(nil)
			mv.cellInfo.SetMapInfo(nil)
			mv.statusBar.Reset()
			mv.toolbar.EnableDocumentActions(false)
			mv.window.SetTitle(AppName)
			return
		}

		if doc.Kind == models.KindImage {
			mv.mapCanvas.SetImage(doc.Image)
			w, h := doc.Size()
			mv.cellInfo.SetImageInfo(doc.Title(), fmt.Sprintf("Image size: %dx%d", w, h))
		} else {
			mv.mapCanvas.SetMap(doc.Map)
			info := doc.Map.Info
			mv.cellInfo.SetMapInfo(&info)
		}

		w, h := doc.Size()
		mv.statusBar.SetDocumentInfo(doc.Kind.String(), w, h, doc.Format)
		mv.toolbar.EnableDocumentActions(true)
		mv.window.SetTitle(fmt.Sprintf("%s - %s", AppName, doc.Title()))
	})
}

// ShowCell updates the side panel with the selected cell
func (mv *MainView) ShowCell(cell *mapfile.Cell) {
	fyne.Do(func() {
		mv.cellInfo.SetCell(cell)
	})
}

// SetTilesets switches the canvas to textures from cache
func (mv *MainView) SetTilesets(cache *tileset.Cache) {
	fyne.Do(func() {
		if cache == nil {
			mv.tilesetSource = ""
			mv.mapCanvas.SetTiles(nil)
			mv.statusBar.SetTilesetInfo(0, "")
			return
		}
		mv.tilesetSource = cache.Source()
		mv.mapCanvas.SetTiles(cache)
		mv.statusBar.SetTilesetInfo(cache.Len(), filepath.Base(cache.Source()))
	})
}

// ShowError shows message in red above the map until the next success
func (mv *MainView) ShowError(message string) {
	fyne.Do(func() {
		mv.errorText.Text = message
		mv.errorText.Show()
		mv.errorText.Refresh()
	})
}

// ClearError hides the error line
func (mv *MainView) ClearError() {
	fyne.Do(mv.ClearErrorNow)
}

// ClearErrorNow hides the error line; call on the UI goroutine
func (mv *MainView) ClearErrorNow() {
	mv.errorText.Text = ""
	mv.errorText.Hide()
}

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// SetBusy shows or hides the background activity indicator
func (mv *MainView) SetBusy(busy bool) {
	fyne.Do(func() {
		mv.statusBar.SetBusy(busy)
	})
}

// ViewConfig returns the settings the map is drawn with
func (mv *MainView) ViewConfig() render.ViewConfig {
	return mv.mapCanvas.ViewConfig()
}

// Show displays the view
func (mv *MainView) Show() {
	mv.window.Show()
}

// Close closes the window
func (mv *MainView) Close() {
	fyne.Do(func() {
		mv.window.Close()
	})
}

func (mv *MainView) updateViewConfig(edit func(*render.ViewConfig)) {
	cfg := mv.mapCanvas.ViewConfig()
	edit(&cfg)
	mv.applyViewConfig(cfg)
	if mv.viewConfigHandler != nil {
		mv.viewConfigHandler(cfg)
	}
}

func (mv *MainView) applyViewConfig(cfg render.ViewConfig) {
	mv.mapCanvas.SetViewConfig(cfg)
	mv.statusBar.SetZoom(cfg.Clamped().Zoom)
	mv.gridItem.Checked = cfg.ShowGrid
	mv.tilesItem.Checked = cfg.UseTilesets
	mv.mainMenu.Refresh()
}

func (mv *MainView) quit() {
	if mv.quitHandler != nil {
		mv.quitHandler()
		return
	}
	mv.window.Close()
}
