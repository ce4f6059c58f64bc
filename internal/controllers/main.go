package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"op2mapviewer/internal/config"
	"op2mapviewer/internal/logger"
	"op2mapviewer/internal/mapfile"
	"op2mapviewer/internal/models"
	"op2mapviewer/internal/render"
	"op2mapviewer/internal/services"
	"op2mapviewer/internal/tileset"
)

const (
	loadTimeout   = 2 * time.Minute
	exportTimeout = 5 * time.Minute
)

// View is the part of the main view the controller drives
type View interface {
	SetOpenHandler(func(path string))
	SetLoadTilesetsHandler(func(path string))
	SetExportHandler(func(w fyne.URIWriteCloser))
	SetViewConfigHandler(func(render.ViewConfig))
	SetCellSelectedHandler(func(mapfile.Position))
	SetQuitHandler(func())

	ShowDocument(doc *models.Document)
	ShowCell(cell *mapfile.Cell)
	SetTilesets(cache *tileset.Cache)
	ShowError(message string)
	ClearError()
	UpdateStatus(status string)
	SetBusy(busy bool)
	ViewConfig() render.ViewConfig
	Close()
}

// MapService is the part of the map service the controller uses
type MapService interface {
	Open(ctx context.Context, path string) (*models.Document, error)
	LoadTilesets(ctx context.Context, path string) (*tileset.Cache, error)
	AutoloadTilesets(ctx context.Context, paths []string) (*tileset.Cache, error)
	Export(ctx context.Context, w io.Writer, cfg render.ViewConfig, maxSide int) error
}

// MainController connects the view to the map service. Loads and exports
// run in the background; a new open cancels one still in flight.
type MainController struct {
	service    MapService
	repository *models.MapRepository
	logger     logger.Logger

	mainView View

	mu         sync.Mutex
	cfg        config.Config
	cfgPath    string
	cfgDirty   bool
	loadCancel context.CancelFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	busy   int
}

// NewMainController creates a controller whose background work stops when
// ctx is cancelled. Settings changes are written to cfgPath on shutdown
// when it is not empty.
func NewMainController(ctx context.Context, service MapService, repo *models.MapRepository,
	cfg config.Config, cfgPath string, log logger.Logger) *MainController {
	cctx, cancel := context.WithCancel(ctx)
	return &MainController{
		service:    service,
		repository: repo,
		logger:     log,
		cfg:        cfg,
		cfgPath:    cfgPath,
		ctx:        cctx,
		cancel:     cancel,
	}
}

// SetMainView associates the main view with this controller
func (mc *MainController) SetMainView(view View) {
	mc.mainView = view
	mc.setupViewEventHandlers()
}

func (mc *MainController) setupViewEventHandlers() {
	mc.mainView.SetOpenHandler(mc.OpenFile)
	mc.mainView.SetLoadTilesetsHandler(mc.LoadTilesets)
	mc.mainView.SetExportHandler(func(w fyne.URIWriteCloser) { mc.ExportTo(w) })
	mc.mainView.SetViewConfigHandler(mc.UpdateViewConfig)
	mc.mainView.SetCellSelectedHandler(mc.SelectCell)
	mc.mainView.SetQuitHandler(mc.mainView.Close)
}

// OpenFile loads path in the background and shows it when done
func (mc *MainController) OpenFile(path string) {
	mc.mu.Lock()
	if mc.loadCancel != nil {
		mc.loadCancel()
	}
	ctx, cancel := context.WithTimeout(mc.ctx, loadTimeout)
	mc.loadCancel = cancel
	mc.mu.Unlock()

	mc.mainView.UpdateStatus(fmt.Sprintf("Loading %s...", path))
	mc.background(func() {
		defer cancel()

		doc, err := mc.service.Open(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// superseded by a newer open, or shutting down
				return
			}
			mc.handleError("open", services.UserMessage(err), err, map[string]interface{}{"path": path})
			mc.mainView.UpdateStatus("Ready")
			return
		}

		// newer opens cancel ctx under mu
		mc.mu.Lock()
		defer mc.mu.Unlock()
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		mc.mainView.ClearError()
		mc.mainView.ShowDocument(doc)
		mc.mainView.ShowCell(nil)
		mc.mainView.UpdateStatus(fmt.Sprintf("Loaded %s in %s", doc.Title(), doc.LoadDuration.Round(time.Millisecond)))
	})
}

// LoadTilesets replaces the tileset cache with the archive at path
func (mc *MainController) LoadTilesets(path string) {
	mc.mainView.UpdateStatus("Loading tilesets...")
	mc.background(func() {
		ctx, cancel := context.WithTimeout(mc.ctx, loadTimeout)
		defer cancel()

		cache, err := mc.service.LoadTilesets(ctx, path)
		if err != nil {
			mc.handleError("load_tilesets", fmt.Sprintf("Failed to load tilesets: %v", err), err,
				map[string]interface{}{"path": path})
			mc.mainView.UpdateStatus("Ready")
			return
		}

		mc.mainView.ClearError()
		mc.mainView.SetTilesets(cache)
		mc.mainView.UpdateStatus(fmt.Sprintf("Loaded %d tilesets", cache.Len()))
	})
}

// AutoloadTilesets quietly tries the configured archive locations
func (mc *MainController) AutoloadTilesets(paths []string) {
	mc.background(func() {
		cache, err := mc.service.AutoloadTilesets(mc.ctx, paths)
		if err != nil {
			return
		}
		mc.logger.Info("MainController", "tilesets autoloaded", map[string]interface{}{
			"source":   cache.Source(),
			"tilesets": cache.Len(),
		})
		mc.mainView.SetTilesets(cache)
	})
}

// ExportTo renders the current document as PNG into w and closes it
func (mc *MainController) ExportTo(w io.WriteCloser) {
	cfg := mc.mainView.ViewConfig()
	mc.mainView.UpdateStatus("Exporting...")
	mc.background(func() {
		ctx, cancel := context.WithTimeout(mc.ctx, exportTimeout)
		defer cancel()

		err := mc.service.Export(ctx, w, cfg, 0)
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close export: %w", cerr)
		}
		if err != nil {
			mc.handleError("export", fmt.Sprintf("Export failed: %v", err), err, nil)
			mc.mainView.UpdateStatus("Ready")
			return
		}
		mc.mainView.UpdateStatus("Export complete")
	})
}

// SelectCell shows the cell at pos in the side panel
func (mc *MainController) SelectCell(pos mapfile.Position) {
	if !mc.repository.Select(pos) {
		return
	}
	if cell, ok := mc.repository.SelectedCell(); ok {
		mc.mainView.ShowCell(&cell)
	}
}

// UpdateViewConfig records display settings for saving at shutdown
func (mc *MainController) UpdateViewConfig(v render.ViewConfig) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.cfg.SetViewConfig(v)
	mc.cfgDirty = true
}

// Config returns the configuration including unsaved view changes
func (mc *MainController) Config() config.Config {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.cfg
}

// SaveConfig writes changed settings to the config file
func (mc *MainController) SaveConfig() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if !mc.cfgDirty || mc.cfgPath == "" {
		return nil
	}
	if err := config.Save(mc.cfgPath, mc.cfg); err != nil {
		return err
	}
	mc.cfgDirty = false
	mc.logger.Debug("MainController", "config saved", map[string]interface{}{"path": mc.cfgPath})
	return nil
}

// Wait blocks until background work has finished
func (mc *MainController) Wait() {
	mc.wg.Wait()
}

// background runs fn off the UI goroutine with the busy indicator shown
func (mc *MainController) background(fn func()) {
	mc.setBusy(1)
	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		defer mc.setBusy(-1)
		fn()
	}()
}

func (mc *MainController) setBusy(delta int) {
	mc.mu.Lock()
	mc.busy += delta
	busy := mc.busy > 0
	mc.mu.Unlock()
	mc.mainView.SetBusy(busy)
}

// handleError logs err and shows message to the user
func (mc *MainController) handleError(operation, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["operation"] = operation
	mc.logger.Error("MainController", err, fields)
	mc.mainView.ShowError(message)
}

// Shutdown cancels background work, waits for it and saves settings
func (mc *MainController) Shutdown() {
	mc.cancel()
	mc.wg.Wait()
	if err := mc.SaveConfig(); err != nil {
		mc.logger.Error("MainController", err, map[string]interface{}{"operation": "save_config"})
	}
}
