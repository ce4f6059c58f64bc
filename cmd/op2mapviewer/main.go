package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"op2mapviewer/internal/config"
	"op2mapviewer/internal/controllers"
	"op2mapviewer/internal/logger"
	"op2mapviewer/internal/models"
	"op2mapviewer/internal/opencv/conversion"
	"op2mapviewer/internal/services"
	"op2mapviewer/internal/shutdown"
	"op2mapviewer/internal/timing"
	"op2mapviewer/internal/views"
)

const (
	AppID      = "com.outpost2.op2mapviewer"
	AppVersion = "0.2.0"

	monitorInterval = 30 * time.Second
)

type options struct {
	configPath string
	tilesets   string
	info       bool
	export     string
	maxSize    int
	mapPath    string
}

// Application owns the window, the MVC parts and their shutdown
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.MainController
	view       *views.MainView
	service    *services.MapService
	repository *models.MapRepository
	shutdown   *shutdown.Manager

	opts options
	cfg  config.Config
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, cfgPath, cfgErr := loadConfig(opts.configPath)
	appLogger := logger.New(os.Stderr, cfg.LogLevel(), !cfg.JSONLogs())
	if cfgErr != nil {
		appLogger.Warning("Main", "config not loaded, using defaults without saving changes", map[string]interface{}{
			"path":  cfgPath,
			"error": cfgErr.Error(),
		})
	}

	if opts.info || opts.export != "" {
		os.Exit(runHeadless(opts, cfg, appLogger, os.Stdout, os.Stderr))
	}

	application := NewApplication(opts, cfg, configSavePath(cfgPath, cfgErr), appLogger)
	application.Run()
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("op2mapviewer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (default: user config dir)")
	fs.StringVar(&opts.tilesets, "tilesets", "", "tileset archive to load instead of the configured search paths")
	fs.BoolVar(&opts.info, "info", false, "print a summary of the map and exit")
	fs.StringVar(&opts.export, "export", "", "render the map to this PNG file and exit")
	fs.IntVar(&opts.maxSize, "max-size", 0, "limit the exported PNG's longest side in pixels")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: op2mapviewer [flags] [map file]\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.mapPath = fs.Arg(0)

	var err error
	switch {
	case fs.NArg() > 1:
		err = fmt.Errorf("expected at most one map file, got %d", fs.NArg())
	case (opts.info || opts.export != "") && opts.mapPath == "":
		err = errors.New("-info and -export need a map file")
	case opts.maxSize < 0:
		err = fmt.Errorf("-max-size must not be negative: %d", opts.maxSize)
	}
	if err != nil {
		fmt.Fprintf(stderr, "op2mapviewer: %v\n", err)
		fs.Usage()
	}
	return opts, err
}

// loadConfig resolves the config path and reads it; on error the returned
// config holds the defaults
func loadConfig(path string) (config.Config, string, error) {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Default(), "", err
		}
		path = p
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

// configSavePath returns where settings changes may be written. A file
// that failed to load is never overwritten with the defaults used in its
// place.
func configSavePath(path string, loadErr error) string {
	if loadErr != nil {
		return ""
	}
	return path
}

// runHeadless prints or exports the map without opening a window and
// returns the process exit code
func runHeadless(opts options, cfg config.Config, log logger.Logger, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo := models.NewMapRepository()
	svc := services.NewMapService(repo, log)
	svc.SetScaler(conversion.ScaleToFit)

	if opts.tilesets != "" {
		if _, err := svc.LoadTilesets(ctx, opts.tilesets); err != nil {
			fmt.Fprintf(stderr, "Failed to load tilesets: %v\n", err)
			return 1
		}
	} else if cfg.View.UseTilesets {
		// textures are optional for export
		svc.AutoloadTilesets(ctx, cfg.Tilesets.SearchPaths)
	}

	if _, err := svc.Open(ctx, opts.mapPath); err != nil {
		fmt.Fprintln(stderr, services.UserMessage(err))
		return 1
	}

	if opts.info {
		text, err := svc.Describe()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprint(stdout, text)
	}

	if opts.export != "" {
		if err := svc.ExportFile(ctx, opts.export, cfg.ViewConfig(), opts.maxSize); err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return 1
		}
	}
	return 0
}

// NewApplication wires models, services, controller and view together
func NewApplication(opts options, cfg config.Config, cfgPath string, appLogger logger.Logger) *Application {
	fyneApp := app.NewWithID(AppID)
	fyneApp.Settings().SetTheme(views.NewDarkTheme())

	window := fyneApp.NewWindow(views.AppName)
	window.SetMaster()

	manager := shutdown.NewManager(appLogger)

	repo := models.NewMapRepository()
	svc := services.NewMapService(repo, appLogger)
	svc.SetScaler(conversion.ScaleToFit)

	view := views.NewMainView(window, cfg.ViewConfig(), AppVersion)
	controller := controllers.NewMainController(manager.Context(), svc, repo, cfg, cfgPath, appLogger)
	controller.SetMainView(view)

	manager.Register("repository", repo)
	manager.Register("controller", controller)
	manager.Register("ui", shutdown.Func(func() {
		fyne.Do(fyneApp.Quit)
	}))

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		controller: controller,
		view:       view,
		service:    svc,
		repository: repo,
		shutdown:   manager,
		opts:       opts,
		cfg:        cfg,
	}
	application.setupLifecycle()

	appLogger.Info("Application", "initialized", map[string]interface{}{
		"version":    AppVersion,
		"config":     cfgPath,
		"go_version": runtime.Version(),
		"log_level":  cfg.LogLevel().String(),
	})

	return application
}

func (a *Application) setupLifecycle() {
	a.fyneApp.Lifecycle().SetOnStarted(func() {
		if a.opts.tilesets != "" {
			a.controller.LoadTilesets(a.opts.tilesets)
		} else {
			a.controller.AutoloadTilesets(a.cfg.Tilesets.SearchPaths)
		}
		if a.opts.mapPath != "" {
			a.controller.OpenFile(a.opts.mapPath)
		}
	})

	a.window.SetOnClosed(func() {
		a.logger.Info("Application", "window closed", nil)
		a.shutdown.Shutdown()
	})
}

// Run shows the window and blocks until the application quits
func (a *Application) Run() {
	a.shutdown.Listen()
	go a.monitorPerformance()

	a.view.Show()
	a.fyneApp.Run()

	a.shutdown.Shutdown()
	a.logger.Info("Application", "terminated", nil)
}

func (a *Application) monitorPerformance() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.logPerformanceMetrics()
		case <-a.shutdown.Context().Done():
			return
		}
	}
}

func (a *Application) logPerformanceMetrics() {
	a.logger.Debug("Application", "performance metrics", performanceFields(a.repository.Stats(), a.service.Timings()))
}

// performanceFields reports timings gathered since the previous call and
// starts a new interval
func performanceFields(stats models.RepositoryStats, timings *timing.Tracker) map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	fields := timings.Fields()
	timings.Reset("")
	fields["go_memory_mb"] = mem.Alloc / 1024 / 1024
	fields["go_gc_runs"] = mem.NumGC
	fields["goroutines"] = runtime.NumGoroutine()
	fields["document"] = stats.DocumentKind
	fields["cells"] = stats.Cells
	fields["tilesets"] = stats.Tilesets
	fields["recent_files"] = stats.RecentCount
	return fields
}
