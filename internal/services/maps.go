package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"

	"op2mapviewer/internal/logger"
	"op2mapviewer/internal/mapfile"
	"op2mapviewer/internal/models"
	"op2mapviewer/internal/render"
	"op2mapviewer/internal/tileset"
	"op2mapviewer/internal/timing"
)

// ErrNoDocument is returned by operations that need an open document
var ErrNoDocument = errors.New("no map loaded")

// imageMimeTypes are opened as plain images rather than maps
var imageMimeTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
	"image/bmp":  "bmp",
}

// MapService loads maps, images and tilesets into the repository and
// renders them for export
type MapService struct {
	repository *models.MapRepository
	tilesets   *tileset.Loader
	scaler     render.Scaler
	timings    *timing.Tracker
	logger     logger.Logger
}

// NewMapService creates a map service backed by repo
func NewMapService(repo *models.MapRepository, log logger.Logger) *MapService {
	return &MapService{
		repository: repo,
		tilesets:   tileset.NewLoader(log),
		scaler:     render.ScaleToFit,
		timings:    timing.NewTracker(),
		logger:     log,
	}
}

// SetScaler replaces the image scaler used by Export
func (s *MapService) SetScaler(scaler render.Scaler) {
	if scaler != nil {
		s.scaler = scaler
	}
}

// Timings reports how long opens, tileset loads and exports have taken
func (s *MapService) Timings() *timing.Tracker {
	return s.timings
}

// Open loads the file at path as the current document. Files sniffed as
// PNG, JPEG, GIF or BMP open as images; anything else is decoded as a map.
func (s *MapService) Open(ctx context.Context, path string) (*models.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	start := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	mime := mimetype.Detect(data)
	doc := &models.Document{
		Path:     path,
		MimeType: mime.String(),
		FileSize: int64(len(data)),
	}

	s.logger.Debug("MapService", "opening file", map[string]interface{}{
		"path":      path,
		"mime_type": doc.MimeType,
		"size":      doc.FileSize,
	})

	if format, ok := imageMimeTypes[mime.String()]; ok {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s image: %w", format, err)
		}
		doc.Kind = models.KindImage
		doc.Image = img
		doc.Format = format
	} else {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, err := mapfile.Decode(bytes.NewReader(data), stem)
		if err != nil {
			return nil, err
		}
		doc.Kind = models.KindMap
		doc.Map = m
		doc.Format = string(m.Info.Format)
	}

	doc.LoadTime = time.Now()
	doc.LoadDuration = time.Since(start)
	if err := s.repository.SetDocumentIf(ctx, doc); err != nil {
		return nil, err
	}
	s.timings.Record("open", doc.LoadDuration)

	w, h := doc.Size()
	s.logger.Info("MapService", "document loaded", map[string]interface{}{
		"path":     path,
		"kind":     doc.Kind.String(),
		"format":   doc.Format,
		"width":    w,
		"height":   h,
		"duration": doc.LoadDuration.String(),
	})

	return doc, nil
}

// LoadTilesets replaces the tileset cache with the archive at path
func (s *MapService) LoadTilesets(ctx context.Context, path string) (*tileset.Cache, error) {
	stop := s.timings.Start("tilesets")
	cache, err := s.tilesets.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	stop()
	s.repository.SetTilesets(cache)
	return cache, nil
}

// AutoloadTilesets loads the first usable archive from paths
func (s *MapService) AutoloadTilesets(ctx context.Context, paths []string) (*tileset.Cache, error) {
	cache, err := s.tilesets.FindAndLoad(ctx, paths)
	if err != nil {
		s.logger.Debug("MapService", "no tileset archive loaded", map[string]interface{}{
			"search_paths": paths,
		})
		return nil, err
	}
	s.repository.SetTilesets(cache)
	return cache, nil
}

// Render draws the current document in full: maps at the configured cell
// size, images at their own size
func (s *MapService) Render(cfg render.ViewConfig) (image.Image, error) {
	m := s.repository.Map()
	if m == nil {
		doc := s.repository.Document()
		if doc == nil || doc.Image == nil {
			return nil, ErrNoDocument
		}
		return doc.Image, nil
	}

	var tiles render.TileSource
	if cache := s.repository.Tilesets(); cache != nil {
		tiles = cache
	}
	return render.RenderMap(m, tiles, cfg), nil
}

// Export writes the current document as PNG, shrunk so its longest side
// is at most maxSide when maxSide is positive
func (s *MapService) Export(ctx context.Context, w io.Writer, cfg render.ViewConfig, maxSide int) error {
	stop := s.timings.Start("export")
	img, err := s.Render(cfg)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	img, err = s.scaler(img, maxSide)
	if err != nil {
		return fmt.Errorf("scale export: %w", err)
	}
	if err := render.EncodePNG(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}

	b := img.Bounds()
	s.logger.Info("MapService", "document exported", map[string]interface{}{
		"width":    b.Dx(),
		"height":   b.Dy(),
		"duration": stop().String(),
	})
	return nil
}

// ExportFile exports to a new file at path
func (s *MapService) ExportFile(ctx context.Context, path string, cfg render.ViewConfig, maxSide int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := s.Export(ctx, f, cfg, maxSide); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Describe returns a plain-text summary of the current document
func (s *MapService) Describe() (string, error) {
	doc := s.repository.Document()
	if doc == nil {
		return "", ErrNoDocument
	}

	var b strings.Builder
	w, h := doc.Size()
	fmt.Fprintf(&b, "Name: %s\n", doc.Title())
	fmt.Fprintf(&b, "Path: %s\n", doc.Path)
	fmt.Fprintf(&b, "Kind: %s (%s)\n", doc.Kind, doc.Format)
	fmt.Fprintf(&b, "Size: %dx%d\n", w, h)

	if doc.Kind != models.KindMap {
		return b.String(), nil
	}

	info := doc.Map.Info
	if info.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", info.Description)
	}
	if info.SavedGame {
		b.WriteString("Saved game: yes\n")
	}
	if len(info.Tilesets) > 0 {
		names := make([]string, 0, len(info.Tilesets))
		for _, n := range info.Tilesets {
			if n != "" {
				names = append(names, n)
			}
		}
		fmt.Fprintf(&b, "Tilesets: %s\n", strings.Join(names, ", "))
	}

	counts := doc.Map.KindCounts()
	kinds := make([]mapfile.CellKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	b.WriteString("Cells:\n")
	for _, k := range kinds {
		fmt.Fprintf(&b, "  %-8s %d\n", k, counts[k])
	}

	return b.String(), nil
}

// UserMessage turns a load error into the text shown to the user
func UserMessage(err error) string {
	var verr *mapfile.UnsupportedVersionError
	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("Unsupported map version: %d", verr.Version)
	case errors.Is(err, mapfile.ErrInvalidFormat):
		return fmt.Sprintf("Invalid map format: %v", err)
	case errors.As(err, new(*fs.PathError)), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission),
		errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Sprintf("Failed to read map file: %v", err)
	default:
		return fmt.Sprintf("Error loading map: %v", err)
	}
}
