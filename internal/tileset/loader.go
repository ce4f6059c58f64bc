package tileset

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"os"
	"path"
	"strings"

	"golang.org/x/image/bmp"

	"op2mapviewer/internal/logger"
)

// ErrNoTilesets is returned by FindAndLoad when no candidate path loads
var ErrNoTilesets = errors.New("no tileset archive found")

// Loader reads tileset archives
type Loader struct {
	logger logger.Logger
}

// NewLoader creates a loader that reports skipped entries to log
func NewLoader(log logger.Logger) *Loader {
	return &Loader{logger: log}
}

// Load reads every bitmap in the zip archive at archivePath. Entries are
// keyed by base name with any .bmp suffix removed; entries that do not
// decode are skipped.
func (l *Loader) Load(ctx context.Context, archivePath string) (*Cache, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open tileset archive: %w", err)
	}
	defer zr.Close()

	cache, err := l.read(ctx, &zr.Reader)
	if err != nil {
		return nil, err
	}
	cache.source = archivePath

	l.logger.Info("Tilesets", "tileset archive loaded", map[string]interface{}{
		"path":     archivePath,
		"tilesets": cache.Len(),
	})
	return cache, nil
}

func (l *Loader) read(ctx context.Context, zr *zip.Reader) (*Cache, error) {
	cache := NewCache()

	for _, f := range zr.File {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if f.FileInfo().IsDir() {
			continue
		}

		name := entryName(f.Name)
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}

		img, err := decodeBitmap(data)
		if err != nil {
			l.logger.Warning("Tilesets", "failed to decode tileset image", map[string]interface{}{
				"entry": f.Name,
				"error": err.Error(),
			})
			continue
		}
		cache.Add(name, img)
	}

	return cache, nil
}

// FindAndLoad tries each path in order and returns the first archive that
// loads
func (l *Loader) FindAndLoad(ctx context.Context, paths []string) (*Cache, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		cache, err := l.Load(ctx, p)
		if err != nil {
			l.logger.Warning("Tilesets", "tileset archive unusable", map[string]interface{}{
				"path":  p,
				"error": err.Error(),
			})
			continue
		}
		return cache, nil
	}
	return nil, ErrNoTilesets
}

func entryName(name string) string {
	base := path.Base(name)
	if strings.HasSuffix(strings.ToLower(base), ".bmp") {
		base = base[:len(base)-len(".bmp")]
	}
	return base
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// decodeBitmap tries the registered decoders first, then BMP explicitly
// for files whose header the generic sniffing does not accept
func decodeBitmap(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, bmpErr := bmp.Decode(bytes.NewReader(data))
	if bmpErr != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
