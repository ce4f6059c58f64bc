package models

import (
	"image"
	"path/filepath"
	"time"

	"op2mapviewer/internal/mapfile"
)

// DocumentKind distinguishes decoded maps from plain images
type DocumentKind int

const (
	KindMap DocumentKind = iota
	KindImage
)

func (k DocumentKind) String() string {
	if k == KindImage {
		return "image"
	}
	return "map"
}

// Document is a file opened in the viewer
type Document struct {
	Path         string
	Kind         DocumentKind
	Map          *mapfile.Map
	Image        image.Image
	Format       string
	MimeType     string
	FileSize     int64
	LoadTime     time.Time
	LoadDuration time.Duration
}

// Title is the name shown for the document
func (d *Document) Title() string {
	if d.Kind == KindMap && d.Map != nil && d.Map.Info.Name != "" {
		return d.Map.Info.Name
	}
	return filepath.Base(d.Path)
}

// Size returns the document extent: cells for maps, pixels for images
func (d *Document) Size() (int, int) {
	switch {
	case d.Kind == KindMap && d.Map != nil:
		return d.Map.Info.Width, d.Map.Info.Height
	case d.Image != nil:
		b := d.Image.Bounds()
		return b.Dx(), b.Dy()
	default:
		return 0, 0
	}
}
