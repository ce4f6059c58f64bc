package models

import (
	"context"
	"sync"

	"op2mapviewer/internal/mapfile"
	"op2mapviewer/internal/tileset"
)

const defaultMaxRecent = 10

// MapRepository holds the viewer's current document, tileset cache and
// cell selection
type MapRepository struct {
	mu        sync.RWMutex
	document  *Document
	tilesets  *tileset.Cache
	selected  *mapfile.Position
	recent    []string
	maxRecent int
}

// NewMapRepository creates an empty repository
func NewMapRepository() *MapRepository {
	return &MapRepository{
		recent:    make([]string, 0),
		maxRecent: defaultMaxRecent,
	}
}

// SetDocument replaces the current document, clearing the selection and
// recording the path as most recently opened
func (r *MapRepository) SetDocument(doc *Document) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setDocument(doc)
}

// SetDocumentIf replaces the current document unless ctx is already done.
// The check and the update happen under one lock, so a load cancelled
// before a newer one publishes can never overwrite it.
func (r *MapRepository) SetDocumentIf(ctx context.Context, doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	r.setDocument(doc)
	return nil
}

func (r *MapRepository) setDocument(doc *Document) {
	r.document = doc
	r.selected = nil
	if doc != nil && doc.Path != "" {
		r.pushRecent(doc.Path)
	}
}

// Document returns the current document, nil when nothing is open
func (r *MapRepository) Document() *Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.document
}

// Map returns the current map, nil when nothing or an image is open
func (r *MapRepository) Map() *mapfile.Map {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.document == nil || r.document.Kind != KindMap {
		return nil
	}
	return r.document.Map
}

// SetTilesets replaces the tileset cache
func (r *MapRepository) SetTilesets(cache *tileset.Cache) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tilesets = cache
}

// Tilesets returns the tileset cache, nil before any archive is loaded
func (r *MapRepository) Tilesets() *tileset.Cache {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tilesets
}

// Select marks the cell at pos. Positions off the current map clear the
// selection and report false.
func (r *MapRepository) Select(pos mapfile.Position) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.document == nil || r.document.Map == nil || !r.document.Map.InBounds(pos.X, pos.Y) {
		r.selected = nil
		return false
	}
	p := pos
	r.selected = &p
	return true
}

// SelectedCell returns a copy of the selected cell
func (r *MapRepository) SelectedCell() (mapfile.Cell, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.selected == nil || r.document == nil || r.document.Map == nil {
		return mapfile.Cell{}, false
	}
	c, ok := r.document.Map.Cell(r.selected.X, r.selected.Y)
	if !ok {
		return mapfile.Cell{}, false
	}
	return *c, true
}

// RecentFiles returns opened paths, most recent first
func (r *MapRepository) RecentFiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.recent))
	copy(out, r.recent)
	return out
}

func (r *MapRepository) pushRecent(path string) {
	for i, p := range r.recent {
		if p == path {
			r.recent = append(r.recent[:i], r.recent[i+1:]...)
			break
		}
	}
	r.recent = append([]string{path}, r.recent...)
	if len(r.recent) > r.maxRecent {
		r.recent = r.recent[:r.maxRecent]
	}
}

// RepositoryStats summarises repository contents for diagnostics
type RepositoryStats struct {
	HasDocument  bool
	DocumentKind string
	Cells        int
	Tilesets     int
	HasSelection bool
	RecentCount  int
}

// Stats returns a snapshot of repository contents
func (r *MapRepository) Stats() RepositoryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RepositoryStats{
		HasDocument:  r.document != nil,
		HasSelection: r.selected != nil,
		RecentCount:  len(r.recent),
	}
	if r.document != nil {
		stats.DocumentKind = r.document.Kind.String()
		if r.document.Map != nil {
			stats.Cells = r.document.Map.CellCount()
		}
	}
	if r.tilesets != nil {
		stats.Tilesets = r.tilesets.Len()
	}
	return stats
}

// Shutdown releases held documents and caches
func (r *MapRepository) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.document = nil
	r.selected = nil
	r.tilesets = nil
}
