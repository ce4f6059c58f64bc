package tileset

import (
	"image"
	"sort"
	"sync"
)

// TileSize is the edge length of one tile in a tileset bitmap
const TileSize = 32

// subImager is implemented by every concrete image type in image/
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Cache holds decoded tileset bitmaps keyed by name
type Cache struct {
	mu       sync.RWMutex
	tilesets map[string]image.Image
	source   string
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{tilesets: make(map[string]image.Image)}
}

// Add stores a tileset, replacing any previous bitmap of the same name
func (c *Cache) Add(name string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tilesets[name] = img
}

// Get returns the whole bitmap for a tileset
func (c *Cache) Get(name string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.tilesets[name]
	return img, ok
}

// Len returns the number of tilesets held
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tilesets)
}

// Names returns the tileset names in sorted order
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.tilesets))
	for name := range c.tilesets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source is the archive path the cache was loaded from, if any
func (c *Cache) Source() string {
	return c.source
}

// Tile cuts tile index out of the named tileset. Bitmaps wider than they
// are tall are read as a horizontal strip, anything else as a vertical
// strip.
func (c *Cache) Tile(name string, index int) (image.Image, bool) {
	img, ok := c.Get(name)
	if !ok || index < 0 {
		return nil, false
	}

	r, ok := tileRect(img.Bounds(), index)
	if !ok {
		return nil, false
	}
	si, ok := img.(subImager)
	if !ok {
		return nil, false
	}
	return si.SubImage(r), true
}

// TileCount reports how many whole tiles a tileset bitmap holds
func (c *Cache) TileCount(name string) int {
	img, ok := c.Get(name)
	if !ok {
		return 0
	}
	b := img.Bounds()
	if b.Dx() < TileSize || b.Dy() < TileSize {
		return 0
	}
	if b.Dx() > b.Dy() {
		return b.Dx() / TileSize
	}
	return b.Dy() / TileSize
}

func tileRect(b image.Rectangle, index int) (image.Rectangle, bool) {
	var r image.Rectangle
	if b.Dx() > b.Dy() {
		x := b.Min.X + index*TileSize
		r = image.Rect(x, b.Min.Y, x+TileSize, b.Min.Y+TileSize)
	} else {
		y := b.Min.Y + index*TileSize
		r = image.Rect(b.Min.X, y, b.Min.X+TileSize, y+TileSize)
	}
	if !r.In(b) {
		return image.Rectangle{}, false
	}
	return r, true
}
