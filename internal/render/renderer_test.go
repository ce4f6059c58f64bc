package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"op2mapviewer/internal/mapfile"
)

type fakeTiles map[string]image.Image

func (f fakeTiles) Tile(name string, index int) (image.Image, bool) {
	img, ok := f[name]
	return img, ok
}

func solid(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	fill(img, img.Bounds(), c)
	return img
}

func testMap() *mapfile.Map {
	m := mapfile.New(mapfile.Info{Width: 2, Height: 2})
	lava, _ := m.Cell(1, 0)
	lava.Type = mapfile.CellType{Kind: mapfile.Lava}
	tile := mapfile.TileInfoFor(lava.Type)
	lava.Tile = &tile

	mine, _ := m.Cell(0, 1)
	mine.Type = mapfile.NewMine(true)
	return m
}

func TestCellColor(t *testing.T) {
	assert.Equal(t, colorNormal, CellColor(mapfile.CellType{}))
	assert.Equal(t, colorMine, CellColor(mapfile.NewMine(false)))
	assert.Equal(t, colorDepleted, CellColor(mapfile.NewMine(true)))
	assert.Equal(t, colorDirt, CellColor(mapfile.CellType{Kind: mapfile.Dirt, Variant: 2}))
	assert.Equal(t, colorTube, CellColor(mapfile.CellType{Kind: mapfile.Tube}))
}

func TestDraw_FlatColours(t *testing.T) {
	cfg := DefaultViewConfig()
	cfg.UseTilesets = false
	v := NewViewport(cfg)
	v.CenterOn(2, 2)

	dst := image.NewRGBA(image.Rect(0, 0, 128, 128))
	stats := Draw(dst, v, testMap(), nil)

	assert.Equal(t, 4, stats.Cells)
	assert.Equal(t, 0, stats.Textured)

	// map spans 32..96 in both axes
	assert.Equal(t, cfg.BackgroundColor, dst.RGBAAt(5, 5))
	assert.Equal(t, colorNormal, dst.RGBAAt(40, 40))
	assert.Equal(t, colorLava, dst.RGBAAt(70, 40))
	assert.Equal(t, colorDepleted, dst.RGBAAt(40, 70))
}

func TestDraw_TexturesAndGrid(t *testing.T) {
	cfg := DefaultViewConfig()
	cfg.ShowGrid = true
	cfg.GridColor = color.RGBA{R: 1, G: 2, B: 3, A: 255}
	v := NewViewport(cfg)
	v.CenterOn(2, 2)

	pink := color.RGBA{R: 255, G: 100, B: 200, A: 255}
	tiles := fakeTiles{mapfile.TilesetLava: solid(pink)}

	dst := image.NewRGBA(image.Rect(0, 0, 128, 128))
	stats := Draw(dst, v, testMap(), tiles)

	assert.Equal(t, 1, stats.Textured)
	assert.Equal(t, pink, dst.RGBAAt(80, 50))
	assert.Equal(t, cfg.GridColor, dst.RGBAAt(64, 50))
	assert.Equal(t, cfg.GridColor, dst.RGBAAt(32, 32))
	// cells without a tile reference fall back to flat colour
	assert.Equal(t, colorDepleted, dst.RGBAAt(50, 80))
}

func TestDraw_NilMap(t *testing.T) {
	v := NewViewport(DefaultViewConfig())
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	stats := Draw(dst, v, nil, nil)
	assert.Zero(t, stats.Cells)
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(4, 4))
}

func TestDrawImage(t *testing.T) {
	v := NewViewport(DefaultViewConfig())
	v.Pan = Point{X: -16, Y: -16}

	green := color.RGBA{G: 200, A: 255}
	dst := image.NewRGBA(image.Rect(0, 0, 64, 64))
	DrawImage(dst, v, solid(green))

	assert.Equal(t, green, dst.RGBAAt(32, 32))
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(2, 2))
}

func TestRenderMap(t *testing.T) {
	cfg := DefaultViewConfig()
	cfg.UseTilesets = false
	cfg.Zoom = 0.5

	img := RenderMap(testMap(), nil, cfg)
	assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds())
	assert.Equal(t, colorLava, img.RGBAAt(20, 4))
	assert.Equal(t, colorDepleted, img.RGBAAt(4, 20))

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestRenderMap_CapsSize(t *testing.T) {
	m := mapfile.New(mapfile.Info{Width: 1024, Height: 8})
	img := RenderMap(m, nil, DefaultViewConfig())
	assert.Equal(t, MaxExportSide, img.Bounds().Dx())
	assert.Equal(t, 8*16, img.Bounds().Dy())
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	fill(src, src.Bounds(), colorWall)

	out, err := ScaleToFit(src, 100)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 25), out.Bounds())

	same, err := ScaleToFit(src, 0)
	require.NoError(t, err)
	assert.Same(t, src, same)

	size, ok := FitSize(image.Rect(0, 0, 10, 3000), 300)
	assert.True(t, ok)
	assert.Equal(t, image.Point{X: 1, Y: 300}, size)
}
