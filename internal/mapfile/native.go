package mapfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	nativeMinVersion = 0x1010
	nativeMaxVersion = 0x1011

	nativeMaxLgWidth  = 12
	nativeBlockWidth  = 32
	nativeMaxNameLen  = 260
	nativeMaxMappings = 1 << 16
	nativeMaxTilesets = 512
)

var tileSetTag = []byte("TILE SET\x1a\x00")

// Native terrain codes stored in the low five bits of each tile
const (
	op2FastPassible1 = iota
	op2Impassible2
	op2SlowPassible1
	op2SlowPassible2
	op2MediumPassible1
	op2MediumPassible2
	op2Impassible1
	op2FastPassible2
	op2NorthCliffs
	op2CliffsHighSide
	op2CliffsLowSide
	op2VentsAndFumaroles
)

const (
	op2DozedArea = 21 + iota
	op2Rubble
	op2NormalWall
	op2MicrobeWall
	op2LavaWall
	op2Tube0
)

// nativeTile is the unpacked 32-bit tile record
type nativeTile struct {
	cellType       uint8
	mapping        uint16
	unit           uint16
	lava           bool
	lavaPossible   bool
	expansion      bool
	microbe        bool
	wallOrBuilding bool
}

func unpackTile(v uint32) nativeTile {
	return nativeTile{
		cellType:       uint8(v & 0x1f),
		mapping:        uint16(v >> 5 & 0x7ff),
		unit:           uint16(v >> 16 & 0x7ff),
		lava:           v>>27&1 != 0,
		lavaPossible:   v>>28&1 != 0,
		expansion:      v>>29&1 != 0,
		microbe:        v>>30&1 != 0,
		wallOrBuilding: v>>31&1 != 0,
	}
}

type tileMapping struct {
	tileset uint16
	graphic uint16
	frames  uint16
	delay   uint16
}

// decodeNative reads the game's own map layout. Tiles are stored in
// 32-column blocks, each block holding every row before the next begins.
func decodeNative(r *reader, name string) (*Map, error) {
	version := r.u32()
	savedGame := r.u32()
	lgWidth := r.u32()
	height := r.u32()
	tilesetCount := r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("read map header: %w", r.err)
	}
	if version < nativeMinVersion || version > nativeMaxVersion {
		return nil, &UnsupportedVersionError{Format: FormatNative, Version: version}
	}
	if lgWidth > nativeMaxLgWidth {
		return nil, invalidf("invalid map width exponent: %d", lgWidth)
	}
	width := uint32(1) << lgWidth
	if height == 0 {
		return nil, invalidf("invalid map dimensions: %dx%d", width, height)
	}
	if err := checkDimensions(width, height, MaxDimension); err != nil {
		return nil, err
	}
	if tilesetCount > nativeMaxTilesets {
		return nil, invalidf("invalid tileset count: %d", tilesetCount)
	}

	r.require(int64(width)*int64(height)*4 + 16)
	if r.err != nil {
		return nil, fmt.Errorf("read tile data: %w", r.err)
	}

	raw := make([]uint32, width*height)
	for i := range raw {
		raw[i] = r.u32()
	}
	r.skip(16) // clip rectangle
	if r.err != nil {
		return nil, fmt.Errorf("read tile data: %w", r.err)
	}

	tilesets := make([]string, tilesetCount)
	for i := range tilesets {
		n := r.u32()
		if r.err == nil && n > nativeMaxNameLen {
			return nil, invalidf("tileset name too long: %d", n)
		}
		tilesets[i] = lossy(bytes.TrimRight(r.bytes(int(n)), "\x00"))
		if n > 0 {
			r.i32() // tile count, recomputed from the bitmap
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("read tileset sources: %w", r.err)
	}

	mappings, err := readTileMappings(r)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = "Unnamed Map"
	}
	m := New(Info{
		Width:       int(width),
		Height:      int(height),
		Name:        name,
		Description: fmt.Sprintf("Map size: %dx%d", width, height),
		Format:      FormatNative,
		SavedGame:   savedGame != 0,
		Tilesets:    tilesets,
	})

	w, h := int(width), int(height)
	block := min(nativeBlockWidth, w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := ((x/block)*h+y)*block + x%block
			t := unpackTile(raw[idx])
			m.set(x, y, nativeCell(t, tilesets, mappings))
		}
	}

	return m, nil
}

// readTileMappings reads the optional mapping table that follows the
// tileset sources. A file that ends before the table has none.
func readTileMappings(r *reader) ([]tileMapping, error) {
	tag := make([]byte, len(tileSetTag))
	r.read(tag)
	if errors.Is(r.err, io.ErrUnexpectedEOF) {
		return nil, nil
	}
	if r.err != nil {
		return nil, fmt.Errorf("read tile set tag: %w", r.err)
	}
	if !bytes.Equal(tag, tileSetTag) {
		return nil, invalidf("missing tile set tag")
	}

	count := r.u32()
	if r.err == nil && count > nativeMaxMappings {
		return nil, invalidf("invalid tile mapping count: %d", count)
	}
	r.require(int64(count) * 8)
	mappings := make([]tileMapping, 0, count)
	for i := uint32(0); i < count && r.err == nil; i++ {
		mappings = append(mappings, tileMapping{
			tileset: r.u16(),
			graphic: r.u16(),
			frames:  r.u16(),
			delay:   r.u16(),
		})
	}
	if r.err != nil {
		return nil, fmt.Errorf("read tile mappings: %w", r.err)
	}
	return mappings, nil
}

func nativeCell(t nativeTile, tilesets []string, mappings []tileMapping) Cell {
	cell := Cell{
		Type:    nativeCellType(t),
		HasUnit: t.unit != 0,
	}
	if t.cellType == op2Rubble {
		cell.HasWreckage = true
	}

	tile := TileInfoFor(cell.Type)
	if int(t.mapping) < len(mappings) {
		mp := mappings[t.mapping]
		if int(mp.tileset) < len(tilesets) && tilesets[mp.tileset] != "" {
			tile = TileInfo{TilesetName: tilesets[mp.tileset], TileIndex: int(mp.graphic)}
		}
	}
	cell.Tile = &tile
	return cell
}

func nativeCellType(t nativeTile) CellType {
	switch {
	case t.microbe:
		return CellType{Kind: Microbe}
	case t.lava:
		return CellType{Kind: Lava}
	}

	switch c := t.cellType; {
	case c >= op2NormalWall && c <= op2LavaWall:
		return CellType{Kind: Wall, Variant: c - op2NormalWall}
	case c >= op2Tube0:
		return CellType{Kind: Tube, Variant: c - op2Tube0}
	case c == op2Rubble:
		return CellType{Kind: Rock, Variant: 1}
	case c == op2Impassible1 || c == op2Impassible2:
		return CellType{Kind: Rock}
	case c >= op2NorthCliffs && c <= op2CliffsLowSide:
		return CellType{Kind: Rock, Variant: 2}
	case c == op2DozedArea:
		return CellType{Kind: Dirt, Variant: 1}
	case c == op2SlowPassible1 || c == op2SlowPassible2:
		return CellType{Kind: Dirt}
	case c == op2MediumPassible1 || c == op2MediumPassible2:
		return CellType{Kind: Dirt, Variant: 2}
	case c == op2VentsAndFumaroles:
		return NewMine(false)
	default:
		return CellType{Kind: Normal}
	}
}
