package mapfile

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   Format
	}{
		{"form2", []byte("FORM2\x00\x01\x00"), FormatForm2},
		{"native current", []byte{0x11, 0x10, 0, 0, 0, 0, 0, 0}, FormatNative},
		{"native previous", []byte{0x10, 0x10, 0, 0, 0, 0, 0, 0}, FormatNative},
		{"other native tag", []byte{0x12, 0x10, 0, 0, 0, 0, 0, 0}, FormatLegacy},
		{"sample", []byte("SAMPLE01"), FormatLegacy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.header))
		})
	}
}

func TestDecode_Form2(t *testing.T) {
	data := form2Bytes(1, 2, 2, "Eden Starts", "A small test map",
		[4]byte{0, 0, 10, 0},
		[4]byte{2, 1, 20, 1},
		[4]byte{4, 1, 30, 2},
		[4]byte{6, 5, 40, 3},
	)

	m, err := Decode(data.reader(), "ignored")
	require.NoError(t, err)

	assert.Equal(t, FormatForm2, m.Info.Format)
	assert.Equal(t, "Eden Starts", m.Info.Name)
	assert.Equal(t, "A small test map", m.Info.Description)
	assert.Equal(t, 2, m.Info.Width)
	assert.Equal(t, 2, m.Info.Height)
	assert.Equal(t, 4, m.CellCount())

	c, ok := m.Cell(0, 0)
	require.True(t, ok)
	assert.Equal(t, CellType{Kind: Normal}, c.Type)
	assert.Equal(t, uint8(10), c.Height)
	assert.Equal(t, TileInfo{TilesetName: TilesetGround, TileIndex: 0}, *c.Tile)

	c, _ = m.Cell(1, 0)
	assert.Equal(t, CellType{Kind: Lava, Variant: 1}, c.Type)
	assert.True(t, c.HasWreckage)
	assert.False(t, c.HasUnit)
	assert.Equal(t, Position{X: 1, Y: 0}, c.Position)

	c, _ = m.Cell(0, 1)
	assert.True(t, c.Type.Depleted())
	assert.True(t, c.HasUnit)
	assert.Equal(t, TileInfo{TilesetName: TilesetMine, TileIndex: 1}, *c.Tile)

	c, _ = m.Cell(1, 1)
	assert.Equal(t, CellType{Kind: Tube, Variant: 5}, c.Type)
	assert.True(t, c.HasWreckage)
	assert.True(t, c.HasUnit)
	assert.Equal(t, 1, c.Tile.TileIndex)
}

func TestDecode_Form2Errors(t *testing.T) {
	t.Run("unsupported version", func(t *testing.T) {
		_, err := Decode(form2Bytes(2, 1, 1, "", "", [4]byte{}).reader(), "")
		var verr *UnsupportedVersionError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, uint32(2), verr.Version)
		assert.Equal(t, FormatForm2, verr.Format)
	})

	t.Run("invalid cell type", func(t *testing.T) {
		_, err := Decode(form2Bytes(1, 1, 1, "", "", [4]byte{8, 0, 0, 0}).reader(), "")
		assert.ErrorIs(t, err, ErrInvalidFormat)
		assert.Contains(t, err.Error(), "invalid cell type: 8")
	})

	t.Run("truncated cells", func(t *testing.T) {
		_, err := Decode(form2Bytes(1, 2, 2, "", "", [4]byte{}).reader(), "")
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})

	t.Run("oversized", func(t *testing.T) {
		_, err := Decode(form2Bytes(1, MaxDimension+1, 1, "", "").reader(), "")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}

func TestDecode_Form2InvalidUTF8Name(t *testing.T) {
	data := form2Bytes(1, 1, 1, "ab\xff", "", [4]byte{})
	m, err := Decode(data.reader(), "")
	require.NoError(t, err)
	assert.Equal(t, "ab�", m.Info.Name)
}

func TestDecode_Legacy(t *testing.T) {
	data := legacyBytes(3, 1,
		[4]byte{9, 4, 7, 0},  // 9%8 = dirt, variant 4%3
		[4]byte{6, 13, 0, 2}, // tube keeps raw variant
		[4]byte{15, 2, 0, 1}, // 15%8 = wall
	)

	m, err := Decode(data.reader(), "ignored")
	require.NoError(t, err)

	assert.Equal(t, FormatLegacy, m.Info.Format)
	assert.Equal(t, "Sample Map", m.Info.Name)
	assert.Equal(t, "Map size: 3x1", m.Info.Description)

	c, _ := m.Cell(0, 0)
	assert.Equal(t, CellType{Kind: Dirt, Variant: 1}, c.Type)
	assert.Equal(t, uint8(7), c.Height)
	assert.Equal(t, TileInfo{TilesetName: TilesetDirt, TileIndex: 1}, *c.Tile)

	c, _ = m.Cell(1, 0)
	assert.Equal(t, CellType{Kind: Tube, Variant: 13}, c.Type)
	assert.Equal(t, 1, c.Tile.TileIndex)
	assert.True(t, c.HasUnit)

	c, _ = m.Cell(2, 0)
	assert.Equal(t, CellType{Kind: Wall, Variant: 2}, c.Type)
	assert.Equal(t, TileInfo{TilesetName: TilesetGround, TileIndex: 3}, *c.Tile)
	assert.True(t, c.HasWreckage)
}

func TestDecode_LegacyDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
	}{
		{"zero width", 0, 4},
		{"zero height", 4, 0},
		{"too wide", 1025, 4},
		{"too tall", 4, 1025},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(legacyBytes(tt.width, tt.height).reader(), "")
			assert.ErrorIs(t, err, ErrInvalidFormat)
			assert.Contains(t, err.Error(), "invalid map dimensions")
		})
	}
}

func TestDecode_ShortFile(t *testing.T) {
	_, err := Decode((&byteBuilder{}).str("FORM").reader(), "")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestDecode_ShortFileLargeHeader(t *testing.T) {
	tests := []struct {
		name string
		data *byteBuilder
	}{
		{"form2", form2Bytes(1, MaxDimension, MaxDimension, "", "")},
		{"native", (&byteBuilder{}).u32(0x1011).u32(0).u32(12).u32(MaxDimension).u32(0)},
		{"legacy", legacyBytes(1024, 1024)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := Decode(tt.data.reader(), "")
			runtime.ReadMemStats(&after)

			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(4<<20))
		})
	}
}

func TestDecode_Native(t *testing.T) {
	spec := nativeSpec{
		lgWidth:  6,
		height:   3,
		tilesets: []string{"well0001", "", "well0005"},
		mappings: [][4]uint16{
			{0, 7, 0, 0},
			{2, 3, 0, 0},
			{1, 9, 0, 0},
		},
		tiles: func(x, y int) uint32 {
			switch {
			case x == 40 && y == 2:
				return packTile(op2Tube0+2, 1, 0, false, false)
			case x == 1 && y == 1:
				return packTile(op2FastPassible1, 0, 5, true, false)
			case x == 63 && y == 0:
				return packTile(op2Rubble, 2, 0, false, false)
			default:
				return packTile(op2FastPassible1, 0, 0, false, false)
			}
		},
	}

	m, err := Decode(nativeBytes(spec).reader(), "eden04")
	require.NoError(t, err)

	assert.Equal(t, FormatNative, m.Info.Format)
	assert.Equal(t, "eden04", m.Info.Name)
	assert.Equal(t, 64, m.Info.Width)
	assert.Equal(t, 3, m.Info.Height)
	assert.Equal(t, []string{"well0001", "", "well0005"}, m.Info.Tilesets)
	assert.False(t, m.Info.SavedGame)

	c, _ := m.Cell(40, 2)
	assert.Equal(t, CellType{Kind: Tube, Variant: 2}, c.Type)
	assert.Equal(t, TileInfo{TilesetName: "well0005", TileIndex: 3}, *c.Tile)

	c, _ = m.Cell(1, 1)
	assert.Equal(t, Lava, c.Type.Kind)
	assert.True(t, c.HasUnit)
	assert.Equal(t, TileInfo{TilesetName: "well0001", TileIndex: 7}, *c.Tile)

	// mapping points at an empty tileset source, fall back to the default texture
	c, _ = m.Cell(63, 0)
	assert.Equal(t, CellType{Kind: Rock, Variant: 1}, c.Type)
	assert.True(t, c.HasWreckage)
	assert.Equal(t, TileInfoFor(c.Type), *c.Tile)

	c, _ = m.Cell(0, 0)
	assert.Equal(t, Normal, c.Type.Kind)
}

func TestDecode_NativeWithoutMappingTable(t *testing.T) {
	spec := nativeSpec{
		lgWidth:  5,
		height:   2,
		tilesets: []string{"well0000"},
		noTable:  true,
		tiles: func(x, y int) uint32 {
			return packTile(op2NormalWall+1, 0, 0, false, false)
		},
	}

	m, err := Decode(nativeBytes(spec).reader(), "")
	require.NoError(t, err)
	assert.Equal(t, "Unnamed Map", m.Info.Name)

	c, _ := m.Cell(31, 1)
	assert.Equal(t, CellType{Kind: Wall, Variant: 1}, c.Type)
	assert.Equal(t, TileInfoFor(c.Type), *c.Tile)
}

func TestDecode_NativeErrors(t *testing.T) {
	t.Run("bad tag", func(t *testing.T) {
		b := nativeBytes(nativeSpec{lgWidth: 5, height: 1, noTable: true})
		b.str("NOT A TAG!")
		_, err := Decode(b.reader(), "")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("width exponent", func(t *testing.T) {
		b := &byteBuilder{}
		b.u32(0x1011).u32(0).u32(20).u32(1).u32(0)
		_, err := Decode(b.reader(), "")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("truncated tiles", func(t *testing.T) {
		b := &byteBuilder{}
		b.u32(0x1011).u32(0).u32(5).u32(4).u32(0).u32(1)
		_, err := Decode(b.reader(), "")
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func TestNativeCellType(t *testing.T) {
	tests := []struct {
		code uint8
		want CellType
	}{
		{op2FastPassible1, CellType{Kind: Normal}},
		{op2FastPassible2, CellType{Kind: Normal}},
		{op2Impassible1, CellType{Kind: Rock}},
		{op2Impassible2, CellType{Kind: Rock}},
		{op2CliffsHighSide, CellType{Kind: Rock, Variant: 2}},
		{op2SlowPassible2, CellType{Kind: Dirt}},
		{op2MediumPassible1, CellType{Kind: Dirt, Variant: 2}},
		{op2DozedArea, CellType{Kind: Dirt, Variant: 1}},
		{op2VentsAndFumaroles, NewMine(false)},
		{op2LavaWall, CellType{Kind: Wall, Variant: 2}},
		{op2Tube0 + 5, CellType{Kind: Tube, Variant: 5}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nativeCellType(nativeTile{cellType: tt.code}), "code %d", tt.code)
	}

	assert.Equal(t, Microbe, nativeCellType(nativeTile{cellType: op2Rubble, microbe: true, lava: true}).Kind)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "plymouth.map")
	data := nativeBytes(nativeSpec{lgWidth: 5, height: 1})
	require.NoError(t, os.WriteFile(path, data.Bytes(), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "plymouth", m.Info.Name)

	_, err = Load(filepath.Join(dir, "missing.map"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
