package mapfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellType_String(t *testing.T) {
	tests := []struct {
		ct   CellType
		want string
	}{
		{CellType{Kind: Normal}, "Normal Ground"},
		{CellType{Kind: Lava, Variant: 2}, "Lava Type 2"},
		{CellType{Kind: Microbe, Variant: 1}, "Microbe Growth Stage 1"},
		{NewMine(true), "Mine (Depleted)"},
		{NewMine(false), "Mine (Active)"},
		{CellType{Kind: Dirt}, "Dirt Type 0"},
		{CellType{Kind: Rock, Variant: 1}, "Rock Type 1"},
		{CellType{Kind: Tube, Variant: 5}, "Tube (Connections: 00000101)"},
		{CellType{Kind: Wall, Variant: 2}, "Wall Type 2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ct.String())
	}
}

func TestCell_Description(t *testing.T) {
	c := Cell{Position: Position{X: 3, Y: 4}, Type: CellType{Kind: Rock}, Height: 12}
	assert.Equal(t, "Position: (3, 4)\nType: Rock Type 0\nHeight: 12\n", c.Description())

	c.HasWreckage = true
	c.HasUnit = true
	assert.Equal(t, "Position: (3, 4)\nType: Rock Type 0\nHeight: 12\nContains wreckage\nContains unit\n", c.Description())
}

func TestMap_Cell(t *testing.T) {
	m := New(Info{Width: 3, Height: 2})
	require.Equal(t, 6, m.CellCount())

	c, ok := m.Cell(2, 1)
	require.True(t, ok)
	assert.Equal(t, Position{X: 2, Y: 1}, c.Position)
	assert.Equal(t, Normal, c.Type.Kind)

	for _, p := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		_, ok := m.Cell(p.X, p.Y)
		assert.False(t, ok, "(%d, %d)", p.X, p.Y)
	}
}

func TestMap_KindCounts(t *testing.T) {
	m := New(Info{Width: 2, Height: 2})
	m.set(0, 0, Cell{Type: CellType{Kind: Lava}})
	m.set(1, 1, Cell{Type: CellType{Kind: Lava, Variant: 1}})

	counts := m.KindCounts()
	assert.Equal(t, 2, counts[Lava])
	assert.Equal(t, 2, counts[Normal])
}

func TestTileInfoFor(t *testing.T) {
	tests := []struct {
		ct   CellType
		want TileInfo
	}{
		{CellType{Kind: Normal}, TileInfo{TilesetGround, 0}},
		{CellType{Kind: Dirt, Variant: 4}, TileInfo{TilesetDirt, 1}},
		{CellType{Kind: Lava, Variant: 2}, TileInfo{TilesetLava, 2}},
		{CellType{Kind: Microbe, Variant: 3}, TileInfo{TilesetMicrobe, 0}},
		{NewMine(false), TileInfo{TilesetMine, 0}},
		{NewMine(true), TileInfo{TilesetMine, 1}},
		{CellType{Kind: Rock, Variant: 5}, TileInfo{TilesetRock, 2}},
		{CellType{Kind: Tube, Variant: 7}, TileInfo{TilesetTube, 3}},
		{CellType{Kind: Wall}, TileInfo{TilesetGround, 1}},
		{CellType{Kind: Wall, Variant: 2}, TileInfo{TilesetGround, 3}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TileInfoFor(tt.ct), tt.ct.String())
	}
}
