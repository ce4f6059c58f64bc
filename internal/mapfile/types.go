package mapfile

import (
	"fmt"
	"strings"
)

// Position is a cell coordinate on the map grid
type Position struct {
	X int
	Y int
}

// CellKind identifies the terrain class of a cell
type CellKind uint8

const (
	Normal CellKind = iota
	Dirt
	Lava
	Microbe
	Mine
	Rock
	Tube
	Wall
)

var cellKindNames = [...]string{"normal", "dirt", "lava", "microbe", "mine", "rock", "tube", "wall"}

func (k CellKind) String() string {
	if int(k) < len(cellKindNames) {
		return cellKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// CellType pairs a terrain kind with its variant byte. For mines a non-zero
// variant marks the mine as depleted, for tubes the variant is a bitmask of
// connections.
type CellType struct {
	Kind    CellKind
	Variant uint8
}

// NewMine builds a mine cell type
func NewMine(depleted bool) CellType {
	if depleted {
		return CellType{Kind: Mine, Variant: 1}
	}
	return CellType{Kind: Mine}
}

// Depleted reports whether a mine cell is used up
func (t CellType) Depleted() bool {
	return t.Kind == Mine && t.Variant != 0
}

func (t CellType) String() string {
	switch t.Kind {
	case Normal:
		return "Normal Ground"
	case Lava:
		return fmt.Sprintf("Lava Type %d", t.Variant)
	case Microbe:
		return fmt.Sprintf("Microbe Growth Stage %d", t.Variant)
	case Mine:
		if t.Depleted() {
			return "Mine (Depleted)"
		}
		return "Mine (Active)"
	case Dirt:
		return fmt.Sprintf("Dirt Type %d", t.Variant)
	case Rock:
		return fmt.Sprintf("Rock Type %d", t.Variant)
	case Tube:
		return fmt.Sprintf("Tube (Connections: %08b)", t.Variant)
	case Wall:
		return fmt.Sprintf("Wall Type %d", t.Variant)
	default:
		return t.Kind.String()
	}
}

// TileInfo names the tileset bitmap and tile used to texture a cell
type TileInfo struct {
	TilesetName string
	TileIndex   int
}

// Cell is a single map square
type Cell struct {
	Position    Position
	Type        CellType
	Height      uint8
	HasWreckage bool
	HasUnit     bool
	Tile        *TileInfo
}

// Description returns the multi-line summary shown for a selected cell
func (c *Cell) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Position: (%d, %d)\n", c.Position.X, c.Position.Y)
	fmt.Fprintf(&b, "Type: %s\n", c.Type)
	fmt.Fprintf(&b, "Height: %d\n", c.Height)
	if c.HasWreckage {
		b.WriteString("Contains wreckage\n")
	}
	if c.HasUnit {
		b.WriteString("Contains unit\n")
	}
	return b.String()
}

// Format records which decoder produced a map
type Format string

const (
	FormatForm2  Format = "form2"
	FormatLegacy Format = "legacy"
	FormatNative Format = "op2"
)

// Info holds map metadata and dimensions
type Info struct {
	Width        int
	Height       int
	Name         string
	Description  string
	Author       string
	Requirements []string
	Format       Format

	// Native maps only
	SavedGame bool
	Tilesets  []string
}

// Map is a decoded map: metadata plus a row-major cell grid
type Map struct {
	Info  Info
	cells []Cell
}

// New allocates a map with every cell set to normal ground at its own position
func New(info Info) *Map {
	m := &Map{
		Info:  info,
		cells: make([]Cell, info.Width*info.Height),
	}
	for y := 0; y < info.Height; y++ {
		for x := 0; x < info.Width; x++ {
			m.cells[y*info.Width+x].Position = Position{X: x, Y: y}
		}
	}
	return m
}

// Cell returns the cell at (x, y). Negative or out-of-range coordinates
// report false.
func (m *Map) Cell(x, y int) (*Cell, bool) {
	if !m.InBounds(x, y) {
		return nil, false
	}
	return &m.cells[y*m.Info.Width+x], true
}

// InBounds reports whether (x, y) lies on the map
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Info.Width && y < m.Info.Height
}

// CellCount returns the number of cells in the grid
func (m *Map) CellCount() int {
	return len(m.cells)
}

// KindCounts tallies cells per terrain kind
func (m *Map) KindCounts() map[CellKind]int {
	counts := make(map[CellKind]int)
	for i := range m.cells {
		counts[m.cells[i].Type.Kind]++
	}
	return counts
}

func (m *Map) set(x, y int, cell Cell) {
	cell.Position = Position{X: x, Y: y}
	m.cells[y*m.Info.Width+x] = cell
}
