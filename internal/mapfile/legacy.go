package mapfile

import "fmt"

const (
	legacyMaxDimension = 1024
	legacyCellOffset   = 32
	legacyDimOffset    = 8
)

// decodeLegacy reads the headerless sample layout: dimensions at offset 8,
// cells from offset 32. Type and variant bytes are folded into range rather
// than rejected since the layout carries no version to validate against.
func decodeLegacy(r *reader) (*Map, error) {
	r.skip(legacyDimOffset)
	width, height := r.u32(), r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("read map dimensions: %w", r.err)
	}
	if width == 0 || height == 0 {
		return nil, invalidf("invalid map dimensions: %dx%d", width, height)
	}
	if err := checkDimensions(width, height, legacyMaxDimension); err != nil {
		return nil, err
	}

	r.skip(legacyCellOffset - legacyDimOffset - 8)
	r.require(int64(width) * int64(height) * 4)
	if r.err != nil {
		return nil, fmt.Errorf("read cell data: %w", r.err)
	}

	m := New(Info{
		Width:       int(width),
		Height:      int(height),
		Name:        "Sample Map",
		Description: fmt.Sprintf("Map size: %dx%d", width, height),
		Format:      FormatLegacy,
	})

	var raw [4]byte
	for y := 0; y < m.Info.Height; y++ {
		for x := 0; x < m.Info.Width; x++ {
			r.read(raw[:])
			if r.err != nil {
				return nil, fmt.Errorf("read cell (%d, %d): %w", x, y, r.err)
			}

			ct := legacyCellType(raw[0], raw[1])
			tile := TileInfoFor(ct)
			m.set(x, y, Cell{
				Type:        ct,
				Height:      raw[2],
				HasWreckage: raw[3]&flagWreckage != 0,
				HasUnit:     raw[3]&flagUnit != 0,
				Tile:        &tile,
			})
		}
	}

	return m, nil
}

func legacyCellType(kind, variant byte) CellType {
	switch k := CellKind(kind % 8); k {
	case Normal:
		return CellType{Kind: Normal}
	case Mine:
		return NewMine(variant != 0)
	case Tube:
		return CellType{Kind: Tube, Variant: variant}
	default:
		return CellType{Kind: k, Variant: variant % 3}
	}
}
