package mapfile

import (
	"bytes"
	"fmt"
)

const form2Version = 1

const (
	flagWreckage = 1 << 0
	flagUnit     = 1 << 1
)

// decodeForm2 reads the self-describing FORM2 layout:
//
//	"FORM2" pad u16(version) u32(width) u32(height)
//	u8(len) name u16(len) description
//	width*height * [type variant height flags]
func decodeForm2(r *reader) (*Map, error) {
	header := r.bytes(headerPeek)
	if r.err != nil {
		return nil, fmt.Errorf("read FORM2 header: %w", r.err)
	}
	if !bytes.Equal(header[:5], form2Magic) {
		return nil, invalidf("not a FORM2 map file")
	}
	version := uint32(header[6]) | uint32(header[7])<<8
	if version != form2Version {
		return nil, &UnsupportedVersionError{Format: FormatForm2, Version: version}
	}

	width, height := r.u32(), r.u32()
	name := r.bytes(int(r.u8()))
	desc := r.bytes(int(r.u16()))
	if r.err != nil {
		return nil, fmt.Errorf("read FORM2 metadata: %w", r.err)
	}
	if err := checkDimensions(width, height, MaxDimension); err != nil {
		return nil, err
	}
	r.require(int64(width) * int64(height) * 4)
	if r.err != nil {
		return nil, fmt.Errorf("read FORM2 cells: %w", r.err)
	}

	m := New(Info{
		Width:       int(width),
		Height:      int(height),
		Name:        lossy(name),
		Description: lossy(desc),
		Format:      FormatForm2,
	})

	var raw [4]byte
	for y := 0; y < m.Info.Height; y++ {
		for x := 0; x < m.Info.Width; x++ {
			r.read(raw[:])
			if r.err != nil {
				return nil, fmt.Errorf("read cell (%d, %d): %w", x, y, r.err)
			}

			ct, err := form2CellType(raw[0], raw[1])
			if err != nil {
				return nil, err
			}
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

func form2CellType(kind, variant byte) (CellType, error) {
	switch CellKind(kind) {
	case Normal:
		return CellType{Kind: Normal}, nil
	case Mine:
		return NewMine(variant != 0), nil
	case Dirt, Lava, Microbe, Rock, Tube, Wall:
		return CellType{Kind: CellKind(kind), Variant: variant}, nil
	default:
		return CellType{}, invalidf("invalid cell type: %d", kind)
	}
}
