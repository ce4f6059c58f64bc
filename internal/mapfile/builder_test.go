package mapfile

import (
	"bytes"
	"encoding/binary"
)

type byteBuilder struct {
	bytes.Buffer
}

func (b *byteBuilder) u8(v uint8) *byteBuilder {
	b.WriteByte(v)
	return b
}

func (b *byteBuilder) u16(v uint16) *byteBuilder {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *byteBuilder) u32(v uint32) *byteBuilder {
	binary.Write(&b.Buffer, binary.LittleEndian, v)
	return b
}

func (b *byteBuilder) raw(p ...byte) *byteBuilder {
	b.Write(p)
	return b
}

func (b *byteBuilder) str(s string) *byteBuilder {
	b.WriteString(s)
	return b
}

func (b *byteBuilder) reader() *bytes.Reader {
	return bytes.NewReader(b.Bytes())
}

// form2Bytes builds a FORM2 file; cells are given row by row as 4-byte groups
func form2Bytes(version uint16, width, height uint32, name, desc string, cells ...[4]byte) *byteBuilder {
	b := &byteBuilder{}
	b.str("FORM2").u8(0).u16(version)
	b.u32(width).u32(height)
	b.u8(uint8(len(name))).str(name)
	b.u16(uint16(len(desc))).str(desc)
	for _, c := range cells {
		b.raw(c[:]...)
	}
	return b
}

func legacyBytes(width, height uint32, cells ...[4]byte) *byteBuilder {
	b := &byteBuilder{}
	b.str("SAMPLE01")
	b.u32(width).u32(height)
	b.raw(make([]byte, 16)...)
	for _, c := range cells {
		b.raw(c[:]...)
	}
	return b
}

type nativeSpec struct {
	version  uint32
	lgWidth  uint32
	height   uint32
	tiles    func(x, y int) uint32
	tilesets []string
	mappings [][4]uint16
	noTable  bool
}

func nativeBytes(s nativeSpec) *byteBuilder {
	if s.version == 0 {
		s.version = 0x1011
	}
	width := 1 << s.lgWidth
	h := int(s.height)
	b := &byteBuilder{}
	b.u32(s.version).u32(0).u32(s.lgWidth).u32(s.height).u32(uint32(len(s.tilesets)))

	block := min(32, width)
	words := make([]uint32, width*h)
	for y := 0; y < h; y++ {
		for x := 0; x < width; x++ {
			var v uint32
			if s.tiles != nil {
				v = s.tiles(x, y)
			}
			words[((x/block)*h+y)*block+x%block] = v
		}
	}
	for _, w := range words {
		b.u32(w)
	}
	b.u32(0).u32(0).u32(uint32(width - 1)).u32(uint32(h - 1))

	for _, name := range s.tilesets {
		b.u32(uint32(len(name))).str(name)
		if name != "" {
			b.u32(64)
		}
	}
	if s.noTable {
		return b
	}
	b.raw(tileSetTag...)
	b.u32(uint32(len(s.mappings)))
	for _, m := range s.mappings {
		b.u16(m[0]).u16(m[1]).u16(m[2]).u16(m[3])
	}
	return b
}

func packTile(cellType, mapping, unit uint32, lava, microbe bool) uint32 {
	v := cellType&0x1f | (mapping&0x7ff)<<5 | (unit&0x7ff)<<16
	if lava {
		v |= 1 << 27
	}
	if microbe {
		v |= 1 << 30
	}
	return v
}
