package mapfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MaxDimension bounds width and height of decoded maps. The cell grid is
// only allocated once the input is known to hold every cell record.
const MaxDimension = 4096

const headerPeek = 8

var form2Magic = []byte("FORM2")

// Load reads and decodes the map file at path
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map file: %w", err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Decode(f, stem)
}

// Decode detects the layout of the map in r and decodes it. name is used
// for layouts that carry no name of their own.
func Decode(r io.ReadSeeker, name string) (*Map, error) {
	header := make([]byte, headerPeek)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("read map header: %w", unexpectedEOF(err))
	}
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("measure map file: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind map file: %w", err)
	}

	src := newReader(r, size)
	switch DetectFormat(header) {
	case FormatForm2:
		return decodeForm2(src)
	case FormatNative:
		return decodeNative(src, name)
	default:
		return decodeLegacy(src)
	}
}

// DetectFormat classifies a map from its first bytes
func DetectFormat(header []byte) Format {
	if bytes.HasPrefix(header, form2Magic) {
		return FormatForm2
	}
	if len(header) >= 4 {
		tag := binary.LittleEndian.Uint32(header[:4])
		if tag >= nativeMinVersion && tag <= nativeMaxVersion {
			return FormatNative
		}
	}
	return FormatLegacy
}

// reader is a little-endian cursor that keeps the first error. It tracks
// how many input bytes are left so record counts read from a header can be
// checked before anything is allocated for them.
type reader struct {
	r         *bufio.Reader
	remaining int64
	err       error
}

func newReader(r io.Reader, size int64) *reader {
	return &reader{r: bufio.NewReader(r), remaining: size}
}

func (r *reader) read(buf []byte) {
	if r.err != nil {
		return
	}
	n, err := io.ReadFull(r.r, buf)
	r.remaining -= int64(n)
	if err != nil {
		r.err = unexpectedEOF(err)
	}
}

// require fails with io.ErrUnexpectedEOF when fewer than n bytes are left
func (r *reader) require(n int64) {
	if r.err == nil && n > r.remaining {
		r.err = io.ErrUnexpectedEOF
	}
}

func (r *reader) bytes(n int) []byte {
	buf := make([]byte, n)
	r.read(buf)
	return buf
}

func (r *reader) skip(n int) {
	if r.err != nil {
		return
	}
	d, err := r.r.Discard(n)
	r.remaining -= int64(d)
	if err != nil {
		r.err = unexpectedEOF(err)
	}
}

func (r *reader) u8() uint8 {
	var b [1]byte
	r.read(b[:])
	return b[0]
}

func (r *reader) u16() uint16 {
	var b [2]byte
	r.read(b[:])
	return binary.LittleEndian.Uint16(b[:])
}

func (r *reader) u32() uint32 {
	var b [4]byte
	r.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

func (r *reader) i32() int32 {
	return int32(r.u32())
}

// lossy decodes bytes as UTF-8, substituting invalid sequences
func lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

// unexpectedEOF turns a clean EOF in the middle of a structure into
// io.ErrUnexpectedEOF
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func checkDimensions(width, height uint32, limit uint32) error {
	if width > limit || height > limit {
		return invalidf("invalid map dimensions: %dx%d", width, height)
	}
	return nil
}
