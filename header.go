package pngglitch

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

// Color type, as defined by the PNG format.
type ColorType uint8

const (
	GrayScale      ColorType = 0
	TrueColor      ColorType = 2
	IndexColor     ColorType = 3
	GrayScaleAlpha ColorType = 4
	TrueColorAlpha ColorType = 6
)

func parseColorType(b byte) (ColorType, error) {
	switch ct := ColorType(b); ct {
	case GrayScale, TrueColor, IndexColor, GrayScaleAlpha, TrueColorAlpha:
		return ct, nil
	}
	return 0, errors.Wrapf(ErrInvalidColorType, "color type %d", b)
}

func (ct ColorType) String() string {
	switch ct {
	case GrayScale:
		return "GrayScale"
	case TrueColor:
		return "TrueColor"
	case IndexColor:
		return "IndexColor"
	case GrayScaleAlpha:
		return "GrayScaleAlpha"
	case TrueColorAlpha:
		return "TrueColorAlpha"
	}
	return fmt.Sprintf("ColorType(%d)", uint8(ct))
}

// BitsPerPixel returns how many bits one pixel of this color type occupies.
func (ct ColorType) BitsPerPixel(bitDepth uint8) int {
	d := int(bitDepth)
	switch ct {
	case TrueColor:
		return 3 * d
	case GrayScaleAlpha:
		return 2 * d
	case TrueColorAlpha:
		return 4 * d
	}
	return d
}

// bytesPerPixel is the filter distance: at least one byte even for sub-byte depths.
func (ct ColorType) bytesPerPixel(bitDepth uint8) int {
	return max(1, (ct.BitsPerPixel(bitDepth)+7)/8)
}

const ihdrLen = 13

// Header is the parsed IHDR chunk. The compression, filter and interlace
// bytes are not modeled; they survive re-encoding inside the raw chunk.
type Header struct {
	raw Chunk

	Width     uint32
	Height    uint32
	BitDepth  uint8
	ColorType ColorType
}

func parseHeader(c Chunk) (*Header, error) {
	if c.Type.Kind() != ChunkStart {
		return nil, errors.WithStack(&FormatError{Kind: InvalidChunkType, Chunk: &c})
	}
	if len(c.Data) < ihdrLen {
		return nil, errors.Wrapf(ErrTooShortInput, "IHDR payload of %d bytes", len(c.Data))
	}
	ct, err := parseColorType(c.Data[9])
	if err != nil {
		return nil, err
	}
	h := &Header{
		raw:       c,
		Width:     binary.BigEndian.Uint32(c.Data[0:4]),
		Height:    binary.BigEndian.Uint32(c.Data[4:8]),
		BitDepth:  c.Data[8],
		ColorType: ct,
	}
	if _, err := h.dataSize(); err != nil {
		return nil, err
	}
	return h, nil
}

// ScanLineWidth returns the bytes in one scanline, including its filter tag.
func (h *Header) ScanLineWidth() int {
	bits := uint64(h.ColorType.BitsPerPixel(h.BitDepth)) * uint64(h.Width)
	return int((bits+7)/8) + 1
}

// DataSize returns the length of the inflated pixel stream.
func (h *Header) DataSize() int {
	n, _ := h.dataSize()
	return n
}

func (h *Header) dataSize() (int, error) {
	bits := uint64(h.ColorType.BitsPerPixel(h.BitDepth)) * uint64(h.Width)
	// The +1 is for the per-row filter type.
	rowSize := (bits+7)/8 + 1
	size := rowSize * uint64(h.Height)
	if h.Height != 0 && size/uint64(h.Height) != rowSize {
		return 0, errors.WithStack(UnsupportedError("dimension overflow"))
	}
	if size != uint64(int(size)) || int(size) < 0 {
		return 0, errors.WithStack(UnsupportedError("dimension overflow"))
	}
	return int(size), nil
}

// Interlaced reports whether the interlace method byte is set.
func (h *Header) Interlaced() bool {
	return h.raw.Data[12] != 0
}

// Terminator is the IEND chunk, kept as read.
type Terminator struct {
	raw Chunk
}

func parseTerminator(c Chunk) (*Terminator, error) {
	if c.Type.Kind() != ChunkEnd {
		return nil, errors.WithStack(&FormatError{Kind: InvalidChunkType, Chunk: &c})
	}
	return &Terminator{raw: c}, nil
}
