// Package pngglitch parses PNG files down to their filtered scanlines and
// lets callers remove, apply and move PNG filters in place before writing the
// result back out as a PNG. It is meant for glitch art: the pixel stream is
// edited as raw bytes, and nothing stops the caller from producing images
// that decode to something unexpected.
package pngglitch

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

// decoder accumulates the chunk walk until IEND.
type decoder struct {
	header     *Header
	terminator *Terminator
	chunks     []Chunk
	idat       bytes.Buffer
	nIDAT      int
}

// Decode reads a complete PNG stream from r.
func Decode(r io.Reader) (*Png, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Parse(b)
}

// Parse parses a complete PNG stream held in b. The returned Png does not
// retain b.
func Parse(b []byte) (*Png, error) {
	if len(b) < len(pngHeader) || string(b[:len(pngHeader)]) != pngHeader {
		return nil, errors.WithStack(ErrInvalidSignature)
	}
	d := &decoder{}
	if err := d.walk(b[len(pngHeader):]); err != nil {
		return nil, err
	}
	return d.build()
}

func (d *decoder) walk(b []byte) error {
	for len(b) > 0 && d.terminator == nil {
		c, n, err := parseChunk(b)
		if err != nil {
			return err
		}
		b = b[n:]
		if err := d.found(c); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) found(c Chunk) error {
	switch c.Type.Kind() {
	case ChunkStart:
		if d.header != nil {
			return errors.WithStack(ErrDuplicateIHDRFound)
		}
		h, err := parseHeader(c)
		if err != nil {
			return err
		}
		d.header = h
	case ChunkData:
		// IDAT may be split across chunks; only the concatenation matters.
		d.idat.Write(c.Data)
		d.nIDAT++
	case ChunkEnd:
		if d.terminator != nil {
			return errors.WithStack(ErrDuplicateIENDFound)
		}
		t, err := parseTerminator(c)
		if err != nil {
			return err
		}
		d.terminator = t
	case ChunkOther:
		d.chunks = append(d.chunks, c)
	}
	return nil
}

func (d *decoder) build() (*Png, error) {
	if d.idat.Len() == 0 {
		return nil, errors.WithStack(ErrNoIDATFound)
	}
	if d.header == nil {
		return nil, errors.WithStack(ErrNoIHDRFound)
	}
	if d.terminator == nil {
		return nil, errors.WithStack(ErrNoIENDFound)
	}
	h := d.header
	if h.Interlaced() {
		Logger().Warn("pngglitch: interlaced image, scanlines will not match pixel rows",
			"width", h.Width, "height", h.Height)
	}

	data, err := d.inflate()
	if err != nil {
		return nil, err
	}
	if err := checkFilterTags(data, h.ScanLineWidth()); err != nil {
		return nil, err
	}
	Logger().Debug("pngglitch: parsed",
		"width", h.Width, "height", h.Height,
		"colorType", h.ColorType, "bitDepth", h.BitDepth,
		"idatChunks", d.nIDAT, "compressed", d.idat.Len(), "decoded", len(data),
		"ancillary", len(d.chunks))
	return &Png{
		header:     h,
		terminator: d.terminator,
		chunks:     d.chunks,
		data:       data,
	}, nil
}

// inflate decompresses the concatenated IDAT payload into a buffer of
// exactly the size the header calls for. The buffer grows with the data
// actually inflated, so a header claiming huge dimensions costs nothing
// until the IDAT stream backs it.
func (d *decoder) inflate() ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(d.idat.Bytes()))
	if err != nil {
		return nil, errors.WithStack(&FormatError{Kind: DeflateFailure, Err: err})
	}
	defer zr.Close()

	size := d.header.DataSize()
	data, err := io.ReadAll(io.LimitReader(zr, int64(size)))
	if err != nil {
		return nil, errors.WithStack(&FormatError{Kind: DeflateFailure, Err: err})
	}
	if len(data) != size {
		return nil, errors.Wrapf(ErrDeflateFailure, "inflated %d bytes, header wants %d", len(data), size)
	}
	return data, nil
}

func checkFilterTags(data []byte, width int) error {
	for y, off := 0, 0; off < len(data); y, off = y+1, off+width {
		if FilterType(data[off]) >= nFilter {
			return errors.Wrapf(ErrInvalidFilterType, "scanline %d has filter type %d", y, data[off])
		}
	}
	return nil
}
