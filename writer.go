package pngglitch

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// CompressionLevel indicates the deflate level of the synthesized IDAT chunk.
type CompressionLevel int

const (
	DefaultCompression CompressionLevel = 0
	NoCompression      CompressionLevel = -1
	BestSpeed          CompressionLevel = -2
	BestCompression    CompressionLevel = -3
)

func (l CompressionLevel) zlibLevel() int {
	switch l {
	case NoCompression:
		return zlib.NoCompression
	case BestSpeed:
		return zlib.BestSpeed
	case BestCompression:
		return zlib.BestCompression
	}
	return zlib.DefaultCompression
}

// Encoder writes a Png back to the PNG wire format.
type Encoder struct {
	CompressionLevel CompressionLevel
}

func NewEncoder(level CompressionLevel) *Encoder {
	return &Encoder{CompressionLevel: level}
}

// Encode writes the signature, the original IHDR, the ancillary chunks in
// their original order, a single IDAT holding the whole decoded buffer and
// the original IEND. The IDAT split of the input is not preserved.
func (e *Encoder) Encode(w io.Writer, p *Png) error {
	idat, err := e.idat(p.data)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, pngHeader); err != nil {
		return errors.WithStack(err)
	}
	if err := p.header.raw.Encode(w); err != nil {
		return errors.Wrap(err, "IHDR")
	}
	for i := range p.chunks {
		if err := p.chunks[i].Encode(w); err != nil {
			return errors.Wrap(err, p.chunks[i].Type.String())
		}
	}
	if err := idat.Encode(w); err != nil {
		return errors.Wrap(err, "IDAT")
	}
	if err := p.terminator.raw.Encode(w); err != nil {
		return errors.Wrap(err, "IEND")
	}
	return nil
}

func (e *Encoder) idat(data []byte) (Chunk, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, e.CompressionLevel.zlibLevel())
	if err != nil {
		return Chunk{}, errors.WithStack(err)
	}
	if _, err := zw.Write(data); err != nil {
		return Chunk{}, errors.WithStack(err)
	}
	if err := zw.Close(); err != nil {
		return Chunk{}, errors.WithStack(err)
	}
	Logger().Debug("pngglitch: deflated", "decoded", len(data), "compressed", buf.Len())
	return newChunk(typeIDAT, buf.Bytes()), nil
}
