package pngglitch

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/pkg/errors"
)

// ChunkKind is the closed classification of chunk types the parser cares about.
type ChunkKind int

const (
	ChunkOther ChunkKind = iota
	ChunkStart           // IHDR
	ChunkData            // IDAT
	ChunkEnd             // IEND
)

// ChunkType is the 4-byte tag of a chunk.
type ChunkType [4]byte

var (
	typeIHDR = ChunkType{'I', 'H', 'D', 'R'}
	typeIDAT = ChunkType{'I', 'D', 'A', 'T'}
	typeIEND = ChunkType{'I', 'E', 'N', 'D'}
)

// Kind classifies the tag. It depends on nothing but the four tag bytes.
func (t ChunkType) Kind() ChunkKind {
	switch t {
	case typeIHDR:
		return ChunkStart
	case typeIDAT:
		return ChunkData
	case typeIEND:
		return ChunkEnd
	}
	return ChunkOther
}

func (t ChunkType) String() string { return string(t[:]) }

// Critical reports whether the chunk is critical rather than ancillary,
// which PNG encodes in the case of the first letter.
func (t ChunkType) Critical() bool {
	return t[0] >= 'A' && t[0] <= 'Z'
}

// A Chunk is one length-type-payload-CRC record of a PNG stream.
// The CRC is stored as read and is never checked on parse.
type Chunk struct {
	Type ChunkType
	Data []byte
	CRC  [4]byte
}

// chunkOverhead is the length prefix, tag and CRC around every payload.
const chunkOverhead = 12

// newChunk builds a chunk with a freshly computed CRC.
func newChunk(t ChunkType, data []byte) Chunk {
	c := Chunk{Type: t, Data: data}
	binary.BigEndian.PutUint32(c.CRC[:], c.checksum())
	return c
}

// parseChunk reads one chunk from the start of b and returns it with the
// number of bytes it occupied.
func parseChunk(b []byte) (Chunk, int, error) {
	if len(b) < 8 {
		return Chunk{}, 0, errors.Wrapf(ErrTooShortInput, "chunk header needs 8 bytes, have %d", len(b))
	}
	length := binary.BigEndian.Uint32(b[:4])
	var c Chunk
	copy(c.Type[:], b[4:8])
	if uint64(len(b)-8) < uint64(length)+4 {
		return Chunk{}, 0, errors.Wrapf(ErrTooShortInput, "%s chunk of length %d, have %d bytes", c.Type, length, len(b)-8)
	}
	n := int(length)
	c.Data = make([]byte, n)
	copy(c.Data, b[8:8+n])
	copy(c.CRC[:], b[8+n:12+n])
	return c, n + chunkOverhead, nil
}

// Len returns the payload length.
func (c *Chunk) Len() int { return len(c.Data) }

func (c *Chunk) checksum() uint32 {
	crc := crc32.NewIEEE()
	crc.Write(c.Type[:])
	crc.Write(c.Data)
	return crc.Sum32()
}

// ChecksumValid reports whether the stored CRC matches the type and payload.
func (c *Chunk) ChecksumValid() bool {
	return binary.BigEndian.Uint32(c.CRC[:]) == c.checksum()
}

// Encode writes the chunk with its stored CRC.
func (c *Chunk) Encode(w io.Writer) error {
	var tmp [8]byte
	binary.BigEndian.PutUint32(tmp[:4], uint32(len(c.Data)))
	copy(tmp[4:8], c.Type[:])
	if _, err := w.Write(tmp[:8]); err != nil {
		return errors.WithStack(err)
	}
	if _, err := w.Write(c.Data); err != nil {
		return errors.WithStack(err)
	}
	if _, err := w.Write(c.CRC[:]); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
