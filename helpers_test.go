package pngglitch

import (
	"bytes"
	"encoding/binary"
	"image"
	stdpng "image/png"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func ihdrChunk(w, h uint32, depth uint8, ct ColorType) Chunk {
	b := make([]byte, ihdrLen)
	binary.BigEndian.PutUint32(b[0:4], w)
	binary.BigEndian.PutUint32(b[4:8], h)
	b[8] = depth
	b[9] = byte(ct)
	return newChunk(typeIHDR, b)
}

func iendChunk() Chunk { return newChunk(typeIEND, nil) }

func textChunk(s string) Chunk { return newChunk(ChunkType{'t', 'E', 'X', 't'}, []byte(s)) }

func deflate(t testing.TB, b []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		t.Fatalf("%+v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("%+v", err)
	}
	return buf.Bytes()
}

// assemble lays out a signature followed by chunks, in order.
func assemble(t testing.TB, chunks ...Chunk) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(pngHeader)
	for i := range chunks {
		if err := chunks[i].Encode(&buf); err != nil {
			t.Fatalf("%+v", err)
		}
	}
	return buf.Bytes()
}

// newTestPng wraps data, which must already carry valid tag bytes, in a Png.
func newTestPng(t testing.TB, ct ColorType, depth uint8, w, h uint32, data []byte) *Png {
	t.Helper()
	hdr, err := parseHeader(ihdrChunk(w, h, depth, ct))
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if len(data) != hdr.DataSize() {
		t.Fatalf("data is %d bytes, header wants %d", len(data), hdr.DataSize())
	}
	term, err := parseTerminator(iendChunk())
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return &Png{header: hdr, terminator: term, data: data}
}

// randomData fills a buffer for the given geometry with random pixel bytes
// and tags every row ft.
func randomData(rng *rand.Rand, ct ColorType, depth uint8, w, h uint32, ft FilterType) []byte {
	hdr := Header{Width: w, Height: h, BitDepth: depth, ColorType: ct}
	sw := hdr.ScanLineWidth()
	data := make([]byte, sw*int(h))
	rng.Read(data)
	for y := 0; y < int(h); y++ {
		data[y*sw] = byte(ft)
	}
	return data
}

func stdEncode(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := stdpng.Encode(&buf, img); err != nil {
		t.Fatalf("%+v", err)
	}
	return buf.Bytes()
}

func gradientNRGBA(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(x*7 + y*3)
			img.Pix[i+1] = uint8(x * y)
			img.Pix[i+2] = uint8(255 - x*5)
			img.Pix[i+3] = uint8(100 + y)
		}
	}
	return img
}

func gradientGray(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Pix[img.PixOffset(x, y)] = uint8((x ^ y) * 9)
		}
	}
	return img
}

func gradientNRGBA64(w, h int) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			for c := 0; c < 8; c++ {
				img.Pix[i+c] = uint8(x*13 + y*c + c)
			}
			img.Pix[i+6] = 0x70
		}
	}
	return img
}

func opaqueRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(x * 11)
			img.Pix[i+1] = uint8(y * 17)
			img.Pix[i+2] = uint8(x + y)
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// rowBytes returns the raw PNG row bytes of images whose in-memory layout
// matches the PNG layout.
func rowBytes(t testing.TB, img image.Image, y int) []byte {
	t.Helper()
	switch m := img.(type) {
	case *image.NRGBA:
		return m.Pix[m.PixOffset(0, y):m.PixOffset(0, y+1)]
	case *image.NRGBA64:
		return m.Pix[m.PixOffset(0, y):m.PixOffset(0, y+1)]
	case *image.Gray:
		return m.Pix[m.PixOffset(0, y):m.PixOffset(0, y+1)]
	}
	t.Fatalf("unsupported image %T", img)
	return nil
}
