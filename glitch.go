package pngglitch

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"

	"github.com/pkg/errors"
)

// Scanner exposes the scanlines of an image as views over its decoded buffer.
type Scanner interface {
	ScanLines() []*ScanLine
	ScanLinesFrom(from, count int) []*ScanLine
	ForEachScanLine(fn func(*ScanLine))
}

// Transposer moves blocks of scanlines within an image.
type Transposer interface {
	Transpose(src, dst, count int)
}

var (
	_ Scanner     = (*Png)(nil)
	_ Transposer  = (*Png)(nil)
	_ io.WriterTo = (*Png)(nil)
)

// Png is a parsed PNG image. Its pixel stream lives in one decoded buffer,
// every scanline back to back with its filter tag, and all edits happen in
// place on that buffer.
//
// A Png is not safe for concurrent use.
type Png struct {
	header     *Header
	terminator *Terminator
	chunks     []Chunk
	data       []byte
}

func (p *Png) Width() uint32 { return p.header.Width }

func (p *Png) Height() uint32 { return p.header.Height }

func (p *Png) ColorType() ColorType { return p.header.ColorType }

func (p *Png) BitDepth() uint8 { return p.header.BitDepth }

// Chunks returns the ancillary chunks in the order they were read.
func (p *Png) Chunks() []Chunk { return p.chunks }

// Data returns the decoded buffer itself, not a copy.
func (p *Png) Data() []byte { return p.data }

func (p *Png) height() int { return int(p.header.Height) }

func (p *Png) scanLine(y int) *ScanLine {
	w := p.header.ScanLineWidth()
	return newScanLine(p.data, y*w, (y+1)*w, p.header.ColorType, p.header.BitDepth)
}

// ScanLines returns a view of every row, top to bottom.
func (p *Png) ScanLines() []*ScanLine {
	return p.ScanLinesFrom(0, p.height())
}

// ScanLinesFrom returns views of at most count rows starting at row from.
// The span is clipped to the image.
func (p *Png) ScanLinesFrom(from, count int) []*ScanLine {
	from, count = p.clip(from, count)
	lines := make([]*ScanLine, count)
	for i := range lines {
		lines[i] = p.scanLine(from + i)
	}
	return lines
}

// ForEachScanLine calls fn with each row, top to bottom.
func (p *Png) ForEachScanLine(fn func(*ScanLine)) {
	for _, l := range p.ScanLines() {
		fn(l)
	}
}

func (p *Png) clip(from, count int) (int, int) {
	h := p.height()
	if from < 0 || from >= h || count <= 0 {
		return 0, 0
	}
	return from, min(count, h-from)
}

// RemoveFilter reconstructs every row, leaving raw pixel bytes tagged None.
func (p *Png) RemoveFilter() {
	p.RemoveFilterFrom(0, p.height())
}

// RemoveFilterFrom reconstructs rows [from, from+count). The row above the
// span, if any, is read as the predecessor of the first row but left alone;
// it must already be unfiltered for the result to be the true pixels.
func (p *Png) RemoveFilterFrom(from, count int) {
	lines := p.ScanLinesFrom(from, count)
	if len(lines) == 0 {
		return
	}
	var prev *ScanLine
	if from > 0 {
		prev = p.scanLine(from - 1)
	}
	for _, l := range lines {
		l.RemoveFilter(prev)
		prev = l
	}
}

// ApplyFilter filters every row with ft.
func (p *Png) ApplyFilter(ft FilterType) {
	p.ApplyFilterFrom(ft, 0, p.height())
}

// ApplyFilterFrom filters rows [from, from+count) with ft, bottom row first,
// each against the row physically above it in its current state.
func (p *Png) ApplyFilterFrom(ft FilterType, from, count int) {
	lines := p.ScanLinesFrom(from, count)
	for i := len(lines) - 1; i >= 0; i-- {
		var prev *ScanLine
		switch {
		case i > 0:
			prev = lines[i-1]
		case from > 0:
			prev = p.scanLine(from - 1)
		}
		lines[i].ApplyFilter(ft, prev)
	}
}

// Transpose swaps the count rows starting at src with the count rows
// starting at dst. Overlapping spans are allowed. Spans outside the image
// are a caller error and panic.
func (p *Png) Transpose(src, dst, count int) {
	w := p.header.ScanLineWidth()
	s0, s1 := src*w, (src+count)*w
	d0, d1 := dst*w, (dst+count)*w
	if s1-s0 != d1-d0 {
		panic("pngglitch: transpose spans differ in length")
	}
	if src < 0 || dst < 0 || count < 0 || s1 > len(p.data) || d1 > len(p.data) {
		panic(fmt.Sprintf("pngglitch: transpose of %d rows from %d to %d outside %d rows", count, src, dst, p.height()))
	}
	tmp := make([]byte, s1-s0)
	copy(tmp, p.data[s0:s1])
	copy(p.data[s0:s1], p.data[d0:d1])
	copy(p.data[d0:d1], tmp)
}

// RandomCopy copies a randomly chosen row over another randomly chosen row,
// filter tag included, times times. The rows are streamed through their
// ScanLine views, so the copy happens in whatever filter state they are in.
func (p *Png) RandomCopy(rng *rand.Rand, times int) error {
	h := p.height()
	if h == 0 {
		return nil
	}
	for i := 0; i < times; i++ {
		src, dst := p.scanLine(rng.Intn(h)), p.scanLine(rng.Intn(h))
		b, err := io.ReadAll(src)
		if err != nil {
			return errors.WithStack(err)
		}
		if _, err := dst.Write(b); err != nil {
			return errors.Wrapf(err, "copy %d", i)
		}
		dst.SetFilterType(src.FilterType())
	}
	return nil
}

// Encode writes the image as PNG with the default compression level.
func (p *Png) Encode(w io.Writer) error {
	return NewEncoder(DefaultCompression).Encode(w, p)
}

// WriteTo implements io.WriterTo.
func (p *Png) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := p.Encode(cw)
	return cw.n, err
}

// Bytes returns the image encoded as PNG.
func (p *Png) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
