package pngglitch

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Filter type, as defined by the PNG format.
type FilterType uint8

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
	nFilter
)

var filterNames = [nFilter]string{"None", "Sub", "Up", "Average", "Paeth"}

func (ft FilterType) String() string {
	if ft < nFilter {
		return filterNames[ft]
	}
	return fmt.Sprintf("FilterType(%d)", uint8(ft))
}

// ParseFilterType maps a filter name, case-insensitively, to its type.
func ParseFilterType(name string) (FilterType, error) {
	for i, n := range filterNames {
		if strings.EqualFold(n, name) {
			return FilterType(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidFilterType, "filter %q", name)
}

// A ScanLine is a view of one row of the decoded buffer: the filter tag byte
// followed by the row's pixel bytes. It holds indices into the buffer shared
// by every ScanLine of the same Png, so writes through it are writes to the
// image. Two ScanLines over overlapping rows must not be mutated in the same
// pass.
type ScanLine struct {
	filterType FilterType
	buf        []byte
	start, end int
	colorType  ColorType
	bitDepth   uint8

	rOff, wOff int
}

func newScanLine(buf []byte, start, end int, ct ColorType, depth uint8) *ScanLine {
	return &ScanLine{
		filterType: FilterType(buf[start]),
		buf:        buf,
		start:      start,
		end:        end,
		colorType:  ct,
		bitDepth:   depth,
	}
}

// pix returns the pixel bytes, capped so appends cannot reach the next row.
func (l *ScanLine) pix() []byte {
	return l.buf[l.start+1 : l.end : l.end]
}

// FilterType returns the filter type the line carried when the view was
// made, or the last one set through it.
func (l *ScanLine) FilterType() FilterType { return l.filterType }

// SetFilterType rewrites the tag byte without touching pixel data. Values
// outside None..Paeth are ignored.
func (l *ScanLine) SetFilterType(ft FilterType) {
	if ft >= nFilter {
		return
	}
	l.filterType = ft
	l.buf[l.start] = byte(ft)
}

// Size returns the number of pixel bytes, excluding the tag.
func (l *ScanLine) Size() int { return l.end - l.start - 1 }

func (l *ScanLine) ColorType() ColorType { return l.colorType }

func (l *ScanLine) BitDepth() uint8 { return l.bitDepth }

// BytesPerPixel returns the distance to the "left" neighbor used by the filters.
func (l *ScanLine) BytesPerPixel() int {
	return l.colorType.bytesPerPixel(l.bitDepth)
}

// Index returns the i-th pixel byte. ok is false when i is out of range.
func (l *ScanLine) Index(i int) (b byte, ok bool) {
	if i < 0 || i >= l.Size() {
		return 0, false
	}
	return l.buf[l.start+1+i], true
}

// Update sets the i-th pixel byte. Out of range indices are ignored.
func (l *ScanLine) Update(i int, v byte) {
	if i < 0 || i >= l.Size() {
		return
	}
	l.buf[l.start+1+i] = v
}

// Read copies pixel bytes from the read cursor onward.
func (l *ScanLine) Read(p []byte) (int, error) {
	pix := l.pix()
	if l.rOff >= len(pix) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, pix[l.rOff:])
	l.rOff += n
	return n, nil
}

// Write overwrites pixel bytes from the write cursor onward. Bytes that do
// not fit are dropped and io.ErrShortWrite is returned.
func (l *ScanLine) Write(p []byte) (int, error) {
	pix := l.pix()
	n := copy(pix[min(l.wOff, len(pix)):], p)
	l.wOff += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// Rewind moves both stream cursors back to the first pixel byte.
func (l *ScanLine) Rewind() {
	l.rOff, l.wOff = 0, 0
}

// RemoveFilter reconstructs the raw pixel bytes in place and tags the line
// None. prev is the line above, already reconstructed, or nil for the first
// row.
func (l *ScanLine) RemoveFilter(prev *ScanLine) {
	reconstruct(l, prev)
	l.SetFilterType(FilterNone)
}

// ApplyFilter filters the raw pixel bytes in place and tags the line ft.
// prev is the line above, still unfiltered, or nil for the first row.
func (l *ScanLine) ApplyFilter(ft FilterType, prev *ScanLine) {
	filter(ft, l, prev)
	l.SetFilterType(ft)
}
