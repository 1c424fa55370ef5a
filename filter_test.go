package pngglitch

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
)

var allFilters = []FilterType{FilterNone, FilterSub, FilterUp, FilterAverage, FilterPaeth}

var formats = []struct {
	ct     ColorType
	depths []uint8
}{
	{GrayScale, []uint8{1, 2, 4, 8, 16}},
	{TrueColor, []uint8{8, 16}},
	{IndexColor, []uint8{1, 2, 4, 8}},
	{GrayScaleAlpha, []uint8{8, 16}},
	{TrueColorAlpha, []uint8{8, 16}},
}

func TestFilterSubUnit(t *testing.T) {
	original := []byte{1, 0, 1, 2, 255, 1, 1, 1, 255}
	buf := append([]byte(nil), original...)
	l := newScanLine(buf, 0, len(buf), TrueColorAlpha, 8)
	if l.FilterType() != FilterSub {
		t.Fatalf("%v", l.FilterType())
	}
	filter(FilterSub, l, nil)
	if bytes.Equal(buf, original) {
		t.Fatalf("filter did nothing")
	}
	reconstruct(l, nil)
	if !bytes.Equal(buf, original) {
		t.Fatalf("%v", buf)
	}
}

func TestFilterKnownValues(t *testing.T) {
	// One gray 8 bit row of three pixels over a row above.
	prev := []byte{0, 10, 20, 30}
	raw := []byte{0, 15, 25, 5}
	tests := []struct {
		ft   FilterType
		want []byte
	}{
		{FilterNone, []byte{15, 25, 5}},
		{FilterSub, []byte{15, 10, 236}},
		{FilterUp, []byte{5, 5, 231}},
		// avg(0,10)=5, avg(15,20)=17, avg(25,30)=27
		{FilterAverage, []byte{10, 8, 234}},
		// paeth(0,10,0)=10, paeth(15,20,10)=20, paeth(25,30,20)=30
		{FilterPaeth, []byte{5, 5, 231}},
	}
	for _, tc := range tests {
		buf := append(append([]byte(nil), prev...), raw...)
		p := newScanLine(buf, 0, 4, GrayScale, 8)
		l := newScanLine(buf, 4, 8, GrayScale, 8)
		l.ApplyFilter(tc.ft, p)
		if l.FilterType() != tc.ft || buf[4] != byte(tc.ft) {
			t.Fatalf("%v: tag %d", tc.ft, buf[4])
		}
		if !bytes.Equal(buf[5:], tc.want) {
			t.Errorf("%v: got %v, want %v", tc.ft, buf[5:], tc.want)
		}
		l.RemoveFilter(p)
		if !bytes.Equal(buf[4:], raw) {
			t.Errorf("%v: reconstructed %v", tc.ft, buf[4:])
		}
	}
}

func TestPaeth(t *testing.T) {
	tests := []struct {
		a, b, c, want uint8
	}{
		{0, 0, 0, 0},
		// p=10: pa=0, pb=10, pc=10
		{10, 0, 0, 10},
		// p=10: pa=10, pb=0, pc=10
		{0, 10, 0, 10},
		// p=-10: pa=10, pb=10, pc=20; left wins the tie.
		{0, 0, 10, 0},
		// p=10: pa=pb=5, pc=10; left wins the tie.
		{5, 5, 0, 5},
		// p=5: pa=4, pb=pc=2; up wins the tie with up-left.
		{1, 7, 3, 7},
		// p=0: pa=255, pb=0, pc=255
		{255, 0, 255, 0},
		{100, 200, 150, 150},
	}
	for _, tc := range tests {
		if got := paeth(tc.a, tc.b, tc.c); got != tc.want {
			t.Errorf("paeth(%d, %d, %d) = %d, want %d", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}

// TestPaethNearest checks that the prediction is always the neighbor
// closest to a+b-c, with ties broken toward a, then b.
func TestPaethNearest(t *testing.T) {
	for a := 0; a < 256; a += 3 {
		for b := 0; b < 256; b += 5 {
			for c := 0; c < 256; c++ {
				est := a + b - c
				d := func(v int) int {
					if est > v {
						return est - v
					}
					return v - est
				}
				want := uint8(c)
				if d(b) <= d(c) {
					want = uint8(b)
				}
				if d(a) <= d(b) && d(a) <= d(c) {
					want = uint8(a)
				}
				if got := paeth(uint8(a), uint8(b), uint8(c)); got != want {
					t.Fatalf("paeth(%d, %d, %d) = %d, want %d", a, b, c, got, want)
				}
			}
		}
	}
}

func TestFilterRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, f := range formats {
		for _, depth := range f.depths {
			for _, ft := range allFilters {
				for _, w := range []uint32{1, 3, 8} {
					name := fmt.Sprintf("%v/%d/%v/w%d", f.ct, depth, ft, w)
					t.Run(name, func(t *testing.T) {
						const h = 4

						raw := randomData(rng, f.ct, depth, w, h, FilterNone)
						p := newTestPng(t, f.ct, depth, w, h, append([]byte(nil), raw...))
						p.ApplyFilter(ft)
						p.RemoveFilter()
						if !bytes.Equal(p.Data(), raw) {
							t.Fatalf("reconstruct(filter(x)) != x")
						}

						filtered := randomData(rng, f.ct, depth, w, h, ft)
						p = newTestPng(t, f.ct, depth, w, h, append([]byte(nil), filtered...))
						p.RemoveFilter()
						p.ApplyFilter(ft)
						if !bytes.Equal(p.Data(), filtered) {
							t.Fatalf("filter(reconstruct(x)) != x")
						}
					})
				}
			}
		}
	}
}

// TestFilterFirstRowNoUp checks that a missing row above reads as zeros.
func TestFilterFirstRowNoUp(t *testing.T) {
	for _, ft := range allFilters {
		zero := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		buf := []byte{0, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 255, 254}
		withZero := append(zero, buf...)
		sw := len(buf)

		a := newScanLine(buf, 0, sw, TrueColor, 8)
		a.ApplyFilter(ft, nil)

		above := newScanLine(withZero, 0, sw, TrueColor, 8)
		b := newScanLine(withZero, sw, 2*sw, TrueColor, 8)
		b.ApplyFilter(ft, above)

		if !bytes.Equal(buf, withZero[sw:]) {
			t.Errorf("%v: %v != %v", ft, buf, withZero[sw:])
		}
	}
}
