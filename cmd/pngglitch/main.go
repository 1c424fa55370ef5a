// Command pngglitch edits the filtered scanlines of PNG files.
//
//	pngglitch info in.png
//	pngglitch remove in.png out.png
//	pngglitch apply -filter paeth [-from N -lines N] in.png out.png
//	pngglitch transpose -src N -dst N -lines N in.png out.png
//	pngglitch copy -times N [-seed S] in.png out.png
//	pngglitch glitch in.png out.png
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/fumin/pngglitch"
)

const usage = `Usage:
  pngglitch info <in.png>
  pngglitch remove [-from N -lines N] <in.png> <out.png>
  pngglitch apply -filter none|sub|up|average|paeth [-from N -lines N] <in.png> <out.png>
  pngglitch transpose -src N -dst N -lines N <in.png> <out.png>
  pngglitch copy -times N [-seed S] <in.png> <out.png>
  pngglitch glitch <in.png> <out.png>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pngglitch:", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	verbose := fs.Bool("v", false, "log debug output to stderr")
	from := fs.Int("from", 0, "first scanline")
	lines := fs.Int("lines", -1, "number of scanlines, -1 for all")
	filterName := fs.String("filter", "", "filter type to apply")
	src := fs.Int("src", 0, "first scanline of the source block")
	dst := fs.Int("dst", 0, "first scanline of the destination block")
	times := fs.Int("times", 1, "number of random row copies")
	seed := fs.Int64("seed", 0, "random seed, 0 for the current time")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *verbose {
		pngglitch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	want := 2
	if cmd == "info" {
		want = 1
	}
	if fs.NArg() != want {
		return fmt.Errorf("%s takes %d file arguments\n%s", cmd, want, usage)
	}
	p, err := pngglitch.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	count := *lines
	if count < 0 {
		count = int(p.Height())
	}

	switch cmd {
	case "info":
		return info(stdout, p)
	case "remove":
		p.RemoveFilterFrom(*from, count)
	case "apply":
		ft, err := pngglitch.ParseFilterType(*filterName)
		if err != nil {
			return err
		}
		p.ApplyFilterFrom(ft, *from, count)
	case "transpose":
		if *lines < 0 {
			return fmt.Errorf("transpose needs -lines")
		}
		if *src < 0 || *dst < 0 || *src+count > int(p.Height()) || *dst+count > int(p.Height()) {
			return fmt.Errorf("blocks of %d lines at %d and %d do not fit in %d lines", count, *src, *dst, p.Height())
		}
		p.Transpose(*src, *dst, count)
	case "copy":
		if *times < 0 {
			return fmt.Errorf("copy needs a non-negative -times")
		}
		if *seed == 0 {
			*seed = time.Now().UnixNano()
		}
		if err := p.RandomCopy(rand.New(rand.NewSource(*seed)), *times); err != nil {
			return err
		}
	case "glitch":
		glitch(p)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return p.Save(fs.Arg(1))
}

func info(w io.Writer, p *pngglitch.Png) error {
	fmt.Fprintf(w, "%dx%d %v, bit depth %d\n", p.Width(), p.Height(), p.ColorType(), p.BitDepth())
	for _, c := range p.Chunks() {
		fmt.Fprintf(w, "chunk %s (%d bytes) critical=%v crc ok=%v\n", c.Type, c.Len(), c.Type.Critical(), c.ChecksumValid())
	}
	counts := map[pngglitch.FilterType]int{}
	p.ForEachScanLine(func(l *pngglitch.ScanLine) {
		counts[l.FilterType()]++
	})
	for ft := pngglitch.FilterNone; ft <= pngglitch.FilterPaeth; ft++ {
		fmt.Fprintf(w, "%-8v %d\n", ft, counts[ft])
	}
	return nil
}

// glitch moves a block down the image, re-filters it with Paeth after
// zeroing each row's first byte, then Sub-filters a band and removes the
// zeros from it.
func glitch(p *pngglitch.Png) {
	h := int(p.Height())
	p.RemoveFilter()

	src := h / 3
	dst := src * 2
	n := h / 4
	if n == 0 {
		return
	}
	p.Transpose(src, dst, n)
	p.ApplyFilterFrom(pngglitch.FilterPaeth, dst, n)
	for _, l := range p.ScanLinesFrom(dst, n) {
		l.Update(0, 0)
	}

	band := h / 5 * 2
	p.ApplyFilterFrom(pngglitch.FilterSub, band, n)
	for _, l := range p.ScanLinesFrom(band, n) {
		for i := 0; i < l.Size(); i++ {
			if b, _ := l.Index(i); b == 0 {
				l.Update(i, 1)
			}
		}
	}
}
