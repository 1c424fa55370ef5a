package pngglitch

import (
	"bufio"
	"os"

	"github.com/pkg/errors"
)

// Open reads and parses the PNG file at path.
func Open(path string) (*Png, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// Save encodes the image to the file at path, replacing it if it exists.
func (p *Png) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := p.Encode(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(f.Close())
}
