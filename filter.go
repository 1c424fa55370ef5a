package pngglitch

// All arithmetic below is on uint8 and wraps modulo 256.
//
// Neighbors of byte i in cdat (the line) and pdat (the line above, nil for
// the first row) are
//
//	left    cdat[i-bpp]
//	up      pdat[i]
//	upLeft  pdat[i-bpp]
//
// and read as 0 when they fall outside the row or there is no row above.

func left(cdat []byte, i, bpp int) uint8 {
	if i < bpp {
		return 0
	}
	return cdat[i-bpp]
}

func up(pdat []byte, i int) uint8 {
	if i >= len(pdat) {
		return 0
	}
	return pdat[i]
}

func upLeft(pdat []byte, i, bpp int) uint8 {
	if i < bpp {
		return 0
	}
	return up(pdat, i-bpp)
}

func average(a, b uint8) uint8 {
	return uint8((int(a) + int(b)) / 2)
}

func rows(l, prev *ScanLine) (cdat, pdat []byte) {
	cdat = l.pix()
	if prev != nil {
		pdat = prev.pix()
	}
	return cdat, pdat
}

// reconstruct undoes l's filter in place. It walks left to right so that
// every left neighbor it reads has already been reconstructed; prev must
// likewise hold reconstructed bytes.
func reconstruct(l, prev *ScanLine) {
	cdat, pdat := rows(l, prev)
	bpp := l.BytesPerPixel()

	switch l.filterType {
	case FilterNone:
		// No-op.
	case FilterSub:
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += cdat[i-bpp]
		}
	case FilterUp:
		for i := range cdat {
			cdat[i] += up(pdat, i)
		}
	case FilterAverage:
		// The first pixel has no left neighbor.
		for i := 0; i < bpp && i < len(cdat); i++ {
			cdat[i] += up(pdat, i) / 2
		}
		for i := bpp; i < len(cdat); i++ {
			cdat[i] += average(cdat[i-bpp], up(pdat, i))
		}
	case FilterPaeth:
		for i := range cdat {
			cdat[i] += paeth(left(cdat, i, bpp), up(pdat, i), upLeft(pdat, i, bpp))
		}
	}
}

// filter applies ft to l in place. It walks right to left so that every left
// neighbor it reads is still unfiltered; prev must likewise hold unfiltered
// bytes.
func filter(ft FilterType, l, prev *ScanLine) {
	cdat, pdat := rows(l, prev)
	bpp := l.BytesPerPixel()

	switch ft {
	case FilterNone:
		// No-op.
	case FilterSub:
		for i := len(cdat) - 1; i >= bpp; i-- {
			cdat[i] -= cdat[i-bpp]
		}
	case FilterUp:
		for i := len(cdat) - 1; i >= 0; i-- {
			cdat[i] -= up(pdat, i)
		}
	case FilterAverage:
		for i := len(cdat) - 1; i >= 0; i-- {
			cdat[i] -= average(left(cdat, i, bpp), up(pdat, i))
		}
	case FilterPaeth:
		for i := len(cdat) - 1; i >= 0; i-- {
			cdat[i] -= paeth(left(cdat, i, bpp), up(pdat, i), upLeft(pdat, i, bpp))
		}
	}
}
