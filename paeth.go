package pngglitch

// paeth predicts a byte from its left (a), up (b) and up-left (c)
// neighbors: the estimate a+b-c is compared against each neighbor and the
// nearest wins. Ties go to a, then b.
func paeth(a, b, c uint8) uint8 {
	est := int(a) + int(b) - int(c)
	da := distance(est, a)
	db := distance(est, b)
	dc := distance(est, c)
	switch {
	case da <= db && da <= dc:
		return a
	case db <= dc:
		return b
	}
	return c
}

func distance(est int, v uint8) int {
	d := est - int(v)
	if d < 0 {
		return -d
	}
	return d
}
