package pngglitch

// ErrorKind identifies which structural rule a PNG stream violated.
type ErrorKind int

const (
	InvalidSignature ErrorKind = iota + 1
	TooShortInput
	NoIHDRFound
	NoIENDFound
	NoIDATFound
	DuplicateIHDRFound
	DuplicateIENDFound
	InvalidChunkType
	InvalidColorType
	InvalidFilterType
	DeflateFailure
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidSignature:
		return "not a PNG file"
	case TooShortInput:
		return "truncated input"
	case NoIHDRFound:
		return "missing IHDR"
	case NoIENDFound:
		return "missing IEND"
	case NoIDATFound:
		return "missing IDAT"
	case DuplicateIHDRFound:
		return "duplicate IHDR"
	case DuplicateIENDFound:
		return "duplicate IEND"
	case InvalidChunkType:
		return "unexpected chunk type"
	case InvalidColorType:
		return "bad color type"
	case InvalidFilterType:
		return "bad filter type"
	case DeflateFailure:
		return "cannot inflate pixel data"
	}
	return "unknown"
}

// A FormatError reports that the input is not a valid PNG.
type FormatError struct {
	Kind ErrorKind
	// Chunk is the offending chunk. Only InvalidChunkType sets it.
	Chunk *Chunk
	// Err is the underlying cause, if any.
	Err error
}

func (e *FormatError) Error() string {
	msg := "pngglitch: invalid format: " + e.Kind.String()
	if e.Chunk != nil {
		msg += " " + e.Chunk.Type.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is matches any FormatError of the same kind, so the Err* values below work
// with errors.Is regardless of payload.
func (e *FormatError) Is(target error) bool {
	t, ok := target.(*FormatError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidSignature   = &FormatError{Kind: InvalidSignature}
	ErrTooShortInput      = &FormatError{Kind: TooShortInput}
	ErrNoIHDRFound        = &FormatError{Kind: NoIHDRFound}
	ErrNoIENDFound        = &FormatError{Kind: NoIENDFound}
	ErrNoIDATFound        = &FormatError{Kind: NoIDATFound}
	ErrDuplicateIHDRFound = &FormatError{Kind: DuplicateIHDRFound}
	ErrDuplicateIENDFound = &FormatError{Kind: DuplicateIENDFound}
	ErrInvalidChunkType   = &FormatError{Kind: InvalidChunkType}
	ErrInvalidColorType   = &FormatError{Kind: InvalidColorType}
	ErrInvalidFilterType  = &FormatError{Kind: InvalidFilterType}
	ErrDeflateFailure     = &FormatError{Kind: DeflateFailure}
)

// An UnsupportedError reports that the input uses a valid but unimplemented PNG feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "pngglitch: unsupported feature: " + string(e) }
