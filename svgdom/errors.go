package svgdom

import (
	"errors"
	"strings"
)

var (
	// ErrParamMismatch is returned for attributes with the wrong number of values.
	ErrParamMismatch = errors.New("svg: param mismatch")
	// ErrUnsupportedElement is returned in StrictErrorMode for unknown elements.
	ErrUnsupportedElement = errors.New("svg: cannot process svg element")
	// ErrEmptyDocument is returned when the input holds no element.
	ErrEmptyDocument = errors.New("svg: invalid svg xml document")
	// ErrInvalidLength is returned for unparsable lengths.
	ErrInvalidLength = errors.New("svg: invalid length")
)

// ErrorMode is the for setting how the renderer handles
// unsupported or invalid content.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unsupported content silently.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning and skips the content.
	WarnErrorMode
	// StrictErrorMode fails on the first problem.
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return "<unknown ErrorMode>"
	}
}

// ParseErrorMode accepts the values returned by String.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore", "":
		return IgnoreErrorMode, nil
	case "warn":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	}
	return 0, errors.New("svg: unknown error mode " + s)
}

// CyclicReferenceError is returned when following a reference
// (use, clip-path, pattern, marker or gradient template) leads back to
// an element already being processed, or nests too deeply.
type CyclicReferenceError struct {
	Chain []string // descriptions of the elements, outermost first
	Depth bool     // true when the depth bound was hit instead of a cycle
}

func (e *CyclicReferenceError) Error() string {
	if e.Depth {
		return "svg: reference depth exceeded: " + strings.Join(e.Chain, " -> ")
	}
	return "svg: cyclic reference: " + strings.Join(e.Chain, " -> ")
}
