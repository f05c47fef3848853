package svgdom

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// Axis selects the viewport dimension percentages refer to.
type Axis uint8

const (
	X Axis = iota
	Y
	// Diagonal is the normalized diagonal, sqrt((w²+h²)/2).
	Diagonal
)

const mediumFontSize = 16

var fontSizeKeywords = map[string]float64{
	"xx-small": 9,
	"x-small":  10,
	"small":    13,
	"medium":   mediumFontSize,
	"large":    18,
	"x-large":  24,
	"xx-large": 32,
}

// unit factors to user units (pixels at 96 dpi)
var absoluteUnits = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 4.0 / 3,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// ParseNumber parses a number, rejecting trailing garbage.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	f, n := strconv.ParseFloat([]byte(s))
	if n == 0 || n != len(s) {
		return 0, fmt.Errorf("svg: invalid number %q", s)
	}
	return f, nil
}

// resolveLength converts s to user units, using the em size for
// em/ex units and the viewport for percentages.
func resolveLength(s string, axis Axis, em float64, vp Viewport) (float64, error) {
	s = strings.TrimSpace(s)
	v, n := strconv.ParseFloat([]byte(s))
	if n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLength, s)
	}
	unit := strings.ToLower(strings.TrimSpace(s[n:]))
	if f, ok := absoluteUnits[unit]; ok {
		return v * f, nil
	}
	switch unit {
	case "em":
		return v * em, nil
	case "ex":
		return v * em / 2, nil
	case "%":
		var ref float64
		switch axis {
		case X:
			ref = vp.Width
		case Y:
			ref = vp.Height
		default:
			ref = math.Sqrt((vp.Width*vp.Width + vp.Height*vp.Height) / 2)
		}
		return v * ref / 100, nil
	}
	return 0, fmt.Errorf("%w: unknown unit in %q", ErrInvalidLength, s)
}

// ResolveLength converts s to user units in the context of n.
func (n *Node) ResolveLength(s string, axis Axis) (float64, error) {
	return resolveLength(s, axis, n.FontSize(), n.Viewport())
}

// Length returns the named attribute as a length in user units,
// or def if it is missing or invalid.
func (n *Node) Length(name string, axis Axis, def float64) float64 {
	v, ok := n.Attr(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	out, err := n.ResolveLength(v, axis)
	if err != nil {
		return def
	}
	return out
}

// PropertyLength is like Length, for a CSS property.
func (n *Node) PropertyLength(name string, axis Axis, def float64) float64 {
	v := n.Property(name)
	if strings.TrimSpace(v) == "" {
		return def
	}
	out, err := n.ResolveLength(v, axis)
	if err != nil {
		return def
	}
	return out
}

// Number returns the named attribute as a plain number, or def.
func (n *Node) Number(name string, def float64) float64 {
	v, ok := n.Attr(name)
	if !ok {
		return def
	}
	f, err := ParseNumber(v)
	if err != nil {
		return def
	}
	return f
}

// FontSize returns the computed font size, in user units.
// Relative sizes refer to the parent font size.
func (n *Node) FontSize() float64 {
	parent := float64(mediumFontSize)
	var parentValue string
	if n.Parent != nil {
		parent = n.Parent.FontSize()
		parentValue = n.Parent.Property("font-size")
	}
	v := strings.TrimSpace(n.Property("font-size"))
	if n.Parent != nil && v == parentValue {
		// inherited value, already resolved
		return parent
	}
	if f, ok := fontSizeKeywords[v]; ok {
		return f
	}
	switch v {
	case "larger":
		return parent * 1.2
	case "smaller":
		return parent / 1.2
	}
	if strings.HasSuffix(v, "%") {
		num, err := ParseNumber(strings.TrimSuffix(v, "%"))
		if err != nil || num <= 0 {
			return parent
		}
		return parent * num / 100
	}
	vp := DefaultViewport
	if n.Parent != nil {
		vp = n.Parent.Viewport()
	}
	f, err := resolveLength(v, Diagonal, parent, vp)
	if err != nil || f <= 0 {
		return parent
	}
	return f
}
