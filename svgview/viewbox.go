package svgview

import (
	"math"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgpath"
)

// ParseViewBox parses the viewBox attribute. ok is false
// for malformed values and for non positive dimensions.
func ParseViewBox(s string) (vb svgpath.Rect, ok bool) {
	nums := svgpath.ParseNumbers(s)
	if len(nums) != 4 || nums[2] <= 0 || nums[3] <= 0 {
		return svgpath.Rect{}, false
	}
	return svgpath.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}, true
}

// Align is the alignment part of preserveAspectRatio.
type Align uint8

const (
	AlignNone Align = iota
	XMinYMin
	XMidYMin
	XMaxYMin
	XMinYMid
	XMidYMid
	XMaxYMid
	XMinYMax
	XMidYMax
	XMaxYMax
)

var alignNames = [...]string{
	AlignNone: "none",
	XMinYMin:  "xMinYMin",
	XMidYMin:  "xMidYMin",
	XMaxYMin:  "xMaxYMin",
	XMinYMid:  "xMinYMid",
	XMidYMid:  "xMidYMid",
	XMaxYMid:  "xMaxYMid",
	XMinYMax:  "xMinYMax",
	XMidYMax:  "xMidYMax",
	XMaxYMax:  "xMaxYMax",
}

func (a Align) String() string {
	if int(a) < len(alignNames) {
		return alignNames[a]
	}
	return "<unknown Align>"
}

// factors returns the position of the aligned point,
// 0 for min, 0.5 for mid and 1 for max.
func (a Align) factors() (fx, fy float64) {
	if a == AlignNone || int(a) >= len(alignNames) {
		return 0, 0
	}
	i := int(a) - 1
	return float64(i%3) / 2, float64(i/3) / 2
}

// PreserveAspectRatio is the parsed preserveAspectRatio attribute.
type PreserveAspectRatio struct {
	Align Align
	Slice bool // false for meet
}

// DefaultAspectRatio is the initial value, "xMidYMid meet".
var DefaultAspectRatio = PreserveAspectRatio{Align: XMidYMid}

// ParsePreserveAspectRatio parses s, returning DefaultAspectRatio
// for an empty or invalid value. The defer keyword is ignored.
func ParsePreserveAspectRatio(s string) PreserveAspectRatio {
	fields := strings.Fields(s)
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return DefaultAspectRatio
	}
	out := PreserveAspectRatio{Align: 255}
	for a, name := range alignNames {
		if fields[0] == name {
			out.Align = Align(a)
			break
		}
	}
	if out.Align == 255 {
		return DefaultAspectRatio
	}
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return DefaultAspectRatio
		}
	}
	return out
}

// Fit maps viewBox coordinates p to viewport coordinates
// (p.X * SX + TX, p.Y * SY + TY).
type Fit struct {
	TX, TY float64
	SX, SY float64
}

// Matrix returns the fit as an affine transform.
func (f Fit) Matrix() svgpath.Matrix2D {
	return svgpath.Matrix2D{A: f.SX, D: f.SY, E: f.TX, F: f.TY}
}

// ViewBoxFit computes the mapping of viewBox into viewport.
// With AlignNone, each axis is scaled independently; otherwise the
// uniform scale is the smaller (meet) or larger (slice) of the two
// ratios and the aligned points of both rectangles coincide.
func ViewBoxFit(viewBox, viewport svgpath.Rect, par PreserveAspectRatio) Fit {
	if viewBox.W <= 0 || viewBox.H <= 0 {
		return Fit{TX: viewport.X, TY: viewport.Y, SX: 1, SY: 1}
	}
	sx, sy := viewport.W/viewBox.W, viewport.H/viewBox.H
	if par.Align == AlignNone {
		return Fit{
			TX: viewport.X - viewBox.X*sx,
			TY: viewport.Y - viewBox.Y*sy,
			SX: sx, SY: sy,
		}
	}
	s := math.Min(sx, sy)
	if par.Slice {
		s = math.Max(sx, sy)
	}
	fx, fy := par.Align.factors()
	return Fit{
		TX: viewport.X - viewBox.X*s + fx*(viewport.W-viewBox.W*s),
		TY: viewport.Y - viewBox.Y*s + fy*(viewport.H-viewBox.H*s),
		SX: s, SY: s,
	}
}
