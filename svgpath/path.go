// Implements an abstract representation of
// svg paths, which can then be consumed
// by painting sinks.
package svgpath

import (
	"math"
	"strconv"
	"strings"
)

// Point is a position or a vector in user space.
type Point struct{ X, Y float64 }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }

func (p Point) near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// Rect defines a bounding box, such as a viewport
// or a path extent.
type Rect struct{ X, Y, W, H float64 }

// Empty is true if the rectangle has no area.
func (r Rect) Empty() bool { return !(r.W > 0 && r.H > 0) }

// Max returns the bottom right corner.
func (r Rect) Max() Point { return Point{r.X + r.W, r.Y + r.H} }

// Intersect returns the intersection of r and s, which
// may be empty.
func (r Rect) Intersect(s Rect) Rect {
	x0, y0 := math.Max(r.X, s.X), math.Max(r.Y, s.Y)
	x1, y1 := math.Min(r.X+r.W, s.X+s.W), math.Min(r.Y+r.H, s.Y+s.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Overlaps is true if r and s share some area.
func (r Rect) Overlaps(s Rect) bool { return !r.Intersect(s).Empty() }

// Union returns the smallest rectangle containing r and s.
// Empty rectangles are ignored.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	x0, y0 := math.Min(r.X, s.X), math.Min(r.Y, s.Y)
	x1, y1 := math.Max(r.X+r.W, s.X+s.W), math.Max(r.Y+r.H, s.Y+s.H)
	return Rect{x0, y0, x1 - x0, y1 - y0}
}

// Contains reports whether p is inside r.
func (r Rect) Contains(p Point) bool {
	return r.X <= p.X && p.X < r.X+r.W && r.Y <= p.Y && p.Y < r.Y+r.H
}

// Corners returns the four corners, clockwise from the top left one.
func (r Rect) Corners() [4]Point {
	return [4]Point{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}
}

// Transform returns the bounding box of the transformed rectangle.
func (r Rect) Transform(m Matrix2D) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range r.Corners() {
		c = m.Apply(c)
		minX, minY = math.Min(minX, c.X), math.Min(minY, c.Y)
		maxX, maxY = math.Max(maxX, c.X), math.Max(maxY, c.Y)
	}
	return Rect{minX, minY, maxX - minX, maxY - minY}
}

type segmentKind uint8

// Human readable segment constants
const (
	segMoveTo segmentKind = iota
	segLineTo
	segCubicTo
	segArcTo
	segClose
)

// Segment groups the different path commands.
// The set of implementations is closed.
type Segment interface {
	kind() segmentKind
}

type MoveTo Point

type LineTo Point

type CubicTo struct{ C1, C2, End Point }

// ArcTo is an elliptical arc, in center parameterization:
// the point at parameter eta is
// Center + Rotate(Rotation) * (RX cos eta, RY sin eta).
// Angles are in radians; the arc spans [Start, Start+Sweep].
type ArcTo struct {
	Center       Point
	RX, RY       float64
	Rotation     float64
	Start, Sweep float64
}

type Close struct{}

func (MoveTo) kind() segmentKind  { return segMoveTo }
func (LineTo) kind() segmentKind  { return segLineTo }
func (CubicTo) kind() segmentKind { return segCubicTo }
func (ArcTo) kind() segmentKind   { return segArcTo }
func (Close) kind() segmentKind   { return segClose }

// PointAt returns the point of parameter eta.
func (a ArcTo) PointAt(eta float64) Point {
	sin, cos := math.Sincos(a.Rotation)
	x, y := ellipsePointAt(a.RX, a.RY, sin, cos, eta, a.Center.X, a.Center.Y)
	return Point{x, y}
}

// StartPoint returns the first point of the arc.
func (a ArcTo) StartPoint() Point { return a.PointAt(a.Start) }

// EndPoint returns the last point of the arc.
func (a ArcTo) EndPoint() Point { return a.PointAt(a.Start + a.Sweep) }

// FillRule selects how the inside of a path is computed.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (f FillRule) String() string {
	if f == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

// ParseFillRule interprets a fill-rule or clip-rule value.
func ParseFillRule(s string) FillRule {
	if strings.TrimSpace(s) == "evenodd" {
		return EvenOdd
	}
	return NonZero
}

// Path describes a sequence of basic SVG segments.
// Higher-level shapes are reduced to a path.
type Path struct {
	Segments []Segment
	FillRule FillRule
}

// Walker receives the segments of a path, with arcs
// already converted to cubic Bézier curves.
type Walker interface {
	MoveTo(p Point)
	LineTo(p Point)
	CubicTo(c1, c2, end Point)
	Close()
}

// MoveTo starts a new sub-path at the given point.
func (p *Path) MoveTo(a Point) { p.Segments = append(p.Segments, MoveTo(a)) }

// LineTo adds a linear segment to the current sub-path.
func (p *Path) LineTo(b Point) { p.Segments = append(p.Segments, LineTo(b)) }

// CubicTo adds a cubic segment to the current sub-path.
func (p *Path) CubicTo(c1, c2, end Point) {
	p.Segments = append(p.Segments, CubicTo{C1: c1, C2: c2, End: end})
}

// ArcTo adds an elliptical arc. Its start point is
// assumed to be the current point.
func (p *Path) ArcTo(a ArcTo) { p.Segments = append(p.Segments, a) }

// Close joins the current sub-path back to its start.
func (p *Path) Close() { p.Segments = append(p.Segments, Close{}) }

// IsEmpty is true if the path has no drawing segment.
func (p Path) IsEmpty() bool {
	for _, s := range p.Segments {
		if s.kind() != segMoveTo {
			return false
		}
	}
	return true
}

// Walk sends the path, transformed by m, to w.
// Arcs are approximated by cubic curves.
func (p Path) Walk(w Walker, m Matrix2D) {
	for _, seg := range p.Segments {
		switch seg := seg.(type) {
		case MoveTo:
			w.MoveTo(m.Apply(Point(seg)))
		case LineTo:
			w.LineTo(m.Apply(Point(seg)))
		case CubicTo:
			w.CubicTo(m.Apply(seg.C1), m.Apply(seg.C2), m.Apply(seg.End))
		case ArcTo:
			for _, c := range seg.cubics() {
				w.CubicTo(m.Apply(c.C1), m.Apply(c.C2), m.Apply(c.End))
			}
		case Close:
			w.Close()
		}
	}
}

// Transform returns the path transformed by m. Arcs are kept
// when m preserves circles and orientation, and converted to cubics otherwise.
func (p Path) Transform(m Matrix2D) Path {
	if m.IsIdentity() {
		return p
	}
	out := Path{FillRule: p.FillRule, Segments: make([]Segment, 0, len(p.Segments))}
	similar := m.A == m.D && m.B == -m.C && m.Det() > 0
	for _, seg := range p.Segments {
		switch seg := seg.(type) {
		case MoveTo:
			out.MoveTo(m.Apply(Point(seg)))
		case LineTo:
			out.LineTo(m.Apply(Point(seg)))
		case CubicTo:
			out.CubicTo(m.Apply(seg.C1), m.Apply(seg.C2), m.Apply(seg.End))
		case ArcTo:
			if similar {
				s := m.ScaleFactor()
				seg.Center = m.Apply(seg.Center)
				seg.RX *= s
				seg.RY *= s
				seg.Rotation += math.Atan2(m.B, m.A)
				out.ArcTo(seg)
				continue
			}
			for _, c := range seg.cubics() {
				out.CubicTo(m.Apply(c.C1), m.Apply(c.C2), m.Apply(c.End))
			}
		case Close:
			out.Close()
		}
	}
	return out
}

// Flatten returns the path with arcs converted to cubics.
func (p Path) Flatten() Path {
	out := Path{FillRule: p.FillRule}
	p.Walk(&out, Identity)
	return out
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPoint(p Point) string {
	return formatFloat(p.X) + "," + formatFloat(p.Y)
}

// String returns the SVG path data of p.
func (p Path) String() string {
	chunks := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		switch seg := seg.(type) {
		case MoveTo:
			chunks[i] = "M" + formatPoint(Point(seg))
		case LineTo:
			chunks[i] = "L" + formatPoint(Point(seg))
		case CubicTo:
			chunks[i] = "C" + formatPoint(seg.C1) + " " + formatPoint(seg.C2) + " " + formatPoint(seg.End)
		case ArcTo:
			chunks[i] = seg.svgData()
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}
