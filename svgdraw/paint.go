package svgdraw

import (
	"image/color"
	"math"

	"github.com/benoitkugler/oksvgrender/svgpath"
)

// Paint is either None, Solid, *Gradient or *Pattern.
type Paint interface {
	isPaint()
}

func (None) isPaint()      {}
func (Solid) isPaint()     {}
func (*Gradient) isPaint() {}
func (*Pattern) isPaint()  {}

// None paints nothing.
type None struct{}

// Solid is a plain color. Opacity is applied on top of
// the color alpha.
type Solid struct {
	Color   color.NRGBA
	Opacity uint8
}

// NRGBA returns the color with the opacity folded into its alpha.
func (s Solid) NRGBA() color.NRGBA {
	c := s.Color
	c.A = mulAlpha(c.A, s.Opacity)
	return c
}

func mulAlpha(a, b uint8) uint8 {
	return uint8((uint32(a)*uint32(b) + 127) / 255)
}

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

func (s SpreadMethod) String() string {
	switch s {
	case PadSpread:
		return "pad"
	case ReflectSpread:
		return "reflect"
	case RepeatSpread:
		return "repeat"
	default:
		return "<unknown SpreadMethod>"
	}
}

// LinearDirection classifies the axis of a linear gradient,
// for backends with specialized brushes.
type LinearDirection uint8

const (
	Horizontal LinearDirection = iota
	Vertical
	ForwardDiagonal  // top left to bottom right
	BackwardDiagonal // top right to bottom left
)

func (d LinearDirection) String() string {
	switch d {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	case ForwardDiagonal:
		return "ForwardDiagonal"
	case BackwardDiagonal:
		return "BackwardDiagonal"
	default:
		return "<unknown LinearDirection>"
	}
}

// Stop is a color stop of a gradient, with its offset in [0,1].
// Color includes the stop-opacity.
type Stop struct {
	Offset float64
	Color  color.NRGBA
}

// Gradient holds a resolved SVG gradient.
// Geometry is expressed in gradient space, mapped to user space by Matrix.
// Stops are sorted, and start at offset 0 and end at offset 1.
type Gradient struct {
	Stops   []Stop
	Spread  SpreadMethod
	Radial  bool
	Matrix  svgpath.Matrix2D
	Opacity uint8

	// linear geometry
	Start, End svgpath.Point
	Direction  LinearDirection
	Brush      svgpath.Rect // rectangle covered by the brush, in user space

	// radial geometry
	Center, Focus svgpath.Point
	RX, RY        float64
}

// Pattern is a tile repeated over the plane.
// Matrix maps pattern space, where the tile is Tile, to user space.
// Content draws one tile, in pattern space.
type Pattern struct {
	Tile    svgpath.Rect
	Matrix  svgpath.Matrix2D
	Opacity uint8
	Content func(sink PaintSink) error
}

// ConcentricStops returns the stops in the order expected by
// concentric-ring brushes, whose position 0 lies on the outer boundary:
// reversed, with 1 - offset.
func (g *Gradient) ConcentricStops() []Stop {
	out := make([]Stop, len(g.Stops))
	for i, s := range g.Stops {
		out[len(out)-1-i] = Stop{Offset: 1 - s.Offset, Color: s.Color}
	}
	return out
}

// Ellipse returns the boundary of a radial gradient, in user space.
func (g *Gradient) Ellipse() svgpath.Path {
	return svgpath.EllipsePath(g.Center, g.RX, g.RY).Transform(g.Matrix)
}

// OuterColor returns the color at offset 1, opacity included.
func (g *Gradient) OuterColor() color.NRGBA {
	if len(g.Stops) == 0 {
		return color.NRGBA{}
	}
	c := g.Stops[len(g.Stops)-1].Color
	c.A = mulAlpha(c.A, g.Opacity)
	return c
}

// Evaluator returns a function computing the color at a point of
// user space. It is cheaper than calling ColorAt in a loop.
func (g *Gradient) Evaluator() func(p svgpath.Point) color.NRGBA {
	inv, ok := g.Matrix.Invert()
	if !ok {
		c := g.OuterColor()
		return func(svgpath.Point) color.NRGBA { return c }
	}
	param := g.linearParam
	if g.Radial {
		param = g.radialParam()
	}
	return func(p svgpath.Point) color.NRGBA {
		t := spread(param(inv.Apply(p)), g.Spread)
		c := g.stopColor(t)
		c.A = mulAlpha(c.A, g.Opacity)
		return c
	}
}

// ColorAt returns the color at the point p of user space.
func (g *Gradient) ColorAt(p svgpath.Point) color.NRGBA {
	return g.Evaluator()(p)
}

func (g *Gradient) linearParam(q svgpath.Point) float64 {
	d := g.End.Sub(g.Start)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return 1
	}
	v := q.Sub(g.Start)
	return (v.X*d.X + v.Y*d.Y) / l2
}

// radialParam works in the space where the gradient ellipse
// is the unit circle: the point q lies on the circle of center
// f + t(c - f) and radius t.
func (g *Gradient) radialParam() func(q svgpath.Point) float64 {
	rx, ry := g.RX, g.RY
	if rx <= 0 || ry <= 0 {
		return func(svgpath.Point) float64 { return 1 }
	}
	norm := func(p svgpath.Point) svgpath.Point {
		return svgpath.Point{X: (p.X - g.Center.X) / rx, Y: (p.Y - g.Center.Y) / ry}
	}
	f := norm(g.Focus)
	// keep the focus strictly inside the circle
	const maxFocus = 0.99
	if l := f.Len(); l > maxFocus {
		f = f.Scale(maxFocus / l)
	}
	e := f.Scale(-1) // center minus focus
	a := e.X*e.X + e.Y*e.Y - 1
	return func(q svgpath.Point) float64 {
		d := norm(q).Sub(f)
		dd := d.X*d.X + d.Y*d.Y
		if dd == 0 {
			return 0
		}
		de := d.X*e.X + d.Y*e.Y
		return (de - math.Sqrt(de*de-a*dd)) / a
	}
}

func spread(t float64, s SpreadMethod) float64 {
	switch s {
	case RepeatSpread:
		t -= math.Floor(t)
	case ReflectSpread:
		t = math.Mod(math.Abs(t), 2)
		if t > 1 {
			t = 2 - t
		}
	default:
		t = math.Max(0, math.Min(1, t))
	}
	return t
}

// stopColor interpolates the stops at t in [0, 1].
func (g *Gradient) stopColor(t float64) color.NRGBA {
	stops := g.Stops
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		s0, s1 := stops[i-1], stops[i]
		if t > s1.Offset {
			continue
		}
		span := s1.Offset - s0.Offset
		if span <= 0 {
			return s1.Color
		}
		return lerpColor(s0.Color, s1.Color, (t-s0.Offset)/span)
	}
	return stops[len(stops)-1].Color
}

func lerpColor(a, b color.NRGBA, f float64) color.NRGBA {
	l := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.NRGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: l(a.A, b.A)}
}

// MeanColor returns the average of the stop colors, opacity included,
// for backends without gradient support.
func (g *Gradient) MeanColor() color.NRGBA {
	if len(g.Stops) == 0 {
		return color.NRGBA{}
	}
	var r, gr, b, a float64
	for _, s := range g.Stops {
		r += float64(s.Color.R)
		gr += float64(s.Color.G)
		b += float64(s.Color.B)
		a += float64(s.Color.A)
	}
	n := float64(len(g.Stops))
	c := color.NRGBA{
		R: uint8(math.Round(r / n)), G: uint8(math.Round(gr / n)),
		B: uint8(math.Round(b / n)), A: uint8(math.Round(a / n)),
	}
	c.A = mulAlpha(c.A, g.Opacity)
	return c
}
