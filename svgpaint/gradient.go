package svgpaint

import (
	"math"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgview"
)

func isGradient(k svgdom.Kind) bool {
	return k == svgdom.KindLinearGradient || k == svgdom.KindRadialGradient
}

func isStop(k svgdom.Kind) bool { return k == svgdom.KindStop }

// bboxMatrix maps the unit square to bbox.
func bboxMatrix(bbox svgpath.Rect) svgpath.Matrix2D {
	return svgpath.Identity.Translate(bbox.X, bbox.Y).Scale(bbox.W, bbox.H)
}

// gradientCoord reads a gradient coordinate: a fraction of the bounding box
// under objectBoundingBox, or a length in the user space of the host n.
func gradientCoord(t template, n *svgdom.Node, name, def string, obb bool, axis svgdom.Axis) float64 {
	v, ok := t.attr(name)
	if !ok {
		v = def
	}
	if obb {
		f, err := parseFraction(v)
		if err != nil {
			f, _ = parseFraction(def)
		}
		return f
	}
	f, err := n.ResolveLength(v, axis)
	if err != nil {
		f, _ = n.ResolveLength(def, axis)
	}
	return f
}

// parseFraction parses a number or a percentage, without clamping.
func parseFraction(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err := svgdom.ParseNumber(v)
	return f / d, err
}

func parseSpread(v string) svgdraw.SpreadMethod {
	switch v {
	case "reflect":
		return svgdraw.ReflectSpread
	case "repeat":
		return svgdraw.RepeatSpread
	default:
		return svgdraw.PadSpread
	}
}

// gradient resolves a linear or radial gradient referenced by the host n.
// It returns nil for gradients which cannot paint, such as objectBoundingBox
// gradients applied to an empty box.
func (r *Resolver) gradient(n *svgdom.Node, e *svgdom.Element, bbox svgpath.Rect, opacity float64) (svgdraw.Paint, error) {
	t, err := r.templateOf(e, isGradient)
	if err != nil {
		return nil, err
	}

	var stops []svgdraw.Stop
	if holder := t.withChildren(isStop); holder != nil {
		stops = readStops(holder)
	}
	stops = NormalizeStops(stops)

	units, _ := t.attr("gradientUnits")
	obb := units != "userSpaceOnUse"
	if obb && (bbox.W <= 0 || bbox.H <= 0) {
		return nil, nil
	}
	spreadAttr, _ := t.attr("spreadMethod")

	matrix := svgpath.Identity
	if v, ok := t.attr("gradientTransform"); ok {
		if m, err := svgview.ParseTransform(v); err == nil {
			matrix = m
		}
	}

	g := &svgdraw.Gradient{
		Stops:   stops,
		Spread:  parseSpread(spreadAttr),
		Opacity: toAlpha(opacity),
		Radial:  e.Kind == svgdom.KindRadialGradient,
	}
	if g.Radial {
		if !radialGeometry(g, t, n, bbox, obb, matrix) {
			// a zero radius paints the last stop color
			return svgdraw.Solid{Color: stops[len(stops)-1].Color, Opacity: g.Opacity}, nil
		}
		return g, nil
	}
	linearGeometry(g, t, n, bbox, obb, matrix)
	return g, nil
}

// linearGeometry sets the axis, the direction and the brush of g.
func linearGeometry(g *svgdraw.Gradient, t template, n *svgdom.Node, bbox svgpath.Rect, obb bool, transform svgpath.Matrix2D) {
	x1 := gradientCoord(t, n, "x1", "0%", obb, svgdom.X)
	y1 := gradientCoord(t, n, "y1", "0%", obb, svgdom.Y)
	x2 := gradientCoord(t, n, "x2", "100%", obb, svgdom.X)
	y2 := gradientCoord(t, n, "y2", "0%", obb, svgdom.Y)

	g.Matrix = transform
	// coordinates larger than 1 are considered as given in user space
	if obb && x1 <= 1 && x2 <= 1 && y1 <= 1 && y2 <= 1 {
		b := bboxMatrix(bbox)
		p1, p2 := b.Apply(svgpath.Point{X: x1, Y: y1}), b.Apply(svgpath.Point{X: x2, Y: y2})
		x1, y1, x2, y2 = p1.X, p1.Y, p2.X, p2.Y
		if inv, ok := b.Invert(); ok {
			g.Matrix = b.Mult(transform).Mult(inv)
		}
	}
	g.Start = svgpath.Point{X: x1, Y: y1}
	g.End = svgpath.Point{X: x2, Y: y2}

	if g.Spread == svgdraw.PadSpread {
		padRemap(g, bbox)
	}
	g.Direction = classify(g.Start, g.End)
	g.Brush = brushRect(g.Start, g.End, bbox)
}

func classify(start, end svgpath.Point) svgdraw.LinearDirection {
	switch {
	case start.Y == end.Y:
		return svgdraw.Horizontal
	case start.X == end.X:
		return svgdraw.Vertical
	case end.X > start.X:
		return svgdraw.ForwardDiagonal
	default:
		return svgdraw.BackwardDiagonal
	}
}

// brushRect returns the rectangle spanned by the axis, degenerate
// extents being replaced by the bounding box ones.
func brushRect(start, end svgpath.Point, bbox svgpath.Rect) svgpath.Rect {
	out := svgpath.Rect{
		X: math.Min(start.X, end.X), Y: math.Min(start.Y, end.Y),
		W: math.Abs(end.X - start.X), H: math.Abs(end.Y - start.Y),
	}
	if out.W <= 0 {
		out.X, out.W = bbox.X, bbox.W
	}
	if out.H <= 0 {
		out.Y, out.H = bbox.Y, bbox.H
	}
	return out
}

// padRemap extends the axis of a pad gradient so that it covers
// the whole bounding box, remapping the stops and repeating the
// boundary colors at the new ends. The colors rendered are unchanged,
// but brushes without pad support may use the axis directly.
func padRemap(g *svgdraw.Gradient, bbox svgpath.Rect) {
	inv, ok := g.Matrix.Invert()
	d := g.End.Sub(g.Start)
	l2 := d.X*d.X + d.Y*d.Y
	if !ok || l2 == 0 || bbox.Empty() {
		return
	}
	lo, hi := 0., 1.
	for _, c := range bbox.Corners() {
		v := inv.Apply(c).Sub(g.Start)
		t := (v.X*d.X + v.Y*d.Y) / l2
		lo, hi = math.Min(lo, t), math.Max(hi, t)
	}
	const eps = 1e-9
	if lo > -eps && hi < 1+eps {
		return
	}
	span := hi - lo
	stops := make([]svgdraw.Stop, 0, len(g.Stops)+2)
	if lo < 0 {
		stops = append(stops, svgdraw.Stop{Offset: 0, Color: g.Stops[0].Color})
	}
	for _, s := range g.Stops {
		stops = append(stops, svgdraw.Stop{Offset: (s.Offset - lo) / span, Color: s.Color})
	}
	if hi > 1 {
		stops = append(stops, svgdraw.Stop{Offset: 1, Color: g.Stops[len(g.Stops)-1].Color})
	}
	g.Stops = stops
	g.Start, g.End = g.Start.Add(d.Scale(lo)), g.Start.Add(d.Scale(hi))
}

// radialGeometry sets the center, focus and radii of g.
// It returns false for a zero radius.
func radialGeometry(g *svgdraw.Gradient, t template, n *svgdom.Node, bbox svgpath.Rect, obb bool, transform svgpath.Matrix2D) bool {
	cx := gradientCoord(t, n, "cx", "50%", obb, svgdom.X)
	cy := gradientCoord(t, n, "cy", "50%", obb, svgdom.Y)
	rad := gradientCoord(t, n, "r", "50%", obb, svgdom.Diagonal)
	fx, fy := cx, cy
	if _, ok := t.attr("fx"); ok {
		fx = gradientCoord(t, n, "fx", "50%", obb, svgdom.X)
	}
	if _, ok := t.attr("fy"); ok {
		fy = gradientCoord(t, n, "fy", "50%", obb, svgdom.Y)
	}
	if rad <= 0 {
		return false
	}

	g.Matrix = transform
	g.Center = svgpath.Point{X: cx, Y: cy}
	g.Focus = svgpath.Point{X: fx, Y: fy}
	g.RX, g.RY = rad, rad
	if obb {
		// the circle becomes an ellipse inscribed in the box
		b := bboxMatrix(bbox)
		g.Center, g.Focus = b.Apply(g.Center), b.Apply(g.Focus)
		g.RX, g.RY = rad*bbox.W, rad*bbox.H
		if inv, ok := b.Invert(); ok {
			g.Matrix = b.Mult(transform).Mult(inv)
		}
	}
	return true
}
