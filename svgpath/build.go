package svgpath

import (
	"github.com/benoitkugler/oksvgrender/svgdom"
)

// BuildPath returns the geometry of a shape element, in its user space.
// It returns false for elements which are not shapes.
// Shapes with invalid or zero dimensions produce an empty path.
func BuildPath(n *svgdom.Node) (Path, bool) {
	var p Path
	switch n.Kind() {
	case svgdom.KindRect:
		r := Rect{
			X: n.Length("x", svgdom.X, 0),
			Y: n.Length("y", svgdom.Y, 0),
			W: n.Length("width", svgdom.X, 0),
			H: n.Length("height", svgdom.Y, 0),
		}
		if r.W > 0 && r.H > 0 {
			p = RectPath(r, n.Length("rx", svgdom.X, 0), n.Length("ry", svgdom.Y, 0))
		}
	case svgdom.KindCircle:
		c := Point{n.Length("cx", svgdom.X, 0), n.Length("cy", svgdom.Y, 0)}
		if r := n.Length("r", svgdom.Diagonal, 0); r > 0 {
			p = EllipsePath(c, r, r)
		}
	case svgdom.KindEllipse:
		c := Point{n.Length("cx", svgdom.X, 0), n.Length("cy", svgdom.Y, 0)}
		rx, ry := n.Length("rx", svgdom.X, 0), n.Length("ry", svgdom.Y, 0)
		if rx > 0 && ry > 0 {
			p = EllipsePath(c, rx, ry)
		}
	case svgdom.KindLine:
		p.MoveTo(Point{n.Length("x1", svgdom.X, 0), n.Length("y1", svgdom.Y, 0)})
		p.LineTo(Point{n.Length("x2", svgdom.X, 0), n.Length("y2", svgdom.Y, 0)})
	case svgdom.KindPolyline, svgdom.KindPolygon:
		points, _ := n.Attr("points")
		coords := ParseNumbers(points)
		if len(coords)%2 == 1 {
			coords = coords[:len(coords)-1]
		}
		for i := 0; i+1 < len(coords); i += 2 {
			pt := Point{coords[i], coords[i+1]}
			if i == 0 {
				p.MoveTo(pt)
			} else {
				p.LineTo(pt)
			}
		}
		if n.Kind() == svgdom.KindPolygon && len(coords) > 0 {
			p.Close()
		}
	case svgdom.KindPath:
		d, _ := n.Attr("d")
		p = ParsePathData(d)
	default:
		return Path{}, false
	}

	rule := "fill-rule"
	if inClipPath(n) {
		rule = "clip-rule"
	}
	p.FillRule = ParseFillRule(n.Property(rule))
	return p, true
}

func inClipPath(n *svgdom.Node) bool {
	for c := n.Parent; c != nil; c = c.Parent {
		if c.Kind() == svgdom.KindClipPath {
			return true
		}
	}
	return false
}
