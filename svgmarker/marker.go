// Package svgmarker places the markers referenced by a shape
// on the vertices of its path.
package svgmarker

import (
	"math"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgview"
)

// Position selects the vertices a marker is placed on.
type Position uint8

const (
	Start Position = iota // first vertex
	Mid                   // every vertex but the first and the last
	End                   // last vertex
)

func (p Position) String() string {
	switch p {
	case Start:
		return "start"
	case Mid:
		return "mid"
	case End:
		return "end"
	default:
		return "<unknown Position>"
	}
}

// Refs are the markers used by a shape, nil for none.
type Refs struct {
	Start, Mid, End *svgdom.Element
}

// IsEmpty returns true if no marker is used.
func (r Refs) IsEmpty() bool { return r.Start == nil && r.Mid == nil && r.End == nil }

// ReadRefs resolves the marker-start, marker-mid and marker-end properties
// of n, the marker shorthand being used for the positions left to none.
func ReadRefs(n *svgdom.Node) Refs {
	shorthand := n.Property("marker")
	resolve := func(name string) *svgdom.Element {
		v := n.Property(name)
		if v == "" || v == "none" {
			v = shorthand
		}
		ref, _, ok := svgdom.SplitURL(v)
		if !ok {
			return nil
		}
		e := n.Resolve(ref)
		if e == nil || e.Kind != svgdom.KindMarker {
			return nil
		}
		return e
	}
	return Refs{
		Start: resolve("marker-start"),
		Mid:   resolve("marker-mid"),
		End:   resolve("marker-end"),
	}
}

// Placement is one marker instance.
type Placement struct {
	Position Position
	Marker   *svgdom.Element
	Vertex   svgpath.Point
	Angle    float64 // orientation, in radians

	// Viewport maps the marker viewport, whose rectangle is Clip,
	// to the user space of the host.
	Viewport svgpath.Matrix2D
	// Transform maps the marker content to the user space of the host.
	Transform svgpath.Matrix2D

	Clip    svgpath.Rect // in the marker viewport space
	Clipped bool

	// Units resolves the percentages of the marker content:
	// the viewBox size, or the marker size.
	Units svgdom.Viewport
}

// Bisect returns the bisector of the incoming and outgoing directions
// (in radians), choosing the shorter arc between them.
// The result is in (-π, π].
func Bisect(in, out float64) float64 {
	return normalize(in + normalize(out-in)/2)
}

// normalize maps an angle into (-π, π].
func normalize(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// tangent returns the orientation of a vertex for orient="auto".
func tangent(v svgpath.Vertex) float64 {
	switch {
	case v.HasIn && v.HasOut:
		return Bisect(v.In, v.Out)
	case v.HasOut:
		return v.Out
	default:
		return v.In
	}
}

// markerDef is the geometry of a marker element.
type markerDef struct {
	size       svgpath.Rect // marker viewport
	fit        svgview.Fit
	ref        svgpath.Point
	strokeSc   bool
	orient     string
	clip       svgpath.Rect
	clipped    bool
	units      svgdom.Viewport
	renderable bool
}

func readMarker(e *svgdom.Element) markerDef {
	n := svgdom.NodeOf(e)
	var d markerDef
	d.size = svgpath.Rect{
		W: n.Length("markerWidth", svgdom.X, 3),
		H: n.Length("markerHeight", svgdom.Y, 3),
	}
	if d.size.W <= 0 || d.size.H <= 0 {
		return d
	}
	d.renderable = true
	d.fit = svgview.Fit{SX: 1, SY: 1}
	d.units = svgdom.Viewport{Width: d.size.W, Height: d.size.H}
	if v, ok := n.Attr("viewBox"); ok {
		if vb, ok := svgview.ParseViewBox(v); ok {
			par, _ := n.Attr("preserveAspectRatio")
			d.fit = svgview.ViewBoxFit(vb, d.size, svgview.ParsePreserveAspectRatio(par))
			d.units = svgdom.Viewport{Width: vb.W, Height: vb.H}
		}
	}
	d.ref = svgpath.Point{X: n.Length("refX", svgdom.X, 0), Y: n.Length("refY", svgdom.Y, 0)}
	units, _ := n.Attr("markerUnits")
	d.strokeSc = units != "userSpaceOnUse"
	d.orient, _ = n.Attr("orient")
	d.orient = strings.TrimSpace(d.orient)
	d.clip, d.clipped = svgview.OverflowClip(n, d.size)
	return d
}

// parseAngle parses an orient angle, in degrees by default.
func parseAngle(s string) float64 {
	factor := math.Pi / 180
	for _, u := range [...]struct {
		suffix string
		factor float64
	}{
		{"deg", math.Pi / 180},
		{"grad", math.Pi / 200},
		{"rad", 1},
		{"turn", 2 * math.Pi},
	} {
		if strings.HasSuffix(s, u.suffix) {
			s, factor = strings.TrimSuffix(s, u.suffix), u.factor
			break
		}
	}
	f, err := svgdom.ParseNumber(s)
	if err != nil {
		return 0
	}
	return f * factor
}

// Place computes the marker instances of the host path,
// whose stroke width is used by markerUnits="strokeWidth".
// Markers with a non positive width or height are skipped.
func Place(p svgpath.Path, refs Refs, strokeWidth float64) []Placement {
	if refs.IsEmpty() {
		return nil
	}
	vertices := p.Vertices()
	if len(vertices) == 0 {
		return nil
	}
	defs := map[*svgdom.Element]markerDef{}
	def := func(e *svgdom.Element) markerDef {
		d, ok := defs[e]
		if !ok {
			d = readMarker(e)
			defs[e] = d
		}
		return d
	}

	var out []Placement
	place := func(pos Position, e *svgdom.Element, v svgpath.Vertex) {
		if e == nil {
			return
		}
		d := def(e)
		if !d.renderable {
			return
		}
		var angle float64
		switch d.orient {
		case "auto":
			angle = tangent(v)
		case "auto-start-reverse":
			angle = tangent(v)
			if pos == Start {
				angle += math.Pi
			}
		default:
			angle = parseAngle(d.orient)
		}
		scale := 1.
		if d.strokeSc {
			scale = strokeWidth
		}
		refInViewport := d.fit.Matrix().Apply(d.ref)
		viewport := svgpath.Identity.Translate(v.X, v.Y).
			Rotate(angle).
			Scale(scale, scale).
			Translate(-refInViewport.X, -refInViewport.Y)
		out = append(out, Placement{
			Position:  pos,
			Marker:    e,
			Vertex:    v.Point,
			Angle:     angle,
			Viewport:  viewport,
			Transform: viewport.Mult(d.fit.Matrix()),
			Clip:      d.clip,
			Clipped:   d.clipped,
			Units:     d.units,
		})
	}

	place(Start, refs.Start, vertices[0])
	for i := 1; i < len(vertices)-1; i++ {
		place(Mid, refs.Mid, vertices[i])
	}
	place(End, refs.End, vertices[len(vertices)-1])
	return out
}
