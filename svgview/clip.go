package svgview

import (
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
)

// OverflowClip returns the clip rectangle applied to the content of n,
// whose viewport is given in the user space of n.
// Elements establishing a viewport are clipped unless overflow is
// visible or auto; the CSS clip property moves the non auto edges.
func OverflowClip(n *svgdom.Node, viewport svgpath.Rect) (svgpath.Rect, bool) {
	switch n.Property("overflow") {
	case "":
		if !n.Kind().EstablishesViewport() {
			return svgpath.Rect{}, false
		}
	case "hidden", "scroll":
	default: // visible, auto, inherit from a non viewport
		return svgpath.Rect{}, false
	}

	out := viewport
	clip := strings.TrimSpace(n.Property("clip"))
	if !strings.HasPrefix(clip, "rect(") || !strings.HasSuffix(clip, ")") {
		return out, true
	}
	edges := strings.FieldsFunc(clip[len("rect("):len(clip)-1], func(r rune) bool {
		return r == ',' || r == ' '
	})
	if len(edges) != 4 {
		return out, true
	}
	axes := [4]svgdom.Axis{svgdom.Y, svgdom.X, svgdom.Y, svgdom.X}
	var values [4]float64
	var auto [4]bool
	for i, e := range edges {
		if e == "auto" {
			auto[i] = true
			continue
		}
		v, err := n.ResolveLength(e, axes[i])
		if err != nil {
			auto[i] = true
			continue
		}
		values[i] = v
	}
	// top, right, bottom, left, measured from the top left corner
	x0, y0, x1, y1 := viewport.X, viewport.Y, viewport.X+viewport.W, viewport.Y+viewport.H
	if !auto[0] {
		y0 = viewport.Y + values[0]
	}
	if !auto[1] {
		x1 = viewport.X + values[1]
	}
	if !auto[2] {
		y1 = viewport.Y + values[2]
	}
	if !auto[3] {
		x0 = viewport.X + values[3]
	}
	out = svgpath.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
	if out.W < 0 {
		out.W = 0
	}
	if out.H < 0 {
		out.H = 0
	}
	return out, true
}

// Clipper resolves clip-path references. Its Guard is shared with
// the other reference resolutions of a traversal.
type Clipper struct {
	Guard *svgdom.RefGuard
}

// ClipPath returns the region referenced by the clip-path property of n,
// in the user space of n. bbox is the bounding box of n, used by
// clipPathUnits="objectBoundingBox".
// ok is false when n is not clipped, including for dangling references.
// An empty clipPath returns a region clipping everything.
func (c *Clipper) ClipPath(n *svgdom.Node, bbox svgpath.Rect) (region svgdraw.ClipRegion, ok bool, err error) {
	ref, _, isURL := svgdom.SplitURL(n.Property("clip-path"))
	if !isURL {
		return svgdraw.ClipRegion{}, false, nil
	}
	e := n.Resolve(ref)
	if e == nil || e.Kind != svgdom.KindClipPath {
		return svgdraw.ClipRegion{}, false, nil
	}
	if c.Guard == nil {
		c.Guard = svgdom.NewRefGuard(0)
	}
	if err := c.Guard.Enter(e); err != nil {
		return svgdraw.ClipRegion{}, false, err
	}
	defer c.Guard.Leave()

	cn := svgdom.NodeOf(e)
	cn.SetViewport(n.Viewport())

	m := LocalTransform(cn, "transform")
	if units, _ := cn.Attr("clipPathUnits"); units == "objectBoundingBox" {
		if bbox.Empty() {
			return svgdraw.ClipRegion{Op: svgdraw.Intersect}, true, nil
		}
		m = m.Translate(bbox.X, bbox.Y).Scale(bbox.W, bbox.H)
	}

	region.Op = svgdraw.Intersect
	for _, child := range e.Children {
		paths, err := c.clipChild(cn.Child(child), m)
		if err != nil {
			return svgdraw.ClipRegion{}, false, err
		}
		region.Paths = append(region.Paths, paths...)
	}
	return region, true, nil
}

// clipChild returns the paths contributed by one child of a clipPath.
// Text children are not supported.
func (c *Clipper) clipChild(n *svgdom.Node, m svgpath.Matrix2D) ([]svgpath.Path, error) {
	if n.Property("display") == "none" || n.Property("visibility") == "hidden" {
		return nil, nil
	}
	m = m.Mult(LocalTransform(n, "transform"))
	if n.Kind() != svgdom.KindUse {
		p, ok := clipShape(n)
		if !ok || p.IsEmpty() {
			return nil, nil
		}
		return []svgpath.Path{p.Transform(m)}, nil
	}

	// one level of <use>, pointing to a shape
	target := n.Resolve(n.Href())
	if target == nil {
		return nil, nil
	}
	if err := c.Guard.Enter(target); err != nil {
		return nil, err
	}
	defer c.Guard.Leave()
	m = m.Translate(n.Length("x", svgdom.X, 0), n.Length("y", svgdom.Y, 0))
	tn := n.Child(target)
	p, ok := clipShape(tn)
	if !ok || p.IsEmpty() {
		return nil, nil
	}
	return []svgpath.Path{p.Transform(m.Mult(LocalTransform(tn, "transform")))}, nil
}

// clipShape is svgpath.BuildPath, restricted to shape elements.
func clipShape(n *svgdom.Node) (svgpath.Path, bool) {
	if n.Kind().Hint() != svgdom.HintShape {
		return svgpath.Path{}, false
	}
	return svgpath.BuildPath(n)
}
