package svgpaint

import (
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
)

// TileRenderer draws the content of a pattern tile.
// content maps the pattern content space to the tile space.
type TileRenderer interface {
	RenderTile(sink svgdraw.PaintSink, pattern *svgdom.Node, content svgpath.Matrix2D) error
}

// Resolver resolves paint properties. Its Guard is shared
// with the other reference resolutions of a traversal.
// Tiles may be nil, in which case patterns resolve to their fallback.
type Resolver struct {
	Guard *svgdom.RefGuard
	Tiles TileRenderer
}

func (r *Resolver) guard() *svgdom.RefGuard {
	if r.Guard == nil {
		r.Guard = svgdom.NewRefGuard(0)
	}
	return r.Guard
}

// Paint resolves the property prop ("fill" or "stroke") of n.
// bbox is the bounding box of the painted geometry, in the user space of n,
// used by the objectBoundingBox units.
// Dangling references resolve to the fallback color, or None:
// the only possible error is a *svgdom.CyclicReferenceError.
func (r *Resolver) Paint(n *svgdom.Node, prop string, bbox svgpath.Rect) (svgdraw.Paint, error) {
	opacity := GroupOpacity(n) * parseOpacity(n.Property(prop+"-opacity"))
	v := strings.TrimSpace(n.Property(prop))

	if ref, fallback, ok := svgdom.SplitURL(v); ok {
		paint, err := r.server(n, ref, bbox, opacity)
		if err != nil || paint != nil {
			return paint, err
		}
		if fallback == "" {
			return svgdraw.None{}, nil
		}
		v = fallback
	}
	return r.direct(n, prop, v, opacity), nil
}

// direct resolves a color or none.
func (r *Resolver) direct(n *svgdom.Node, prop, v string, opacity float64) svgdraw.Paint {
	if v == "none" || v == "" {
		return svgdraw.None{}
	}
	c, ok := resolveColor(n, v)
	if !ok {
		if doc := n.Document(); doc != nil {
			doc.Logger().Warn("invalid paint", "element", n.Element.Describe(), "property", prop, "value", v)
		}
		return svgdraw.None{}
	}
	return svgdraw.Solid{Color: c, Opacity: toAlpha(opacity)}
}

// server resolves a paint server reference, returning nil
// for dangling references and servers which cannot paint.
func (r *Resolver) server(n *svgdom.Node, ref string, bbox svgpath.Rect, opacity float64) (svgdraw.Paint, error) {
	e := n.Resolve(ref)
	if e == nil {
		return nil, nil
	}
	switch e.Kind {
	case svgdom.KindLinearGradient, svgdom.KindRadialGradient:
		return r.gradient(n, e, bbox, opacity)
	case svgdom.KindPattern:
		return r.pattern(n, e, bbox, opacity)
	}
	return nil, nil
}

// GroupOpacity returns the product of the opacity
// properties along the chain of n.
func GroupOpacity(n *svgdom.Node) float64 {
	op := 1.
	for c := n; c != nil; c = c.Parent {
		if c.Element == nil {
			continue
		}
		op *= parseOpacity(c.Property("opacity"))
	}
	return op
}

// template is a paint server with its href chain,
// nearest first.
type template []*svgdom.Element

// templateOf follows the href chain of e, restricted to
// elements of the accepted kinds.
func (r *Resolver) templateOf(e *svgdom.Element, accept func(svgdom.Kind) bool) (template, error) {
	g := r.guard()
	out := template{e}
	if err := g.Enter(e); err != nil {
		return nil, err
	}
	defer func() {
		for range out {
			g.Leave()
		}
	}()
	for cur := e; ; {
		href, _ := cur.Attr("href")
		if href == "" {
			return out, nil
		}
		next := cur.Document().Resolve(href)
		if next == nil || !accept(next.Kind) {
			return out, nil
		}
		if err := g.Enter(next); err != nil {
			return nil, err
		}
		out = append(out, next)
		cur = next
	}
}

// attr returns the first definition of the attribute along the chain.
func (t template) attr(name string) (string, bool) {
	for _, e := range t {
		if v, ok := e.Attr(name); ok {
			return v, true
		}
	}
	return "", false
}

// withChildren returns the first element of the chain having
// children of kind accepted by keep.
func (t template) withChildren(keep func(svgdom.Kind) bool) *svgdom.Element {
	for _, e := range t {
		for _, c := range e.Children {
			if keep(c.Kind) {
				return e
			}
		}
	}
	return nil
}
