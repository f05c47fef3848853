package svgrender

import (
	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgmarker"
	"github.com/benoitkugler/oksvgrender/svgpath"
)

func (p *pass) shape(n *svgdom.Node, ctm svgpath.Matrix2D, id uint32) (svgpath.Rect, error) {
	path, ok := svgpath.BuildPath(n)
	if !ok || path.IsEmpty() {
		return svgpath.Rect{}, nil
	}
	stroke, err := p.paints.Stroke(n)
	if err != nil {
		// invalid stroke parameters disable the whole element
		return svgpath.Rect{}, p.fail(n, err)
	}
	region, err := p.paintPath(n, path, path.Bounds(), ctm, id, stroke)
	if err != nil {
		return region, err
	}
	if n.Kind().HostsMarkers() {
		r, err := p.markers(n, path, ctm, id, stroke.Width)
		region = region.Union(r)
		if err != nil {
			return region, err
		}
	}
	return region, nil
}

func isNone(paint svgdraw.Paint) bool {
	_, ok := paint.(svgdraw.None)
	return ok || paint == nil
}

// resolvePaint returns None when the resolution fails.
func (p *pass) resolvePaint(n *svgdom.Node, prop string, bbox svgpath.Rect) (svgdraw.Paint, error) {
	paint, err := p.paints.Paint(n, prop, bbox)
	if err != nil {
		return svgdraw.None{}, p.fail(n, err)
	}
	return paint, nil
}

// paintPath fills then strokes path, given in the user space of n,
// and mirrors the operations on the hit surface.
// bbox is used by the objectBoundingBox paint units.
// It returns the device region covered.
func (p *pass) paintPath(n *svgdom.Node, path svgpath.Path, bbox svgpath.Rect, ctm svgpath.Matrix2D, id uint32, stroke svgdraw.StrokeOptions) (svgpath.Rect, error) {
	if n.Property("visibility") == "hidden" {
		return svgpath.Rect{}, nil
	}
	fill, err := p.resolvePaint(n, "fill", bbox)
	if err != nil {
		return svgpath.Rect{}, err
	}
	strokePaint, err := p.resolvePaint(n, "stroke", bbox)
	if err != nil {
		return svgpath.Rect{}, err
	}

	var region svgpath.Rect
	idColor := IDColor(id)
	if !isNone(fill) {
		p.padded(fill, func(paint svgdraw.Paint) { p.sink.FillPath(path, paint) })
		p.ids.FillPath(path, idColor)
		region = path.TransformedBounds(ctm)
	}
	if !isNone(strokePaint) && stroke.Width > 0 {
		p.padded(strokePaint, func(paint svgdraw.Paint) { p.sink.StrokePath(path, paint, stroke) })
		p.ids.StrokePath(path, idColor, stroke)
		b := path.Bounds()
		half := stroke.Width / 2
		b = svgpath.Rect{X: b.X - half, Y: b.Y - half, W: b.W + 2*half, H: b.H + 2*half}
		region = region.Union(b.Transform(ctm))
	}
	return region, nil
}

// padded calls draw with paint. A padded radial gradient is drawn inside
// its ellipse only, and its outer color outside of it, since concentric-ring
// brushes leave that area unpainted. Each point is painted once.
func (p *pass) padded(paint svgdraw.Paint, draw func(svgdraw.Paint)) {
	g, ok := paint.(*svgdraw.Gradient)
	if !ok || !g.Radial || g.Spread != svgdraw.PadSpread {
		draw(paint)
		return
	}
	ellipse := []svgpath.Path{g.Ellipse()}
	outer := svgdraw.Solid{Color: g.OuterColor(), Opacity: 0xff}
	for _, side := range [...]struct {
		op    svgdraw.ClipOp
		paint svgdraw.Paint
	}{
		{svgdraw.Exclude, outer},
		{svgdraw.Intersect, g},
	} {
		t := p.sink.BeginContainer()
		p.sink.SetClip(svgdraw.ClipRegion{Paths: ellipse, Op: side.op})
		draw(side.paint)
		p.sink.EndContainer(t)
	}
}

// markers renders the markers of the host n, painted with the host id.
func (p *pass) markers(n *svgdom.Node, path svgpath.Path, ctm svgpath.Matrix2D, id uint32, strokeWidth float64) (svgpath.Rect, error) {
	refs := svgmarker.ReadRefs(n)
	if refs.IsEmpty() {
		return svgpath.Rect{}, nil
	}
	var region svgpath.Rect
	for _, pl := range svgmarker.Place(path, refs, strokeWidth) {
		if err := p.guard.Enter(pl.Marker); err != nil {
			if err := p.fail(n, err); err != nil {
				return region, err
			}
			continue
		}
		r, err := p.marker(pl, ctm, id)
		p.guard.Leave()
		region = region.Union(r)
		if err != nil {
			return region, err
		}
	}
	return region, nil
}

// marker renders one placement as an independent sub-traversal.
func (p *pass) marker(pl svgmarker.Placement, ctm svgpath.Matrix2D, id uint32) (svgpath.Rect, error) {
	st, it := p.sink.BeginContainer(), p.ids.BeginContainer()
	defer func() {
		p.ids.EndContainer(it)
		p.sink.EndContainer(st)
	}()
	p.setTransform(ctm.Mult(pl.Viewport))
	if pl.Clipped {
		p.setClip(svgdraw.RectClip(pl.Clip))
	}
	content := ctm.Mult(pl.Transform)
	p.setTransform(content)

	mn := svgdom.NodeOf(pl.Marker)
	mn.SetViewport(pl.Units)
	sub := *p
	sub.hostID = id
	var region svgpath.Rect
	for _, c := range pl.Marker.Children {
		r, err := sub.render(mn.Child(c), content)
		region = region.Union(r)
		if err != nil {
			return region, err
		}
	}
	return region, nil
}
