package svgrender

import (
	"context"
	"errors"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpaint"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgview"
	"github.com/charmbracelet/log"
)

// state is shared by a pass and its sub-traversals.
type state struct {
	r      *Renderer
	ctx    context.Context
	logger *log.Logger

	guard  *svgdom.RefGuard
	paints *svgpaint.Resolver
	clips  *svgview.Clipper

	prev, cur map[*svgdom.Element]svgpath.Rect
	invalid   svgpath.Rect
}

// pass is one traversal, writing to one pair of sinks.
// Markers and pattern tiles are rendered by sub-passes.
type pass struct {
	*state
	sink svgdraw.PaintSink
	ids  svgdraw.IdSink

	hostID uint32 // when not zero, used for every paint (marker content)
	tile   bool   // pattern content: no hit ids nor regions
	errs   *[]error
}

// fail handles an element level error. It returns a non nil error
// when the traversal must stop.
func (p *pass) fail(n *svgdom.Node, err error) error {
	var cycle *svgdom.CyclicReferenceError
	if errors.As(err, &cycle) {
		*p.errs = append(*p.errs, err)
		p.logger.Warn("skipping reference", "element", n.Element.Describe(), "err", err)
		if p.r.opts.ErrorMode == svgdom.StrictErrorMode {
			return err
		}
		return nil
	}
	switch p.r.opts.ErrorMode {
	case svgdom.StrictErrorMode:
		return err
	case svgdom.WarnErrorMode:
		p.logger.Warn("skipping element", "element", n.Element.Describe(), "err", err)
	}
	return nil
}

func (p *pass) hitID(e *svgdom.Element) uint32 {
	if p.hostID != 0 {
		return p.hostID
	}
	if p.tile {
		return 0
	}
	return p.r.allocate(e, p.state)
}

func (p *pass) setTransform(m svgpath.Matrix2D) {
	p.sink.SetTransform(m)
	p.ids.SetTransform(m)
}

func (p *pass) setClip(c svgdraw.ClipRegion) {
	p.sink.SetClip(c)
	p.ids.SetClip(c)
}

// needsRender is false when the element painted outside of the
// invalidated region during the previous pass.
func (p *pass) needsRender(e *svgdom.Element) bool {
	if p.tile || p.invalid.Empty() {
		return true
	}
	region, ok := p.prev[e]
	if !ok {
		return true
	}
	return p.invalid.Overlaps(region)
}

// record adds the device region painted by e.
func (p *pass) record(e *svgdom.Element, region svgpath.Rect) {
	if p.tile {
		return
	}
	p.cur[e] = p.cur[e].Union(region)
}

// carry keeps the regions of a skipped subtree.
func (p *pass) carry(e *svgdom.Element) {
	e.Walk(func(c *svgdom.Element) bool {
		if region, ok := p.prev[c]; ok {
			p.cur[c] = p.cur[c].Union(region)
		}
		return true
	})
}

// render runs the state machine of one element, whose parent
// user space is mapped to the device by parent.
// It returns the device region painted by the subtree.
func (p *pass) render(n *svgdom.Node, parent svgpath.Matrix2D) (svgpath.Rect, error) {
	if err := p.ctx.Err(); err != nil {
		return svgpath.Rect{}, err
	}
	e := n.Element
	switch e.Kind {
	case svgdom.KindCharData, svgdom.KindUnknown:
		return svgpath.Rect{}, nil
	}
	if n.Property("display") == "none" {
		return svgpath.Rect{}, nil
	}
	if !p.needsRender(e) {
		p.carry(e)
		return p.prev[e], nil
	}
	region, err := p.renderElement(n, parent)
	if err != nil {
		return region, err
	}
	p.record(e, region)
	return region, nil
}

// instantiated is true for symbols referenced by a <use>.
func instantiated(n *svgdom.Node) bool {
	return n.Kind() == svgdom.KindSymbol && n.Parent != nil && n.Parent.Kind() == svgdom.KindUse
}

// viewport returns the viewport established by n, in its user space,
// and the matrix fitting its content into it.
func (p *pass) viewport(n *svgdom.Node) (vp svgpath.Rect, fit svgpath.Matrix2D, ok bool) {
	switch {
	case n.Kind() == svgdom.KindSVG, instantiated(n):
	default:
		return svgpath.Rect{}, svgpath.Identity, false
	}

	var (
		vb    svgpath.Rect
		hasVB bool
	)
	if n.Parent == nil && n.Element == p.r.doc.Root {
		vp, vb, hasVB = p.r.rootViewport(n)
	} else {
		// percentages refer to the parent viewport until SetViewport
		vp = svgpath.Rect{
			X: n.Length("x", svgdom.X, 0),
			Y: n.Length("y", svgdom.Y, 0),
			W: n.Length("width", svgdom.X, n.Viewport().Width),
			H: n.Length("height", svgdom.Y, n.Viewport().Height),
		}
		if v, ok := n.Attr("viewBox"); ok {
			vb, hasVB = svgview.ParseViewBox(v)
		}
	}

	fit = svgpath.Identity.Translate(vp.X, vp.Y)
	n.SetViewport(svgdom.Viewport{Width: vp.W, Height: vp.H})
	if hasVB {
		par, _ := n.Attr("preserveAspectRatio")
		fit = svgview.ViewBoxFit(vb, vp, svgview.ParsePreserveAspectRatio(par)).Matrix()
		n.SetViewport(svgdom.Viewport{Width: vb.W, Height: vb.H})
	}
	return vp, fit, true
}

func renderingHints(n *svgdom.Node) svgdraw.RenderingHints {
	h := svgdraw.DefaultHints
	switch n.Property("shape-rendering") {
	case "crispEdges", "optimizeSpeed":
		h.Antialias = false
	}
	if n.Property("text-rendering") == "optimizeSpeed" {
		h.TextAntialias = false
	}
	if n.Property("color-rendering") == "optimizeSpeed" {
		h.HighQualityColor = false
	}
	return h
}

func (p *pass) renderElement(n *svgdom.Node, parent svgpath.Matrix2D) (svgpath.Rect, error) {
	// BeforeRender
	id := p.hitID(n.Element)
	st, it := p.sink.BeginContainer(), p.ids.BeginContainer()
	defer func() {
		// AfterRender
		p.ids.EndContainer(it)
		p.sink.EndContainer(st)
	}()
	p.sink.SetRenderingHints(renderingHints(n))

	m := parent.Mult(svgview.LocalTransform(n, "transform"))
	if n.Kind() == svgdom.KindUse {
		m = m.Translate(n.Length("x", svgdom.X, 0), n.Length("y", svgdom.Y, 0))
	}
	p.setTransform(m)

	vp, fit, isViewport := p.viewport(n)
	if isViewport {
		if clip, ok := svgview.OverflowClip(n, vp); ok {
			p.setClip(svgdraw.RectClip(clip))
		}
	}
	if err := p.applyClipPath(n); err != nil {
		// a cyclic clip-path disables the element
		return svgpath.Rect{}, p.fail(n, err)
	}
	ctm := m
	if isViewport {
		ctm = m.Mult(fit)
		p.setTransform(ctm)
	}

	// Render
	hint := n.Kind().Hint()
	if instantiated(n) {
		hint = svgdom.HintContainment
	}
	switch hint {
	case svgdom.HintShape:
		return p.shape(n, ctm, id)
	case svgdom.HintText:
		return p.text(n, ctm, id)
	case svgdom.HintImage:
		return p.image(n, ctm, id)
	case svgdom.HintContainment:
		return p.children(n, ctm)
	case svgdom.HintMasking:
		p.logger.Debug("mask is not supported", "element", n.Element.Describe())
	case svgdom.HintNone, svgdom.HintClipping:
	}
	return svgpath.Rect{}, nil
}

// applyClipPath sets the clip-path of n, if any.
func (p *pass) applyClipPath(n *svgdom.Node) error {
	if n.Property("clip-path") == "none" {
		return nil
	}
	region, ok, err := p.clips.ClipPath(n, p.objectBBox(n))
	if err != nil || !ok {
		return err
	}
	p.setClip(region)
	return nil
}

// children renders the children of a container, in user space ctm.
func (p *pass) children(n *svgdom.Node, ctm svgpath.Matrix2D) (svgpath.Rect, error) {
	switch n.Kind() {
	case svgdom.KindUse:
		return p.use(n, ctm)
	case svgdom.KindSwitch:
		for _, c := range n.Element.Children {
			if c.Kind == svgdom.KindCharData {
				continue
			}
			if p.conditionsPass(c) {
				return p.render(n.Child(c), ctm)
			}
		}
		return svgpath.Rect{}, nil
	}
	var region svgpath.Rect
	for _, c := range n.Element.Children {
		r, err := p.render(n.Child(c), ctm)
		if err != nil {
			return region, err
		}
		region = region.Union(r)
	}
	return region, nil
}

// use renders the referenced element as a child of n.
// The x/y translation has already been applied to ctm.
func (p *pass) use(n *svgdom.Node, ctm svgpath.Matrix2D) (svgpath.Rect, error) {
	target := n.Resolve(n.Href())
	if target == nil {
		return svgpath.Rect{}, nil
	}
	if err := p.guard.Enter(target); err != nil {
		return svgpath.Rect{}, p.fail(n, err)
	}
	defer p.guard.Leave()

	tn := n.Child(target)
	if target.Kind == svgdom.KindSymbol || target.Kind == svgdom.KindSVG {
		var sizes []svgdom.Attr
		for _, name := range [...]string{"width", "height"} {
			if v, ok := n.Attr(name); ok {
				sizes = append(sizes, svgdom.Attr{Name: name, Value: v})
			}
		}
		tn = tn.WithOverrides(sizes...)
	}
	return p.render(tn, ctm)
}

// objectBBox returns the bounding box of the geometry of n,
// in its user space, stroke excluded.
func (p *pass) objectBBox(n *svgdom.Node) svgpath.Rect {
	switch n.Kind().Hint() {
	case svgdom.HintShape:
		path, _ := svgpath.BuildPath(n)
		return path.Bounds()
	case svgdom.HintText:
		var out svgpath.Rect
		for _, run := range p.layoutText(n) {
			out = out.Union(run.path.Bounds())
		}
		return out
	case svgdom.HintImage:
		return svgpath.Rect{
			X: n.Length("x", svgdom.X, 0), Y: n.Length("y", svgdom.Y, 0),
			W: n.Length("width", svgdom.X, 0), H: n.Length("height", svgdom.Y, 0),
		}
	case svgdom.HintContainment:
		var out svgpath.Rect
		if n.Kind() == svgdom.KindUse {
			target := n.Resolve(n.Href())
			if target == nil || p.guard.Active(target) {
				return out
			}
			if p.guard.Enter(target) != nil {
				return out
			}
			defer p.guard.Leave()
			tn := n.Child(target)
			m := svgpath.Identity.Translate(n.Length("x", svgdom.X, 0), n.Length("y", svgdom.Y, 0)).
				Mult(svgview.LocalTransform(tn, "transform"))
			return p.objectBBox(tn).Transform(m)
		}
		for _, c := range n.Element.Children {
			if c.Kind == svgdom.KindCharData {
				continue
			}
			cn := n.Child(c)
			if cn.Property("display") == "none" {
				continue
			}
			out = out.Union(p.objectBBox(cn).Transform(svgview.LocalTransform(cn, "transform")))
		}
		return out
	}
	return svgpath.Rect{}
}
