// Package svgrender walks a parsed SVG document and emits its paint
// operations to a svgdraw.PaintSink, mirrored with flat hit colors
// on a svgdraw.IdSink so that pointer positions can be mapped back to
// the elements.
//
// A Renderer is bound to one document. It owns the hit id allocator
// and the screen regions used to skip clean elements on repaint, and must
// not be used by several goroutines at the same time.
package svgrender

import (
	"context"
	"errors"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpaint"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgview"
)

// Renderer renders a document.
type Renderer struct {
	doc  *svgdom.Document
	opts Options

	// hit ids
	nextID    uint32
	ids       map[*svgdom.Element]uint32
	elements  map[uint32]*svgdom.Element
	exhausted bool

	// regions[front] holds the device regions painted by the previous
	// pass, regions[1-front] is written by the current one
	regions [2]map[*svgdom.Element]svgpath.Rect
	front   int
	invalid svgpath.Rect
}

// New returns a renderer for doc.
func New(doc *svgdom.Document, opts Options) *Renderer {
	return &Renderer{
		doc:      doc,
		opts:     opts.withDefaults(),
		nextID:   1,
		ids:      map[*svgdom.Element]uint32{},
		elements: map[uint32]*svgdom.Element{},
		regions:  [2]map[*svgdom.Element]svgpath.Rect{{}, {}},
	}
}

// Document returns the rendered document.
func (r *Renderer) Document() *svgdom.Document { return r.doc }

// rootViewport returns the viewport of the root element, in device
// units, and the viewBox to fit into it, if any.
func (r *Renderer) rootViewport(n *svgdom.Node) (vp svgpath.Rect, vb svgpath.Rect, hasViewBox bool) {
	if v, ok := n.Attr("viewBox"); ok {
		vb, hasViewBox = svgview.ParseViewBox(v)
	}
	defW, defH := svgdom.DefaultViewport.Width, svgdom.DefaultViewport.Height
	if hasViewBox {
		defW, defH = vb.W, vb.H
	}
	w := n.Length("width", svgdom.X, defW)
	h := n.Length("height", svgdom.Y, defH)
	if w <= 0 || h <= 0 {
		w, h = defW, defH
	}

	ow, oh := r.opts.Width, r.opts.Height
	switch {
	case ow > 0 && oh <= 0:
		oh = ow * h / w
	case oh > 0 && ow <= 0:
		ow = oh * w / h
	}
	if ow > 0 && oh > 0 {
		if !hasViewBox {
			vb, hasViewBox = svgpath.Rect{W: w, H: h}, true
		}
		w, h = ow, oh
	}
	return svgpath.Rect{W: w, H: h}, vb, hasViewBox
}

// Size returns the size of the root viewport, in device units.
func (r *Renderer) Size() (width, height float64) {
	if r.doc.Root == nil {
		return 0, 0
	}
	vp, _, _ := r.rootViewport(svgdom.NodeOf(r.doc.Root))
	return vp.W, vp.H
}

// Invalidate marks the device rectangle rect as needing a repaint.
// The next Render only repaints the elements whose last painted region
// overlaps the union of the invalidated rectangles, or every element
// when nothing has been invalidated.
func (r *Renderer) Invalidate(rect svgpath.Rect) {
	r.invalid = r.invalid.Union(rect)
}

// Region returns the device region painted by e during the last pass.
func (r *Renderer) Region(e *svgdom.Element) (svgpath.Rect, bool) {
	rect, ok := r.regions[r.front][e]
	return rect, ok
}

// allocate returns the hit id of e, allocating one if needed.
// Once the 24 bits are exhausted, 0 is returned.
func (r *Renderer) allocate(e *svgdom.Element, st *state) uint32 {
	if id, ok := r.ids[e]; ok {
		return id
	}
	if r.nextID > MaxHitID {
		if !r.exhausted {
			r.exhausted = true
			st.logger.Warn("hit ids exhausted", "element", e.Describe())
		}
		return 0
	}
	id := r.nextID
	r.nextID++
	r.ids[e] = id
	r.elements[id] = e
	return id
}

// HitID returns the id allocated to e, or 0.
func (r *Renderer) HitID(e *svgdom.Element) uint32 { return r.ids[e] }

// ElementByHitID returns the element painted with id, or nil.
func (r *Renderer) ElementByHitID(id uint32) *svgdom.Element { return r.elements[id] }

// Render walks the whole document, emitting paint operations on sink
// and hit colors on ids, which may be nil.
//
// Cyclic references are reported as *svgdom.CyclicReferenceError, joined
// in the returned error, the rest of the document being rendered.
// The traversal stops when ctx is cancelled, and on the first element
// level error in svgdom.StrictErrorMode.
func (r *Renderer) Render(ctx context.Context, sink svgdraw.PaintSink, ids svgdraw.IdSink) error {
	if ids == nil {
		ids = &svgdraw.NopIdSink{}
	}
	if r.doc.Root == nil {
		return svgdom.ErrEmptyDocument
	}

	back := 1 - r.front
	clear(r.regions[back])
	guard := svgdom.NewRefGuard(r.opts.MaxDepth)
	st := &state{
		r:       r,
		ctx:     ctx,
		logger:  LoggerFrom(ctx, r.opts.Logger),
		guard:   guard,
		clips:   &svgview.Clipper{Guard: guard},
		prev:    r.regions[r.front],
		cur:     r.regions[back],
		invalid: r.invalid,
	}
	var errs []error
	p := &pass{state: st, sink: sink, ids: ids, errs: &errs}
	st.paints = &svgpaint.Resolver{Guard: guard, Tiles: p}

	root := svgdom.NodeOf(r.doc.Root)
	if _, err := p.render(root, svgpath.Identity); err != nil {
		// regions are incomplete: the previous ones are kept
		return errors.Join(append(errs, err)...)
	}
	r.front = back
	r.invalid = svgpath.Rect{}
	return errors.Join(errs...)
}
