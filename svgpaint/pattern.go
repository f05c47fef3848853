package svgpaint

import (
	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgview"
)

func isPattern(k svgdom.Kind) bool { return k == svgdom.KindPattern }

func isRenderable(k svgdom.Kind) bool {
	switch k.Hint() {
	case svgdom.HintShape, svgdom.HintText, svgdom.HintImage, svgdom.HintContainment:
		return true
	}
	return false
}

// pattern resolves a pattern referenced by the host n.
// It returns nil when the tile is empty or no TileRenderer is configured.
func (r *Resolver) pattern(n *svgdom.Node, e *svgdom.Element, bbox svgpath.Rect, opacity float64) (svgdraw.Paint, error) {
	if r.Tiles == nil {
		return nil, nil
	}
	if g := r.guard(); g.Active(e) {
		// the pattern is painting its own content
		return nil, g.Enter(e)
	}
	t, err := r.templateOf(e, isPattern)
	if err != nil {
		return nil, err
	}

	units, _ := t.attr("patternUnits")
	obb := units != "userSpaceOnUse"
	if obb && (bbox.W <= 0 || bbox.H <= 0) {
		return nil, nil
	}
	tile := svgpath.Rect{
		X: gradientCoord(t, n, "x", "0", obb, svgdom.X),
		Y: gradientCoord(t, n, "y", "0", obb, svgdom.Y),
		W: gradientCoord(t, n, "width", "0", obb, svgdom.X),
		H: gradientCoord(t, n, "height", "0", obb, svgdom.Y),
	}
	if obb {
		tile = svgpath.Rect{
			X: bbox.X + tile.X*bbox.W, Y: bbox.Y + tile.Y*bbox.H,
			W: tile.W * bbox.W, H: tile.H * bbox.H,
		}
	}
	if tile.W <= 0 || tile.H <= 0 {
		return nil, nil
	}

	transform := svgpath.Identity
	if v, ok := t.attr("patternTransform"); ok {
		if m, err := svgview.ParseTransform(v); err == nil {
			transform = m
		}
	}

	content := svgpath.Identity
	size := svgpath.Rect{W: tile.W, H: tile.H}
	if v, ok := t.attr("viewBox"); ok {
		if vb, ok := svgview.ParseViewBox(v); ok {
			par, _ := t.attr("preserveAspectRatio")
			content = svgview.ViewBoxFit(vb, size, svgview.ParsePreserveAspectRatio(par)).Matrix()
		}
	} else if cu, _ := t.attr("patternContentUnits"); cu == "objectBoundingBox" {
		content = svgview.ViewBoxFit(svgpath.Rect{W: 1, H: 1}, svgpath.Rect{W: bbox.W, H: bbox.H},
			svgview.PreserveAspectRatio{Align: svgview.AlignNone}).Matrix()
	}

	holder := t.withChildren(isRenderable)
	if holder == nil {
		// an empty pattern paints nothing
		return svgdraw.None{}, nil
	}
	pn := svgdom.NodeOf(holder)
	pn.SetViewport(svgdom.Viewport{Width: tile.W, Height: tile.H})
	tiles := r.Tiles
	return &svgdraw.Pattern{
		Tile:    size,
		Matrix:  transform.Translate(tile.X, tile.Y),
		Opacity: toAlpha(opacity),
		Content: func(sink svgdraw.PaintSink) error {
			return tiles.RenderTile(sink, pn, content)
		},
	}, nil
}
