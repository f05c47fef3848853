package svgrender

import (
	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpaint"
	"github.com/benoitkugler/oksvgrender/svgpath"
)

var _ svgpaint.TileRenderer = (*pass)(nil)

// RenderTile draws the children of pattern on sink, in a sub-pass which
// neither allocates hit ids nor records regions.
// The pattern element stays active in the reference guard while its
// content is drawn, so that self references are detected.
// Skipped references are reported with the errors of the enclosing pass;
// the returned error is only non nil when the traversal must stop.
func (p *pass) RenderTile(sink svgdraw.PaintSink, pattern *svgdom.Node, content svgpath.Matrix2D) error {
	if err := p.guard.Enter(pattern.Element); err != nil {
		return p.fail(pattern, err)
	}
	defer p.guard.Leave()

	sub := &pass{state: p.state, sink: sink, ids: &svgdraw.NopIdSink{}, tile: true, errs: p.errs}
	t := sink.BeginContainer()
	defer sink.EndContainer(t)
	sink.SetTransform(content)
	for _, c := range pattern.Element.Children {
		if _, err := sub.render(pattern.Child(c), content); err != nil {
			return err
		}
	}
	return nil
}
