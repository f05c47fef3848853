package svgrender

import (
	"strconv"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgfont"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/charmbracelet/log"
)

// textRun is a piece of text set with one style.
type textRun struct {
	node    *svgdom.Node // text, tspan or tref providing the style
	path    svgpath.Path // outlines, in the user space of the text element
	advance float64
}

// textLayout positions the runs of a text element.
type textLayout struct {
	fonts  *svgfont.Registry
	x, y   float64 // pen
	runs   []textRun
	logger *log.Logger
}

// collapseSpaces applies the default xml:space handling:
// new lines are removed, tabs become spaces, consecutive spaces are
// merged and the run is trimmed.
func collapseSpaces(s string, preserve bool) string {
	if preserve {
		return strings.Map(func(r rune) rune {
			switch r {
			case '\n', '\r', '\t':
				return ' '
			}
			return r
		}, s)
	}
	s = strings.NewReplacer("\r", "", "\n", "", "\t", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func preserveSpaces(n *svgdom.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if v, ok := c.Attr("xml:space"); ok {
			return v == "preserve"
		}
	}
	return false
}

// lengthList parses a list of coordinates, as used by x, y, dx and dy.
func lengthList(n *svgdom.Node, name string, axis svgdom.Axis) []float64 {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	var out []float64
	for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' }) {
		l, err := n.ResolveLength(f, axis)
		if err != nil {
			return out
		}
		out = append(out, l)
	}
	return out
}

// baselineShift returns the shift of n, positive upward.
func baselineShift(n *svgdom.Node) float64 {
	v := strings.TrimSpace(n.Property("baseline-shift"))
	em := n.FontSize()
	switch v {
	case "", "baseline":
		return 0
	case "sub":
		return -0.6 * em
	case "super":
		return 0.6 * em
	}
	if strings.HasSuffix(v, "%") {
		f, err := svgdom.ParseNumber(strings.TrimSuffix(v, "%"))
		if err != nil {
			return 0
		}
		return f * em / 100
	}
	l, err := n.ResolveLength(v, svgdom.Y)
	if err != nil {
		return 0
	}
	return l
}

func isBold(weight string) bool {
	switch weight {
	case "bold", "bolder":
		return true
	}
	w, err := strconv.Atoi(weight)
	return err == nil && w >= 600
}

func isItalic(style string) bool { return style == "italic" || style == "oblique" }

// position applies the first value of the x, y, dx and dy lists of n.
func (l *textLayout) position(n *svgdom.Node) {
	if xs := lengthList(n, "x", svgdom.X); len(xs) != 0 {
		l.x = xs[0]
	}
	if ys := lengthList(n, "y", svgdom.Y); len(ys) != 0 {
		l.y = ys[0]
	}
	if dxs := lengthList(n, "dx", svgdom.X); len(dxs) != 0 {
		l.x += dxs[0]
	}
	if dys := lengthList(n, "dy", svgdom.Y); len(dys) != 0 {
		l.y += dys[0]
	}
}

// element lays out the content of a text or tspan element.
// shift is the accumulated baseline shift of the ancestors.
func (l *textLayout) element(n *svgdom.Node, shift float64) {
	l.position(n)
	shift += baselineShift(n)
	preserve := preserveSpaces(n)
	for _, c := range n.Element.Children {
		switch c.Kind {
		case svgdom.KindCharData:
			l.run(n, collapseSpaces(c.Text, preserve), shift)
		case svgdom.KindTSpan, svgdom.KindA:
			cn := n.Child(c)
			if cn.Property("display") == "none" {
				continue
			}
			l.element(cn, shift)
		case svgdom.KindTRef:
			cn := n.Child(c)
			target := cn.Resolve(cn.Href())
			if target == nil || cn.Property("display") == "none" {
				continue
			}
			l.position(cn)
			l.run(cn, collapseSpaces(target.TextContent(), preserve), shift+baselineShift(cn))
		}
	}
}

// run sets text at the pen position, honoring text-anchor,
// then advances the pen by the run width plus a quarter of em.
func (l *textLayout) run(n *svgdom.Node, text string, shift float64) {
	if text == "" {
		return
	}
	size := n.FontSize()
	face := l.fonts.Lookup(n.Property("font-family"), isBold(n.Property("font-weight")), isItalic(n.Property("font-style")))
	if face == nil {
		l.logger.Debug("no font face", "element", n.Element.Describe())
		return
	}
	outline, advance := svgfont.Outline(face, text, size)
	var anchor float64
	switch n.Property("text-anchor") {
	case "middle":
		anchor = -advance / 2
	case "end":
		anchor = -advance
	}
	l.x += anchor
	l.runs = append(l.runs, textRun{
		node:    n,
		path:    outline.Transform(svgpath.Identity.Translate(l.x, l.y-shift)),
		advance: advance,
	})
	l.x += advance + size/4
}

// layoutText returns the runs of the text element n.
func (p *pass) layoutText(n *svgdom.Node) []textRun {
	l := textLayout{fonts: p.r.opts.Fonts, logger: p.logger}
	l.element(n, 0)
	return l.runs
}

// text paints the runs of n like shapes, the bounding box of the
// whole element being used by the objectBoundingBox paint units.
// Invalid stroke parameters on any run disable the whole element.
func (p *pass) text(n *svgdom.Node, ctm svgpath.Matrix2D, id uint32) (svgpath.Rect, error) {
	runs := p.layoutText(n)
	var bbox svgpath.Rect
	strokes := make([]svgdraw.StrokeOptions, len(runs))
	for i, run := range runs {
		bbox = bbox.Union(run.path.Bounds())
		stroke, err := p.paints.Stroke(run.node)
		if err != nil {
			return svgpath.Rect{}, p.fail(run.node, err)
		}
		strokes[i] = stroke
	}
	var region svgpath.Rect
	for i, run := range runs {
		if run.path.IsEmpty() {
			continue
		}
		r, err := p.paintPath(run.node, run.path, bbox, ctm, id, strokes[i])
		region = region.Union(r)
		if err != nil {
			return region, err
		}
	}
	return region, nil
}
