package svgrender

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgfont"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func parse(t *testing.T, src string) *svgdom.Document {
	t.Helper()
	doc, err := svgdom.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func render(t *testing.T, doc *svgdom.Document, opts Options) (*Renderer, *svgdraw.Recorder, *svgdraw.IdRecorder, error) {
	t.Helper()
	r := New(doc, opts)
	sink, ids := svgdraw.NewRecorder(), svgdraw.NewIdRecorder()
	err := r.Render(context.Background(), sink, ids)
	return r, sink, ids, err
}

func hitElement(t *testing.T, r *Renderer, c svgdraw.Command) *svgdom.Element {
	t.Helper()
	id, ok := IDFromColor(c.ID)
	require.True(t, ok)
	return r.ElementByHitID(id)
}

func TestHitIDRoundTrip(t *testing.T) {
	for id := uint32(0); id <= MaxHitID; id++ {
		back, ok := IDFromColor(IDColor(id))
		if !ok || back != id {
			t.Fatalf("id %d: got %d, %v", id, back, ok)
		}
	}
	for id := uint32(0); id < 64; id++ {
		a, b := IDColor(id), IDColor(id+1)
		assert.NotEqual(t, a.R&0x80|(a.G&0x80)>>1|(a.B&0x80)>>2, b.R&0x80|(b.G&0x80)>>1|(b.B&0x80)>>2)
	}
	assert.Equal(t, uint8(0xff), IDColor(0).A)
	_, ok := IDFromColor(IDColor(12)) // opaque
	assert.True(t, ok)
	c := IDColor(12)
	c.A = 0x80
	_, ok = IDFromColor(c)
	assert.False(t, ok)
}

const basicDoc = `<svg xmlns="http://www.w3.org/2000/svg">
	<g transform="translate(10,20)">
		<rect id="a" width="10" height="10" fill="red"/>
		<rect id="b" x="100" width="10" height="10" stroke="blue" fill="none"/>
	</g>
	<rect display="none" width="5" height="5"/>
</svg>`

func TestRenderBasic(t *testing.T) {
	doc := parse(t, basicDoc)
	r, sink, ids, err := render(t, doc, Options{})
	require.NoError(t, err)

	fills, strokes := sink.Filter(svgdraw.OpFill), sink.Filter(svgdraw.OpStroke)
	require.Len(t, fills, 1)
	require.Len(t, strokes, 1)
	assert.Equal(t, svgpath.Identity.Translate(10, 20), fills[0].Transform)
	assert.IsType(t, svgdraw.Solid{}, fills[0].Paint)
	assert.Equal(t, 0, sink.Depth())

	idFills, idStrokes := ids.Filter(svgdraw.OpFill), ids.Filter(svgdraw.OpStroke)
	require.Len(t, idFills, 1)
	require.Len(t, idStrokes, 1)
	assert.Same(t, doc.ElementByID("a"), hitElement(t, r, idFills[0]))
	assert.Same(t, doc.ElementByID("b"), hitElement(t, r, idStrokes[0]))
	assert.NotZero(t, r.HitID(doc.ElementByID("a")))

	region, ok := r.Region(doc.ElementByID("a"))
	require.True(t, ok)
	assert.Equal(t, svgpath.Rect{X: 10, Y: 20, W: 10, H: 10}, region)
	region, _ = r.Region(doc.ElementByID("b"))
	assert.Equal(t, svgpath.Rect{X: 109.5, Y: 19.5, W: 11, H: 11}, region)

	w, h := r.Size()
	assert.Equal(t, 300., w)
	assert.Equal(t, 150., h)
}

func TestRenderEmpty(t *testing.T) {
	r := New(&svgdom.Document{}, Options{})
	err := r.Render(context.Background(), svgdraw.NewRecorder(), nil)
	assert.ErrorIs(t, err, svgdom.ErrEmptyDocument)
}

func TestRootViewport(t *testing.T) {
	doc := parse(t, `<svg width="300" height="150"/>`)
	w, h := New(doc, Options{Width: 600}).Size()
	assert.Equal(t, 600., w)
	assert.Equal(t, 300., h)

	doc = parse(t, `<svg viewBox="0 0 50 25"/>`)
	w, h = New(doc, Options{}).Size()
	assert.Equal(t, 50., w)
	assert.Equal(t, 25., h)

	// the document is scaled to the requested size
	doc = parse(t, `<svg width="10" height="10"><rect width="10" height="10"/></svg>`)
	_, sink, _, err := render(t, doc, Options{Width: 20, Height: 20})
	require.NoError(t, err)
	fills := sink.Filter(svgdraw.OpFill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgpath.Identity.Scale(2, 2), fills[0].Transform)
}

func TestUse(t *testing.T) {
	doc := parse(t, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
		<defs><rect id="r" width="10" height="10"/></defs>
		<use id="u" xlink:href="#r" x="5" y="6"/>
		<use href="#missing"/>
	</svg>`)
	target := doc.ElementByID("r")
	attrs := append([]svgdom.Attr(nil), target.Attrs...)
	parent := target.Parent

	r, sink, ids, err := render(t, doc, Options{})
	require.NoError(t, err)
	fills := sink.Filter(svgdraw.OpFill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgpath.Identity.Translate(5, 6), fills[0].Transform)
	assert.Same(t, target, hitElement(t, r, ids.Filter(svgdraw.OpFill)[0]))

	// the tree is left untouched
	assert.Equal(t, attrs, target.Attrs)
	assert.Same(t, parent, target.Parent)
	_, ok := r.Region(doc.ElementByID("u"))
	assert.True(t, ok)
}

func TestUseSymbol(t *testing.T) {
	doc := parse(t, `<svg>
		<symbol id="s" viewBox="0 0 10 10"><rect width="10" height="10"/></symbol>
		<use href="#s" width="20" height="20"/>
	</svg>`)
	_, sink, _, err := render(t, doc, Options{})
	require.NoError(t, err)
	fills := sink.Filter(svgdraw.OpFill)
	require.Len(t, fills, 1) // the symbol itself is not rendered
	assert.Equal(t, svgpath.Identity.Scale(2, 2), fills[0].Transform)
}

const switchDoc = `<svg>
	<switch>
		<rect id="fr" systemLanguage="fr" width="1" height="1"/>
		<rect id="en" systemLanguage="de, en" width="1" height="1"/>
		<rect id="fallback" width="1" height="1"/>
	</switch>
</svg>`

func TestSwitch(t *testing.T) {
	doc := parse(t, switchDoc)
	for _, test := range []struct {
		lang language.Tag
		exp  string
	}{
		{language.Und, "en"},
		{language.AmericanEnglish, "en"},
		{language.French, "fr"},
		{language.Japanese, "fallback"},
	} {
		r, _, ids, err := render(t, doc, Options{Language: test.lang})
		require.NoError(t, err)
		fills := ids.Filter(svgdraw.OpFill)
		require.Len(t, fills, 1, test.lang)
		assert.Same(t, doc.ElementByID(test.exp), hitElement(t, r, fills[0]), test.lang)
	}
}

func TestConditions(t *testing.T) {
	assert.True(t, matchLanguage("fr, en", language.AmericanEnglish))
	assert.True(t, matchLanguage("en-US", language.AmericanEnglish))
	assert.False(t, matchLanguage("en-US", language.English))
	assert.False(t, matchLanguage("de", language.English))
	assert.False(t, matchLanguage("", language.English))
	assert.True(t, matchLanguage("zh", language.MustParse("zh-TW")))
	assert.True(t, matchLanguage("zh", language.MustParse("zh-Hant-TW")))
	assert.False(t, matchLanguage("zh-CN", language.MustParse("zh-TW")))
	assert.False(t, matchLanguage("en", language.Und))

	doc := parse(t, `<svg><switch>
		<g id="ext" requiredExtensions="http://example.org/ext"/>
		<g id="empty" requiredFeatures=""/>
		<g id="unknown" requiredFeatures="http://www.w3.org/TR/SVG11/feature#Filter"/>
		<g id="ok" requiredFeatures="http://www.w3.org/TR/SVG11/feature#Shape http://www.w3.org/TR/SVG11/feature#Gradient"/>
	</switch></svg>`)
	p := &pass{state: &state{r: New(doc, Options{})}}
	assert.False(t, p.conditionsPass(doc.ElementByID("ext")))
	assert.False(t, p.conditionsPass(doc.ElementByID("empty")))
	assert.False(t, p.conditionsPass(doc.ElementByID("unknown")))
	assert.True(t, p.conditionsPass(doc.ElementByID("ok")))
}

func TestCancelled(t *testing.T) {
	doc := parse(t, basicDoc)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := svgdraw.NewRecorder()
	err := New(doc, Options{}).Render(ctx, sink, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.Filter(svgdraw.OpFill))
}

func TestCycles(t *testing.T) {
	doc := parse(t, `<svg>
		<g id="g">
			<rect width="1" height="1"/>
			<use href="#g"/>
		</g>
		<rect id="after" width="2" height="2"/>
	</svg>`)
	r, sink, ids, err := render(t, doc, Options{})
	var cycle *svgdom.CyclicReferenceError
	require.True(t, errors.As(err, &cycle))
	// in place, then once through the use
	assert.Len(t, sink.Filter(svgdraw.OpFill), 3)
	last := ids.Filter(svgdraw.OpFill)
	assert.Same(t, doc.ElementByID("after"), hitElement(t, r, last[len(last)-1]))

	_, _, _, err = render(t, doc, Options{ErrorMode: svgdom.StrictErrorMode})
	require.True(t, errors.As(err, &cycle))
}

func TestClipPathCycle(t *testing.T) {
	doc := parse(t, `<svg>
		<clipPath id="c"><rect width="5" height="5"/><use href="#c"/></clipPath>
		<rect id="clipped" clip-path="url(#c)" width="10" height="10"/>
		<rect width="10" height="10"/>
	</svg>`)
	_, sink, _, err := render(t, doc, Options{})
	var cycle *svgdom.CyclicReferenceError
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, sink.Filter(svgdraw.OpFill), 1)
}

func TestMiterLimit(t *testing.T) {
	doc := parse(t, `<svg>
		<marker id="m"><rect width="1" height="1"/></marker>
		<path d="M0 0 L10 0" stroke="red" stroke-miterlimit="0.5" marker-start="url(#m)"/>
		<rect width="1" height="1"/>
	</svg>`)
	_, sink, _, err := render(t, doc, Options{})
	require.NoError(t, err)
	assert.Len(t, sink.Filter(svgdraw.OpFill), 1)
	assert.Empty(t, sink.Filter(svgdraw.OpStroke))

	_, _, _, err = render(t, doc, Options{ErrorMode: svgdom.StrictErrorMode})
	assert.Error(t, err)
}

func TestMarkers(t *testing.T) {
	doc := parse(t, `<svg>
		<marker id="m" markerWidth="4" markerHeight="4"><rect width="2" height="2"/></marker>
		<path id="host" d="M0 0 L10 0 L10 10" stroke="black" fill="none" marker-start="url(#m)" marker-end="url(#m)"/>
	</svg>`)
	r, sink, ids, err := render(t, doc, Options{})
	require.NoError(t, err)
	assert.Len(t, sink.Filter(svgdraw.OpFill), 2)
	idFills := ids.Filter(svgdraw.OpFill)
	require.Len(t, idFills, 2)
	host := doc.ElementByID("host")
	for _, c := range idFills {
		assert.Same(t, host, hitElement(t, r, c))
	}
	assert.Zero(t, r.HitID(doc.ElementByID("m").Children[0]))
}

func TestRadialSeam(t *testing.T) {
	doc := parse(t, `<svg>
		<radialGradient id="g">
			<stop offset="0" stop-color="red"/>
			<stop offset="1" stop-color="blue"/>
		</radialGradient>
		<rect width="10" height="10" fill="url(#g)"/>
	</svg>`)
	_, sink, _, err := render(t, doc, Options{})
	require.NoError(t, err)
	fills := sink.Filter(svgdraw.OpFill)
	require.Len(t, fills, 2)
	assert.Equal(t, svgdraw.Solid{Color: fills[1].Paint.(*svgdraw.Gradient).OuterColor(), Opacity: 0xff}, fills[0].Paint)

	clips := sink.Filter(svgdraw.OpSetClip)
	require.GreaterOrEqual(t, len(clips), 2)
	assert.Equal(t, svgdraw.Exclude, clips[len(clips)-2].Clip.Op)
	assert.Equal(t, svgdraw.Intersect, clips[len(clips)-1].Clip.Op)
}

func TestInvalidate(t *testing.T) {
	doc := parse(t, `<svg>
		<rect id="a" width="10" height="10"/>
		<rect id="b" x="100" width="10" height="10"/>
	</svg>`)
	r := New(doc, Options{})
	renderFills := func() []svgdraw.Command {
		ids := svgdraw.NewIdRecorder()
		require.NoError(t, r.Render(context.Background(), svgdraw.NewRecorder(), ids))
		return ids.Filter(svgdraw.OpFill)
	}
	require.Len(t, renderFills(), 2)

	r.Invalidate(svgpath.Rect{X: 0, Y: 0, W: 5, H: 5})
	fills := renderFills()
	require.Len(t, fills, 1)
	assert.Same(t, doc.ElementByID("a"), hitElement(t, r, fills[0]))
	// the skipped element keeps its region
	region, ok := r.Region(doc.ElementByID("b"))
	require.True(t, ok)
	assert.Equal(t, svgpath.Rect{X: 100, W: 10, H: 10}, region)

	// the invalid region is consumed
	assert.Len(t, renderFills(), 2)
}

func TestPatternTile(t *testing.T) {
	doc := parse(t, `<svg>
		<pattern id="p" patternUnits="userSpaceOnUse" width="10" height="10">
			<circle id="dot" cx="5" cy="5" r="2" fill="red"/>
		</pattern>
		<rect id="host" width="100" height="100" fill="url(#p)"/>
	</svg>`)
	r, sink, ids, err := render(t, doc, Options{})
	require.NoError(t, err)
	fills := sink.Filter(svgdraw.OpFill)
	require.Len(t, fills, 1)
	pat, ok := fills[0].Paint.(*svgdraw.Pattern)
	require.True(t, ok)
	assert.Equal(t, svgpath.Rect{W: 10, H: 10}, pat.Tile)
	require.Len(t, ids.Filter(svgdraw.OpFill), 1)

	tile := svgdraw.NewRecorder()
	require.NoError(t, pat.Content(tile))
	tileFills := tile.Filter(svgdraw.OpFill)
	require.Len(t, tileFills, 1)
	assert.IsType(t, svgdraw.Solid{}, tileFills[0].Paint)
	assert.Equal(t, 0, tile.Depth())
	// tiles do not allocate hit ids
	assert.Zero(t, r.HitID(doc.ElementByID("dot")))
}

// tilingSink draws pattern tiles as soon as they are used.
type tilingSink struct {
	*svgdraw.Recorder
	errs []error
}

func (s *tilingSink) FillPath(p svgpath.Path, paint svgdraw.Paint) {
	s.Recorder.FillPath(p, paint)
	if pat, ok := paint.(*svgdraw.Pattern); ok {
		if err := pat.Content(s.Recorder); err != nil {
			s.errs = append(s.errs, err)
		}
	}
}

func TestPatternCycle(t *testing.T) {
	doc := parse(t, `<svg>
		<pattern id="p" patternUnits="userSpaceOnUse" width="10" height="10">
			<rect width="5" height="5" fill="url(#p) green"/>
		</pattern>
		<rect width="100" height="100" fill="url(#p)"/>
	</svg>`)
	sink := &tilingSink{Recorder: svgdraw.NewRecorder()}
	err := New(doc, Options{}).Render(context.Background(), sink, nil)
	var cycle *svgdom.CyclicReferenceError
	require.True(t, errors.As(err, &cycle))
	assert.Empty(t, sink.errs)
}

func TestTextAdvance(t *testing.T) {
	doc := parse(t, `<svg>
		<text id="t" x="10" y="20" font-family="sans-serif" font-size="16">Hi<tspan>  Hi </tspan></text>
	</svg>`)
	r, sink, ids, err := render(t, doc, Options{})
	require.NoError(t, err)
	fills := sink.Filter(svgdraw.OpFill)
	require.Len(t, fills, 2)

	face := svgfont.NewRegistry().Lookup("sans-serif", false, false)
	require.NotNil(t, face)
	advance := svgfont.Advance(face, "Hi", 16)
	x0, x1 := fills[0].Path.Bounds().X, fills[1].Path.Bounds().X
	assert.InDelta(t, advance+4, x1-x0, 1e-6)

	for _, c := range ids.Filter(svgdraw.OpFill) {
		assert.Same(t, doc.ElementByID("t"), hitElement(t, r, c))
	}
}

func TestTextMiterLimit(t *testing.T) {
	doc := parse(t, `<svg>
		<text x="10" y="20" font-family="sans-serif" stroke="red">Hi<tspan stroke-miterlimit="0.5">Hi</tspan></text>
	</svg>`)
	_, sink, _, err := render(t, doc, Options{})
	require.NoError(t, err)
	assert.Empty(t, sink.Filter(svgdraw.OpFill))
	assert.Empty(t, sink.Filter(svgdraw.OpStroke))

	_, _, _, err = render(t, doc, Options{ErrorMode: svgdom.StrictErrorMode})
	assert.Error(t, err)
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "a b", collapseSpaces("  a \t\n  b ", false))
	assert.Equal(t, "ab", collapseSpaces("a\nb", false))
	assert.Equal(t, " a b", collapseSpaces(" a\nb", true))
}
