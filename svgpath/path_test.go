package svgpath

import (
	"math"
	"strings"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertPoint(t *testing.T, exp, got Point, delta float64) {
	t.Helper()
	assert.InDelta(t, exp.X, got.X, delta, "X")
	assert.InDelta(t, exp.Y, got.Y, delta, "Y")
}

func TestMatrix(t *testing.T) {
	m := Identity.Translate(10, 0).Scale(2, 2)
	assert.Equal(t, Point{12, 2}, m.Apply(Point{1, 1}))
	assert.Equal(t, Point{2, 2}, m.ApplyVector(Point{1, 1}))
	assert.Equal(t, 2., m.ScaleFactor())

	r := Identity.Rotate(math.Pi / 2)
	assertPoint(t, Point{0, 1}, r.Apply(Point{1, 0}), eps)

	inv, ok := m.Mult(r).SkewX(0.3).Invert()
	require.True(t, ok)
	p := Point{3, -7}
	assertPoint(t, p, m.Mult(r).SkewX(0.3).Mult(inv).Apply(p), eps)

	_, ok = Identity.Scale(0, 1).Invert()
	assert.False(t, ok)
}

func TestArc(t *testing.T) {
	_, ok := Arc(Point{1, 1}, 5, 5, 0, false, true, Point{1, 1})
	assert.False(t, ok, "coincident endpoints are omitted")

	seg, ok := Arc(Point{0, 0}, 0, 5, 0, false, true, Point{4, 0})
	assert.True(t, ok)
	assert.Equal(t, LineTo{4, 0}, seg)

	seg, ok = Arc(Point{0, 0}, 1, 1, 0, false, true, Point{2, 0})
	require.True(t, ok)
	arc := seg.(ArcTo)
	assertPoint(t, Point{1, 0}, arc.Center, eps)
	assert.InDelta(t, math.Pi, arc.Sweep, eps)
	assertPoint(t, Point{0, 0}, arc.StartPoint(), eps)
	assertPoint(t, Point{2, 0}, arc.EndPoint(), eps)

	// too small radii are scaled up
	seg, _ = Arc(Point{0, 0}, 0.5, 0.5, 0, false, false, Point{2, 0})
	arc = seg.(ArcTo)
	assert.InDelta(t, 1, arc.RX, eps)
	assert.InDelta(t, -math.Pi, arc.Sweep, eps)

	// large arc
	seg, _ = Arc(Point{0, 0}, 2, 2, 0, true, true, Point{2, 0})
	arc = seg.(ArcTo)
	assert.Greater(t, arc.Sweep, math.Pi)
	assertPoint(t, Point{2, 0}, arc.EndPoint(), 1e-9)
}

func TestParsePathData(t *testing.T) {
	for _, test := range []struct {
		d, exp string
	}{
		{"M10 10 L20 10 l0 10 H10 Z", "M10,10 L20,10 L20,20 L10,20 Z"},
		{"M0 0 10 0 10 10", "M0,0 L10,0 L10,10"},
		{"m1 1 2 2", "M1,1 L3,3"},
		{"M0 0 L 10 x L 20 20", "M0,0 L20,20"},
		{"M0 0 L 10 L 20 20", "M0,0 L20,20"},
		{"M0 0 v5 h-1 V0", "M0,0 L0,5 L-1,5 L-1,0"},
		{"M0 0 Q 3 3 6 0", "M0,0 C2,2 4,2 6,0"},
		{"M0 0 C 0 1 2 1 2 0 S 4 -1 4 0", "M0,0 C0,1 2,1 2,0 C2,-1 4,-1 4,0"},
		{"M0 0 Q 3 3 6 0 T 12 0", "M0,0 C2,2 4,2 6,0 C8,-2 10,-2 12,0"},
		{"M0 0 L1 0 Z L 0 1", "M0,0 L1,0 Z M0,0 L0,1"},
		{"M0 0 Z 3 3", "M0,0 Z"},
		{"1 2 M0 0", "M0,0"},
		{"M0 0 A 1 1 0 0 1 0 0", "M0,0"},
		{"M-1.5.5 L1e1-2", "M-1.5,0.5 L10,-2"},
	} {
		got := ParsePathData(test.d).String()
		assert.Equal(t, test.exp, got, test.d)
	}
}

func TestParseArcFlags(t *testing.T) {
	p := ParsePathData("M0 0 A1,1 0 012,0")
	require.Len(t, p.Segments, 2)
	arc, ok := p.Segments[1].(ArcTo)
	require.True(t, ok)
	assertPoint(t, Point{2, 0}, arc.EndPoint(), 1e-9)
	assert.Greater(t, arc.Sweep, 0.)
}

func TestRectPath(t *testing.T) {
	p := RectPath(Rect{0, 0, 10, 4}, 3, 0)
	require.Len(t, p.Segments, 10)
	assert.Equal(t, MoveTo{3, 0}, p.Segments[0])
	assert.Equal(t, LineTo{7, 0}, p.Segments[1])
	arc := p.Segments[2].(ArcTo)
	assert.Equal(t, 3., arc.RX)
	assert.Equal(t, 2., arc.RY) // copied, then clamped to half the height
	assert.Equal(t, Point{7, 2}, arc.Center)
	assertPoint(t, Point{10, 2}, arc.EndPoint(), eps)
	assert.Equal(t, Close{}, p.Segments[9])

	plain := RectPath(Rect{0, 0, 10, 4}, -1, -2)
	assert.Equal(t, "M0,0 L10,0 L10,4 L0,4 Z", plain.String())
}

func TestBounds(t *testing.T) {
	c := EllipsePath(Point{5, 5}, 2, 2).Bounds()
	assert.InDelta(t, 3, c.X, 1e-12)
	assert.InDelta(t, 3, c.Y, 1e-12)
	assert.InDelta(t, 4, c.W, 1e-12)
	assert.InDelta(t, 4, c.H, 1e-12)

	// rotated ellipse: half extents are sqrt(rx²cos²+ry²sin²)
	rot := EllipsePath(Point{0, 0}, 4, 1).TransformedBounds(Identity.Rotate(math.Pi / 4))
	half := math.Sqrt((16 + 1) / 2.)
	assert.InDelta(t, -half, rot.X, 1e-9)
	assert.InDelta(t, 2*half, rot.W, 1e-9)
	assert.InDelta(t, 2*half, rot.H, 1e-9)

	// quarter arc from (2,0) to (0,2), around the origin
	var q Path
	q.MoveTo(Point{2, 0})
	q.ArcTo(ArcTo{RX: 2, RY: 2, Sweep: math.Pi / 2})
	assert.InDelta(t, 0, q.Bounds().X, 1e-12)
	assert.InDelta(t, 2, q.Bounds().W, 1e-12)
	assert.InDelta(t, 2, q.Bounds().H, 1e-12)

	// negative sweep from (2,0) to (0,-2) reaches no extremum in between
	var n Path
	n.MoveTo(Point{2, 0})
	n.ArcTo(ArcTo{RX: 2, RY: 2, Sweep: -math.Pi / 2})
	assert.InDelta(t, -2, n.Bounds().Y, 1e-12)
	assert.InDelta(t, 2, n.Bounds().H, 1e-12)

	b := ParsePathData("M0 0 C 0 10 10 10 10 0").Bounds()
	assert.InDelta(t, 0, b.X, eps)
	assert.InDelta(t, 10, b.W, eps)
	assert.InDelta(t, 7.5, b.H, eps)

	assert.Equal(t, Rect{}, Path{}.Bounds())
}

func TestTransformKeepsArcs(t *testing.T) {
	p := EllipsePath(Point{0, 0}, 1, 2)
	q := p.Transform(Identity.Translate(1, 1).Scale(2, 2))
	arc, ok := q.Segments[1].(ArcTo)
	require.True(t, ok)
	assert.Equal(t, Point{1, 1}, arc.Center)
	assert.Equal(t, 2., arc.RX)

	skewed := p.Transform(Identity.SkewX(0.5))
	for _, s := range skewed.Segments {
		_, isArc := s.(ArcTo)
		assert.False(t, isArc)
	}
}

func TestVertices(t *testing.T) {
	open := ParsePathData("M0 0 L10 0 L10 10").Vertices()
	require.Len(t, open, 3)
	assert.False(t, open[0].HasIn)
	assert.InDelta(t, 0, open[0].Out, eps)
	assert.InDelta(t, 0, open[1].In, eps)
	assert.InDelta(t, math.Pi/2, open[1].Out, eps)
	assert.InDelta(t, math.Pi/2, open[2].In, eps)
	assert.False(t, open[2].HasOut)

	closed := ParsePathData("M0 0 L10 0 L10 10 Z").Vertices()
	require.Len(t, closed, 4)
	assert.Equal(t, Point{0, 0}, closed[3].Point)
	assert.InDelta(t, -3*math.Pi/4, closed[3].In, eps)
	assert.InDelta(t, 0, closed[3].Out, eps)
	assert.True(t, closed[0].HasIn)
	assert.InDelta(t, -3*math.Pi/4, closed[0].In, eps)
	assert.InDelta(t, -3*math.Pi/4, closed[2].Out, eps)
}

func buildFrom(t *testing.T, src, id string) (Path, bool) {
	t.Helper()
	doc, err := svgdom.Parse(strings.NewReader(src))
	require.NoError(t, err)
	e := doc.ElementByID(id)
	require.NotNil(t, e)
	return BuildPath(svgdom.NodeOf(e))
}

func TestBuildPath(t *testing.T) {
	p, ok := buildFrom(t, `<svg><polygon id="p" points="0,0 10,0 10,10 5" fill-rule="evenodd"/></svg>`, "p")
	assert.True(t, ok)
	assert.Equal(t, "M0,0 L10,0 L10,10 Z", p.String())
	assert.Equal(t, EvenOdd, p.FillRule)

	p, _ = buildFrom(t, `<svg><clipPath clip-rule="evenodd"><rect id="r" width="2" height="3"/></clipPath></svg>`, "r")
	assert.Equal(t, EvenOdd, p.FillRule)
	assert.Equal(t, Rect{0, 0, 2, 3}, p.Bounds())

	p, ok = buildFrom(t, `<svg><rect id="r" width="0" height="3"/></svg>`, "r")
	assert.True(t, ok)
	assert.True(t, p.IsEmpty())

	p, _ = buildFrom(t, `<svg><circle id="c" cx="1" cy="1" r="1"/></svg>`, "c")
	require.Len(t, p.Segments, 3)
	assert.IsType(t, ArcTo{}, p.Segments[1])

	p, _ = buildFrom(t, `<svg><line id="l" x1="1" y1="2" x2="3" y2="4"/></svg>`, "l")
	assert.Equal(t, "M1,2 L3,4", p.String())

	_, ok = buildFrom(t, `<svg><g id="g"/></svg>`, "g")
	assert.False(t, ok)
}
