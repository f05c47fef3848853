package svgmarker

import (
	"math"
	"strings"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deg = math.Pi / 180

func TestBisect(t *testing.T) {
	for _, test := range []struct {
		in, out, exp float64
	}{
		{350, 10, 0},
		{10, 350, 0},
		{0, 90, 45},
		{90, 0, 45},
		{170, -170, 180},
		{-90, -90, -90},
	} {
		got := Bisect(test.in*deg, test.out*deg)
		// compare directions, to be insensitive to the ±π wrap
		assert.InDelta(t, math.Cos(test.exp*deg), math.Cos(got), 1e-9, "%v %v", test.in, test.out)
		assert.InDelta(t, math.Sin(test.exp*deg), math.Sin(got), 1e-9, "%v %v", test.in, test.out)
	}
	assert.InDelta(t, 0, Bisect(350*deg, 10*deg), 1e-9)
}

const markerDoc = `<svg>
	<marker id="dot" orient="auto" refX="1"/>
	<marker id="fixed" orient="45" markerUnits="userSpaceOnUse"/>
	<marker id="reverse" orient="auto-start-reverse"/>
	<marker id="hidden" markerWidth="0"/>
	<marker id="fitted" markerWidth="10" markerHeight="10" viewBox="0 0 1 1" refX="0.5" refY="0.5" markerUnits="userSpaceOnUse"/>
	<path id="all" d="M0 0 L10 0 L10 10" marker-start="url(#dot)" marker-mid="url(#dot)" marker-end="url(#dot)"/>
	<path id="short" d="M0 0 L10 0" marker="url(#fixed)" marker-end="url(#reverse)"/>
	<g marker-start="url(#missing)"><path id="dangling" d="M0 0 L1 1"/></g>
</svg>`

func loadRefs(t *testing.T, doc *svgdom.Document, id string) (svgpath.Path, Refs) {
	t.Helper()
	e := doc.ElementByID(id)
	require.NotNil(t, e)
	n := svgdom.NodeOf(e)
	p, ok := svgpath.BuildPath(n)
	require.True(t, ok)
	return p, ReadRefs(n)
}

func TestPlace(t *testing.T) {
	doc, err := svgdom.Parse(strings.NewReader(markerDoc))
	require.NoError(t, err)

	p, refs := loadRefs(t, doc, "all")
	placements := Place(p, refs, 2)
	require.Len(t, placements, 3)
	assert.Equal(t, []Position{Start, Mid, End},
		[]Position{placements[0].Position, placements[1].Position, placements[2].Position})
	assert.InDelta(t, 0, placements[0].Angle, 1e-9)
	assert.InDelta(t, math.Pi/4, placements[1].Angle, 1e-9)
	assert.InDelta(t, math.Pi/2, placements[2].Angle, 1e-9)

	// the reference point lands on the vertex
	for _, pl := range placements {
		got := pl.Transform.Apply(svgpath.Point{X: 1})
		assert.InDelta(t, pl.Vertex.X, got.X, 1e-9)
		assert.InDelta(t, pl.Vertex.Y, got.Y, 1e-9)
	}
	// scaled by the stroke width
	assert.InDelta(t, 2, placements[0].Transform.ScaleFactor(), 1e-9)
	assert.True(t, placements[0].Clipped)
	assert.Equal(t, svgpath.Rect{W: 3, H: 3}, placements[0].Clip)
}

func TestPlaceOrient(t *testing.T) {
	doc, err := svgdom.Parse(strings.NewReader(markerDoc))
	require.NoError(t, err)

	p, refs := loadRefs(t, doc, "short")
	assert.Equal(t, "fixed", refs.Start.ID)
	assert.Equal(t, "fixed", refs.Mid.ID)
	assert.Equal(t, "reverse", refs.End.ID)

	placements := Place(p, refs, 4)
	require.Len(t, placements, 2)
	assert.InDelta(t, math.Pi/4, placements[0].Angle, 1e-9)
	assert.InDelta(t, 1, placements[0].Transform.ScaleFactor(), 1e-9)
	// auto-start-reverse only flips the start marker
	assert.InDelta(t, 0, placements[1].Angle, 1e-9)

	refs.Start = doc.ElementByID("reverse")
	placements = Place(p, refs, 4)
	assert.InDelta(t, math.Pi, placements[0].Angle, 1e-9)

	refs = Refs{Start: doc.ElementByID("hidden")}
	assert.Empty(t, Place(p, refs, 1))

	_, refs = loadRefs(t, doc, "dangling")
	assert.True(t, refs.IsEmpty())
}

func TestPlaceViewBox(t *testing.T) {
	doc, err := svgdom.Parse(strings.NewReader(markerDoc))
	require.NoError(t, err)

	p := svgpath.ParsePathData("M5 5 L20 5")
	placements := Place(p, Refs{Start: doc.ElementByID("fitted")}, 3)
	require.Len(t, placements, 1)
	pl := placements[0]
	got := pl.Transform.Apply(svgpath.Point{X: 0.5, Y: 0.5})
	assert.InDelta(t, 5, got.X, 1e-9)
	assert.InDelta(t, 5, got.Y, 1e-9)
	assert.InDelta(t, 10, pl.Transform.ScaleFactor(), 1e-9)
	assert.Equal(t, svgpath.Rect{W: 10, H: 10}, pl.Clip)
	assert.Equal(t, svgdom.Viewport{Width: 1, Height: 1}, pl.Units)
	corner := pl.Viewport.Apply(svgpath.Point{})
	assert.InDelta(t, 0, corner.X, 1e-9)
	assert.InDelta(t, 0, corner.Y, 1e-9)
}
