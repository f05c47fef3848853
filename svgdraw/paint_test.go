package svgdraw

import (
	"image/color"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/stretchr/testify/assert"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestRadialParam(t *testing.T) {
	g := &Gradient{
		Radial:  true,
		Stops:   []Stop{{0, red}, {1, blue}},
		Matrix:  svgpath.Identity,
		Opacity: 255,
		RX:      10, RY: 10,
	}
	param := g.radialParam()
	assert.InDelta(t, 0.5, param(svgpath.Point{X: 5}), 1e-9)
	assert.InDelta(t, 0, param(svgpath.Point{}), 1e-9)
	assert.InDelta(t, 1, param(svgpath.Point{Y: -10}), 1e-9)

	assert.Equal(t, color.NRGBA{R: 128, B: 128, A: 255}, g.ColorAt(svgpath.Point{X: 5}))
	assert.Equal(t, blue, g.ColorAt(svgpath.Point{X: 50}))

	// off-center focus: the focus has parameter 0
	g.Focus = svgpath.Point{X: 5}
	assert.InDelta(t, 0, g.radialParam()(svgpath.Point{X: 5}), 1e-9)
	assert.InDelta(t, 1, g.radialParam()(svgpath.Point{X: -10}), 1e-9)
}

func TestLinearParam(t *testing.T) {
	g := &Gradient{
		Stops:   []Stop{{0, red}, {1, blue}},
		Matrix:  svgpath.Identity,
		Opacity: 255,
		End:     svgpath.Point{X: 10},
	}
	assert.Equal(t, color.NRGBA{R: 191, B: 64, A: 255}, g.ColorAt(svgpath.Point{X: 2.5, Y: 3}))

	// the evaluator works in gradient space
	g.Matrix = svgpath.Identity.Scale(2, 1)
	assert.Equal(t, color.NRGBA{R: 191, B: 64, A: 255}, g.ColorAt(svgpath.Point{X: 5}))

	g.Opacity = 0
	assert.Equal(t, uint8(0), g.ColorAt(svgpath.Point{X: 5}).A)
}

func TestSpread(t *testing.T) {
	for _, test := range []struct {
		t      float64
		method SpreadMethod
		exp    float64
	}{
		{1.5, PadSpread, 1},
		{-0.5, PadSpread, 0},
		{0.3, PadSpread, 0.3},
		{1.25, RepeatSpread, 0.25},
		{-0.25, RepeatSpread, 0.75},
		{1.25, ReflectSpread, 0.75},
		{-0.25, ReflectSpread, 0.25},
		{2.5, ReflectSpread, 0.5},
	} {
		assert.InDelta(t, test.exp, spread(test.t, test.method), 1e-9, "%v %s", test.t, test.method)
	}
}

func TestConcentricStops(t *testing.T) {
	green := color.NRGBA{G: 255, A: 255}
	g := &Gradient{Stops: []Stop{{0, red}, {0.3, green}, {1, blue}}}
	stops := g.ConcentricStops()
	assert.Len(t, stops, 3)
	assert.Equal(t, blue, stops[0].Color)
	assert.InDelta(t, 0, stops[0].Offset, 1e-12)
	assert.Equal(t, green, stops[1].Color)
	assert.InDelta(t, 0.7, stops[1].Offset, 1e-12)
	assert.Equal(t, red, stops[2].Color)
	assert.InDelta(t, 1, stops[2].Offset, 1e-12)
}

func TestSolid(t *testing.T) {
	s := Solid{Color: red, Opacity: 128}
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, s.NRGBA())
	assert.Equal(t, red, Solid{Color: red, Opacity: 255}.NRGBA())

	g := &Gradient{Stops: []Stop{{0, red}, {1, blue}}, Opacity: 255}
	assert.Equal(t, color.NRGBA{R: 128, B: 128, A: 255}, g.MeanColor())
	assert.Equal(t, blue, g.OuterColor())
}
