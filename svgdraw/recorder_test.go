package svgdraw

import (
	"image/color"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderContainers(t *testing.T) {
	r := NewRecorder()
	m := svgpath.Identity.Translate(4, 5)
	p := svgpath.RectPath(svgpath.Rect{W: 1, H: 1}, 0, 0)

	tok := r.BeginContainer()
	r.SetTransform(m)
	r.FillPath(p, Solid{Color: red, Opacity: 255})
	r.EndContainer(tok)
	r.FillPath(p, None{})

	fills := r.Filter(OpFill)
	require.Len(t, fills, 2)
	assert.Equal(t, m, fills[0].Transform)
	assert.Equal(t, svgpath.Identity, fills[1].Transform)
	assert.Equal(t, 0, r.Depth())
}

func TestRecorderUnbalanced(t *testing.T) {
	r := NewIdRecorder()
	outer := r.BeginContainer()
	r.SetTransform(svgpath.Identity.Scale(2, 2))
	r.BeginContainer()
	r.SetTransform(svgpath.Identity.Scale(3, 3))
	assert.Equal(t, 2, r.Depth())

	// closing the outer container drops the inner one
	r.EndContainer(outer)
	assert.Equal(t, 0, r.Depth())

	r.FillPath(svgpath.Path{}, color.RGBA{R: 1, A: 255})
	fills := r.Filter(OpFill)
	require.Len(t, fills, 1)
	assert.Equal(t, svgpath.Identity, fills[0].Transform)
	assert.Equal(t, color.RGBA{R: 1, A: 255}, fills[0].ID)
}

func TestClipRegionBounds(t *testing.T) {
	c := ClipRegion{Paths: []svgpath.Path{
		svgpath.RectPath(svgpath.Rect{X: 0, Y: 0, W: 2, H: 2}, 0, 0),
		svgpath.RectPath(svgpath.Rect{X: 5, Y: 1, W: 1, H: 4}, 0, 0),
	}}
	assert.Equal(t, svgpath.Rect{X: 0, Y: 0, W: 6, H: 5}, c.Bounds())
	assert.Equal(t, svgpath.Rect{X: 1, Y: 2, W: 3, H: 4}, RectClip(svgpath.Rect{X: 1, Y: 2, W: 3, H: 4}).Bounds())
	assert.Equal(t, "Exclude", Exclude.String())
}
