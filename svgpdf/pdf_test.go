package svgpdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgrender"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPDF(t *testing.T) *gofpdf.Fpdf {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(false)
	return pdf
}

// output returns the uncompressed content of pdf.
func output(t *testing.T, pdf *gofpdf.Fpdf) string {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, pdf.Output(&b))
	return b.String()
}

// countLines returns the number of lines of s equal to line.
func countLines(s, line string) int {
	n := 0
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) == line {
			n++
		}
	}
	return n
}

// countOperators returns the number of occurrences of the operator op,
// which gofpdf may write several to a line.
func countOperators(s, op string) int {
	n := 0
	for _, f := range strings.Fields(s) {
		if f == op {
			n++
		}
	}
	return n
}

func renderString(t *testing.T, src string) string {
	t.Helper()
	doc, err := svgdom.Parse(strings.NewReader(src))
	require.NoError(t, err)
	pdf := newPDF(t)
	require.NoError(t, Render(context.Background(), pdf, doc, svgrender.Options{}))
	return output(t, pdf)
}

func rect(x, y, w, h float64) svgpath.Path {
	return svgpath.RectPath(svgpath.Rect{X: x, Y: y, W: w, H: h}, 0, 0)
}

var red = svgdraw.Solid{Color: color.NRGBA{R: 0xff, A: 0xff}, Opacity: 0xff}

func TestRenderSVGToPDF(t *testing.T) {
	var out bytes.Buffer
	err := RenderSVGToPDF(strings.NewReader(`<svg width="20" height="10"><rect width="10" height="10" fill="red"/></svg>`), &out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))

	err = RenderSVGToPDF(strings.NewReader(`not svg`), &out)
	assert.Error(t, err)
}

func TestRenderSVGFileToPDF(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.svg")
	require.NoError(t, os.WriteFile(src, []byte(`<svg width="4" height="4"><circle cx="2" cy="2" r="2"/></svg>`), 0o644))
	dst := filepath.Join(dir, "out.pdf")
	require.NoError(t, RenderSVGFileToPDF(src, dst))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestClipBalance(t *testing.T) {
	pdf := newPDF(t)
	pdf.AddPage()
	s := NewSink(pdf)

	outer := s.BeginContainer()
	s.SetClip(svgdraw.RectClip(svgpath.Rect{W: 50, H: 50}))
	inner := s.BeginContainer()
	s.SetClip(svgdraw.RectClip(svgpath.Rect{W: 20, H: 20}))
	s.SetClip(svgdraw.ClipRegion{Paths: []svgpath.Path{rect(5, 5, 5, 5)}, Op: svgdraw.Exclude})
	s.BeginContainer() // left open
	s.SetClip(svgdraw.RectClip(svgpath.Rect{W: 10, H: 10}))
	s.FillPath(rect(0, 0, 30, 30), red)
	s.EndContainer(inner)
	assert.Equal(t, 1, s.state.clips)
	s.EndContainer(outer)
	assert.Equal(t, 0, s.state.clips)
	assert.Empty(t, s.stack)

	s.SetClip(svgdraw.RectClip(svgpath.Rect{W: 10, H: 10}))
	s.ResetClip()
	s.Close()
	require.NoError(t, s.Err())

	content := output(t, pdf)
	assert.Equal(t, 5, countOperators(content, "q"))
	assert.Equal(t, 5, countOperators(content, "Q"))
	assert.Equal(t, 1, countLines(content, "W* n"))
	assert.Equal(t, 4, countLines(content, "W n"))
}

func TestCloseEndsOpenContainers(t *testing.T) {
	pdf := newPDF(t)
	pdf.AddPage()
	s := NewSink(pdf)
	s.BeginContainer()
	s.SetClip(svgdraw.RectClip(svgpath.Rect{W: 10, H: 10}))
	s.BeginContainer()
	s.SetClip(svgdraw.RectClip(svgpath.Rect{W: 5, H: 5}))
	s.Close()

	content := output(t, pdf)
	assert.Equal(t, 2, countOperators(content, "Q"))
}

func TestStroke(t *testing.T) {
	pdf := newPDF(t)
	pdf.AddPage()
	s := NewSink(pdf)
	s.SetTransform(svgpath.Identity.Scale(2, 2))
	stroke := svgdraw.DefaultStroke
	stroke.MiterLimit = 7
	s.StrokePath(rect(0, 0, 10, 10), red, stroke)
	// pattern strokes are dropped
	s.StrokePath(rect(0, 0, 10, 10), &svgdraw.Pattern{Tile: svgpath.Rect{W: 1, H: 1}}, stroke)

	content := output(t, pdf)
	assert.Equal(t, 1, countLines(content, "7.00 M"))
}

func TestPatternTiles(t *testing.T) {
	pdf := newPDF(t)
	pdf.AddPage()
	s := NewSink(pdf)

	calls := 0
	pat := &svgdraw.Pattern{
		Tile:    svgpath.Rect{W: 10, H: 10},
		Matrix:  svgpath.Identity,
		Opacity: 0xff,
		Content: func(sink svgdraw.PaintSink) error {
			calls++
			sink.FillPath(rect(0, 0, 5, 10), red)
			return nil
		},
	}
	s.FillPath(rect(0, 0, 20, 20), pat)
	assert.Equal(t, 4, calls)
	assert.Empty(t, s.stack)

	calls = 0
	huge := *pat
	huge.Tile = svgpath.Rect{W: 0.01, H: 0.01}
	s.FillPath(rect(0, 0, 20, 20), &huge)
	assert.Zero(t, calls)
	assert.ErrorIs(t, s.Err(), ErrTooManyTiles)

	content := output(t, pdf)
	assert.Equal(t, countOperators(content, "q"), countOperators(content, "Q"))
}

func TestGradients(t *testing.T) {
	content := renderString(t, `<svg width="100" height="10">
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<radialGradient id="r"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></radialGradient>
		<rect width="50" height="10" fill="url(#g)"/>
		<rect x="50" width="50" height="10" fill="url(#r)"/>
	</svg>`)
	assert.Contains(t, content, "/ShadingType 2")
	assert.Contains(t, content, "/ShadingType 3")
	assert.Positive(t, countOperators(content, "q"))
	assert.Equal(t, countOperators(content, "q"), countOperators(content, "Q"))
}

func TestMeanColorFallback(t *testing.T) {
	pdf := newPDF(t)
	pdf.AddPage()
	s := NewSink(pdf)
	g := &svgdraw.Gradient{
		Stops: []svgdraw.Stop{
			{Offset: 0, Color: color.NRGBA{R: 0xff, A: 0xff}},
			{Offset: 0.5, Color: color.NRGBA{G: 0xff, A: 0xff}},
			{Offset: 1, Color: color.NRGBA{B: 0xff, A: 0xff}},
		},
		Matrix:  svgpath.Identity,
		Opacity: 0xff,
		End:     svgpath.Point{X: 1},
	}
	s.FillPath(rect(0, 0, 10, 10), g)
	content := output(t, pdf)
	assert.NotContains(t, content, "/ShadingType")
}

func TestDrawImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	pdf := newPDF(t)
	pdf.AddPage()
	s := NewSink(pdf)
	s.SetTransform(svgpath.Identity.Rotate(0.3))
	s.DrawImage(img, svgpath.Rect{X: 10, Y: 10, W: 40, H: 20}, svgpath.Rect{W: 4, H: 2})
	s.DrawImage(img, svgpath.Rect{}, svgpath.Rect{W: 4, H: 4}) // empty destination
	require.NoError(t, s.Err())

	content := output(t, pdf)
	assert.Equal(t, 1, strings.Count(content, " Do"))
	assert.Equal(t, 1, countLines(content, "q"))
}

func TestImageElement(t *testing.T) {
	const href = `data:image/svg+xml,%3Csvg width='2' height='2' xmlns='http://www.w3.org/2000/svg'%3E%3Crect width='2' height='2' fill='blue'/%3E%3C/svg%3E`
	content := renderString(t, `<svg width="20" height="20"><image width="20" height="20" href="`+href+`"/></svg>`)
	assert.Equal(t, 1, strings.Count(content, " Do"))
}
