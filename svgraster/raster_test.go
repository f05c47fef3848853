package svgraster

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgrender"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveToPngFile(t *testing.T, name string, m image.Image) {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, m))
	require.NoError(t, os.WriteFile(filepath.Join(t.TempDir(), name+".png"), b.Bytes(), 0o644))
}

func rasterize(t *testing.T, src string, width, height int, hitTest bool) *Frame {
	t.Helper()
	doc, err := svgdom.Parse(strings.NewReader(src))
	require.NoError(t, err)
	z := Rasterizer{HitTest: hitTest}
	frame, err := z.Rasterize(context.Background(), doc, width, height)
	require.NoError(t, err)
	saveToPngFile(t, strings.ReplaceAll(t.Name(), "/", "_"), frame.Image)
	return frame
}

func assertColor(t *testing.T, exp color.RGBA, img *image.RGBA, x, y int) {
	t.Helper()
	got := img.RGBAAt(x, y)
	near := func(a, b uint8) bool {
		d := int(a) - int(b)
		return -3 <= d && d <= 3
	}
	assert.True(t, near(exp.R, got.R) && near(exp.G, got.G) && near(exp.B, got.B) && near(exp.A, got.A),
		"at (%d, %d): expected %v, got %v", x, y, exp, got)
}

var (
	red         = color.RGBA{R: 0xff, A: 0xff}
	blue        = color.RGBA{B: 0xff, A: 0xff}
	transparent = color.RGBA{}
)

func TestFill(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="10"><rect width="10" height="10" fill="red"/></svg>`, 0, 0, false)
	assert.Equal(t, image.Rect(0, 0, 20, 10), frame.Image.Bounds())
	assertColor(t, red, frame.Image, 5, 5)
	assertColor(t, transparent, frame.Image, 15, 5)
	assert.Nil(t, frame.Hits)
}

func TestScaled(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="10"><rect width="10" height="10" fill="red"/></svg>`, 40, 0, false)
	assert.Equal(t, image.Rect(0, 0, 40, 20), frame.Image.Bounds())
	assertColor(t, red, frame.Image, 15, 15)
	assertColor(t, transparent, frame.Image, 25, 5)
}

func TestStroke(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="20">
		<line x1="0" y1="10" x2="20" y2="10" stroke="blue" stroke-width="4"/>
	</svg>`, 0, 0, false)
	assertColor(t, blue, frame.Image, 10, 10)
	assertColor(t, blue, frame.Image, 10, 8)
	assertColor(t, transparent, frame.Image, 10, 3)
}

func TestClip(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="10">
		<clipPath id="c"><rect width="5" height="10"/></clipPath>
		<rect width="10" height="10" fill="red" clip-path="url(#c)"/>
	</svg>`, 0, 0, false)
	assertColor(t, red, frame.Image, 2, 5)
	assertColor(t, transparent, frame.Image, 7, 5)
}

func TestGradient(t *testing.T) {
	frame := rasterize(t, `<svg width="100" height="10">
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<rect width="100" height="10" fill="url(#g)"/>
	</svg>`, 0, 0, false)
	left, right := frame.Image.RGBAAt(0, 5), frame.Image.RGBAAt(99, 5)
	assert.Greater(t, left.R, uint8(0xf0))
	assert.Less(t, left.B, uint8(0x10))
	assert.Greater(t, right.B, uint8(0xf0))
	assert.Less(t, right.R, uint8(0x10))
}

func TestTranslucentRadialPad(t *testing.T) {
	frame := rasterize(t, `<svg width="100" height="100">
		<radialGradient id="g" gradientUnits="userSpaceOnUse" cx="50" cy="50" r="20">
			<stop offset="0" stop-color="blue"/><stop offset="1" stop-color="blue"/>
		</radialGradient>
		<rect width="100" height="100" fill="url(#g)" fill-opacity="0.5"/>
	</svg>`, 0, 0, false)
	half := color.RGBA{B: 0x80, A: 0x80}
	assertColor(t, half, frame.Image, 50, 50)
	assertColor(t, half, frame.Image, 50, 40)
	assertColor(t, half, frame.Image, 5, 5)
	assertColor(t, half, frame.Image, 95, 50)
}

func TestPattern(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="20">
		<pattern id="p" patternUnits="userSpaceOnUse" width="10" height="10">
			<rect width="5" height="10" fill="red"/>
		</pattern>
		<rect width="20" height="20" fill="url(#p)"/>
	</svg>`, 0, 0, false)
	for _, x := range []int{2, 12} {
		assertColor(t, red, frame.Image, x, 5)
		assertColor(t, red, frame.Image, x, 15)
	}
	for _, x := range []int{7, 17} {
		assertColor(t, transparent, frame.Image, x, 5)
	}
}

func TestAliased(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="20">
		<circle cx="10" cy="10" r="7.3" fill="red" shape-rendering="crispEdges"/>
	</svg>`, 0, 0, false)
	for i := 3; i < len(frame.Image.Pix); i += 4 {
		a := frame.Image.Pix[i]
		require.True(t, a == 0 || a == 0xff, "partial alpha %d", a)
	}
}

func TestHitSurface(t *testing.T) {
	frame := rasterize(t, `<svg width="20" height="10">
		<circle id="c" cx="5" cy="5" r="4.5" fill="red"/>
		<rect id="r" x="10" width="10" height="10" fill="none" stroke="blue" stroke-width="2"/>
	</svg>`, 0, 0, true)
	require.NotNil(t, frame.Hits)
	doc := frame.Renderer.Document()

	// every pixel is either empty or a valid id
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			c := frame.Hits.RGBAAt(x, y)
			if c.A == 0 {
				continue
			}
			id, ok := svgrender.IDFromColor(c)
			require.True(t, ok)
			require.NotNil(t, frame.Renderer.ElementByHitID(id), "at (%d, %d)", x, y)
		}
	}

	var clicked []string
	d := frame.Dispatcher(func(ev svgrender.Event) error {
		if ev.Type == svgrender.Click {
			clicked = append(clicked, ev.Target.ID)
		}
		return nil
	})
	assert.Same(t, doc.ElementByID("c"), d.Target(5, 5))
	assert.Same(t, doc.ElementByID("r"), d.Target(10.5, 5))
	assert.Nil(t, d.Target(15, 5)) // inside the unfilled rect
	d.Down(5, 5)
	d.Up(5, 5)
	assert.Equal(t, []string{"c"}, clicked)
}

func TestEmbeddedSVG(t *testing.T) {
	const href = `data:image/svg+xml,%3Csvg width='2' height='2' xmlns='http://www.w3.org/2000/svg'%3E%3Crect width='2' height='2' fill='blue'/%3E%3C/svg%3E`
	frame := rasterize(t, `<svg width="20" height="20"><image width="20" height="20" href="`+href+`"/></svg>`, 0, 0, false)
	assertColor(t, blue, frame.Image, 10, 10)
}

func TestSelfEmbedding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "self.svg")
	require.NoError(t, os.WriteFile(path, []byte(`<svg width="4" height="4">
		<rect width="4" height="4" fill="red"/>
		<image width="4" height="4" href="self.svg"/>
	</svg>`), 0o644))
	doc, err := svgdom.ParseFile(path)
	require.NoError(t, err)

	z := Rasterizer{Options: svgrender.Options{ErrorMode: svgdom.StrictErrorMode}}
	_, err = z.Rasterize(context.Background(), doc, 0, 0)
	assert.ErrorIs(t, err, ErrNestingTooDeep)

	lenient := &Rasterizer{}
	frame, err := lenient.Rasterize(context.Background(), doc, 0, 0)
	require.NoError(t, err)
	assertColor(t, red, frame.Image, 2, 2)
}

func TestRasterSVGToImage(t *testing.T) {
	img, err := RasterSVGToImage(strings.NewReader(`<svg viewBox="0 0 30 15"><rect width="30" height="15" fill="blue"/></svg>`))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 15), img.Bounds())
	assertColor(t, blue, img, 15, 7)

	_, err = RasterSVGToImage(strings.NewReader(`not svg`))
	assert.Error(t, err)
}
