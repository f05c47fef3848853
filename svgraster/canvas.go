package svgraster

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// maxTileSize bounds the pixel size of a rasterized pattern tile.
const maxTileSize = 2048

var _ svgdraw.PaintSink = (*Canvas)(nil) // assert interface conformance

// Canvas paints into an *image.RGBA.
type Canvas struct {
	raster
	img  *image.RGBA
	errs []error
}

// NewCanvas returns a transparent canvas of the given size, in pixels.
func NewCanvas(width, height int) *Canvas {
	return newCanvas(width, height, svgpath.Identity)
}

func newCanvas(width, height int, base svgpath.Matrix2D) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &Canvas{raster: newRaster(width, height, base), img: img}
}

// Image returns the target image.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Err returns the errors raised while drawing pattern tiles.
func (c *Canvas) Err() error { return errors.Join(c.errs...) }

func (c *Canvas) FillPath(p svgpath.Path, paint svgdraw.Paint) {
	area := c.area(p.Bounds(), 0)
	if area.Empty() {
		return
	}
	c.fillCoverage(p, c.state.transform)
	c.composite(area, paint)
}

func (c *Canvas) StrokePath(p svgpath.Path, paint svgdraw.Paint, stroke svgdraw.StrokeOptions) {
	m := c.state.transform
	area := c.area(p.Bounds(), strokeMargin(stroke, m.ScaleFactor()))
	if area.Empty() {
		return
	}
	c.strokeCoverage(p, m, stroke)
	c.composite(area, paint)
}

// composite paints the coverage with paint.
func (c *Canvas) composite(area image.Rectangle, paint svgdraw.Paint) {
	src := c.source(paint)
	if src == nil {
		return
	}
	c.finishCoverage(area, !c.state.hints.Antialias)
	draw.DrawMask(c.img, area, src, area.Min, c.cov, area.Min, draw.Over)
}

// source returns the image providing the colors of paint, in device
// space, or nil if nothing should be painted.
func (c *Canvas) source(paint svgdraw.Paint) image.Image {
	switch paint := paint.(type) {
	case svgdraw.Solid:
		return image.NewUniform(paint.NRGBA())
	case *svgdraw.Gradient:
		if !c.state.hints.HighQualityColor {
			return image.NewUniform(paint.MeanColor())
		}
		inv, ok := c.state.transform.Invert()
		if !ok {
			return nil
		}
		eval := paint.Evaluator()
		return funcImage{
			bounds: c.cov.Bounds(),
			at: func(x, y int) color.Color {
				return eval(inv.Apply(pixelCenter(x, y)))
			},
		}
	case *svgdraw.Pattern:
		return c.patternSource(paint)
	}
	return nil
}

// patternSource draws one tile of pat at device resolution, and
// repeats it over the plane.
func (c *Canvas) patternSource(pat *svgdraw.Pattern) image.Image {
	if pat.Content == nil || pat.Tile.Empty() {
		return nil
	}
	toDevice := c.state.transform.Mult(pat.Matrix)
	inv, ok := toDevice.Invert()
	if !ok {
		return nil
	}
	scale := toDevice.ScaleFactor()
	tw := min(maxTileSize, max(1, int(math.Ceil(pat.Tile.W*scale))))
	th := min(maxTileSize, max(1, int(math.Ceil(pat.Tile.H*scale))))
	sx, sy := float64(tw)/pat.Tile.W, float64(th)/pat.Tile.H

	tile := newCanvas(tw, th, svgpath.Identity.Scale(sx, sy).Translate(-pat.Tile.X, -pat.Tile.Y))
	if err := pat.Content(tile); err != nil {
		c.errs = append(c.errs, err)
	}
	c.errs = append(c.errs, tile.errs...)

	opacity := pat.Opacity
	return funcImage{
		bounds: c.cov.Bounds(),
		at: func(x, y int) color.Color {
			q := inv.Apply(pixelCenter(x, y))
			u := math.Mod(q.X-pat.Tile.X, pat.Tile.W)
			v := math.Mod(q.Y-pat.Tile.Y, pat.Tile.H)
			if u < 0 {
				u += pat.Tile.W
			}
			if v < 0 {
				v += pat.Tile.H
			}
			px := min(tw-1, int(u*sx))
			py := min(th-1, int(v*sy))
			col := tile.img.RGBAAt(px, py)
			if opacity != 0xff {
				col.R, col.G = mulAlpha(col.R, opacity), mulAlpha(col.G, opacity)
				col.B, col.A = mulAlpha(col.B, opacity), mulAlpha(col.A, opacity)
			}
			return col
		},
	}
}

// affine converts m to the x/image/draw convention.
func affine(m svgpath.Matrix2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}

// DrawImage maps the src rectangle of img onto the user space
// rectangle dst.
func (c *Canvas) DrawImage(img image.Image, dst, src svgpath.Rect) {
	if src.Empty() || dst.Empty() {
		return
	}
	m := c.state.transform.
		Translate(dst.X, dst.Y).
		Scale(dst.W/src.W, dst.H/src.H).
		Translate(-src.X, -src.Y)
	sr := image.Rect(int(src.X), int(src.Y), int(math.Ceil(src.X+src.W)), int(math.Ceil(src.Y+src.H)))

	var interp draw.Interpolator = draw.BiLinear
	if !c.state.hints.HighQualityColor || !c.state.hints.Antialias {
		interp = draw.NearestNeighbor
	}
	var opts *draw.Options
	if c.state.clip != nil {
		opts = &draw.Options{DstMask: c.state.clip}
	}
	interp.Transform(c.img, affine(m), img, sr, draw.Over, opts)
}
