// Package svgraster implements a raster backend for svgrender,
// by wrapping rasterx.
//
// A Canvas is a svgdraw.PaintSink painting into an *image.RGBA, a
// HitCanvas is the svgdraw.IdSink counterpart, filling aliased flat colors
// so that every pixel holds exactly one hit id.
package svgraster

import (
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdraw.Round:     rasterx.Round,
		svgdraw.Bevel:     rasterx.Bevel,
		svgdraw.Miter:     rasterx.Miter,
		svgdraw.MiterClip: rasterx.MiterClip,
		svgdraw.Arc:       rasterx.Arc,
		svgdraw.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdraw.NilCap:       rasterx.ButtCap,
		svgdraw.ButtCap:      rasterx.ButtCap,
		svgdraw.SquareCap:    rasterx.SquareCap,
		svgdraw.RoundCap:     rasterx.RoundCap,
		svgdraw.CubicCap:     rasterx.CubicCap,
		svgdraw.QuadraticCap: rasterx.QuadraticCap,
	}
)

func gapFor(join svgdraw.JoinMode) rasterx.GapFunc {
	if join == svgdraw.Round || join == svgdraw.Arc {
		return rasterx.RoundGap
	}
	return rasterx.FlatGap
}

func toFixed(p svgpath.Point) fixed.Point26_6 { return rasterx.ToFixedP(p.X, p.Y) }

// adder sends a path to a rasterx.Adder.
type adder struct {
	a           rasterx.Adder
	start, last svgpath.Point
	open        bool
}

var _ svgpath.Walker = (*adder)(nil)

func (w *adder) MoveTo(p svgpath.Point) {
	if w.open {
		w.a.Stop(false)
	}
	w.a.Start(toFixed(p))
	w.start, w.last, w.open = p, p, true
}

func (w *adder) ensureOpen() {
	if !w.open {
		w.a.Start(toFixed(w.last))
		w.start, w.open = w.last, true
	}
}

func (w *adder) LineTo(p svgpath.Point) {
	w.ensureOpen()
	w.a.Line(toFixed(p))
	w.last = p
}

func (w *adder) CubicTo(c1, c2, end svgpath.Point) {
	w.ensureOpen()
	w.a.CubeBezier(toFixed(c1), toFixed(c2), toFixed(end))
	w.last = end
}

func (w *adder) Close() {
	if w.open {
		w.a.Stop(true)
	}
	w.last, w.open = w.start, false
}

func (w *adder) end() {
	if w.open {
		w.a.Stop(false)
		w.open = false
	}
}

type rasterState struct {
	token     svgdraw.Token
	transform svgpath.Matrix2D // including base
	clip      *image.Alpha     // nil for no clip; never modified once set
	hints     svgdraw.RenderingHints
}

// raster is the state shared by Canvas and HitCanvas: the container
// stack and the coverage rasterizer.
type raster struct {
	width, height int
	base          svgpath.Matrix2D // applied before every transform

	cov    *image.Alpha // coverage of the current operation
	filler *rasterx.Filler
	dasher *rasterx.Dasher

	state rasterState
	stack []rasterState
	next  svgdraw.Token
}

func newRaster(width, height int, base svgpath.Matrix2D) raster {
	cov := image.NewAlpha(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, cov, cov.Bounds())
	scanner.SetColor(color.Opaque) // cov only records coverage
	return raster{
		width: width, height: height, base: base,
		cov:    cov,
		filler: rasterx.NewFiller(width, height, scanner),
		dasher: rasterx.NewDasher(width, height, scanner),
		state:  rasterState{transform: base, hints: svgdraw.DefaultHints},
	}
}

func (r *raster) BeginContainer() svgdraw.Token {
	r.next++
	r.state.token = r.next
	r.stack = append(r.stack, r.state)
	return r.next
}

// EndContainer restores the state saved by the matching BeginContainer,
// closing any container left opened inside.
func (r *raster) EndContainer(t svgdraw.Token) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].token == t {
			r.state = r.stack[i]
			r.stack = r.stack[:i]
			return
		}
	}
}

func (r *raster) SetTransform(m svgpath.Matrix2D) { r.state.transform = r.base.Mult(m) }

func (r *raster) SetRenderingHints(h svgdraw.RenderingHints) { r.state.hints = h }

func (r *raster) ResetClip() { r.state.clip = nil }

// SetClip intersects the active clip with c, given in the current user space.
func (r *raster) SetClip(c svgdraw.ClipRegion) {
	mask := image.NewAlpha(r.cov.Bounds())
	for _, p := range c.Paths {
		r.fillCoverage(p, r.state.transform)
		for i, v := range r.cov.Pix {
			mask.Pix[i] = max(mask.Pix[i], v)
		}
	}
	if c.Op == svgdraw.Exclude {
		for i, v := range mask.Pix {
			mask.Pix[i] = 0xff - v
		}
	}
	if old := r.state.clip; old != nil {
		for i, v := range old.Pix {
			mask.Pix[i] = mulAlpha(mask.Pix[i], v)
		}
	}
	r.state.clip = mask
}

func mulAlpha(a, b uint8) uint8 { return uint8((uint16(a)*uint16(b) + 127) / 255) }

// fillCoverage rasterizes the inside of p into r.cov.
func (r *raster) fillCoverage(p svgpath.Path, m svgpath.Matrix2D) {
	clear(r.cov.Pix)
	r.filler.Clear()
	r.filler.SetWinding(p.FillRule == svgpath.NonZero)
	w := adder{a: r.filler}
	p.Walk(&w, m)
	w.end()
	r.filler.Draw()
}

// strokeCoverage rasterizes the stroke of p into r.cov.
// The stroke is computed in device space, its width and dashes being
// scaled by the mean scale of m.
func (r *raster) strokeCoverage(p svgpath.Path, m svgpath.Matrix2D, s svgdraw.StrokeOptions) {
	clear(r.cov.Pix)
	r.dasher.Clear()
	scale := m.ScaleFactor()
	var dash []float64
	if len(s.Dash) != 0 {
		dash = make([]float64, len(s.Dash))
		for i, d := range s.Dash {
			dash[i] = d * scale
		}
	}
	r.dasher.SetStroke(
		fixed.Int26_6(s.Width*scale*64), fixed.Int26_6(s.MiterLimit*64),
		capToFunc[s.Cap], capToFunc[s.Cap], gapFor(s.Join),
		joinToJoin[s.Join], dash, s.DashOffset*scale,
	)
	w := adder{a: r.dasher}
	p.Walk(&w, m)
	w.end()
	r.dasher.Draw()
}

// finishCoverage applies the aliasing and the clip to r.cov,
// restricted to area.
func (r *raster) finishCoverage(area image.Rectangle, aliased bool) {
	clip := r.state.clip
	for y := area.Min.Y; y < area.Max.Y; y++ {
		i := r.cov.PixOffset(area.Min.X, y)
		for x := area.Min.X; x < area.Max.X; x, i = x+1, i+1 {
			v := r.cov.Pix[i]
			if clip != nil {
				v = mulAlpha(v, clip.Pix[i])
			}
			if aliased {
				if v >= 0x80 {
					v = 0xff
				} else {
					v = 0
				}
			}
			r.cov.Pix[i] = v
		}
	}
}

// area returns the pixels which may be touched when painting the
// user space rectangle b, expanded by margin device units.
func (r *raster) area(b svgpath.Rect, margin float64) image.Rectangle {
	d := b.Transform(r.state.transform)
	out := image.Rect(
		int(math.Floor(d.X-margin))-1, int(math.Floor(d.Y-margin))-1,
		int(math.Ceil(d.X+d.W+margin))+1, int(math.Ceil(d.Y+d.H+margin))+1,
	)
	return out.Intersect(r.cov.Bounds())
}

// strokeMargin bounds the distance between the path and its stroke outline.
func strokeMargin(s svgdraw.StrokeOptions, scale float64) float64 {
	return s.Width * scale * math.Max(s.MiterLimit, 2)
}

// funcImage is an unbounded procedural image, used as paint source.
type funcImage struct {
	bounds image.Rectangle
	at     func(x, y int) color.Color
}

func (f funcImage) ColorModel() color.Model { return color.NRGBAModel }
func (f funcImage) Bounds() image.Rectangle { return f.bounds }
func (f funcImage) At(x, y int) color.Color { return f.at(x, y) }

func pixelCenter(x, y int) svgpath.Point {
	return svgpath.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}
