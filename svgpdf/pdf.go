// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
//
// Geometry is transformed before being written, so that the only
// graphic state saved on the PDF side is the clipping path.
package svgpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgraster"
	"github.com/benoitkugler/oksvgrender/svgrender"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/draw"
)

// maxTiles bounds the number of pattern tiles painted by one operation.
const maxTiles = 4096

// ErrTooManyTiles is raised when a pattern would need more than maxTiles
// tiles to cover a shape.
var ErrTooManyTiles = errors.New("svgpdf: pattern needs too many tiles")

var _ svgdraw.PaintSink = (*Sink)(nil) // assert interface conformance

type pdfState struct {
	token     svgdraw.Token
	transform svgpath.Matrix2D // including base
	clips     int              // clipping levels opened in this container
	hints     svgdraw.RenderingHints
}

// Sink writes paint operations to the current page of a gofpdf document.
// Device space is the page, in the unit of the document, with the origin at
// the top left corner.
type Sink struct {
	pdf  *gofpdf.Fpdf
	base svgpath.Matrix2D

	state pdfState
	stack []pdfState
	next  svgdraw.Token
	errs  []error
}

// NewSink returns a sink which will write to the given `pdf`.
func NewSink(pdf *gofpdf.Fpdf) *Sink {
	return newSink(pdf, svgpath.Identity)
}

func newSink(pdf *gofpdf.Fpdf, base svgpath.Matrix2D) *Sink {
	return &Sink{pdf: pdf, base: base, state: pdfState{transform: base, hints: svgdraw.DefaultHints}}
}

// Err returns the errors raised while drawing pattern tiles
// and images.
func (s *Sink) Err() error { return errors.Join(s.errs...) }

// Close ends every clipping level still open. It must be called
// before the page is finished.
func (s *Sink) Close() {
	for len(s.stack) != 0 {
		s.EndContainer(s.stack[len(s.stack)-1].token)
	}
	s.closeClips(s.state.clips)
	s.state.clips = 0
}

func (s *Sink) BeginContainer() svgdraw.Token {
	s.next++
	s.state.token = s.next
	s.stack = append(s.stack, s.state)
	s.state.clips = 0
	return s.next
}

func (s *Sink) EndContainer(t svgdraw.Token) {
	for i := len(s.stack) - 1; i >= 0; i-- {
		if s.stack[i].token != t {
			continue
		}
		n := s.state.clips
		for _, st := range s.stack[i+1:] {
			n += st.clips
		}
		s.closeClips(n)
		s.state = s.stack[i]
		s.stack = s.stack[:i]
		return
	}
}

func (s *Sink) SetTransform(m svgpath.Matrix2D) { s.state.transform = s.base.Mult(m) }

func (s *Sink) SetRenderingHints(h svgdraw.RenderingHints) { s.state.hints = h }

func (s *Sink) ResetClip() {
	s.closeClips(s.state.clips)
	s.state.clips = 0
}

// resetAlpha keeps the alpha cached by gofpdf in line with
// the graphic state, around the save and restore operators.
func (s *Sink) resetAlpha() { s.pdf.SetAlpha(1, "Normal") }

func (s *Sink) closeClips(n int) {
	for ; n > 0; n-- {
		s.pdf.TransformEnd()
	}
	s.resetAlpha()
}

func (s *Sink) SetClip(c svgdraw.ClipRegion) {
	s.resetAlpha()
	s.pdf.TransformBegin()
	s.state.clips++

	m := s.state.transform
	switch {
	case c.Op == svgdraw.Exclude:
		w, h := s.pdf.GetPageSize()
		s.pdf.MoveTo(0, 0)
		s.pdf.LineTo(w, 0)
		s.pdf.LineTo(w, h)
		s.pdf.LineTo(0, h)
		s.pdf.ClosePath()
		for _, p := range c.Paths {
			s.writePath(p, m)
		}
		s.pdf.RawWriteStr("W* n")
	case len(c.Paths) == 0:
		s.pdf.RawWriteStr("0 0 0 0 re W n")
	case len(c.Paths) == 1 && c.Paths[0].FillRule == svgpath.EvenOdd:
		s.writePath(c.Paths[0], m)
		s.pdf.RawWriteStr("W* n")
	default:
		// union of several paths: non zero winding of their outlines
		for _, p := range c.Paths {
			s.writePath(p, m)
		}
		s.pdf.RawWriteStr("W n")
	}
}

// pather sends the path commands to the pdf.
type pather struct {
	pdf *gofpdf.Fpdf
}

func (p pather) MoveTo(a svgpath.Point) { p.pdf.MoveTo(a.X, a.Y) }
func (p pather) LineTo(b svgpath.Point) { p.pdf.LineTo(b.X, b.Y) }
func (p pather) CubicTo(c1, c2, end svgpath.Point) {
	p.pdf.CurveBezierCubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
}
func (p pather) Close() { p.pdf.ClosePath() }

func (s *Sink) writePath(p svgpath.Path, m svgpath.Matrix2D) {
	p.Walk(pather{s.pdf}, m)
}

func fillOp(rule svgpath.FillRule) string {
	if rule == svgpath.EvenOdd {
		return "f*"
	}
	return "f"
}

func (s *Sink) setFillColor(c color.NRGBA) {
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetAlpha(float64(c.A)/0xff, "Normal")
}

func (s *Sink) FillPath(p svgpath.Path, paint svgdraw.Paint) {
	if p.IsEmpty() {
		return
	}
	switch paint := paint.(type) {
	case svgdraw.Solid:
		c := paint.NRGBA()
		if c.A == 0 {
			return
		}
		s.setFillColor(c)
		s.writePath(p, s.state.transform)
		s.pdf.DrawPath(fillOp(p.FillRule))
	case *svgdraw.Gradient:
		s.fillGradient(p, paint)
	case *svgdraw.Pattern:
		s.fillPattern(p, paint)
	}
}

// StrokePath paints gradient strokes with the mean color of the
// gradient. Pattern strokes are not supported.
func (s *Sink) StrokePath(p svgpath.Path, paint svgdraw.Paint, stroke svgdraw.StrokeOptions) {
	if p.IsEmpty() {
		return
	}
	var c color.NRGBA
	switch paint := paint.(type) {
	case svgdraw.Solid:
		c = paint.NRGBA()
	case *svgdraw.Gradient:
		c = paint.MeanColor()
	default:
		return
	}
	if c.A == 0 {
		return
	}
	m := s.state.transform
	scale := m.ScaleFactor()
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetAlpha(float64(c.A)/0xff, "Normal")
	s.pdf.SetLineWidth(stroke.Width * scale)
	s.pdf.SetLineCapStyle(capStyle(stroke.Cap))
	s.pdf.SetLineJoinStyle(joinStyle(stroke.Join))
	s.pdf.RawWriteStr(fmt.Sprintf("%.2f M", max(1, stroke.MiterLimit)))
	dash := make([]float64, len(stroke.Dash))
	for i, d := range stroke.Dash {
		dash[i] = d * scale
	}
	s.pdf.SetDashPattern(dash, stroke.DashOffset*scale)
	s.writePath(p, m)
	s.pdf.DrawPath("D")
}

func capStyle(c svgdraw.CapMode) string {
	switch c {
	case svgdraw.RoundCap, svgdraw.CubicCap, svgdraw.QuadraticCap:
		return "round"
	case svgdraw.SquareCap:
		return "square"
	default:
		return "butt"
	}
}

func joinStyle(j svgdraw.JoinMode) string {
	switch j {
	case svgdraw.Round, svgdraw.Arc, svgdraw.ArcClip:
		return "round"
	case svgdraw.Bevel:
		return "bevel"
	default:
		return "miter"
	}
}

// withClip runs paint with the path p as clip.
func (s *Sink) withClip(p svgpath.Path, paint func()) {
	t := s.BeginContainer()
	s.SetClip(svgdraw.ClipRegion{Paths: []svgpath.Path{p}})
	paint()
	s.EndContainer(t)
}

// fillGradient uses the two colors shadings of gofpdf. Other
// gradients are painted with their mean color.
func (s *Sink) fillGradient(p svgpath.Path, g *svgdraw.Gradient) {
	m := s.state.transform.Mult(g.Matrix)
	shading := s.state.hints.HighQualityColor && len(g.Stops) == 2 && g.Spread == svgdraw.PadSpread
	if g.Radial && !isAxisAligned(m) {
		shading = false
	}
	if !shading {
		s.FillPath(p, svgdraw.Solid{Color: g.MeanColor(), Opacity: 0xff})
		return
	}

	c1, c2 := g.Stops[0].Color, g.Stops[1].Color
	alpha := float64(g.Opacity) / 0xff * (float64(c1.A) + float64(c2.A)) / (2 * 0xff)
	if alpha == 0 {
		return
	}
	s.withClip(p, func() {
		s.pdf.SetAlpha(alpha, "Normal")
		if g.Radial {
			center := m.Apply(g.Center)
			rx, ry := math.Abs(m.A)*g.RX, math.Abs(m.D)*g.RY
			box := svgpath.Rect{X: center.X - rx, Y: center.Y - ry, W: 2 * rx, H: 2 * ry}
			if box.Empty() {
				return
			}
			fx, fy := boxFraction(box, m.Apply(g.Focus))
			s.pdf.RadialGradient(box.X, box.Y, box.W, box.H,
				int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B),
				fx, fy, 0.5, 0.5, 0.5)
			return
		}
		// a square box keeps the direction of the gradient vector
		b := p.Bounds().Transform(s.state.transform)
		side := max(b.W, b.H)
		if side <= 0 {
			return
		}
		box := svgpath.Rect{X: b.X, Y: b.Y, W: side, H: side}
		x1, y1 := boxFraction(box, m.Apply(g.Start))
		x2, y2 := boxFraction(box, m.Apply(g.End))
		s.pdf.LinearGradient(box.X, box.Y, box.W, box.H,
			int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B),
			x1, y1, x2, y2)
	})
}

// boxFraction returns the position of p in box, as expected by
// gofpdf shadings: from the bottom left corner, in fraction of the box size.
func boxFraction(box svgpath.Rect, p svgpath.Point) (float64, float64) {
	return (p.X - box.X) / box.W, (box.Y + box.H - p.Y) / box.H
}

func isAxisAligned(m svgpath.Matrix2D) bool {
	const eps = 1e-9
	return math.Abs(m.B) < eps && math.Abs(m.C) < eps
}

// fillPattern repeats the tile content over the bounding box
// of p, clipped by p. The pattern opacity is not supported.
func (s *Sink) fillPattern(p svgpath.Path, pat *svgdraw.Pattern) {
	if pat.Content == nil || pat.Tile.Empty() {
		return
	}
	toDevice := s.state.transform.Mult(pat.Matrix)
	inv, ok := toDevice.Invert()
	if !ok {
		return
	}
	b := p.Bounds().Transform(s.state.transform).Transform(inv)
	tile := pat.Tile
	i0 := math.Floor((b.X - tile.X) / tile.W)
	i1 := math.Ceil((b.X + b.W - tile.X) / tile.W)
	j0 := math.Floor((b.Y - tile.Y) / tile.H)
	j1 := math.Ceil((b.Y + b.H - tile.Y) / tile.H)
	if (i1-i0)*(j1-j0) > maxTiles {
		s.errs = append(s.errs, ErrTooManyTiles)
		return
	}

	s.withClip(p, func() {
		for j := j0; j < j1; j++ {
			for i := i0; i < i1; i++ {
				sub := newSink(s.pdf, toDevice.Translate(i*tile.W, j*tile.H))
				sub.SetClip(svgdraw.RectClip(tile))
				if err := pat.Content(sub); err != nil {
					s.errs = append(s.errs, err)
				}
				sub.Close()
				s.errs = append(s.errs, sub.errs...)
			}
		}
	})
}

// DrawImage embeds the src part of img as a PNG image.
func (s *Sink) DrawImage(img image.Image, dst, src svgpath.Rect) {
	if src.Empty() || dst.Empty() {
		return
	}
	sr := image.Rect(int(src.X), int(src.Y), int(math.Ceil(src.X+src.W)), int(math.Ceil(src.Y+src.H)))
	crop := image.NewNRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	draw.Draw(crop, crop.Bounds(), img, sr.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, crop); err != nil {
		s.errs = append(s.errs, err)
		return
	}
	name := uuid.NewString()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	s.pdf.RegisterImageOptionsReader(name, opts, &buf)

	// the image occupies the unit square [0,0,1,1] of the page, which
	// q maps to dst, in pdf coordinates
	k := s.pdf.GetConversionRatio()
	_, h := s.pdf.GetPageSize()
	toPDF := svgpath.Matrix2D{A: k, D: -k, F: k * h}
	fromPDF := svgpath.Matrix2D{A: 1 / k, D: -1 / k, F: h}
	unit := s.state.transform.Translate(dst.X, dst.Y).Scale(dst.W, dst.H)
	q := toPDF.Mult(unit).Mult(fromPDF)

	s.pdf.TransformBegin()
	s.pdf.Transform(gofpdf.TransformMatrix{A: q.A, B: q.B, C: q.C, D: q.D, E: q.E, F: q.F})
	s.pdf.ImageOptions(name, 0, 0, 1, 1, false, opts, 0, "")
	s.pdf.TransformEnd()
}

// Render adds a page to pdf, sized after the document, and renders doc in it.
// opts.Width and opts.Height are in the unit of pdf.
// Embedded SVG images are rasterized with svgraster, unless opts.Images is set.
func Render(ctx context.Context, pdf *gofpdf.Fpdf, doc *svgdom.Document, opts svgrender.Options) error {
	if opts.Images == nil {
		opts.Images = &svgraster.Rasterizer{Options: svgrender.Options{
			Logger: opts.Logger, ErrorMode: opts.ErrorMode, Language: opts.Language, Fonts: opts.Fonts,
		}}
	}
	r := svgrender.New(doc, opts)
	w, h := r.Size()
	if w <= 0 || h <= 0 {
		return fmt.Errorf("svgpdf: invalid page size %gx%g", w, h)
	}
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
	sink := NewSink(pdf)
	err := r.Render(ctx, sink, nil)
	sink.Close()
	return errors.Join(err, sink.Err(), pdf.Error())
}

// RenderSVGToPDF reads the given document and writes it to out,
// as a one page PDF whose size, in points, is the document size.
func RenderSVGToPDF(svg io.Reader, out io.Writer, opts ...svgdom.Option) error {
	doc, err := svgdom.Parse(svg, opts...)
	if err != nil {
		return err
	}
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreator("oksvgrender", true)
	if err := Render(context.Background(), pdf, doc, svgrender.Options{}); err != nil {
		return err
	}
	return pdf.Output(out)
}

// RenderSVGFileToPDF is a convenience wrapper around RenderSVGToPDF,
// writing to the file pdfName.
func RenderSVGFileToPDF(svgName, pdfName string) error {
	doc, err := svgdom.ParseFile(svgName)
	if err != nil {
		return err
	}
	pdf := gofpdf.New("P", "pt", "A4", "")
	if err := Render(context.Background(), pdf, doc, svgrender.Options{}); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(pdfName)
}
