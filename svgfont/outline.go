package svgfont

import (
	"github.com/benoitkugler/oksvgrender/svgpath"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

func fixedToFloat64(x fixed.Int26_6) float64 { return float64(x) / 64 }

func fixedPoint(p fixed.Point26_6, dx float64) svgpath.Point {
	return svgpath.Point{X: fixedToFloat64(p.X) + dx, Y: fixedToFloat64(p.Y)}
}

// Metrics are the vertical metrics of a face at a given size,
// in user units. Descent is positive below the baseline.
type Metrics struct {
	Ascent, Descent, XHeight float64
}

// Metrics returns the vertical metrics of the face at size.
func (f *Face) Metrics(size float64) Metrics {
	var buf sfnt.Buffer
	m, err := f.Font.Metrics(&buf, fixed.Int26_6(size*64), font.HintingNone)
	if err != nil {
		return Metrics{Ascent: 0.8 * size, Descent: 0.2 * size, XHeight: size / 2}
	}
	return Metrics{
		Ascent:  fixedToFloat64(m.Ascent),
		Descent: fixedToFloat64(m.Descent),
		XHeight: fixedToFloat64(m.XHeight),
	}
}

// Outline returns the glyph outlines of text set with face at size,
// the baseline origin being (0, 0) and the Y axis going down,
// and the advance width of the run. Kerning is applied
// when the font provides it. Missing glyphs use the notdef glyph.
func Outline(face *Face, text string, size float64) (svgpath.Path, float64) {
	var (
		out     svgpath.Path
		buf     sfnt.Buffer
		x       float64
		prev    sfnt.GlyphIndex
		hasPrev bool
	)
	ppem := fixed.Int26_6(size * 64)
	for _, r := range text {
		gid, err := face.Font.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		if hasPrev {
			// fonts without a kern table return an error
			if k, err := face.Font.Kern(&buf, prev, gid, ppem, font.HintingNone); err == nil {
				x += fixedToFloat64(k)
			}
		}
		appendGlyph(&out, face.Font, &buf, gid, ppem, x)
		if adv, err := face.Font.GlyphAdvance(&buf, gid, ppem, font.HintingNone); err == nil {
			x += fixedToFloat64(adv)
		}
		prev, hasPrev = gid, true
	}
	return out, x
}

// Advance returns the advance width of text, without building the outlines.
func Advance(face *Face, text string, size float64) float64 {
	var (
		buf     sfnt.Buffer
		x       float64
		prev    sfnt.GlyphIndex
		hasPrev bool
	)
	ppem := fixed.Int26_6(size * 64)
	for _, r := range text {
		gid, err := face.Font.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		if hasPrev {
			if k, err := face.Font.Kern(&buf, prev, gid, ppem, font.HintingNone); err == nil {
				x += fixedToFloat64(k)
			}
		}
		if adv, err := face.Font.GlyphAdvance(&buf, gid, ppem, font.HintingNone); err == nil {
			x += fixedToFloat64(adv)
		}
		prev, hasPrev = gid, true
	}
	return x
}

// appendGlyph adds the contours of the glyph, shifted by dx.
// Each contour is closed; quadratic segments are converted to cubics.
func appendGlyph(p *svgpath.Path, f *sfnt.Font, buf *sfnt.Buffer, gid sfnt.GlyphIndex, ppem fixed.Int26_6, dx float64) {
	segments, err := f.LoadGlyph(buf, gid, ppem, nil)
	if err != nil {
		return
	}
	var (
		cur  svgpath.Point
		open bool
	)
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			cur = fixedPoint(seg.Args[0], dx)
			p.MoveTo(cur)
			open = true
		case sfnt.SegmentOpLineTo:
			cur = fixedPoint(seg.Args[0], dx)
			p.LineTo(cur)
		case sfnt.SegmentOpQuadTo:
			q, end := fixedPoint(seg.Args[0], dx), fixedPoint(seg.Args[1], dx)
			c1 := cur.Add(q.Sub(cur).Scale(2. / 3))
			c2 := end.Add(q.Sub(end).Scale(2. / 3))
			p.CubicTo(c1, c2, end)
			cur = end
		case sfnt.SegmentOpCubeTo:
			end := fixedPoint(seg.Args[2], dx)
			p.CubicTo(fixedPoint(seg.Args[0], dx), fixedPoint(seg.Args[1], dx), end)
			cur = end
		}
	}
	if open {
		p.Close()
	}
}
