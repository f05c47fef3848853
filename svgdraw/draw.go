// Given a parsed SVG document, the renderer
// emits paint operations to sinks implementing
// the actual drawing, such as a rasterizer to output .png images
// or a pdf writer. This package defines that boundary.
package svgdraw

import (
	"image"
	"image/color"

	"github.com/benoitkugler/oksvgrender/svgpath"
)

// Token identifies an open container.
type Token int

// PaintSink knows how to do the actual draw operations
// but doesn't need any SVG knowledge.
//
// The sink keeps a graphic state made of the current transform,
// the active clip and the rendering hints. BeginContainer saves it
// and the matching EndContainer restores it.
// Paths are given in the user space of the current transform.
type PaintSink interface {
	BeginContainer() Token
	EndContainer(Token)

	// SetTransform replaces the current transform, which maps
	// user space to device space.
	SetTransform(m svgpath.Matrix2D)
	// SetClip combines the region, in the current user space,
	// with the active clip.
	SetClip(c ClipRegion)
	// ResetClip removes the clip set in the current container.
	ResetClip()
	SetRenderingHints(h RenderingHints)

	FillPath(p svgpath.Path, paint Paint)
	StrokePath(p svgpath.Path, paint Paint, stroke StrokeOptions)
	// DrawImage draws the src part of img into dst, in user space.
	DrawImage(img image.Image, dst, src svgpath.Rect)
}

// IdSink mirrors the paint operations with flat id colors,
// to build a hit-testing surface. It must not blend nor anti-alias.
type IdSink interface {
	BeginContainer() Token
	EndContainer(Token)

	SetTransform(m svgpath.Matrix2D)
	SetClip(c ClipRegion)
	ResetClip()

	FillPath(p svgpath.Path, id color.RGBA)
	StrokePath(p svgpath.Path, id color.RGBA, stroke StrokeOptions)
	// DrawImage fills dst with id where img is opaque enough.
	DrawImage(img image.Image, dst, src svgpath.Rect, id color.RGBA)
}

// ClipOp specifies how a clip region combines with the active clip.
type ClipOp uint8

const (
	Intersect ClipOp = iota
	Exclude
)

func (c ClipOp) String() string {
	switch c {
	case Intersect:
		return "Intersect"
	case Exclude:
		return "Exclude"
	default:
		return "<unknown ClipOp>"
	}
}

// ClipRegion is the union of its paths, each with its own fill rule.
// An Intersect region without paths clips everything.
type ClipRegion struct {
	Paths []svgpath.Path
	Op    ClipOp
}

// RectClip returns the region made of r only.
func RectClip(r svgpath.Rect) ClipRegion {
	return ClipRegion{Paths: []svgpath.Path{svgpath.RectPath(r, 0, 0)}}
}

// Bounds returns the union of the bounding boxes of the region paths.
func (c ClipRegion) Bounds() svgpath.Rect {
	var out svgpath.Rect
	for _, p := range c.Paths {
		out = out.Union(p.Bounds())
	}
	return out
}

// RenderingHints are derived from shape-rendering, text-rendering
// and color-rendering.
type RenderingHints struct {
	Antialias        bool
	TextAntialias    bool
	HighQualityColor bool
}

// DefaultHints enables every quality option.
var DefaultHints = RenderingHints{Antialias: true, TextAntialias: true, HighQualityColor: true}

type StrokeOptions struct {
	Width      float64 // width of the line, in user units
	Cap        CapMode
	Join       JoinMode
	MiterLimit float64   // the miter cutoff value for miter, arc, miterclip and arcClip joinModes
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// DefaultStroke matches the initial values of the stroke properties.
var DefaultStroke = StrokeOptions{Width: 1, Cap: ButtCap, Join: Miter, MiterLimit: 4}

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Arc JoinMode = iota // New in SVG2
	Round
	Bevel
	Miter
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
	CubicCap     // Not part of the SVG2.0 standard.
	QuadraticCap // Not part of the SVG2.0 standard.
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	case CubicCap:
		return "CubicCap"
	case QuadraticCap:
		return "QuadraticCap"
	default:
		return "<unknown CapMode>"
	}
}

// NopIdSink discards every operation.
type NopIdSink struct{}

var _ IdSink = (*NopIdSink)(nil) // assert interface conformance

func (*NopIdSink) BeginContainer() Token                                         { return 0 }
func (*NopIdSink) EndContainer(Token)                                            {}
func (*NopIdSink) SetTransform(svgpath.Matrix2D)                                 {}
func (*NopIdSink) SetClip(ClipRegion)                                            {}
func (*NopIdSink) ResetClip()                                                    {}
func (*NopIdSink) FillPath(svgpath.Path, color.RGBA)                             {}
func (*NopIdSink) StrokePath(svgpath.Path, color.RGBA, StrokeOptions)            {}
func (*NopIdSink) DrawImage(image.Image, svgpath.Rect, svgpath.Rect, color.RGBA) {}
