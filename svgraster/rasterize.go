package svgraster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgfont"
	"github.com/benoitkugler/oksvgrender/svgrender"
)

// maxNesting bounds the chains of SVG documents embedded by <image>.
const maxNesting = 8

// ErrNestingTooDeep is returned when embedded SVG images nest beyond maxNesting.
var ErrNestingTooDeep = errors.New("svg: embedded images nested too deeply")

type nestingKey struct{}

func nesting(ctx context.Context) int {
	n, _ := ctx.Value(nestingKey{}).(int)
	return n
}

// Frame is one rasterized document.
type Frame struct {
	Image *image.RGBA
	// Hits is the hit surface, nil unless Rasterizer.HitTest is set.
	Hits     *image.RGBA
	Renderer *svgrender.Renderer
}

// Dispatcher returns a dispatcher sending the pointer events hitting
// the frame elements to handler. It panics if the frame has no hit surface.
func (f *Frame) Dispatcher(handler svgrender.Handler) *svgrender.Dispatcher {
	if f.Hits == nil {
		panic("svgraster: frame rendered without hit surface")
	}
	return svgrender.NewDispatcher(f.Renderer, f.Hits, handler)
}

// Rasterizer renders documents to images. It also rasterizes
// the SVG documents embedded by <image> elements.
// A Rasterizer may be used by several goroutines.
type Rasterizer struct {
	Options svgrender.Options
	// HitTest enables the hit surface of the frames.
	HitTest bool

	once  sync.Once
	fonts *svgfont.Registry
}

var _ svgrender.ImageRasterizer = (*Rasterizer)(nil)

func (z *Rasterizer) options(width, height int) svgrender.Options {
	z.once.Do(func() {
		z.fonts = z.Options.Fonts
		if z.fonts == nil {
			z.fonts = svgfont.NewRegistry(svgfont.WithLogger(z.Options.Logger))
		}
	})
	opts := z.Options
	opts.Fonts = z.fonts
	if opts.Images == nil {
		opts.Images = z
	}
	opts.Width, opts.Height = float64(width), float64(height)
	return opts
}

// Rasterize renders doc. A non positive width or height is computed
// from the document size, keeping its aspect ratio.
func (z *Rasterizer) Rasterize(ctx context.Context, doc *svgdom.Document, width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		w, h := svgrender.New(doc, z.options(width, height)).Size()
		width, height = int(math.Ceil(w)), int(math.Ceil(h))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svg: invalid raster size %dx%d", width, height)
	}
	r := svgrender.New(doc, z.options(width, height))
	canvas := NewCanvas(width, height)
	frame := &Frame{Image: canvas.Image(), Renderer: r}
	var ids *HitCanvas
	if z.HitTest {
		ids = NewHitCanvas(width, height)
		frame.Hits = ids.Image()
	}

	var err error
	if ids != nil {
		err = r.Render(ctx, canvas, ids)
	} else {
		err = r.Render(ctx, canvas, nil)
	}
	if err := errors.Join(err, canvas.Err()); err != nil {
		return frame, err
	}
	return frame, nil
}

// RasterizeSVG implements svgrender.ImageRasterizer.
func (z *Rasterizer) RasterizeSVG(ctx context.Context, doc *svgdom.Document, width, height int) (image.Image, error) {
	depth := nesting(ctx)
	if depth >= maxNesting {
		return nil, ErrNestingTooDeep
	}
	ctx = context.WithValue(ctx, nestingKey{}, depth+1)
	sub := Rasterizer{Options: z.Options}
	sub.Options.Fonts = z.options(width, height).Fonts
	frame, err := sub.Rasterize(ctx, doc, width, height)
	if frame == nil {
		return nil, err
	}
	// embedded documents are images: their errors do not propagate
	// unless they stopped the rendering
	var cycle *svgdom.CyclicReferenceError
	if err != nil && errors.As(err, &cycle) && z.Options.ErrorMode != svgdom.StrictErrorMode {
		err = nil
	}
	return frame.Image, err
}

// RasterSVGToImage parses the document read from r and
// renders it at its own size, with default options.
func RasterSVGToImage(r io.Reader, opts ...svgdom.Option) (*image.RGBA, error) {
	doc, err := svgdom.Parse(r, opts...)
	if err != nil {
		return nil, err
	}
	var z Rasterizer
	frame, err := z.Rasterize(context.Background(), doc, 0, 0)
	if frame == nil {
		return nil, err
	}
	return frame.Image, err
}
