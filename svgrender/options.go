package svgrender

import (
	"context"
	"image"
	"io"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgfont"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// ImageRasterizer turns an SVG document referenced by an <image>
// into a raster of the given size, in pixels.
type ImageRasterizer interface {
	RasterizeSVG(ctx context.Context, doc *svgdom.Document, width, height int) (image.Image, error)
}

// Options configures a Renderer. The zero value is usable.
type Options struct {
	// Logger defaults to a discard logger. A logger attached to the
	// context given to Render takes precedence.
	Logger *log.Logger
	// ErrorMode governs element level problems, such as an invalid
	// stroke-miterlimit or an unreadable image.
	ErrorMode svgdom.ErrorMode
	// Language is matched against systemLanguage in <switch> children.
	// It defaults to English.
	Language language.Tag
	// Fonts defaults to a registry holding the Go fonts.
	Fonts *svgfont.Registry
	// Images rasterizes the SVG documents referenced by <image>.
	// If nil, such images fail with ErrNoRasterizer.
	Images ImageRasterizer
	// MaxDepth bounds the reference chains (use, clip-path, pattern,
	// marker, gradient templates). It defaults to svgdom.DefaultMaxDepth.
	MaxDepth int
	// Width and Height, when positive, set the size of the root
	// viewport, the document being scaled to fit.
	Width, Height float64
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Language == language.Und {
		o.Language = language.English
	}
	if o.Fonts == nil {
		o.Fonts = svgfont.NewRegistry()
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = svgdom.DefaultMaxDepth
	}
	return o
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a context carrying l, used by Render
// instead of the logger of the Options.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFrom returns the logger carried by ctx, or def.
func LoggerFrom(ctx context.Context, def *log.Logger) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok && l != nil {
		return l
	}
	return def
}
