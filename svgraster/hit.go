package svgraster

import (
	"image"
	"image/color"

	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
)

var _ svgdraw.IdSink = (*HitCanvas)(nil) // assert interface conformance

// HitCanvas fills the hit surface. Coverage is aliased so
// that each pixel ends up with exactly one id color, transparent black
// meaning no element.
type HitCanvas struct {
	raster
	img *image.RGBA
}

// NewHitCanvas returns an empty hit surface of the given size, in pixels.
func NewHitCanvas(width, height int) *HitCanvas {
	return &HitCanvas{
		raster: newRaster(width, height, svgpath.Identity),
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Image returns the hit surface.
func (h *HitCanvas) Image() *image.RGBA { return h.img }

func (h *HitCanvas) FillPath(p svgpath.Path, id color.RGBA) {
	area := h.area(p.Bounds(), 0)
	if area.Empty() {
		return
	}
	h.fillCoverage(p, h.state.transform)
	h.paint(area, id)
}

func (h *HitCanvas) StrokePath(p svgpath.Path, id color.RGBA, stroke svgdraw.StrokeOptions) {
	m := h.state.transform
	area := h.area(p.Bounds(), strokeMargin(stroke, m.ScaleFactor()))
	if area.Empty() {
		return
	}
	h.strokeCoverage(p, m, stroke)
	h.paint(area, id)
}

// DrawImage fills the destination rectangle, whatever the
// transparency of img.
func (h *HitCanvas) DrawImage(_ image.Image, dst, _ svgpath.Rect, id color.RGBA) {
	h.FillPath(svgpath.RectPath(dst, 0, 0), id)
}

func (h *HitCanvas) paint(area image.Rectangle, id color.RGBA) {
	h.finishCoverage(area, true)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if h.cov.AlphaAt(x, y).A != 0 {
				h.img.SetRGBA(x, y, id)
			}
		}
	}
}
