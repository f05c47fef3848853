package svgpaint

import (
	"image/color"
	"math"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
)

var opaqueBlack = color.NRGBA{A: 0xFF}

// NormalizeStops returns stops with offsets clamped into [0, 1] and
// never decreasing, starting at 0 and ending at 1 (the boundary colors
// being repeated as needed). An empty list is replaced by two black stops.
// Normalizing a normalized list returns the same list.
func NormalizeStops(stops []svgdraw.Stop) []svgdraw.Stop {
	if len(stops) == 0 {
		return []svgdraw.Stop{{Offset: 0, Color: opaqueBlack}, {Offset: 1, Color: opaqueBlack}}
	}
	out := make([]svgdraw.Stop, 0, len(stops)+2)
	prev := 0.
	for _, s := range stops {
		s.Offset = math.Max(prev, clampUnit(s.Offset))
		prev = s.Offset
		out = append(out, s)
	}
	if first := out[0]; first.Offset > 0 {
		out = append([]svgdraw.Stop{{Offset: 0, Color: first.Color}}, out...)
	}
	if last := out[len(out)-1]; last.Offset < 1 {
		out = append(out, svgdraw.Stop{Offset: 1, Color: last.Color})
	}
	return out
}

// readStops returns the raw stops defined by the children of e.
func readStops(e *svgdom.Element) []svgdraw.Stop {
	var out []svgdraw.Stop
	for _, child := range e.Children {
		if child.Kind != svgdom.KindStop {
			continue
		}
		sn := svgdom.NodeOf(child)
		var s svgdraw.Stop
		if v, ok := child.Attr("offset"); ok {
			s.Offset, _ = parseUnit(v)
		}
		c, ok := resolveColor(sn, sn.Property("stop-color"))
		if !ok {
			c = opaqueBlack
		}
		c.A = uint8(math.Round(float64(c.A) * parseOpacity(sn.Property("stop-opacity"))))
		s.Color = c
		out = append(out, s)
	}
	return out
}

// resolveColor handles currentColor, using the color property of n.
func resolveColor(n *svgdom.Node, v string) (color.NRGBA, bool) {
	if v == "currentColor" || v == "currentcolor" {
		v = n.Property("color")
		if v == "currentColor" || v == "currentcolor" {
			return opaqueBlack, true
		}
	}
	c, err := ParseColor(v)
	return c, err == nil
}

// parseOpacity parses an opacity value, returning 1 for invalid values.
func parseOpacity(v string) float64 {
	f, err := parseUnit(v)
	if err != nil {
		return 1
	}
	return f
}

// toAlpha converts an opacity in [0, 1] to a uint8.
func toAlpha(f float64) uint8 { return uint8(math.Round(clampUnit(f) * 0xFF)) }
