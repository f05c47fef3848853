package svgpaint

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
)

// MiterLimitError is returned for a stroke-miterlimit lower than 1.
// The element using it must not be painted.
type MiterLimitError struct {
	Element string
	Value   float64
}

func (e *MiterLimitError) Error() string {
	return fmt.Sprintf("svg: invalid stroke-miterlimit %g on %s (must be at least 1)", e.Value, e.Element)
}

// Stroke resolves the stroke properties of n, in the user space of n.
func (r *Resolver) Stroke(n *svgdom.Node) (svgdraw.StrokeOptions, error) {
	out := svgdraw.DefaultStroke
	out.Width = n.PropertyLength("stroke-width", svgdom.Diagonal, 1)
	if out.Width < 0 {
		out.Width = 0
	}

	switch n.Property("stroke-linecap") {
	case "round":
		out.Cap = svgdraw.RoundCap
	case "square":
		out.Cap = svgdraw.SquareCap
	default:
		out.Cap = svgdraw.ButtCap
	}

	switch n.Property("stroke-linejoin") {
	case "round":
		out.Join = svgdraw.Round
	case "bevel":
		out.Join = svgdraw.Bevel
	case "arcs":
		out.Join = svgdraw.Arc
	case "miter-clip":
		out.Join = svgdraw.MiterClip
	default:
		out.Join = svgdraw.Miter
	}

	if v := n.Property("stroke-miterlimit"); v != "" {
		limit, err := svgdom.ParseNumber(v)
		if err == nil {
			if limit < 1 {
				var desc string
				if n.Element != nil {
					desc = n.Element.Describe()
				}
				return out, &MiterLimitError{Element: desc, Value: limit}
			}
			out.MiterLimit = limit
		}
	}

	out.Dash = dashArray(n)
	out.DashOffset = n.PropertyLength("stroke-dashoffset", svgdom.Diagonal, 0)
	return out, nil
}

// dashArray returns nil for solid strokes: none, invalid lists,
// negative values or a zero sum.
func dashArray(n *svgdom.Node) []float64 {
	v := strings.TrimSpace(n.Property("stroke-dasharray"))
	if v == "none" || v == "" {
		return nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	out := make([]float64, 0, 2*len(fields))
	var sum float64
	for _, f := range fields {
		l, err := n.ResolveLength(f, svgdom.Diagonal)
		if err != nil || l < 0 {
			return nil
		}
		sum += l
		out = append(out, l)
	}
	if sum == 0 {
		return nil
	}
	if len(out)%2 == 1 {
		out = append(out, out...)
	}
	return out
}
