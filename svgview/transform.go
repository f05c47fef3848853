// Package svgview computes the coordinate systems of SVG elements:
// transform lists, viewBox fitting and clipping regions.
package svgview

import (
	"fmt"
	"math"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgpath"
)

// ParseTransform parses a transform list, such as
// "translate(10 20) rotate(45, 5, 5)", into one matrix.
// An empty list is the identity. On error, the transforms
// read so far are returned.
func ParseTransform(v string) (svgpath.Matrix2D, error) {
	m := svgpath.Identity
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(strings.TrimLeft(t, ", \t\n\r"))
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(strings.TrimSpace(d[1])) < 1 {
			return m, fmt.Errorf("%w: badly formed transform %q", svgdom.ErrParamMismatch, t)
		}
		var err error
		m, err = applyTransform(m, strings.ToLower(strings.TrimSpace(d[0])), svgpath.ParseNumbers(d[1]))
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

func applyTransform(m svgpath.Matrix2D, name string, args []float64) (svgpath.Matrix2D, error) {
	ln := len(args)
	mismatch := func() (svgpath.Matrix2D, error) {
		return m, fmt.Errorf("%w: %s with %d values", svgdom.ErrParamMismatch, name, ln)
	}
	switch name {
	case "rotate":
		if ln == 1 {
			m = m.Rotate(args[0] * math.Pi / 180)
		} else if ln == 3 {
			m = m.Translate(args[1], args[2]).
				Rotate(args[0]*math.Pi/180).
				Translate(-args[1], -args[2])
		} else {
			return mismatch()
		}
	case "translate":
		if ln == 1 {
			m = m.Translate(args[0], 0)
		} else if ln == 2 {
			m = m.Translate(args[0], args[1])
		} else {
			return mismatch()
		}
	case "skewx":
		if ln != 1 {
			return mismatch()
		}
		m = m.SkewX(args[0] * math.Pi / 180)
	case "skewy":
		if ln != 1 {
			return mismatch()
		}
		m = m.SkewY(args[0] * math.Pi / 180)
	case "scale":
		if ln == 1 {
			m = m.Scale(args[0], args[0])
		} else if ln == 2 {
			m = m.Scale(args[0], args[1])
		} else {
			return mismatch()
		}
	case "matrix":
		if ln != 6 {
			return mismatch()
		}
		m = m.Mult(svgpath.Matrix2D{
			A: args[0],
			B: args[1],
			C: args[2],
			D: args[3],
			E: args[4],
			F: args[5],
		})
	default:
		return m, fmt.Errorf("%w: unknown transform %q", svgdom.ErrParamMismatch, name)
	}
	return m, nil
}

// LocalTransform returns the transform given by the attribute attr
// of n ("transform", "gradientTransform" or "patternTransform").
// A missing or invalid attribute is the identity; invalid lists
// are reported on the document logger.
func LocalTransform(n *svgdom.Node, attr string) svgpath.Matrix2D {
	v, ok := n.Attr(attr)
	if !ok {
		return svgpath.Identity
	}
	m, err := ParseTransform(v)
	if err != nil {
		if doc := n.Document(); doc != nil {
			doc.Logger().Warn("invalid transform", "element", n.Element.Describe(), "attr", attr, "err", err)
		}
		return svgpath.Identity
	}
	return m
}
