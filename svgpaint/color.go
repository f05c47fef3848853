// Package svgpaint resolves the fill and stroke properties of SVG
// elements into the paints and stroke options consumed by the sinks.
package svgpaint

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"golang.org/x/image/colornames"
)

// ErrInvalidColor is returned for unparsable color values.
var ErrInvalidColor = errors.New("svg: invalid color")

// ParseColor parses an SVG color string in all forms,
// including all SVG1.1 names, obtained from the colornames package.
// The keywords none and currentColor are handled by the callers.
func ParseColor(colorStr string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	if v == "transparent" {
		return color.NRGBA{}, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return color.NRGBA{cn.R, cn.G, cn.B, cn.A}, nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}

	name, args, ok := splitFunction(v)
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, colorStr)
	}
	switch name {
	case "rgb", "rgba":
		if len(args) != 3 && len(args) != 4 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", svgdom.ErrParamMismatch, colorStr)
		}
		var out color.NRGBA
		for i, c := range []*uint8{&out.R, &out.G, &out.B} {
			val, err := parseColorValue(args[i])
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, colorStr)
			}
			*c = val
		}
		out.A = 0xFF
		if len(args) == 4 {
			a, err := parseAlphaValue(args[3])
			if err != nil {
				return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, colorStr)
			}
			out.A = a
		}
		return out, nil
	case "hsl", "hsla":
		if len(args) != 3 && len(args) != 4 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", svgdom.ErrParamMismatch, colorStr)
		}
		out, err := parseHSL(args[:3])
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: %q: %s", ErrInvalidColor, colorStr, err)
		}
		if len(args) == 4 {
			if out.A, err = parseAlphaValue(args[3]); err != nil {
				return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, colorStr)
			}
		}
		return out, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, colorStr)
}

// splitFunction splits "name(a, b c)" into its name and arguments.
func splitFunction(v string) (name string, args []string, ok bool) {
	open := strings.IndexByte(v, '(')
	if open == -1 || !strings.HasSuffix(v, ")") {
		return "", nil, false
	}
	name = strings.TrimSpace(v[:open])
	args = strings.FieldsFunc(v[open+1:len(v)-1], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	return name, args, true
}

// parseHexColor accepts the rgb, rgba, rrggbb and rrggbbaa forms.
func parseHexColor(s string) (color.NRGBA, error) {
	switch len(s) {
	case 3, 4:
		// SVG specs say duplicate characters in case of 3 digit hex number
		long := make([]byte, 0, 2*len(s))
		for i := 0; i < len(s); i++ {
			long = append(long, s[i], s[i])
		}
		s = string(long)
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, s)
	}
	out := color.NRGBA{A: 0xFF}
	for i, c := range []*uint8{&out.R, &out.G, &out.B, &out.A} {
		if 2*i >= len(s) {
			break
		}
		t, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("%w: #%s", ErrInvalidColor, s)
		}
		*c = uint8(t)
	}
	return out, nil
}

func clampUnit(f float64) float64 { return math.Max(0, math.Min(1, f)) }

func parseColorValue(v string) (uint8, error) {
	if strings.HasSuffix(v, "%") {
		n, err := svgdom.ParseNumber(v[:len(v)-1])
		if err != nil {
			return 0, err
		}
		return uint8(math.Round(clampUnit(n/100) * 0xFF)), nil
	}
	n, err := svgdom.ParseNumber(v)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(math.Max(0, math.Min(0xFF, n)))), nil
}

func parseAlphaValue(v string) (uint8, error) {
	f, err := parseUnit(v)
	if err != nil {
		return 0, err
	}
	return uint8(math.Round(f * 0xFF)), nil
}

// parseUnit parses a number or a percentage, clamped to [0, 1].
func parseUnit(v string) (float64, error) {
	v = strings.TrimSpace(v)
	d := 1.
	if strings.HasSuffix(v, "%") {
		d = 100
		v = v[:len(v)-1]
	}
	f, err := svgdom.ParseNumber(v)
	if err != nil {
		return 0, err
	}
	return clampUnit(f / d), nil
}

func parseHSL(vals []string) (color.NRGBA, error) {
	H, err := svgdom.ParseNumber(strings.TrimSuffix(vals[0], "deg"))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hue in hsl: '%s' (%s)", vals[0], err)
	}
	H = math.Mod(H, 360)
	if H < 0 {
		H += 360
	}
	S, err := parseUnit(vals[1])
	if err != nil || !strings.HasSuffix(vals[1], "%") {
		return color.NRGBA{}, fmt.Errorf("invalid saturation in hsl: '%s'", vals[1])
	}
	L, err := parseUnit(vals[2])
	if err != nil || !strings.HasSuffix(vals[2], "%") {
		return color.NRGBA{}, fmt.Errorf("invalid lightness in hsl: '%s'", vals[2])
	}

	C := (1 - math.Abs((2*L)-1)) * S
	X := C * (1 - math.Abs(math.Mod(H/60, 2)-1))
	m := L - C/2

	var rp, gp, bp float64
	if H < 60 {
		rp, gp, bp = C, X, 0
	} else if H < 120 {
		rp, gp, bp = X, C, 0
	} else if H < 180 {
		rp, gp, bp = 0, C, X
	} else if H < 240 {
		rp, gp, bp = 0, X, C
	} else if H < 300 {
		rp, gp, bp = X, 0, C
	} else {
		rp, gp, bp = C, 0, X
	}
	ch := func(f float64) uint8 { return uint8(math.Min(255, math.Round((f+m)*255))) }
	return color.NRGBA{ch(rp), ch(gp), ch(bp), 0xFF}, nil
}
