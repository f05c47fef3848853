package svgpath

import "math"

// This file implements the transformation from
// high level shapes to their path equivalent

// maxDx is the maximum radians a cubic splice is allowed to span
// in ellipse parametric when approximating an off-axis ellipse.
const maxDx float64 = math.Pi / 8

// RectPath returns the outline of the rectangle r, with corners
// rounded by rx, ry. Negative radii are treated as zero; if only one radius
// is non zero it is used for both axes. Radii are clamped to half the
// rectangle dimensions.
func RectPath(r Rect, rx, ry float64) Path {
	rx, ry = math.Max(rx, 0), math.Max(ry, 0)
	if rx == 0 {
		rx = ry
	} else if ry == 0 {
		ry = rx
	}
	rx = math.Min(rx, r.W/2)
	ry = math.Min(ry, r.H/2)

	var p Path
	minX, minY, maxX, maxY := r.X, r.Y, r.X+r.W, r.Y+r.H
	if rx == 0 || ry == 0 {
		p.MoveTo(Point{minX, minY})
		p.LineTo(Point{maxX, minY})
		p.LineTo(Point{maxX, maxY})
		p.LineTo(Point{minX, maxY})
		p.Close()
		return p
	}

	corner := func(cx, cy, start float64) {
		p.ArcTo(ArcTo{Center: Point{cx, cy}, RX: rx, RY: ry, Start: start, Sweep: math.Pi / 2})
	}
	p.MoveTo(Point{minX + rx, minY})
	p.LineTo(Point{maxX - rx, minY})
	corner(maxX-rx, minY+ry, -math.Pi/2)
	p.LineTo(Point{maxX, maxY - ry})
	corner(maxX-rx, maxY-ry, 0)
	p.LineTo(Point{minX + rx, maxY})
	corner(minX+rx, maxY-ry, math.Pi/2)
	p.LineTo(Point{minX, minY + ry})
	corner(minX+rx, minY+ry, math.Pi)
	p.Close()
	return p
}

// EllipsePath returns a full ellipse, as a single arc starting
// at the rightmost point.
func EllipsePath(c Point, rx, ry float64) Path {
	var p Path
	p.MoveTo(Point{c.X + rx, c.Y})
	p.ArcTo(ArcTo{Center: c, RX: rx, RY: ry, Sweep: 2 * math.Pi})
	p.Close()
	return p
}

// cubics approximates the arc with cubic bezier curves,
// each spanning at most maxDx.
func (a ArcTo) cubics() []CubicTo {
	// Approximate the ellipse using a set of cubic bezier curves by the method of
	// L. Maisonobe, "Drawing an elliptical arc using polylines, quadratic
	// or cubic Bezier curves", 2003
	// https://www.spaceroots.org/documents/elllipse/elliptical-arc.pdf
	segs := int(math.Abs(a.Sweep)/maxDx) + 1
	dEta := a.Sweep / float64(segs) // span of each segment
	tde := math.Tan(dEta / 2)
	alpha := math.Sin(dEta) * (math.Sqrt(4+3*tde*tde) - 1) / 3 // Math is fun!
	sinTheta, cosTheta := math.Sincos(a.Rotation)
	cx, cy := a.Center.X, a.Center.Y

	out := make([]CubicTo, 0, segs)
	lx, ly := ellipsePointAt(a.RX, a.RY, sinTheta, cosTheta, a.Start, cx, cy)
	ldx, ldy := ellipsePrime(a.RX, a.RY, sinTheta, cosTheta, a.Start, cx, cy)
	for i := 1; i <= segs; i++ {
		eta := a.Start + dEta*float64(i)
		px, py := ellipsePointAt(a.RX, a.RY, sinTheta, cosTheta, eta, cx, cy)
		dx, dy := ellipsePrime(a.RX, a.RY, sinTheta, cosTheta, eta, cx, cy)
		out = append(out, CubicTo{
			C1:  Point{lx + alpha*ldx, ly + alpha*ldy},
			C2:  Point{px - alpha*dx, py - alpha*dy},
			End: Point{px, py},
		})
		lx, ly, ldx, ldy = px, py, dx, dy
	}
	return out
}

// ellipsePrime gives tangent vectors for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePrime(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	bCosEta := b * math.Cos(eta)
	aSinEta := a * math.Sin(eta)
	px = -aSinEta*cosTheta - bCosEta*sinTheta
	py = -aSinEta*sinTheta + bCosEta*cosTheta
	return
}

// ellipsePointAt gives points for parameterized elipse; a, b, radii, eta parameter, center cx, cy
func ellipsePointAt(a, b, sinTheta, cosTheta, eta, cx, cy float64) (px, py float64) {
	aCosEta := a * math.Cos(eta)
	bSinEta := b * math.Sin(eta)
	px = cx + aCosEta*cosTheta - bSinEta*sinTheta
	py = cy + aCosEta*sinTheta + bSinEta*cosTheta
	return
}
