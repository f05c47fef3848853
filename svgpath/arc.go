package svgpath

import "math"

// Arc converts the endpoint parameterization of an SVG arc command,
// from p0 to p1, to a segment.
// It returns false when the endpoints coincide, in which case the
// arc is omitted. A zero radius degrades to a straight line.
// Radii too small to reach p1 are scaled up, preserving their ratio.
// rotation is in degrees.
func Arc(p0 Point, rx, ry, rotation float64, largeArc, sweep bool, p1 Point) (Segment, bool) {
	if p0 == p1 {
		return nil, false
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return LineTo(p1), true
	}

	phi := rotation * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	dx, dy := (p0.X-p1.X)/2, (p0.Y-p1.Y)/2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// radii correction
	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.
	if num > 0 && den > 0 {
		coef = math.Sqrt(num / den)
	}
	if largeArc == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx

	center := Point{
		X: cosPhi*cx1 - sinPhi*cy1 + (p0.X+p1.X)/2,
		Y: sinPhi*cx1 + cosPhi*cy1 + (p0.Y+p1.Y)/2,
	}
	theta1 := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	theta2 := math.Atan2((-y1-cy1)/ry, (-x1-cx1)/rx)
	delta := theta2 - theta1
	if sweep && delta < 0 {
		delta += 2 * math.Pi
	} else if !sweep && delta > 0 {
		delta -= 2 * math.Pi
	}
	return ArcTo{Center: center, RX: rx, RY: ry, Rotation: phi, Start: theta1, Sweep: delta}, true
}

// svgData returns the arc as SVG path commands.
// Full ellipses are split in two halves, since a single arc command
// cannot describe them.
func (a ArcTo) svgData() string {
	deg := a.Rotation * 180 / math.Pi
	sweep := "0"
	if a.Sweep > 0 {
		sweep = "1"
	}
	arcCmd := func(end Point, large bool) string {
		l := "0"
		if large {
			l = "1"
		}
		return "A" + formatFloat(a.RX) + "," + formatFloat(a.RY) + " " + formatFloat(deg) +
			" " + l + "," + sweep + " " + formatPoint(end)
	}
	if math.Abs(a.Sweep) >= 2*math.Pi-1e-9 {
		mid := a.PointAt(a.Start + a.Sweep/2)
		return arcCmd(mid, false) + " " + arcCmd(a.EndPoint(), false)
	}
	return arcCmd(a.EndPoint(), math.Abs(a.Sweep) > math.Pi)
}
