package svgpath

import "math"

// compute the bounding box of a path, needed when using paint servers
// and clip paths with objectBoundingBox units

// quadratic polinomial derivative of a cubic bezier
// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c  a,b and c are:
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		if b == 0 {
			return nil
		}
		// simple line
		return []float64{-c / b}
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

type extent struct {
	minX, minY, maxX, maxY float64
}

func newExtent() extent {
	return extent{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (e *extent) add(p Point) {
	e.minX = math.Min(e.minX, p.X)
	e.minY = math.Min(e.minY, p.Y)
	e.maxX = math.Max(e.maxX, p.X)
	e.maxY = math.Max(e.maxY, p.Y)
}

func (e *extent) addCubic(p0, p1, p2, p3 Point) {
	e.add(p0)
	e.add(p3)
	aX, bX, cX := cubicDerivative(p0.X, p1.X, p2.X, p3.X)
	aY, bY, cY := cubicDerivative(p0.Y, p1.Y, p2.Y, p3.Y)
	for _, t := range append(quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)...) {
		// filter invalid value
		if !(0 < t && t < 1) {
			continue
		}
		e.add(Point{
			bezierSpline(p0.X, p1.X, p2.X, p3.X, t),
			bezierSpline(p0.Y, p1.Y, p2.Y, p3.Y, t),
		})
	}
}

// addArc adds the arc a transformed by m, using the exact extrema:
// the transformed coordinates are of the form k + u cos(eta) + v sin(eta),
// extremal at eta = atan2(v, u) (mod pi).
func (e *extent) addArc(a ArcTo, m Matrix2D) {
	e.add(m.Apply(a.StartPoint()))
	e.add(m.Apply(a.EndPoint()))
	sin, cos := math.Sincos(a.Rotation)
	ux, uy := a.RX*cos, a.RX*sin
	vx, vy := -a.RY*sin, a.RY*cos
	lo, hi := a.Start, a.Start+a.Sweep
	if lo > hi {
		lo, hi = hi, lo
	}
	for _, base := range [...]float64{
		math.Atan2(m.A*vx+m.C*vy, m.A*ux+m.C*uy),
		math.Atan2(m.B*vx+m.D*vy, m.B*ux+m.D*uy),
	} {
		for _, eta := range [...]float64{base, base + math.Pi} {
			eta += 2 * math.Pi * math.Ceil((lo-eta)/(2*math.Pi))
			for ; eta <= hi; eta += 2 * math.Pi {
				e.add(m.Apply(a.PointAt(eta)))
			}
		}
	}
}

func (e extent) rect() Rect {
	if e.minX > e.maxX {
		return Rect{}
	}
	return Rect{e.minX, e.minY, e.maxX - e.minX, e.maxY - e.minY}
}

// boundsWalker accumulates the extent of the curves it receives.
type boundsWalker struct {
	ext        extent
	cur, start Point
}

func (b *boundsWalker) MoveTo(p Point) {
	b.cur, b.start = p, p
	b.ext.add(p)
}

func (b *boundsWalker) LineTo(p Point) {
	b.ext.add(p)
	b.cur = p
}

func (b *boundsWalker) CubicTo(c1, c2, end Point) {
	b.ext.addCubic(b.cur, c1, c2, end)
	b.cur = end
}

func (b *boundsWalker) Close() { b.cur = b.start }

// Bounds returns the exact bounding box of the path geometry,
// control points excluded.
func (p Path) Bounds() Rect {
	return p.TransformedBounds(Identity)
}

// TransformedBounds returns the bounding box of the path transformed by m.
func (p Path) TransformedBounds(m Matrix2D) Rect {
	b := boundsWalker{ext: newExtent()}
	for _, seg := range p.Segments {
		switch seg := seg.(type) {
		case MoveTo:
			b.MoveTo(m.Apply(Point(seg)))
		case LineTo:
			b.LineTo(m.Apply(Point(seg)))
		case CubicTo:
			b.CubicTo(m.Apply(seg.C1), m.Apply(seg.C2), m.Apply(seg.End))
		case ArcTo:
			b.ext.addArc(seg, m)
			b.cur = m.Apply(seg.EndPoint())
		case Close:
			b.Close()
		}
	}
	return b.ext.rect()
}
