package svgpath

import (
	"fmt"
	"math"
)

// Matrix2D represents an affine transformation:
//
//	x' = A x + C y + E
//	y' = B x + D y + F
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity transform.
var Identity = Matrix2D{A: 1, D: 1}

// Mult returns a·b: the transform applying b first, then a.
func (a Matrix2D) Mult(b Matrix2D) Matrix2D {
	return Matrix2D{
		A: a.A*b.A + a.C*b.B,
		B: a.B*b.A + a.D*b.B,
		C: a.A*b.C + a.C*b.D,
		D: a.B*b.C + a.D*b.D,
		E: a.A*b.E + a.C*b.F + a.E,
		F: a.B*b.E + a.D*b.F + a.F,
	}
}

// Translate returns a · translate(x, y).
func (a Matrix2D) Translate(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{A: 1, D: 1, E: x, F: y})
}

// Scale returns a · scale(x, y).
func (a Matrix2D) Scale(x, y float64) Matrix2D {
	return a.Mult(Matrix2D{A: x, D: y})
}

// Rotate returns a · rotate(theta), with theta in radians.
func (a Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sincos(theta)
	return a.Mult(Matrix2D{A: c, B: s, C: -s, D: c})
}

// SkewX returns a · skewX(theta), with theta in radians.
func (a Matrix2D) SkewX(theta float64) Matrix2D {
	return a.Mult(Matrix2D{A: 1, C: math.Tan(theta), D: 1})
}

// SkewY returns a · skewY(theta), with theta in radians.
func (a Matrix2D) SkewY(theta float64) Matrix2D {
	return a.Mult(Matrix2D{A: 1, B: math.Tan(theta), D: 1})
}

// Det returns the determinant of the linear part.
func (a Matrix2D) Det() float64 { return a.A*a.D - a.B*a.C }

// Invert returns the inverse transform. A singular
// matrix is returned unchanged, with ok set to false.
func (a Matrix2D) Invert() (Matrix2D, bool) {
	det := a.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return a, false
	}
	return Matrix2D{
		A: a.D / det,
		B: -a.B / det,
		C: -a.C / det,
		D: a.A / det,
		E: (a.C*a.F - a.D*a.E) / det,
		F: (a.B*a.E - a.A*a.F) / det,
	}, true
}

// Apply transforms the point p.
func (a Matrix2D) Apply(p Point) Point {
	return Point{X: p.X*a.A + p.Y*a.C + a.E, Y: p.X*a.B + p.Y*a.D + a.F}
}

// ApplyVector transforms v without the translation part.
func (a Matrix2D) ApplyVector(v Point) Point {
	return Point{X: v.X*a.A + v.Y*a.C, Y: v.X*a.B + v.Y*a.D}
}

// ScaleFactor returns the mean scale of the transform, sqrt(|det|),
// used to convert user unit widths to device units.
func (a Matrix2D) ScaleFactor() float64 { return math.Sqrt(math.Abs(a.Det())) }

// IsIdentity is true for the identity transform.
func (a Matrix2D) IsIdentity() bool { return a == Identity }

func (a Matrix2D) String() string {
	return fmt.Sprintf("matrix(%g %g %g %g %g %g)", a.A, a.B, a.C, a.D, a.E, a.F)
}
