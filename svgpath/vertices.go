package svgpath

import "math"

// Vertex is a point where markers may be drawn: the start
// of a sub-path or the end of a segment.
// In and Out are the directions (in radians) of the incoming and
// outgoing tangents; HasIn and HasOut report if they are defined.
type Vertex struct {
	Point
	In, Out       float64
	HasIn, HasOut bool
}

// direction returns the angle of v, and false for a null vector.
func direction(v Point) (float64, bool) {
	if v.X == 0 && v.Y == 0 {
		return 0, false
	}
	return math.Atan2(v.Y, v.X), true
}

// firstDirection returns the direction of the first non null vector.
func firstDirection(vs ...Point) (float64, bool) {
	for _, v := range vs {
		if a, ok := direction(v); ok {
			return a, true
		}
	}
	return 0, false
}

// tangents returns the directions at the start and at the end of seg,
// starting from cur.
func tangents(cur Point, seg Segment) (start, end float64, ok bool) {
	switch seg := seg.(type) {
	case LineTo:
		start, ok = direction(Point(seg).Sub(cur))
		return start, start, ok
	case CubicTo:
		start, ok1 := firstDirection(seg.C1.Sub(cur), seg.C2.Sub(cur), seg.End.Sub(cur))
		end, ok2 := firstDirection(seg.End.Sub(seg.C2), seg.End.Sub(seg.C1), seg.End.Sub(cur))
		return start, end, ok1 && ok2
	case ArcTo:
		sin, cos := math.Sincos(seg.Rotation)
		sign := 1.
		if seg.Sweep < 0 {
			sign = -1
		}
		dx, dy := ellipsePrime(seg.RX, seg.RY, sin, cos, seg.Start, 0, 0)
		start, ok1 := direction(Point{dx * sign, dy * sign})
		dx, dy = ellipsePrime(seg.RX, seg.RY, sin, cos, seg.Start+seg.Sweep, 0, 0)
		end, ok2 := direction(Point{dx * sign, dy * sign})
		return start, end, ok1 && ok2
	}
	return 0, 0, false
}

func endPoint(cur Point, seg Segment) Point {
	switch seg := seg.(type) {
	case MoveTo:
		return Point(seg)
	case LineTo:
		return Point(seg)
	case CubicTo:
		return seg.End
	case ArcTo:
		return seg.EndPoint()
	}
	return cur
}

// Vertices returns the marker vertices of the path, in order.
// A closed sub-path ends with a vertex at its start point, whose
// outgoing direction is the one of the first segment.
func (p Path) Vertices() []Vertex {
	var out []Vertex
	var cur, start Point
	subStart := -1 // index in out of the current sub-path start vertex

	setOut := func(dir float64) {
		if n := len(out); n > 0 && !out[n-1].HasOut {
			out[n-1].Out, out[n-1].HasOut = dir, true
		}
	}
	for _, seg := range p.Segments {
		switch seg := seg.(type) {
		case MoveTo:
			cur, start = Point(seg), Point(seg)
			out = append(out, Vertex{Point: cur})
			subStart = len(out) - 1
		case Close:
			if subStart == -1 {
				continue
			}
			v := Vertex{Point: start}
			first := out[subStart]
			if dir, ok := direction(start.Sub(cur)); ok {
				setOut(dir)
				v.In, v.HasIn = dir, true
			} else {
				if n := len(out); n > 0 && out[n-1].HasIn {
					v.In, v.HasIn = out[n-1].In, true
				}
				if first.HasOut {
					setOut(first.Out)
				}
			}
			if first.HasOut {
				v.Out, v.HasOut = first.Out, true
			}
			if v.HasIn && !first.HasIn {
				out[subStart].In, out[subStart].HasIn = v.In, true
			}
			out = append(out, v)
			cur = start
			subStart = -1
		default:
			if subStart == -1 {
				// segment after a close: implicit moveto
				out = append(out, Vertex{Point: cur})
				subStart = len(out) - 1
				start = cur
			}
			s, e, ok := tangents(cur, seg)
			if ok {
				setOut(s)
			}
			cur = endPoint(cur, seg)
			v := Vertex{Point: cur}
			if ok {
				v.In, v.HasIn = e, true
			}
			out = append(out, v)
		}
	}
	return out
}
