package svgpath

import (
	"github.com/tdewolff/parse/v2/strconv"
)

// pathCursor is used while parsing SVG path data.
type pathCursor struct {
	data []byte
	pos  int

	path        Path
	cur, start  Point
	lastControl Point // second control point of the last cubic, or control of the last quadratic
	lastCommand byte  // upper case letter of the last emitted command
	subpathOpen bool
}

func isCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

func isSeparator(c byte) bool {
	return c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func (c *pathCursor) skipSeparators() {
	for c.pos < len(c.data) && isSeparator(c.data[c.pos]) {
		c.pos++
	}
}

func (c *pathCursor) readNumber() (float64, bool) {
	c.skipSeparators()
	if c.pos >= len(c.data) {
		return 0, false
	}
	f, n := strconv.ParseFloat(c.data[c.pos:])
	if n == 0 {
		return 0, false
	}
	c.pos += n
	return f, true
}

func (c *pathCursor) readNumbers(out []float64) bool {
	for i := range out {
		var ok bool
		if out[i], ok = c.readNumber(); !ok {
			return false
		}
	}
	return true
}

// readFlag reads an arc flag, which is a single character
// and may be directly followed by the next value.
func (c *pathCursor) readFlag() (bool, bool) {
	c.skipSeparators()
	if c.pos >= len(c.data) {
		return false, false
	}
	switch c.data[c.pos] {
	case '0':
		c.pos++
		return false, true
	case '1':
		c.pos++
		return true, true
	}
	return false, false
}

// skipToCommand moves to the next command letter,
// dropping a malformed segment.
func (c *pathCursor) skipToCommand() {
	for c.pos < len(c.data) && !isCommand(c.data[c.pos]) {
		c.pos++
	}
}

func (c *pathCursor) ensureSubpath() {
	if !c.subpathOpen {
		c.path.MoveTo(c.cur)
		c.start = c.cur
		c.subpathOpen = true
	}
}

func (c *pathCursor) lineTo(p Point) {
	c.ensureSubpath()
	c.path.LineTo(p)
	c.cur = p
}

func (c *pathCursor) cubicTo(c1, c2, p Point) {
	c.ensureSubpath()
	c.path.CubicTo(c1, c2, p)
	c.cur = p
}

// quadTo emits the exact cubic equivalent of the quadratic curve.
func (c *pathCursor) quadTo(q, p Point) {
	c1 := c.cur.Add(q.Sub(c.cur).Scale(2. / 3))
	c2 := p.Add(q.Sub(p).Scale(2. / 3))
	c.cubicTo(c1, c2, p)
}

// reflect returns the reflection of the last control point
// if the last command is one of kinds, or the current point.
func (c *pathCursor) reflect(kinds string) Point {
	for i := 0; i < len(kinds); i++ {
		if c.lastCommand == kinds[i] {
			return c.cur.Scale(2).Sub(c.lastControl)
		}
	}
	return c.cur
}

// ParsePathData parses the content of a d attribute.
// A malformed segment is skipped, and parsing resumes at the
// next command letter.
func ParsePathData(d string) Path {
	c := pathCursor{data: []byte(d)}
	var cmd byte
	var args [7]float64
	for {
		c.skipSeparators()
		if c.pos >= len(c.data) {
			break
		}
		if ch := c.data[c.pos]; isCommand(ch) {
			cmd = ch
			c.pos++
		} else if cmd == 0 {
			c.pos++
			c.skipToCommand()
			continue
		}
		if !c.segment(cmd, args[:]) {
			c.skipToCommand()
			cmd = 0
			continue
		}
		// implicit repeats of a moveto are linetos
		switch cmd {
		case 'M':
			cmd = 'L'
		case 'm':
			cmd = 'l'
		case 'Z', 'z':
			cmd = 0
		}
	}
	return c.path
}

// segment reads the arguments of one command and emits it.
func (c *pathCursor) segment(cmd byte, args []float64) bool {
	rel := cmd >= 'a'
	var origin Point
	if rel {
		origin = c.cur
	}
	pt := func(x, y float64) Point { return Point{x + origin.X, y + origin.Y} }
	upper := cmd &^ 0x20

	switch upper {
	case 'M':
		if !c.readNumbers(args[:2]) {
			return false
		}
		c.cur = pt(args[0], args[1])
		c.path.MoveTo(c.cur)
		c.start = c.cur
		c.subpathOpen = true
	case 'L':
		if !c.readNumbers(args[:2]) {
			return false
		}
		c.lineTo(pt(args[0], args[1]))
	case 'H':
		if !c.readNumbers(args[:1]) {
			return false
		}
		c.lineTo(Point{args[0] + origin.X, c.cur.Y})
	case 'V':
		if !c.readNumbers(args[:1]) {
			return false
		}
		c.lineTo(Point{c.cur.X, args[0] + origin.Y})
	case 'C':
		if !c.readNumbers(args[:6]) {
			return false
		}
		c2 := pt(args[2], args[3])
		c.cubicTo(pt(args[0], args[1]), c2, pt(args[4], args[5]))
		c.lastControl = c2
	case 'S':
		if !c.readNumbers(args[:4]) {
			return false
		}
		c1 := c.reflect("CS")
		c2 := pt(args[0], args[1])
		c.cubicTo(c1, c2, pt(args[2], args[3]))
		c.lastControl = c2
	case 'Q':
		if !c.readNumbers(args[:4]) {
			return false
		}
		q := pt(args[0], args[1])
		c.quadTo(q, pt(args[2], args[3]))
		c.lastControl = q
	case 'T':
		if !c.readNumbers(args[:2]) {
			return false
		}
		q := c.reflect("QT")
		c.quadTo(q, pt(args[0], args[1]))
		c.lastControl = q
	case 'A':
		if !c.readNumbers(args[:3]) {
			return false
		}
		large, ok := c.readFlag()
		if !ok {
			return false
		}
		sweep, ok := c.readFlag()
		if !ok {
			return false
		}
		if !c.readNumbers(args[3:5]) {
			return false
		}
		end := pt(args[3], args[4])
		if seg, ok := Arc(c.cur, args[0], args[1], args[2], large, sweep, end); ok {
			c.ensureSubpath()
			c.path.Segments = append(c.path.Segments, seg)
		}
		c.cur = end
	case 'Z':
		if c.subpathOpen {
			c.path.Close()
		}
		c.cur = c.start
		c.subpathOpen = false
	}
	c.lastCommand = upper
	return true
}

// ParseNumbers reads a list of numbers separated by
// whitespace or commas, stopping at the first invalid value.
func ParseNumbers(s string) []float64 {
	c := pathCursor{data: []byte(s)}
	var out []float64
	for {
		f, ok := c.readNumber()
		if !ok {
			return out
		}
		out = append(out, f)
	}
}
