package svgdraw

import (
	"image"
	"image/color"

	"github.com/benoitkugler/oksvgrender/svgpath"
)

// Op is the kind of a recorded command.
type Op uint8

const (
	OpBeginContainer Op = iota
	OpEndContainer
	OpSetTransform
	OpSetClip
	OpResetClip
	OpSetHints
	OpFill
	OpStroke
	OpImage
)

var opNames = [...]string{
	OpBeginContainer: "BeginContainer",
	OpEndContainer:   "EndContainer",
	OpSetTransform:   "SetTransform",
	OpSetClip:        "SetClip",
	OpResetClip:      "ResetClip",
	OpSetHints:       "SetRenderingHints",
	OpFill:           "Fill",
	OpStroke:         "Stroke",
	OpImage:          "Image",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "<unknown Op>"
}

// Command is one recorded sink call. Transform is the transform
// current when the call was made.
type Command struct {
	Op        Op
	Token     Token
	Transform svgpath.Matrix2D

	Clip   ClipRegion
	Hints  RenderingHints
	Path   svgpath.Path
	Paint  Paint      // for PaintSink fills and strokes
	ID     color.RGBA // for IdSink calls
	Stroke StrokeOptions

	Image    image.Image
	Dst, Src svgpath.Rect
}

type recorderState struct {
	token     Token
	transform svgpath.Matrix2D
}

// recorder is the state shared by Recorder and IdRecorder
type recorder struct {
	Commands []Command

	transform svgpath.Matrix2D
	stack     []recorderState
	next      Token
}

func newRecorder() recorder { return recorder{transform: svgpath.Identity} }

func (r *recorder) BeginContainer() Token {
	r.next++
	r.stack = append(r.stack, recorderState{token: r.next, transform: r.transform})
	r.record(Command{Op: OpBeginContainer, Token: r.next})
	return r.next
}

// EndContainer restores the state saved by the matching BeginContainer,
// closing any container left opened inside.
func (r *recorder) EndContainer(t Token) {
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].token != t {
			continue
		}
		r.transform = r.stack[i].transform
		r.stack = r.stack[:i]
		break
	}
	r.record(Command{Op: OpEndContainer, Token: t})
}

func (r *recorder) SetTransform(m svgpath.Matrix2D) {
	r.transform = m
	r.record(Command{Op: OpSetTransform})
}

func (r *recorder) SetClip(c ClipRegion) { r.record(Command{Op: OpSetClip, Clip: c}) }

func (r *recorder) ResetClip() { r.record(Command{Op: OpResetClip}) }

// Depth returns the number of open containers.
func (r *recorder) Depth() int { return len(r.stack) }

func (r *recorder) record(c Command) {
	c.Transform = r.transform
	r.Commands = append(r.Commands, c)
}

// Filter returns the commands of the given kinds.
func (r *recorder) Filter(ops ...Op) []Command {
	var out []Command
	for _, c := range r.Commands {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Recorder is a PaintSink storing the commands it receives,
// used for tests and debugging.
type Recorder struct {
	recorder
}

var _ PaintSink = (*Recorder)(nil) // assert interface conformance

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder { return &Recorder{newRecorder()} }

func (r *Recorder) SetRenderingHints(h RenderingHints) {
	r.record(Command{Op: OpSetHints, Hints: h})
}

func (r *Recorder) FillPath(p svgpath.Path, paint Paint) {
	r.record(Command{Op: OpFill, Path: p, Paint: paint})
}

func (r *Recorder) StrokePath(p svgpath.Path, paint Paint, stroke StrokeOptions) {
	r.record(Command{Op: OpStroke, Path: p, Paint: paint, Stroke: stroke})
}

func (r *Recorder) DrawImage(img image.Image, dst, src svgpath.Rect) {
	r.record(Command{Op: OpImage, Image: img, Dst: dst, Src: src})
}

// IdRecorder is the IdSink counterpart of Recorder.
type IdRecorder struct {
	recorder
}

var _ IdSink = (*IdRecorder)(nil) // assert interface conformance

// NewIdRecorder returns an empty recorder.
func NewIdRecorder() *IdRecorder { return &IdRecorder{newRecorder()} }

func (r *IdRecorder) FillPath(p svgpath.Path, id color.RGBA) {
	r.record(Command{Op: OpFill, Path: p, ID: id})
}

func (r *IdRecorder) StrokePath(p svgpath.Path, id color.RGBA, stroke StrokeOptions) {
	r.record(Command{Op: OpStroke, Path: p, ID: id, Stroke: stroke})
}

func (r *IdRecorder) DrawImage(img image.Image, dst, src svgpath.Rect, id color.RGBA) {
	r.record(Command{Op: OpImage, Image: img, Dst: dst, Src: src, ID: id})
}
