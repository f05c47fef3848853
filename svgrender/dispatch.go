package svgrender

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/charmbracelet/log"
)

// EventType identifies a pointer event.
type EventType uint8

const (
	MouseMove EventType = iota
	MouseOver
	MouseOut
	MouseDown
	MouseUp
	Click
)

var eventNames = [...]string{
	MouseMove: "mousemove",
	MouseOver: "mouseover",
	MouseOut:  "mouseout",
	MouseDown: "mousedown",
	MouseUp:   "mouseup",
	Click:     "click",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return fmt.Sprintf("<unknown EventType %d>", t)
}

// Event is a pointer event targeted at an element.
// X and Y are in device units.
type Event struct {
	Type   EventType
	Target *svgdom.Element
	X, Y   float64
}

// Handler receives the events of a Dispatcher.
type Handler func(Event) error

// clickSlop is the maximum distance, in device units, between
// the press and the release of a click.
const clickSlop = 5

// Dispatcher maps pointer positions to elements, using the hit surface
// filled by the IdSink of the last Render.
type Dispatcher struct {
	r       *Renderer
	surface image.Image
	handler Handler
	logger  *log.Logger

	current *svgdom.Element // under the pointer
	down    *svgdom.Element
	downAt  [2]float64
}

// NewDispatcher returns a dispatcher sending the events hitting the
// elements of r to handler. surface is the hit image, and may be updated
// with SetSurface after each render.
func NewDispatcher(r *Renderer, surface image.Image, handler Handler) *Dispatcher {
	return &Dispatcher{r: r, surface: surface, handler: handler, logger: r.opts.Logger}
}

// SetSurface replaces the hit image.
func (d *Dispatcher) SetSurface(surface image.Image) { d.surface = surface }

// Target returns the element painted at the device position (x, y), or nil.
func (d *Dispatcher) Target(x, y float64) *svgdom.Element {
	if d.surface == nil {
		return nil
	}
	pt := image.Pt(int(math.Floor(x)), int(math.Floor(y)))
	if !pt.In(d.surface.Bounds()) {
		return nil
	}
	id, ok := IDFromColor(color.RGBAModel.Convert(d.surface.At(pt.X, pt.Y)).(color.RGBA))
	if !ok {
		return nil
	}
	return d.r.ElementByHitID(id)
}

// Move handles a pointer move, firing mouseout and mouseover
// when the element under the pointer changes.
func (d *Dispatcher) Move(x, y float64) {
	target := d.Target(x, y)
	if target != d.current {
		if d.current != nil {
			d.fire(Event{Type: MouseOut, Target: d.current, X: x, Y: y})
		}
		if target != nil {
			d.fire(Event{Type: MouseOver, Target: target, X: x, Y: y})
		}
		d.current = target
	}
	if target != nil {
		d.fire(Event{Type: MouseMove, Target: target, X: x, Y: y})
	}
}

// Down handles a button press.
func (d *Dispatcher) Down(x, y float64) {
	d.down = d.Target(x, y)
	d.downAt = [2]float64{x, y}
	if d.down != nil {
		d.fire(Event{Type: MouseDown, Target: d.down, X: x, Y: y})
	}
}

// Up handles a button release. The mouseup event goes to the element
// which received the press, followed by a click if the pointer stayed
// close to the press position.
func (d *Dispatcher) Up(x, y float64) {
	target := d.down
	d.down = nil
	if target == nil {
		return
	}
	d.fire(Event{Type: MouseUp, Target: target, X: x, Y: y})
	if math.Hypot(x-d.downAt[0], y-d.downAt[1]) <= clickSlop {
		d.fire(Event{Type: Click, Target: target, X: x, Y: y})
	}
}

// fire calls the handler, logging its failures.
func (d *Dispatcher) fire(ev Event) {
	if d.handler == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			d.logger.Error("event handler panicked", "event", ev.Type, "element", ev.Target.Describe(), "panic", v)
		}
	}()
	if err := d.handler(ev); err != nil {
		d.logger.Error("event handler failed", "event", ev.Type, "element", ev.Target.Describe(), "err", err)
	}
}
