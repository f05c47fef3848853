package svgrender

import (
	"errors"
	"image"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firedEvent struct {
	Type   EventType
	Target string
}

func TestDispatcher(t *testing.T) {
	doc := parse(t, `<svg>
		<rect id="left" width="10" height="10"/>
		<rect id="right" x="10" width="10" height="10"/>
	</svg>`)
	r, _, _, err := render(t, doc, Options{})
	require.NoError(t, err)
	left, right := doc.ElementByID("left"), doc.ElementByID("right")

	// the hit surface an IdSink would have produced
	surface := image.NewRGBA(image.Rect(0, 0, 30, 10))
	draw.Draw(surface, image.Rect(0, 0, 10, 10), image.NewUniform(IDColor(r.HitID(left))), image.Point{}, draw.Src)
	draw.Draw(surface, image.Rect(10, 0, 20, 10), image.NewUniform(IDColor(r.HitID(right))), image.Point{}, draw.Src)

	var events []firedEvent
	d := NewDispatcher(r, surface, func(ev Event) error {
		events = append(events, firedEvent{ev.Type, ev.Target.ID})
		return nil
	})

	assert.Same(t, left, d.Target(2, 2))
	assert.Nil(t, d.Target(25, 2)) // transparent
	assert.Nil(t, d.Target(-1, 2))

	d.Move(2, 2)
	d.Move(15, 2)
	d.Move(25, 2)
	assert.Equal(t, []firedEvent{
		{MouseOver, "left"}, {MouseMove, "left"},
		{MouseOut, "left"}, {MouseOver, "right"}, {MouseMove, "right"},
		{MouseOut, "right"},
	}, events)

	events = nil
	d.Down(15, 2)
	d.Up(17, 3)
	d.Down(15, 2)
	d.Up(2, 2) // released away from the press
	d.Up(2, 2) // no press
	assert.Equal(t, []firedEvent{
		{MouseDown, "right"}, {MouseUp, "right"}, {Click, "right"},
		{MouseDown, "right"}, {MouseUp, "right"},
	}, events)
}

func TestDispatcherHandlerFailures(t *testing.T) {
	doc := parse(t, `<svg><rect id="a" width="10" height="10"/></svg>`)
	r, _, _, err := render(t, doc, Options{})
	require.NoError(t, err)
	surface := image.NewRGBA(image.Rect(0, 0, 10, 10))
	draw.Draw(surface, surface.Bounds(), image.NewUniform(IDColor(r.HitID(doc.ElementByID("a")))), image.Point{}, draw.Src)

	calls := 0
	d := NewDispatcher(r, surface, func(ev Event) error {
		calls++
		if ev.Type == MouseOver {
			panic("boom")
		}
		return errors.New("handler error")
	})
	assert.NotPanics(t, func() { d.Move(1, 1) })
	assert.Equal(t, 2, calls)

	assert.Equal(t, "click", Click.String())
}
