package svgdom

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitURL(t *testing.T) {
	for _, test := range []struct {
		in, ref, rest string
		ok            bool
	}{
		{"url(#a)", "#a", "", true},
		{" url( '#a' ) red", "#a", "red", true},
		{`url("f.svg#b") none`, "f.svg#b", "none", true},
		{"#a", "", "#a", false},
		{"url(#a", "", "", false},
	} {
		ref, rest, ok := SplitURL(test.in)
		assert.Equal(t, test.ok, ok, test.in)
		assert.Equal(t, test.ref, ref, test.in)
		assert.Equal(t, test.rest, rest, test.in)
	}
}

func TestResolveURI(t *testing.T) {
	assert.Equal(t, "/a/b/c.svg", ResolveURI("/a/b/main.svg", "c.svg"))
	assert.Equal(t, "/x.svg", ResolveURI("/a/b/main.svg", "/x.svg"))
	assert.Equal(t, "http://h/a/c.svg", ResolveURI("http://h/a/main.svg", "c.svg"))
	assert.Equal(t, "c.svg", ResolveURI("", "c.svg"))
}

func TestRefGuard(t *testing.T) {
	a, b := &Element{Tag: "use", ID: "a"}, &Element{Tag: "g", ID: "b"}
	g := NewRefGuard(0)
	assert.NoError(t, g.Enter(a))
	assert.NoError(t, g.Enter(b))
	assert.True(t, g.Active(a))

	err := g.Enter(a)
	var cyc *CyclicReferenceError
	assert.True(t, errors.As(err, &cyc))
	assert.Equal(t, []string{"use#a", "g#b", "use#a"}, cyc.Chain)
	assert.False(t, cyc.Depth)
	assert.Equal(t, 2, g.Depth())

	g.Leave()
	g.Leave()
	assert.False(t, g.Active(a))

	shallow := NewRefGuard(1)
	assert.NoError(t, shallow.Enter(a))
	err = shallow.Enter(b)
	assert.True(t, errors.As(err, &cyc))
	assert.True(t, cyc.Depth)
}
