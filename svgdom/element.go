// Package svgdom provides a read-only view over a parsed SVG document:
// the element tree, computed style lookups, resolved lengths and
// reference resolution. The renderer never mutates the tree; per traversal
// state is carried by Node values instead.
package svgdom

import (
	"strings"
	"sync"

	"github.com/aymerick/douceur/css"
	"github.com/charmbracelet/log"
)

// Attr is an attribute, stored with its local name,
// except for xml:* attributes whose prefix is kept.
type Attr struct {
	Name, Value string
}

// Element is a node of the parsed tree.
type Element struct {
	Kind Kind
	Tag  string // local tag name, as found in the source
	ID   string
	// Namespace is empty for SVG elements
	Namespace string

	Attrs []Attr
	Text  string // only for KindCharData

	Parent   *Element
	Children []*Element

	doc    *Document
	inline map[string]string // declarations of the style attribute
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Document returns the document owning the element.
func (e *Element) Document() *Document { return e.doc }

// TextContent concatenates the character data of the subtree.
func (e *Element) TextContent() string {
	if e.Kind == KindCharData {
		return e.Text
	}
	var b strings.Builder
	for _, c := range e.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Describe returns a short human readable label, used in logs.
func (e *Element) Describe() string {
	if e == nil {
		return "<nil>"
	}
	if e.ID != "" {
		return e.Tag + "#" + e.ID
	}
	return e.Tag
}

// Walk calls fn for the element and its descendants, in document order,
// stopping early if fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Document is a parsed SVG file.
type Document struct {
	Root    *Element
	BaseURI string
	// ID uniquely names the document, for instance
	// to group background tasks started for it.
	ID string

	// Style is the computed style lookup used by every Node of the document.
	// It defaults to a Cascade over the document stylesheet.
	Style ComputedStyle

	registry *Registry
	logger   *log.Logger
	sheet    []*css.Rule
	byID     map[string]*Element
	cfg      loadConfig

	mu           sync.Mutex
	externalDocs map[string]*Document
}

// Registry returns the static tables the document was parsed with.
func (d *Document) Registry() *Registry { return d.registry }

// Logger returns the logger configured at parse time.
func (d *Document) Logger() *log.Logger { return d.logger }

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element {
	return d.byID[id]
}
