package svgdom

// Viewport is the size of a viewport, in user units.
type Viewport struct {
	Width, Height float64
}

// DefaultViewport is used when no viewport has been set on a node chain.
var DefaultViewport = Viewport{Width: 300, Height: 150}

// Node is the render context of an element: the element itself,
// the chain of contexts it is rendered in and the attribute overrides
// applied by the instantiating element, if any.
// The same element may be visited through several Nodes (for example
// once in place and once through a <use>); the tree is left untouched.
type Node struct {
	Element *Element
	Parent  *Node

	overrides []Attr
	viewport  *Viewport
}

// NodeOf returns a context for e, whose parent chain
// follows the element's ancestors.
func NodeOf(e *Element) *Node {
	if e == nil {
		return nil
	}
	return &Node{Element: e, Parent: NodeOf(e.Parent)}
}

// Child returns the context of e rendered inside n.
func (n *Node) Child(e *Element) *Node {
	return &Node{Element: e, Parent: n}
}

// WithOverrides returns a copy of n with additional attribute overrides,
// taking precedence over the previous ones.
func (n *Node) WithOverrides(attrs ...Attr) *Node {
	out := *n
	out.overrides = make([]Attr, 0, len(n.overrides)+len(attrs))
	out.overrides = append(out.overrides, attrs...)
	out.overrides = append(out.overrides, n.overrides...)
	return &out
}

func (n *Node) override(name string) (string, bool) {
	for _, a := range n.overrides {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attr returns the attribute value, overrides first.
func (n *Node) Attr(name string) (string, bool) {
	if v, ok := n.override(name); ok {
		return v, true
	}
	if n.Element == nil {
		return "", false
	}
	return n.Element.Attr(name)
}

// Kind returns the element kind.
func (n *Node) Kind() Kind {
	if n.Element == nil {
		return KindUnknown
	}
	return n.Element.Kind
}

// Document returns the document of the element.
func (n *Node) Document() *Document {
	if n.Element == nil {
		return nil
	}
	return n.Element.doc
}

// Property returns the computed value of the CSS property.
func (n *Node) Property(name string) string {
	if doc := n.Document(); doc != nil && doc.Style != nil {
		return doc.Style.Get(n, name)
	}
	return defaultCascade.Get(n, name)
}

var defaultCascade = NewCascade(defaultRegistry, nil)

// SetViewport records the viewport established by n, used
// to resolve the percentages of n's descendants.
func (n *Node) SetViewport(vp Viewport) { n.viewport = &vp }

// Viewport returns the nearest viewport set on the chain,
// or DefaultViewport.
func (n *Node) Viewport() Viewport {
	for c := n; c != nil; c = c.Parent {
		if c.viewport != nil {
			return *c.viewport
		}
	}
	return DefaultViewport
}

// Href returns the href attribute (xlink:href is stored under the same name).
func (n *Node) Href() string {
	v, _ := n.Attr("href")
	return v
}

// Resolve returns the element referenced by the href-like value ref,
// or nil.
func (n *Node) Resolve(ref string) *Element {
	doc := n.Document()
	if doc == nil {
		return nil
	}
	return doc.Resolve(ref)
}
