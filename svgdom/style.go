package svgdom

import (
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
)

// ComputedStyle returns the computed value of a property for a node.
// It is the only way the renderer reads style information.
type ComputedStyle interface {
	Get(n *Node, name string) string
}

// Cascade is the default ComputedStyle. Values are looked up, in order, in
// the node overrides, the style attribute, the stylesheet rules, the
// presentation attribute and finally inherited from the parent node
// or taken from the property initial value.
type Cascade struct {
	registry *Registry
	rules    []styleRule // most specific first
}

type styleRule struct {
	sel         selector
	specificity int
	order       int
	decls       map[string]string
	important   map[string]bool
}

// NewCascade compiles the given rules. Unsupported selectors
// (attribute selectors, pseudo classes) are ignored.
func NewCascade(registry *Registry, rules []*css.Rule) *Cascade {
	if registry == nil {
		registry = defaultRegistry
	}
	c := &Cascade{registry: registry}
	order := 0
	for _, r := range rules {
		decls := make(map[string]string, len(r.Declarations))
		important := make(map[string]bool)
		for _, d := range r.Declarations {
			decls[d.Property] = strings.TrimSpace(d.Value)
			if d.Important {
				important[d.Property] = true
			}
		}
		for _, s := range r.Selectors {
			sel, ok := parseSelector(s)
			if !ok {
				continue
			}
			c.rules = append(c.rules, styleRule{
				sel: sel, specificity: sel.specificity(), order: order,
				decls: decls, important: important,
			})
			order++
		}
	}
	sort.SliceStable(c.rules, func(i, j int) bool {
		ri, rj := c.rules[i], c.rules[j]
		if ri.specificity != rj.specificity {
			return ri.specificity > rj.specificity
		}
		return ri.order > rj.order
	})
	return c
}

// Get implements ComputedStyle.
func (c *Cascade) Get(n *Node, name string) string {
	prop, known := c.registry.Property(name)
	v, ok := c.specified(n, name, prop, known)
	if ok && v != "inherit" {
		return v
	}
	if (ok || prop.Inherited) && n.Parent != nil {
		return c.Get(n.Parent, name)
	}
	return prop.Initial
}

func (c *Cascade) specified(n *Node, name string, prop Property, known bool) (string, bool) {
	if v, ok := n.override(name); ok {
		return v, true
	}
	e := n.Element
	if e == nil {
		return "", false
	}
	for _, r := range c.rules {
		if r.important[name] && r.sel.match(n) {
			return r.decls[name], true
		}
	}
	if v, ok := e.inline[name]; ok {
		return v, true
	}
	for _, r := range c.rules {
		if v, ok := r.decls[name]; ok && r.sel.match(n) {
			return v, true
		}
	}
	if prop.Presentation || !known {
		if v, ok := e.Attr(name); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// selector is a list of compound selectors, joined
// by descendant or child combinators, rightmost last.
type selector struct {
	parts []compound
	child []bool // child[i] is true if parts[i] and parts[i+1] are joined by '>'
}

type compound struct {
	tag     string // empty or "*" for any
	id      string
	classes []string
}

func parseSelector(s string) (selector, bool) {
	var sel selector
	fields := strings.Fields(strings.ReplaceAll(s, ">", " > "))
	pendingChild := false
	for _, f := range fields {
		if f == ">" {
			if len(sel.parts) == 0 {
				return sel, false
			}
			pendingChild = true
			continue
		}
		c, ok := parseCompound(f)
		if !ok {
			return sel, false
		}
		if len(sel.parts) > 0 {
			sel.child = append(sel.child, pendingChild)
		}
		pendingChild = false
		sel.parts = append(sel.parts, c)
	}
	return sel, len(sel.parts) > 0 && !pendingChild
}

func parseCompound(s string) (compound, bool) {
	var c compound
	if strings.ContainsAny(s, "[]:+~") {
		return c, false
	}
	i := strings.IndexAny(s, ".#")
	if i == -1 {
		c.tag = s
		return c, true
	}
	c.tag = s[:i]
	s = s[i:]
	for s != "" {
		kind := s[0]
		s = s[1:]
		end := strings.IndexAny(s, ".#")
		if end == -1 {
			end = len(s)
		}
		name := s[:end]
		s = s[end:]
		if name == "" {
			return c, false
		}
		if kind == '#' {
			c.id = name
		} else {
			c.classes = append(c.classes, name)
		}
	}
	return c, true
}

func (s selector) specificity() int {
	out := 0
	for _, c := range s.parts {
		if c.id != "" {
			out += 100
		}
		out += 10 * len(c.classes)
		if c.tag != "" && c.tag != "*" {
			out++
		}
	}
	return out
}

func (c compound) match(n *Node) bool {
	e := n.Element
	if e == nil || e.Kind == KindCharData {
		return false
	}
	if c.tag != "" && c.tag != "*" && c.tag != e.Tag {
		return false
	}
	if c.id != "" && c.id != e.ID {
		return false
	}
	if len(c.classes) > 0 {
		attr, _ := e.Attr("class")
		have := strings.Fields(attr)
		for _, want := range c.classes {
			found := false
			for _, h := range have {
				if h == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

func (s selector) match(n *Node) bool {
	last := len(s.parts) - 1
	if !s.parts[last].match(n) {
		return false
	}
	return s.matchAncestors(last-1, n.Parent)
}

// matchAncestors matches parts[:i+1] against the ancestors starting at n.
func (s selector) matchAncestors(i int, n *Node) bool {
	if i < 0 {
		return true
	}
	for ; n != nil; n = n.Parent {
		if s.parts[i].match(n) && s.matchAncestors(i-1, n.Parent) {
			return true
		}
		if s.child[i] {
			return false
		}
	}
	return false
}
