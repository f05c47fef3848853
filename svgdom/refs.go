package svgdom

import (
	"net/url"
	"path/filepath"
	"strings"
)

// SplitURL parses a `url(ref) rest` value, as used by paint and
// reference properties. ok is false if s does not start with url(.
func SplitURL(s string) (ref, rest string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "url(") {
		return "", s, false
	}
	end := strings.IndexByte(s, ')')
	if end == -1 {
		return "", "", false
	}
	ref = strings.Trim(strings.TrimSpace(s[len("url("):end]), `"'`)
	return ref, strings.TrimSpace(s[end+1:]), true
}

// splitFragment separates the location and the fragment of ref,
// accepting the forms #id, url(#id) and file.svg#id.
func splitFragment(ref string) (location, fragment string) {
	if u, _, ok := SplitURL(ref); ok {
		ref = u
	}
	ref = strings.TrimSpace(ref)
	if i := strings.IndexByte(ref, '#'); i != -1 {
		return ref[:i], ref[i+1:]
	}
	return ref, ""
}

// ResolveURI returns the location of ref relative to base,
// which is a file path or a URL.
func ResolveURI(base, ref string) string {
	if ref == "" {
		return base
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		return ref
	}
	if filepath.IsAbs(ref) || base == "" {
		return ref
	}
	if b, err := url.Parse(base); err == nil && b.Scheme != "" && b.Scheme != "file" {
		r, err := url.Parse(ref)
		if err == nil {
			return b.ResolveReference(r).String()
		}
	}
	return filepath.Join(filepath.Dir(base), ref)
}

// Resolve returns the element referenced by ref, or nil if it
// cannot be found. References to other files are loaded relatively to the
// document base URI and cached for the lifetime of the document.
func (d *Document) Resolve(ref string) *Element {
	location, fragment := splitFragment(ref)
	target := d
	if location != "" {
		target = d.external(location)
		if target == nil {
			return nil
		}
	}
	if fragment == "" {
		if location == "" {
			return nil
		}
		return target.Root
	}
	return target.ElementByID(fragment)
}

func (d *Document) external(location string) *Document {
	path := ResolveURI(d.BaseURI, location)
	if path == d.BaseURI {
		return d
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if doc, ok := d.externalDocs[path]; ok {
		return doc // may be nil after a failure
	}
	cfg := d.cfg
	cfg.baseURI = path
	doc, err := parseFile(path, cfg)
	if err != nil {
		d.logger.Warn("loading external reference", "uri", path, "err", err)
		doc = nil
	}
	d.externalDocs[path] = doc
	return doc
}

// DefaultMaxDepth bounds the reference chains followed by a RefGuard.
const DefaultMaxDepth = 64

// RefGuard tracks the active chain of followed references.
// A guard is owned by one traversal and is not safe for concurrent use.
type RefGuard struct {
	active []*Element
	max    int
}

// NewRefGuard returns a guard allowing at most max nested references,
// or DefaultMaxDepth if max <= 0.
func NewRefGuard(max int) *RefGuard {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return &RefGuard{max: max}
}

// Enter pushes e on the active chain. It fails if e is already
// active, or the chain is too deep; in this case the chain is not modified
// and Leave must not be called.
func (g *RefGuard) Enter(e *Element) error {
	for _, a := range g.active {
		if a == e {
			return &CyclicReferenceError{Chain: g.describe(e)}
		}
	}
	if len(g.active) >= g.max {
		return &CyclicReferenceError{Chain: g.describe(e), Depth: true}
	}
	g.active = append(g.active, e)
	return nil
}

// Leave pops the last entered element.
func (g *RefGuard) Leave() {
	if len(g.active) > 0 {
		g.active = g.active[:len(g.active)-1]
	}
}

// Active reports whether e is on the chain.
func (g *RefGuard) Active(e *Element) bool {
	for _, a := range g.active {
		if a == e {
			return true
		}
	}
	return false
}

// Depth returns the length of the active chain.
func (g *RefGuard) Depth() int { return len(g.active) }

func (g *RefGuard) describe(last *Element) []string {
	out := make([]string, 0, len(g.active)+1)
	for _, a := range g.active {
		out = append(out, a.Describe())
	}
	return append(out, last.Describe())
}
