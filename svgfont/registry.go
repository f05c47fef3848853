// Package svgfont resolves font-family lists to concrete faces and
// converts text runs into glyph outlines.
//
// A Registry is pre-loaded with the Go fonts, so that text always renders.
// Additional families are searched for in font directories by background
// tasks, grouped by name so that a caller can await them before rendering.
package svgfont

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// DefaultFamily is used when no entry of a family list resolves.
const DefaultFamily = "go"

// generic families, mapped to a registered family
var generics = map[string]string{
	"serif":      "go",
	"sans-serif": "go",
	"system-ui":  "go",
	"cursive":    "go",
	"fantasy":    "go",
	"monospace":  "go mono",
}

// Face is a parsed font file.
type Face struct {
	Family string
	Bold   bool
	Italic bool
	Font   *sfnt.Font
}

func (f *Face) String() string {
	s := f.Family
	if f.Bold {
		s += " Bold"
	}
	if f.Italic {
		s += " Italic"
	}
	return s
}

// ParseFace parses a TrueType or OpenType file, reading
// the family and the style in its name table.
func ParseFace(data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("svgfont: invalid font file: %w", err)
	}
	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil || family == "" {
		return nil, fmt.Errorf("svgfont: missing family name: %w", err)
	}
	sub, _ := f.Name(&buf, sfnt.NameIDSubfamily)
	sub = strings.ToLower(sub)
	return &Face{
		Family: family,
		Bold:   strings.Contains(sub, "bold"),
		Italic: strings.Contains(sub, "italic") || strings.Contains(sub, "oblique"),
		Font:   f,
	}, nil
}

// Option configures a Registry.
type Option func(*Registry)

// WithFontDirs sets the directories scanned by ResolveAsync.
func WithFontDirs(dirs ...string) Option {
	return func(r *Registry) { r.dirs = append(r.dirs, dirs...) }
}

// WithLogger sets the logger used to report unreadable font files.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithoutBuiltins skips the Go fonts.
func WithoutBuiltins() Option {
	return func(r *Registry) { r.noBuiltins = true }
}

// Registry maps families to faces. It is safe for concurrent use.
type Registry struct {
	dirs       []string
	logger     *log.Logger
	noBuiltins bool

	mu     sync.RWMutex
	faces  map[string][]*Face // by normalized family
	groups map[string]*task
}

// NewRegistry returns a registry holding the Go fonts.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		logger: log.NewWithOptions(io.Discard, log.Options{}),
		faces:  map[string][]*Face{},
		groups: map[string]*task{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.noBuiltins {
		for _, data := range [...][]byte{
			goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF,
			gomono.TTF, gomonobold.TTF,
		} {
			face, err := ParseFace(data)
			if err != nil {
				// the embedded fonts are valid
				panic(err)
			}
			r.Add(face)
		}
	}
	return r
}

func normalize(family string) string {
	family = strings.TrimSpace(family)
	family = strings.Trim(family, `"'`)
	return strings.ToLower(strings.TrimSpace(family))
}

// SplitFamilies splits a font-family list, removing quotes.
func SplitFamilies(list string) []string {
	var out []string
	for _, f := range strings.Split(list, ",") {
		if f = normalize(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Add registers face under its family.
func (r *Registry) Add(face *Face) {
	key := normalize(face.Family)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces[key] = append(r.faces[key], face)
}

// Has returns true if family (or the generic family it names) is registered.
func (r *Registry) Has(family string) bool {
	key := normalize(family)
	if g, ok := generics[key]; ok {
		key = g
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.faces[key]) != 0
}

// Families returns the number of registered families.
func (r *Registry) Families() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.faces)
}

// best returns the face of the family closest to the style, or nil.
func (r *Registry) best(key string, bold, italic bool) *Face {
	var (
		out   *Face
		score = -1
	)
	for _, f := range r.faces[key] {
		s := 0
		if f.Bold == bold {
			s += 2
		}
		if f.Italic == italic {
			s++
		}
		if s > score {
			out, score = f, s
		}
	}
	return out
}

// Lookup resolves a font-family list: unknown entries are skipped in order,
// falling back to DefaultFamily. It only returns nil for a registry
// without any face for the default family.
func (r *Registry) Lookup(families string, bold, italic bool) *Face {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, key := range SplitFamilies(families) {
		if g, ok := generics[key]; ok {
			key = g
		}
		if f := r.best(key, bold, italic); f != nil {
			return f
		}
	}
	return r.best(DefaultFamily, bold, italic)
}
