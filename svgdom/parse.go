package svgdom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
)

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
	xmlNamespace   = "http://www.w3.org/XML/1998/namespace"
)

type loadConfig struct {
	logger    *log.Logger
	errorMode ErrorMode
	baseURI   string
	registry  *Registry
}

// Option configures the loader.
type Option func(*loadConfig)

// WithLogger sets the logger used for warnings, both at
// parse time and later by the renderer.
func WithLogger(l *log.Logger) Option {
	return func(c *loadConfig) { c.logger = l }
}

// WithErrorMode sets how unsupported elements are handled.
func WithErrorMode(m ErrorMode) Option {
	return func(c *loadConfig) { c.errorMode = m }
}

// WithBaseURI sets the location used to resolve relative references.
func WithBaseURI(uri string) Option {
	return func(c *loadConfig) { c.baseURI = uri }
}

// WithRegistry replaces the default registry.
func WithRegistry(r *Registry) Option {
	return func(c *loadConfig) { c.registry = r }
}

func newLoadConfig(opts []Option) loadConfig {
	cfg := loadConfig{errorMode: WarnErrorMode, registry: defaultRegistry}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return cfg
}

// ParseFile reads the SVG document stored at path.
// Unless overridden, path is used as the base URI.
func ParseFile(path string, opts ...Option) (*Document, error) {
	return parseFile(path, newLoadConfig(append([]Option{WithBaseURI(path)}, opts...)))
}

func parseFile(path string, cfg loadConfig) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f, cfg)
}

// Parse reads an SVG document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	return parse(r, newLoadConfig(opts))
}

func parse(r io.Reader, cfg loadConfig) (*Document, error) {
	doc := &Document{
		BaseURI:      cfg.baseURI,
		ID:           uuid.NewString(),
		registry:     cfg.registry,
		logger:       cfg.logger,
		byID:         make(map[string]*Element),
		externalDocs: make(map[string]*Document),
		cfg:          cfg,
	}

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	var stack []*Element
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("svg: reading document: %w", err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			var parent *Element
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			} else if doc.Root != nil {
				return nil, errors.New("svg: multiple root elements")
			}
			e, err := doc.newElement(se, parent)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				doc.Root = e
			} else {
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if e.Kind == KindStyle {
				doc.addStylesheet(e)
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			e := stack[len(stack)-1]
			if !e.Kind.keepsCharData() {
				continue
			}
			if n := len(e.Children); n > 0 && e.Children[n-1].Kind == KindCharData {
				e.Children[n-1].Text += string(se)
				continue
			}
			e.Children = append(e.Children, &Element{
				Kind: KindCharData, Tag: KindCharData.String(),
				Text: string(se), Parent: e, doc: doc,
			})
		}
	}
	if doc.Root == nil {
		return nil, ErrEmptyDocument
	}
	doc.Style = NewCascade(cfg.registry, doc.sheet)
	return doc, nil
}

func (d *Document) newElement(se xml.StartElement, parent *Element) (*Element, error) {
	e := &Element{Tag: se.Name.Local, Parent: parent, doc: d}
	if se.Name.Space != svgNamespace {
		e.Namespace = se.Name.Space
	}
	// elements of other namespaces are kept as KindUnknown, silently
	if e.Namespace == "" {
		e.Kind = d.registry.KindOf(se.Name.Local)
		if e.Kind == KindUnknown {
			switch d.cfg.errorMode {
			case StrictErrorMode:
				return nil, fmt.Errorf("%w: %s", ErrUnsupportedElement, se.Name.Local)
			case WarnErrorMode:
				d.logger.Warn("unsupported element", "element", se.Name.Local)
			}
		}
	}

	for _, a := range se.Attr {
		name, ok := attrName(a.Name)
		if !ok {
			continue
		}
		switch name {
		case "id":
			e.ID = a.Value
			if _, dup := d.byID[a.Value]; !dup && a.Value != "" {
				d.byID[a.Value] = e
			}
		case "style":
			decls, err := parser.ParseDeclarations(terminated(a.Value))
			if err != nil {
				d.logger.Warn("invalid style attribute", "element", e.Describe(), "err", err)
				break
			}
			e.inline = make(map[string]string, len(decls))
			for _, decl := range decls {
				e.inline[decl.Property] = strings.TrimSpace(decl.Value)
			}
		}
		e.Attrs = append(e.Attrs, Attr{Name: name, Value: a.Value})
	}
	return e, nil
}

// terminated ends the declaration list with a semicolon, without which
// the parser drops the value of the last declaration.
func terminated(decls string) string {
	decls = strings.TrimSpace(decls)
	if decls == "" || strings.HasSuffix(decls, ";") {
		return decls
	}
	return decls + ";"
}

// attrName maps the XML name to the stored one.
// Namespace declarations and attributes of unknown namespaces are dropped.
func attrName(n xml.Name) (string, bool) {
	switch n.Space {
	case "":
		if n.Local == "xmlns" {
			return "", false
		}
		return n.Local, true
	case svgNamespace:
		return n.Local, true
	case xlinkNamespace, "xlink":
		return n.Local, n.Local == "href"
	case xmlNamespace, "xml":
		return "xml:" + n.Local, true
	default:
		return "", false
	}
}

func (d *Document) addStylesheet(e *Element) {
	if typ, ok := e.Attr("type"); ok && typ != "" && typ != "text/css" {
		return
	}
	sheet, err := parser.Parse(e.TextContent())
	if err != nil {
		d.logger.Warn("invalid stylesheet", "element", e.Describe(), "err", err)
		return
	}
	d.sheet = append(d.sheet, flattenRules(sheet.Rules)...)
}

// flattenRules keeps the qualified rules, including the ones
// nested in media blocks.
func flattenRules(rules []*css.Rule) []*css.Rule {
	var out []*css.Rule
	for _, r := range rules {
		if r.Kind == css.QualifiedRule {
			out = append(out, r)
		} else if len(r.Rules) > 0 {
			out = append(out, flattenRules(r.Rules)...)
		}
	}
	return out
}
