package svgdom

import "strings"

// Property describes a CSS property as the cascade sees it.
type Property struct {
	Inherited bool
	Initial   string
	// Presentation is true when the property may also be given
	// as an attribute of the same name.
	Presentation bool
}

// Registry holds the static tables shared by every document:
// the tag to kind table, the property table and
// the feature strings accepted by requiredFeatures.
// It is built once and never modified afterwards.
type Registry struct {
	kinds      map[string]Kind
	properties map[string]Property
	features   map[string]bool
}

var defaultRegistry = newRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// KindOf returns the kind for the (local) tag name.
func (r *Registry) KindOf(tag string) Kind {
	if k, ok := r.kinds[tag]; ok {
		return k
	}
	return KindUnknown
}

// Property returns the description of the named property.
// Unknown properties are reported as non inherited, with an empty initial value.
func (r *Registry) Property(name string) (Property, bool) {
	p, ok := r.properties[name]
	return p, ok
}

// SupportsFeature reports whether the feature string (as used by requiredFeatures)
// is implemented.
func (r *Registry) SupportsFeature(feature string) bool {
	const prefix = "http://www.w3.org/TR/SVG11/feature#"
	if !strings.HasPrefix(feature, prefix) {
		return false
	}
	return r.features[strings.TrimPrefix(feature, prefix)]
}

func newRegistry() *Registry {
	r := &Registry{
		kinds:      make(map[string]Kind, len(kindNames)),
		properties: make(map[string]Property),
		features:   make(map[string]bool),
	}
	for k, name := range kindNames {
		if Kind(k) == KindUnknown || Kind(k) == KindCharData {
			continue
		}
		r.kinds[name] = Kind(k)
	}

	inherited := func(initial string, names ...string) {
		for _, name := range names {
			r.properties[name] = Property{Inherited: true, Initial: initial, Presentation: true}
		}
	}
	local := func(initial string, names ...string) {
		for _, name := range names {
			r.properties[name] = Property{Initial: initial, Presentation: true}
		}
	}

	inherited("black", "fill", "color")
	inherited("none", "stroke")
	inherited("1", "fill-opacity", "stroke-opacity", "stroke-width", "stroke-miterlimit")
	r.properties["stroke-miterlimit"] = Property{Inherited: true, Initial: "4", Presentation: true}
	inherited("nonzero", "fill-rule", "clip-rule")
	inherited("butt", "stroke-linecap")
	inherited("miter", "stroke-linejoin")
	inherited("none", "stroke-dasharray")
	inherited("0", "stroke-dashoffset")
	inherited("visible", "visibility")
	inherited("none", "marker-start", "marker-mid", "marker-end")
	inherited("sans-serif", "font-family")
	inherited("medium", "font-size")
	inherited("normal", "font-weight", "font-style")
	inherited("start", "text-anchor")
	inherited("auto", "shape-rendering", "text-rendering", "color-rendering")

	local("1", "opacity", "stop-opacity")
	local("black", "stop-color")
	local("inline", "display")
	local("none", "clip-path", "mask", "marker")
	local("baseline", "baseline-shift")
	local("auto", "clip")
	// left empty so that viewport elements can apply their hidden default
	local("", "overflow")

	for _, f := range [...]string{
		"SVG", "SVG-static", "CoreAttribute", "Structure", "BasicStructure",
		"ContainerAttribute", "ConditionalProcessing", "Image", "Style",
		"ViewportAttribute", "Shape", "Text", "BasicText", "PaintAttribute",
		"BasicPaintAttribute", "OpacityAttribute", "GraphicsAttribute",
		"BasicGraphicsAttribute", "Marker", "Gradient", "Pattern", "Clip",
		"BasicClip", "Hyperlinking", "XlinkAttribute",
	} {
		r.features[f] = true
	}
	return r
}
