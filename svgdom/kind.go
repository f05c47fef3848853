package svgdom

// Kind enumerates the element kinds known to the renderer.
// The set is closed: tags outside of it are mapped to KindUnknown.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindCharData     // text content, not an element
	KindSVG
	KindG
	KindDefs
	KindSymbol
	KindUse
	KindSwitch
	KindA
	KindRect
	KindCircle
	KindEllipse
	KindLine
	KindPolyline
	KindPolygon
	KindPath
	KindText
	KindTSpan
	KindTRef
	KindImage
	KindLinearGradient
	KindRadialGradient
	KindStop
	KindPattern
	KindClipPath
	KindMask
	KindMarker
	KindStyle
	KindTitle
	KindDesc
	KindMetadata
)

var kindNames = [...]string{
	KindUnknown:        "<unknown>",
	KindCharData:       "#text",
	KindSVG:            "svg",
	KindG:              "g",
	KindDefs:           "defs",
	KindSymbol:         "symbol",
	KindUse:            "use",
	KindSwitch:         "switch",
	KindA:              "a",
	KindRect:           "rect",
	KindCircle:         "circle",
	KindEllipse:        "ellipse",
	KindLine:           "line",
	KindPolyline:       "polyline",
	KindPolygon:        "polygon",
	KindPath:           "path",
	KindText:           "text",
	KindTSpan:          "tspan",
	KindTRef:           "tref",
	KindImage:          "image",
	KindLinearGradient: "linearGradient",
	KindRadialGradient: "radialGradient",
	KindStop:           "stop",
	KindPattern:        "pattern",
	KindClipPath:       "clipPath",
	KindMask:           "mask",
	KindMarker:         "marker",
	KindStyle:          "style",
	KindTitle:          "title",
	KindDesc:           "desc",
	KindMetadata:       "metadata",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<invalid Kind>"
}

// Hint classifies how an element paints.
type Hint uint8

const (
	HintNone Hint = iota
	HintShape
	HintText
	HintImage
	HintContainment
	HintClipping
	HintMasking
)

func (h Hint) String() string {
	switch h {
	case HintNone:
		return "None"
	case HintShape:
		return "Shape"
	case HintText:
		return "Text"
	case HintImage:
		return "Image"
	case HintContainment:
		return "Containment"
	case HintClipping:
		return "Clipping"
	case HintMasking:
		return "Masking"
	default:
		return "<unknown Hint>"
	}
}

// Hint returns the rendering hint of the kind.
// Symbols are containers only when instantiated by a <use>,
// so they report HintNone here.
func (k Kind) Hint() Hint {
	switch k {
	case KindRect, KindCircle, KindEllipse, KindLine, KindPolyline, KindPolygon, KindPath:
		return HintShape
	case KindText:
		return HintText
	case KindImage:
		return HintImage
	case KindSVG, KindG, KindSwitch, KindA, KindUse:
		return HintContainment
	case KindClipPath:
		return HintClipping
	case KindMask:
		return HintMasking
	case KindUnknown, KindCharData, KindDefs, KindSymbol, KindTSpan, KindTRef,
		KindLinearGradient, KindRadialGradient, KindStop, KindPattern, KindMarker,
		KindStyle, KindTitle, KindDesc, KindMetadata:
		return HintNone
	default:
		return HintNone
	}
}

// EstablishesViewport is true for the elements whose
// overflow defaults to hidden.
func (k Kind) EstablishesViewport() bool {
	switch k {
	case KindSVG, KindSymbol, KindMarker, KindPattern:
		return true
	default:
		return false
	}
}

// HostsMarkers is true for the shapes on which marker properties apply.
func (k Kind) HostsMarkers() bool {
	switch k {
	case KindPath, KindLine, KindPolyline, KindPolygon:
		return true
	default:
		return false
	}
}

// keepsCharData is true for the elements whose text content is kept by the loader.
func (k Kind) keepsCharData() bool {
	switch k {
	case KindText, KindTSpan, KindStyle, KindTitle, KindDesc, KindA:
		return true
	default:
		return false
	}
}
