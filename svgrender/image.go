package svgrender

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"github.com/benoitkugler/oksvgrender/svgdraw"
	"github.com/benoitkugler/oksvgrender/svgpath"
	"github.com/benoitkugler/oksvgrender/svgview"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUnsupportedImage is returned for image payloads which
	// are neither SVG nor a supported raster format.
	ErrUnsupportedImage = errors.New("svg: unsupported image format")
	// ErrNoRasterizer is returned for SVG images when Options.Images is nil.
	ErrNoRasterizer = errors.New("svg: no rasterizer for embedded svg images")
)

const svgMIME = "image/svg+xml"

// ParseDataURI decodes a data: URI, returning its payload and
// its media type, which may be empty.
func ParseDataURI(uri string) (data []byte, mime string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("svg: not a data uri: %.20q", uri)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("svg: invalid data uri: missing comma")
	}
	params := strings.Split(header, ";")
	mime = strings.TrimSpace(params[0])
	isBase64 := false
	for _, p := range params[1:] {
		if strings.TrimSpace(p) == "base64" {
			isBase64 = true
		}
	}
	if isBase64 {
		payload = strings.Map(func(r rune) rune {
			switch r {
			case ' ', '\n', '\r', '\t':
				return -1
			}
			return r
		}, payload)
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// some writers drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, "", fmt.Errorf("svg: invalid data uri: %w", err)
		}
		return data, mime, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("svg: invalid data uri: %w", err)
	}
	return []byte(s), mime, nil
}

// readImage returns the payload referenced by href, a media type hint
// and the location of the payload, used as base of embedded documents.
func readImage(doc *svgdom.Document, href string) (data []byte, mime, location string, err error) {
	if strings.HasPrefix(href, "data:") {
		data, mime, err = ParseDataURI(href)
		return data, mime, doc.BaseURI, err
	}
	location = svgdom.ResolveURI(doc.BaseURI, href)
	if u, err := url.Parse(location); err == nil && u.Scheme != "" && u.Scheme != "file" && len(u.Scheme) > 1 {
		return nil, "", location, fmt.Errorf("svg: remote image %s not supported", location)
	}
	location = strings.TrimPrefix(location, "file://")
	data, err = os.ReadFile(location)
	if strings.EqualFold(filepath.Ext(location), ".svg") {
		mime = svgMIME
	}
	return data, mime, location, err
}

func isSVGPayload(data []byte, mime string) bool {
	if mime == svgMIME {
		return true
	}
	if filetype.IsImage(data) {
		return false
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("<svg"))
}

// decodeRaster decodes a raster image, after sniffing its format.
func decodeRaster(data []byte) (image.Image, error) {
	kind, _ := filetype.Match(data)
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, kind.MIME.Value)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrUnsupportedImage, kind.MIME.Value, err)
	}
	return img, nil
}

// image paints an <image> element, mapping the picture into
// its viewport with preserveAspectRatio.
func (p *pass) image(n *svgdom.Node, ctm svgpath.Matrix2D, id uint32) (svgpath.Rect, error) {
	if n.Property("visibility") == "hidden" {
		return svgpath.Rect{}, nil
	}
	href := n.Href()
	if href == "" {
		return svgpath.Rect{}, nil
	}
	data, mime, location, err := readImage(n.Document(), href)
	if err != nil {
		return svgpath.Rect{}, p.fail(n, err)
	}

	par, _ := n.Attr("preserveAspectRatio")
	aspect := svgview.ParsePreserveAspectRatio(par)
	var (
		img       image.Image
		intrinsic svgpath.Rect
		embedded  *svgdom.Document
	)
	if isSVGPayload(data, mime) {
		embedded, err = svgdom.Parse(bytes.NewReader(data),
			svgdom.WithBaseURI(location), svgdom.WithLogger(p.logger))
		if err != nil {
			return svgpath.Rect{}, p.fail(n, err)
		}
		w, h := New(embedded, Options{Fonts: p.r.opts.Fonts}).Size()
		intrinsic = svgpath.Rect{W: w, H: h}
	} else {
		img, err = decodeRaster(data)
		if err != nil {
			return svgpath.Rect{}, p.fail(n, err)
		}
		b := img.Bounds()
		intrinsic = svgpath.Rect{W: float64(b.Dx()), H: float64(b.Dy())}
	}
	if intrinsic.Empty() {
		return svgpath.Rect{}, nil
	}

	viewport := svgpath.Rect{
		X: n.Length("x", svgdom.X, 0),
		Y: n.Length("y", svgdom.Y, 0),
		W: n.Length("width", svgdom.X, intrinsic.W),
		H: n.Length("height", svgdom.Y, intrinsic.H),
	}
	if viewport.Empty() {
		return svgpath.Rect{}, nil
	}
	fit := svgview.ViewBoxFit(intrinsic, viewport, aspect)
	dst := svgpath.Rect{X: fit.TX, Y: fit.TY, W: intrinsic.W * fit.SX, H: intrinsic.H * fit.SY}

	if embedded != nil {
		if p.r.opts.Images == nil {
			return svgpath.Rect{}, p.fail(n, ErrNoRasterizer)
		}
		// rasterize at device resolution
		scale := ctm.ScaleFactor()
		pw, ph := int(math.Ceil(dst.W*scale)), int(math.Ceil(dst.H*scale))
		if pw <= 0 || ph <= 0 {
			return svgpath.Rect{}, nil
		}
		img, err = p.r.opts.Images.RasterizeSVG(p.ctx, embedded, pw, ph)
		if err != nil {
			return svgpath.Rect{}, p.fail(n, err)
		}
	}
	b := img.Bounds()
	src := svgpath.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), W: float64(b.Dx()), H: float64(b.Dy())}

	if aspect.Slice {
		st, it := p.sink.BeginContainer(), p.ids.BeginContainer()
		defer func() {
			p.ids.EndContainer(it)
			p.sink.EndContainer(st)
		}()
		p.setClip(svgdraw.RectClip(viewport))
	}
	p.sink.DrawImage(img, dst, src)
	p.ids.DrawImage(img, dst, src, IDColor(id))
	return dst.Intersect(viewport).Transform(ctm), nil
}
