package svgrender

import (
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"golang.org/x/text/language"
)

// conditionsPass evaluates the conditional processing attributes of e,
// as used by <switch>.
func (p *pass) conditionsPass(e *svgdom.Element) bool {
	if v, ok := e.Attr("requiredFeatures"); ok {
		features := strings.Fields(v)
		if len(features) == 0 {
			return false
		}
		reg := p.r.doc.Registry()
		for _, f := range features {
			if !reg.SupportsFeature(f) {
				return false
			}
		}
	}
	if _, ok := e.Attr("requiredExtensions"); ok {
		// no extension is supported, and an empty list is false
		return false
	}
	if v, ok := e.Attr("systemLanguage"); ok {
		return matchLanguage(v, p.r.opts.Language)
	}
	return true
}

// matchLanguage is true when one of the comma separated tags of list
// equals user, or is a bare language matching the language of user
// ("en" matches an "en-US" user, "zh" a "zh-TW" one).
func matchLanguage(list string, user language.Tag) bool {
	ub, uconf := user.Base()
	for _, s := range strings.Split(list, ",") {
		tag, err := language.Parse(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		if tag == user {
			return true
		}
		tb, tconf := tag.Base()
		bare := language.Make(tb.String()) == tag
		if bare && tconf == language.Exact && uconf == language.Exact && tb == ub {
			return true
		}
	}
	return false
}
