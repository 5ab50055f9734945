package audit

import (
	"strings"
)

// Cue kinds that make color-coded meaning perceivable without color.
const (
	CueText   = "text"
	CueSymbol = "symbol"
	CueIcon   = "icon"
	CueAria   = "aria"
)

// cueAttrs expose state to assistive technology directly.
var cueAttrs = []string{"aria-invalid", "aria-describedby", "aria-errormessage", "aria-current", "aria-selected", "aria-checked", "aria-pressed"}

// AnalyzeColorCue flags elements whose class or data attributes suggest
// color-coded meaning (error, success, ...) without a redundant cue.
func AnalyzeColorCue(ac *Context, i int) *ColorCueResult {
	keywords := colorKeywords(ac, i)
	if len(keywords) == 0 {
		return nil
	}
	el := ac.Elements[i]
	res := &ColorCueResult{Selector: ac.Selector(i), Keywords: keywords}

	text := el.Content
	if _, ok := matchAny(text, ac.vocab.CueWords); ok {
		res.Cues = append(res.Cues, CueText)
	}
	for _, sym := range ac.opts.Patterns.CueSymbols {
		if sym != "" && strings.Contains(text, sym) {
			res.Cues = append(res.Cues, CueSymbol)
			break
		}
	}
	if ac.hasIconChild(i) {
		res.Cues = append(res.Cues, CueIcon)
	}
	for _, a := range cueAttrs {
		if v, ok := el.Attrs[a]; ok && !strings.EqualFold(v, "false") {
			res.Cues = append(res.Cues, CueAria)
			break
		}
	}

	res.UsesColorOnly = len(res.Cues) == 0
	if res.UsesColorOnly {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleColorOnly, Impact: Moderate, Selector: res.Selector, WCAG: "1.4.1",
			Message:        "Meaning (" + strings.Join(keywords, ", ") + ") appears to rely on color alone",
			Recommendation: "Pair color with text, an icon or an ARIA state",
		})
	}
	return res
}

// colorKeywords returns the pattern keywords found as hyphen or
// underscore separated parts of the element's classes and data-state.
func colorKeywords(ac *Context, i int) []string {
	el := ac.Elements[i]
	parts := map[string]bool{}
	for _, cls := range el.Element().Classes() {
		for _, p := range strings.FieldsFunc(strings.ToLower(cls), func(r rune) bool { return r == '-' || r == '_' }) {
			parts[p] = true
		}
	}
	for _, a := range []string{"data-state", "data-status", "data-variant"} {
		for _, p := range strings.Fields(strings.ToLower(el.Attrs[a])) {
			parts[p] = true
		}
	}
	var found []string
	for _, kw := range ac.opts.Patterns.ColorKeywords {
		if parts[kw] {
			found = append(found, kw)
		}
	}
	return found
}

// hasIconChild reports whether i contains an image or icon element.
func (ac *Context) hasIconChild(i int) bool {
	for _, j := range ac.descendants(i) {
		d := ac.Elements[j]
		if d.Tag == "img" || d.Tag == "svg" || d.EffectiveRole() == "img" {
			return true
		}
		for _, cls := range d.Element().Classes() {
			c := strings.ToLower(cls)
			for _, ic := range ac.opts.Patterns.IconClasses {
				if c == ic || strings.HasPrefix(c, ic+"-") {
					return true
				}
			}
		}
	}
	return false
}
