package htmldoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

const rootFontPx = 16

// Cascade origins, lowest first.
const (
	originUA = iota
	originAuthor
	originInline
)

type decl struct {
	prop      string
	value     string
	important bool
}

type rule struct {
	sels   []selector
	decls  []decl
	origin int
	order  int
	// active is whether the enclosing media queries hold for the viewport
	// with no motion preference; activeReduced is the same under
	// prefers-reduced-motion: reduce.
	active        bool
	activeReduced bool
}

// motion reports whether the rule declares animation or transition behavior.
func (r rule) motion() bool {
	for _, d := range r.decls {
		if strings.HasPrefix(d.prop, "animation") || strings.HasPrefix(d.prop, "transition") || d.prop == "scroll-behavior" {
			return true
		}
	}
	return false
}

// loadStyles collects the UA sheet, <style> elements, linked local
// stylesheets and inline style attributes.
func (d *Document) loadStyles(baseDir string) error {
	if err := d.addSheet(uaCSS, originUA); err != nil {
		return fmt.Errorf("user agent stylesheet: %w", err)
	}
	var sheetErr error
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style":
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				if err := d.addSheet(b.String(), originAuthor); err != nil && sheetErr == nil {
					sheetErr = err
				}
			case "link":
				if baseDir != "" && containsString(strings.Fields(strings.ToLower(attr(n, "rel"))), "stylesheet") {
					if text, ok := readLocalSheet(baseDir, attr(n, "href")); ok {
						if err := d.addSheet(text, originAuthor); err != nil && sheetErr == nil {
							sheetErr = err
						}
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	d.sheetErr = sheetErr
	d.parseInline()
	return nil
}

// parseInline parses every node's style attribute. Unparseable inline
// styles make that node's style unavailable.
func (d *Document) parseInline() {
	d.inline = map[int][]decl{}
	d.badInline = map[int]bool{}
	for i, n := range d.nodes {
		v, ok := attrOK(n.html, "style")
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		// The declaration parser drops the value of an unterminated last
		// declaration.
		if !strings.HasSuffix(strings.TrimSpace(v), ";") {
			v += ";"
		}
		decls, err := parser.ParseDeclarations(v)
		if err != nil {
			d.badInline[i] = true
			continue
		}
		d.inline[i] = convertDecls(decls)
	}
}

func readLocalSheet(baseDir, href string) (string, bool) {
	if href == "" || strings.Contains(href, "://") || strings.HasPrefix(href, "//") {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(href)))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (d *Document) addSheet(text string, origin int) error {
	sheet, err := parser.Parse(text)
	if err != nil {
		return fmt.Errorf("parse stylesheet: %w", err)
	}
	d.addRules(sheet.Rules, origin, nil)
	return nil
}

func (d *Document) addRules(rules []*css.Rule, origin int, media []string) {
	for _, r := range rules {
		if r.Kind == css.AtRule {
			switch strings.ToLower(strings.TrimPrefix(r.Name, "@")) {
			case "media":
				d.addRules(r.Rules, origin, append(append([]string(nil), media...), r.Prelude))
			case "supports", "layer", "container":
				d.addRules(r.Rules, origin, media)
			}
			continue
		}
		var sels []selector
		for _, s := range r.Selectors {
			if sel, ok := parseSelector(s); ok {
				sels = append(sels, sel)
			}
		}
		if len(sels) == 0 {
			continue
		}
		d.rules = append(d.rules, rule{
			sels:          sels,
			decls:         convertDecls(r.Declarations),
			origin:        origin,
			order:         len(d.rules),
			active:        mediaListMatches(media, d.viewport, false),
			activeReduced: mediaListMatches(media, d.viewport, true),
		})
	}
}

func convertDecls(in []*css.Declaration) []decl {
	out := make([]decl, 0, len(in))
	for _, dc := range in {
		out = append(out, decl{
			prop:      strings.ToLower(strings.TrimSpace(dc.Property)),
			value:     strings.TrimSpace(dc.Value),
			important: dc.Important,
		})
	}
	return out
}

type matched struct {
	decl
	origin int
	spec   [3]int
	order  int
}

// cascade returns the winning longhand declarations for the node.
func (d *Document) cascade(idx int, st matchState) map[string]string {
	var ms []matched
	for _, r := range d.rules {
		if !r.active {
			continue
		}
		best, ok := [3]int{}, false
		for _, sel := range r.sels {
			if d.matches(sel, idx, st) {
				if !ok || lessSpec(best, sel.specificity) {
					best = sel.specificity
				}
				ok = true
			}
		}
		if !ok {
			continue
		}
		for _, dc := range r.decls {
			ms = append(ms, matched{decl: dc, origin: r.origin, spec: best, order: r.order})
		}
	}
	for _, dc := range d.inline[idx] {
		ms = append(ms, matched{decl: dc, origin: originInline, order: len(d.rules)})
	}
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.important != b.important {
			return !a.important
		}
		if a.origin != b.origin {
			// Important UA declarations beat author ones.
			if a.important {
				return a.origin > b.origin
			}
			return a.origin < b.origin
		}
		if a.spec != b.spec {
			return lessSpec(a.spec, b.spec)
		}
		return a.order < b.order
	})

	out := map[string]string{}
	set := func(p, v string) { out[p] = v }
	for _, m := range ms {
		switch m.prop {
		case "outline", "border":
			expandStroke(m.prop, m.value, set)
		case "background":
			expandBackground(m.value, set)
		case "font":
			expandFont(m.value, set)
		default:
			out[m.prop] = m.value
		}
	}
	return out
}

func lessSpec(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

type computed struct {
	style platform.ResolvedStyle
	bad   bool
}

// style returns the node's computed style for the current state. Callers
// hold d.mu.
func (d *Document) style(idx int) (platform.ResolvedStyle, error) {
	c := d.compute(idx)
	if c.bad {
		return c.style, platform.ErrStyleUnavailable
	}
	return c.style, nil
}

func (d *Document) compute(idx int) computed {
	if c, ok := d.cache[idx]; ok {
		return c
	}
	parent := computed{style: platform.ResolvedStyle{Color: "#000000", FontSizePx: rootFontPx, FontWeight: "400"}}
	if p := d.nodes[idx].parent; p >= 0 {
		parent = d.compute(p)
	}
	vals := d.cascade(idx, matchState{active: d.active})
	ps := parent.style

	s := platform.ResolvedStyle{
		Color:      ps.Color,
		FontSizePx: ps.FontSizePx,
		FontWeight: ps.FontWeight,
	}
	if v, ok := vals["color"]; ok && !isKeyword(v, "inherit", "currentcolor") {
		s.Color = v
	}
	if v, ok := vals["font-size"]; ok {
		if px, ok := parseFontSize(v, ps.FontSizePx); ok {
			s.FontSizePx = px
		}
	}
	if v, ok := vals["font-weight"]; ok {
		s.FontWeight = normalizeWeight(v, ps.FontWeight)
	}
	s.BackgroundColor = valueOr(vals, "background-color", "transparent")
	s.BackgroundImage = valueOr(vals, "background-image", "none")
	s.Outline = d.stroke(vals, "outline", s)
	s.Border = d.stroke(vals, "border", s)
	s.BoxShadow = valueOr(vals, "box-shadow", "none")
	s.Animation = valueOr(vals, "animation", valueOr(vals, "animation-name", ""))
	s.AnimationPlayState = valueOr(vals, "animation-play-state", "running")
	s.Transition = valueOr(vals, "transition", valueOr(vals, "transition-property", ""))

	n := d.nodes[idx]
	display := strings.ToLower(vals["display"])
	visibility := strings.ToLower(vals["visibility"])
	_, open := attrOK(n.html, "open")
	s.Hidden = ps.Hidden || display == "none" || visibility == "hidden" || visibility == "collapse" ||
		(n.tag == "dialog" && !open)

	c := computed{style: s, bad: d.sheetErr != nil || d.badInline[idx]}
	d.cache[idx] = c
	return c
}

func (d *Document) stroke(vals map[string]string, prefix string, s platform.ResolvedStyle) platform.Stroke {
	st := platform.Stroke{Style: strings.ToLower(valueOr(vals, prefix+"-style", "none"))}
	if w, ok := vals[prefix+"-width"]; ok {
		lw := strings.ToLower(w)
		if bw, ok := borderWidths[lw]; ok {
			lw = bw
		}
		if px, ok := parseLength(lw, s.FontSizePx, rootFontPx); ok {
			st.WidthPx = px
		}
	} else {
		st.WidthPx = 3
	}
	st.Color = valueOr(vals, prefix+"-color", "currentcolor")
	if isKeyword(st.Color, "currentcolor") {
		st.Color = s.Color
	}
	return st
}

func valueOr(vals map[string]string, key, def string) string {
	if v, ok := vals[key]; ok && !isKeyword(v, "inherit", "initial", "unset") {
		return v
	}
	return def
}

func isKeyword(v string, kws ...string) bool {
	for _, k := range kws {
		if strings.EqualFold(strings.TrimSpace(v), k) {
			return true
		}
	}
	return false
}

// ResolveStyle returns the element's computed style in its current state.
func (d *Document) ResolveStyle(_ context.Context, id int) (platform.ResolvedStyle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.indexOf(id)
	if !ok {
		return platform.ResolvedStyle{}, fmt.Errorf("resolve style %d: %w", id, platform.ErrUnknownElement)
	}
	return d.style(idx)
}

// ReducedMotion reports whether any rule that applies to the element only
// under one motion preference declares motion behavior. Both the "reduce"
// override and the "no-preference" opt-in patterns count.
func (d *Document) ReducedMotion(_ context.Context, id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	idx, ok := d.indexOf(id)
	if !ok {
		return false
	}
	st := matchState{active: d.active}
	for _, r := range d.rules {
		if r.active == r.activeReduced || !r.motion() {
			continue
		}
		for _, sel := range r.sels {
			if d.matches(sel, idx, st) {
				return true
			}
		}
	}
	return false
}

// mediaListMatches reports whether all nested media preludes hold.
func mediaListMatches(preludes []string, vp model.Viewport, reduce bool) bool {
	for _, p := range preludes {
		if !mediaMatches(p, vp, reduce) {
			return false
		}
	}
	return true
}

// mediaMatches evaluates a comma-separated media query list.
func mediaMatches(prelude string, vp model.Viewport, reduce bool) bool {
	for _, q := range strings.Split(strings.ToLower(prelude), ",") {
		if queryMatches(strings.TrimSpace(q), vp, reduce) {
			return true
		}
	}
	return false
}

func queryMatches(q string, vp model.Viewport, reduce bool) bool {
	negate := false
	if rest, ok := strings.CutPrefix(q, "not "); ok {
		negate, q = true, rest
	}
	q = strings.TrimPrefix(q, "only ")
	ok := true
	for _, part := range strings.Split(q, " and ") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "(") {
			ok = ok && featureMatches(strings.Trim(part, "() "), vp, reduce)
			continue
		}
		switch part {
		case "all", "screen":
		default:
			ok = false
		}
	}
	return ok != negate
}

func featureMatches(f string, vp model.Viewport, reduce bool) bool {
	w, h := vp.Width, vp.Height
	for _, op := range []string{"<=", ">=", "<", ">"} {
		if name, val, found := strings.Cut(f, op); found {
			dim := w
			if strings.TrimSpace(name) == "height" {
				dim = h
			}
			px, ok := parseLength(strings.TrimSpace(val), rootFontPx, rootFontPx)
			if !ok {
				return false
			}
			switch op {
			case "<=":
				return float64(dim) <= px
			case ">=":
				return float64(dim) >= px
			case "<":
				return float64(dim) < px
			default:
				return float64(dim) > px
			}
		}
	}
	name, val, _ := strings.Cut(f, ":")
	name, val = strings.TrimSpace(name), strings.TrimSpace(val)
	length := func() float64 {
		px, _ := parseLength(val, rootFontPx, rootFontPx)
		return px
	}
	switch name {
	case "min-width":
		return float64(w) >= length()
	case "max-width":
		return float64(w) <= length()
	case "min-height":
		return float64(h) >= length()
	case "max-height":
		return float64(h) <= length()
	case "orientation":
		if val == "portrait" {
			return h >= w
		}
		return w > h
	case "prefers-reduced-motion":
		if val == "" || val == "reduce" {
			return reduce
		}
		return !reduce
	case "prefers-color-scheme":
		return val == "light"
	case "hover", "any-hover":
		return val == "" || val == "hover"
	case "pointer", "any-pointer":
		return val == "" || val == "fine"
	}
	return false
}
