package audit

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mj1618/a11y-audit/internal/color"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

// Selector families produced by the accessor.
const (
	FamilyInteractive = "interactive"
	FamilyText        = "text"
	FamilyLandmark    = "landmark"
	FamilyLive        = "live"
	FamilyHeading     = "heading"
	FamilyImage       = "image"
	FamilyMedia       = "media"
	FamilyAll         = "all"
)

// Context is the read-only snapshot analyzers work against. It is built
// once per run; the only mutable state is the style cache and the focus
// probe, both safe for concurrent use.
type Context struct {
	ctx      context.Context
	provider *platform.Provider
	opts     Options
	vocab    Vocabulary
	log      *zerolog.Logger

	// Elements is the whole document in preorder. Analyzers only report
	// on indices in [start, end); ancestors outside the scope are still
	// consulted for backgrounds and context.
	Elements   []model.FlatElement
	start, end int

	byID     map[string]int
	labelFor map[string]int

	// probeMu serializes focus probes against style reads so no resting
	// style is read while a probe holds focus elsewhere.
	probeMu sync.RWMutex
	probe   *FocusProbe

	mu     sync.Mutex
	styles map[int]styleEntry
}

type styleEntry struct {
	style platform.ResolvedStyle
	ok    bool
}

// NewContext builds a snapshot over flat for the subtree rooted at scope
// (an index into flat, or -1 for the whole document).
func NewContext(ctx context.Context, p *platform.Provider, flat []model.FlatElement, scope int, opts Options) (*Context, error) {
	opts = opts.withDefaults()
	vocab, err := opts.Patterns.Vocabulary(opts.Locale)
	if err != nil {
		return nil, err
	}
	ac := &Context{
		ctx:      ctx,
		provider: p,
		opts:     opts,
		vocab:    vocab,
		log:      zerolog.Ctx(ctx),
		Elements: flat,
		start:    0,
		end:      len(flat),
		byID:     make(map[string]int),
		labelFor: make(map[string]int),
		styles:   make(map[int]styleEntry),
	}
	if scope >= 0 && scope < len(flat) {
		ac.start, ac.end = scope, flat[scope].End
	}
	for i, el := range flat {
		if id := el.Attrs["id"]; id != "" {
			if _, dup := ac.byID[id]; !dup {
				ac.byID[id] = i
			}
		}
		if el.Tag == "label" {
			if f := el.Attrs["for"]; f != "" {
				if _, dup := ac.labelFor[f]; !dup {
					ac.labelFor[f] = i
				}
			}
		}
	}
	if p != nil && p.Focus != nil {
		ac.probe = &FocusProbe{mu: &ac.probeMu, fc: p.Focus}
	}
	return ac, nil
}

// Options returns the run options with defaults applied.
func (ac *Context) Options() Options { return ac.opts }

// Vocabulary returns the locale tables for the run.
func (ac *Context) Vocabulary() Vocabulary { return ac.vocab }

// Selector returns the stable selector of element i.
func (ac *Context) Selector(i int) string {
	el := ac.Elements[i]
	if el.Ref != "" {
		return el.Ref
	}
	return el.Path
}

// InScope reports whether i is inside the audited subtree.
func (ac *Context) InScope(i int) bool {
	return i >= ac.start && i < ac.end
}

// Lookup returns the index of the element with the given id attribute.
func (ac *Context) Lookup(id string) (int, bool) {
	i, ok := ac.byID[id]
	return i, ok
}

// Family returns the in-scope indices of a selector family in document
// order. Unknown families are empty.
func (ac *Context) Family(name string) []int {
	var out []int
	for i := ac.start; i < ac.end; i++ {
		if ac.inFamily(i, name) {
			out = append(out, i)
		}
	}
	return out
}

func (ac *Context) inFamily(i int, name string) bool {
	el := ac.Elements[i]
	switch name {
	case FamilyAll:
		return true
	case FamilyInteractive:
		return ac.Interactive(i)
	case FamilyText:
		return strings.TrimSpace(el.Text) != ""
	case FamilyLandmark:
		return model.LandmarkRoles[el.EffectiveRole()]
	case FamilyLive:
		_, live := model.LiveRoles[el.EffectiveRole()]
		return live || el.Element().HasAttr("aria-live")
	case FamilyHeading:
		return el.EffectiveRole() == "heading"
	case FamilyImage:
		return el.Tag == "img" || el.EffectiveRole() == "img"
	case FamilyMedia:
		return model.MediaTags[el.Tag] || el.EffectiveRole() == "marquee" || animatedImage(el)
	}
	return false
}

// Interactive reports whether element i accepts user interaction.
func (ac *Context) Interactive(i int) bool {
	el := ac.Elements[i]
	e := el.Element()
	if el.Tag == "input" && strings.EqualFold(el.Attrs["type"], "hidden") {
		return false
	}
	if model.WidgetRoles[el.EffectiveRole()] || model.IsNativelyFocusable(e) {
		return true
	}
	if ti, ok := explicitTabIndex(e); ok && ti >= 0 {
		return true
	}
	return e.HasAttr("onclick")
}

// Style returns the resting computed style of element i. ok is false when
// the style cannot be read; callers abstain.
func (ac *Context) Style(i int) (platform.ResolvedStyle, bool) {
	ac.mu.Lock()
	e, cached := ac.styles[i]
	ac.mu.Unlock()
	if cached {
		return e.style, e.ok
	}
	if ac.provider == nil || ac.provider.Styles == nil {
		return platform.ResolvedStyle{}, false
	}

	ac.probeMu.RLock()
	st, err := ac.provider.Styles.ResolveStyle(ac.ctx, ac.Elements[i].ID)
	ac.probeMu.RUnlock()
	if err != nil {
		ac.log.Debug().Err(err).Str("selector", ac.Selector(i)).Msg("style unknown")
	}
	e = styleEntry{style: st, ok: err == nil}

	ac.mu.Lock()
	ac.styles[i] = e
	ac.mu.Unlock()
	return e.style, e.ok
}

// Background returns the effective background behind element i: its own
// background composited over ancestors until an opaque layer, white when
// none is found. ok is false when any layer is unknown or an image.
func (ac *Context) Background(i int) (color.RGBA, bool) {
	var layers []color.RGBA
	for j := i; j >= 0; j = ac.Elements[j].Parent {
		st, ok := ac.Style(j)
		if !ok || st.HasBackgroundImage() {
			return color.RGBA{}, false
		}
		if strings.TrimSpace(st.BackgroundColor) == "" {
			continue
		}
		c, err := color.Parse(st.BackgroundColor)
		if err != nil {
			return color.RGBA{}, false
		}
		if !c.Visible() {
			continue
		}
		layers = append(layers, c)
		if c.Opaque() {
			break
		}
	}
	bg := color.White
	for k := len(layers) - 1; k >= 0; k-- {
		bg = layers[k].Over(bg)
	}
	return bg, true
}

// Colors returns the effective opaque foreground and background of i.
func (ac *Context) Colors(i int) (fg, bg color.RGBA, ok bool) {
	st, ok := ac.Style(i)
	if !ok {
		return fg, bg, false
	}
	bg, ok = ac.Background(i)
	if !ok {
		return fg, bg, false
	}
	fg = color.Black
	if strings.TrimSpace(st.Color) != "" {
		c, err := color.Parse(st.Color)
		if err != nil {
			return fg, bg, false
		}
		fg = c
	}
	return fg.Over(bg), bg, true
}

// ancestors calls fn for each ancestor of i, nearest first, until fn
// returns false.
func (ac *Context) ancestors(i int, fn func(j int) bool) {
	for j := ac.Elements[i].Parent; j >= 0; j = ac.Elements[j].Parent {
		if !fn(j) {
			return
		}
	}
}

// descendants returns the indices of i's subtree, excluding i.
func (ac *Context) descendants(i int) []int {
	var out []int
	for j := i + 1; j < ac.Elements[i].End; j++ {
		out = append(out, j)
	}
	return out
}

// explicitTabIndex parses the tabindex attribute.
func explicitTabIndex(el model.Element) (int, bool) {
	v, ok := el.Attr("tabindex")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func animatedImage(el model.FlatElement) bool {
	if el.Tag != "img" {
		return false
	}
	src := strings.ToLower(el.Attrs["src"])
	if q := strings.IndexAny(src, "?#"); q >= 0 {
		src = src[:q]
	}
	return strings.HasSuffix(src, ".gif") || strings.HasSuffix(src, ".apng")
}
