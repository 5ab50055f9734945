package audit

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/mj1618/a11y-audit/internal/color"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
)

// FocusProbe moves focus temporarily. Probes are serialized, and the
// previous focus owner is restored on every exit path.
type FocusProbe struct {
	mu *sync.RWMutex
	fc platform.FocusController
}

// NewFocusProbe returns a probe over fc with its own lock.
func NewFocusProbe(fc platform.FocusController) *FocusProbe {
	return &FocusProbe{mu: &sync.RWMutex{}, fc: fc}
}

// Run records the focus owner, calls fn, then restores the owner (or
// blurs when focus was on the body). A panic in fn becomes ErrEngineFault.
func (p *FocusProbe) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, err := p.fc.ActiveElement(ctx)
	if err != nil {
		return fmt.Errorf("reading focus owner: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: focus probe panicked: %v", ErrEngineFault, r)
		}
		rctx := context.WithoutCancel(ctx)
		var rerr error
		if prev != 0 {
			rerr = p.fc.Focus(rctx, prev)
		}
		if prev == 0 || rerr != nil {
			rerr = p.fc.Blur(rctx)
		}
		if rerr != nil && err == nil {
			err = fmt.Errorf("restoring focus: %w", rerr)
		}
	}()
	return fn(ctx)
}

// Focus indicator methods.
const (
	MethodOutline    = "outline"
	MethodBorder     = "border"
	MethodBoxShadow  = "box-shadow"
	MethodBackground = "background"
)

// minVisibleRatio separates an indicator that paints something from one
// drawn in the background color.
const minVisibleRatio = 1.1

// AnalyzeFocusIndicator probes element i to compare its resting and
// focused styles. It abstains for elements outside the tab sequence and
// when styles are unknown. The error is non-nil only for engine faults.
func AnalyzeFocusIndicator(ac *Context, i int) (*FocusIndicatorResult, error) {
	if ac.probe == nil || ac.provider.Styles == nil {
		return nil, nil
	}
	el := ac.Elements[i]
	e := el.Element()
	if _, _, reachable := TabIndex(e); !reachable || e.Disabled() {
		return nil, nil
	}
	bg, ok := ac.Background(i)
	if !ok {
		return nil, nil
	}

	styles := ac.provider.Styles
	fc := ac.provider.Focus
	var rest, focused platform.ResolvedStyle
	var restErr, focErr error
	err := ac.probe.Run(ac.ctx, func(ctx context.Context) error {
		if active, err := fc.ActiveElement(ctx); err == nil && active == el.ID {
			if err := fc.Blur(ctx); err != nil {
				return err
			}
		}
		rest, restErr = styles.ResolveStyle(ctx, el.ID)
		if err := fc.Focus(ctx, el.ID); err != nil {
			return err
		}
		focused, focErr = styles.ResolveStyle(ctx, el.ID)
		return nil
	})
	if errors.Is(err, ErrEngineFault) {
		return nil, err
	}
	if err != nil || restErr != nil || focErr != nil {
		ac.log.Debug().Err(errors.Join(err, restErr, focErr)).Str("selector", ac.Selector(i)).Msg("focus probe abstained")
		return nil, nil
	}

	res := CompareFocusStyles(rest, focused, bg)
	res.Selector = ac.Selector(i)
	for k := range res.Issues {
		res.Issues[k].Selector = res.Selector
	}
	return &res, nil
}

// CompareFocusStyles diffs outline, border, box shadow and background
// between the resting and focused style. bg is the opaque background the
// element sits on.
func CompareFocusStyles(rest, focused platform.ResolvedStyle, bg color.RGBA) FocusIndicatorResult {
	var res FocusIndicatorResult
	best := 0.0
	measure := func(c color.RGBA, ok bool, against color.RGBA) {
		if !ok || !c.Visible() {
			return
		}
		if r := color.ContrastRatio(c.Over(against), against); r > best {
			best = r
		}
	}
	current := focused.Color

	if focused.Outline.Visible() && focused.Outline != rest.Outline {
		res.Methods = append(res.Methods, MethodOutline)
		c, ok := strokeColor(focused.Outline, current)
		measure(c, ok, bg)
	}
	if focused.Border.Visible() && focused.Border != rest.Border {
		res.Methods = append(res.Methods, MethodBorder)
		c, ok := strokeColor(focused.Border, current)
		measure(c, ok, bg)
	}
	if focused.HasBoxShadow() && focused.BoxShadow != rest.BoxShadow {
		res.Methods = append(res.Methods, MethodBoxShadow)
		c, ok := shadowColor(focused.BoxShadow)
		measure(c, ok, bg)
	}
	if !strings.EqualFold(strings.TrimSpace(focused.BackgroundColor), strings.TrimSpace(rest.BackgroundColor)) {
		restBg := bg
		if c, err := color.Parse(rest.BackgroundColor); err == nil {
			restBg = c.Over(bg)
		}
		if c, err := color.Parse(focused.BackgroundColor); err == nil {
			if after := c.Over(bg); after != restBg {
				res.Methods = append(res.Methods, MethodBackground)
				measure(after, true, restBg)
			}
		}
	}

	res.Present = len(res.Methods) > 0
	res.Ratio = color.Round2(best)
	res.Visible = res.Present && (best == 0 || best >= minVisibleRatio)
	hasOutline := false
	for _, m := range res.Methods {
		hasOutline = hasOutline || m == MethodOutline
	}
	// An outline is sufficient at any ratio; Visible is reported as is.
	res.Sufficient = res.Present && (best >= color.NonText || hasOutline)

	switch {
	case res.Sufficient:
	case !res.Visible:
		res.Issues = append(res.Issues, Issue{
			Rule:           RuleFocus,
			Impact:         Serious,
			Message:        "No visible focus indicator",
			WCAG:           "2.4.7",
			Recommendation: "Add a :focus-visible outline of at least 2px with 3:1 contrast",
		})
	default:
		res.Issues = append(res.Issues, Issue{
			Rule:           RuleFocus,
			Impact:         Moderate,
			Message:        fmt.Sprintf("Focus indicator contrast %.2f:1 is below 3:1", res.Ratio),
			WCAG:           "1.4.11",
			Recommendation: "Increase focus indicator contrast to at least 3:1 against the background",
		})
	}
	return res
}

func strokeColor(s platform.Stroke, current string) (color.RGBA, bool) {
	v := strings.TrimSpace(s.Color)
	if v == "" || strings.EqualFold(v, "currentcolor") {
		v = current
	}
	if strings.TrimSpace(v) == "" {
		return color.Black, true
	}
	c, err := color.Parse(v)
	return c, err == nil
}

var shadowToken = regexp.MustCompile(`(?i)(rgba?|hsla?)\([^)]*\)|#[0-9a-f]{3,8}\b|[a-z]+`)

func shadowColor(shadow string) (color.RGBA, bool) {
	for _, tok := range shadowToken.FindAllString(shadow, -1) {
		if strings.EqualFold(tok, "inset") || strings.EqualFold(tok, "none") {
			continue
		}
		if c, err := color.Parse(tok); err == nil {
			return c, true
		}
	}
	return color.RGBA{}, false
}

// AnalyzeFocusScopes checks modal, menu and tab scopes in the audited
// subtree: initial focus, trap, return-focus linkage and tab order.
func AnalyzeFocusScopes(ac *Context) []*ScopeResult {
	var out []*ScopeResult
	for _, sc := range model.DetectFocusScopes(ac.Elements, ac.opts.Viewport.Bounds()) {
		if !ac.InScope(sc.Index) {
			continue
		}
		out = append(out, analyzeScope(ac, sc))
	}
	return out
}

func analyzeScope(ac *Context, sc model.FocusScope) *ScopeResult {
	root := ac.Elements[sc.Index]
	res := &ScopeResult{Selector: ac.Selector(sc.Index), Kind: string(sc.Kind), Frontmost: sc.Frontmost}
	issue := func(impact Impact, wcag, msg, rec string) {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleFocus, Impact: impact, Selector: res.Selector,
			Message: msg, WCAG: wcag, Recommendation: rec,
		})
	}

	var tabbable []int
	positive := false
	initial := -1
	for j := sc.Index; j < root.End; j++ {
		e := ac.Elements[j].Element()
		idx, explicit, reachable := TabIndex(e)
		if reachable {
			tabbable = append(tabbable, j)
		}
		if explicit && idx > 0 {
			positive = true
		}
		if initial < 0 && (e.HasAttr("autofocus") || e.HasAttr("data-initial-focus")) {
			initial = j
		}
	}
	_, rootFocusable := explicitTabIndex(root.Element())
	if initial < 0 && rootFocusable {
		initial = sc.Index
	}

	switch sc.Kind {
	case model.ScopeModal:
		res.Trap = strings.EqualFold(root.Attrs["aria-modal"], "true") || root.Tag == "dialog" || root.Element().HasAttr("data-focus-trap")
		switch {
		case len(tabbable) == 0 && !rootFocusable:
			issue(Serious, "2.4.3", "Modal has no focusable element to receive initial focus",
				"Give the dialog a focusable control or tabindex=\"-1\" on its container")
		case initial < 0:
			issue(Moderate, "2.4.3", "Modal does not declare an initial focus target",
				"Mark the first control with autofocus or focus the dialog container on open")
		}
		if !res.Trap {
			issue(Moderate, "2.4.3", "Modal does not trap focus",
				"Set aria-modal=\"true\" or use a native <dialog> opened with showModal()")
		}
		if j, ok := returnFocusTarget(ac, sc.Index); ok {
			res.ReturnFocus = ac.Selector(j)
		} else {
			issue(Minor, "2.4.3", "Modal has no return-focus target",
				"Link the dialog to its trigger with aria-controls or data-return-focus")
		}
	case model.ScopeMenu:
		if j, ok := returnFocusTarget(ac, sc.Index); ok {
			res.ReturnFocus = ac.Selector(j)
		}
	case model.ScopeTabs:
		tabs := 0
		for _, j := range tabbable {
			if ac.Elements[j].EffectiveRole() == "tab" {
				tabs++
			}
		}
		if tabs > 1 {
			issue(Minor, "2.1.1", fmt.Sprintf("Tab list has %d tabs in the tab sequence", tabs),
				"Use a roving tabindex so only the selected tab is tabbable")
		}
	}
	if initial >= 0 {
		res.InitialFocus = ac.Selector(initial)
	} else if len(tabbable) > 0 && sc.Kind != model.ScopeModal {
		res.InitialFocus = ac.Selector(tabbable[0])
	}
	if positive {
		issue(Moderate, "2.4.3", "Focus scope contains a positive tabindex",
			"Remove positive tabindex values inside the scope")
	}
	return res
}

// returnFocusTarget finds the element focus returns to when the scope
// closes: an explicit data-return-focus id, or a trigger that controls it.
func returnFocusTarget(ac *Context, scope int) (int, bool) {
	root := ac.Elements[scope]
	if id := root.Attrs["data-return-focus"]; id != "" {
		if j, ok := ac.Lookup(strings.TrimPrefix(id, "#")); ok {
			return j, true
		}
	}
	id := root.Attrs["id"]
	if id == "" {
		return 0, false
	}
	for j, el := range ac.Elements {
		for _, ref := range strings.Fields(el.Attrs["aria-controls"]) {
			if ref == id {
				return j, true
			}
		}
		if el.Attrs["data-target"] == "#"+id || el.Attrs["commandfor"] == id {
			return j, true
		}
	}
	return 0, false
}
