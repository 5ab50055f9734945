package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/a11y-audit/internal/model"
)

// TabIndex returns the effective tab index of el, whether it was set
// explicitly, and whether Tab reaches the element. A negative explicit
// index removes the element from the sequence, natively focusable or not.
func TabIndex(el model.Element) (idx int, explicit, reachable bool) {
	if n, ok := explicitTabIndex(el); ok {
		if n < 0 {
			return n, true, false
		}
		return n, true, !el.HasAttr("disabled")
	}
	if model.IsNativelyFocusable(el) && !el.HasAttr("disabled") {
		return 0, false, true
	}
	return -1, false, false
}

var (
	arrowKeys     = []string{"ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight"}
	compositeKeys = []string{"ArrowUp", "ArrowDown", "Home", "End"}
	rangeKeys     = []string{"ArrowUp", "ArrowDown", "ArrowLeft", "ArrowRight", "Home", "End", "PageUp", "PageDown"}
)

// expectedKeys maps roles to the keys users expect them to handle.
var expectedKeys = map[string][]string{
	"button":           {"Enter", "Space"},
	"link":             {"Enter"},
	"checkbox":         {"Space"},
	"switch":           {"Space"},
	"radio":            append([]string{"Space"}, arrowKeys...),
	"menuitem":         {"Enter", "Space"},
	"menuitemcheckbox": {"Enter", "Space"},
	"menuitemradio":    {"Enter", "Space"},
	"option":           {"Enter", "Space"},
	"tab":              {"Enter", "Space"},
	"treeitem":         {"Enter"},
	"gridcell":         {"Enter"},
	"slider":           rangeKeys,
	"scrollbar":        rangeKeys,
	"spinbutton":       {"ArrowUp", "ArrowDown", "Home", "End"},
	"combobox":         {"ArrowDown", "ArrowUp", "Enter", "Escape"},
	"listbox":          compositeKeys,
	"menu":             compositeKeys,
	"tree":             compositeKeys,
	"grid":             compositeKeys,
	"radiogroup":       arrowKeys,
	"menubar":          {"ArrowLeft", "ArrowRight", "Home", "End"},
	"tablist":          {"ArrowLeft", "ArrowRight", "Home", "End"},
	"dialog":           {"Escape"},
	"alertdialog":      {"Escape"},
}

// compositeRoles own the focus of their items.
var compositeRoles = map[string]bool{
	"listbox": true, "menu": true, "menubar": true, "tablist": true,
	"tree": true, "grid": true, "radiogroup": true, "treegrid": true,
}

var keyAliases = map[string]string{
	" ": "Space", "space": "Space", "spacebar": "Space",
	"enter": "Enter", "return": "Enter",
	"esc": "Escape", "escape": "Escape",
	"up": "ArrowUp", "arrowup": "ArrowUp", "down": "ArrowDown", "arrowdown": "ArrowDown",
	"left": "ArrowLeft", "arrowleft": "ArrowLeft", "right": "ArrowRight", "arrowright": "ArrowRight",
	"home": "Home", "end": "End", "pageup": "PageUp", "pagedown": "PageDown", "arrows": "arrows",
}

// ExpectedKeys returns the keys expected for a role.
func ExpectedKeys(role string) []string {
	return expectedKeys[role]
}

// keyboardTarget reports whether element i gets a keyboard result.
func keyboardTarget(ac *Context, i int) bool {
	if ac.Interactive(i) {
		return true
	}
	_, ok := expectedKeys[ac.Elements[i].EffectiveRole()]
	return ok
}

// nativeControl reports whether the browser supplies keyboard behavior
// for the element's role.
func nativeControl(el model.FlatElement) bool {
	if el.Role != "" && el.Role != el.ImplicitRole {
		return false
	}
	switch el.Tag {
	case "button", "input", "select", "textarea", "summary", "dialog", "option":
		return true
	case "a", "area":
		return el.Element().HasAttr("href")
	}
	return false
}

// declaredKeys returns the keys a handler declares. all is true for
// inline key handlers, which are assumed to handle every expected key.
func declaredKeys(el model.Element) (keys map[string]bool, all bool) {
	for _, a := range []string{"onkeydown", "onkeyup", "onkeypress"} {
		if el.HasAttr(a) {
			return nil, true
		}
	}
	v, ok := el.Attr("data-keys")
	if !ok {
		return nil, false
	}
	keys = map[string]bool{}
	for _, k := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
		name, ok := keyAliases[strings.ToLower(k)]
		if !ok {
			name = k
		}
		if name == "arrows" {
			for _, a := range arrowKeys {
				keys[a] = true
			}
			continue
		}
		keys[name] = true
	}
	return keys, false
}

// AnalyzeKeyboard reports reachability and key support of element i. It
// abstains for elements that are neither interactive nor composite.
func AnalyzeKeyboard(ac *Context, i int) *KeyboardResult {
	if !keyboardTarget(ac, i) {
		return nil
	}
	el := ac.Elements[i]
	e := el.Element()
	role := el.EffectiveRole()
	idx, explicit, reachable := TabIndex(e)
	res := &KeyboardResult{
		Selector:     ac.Selector(i),
		TabIndex:     idx,
		Explicit:     explicit,
		Focusable:    reachable,
		ExpectedKeys: ExpectedKeys(role),
	}
	issue := func(impact Impact, wcag, msg, rec string) {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleKeyboard, Impact: impact, Selector: res.Selector,
			Message: msg, WCAG: wcag, Recommendation: rec,
		})
	}

	if e.HasAttr("onclick") && !model.WidgetRoles[role] && !model.IsNativelyFocusable(e) {
		if keys, all := declaredKeys(e); reachable && (all || len(keys) > 0) {
			return res
		}
		issue(Serious, "2.1.1", fmt.Sprintf("Click handler on non-interactive <%s> is not keyboard accessible", el.Tag),
			"Use a <button> or add a role, tabindex=\"0\" and key handlers")
		return res
	}
	if e.Disabled() {
		return res
	}

	managed := ac.managedByComposite(i)
	if model.WidgetRoles[role] && !reachable && !managed {
		issue(Serious, "2.1.1", fmt.Sprintf("Element with role %q is not reachable with Tab", role),
			"Add tabindex=\"0\" or use the native element")
	}

	if nativeControl(el) {
		res.SupportedKeys = res.ExpectedKeys
		return res
	}
	keys, all := declaredKeys(e)
	if !all && keys == nil && managed {
		keys, all = ac.compositeKeys(i)
	}
	if all {
		res.SupportedKeys = res.ExpectedKeys
		return res
	}
	var missing []string
	for _, k := range res.ExpectedKeys {
		if keys[k] {
			res.SupportedKeys = append(res.SupportedKeys, k)
		} else {
			missing = append(missing, k)
		}
	}
	switch {
	case len(res.ExpectedKeys) == 0:
	case len(res.SupportedKeys) == 0:
		issue(Serious, "2.1.1", fmt.Sprintf("role=%s has no keyboard handler (expects %s)", role, strings.Join(res.ExpectedKeys, ", ")),
			"Attach a keydown handler for the role's expected keys")
	case len(missing) > 0:
		issue(Moderate, "2.1.1", fmt.Sprintf("role=%s does not handle %s", role, strings.Join(missing, ", ")),
			"Handle every key the role's interaction pattern expects")
	}
	return res
}

// managedByComposite reports whether i is an item whose focus is owned by
// a composite ancestor (roving tabindex or aria-activedescendant).
func (ac *Context) managedByComposite(i int) bool {
	managed := false
	ac.ancestors(i, func(j int) bool {
		if compositeRoles[ac.Elements[j].EffectiveRole()] {
			managed = true
			return false
		}
		return true
	})
	return managed
}

// compositeKeys returns the keys declared by the nearest composite
// ancestor's handler.
func (ac *Context) compositeKeys(i int) (map[string]bool, bool) {
	var keys map[string]bool
	var all bool
	ac.ancestors(i, func(j int) bool {
		if !compositeRoles[ac.Elements[j].EffectiveRole()] {
			return true
		}
		keys, all = declaredKeys(ac.Elements[j].Element())
		return false
	})
	return keys, all
}

// ValidateTabOrder walks the tab sequence in document order and flags
// positive indices and any decrease after a positive index.
func ValidateTabOrder(ac *Context) []Issue {
	var issues []Issue
	sawPositive := false
	prev := 0
	for i := ac.start; i < ac.end; i++ {
		e := ac.Elements[i].Element()
		idx, explicit, reachable := TabIndex(e)
		sel := ac.Selector(i)
		// Flagged even when disabled: the index takes effect once enabled.
		if explicit && idx > 0 {
			issues = append(issues, Issue{
				Rule: RuleKeyboard, Impact: Moderate, Selector: sel, WCAG: "2.4.3",
				Message:        fmt.Sprintf("Positive tabindex=%d overrides document order", idx),
				Recommendation: "Remove positive tabindex values and order elements in the DOM",
			})
		}
		if !reachable {
			continue
		}
		if sawPositive && idx < prev {
			issues = append(issues, Issue{
				Rule: RuleKeyboard, Impact: Moderate, Selector: sel, WCAG: "2.4.3",
				Message:        fmt.Sprintf("Tab order jumps back from tabindex=%d to %d", prev, idx),
				Recommendation: "Remove positive tabindex values and order elements in the DOM",
			})
		}
		if idx > 0 {
			sawPositive = true
		}
		prev = idx
	}
	return issues
}

// TabSequence returns the in-scope tab stops in the order the browser
// visits them: positive indices ascending, then zero in document order.
func TabSequence(ac *Context) []int {
	var seq []int
	for i := ac.start; i < ac.end; i++ {
		if _, _, ok := TabIndex(ac.Elements[i].Element()); ok {
			seq = append(seq, i)
		}
	}
	sort.SliceStable(seq, func(a, b int) bool {
		ia, _, _ := TabIndex(ac.Elements[seq[a]].Element())
		ib, _, _ := TabIndex(ac.Elements[seq[b]].Element())
		if ia == 0 || ib == 0 {
			return ia != 0 && ib == 0
		}
		return ia < ib
	})
	return seq
}
