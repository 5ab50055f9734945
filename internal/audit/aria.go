package audit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mj1618/a11y-audit/internal/model"
)

type attrKind int

const (
	kindBool attrKind = iota
	kindTristate
	kindTrueFalseUndefined
	kindToken
	kindTokenList
	kindInteger
	kindNumber
	kindIDRef
	kindIDRefs
)

type attrSpec struct {
	kind   attrKind
	tokens []string
	min    int
}

// ariaAttrs describes the value space of the validated aria-* attributes.
var ariaAttrs = map[string]attrSpec{
	"aria-atomic":           {kind: kindBool},
	"aria-busy":             {kind: kindBool},
	"aria-disabled":         {kind: kindBool},
	"aria-modal":            {kind: kindBool},
	"aria-multiline":        {kind: kindBool},
	"aria-multiselectable":  {kind: kindBool},
	"aria-readonly":         {kind: kindBool},
	"aria-required":         {kind: kindBool},
	"aria-hidden":           {kind: kindTrueFalseUndefined},
	"aria-expanded":         {kind: kindTrueFalseUndefined},
	"aria-selected":         {kind: kindTrueFalseUndefined},
	"aria-checked":          {kind: kindTristate},
	"aria-pressed":          {kind: kindTristate},
	"aria-live":             {kind: kindToken, tokens: []string{"off", "polite", "assertive"}},
	"aria-invalid":          {kind: kindToken, tokens: []string{"true", "false", "grammar", "spelling"}},
	"aria-current":          {kind: kindToken, tokens: []string{"page", "step", "location", "date", "time", "true", "false"}},
	"aria-haspopup":         {kind: kindToken, tokens: []string{"true", "false", "menu", "listbox", "tree", "grid", "dialog"}},
	"aria-orientation":      {kind: kindToken, tokens: []string{"horizontal", "vertical", "undefined"}},
	"aria-sort":             {kind: kindToken, tokens: []string{"ascending", "descending", "none", "other"}},
	"aria-autocomplete":     {kind: kindToken, tokens: []string{"inline", "list", "both", "none"}},
	"aria-relevant":         {kind: kindTokenList, tokens: []string{"additions", "removals", "text", "all"}},
	"aria-level":            {kind: kindInteger, min: 1},
	"aria-posinset":         {kind: kindInteger, min: 1},
	"aria-setsize":          {kind: kindInteger, min: -1},
	"aria-colcount":         {kind: kindInteger, min: -1},
	"aria-rowcount":         {kind: kindInteger, min: -1},
	"aria-colindex":         {kind: kindInteger, min: 1},
	"aria-rowindex":         {kind: kindInteger, min: 1},
	"aria-valuenow":         {kind: kindNumber},
	"aria-valuemin":         {kind: kindNumber},
	"aria-valuemax":         {kind: kindNumber},
	"aria-activedescendant": {kind: kindIDRef},
	"aria-errormessage":     {kind: kindIDRef},
	"aria-labelledby":       {kind: kindIDRefs},
	"aria-describedby":      {kind: kindIDRefs},
	"aria-controls":         {kind: kindIDRefs},
	"aria-owns":             {kind: kindIDRefs},
	"aria-flowto":           {kind: kindIDRefs},
	"aria-details":          {kind: kindIDRefs},
}

// requiredAttrs maps roles to the state they must expose when the role is
// assigned explicitly. Native elements expose these states themselves.
var requiredAttrs = map[string][]string{
	"checkbox":         {"aria-checked"},
	"radio":            {"aria-checked"},
	"switch":           {"aria-checked"},
	"menuitemcheckbox": {"aria-checked"},
	"menuitemradio":    {"aria-checked"},
	"slider":           {"aria-valuenow"},
	"progressbar":      {"aria-valuenow"},
	"scrollbar":        {"aria-valuenow"},
	"spinbutton":       {"aria-valuenow"},
	"tab":              {"aria-selected"},
	"option":           {"aria-selected"},
	"heading":          {"aria-level"},
	"combobox":         {"aria-expanded"},
}

var headingTags = []string{"h1", "h2", "h3", "h4", "h5", "h6"}

// roleConflicts lists explicit roles that contradict a tag's semantics.
var roleConflicts = map[string][]string{
	"button": {"link", "heading", "textbox", "img", "listitem"},
	"a":      {"heading", "textbox", "img", "listitem"},
	"input":  {"link", "heading", "img"},
	"select": {"button", "link", "heading"},
	"ul":     {"button", "link", "heading"},
	"ol":     {"button", "link", "heading"},
	"label":  {"button", "link"},
	"table":  {"button", "link"},
	"nav":    {"presentation", "none", "button", "link"},
	"main":   {"presentation", "none", "button", "link"},
	"header": {"presentation", "none", "button", "link"},
	"footer": {"presentation", "none", "button", "link"},
	"form":   {"presentation", "none", "button", "link"},
}

func init() {
	for _, h := range headingTags {
		roleConflicts[h] = []string{"button", "link", "textbox", "checkbox"}
	}
}

// structureRoles are valid roles beyond widgets, landmarks and live regions.
var structureRoles = map[string]bool{
	"alertdialog": true, "application": true, "article": true, "blockquote": true,
	"caption": true, "cell": true, "code": true, "columnheader": true, "definition": true,
	"deletion": true, "dialog": true, "directory": true, "document": true, "emphasis": true,
	"feed": true, "figure": true, "generic": true, "grid": true, "group": true,
	"heading": true, "img": true, "insertion": true, "list": true, "listitem": true,
	"math": true, "menu": true, "menubar": true, "meter": true, "none": true,
	"note": true, "paragraph": true, "presentation": true, "progressbar": true,
	"radiogroup": true, "row": true, "rowgroup": true, "rowheader": true,
	"separator": true, "strong": true, "subscript": true, "superscript": true,
	"table": true, "tablist": true, "tabpanel": true, "term": true, "time": true,
	"toolbar": true, "tooltip": true, "tree": true, "treegrid": true,
}

// KnownRole reports whether role is a WAI-ARIA role.
func KnownRole(role string) bool {
	if model.WidgetRoles[role] || model.LandmarkRoles[role] || structureRoles[role] {
		return true
	}
	_, live := model.LiveRoles[role]
	return live
}

// ariaTarget reports whether element i carries semantics worth checking.
func ariaTarget(ac *Context, i int) bool {
	el := ac.Elements[i]
	if el.Role != "" || ac.Interactive(i) {
		return true
	}
	for k := range el.Attrs {
		if strings.HasPrefix(k, "aria-") {
			return true
		}
	}
	return false
}

// AnalyzeAria validates attributes, required states, role conflicts and
// the accessible name of element i.
func AnalyzeAria(ac *Context, i int) *AriaResult {
	if !ariaTarget(ac, i) {
		return nil
	}
	el := ac.Elements[i]
	e := el.Element()
	res := &AriaResult{
		Selector:     ac.Selector(i),
		ExplicitRole: el.Role,
		ImplicitRole: el.ImplicitRole,
		Attributes:   map[string]AttrCheck{},
		Name:         AccessibleName(ac, i),
	}
	issue := func(impact Impact, msg, rec string) {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleAria, Impact: impact, Selector: res.Selector,
			Message: msg, WCAG: "4.1.2", Recommendation: rec,
		})
	}

	names := make([]string, 0, len(el.Attrs))
	for k := range el.Attrs {
		if _, ok := ariaAttrs[k]; ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, k := range names {
		v := el.Attrs[k]
		ok := ac.validAttr(k, v)
		res.Attributes[k] = AttrCheck{Value: v, Present: true, Valid: ok}
		if !ok {
			issue(Moderate, fmt.Sprintf("Invalid value %q for %s", v, k), "Use a value allowed by the attribute")
		}
	}

	role := el.EffectiveRole()
	if el.Role != "" && el.Role != el.ImplicitRole {
		for _, req := range requiredAttrs[role] {
			chk, present := res.Attributes[req]
			chk.Required = true
			if !present {
				chk.Present = false
				issue(Serious, fmt.Sprintf("role=%s requires %s", role, req), fmt.Sprintf("Add %s to elements with role %s", req, role))
			}
			res.Attributes[req] = chk
		}
		if !KnownRole(el.Role) {
			issue(Moderate, fmt.Sprintf("Unknown role %q", el.Role), "Use a valid WAI-ARIA role")
		}
		conflictTag := el.Tag
		if el.Tag == "a" && !e.HasAttr("href") {
			conflictTag = ""
		}
		for _, bad := range roleConflicts[conflictTag] {
			if el.Role == bad {
				res.RoleConflict = true
				issue(Moderate, fmt.Sprintf("<%s> with role=%s contradicts its native semantics", el.Tag, el.Role),
					"Use the element that matches the role instead of overriding it")
			}
		}
	}

	if _, _, reachable := TabIndex(e); reachable && strings.EqualFold(el.Attrs["aria-hidden"], "true") {
		issue(Serious, "Focusable element is hidden from assistive technology", "Remove aria-hidden or take the element out of the tab order")
	}
	if ac.Interactive(i) && role != "presentation" && role != "none" {
		switch {
		case res.Name.Name == "":
			issue(Critical, fmt.Sprintf("Interactive <%s> has no accessible name", el.Tag), "Give the control a visible label or aria-label")
		case !res.Name.Accessible:
			issue(Minor, fmt.Sprintf("Accessible name is longer than %d characters", MaxNameLength), "Shorten the label and move detail to aria-describedby")
		}
	}
	return res
}

func (ac *Context) validAttr(name, value string) bool {
	spec := ariaAttrs[name]
	v := strings.ToLower(strings.TrimSpace(value))
	switch spec.kind {
	case kindBool:
		return v == "true" || v == "false"
	case kindTrueFalseUndefined:
		return v == "true" || v == "false" || v == "undefined"
	case kindTristate:
		return v == "true" || v == "false" || v == "mixed"
	case kindToken:
		return oneOf(v, spec.tokens)
	case kindTokenList:
		fields := strings.Fields(v)
		for _, f := range fields {
			if !oneOf(f, spec.tokens) {
				return false
			}
		}
		return len(fields) > 0
	case kindInteger:
		n, err := strconv.Atoi(v)
		return err == nil && n >= spec.min && n != 0
	case kindNumber:
		_, err := strconv.ParseFloat(v, 64)
		return err == nil
	case kindIDRef:
		_, ok := ac.Lookup(strings.TrimSpace(value))
		return ok
	case kindIDRefs:
		ids := strings.Fields(value)
		for _, id := range ids {
			if _, ok := ac.Lookup(id); !ok {
				return false
			}
		}
		return len(ids) > 0
	}
	return true
}

func oneOf(v string, list []string) bool {
	for _, s := range list {
		if v == s {
			return true
		}
	}
	return false
}

// HeadingLevel returns the level of a heading element: aria-level when
// valid, the hN tag number, else 2.
func HeadingLevel(el model.FlatElement) int {
	if n, err := strconv.Atoi(strings.TrimSpace(el.Attrs["aria-level"])); err == nil && n > 0 {
		return n
	}
	if len(el.Tag) == 2 && el.Tag[0] == 'h' && el.Tag[1] >= '1' && el.Tag[1] <= '6' {
		return int(el.Tag[1] - '0')
	}
	return 2
}

// singletonLandmarks may appear at most once per document.
var singletonLandmarks = []string{"main", "banner", "contentinfo"}

// topLevel reports whether i has no landmark or sectioning ancestor.
func (ac *Context) topLevel(i int) bool {
	top := true
	ac.ancestors(i, func(j int) bool {
		a := ac.Elements[j]
		if model.LandmarkRoles[a.EffectiveRole()] || model.IsSectioning(a.Tag) {
			top = false
		}
		return top
	})
	return top
}

// StructuralIssues checks landmark multiplicity and heading hierarchy.
func StructuralIssues(ac *Context) []Issue {
	var issues []Issue
	seen := map[string]int{}
	prevLevel := 0
	for i := ac.start; i < ac.end; i++ {
		el := ac.Elements[i]
		role := el.EffectiveRole()
		for _, lm := range singletonLandmarks {
			if role != lm || !ac.topLevel(i) {
				continue
			}
			seen[lm]++
			if seen[lm] == 2 {
				issues = append(issues, Issue{
					Rule: RuleStructure, Impact: Serious, Selector: ac.Selector(i), WCAG: "1.3.1",
					Message:        fmt.Sprintf("More than one %s landmark", lm),
					Recommendation: fmt.Sprintf("Keep a single top-level %s landmark per page", lm),
				})
			}
		}
		if role != "heading" {
			continue
		}
		level := HeadingLevel(el)
		if prevLevel > 0 && level > prevLevel+1 {
			issues = append(issues, Issue{
				Rule: RuleStructure, Impact: Moderate, Selector: ac.Selector(i), WCAG: "1.3.1",
				Message:        fmt.Sprintf("Heading level skips from %d to %d", prevLevel, level),
				Recommendation: "Do not skip heading levels",
			})
		}
		prevLevel = level
	}
	return issues
}
