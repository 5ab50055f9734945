package audit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mj1618/a11y-audit/internal/model"
)

// Clarity grades.
const (
	ClarityExcellent = "excellent"
	ClarityGood      = "good"
	ClarityFair      = "fair"
	ClarityPoor      = "poor"
)

// roleSpeech is how a screen reader voices each role.
var roleSpeech = map[string]string{
	"alert": "alert", "alertdialog": "alert dialog", "article": "article",
	"banner": "banner landmark", "button": "button", "cell": "cell",
	"checkbox": "checkbox", "columnheader": "column header", "combobox": "combo box",
	"complementary": "complementary landmark", "contentinfo": "content info landmark",
	"dialog": "dialog", "form": "form landmark", "grid": "grid", "group": "group",
	"img": "image", "link": "link", "list": "list", "listbox": "list box",
	"listitem": "list item", "main": "main landmark", "menu": "menu", "menubar": "menu bar",
	"menuitem": "menu item", "menuitemcheckbox": "menu item checkbox",
	"menuitemradio": "menu item radio", "meter": "meter", "navigation": "navigation landmark",
	"option": "option", "progressbar": "progress bar", "radio": "radio button",
	"region": "region", "row": "row", "search": "search landmark", "searchbox": "search edit text",
	"separator": "separator", "slider": "slider", "spinbutton": "spin button",
	"status": "status", "switch": "switch", "tab": "tab", "table": "table",
	"tablist": "tab list", "tabpanel": "tab panel", "textbox": "edit text",
	"tree": "tree", "treeitem": "tree item",
}

var checkableRoles = map[string]bool{
	"checkbox": true, "radio": true, "switch": true, "menuitemcheckbox": true, "menuitemradio": true,
}

// RoleSpeech returns the spoken role suffix for element el.
func RoleSpeech(el model.FlatElement) string {
	role := el.EffectiveRole()
	if role == "heading" {
		return fmt.Sprintf("heading level %d", HeadingLevel(el))
	}
	return roleSpeech[role]
}

// States returns the spoken state suffixes of el in a fixed order.
func States(el model.FlatElement) []string {
	e := el.Element()
	var out []string
	if e.Disabled() {
		out = append(out, "disabled")
	}
	switch strings.ToLower(el.Attrs["aria-expanded"]) {
	case "true":
		out = append(out, "expanded")
	case "false":
		out = append(out, "collapsed")
	default:
		if el.Tag == "details" {
			if e.HasAttr("open") {
				out = append(out, "expanded")
			} else {
				out = append(out, "collapsed")
			}
		}
	}
	if checkableRoles[el.EffectiveRole()] {
		checked := strings.ToLower(el.Attrs["aria-checked"])
		if checked == "" && e.HasAttr("checked") {
			checked = "true"
		}
		switch checked {
		case "true":
			out = append(out, "checked")
		case "mixed":
			out = append(out, "partially checked")
		default:
			out = append(out, "not checked")
		}
	}
	switch strings.ToLower(el.Attrs["aria-pressed"]) {
	case "true":
		out = append(out, "pressed")
	case "false":
		out = append(out, "not pressed")
	}
	if strings.EqualFold(el.Attrs["aria-selected"], "true") || el.Tag == "option" && e.HasAttr("selected") {
		out = append(out, "selected")
	}
	if requiredMarked(e) {
		out = append(out, "required")
	}
	if strings.EqualFold(el.Attrs["aria-invalid"], "true") {
		out = append(out, "invalid entry")
	}
	if c := strings.ToLower(el.Attrs["aria-current"]); c != "" && c != "false" {
		if c == "page" {
			out = append(out, "current page")
		} else {
			out = append(out, "current")
		}
	}
	return out
}

func requiredMarked(e model.Element) bool {
	return e.HasAttr("required") || strings.EqualFold(e.Attrs["aria-required"], "true")
}

// announceTarget reports whether element i gets an announcement.
func announceTarget(ac *Context, i int) bool {
	if ac.Interactive(i) {
		return true
	}
	role := ac.Elements[i].EffectiveRole()
	return role == "heading" || role == "img" || ac.Elements[i].Tag == "img" || model.LandmarkRoles[role]
}

// Announce simulates what a screen reader speaks when element i receives
// virtual focus. Elements without semantics yield nil.
func Announce(ac *Context, i int) *AnnouncementResult {
	if !announceTarget(ac, i) {
		return nil
	}
	el := ac.Elements[i]
	name := AccessibleName(ac, i)
	parts := []string{name.Name, RoleSpeech(el)}
	parts = append(parts, States(el)...)
	var spoken []string
	for _, p := range parts {
		if p != "" {
			spoken = append(spoken, p)
		}
	}

	res := &AnnouncementResult{
		Selector:     ac.Selector(i),
		Announcement: strings.Join(spoken, ", "),
		Context:      ac.contextOf(i),
	}
	interactive := ac.Interactive(i)
	res.Clarity = Clarity(ac.vocab, name.Name, interactive, res.Context)
	res.Issues = roleChecks(ac, i, name)
	return res
}

// Clarity grades a name: +2 for a length of 3 to 100, +1 for action
// wording (or any non-interactive element), +1 for landmark, list or form
// context, -2 for a generic phrase. An empty name is poor.
func Clarity(v Vocabulary, name string, interactive bool, context []string) string {
	if strings.TrimSpace(name) == "" {
		return ClarityPoor
	}
	score := 0
	if n := utf8.RuneCountInString(name); n >= 3 && n <= MaxNameLength {
		score += 2
	}
	if !interactive {
		score++
	} else if _, ok := matchAny(name, v.ActionWords); ok {
		score++
	}
	if len(context) > 0 {
		score++
	}
	if v.isGeneric(name) || v.hasGenericPhrase(name) {
		score -= 2
	}
	switch {
	case score >= 4:
		return ClarityExcellent
	case score == 3:
		return ClarityGood
	case score >= 1:
		return ClarityFair
	}
	return ClarityPoor
}

// hasGenericPhrase matches multi-word generic phrases inside a longer name.
func (v Vocabulary) hasGenericPhrase(name string) bool {
	n := strings.ToLower(name)
	for _, g := range v.GenericPhrases {
		if strings.Contains(g, " ") && containsPhrase(n, g) {
			return true
		}
	}
	return false
}

// contextOf lists the landmark, list and form ancestors of i, outermost
// first, as a screen reader would voice them on entry.
func (ac *Context) contextOf(i int) []string {
	var ctx []string
	ac.ancestors(i, func(j int) bool {
		el := ac.Elements[j]
		role := el.EffectiveRole()
		switch {
		case model.LandmarkRoles[role]:
			label := role
			if l := model.CollapseSpace(el.Attrs["aria-label"]); l != "" {
				label += ": " + l
			}
			ctx = append(ctx, label)
		case role == "list":
			ctx = append(ctx, "list")
		case el.Tag == "form":
			ctx = append(ctx, "form")
		}
		return true
	})
	for l, r := 0, len(ctx)-1; l < r; l, r = l+1, r-1 {
		ctx[l], ctx[r] = ctx[r], ctx[l]
	}
	return ctx
}

// roleChecks applies the per-role announcement rules.
func roleChecks(ac *Context, i int, name NameResult) []Issue {
	el := ac.Elements[i]
	e := el.Element()
	sel := ac.Selector(i)
	var issues []Issue
	issue := func(impact Impact, wcag, msg, rec string) {
		issues = append(issues, Issue{
			Rule: RuleAnnouncement, Impact: impact, Selector: sel,
			Message: msg, WCAG: wcag, Recommendation: rec,
		})
	}
	lower := strings.ToLower(name.Name)

	switch role := el.EffectiveRole(); {
	case role == "button":
		if containsPhrase(lower, "button") {
			issue(Minor, "2.4.6", "Button label repeats its role", "Remove the word \"button\" from the label")
		}
	case role == "link":
		if name.Name != "" && (ac.vocab.isGeneric(name.Name) || ac.vocab.hasGenericPhrase(name.Name)) {
			issue(Moderate, "2.4.4", fmt.Sprintf("Link text %q does not describe its destination", name.Name),
				"Use link text that names the destination")
		}
		if !hasDestination(e) {
			issue(Moderate, "2.4.4", "Link has no destination", "Give the link a real href or use a button")
		}
		if strings.EqualFold(el.Attrs["target"], "_blank") {
			if _, ok := matchAny(name.Name, ac.vocab.NewWindow); !ok {
				issue(Minor, "3.2.5", "Link opens a new window without announcing it",
					"Add \"opens in a new window\" to the link's name")
			}
		}
	case el.Tag == "img" || role == "img":
		_, hasAlt := e.Attr("alt")
		if !hasAlt && name.Name == "" && role != "presentation" {
			issue(Serious, "1.1.1", "Image has no text alternative", "Add alt text, or alt=\"\" for decorative images")
		}
		if phrase, ok := matchAny(name.Name, ac.vocab.ImageRedundant); ok {
			issue(Minor, "1.1.1", fmt.Sprintf("Image name contains %q", phrase), "Describe the image without \"image of\" phrasing")
		}
		if looksLikeFileName(lower) {
			issue(Moderate, "1.1.1", "Image name looks like a file name", "Describe the image content")
		}
	}

	if model.IsFormControl(e) && !requiredMarked(e) {
		for _, m := range ac.vocab.RequiredMarkers {
			if containsPhrase(lower, m) {
				issue(Moderate, "3.3.2", "Field looks required but is not marked required",
					"Add the required attribute or aria-required=\"true\"")
				break
			}
		}
	}
	return issues
}

func hasDestination(e model.Element) bool {
	href, ok := e.Attr("href")
	if !ok {
		href, ok = e.Attr("data-href")
	}
	h := strings.ToLower(strings.TrimSpace(href))
	return ok && h != "" && h != "#" && !strings.HasPrefix(h, "javascript:")
}

func looksLikeFileName(name string) bool {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
