package model

import "strings"

// tagRoles maps tag names to their implicit ARIA role when the mapping does
// not depend on attributes or ancestry.
var tagRoles = map[string]string{
	"article":  "article",
	"aside":    "complementary",
	"button":   "button",
	"datalist": "listbox",
	"details":  "group",
	"dialog":   "dialog",
	"fieldset": "group",
	"form":     "form",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"hr":       "separator",
	"li":       "listitem",
	"main":     "main",
	"menu":     "list",
	"meter":    "meter",
	"nav":      "navigation",
	"ol":       "list",
	"optgroup": "group",
	"option":   "option",
	"output":   "status",
	"progress": "progressbar",
	"summary":  "button",
	"table":    "table",
	"tbody":    "rowgroup",
	"td":       "cell",
	"textarea": "textbox",
	"tfoot":    "rowgroup",
	"th":       "columnheader",
	"thead":    "rowgroup",
	"tr":       "row",
	"ul":       "list",
}

// inputRoles maps input types to implicit roles.
var inputRoles = map[string]string{
	"button":   "button",
	"checkbox": "checkbox",
	"email":    "textbox",
	"image":    "button",
	"number":   "spinbutton",
	"radio":    "radio",
	"range":    "slider",
	"reset":    "button",
	"search":   "searchbox",
	"submit":   "button",
	"tel":      "textbox",
	"text":     "textbox",
	"url":      "textbox",
	"":         "textbox",
}

// sectioningTags scope header/footer: inside them, header and footer lose
// their banner/contentinfo landmark role.
var sectioningTags = map[string]bool{
	"article": true,
	"aside":   true,
	"main":    true,
	"nav":     true,
	"section": true,
}

// ImplicitRole returns the role a tag carries without an explicit role
// attribute. insideSectioning reports whether an ancestor is a sectioning
// element, which demotes header/footer.
func ImplicitRole(el Element, insideSectioning bool) string {
	switch el.Tag {
	case "a", "area":
		if el.HasAttr("href") {
			return "link"
		}
		return ""
	case "img":
		if alt, ok := el.Attr("alt"); ok && alt == "" {
			return "presentation"
		}
		return "img"
	case "input":
		t := strings.ToLower(el.Attrs["type"])
		if t == "hidden" {
			return ""
		}
		if t == "text" || t == "" || t == "search" || t == "email" || t == "tel" || t == "url" {
			if el.HasAttr("list") {
				return "combobox"
			}
		}
		return inputRoles[t]
	case "select":
		if el.HasAttr("multiple") {
			return "listbox"
		}
		if size := el.Attrs["size"]; size != "" && size != "0" && size != "1" {
			return "listbox"
		}
		return "combobox"
	case "header":
		if insideSectioning {
			return ""
		}
		return "banner"
	case "footer":
		if insideSectioning {
			return ""
		}
		return "contentinfo"
	case "section":
		if el.HasAttr("aria-label") || el.HasAttr("aria-labelledby") {
			return "region"
		}
		return ""
	}
	return tagRoles[el.Tag]
}

// IsSectioning reports whether the tag scopes header/footer landmarks.
func IsSectioning(tag string) bool {
	return sectioningTags[tag]
}

// ExplicitRole returns the first token of the role attribute, lowercased.
func ExplicitRole(el Element) string {
	role := el.Role
	if role == "" {
		role = el.Attrs["role"]
	}
	fields := strings.Fields(strings.ToLower(role))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LandmarkRoles are the roles screen readers offer for landmark navigation.
var LandmarkRoles = map[string]bool{
	"banner":        true,
	"complementary": true,
	"contentinfo":   true,
	"form":          true,
	"main":          true,
	"navigation":    true,
	"region":        true,
	"search":        true,
}

// WidgetRoles are roles that accept user interaction.
var WidgetRoles = map[string]bool{
	"button":           true,
	"checkbox":         true,
	"combobox":         true,
	"gridcell":         true,
	"link":             true,
	"listbox":          true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"option":           true,
	"radio":            true,
	"scrollbar":        true,
	"searchbox":        true,
	"slider":           true,
	"spinbutton":       true,
	"switch":           true,
	"tab":              true,
	"textbox":          true,
	"treeitem":         true,
}

// LiveRoles are roles with an implicit live-region politeness.
var LiveRoles = map[string]string{
	"alert":   "assertive",
	"log":     "polite",
	"status":  "polite",
	"timer":   "off",
	"marquee": "off",
}

// MetaRoles maps selector family names to the concrete roles they expand to.
// Families that cannot be expressed purely by role (text-bearing nodes,
// natively focusable tags) are handled by MatchesFamily.
var MetaRoles = map[string][]string{
	"interactive": {"button", "checkbox", "combobox", "link", "listbox", "menuitem", "menuitemcheckbox", "menuitemradio", "option", "radio", "searchbox", "slider", "spinbutton", "switch", "tab", "textbox", "treeitem"},
	"landmark":    {"banner", "complementary", "contentinfo", "form", "main", "navigation", "region", "search"},
	"live":        {"alert", "log", "status", "timer", "marquee"},
	"heading":     {"heading"},
	"image":       {"img"},
	"dialog":      {"dialog", "alertdialog"},
}

// ExpandRoles expands any meta-roles in the given list to their concrete roles.
// Non-meta roles are passed through unchanged. Duplicates are removed.
func ExpandRoles(roles []string) []string {
	seen := make(map[string]bool, len(roles))
	var expanded []string
	for _, r := range roles {
		if concrete, ok := MetaRoles[r]; ok {
			for _, c := range concrete {
				if !seen[c] {
					seen[c] = true
					expanded = append(expanded, c)
				}
			}
		} else if !seen[r] {
			seen[r] = true
			expanded = append(expanded, r)
		}
	}
	return expanded
}

// nativeFocusTags are tags that take sequential focus without a tabindex.
var nativeFocusTags = map[string]bool{
	"button":   true,
	"select":   true,
	"textarea": true,
	"summary":  true,
	"iframe":   true,
}

// IsNativelyFocusable reports whether the element takes part in sequential
// navigation by virtue of its tag alone, ignoring disabled state.
func IsNativelyFocusable(el Element) bool {
	switch el.Tag {
	case "a", "area":
		return el.HasAttr("href")
	case "input":
		return !strings.EqualFold(el.Attrs["type"], "hidden")
	case "audio", "video":
		return el.HasAttr("controls")
	}
	if nativeFocusTags[el.Tag] {
		return true
	}
	if ce, ok := el.Attr("contenteditable"); ok && !strings.EqualFold(ce, "false") {
		return true
	}
	return false
}

// IsFormControl reports whether the element is a labelable form control.
func IsFormControl(el Element) bool {
	switch el.Tag {
	case "input":
		t := strings.ToLower(el.Attrs["type"])
		return t != "hidden" && t != "submit" && t != "reset" && t != "button" && t != "image"
	case "select", "textarea", "meter", "progress", "output":
		return true
	}
	return false
}

// MediaTags are intrinsically time-based elements.
var MediaTags = map[string]bool{
	"audio":   true,
	"video":   true,
	"marquee": true,
}
