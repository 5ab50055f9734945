package audit

import (
	"strings"
	"unicode/utf8"

	"github.com/mj1618/a11y-audit/internal/model"
)

// Accessible name sources, in resolution order.
const (
	SourceAriaLabel     = "aria-label"
	SourceLabelledBy    = "aria-labelledby"
	SourceLabel         = "label"
	SourceAlt           = "alt"
	SourceValue         = "value"
	SourceContent       = "content"
	SourceTitle         = "title"
	SourcePlaceholder   = "placeholder"
	SourceWrappingLabel = "wrapping-label"
)

// MaxNameLength is the longest name still considered usable.
const MaxNameLength = 100

// nameFromContent lists roles whose name may come from their text.
var nameFromContent = map[string]bool{
	"button": true, "link": true, "heading": true, "tab": true, "option": true,
	"menuitem": true, "menuitemcheckbox": true, "menuitemradio": true,
	"cell": true, "gridcell": true, "columnheader": true, "rowheader": true,
	"checkbox": true, "radio": true, "switch": true, "treeitem": true,
	"tooltip": true, "row": true, "listitem": true, "status": true, "alert": true,
	"log": true, "": true,
}

// AccessibleName resolves the accessible name of element i and lists
// every source that offered a candidate.
func AccessibleName(ac *Context, i int) NameResult {
	el := ac.Elements[i]
	e := el.Element()
	role := el.EffectiveRole()

	var res NameResult
	add := func(src, text string) {
		text = model.CollapseSpace(text)
		if text == "" {
			return
		}
		res.Sources = append(res.Sources, src)
		if res.Name == "" {
			res.Name, res.Source = text, src
		}
	}

	add(SourceAriaLabel, el.Attrs["aria-label"])
	if ids := strings.Fields(el.Attrs["aria-labelledby"]); len(ids) > 0 {
		var parts []string
		for _, id := range ids {
			if j, ok := ac.Lookup(id); ok {
				parts = append(parts, ac.textOf(j))
			}
		}
		add(SourceLabelledBy, strings.Join(parts, " "))
	}
	formControl := model.IsFormControl(e)
	if formControl {
		if id := el.Attrs["id"]; id != "" {
			if j, ok := ac.labelFor[id]; ok {
				add(SourceLabel, ac.textOf(j))
			}
		}
	}
	switch {
	case el.Tag == "img" || el.Tag == "area":
		add(SourceAlt, el.Attrs["alt"])
	case el.Tag == "input":
		switch strings.ToLower(el.Attrs["type"]) {
		case "image":
			add(SourceAlt, el.Attrs["alt"])
		case "submit":
			add(SourceValue, orDefault(el.Attrs["value"], "Submit"))
		case "reset":
			add(SourceValue, orDefault(el.Attrs["value"], "Reset"))
		case "button":
			add(SourceValue, el.Attrs["value"])
		}
	}
	if nameFromContent[role] && !formControl && el.Tag != "img" && el.Tag != "input" {
		add(SourceContent, el.Content)
	}
	add(SourceTitle, el.Attrs["title"])
	if el.Tag == "input" || el.Tag == "textarea" {
		add(SourcePlaceholder, el.Attrs["placeholder"])
	}
	if formControl {
		ac.ancestors(i, func(j int) bool {
			if ac.Elements[j].Tag == "label" {
				add(SourceWrappingLabel, ac.Elements[j].Content)
				return false
			}
			return true
		})
	}

	res.Accessible = res.Name != "" && utf8.RuneCountInString(res.Name) <= MaxNameLength
	res.Clear = res.Accessible && !ac.vocab.isGeneric(res.Name)
	return res
}

// textOf is the name contribution of a referenced element.
func (ac *Context) textOf(j int) string {
	el := ac.Elements[j]
	if l := strings.TrimSpace(el.Attrs["aria-label"]); l != "" {
		return l
	}
	return el.Content
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
