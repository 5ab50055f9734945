package model

import "strings"

// Element represents a node in the rendered element tree.
type Element struct {
	ID         int               `yaml:"i"               json:"i"`             // Sequential integer ID (document order)
	Tag        string            `yaml:"tag"             json:"tag"`           // Lowercase tag name
	Role       string            `yaml:"r,omitempty"     json:"r,omitempty"`   // Explicit role attribute
	Text       string            `yaml:"t,omitempty"     json:"t,omitempty"`   // Own text (direct text nodes, whitespace collapsed)
	Content    string            `yaml:"tc,omitempty"    json:"tc,omitempty"`  // Full text content in document order, when the host reports it
	Attrs      map[string]string `yaml:"a,omitempty"     json:"a,omitempty"`   // Attribute map
	Bounds     [4]int            `yaml:"b"               json:"b"`             // [x, y, width, height]
	Unmeasured bool              `yaml:"um,omitempty"    json:"um,omitempty"`  // Host could not report geometry
	Focused    bool              `yaml:"f,omitempty"     json:"f,omitempty"`   // Has keyboard focus
	Children   []Element         `yaml:"c,omitempty"     json:"c,omitempty"`   // Child elements
	Ref        string            `yaml:"ref,omitempty"   json:"ref,omitempty"` // Stable selector, see GenerateRefs
}

// Attr returns the attribute value and whether it is present.
func (el Element) Attr(key string) (string, bool) {
	v, ok := el.Attrs[key]
	return v, ok
}

// HasAttr reports whether the attribute is present, regardless of value.
func (el Element) HasAttr(key string) bool {
	_, ok := el.Attrs[key]
	return ok
}

// Disabled reports whether the element is disabled natively or via aria-disabled.
func (el Element) Disabled() bool {
	if el.HasAttr("disabled") {
		return true
	}
	return strings.EqualFold(el.Attrs["aria-disabled"], "true")
}

// Classes returns the whitespace separated class list.
func (el Element) Classes() []string {
	return strings.Fields(el.Attrs["class"])
}

// TextContent returns the element's text including all descendants, with
// whitespace collapsed. Hosts that report Content are trusted for ordering.
func (el Element) TextContent() string {
	if el.Content != "" {
		return el.Content
	}
	var parts []string
	collectText(el, &parts)
	return strings.Join(parts, " ")
}

func collectText(el Element, parts *[]string) {
	if el.Content != "" {
		*parts = append(*parts, el.Content)
		return
	}
	if el.Text != "" {
		*parts = append(*parts, el.Text)
	}
	for _, c := range el.Children {
		collectText(c, parts)
	}
}

// CollapseSpace trims s and collapses internal runs of whitespace to a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
