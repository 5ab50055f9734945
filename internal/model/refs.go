package model

import (
	"fmt"
	"regexp"
	"strings"
)

// slugRe matches characters that are not lowercase alphanumeric or hyphens.
var slugRe = regexp.MustCompile(`[^a-z0-9-]+`)

// slugify converts a label to a URL-safe slug: lowercase, hyphens for spaces/special chars.
func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	// Collapse multiple hyphens
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	// Truncate long slugs
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	return s
}

// bestLabel returns the most stable label for an element: aria-label, then
// title, then own text for elements whose text names them.
// Input values are excluded because they change.
func bestLabel(el Element) string {
	if v := strings.TrimSpace(el.Attrs["aria-label"]); v != "" {
		return v
	}
	if v := strings.TrimSpace(el.Attrs["title"]); v != "" {
		return v
	}
	switch el.Tag {
	case "button", "a", "summary", "label", "h1", "h2", "h3", "h4", "h5", "h6", "legend", "option":
		return el.TextContent()
	}
	return ""
}

// pathTags are containers that always extend the ref path.
var pathTags = map[string]bool{
	"dialog": true,
	"form":   true,
	"table":  true,
	"ul":     true,
	"ol":     true,
	"menu":   true,
}

// isLandmark returns true if the element should be kept as a landmark in the ref path.
func isLandmark(el Element, inSection bool) bool {
	if pathTags[el.Tag] {
		return true
	}
	role := ExplicitRole(el)
	if role == "" {
		role = ImplicitRole(el, inSection)
	}
	if LandmarkRoles[role] || role == "dialog" || role == "alertdialog" || role == "tablist" || role == "menu" {
		return true
	}
	// Labeled groups are landmarks
	return role == "group" && bestLabel(el) != ""
}

// refSegment returns the path segment for an element.
func refSegment(el Element) string {
	if id := strings.TrimSpace(el.Attrs["id"]); id != "" {
		return "#" + id
	}
	if slug := slugify(bestLabel(el)); slug != "" {
		return el.Tag + ":" + slug
	}
	return el.Tag
}

// GenerateRefs walks the element tree and populates the Ref field on every
// element. An element with an id attribute gets "#id"; any other element
// gets a path through its landmark ancestors such as "nav/a:home" or
// "#signup/input". Refs persist across reads as long as the element's
// semantic identity doesn't change, which makes them usable as report keys
// and baseline identities.
func GenerateRefs(elements []Element) {
	// First pass: generate raw refs
	generateRefsRecursive(elements, "", false)

	// Second pass: deduplicate
	deduplicateRefs(elements)
}

func generateRefsRecursive(elements []Element, parentPath string, inSection bool) {
	for i := range elements {
		el := &elements[i]

		seg := refSegment(*el)
		switch {
		case strings.HasPrefix(seg, "#"):
			el.Ref = seg
		case parentPath != "":
			el.Ref = parentPath + "/" + seg
		default:
			el.Ref = seg
		}

		// Landmarks restart the path for their children; everything else is
		// transparent.
		childPath := parentPath
		if isLandmark(*el, inSection) {
			childPath = el.Ref
		}

		generateRefsRecursive(el.Children, childPath, inSection || IsSectioning(el.Tag))
	}
}

// deduplicateRefs finds elements with identical refs and appends .1, .2 suffixes.
func deduplicateRefs(elements []Element) {
	// Collect all refs with their element pointers, in document order
	refCounts := make(map[string][]*Element)
	collectRefs(elements, refCounts)

	// For any ref that appears more than once, append index suffixes
	for ref, elems := range refCounts {
		if len(elems) <= 1 {
			continue
		}
		for i, el := range elems {
			el.Ref = fmt.Sprintf("%s.%d", ref, i+1)
		}
	}
}

func collectRefs(elements []Element, refCounts map[string][]*Element) {
	for i := range elements {
		if elements[i].Ref != "" {
			refCounts[elements[i].Ref] = append(refCounts[elements[i].Ref], &elements[i])
		}
		collectRefs(elements[i].Children, refCounts)
	}
}

// refEntry pairs a ref string with its element pointer.
type refEntry struct {
	ref string
	el  *Element
}

// FindElementByRef searches a ref-populated element tree for the element matching
// the given ref. Supports exact match and partial suffix match.
// Returns the matched element or nil if not found / ambiguous.
func FindElementByRef(elements []Element, ref string) (*Element, error) {
	var entries []refEntry
	collectRefEntries(elements, &entries)

	// Exact match first
	for _, e := range entries {
		if e.ref == ref {
			return e.el, nil
		}
	}

	// Partial match: find refs ending with the provided value
	var matches []refEntry
	for _, e := range entries {
		if strings.HasSuffix(e.ref, "/"+ref) {
			matches = append(matches, e)
		}
	}

	if len(matches) == 1 {
		return matches[0].el, nil
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no element matches ref %q", ref)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "multiple elements match ref %q:\n", ref)
	for _, m := range matches {
		fmt.Fprintf(&b, "  ref=%q id=%d <%s>", m.ref, m.el.ID, m.el.Tag)
		if label := bestLabel(*m.el); label != "" {
			fmt.Fprintf(&b, " label=%q", label)
		}
		fmt.Fprintln(&b)
	}
	return nil, fmt.Errorf("%s", b.String())
}

func collectRefEntries(elements []Element, entries *[]refEntry) {
	for i := range elements {
		if elements[i].Ref != "" {
			*entries = append(*entries, refEntry{ref: elements[i].Ref, el: &elements[i]})
		}
		collectRefEntries(elements[i].Children, entries)
	}
}
