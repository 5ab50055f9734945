package model

import "strings"

// FilterElements applies filters to a slice of elements, returning only
// matching elements. It filters by effective role (explicit, else implicit)
// and bounding box. Elements that don't match are replaced by their matching
// descendants.
func FilterElements(elements []Element, roles []string, bbox *[4]int) []Element {
	if len(roles) == 0 && bbox == nil {
		return elements
	}

	roleSet := make(map[string]bool, len(roles))
	for _, r := range ExpandRoles(roles) {
		roleSet[r] = true
	}
	return filterElements(elements, roleSet, bbox, false)
}

func filterElements(elements []Element, roleSet map[string]bool, bbox *[4]int, inSection bool) []Element {
	var result []Element
	for _, el := range elements {
		// Recursively filter children first
		var filteredChildren []Element
		if len(el.Children) > 0 {
			filteredChildren = filterElements(el.Children, roleSet, bbox, inSection || IsSectioning(el.Tag))
		}

		role := ExplicitRole(el)
		if role == "" {
			role = ImplicitRole(el, inSection)
		}
		roleMatch := len(roleSet) == 0 || roleSet[role] || roleSet[el.Tag]
		bboxMatch := bbox == nil || (!el.Unmeasured && boundsIntersect(el.Bounds, *bbox))

		if roleMatch && bboxMatch {
			// Element matches filters: include it with filtered children
			filtered := el
			filtered.Children = filteredChildren
			result = append(result, filtered)
		} else if len(filteredChildren) > 0 {
			// Element doesn't match, but has matching descendants: include them directly
			result = append(result, filteredChildren...)
		}
	}
	return result
}

// FilterByText filters elements to only those whose text content, aria-label
// or title contains the given text (case-insensitive). Parent elements are
// included if any descendant matches.
func FilterByText(elements []Element, text string) []Element {
	if text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []Element
	for _, el := range elements {
		matched := textMatchesElement(el, textLower)
		childMatches := FilterByText(el.Children, text)

		if matched || len(childMatches) > 0 {
			filtered := el
			filtered.Children = childMatches
			result = append(result, filtered)
		}
	}
	return result
}

func textMatchesElement(el Element, textLower string) bool {
	return strings.Contains(strings.ToLower(el.Text), textLower) ||
		strings.Contains(strings.ToLower(el.Attrs["aria-label"]), textLower) ||
		strings.Contains(strings.ToLower(el.Attrs["title"]), textLower)
}

// boundsIntersect checks if two [x, y, width, height] rectangles overlap.
func boundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
