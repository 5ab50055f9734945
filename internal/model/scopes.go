package model

import "strings"

// ScopeKind names a focus-management scenario.
type ScopeKind string

const (
	ScopeModal ScopeKind = "modal"
	ScopeMenu  ScopeKind = "menu"
	ScopeTabs  ScopeKind = "tabs"
)

// FocusScope is a subtree with its own focus-management expectations.
// Index points at the scope root in the flat list it was detected in.
type FocusScope struct {
	Kind      ScopeKind `yaml:"kind"                json:"kind"`
	Index     int       `yaml:"-"                   json:"-"`
	Ref       string    `yaml:"ref"                 json:"ref"`
	Frontmost bool      `yaml:"frontmost,omitempty" json:"frontmost,omitempty"`
}

// scopeKind classifies the element, or returns "" for ordinary elements.
func scopeKind(el FlatElement) ScopeKind {
	role := el.EffectiveRole()
	switch {
	case role == "dialog" || role == "alertdialog" || el.Tag == "dialog":
		return ScopeModal
	case strings.EqualFold(el.Attrs["aria-modal"], "true"):
		return ScopeModal
	case role == "menu" || role == "menubar" || role == "listbox" && el.Tag != "select":
		return ScopeMenu
	case role == "tablist":
		return ScopeTabs
	}
	return ""
}

// DetectFocusScopes returns the focus scopes in document order. The
// frontmost modal, if any, is marked.
func DetectFocusScopes(flat []FlatElement, viewport [4]int) []FocusScope {
	var scopes []FocusScope
	for i, el := range flat {
		if k := scopeKind(el); k != "" {
			scopes = append(scopes, FocusScope{Kind: k, Index: i, Ref: el.Ref})
		}
	}
	if idx := DetectFrontmostOverlay(flat, viewport); idx >= 0 {
		for i := range scopes {
			if scopes[i].Index == idx {
				scopes[i].Frontmost = true
			}
		}
	}
	return scopes
}

// DetectFrontmostOverlay finds the modal that should receive focus first and
// returns its index, or -1 when there is none.
//
// Detection strategies (tried in order):
//  1. Focus-based: the modal whose subtree holds the focused element.
//  2. Bounds-based: a modal that is smaller than and centered within the
//     viewport (typical dialog pattern).
//  3. Order-based: the last modal in document order, which paints on top
//     when stacking is otherwise equal.
func DetectFrontmostOverlay(flat []FlatElement, viewport [4]int) int {
	var modals []int
	for i, el := range flat {
		if scopeKind(el) == ScopeModal && !el.Element().HasAttr("hidden") {
			modals = append(modals, i)
		}
	}
	if len(modals) == 0 {
		return -1
	}

	// Strategy 1
	for _, i := range modals {
		if containsFocused(flat, i) {
			return i
		}
	}

	// Strategy 2
	for _, i := range modals {
		if flat[i].Unmeasured {
			continue
		}
		if isOverlaySized(flat[i].Bounds, viewport) && isCentered(flat[i].Bounds, viewport) {
			return i
		}
	}

	return modals[len(modals)-1]
}

// containsFocused checks if the element at idx or any descendant has focus.
func containsFocused(flat []FlatElement, idx int) bool {
	end := flat[idx].End
	if end <= idx {
		end = idx + 1
	}
	for i := idx; i < end && i < len(flat); i++ {
		if flat[i].Focused {
			return true
		}
	}
	return false
}

// isOverlaySized returns true if the candidate is meaningfully smaller than
// the viewport (below 80% in at least one dimension).
func isOverlaySized(candidate, viewport [4]int) bool {
	vw, vh := viewport[2], viewport[3]
	cw, ch := candidate[2], candidate[3]

	if vw == 0 || vh == 0 || cw == 0 || ch == 0 {
		return false
	}

	return cw < vw*80/100 || ch < vh*80/100
}

// isCentered returns true if the candidate's center lies within 25% of the
// viewport's center on both axes.
func isCentered(candidate, viewport [4]int) bool {
	vcx := viewport[0] + viewport[2]/2
	vcy := viewport[1] + viewport[3]/2
	ccx := candidate[0] + candidate[2]/2
	ccy := candidate[1] + candidate[3]/2

	dx := ccx - vcx
	dy := ccy - vcy
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	return dx <= viewport[2]/4 && dy <= viewport[3]/4
}
