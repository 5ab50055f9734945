package model

import "strings"

// ChangeType represents the kind of text change detected in a region.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// TextChange is the difference between two readings of a region's text.
// Delta is what a screen reader would speak for the change: the appended
// portion when the new text extends the old, otherwise the whole new text.
type TextChange struct {
	Type   ChangeType `yaml:"type"             json:"type"`
	Before string     `yaml:"before,omitempty" json:"before,omitempty"`
	After  string     `yaml:"after,omitempty"  json:"after,omitempty"`
	Delta  string     `yaml:"delta,omitempty"  json:"delta,omitempty"`
}

// DiffText compares two text readings after collapsing whitespace.
// It returns false when they are equal.
func DiffText(prev, curr string) (TextChange, bool) {
	prev, curr = CollapseSpace(prev), CollapseSpace(curr)
	if prev == curr {
		return TextChange{}, false
	}

	change := TextChange{Before: prev, After: curr}
	switch {
	case curr == "":
		change.Type = ChangeRemoved
	case prev == "":
		change.Type = ChangeAdded
		change.Delta = curr
	case strings.HasPrefix(curr, prev):
		change.Type = ChangeAdded
		change.Delta = strings.TrimSpace(curr[len(prev):])
	default:
		change.Type = ChangeChanged
		change.Delta = curr
	}
	return change, true
}
