package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/a11y-audit/internal/model"
)

// Bounds represents a rectangle in CSS pixels.
type Bounds struct {
	X, Y, Width, Height int
}

// Array returns the bounds in model order [x, y, width, height].
func (b Bounds) Array() [4]int {
	return [4]int{b.X, b.Y, b.Width, b.Height}
}

// ParseBBox parses a "x,y,w,h" string into a Bounds.
func ParseBBox(s string) (*Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		vals[i] = v
	}
	return &Bounds{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

// ReadOptions controls what elements to read.
type ReadOptions struct {
	Depth    int            // Max traversal depth (0 = unlimited)
	Viewport model.Viewport // Profile the host renders for
}

// Stroke is an outline or border descriptor.
type Stroke struct {
	Style   string  `yaml:"style,omitempty" json:"style,omitempty"`
	WidthPx float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Color   string  `yaml:"color,omitempty" json:"color,omitempty"`
}

// Visible reports whether the stroke paints anything.
func (s Stroke) Visible() bool {
	st := strings.ToLower(s.Style)
	return st != "" && st != "none" && st != "hidden" && s.WidthPx > 0
}

// ResolvedStyle is an element's computed style. Color and font values are
// inherited; background values are the element's own. Colors are raw CSS
// strings so consumers decide how to treat unparseable values.
type ResolvedStyle struct {
	Color              string  `yaml:"color,omitempty"                json:"color,omitempty"`
	BackgroundColor    string  `yaml:"background_color,omitempty"     json:"background_color,omitempty"`
	BackgroundImage    string  `yaml:"background_image,omitempty"     json:"background_image,omitempty"`
	FontSizePx         float64 `yaml:"font_size,omitempty"            json:"font_size,omitempty"`
	FontWeight         string  `yaml:"font_weight,omitempty"          json:"font_weight,omitempty"`
	Outline            Stroke  `yaml:"outline,omitempty"              json:"outline,omitempty"`
	Border             Stroke  `yaml:"border,omitempty"               json:"border,omitempty"`
	BoxShadow          string  `yaml:"box_shadow,omitempty"           json:"box_shadow,omitempty"`
	Animation          string  `yaml:"animation,omitempty"            json:"animation,omitempty"`
	AnimationPlayState string  `yaml:"animation_play_state,omitempty" json:"animation_play_state,omitempty"`
	Transition         string  `yaml:"transition,omitempty"           json:"transition,omitempty"`
	Hidden             bool    `yaml:"hidden,omitempty"               json:"hidden,omitempty"`
}

// HasAnimation reports whether a non-trivial animation is declared.
func (s ResolvedStyle) HasAnimation() bool {
	a := strings.ToLower(strings.TrimSpace(s.Animation))
	return a != "" && a != "none" && !strings.HasPrefix(a, "none ")
}

// HasTransition reports whether a non-trivial transition is declared.
func (s ResolvedStyle) HasTransition() bool {
	t := strings.ToLower(strings.TrimSpace(s.Transition))
	return t != "" && t != "none" && !strings.HasPrefix(t, "none ") && !strings.HasPrefix(t, "all 0s")
}

// HasBoxShadow reports whether a box shadow is declared.
func (s ResolvedStyle) HasBoxShadow() bool {
	b := strings.ToLower(strings.TrimSpace(s.BoxShadow))
	return b != "" && b != "none"
}

// HasBackgroundImage reports whether a background image is declared.
func (s ResolvedStyle) HasBackgroundImage() bool {
	b := strings.ToLower(strings.TrimSpace(s.BackgroundImage))
	return b != "" && b != "none"
}
