package model

import (
	"fmt"
	"sort"
	"strings"
)

// Viewport is a named rendering profile. Each profile yields an independent
// report keyed by its name.
type Viewport struct {
	Name   string `yaml:"name"   json:"name"   mapstructure:"name"`
	Width  int    `yaml:"width"  json:"width"  mapstructure:"width"`
	Height int    `yaml:"height" json:"height" mapstructure:"height"`
}

// Bounds returns the viewport rectangle anchored at the origin.
func (v Viewport) Bounds() [4]int {
	return [4]int{0, 0, v.Width, v.Height}
}

func (v Viewport) String() string {
	return fmt.Sprintf("%s (%dx%d)", v.Name, v.Width, v.Height)
}

// DefaultViewports are used when configuration names none.
var DefaultViewports = []Viewport{
	{Name: "desktop", Width: 1280, Height: 800},
	{Name: "tablet", Width: 768, Height: 1024},
	{Name: "mobile", Width: 375, Height: 667},
}

// SelectViewports returns the profiles named in names, in the order given.
// An empty names list selects the first available profile.
func SelectViewports(available []Viewport, names []string) ([]Viewport, error) {
	if len(available) == 0 {
		available = DefaultViewports
	}
	if len(names) == 0 {
		return available[:1], nil
	}
	byName := make(map[string]Viewport, len(available))
	for _, v := range available {
		byName[strings.ToLower(v.Name)] = v
	}
	var selected []Viewport
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "all" {
			return available, nil
		}
		v, ok := byName[key]
		if !ok {
			known := make([]string, 0, len(byName))
			for k := range byName {
				known = append(known, k)
			}
			sort.Strings(known)
			return nil, fmt.Errorf("unknown viewport profile %q (available: %s)", n, strings.Join(known, ", "))
		}
		if !seen[key] {
			seen[key] = true
			selected = append(selected, v)
		}
	}
	return selected, nil
}
