package audit

import (
	"sort"
	"time"

	"github.com/mj1618/a11y-audit/internal/model"
)

// Rule families. Each can be switched off independently.
const (
	RuleContrast     = "contrast"
	RuleFocus        = "focus"
	RuleKeyboard     = "keyboard"
	RuleAria         = "aria"
	RuleMotion       = "motion"
	RuleTargetSize   = "target-size"
	RuleAnnouncement = "announcement"
	RuleColorOnly    = "color-only"
	RuleLiveRegions  = "live-regions"
	RuleStructure    = "structure"
)

// RuleInfo describes a rule family for listings.
type RuleInfo struct {
	Name        string `yaml:"name"        json:"name"`
	WCAG        string `yaml:"wcag"        json:"wcag"`
	Description string `yaml:"description" json:"description"`
	Enabled     bool   `yaml:"enabled"     json:"enabled"`
}

var ruleCatalog = []RuleInfo{
	{Name: RuleContrast, WCAG: "1.4.3, 1.4.6", Description: "Text contrast against the effective background"},
	{Name: RuleFocus, WCAG: "2.4.7, 1.4.11", Description: "Visible and sufficient focus indicators, focus scopes"},
	{Name: RuleKeyboard, WCAG: "2.1.1, 2.4.3", Description: "Keyboard reachability, key handlers and tab order"},
	{Name: RuleAria, WCAG: "4.1.2", Description: "ARIA attribute values, required states, role conflicts, accessible names"},
	{Name: RuleMotion, WCAG: "2.2.2, 2.3.3", Description: "Animation and media with reduced-motion support and pause controls"},
	{Name: RuleTargetSize, WCAG: "2.5.5", Description: "Interactive targets of at least 44x44 with 8px spacing"},
	{Name: RuleAnnouncement, WCAG: "2.4.4, 1.1.1", Description: "Simulated screen reader announcements and label clarity"},
	{Name: RuleColorOnly, WCAG: "1.4.1", Description: "State or meaning conveyed by color alone"},
	{Name: RuleLiveRegions, WCAG: "4.1.3", Description: "Status messages exposed through live regions"},
	{Name: RuleStructure, WCAG: "1.3.1", Description: "Landmark multiplicity and heading hierarchy"},
}

// RuleList lists every rule family with its state under o.
func (o Options) RuleList() []RuleInfo {
	out := make([]RuleInfo, len(ruleCatalog))
	for i, r := range ruleCatalog {
		r.Enabled = o.Enabled(r.Name)
		out[i] = r
	}
	return out
}

// KnownRule reports whether name is a rule family.
func KnownRule(name string) bool {
	for _, r := range ruleCatalog {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RuleNames returns the rule family names, sorted.
func RuleNames() []string {
	names := make([]string, len(ruleCatalog))
	for i, r := range ruleCatalog {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}

// Options configures a run.
type Options struct {
	// Rules switches families off by name; missing entries are enabled.
	Rules map[string]bool
	// Locale selects the generic phrase tables.
	Locale string
	// Scope restricts the audit to the subtree at this selector.
	Scope string
	// Context is a free-form label carried into the report overview.
	Context  string
	Viewport model.Viewport
	// MaxRecommendations caps the ranked list; 0 means 10.
	MaxRecommendations int
	// LiveBuffer bounds the live region monitor log; 0 means 256.
	LiveBuffer int
	Patterns   *Patterns
	// Now stamps the report; defaults to time.Now.
	Now func() time.Time
}

// Enabled reports whether a rule family runs.
func (o Options) Enabled(rule string) bool {
	on, ok := o.Rules[rule]
	return !ok || on
}

func (o Options) withDefaults() Options {
	if o.MaxRecommendations <= 0 {
		o.MaxRecommendations = 10
	}
	if o.LiveBuffer <= 0 {
		o.LiveBuffer = 256
	}
	if o.Patterns == nil {
		o.Patterns = DefaultPatterns()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Viewport.Width == 0 {
		o.Viewport = model.DefaultViewports[0]
	}
	return o
}
