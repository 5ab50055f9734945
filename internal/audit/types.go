package audit

import (
	"time"
)

// Impact classifies how badly a violation affects users.
type Impact string

const (
	Critical Impact = "critical"
	Serious  Impact = "serious"
	Moderate Impact = "moderate"
	Minor    Impact = "minor"
)

// weight orders impacts, most severe first.
func (i Impact) weight() int {
	switch i {
	case Critical:
		return 4
	case Serious:
		return 3
	case Moderate:
		return 2
	case Minor:
		return 1
	}
	return 0
}

// Level is a derived WCAG conformance level.
type Level string

const (
	LevelA   Level = "A"
	LevelAA  Level = "AA"
	LevelAAA Level = "AAA"
)

// Status is the overall verdict of a run.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Issue is one violation found by a check.
type Issue struct {
	Rule           string `yaml:"rule"                     json:"rule"`
	Impact         Impact `yaml:"impact"                   json:"impact"`
	Selector       string `yaml:"selector,omitempty"       json:"selector,omitempty"`
	Message        string `yaml:"message"                  json:"message"`
	WCAG           string `yaml:"wcag,omitempty"           json:"wcag,omitempty"`
	Recommendation string `yaml:"recommendation,omitempty" json:"recommendation,omitempty"`
}

// ContrastResult is the outcome of a text contrast check.
type ContrastResult struct {
	Selector        string   `yaml:"selector"                  json:"selector"`
	Foreground      string   `yaml:"foreground"                json:"foreground"`
	Background      string   `yaml:"background"                json:"background"`
	Ratio           float64  `yaml:"ratio"                     json:"ratio"`
	SizeClass       string   `yaml:"size_class"                json:"size_class"`
	Level           string   `yaml:"level"                     json:"level"`
	Passes          bool     `yaml:"passes"                    json:"passes"`
	Suggested       string   `yaml:"suggested,omitempty"       json:"suggested,omitempty"`
	Issues          []Issue  `yaml:"issues,omitempty"          json:"issues,omitempty"`
	Recommendations []string `yaml:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// FocusIndicatorResult describes what changes visually when an element
// takes focus.
type FocusIndicatorResult struct {
	Selector   string   `yaml:"selector"          json:"selector"`
	Present    bool     `yaml:"present"           json:"present"`
	Visible    bool     `yaml:"visible"           json:"visible"`
	Sufficient bool     `yaml:"sufficient"        json:"sufficient"`
	Methods    []string `yaml:"methods,omitempty" json:"methods,omitempty"`
	Ratio      float64  `yaml:"ratio,omitempty"   json:"ratio,omitempty"`
	Issues     []Issue  `yaml:"issues,omitempty"  json:"issues,omitempty"`
}

// KeyboardResult describes sequential reachability and key support.
type KeyboardResult struct {
	Selector      string   `yaml:"selector"                 json:"selector"`
	TabIndex      int      `yaml:"tab_index"                json:"tab_index"`
	Explicit      bool     `yaml:"explicit,omitempty"       json:"explicit,omitempty"`
	Focusable     bool     `yaml:"focusable"                json:"focusable"`
	ExpectedKeys  []string `yaml:"expected_keys,omitempty"  json:"expected_keys,omitempty"`
	SupportedKeys []string `yaml:"supported_keys,omitempty" json:"supported_keys,omitempty"`
	Issues        []Issue  `yaml:"issues,omitempty"         json:"issues,omitempty"`
}

// AttrCheck is the validation outcome of one aria-* attribute.
type AttrCheck struct {
	Value    string `yaml:"value,omitempty"    json:"value,omitempty"`
	Present  bool   `yaml:"present"            json:"present"`
	Valid    bool   `yaml:"valid"              json:"valid"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// NameResult is the resolved accessible name of an element.
type NameResult struct {
	Name       string   `yaml:"name"              json:"name"`
	Source     string   `yaml:"source,omitempty"  json:"source,omitempty"`
	Sources    []string `yaml:"sources,omitempty" json:"sources,omitempty"`
	Accessible bool     `yaml:"accessible"        json:"accessible"`
	Clear      bool     `yaml:"clear"             json:"clear"`
}

// AriaResult is the semantic validation of one element.
type AriaResult struct {
	Selector     string               `yaml:"selector"                json:"selector"`
	ExplicitRole string               `yaml:"explicit_role,omitempty" json:"explicit_role,omitempty"`
	ImplicitRole string               `yaml:"implicit_role,omitempty" json:"implicit_role,omitempty"`
	RoleConflict bool                 `yaml:"role_conflict,omitempty" json:"role_conflict,omitempty"`
	Attributes   map[string]AttrCheck `yaml:"attributes,omitempty"    json:"attributes,omitempty"`
	Name         NameResult           `yaml:"name"                    json:"name"`
	Issues       []Issue              `yaml:"issues,omitempty"        json:"issues,omitempty"`
}

// MotionResult describes an element's motion and its safety.
type MotionResult struct {
	Selector      string   `yaml:"selector"                 json:"selector"`
	Kinds         []string `yaml:"kinds"                   json:"kinds"`
	AutoStart     bool     `yaml:"auto_start"               json:"auto_start"`
	PauseControl  bool     `yaml:"pause_control"            json:"pause_control"`
	ReducedMotion bool     `yaml:"reduced_motion"           json:"reduced_motion"`
	Accessible    bool     `yaml:"accessible"               json:"accessible"`
	Issues        []Issue  `yaml:"issues,omitempty"         json:"issues,omitempty"`
}

// TargetSizeResult describes an interactive target's size and spacing.
type TargetSizeResult struct {
	Selector string  `yaml:"selector"           json:"selector"`
	Width    int     `yaml:"width"              json:"width"`
	Height   int     `yaml:"height"             json:"height"`
	Gap      int     `yaml:"gap"                json:"gap"`
	Nearest  string  `yaml:"nearest,omitempty"  json:"nearest,omitempty"`
	Passes   bool    `yaml:"passes"             json:"passes"`
	Issues   []Issue `yaml:"issues,omitempty"   json:"issues,omitempty"`
}

// AnnouncementResult is the simulated screen reader output for an element.
type AnnouncementResult struct {
	Selector     string   `yaml:"selector"          json:"selector"`
	Announcement string   `yaml:"announcement"      json:"announcement"`
	Clarity      string   `yaml:"clarity"           json:"clarity"`
	Context      []string `yaml:"context,omitempty" json:"context,omitempty"`
	Issues       []Issue  `yaml:"issues,omitempty"  json:"issues,omitempty"`
}

// ColorCueResult describes an element whose styling suggests meaning.
type ColorCueResult struct {
	Selector      string   `yaml:"selector"        json:"selector"`
	Keywords      []string `yaml:"keywords"        json:"keywords"`
	Cues          []string `yaml:"cues,omitempty"  json:"cues,omitempty"`
	UsesColorOnly bool     `yaml:"uses_color_only" json:"uses_color_only"`
	Issues        []Issue  `yaml:"issues,omitempty" json:"issues,omitempty"`
}

// LiveRegionResult describes an announcement region.
type LiveRegionResult struct {
	Selector   string  `yaml:"selector"           json:"selector"`
	Role       string  `yaml:"role,omitempty"     json:"role,omitempty"`
	Politeness string  `yaml:"politeness"         json:"politeness"`
	Atomic     bool    `yaml:"atomic,omitempty"   json:"atomic,omitempty"`
	Empty      bool    `yaml:"empty,omitempty"    json:"empty,omitempty"`
	Candidate  bool    `yaml:"candidate,omitempty" json:"candidate,omitempty"`
	Issues     []Issue `yaml:"issues,omitempty"   json:"issues,omitempty"`
}

// ScopeResult is the structural check of one focus-management scenario.
type ScopeResult struct {
	Selector     string  `yaml:"selector"               json:"selector"`
	Kind         string  `yaml:"kind"                   json:"kind"`
	Frontmost    bool    `yaml:"frontmost,omitempty"    json:"frontmost,omitempty"`
	InitialFocus string  `yaml:"initial_focus,omitempty" json:"initial_focus,omitempty"`
	Trap         bool    `yaml:"trap"                   json:"trap"`
	ReturnFocus  string  `yaml:"return_focus,omitempty" json:"return_focus,omitempty"`
	Issues       []Issue `yaml:"issues,omitempty"       json:"issues,omitempty"`
}

// ElementResult bundles every check for one element. Elements are keyed
// by selector; one element appears at most once per report.
type ElementResult struct {
	Selector string  `yaml:"selector"         json:"selector"`
	Tag      string  `yaml:"tag"              json:"tag"`
	Role     string  `yaml:"role,omitempty"   json:"role,omitempty"`
	Bounds   [4]int  `yaml:"bounds"           json:"bounds"`
	Score    int     `yaml:"score"            json:"score"`
	Issues   []Issue `yaml:"issues,omitempty" json:"issues,omitempty"`

	Contrast     *ContrastResult       `yaml:"-" json:"-"`
	Focus        *FocusIndicatorResult `yaml:"-" json:"-"`
	Keyboard     *KeyboardResult       `yaml:"-" json:"-"`
	Aria         *AriaResult           `yaml:"-" json:"-"`
	Motion       *MotionResult         `yaml:"-" json:"-"`
	TargetSize   *TargetSizeResult     `yaml:"-" json:"-"`
	Announcement *AnnouncementResult   `yaml:"-" json:"-"`
	ColorCue     *ColorCueResult       `yaml:"-" json:"-"`
}

// Checks holds the full per-check result arrays in document order.
type Checks struct {
	Contrast      []*ContrastResult       `yaml:"contrast,omitempty"      json:"contrast,omitempty"`
	Focus         []*FocusIndicatorResult `yaml:"focus,omitempty"         json:"focus,omitempty"`
	Keyboard      []*KeyboardResult       `yaml:"keyboard,omitempty"      json:"keyboard,omitempty"`
	Aria          []*AriaResult           `yaml:"aria,omitempty"          json:"aria,omitempty"`
	Motion        []*MotionResult         `yaml:"motion,omitempty"        json:"motion,omitempty"`
	TargetSize    []*TargetSizeResult     `yaml:"target_size,omitempty"   json:"target_size,omitempty"`
	Announcements []*AnnouncementResult   `yaml:"announcements,omitempty" json:"announcements,omitempty"`
	ColorCues     []*ColorCueResult       `yaml:"color_cues,omitempty"    json:"color_cues,omitempty"`
	LiveRegions   []*LiveRegionResult     `yaml:"live_regions,omitempty"  json:"live_regions,omitempty"`
	FocusScopes   []*ScopeResult          `yaml:"focus_scopes,omitempty"  json:"focus_scopes,omitempty"`
	// TabOrder lists the selectors of the tab stops in visiting order.
	TabOrder []string `yaml:"tab_order,omitempty" json:"tab_order,omitempty"`
}

// Recommendation is a deduplicated remediation ranked by reach.
type Recommendation struct {
	Text      string   `yaml:"text"      json:"text"`
	Rule      string   `yaml:"rule"      json:"rule"`
	Impact    Impact   `yaml:"impact"    json:"impact"`
	Affected  int      `yaml:"affected"  json:"affected"`
	Selectors []string `yaml:"selectors" json:"selectors"`
}

// Overview is the report header.
type Overview struct {
	Context   string    `yaml:"context,omitempty" json:"context,omitempty"`
	Profile   string    `yaml:"profile,omitempty" json:"profile,omitempty"`
	RunID     string    `yaml:"run_id"            json:"run_id"`
	Timestamp time.Time `yaml:"timestamp"         json:"timestamp"`
	Score     float64   `yaml:"score"             json:"score"`
	Level     Level     `yaml:"level"             json:"level"`
	Status    Status    `yaml:"status"            json:"status"`
}

// Summary counts the outcome of a run.
type Summary struct {
	Elements       int `yaml:"elements"        json:"elements"`
	ContrastChecks int `yaml:"contrast_checks" json:"contrast_checks"`
	ContrastPassed int `yaml:"contrast_passed" json:"contrast_passed"`
	Abstentions    int `yaml:"abstentions"     json:"abstentions"`
	Issues         int `yaml:"issues"          json:"issues"`
	Critical       int `yaml:"critical"        json:"critical"`
	Serious        int `yaml:"serious"         json:"serious"`
	Moderate       int `yaml:"moderate"        json:"moderate"`
	Minor          int `yaml:"minor"           json:"minor"`
}

// AuditReport is the aggregate of one run. It is not modified after Run
// returns it.
type AuditReport struct {
	Overview        Overview         `yaml:"overview"                  json:"overview"`
	Summary         Summary          `yaml:"summary"                   json:"summary"`
	Score           float64          `yaml:"score"                     json:"score"`
	Level           Level            `yaml:"level"                     json:"level"`
	Status          Status           `yaml:"status"                    json:"status"`
	Elements        []*ElementResult `yaml:"elements"                  json:"elements"`
	Checks          Checks           `yaml:"checks"                    json:"checks"`
	Structural      []Issue          `yaml:"structural,omitempty"      json:"structural,omitempty"`
	Recommendations []Recommendation `yaml:"recommendations,omitempty" json:"recommendations,omitempty"`
}

// AllIssues returns element issues followed by structural ones.
func (r *AuditReport) AllIssues() []Issue {
	var out []Issue
	for _, el := range r.Elements {
		out = append(out, el.Issues...)
	}
	return append(out, r.Structural...)
}

// Element returns the result for a selector, or nil.
func (r *AuditReport) Element(selector string) *ElementResult {
	for _, el := range r.Elements {
		if el.Selector == selector {
			return el
		}
	}
	return nil
}
