package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/platform/fake"
)

func TestAnalyzeAria_InvalidValues(t *testing.T) {
	doc := fake.New(
		node(1, "button", attrs("aria-expanded", "yes", "aria-pressed", "mixed", "aria-live", "loud"), "Menu"),
		node(2, "div", attrs("aria-level", "0", "aria-valuenow", "3.5", "aria-relevant", "additions text"), ""),
	)
	ac := snapshot(t, doc, Options{})

	btn := AnalyzeAria(ac, at(t, ac, 1))
	require.NotNil(t, btn)
	assert.False(t, btn.Attributes["aria-expanded"].Valid)
	assert.True(t, btn.Attributes["aria-pressed"].Valid)
	assert.False(t, btn.Attributes["aria-live"].Valid)
	assert.Equal(t, []string{
		`Invalid value "yes" for aria-expanded`,
		`Invalid value "loud" for aria-live`,
	}, messages(btn.Issues))

	div := AnalyzeAria(ac, at(t, ac, 2))
	require.NotNil(t, div)
	assert.False(t, div.Attributes["aria-level"].Valid)
	assert.True(t, div.Attributes["aria-valuenow"].Valid)
	assert.True(t, div.Attributes["aria-relevant"].Valid)
}

func TestAnalyzeAria_IDReferences(t *testing.T) {
	doc := fake.New(
		node(1, "span", attrs("id", "hint"), "Eight characters minimum"),
		node(2, "input", attrs("aria-describedby", "hint", "aria-label", "Password"), ""),
		node(3, "input", attrs("aria-labelledby", "missing"), ""),
	)
	ac := snapshot(t, doc, Options{})

	ok := AnalyzeAria(ac, at(t, ac, 2))
	assert.True(t, ok.Attributes["aria-describedby"].Valid)
	assert.Empty(t, ok.Issues)

	bad := AnalyzeAria(ac, at(t, ac, 3))
	assert.False(t, bad.Attributes["aria-labelledby"].Valid)
	assert.Contains(t, messages(bad.Issues), `Invalid value "missing" for aria-labelledby`)
	assert.Contains(t, messages(bad.Issues), "Interactive <input> has no accessible name")
}

func TestAnalyzeAria_RequiredAttributes(t *testing.T) {
	doc := fake.New(
		node(1, "div", attrs("role", "checkbox", "tabindex", "0"), "Subscribe"),
		node(2, "div", attrs("role", "checkbox", "tabindex", "0", "aria-checked", "false"), "Subscribe"),
		node(3, "input", attrs("type", "checkbox", "aria-label", "Native"), ""),
		node(4, "div", attrs("role", "slider", "tabindex", "0", "aria-label", "Volume"), ""),
	)
	ac := snapshot(t, doc, Options{})

	missing := AnalyzeAria(ac, at(t, ac, 1))
	require.Len(t, missing.Issues, 1)
	assert.Equal(t, Serious, missing.Issues[0].Impact)
	assert.Equal(t, "role=checkbox requires aria-checked", missing.Issues[0].Message)
	chk := missing.Attributes["aria-checked"]
	assert.True(t, chk.Required)
	assert.False(t, chk.Present)

	present := AnalyzeAria(ac, at(t, ac, 2))
	assert.Empty(t, present.Issues)
	assert.True(t, present.Attributes["aria-checked"].Required)

	native := AnalyzeAria(ac, at(t, ac, 3))
	assert.Empty(t, native.Issues, "native checkboxes expose their state")

	slider := AnalyzeAria(ac, at(t, ac, 4))
	assert.Equal(t, []string{"role=slider requires aria-valuenow"}, messages(slider.Issues))
}

func TestAnalyzeAria_RoleChecks(t *testing.T) {
	doc := fake.New(
		node(1, "button", attrs("role", "link"), "Go"),
		node(2, "h2", attrs("role", "button", "tabindex", "0", "onkeydown", "x()"), "Toggle"),
		node(3, "div", attrs("role", "bogus"), "Text"),
		node(4, "a", attrs("role", "heading", "aria-level", "2"), "Not a link"),
		node(5, "button", attrs("aria-hidden", "true"), "Hidden"),
	)
	ac := snapshot(t, doc, Options{})

	conflict := AnalyzeAria(ac, at(t, ac, 1))
	assert.True(t, conflict.RoleConflict)
	assert.Contains(t, messages(conflict.Issues), "<button> with role=link contradicts its native semantics")

	heading := AnalyzeAria(ac, at(t, ac, 2))
	assert.True(t, heading.RoleConflict)

	unknown := AnalyzeAria(ac, at(t, ac, 3))
	assert.Equal(t, []string{`Unknown role "bogus"`}, messages(unknown.Issues))

	anchor := AnalyzeAria(ac, at(t, ac, 4))
	assert.False(t, anchor.RoleConflict, "an anchor without href has no link semantics")

	hidden := AnalyzeAria(ac, at(t, ac, 5))
	assert.Equal(t, []string{"Focusable element is hidden from assistive technology"}, messages(hidden.Issues))
}

func TestAnalyzeAria_AccessibleName(t *testing.T) {
	long := strings.Repeat("a", MaxNameLength+1)
	doc := fake.New(
		node(1, "button", attrs("aria-label", "Close", "title", "Close dialog"), "X"),
		node(2, "label", attrs("for", "email"), "Email address"),
		node(3, "input", attrs("id", "email", "type", "email", "placeholder", "you@example.com"), ""),
		node(4, "input", attrs("type", "submit"), ""),
		node(5, "button", nil, long),
		node(6, "button", nil, ""),
		node(7, "label", nil, "Remember me", node(8, "input", attrs("type", "checkbox"), "")),
		node(9, "img", attrs("alt", "Company logo"), ""),
	)
	ac := snapshot(t, doc, Options{})
	name := func(id int) NameResult { return AccessibleName(ac, at(t, ac, id)) }

	n := name(1)
	assert.Equal(t, "Close", n.Name)
	assert.Equal(t, SourceAriaLabel, n.Source)
	assert.Equal(t, []string{SourceAriaLabel, SourceContent, SourceTitle}, n.Sources)

	n = name(3)
	assert.Equal(t, "Email address", n.Name)
	assert.Equal(t, SourceLabel, n.Source)
	assert.Equal(t, []string{SourceLabel, SourcePlaceholder}, n.Sources)

	n = name(4)
	assert.Equal(t, "Submit", n.Name)
	assert.Equal(t, SourceValue, n.Source)

	n = name(5)
	assert.Equal(t, long, n.Name)
	assert.False(t, n.Accessible)
	assert.Equal(t, []string{"Accessible name is longer than 100 characters"},
		messages(AnalyzeAria(ac, at(t, ac, 5)).Issues))

	unnamed := AnalyzeAria(ac, at(t, ac, 6))
	require.Len(t, unnamed.Issues, 1)
	assert.Equal(t, Critical, unnamed.Issues[0].Impact)

	n = name(8)
	assert.Equal(t, "Remember me", n.Name)
	assert.Equal(t, SourceWrappingLabel, n.Source)

	n = name(9)
	assert.Equal(t, SourceAlt, n.Source)
	assert.True(t, n.Clear)
}

func TestAccessibleName_GenericIsNotClear(t *testing.T) {
	doc := fake.New(node(1, "a", attrs("href", "/more"), "Click here"))
	ac := snapshot(t, doc, Options{})

	n := AccessibleName(ac, at(t, ac, 1))
	assert.True(t, n.Accessible)
	assert.False(t, n.Clear)
}

func TestStructuralIssues(t *testing.T) {
	doc := fake.New(
		node(1, "header", nil, "Site"),
		node(2, "main", nil, "", node(3, "h1", nil, "Title"), node(4, "h3", nil, "Skipped")),
		node(5, "div", attrs("role", "main"), ""),
		node(6, "h4", nil, "Fine"),
	)
	ac := snapshot(t, doc, Options{})

	issues := StructuralIssues(ac)
	assert.Equal(t, []string{
		"Heading level skips from 1 to 3",
		"More than one main landmark",
	}, messages(issues))
	assert.Equal(t, Moderate, issues[0].Impact)
	assert.Equal(t, Serious, issues[1].Impact)
}

func TestStructuralIssues_NestedLandmarksNotCounted(t *testing.T) {
	doc := fake.New(
		node(1, "main", nil, "", node(2, "div", attrs("role", "main"), "Inner")),
		node(3, "article", nil, "", node(4, "div", attrs("role", "main"), "Story")),
		node(5, "div", attrs("role", "contentinfo"), "Footer"),
	)
	ac := snapshot(t, doc, Options{})
	assert.Empty(t, StructuralIssues(ac))
}

func TestHeadingLevel(t *testing.T) {
	doc := fake.New(
		node(1, "h5", nil, "Five"),
		node(2, "div", attrs("role", "heading", "aria-level", "3"), "Three"),
		node(3, "div", attrs("role", "heading"), "Default"),
	)
	ac := snapshot(t, doc, Options{})
	assert.Equal(t, 5, HeadingLevel(ac.Elements[at(t, ac, 1)]))
	assert.Equal(t, 3, HeadingLevel(ac.Elements[at(t, ac, 2)]))
	assert.Equal(t, 2, HeadingLevel(ac.Elements[at(t, ac, 3)]))
}
