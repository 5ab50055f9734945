package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform/fake"
)

func TestTabIndex(t *testing.T) {
	tests := []struct {
		name      string
		el        model.Element
		idx       int
		explicit  bool
		reachable bool
	}{
		{"button", node(1, "button", nil, "OK"), 0, false, true},
		{"disabled button", node(1, "button", attrs("disabled", ""), "OK"), -1, false, false},
		{"link", node(1, "a", attrs("href", "/"), "Home"), 0, false, true},
		{"anchor without href", node(1, "a", nil, "Home"), -1, false, false},
		{"div", node(1, "div", nil, ""), -1, false, false},
		{"div tabindex 0", node(1, "div", attrs("tabindex", "0"), ""), 0, true, true},
		{"div tabindex 3", node(1, "div", attrs("tabindex", "3"), ""), 3, true, true},
		{"button tabindex -1", node(1, "button", attrs("tabindex", "-1"), "OK"), -1, true, false},
		{"garbage tabindex", node(1, "button", attrs("tabindex", "x"), "OK"), 0, false, true},
		{"hidden input", node(1, "input", attrs("type", "hidden"), ""), -1, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, explicit, reachable := TabIndex(tt.el)
			assert.Equal(t, tt.idx, idx)
			assert.Equal(t, tt.explicit, explicit)
			assert.Equal(t, tt.reachable, reachable)
		})
	}
}

func TestValidateTabOrder_PositiveIndexAlwaysFlagged(t *testing.T) {
	for n := 1; n <= 5; n++ {
		doc := fake.New(node(1, "button", nil, "First"), node(2, "div", attrs("tabindex", fmt.Sprint(n)), "Jump"))
		ac := snapshot(t, doc, Options{})

		issues := ValidateTabOrder(ac)
		require.Len(t, issues, 1, "tabindex=%d", n)
		assert.Equal(t, RuleKeyboard, issues[0].Rule)
		assert.Equal(t, ac.Selector(at(t, ac, 2)), issues[0].Selector)
	}
}

func TestValidateTabOrder_DisabledPositiveIndexFlagged(t *testing.T) {
	doc := fake.New(node(1, "button", attrs("tabindex", "3", "disabled", ""), "Later"))
	ac := snapshot(t, doc, Options{})

	issues := ValidateTabOrder(ac)
	require.Len(t, issues, 1)
	assert.Equal(t, "Positive tabindex=3 overrides document order", issues[0].Message)
	assert.Empty(t, TabSequence(ac), "a disabled element is not a tab stop")
}

func TestValidateTabOrder_DecreaseAfterPositive(t *testing.T) {
	doc := fake.New(
		node(1, "div", attrs("tabindex", "2"), "A"),
		node(2, "div", attrs("tabindex", "1"), "B"),
		node(3, "button", nil, "C"),
	)
	ac := snapshot(t, doc, Options{})

	got := messages(ValidateTabOrder(ac))
	assert.Equal(t, []string{
		"Positive tabindex=2 overrides document order",
		"Positive tabindex=1 overrides document order",
		"Tab order jumps back from tabindex=2 to 1",
		"Tab order jumps back from tabindex=1 to 0",
	}, got)
}

func TestValidateTabOrder_NaturalOrderIsClean(t *testing.T) {
	doc := fake.New(node(1, "button", nil, "A"), node(2, "a", attrs("href", "/"), "B"), node(3, "div", attrs("tabindex", "0"), "C"))
	ac := snapshot(t, doc, Options{})
	assert.Empty(t, ValidateTabOrder(ac))
}

func TestTabSequence(t *testing.T) {
	doc := fake.New(
		node(1, "button", nil, "zero"),
		node(2, "div", attrs("tabindex", "2"), "two"),
		node(3, "div", attrs("tabindex", "1"), "one"),
		node(4, "button", attrs("tabindex", "-1"), "skipped"),
	)
	ac := snapshot(t, doc, Options{})

	var ids []int
	for _, i := range TabSequence(ac) {
		ids = append(ids, ac.Elements[i].ID)
	}
	assert.Equal(t, []int{3, 2, 1}, ids)
}

func TestAnalyzeKeyboard(t *testing.T) {
	doc := fake.New(
		node(1, "button", nil, "Native"),
		node(2, "div", attrs("role", "button", "tabindex", "0"), "No handler"),
		node(3, "div", attrs("role", "button", "tabindex", "0", "onkeydown", "handle(event)"), "Handled"),
		node(4, "div", attrs("role", "button", "tabindex", "0", "data-keys", "Enter"), "Half"),
		node(5, "div", attrs("onclick", "go()"), "Clickable div"),
		node(6, "div", attrs("role", "listbox", "tabindex", "0", "data-keys", "arrows Home End Enter Space"), "",
			node(7, "div", attrs("role", "option", "tabindex", "-1", "aria-selected", "false"), "Choice")),
		node(8, "span", attrs("role", "link"), "Unreachable"),
		node(9, "p", nil, "Plain text"),
	)
	ac := snapshot(t, doc, Options{})
	kb := func(id int) *KeyboardResult { return AnalyzeKeyboard(ac, at(t, ac, id)) }

	native := kb(1)
	require.NotNil(t, native)
	assert.True(t, native.Focusable)
	assert.Equal(t, []string{"Enter", "Space"}, native.SupportedKeys)
	assert.Empty(t, native.Issues)

	none := kb(2)
	require.Len(t, none.Issues, 1)
	assert.Equal(t, Serious, none.Issues[0].Impact)
	assert.Contains(t, none.Issues[0].Message, "no keyboard handler")

	assert.Empty(t, kb(3).Issues)
	assert.Equal(t, []string{"Enter", "Space"}, kb(3).SupportedKeys)

	half := kb(4)
	require.Len(t, half.Issues, 1)
	assert.Equal(t, Moderate, half.Issues[0].Impact)
	assert.Equal(t, "role=button does not handle Space", half.Issues[0].Message)

	click := kb(5)
	require.Len(t, click.Issues, 1)
	assert.Contains(t, click.Issues[0].Message, "Click handler on non-interactive <div>")

	listbox := kb(6)
	assert.Empty(t, listbox.Issues)
	option := kb(7)
	assert.Empty(t, option.Issues, "option focus is managed by its listbox")

	link := kb(8)
	assert.Contains(t, messages(link.Issues), `Element with role "link" is not reachable with Tab`)

	assert.Nil(t, kb(9))
}
