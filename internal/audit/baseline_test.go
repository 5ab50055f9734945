package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/platform"
)

func TestIssueHash_MasksNumbers(t *testing.T) {
	a := Issue{Rule: RuleContrast, Selector: "main/p", Message: "Contrast 2.32:1 is below 4.5:1"}
	b := Issue{Rule: RuleContrast, Selector: "main/p", Message: "Contrast 3.9:1 is below 4.5:1"}
	c := Issue{Rule: RuleContrast, Selector: "main/h1", Message: a.Message}

	assert.Equal(t, IssueHash(a), IssueHash(b))
	assert.NotEqual(t, IssueHash(a), IssueHash(c))
	assert.Len(t, IssueHash(a), 16)
}

func TestDiffReports(t *testing.T) {
	before := run(t, checkoutDoc(), Options{Now: fixedNow})

	doc := checkoutDoc()
	doc.Styles[9] = platform.ResolvedStyle{Color: "#333333"}
	doc.Elements[1].Children[1].Children[2].Attrs = attrs("class", "text-danger")
	after := run(t, doc, Options{Now: fixedNow})

	diff := DiffReports(before, after)
	assert.Equal(t, []string{"Meaning (danger) appears to rely on color alone"}, messages(diff.New))
	require.Len(t, diff.Resolved, 1)
	assert.Equal(t, RuleContrast, diff.Resolved[0].Rule)
	assert.True(t, diff.Regressed)
	assert.Equal(t, len(before.AllIssues())-1, diff.UnchangedCount)
	assert.Equal(t, []ScoreChange{
		{Selector: "#checkout/button:pay", Before: 100, After: 80},
		{Selector: "main/p", Before: 70, After: 100},
	}, diff.ScoreChanges)

	same := DiffReports(before, before)
	assert.Empty(t, same.New)
	assert.Empty(t, same.Resolved)
	assert.False(t, same.Regressed)
	assert.Equal(t, 0.0, same.ScoreDelta)
}

func TestDiffReports_Duplicates(t *testing.T) {
	is := Issue{Rule: RuleAria, Selector: "div", Message: "Unknown role \"x\""}
	prev := &AuditReport{Structural: []Issue{is}}
	curr := &AuditReport{Structural: []Issue{is, is}}

	diff := DiffReports(prev, curr)
	assert.Len(t, diff.New, 1)
	assert.Equal(t, 1, diff.UnchangedCount)
	assert.Empty(t, DiffReports(curr, prev).New)
	assert.Len(t, DiffReports(curr, prev).Resolved, 1)
}

func TestSaveLoadBaseline(t *testing.T) {
	r := run(t, checkoutDoc(), Options{Now: fixedNow})
	path := filepath.Join(t.TempDir(), "reports", "baseline.json")

	require.NoError(t, SaveBaseline(path, r))
	loaded, err := LoadBaseline(path)
	require.NoError(t, err)

	assert.Equal(t, r.Score, loaded.Score)
	assert.Equal(t, r.Overview.RunID, loaded.Overview.RunID)
	assert.Empty(t, DiffReports(loaded, r).New)
	assert.Empty(t, DiffReports(loaded, r).Resolved)

	_, err = LoadBaseline(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
