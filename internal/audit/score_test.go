package audit

import (
	"fmt"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"

	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform"
	"github.com/mj1618/a11y-audit/internal/platform/fake"
)

func TestScoreElement(t *testing.T) {
	tests := []struct {
		name string
		r    ElementResult
		want int
	}{
		{"no checks", ElementResult{}, 100},
		{"contrast pass", ElementResult{Contrast: &ContrastResult{Passes: true}}, 100},
		{"contrast fail", ElementResult{Contrast: &ContrastResult{}}, 70},
		{"no focus", ElementResult{Focus: &FocusIndicatorResult{}}, 75},
		{"weak focus", ElementResult{Focus: &FocusIndicatorResult{Present: true, Visible: true}}, 85},
		{"color only", ElementResult{ColorCue: &ColorCueResult{UsesColorOnly: true}}, 80},
		{"unsafe motion", ElementResult{Motion: &MotionResult{}}, 85},
		{"small target", ElementResult{TargetSize: &TargetSizeResult{}}, 90},
		{"everything", ElementResult{
			Contrast:   &ContrastResult{},
			Focus:      &FocusIndicatorResult{},
			ColorCue:   &ColorCueResult{UsesColorOnly: true},
			Motion:     &MotionResult{},
			TargetSize: &TargetSizeResult{},
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreElement(&tt.r))
		})
	}
}

func TestOverallScore(t *testing.T) {
	assert.Equal(t, 100.0, OverallScore(0, 0, nil))
	assert.Equal(t, 75.0, OverallScore(2, 1, []int{100}))
	assert.Equal(t, 58.3, OverallScore(3, 1, []int{100, 90, 60}))
	assert.Equal(t, 50.0, OverallScore(0, 0, []int{0}))
}

func TestDeriveLevel(t *testing.T) {
	assert.Equal(t, LevelAAA, DeriveLevel(Summary{}))
	assert.Equal(t, LevelAAA, DeriveLevel(Summary{Issues: 5, Serious: 2}))
	assert.Equal(t, LevelAA, DeriveLevel(Summary{Issues: 6, Moderate: 6}))
	assert.Equal(t, LevelA, DeriveLevel(Summary{Issues: 3, Serious: 3}))
	assert.Equal(t, LevelA, DeriveLevel(Summary{Issues: 1, Critical: 1}))
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusPass, DeriveStatus(95, Summary{}))
	assert.Equal(t, StatusWarning, DeriveStatus(95, Summary{Serious: 1}))
	assert.Equal(t, StatusWarning, DeriveStatus(70, Summary{}))
	assert.Equal(t, StatusFail, DeriveStatus(69.9, Summary{}))
	assert.Equal(t, StatusFail, DeriveStatus(100, Summary{Critical: 1}))
}

func TestRankRecommendations(t *testing.T) {
	issues := []Issue{
		{Selector: "a", Impact: Minor, Recommendation: "Fix spacing"},
		{Selector: "b", Impact: Minor, Recommendation: "Fix spacing"},
		{Selector: "b", Impact: Minor, Recommendation: "Fix spacing"},
		{Selector: "c", Impact: Critical, Recommendation: "Add a name"},
		{Selector: "d", Impact: Serious, Recommendation: "Raise contrast"},
		{Selector: "e", Impact: Moderate, Recommendation: "Raise contrast"},
		{Selector: "", Message: "One main", Impact: Serious, Recommendation: "Keep one main"},
		{Selector: "f", Impact: Serious},
	}

	recs := RankRecommendations(issues, 0)
	var texts []string
	for _, r := range recs {
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{"Raise contrast", "Fix spacing", "Add a name", "Keep one main"}, texts)
	assert.Equal(t, 2, recs[1].Affected)
	assert.Equal(t, []string{"a", "b"}, recs[1].Selectors)
	assert.Equal(t, Serious, recs[0].Impact)
	assert.Empty(t, recs[3].Selectors)

	assert.Len(t, RankRecommendations(issues, 2), 2)
}

// violatingDoc builds n paragraphs of which the first k fail contrast and
// rely on color alone.
func violatingDoc(n, k int) *fake.Doc {
	var els []model.Element
	for i := 1; i <= n; i++ {
		el := node(i, "p", nil, fmt.Sprintf("Paragraph %d", i))
		if i <= k {
			el.Attrs = attrs("class", "text-danger")
		}
		els = append(els, el)
	}
	doc := fake.New(els...)
	for i := 1; i <= k; i++ {
		doc.Styles[i] = platform.ResolvedStyle{Color: "#eeeeee"}
	}
	return doc
}

func TestOverallScore_MonotonicInViolations(t *testing.T) {
	property := func(size, bad uint8) bool {
		n := int(size%6) + 1
		k := int(bad) % n
		before := run(t, violatingDoc(n, k), Options{}).Score
		after := run(t, violatingDoc(n, k+1), Options{}).Score
		return after <= before
	}
	assert.NoError(t, quick.Check(property, &quick.Config{MaxCount: 40}))
}

func TestRun_ScoresViolatingDocument(t *testing.T) {
	r := run(t, violatingDoc(6, 3), Options{})

	assert.Equal(t, 6, r.Summary.ContrastChecks)
	assert.Equal(t, 3, r.Summary.ContrastPassed)
	assert.Equal(t, 3, r.Summary.Serious)
	// 50*0.5 + 0.5*mean(50,50,50,100,100,100)
	assert.Equal(t, 62.5, r.Score)
	assert.Equal(t, LevelA, r.Level)
	assert.Equal(t, StatusFail, r.Status)
}
