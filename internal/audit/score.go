package audit

import (
	"math"
	"sort"
)

// Element score deductions.
const (
	PenaltyContrast        = 30
	PenaltyFocusMissing    = 25
	PenaltyFocusWeak       = 15
	PenaltyColorOnly       = 20
	PenaltyUnsafeMotion    = 15
	PenaltyTargetSize      = 10
	maxScore               = 100
	defaultRecommendations = 10
)

// ScoreElement computes the 0-100 score of one element from its check
// results. Checks that abstained cost nothing.
func ScoreElement(r *ElementResult) int {
	score := maxScore
	if r.Contrast != nil && !r.Contrast.Passes {
		score -= PenaltyContrast
	}
	if f := r.Focus; f != nil {
		switch {
		case f.Sufficient:
		case !f.Visible:
			score -= PenaltyFocusMissing
		default:
			score -= PenaltyFocusWeak
		}
	}
	if r.ColorCue != nil && r.ColorCue.UsesColorOnly {
		score -= PenaltyColorOnly
	}
	if r.Motion != nil && !r.Motion.Accessible {
		score -= PenaltyUnsafeMotion
	}
	if r.TargetSize != nil && !r.TargetSize.Passes {
		score -= PenaltyTargetSize
	}
	if score < 0 {
		score = 0
	}
	return score
}

// OverallScore weighs the fraction of passing contrast checks and the mean
// element score equally. With no contrast checks the fraction is 1; with
// no elements the mean is 100. The result is rounded to one decimal.
func OverallScore(contrastChecks, contrastPassed int, elementScores []int) float64 {
	fraction := 1.0
	if contrastChecks > 0 {
		fraction = float64(contrastPassed) / float64(contrastChecks)
	}
	mean := float64(maxScore)
	if len(elementScores) > 0 {
		sum := 0
		for _, s := range elementScores {
			sum += s
		}
		mean = float64(sum) / float64(len(elementScores))
	}
	return math.Round((50*fraction+0.5*mean)*10) / 10
}

// DeriveLevel maps issue counts to a conformance level: any critical or
// more than two serious issues is A, more than five issues in total is
// AA, otherwise AAA.
func DeriveLevel(s Summary) Level {
	switch {
	case s.Critical > 0, s.Serious > 2:
		return LevelA
	case s.Issues > 5:
		return LevelAA
	}
	return LevelAAA
}

// DeriveStatus maps the outcome to pass, warning or fail.
func DeriveStatus(score float64, s Summary) Status {
	switch {
	case s.Critical > 0:
		return StatusFail
	case score >= 90 && s.Serious == 0:
		return StatusPass
	case score >= 70:
		return StatusWarning
	}
	return StatusFail
}

// countIssues fills the issue counters of s.
func countIssues(s *Summary, issues []Issue) {
	for _, is := range issues {
		s.Issues++
		switch is.Impact {
		case Critical:
			s.Critical++
		case Serious:
			s.Serious++
		case Moderate:
			s.Moderate++
		case Minor:
			s.Minor++
		}
	}
}

// RankRecommendations deduplicates issue recommendations and orders them
// by the number of distinct elements affected, then impact, then text.
func RankRecommendations(issues []Issue, limit int) []Recommendation {
	if limit <= 0 {
		limit = defaultRecommendations
	}
	byText := map[string]*Recommendation{}
	seen := map[string]map[string]bool{}
	var order []string
	for _, is := range issues {
		if is.Recommendation == "" {
			continue
		}
		rec, ok := byText[is.Recommendation]
		if !ok {
			rec = &Recommendation{Text: is.Recommendation, Rule: is.Rule, Impact: is.Impact}
			byText[is.Recommendation] = rec
			seen[is.Recommendation] = map[string]bool{}
			order = append(order, is.Recommendation)
		}
		if is.Impact.weight() > rec.Impact.weight() {
			rec.Impact = is.Impact
		}
		key := is.Selector
		if key == "" {
			key = is.Message
		}
		if !seen[is.Recommendation][key] {
			seen[is.Recommendation][key] = true
			rec.Affected++
			if is.Selector != "" {
				rec.Selectors = append(rec.Selectors, is.Selector)
			}
		}
	}
	out := make([]Recommendation, 0, len(order))
	for _, t := range order {
		out = append(out, *byText[t])
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Affected != out[b].Affected {
			return out[a].Affected > out[b].Affected
		}
		if wa, wb := out[a].Impact.weight(), out[b].Impact.weight(); wa != wb {
			return wa > wb
		}
		return out[a].Text < out[b].Text
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
