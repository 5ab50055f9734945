package audit

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// ScoreChange is an element whose score moved between two reports.
type ScoreChange struct {
	Selector string `yaml:"selector" json:"selector"`
	Before   int    `yaml:"before"   json:"before"`
	After    int    `yaml:"after"    json:"after"`
}

// BaselineDiff compares a report against an earlier baseline.
type BaselineDiff struct {
	New            []Issue       `yaml:"new,omitempty"           json:"new,omitempty"`
	Resolved       []Issue       `yaml:"resolved,omitempty"      json:"resolved,omitempty"`
	UnchangedCount int           `yaml:"unchanged_count"         json:"unchanged_count"`
	ScoreChanges   []ScoreChange `yaml:"score_changes,omitempty" json:"score_changes,omitempty"`
	ScoreBefore    float64       `yaml:"score_before"            json:"score_before"`
	ScoreAfter     float64       `yaml:"score_after"             json:"score_after"`
	ScoreDelta     float64       `yaml:"score_delta"             json:"score_delta"`
	LevelBefore    Level         `yaml:"level_before"            json:"level_before"`
	LevelAfter     Level         `yaml:"level_after"             json:"level_after"`
	Regressed      bool          `yaml:"regressed"               json:"regressed"`
}

var digits = regexp.MustCompile(`[0-9]+(\.[0-9]+)?`)

// IssueHash computes a stable identity for an issue from its rule,
// selector and message. Numbers in the message are masked so a contrast
// ratio that moves but still fails keeps its identity.
func IssueHash(is Issue) string {
	msg := digits.ReplaceAllString(is.Message, "#")
	return fmt.Sprintf("%016x", xxhash.Sum64String(is.Rule+"|"+is.Selector+"|"+msg))
}

// DiffReports lists issues that appeared or disappeared since prev, and
// element score changes. Issues are matched by IssueHash, counting
// duplicates.
func DiffReports(prev, curr *AuditReport) BaselineDiff {
	diff := BaselineDiff{
		ScoreBefore: prev.Score,
		ScoreAfter:  curr.Score,
		ScoreDelta:  roundTenth(curr.Score - prev.Score),
		LevelBefore: prev.Level,
		LevelAfter:  curr.Level,
	}

	prevCount := map[string]int{}
	for _, is := range prev.AllIssues() {
		prevCount[IssueHash(is)]++
	}
	currCount := map[string]int{}
	for _, is := range curr.AllIssues() {
		h := IssueHash(is)
		currCount[h]++
		if currCount[h] > prevCount[h] {
			diff.New = append(diff.New, is)
		} else {
			diff.UnchangedCount++
		}
	}
	seen := map[string]int{}
	for _, is := range prev.AllIssues() {
		h := IssueHash(is)
		seen[h]++
		if seen[h] > currCount[h] {
			diff.Resolved = append(diff.Resolved, is)
		}
	}

	before := map[string]int{}
	for _, el := range prev.Elements {
		before[el.Selector] = el.Score
	}
	for _, el := range curr.Elements {
		if b, ok := before[el.Selector]; ok && b != el.Score {
			diff.ScoreChanges = append(diff.ScoreChanges, ScoreChange{Selector: el.Selector, Before: b, After: el.Score})
		}
	}

	diff.Regressed = len(diff.New) > 0 || diff.ScoreDelta < 0
	return diff
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}

// SaveBaseline writes a report as JSON for later comparison.
func SaveBaseline(path string, r *AuditReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create baseline dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadBaseline reads a report saved with SaveBaseline. Only serialized
// fields survive: element issues and scores, checks and summary.
func LoadBaseline(path string) (*AuditReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	var r AuditReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal baseline: %w", err)
	}
	return &r, nil
}
