package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mj1618/a11y-audit/internal/audit"
)

// Column widths of the text issue table, in terminal cells.
const (
	impactWidth   = 8
	ruleWidth     = 12
	selectorWidth = 28
	messageWidth  = 60
)

// Text writes a terminal summary of a report: header lines followed by an
// aligned issue table. Non-report values are written as YAML.
func Text(w io.Writer, v interface{}) error {
	switch r := v.(type) {
	case *audit.AuditReport:
		return writeReportText(w, r)
	case map[string]*audit.AuditReport:
		for i, name := range sortedProfiles(r) {
			if i > 0 {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if err := writeReportText(w, r[name]); err != nil {
				return err
			}
		}
		return nil
	case *AuditResult:
		if r.Report != nil {
			if err := writeReportText(w, r.Report); err != nil {
				return err
			}
		}
		if r.Baseline != nil {
			return writeDiffText(w, r.Baseline)
		}
		return nil
	}
	return writeYAML(w, v)
}

func writeReportText(w io.Writer, r *audit.AuditReport) error {
	var b strings.Builder
	profile := r.Overview.Profile
	if profile == "" {
		profile = "-"
	}
	fmt.Fprintf(&b, "profile %s  score %.1f  level %s  status %s\n", profile, r.Score, r.Level, r.Status)
	s := r.Summary
	fmt.Fprintf(&b, "%d elements, %d issues (%d critical, %d serious, %d moderate, %d minor)\n",
		s.Elements, s.Issues, s.Critical, s.Serious, s.Moderate, s.Minor)

	issues := r.AllIssues()
	if len(issues) > 0 {
		b.WriteString("\n")
		b.WriteString(row("IMPACT", "RULE", "SELECTOR", "MESSAGE"))
		for _, is := range issues {
			b.WriteString(row(string(is.Impact), is.Rule, is.Selector, is.Message))
		}
	}
	if len(r.Recommendations) > 0 {
		b.WriteString("\nrecommendations:\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&b, "%2d. %s (%d)\n", i+1, cell(rec.Text, messageWidth+selectorWidth), rec.Affected)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func row(impact, rule, selector, message string) string {
	return runewidth.FillRight(cell(impact, impactWidth), impactWidth) + " " +
		runewidth.FillRight(cell(rule, ruleWidth), ruleWidth) + " " +
		runewidth.FillRight(cell(selector, selectorWidth), selectorWidth) + " " +
		cell(message, messageWidth) + "\n"
}

// cell collapses whitespace and truncates s to width terminal cells.
func cell(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func writeDiffText(w io.Writer, d *audit.BaselineDiff) error {
	var b strings.Builder
	verdict := "ok"
	if d.Regressed {
		verdict = "REGRESSED"
	}
	fmt.Fprintf(&b, "\nbaseline %s  score %.1f -> %.1f (%+.1f)  level %s -> %s\n",
		verdict, d.ScoreBefore, d.ScoreAfter, d.ScoreDelta, d.LevelBefore, d.LevelAfter)
	fmt.Fprintf(&b, "%d new, %d resolved, %d unchanged\n", len(d.New), len(d.Resolved), d.UnchangedCount)
	for _, is := range d.New {
		b.WriteString("+ " + row(string(is.Impact), is.Rule, is.Selector, is.Message))
	}
	for _, is := range d.Resolved {
		b.WriteString("- " + row(string(is.Impact), is.Rule, is.Selector, is.Message))
	}
	_, err := io.WriteString(w, b.String())
	return err
}
