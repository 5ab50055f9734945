package output

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-audit/internal/audit"
)

// Markdown renders v as a Markdown document. Audit reports, profile maps
// and baseline diffs get a dedicated layout; anything else is emitted as a
// fenced YAML block.
func Markdown(v interface{}) (string, error) {
	var b strings.Builder
	switch r := v.(type) {
	case *audit.AuditReport:
		writeReportMarkdown(&b, r, "#")
	case map[string]*audit.AuditReport:
		b.WriteString("# Accessibility audit\n\n")
		for _, name := range sortedProfiles(r) {
			writeReportMarkdown(&b, r[name], "##")
		}
	case AuditResult:
		writeResultMarkdown(&b, &r)
	case *AuditResult:
		writeResultMarkdown(&b, r)
	case audit.BaselineDiff:
		writeDiffMarkdown(&b, &r, "#")
	case *audit.BaselineDiff:
		writeDiffMarkdown(&b, r, "#")
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("yaml encode: %w", err)
		}
		b.WriteString("```yaml\n")
		b.Write(data)
		b.WriteString("```\n")
	}
	return b.String(), nil
}

// AuditResult pairs a report with its comparison against a saved baseline.
type AuditResult struct {
	Report   *audit.AuditReport  `yaml:"report"   json:"report"`
	Baseline *audit.BaselineDiff `yaml:"baseline" json:"baseline"`
}

func writeResultMarkdown(b *strings.Builder, r *AuditResult) {
	if r.Report != nil {
		writeReportMarkdown(b, r.Report, "#")
	}
	if r.Baseline != nil {
		writeDiffMarkdown(b, r.Baseline, "##")
	}
}

func sortedProfiles(m map[string]*audit.AuditReport) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func writeReportMarkdown(b *strings.Builder, r *audit.AuditReport, h string) {
	title := "Accessibility audit"
	if r.Overview.Profile != "" {
		title += ": " + r.Overview.Profile
	}
	fmt.Fprintf(b, "%s %s\n\n", h, title)
	if r.Overview.Context != "" {
		fmt.Fprintf(b, "_%s_\n\n", escapeInline(r.Overview.Context))
	}
	fmt.Fprintf(b, "- **Score:** %.1f\n", r.Score)
	fmt.Fprintf(b, "- **Level:** %s\n", r.Level)
	fmt.Fprintf(b, "- **Status:** %s\n", r.Status)
	fmt.Fprintf(b, "- **Run:** `%s` at %s\n", r.Overview.RunID, r.Overview.Timestamp.UTC().Format("2006-01-02 15:04:05Z"))
	s := r.Summary
	fmt.Fprintf(b, "- **Issues:** %d (%d critical, %d serious, %d moderate, %d minor)\n",
		s.Issues, s.Critical, s.Serious, s.Moderate, s.Minor)
	fmt.Fprintf(b, "- **Contrast:** %d of %d checks passed\n\n", s.ContrastPassed, s.ContrastChecks)

	issues := r.AllIssues()
	if len(issues) > 0 {
		fmt.Fprintf(b, "%s# Issues\n\n", h)
		writeIssueTable(b, issues)
	}

	if len(r.Elements) > 0 {
		fmt.Fprintf(b, "%s# Elements\n\n", h)
		b.WriteString("| Selector | Role | Score | Issues |\n|---|---|---:|---:|\n")
		for _, el := range r.Elements {
			role := el.Role
			if role == "" {
				role = el.Tag
			}
			fmt.Fprintf(b, "| %s | %s | %d | %d |\n", codeCell(el.Selector), escapeCell(role), el.Score, len(el.Issues))
		}
		b.WriteString("\n")
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintf(b, "%s# Recommendations\n\n", h)
		for i, rec := range r.Recommendations {
			fmt.Fprintf(b, "%d. %s (%s, %d affected)\n", i+1, escapeInline(rec.Text), rec.Impact, rec.Affected)
		}
		b.WriteString("\n")
	}
}

func writeIssueTable(b *strings.Builder, issues []audit.Issue) {
	b.WriteString("| Impact | Rule | Selector | Message | WCAG |\n|---|---|---|---|---|\n")
	for _, is := range issues {
		sel := ""
		if is.Selector != "" {
			sel = codeCell(is.Selector)
		}
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n", is.Impact, is.Rule, sel, escapeCell(is.Message), is.WCAG)
	}
	b.WriteString("\n")
}

func writeDiffMarkdown(b *strings.Builder, d *audit.BaselineDiff, h string) {
	fmt.Fprintf(b, "%s Baseline comparison\n\n", h)
	verdict := "no regression"
	if d.Regressed {
		verdict = "**regressed**"
	}
	fmt.Fprintf(b, "- **Score:** %.1f → %.1f (%+.1f)\n", d.ScoreBefore, d.ScoreAfter, d.ScoreDelta)
	fmt.Fprintf(b, "- **Level:** %s → %s\n", d.LevelBefore, d.LevelAfter)
	fmt.Fprintf(b, "- **Verdict:** %s\n", verdict)
	fmt.Fprintf(b, "- **Unchanged issues:** %d\n\n", d.UnchangedCount)
	if len(d.New) > 0 {
		fmt.Fprintf(b, "%s# New issues\n\n", h)
		writeIssueTable(b, d.New)
	}
	if len(d.Resolved) > 0 {
		fmt.Fprintf(b, "%s# Resolved issues\n\n", h)
		writeIssueTable(b, d.Resolved)
	}
	if len(d.ScoreChanges) > 0 {
		fmt.Fprintf(b, "%s# Score changes\n\n", h)
		b.WriteString("| Selector | Before | After |\n|---|---:|---:|\n")
		for _, c := range d.ScoreChanges {
			fmt.Fprintf(b, "| %s | %d | %d |\n", codeCell(c.Selector), c.Before, c.After)
		}
		b.WriteString("\n")
	}
}

var inlineEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "'", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

// escapeInline neutralizes Markdown syntax in page-derived text.
func escapeInline(s string) string {
	return inlineEscaper.Replace(strings.Join(strings.Fields(s), " "))
}

func escapeCell(s string) string {
	return strings.ReplaceAll(escapeInline(s), "|", `\|`)
}

// codeCell wraps a selector in a code span usable inside a table row.
func codeCell(s string) string {
	s = strings.NewReplacer("`", "'", "|", `\|`).Replace(s)
	return "`" + s + "`"
}
