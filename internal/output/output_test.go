package output

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
)

func sampleReport() *audit.AuditReport {
	issue := audit.Issue{
		Rule:     audit.RuleContrast,
		Impact:   audit.Serious,
		Selector: "main/p",
		Message:  "Contrast 2.32:1 is below 4.5:1 | <script>alert(1)</script>",
		WCAG:     "1.4.3",
	}
	return &audit.AuditReport{
		Overview: audit.Overview{
			Profile:   "desktop",
			RunID:     "01HZX3S6QKJ5T9V5N2M4B8C7D6",
			Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		Summary: audit.Summary{Elements: 2, Issues: 2, Serious: 1, Moderate: 1, ContrastChecks: 2, ContrastPassed: 1},
		Score:   82.5,
		Level:   audit.LevelAAA,
		Status:  audit.StatusWarning,
		Elements: []*audit.ElementResult{
			{Selector: "main/p", Tag: "p", Bounds: [4]int{10, 10, 200, 20}, Score: 70, Issues: []audit.Issue{issue}},
			{Selector: "#checkout/button:pay", Tag: "button", Role: "button", Bounds: [4]int{10, 900, 80, 40}, Score: 100},
		},
		Structural: []audit.Issue{{Rule: audit.RuleStructure, Impact: audit.Moderate, Message: "Heading level skips from 1 to 3"}},
		Recommendations: []audit.Recommendation{
			{Text: "Raise text contrast", Rule: audit.RuleContrast, Impact: audit.Serious, Affected: 1, Selectors: []string{"main/p"}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{" html ", FormatHTML, false},
		{"text", FormatText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, false, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(buf.Bytes(), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", buf.String())
	}
	var decoded audit.AuditReport
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Overview.Profile != "desktop" || len(decoded.Elements) != 2 {
		t.Errorf("unexpected decoded report: %+v", decoded.Overview)
	}
}

func TestWrite_JSONCompactAndPretty(t *testing.T) {
	var compact, pretty bytes.Buffer
	if err := Write(&compact, FormatJSON, false, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if err := Write(&pretty, FormatJSON, true, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if bytes.Count(compact.Bytes(), []byte("\n")) != 1 {
		t.Errorf("compact output should be a single line")
	}
	if !bytes.Contains(pretty.Bytes(), []byte("\n  ")) {
		t.Errorf("pretty output should be indented")
	}
	if !bytes.Contains(compact.Bytes(), []byte("<script>")) {
		t.Errorf("JSON output should not escape HTML")
	}
	var decoded audit.AuditReport
	if err := json.Unmarshal(compact.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Score != 82.5 {
		t.Errorf("score: got %v, want 82.5", decoded.Score)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, Format("xml"), false, 1); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestMarkdown_Report(t *testing.T) {
	md, err := Markdown(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Accessibility audit: desktop",
		"- **Score:** 82.5",
		"- **Status:** warning",
		"## Issues",
		"| serious | contrast | `main/p` |",
		`below 4.5:1 \| &lt;script&gt;`,
		"| `#checkout/button:pay` | button | 100 | 0 |",
		"1. Raise text contrast (serious, 1 affected)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdown_ProfilesSorted(t *testing.T) {
	mobile := sampleReport()
	mobile.Overview.Profile = "mobile"
	md, err := Markdown(map[string]*audit.AuditReport{"mobile": mobile, "desktop": sampleReport()})
	if err != nil {
		t.Fatal(err)
	}
	d := strings.Index(md, "## Accessibility audit: desktop")
	m := strings.Index(md, "## Accessibility audit: mobile")
	if d < 0 || m < 0 || d > m {
		t.Errorf("profiles should be rendered in name order:\n%s", md)
	}
}

func TestMarkdown_Diff(t *testing.T) {
	md, err := Markdown(audit.BaselineDiff{
		New:         []audit.Issue{{Rule: audit.RuleColorOnly, Impact: audit.Serious, Selector: "#card", Message: "Meaning conveyed by color only"}},
		ScoreBefore: 90, ScoreAfter: 80, ScoreDelta: -10,
		LevelBefore: audit.LevelAAA, LevelAfter: audit.LevelAA,
		Regressed:    true,
		ScoreChanges: []audit.ScoreChange{{Selector: "#card", Before: 100, After: 80}},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"(-10.0)", "**regressed**", "## New issues", "| `#card` | 100 | 80 |"} {
		if !strings.Contains(md, want) {
			t.Errorf("diff markdown missing %q:\n%s", want, md)
		}
	}
}

func TestMarkdown_FallbackYAML(t *testing.T) {
	md, err := Markdown(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	if md != "```yaml\na: 1\n```\n" {
		t.Errorf("unexpected fallback: %q", md)
	}
}

func TestWrite_HTMLSanitized(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatHTML, false, sampleReport()); err != nil {
		t.Fatal(err)
	}
	html := buf.String()
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Errorf("expected a full document")
	}
	if !strings.Contains(html, "<table>") {
		t.Errorf("expected GFM tables to render:\n%s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("page text must not inject markup:\n%s", html)
	}
	if !strings.Contains(html, "<h1") {
		t.Errorf("expected a heading")
	}
}

func TestText_Report(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[0] != "profile desktop  score 82.5  level AAA  status warning" {
		t.Errorf("header: %q", lines[0])
	}
	var header, issue string
	for _, l := range lines {
		if strings.HasPrefix(l, "IMPACT") {
			header = l
		}
		if strings.HasPrefix(l, "serious") {
			issue = l
		}
	}
	if header == "" || issue == "" {
		t.Fatalf("missing table rows:\n%s", buf.String())
	}
	if strings.Index(header, "SELECTOR") != strings.Index(issue, "main/p") {
		t.Errorf("columns not aligned:\n%s\n%s", header, issue)
	}
}

func TestCell_TruncatesWide(t *testing.T) {
	if got := cell("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := cell("確認ボタンを押してください", 10)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncation, got %q", got)
	}
	if w := len([]rune(got)); w > 10 {
		t.Errorf("truncated cell too long: %q", got)
	}
}

func TestScoreColor(t *testing.T) {
	red, green := ScoreColor(0), ScoreColor(100)
	if red.R <= red.G {
		t.Errorf("score 0 should be red, got %+v", red)
	}
	if green.G <= green.R {
		t.Errorf("score 100 should be green, got %+v", green)
	}
	if ScoreColor(-5) != red || ScoreColor(150) != green {
		t.Errorf("scores should clamp")
	}
}

func TestRenderOverlay(t *testing.T) {
	vp := model.Viewport{Name: "desktop", Width: 400, Height: 300}
	img := RenderOverlay(sampleReport(), vp)
	b := img.Bounds()
	if b.Dx() != 400 || b.Dy() != 940 {
		t.Fatalf("canvas should grow to fit elements, got %v", b)
	}
	if got := img.RGBAAt(10, 10); got != ScoreColor(70) {
		t.Errorf("box corner: got %+v, want %+v", got, ScoreColor(70))
	}
	if got := img.RGBAAt(5, 5); got.R != 255 || got.G != 255 || got.B != 255 {
		t.Errorf("background should stay white, got %+v", got)
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleReport(), vp); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("not a PNG: %v", err)
	}
}

func TestAuditResult_MarkdownAndText(t *testing.T) {
	res := &AuditResult{
		Report: sampleReport(),
		Baseline: &audit.BaselineDiff{
			Resolved:    []audit.Issue{{Rule: audit.RuleAria, Impact: audit.Critical, Selector: "#card", Message: "No accessible name"}},
			ScoreBefore: 80, ScoreAfter: 82.5, ScoreDelta: 2.5,
			LevelBefore: audit.LevelA, LevelAfter: audit.LevelAAA,
		},
	}
	md, err := Markdown(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "# Accessibility audit: desktop") || !strings.Contains(md, "## Baseline comparison") {
		t.Errorf("expected report and baseline sections:\n%s", md)
	}
	if !strings.Contains(md, "### Resolved issues") {
		t.Errorf("expected nested resolved heading:\n%s", md)
	}

	var buf bytes.Buffer
	if err := Text(&buf, res); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "baseline ok  score 80.0 -> 82.5 (+2.5)  level A -> AAA") {
		t.Errorf("missing baseline line:\n%s", out)
	}
	if !strings.Contains(out, "- critical") {
		t.Errorf("missing resolved row:\n%s", out)
	}
}
