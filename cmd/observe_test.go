package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
	"github.com/mj1618/a11y-audit/internal/platform/fake"
	"github.com/mj1618/a11y-audit/internal/platform/htmldoc"
)

func TestParseScript(t *testing.T) {
	s, err := parseScript([]byte(`
steps:
  - action: set_text
    target: "#status"
    text: Saved
  - action: wait
    wait: 10ms
  - action: set_attr
    target: "#toast"
    name: role
    value: alert
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(s.Steps))
	}
	if s.Steps[1].Wait.Milliseconds() != 10 {
		t.Errorf("expected 10ms wait, got %v", s.Steps[1].Wait)
	}
}

func TestParseScript_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown action": "steps:\n  - action: click\n    target: '#a'\n",
		"missing target": "steps:\n  - action: set_text\n    text: hi\n",
		"missing name":   "steps:\n  - action: set_attr\n    target: '#a'\n",
		"zero wait":      "steps:\n  - action: wait\n",
		"malformed yaml": "steps: [",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseScript([]byte(data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func statusDoc() *fake.Doc {
	return fake.New(
		model.Element{
			ID: 1, Tag: "main", Bounds: [4]int{0, 0, 800, 600},
			Children: []model.Element{
				{ID: 2, Tag: "div", Text: "Saving", Bounds: [4]int{0, 0, 200, 40},
					Attrs: map[string]string{"id": "status", "role": "status"}},
				{ID: 3, Tag: "div", Text: "", Bounds: [4]int{0, 50, 200, 40},
					Attrs: map[string]string{"id": "toast"}},
			},
		},
	)
}

func TestObserve_LogsAnnouncements(t *testing.T) {
	ctx := context.Background()
	doc := statusDoc()
	script := &Script{Steps: []Step{
		{Action: stepSetText, Target: "#status", Text: "Saved"},
		{Action: stepSetText, Target: "#toast", Text: "ignored"},
	}}

	res, err := observe(ctx, audit.New(audit.Options{}), doc.Provider(), script, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Regions) != 1 || res.Regions[0].Politeness != "polite" {
		t.Fatalf("expected one polite region, got %+v", res.Regions)
	}
	if res.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", res.Steps)
	}
	if len(res.Announcements) != 1 {
		t.Fatalf("expected 1 announcement, got %+v", res.Announcements)
	}
	if res.Announcements[0].Text != "Saved" {
		t.Errorf("unexpected announcement text %q", res.Announcements[0].Text)
	}
}

func TestObserve_UnknownTarget(t *testing.T) {
	script := &Script{Steps: []Step{{Action: stepSetText, Target: "#missing", Text: "x"}}}
	_, err := observe(context.Background(), audit.New(audit.Options{}), statusDoc().Provider(), script, 0)
	if err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Errorf("expected a step error, got %v", err)
	}
}

func TestObserve_NoMutator(t *testing.T) {
	p := statusDoc().Provider()
	p.Mutator = nil
	_, err := observe(context.Background(), audit.New(audit.Options{}), p, &Script{}, 0)
	if err == nil {
		t.Fatal("expected an error without a mutator")
	}
}

func TestObserve_StepsAfterStructuralEdit(t *testing.T) {
	doc, err := htmldoc.ParseString(`<body>
<div id="card"><span>a</span><span>b</span></div>
<div id="status" role="status">Idle</div>
</body>`, htmldoc.Options{})
	if err != nil {
		t.Fatal(err)
	}
	script := &Script{Steps: []Step{
		{Action: stepSetText, Target: "#card", Text: "Empty"},
		{Action: stepSetText, Target: "#status", Text: "Saved"},
	}}

	res, err := observe(context.Background(), audit.New(audit.Options{}), doc.Provider(), script, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Announcements) != 1 {
		t.Fatalf("expected 1 announcement, got %+v", res.Announcements)
	}
	if res.Announcements[0].Text != "Saved" || res.Announcements[0].Selector != "#status" {
		t.Errorf("unexpected announcement %+v", res.Announcements[0])
	}
}
