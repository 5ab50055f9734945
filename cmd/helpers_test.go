package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
)

// buildCheckoutTree creates a small rendered tree:
//
//	main (id=1)
//	├── button#pay (id=2, "Pay now")
//	├── p (id=3, "Pay attention to the total")
//	└── p (id=4, "Pay later")
func buildCheckoutTree() []model.Element {
	tree := []model.Element{
		{
			ID: 1, Tag: "main",
			Children: []model.Element{
				{ID: 2, Tag: "button", Text: "Pay now", Attrs: map[string]string{"id": "pay"}},
				{ID: 3, Tag: "p", Text: "Pay attention to the total"},
				{ID: 4, Tag: "p", Text: "Pay later"},
			},
		},
	}
	model.GenerateRefs(tree)
	return tree
}

func TestResolveTarget_Ref(t *testing.T) {
	id, err := resolveTarget(buildCheckoutTree(), "#pay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("expected id 2, got %d", id)
	}
}

func TestResolveTarget_BareID(t *testing.T) {
	id, err := resolveTarget(buildCheckoutTree(), "pay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 2 {
		t.Errorf("expected id 2, got %d", id)
	}
}

func TestResolveTarget_UniqueText(t *testing.T) {
	id, err := resolveTarget(buildCheckoutTree(), "later")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 4 {
		t.Errorf("expected id 4, got %d", id)
	}
}

func TestResolveTarget_Ambiguous(t *testing.T) {
	_, err := resolveTarget(buildCheckoutTree(), "Pay")
	if err == nil {
		t.Fatal("expected an ambiguity error")
	}
	if !strings.Contains(err.Error(), "matches 3 elements") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestResolveTarget_NoMatch(t *testing.T) {
	if _, err := resolveTarget(buildCheckoutTree(), "refund"); err == nil {
		t.Fatal("expected an error for a missing target")
	}
}

func newAuditFlagsCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addAuditFlags(c)
	return c
}

func TestAuditOptions_Disable(t *testing.T) {
	c := newAuditFlagsCommand()
	if err := c.Flags().Set("disable", "motion,contrast"); err != nil {
		t.Fatal(err)
	}
	opts, profiles, err := auditOptions(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Enabled(audit.RuleMotion) || opts.Enabled(audit.RuleContrast) {
		t.Error("disabled rules should be off")
	}
	if !opts.Enabled(audit.RuleFocus) {
		t.Error("focus should stay on")
	}
	if len(profiles) != 1 {
		t.Errorf("expected the default single profile, got %d", len(profiles))
	}
	// The shared config must not be modified.
	if !loadedConfig().Rules[audit.RuleMotion] {
		t.Error("config rules were modified")
	}
}

func TestAuditOptions_UnknownRule(t *testing.T) {
	c := newAuditFlagsCommand()
	if err := c.Flags().Set("disable", "sparkle"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := auditOptions(c); err == nil || !strings.Contains(err.Error(), "unknown rule") {
		t.Errorf("expected unknown rule error, got %v", err)
	}
}

func TestAuditOptions_AllProfiles(t *testing.T) {
	c := newAuditFlagsCommand()
	if err := c.Flags().Set("profiles", "all"); err != nil {
		t.Fatal(err)
	}
	_, profiles, err := auditOptions(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profiles) != 3 {
		t.Errorf("expected 3 profiles, got %d", len(profiles))
	}
}

func TestAuditOptions_IgnoresUndefinedFlags(t *testing.T) {
	c := &cobra.Command{Use: "bare"}
	if _, _, err := auditOptions(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
