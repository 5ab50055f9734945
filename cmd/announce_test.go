package cmd

import (
	"testing"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
)

func TestSelectAnnouncements(t *testing.T) {
	all := []*audit.AnnouncementResult{
		{Selector: "#pay", Announcement: "Pay now, button"},
		{Selector: "main/p", Announcement: "Pay attention to the total"},
	}
	if got := selectAnnouncements(all, nil); len(got) != 2 {
		t.Errorf("nil keep should keep everything, got %d", len(got))
	}
	got := selectAnnouncements(all, map[string]bool{"#pay": true})
	if len(got) != 1 || got[0].Selector != "#pay" {
		t.Errorf("unexpected selection: %v", got)
	}
	if got := selectAnnouncements(all, map[string]bool{}); len(got) != 0 {
		t.Errorf("empty keep should keep nothing, got %d", len(got))
	}
}

func TestCollectRefSet_InteractiveRoles(t *testing.T) {
	tree := buildCheckoutTree()
	set := map[string]bool{}
	collectRefSet(model.FilterElements(tree, []string{"button"}, nil), set)
	if len(set) != 1 || !set["#pay"] {
		t.Errorf("expected only #pay, got %v", set)
	}
}
