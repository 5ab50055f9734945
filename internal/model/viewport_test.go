package model

import (
	"strings"
	"testing"
)

func TestSelectViewports_DefaultsToFirst(t *testing.T) {
	got, err := SelectViewports(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "desktop" {
		t.Errorf("expected desktop, got %v", got)
	}
}

func TestSelectViewports_ByName(t *testing.T) {
	got, err := SelectViewports(DefaultViewports, []string{"Mobile", "desktop", "mobile"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "mobile" || got[1].Name != "desktop" {
		t.Errorf("unexpected selection: %v", got)
	}
}

func TestSelectViewports_All(t *testing.T) {
	got, err := SelectViewports(DefaultViewports, []string{"all"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(DefaultViewports) {
		t.Errorf("expected all profiles, got %d", len(got))
	}
}

func TestSelectViewports_Unknown(t *testing.T) {
	_, err := SelectViewports(DefaultViewports, []string{"watch"})
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), "desktop, mobile, tablet") {
		t.Errorf("error should list available profiles: %v", err)
	}
}

func TestViewport_Bounds(t *testing.T) {
	v := Viewport{Name: "x", Width: 320, Height: 480}
	if v.Bounds() != [4]int{0, 0, 320, 480} {
		t.Errorf("unexpected bounds %v", v.Bounds())
	}
}
