package model

import (
	"encoding/json"
	"testing"
)

func TestElement_JSONKeys(t *testing.T) {
	el := Element{
		ID:     1,
		Tag:    "button",
		Text:   "OK",
		Bounds: [4]int{10, 20, 100, 30},
	}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	// Must have compact keys
	for _, key := range []string{"i", "tag", "t", "b"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in JSON output", key)
		}
	}
	// Must NOT have verbose keys
	for _, key := range []string{"id", "text", "bounds"} {
		if _, ok := m[key]; ok {
			t.Errorf("unexpected verbose key %q in JSON output", key)
		}
	}
}

func TestElement_OmitEmpty(t *testing.T) {
	el := Element{ID: 1, Tag: "div", Bounds: [4]int{0, 0, 100, 30}}
	data, err := json.Marshal(el)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"r", "t", "tc", "a", "um", "f", "c", "ref"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty %q should be omitted", key)
		}
	}
}

func TestElement_Disabled(t *testing.T) {
	tests := []struct {
		attrs map[string]string
		want  bool
	}{
		{nil, false},
		{map[string]string{"disabled": ""}, true},
		{map[string]string{"aria-disabled": "TRUE"}, true},
		{map[string]string{"aria-disabled": "false"}, false},
	}
	for _, tt := range tests {
		el := Element{Tag: "button", Attrs: tt.attrs}
		if got := el.Disabled(); got != tt.want {
			t.Errorf("Disabled(%v) = %v, want %v", tt.attrs, got, tt.want)
		}
	}
}

func TestElement_TextContent(t *testing.T) {
	el := Element{
		Tag:  "p",
		Text: "Hello",
		Children: []Element{
			{Tag: "b", Text: "big"},
			{Tag: "span", Children: []Element{{Tag: "i", Text: "world"}}},
		},
	}
	if got := el.TextContent(); got != "Hello big world" {
		t.Errorf("TextContent = %q", got)
	}

	el.Content = "Hello big world!"
	if got := el.TextContent(); got != "Hello big world!" {
		t.Errorf("host content should win, got %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  a \n\t b  "); got != "a b" {
		t.Errorf("CollapseSpace = %q", got)
	}
}

func TestElement_RoundTrip(t *testing.T) {
	original := Element{
		ID:      1,
		Tag:     "input",
		Attrs:   map[string]string{"type": "search", "aria-label": "Search"},
		Bounds:  [4]int{100, 200, 300, 40},
		Focused: true,
		Children: []Element{
			{ID: 2, Tag: "span", Text: "Placeholder", Bounds: [4]int{105, 205, 290, 30}},
		},
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	var decoded Element
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Tag != original.Tag || decoded.Attrs["aria-label"] != "Search" {
		t.Errorf("decoded mismatch: %+v", decoded)
	}
	if decoded.Bounds != original.Bounds {
		t.Errorf("Bounds: got %v, want %v", decoded.Bounds, original.Bounds)
	}
	if len(decoded.Children) != 1 {
		t.Errorf("Children: got %d, want 1", len(decoded.Children))
	}
}
