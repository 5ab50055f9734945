package platform

import "testing"

func TestParseBBox_Valid(t *testing.T) {
	b, err := ParseBBox("10,20,300,400")
	if err != nil {
		t.Fatal(err)
	}
	if b.X != 10 || b.Y != 20 || b.Width != 300 || b.Height != 400 {
		t.Errorf("got %+v, want {10 20 300 400}", b)
	}
	if b.Array() != [4]int{10, 20, 300, 400} {
		t.Errorf("Array() = %v", b.Array())
	}
}

func TestParseBBox_WithSpaces(t *testing.T) {
	b, err := ParseBBox("10, 20, 300, 400")
	if err != nil {
		t.Fatal(err)
	}
	if b.X != 10 || b.Y != 20 || b.Width != 300 || b.Height != 400 {
		t.Errorf("got %+v, want {10 20 300 400}", b)
	}
}

func TestParseBBox_Invalid(t *testing.T) {
	tests := []string{
		"",
		"10,20,300",
		"10,20,300,400,500",
		"a,b,c,d",
		"10,20,abc,400",
	}
	for _, s := range tests {
		_, err := ParseBBox(s)
		if err == nil {
			t.Errorf("ParseBBox(%q) should fail", s)
		}
	}
}

func TestStroke_Visible(t *testing.T) {
	tests := []struct {
		s    Stroke
		want bool
	}{
		{Stroke{}, false},
		{Stroke{Style: "solid", WidthPx: 2}, true},
		{Stroke{Style: "none", WidthPx: 2}, false},
		{Stroke{Style: "solid", WidthPx: 0}, false},
	}
	for _, tt := range tests {
		if got := tt.s.Visible(); got != tt.want {
			t.Errorf("%+v.Visible() = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestResolvedStyle_Flags(t *testing.T) {
	s := ResolvedStyle{Animation: "spin 2s infinite", Transition: "none", BoxShadow: "0 0 0 3px #000", BackgroundImage: "url(x.png)"}
	if !s.HasAnimation() {
		t.Error("expected animation")
	}
	if s.HasTransition() {
		t.Error("transition none should not count")
	}
	if !s.HasBoxShadow() || !s.HasBackgroundImage() {
		t.Error("expected shadow and background image")
	}
	if (ResolvedStyle{Animation: "none"}).HasAnimation() {
		t.Error("animation none should not count")
	}
}
