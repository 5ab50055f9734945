package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/a11y-audit/internal/platform"
	"github.com/mj1618/a11y-audit/internal/platform/fake"
)

func TestAnalyzeMotion(t *testing.T) {
	doc := fake.New(
		node(1, "div", nil, "Still"),
		node(2, "div", nil, "Spinner"),
		node(3, "div", nil, "Paused"),
		node(4, "div", attrs("id", "hero"), "", node(5, "div", nil, "Slide")),
		node(6, "button", attrs("aria-controls", "hero"), "Pause"),
		node(7, "video", attrs("autoplay", ""), ""),
		node(8, "video", attrs("autoplay", "", "controls", ""), ""),
		node(9, "img", attrs("src", "/party.GIF?v=2", "alt", "Party"), ""),
		node(10, "a", attrs("href", "/"), "Hover me"),
	)
	doc.Styles[2] = platform.ResolvedStyle{Animation: "spin 1s infinite"}
	doc.Styles[3] = platform.ResolvedStyle{Animation: "spin 1s infinite", AnimationPlayState: "paused"}
	doc.Styles[4] = platform.ResolvedStyle{Animation: "slide 5s infinite"}
	doc.Styles[10] = platform.ResolvedStyle{Transition: "color 0.2s"}
	doc.Reduced[3] = true
	doc.Reduced[4] = true
	doc.Reduced[8] = true
	doc.Reduced[10] = true
	ac := snapshot(t, doc, Options{})
	motion := func(id int) *MotionResult { return AnalyzeMotion(ac, at(t, ac, id)) }

	assert.Nil(t, motion(1))

	spinner := motion(2)
	require.NotNil(t, spinner)
	assert.Equal(t, []string{MotionAnimation}, spinner.Kinds)
	assert.True(t, spinner.AutoStart)
	assert.False(t, spinner.Accessible)
	assert.Equal(t, []string{
		"Motion is not reduced under prefers-reduced-motion",
		"Motion starts automatically without a pause or stop control",
	}, messages(spinner.Issues))

	paused := motion(3)
	assert.False(t, paused.AutoStart)
	assert.True(t, paused.Accessible)
	assert.Empty(t, paused.Issues)

	hero := motion(4)
	assert.True(t, hero.PauseControl, "button controls the carousel")
	assert.True(t, hero.Accessible)

	autoplay := motion(7)
	assert.Equal(t, []string{MotionMedia}, autoplay.Kinds)
	assert.Len(t, autoplay.Issues, 2)

	controls := motion(8)
	assert.True(t, controls.PauseControl)
	assert.True(t, controls.Accessible)

	gif := motion(9)
	assert.Equal(t, []string{MotionImage}, gif.Kinds)
	assert.True(t, gif.AutoStart)

	hover := motion(10)
	assert.Equal(t, []string{MotionTransition}, hover.Kinds)
	assert.False(t, hover.AutoStart)
	assert.True(t, hover.Accessible)
}

func TestAnalyzeMotion_SiblingPauseButton(t *testing.T) {
	doc := fake.New(
		node(1, "section", nil, "",
			node(2, "marquee", nil, "Breaking news"),
			node(3, "button", nil, "Stop ticker"),
		),
	)
	doc.Reduced[2] = true
	ac := snapshot(t, doc, Options{})

	res := AnalyzeMotion(ac, at(t, ac, 2))
	require.NotNil(t, res)
	assert.True(t, res.AutoStart)
	assert.True(t, res.PauseControl)
	assert.Empty(t, res.Issues)
}

func TestAnalyzeMotion_GermanPauseWords(t *testing.T) {
	doc := fake.New(
		node(1, "div", nil, "", node(2, "video", attrs("autoplay", ""), ""), node(3, "button", nil, "Anhalten")),
	)
	doc.Reduced[2] = true
	ac := snapshot(t, doc, Options{Locale: "de-DE"})

	res := AnalyzeMotion(ac, at(t, ac, 2))
	assert.True(t, res.PauseControl)
	assert.True(t, res.Accessible)
}
