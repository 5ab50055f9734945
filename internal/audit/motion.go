package audit

import (
	"strings"

	"github.com/mj1618/a11y-audit/internal/model"
)

// Motion kinds.
const (
	MotionAnimation  = "animation"
	MotionTransition = "transition"
	MotionMedia      = "media"
	MotionImage      = "animated-image"
)

// AnalyzeMotion checks an element that moves: it is accessible when a
// reduced-motion rule covers it and it either does not start on its own
// or exposes a pause control. Still elements yield no result.
func AnalyzeMotion(ac *Context, i int) *MotionResult {
	el := ac.Elements[i]
	e := el.Element()
	res := &MotionResult{Selector: ac.Selector(i)}

	st, styled := ac.Style(i)
	if styled {
		if st.HasAnimation() {
			res.Kinds = append(res.Kinds, MotionAnimation)
			if !strings.EqualFold(strings.TrimSpace(st.AnimationPlayState), "paused") {
				res.AutoStart = true
			}
		}
		if st.HasTransition() {
			res.Kinds = append(res.Kinds, MotionTransition)
		}
	}
	switch {
	case model.MediaTags[el.Tag] || el.EffectiveRole() == "marquee":
		res.Kinds = append(res.Kinds, MotionMedia)
		if el.Tag == "marquee" || el.EffectiveRole() == "marquee" || e.HasAttr("autoplay") {
			res.AutoStart = true
		}
		if e.HasAttr("controls") {
			res.PauseControl = true
		}
	case animatedImage(el):
		res.Kinds = append(res.Kinds, MotionImage)
		res.AutoStart = true
	}
	if len(res.Kinds) == 0 {
		return nil
	}

	if !res.PauseControl {
		res.PauseControl = ac.hasPauseControl(i)
	}
	res.ReducedMotion = ac.provider.Styles.ReducedMotion(ac.ctx, el.ID)
	res.Accessible = res.ReducedMotion && (!res.AutoStart || res.PauseControl)

	if !res.ReducedMotion {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleMotion, Impact: Moderate, Selector: res.Selector, WCAG: "2.3.3",
			Message:        "Motion is not reduced under prefers-reduced-motion",
			Recommendation: "Disable or shorten animations inside @media (prefers-reduced-motion: reduce)",
		})
	}
	if res.AutoStart && !res.PauseControl {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleMotion, Impact: Serious, Selector: res.Selector, WCAG: "2.2.2",
			Message:        "Motion starts automatically without a pause or stop control",
			Recommendation: "Provide a visible control to pause, stop or hide moving content",
		})
	}
	return res
}

// hasPauseControl looks for an interactive element labelled with a pause
// word that controls i or sits next to it.
func (ac *Context) hasPauseControl(i int) bool {
	id := ac.Elements[i].Attrs["id"]
	parent := ac.Elements[i].Parent
	for j := range ac.Elements {
		if j == i || !ac.Interactive(j) {
			continue
		}
		name := AccessibleName(ac, j).Name
		if _, ok := matchAny(name, ac.vocab.PauseWords); !ok {
			continue
		}
		if id != "" && oneOf(id, strings.Fields(ac.Elements[j].Attrs["aria-controls"])) {
			return true
		}
		// Inside the moving element or a sibling subtree of it.
		if j > i && j < ac.Elements[i].End {
			return true
		}
		if parent >= 0 && j > parent && j < ac.Elements[parent].End {
			return true
		}
	}
	return false
}
