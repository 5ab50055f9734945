package audit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/a11y-audit/internal/color"
)

// Text size classes.
const (
	SizeNormal = "normal"
	SizeLarge  = "large"
)

// Conformance grades of a contrast check.
const (
	GradeAAA  = "AAA"
	GradeAA   = "AA"
	GradeFail = "fail"
)

const defaultFontPx = 16

// IsBold reports whether a CSS font-weight renders bold.
func IsBold(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	if w == "bold" || w == "bolder" {
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 700
}

// ClassifySize returns SizeLarge for text of at least 24px, or at least
// 18.67px when bold.
func ClassifySize(px float64, weight string) string {
	if px >= 24 || px >= 18.67 && IsBold(weight) {
		return SizeLarge
	}
	return SizeNormal
}

// Thresholds returns the AA and AAA minimum ratios for a size class.
func Thresholds(size string) (aa, aaa float64) {
	if size == SizeLarge {
		return color.AALarge, color.AAALarge
	}
	return color.AANormal, color.AAANormal
}

// CheckPair grades a text color against an opaque background. Translucent
// inputs are composited first.
func CheckPair(fg, bg color.RGBA, size string) ContrastResult {
	bg = bg.Over(color.White)
	fg = fg.Over(bg)
	ratio := color.ContrastRatio(fg, bg)
	aa, aaa := Thresholds(size)

	res := ContrastResult{
		Foreground: fg.Hex(),
		Background: bg.Hex(),
		Ratio:      color.Round2(ratio),
		SizeClass:  size,
		Passes:     ratio >= aa,
	}
	switch {
	case ratio >= aaa:
		res.Level = GradeAAA
	case ratio >= aa:
		res.Level = GradeAA
	default:
		res.Level = GradeFail
	}
	if res.Passes {
		return res
	}

	advice := contrastAdvice(aa, ratio)
	res.Issues = append(res.Issues, Issue{
		Rule:           RuleContrast,
		Impact:         Serious,
		Message:        fmt.Sprintf("Contrast %.2f:1 is below %.1f:1 for %s text (%s on %s)", res.Ratio, aa, size, res.Foreground, res.Background),
		WCAG:           "1.4.3",
		Recommendation: advice,
	})
	res.Recommendations = append(res.Recommendations, advice)
	if s, ok := color.Suggest(fg, bg, aa); ok {
		res.Suggested = s.Hex()
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("Use %s on %s (%.2f:1)", s.Hex(), res.Background, color.Round2(color.ContrastRatio(s, bg))))
	}
	return res
}

// CheckColors parses two CSS colors and grades them as text of px pixels
// at the given font weight. A px of 0 means 16px.
func CheckColors(fg, bg string, px float64, weight string) (ContrastResult, error) {
	f, err := color.Parse(fg)
	if err != nil {
		return ContrastResult{}, fmt.Errorf("foreground: %w", err)
	}
	b, err := color.Parse(bg)
	if err != nil {
		return ContrastResult{}, fmt.Errorf("background: %w", err)
	}
	if px <= 0 {
		px = defaultFontPx
	}
	return CheckPair(f, b, ClassifySize(px, weight)), nil
}

// contrastAdvice grades the remediation by how far the ratio falls short.
func contrastAdvice(threshold, ratio float64) string {
	factor := threshold / ratio
	switch {
	case factor <= 1.2:
		return fmt.Sprintf("Slightly darken or lighten the text color to reach %.1f:1", threshold)
	case factor <= 2:
		return fmt.Sprintf("Significantly change the text or background color to reach %.1f:1", threshold)
	default:
		return fmt.Sprintf("Replace the text and background colors; the pair is far below %.1f:1", threshold)
	}
}

// AnalyzeContrast checks the text contrast of element i. It abstains
// (returns nil) for elements without own text, disabled controls, and
// when either color cannot be determined.
func AnalyzeContrast(ac *Context, i int) *ContrastResult {
	el := ac.Elements[i]
	if strings.TrimSpace(el.Text) == "" || el.Element().Disabled() {
		return nil
	}
	fg, bg, ok := ac.Colors(i)
	if !ok {
		ac.log.Debug().Str("selector", ac.Selector(i)).Msg("contrast abstained: colors unknown")
		return nil
	}
	st, _ := ac.Style(i)
	px := st.FontSizePx
	if px <= 0 {
		px = defaultFontPx
	}
	res := CheckPair(fg, bg, ClassifySize(px, st.FontWeight))
	res.Selector = ac.Selector(i)
	for k := range res.Issues {
		res.Issues[k].Selector = res.Selector
	}
	return &res
}
