package color

import "math"

// Contrast thresholds for text.
const (
	AANormal  = 4.5
	AALarge   = 3.0
	AAANormal = 7.0
	AAALarge  = 4.5

	// NonText is the minimum ratio for UI components and focus indicators.
	NonText = 3.0
)

// linearize converts an sRGB channel in [0, 1] to linear light.
func linearize(c float64) float64 {
	if c <= 0.03928 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the WCAG relative luminance of c in [0, 1].
// Alpha is ignored; composite first with Over.
func RelativeLuminance(c RGBA) float64 {
	r := linearize(float64(c.R) / 255)
	g := linearize(float64(c.G) / 255)
	b := linearize(float64(c.B) / 255)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio returns (L1+0.05)/(L2+0.05) with L1 the lighter luminance.
// The result is symmetric and lies in [1, 21].
func ContrastRatio(a, b RGBA) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Round2 rounds a ratio to two decimals for display. Pass/fail decisions
// use the unrounded value.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// Suggest returns the foreground closest to fg (in Lab space) that reaches
// target against bg, moving toward black or white, whichever can get there.
// ok is false when even pure black or white falls short.
func Suggest(fg, bg RGBA, target float64) (RGBA, bool) {
	if ContrastRatio(fg, bg) >= target {
		return fg, true
	}
	var best RGBA
	found := false
	bestT := 2.0
	for _, pole := range []RGBA{Black, White} {
		if ContrastRatio(pole, bg) < target {
			continue
		}
		// Binary search for the smallest blend factor that passes.
		lo, hi := 0.0, 1.0
		for i := 0; i < 20; i++ {
			mid := (lo + hi) / 2
			cand := FromColorful(fg.Colorful().BlendLab(pole.Colorful(), mid))
			if ContrastRatio(cand, bg) >= target {
				hi = mid
			} else {
				lo = mid
			}
		}
		cand := FromColorful(fg.Colorful().BlendLab(pole.Colorful(), hi))
		if ContrastRatio(cand, bg) < target {
			cand = pole
			hi = 1
		}
		if hi < bestT {
			best, bestT, found = cand, hi, true
		}
	}
	return best, found
}
