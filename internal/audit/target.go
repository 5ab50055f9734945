package audit

import (
	"fmt"
	"math"
)

// Target size minimums in CSS pixels.
const (
	MinTargetSize    = 44
	MinTargetSpacing = 8
)

// EdgeGap is the minimum of the four edge-to-edge distances between two
// rectangles: left to right, right to left, top to bottom, bottom to top.
func EdgeGap(a, b [4]int) int {
	ax2, ay2 := a[0]+a[2], a[1]+a[3]
	bx2, by2 := b[0]+b[2], b[1]+b[3]
	d := []int{abs(a[0] - bx2), abs(ax2 - b[0]), abs(a[1] - by2), abs(ay2 - b[1])}
	m := d[0]
	for _, v := range d[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// AnalyzeTargetSize checks the size of interactive element i and its gap
// to the nearest other target in peers. Unmeasured elements abstain.
//
// The neighbour scan is quadratic over the interactive set.
func AnalyzeTargetSize(ac *Context, i int, peers []int) *TargetSizeResult {
	el := ac.Elements[i]
	if el.Unmeasured {
		return nil
	}
	res := &TargetSizeResult{
		Selector: ac.Selector(i),
		Width:    el.Bounds[2],
		Height:   el.Bounds[3],
		Gap:      -1,
	}
	issue := func(impact Impact, msg, rec string) {
		res.Issues = append(res.Issues, Issue{
			Rule: RuleTargetSize, Impact: impact, Selector: res.Selector,
			Message: msg, WCAG: "2.5.5", Recommendation: rec,
		})
	}
	const sizeRec = "Make interactive targets at least 44x44 CSS pixels"
	if res.Width < MinTargetSize {
		issue(Moderate, fmt.Sprintf("Target width %dpx is below %dpx", res.Width, MinTargetSize), sizeRec)
	}
	if res.Height < MinTargetSize {
		issue(Moderate, fmt.Sprintf("Target height %dpx is below %dpx", res.Height, MinTargetSize), sizeRec)
	}

	best, nearest := math.MaxInt, -1
	for _, j := range peers {
		if j == i || ac.Elements[j].Unmeasured || nested(ac, i, j) {
			continue
		}
		if g := EdgeGap(el.Bounds, ac.Elements[j].Bounds); g < best {
			best, nearest = g, j
		}
	}
	if nearest >= 0 {
		res.Gap = best
		res.Nearest = ac.Selector(nearest)
		if best < MinTargetSpacing {
			issue(Minor, fmt.Sprintf("Only %dpx from %s, needs %dpx", best, res.Nearest, MinTargetSpacing),
				"Leave at least 8px between adjacent targets")
		}
	}
	res.Passes = len(res.Issues) == 0
	return res
}

// nested reports whether one element contains the other.
func nested(ac *Context, a, b int) bool {
	return b > a && b < ac.Elements[a].End || a > b && a < ac.Elements[b].End
}
