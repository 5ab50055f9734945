package htmldoc

import (
	"strconv"
	"strings"

	"github.com/mj1618/a11y-audit/internal/color"
)

// splitTokens splits a CSS value on whitespace outside parentheses.
func splitTokens(v string) []string {
	var (
		out   []string
		depth int
		start = -1
	)
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case (c == ' ' || c == '\t' || c == '\n') && depth == 0:
			if start >= 0 {
				out = append(out, v[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, v[start:])
	}
	return out
}

// parseLength converts a CSS length to px. Relative units resolve against
// the parent font size (em, %) and the root font size (rem).
func parseLength(v string, parentPx, rootPx float64) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "0" {
		return 0, true
	}
	units := []struct {
		suffix string
		scale  float64
	}{
		{"px", 1},
		{"rem", rootPx},
		{"em", parentPx},
		{"%", parentPx / 100},
		{"pt", 4.0 / 3.0},
		{"pc", 16},
		{"in", 96},
		{"cm", 96 / 2.54},
		{"mm", 96 / 25.4},
	}
	for _, u := range units {
		if strings.HasSuffix(v, u.suffix) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(v, u.suffix), 64)
			if err != nil {
				return 0, false
			}
			return f * u.scale, true
		}
	}
	return 0, false
}

var fontSizeKeywords = map[string]float64{
	"xx-small":  9,
	"x-small":   10,
	"small":     13,
	"medium":    16,
	"large":     18,
	"x-large":   24,
	"xx-large":  32,
	"xxx-large": 48,
}

// parseFontSize resolves a font-size value against the parent size.
func parseFontSize(v string, parentPx float64) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if px, ok := fontSizeKeywords[v]; ok {
		return px, true
	}
	switch v {
	case "smaller":
		return parentPx / 1.2, true
	case "larger":
		return parentPx * 1.2, true
	case "inherit":
		return parentPx, true
	}
	return parseLength(v, parentPx, rootFontPx)
}

// normalizeWeight converts a font-weight value to its numeric string.
func normalizeWeight(v, parent string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	pw, _ := strconv.Atoi(parent)
	switch v {
	case "normal":
		return "400"
	case "bold":
		return "700"
	case "bolder":
		if pw < 400 {
			return "400"
		}
		if pw < 600 {
			return "700"
		}
		return "900"
	case "lighter":
		if pw < 600 {
			return "100"
		}
		if pw < 800 {
			return "400"
		}
		return "700"
	case "inherit", "":
		return parent
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 1000 {
		return v
	}
	return parent
}

var borderStyles = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true, "auto": true,
}

var borderWidths = map[string]string{
	"thin":   "1px",
	"medium": "3px",
	"thick":  "5px",
}

// isColorToken reports whether a token is a color value.
func isColorToken(t string) bool {
	lt := strings.ToLower(t)
	if lt == "currentcolor" || lt == "invert" {
		return true
	}
	_, err := color.Parse(t)
	return err == nil
}

// expandStroke splits an outline or border shorthand into style, width and
// color longhands, applying initial values for omitted parts.
func expandStroke(prefix, v string, set func(prop, value string)) {
	style, width, col := "none", "3px", "currentcolor"
	for _, t := range splitTokens(v) {
		lt := strings.ToLower(t)
		switch {
		case borderStyles[lt]:
			style = lt
		case borderWidths[lt] != "":
			width = borderWidths[lt]
		case lt == "0":
			width = "0px"
		default:
			if _, ok := parseLength(lt, 16, 16); ok {
				width = lt
			} else {
				col = t
			}
		}
	}
	set(prefix+"-style", style)
	set(prefix+"-width", width)
	set(prefix+"-color", col)
}

// expandBackground splits a background shorthand into color and image.
func expandBackground(v string, set func(prop, value string)) {
	bg, img := "transparent", "none"
	for _, t := range splitTokens(v) {
		lt := strings.ToLower(t)
		switch {
		case strings.HasPrefix(lt, "url(") || strings.Contains(lt, "gradient("):
			img = t
		case isColorToken(t):
			bg = t
		}
	}
	set("background-color", bg)
	set("background-image", img)
}

// expandFont extracts font-weight and font-size from a font shorthand.
func expandFont(v string, set func(prop, value string)) {
	weight := "normal"
	for _, t := range splitTokens(v) {
		lt := strings.ToLower(t)
		if size, _, found := strings.Cut(lt, "/"); found {
			lt = size
		}
		switch {
		case lt == "bold" || lt == "bolder" || lt == "lighter":
			weight = lt
		case len(lt) == 3 && strings.HasSuffix(lt, "00"):
			weight = lt
		case fontSizeKeywords[lt] != 0:
			set("font-size", lt)
		default:
			if _, ok := parseLength(lt, 16, 16); ok {
				set("font-size", lt)
			}
		}
	}
	set("font-weight", weight)
}
