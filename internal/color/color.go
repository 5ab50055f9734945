// Package color parses CSS color values and computes WCAG relative
// luminance and contrast ratios.
package color

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ErrInvalid is returned for color strings that cannot be parsed.
var ErrInvalid = errors.New("invalid color")

// RGBA is an 8-bit sRGB color with a fractional alpha in [0, 1].
type RGBA struct {
	R, G, B uint8
	A       float64
}

var (
	White       = RGBA{255, 255, 255, 1}
	Black       = RGBA{0, 0, 0, 1}
	Transparent = RGBA{0, 0, 0, 0}
)

// Parse accepts named colors, #rgb, #rgba, #rrggbb, #rrggbbaa, rgb(), rgba(),
// hsl(), hsla() and the keyword transparent. Both comma and space separated
// function syntax are accepted.
func Parse(s string) (RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return RGBA{}, fmt.Errorf("%w: empty", ErrInvalid)
	}
	if v == "transparent" {
		return Transparent, nil
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v)
	}
	if open := strings.IndexByte(v, '('); open > 0 && strings.HasSuffix(v, ")") {
		fn := strings.TrimSpace(v[:open])
		args, err := splitArgs(v[open+1 : len(v)-1])
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}
		switch fn {
		case "rgb", "rgba":
			return parseRGB(args, s)
		case "hsl", "hsla":
			return parseHSL(args, s)
		}
		return RGBA{}, fmt.Errorf("%w: unsupported function %q", ErrInvalid, fn)
	}
	if c, ok := colornames.Map[v]; ok {
		return RGBA{c.R, c.G, c.B, float64(c.A) / 255}, nil
	}
	return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, s)
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) RGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Normalize returns the canonical lowercase #rrggbb form of s. Alpha is
// dropped; use Parse and Over when translucency matters.
func Normalize(s string) (string, error) {
	c, err := Parse(s)
	if err != nil {
		return "", err
	}
	return c.Hex(), nil
}

func parseHex(v string) (RGBA, error) {
	h := v[1:]
	alpha := 1.0
	switch len(h) {
	case 4:
		a, err := strconv.ParseUint(strings.Repeat(h[3:4], 2), 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, v)
		}
		alpha = float64(a) / 255
		h = h[:3]
	case 8:
		a, err := strconv.ParseUint(h[6:], 16, 8)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, v)
		}
		alpha = float64(a) / 255
		h = h[:6]
	}
	c, err := colorful.Hex("#" + h)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, v)
	}
	r, g, b := c.RGB255()
	return RGBA{r, g, b, alpha}, nil
}

// splitArgs splits "a, b, c" or "a b c / d" into its components.
func splitArgs(body string) ([]string, error) {
	body = strings.ReplaceAll(body, "/", " ")
	body = strings.ReplaceAll(body, ",", " ")
	args := strings.Fields(body)
	if len(args) < 3 || len(args) > 4 {
		return nil, ErrInvalid
	}
	return args, nil
}

func parseRGB(args []string, orig string) (RGBA, error) {
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		f, err := parseChannel(args[i], 255)
		if err != nil {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
		}
		ch[i] = uint8(math.Round(clamp(f, 0, 255)))
	}
	alpha, err := parseAlpha(args)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	return RGBA{ch[0], ch[1], ch[2], alpha}, nil
}

func parseHSL(args []string, orig string) (RGBA, error) {
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	s, err := parseChannel(args[1], 1)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	l, err := parseChannel(args[2], 1)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	alpha, err := parseAlpha(args)
	if err != nil {
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalid, orig)
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	r, g, b := colorful.Hsl(h, clamp(s, 0, 1), clamp(l, 0, 1)).Clamped().RGB255()
	return RGBA{r, g, b, alpha}, nil
}

// parseChannel reads a number or percentage; percentages scale to max.
func parseChannel(s string, max float64) (float64, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, err
		}
		return f / 100 * max, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseAlpha(args []string) (float64, error) {
	if len(args) < 4 {
		return 1, nil
	}
	a, err := parseChannel(args[3], 1)
	if err != nil {
		return 0, err
	}
	return clamp(a, 0, 1), nil
}

func clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, f))
}

// Hex returns the lowercase #rrggbb form, ignoring alpha.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opaque reports whether the color fully covers what is beneath it.
func (c RGBA) Opaque() bool { return c.A >= 1 }

// Visible reports whether the color paints anything at all.
func (c RGBA) Visible() bool { return c.A > 0 }

// Over composites c on top of bg using source-over alpha blending.
func (c RGBA) Over(bg RGBA) RGBA {
	if c.A >= 1 {
		return c
	}
	outA := c.A + bg.A*(1-c.A)
	if outA == 0 {
		return Transparent
	}
	blend := func(f, b uint8) uint8 {
		v := (float64(f)*c.A + float64(b)*bg.A*(1-c.A)) / outA
		return uint8(math.Round(clamp(v, 0, 255)))
	}
	return RGBA{blend(c.R, bg.R), blend(c.G, bg.G), blend(c.B, bg.B), outA}
}

// Colorful converts to a go-colorful value, dropping alpha.
func (c RGBA) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// FromColorful converts back from a go-colorful value as an opaque color.
func FromColorful(cc colorful.Color) RGBA {
	r, g, b := cc.Clamped().RGB255()
	return RGBA{r, g, b, 1}
}

func (c RGBA) String() string {
	if c.A < 1 {
		return fmt.Sprintf("%s@%.2f", c.Hex(), c.A)
	}
	return c.Hex()
}
