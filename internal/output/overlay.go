package output

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/a11y-audit/internal/audit"
	"github.com/mj1618/a11y-audit/internal/model"
)

// maxOverlayHeight caps the canvas for very long pages.
const maxOverlayHeight = 8000

// ScoreColor maps an element score to a hue between red (0) and green (100).
func ScoreColor(score int) color.RGBA {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	c := colorful.Hsv(float64(score)*1.2, 0.85, 0.8)
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RenderOverlay draws every reported element's box onto a white canvas
// sized to the viewport, outlined in its score color and labelled with the
// score. The canvas grows downward to fit elements below the fold.
func RenderOverlay(r *audit.AuditReport, vp model.Viewport) *image.RGBA {
	w, h := vp.Width, vp.Height
	if w <= 0 || h <= 0 {
		w, h = model.DefaultViewports[0].Width, model.DefaultViewports[0].Height
	}
	for _, el := range r.Elements {
		if bottom := el.Bounds[1] + el.Bounds[3]; bottom > h {
			h = bottom
		}
	}
	if h > maxOverlayHeight {
		h = maxOverlayHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{R: 0, G: 0, B: 0, A: 220}
	for _, el := range r.Elements {
		b := el.Bounds
		if b[2] <= 0 || b[3] <= 0 {
			continue
		}
		c := ScoreColor(el.Score)
		drawRectangle(img, b[0], b[1], b[0]+b[2], b[1]+b[3], c)
		if el.Score < 100 {
			// Double stroke marks elements with issues.
			drawRectangle(img, b[0]+1, b[1]+1, b[0]+b[2]-1, b[1]+b[3]-1, c)
		}
		drawTextWithOutline(img, fmt.Sprintf("%d", el.Score), b[0]+b[2]/2, b[1]+b[3]/2, textColor, outlineColor)
	}
	return img
}

// WritePNG encodes the overlay for r as PNG.
func WritePNG(w io.Writer, r *audit.AuditReport, vp model.Viewport) error {
	if err := png.Encode(w, RenderOverlay(r, vp)); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	return nil
}

func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle strokes the outline of [x1,x2)x[y1,y2), clamped to img.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	x1, y1 = max(x1, bounds.Min.X), max(y1, bounds.Min.Y)
	x2, y2 = min(x2, bounds.Max.X), min(y2, bounds.Max.Y)
	if x2 <= x1 || y2 <= y1 {
		return
	}
	for x := x1; x < x2; x++ {
		img.Set(x, y1, c)
		img.Set(x, y2-1, c)
	}
	for y := y1; y < y2; y++ {
		img.Set(x1, y, c)
		img.Set(x2-1, y, c)
	}
}

// drawTextWithOutline centers text on (x, y) using the 7x13 bitmap face,
// with a one-pixel outline so labels read on any box color.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	offsetX := x - len(text)*7/2
	baseline := y + 13/2 - 2
	if !isWithinBounds(img.Bounds(), x, y) {
		return
	}
	drawAt := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, baseline+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				drawAt(dx, dy, outlineColor)
			}
		}
	}
	drawAt(0, 0, textColor)
}
