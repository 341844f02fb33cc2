package imaging

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// DrawBoxes outlines each valid box on a copy of img and labels it with its
// index in boxes. Tombstoned boxes keep their index but are not drawn.
func DrawBoxes(img image.Image, boxes []geometry.Box, outline color.RGBA) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for i, b := range boxes {
		if !b.Valid() {
			continue
		}
		x0, y0 := bounds.Min.X+b.X, bounds.Min.Y+b.Y
		x1, y1 := x0+b.W-1, y0+b.H-1

		for x := x0; x <= x1; x++ {
			setClipped(result, x, y0, outline)
			setClipped(result, x, y1, outline)
		}
		for y := y0; y <= y1; y++ {
			setClipped(result, x0, y, outline)
			setClipped(result, x1, y, outline)
		}

		drawIndex(result, x0+2, y0+2, i, labelColor, bgColor)
	}

	return result
}

func setClipped(img *image.RGBA, x, y int, c color.RGBA) {
	if (image.Point{x, y}).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

// ParseHexColor parses "RRGGBB" or "RRGGBBAA", with or without a leading
// '#'. Alpha defaults to opaque.
func ParseHexColor(s string) (color.RGBA, error) {
	raw := strings.TrimPrefix(s, "#")
	if len(raw) != 6 && len(raw) != 8 {
		return color.RGBA{}, fmt.Errorf("color %q: want 6 or 8 hex digits", s)
	}

	ch, err := hex.DecodeString(raw)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	if len(ch) == 3 {
		ch = append(ch, 0xFF)
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// indexFont holds a 3x5 bitmap per decimal digit, rows top to bottom with
// the most significant of 15 bits at the top left.
var indexFont = [10]uint16{0x7B6F, 0x2C97, 0x73E7, 0x73CF, 0x5BC9, 0x79CF, 0x79EF, 0x7249, 0x7BEF, 0x7BCF}

// drawIndex writes n in decimal at (x, y) on a dark backing plate.
func drawIndex(img *image.RGBA, x, y, n int, fg, bg color.RGBA) {
	digits := strconv.Itoa(n)
	plate := image.Rect(x-1, y-1, x+4*len(digits), y+6).Intersect(img.Bounds())
	draw.Draw(img, plate, image.NewUniform(bg), image.Point{}, draw.Over)

	for i, d := range digits {
		bits := indexFont[d-'0']
		for k := 0; k < 15; k++ {
			if bits&(1<<(14-k)) != 0 {
				setClipped(img, x+4*i+k%3, y+k/3, fg)
			}
		}
	}
}
