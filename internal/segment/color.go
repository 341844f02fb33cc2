package segment

import (
	"fmt"
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
)

// BoxColors returns the dominant intensity of each box region of img after
// intensity normalization, index-aligned with boxes.
func BoxColors(img image.Image, boxes []geometry.Box) ([]imaging.DominantColor, error) {
	norm := imaging.NormalizeIntensity(img)

	colors := make([]imaging.DominantColor, len(boxes))
	for i, b := range boxes {
		crop, err := imaging.CropBox(norm, b.Translate(norm.Bounds().Min.X, norm.Bounds().Min.Y))
		if err != nil {
			return nil, fmt.Errorf("box %d: %w", i, err)
		}
		c, ok := imaging.DominantIntensity(crop)
		if !ok {
			return nil, fmt.Errorf("box %d %s: no pixels", i, b)
		}
		colors[i] = c
	}
	return colors, nil
}

// MajorityColor returns the color shared by the most entries of colors and
// how many share it. Colors are compared on their 8-bit RGB values. Ties go
// to the first color seen with the winning count.
func MajorityColor(colors []colorful.Color) (colorful.Color, int) {
	var best colorful.Color
	bestCount := 0

	for _, c := range colors {
		count := 0
		for _, other := range colors {
			if sameRGB255(c, other) {
				count++
			}
		}
		if count > bestCount {
			best = c
			bestCount = count
		}
	}
	return best, bestCount
}

// FilterDominantColor removes boxes whose dominant intensity differs from
// the majority dominant intensity by at least tolerance in every channel.
// A box within tolerance on any one channel survives.
func FilterDominantColor(img image.Image, boxes []geometry.Box, tolerance float64) ([]geometry.Box, error) {
	out := geometry.Compact(boxes)
	if len(out) == 0 {
		return out, nil
	}

	dominant, err := BoxColors(img, out)
	if err != nil {
		return nil, fmt.Errorf("dominant color: %w", err)
	}

	colors := make([]colorful.Color, len(dominant))
	for i, d := range dominant {
		colors[i] = d.Color
	}
	majority, _ := MajorityColor(colors)

	for i, c := range colors {
		if differsInEveryChannel(c, majority, tolerance) {
			out[i] = geometry.Invalid
		}
	}

	return geometry.Compact(out), nil
}

func sameRGB255(a, b colorful.Color) bool {
	ar, ag, ab := a.RGB255()
	br, bg, bb := b.RGB255()
	return ar == br && ag == bg && ab == bb
}

func differsInEveryChannel(a, b colorful.Color, tolerance float64) bool {
	ar, ag, ab := a.RGB255()
	br, bg, bb := b.RGB255()
	return channelDiff(ar, br) >= tolerance &&
		channelDiff(ag, bg) >= tolerance &&
		channelDiff(ab, bb) >= tolerance
}

func channelDiff(a, b uint8) float64 {
	return math.Abs(float64(a) - float64(b))
}
