package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// DominantColor is the representative color of a region and how many pixels back it.
type DominantColor struct {
	Color colorful.Color `json:"-"`
	Hex   string         `json:"hex"`
	Count int            `json:"count"`
}

// GrayColor builds a colorful.Color whose three channels all carry the
// 8-bit intensity v.
func GrayColor(v float64) colorful.Color {
	f := v / 255.0
	return colorful.Color{R: f, G: f, B: f}
}

// NormalizeIntensity stretches img so its darkest channel value maps to 0 and
// its brightest to 255, then converts it to grayscale.
//
// The stretch uses a single min/max over all color channels, so hue ratios are
// preserved before the gray conversion. A flat image is returned as plain
// grayscale.
func NormalizeIntensity(img image.Image) *image.NRGBA {
	src := imaging.Clone(img)

	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(src.Pix); i += 4 {
		for _, v := range src.Pix[i : i+3] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	if hi > lo && (lo != 0 || hi != 255) {
		scale := 255.0 / float64(hi-lo)
		stretch := func(v uint8) uint8 {
			return uint8(float64(v-lo)*scale + 0.5)
		}
		src = imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
			return color.NRGBA{R: stretch(c.R), G: stretch(c.G), B: stretch(c.B), A: c.A}
		})
	}

	return imaging.Grayscale(src)
}

// DominantIntensity clusters the intensities of img into two groups and
// returns the group with more members.
//
// Sign backgrounds and digit strokes form the two modes of a digit crop, so
// the larger cluster is either the plate color or the ink color. Ties go to
// the darker cluster. The second return value is false for an empty image.
//
// # Algorithm
//
// One-dimensional Lloyd iteration with k=2 over the 256-bin histogram of the
// red channel (img is expected to be grayscale already). Centers start at the
// darkest and brightest occupied bins and iterate until both move by less
// than one intensity level, or 200 rounds.
func DominantIntensity(img image.Image) (DominantColor, bool) {
	var hist [256]int
	total := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			hist[r>>8]++
			total++
		}
	}
	if total == 0 {
		return DominantColor{}, false
	}

	lo, hi := 0, 255
	for hist[lo] == 0 {
		lo++
	}
	for hist[hi] == 0 {
		hi--
	}
	if lo == hi {
		return newDominant(float64(lo), total), true
	}

	centers := [2]float64{float64(lo), float64(hi)}
	var counts [2]int

	for iter := 0; iter < 200; iter++ {
		var sums [2]float64
		counts = [2]int{}
		for v, n := range hist {
			if n == 0 {
				continue
			}
			k := 0
			if absf(float64(v)-centers[1]) < absf(float64(v)-centers[0]) {
				k = 1
			}
			sums[k] += float64(v) * float64(n)
			counts[k] += n
		}

		moved := 0.0
		for k := range centers {
			if counts[k] == 0 {
				continue
			}
			next := sums[k] / float64(counts[k])
			moved = maxf(moved, absf(next-centers[k]))
			centers[k] = next
		}
		if moved < 1 {
			break
		}
	}

	if counts[1] > counts[0] {
		return newDominant(centers[1], counts[1]), true
	}
	return newDominant(centers[0], counts[0]), true
}

func newDominant(v float64, count int) DominantColor {
	c := GrayColor(v)
	return DominantColor{Color: c, Hex: c.Hex(), Count: count}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
