package segment

import (
	"math"
	"sort"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// FilterShape keeps boxes that are taller than wide with a height/width
// ratio inside band. The result is ordered by ascending x.
func FilterShape(boxes []geometry.Box, band Band) []geometry.Box {
	out := geometry.Compact(boxes)
	sortByX(out)

	for i, b := range out {
		if b.W <= 0 || b.W >= b.H {
			out[i] = geometry.Invalid
			continue
		}
		if r := b.Ratio(); r < band.Lower || r > band.Upper {
			out[i] = geometry.Invalid
		}
	}

	return geometry.Compact(out)
}

// FilterAreaOutliers removes boxes whose area lies outside
// [|median - lowerFactor*IQR|, median + upperFactor*IQR].
//
// Both bounds are truncated to integers. With minBoxes or fewer boxes the
// input is returned unchanged. Otherwise the result is ordered by ascending
// area.
func FilterAreaOutliers(boxes []geometry.Box, lowerFactor, upperFactor float64, minBoxes int) []geometry.Box {
	out := geometry.Compact(boxes)
	if len(out) <= minBoxes {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Area() < out[j].Area()
	})

	areas := make([]float64, len(out))
	for i, b := range out {
		areas[i] = float64(b.Area())
	}
	s := FiveNumberSummary(areas)
	iqr := s.IQR()

	lower := int(math.Abs(float64(int(s.Median - lowerFactor*iqr))))
	upper := int(s.Median + upperFactor*iqr)

	for i, b := range out {
		if a := b.Area(); a < lower || a > upper {
			out[i] = geometry.Invalid
		}
	}

	return geometry.Compact(out)
}

// FindClusters pairs every box with every box (itself included) whose left
// edge lies within threshX*max(widths) of its right edge and whose bottom
// edge lies within threshY*max(heights) of its bottom edge.
//
// Boxes are visited left to right. Duplicate and self pairs are kept;
// GroupClusters folds them.
func FindClusters(boxes []geometry.Box, threshX, threshY float64) []geometry.Pair {
	sorted := geometry.Compact(boxes)
	sortByX(sorted)

	pairs := make([]geometry.Pair, 0)
	for _, a := range sorted {
		for _, b := range sorted {
			dx := absInt(a.Right() - b.X)
			dy := absInt(a.Bottom() - b.Bottom())

			tolX := float64(maxInt(a.W, b.W)) * threshX
			tolY := float64(maxInt(a.H, b.H)) * threshY

			if float64(dx) <= tolX && float64(dy) <= tolY {
				pairs = append(pairs, geometry.Pair{a, b})
			}
		}
	}
	return pairs
}

// GroupClusters folds each pair into one box at the smaller of the two
// origins with the larger of the two widths and heights. Pairs are processed
// in order of their first box's x.
func GroupClusters(pairs []geometry.Pair) []geometry.Box {
	sorted := make([]geometry.Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i][0].X < sorted[j][0].X
	})

	out := make([]geometry.Box, len(sorted))
	for i, p := range sorted {
		a, b := p[0], p[1]
		out[i] = geometry.Box{
			X: minInt(a.X, b.X),
			Y: minInt(a.Y, b.Y),
			W: maxInt(a.W, b.W),
			H: maxInt(a.H, b.H),
		}
	}
	return out
}

// SuppressContained removes every box whose spans are strictly inside the
// spans of another box on both axes, such as the counter of a 0 or 8.
// The result is ordered by ascending area.
func SuppressContained(boxes []geometry.Box) []geometry.Box {
	sorted := geometry.Compact(boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Area() < sorted[j].Area()
	})

	out := geometry.Clone(sorted)
	for i, b := range sorted {
		for j, other := range sorted {
			if i != j && b.ContainedIn(other) {
				out[i] = geometry.Invalid
				break
			}
		}
	}

	return geometry.Compact(out)
}

// FilterHeights removes boxes whose top edge is at least the bottom-most
// box's height away from the median top edge. The result is ordered by
// ascending y.
func FilterHeights(boxes []geometry.Box) []geometry.Box {
	out := geometry.Compact(boxes)
	if len(out) == 0 {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Y < out[j].Y
	})

	ys := make([]float64, len(out))
	for i, b := range out {
		ys[i] = float64(b.Y)
	}
	median := Median(ys)
	tol := float64(out[len(out)-1].H)

	for i, b := range out {
		if math.Abs(float64(b.Y)-median) >= tol {
			out[i] = geometry.Invalid
		}
	}

	return geometry.Compact(out)
}

// FilterSpread removes boxes whose left edge is at least factor times the
// rightmost box's width away from the median left edge. The result is
// ordered by ascending x.
func FilterSpread(boxes []geometry.Box, factor float64) []geometry.Box {
	out := geometry.Compact(boxes)
	if len(out) == 0 {
		return out
	}
	sortByX(out)

	xs := make([]float64, len(out))
	for i, b := range out {
		xs[i] = float64(b.X)
	}
	median := Median(xs)
	tol := float64(out[len(out)-1].W) * factor

	for i, b := range out {
		if math.Abs(float64(b.X)-median) >= tol {
			out[i] = geometry.Invalid
		}
	}

	return geometry.Compact(out)
}

func sortByX(boxes []geometry.Box) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].X < boxes[j].X
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
