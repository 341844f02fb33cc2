package segment

import (
	"sort"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// FindExtremal returns the leftmost-upper box of boxes, or with reverse the
// rightmost-lower box.
//
// The box with the smallest x wins, ties going to the smallest y (largest x
// and largest y with reverse). If a different box lies higher (lower with
// reverse) the result is the Intersect of the two, so the composed region is
// not clipped by a box that starts further out vertically.
//
// Tombstoned entries are ignored. ErrNoSurvivors is returned if none remain.
func FindExtremal(boxes []geometry.Box, reverse bool) (geometry.Box, error) {
	live := geometry.Compact(boxes)
	if len(live) == 0 {
		return geometry.Invalid, ErrNoSurvivors
	}

	byX := geometry.Clone(live)
	sort.SliceStable(byX, func(i, j int) bool {
		if reverse {
			return byX[i].X > byX[j].X
		}
		return byX[i].X < byX[j].X
	})

	pick := byX[0]
	for _, b := range byX[1:] {
		if b.X != pick.X {
			break
		}
		if (!reverse && b.Y < pick.Y) || (reverse && b.Y > pick.Y) {
			pick = b
		}
	}

	byY := geometry.Clone(live)
	sortByY(byY, reverse)
	if byY[0] != pick {
		pick = Intersect(byY[0], pick, reverse)
	}

	return pick, nil
}

// Intersect combines two boxes: x and width come from the box ordered first
// by x, y and height from the box ordered first by y. Orders are ascending,
// or descending with reverse; ties keep a before b.
func Intersect(a, b geometry.Box, reverse bool) geometry.Box {
	pair := []geometry.Box{a, b}

	sort.SliceStable(pair, func(i, j int) bool {
		if reverse {
			return pair[i].X > pair[j].X
		}
		return pair[i].X < pair[j].X
	})
	x, w := pair[0].X, pair[0].W

	pair[0], pair[1] = a, b
	sortByY(pair, reverse)
	y, h := pair[0].Y, pair[0].H

	return geometry.Box{X: x, Y: y, W: w, H: h}
}

// ComposeRegion returns the box spanning from left's top-left corner to
// right's bottom-right corner.
func ComposeRegion(left, right geometry.Box) geometry.Box {
	return geometry.Box{
		X: left.X,
		Y: left.Y,
		W: right.Right() - left.X,
		H: right.Bottom() - left.Y,
	}
}

// Compose finds both extremal boxes of survivors and composes the region
// between them.
func Compose(survivors []geometry.Box) (geometry.Box, error) {
	left, err := FindExtremal(survivors, false)
	if err != nil {
		return geometry.Invalid, err
	}
	right, err := FindExtremal(survivors, true)
	if err != nil {
		return geometry.Invalid, err
	}
	return ComposeRegion(left, right), nil
}

func sortByY(boxes []geometry.Box, reverse bool) {
	sort.SliceStable(boxes, func(i, j int) bool {
		if reverse {
			return boxes[i].Y > boxes[j].Y
		}
		return boxes[i].Y < boxes[j].Y
	})
}
