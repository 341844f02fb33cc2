// Package geometry defines the axis-aligned boxes that flow through the
// region-of-interest pipeline.
//
// Boxes use the standard image convention: (X, Y) is the top-left corner,
// X increases rightward and Y increases downward. W and H are positive for
// every valid box.
//
// # Soft Deletion
//
// Filters never shrink a collection while iterating over it. A removed box is
// overwritten with Invalid, and Compact rebuilds a dense slice once the pass
// is complete. This keeps index correspondence with any parallel per-box
// slices (areas, colors) stable for the whole pass.
package geometry

import (
	"fmt"
	"image"
)

// Box is an axis-aligned rectangle in pixel coordinates.
type Box struct {
	X int `json:"x"` // Left edge (inclusive)
	Y int `json:"y"` // Top edge (inclusive)
	W int `json:"w"` // Width in pixels
	H int `json:"h"` // Height in pixels
}

// Invalid marks a box removed by a filter, pending compaction.
var Invalid = Box{X: -1, Y: -1, W: -1, H: -1}

// Pair is two boxes judged adjacent by proximity clustering.
type Pair [2]Box

// Valid reports whether b is a live box rather than the Invalid tombstone.
func (b Box) Valid() bool {
	return b.X != -1
}

// Area returns W*H.
func (b Box) Area() int {
	return b.W * b.H
}

// Right returns the exclusive right edge.
func (b Box) Right() int {
	return b.X + b.W
}

// Bottom returns the exclusive bottom edge.
func (b Box) Bottom() int {
	return b.Y + b.H
}

// Ratio returns H/W, or 0 for a box without width.
func (b Box) Ratio() float64 {
	if b.W == 0 {
		return 0
	}
	return float64(b.H) / float64(b.W)
}

// ContainedIn reports whether b's horizontal and vertical spans both lie
// strictly inside other's spans.
func (b Box) ContainedIn(other Box) bool {
	return b.X > other.X && b.Right() < other.Right() &&
		b.Y > other.Y && b.Bottom() < other.Bottom()
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.Right(), b.Bottom())
}

// Translate returns b shifted by (dx, dy).
func (b Box) Translate(dx, dy int) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

func (b Box) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", b.X, b.Y, b.W, b.H)
}

// FromRect converts an image.Rectangle to a Box.
func FromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Compact returns a new dense slice holding only the valid boxes of boxes,
// in their original order. Compact is idempotent.
func Compact(boxes []Box) []Box {
	out := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		if b.Valid() {
			out = append(out, b)
		}
	}
	return out
}

// Clone returns a copy of boxes that callers may reorder or tombstone freely.
func Clone(boxes []Box) []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)
	return out
}
