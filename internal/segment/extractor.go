package segment

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/digit-roi/internal/detection"
	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
)

// Digit is one digit crop and its box inside the padded region image.
type Digit struct {
	Box   geometry.Box  `json:"box"`
	Image *image.NRGBA `json:"-"`
}

// Extractor cuts a padded region crop into individual digits.
//
// The crop carries a black border of pad pixels. Before detection that
// border is relabeled to the plate value so it merges with the plate and the
// gaps between digits instead of with dark strokes; components touching the
// image edge are then plate, not digits, and are dropped.
type Extractor struct {
	pre  *imaging.Preprocessor
	det  detection.Detector
	band Band
	pad  int
}

// NewExtractor creates an Extractor for crops padded by pad pixels that keeps
// boxes whose height/width ratio lies within band.
func NewExtractor(pre *imaging.Preprocessor, det detection.Detector, band Band, pad int) *Extractor {
	return &Extractor{pre: pre, det: det, band: band, pad: max(pad, 0)}
}

// Boxes returns the digit boxes of roi, assumed to be a light plate.
func (e *Extractor) Boxes(roi image.Image) ([]geometry.Box, error) {
	return e.BoxesOn(roi, PlateLight)
}

// BoxesOn returns the digit boxes found in roi on the given plate, ordered by
// ascending x.
func (e *Extractor) BoxesOn(roi image.Image, plate Plate) ([]geometry.Box, error) {
	mask, err := e.pre.Mask(roi)
	if err != nil {
		return nil, err
	}
	fillBorder(mask, e.pad, uint8(plate))

	candidates, err := e.det.Detect(mask)
	if err != nil {
		return nil, fmt.Errorf("detect digits: %w", err)
	}
	if e.pad > 0 {
		candidates = dropEdgeBoxes(candidates, mask.Bounds().Dx(), mask.Bounds().Dy())
	}

	boxes := FilterShape(candidates, e.band)
	boxes = SuppressContained(boxes)
	sortByX(boxes)
	return boxes, nil
}

// Extract returns the digits of roi, assumed to be a light plate.
func (e *Extractor) Extract(roi image.Image) ([]Digit, error) {
	return e.ExtractOn(roi, PlateLight)
}

// ExtractOn returns one crop per digit found in roi on the given plate,
// ordered left to right. An roi without any digit yields an empty slice.
func (e *Extractor) ExtractOn(roi image.Image, plate Plate) ([]Digit, error) {
	boxes, err := e.BoxesOn(roi, plate)
	if err != nil {
		return nil, err
	}

	origin := roi.Bounds().Min
	digits := make([]Digit, 0, len(boxes))
	for _, b := range boxes {
		crop, err := imaging.CropBox(roi, b.Translate(origin.X, origin.Y))
		if err != nil {
			return nil, fmt.Errorf("crop digit %s: %w", b, err)
		}
		digits = append(digits, Digit{Box: b, Image: crop})
	}
	return digits, nil
}

// fillBorder sets the outer width pixels of mask to v.
func fillBorder(mask *image.Gray, width int, v uint8) {
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if x-b.Min.X < width || b.Max.X-x <= width || y-b.Min.Y < width || b.Max.Y-y <= width {
				mask.SetGray(x, y, color.Gray{Y: v})
			}
		}
	}
}

// dropEdgeBoxes removes boxes touching the edge of a w x h mask.
func dropEdgeBoxes(boxes []geometry.Box, w, h int) []geometry.Box {
	out := make([]geometry.Box, 0, len(boxes))
	for _, b := range boxes {
		if b.X <= 0 || b.Y <= 0 || b.Right() >= w || b.Bottom() >= h {
			continue
		}
		out = append(out, b)
	}
	return out
}
