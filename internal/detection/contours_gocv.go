//go:build gocv
// +build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// ContourDetector proposes candidates from OpenCV contours.
type ContourDetector struct {
	opts Options
}

// NewContourDetector creates an OpenCV backed detector.
func NewContourDetector(opts Options) (*ContourDetector, error) {
	return &ContourDetector{opts: opts}, nil
}

// Detect traces contours of the mask and of its inverse and returns their
// bounding rectangles, keeping those whose area lies within [MinArea, MaxArea].
func (d *ContourDetector) Detect(mask *image.Gray) ([]geometry.Box, error) {
	if err := validMask(mask); err != nil {
		return nil, err
	}

	mat, err := gocv.ImageGrayToMatGray(mask)
	if err != nil {
		return nil, fmt.Errorf("failed to convert mask: %w", err)
	}
	defer mat.Close()

	inverse := gocv.NewMat()
	defer inverse.Close()
	gocv.BitwiseNot(mat, &inverse)

	boxes := make([]geometry.Box, 0)
	for _, m := range []gocv.Mat{mat, inverse} {
		boxes = append(boxes, d.trace(m)...)
	}
	return boxes, nil
}

func (d *ContourDetector) trace(m gocv.Mat) []geometry.Box {
	contours := gocv.FindContours(m, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	boxes := make([]geometry.Box, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		area := rect.Dx() * rect.Dy()
		if area < d.opts.MinArea || (d.opts.MaxArea > 0 && area > d.opts.MaxArea) {
			continue
		}
		boxes = append(boxes, geometry.FromRect(rect))
	}
	return boxes
}
