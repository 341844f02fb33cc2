//go:build !gocv
// +build !gocv

package detection

import (
	"image"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// ContourDetector is unavailable without the gocv build tag.
type ContourDetector struct {
	opts Options
}

// NewContourDetector returns ErrBackendUnavailable when built without gocv.
func NewContourDetector(Options) (*ContourDetector, error) {
	return nil, ErrBackendUnavailable
}

// Detect returns ErrBackendUnavailable when built without gocv.
func (d *ContourDetector) Detect(*image.Gray) ([]geometry.Box, error) {
	return nil, ErrBackendUnavailable
}
