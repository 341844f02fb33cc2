package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// Backend names accepted by New.
const (
	BackendBlob     = "blob"
	BackendContours = "gocv"
)

// ErrBackendUnavailable is returned when a detector backend was not compiled in.
var ErrBackendUnavailable = errors.New("detector backend unavailable")

// Detector proposes candidate boxes for a binary mask.
type Detector interface {
	Detect(mask *image.Gray) ([]geometry.Box, error)
}

// DetectorFunc adapts an ordinary function to the Detector interface.
type DetectorFunc func(mask *image.Gray) ([]geometry.Box, error)

// Detect calls f(mask).
func (f DetectorFunc) Detect(mask *image.Gray) ([]geometry.Box, error) {
	return f(mask)
}

// Options configures candidate generation.
type Options struct {
	// MinArea and MaxArea bound the pixel count of a region.
	MinArea int `yaml:"min_area" json:"min_area"`
	MaxArea int `yaml:"max_area" json:"max_area"`
}

// DefaultOptions returns region limits matching the usual MSER defaults.
func DefaultOptions() Options {
	return Options{MinArea: 60, MaxArea: 14400}
}

// New returns the detector registered under backend.
func New(backend string, opts Options) (Detector, error) {
	switch backend {
	case "", BackendBlob:
		return NewBlobDetector(opts), nil
	case BackendContours:
		cd, err := NewContourDetector(opts)
		if err != nil {
			return nil, fmt.Errorf("detector %q: %w", backend, err)
		}
		return cd, nil
	default:
		return nil, fmt.Errorf("unknown detector backend %q", backend)
	}
}

func validMask(mask *image.Gray) error {
	if mask == nil || mask.Bounds().Empty() {
		return errors.New("empty mask")
	}
	return nil
}
