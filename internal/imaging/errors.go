package imaging

import (
	"errors"
	"fmt"
	"image"
)

// ImageError reports an input that is not a usable decoded raster.
type ImageError struct {
	// Op names the operation that rejected the input, e.g. "decode" or "validate".
	Op string

	// Err is the underlying cause. May be nil.
	Err error
}

func (e *ImageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image error: %s: %v", e.Op, e.Err)
	}
	return "image error: " + e.Op
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

var (
	errNilImage  = errors.New("no image provided")
	errEmptyArea = errors.New("image has zero area")
)

// Validate returns an *ImageError if img cannot be processed.
func Validate(img image.Image) error {
	if img == nil {
		return &ImageError{Op: "validate", Err: errNilImage}
	}
	if img.Bounds().Empty() {
		return &ImageError{Op: "validate", Err: errEmptyArea}
	}
	return nil
}

// IsImageError reports whether err is, or wraps, an *ImageError.
func IsImageError(err error) bool {
	var ie *ImageError
	return errors.As(err, &ie)
}
