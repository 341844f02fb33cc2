package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessOptions controls how a photograph is reduced to a stroke mask.
type PreprocessOptions struct {
	// LargeImageThreshold is the dimension, in pixels, above which an input is
	// resized to the working resolution. Applies if either side exceeds it.
	LargeImageThreshold int `yaml:"large_image_threshold" json:"large_image_threshold"`

	// WorkingWidth and WorkingHeight form the canonical resolution that all
	// filter tolerances are calibrated to.
	WorkingWidth  int `yaml:"working_width" json:"working_width"`
	WorkingHeight int `yaml:"working_height" json:"working_height"`

	// BlurRadius is the Gaussian smoothing radius applied before thresholding.
	BlurRadius float64 `yaml:"blur_radius" json:"blur_radius"`

	// MorphRadius is the structuring element radius for the erosion and
	// dilation passes. Zero disables morphology.
	MorphRadius float64 `yaml:"morph_radius" json:"morph_radius"`
}

// DefaultPreprocessOptions returns the options the filter tolerances were tuned with.
func DefaultPreprocessOptions() PreprocessOptions {
	return PreprocessOptions{
		LargeImageThreshold: 900,
		WorkingWidth:        536,
		WorkingHeight:       884,
		BlurRadius:          1.0,
		MorphRadius:         1.0,
	}
}

// Preprocessor converts raster images into binary masks emphasizing digit strokes.
type Preprocessor struct {
	opts PreprocessOptions
}

// NewPreprocessor creates a Preprocessor with the given options.
func NewPreprocessor(opts PreprocessOptions) *Preprocessor {
	return &Preprocessor{opts: opts}
}

// Options returns the options the preprocessor was built with.
func (p *Preprocessor) Options() PreprocessOptions {
	return p.opts
}

// Resize downscales img to the working resolution when either dimension
// exceeds the large-image threshold.
//
// Returns the image to work on together with the horizontal and vertical
// factors that map working coordinates back to source coordinates
// (1.0 when no resize happened).
func (p *Preprocessor) Resize(img image.Image) (image.Image, float64, float64, error) {
	if err := Validate(img); err != nil {
		return nil, 0, 0, err
	}

	b := img.Bounds()
	limit := p.opts.LargeImageThreshold
	if limit <= 0 || (b.Dx() <= limit && b.Dy() <= limit) {
		return img, 1, 1, nil
	}

	resized := imaging.Resize(img, p.opts.WorkingWidth, p.opts.WorkingHeight, imaging.Linear)
	scaleX := float64(b.Dx()) / float64(p.opts.WorkingWidth)
	scaleY := float64(b.Dy()) / float64(p.opts.WorkingHeight)
	return resized, scaleX, scaleY, nil
}

// Mask produces the binary stroke mask for img.
//
// Pixels are either 0 or 255. Strokes darker than the Otsu level become 0,
// everything at or above it becomes 255; candidate generation looks at
// regions of both polarities so light-on-dark plates work as well.
//
// # Algorithm
//
//  1. Grayscale conversion
//  2. Gaussian blur with BlurRadius
//  3. Otsu threshold level from the blurred histogram
//  4. Erosion then dilation with MorphRadius on the thresholded image
func (p *Preprocessor) Mask(img image.Image) (*image.Gray, error) {
	if err := Validate(img); err != nil {
		return nil, err
	}

	gray := effect.Grayscale(img)
	smooth := gray
	if p.opts.BlurRadius > 0 {
		smooth = effect.Grayscale(blur.Gaussian(gray, p.opts.BlurRadius))
	}

	thresh := segment.Threshold(smooth, OtsuLevel(smooth))
	if p.opts.MorphRadius <= 0 {
		return binarize(thresh), nil
	}

	eroded := effect.Erode(thresh, p.opts.MorphRadius)
	dilated := effect.Dilate(eroded, p.opts.MorphRadius)
	return binarize(dilated), nil
}

// OtsuLevel picks the global threshold that maximizes between-class variance
// of the gray histogram.
//
// The returned level is the first intensity classified as foreground (white),
// which is the convention segment.Threshold expects: values below the level
// become black. A flat histogram yields level 1.
func OtsuLevel(img image.Image) uint8 {
	bins := histogram.NewRGBAHistogram(img).R.Bins

	total := 0
	var totalSum float64
	for i, n := range bins {
		total += n
		totalSum += float64(i) * float64(n)
	}
	if total == 0 {
		return 128
	}

	var sumBackground, maxVariance float64
	weightBackground := 0
	best := 0

	for t := 0; t < len(bins); t++ {
		weightBackground += bins[t]
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}

		sumBackground += float64(t) * float64(bins[t])
		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (totalSum - sumBackground) / float64(weightForeground)

		diff := meanBackground - meanForeground
		variance := float64(weightBackground) * float64(weightForeground) * diff * diff
		if variance > maxVariance {
			maxVariance = variance
			best = t
		}
	}

	if best >= 255 {
		return 255
	}
	return uint8(best + 1)
}

// binarize snaps an image to a 0/255 gray mask at the midpoint.
func binarize(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if v >= 128 {
				out.SetGray(x-b.Min.X, y-b.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return out
}
