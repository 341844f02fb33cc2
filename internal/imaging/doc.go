// Package imaging provides the raster operations used by the digit
// region-of-interest pipeline.
//
// This package covers everything that touches pixels: loading and validating
// input images, converting a photograph into a binary stroke mask, cropping
// and padding regions, estimating the dominant intensity of a region, and
// rendering debug overlays. All operations work with standard Go image.Image
// types and use a coordinate system where (0,0) is at the top-left corner,
// X increases rightward, and Y increases downward.
//
// # Preprocessing
//
// Preprocessor turns a color photograph into a single-channel mask:
//
//  1. Oversized inputs are resized to a canonical working resolution
//  2. Grayscale conversion and Gaussian smoothing
//  3. Global binary threshold chosen automatically with Otsu's method
//  4. One erosion followed by one dilation on the thresholded image
//
// Candidate generation and every filter tolerance downstream are calibrated
// to the working resolution, so callers must run Resize before Mask on
// full-size photographs.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Preprocessor holds only
// immutable options, so one instance may serve concurrent pipelines. All other
// functions are stateless.
//
// # Error Handling
//
// Inputs that are not usable rasters (nil images, zero-area bounds, files
// that fail to decode) are reported as *ImageError. There is no recovery path
// for these; they are precondition violations from the caller.
package imaging
