// Package detection generates candidate digit boxes from a binary stroke mask.
//
// A Detector looks at the 0/255 mask produced by imaging.Preprocessor and
// proposes axis-aligned boxes around connected regions. Candidates are
// deliberately oversampled: the output is unordered, may contain duplicates,
// nested regions, and a great deal of noise. The filter chain in package
// segment is responsible for whittling them down.
//
// # Backends
//
//   - BlobDetector: pure Go. Labels 8-connected components of both
//     polarities (dark strokes on light plates and light strokes on dark
//     plates) and keeps components whose pixel count lies within
//     [MinArea, MaxArea].
//   - ContourDetector: OpenCV contours through gocv. Only available when the
//     binary is built with the gocv tag; otherwise it returns
//     ErrBackendUnavailable.
//
// # Coordinate System
//
// Boxes are reported relative to the mask origin, with (0, 0) at the
// top-left corner, X increasing rightward and Y increasing downward.
package detection
