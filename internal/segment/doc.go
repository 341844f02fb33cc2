// Package segment locates the run of digits on a photographed sign and cuts
// it into per-digit crops.
//
// The work happens in three steps:
//
//  1. Filter chain: candidate boxes from a detection.Detector are narrowed
//     by aspect ratio, area outliers, proximity clustering, containment
//     suppression, vertical and horizontal alignment, and dominant intensity.
//  2. Region composition: the leftmost-upper and rightmost-lower survivors
//     define one box enclosing the whole digit run.
//  3. Digit extraction: the padded region crop is preprocessed and detected
//     again, and a lighter shape and containment pass yields one crop per
//     digit, ordered left to right.
//
// Every filter works on a private copy of its input. Removed boxes are
// tombstoned with geometry.Invalid during the pass and compacted once at the
// end, so per-index bookkeeping inside a stage stays aligned.
//
// # Failure Modes
//
// Invalid rasters surface as *imaging.ImageError. When a stage removes every
// box the pipeline stops with an error wrapping ErrNoSurvivors that names the
// stage; no region is ever fabricated.
//
// # Observation
//
// An Observer may be attached to a Pipeline to receive the survivors of every
// stage. It exists for debugging and never influences the result.
package segment
