package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// EncodedImage contains a raster encoded as base64 PNG.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropBox extracts the region covered by box.
//
// The box is clipped to the image bounds, matching array slicing semantics.
// The returned image has its origin at (0,0). An error is returned if nothing
// of the box lies inside the image.
func CropBox(img image.Image, box geometry.Box) (*image.NRGBA, error) {
	r := box.Rect().Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("crop region %s outside image bounds %v", box, img.Bounds())
	}
	return imaging.Crop(img, r), nil
}

// Pad surrounds img with a black border px pixels wide on every side.
func Pad(img image.Image, px int) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*px, b.Dy()+2*px, color.NRGBA{0, 0, 0, 255})
	return imaging.Paste(canvas, img, image.Pt(px, px))
}

// JPEGQuality is the quality used when Save writes a .jpg or .jpeg file.
const JPEGQuality = 95

// Save writes img to path, choosing the format from the file extension.
func Save(path string, img image.Image) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Encode renders img as base64 PNG.
func Encode(img image.Image) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
