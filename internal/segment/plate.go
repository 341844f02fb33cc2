package segment

import (
	"fmt"
	"image"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// Plate is the mask value of the background the digits are printed on.
type Plate uint8

const (
	// PlateDark is a dark plate carrying light digits.
	PlateDark Plate = 0

	// PlateLight is a light plate carrying dark digits.
	PlateLight Plate = 255
)

// plateRing is the width of the band sampled around a region to classify its plate.
const plateRing = 3

func (p Plate) String() string {
	if p == PlateDark {
		return "dark"
	}
	return "light"
}

// MarshalText encodes the plate as "light" or "dark".
func (p Plate) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes "light" or "dark".
func (p *Plate) UnmarshalText(text []byte) error {
	switch string(text) {
	case "light":
		*p = PlateLight
	case "dark":
		*p = PlateDark
	default:
		return fmt.Errorf("unknown plate %q", text)
	}
	return nil
}

// plateAround classifies the plate from the mask pixels in a band of width
// ring just outside region. The band is clipped to the mask; an empty band or
// a tie yields PlateLight.
func plateAround(mask *image.Gray, region geometry.Box, ring int) Plate {
	if mask == nil || ring <= 0 {
		return PlateLight
	}

	b := mask.Bounds()
	inner := region.Rect().Add(b.Min)
	outer := image.Rect(inner.Min.X-ring, inner.Min.Y-ring, inner.Max.X+ring, inner.Max.Y+ring).Intersect(b)

	dark, light := 0, 0
	for y := outer.Min.Y; y < outer.Max.Y; y++ {
		for x := outer.Min.X; x < outer.Max.X; x++ {
			if image.Pt(x, y).In(inner) {
				continue
			}
			if mask.GrayAt(x, y).Y == uint8(PlateDark) {
				dark++
			} else {
				light++
			}
		}
	}

	if dark > light {
		return PlateDark
	}
	return PlateLight
}
