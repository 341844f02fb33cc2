package segment

import (
	"errors"
	"fmt"
)

// ErrNoSurvivors reports that a stage left no boxes to work with.
var ErrNoSurvivors = errors.New("no surviving boxes")

// Band is an inclusive range of height/width ratios.
type Band struct {
	Lower float64 `yaml:"lower" json:"lower"`
	Upper float64 `yaml:"upper" json:"upper"`
}

// Params holds the tolerances of the filter chain, composer and extractor.
// The defaults are calibrated to the preprocessor's working resolution.
type Params struct {
	// ShapeRatio bounds box height/width during region discovery.
	ShapeRatio Band `yaml:"shape_ratio" json:"shape_ratio"`

	// DigitShapeRatio bounds box height/width inside the cropped region.
	DigitShapeRatio Band `yaml:"digit_shape_ratio" json:"digit_shape_ratio"`

	// AreaLowerFactor and AreaUpperFactor scale the inter-quartile range
	// below and above the median area.
	AreaLowerFactor float64 `yaml:"area_lower_factor" json:"area_lower_factor"`
	AreaUpperFactor float64 `yaml:"area_upper_factor" json:"area_upper_factor"`

	// AreaMinBoxes is the count at or below which area filtering is skipped.
	AreaMinBoxes int `yaml:"area_min_boxes" json:"area_min_boxes"`

	// ClusterX and ClusterY scale the larger width and height of a pair into
	// the horizontal and vertical gap tolerances.
	ClusterX float64 `yaml:"cluster_x" json:"cluster_x"`
	ClusterY float64 `yaml:"cluster_y" json:"cluster_y"`

	// SpreadFactor multiplies the rightmost box's width into the horizontal
	// spread tolerance.
	SpreadFactor float64 `yaml:"spread_factor" json:"spread_factor"`

	// ColorTolerance is the per-channel intensity difference at which a box
	// stops matching the dominant color.
	ColorTolerance float64 `yaml:"color_tolerance" json:"color_tolerance"`

	// Padding is the black border, in pixels, added around the region crop.
	Padding int `yaml:"padding" json:"padding"`
}

// DefaultParams returns the tuned tolerances.
func DefaultParams() Params {
	return Params{
		ShapeRatio:      Band{Lower: 1.10, Upper: 3.21},
		DigitShapeRatio: Band{Lower: 1.10, Upper: 4.8},
		AreaLowerFactor: 1.45,
		AreaUpperFactor: 0.75,
		AreaMinBoxes:    3,
		ClusterX:        1.10,
		ClusterY:        0.25,
		SpreadFactor:    4,
		ColorTolerance:  25,
		Padding:         2,
	}
}

// Validate rejects parameter sets the chain cannot run with.
func (p Params) Validate() error {
	bands := []struct {
		name string
		band Band
	}{
		{"shape_ratio", p.ShapeRatio},
		{"digit_shape_ratio", p.DigitShapeRatio},
	}
	for _, b := range bands {
		if b.band.Lower <= 0 || b.band.Upper < b.band.Lower {
			return fmt.Errorf("%s: invalid band [%g, %g]", b.name, b.band.Lower, b.band.Upper)
		}
	}
	switch {
	case p.AreaLowerFactor < 0 || p.AreaUpperFactor < 0:
		return fmt.Errorf("area factors must not be negative")
	case p.AreaMinBoxes < 0:
		return fmt.Errorf("area_min_boxes must not be negative")
	case p.ClusterX <= 0 || p.ClusterY <= 0:
		return fmt.Errorf("cluster tolerances must be positive")
	case p.SpreadFactor <= 0:
		return fmt.Errorf("spread_factor must be positive")
	case p.ColorTolerance <= 0:
		return fmt.Errorf("color_tolerance must be positive")
	case p.Padding < 0:
		return fmt.Errorf("padding must not be negative")
	}
	return nil
}
