package segment

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/digit-roi/internal/detection"
	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
)

// Stage names a checkpoint of the pipeline.
type Stage string

const (
	StageCandidates  Stage = "candidates"
	StageShape       Stage = "shape"
	StageArea        Stage = "area"
	StageClusters    Stage = "clusters"
	StageMergedArea  Stage = "merged-area"
	StageContainment Stage = "containment"
	StageHeight      Stage = "height"
	StageSpread      Stage = "spread"
	StageColor       Stage = "color"
	StageRegion      Stage = "region"
	StageDigits      Stage = "digits"
)

// Observer receives the image and boxes at each pipeline checkpoint. It must
// not retain or modify img.
type Observer func(stage Stage, img image.Image, boxes []geometry.Box)

// StageCount records how many boxes survived a stage.
type StageCount struct {
	Stage Stage `json:"stage"`
	Count int   `json:"count"`
}

// Candidates is the unfiltered detector output for an image.
type Candidates struct {
	// Working is the image at the resolution the boxes refer to.
	Working image.Image

	// Mask is the binary stroke mask the detector ran on.
	Mask *image.Gray

	// ScaleX and ScaleY map working coordinates back to the source image.
	ScaleX float64
	ScaleY float64

	Boxes []geometry.Box
}

// Location is the outcome of region discovery.
type Location struct {
	Working image.Image `json:"-"`
	ScaleX  float64     `json:"scale_x"`
	ScaleY  float64     `json:"scale_y"`

	// Region encloses the digit run in working coordinates.
	Region geometry.Box `json:"region"`

	// Plate is the polarity of the background around Region.
	Plate Plate `json:"plate"`

	// Survivors are the boxes left by the filter chain.
	Survivors []geometry.Box `json:"survivors"`

	Stages []StageCount `json:"stages"`
}

// SourceRegion maps Region back to source image coordinates.
func (l *Location) SourceRegion() geometry.Box {
	return geometry.Box{
		X: int(math.Round(float64(l.Region.X) * l.ScaleX)),
		Y: int(math.Round(float64(l.Region.Y) * l.ScaleY)),
		W: int(math.Round(float64(l.Region.W) * l.ScaleX)),
		H: int(math.Round(float64(l.Region.H) * l.ScaleY)),
	}
}

// Result is a located region together with its digits.
type Result struct {
	*Location

	// ROI is the padded region crop.
	ROI *image.NRGBA `json:"-"`

	// Digits are ordered by ascending x.
	Digits []Digit `json:"digits"`
}

// Pipeline runs region discovery and digit extraction for single images.
// A Pipeline holds no per-image state and may be shared across goroutines
// as long as its Detector and Observer may be.
type Pipeline struct {
	pre       *imaging.Preprocessor
	det       detection.Detector
	params    Params
	extractor *Extractor
	observer  Observer
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver installs o to be called at every checkpoint.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Pipeline.
func New(pre *imaging.Preprocessor, det detection.Detector, params Params, opts ...Option) *Pipeline {
	p := &Pipeline{
		pre:       pre,
		det:       det,
		params:    params,
		extractor: NewExtractor(pre, det, params.DigitShapeRatio, params.Padding),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Params returns the tolerances the pipeline runs with.
func (p *Pipeline) Params() Params {
	return p.params
}

// Candidates resizes img to the working resolution, builds its mask and runs
// the detector.
func (p *Pipeline) Candidates(img image.Image) (*Candidates, error) {
	working, sx, sy, err := p.pre.Resize(img)
	if err != nil {
		return nil, err
	}

	mask, err := p.pre.Mask(working)
	if err != nil {
		return nil, err
	}

	boxes, err := p.det.Detect(mask)
	if err != nil {
		return nil, fmt.Errorf("detect candidates: %w", err)
	}

	return &Candidates{Working: working, Mask: mask, ScaleX: sx, ScaleY: sy, Boxes: boxes}, nil
}

// Locate finds the region enclosing the digit run of img.
func (p *Pipeline) Locate(img image.Image) (*Location, error) {
	c, err := p.Candidates(img)
	if err != nil {
		return nil, err
	}

	loc := &Location{Working: c.Working, ScaleX: c.ScaleX, ScaleY: c.ScaleY}

	boxes := geometry.Compact(c.Boxes)
	if err := p.checkpoint(loc, StageCandidates, c.Working, boxes); err != nil {
		return nil, err
	}

	boxes, err = p.filter(loc, c.Working, boxes)
	if err != nil {
		return nil, err
	}
	loc.Survivors = boxes

	region, err := Compose(boxes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageRegion, err)
	}
	loc.Region = region
	loc.Plate = plateAround(c.Mask, region, plateRing)
	p.observe(StageRegion, c.Working, []geometry.Box{region})

	p.logger.Info("Located digit region", "region", region.String(), "plate", loc.Plate, "survivors", len(boxes))
	return loc, nil
}

// Run locates the digit region of img, crops and pads it, and extracts the
// digits inside.
func (p *Pipeline) Run(img image.Image) (*Result, error) {
	loc, err := p.Locate(img)
	if err != nil {
		return nil, err
	}

	b := loc.Working.Bounds()
	crop, err := imaging.CropBox(loc.Working, loc.Region.Translate(b.Min.X, b.Min.Y))
	if err != nil {
		return nil, fmt.Errorf("crop region: %w", err)
	}
	roi := imaging.Pad(crop, p.params.Padding)

	digits, err := p.extractor.ExtractOn(roi, loc.Plate)
	if err != nil {
		return nil, fmt.Errorf("extract digits: %w", err)
	}

	digitBoxes := make([]geometry.Box, len(digits))
	for i, d := range digits {
		digitBoxes[i] = d.Box
	}
	p.observe(StageDigits, roi, digitBoxes)
	p.logger.Debug("Extracted digits", "count", len(digits))

	return &Result{Location: loc, ROI: roi, Digits: digits}, nil
}

// filter runs the geometric filter chain in its fixed order.
func (p *Pipeline) filter(loc *Location, working image.Image, boxes []geometry.Box) ([]geometry.Box, error) {
	params := p.params
	area := func(b []geometry.Box) ([]geometry.Box, error) {
		return FilterAreaOutliers(b, params.AreaLowerFactor, params.AreaUpperFactor, params.AreaMinBoxes), nil
	}

	stages := []struct {
		stage Stage
		run   func([]geometry.Box) ([]geometry.Box, error)
	}{
		{StageShape, func(b []geometry.Box) ([]geometry.Box, error) {
			return FilterShape(b, params.ShapeRatio), nil
		}},
		{StageArea, area},
		{StageClusters, func(b []geometry.Box) ([]geometry.Box, error) {
			return GroupClusters(FindClusters(b, params.ClusterX, params.ClusterY)), nil
		}},
		{StageMergedArea, area},
		{StageContainment, func(b []geometry.Box) ([]geometry.Box, error) {
			return SuppressContained(b), nil
		}},
		{StageHeight, func(b []geometry.Box) ([]geometry.Box, error) {
			return FilterHeights(b), nil
		}},
		{StageSpread, func(b []geometry.Box) ([]geometry.Box, error) {
			return FilterSpread(b, params.SpreadFactor), nil
		}},
		{StageColor, func(b []geometry.Box) ([]geometry.Box, error) {
			return FilterDominantColor(working, b, params.ColorTolerance)
		}},
	}

	for _, s := range stages {
		next, err := s.run(boxes)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.stage, err)
		}
		boxes = next
		if err := p.checkpoint(loc, s.stage, working, boxes); err != nil {
			return nil, err
		}
	}
	return boxes, nil
}

// checkpoint records and reports the survivors of stage, failing if none remain.
func (p *Pipeline) checkpoint(loc *Location, stage Stage, img image.Image, boxes []geometry.Box) error {
	loc.Stages = append(loc.Stages, StageCount{Stage: stage, Count: len(boxes)})
	p.logger.Debug("Stage complete", "stage", stage, "survivors", len(boxes))
	p.observe(stage, img, boxes)

	if len(boxes) == 0 {
		return fmt.Errorf("%s: %w", stage, ErrNoSurvivors)
	}
	return nil
}

func (p *Pipeline) observe(stage Stage, img image.Image, boxes []geometry.Box) {
	if p.observer != nil {
		p.observer(stage, img, geometry.Clone(boxes))
	}
}
