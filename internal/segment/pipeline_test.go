package segment

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/digit-roi/internal/detection"
	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
)

// digitScene is a white 400x150 sign with five dark digits and three
// candidate boxes that are not digits.
type digitScene struct {
	img    *image.NRGBA
	digits []geometry.Box
	wide   geometry.Box // rejected by shape
	large  geometry.Box // rejected by area
	tinted geometry.Box // rejected by dominant color
}

func newDigitScene() digitScene {
	s := digitScene{
		img:    newCanvas(400, 150, 255),
		wide:   box(200, 35, 60, 10),
		large:  box(300, 20, 40, 80),
		tinted: box(95, 65, 20, 40),
	}

	fillRect(s.img, s.tinted.Rect(), 200)
	for i := 0; i < 5; i++ {
		s.digits = append(s.digits, box(20+30*i, 30, 20, 40))
		fillRect(s.img, image.Rect(25+30*i, 36, 35+30*i, 64), 0)
	}
	return s
}

func (s digitScene) candidates() []geometry.Box {
	out := geometry.Clone(s.digits)
	return append(out, s.wide, s.large, s.tinted)
}

// detector returns the scene's candidates for the full sign and runs blob
// detection on anything else, such as the padded region crop.
func (s digitScene) detector() detection.Detector {
	blobs := detection.NewBlobDetector(detection.DefaultOptions())
	return detection.DetectorFunc(func(mask *image.Gray) ([]geometry.Box, error) {
		if mask.Bounds().Dx() == s.img.Bounds().Dx() {
			return s.candidates(), nil
		}
		return blobs.Detect(mask)
	})
}

func newTestPipeline(det detection.Detector, opts ...Option) *Pipeline {
	pre := imaging.NewPreprocessor(imaging.DefaultPreprocessOptions())
	return New(pre, det, DefaultParams(), opts...)
}

func distinct(boxes []geometry.Box) []geometry.Box {
	seen := make(map[geometry.Box]bool)
	out := make([]geometry.Box, 0)
	for _, b := range boxes {
		if !seen[b] {
			seen[b] = true
			out = append(out, b)
		}
	}
	return out
}

func TestPipeline_EndToEnd(t *testing.T) {
	scene := newDigitScene()

	snapshots := make(map[Stage][]geometry.Box)
	var order []Stage
	observer := func(stage Stage, img image.Image, boxes []geometry.Box) {
		snapshots[stage] = boxes
		order = append(order, stage)
	}

	p := newTestPipeline(scene.detector(), WithObserver(observer))
	res, err := p.Run(scene.img)
	require.NoError(t, err)

	// Every noise box is gone and every digit survives
	assert.ElementsMatch(t, scene.digits, distinct(res.Survivors))
	assert.Equal(t, box(20, 30, 140, 40), res.Region)

	// Each noise box is removed by the stage aimed at it
	assert.NotContains(t, snapshots[StageShape], scene.wide)
	assert.Contains(t, snapshots[StageShape], scene.large)
	assert.NotContains(t, snapshots[StageArea], scene.large)
	assert.Contains(t, snapshots[StageSpread], scene.tinted)
	assert.NotContains(t, snapshots[StageColor], scene.tinted)

	assert.Equal(t, []Stage{
		StageCandidates, StageShape, StageArea, StageClusters, StageMergedArea,
		StageContainment, StageHeight, StageSpread, StageColor, StageRegion, StageDigits,
	}, order)

	wantCounts := []StageCount{
		{StageCandidates, 8}, {StageShape, 7}, {StageArea, 6}, {StageClusters, 10},
		{StageMergedArea, 10}, {StageContainment, 10}, {StageHeight, 10},
		{StageSpread, 10}, {StageColor, 9},
	}
	assert.Equal(t, wantCounts, res.Stages)

	// Padded region crop
	require.NotNil(t, res.ROI)
	assert.Equal(t, image.Rect(0, 0, 144, 44), res.ROI.Bounds())

	// Five digits, left to right
	require.Len(t, res.Digits, 5)
	band := DefaultParams().DigitShapeRatio
	for i, d := range res.Digits {
		assert.InDelta(t, 7+30*i, d.Box.X, 2, "digit %d x", i)
		assert.Greater(t, d.Box.H, d.Box.W)
		assert.GreaterOrEqual(t, d.Box.Ratio(), band.Lower)
		assert.LessOrEqual(t, d.Box.Ratio(), band.Upper)
		assert.Equal(t, d.Box.W, d.Image.Bounds().Dx())
		assert.Equal(t, d.Box.H, d.Image.Bounds().Dy())
		if i > 0 {
			assert.Less(t, res.Digits[i-1].Box.X, d.Box.X)
		}
	}
}

func TestPipeline_ObserverDoesNotChangeResult(t *testing.T) {
	scene := newDigitScene()

	plain, err := newTestPipeline(scene.detector()).Locate(scene.img)
	require.NoError(t, err)

	observed, err := newTestPipeline(scene.detector(), WithObserver(func(_ Stage, _ image.Image, boxes []geometry.Box) {
		for i := range boxes {
			boxes[i] = geometry.Invalid
		}
	})).Locate(scene.img)
	require.NoError(t, err)

	assert.Equal(t, plain.Region, observed.Region)
	assert.Equal(t, plain.Survivors, observed.Survivors)
	assert.Equal(t, plain.Stages, observed.Stages)
}

func TestPipeline_NoSurvivors(t *testing.T) {
	scene := newDigitScene()

	tests := []struct {
		name      string
		boxes     []geometry.Box
		wantStage Stage
	}{
		{"no candidates", nil, StageCandidates},
		{"only wide boxes", []geometry.Box{box(0, 0, 50, 10), box(100, 0, 40, 40)}, StageShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := detection.DetectorFunc(func(*image.Gray) ([]geometry.Box, error) {
				return tt.boxes, nil
			})

			_, err := newTestPipeline(det).Run(scene.img)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoSurvivors))
			assert.Contains(t, err.Error(), string(tt.wantStage))
		})
	}
}

func TestPipeline_InvalidImage(t *testing.T) {
	p := newTestPipeline(newDigitScene().detector())

	_, err := p.Run(nil)
	require.Error(t, err)
	assert.True(t, imaging.IsImageError(err))

	_, err = p.Locate(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.True(t, imaging.IsImageError(err))
}

func TestPipeline_DetectorError(t *testing.T) {
	boom := errors.New("boom")
	det := detection.DetectorFunc(func(*image.Gray) ([]geometry.Box, error) {
		return nil, boom
	})

	_, err := newTestPipeline(det).Locate(newDigitScene().img)
	assert.ErrorIs(t, err, boom)
}

func TestPipeline_RenderedSign(t *testing.T) {
	tests := []struct {
		name  string
		plate Plate
		rings bool
	}{
		{"dark bars on light plate", PlateLight, false},
		{"dark rings on light plate", PlateLight, true},
		{"light bars on dark plate", PlateDark, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := newCanvas(300, 120, uint8(tt.plate))
			drawn := renderRow(canvas, image.Pt(40, 40), 5, tt.plate, tt.rings)

			p := newTestPipeline(detection.NewBlobDetector(detection.DefaultOptions()))
			res, err := p.Run(canvas)
			require.NoError(t, err)

			assert.Equal(t, tt.plate, res.Plate)
			assert.InDelta(t, 40, res.Region.X, 2)
			assert.InDelta(t, 40, res.Region.Y, 2)
			assert.InDelta(t, 84, res.Region.W, 2)
			assert.InDelta(t, 28, res.Region.H, 2)

			// The region image keeps its black border
			pad := DefaultParams().Padding
			b := res.ROI.Bounds()
			assert.Equal(t, uint8(0), res.ROI.NRGBAAt(b.Min.X, b.Min.Y).R)
			assert.Equal(t, uint8(0), res.ROI.NRGBAAt(b.Max.X-1, b.Max.Y-1).R)

			offset := image.Pt(pad-res.Region.X, pad-res.Region.Y)
			assertDigitsCover(t, res.Digits, drawn, offset)
		})
	}
}

func TestPipeline_LocateReportsPlate(t *testing.T) {
	scene := newDigitScene()

	loc, err := newTestPipeline(scene.detector()).Locate(scene.img)
	require.NoError(t, err)
	assert.Equal(t, PlateLight, loc.Plate)
}

func TestPipeline_Candidates(t *testing.T) {
	scene := newDigitScene()

	c, err := newTestPipeline(scene.detector()).Candidates(scene.img)
	require.NoError(t, err)

	assert.Equal(t, scene.candidates(), c.Boxes)
	assert.Equal(t, 1.0, c.ScaleX)
	assert.Equal(t, 1.0, c.ScaleY)
	assert.Equal(t, scene.img.Bounds(), c.Mask.Bounds())
}

func TestLocation_SourceRegion(t *testing.T) {
	loc := &Location{Region: box(100, 200, 50, 80), ScaleX: 2, ScaleY: 1.5}
	assert.Equal(t, box(200, 300, 100, 120), loc.SourceRegion())
}
