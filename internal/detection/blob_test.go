package detection

import (
	"image"
	"image/color"
	"sort"
	"testing"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// createMask creates a mask filled with bg and the given rectangles set to fg
func createMask(width, height int, bg, fg uint8, rects ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = bg
	}
	for _, r := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: fg})
			}
		}
	}
	return img
}

func sortBoxes(boxes []geometry.Box) {
	sort.Slice(boxes, func(i, j int) bool {
		if boxes[i].X != boxes[j].X {
			return boxes[i].X < boxes[j].X
		}
		return boxes[i].Y < boxes[j].Y
	})
}

func containsBox(boxes []geometry.Box, want geometry.Box) bool {
	for _, b := range boxes {
		if b == want {
			return true
		}
	}
	return false
}

func TestBlobDetector_DarkOnLight(t *testing.T) {
	mask := createMask(100, 60, 255, 0,
		image.Rect(10, 10, 20, 30),
		image.Rect(40, 12, 52, 40),
	)

	d := NewBlobDetector(DefaultOptions())
	boxes, err := d.Detect(mask)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	want := []geometry.Box{
		{X: 10, Y: 10, W: 10, H: 20},
		{X: 40, Y: 12, W: 12, H: 28},
	}
	for _, w := range want {
		if !containsBox(boxes, w) {
			t.Errorf("missing candidate %s in %v", w, boxes)
		}
	}

	// The background is 6000 - 200 - 336 pixels, within MaxArea
	if !containsBox(boxes, geometry.Box{X: 0, Y: 0, W: 100, H: 60}) {
		t.Errorf("background region not reported: %v", boxes)
	}
	if len(boxes) != 3 {
		t.Errorf("count: got %d, want 3", len(boxes))
	}
}

func TestBlobDetector_LightOnDark(t *testing.T) {
	mask := createMask(80, 50, 0, 255, image.Rect(30, 5, 45, 35))

	boxes, err := NewBlobDetector(DefaultOptions()).Detect(mask)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !containsBox(boxes, geometry.Box{X: 30, Y: 5, W: 15, H: 30}) {
		t.Errorf("light stroke not detected: %v", boxes)
	}
}

func TestBlobDetector_AreaLimits(t *testing.T) {
	tests := []struct {
		name   string
		rect   image.Rectangle
		opts   Options
		wantIn bool
	}{
		{"below minimum", image.Rect(10, 10, 15, 15), Options{MinArea: 60, MaxArea: 14400}, false},
		{"at minimum", image.Rect(10, 10, 16, 20), Options{MinArea: 60, MaxArea: 14400}, true},
		{"above maximum", image.Rect(10, 10, 30, 30), Options{MinArea: 60, MaxArea: 300}, false},
		{"no maximum", image.Rect(10, 10, 30, 30), Options{MinArea: 60}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := createMask(200, 200, 255, 0, tt.rect)
			boxes, err := NewBlobDetector(tt.opts).Detect(mask)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			got := containsBox(boxes, geometry.FromRect(tt.rect))
			if got != tt.wantIn {
				t.Errorf("candidate present: got %v, want %v (%v)", got, tt.wantIn, boxes)
			}
		})
	}
}

func TestBlobDetector_DiagonalConnectivity(t *testing.T) {
	// Two 8x8 squares touching only at a corner form one region
	mask := createMask(50, 50, 255, 0,
		image.Rect(10, 10, 18, 18),
		image.Rect(18, 18, 26, 26),
	)

	boxes, err := NewBlobDetector(Options{MinArea: 60, MaxArea: 1000}).Detect(mask)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	sortBoxes(boxes)

	if len(boxes) != 1 || boxes[0] != (geometry.Box{X: 10, Y: 10, W: 16, H: 16}) {
		t.Errorf("got %v, want single (10,10,16,16)", boxes)
	}
}

func TestBlobDetector_RingAndHole(t *testing.T) {
	// A digit "0": the ring and its enclosed hole are separate regions
	mask := createMask(60, 60, 255, 0, image.Rect(10, 10, 30, 50))
	for y := 15; y < 45; y++ {
		for x := 15; x < 25; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	boxes, err := NewBlobDetector(DefaultOptions()).Detect(mask)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !containsBox(boxes, geometry.Box{X: 10, Y: 10, W: 20, H: 40}) {
		t.Errorf("ring not detected: %v", boxes)
	}
	if !containsBox(boxes, geometry.Box{X: 15, Y: 15, W: 10, H: 30}) {
		t.Errorf("hole not detected: %v", boxes)
	}
}

func TestBlobDetector_SubImageOrigin(t *testing.T) {
	full := createMask(100, 100, 255, 0, image.Rect(60, 60, 70, 80))
	sub := full.SubImage(image.Rect(50, 50, 100, 100)).(*image.Gray)

	boxes, err := NewBlobDetector(DefaultOptions()).Detect(sub)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !containsBox(boxes, geometry.Box{X: 10, Y: 10, W: 10, H: 20}) {
		t.Errorf("boxes not relative to mask origin: %v", boxes)
	}
}

func TestBlobDetector_EmptyMask(t *testing.T) {
	d := NewBlobDetector(DefaultOptions())
	if _, err := d.Detect(nil); err == nil {
		t.Error("Detect(nil) should fail")
	}
	if _, err := d.Detect(image.NewGray(image.Rect(0, 0, 0, 0))); err == nil {
		t.Error("Detect(empty) should fail")
	}
}
