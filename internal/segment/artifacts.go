package segment

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/digit-roi/internal/geometry"
	"github.com/ironsheep/digit-roi/internal/imaging"
)

// Artifacts lists the files written for one image.
type Artifacts struct {
	RegionImage string   `json:"region_image"`
	BoundingBox string   `json:"bounding_box"`
	Digits      []string `json:"digits,omitempty"`
}

// WriteArtifacts writes the padded region crop as DetectedArea<id>.jpg and
// the region box as BoundingBox<id>.txt into dir, creating dir if needed.
// With digits set, every digit crop is also written as Digit<id>-<n>.png.
func WriteArtifacts(dir string, id int, res *Result, digits bool) (*Artifacts, error) {
	if res == nil || res.Location == nil || res.ROI == nil {
		return nil, fmt.Errorf("no result to write")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	a := &Artifacts{
		RegionImage: filepath.Join(dir, fmt.Sprintf("DetectedArea%d.jpg", id)),
		BoundingBox: filepath.Join(dir, fmt.Sprintf("BoundingBox%d.txt", id)),
	}

	if err := imaging.Save(a.RegionImage, res.ROI); err != nil {
		return nil, err
	}
	if err := WriteBoundingBox(a.BoundingBox, res.Region); err != nil {
		return nil, err
	}

	if digits {
		for n, d := range res.Digits {
			path := filepath.Join(dir, fmt.Sprintf("Digit%d-%d.png", id, n))
			if err := imaging.Save(path, d.Image); err != nil {
				return nil, err
			}
			a.Digits = append(a.Digits, path)
		}
	}

	return a, nil
}

// FormatBoundingBox renders b as one comma separated line of four values in
// %.18e notation.
func FormatBoundingBox(b geometry.Box) string {
	values := []int{b.X, b.Y, b.W, b.H}
	fields := make([]string, len(values))
	for i, v := range values {
		fields[i] = fmt.Sprintf("%.18e", float64(v))
	}
	return strings.Join(fields, ",") + "\n"
}

// WriteBoundingBox writes b to path in the FormatBoundingBox layout.
func WriteBoundingBox(path string, b geometry.Box) error {
	if err := os.WriteFile(path, []byte(FormatBoundingBox(b)), 0o644); err != nil {
		return fmt.Errorf("failed to write bounding box: %w", err)
	}
	return nil
}

// NewDebugObserver returns an Observer that renders each checkpoint's boxes
// onto its image and saves it as <dir>/<id>-<nn>-<stage>.png. Write failures
// are logged and otherwise ignored.
func NewDebugObserver(dir string, id int, logger *slog.Logger) (Observer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		mu  sync.Mutex
		seq int
	)
	outline, _ := imaging.ParseHexColor("#0000FF")

	return func(stage Stage, img image.Image, boxes []geometry.Box) {
		mu.Lock()
		n := seq
		seq++
		mu.Unlock()

		path := filepath.Join(dir, fmt.Sprintf("%d-%02d-%s.png", id, n, stage))
		if err := imaging.Save(path, imaging.DrawBoxes(img, boxes, outline)); err != nil {
			logger.Warn("Failed to write debug image", "stage", stage, "path", path, "err", err)
		}
	}, nil
}
