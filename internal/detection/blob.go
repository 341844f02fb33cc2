package detection

import (
	"image"

	"github.com/ironsheep/digit-roi/internal/geometry"
)

// Point is a pixel coordinate inside the mask.
type Point struct {
	X int
	Y int
}

// BlobDetector labels connected regions of the mask.
type BlobDetector struct {
	opts Options
}

// NewBlobDetector creates a BlobDetector with the given region limits.
func NewBlobDetector(opts Options) *BlobDetector {
	return &BlobDetector{opts: opts}
}

// Detect returns the bounding box of every 8-connected region of equal mask
// value whose pixel count lies within [MinArea, MaxArea].
//
// Both polarities are labelled, so a dark digit on a light plate and a light
// digit on a dark plate each produce a candidate. The surrounding background
// usually becomes a candidate as well; the shape filter removes it.
// Boxes are returned in raster order of their first pixel.
func (d *BlobDetector) Detect(mask *image.Gray) ([]geometry.Box, error) {
	if err := validMask(mask); err != nil {
		return nil, err
	}

	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	visited := make([]bool, width*height)
	boxes := make([]geometry.Box, 0)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if visited[y*width+x] {
				continue
			}
			box, count := d.fill(mask, visited, x, y)
			if count < d.opts.MinArea || (d.opts.MaxArea > 0 && count > d.opts.MaxArea) {
				continue
			}
			boxes = append(boxes, box)
		}
	}

	return boxes, nil
}

// fill performs an iterative flood fill from (startX, startY) over pixels
// sharing its mask value. It marks every reached pixel visited and returns
// the region's bounding box and pixel count.
func (d *BlobDetector) fill(mask *image.Gray, visited []bool, startX, startY int) (geometry.Box, int) {
	b := mask.Bounds()
	width, height := b.Dx(), b.Dy()
	value := mask.Pix[mask.PixOffset(b.Min.X+startX, b.Min.Y+startY)]

	minX, minY := startX, startY
	maxX, maxY := startX, startY
	count := 0

	visited[startY*width+startX] = true
	stack := []Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				i := ny*width + nx
				if visited[i] || mask.Pix[mask.PixOffset(b.Min.X+nx, b.Min.Y+ny)] != value {
					continue
				}
				visited[i] = true
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}

	return geometry.Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, count
}
