package imaging

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
)

// BinarizeThreshold is the grey level separating ink from paper.
const BinarizeThreshold = 128

// Binary maps in this package are *image.Gray with ink stored as 0 and paper
// as 255, which is what segment.Threshold produces.

// Binarize converts a grey pixel map to a binary map. Pixels darker than
// BinarizeThreshold become ink.
func Binarize(pix *image.Gray) *image.Gray {
	return segment.Threshold(pix, BinarizeThreshold)
}

// IsInk reports whether a binary map value is ink.
func IsInk(v uint8) bool {
	return v < BinarizeThreshold
}

// ReduceRankBinary2 halves a binary map in each dimension. A destination
// pixel is ink when at least one of its 2x2 source pixels is ink (rank 1).
// Odd trailing rows and columns are dropped.
func ReduceRankBinary2(bin *image.Gray) (*image.Gray, error) {
	const op = "imaging.ReduceRankBinary2"
	if bin == nil {
		return nil, apperrors.NewContractViolation(op, "pixmap", "binary map is nil")
	}
	b := bin.Bounds()
	w, h := b.Dx()/2, b.Dy()/2
	if w < 1 || h < 1 {
		return nil, apperrors.NewContractViolation(op, "pixmap", "map %dx%d too small to reduce", b.Dx(), b.Dy())
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		r0 := bin.Pix[(2*y)*bin.Stride:]
		r1 := bin.Pix[(2*y+1)*bin.Stride:]
		for x := 0; x < w; x++ {
			ink := IsInk(r0[2*x]) || IsInk(r0[2*x+1]) || IsInk(r1[2*x]) || IsInk(r1[2*x+1])
			if ink {
				dst.Pix[y*dst.Stride+x] = 0
			} else {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst, nil
}

// WordMask dilates the ink of a binary map horizontally by radius pixels on
// each side, so characters of one word fuse into a single blob. The result
// is a binary map in the same convention as the input.
func WordMask(bin *image.Gray, radius int) *image.Gray {
	if radius < 1 {
		radius = 1
	}
	k := convolution.NewKernel(2*radius+1, 1)
	for i := range k.Matrix {
		k.Matrix[i] = 1
	}

	// Convolve on inverted ink so any inked neighbour pushes the sum above 0.
	spread := convolution.Convolve(effect.Invert(bin), k, &convolution.Options{KeepAlpha: true})

	b := bin.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if spread.Pix[y*spread.Stride+x*4] > 0 {
				mask.Pix[y*mask.Stride+x] = 0
			} else {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}

// ConnectedComponents returns the bounding rectangles of the 8-connected
// regions of mask ink. Each rectangle is tightened to the pixels that are also
// ink in bin, so a dilated mask yields boxes around the original glyphs.
// bin may equal mask. Components are returned in raster order of their first
// pixel.
func ConnectedComponents(mask, bin *image.Gray) []image.Rectangle {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	visited := make([]bool, w*h)
	var rects []image.Rectangle

	at := func(img *image.Gray, x, y int) bool {
		return IsInk(img.Pix[y*img.Stride+x])
	}

	queue := make([]int, 0, 64)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if visited[idx] || !at(mask, x, y) {
				continue
			}

			minX, minY, maxX, maxY := w, h, -1, -1
			visited[idx] = true
			queue = append(queue[:0], idx)

			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				cx, cy := cur%w, cur/w

				if at(bin, cx, cy) {
					minX, minY = minInt(minX, cx), minInt(minY, cy)
					maxX, maxY = maxInt(maxX, cx), maxInt(maxY, cy)
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := cx+dx, cy+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						n := ny*w + nx
						if visited[n] || !at(mask, nx, ny) {
							continue
						}
						visited[n] = true
						queue = append(queue, n)
					}
				}
			}

			if maxX >= 0 {
				rects = append(rects, image.Rect(minX, minY, maxX+1, maxY+1))
			}
		}
	}
	return rects
}

// AutoDilationRadius returns the median glyph height of a binary map divided
// by 8, clamped to [1, 8]. Maps without ink get radius 1.
func AutoDilationRadius(bin *image.Gray) int {
	glyphs := ConnectedComponents(bin, bin)
	if len(glyphs) == 0 {
		return 1
	}
	heights := make([]int, len(glyphs))
	for i, r := range glyphs {
		heights[i] = r.Dy()
	}
	sort.Ints(heights)
	radius := heights[len(heights)/2] / 8
	if radius < 1 {
		radius = 1
	}
	if radius > 8 {
		radius = 8
	}
	return radius
}

// WordBoxesByDilation segments a binary map into word boxes: ink is dilated
// horizontally by radius (AutoDilationRadius when radius is 0) and each fused
// blob becomes one box around its glyphs.
func WordBoxesByDilation(bin *image.Gray, radius int) ([]image.Rectangle, error) {
	if bin == nil {
		return nil, apperrors.NewContractViolation("imaging.WordBoxesByDilation", "pixmap", "binary map is nil")
	}
	if radius < 0 {
		return nil, apperrors.NewContractViolation("imaging.WordBoxesByDilation", "radius", "radius %d is negative", radius)
	}
	if radius == 0 {
		radius = AutoDilationRadius(bin)
	}
	return ConnectedComponents(WordMask(bin, radius), bin), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
