package detection

import (
	"image"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
	"github.com/ironsheep/reflow-ocr/internal/imaging"
)

// DilationDetector finds words without an OCR engine: ink is fused
// horizontally until each word is one connected blob.
//
// MinWidth..MaxWidth and MinHeight..MaxHeight bound the accepted blob size
// (inclusive) in working coordinates, i.e. after reduction. Reduction is 1
// (full resolution) or 2 (one 2x rank-1 reduction before segmenting; boxes
// are scaled back to pixel-map coordinates). Radius is the dilation radius;
// 0 picks one from the glyph height. A zero Sort uses DilationPreset.
type DilationDetector struct {
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
	Reduction int
	Radius    int
	Sort      SortParams
}

// NewDilationDetector returns a detector with the reflow defaults: words
// between 10x10 and 300x100 pixels at full resolution.
func NewDilationDetector() *DilationDetector {
	return &DilationDetector{
		MinWidth:  10,
		MinHeight: 10,
		MaxWidth:  300,
		MaxHeight: 100,
		Reduction: 1,
		Sort:      DilationPreset,
	}
}

// Detect binarizes pix at imaging.BinarizeThreshold and runs DetectBinary.
func (d *DilationDetector) Detect(pix *image.Gray) (*Result, error) {
	if pix == nil {
		return nil, apperrors.NewContractViolation("detection.DilationDetector", "pixmap", "pixel map is nil")
	}
	return d.DetectBinary(imaging.Binarize(pix))
}

// DetectBinary finds word boxes in a binary map (ink 0, paper 255). Result
// images are crops of bin.
func (d *DilationDetector) DetectBinary(bin *image.Gray) (*Result, error) {
	const op = "detection.DilationDetector"
	if bin == nil {
		return nil, apperrors.NewContractViolation(op, "pixmap", "binary map is nil")
	}
	if d.Reduction != 1 && d.Reduction != 2 {
		return nil, apperrors.NewContractViolation(op, "reduction", "reduction %d not in {1,2}", d.Reduction)
	}

	work := bin
	if d.Reduction == 2 {
		reduced, err := imaging.ReduceRankBinary2(bin)
		if err != nil {
			return nil, err
		}
		work = reduced
	}

	rects, err := imaging.WordBoxesByDilation(work, d.Radius)
	if err != nil {
		return nil, err
	}

	var boxes []Box
	var images []*image.Gray
	for _, r := range rects {
		if !d.accepts(r) {
			continue
		}
		box := BoxFromRect(r).Scale(d.Reduction)
		sub := imaging.CropGray(bin, box.Rect())
		if sub == nil {
			continue
		}
		// Geometry follows the clipped crop
		box.W, box.H = sub.Bounds().Dx(), sub.Bounds().Dy()
		boxes = append(boxes, box)
		images = append(images, sub)
	}

	sortParams := d.Sort
	if sortParams == (SortParams{}) {
		sortParams = DilationPreset
	}
	return assemble(boxes, images, sortParams), nil
}

func (d *DilationDetector) accepts(r image.Rectangle) bool {
	w, h := r.Dx(), r.Dy()
	return w >= d.MinWidth && w <= d.MaxWidth && h >= d.MinHeight && h <= d.MaxHeight
}
