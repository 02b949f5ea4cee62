package detection

import (
	stderrors "errors"
	"image"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
)

// BoxEngine is the part of an OCR engine the engine path needs: an unordered
// list of word rectangles (symbol rectangles when cjk is set).
type BoxEngine interface {
	DetectWordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error)
}

// EngineDetector asks an OCR engine for word boxes and sorts them into lines.
// It is the path used for CJK text, where dilation cannot separate words.
type EngineDetector struct {
	Engine BoxEngine
	CJK    bool
	// Sort defaults to EnginePreset when zero.
	Sort SortParams
}

// Detect implements WordBoxDetector. Engine failures, including an engine
// that is not initialized, are reported as detection failures wrapping the
// engine error. An ENGINE_INIT_FAILED error is returned unchanged.
func (d *EngineDetector) Detect(pix *image.Gray) (*Result, error) {
	const op = "detection.EngineDetector"
	if pix == nil {
		return nil, apperrors.NewContractViolation(op, "pixmap", "pixel map is nil")
	}
	if d.Engine == nil {
		return nil, apperrors.NewDetectionError(op, apperrors.NewEngineNotReadyError(op))
	}

	rects, err := d.Engine.DetectWordBoxes(pix, d.CJK)
	if err != nil {
		if stderrors.Is(err, apperrors.ErrEngineInit) {
			return nil, err
		}
		return nil, apperrors.NewDetectionError(op, err)
	}

	bounds := pix.Bounds()
	boxes := make([]Box, 0, len(rects))
	for _, r := range rects {
		r = r.Intersect(bounds)
		if r.Empty() {
			continue
		}
		boxes = append(boxes, BoxFromRect(r))
	}

	sortParams := d.Sort
	if sortParams == (SortParams{}) {
		sortParams = EnginePreset
	}
	return assemble(boxes, nil, sortParams), nil
}
