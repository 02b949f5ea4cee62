package wordbox

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/ironsheep/reflow-ocr/internal/config"
	"github.com/ironsheep/reflow-ocr/internal/detection"
	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
	"github.com/ironsheep/reflow-ocr/internal/imaging"
	"github.com/ironsheep/reflow-ocr/internal/logging"
)

// Engine is what the service needs from the OCR engine manager.
// *ocr.Manager implements it. An empty lang keeps the running engine.
type Engine interface {
	DetectWordBoxesFor(dataDir, lang string, pix *image.Gray, cjk bool) ([]image.Rectangle, error)
}

// languageEngine pins an Engine to one language for a detection.
type languageEngine struct {
	engine  Engine
	dataDir string
	lang    string
}

func (e languageEngine) DetectWordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error) {
	return e.engine.DetectWordBoxesFor(e.dataDir, e.lang, pix, cjk)
}

// Service computes word boxes into context caches.
type Service struct {
	engine   Engine
	dataDir  string
	dilation config.Dilation
	log      *logging.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTessdataDir sets the data directory used when the service initializes
// the engine for a context language.
func WithTessdataDir(dir string) Option {
	return func(s *Service) {
		s.dataDir = dir
	}
}

// WithDilation sets the dilation detector parameters.
func WithDilation(d config.Dilation) Option {
	return func(s *Service) {
		s.dilation = d
	}
}

// NewService creates a service using engine for the CJK path. engine may be
// nil when only the dilation path is used.
func NewService(engine Engine, opts ...Option) *Service {
	s := &Service{
		engine:   engine,
		dilation: config.Default().Dilation,
		log:      logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetWordBoxes makes sure ctx holds word boxes of the given kind for rect of
// bmp. An empty rect means the whole bitmap.
//
// Boxes are computed only when the slot is empty and bmp has a non-zero
// depth. A filled slot is left alone whatever bitmap is passed; use
// Context.Invalidate to force a recomputation. On failure the error is
// logged and returned and the slot stays empty. A region without words
// caches an empty result.
func (s *Service) GetWordBoxes(ctx *Context, bmp *imaging.Bitmap, rect image.Rectangle, kind Kind) error {
	const op = "wordbox.Service.GetWordBoxes"
	if ctx == nil {
		return apperrors.NewContractViolation(op, "context", "context is nil")
	}
	if bmp == nil {
		return apperrors.NewContractViolation(op, "bitmap", "bitmap is nil")
	}
	if !kind.Valid() {
		return apperrors.NewContractViolation(op, "kind", "unknown box kind %d", int(kind))
	}

	if _, ok := ctx.cache.Get(kind); ok {
		return nil
	}
	if bmp.Depth == 0 {
		return nil
	}

	rect = imaging.BitmapRect(bmp, rect)
	pix, err := imaging.ToPixMap(bmp, rect)
	if err != nil {
		return err
	}

	result, err := s.detector(ctx).Detect(pix)
	if err != nil {
		s.log.Warn("failed to get word boxes", "context", ctx.ID, "kind", kind, "cjk", ctx.CJK, "error", err)
		return err
	}

	result = ctx.cache.add(kind, result)
	s.log.Debug("word boxes computed", "context", ctx.ID, "kind", kind, "rect", rect,
		"boxes", result.Len(), "lines", result.LineCount())

	if ctx.Debug && ctx.DebugDir != "" {
		s.writeOverlay(ctx, kind, pix, result)
	}
	return nil
}

// GetReflowedWordBoxes is GetWordBoxes for the Reflow slot.
func (s *Service) GetReflowedWordBoxes(ctx *Context, bmp *imaging.Bitmap, rect image.Rectangle) error {
	return s.GetWordBoxes(ctx, bmp, rect, Reflow)
}

// GetNativeWordBoxes is GetWordBoxes for the Native slot.
func (s *Service) GetNativeWordBoxes(ctx *Context, bmp *imaging.Bitmap, rect image.Rectangle) error {
	return s.GetWordBoxes(ctx, bmp, rect, Native)
}

func (s *Service) detector(ctx *Context) detection.WordBoxDetector {
	if !ctx.CJK {
		return &detection.DilationDetector{
			MinWidth:  s.dilation.MinWidth,
			MinHeight: s.dilation.MinHeight,
			MaxWidth:  s.dilation.MaxWidth,
			MaxHeight: s.dilation.MaxHeight,
			Reduction: s.dilation.Reduction,
			Radius:    s.dilation.Radius,
			Sort:      detection.DilationPreset,
		}
	}

	if s.engine == nil {
		return &detection.EngineDetector{CJK: true}
	}
	return &detection.EngineDetector{
		Engine: languageEngine{engine: s.engine, dataDir: s.dataDir, lang: ctx.Language},
		CJK:    true,
	}
}

func (s *Service) writeOverlay(ctx *Context, kind Kind, pix *image.Gray, result *detection.Result) {
	overlay := imaging.BoxOverlay(pix, detection.Rects(result.Boxes), result.LineIndex)
	path := filepath.Join(ctx.DebugDir, fmt.Sprintf("wordboxes-%s-%s.png", ctx.ID, kind))
	if err := imaging.SaveOverlay(overlay, path); err != nil {
		s.log.Warn("failed to write debug overlay", "path", path, "error", err)
		return
	}
	s.log.Debug("debug overlay written", "path", path)
}
