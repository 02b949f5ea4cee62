package ocr

import (
	"image"
	"unicode/utf8"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
	"github.com/ironsheep/reflow-ocr/internal/imaging"
)

// WordRequest describes one single-word recognition.
type WordRequest struct {
	// Rect is the word region in bitmap coordinates.
	Rect image.Rectangle

	// DPI is the resolution hint passed to the engine.
	DPI int

	// DataDir and Language select the engine (see Manager.Init).
	DataDir  string
	Language string

	// Mode is the page segmentation mode; ModeDefault means single word.
	Mode Mode

	// MaxLength bounds the result like a C buffer of that size: at most
	// MaxLength-1 bytes are kept, cut on a rune boundary. <= 0 is unlimited.
	MaxLength int

	// PostProcess enables PostProcess on the result; AllowSpaces is its
	// space policy.
	PostProcess bool
	AllowSpaces bool
}

// RecognizeWord reads the text of req.Rect in bmp.
//
// The engine is (re)initialized for req.Language first. The region is
// converted to grey, recognized, and the first recognized word is returned.
// No recognized word yields "" and a nil error. Every error path returns "".
func (m *Manager) RecognizeWord(bmp *imaging.Bitmap, req WordRequest) (string, error) {
	const op = "ocr.Manager.RecognizeWord"

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.initLocked(req.DataDir, req.Language); err != nil {
		return "", err
	}

	pix, err := imaging.ToPixMap(bmp, req.Rect)
	if err != nil {
		return "", err
	}

	words, err := m.engine.Recognize(pix, pix.Bounds(), req.DPI, req.Mode.Effective())
	if err != nil {
		m.log.Warn("word recognition failed", "rect", req.Rect, "error", err)
		return "", apperrors.NewRecognitionError(op, err)
	}
	if len(words) == 0 {
		return "", nil
	}

	text := truncateUTF8(words[0].Text, req.MaxLength)
	if req.PostProcess {
		text = PostProcess(text, req.AllowSpaces)
	}
	return text, nil
}

// truncateUTF8 keeps at most maxLength-1 bytes of s without splitting a
// rune. maxLength <= 0 keeps everything.
func truncateUTF8(s string, maxLength int) string {
	if maxLength <= 0 {
		return s
	}
	limit := maxLength - 1
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
