package ocr

import (
	"fmt"
	"image"
	"strings"
)

// DefaultLanguage is used when a caller passes an empty language.
const DefaultLanguage = "eng"

// Word is one recognized word.
type Word struct {
	// Text is the recognized text content.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Box is the word rectangle in the coordinates of the recognized map.
	Box image.Rectangle `json:"box"`
}

// Engine is an OCR backend. Implementations need not be safe for concurrent
// use; Manager serializes every call.
type Engine interface {
	// Init loads language data from dataDir ("" means the backend default).
	// On failure the engine must release whatever it acquired.
	Init(dataDir, lang string) error

	// Language returns the language passed to a successful Init.
	Language() string

	// WordBoxes returns unordered word rectangles in pix coordinates, or
	// per-symbol rectangles when cjk is set.
	WordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error)

	// Recognize reads the text inside rect of pix. dpi <= 0 leaves the
	// backend default.
	Recognize(pix *image.Gray, rect image.Rectangle, dpi int, mode Mode) ([]Word, error)

	// End releases the engine. The engine is unusable afterwards.
	End() error
}

// Factory creates an uninitialized engine.
type Factory func() Engine

// Mode is a Tesseract page segmentation mode.
type Mode int

const (
	// ModeDefault selects ModeSingleWord.
	ModeDefault    Mode = 0
	ModeAuto       Mode = 3
	ModeSingleLine Mode = 7
	ModeSingleWord Mode = 8
	ModeSingleChar Mode = 10
	ModeSparse     Mode = 11
)

// Effective resolves ModeDefault.
func (m Mode) Effective() Mode {
	if m == ModeDefault {
		return ModeSingleWord
	}
	return m
}

func (m Mode) String() string {
	switch m.Effective() {
	case ModeAuto:
		return "auto"
	case ModeSingleLine:
		return "line"
	case ModeSingleWord:
		return "word"
	case ModeSingleChar:
		return "char"
	case ModeSparse:
		return "sparse"
	default:
		return fmt.Sprintf("psm-%d", int(m))
	}
}

// ParseMode maps a mode name to a Mode. The empty string is ModeDefault.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ModeDefault, nil
	case "auto":
		return ModeAuto, nil
	case "line":
		return ModeSingleLine, nil
	case "word":
		return ModeSingleWord, nil
	case "char":
		return ModeSingleChar, nil
	case "sparse":
		return ModeSparse, nil
	}
	return ModeDefault, fmt.Errorf("unknown OCR mode %q (want auto, line, word, char or sparse)", s)
}
