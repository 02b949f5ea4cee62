// Package tesseract is the Tesseract backend for ocr.Manager, built on the
// gosseract bindings.
package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/reflow-ocr/internal/imaging"
	"github.com/ironsheep/reflow-ocr/internal/ocr"
)

// Engine adapts a gosseract client to ocr.Engine.
type Engine struct {
	client  *gosseract.Client
	lang    string
	dataDir string
}

// New returns an uninitialized engine. It has the ocr.Factory signature.
func New() ocr.Engine {
	return &Engine{}
}

// Init starts Tesseract for lang. The language data is checked up front and
// loaded eagerly with a one-pixel warm-up page so a bad language fails here
// rather than on the first recognition.
func (e *Engine) Init(dataDir, lang string) error {
	if e.client != nil {
		return fmt.Errorf("engine already initialized for %q", e.lang)
	}
	if err := ocr.CheckTessdata(dataDir, lang); err != nil {
		return err
	}

	client := gosseract.NewClient()
	if err := configure(client, dataDir, lang); err != nil {
		client.Close()
		return err
	}

	e.client = client
	e.lang = lang
	e.dataDir = dataDir
	return nil
}

func configure(client *gosseract.Client, dataDir, lang string) error {
	if dataDir != "" {
		if err := client.SetTessdataPrefix(dataDir); err != nil {
			return fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return fmt.Errorf("failed to set language: %w", err)
	}

	blank := image.NewGray(image.Rect(0, 0, 1, 1))
	blank.Pix[0] = 255
	if err := setImage(client, blank); err != nil {
		return err
	}
	if _, err := client.Text(); err != nil {
		return fmt.Errorf("failed to load tesseract language %q: %w", lang, err)
	}
	return nil
}

// Language returns the initialized language.
func (e *Engine) Language() string {
	return e.lang
}

// WordBoxes runs page layout analysis on pix and returns word rectangles, or
// symbol rectangles when cjk is set.
func (e *Engine) WordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error) {
	if e.client == nil {
		return nil, fmt.Errorf("tesseract engine not initialized")
	}
	if err := e.client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return nil, fmt.Errorf("failed to set page mode: %w", err)
	}
	if err := setImage(e.client, pix); err != nil {
		return nil, err
	}

	level := gosseract.RIL_WORD
	if cjk {
		level = gosseract.RIL_SYMBOL
	}
	boxes, err := e.client.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("failed to get bounding boxes: %w", err)
	}

	offset := pix.Bounds().Min
	rects := make([]image.Rectangle, 0, len(boxes))
	for _, box := range boxes {
		if box.Box.Empty() {
			continue
		}
		rects = append(rects, box.Box.Add(offset))
	}
	return rects, nil
}

// Recognize reads the text inside rect of pix using the given page
// segmentation mode. Word boxes are returned in pix coordinates.
func (e *Engine) Recognize(pix *image.Gray, rect image.Rectangle, dpi int, mode ocr.Mode) ([]ocr.Word, error) {
	if e.client == nil {
		return nil, fmt.Errorf("tesseract engine not initialized")
	}

	region := imaging.CropGray(pix, rect)
	if region == nil {
		return nil, nil
	}

	if err := e.client.SetPageSegMode(gosseract.PageSegMode(mode.Effective())); err != nil {
		return nil, fmt.Errorf("failed to set page mode: %w", err)
	}
	if err := e.client.SetVariable("user_defined_dpi", dpiValue(dpi)); err != nil {
		return nil, fmt.Errorf("failed to set dpi: %w", err)
	}
	if err := setImage(e.client, region); err != nil {
		return nil, err
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	offset := rect.Intersect(pix.Bounds()).Min
	words := make([]ocr.Word, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		words = append(words, ocr.Word{
			Text:       text,
			Confidence: float64(box.Confidence) / 100.0,
			Box:        box.Box.Add(offset),
		})
	}
	return words, nil
}

// End closes the client. Calling End twice is harmless.
func (e *Engine) End() error {
	if e.client == nil {
		return nil
	}
	err := e.client.Close()
	e.client = nil
	e.lang = ""
	return err
}

// setImage hands pix to the client as an in-memory PNG.
func setImage(client *gosseract.Client, pix *image.Gray) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pix); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	return nil
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// Info describes the OCR backend.
type Info struct {
	Available   bool     `json:"available"`
	Version     string   `json:"version,omitempty"`
	Error       string   `json:"error,omitempty"`
	Backend     string   `json:"backend"`
	TessdataDir string   `json:"tessdata_dir,omitempty"`
	Languages   []string `json:"languages,omitempty"`
}

// GetInfo reports the Tesseract version and the languages installed in
// dataDir.
func GetInfo(dataDir string) Info {
	info := Info{
		Backend:     "gosseract",
		TessdataDir: dataDir,
	}

	version := Version()
	if version == "" {
		info.Error = "tesseract library not available"
		return info
	}
	info.Version = version
	info.Available = true

	if dataDir != "" {
		langs, err := ocr.Languages(dataDir)
		if err != nil {
			info.Error = err.Error()
		}
		info.Languages = langs
	}
	return info
}

// dpiValue is the user_defined_dpi setting for dpi. Variables persist on the
// client, so dpi <= 0 writes Tesseract's "0" (unset) instead of being skipped.
func dpiValue(dpi int) string {
	if dpi <= 0 {
		return "0"
	}
	return strconv.Itoa(dpi)
}
