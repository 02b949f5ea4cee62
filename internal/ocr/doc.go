// Package ocr manages the shared OCR engine and single-word recognition.
//
// The engine itself is behind the Engine interface; the Tesseract backend
// lives in the tesseract subpackage and is plugged in through a Factory:
//
//	m := ocr.NewManager(tesseract.New, ocr.WithLogger(log))
//	defer m.Shutdown()
//	text, err := m.RecognizeWord(bmp, ocr.WordRequest{Rect: r, DPI: 300, Language: "eng"})
//
// # Engine Lifecycle
//
// A Manager is UNINITIALIZED until Init succeeds, then READY for one
// language. Init with the same language is free. Init with another language
// ends the running engine and starts a new one. Shutdown returns the manager
// to UNINITIALIZED. RecognizeWord calls Init itself; DetectWordBoxes does
// not and fails with ENGINE_NOT_READY when nothing is running.
// DetectWordBoxesFor does both under one lock.
//
// # Prerequisites
//
// Tesseract language data is required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// CheckTessdata reports a missing .traineddata file before the engine is
// started.
//
// # Supported Languages
//
// Languages use Tesseract codes and may be combined with '+':
//   - "eng" - English
//   - "deu" - German
//   - "chi_sim" - Chinese (Simplified)
//   - "jpn+eng" - Japanese with English
//
// # Text Post-Processing
//
// PostProcess normalizes recognized text (NFKC, ASCII quotes and dashes,
// collapsed whitespace) and optionally strips all spaces.
package ocr
