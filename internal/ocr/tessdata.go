package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckTessdata verifies that dataDir holds a <lang>.traineddata file for
// every '+'-joined part of lang, e.g. "eng+chi_sim". An empty dataDir is not
// checked; the engine then uses its built-in search path.
func CheckTessdata(dataDir, lang string) error {
	if dataDir == "" {
		return nil
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		return fmt.Errorf("tessdata directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("tessdata path %s is not a directory", dataDir)
	}

	if lang == "" {
		lang = DefaultLanguage
	}
	for _, part := range strings.Split(lang, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return fmt.Errorf("malformed language %q", lang)
		}
		path := filepath.Join(dataDir, part+".traineddata")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("missing language data for %q: %w", part, err)
		}
	}
	return nil
}

// Languages lists the languages with a .traineddata file in dataDir.
func Languages(dataDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dataDir, "*.traineddata"))
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(matches))
	for _, m := range matches {
		langs = append(langs, strings.TrimSuffix(filepath.Base(m), ".traineddata"))
	}
	return langs, nil
}
