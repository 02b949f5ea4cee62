// Package config loads reflow-ocr settings.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional YAML file named by REFLOW_OCR_CONFIG, and REFLOW_OCR_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Dilation holds the word window and reduction used by the dilation detector.
type Dilation struct {
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
	Reduction int `yaml:"reduction"`
	// Radius is the horizontal dilation radius; 0 picks one from glyph height.
	Radius int `yaml:"radius"`
}

// Config holds service configuration
type Config struct {
	// Tesseract configuration
	TessdataDir string `yaml:"tessdata_dir"`
	Language    string `yaml:"language"`
	DPI         int    `yaml:"dpi"`

	Dilation Dilation `yaml:"dilation"`

	// Logging and debug output
	LogLevel string `yaml:"log_level"`
	DebugDir string `yaml:"debug_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Language: "eng",
		DPI:      300,
		Dilation: Dilation{
			MinWidth:  10,
			MinHeight: 10,
			MaxWidth:  300,
			MaxHeight: 100,
			Reduction: 1,
		},
		LogLevel: "info",
	}
}

// Load loads configuration from the optional YAML file and environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("REFLOW_OCR_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv() {
	if c.TessdataDir == "" {
		c.TessdataDir = os.Getenv("TESSDATA_PREFIX")
	}
	c.TessdataDir = getEnvOrDefault("REFLOW_OCR_TESSDATA", c.TessdataDir)
	c.Language = getEnvOrDefault("REFLOW_OCR_LANGUAGE", c.Language)
	c.DPI = getEnvAsIntOrDefault("REFLOW_OCR_DPI", c.DPI)
	c.LogLevel = getEnvOrDefault("REFLOW_OCR_LOG_LEVEL", c.LogLevel)
	c.DebugDir = getEnvOrDefault("REFLOW_OCR_DEBUG_DIR", c.DebugDir)

	c.Dilation.MinWidth = getEnvAsIntOrDefault("REFLOW_OCR_MIN_WIDTH", c.Dilation.MinWidth)
	c.Dilation.MinHeight = getEnvAsIntOrDefault("REFLOW_OCR_MIN_HEIGHT", c.Dilation.MinHeight)
	c.Dilation.MaxWidth = getEnvAsIntOrDefault("REFLOW_OCR_MAX_WIDTH", c.Dilation.MaxWidth)
	c.Dilation.MaxHeight = getEnvAsIntOrDefault("REFLOW_OCR_MAX_HEIGHT", c.Dilation.MaxHeight)
	c.Dilation.Reduction = getEnvAsIntOrDefault("REFLOW_OCR_REDUCTION", c.Dilation.Reduction)
	c.Dilation.Radius = getEnvAsIntOrDefault("REFLOW_OCR_DILATION_RADIUS", c.Dilation.Radius)
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("language is required")
	}

	if c.DPI < 1 || c.DPI > 2400 {
		return fmt.Errorf("dpi must be between 1 and 2400, got %d", c.DPI)
	}

	d := c.Dilation
	if d.Reduction != 1 && d.Reduction != 2 {
		return fmt.Errorf("reduction must be 1 or 2, got %d", d.Reduction)
	}
	if d.MinWidth < 1 || d.MinHeight < 1 {
		return fmt.Errorf("min word size must be positive, got %dx%d", d.MinWidth, d.MinHeight)
	}
	if d.MaxWidth < d.MinWidth || d.MaxHeight < d.MinHeight {
		return fmt.Errorf("max word size %dx%d below min %dx%d", d.MaxWidth, d.MaxHeight, d.MinWidth, d.MinHeight)
	}
	if d.Radius < 0 {
		return fmt.Errorf("dilation radius must not be negative, got %d", d.Radius)
	}

	if c.DebugDir != "" {
		info, err := os.Stat(c.DebugDir)
		if err != nil {
			return fmt.Errorf("debug_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("debug_dir %s is not a directory", c.DebugDir)
		}
	}

	return nil
}

// getEnvOrDefault gets environment variable or returns default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault gets environment variable as int or returns default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
