package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// bitmapProperties returns the path/depth schema shared by bitmap tools,
// plus the optional region when withRegion is set.
func bitmapProperties(withRegion bool) map[string]interface{} {
	props := map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file",
		},
		"depth": map[string]interface{}{
			"type":        "integer",
			"description": "Bits per pixel to load the bitmap with: 8 (grey) or 24 (RGB). Default 24",
			"enum":        []int{8, 24},
			"default":     24,
		},
	}
	if withRegion {
		props["x1"] = map[string]interface{}{
			"type":        "integer",
			"description": "Left edge X coordinate of the region (0-based)",
		}
		props["y1"] = map[string]interface{}{
			"type":        "integer",
			"description": "Top edge Y coordinate of the region (0-based)",
		}
		props["x2"] = map[string]interface{}{
			"type":        "integer",
			"description": "Right edge X coordinate (exclusive). Omit the region for the whole bitmap",
		}
		props["y2"] = map[string]interface{}{
			"type":        "integer",
			"description": "Bottom edge Y coordinate (exclusive)",
		}
	}
	return props
}

func kindProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Box kind: reflow or native. Each context caches one result per kind",
		"enum":        []string{"reflow", "native"},
		"default":     "reflow",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	wordBoxProps := bitmapProperties(true)
	wordBoxProps["context_id"] = map[string]interface{}{
		"type":        "string",
		"description": "Context returned by an earlier word_boxes call. Omit to create a new context",
	}
	wordBoxProps["kind"] = kindProperty()
	wordBoxProps["cjk"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Detect CJK text through the OCR engine at symbol level (new contexts only)",
		"default":     false,
	}
	wordBoxProps["language"] = map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language for CJK detection, e.g. chi_sim or jpn (new contexts only)",
	}
	wordBoxProps["debug"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Write a box overlay PNG into the configured debug directory (new contexts only)",
		"default":     false,
	}
	wordBoxProps["refresh"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Drop the cached boxes of this kind and recompute them from the given bitmap",
		"default":     false,
	}

	wordImageProps := bitmapProperties(false)
	wordImageProps["context_id"] = map[string]interface{}{
		"type":        "string",
		"description": "Context holding the word boxes",
	}
	wordImageProps["kind"] = kindProperty()
	wordImageProps["index"] = map[string]interface{}{
		"type":        "integer",
		"description": "Index of the word in reading order",
	}
	wordImageProps["scale"] = map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
		"default":     1.0,
	}

	ocrWordProps := bitmapProperties(true)
	ocrWordProps["dpi"] = map[string]interface{}{
		"type":        "integer",
		"description": "Resolution hint for the engine. Default from configuration",
	}
	ocrWordProps["language"] = map[string]interface{}{
		"type":        "string",
		"description": "Tesseract language code, e.g. eng, deu, jpn+eng. Switching language restarts the engine",
	}
	ocrWordProps["mode"] = map[string]interface{}{
		"type":        "string",
		"description": "Page segmentation mode. Default word",
		"enum":        []string{"word", "line", "char", "sparse", "auto"},
		"default":     "word",
	}
	ocrWordProps["max_length"] = map[string]interface{}{
		"type":        "integer",
		"description": "Output buffer size in bytes; at most max_length-1 bytes are returned. 0 for unlimited",
		"default":     0,
	}
	ocrWordProps["post_process"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Normalize the recognized text (Unicode compatibility forms, quotes, dashes, whitespace)",
		"default":     false,
	}
	ocrWordProps["allow_spaces"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Keep single spaces between words when post-processing; otherwise all spaces are removed",
		"default":     false,
	}

	return []Tool{
		// Bitmaps
		{
			Name:        "bitmap_load",
			Description: "Load an image file as an 8-bit or 24-bit bitmap and return its dimensions and format. Loaded bitmaps are cached for later calls.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": bitmapProperties(false),
				"required":   []string{"path"},
			},
		},

		// Word boxes
		{
			Name:        "word_boxes",
			Description: "Find the word boxes of a bitmap region in reading order: boxes are grouped into lines top to bottom, words left to right, with a parallel line index. Results are cached per context and kind; a later call with the same context returns the cached boxes even for a different bitmap unless refresh is set.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": wordBoxProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "word_image",
			Description: "Crop one word box of a context from its bitmap and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": wordImageProps,
				"required":   []string{"path", "context_id", "index"},
			},
		},
		{
			Name:        "context_release",
			Description: "Release a word-box context and its cached boxes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"context_id": map[string]interface{}{
						"type":        "string",
						"description": "Context to release",
					},
				},
				"required": []string{"context_id"},
			},
		},

		// Recognition and engine
		{
			Name:        "ocr_word",
			Description: "Recognize the single word in a bitmap region with Tesseract. Returns an empty text when no word is found.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": ocrWordProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "engine_language",
			Description: "Report the language the OCR engine is initialized for, or an empty string when it is not running.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "engine_shutdown",
			Description: "Shut down the OCR engine. The next recognition starts it again.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "engine_info",
			Description: "Report OCR backend availability, version and installed languages.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
