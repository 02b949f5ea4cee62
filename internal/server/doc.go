// Package server implements the MCP (Model Context Protocol) server for
// word-box detection and single-word OCR.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Bitmaps:
//   - bitmap_load: Load an image as an 8-bit or 24-bit bitmap
//
// Word Boxes:
//   - word_boxes: Reading-order word boxes of a region, cached per context
//   - word_image: Crop one word box as PNG
//   - context_release: Drop a context and its cached boxes
//
// Recognition and Engine:
//   - ocr_word: Recognize the single word in a region
//   - engine_language: Active OCR language
//   - engine_shutdown: Stop the OCR engine
//   - engine_info: Backend version and installed languages
//
// # Contexts
//
// word_boxes without a context_id creates a context and returns its ID.
// Each context keeps one result per box kind (reflow, native); later calls
// with that ID return the cached boxes, even for another bitmap, until the
// call sets refresh or the context is released.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000. Coded errors (contract violations, engine failures) carry their
// error_code and details as data; other errors carry the Go error string.
//
// # Usage
//
//	mgr := ocr.NewManager(tesseract.New)
//	srv := server.New(cfg, mgr, server.WithLogger(log))
//	if err := srv.Run(); err != nil {
//	    log.Error("server error", "error", err)
//	}
package server
