package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"image"

	"github.com/ironsheep/reflow-ocr/internal/detection"
	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
	"github.com/ironsheep/reflow-ocr/internal/imaging"
	"github.com/ironsheep/reflow-ocr/internal/ocr"
	"github.com/ironsheep/reflow-ocr/internal/wordbox"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "bitmap_load", "word_boxes").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// Coded errors carry their ToMap form as data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Debug("tool failed", "tool", params.Name, "error", err)
		var coded *apperrors.Error
		if stderrors.As(err, &coded) {
			return s.errorResponse(req.ID, -32000, "Tool execution failed", coded.ToMap())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Bitmaps
	case "bitmap_load":
		return s.handleBitmapLoad(args)

	// Word boxes
	case "word_boxes":
		return s.handleWordBoxes(args)
	case "word_image":
		return s.handleWordImage(args)
	case "context_release":
		return s.handleContextRelease(args)

	// Recognition and engine
	case "ocr_word":
		return s.handleOCRWord(args)
	case "engine_language":
		return s.handleEngineLanguage(args)
	case "engine_shutdown":
		return s.handleEngineShutdown(args)
	case "engine_info":
		return s.handleEngineInfo(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// regionArgs is the optional region shared by several tools. All zero means
// the whole bitmap.
type regionArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (r regionArgs) rect() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

// bitmapArgs names a bitmap file and the depth to load it with.
type bitmapArgs struct {
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

func (s *Server) loadBitmap(a bitmapArgs) (*imaging.Bitmap, error) {
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Depth == 0 {
		a.Depth = 24
	}
	return s.cache.Load(a.Path, a.Depth)
}

// === Bitmap Handlers ===

func (s *Server) handleBitmapLoad(args json.RawMessage) (interface{}, error) {
	var a bitmapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Depth == 0 {
		a.Depth = 24
	}
	_, info, err := imaging.LoadBitmapInfo(s.cache, a.Path, a.Depth)
	return info, err
}

// === Word Box Handlers ===

// WordBoxesResult is the word_boxes tool result.
type WordBoxesResult struct {
	ContextID string          `json:"context_id"`
	Kind      string          `json:"kind"`
	Region    detection.Box   `json:"region"`
	Count     int             `json:"count"`
	LineCount int             `json:"line_count"`
	Boxes     []detection.Box `json:"boxes"`
	LineIndex []int           `json:"line_index"`
}

func (s *Server) handleWordBoxes(args json.RawMessage) (interface{}, error) {
	var a struct {
		bitmapArgs
		regionArgs
		ContextID string `json:"context_id"`
		Kind      string `json:"kind"`
		CJK       bool   `json:"cjk"`
		Language  string `json:"language"`
		Debug     bool   `json:"debug"`
		Refresh   bool   `json:"refresh"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	kind, err := wordbox.ParseKind(a.Kind)
	if err != nil {
		return nil, err
	}
	bmp, err := s.loadBitmap(a.bitmapArgs)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(a.ContextID)
	if err != nil {
		return nil, err
	}
	if a.ContextID == "" {
		sess.ctx.CJK = a.CJK
		sess.ctx.Language = a.Language
		sess.ctx.Debug = a.Debug
		sess.ctx.DebugDir = s.cfg.DebugDir
	}
	if a.Refresh {
		sess.ctx.Invalidate(kind)
	}

	region := imaging.BitmapRect(bmp, a.rect())
	cached := sess.ctx.Boxes(kind) != nil
	if err := s.boxes.GetWordBoxes(sess.ctx, bmp, region, kind); err != nil {
		if a.ContextID == "" {
			s.releaseSession(sess.ctx.ID)
		}
		return nil, err
	}
	if !cached {
		s.mu.Lock()
		sess.regions[kind] = region
		s.mu.Unlock()
	}

	res := sess.ctx.Boxes(kind)
	if res == nil {
		res = detection.Empty()
	}

	s.mu.Lock()
	used := sess.regions[kind]
	s.mu.Unlock()

	return &WordBoxesResult{
		ContextID: sess.ctx.ID,
		Kind:      kind.String(),
		Region:    detection.BoxFromRect(used),
		Count:     res.Len(),
		LineCount: res.LineCount(),
		Boxes:     res.Boxes,
		LineIndex: res.LineIndex,
	}, nil
}

// session returns the session for id, or a new one when id is empty.
func (s *Server) session(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		sess := &session{ctx: wordbox.NewContext()}
		s.sessions[sess.ctx.ID] = sess
		s.log.Debug("context created", "context", sess.ctx.ID)
		return sess, nil
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown context: %s", id)
	}
	return sess, nil
}

func (s *Server) handleWordImage(args json.RawMessage) (interface{}, error) {
	var a struct {
		bitmapArgs
		ContextID string  `json:"context_id"`
		Kind      string  `json:"kind"`
		Index     int     `json:"index"`
		Scale     float64 `json:"scale"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	if a.ContextID == "" {
		return nil, fmt.Errorf("context_id is required")
	}
	kind, err := wordbox.ParseKind(a.Kind)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(a.ContextID)
	if err != nil {
		return nil, err
	}

	res := sess.ctx.Boxes(kind)
	if a.Index < 0 || a.Index >= res.Len() {
		return nil, fmt.Errorf("word index %d out of range (context has %d %s boxes)", a.Index, res.Len(), kind)
	}

	bmp, err := s.loadBitmap(a.bitmapArgs)
	if err != nil {
		return nil, err
	}
	pix, err := bmp.ToGray()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	origin := sess.regions[kind].Min
	s.mu.Unlock()

	return imaging.CropPNG(pix, res.Boxes[a.Index].Rect().Add(origin), a.Scale)
}

func (s *Server) handleContextRelease(args json.RawMessage) (interface{}, error) {
	var a struct {
		ContextID string `json:"context_id"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ContextID == "" {
		return nil, fmt.Errorf("context_id is required")
	}
	return map[string]interface{}{
		"context_id": a.ContextID,
		"released":   s.releaseSession(a.ContextID),
	}, nil
}

func (s *Server) releaseSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.ctx.Reset()
	delete(s.sessions, id)
	return true
}

// === Recognition and Engine Handlers ===

func (s *Server) handleOCRWord(args json.RawMessage) (interface{}, error) {
	var a struct {
		bitmapArgs
		regionArgs
		DPI         int    `json:"dpi"`
		Language    string `json:"language"`
		Mode        string `json:"mode"`
		MaxLength   int    `json:"max_length"`
		PostProcess bool   `json:"post_process"`
		AllowSpaces bool   `json:"allow_spaces"`
	}
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.manager == nil {
		return nil, apperrors.NewEngineNotReadyError("server.ocr_word")
	}

	mode, err := ocr.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	bmp, err := s.loadBitmap(a.bitmapArgs)
	if err != nil {
		return nil, err
	}
	if a.DPI == 0 {
		a.DPI = s.cfg.DPI
	}
	if a.Language == "" {
		a.Language = s.cfg.Language
	}

	rect := imaging.BitmapRect(bmp, a.rect())
	text, err := s.manager.RecognizeWord(bmp, ocr.WordRequest{
		Rect:        rect,
		DPI:         a.DPI,
		DataDir:     s.cfg.TessdataDir,
		Language:    a.Language,
		Mode:        mode,
		MaxLength:   a.MaxLength,
		PostProcess: a.PostProcess,
		AllowSpaces: a.AllowSpaces,
	})
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"text":     text,
		"found":    text != "",
		"language": s.manager.Language(),
		"mode":     mode.String(),
		"region":   detection.BoxFromRect(rect),
	}, nil
}

func (s *Server) handleEngineLanguage(args json.RawMessage) (interface{}, error) {
	if s.manager == nil {
		return map[string]interface{}{"language": "", "ready": false}, nil
	}
	return map[string]interface{}{
		"language": s.manager.Language(),
		"ready":    s.manager.Ready(),
	}, nil
}

func (s *Server) handleEngineShutdown(args json.RawMessage) (interface{}, error) {
	if s.manager == nil {
		return map[string]interface{}{"shutdown": true}, nil
	}
	if err := s.manager.Shutdown(); err != nil {
		return nil, err
	}
	return map[string]interface{}{"shutdown": true}, nil
}

func (s *Server) handleEngineInfo(args json.RawMessage) (interface{}, error) {
	result := map[string]interface{}{
		"language":     "",
		"ready":        false,
		"tessdata_dir": s.cfg.TessdataDir,
	}
	if s.manager != nil {
		result["language"] = s.manager.Language()
		result["ready"] = s.manager.Ready()
	}
	if s.info != nil {
		result["backend"] = s.info()
	}
	if s.cfg.TessdataDir != "" {
		if langs, err := ocr.Languages(s.cfg.TessdataDir); err == nil {
			result["installed_languages"] = langs
		}
	}
	return result, nil
}
