package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/reflow-ocr/internal/config"
	"github.com/ironsheep/reflow-ocr/internal/imaging"
	"github.com/ironsheep/reflow-ocr/internal/logging"
	"github.com/ironsheep/reflow-ocr/internal/ocr"
	"github.com/ironsheep/reflow-ocr/internal/wordbox"
)

// Server handles MCP protocol communication
type Server struct {
	cfg     *config.Config
	cache   *imaging.BitmapCache
	manager *ocr.Manager
	boxes   *wordbox.Service
	info    func() interface{}
	log     *logging.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// session is a word-box context handed out to a client, plus the region each
// cached slot was computed for.
type session struct {
	ctx     *wordbox.Context
	regions [2]image.Rectangle
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithEngineInfo sets the provider behind the engine_info tool.
func WithEngineInfo(f func() interface{}) Option {
	return func(s *Server) {
		s.info = f
	}
}

// New creates a new MCP server instance. manager runs OCR for ocr_word and
// for CJK word boxes.
func New(cfg *config.Config, manager *ocr.Manager, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:      cfg,
		cache:    imaging.NewBitmapCache(),
		manager:  manager,
		log:      logging.Discard(),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}

	var engine wordbox.Engine
	if manager != nil {
		engine = manager
	}
	s.boxes = wordbox.NewService(engine,
		wordbox.WithLogger(s.log.With("wordbox")),
		wordbox.WithTessdataDir(cfg.TessdataDir),
		wordbox.WithDilation(cfg.Dilation),
	)
	return s
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve processes newline-delimited JSON-RPC requests from r until EOF and
// writes responses to w.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(&req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "reflow-ocr",
				"version": "0.1.0",
			},
		},
	}
}
