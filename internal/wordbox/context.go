package wordbox

import (
	"github.com/google/uuid"

	"github.com/ironsheep/reflow-ocr/internal/detection"
)

// Context is the caller-held state word boxes are cached on.
type Context struct {
	// ID identifies the context in logs and debug file names.
	ID string

	// CJK routes detection through the OCR engine at symbol level.
	CJK bool

	// Language, when set, is the engine language for the CJK path.
	Language string

	// Debug writes a box overlay PNG into DebugDir after each computation.
	Debug    bool
	DebugDir string

	cache Cache
}

// NewContext returns an empty context with a fresh ID.
func NewContext() *Context {
	return &Context{ID: uuid.NewString()}
}

// Boxes returns the cached result for kind, or nil when none is cached.
func (c *Context) Boxes(kind Kind) *detection.Result {
	r, _ := c.cache.Get(kind)
	return r
}

// ReflowedBoxes returns the cached reflow result or nil.
func (c *Context) ReflowedBoxes() *detection.Result {
	return c.Boxes(Reflow)
}

// NativeBoxes returns the cached native result or nil.
func (c *Context) NativeBoxes() *detection.Result {
	return c.Boxes(Native)
}

// Invalidate drops the cached result for kind so the next request
// recomputes it.
func (c *Context) Invalidate(kind Kind) {
	c.cache.Invalidate(kind)
}

// Reset drops every cached result.
func (c *Context) Reset() {
	c.cache.Reset()
}
