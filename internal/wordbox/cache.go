package wordbox

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ironsheep/reflow-ocr/internal/detection"
)

// Kind selects a cache slot.
type Kind int

const (
	// Reflow boxes are computed on the reflowed page.
	Reflow Kind = iota
	// Native boxes are computed on the original page.
	Native

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Reflow:
		return "reflow"
	case Native:
		return "native"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k names a slot.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// ParseKind maps "reflow" or "native" to a Kind. The empty string is Reflow.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reflow", "reflowed":
		return Reflow, nil
	case "native":
		return Native, nil
	}
	return Reflow, fmt.Errorf("unknown box kind %q (want reflow or native)", s)
}

// Cache holds at most one Result per Kind. It is safe for concurrent use.
type Cache struct {
	mu    sync.RWMutex
	slots [kindCount]*detection.Result
}

// Get returns the cached result for kind.
func (c *Cache) Get(kind Kind) (*detection.Result, bool) {
	if !kind.Valid() {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	r := c.slots[kind]
	return r, r != nil
}

// Set stores r for kind, replacing any cached result. A nil r clears the
// slot.
func (c *Cache) Set(kind Kind, r *detection.Result) {
	if !kind.Valid() {
		return
	}
	c.mu.Lock()
	c.slots[kind] = r
	c.mu.Unlock()
}

// add stores r only if the slot is empty and returns the result the slot
// holds afterwards.
func (c *Cache) add(kind Kind, r *detection.Result) *detection.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.slots[kind] == nil {
		c.slots[kind] = r
	}
	return c.slots[kind]
}

// Invalidate clears the slot for kind.
func (c *Cache) Invalidate(kind Kind) {
	c.Set(kind, nil)
}

// Reset clears every slot.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.slots = [kindCount]*detection.Result{}
	c.mu.Unlock()
}
