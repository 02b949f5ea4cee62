package imaging

import (
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// BitmapCache provides thread-safe caching of page bitmaps loaded from disk.
//
// Entries are keyed by path and depth, so the same file may be held once as
// 8-bit grey and once as 24-bit colour. Once a bitmap is loaded, subsequent
// Load calls for the same key return the cached copy without disk I/O.
//
// Cached bitmaps remain in memory until explicitly removed via Evict or
// Clear. Callers must treat returned bitmaps as read-only.
type BitmapCache struct {
	mu      sync.RWMutex
	bitmaps map[string]*Bitmap
}

// NewBitmapCache creates and initializes a new empty bitmap cache.
func NewBitmapCache() *BitmapCache {
	return &BitmapCache{
		bitmaps: make(map[string]*Bitmap),
	}
}

func cacheKey(path string, depth int) string {
	return fmt.Sprintf("%s#%d", path, depth)
}

// Load retrieves a bitmap from the cache or decodes it from disk.
//
// Parameters:
//   - path: image file path. Any format imaging.Open understands (PNG, JPEG,
//     GIF, BMP, TIFF) is accepted; EXIF orientation is applied.
//   - depth: 8 for grey or 24 for RGB.
//
// # Errors
//
//   - the file does not exist or cannot be decoded
//   - depth is not 8 or 24 (contract violation)
func (c *BitmapCache) Load(path string, depth int) (*Bitmap, error) {
	key := cacheKey(path, depth)

	c.mu.RLock()
	if bmp, ok := c.bitmaps[key]; ok {
		c.mu.RUnlock()
		return bmp, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	bmp, err := BitmapFromImage(img, depth)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.bitmaps[key] = bmp
	c.mu.Unlock()

	return bmp, nil
}

// Clear removes all bitmaps from the cache.
func (c *BitmapCache) Clear() {
	c.mu.Lock()
	c.bitmaps = make(map[string]*Bitmap)
	c.mu.Unlock()
}

// Evict removes every cached depth of path. Unknown paths are ignored.
func (c *BitmapCache) Evict(path string) {
	prefix := path + "#"
	c.mu.Lock()
	for key := range c.bitmaps {
		if strings.HasPrefix(key, prefix) {
			delete(c.bitmaps, key)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of cached bitmaps.
func (c *BitmapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bitmaps)
}

// BitmapInfo contains metadata about a loaded bitmap file.
type BitmapInfo struct {
	// Width is the bitmap width in pixels.
	Width int `json:"width"`

	// Height is the bitmap height in pixels.
	Height int `json:"height"`

	// Depth is the bits per pixel the bitmap was loaded with: 8 or 24.
	Depth int `json:"depth"`

	// Format is the file format from the extension, or "unknown".
	Format string `json:"format"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadBitmapInfo loads a bitmap into the cache and describes it.
func LoadBitmapInfo(cache *BitmapCache, path string, depth int) (*Bitmap, *BitmapInfo, error) {
	bmp, err := cache.Load(path, depth)
	if err != nil {
		return nil, nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	return bmp, &BitmapInfo{
		Width:         bmp.Width,
		Height:        bmp.Height,
		Depth:         bmp.Depth,
		Format:        format,
		FileSizeBytes: stat.Size(),
	}, nil
}

// BitmapRect returns r, or the whole bitmap when r is the zero rectangle.
// Other empty rectangles are returned as is so ToPixMap rejects them.
func BitmapRect(bmp *Bitmap, r image.Rectangle) image.Rectangle {
	if r == (image.Rectangle{}) {
		return bmp.Bounds()
	}
	return r
}
