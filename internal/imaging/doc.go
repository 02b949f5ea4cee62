// Package imaging provides the raster primitives used by word-box detection.
//
// It converts caller bitmaps into 8-bit grey pixel maps, binarizes them, and
// segments binary maps into word-sized connected components. It also handles
// the supporting chores around those steps: loading page bitmaps from disk,
// cropping sub-images, and drawing debug overlays of detected boxes.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, Min is inclusive and Max is exclusive (image.Rectangle)
//
// Pixel maps returned by ToPixMap and CropGray always have origin (0,0).
//
// # Pixel Conventions
//
// Grey maps store luminance, 0 = black. Binary maps are *image.Gray holding
// only 0 (ink) and 255 (paper); IsInk is the predicate for both.
//
// # Thread Safety
//
// BitmapCache is safe for concurrent use. All other functions are stateless
// and never modify their inputs.
//
// # Error Handling
//
// Precondition failures (nil maps, bad depths, rectangles outside the
// bitmap) are reported as contract violations from internal/errors.
package imaging
