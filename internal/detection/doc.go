// Package detection finds word boxes in page images and orders them into
// text lines.
//
// Two detectors implement WordBoxDetector:
//
//   - DilationDetector: binarize, optionally reduce 2x, fuse glyphs
//     horizontally into word blobs, and keep blobs inside a size window.
//     No OCR engine is involved.
//   - EngineDetector: ask an OCR engine for word (or, for CJK, symbol)
//     rectangles.
//
// Both feed their unordered boxes through Sort2D, which groups them into
// lines, and Flatten, which turns the groups into a reading-order Result
// with a parallel line-index array.
//
// # Algorithm Overview
//
// Sort2D works on indices, never on copies:
//
//  1. Order boxes left to right.
//  2. Place tall boxes on the line whose last box overlaps them most
//     vertically (SortParams.Delta1 sets the tolerance).
//  3. Place short boxes the same way with SortParams.Delta2.
//  4. Merge small lines that sit mostly inside a larger one.
//  5. Sort each line by x and the lines by the y of their first box.
//
// The resulting [][]int is applied to boxes and to any parallel data, such
// as cropped sub-images, with Group.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner of the pixel map
//   - X increases rightward
//   - Y increases downward
package detection
