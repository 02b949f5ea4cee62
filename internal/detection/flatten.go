package detection

import "image"

// Result is a flat, line-ordered word-box collection.
//
// Boxes are in reading order: lines top to bottom, words left to right.
// LineIndex[i] is the zero-based line of Boxes[i]; it is non-decreasing and
// has the same length as Boxes. Images, when present, holds the sub-image
// cropped for each box and is parallel to Boxes.
type Result struct {
	Boxes     []Box         `json:"boxes"`
	LineIndex []int         `json:"line_index"`
	Images    []*image.Gray `json:"-"`
}

// Empty returns a successful result with no boxes.
func Empty() *Result {
	return &Result{Boxes: []Box{}, LineIndex: []int{}}
}

// Len returns the number of boxes.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Boxes)
}

// LineCount returns the number of text lines.
func (r *Result) LineCount() int {
	if r.Len() == 0 {
		return 0
	}
	return r.LineIndex[len(r.LineIndex)-1] + 1
}

// Lines regroups the flat boxes by line.
func (r *Result) Lines() [][]Box {
	lines := make([][]Box, r.LineCount())
	for i, b := range r.Boxes {
		lines[r.LineIndex[i]] = append(lines[r.LineIndex[i]], b)
	}
	return lines
}

// Flatten concatenates line groups in order and reports, for each element,
// the zero-based group it came from.
//
//	flat, idx := Flatten([][]string{{"a", "b"}, {"c"}})
//	// flat = [a b c], idx = [0 0 1]
//
// Empty groups contribute nothing but still consume a line number.
func Flatten[T any](lines [][]T) ([]T, []int) {
	n := 0
	for _, line := range lines {
		n += len(line)
	}

	flat := make([]T, 0, n)
	lineIndex := make([]int, 0, n)
	for i, line := range lines {
		flat = append(flat, line...)
		for range line {
			lineIndex = append(lineIndex, i)
		}
	}
	return flat, lineIndex
}

// Group materialises index groups against items.
func Group[T any](items []T, groups [][]int) [][]T {
	out := make([][]T, len(groups))
	for i, g := range groups {
		out[i] = make([]T, len(g))
		for j, idx := range g {
			out[i][j] = items[idx]
		}
	}
	return out
}
