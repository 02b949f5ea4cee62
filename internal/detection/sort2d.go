package detection

import "sort"

// SortParams controls how Sort2D assigns boxes to text lines.
//
// A box joins the line whose last box overlaps it most vertically, provided
// overlap+delta >= 0; otherwise it starts a new line. Boxes at least
// MinHeight tall are placed first using Delta1, then shorter boxes (accents,
// punctuation, noise) using Delta2. A negative delta demands real overlap; a
// positive one tolerates a gap of that many pixels.
type SortParams struct {
	Delta1    int `json:"delta1"`
	Delta2    int `json:"delta2"`
	MinHeight int `json:"min_height"`
}

// Presets tuned for the two box sources.
var (
	// EnginePreset suits OCR-engine word and symbol boxes.
	EnginePreset = SortParams{Delta1: 3, Delta2: -5, MinHeight: 5}

	// DilationPreset suits dilation-segmented word boxes.
	DilationPreset = SortParams{Delta1: -1, Delta2: -1, MinHeight: 4}
)

// line is a working text line: member indices plus the box of the last one
// added, which is what new boxes are aligned against.
type line struct {
	members []int
	last    Box
}

// Sort2D groups boxes into text lines and orders them for reading.
//
// The result holds indices into boxes: one slice per line, lines top to
// bottom by the y of their first box, each line left to right by x. Every
// input index appears exactly once. Ties on a sort key fall back to the other
// coordinate and then to input order.
//
// After the two alignment passes, a line whose extent overlaps a larger
// line's extent by at least half its own area, while being at most half the
// larger one's area, is merged into the larger line.
func Sort2D(boxes []Box, p SortParams) [][]int {
	if len(boxes) == 0 {
		return [][]int{}
	}

	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ba, bb := boxes[order[a]], boxes[order[b]]
		if ba.X != bb.X {
			return ba.X < bb.X
		}
		return ba.Y < bb.Y
	})

	var lines []*line
	var small []int

	// Pass 1: full-height boxes
	for _, i := range order {
		if boxes[i].H < p.MinHeight {
			small = append(small, i)
			continue
		}
		lines = alignBox(lines, boxes, i, p.Delta1)
	}

	// Pass 2: short boxes
	for _, i := range small {
		lines = alignBox(lines, boxes, i, p.Delta2)
	}

	lines = mergeContainedLines(lines, boxes)

	groups := make([][]int, len(lines))
	for li, l := range lines {
		g := l.members
		sort.SliceStable(g, func(a, b int) bool {
			ba, bb := boxes[g[a]], boxes[g[b]]
			if ba.X != bb.X {
				return ba.X < bb.X
			}
			if ba.Y != bb.Y {
				return ba.Y < bb.Y
			}
			return g[a] < g[b]
		})
		groups[li] = g
	}

	sort.SliceStable(groups, func(a, b int) bool {
		fa, fb := boxes[groups[a][0]], boxes[groups[b][0]]
		if fa.Y != fb.Y {
			return fa.Y < fb.Y
		}
		return fa.X < fb.X
	})

	return groups
}

// alignBox places box i on the line with maximal vertical overlap against
// that line's last box, or on a new line when no overlap reaches -delta.
func alignBox(lines []*line, boxes []Box, i, delta int) []*line {
	b := boxes[i]
	best, bestOvlp := -1, 0

	for li, l := range lines {
		var ovlp int
		if l.last.Y >= b.Y {
			ovlp = b.Y + b.H - 1 - l.last.Y
		} else {
			ovlp = l.last.Y + l.last.H - 1 - b.Y
		}
		if best < 0 || ovlp > bestOvlp {
			best, bestOvlp = li, ovlp
		}
	}

	if best >= 0 && bestOvlp+delta >= 0 {
		l := lines[best]
		l.members = append(l.members, i)
		l.last = b
		return lines
	}
	return append(lines, &line{members: []int{i}, last: b})
}

// mergeContainedLines folds small lines into larger lines they mostly sit
// inside. Each line is merged at most once, into the first qualifying
// partner; the partner's extent grows accordingly.
func mergeContainedLines(lines []*line, boxes []Box) []*line {
	n := len(lines)
	if n < 2 {
		return lines
	}

	extents := make([]Box, n)
	for i, l := range lines {
		ext := boxes[l.members[0]]
		for _, m := range l.members[1:] {
			ext = ext.Union(boxes[m])
		}
		extents[i] = ext
	}

	merged := make([]bool, n)
	for i := 0; i < n; i++ {
		if merged[i] {
			continue
		}
		for j := i + 1; j < n; j++ {
			if merged[j] {
				continue
			}
			overlap := extents[i].OverlapArea(extents[j])
			if overlap == 0 {
				continue
			}

			large, small := i, j
			if extents[j].Area() > extents[i].Area() {
				large, small = j, i
			}
			la, sa := extents[large].Area(), extents[small].Area()
			if sa == 0 || 2*overlap < sa || 2*sa > la {
				continue
			}

			lines[large].members = append(lines[large].members, lines[small].members...)
			extents[large] = extents[large].Union(extents[small])
			merged[small] = true
			if small == i {
				break
			}
		}
	}

	out := lines[:0]
	for i, l := range lines {
		if !merged[i] {
			out = append(out, l)
		}
	}
	return out
}
