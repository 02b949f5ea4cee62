package detection

import "image"

// Box is an axis-aligned word rectangle in pixel-map coordinates.
type Box struct {
	X int `json:"x"` // Left edge (inclusive)
	Y int `json:"y"` // Top edge (inclusive)
	W int `json:"w"`
	H int `json:"h"`
}

// BoxFromRect converts an image.Rectangle.
func BoxFromRect(r image.Rectangle) Box {
	return Box{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect returns the box as an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.W, b.Y+b.H)
}

// Area returns W*H.
func (b Box) Area() int {
	return b.W * b.H
}

// Scale multiplies position and size by f.
func (b Box) Scale(f int) Box {
	return Box{X: b.X * f, Y: b.Y * f, W: b.W * f, H: b.H * f}
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return BoxFromRect(b.Rect().Union(o.Rect()))
}

// OverlapArea returns the area shared by b and o.
func (b Box) OverlapArea(o Box) int {
	r := b.Rect().Intersect(o.Rect())
	return r.Dx() * r.Dy()
}

// Rects converts a slice of boxes.
func Rects(boxes []Box) []image.Rectangle {
	out := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		out[i] = b.Rect()
	}
	return out
}
