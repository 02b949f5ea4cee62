package detection

import "image"

// WordBoxDetector finds the words in a grey pixel map and returns them in
// reading order.
//
// A map with no words yields an empty Result and a nil error. On error the
// Result is nil.
type WordBoxDetector interface {
	Detect(pix *image.Gray) (*Result, error)
}

// assemble sorts boxes into lines and flattens them. images may be nil; when
// set it is reordered in step with the boxes.
func assemble(boxes []Box, images []*image.Gray, p SortParams) *Result {
	if len(boxes) == 0 {
		return Empty()
	}

	groups := Sort2D(boxes, p)

	res := &Result{}
	res.Boxes, res.LineIndex = Flatten(Group(boxes, groups))
	if images != nil {
		res.Images, _ = Flatten(Group(images, groups))
	}
	return res
}
