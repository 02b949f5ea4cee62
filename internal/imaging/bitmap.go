package imaging

import (
	"image"
	"image/color"
	"image/draw"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
)

// Bitmap is a caller-owned raster in row-major byte layout.
//
// Depth is 8 (one grey byte per pixel) or 24 (R, G, B bytes per pixel).
// Stride is the distance in bytes between row starts; 0 means the rows are
// tightly packed (Width*Depth/8). A Bitmap with Depth 0 carries no pixel data
// and is treated by callers as "nothing to analyse".
type Bitmap struct {
	Width  int
	Height int
	Depth  int
	Stride int
	Data   []byte
}

// RowStride returns the effective stride in bytes.
func (b *Bitmap) RowStride() int {
	if b.Stride > 0 {
		return b.Stride
	}
	return b.Width * b.Depth / 8
}

// Bounds returns the bitmap rectangle with origin (0,0).
func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Validate checks that the bitmap header is consistent with its data.
func (b *Bitmap) Validate() error {
	const op = "imaging.Bitmap.Validate"
	if b == nil {
		return apperrors.NewContractViolation(op, "bitmap", "bitmap is nil")
	}
	if b.Depth != 8 && b.Depth != 24 {
		return apperrors.NewContractViolation(op, "depth", "unsupported depth %d (want 8 or 24)", b.Depth)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return apperrors.NewContractViolation(op, "size", "bitmap is %dx%d", b.Width, b.Height)
	}
	stride := b.RowStride()
	if stride < b.Width*b.Depth/8 {
		return apperrors.NewContractViolation(op, "stride", "stride %d shorter than row of %d pixels", stride, b.Width)
	}
	need := (b.Height-1)*stride + b.Width*b.Depth/8
	if len(b.Data) < need {
		return apperrors.NewContractViolation(op, "data", "have %d bytes, need %d", len(b.Data), need)
	}
	return nil
}

// ToPixMap converts the rect sub-region of bmp into an 8-bit grey pixel map
// whose origin is (0,0) and whose size is rect's size.
//
// Depth-8 rows are copied verbatim. Depth-24 pixels are reduced to grey with
// GreyLevel. The source bitmap is never modified.
//
// Errors (all contract violations):
//   - bmp is nil, has an unsupported depth, or its data is too short
//   - rect is empty or not fully inside the bitmap
func ToPixMap(bmp *Bitmap, rect image.Rectangle) (*image.Gray, error) {
	const op = "imaging.ToPixMap"
	if err := bmp.Validate(); err != nil {
		return nil, err
	}
	if rect.Empty() {
		return nil, apperrors.NewContractViolation(op, "rect", "rectangle %v is empty", rect)
	}
	if !rect.In(bmp.Bounds()) {
		return nil, apperrors.NewContractViolation(op, "rect", "rectangle %v outside bitmap %dx%d", rect, bmp.Width, bmp.Height)
	}

	w, h := rect.Dx(), rect.Dy()
	pix := image.NewGray(image.Rect(0, 0, w, h))
	stride := bmp.RowStride()

	switch bmp.Depth {
	case 8:
		for y := 0; y < h; y++ {
			src := (rect.Min.Y+y)*stride + rect.Min.X
			copy(pix.Pix[y*pix.Stride:y*pix.Stride+w], bmp.Data[src:src+w])
		}
	case 24:
		for y := 0; y < h; y++ {
			src := (rect.Min.Y+y)*stride + rect.Min.X*3
			dst := pix.Pix[y*pix.Stride : y*pix.Stride+w]
			for x := range dst {
				p := bmp.Data[src+x*3 : src+x*3+3]
				dst[x] = GreyLevel(p[0], p[1], p[2])
			}
		}
	}

	return pix, nil
}

// ToGray converts the whole bitmap.
func (b *Bitmap) ToGray() (*image.Gray, error) {
	if b == nil {
		return nil, apperrors.NewContractViolation("imaging.Bitmap.ToGray", "bitmap", "bitmap is nil")
	}
	return ToPixMap(b, b.Bounds())
}

// BitmapFromImage builds a tightly packed Bitmap of the given depth from a
// decoded image. Alpha is composited over white.
func BitmapFromImage(img image.Image, depth int) (*Bitmap, error) {
	const op = "imaging.BitmapFromImage"
	if img == nil {
		return nil, apperrors.NewContractViolation(op, "image", "image is nil")
	}
	if depth != 8 && depth != 24 {
		return nil, apperrors.NewContractViolation(op, "depth", "unsupported depth %d (want 8 or 24)", depth)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Over)

	w, h := rgba.Bounds().Dx(), rgba.Bounds().Dy()
	bmp := &Bitmap{Width: w, Height: h, Depth: depth}
	bmp.Data = make([]byte, w*h*depth/8)

	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+w*4]
		for x := 0; x < w; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			if depth == 8 {
				bmp.Data[y*w+x] = GreyLevel(r, g, b)
				continue
			}
			i := (y*w + x) * 3
			bmp.Data[i], bmp.Data[i+1], bmp.Data[i+2] = r, g, b
		}
	}

	return bmp, nil
}
