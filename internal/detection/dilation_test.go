package detection

import (
	stderrors "errors"
	"image"
	"image/color"
	"image/draw"
	"reflect"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
)

// createPage creates a white grey page with black blocks.
func createPage(width, height int, blocks ...image.Rectangle) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, r := range blocks {
		draw.Draw(img, r, image.Black, image.Point{}, draw.Src)
	}
	return img
}

// createTextPage renders text with basicfont.Face7x13 on a white page.
func createTextPage(t *testing.T, width, height int, text string) *image.Gray {
	t.Helper()
	img := createPage(width, height)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 20),
	}
	d.DrawString(text)
	return img
}

// threeBlobs is a page with two blobs on the first line and one below.
func threeBlobs() *image.Gray {
	return createPage(100, 80,
		image.Rect(10, 10, 40, 30),
		image.Rect(60, 10, 90, 30),
		image.Rect(10, 46, 40, 66),
	)
}

func TestDilationDetector_AllWhite(t *testing.T) {
	res, err := NewDilationDetector().Detect(createPage(100, 50))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res == nil {
		t.Fatal("result should be empty, not nil")
	}
	if res.Len() != 0 || len(res.LineIndex) != 0 {
		t.Errorf("got %d boxes, want 0", res.Len())
	}
}

func TestDilationDetector_ThreeBlobsTwoLines(t *testing.T) {
	res, err := NewDilationDetector().Detect(threeBlobs())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	want := []Box{
		{X: 10, Y: 10, W: 30, H: 20},
		{X: 60, Y: 10, W: 30, H: 20},
		{X: 10, Y: 46, W: 30, H: 20},
	}
	if !reflect.DeepEqual(res.Boxes, want) {
		t.Errorf("boxes: got %v, want %v", res.Boxes, want)
	}
	if !reflect.DeepEqual(res.LineIndex, []int{0, 0, 1}) {
		t.Errorf("line index: got %v, want [0 0 1]", res.LineIndex)
	}

	if len(res.Images) != 3 {
		t.Fatalf("images: got %d, want 3", len(res.Images))
	}
	for i, img := range res.Images {
		if img.Bounds().Dx() != res.Boxes[i].W || img.Bounds().Dy() != res.Boxes[i].H {
			t.Errorf("image %d: size %v does not match box %+v", i, img.Bounds(), res.Boxes[i])
		}
	}
}

func TestDilationDetector_Reduction2(t *testing.T) {
	d := NewDilationDetector()
	d.Reduction = 2

	res, err := d.Detect(threeBlobs())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	// Reduced blobs are 15x10, inside the window; boxes come back at full scale
	want := []Box{
		{X: 10, Y: 10, W: 30, H: 20},
		{X: 60, Y: 10, W: 30, H: 20},
		{X: 10, Y: 46, W: 30, H: 20},
	}
	if !reflect.DeepEqual(res.Boxes, want) {
		t.Errorf("boxes: got %v, want %v", res.Boxes, want)
	}
	if !reflect.DeepEqual(res.LineIndex, []int{0, 0, 1}) {
		t.Errorf("line index: got %v, want [0 0 1]", res.LineIndex)
	}
}

func TestDilationDetector_BadReduction(t *testing.T) {
	for _, r := range []int{0, 3, 4, -1} {
		d := NewDilationDetector()
		d.Reduction = r

		res, err := d.Detect(threeBlobs())
		if err == nil {
			t.Errorf("reduction %d: expected error", r)
		}
		if res != nil {
			t.Errorf("reduction %d: result should be nil", r)
		}
		if !stderrors.Is(err, apperrors.ErrContractViolation) {
			t.Errorf("reduction %d: want contract violation, got %v", r, err)
		}
	}
}

func TestDilationDetector_SizeWindow(t *testing.T) {
	page := createPage(200, 100,
		image.Rect(10, 10, 40, 30),   // word
		image.Rect(100, 15, 103, 18), // speck, too small
		image.Rect(10, 50, 190, 60),  // rule, wider than 150
	)

	d := NewDilationDetector()
	d.MaxWidth = 150

	res, err := d.Detect(page)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	want := []Box{{X: 10, Y: 10, W: 30, H: 20}}
	if !reflect.DeepEqual(res.Boxes, want) {
		t.Errorf("boxes: got %v, want %v", res.Boxes, want)
	}
}

func TestDilationDetector_RenderedText(t *testing.T) {
	page := createTextPage(t, 160, 40, "hello world")

	d := &DilationDetector{
		MinWidth: 4, MinHeight: 4,
		MaxWidth: 300, MaxHeight: 100,
		Reduction: 1,
		Radius:    3,
	}
	res, err := d.Detect(page)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if res.Len() != 2 {
		t.Fatalf("got %d words, want 2: %v", res.Len(), res.Boxes)
	}
	if res.LineCount() != 1 {
		t.Errorf("got %d lines, want 1", res.LineCount())
	}
	if res.Boxes[0].X >= res.Boxes[1].X {
		t.Errorf("words out of order: %v", res.Boxes)
	}
}

func TestDilationDetector_Nil(t *testing.T) {
	d := NewDilationDetector()
	if _, err := d.Detect(nil); err == nil {
		t.Error("nil pixel map should fail")
	}
	if _, err := d.DetectBinary(nil); err == nil {
		t.Error("nil binary map should fail")
	}
}

func TestDilationDetector_ImplementsInterface(t *testing.T) {
	var _ WordBoxDetector = NewDilationDetector()
	var _ WordBoxDetector = &EngineDetector{}
}
