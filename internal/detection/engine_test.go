package detection

import (
	stderrors "errors"
	"image"
	"reflect"
	"testing"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
)

// fakeBoxEngine returns canned rectangles and records the script hint.
type fakeBoxEngine struct {
	rects  []image.Rectangle
	err    error
	gotCJK bool
	calls  int
}

func (f *fakeBoxEngine) DetectWordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error) {
	f.calls++
	f.gotCJK = cjk
	return f.rects, f.err
}

func TestEngineDetector_SortsIntoLines(t *testing.T) {
	engine := &fakeBoxEngine{rects: []image.Rectangle{
		image.Rect(10, 50, 40, 70),
		image.Rect(60, 12, 90, 32),
		image.Rect(10, 10, 40, 30),
	}}
	d := &EngineDetector{Engine: engine, CJK: true}

	res, err := d.Detect(createPage(100, 80))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !engine.gotCJK {
		t.Error("CJK hint not passed to engine")
	}
	want := []Box{
		{X: 10, Y: 10, W: 30, H: 20},
		{X: 60, Y: 12, W: 30, H: 20},
		{X: 10, Y: 50, W: 30, H: 20},
	}
	if !reflect.DeepEqual(res.Boxes, want) {
		t.Errorf("boxes: got %v, want %v", res.Boxes, want)
	}
	if !reflect.DeepEqual(res.LineIndex, []int{0, 0, 1}) {
		t.Errorf("line index: got %v, want [0 0 1]", res.LineIndex)
	}
	if res.Images != nil {
		t.Error("engine path should not produce images")
	}
}

func TestEngineDetector_ClipsToPage(t *testing.T) {
	engine := &fakeBoxEngine{rects: []image.Rectangle{
		image.Rect(90, 10, 120, 30),
		image.Rect(200, 200, 210, 210),
	}}
	d := &EngineDetector{Engine: engine}

	res, err := d.Detect(createPage(100, 80))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	want := []Box{{X: 90, Y: 10, W: 10, H: 20}}
	if !reflect.DeepEqual(res.Boxes, want) {
		t.Errorf("boxes: got %v, want %v", res.Boxes, want)
	}
}

func TestEngineDetector_NoWords(t *testing.T) {
	d := &EngineDetector{Engine: &fakeBoxEngine{}}

	res, err := d.Detect(createPage(100, 50))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if res == nil || res.Len() != 0 {
		t.Errorf("want empty result, got %+v", res)
	}
}

func TestEngineDetector_Errors(t *testing.T) {
	engineErr := stderrors.New("tesseract exploded")

	tests := []struct {
		name   string
		d      *EngineDetector
		pix    *image.Gray
		wantIs []error
	}{
		{
			name:   "nil map",
			d:      &EngineDetector{Engine: &fakeBoxEngine{}},
			pix:    nil,
			wantIs: []error{apperrors.ErrContractViolation},
		},
		{
			name:   "no engine",
			d:      &EngineDetector{},
			pix:    createPage(10, 10),
			wantIs: []error{apperrors.ErrDetectionFailed, apperrors.ErrEngineNotReady},
		},
		{
			name:   "engine not ready",
			d:      &EngineDetector{Engine: &fakeBoxEngine{err: apperrors.NewEngineNotReadyError("ocr.Manager.DetectWordBoxes")}},
			pix:    createPage(10, 10),
			wantIs: []error{apperrors.ErrDetectionFailed, apperrors.ErrEngineNotReady},
		},
		{
			name:   "engine init failure",
			d:      &EngineDetector{Engine: &fakeBoxEngine{err: apperrors.NewEngineInitError("", "jpn", engineErr)}},
			pix:    createPage(10, 10),
			wantIs: []error{apperrors.ErrEngineInit, engineErr},
		},
		{
			name:   "engine failure",
			d:      &EngineDetector{Engine: &fakeBoxEngine{err: engineErr}},
			pix:    createPage(10, 10),
			wantIs: []error{apperrors.ErrDetectionFailed, engineErr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.d.Detect(tt.pix)
			if err == nil {
				t.Fatal("expected error")
			}
			if res != nil {
				t.Error("result should be nil on error")
			}
			for _, target := range tt.wantIs {
				if !stderrors.Is(err, target) {
					t.Errorf("error %v should match %v", err, target)
				}
			}
		})
	}
}
