package ocr

import (
	"bytes"
	stderrors "errors"
	"image"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
	"github.com/ironsheep/reflow-ocr/internal/logging"
)

// engineLog counts lifecycle calls across every engine a factory produced.
type engineLog struct {
	mu    sync.Mutex
	inits []string
	ends  int
	// detectLangs holds the engine language seen by each WordBoxes call.
	detectLangs []string
}

func (l *engineLog) counts() (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inits), l.ends
}

type fakeEngine struct {
	log     *engineLog
	lang    string
	initErr error
	endErr  error

	boxes    []image.Rectangle
	words    []Word
	recogErr error

	lastMode Mode
	lastDPI  int
	lastPix  *image.Gray
	lastCJK  bool
}

func (e *fakeEngine) Init(dataDir, lang string) error {
	e.log.mu.Lock()
	e.log.inits = append(e.log.inits, lang)
	e.log.mu.Unlock()
	if e.initErr != nil {
		return e.initErr
	}
	e.lang = lang
	return nil
}

func (e *fakeEngine) Language() string { return e.lang }

func (e *fakeEngine) WordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error) {
	e.log.mu.Lock()
	e.log.detectLangs = append(e.log.detectLangs, e.lang)
	e.log.mu.Unlock()
	e.lastPix = pix
	e.lastCJK = cjk
	return e.boxes, nil
}

func (e *fakeEngine) Recognize(pix *image.Gray, rect image.Rectangle, dpi int, mode Mode) ([]Word, error) {
	e.lastPix = pix
	e.lastDPI = dpi
	e.lastMode = mode
	if e.recogErr != nil {
		return nil, e.recogErr
	}
	return e.words, nil
}

func (e *fakeEngine) End() error {
	e.log.mu.Lock()
	e.log.ends++
	e.log.mu.Unlock()
	return e.endErr
}

// newFakeFactory returns a factory whose engines are configured by setup.
func newFakeFactory(setup func(*fakeEngine)) (Factory, *engineLog, *[]*fakeEngine) {
	log := &engineLog{}
	created := &[]*fakeEngine{}
	return func() Engine {
		e := &fakeEngine{log: log}
		if setup != nil {
			setup(e)
		}
		*created = append(*created, e)
		return e
	}, log, created
}

func TestManager_InitSameLanguageIsNoOp(t *testing.T) {
	factory, log, _ := newFakeFactory(nil)
	m := NewManager(factory)

	for i := 0; i < 3; i++ {
		if err := m.Init("", "eng"); err != nil {
			t.Fatalf("Init #%d: %v", i, err)
		}
	}

	inits, ends := log.counts()
	if inits != 1 || ends != 0 {
		t.Errorf("got %d inits and %d ends, want 1 and 0", inits, ends)
	}
	if m.Language() != "eng" {
		t.Errorf("Language() = %q, want eng", m.Language())
	}
}

func TestManager_InitSwitchesLanguage(t *testing.T) {
	factory, log, _ := newFakeFactory(nil)
	m := NewManager(factory)

	if err := m.Init("", "eng"); err != nil {
		t.Fatalf("Init(eng): %v", err)
	}
	if err := m.Init("", "deu"); err != nil {
		t.Fatalf("Init(deu): %v", err)
	}

	inits, ends := log.counts()
	if inits != 2 || ends != 1 {
		t.Errorf("got %d inits and %d ends, want 2 and 1", inits, ends)
	}
	if m.Language() != "deu" {
		t.Errorf("Language() = %q, want deu", m.Language())
	}
}

func TestManager_InitEmptyLanguageMeansDefault(t *testing.T) {
	factory, log, _ := newFakeFactory(nil)
	m := NewManager(factory)

	if err := m.Init("", ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := m.Init("", DefaultLanguage); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if inits, _ := log.counts(); inits != 1 {
		t.Errorf("got %d inits, want 1", inits)
	}
	if m.Language() != DefaultLanguage {
		t.Errorf("Language() = %q, want %q", m.Language(), DefaultLanguage)
	}
}

func TestManager_InitFailure(t *testing.T) {
	factory, log, _ := newFakeFactory(func(e *fakeEngine) {
		e.initErr = stderrors.New("missing traineddata")
	})
	var buf bytes.Buffer
	m := NewManager(factory, WithLogger(logging.NewLoggerTo(&buf, "test", logging.LevelDebug)))

	err := m.Init("/nowhere", "xyz")
	if err == nil {
		t.Fatal("expected init error")
	}
	if !stderrors.Is(err, apperrors.ErrEngineInit) {
		t.Errorf("error %v is not ENGINE_INIT_FAILED", err)
	}
	if m.Ready() {
		t.Error("manager should not be ready after a failed init")
	}
	if m.Language() != "" {
		t.Errorf("Language() = %q, want empty", m.Language())
	}
	if _, ends := log.counts(); ends != 0 {
		t.Errorf("failed engine was ended %d times", ends)
	}
	if !strings.Contains(buf.String(), "failed to start OCR engine") {
		t.Errorf("failure not logged: %q", buf.String())
	}
}

func TestManager_InitFailureAfterSwitchLeavesUninitialized(t *testing.T) {
	fail := false
	factory, log, _ := newFakeFactory(func(e *fakeEngine) {
		if fail {
			e.initErr = stderrors.New("boom")
		}
	})
	m := NewManager(factory)

	if err := m.Init("", "eng"); err != nil {
		t.Fatalf("Init(eng): %v", err)
	}
	fail = true
	if err := m.Init("", "deu"); err == nil {
		t.Fatal("expected Init(deu) to fail")
	}

	if m.Ready() {
		t.Error("manager should be uninitialized")
	}
	if _, ends := log.counts(); ends != 1 {
		t.Errorf("previous engine ended %d times, want 1", ends)
	}
}

func TestManager_NilFactory(t *testing.T) {
	m := NewManager(nil)
	err := m.Init("", "eng")
	if apperrors.CodeOf(err) != apperrors.ErrorEngineInit {
		t.Errorf("CodeOf(%v) = %q, want %q", err, apperrors.CodeOf(err), apperrors.ErrorEngineInit)
	}
}

func TestManager_Shutdown(t *testing.T) {
	factory, log, _ := newFakeFactory(nil)
	m := NewManager(factory)

	// Shutdown before Init is a no-op.
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, ends := log.counts(); ends != 0 {
		t.Fatalf("got %d ends, want 0", ends)
	}

	if err := m.Init("", "eng"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := m.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}

	if _, ends := log.counts(); ends != 1 {
		t.Errorf("got %d ends, want 1", ends)
	}
	if m.Ready() {
		t.Error("manager should not be ready after Shutdown")
	}
}

func TestManager_ShutdownErrorStillResets(t *testing.T) {
	factory, _, _ := newFakeFactory(func(e *fakeEngine) {
		e.endErr = stderrors.New("end failed")
	})
	m := NewManager(factory)
	if err := m.Init("", "eng"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := m.Shutdown(); err == nil {
		t.Error("expected Shutdown to report the engine error")
	}
	if m.Ready() {
		t.Error("manager should be uninitialized after a failed Shutdown")
	}
}

func TestManager_DetectWordBoxes(t *testing.T) {
	want := []image.Rectangle{image.Rect(1, 1, 5, 5), image.Rect(8, 1, 12, 5)}
	factory, _, created := newFakeFactory(func(e *fakeEngine) {
		e.boxes = want
	})
	m := NewManager(factory)
	pix := image.NewGray(image.Rect(0, 0, 20, 10))

	t.Run("not ready", func(t *testing.T) {
		_, err := m.DetectWordBoxes(pix, false)
		if !stderrors.Is(err, apperrors.ErrEngineNotReady) {
			t.Errorf("error = %v, want ENGINE_NOT_READY", err)
		}
	})

	t.Run("nil pixmap", func(t *testing.T) {
		_, err := m.DetectWordBoxes(nil, false)
		if !stderrors.Is(err, apperrors.ErrContractViolation) {
			t.Errorf("error = %v, want CONTRACT_VIOLATION", err)
		}
	})

	t.Run("ready", func(t *testing.T) {
		if err := m.Init("", "chi_sim"); err != nil {
			t.Fatalf("Init: %v", err)
		}
		got, err := m.DetectWordBoxes(pix, true)
		if err != nil {
			t.Fatalf("DetectWordBoxes: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d boxes, want %d", len(got), len(want))
		}
		e := (*created)[0]
		if !e.lastCJK || e.lastPix != pix {
			t.Errorf("engine saw cjk=%v pix=%p, want true and %p", e.lastCJK, e.lastPix, pix)
		}
	})
}

func TestManager_ConcurrentInit(t *testing.T) {
	factory, log, _ := newFakeFactory(nil)
	m := NewManager(factory)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.Init("", "eng"); err != nil {
				t.Errorf("Init: %v", err)
			}
		}()
	}
	wg.Wait()

	if inits, _ := log.counts(); inits != 1 {
		t.Errorf("got %d inits, want 1", inits)
	}
}

func TestManager_DetectWordBoxesFor(t *testing.T) {
	factory, log, _ := newFakeFactory(func(e *fakeEngine) {
		e.boxes = []image.Rectangle{image.Rect(1, 1, 5, 5)}
	})
	m := NewManager(factory)
	pix := image.NewGray(image.Rect(0, 0, 20, 10))

	t.Run("no language and not ready", func(t *testing.T) {
		_, err := m.DetectWordBoxesFor("", "", pix, true)
		if !stderrors.Is(err, apperrors.ErrEngineNotReady) {
			t.Errorf("error = %v, want ENGINE_NOT_READY", err)
		}
	})

	t.Run("nil pixmap", func(t *testing.T) {
		_, err := m.DetectWordBoxesFor("", "chi_sim", nil, true)
		if !stderrors.Is(err, apperrors.ErrContractViolation) {
			t.Errorf("error = %v, want CONTRACT_VIOLATION", err)
		}
		if m.Ready() {
			t.Error("engine started for a rejected call")
		}
	})

	t.Run("initializes the language", func(t *testing.T) {
		got, err := m.DetectWordBoxesFor("", "chi_sim", pix, true)
		if err != nil {
			t.Fatalf("DetectWordBoxesFor: %v", err)
		}
		if len(got) != 1 || m.Language() != "chi_sim" {
			t.Errorf("got %d boxes with language %q", len(got), m.Language())
		}
	})

	t.Run("no language keeps the running engine", func(t *testing.T) {
		if _, err := m.DetectWordBoxesFor("", "", pix, true); err != nil {
			t.Fatalf("DetectWordBoxesFor: %v", err)
		}
		if inits, _ := log.counts(); inits != 1 {
			t.Errorf("got %d inits, want 1", inits)
		}
	})

	t.Run("init failure", func(t *testing.T) {
		failing, _, _ := newFakeFactory(func(e *fakeEngine) {
			e.initErr = stderrors.New("no data")
		})
		_, err := NewManager(failing).DetectWordBoxesFor("", "jpn", pix, true)
		if !stderrors.Is(err, apperrors.ErrEngineInit) {
			t.Errorf("error = %v, want ENGINE_INIT_FAILED", err)
		}
	})
}

func TestManager_DetectWordBoxesForHoldsLanguage(t *testing.T) {
	factory, log, _ := newFakeFactory(func(e *fakeEngine) {
		e.words = []Word{{Text: "word"}}
	})
	m := NewManager(factory)
	pix := image.NewGray(image.Rect(0, 0, 20, 10))
	bmp := createRGBBitmap(20, 10)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := m.DetectWordBoxesFor("", "chi_sim", pix, true); err != nil {
				t.Errorf("DetectWordBoxesFor: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := m.RecognizeWord(bmp, WordRequest{Rect: bmp.Bounds(), Language: "eng"}); err != nil {
				t.Errorf("RecognizeWord: %v", err)
			}
		}()
	}
	wg.Wait()

	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.detectLangs) != 20 {
		t.Fatalf("got %d detections, want 20", len(log.detectLangs))
	}
	for i, lang := range log.detectLangs {
		if lang != "chi_sim" {
			t.Errorf("detection %d ran on a %q engine", i, lang)
		}
	}
}
