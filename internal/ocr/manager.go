package ocr

import (
	stderrors "errors"
	"image"
	"sync"

	apperrors "github.com/ironsheep/reflow-ocr/internal/errors"
	"github.com/ironsheep/reflow-ocr/internal/logging"
)

var errNoFactory = stderrors.New("no engine factory configured")

// Manager owns the single shared OCR engine.
//
// The engine is created lazily by Init and recreated when the requested
// language changes. All methods are safe for concurrent use; one mutex
// serializes every engine call.
type Manager struct {
	mu      sync.Mutex
	factory Factory
	engine  Engine
	lang    string
	dataDir string
	log     *logging.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l *logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewManager creates an uninitialized manager that builds engines with
// factory.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory: factory,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init makes sure an engine for lang is ready.
//
// If an engine is running with the same language nothing happens, even if
// dataDir differs. If it runs with another language it is ended first. An
// empty lang means DefaultLanguage. On failure the manager is left
// uninitialized and an ENGINE_INIT_FAILED error is returned.
func (m *Manager) Init(dataDir, lang string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked(dataDir, lang)
}

func (m *Manager) initLocked(dataDir, lang string) error {
	if lang == "" {
		lang = DefaultLanguage
	}

	if m.engine != nil {
		if m.lang == lang {
			return nil
		}
		m.log.Info("switching OCR language", "from", m.lang, "to", lang)
		_ = m.endLocked()
	}

	if m.factory == nil {
		return apperrors.NewEngineInitError(dataDir, lang, errNoFactory)
	}

	engine := m.factory()
	if err := engine.Init(dataDir, lang); err != nil {
		m.log.Error("failed to start OCR engine", "language", lang, "data_dir", dataDir, "error", err)
		return apperrors.NewEngineInitError(dataDir, lang, err)
	}

	m.engine = engine
	m.lang = lang
	m.dataDir = dataDir
	m.log.Info("OCR engine ready", "language", lang, "data_dir", dataDir)
	return nil
}

// Language returns the active language, or "" when uninitialized.
func (m *Manager) Language() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engine == nil {
		return ""
	}
	return m.lang
}

// Ready reports whether an engine is initialized.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine != nil
}

// Shutdown ends the engine. It is a no-op when uninitialized. The manager is
// uninitialized afterwards even if the engine reports an error.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.endLocked()
}

func (m *Manager) endLocked() error {
	if m.engine == nil {
		return nil
	}
	err := m.engine.End()
	if err != nil {
		m.log.Warn("OCR engine did not shut down cleanly", "language", m.lang, "error", err)
	} else {
		m.log.Debug("OCR engine ended", "language", m.lang)
	}
	m.engine = nil
	m.lang = ""
	m.dataDir = ""
	return err
}

// DetectWordBoxes asks the engine for unordered word rectangles (symbol
// rectangles when cjk is set). It fails with ENGINE_NOT_READY when Init has
// not succeeded.
func (m *Manager) DetectWordBoxes(pix *image.Gray, cjk bool) ([]image.Rectangle, error) {
	const op = "ocr.Manager.DetectWordBoxes"
	if pix == nil {
		return nil, apperrors.NewContractViolation(op, "pixmap", "pixel map is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return nil, apperrors.NewEngineNotReadyError(op)
	}
	return m.engine.WordBoxes(pix, cjk)
}

// DetectWordBoxesFor is DetectWordBoxes on an engine for lang. Init and
// detection run under one lock, so a concurrent caller cannot switch the
// language in between. An empty lang uses whatever engine is running.
func (m *Manager) DetectWordBoxesFor(dataDir, lang string, pix *image.Gray, cjk bool) ([]image.Rectangle, error) {
	const op = "ocr.Manager.DetectWordBoxesFor"
	if pix == nil {
		return nil, apperrors.NewContractViolation(op, "pixmap", "pixel map is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if lang != "" {
		if err := m.initLocked(dataDir, lang); err != nil {
			return nil, err
		}
	}
	if m.engine == nil {
		return nil, apperrors.NewEngineNotReadyError(op)
	}
	return m.engine.WordBoxes(pix, cjk)
}
