package rules

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Handle publishes an engine to concurrent callers and supports atomic
// replacement on policy reload. In-flight Decide calls observe either the
// old or the new engine in full, never a partially rebuilt one.
type Handle struct {
	ptr atomic.Pointer[Engine]
}

// NewHandle creates a handle over an initial engine.
func NewHandle(engine *Engine) *Handle {
	h := &Handle{}
	h.ptr.Store(engine)
	return h
}

// Current returns the currently published engine.
func (h *Handle) Current() *Engine {
	return h.ptr.Load()
}

// Swap publishes a new engine.
func (h *Handle) Swap(engine *Engine) {
	h.ptr.Store(engine)
}

// Reload builds a new engine from the document and publishes it only on
// success. A construction failure leaves the previous engine in service.
func (h *Handle) Reload(doc *PolicyDocument, registry *Registry, logger *zap.Logger) error {
	engine, err := NewEngine(doc, registry, logger)
	if err != nil {
		return err
	}
	h.ptr.Store(engine)
	return nil
}
