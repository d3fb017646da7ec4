package loader

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/ifcview/internal/engine/scene"
	"github.com/Faultbox/ifcview/internal/logger"
)

// Engine parses a model and returns the root of its scene graph.
// Implementations must honor ctx cancellation where they can.
type Engine interface {
	Load(ctx context.Context, src Source) (*scene.Node, error)
	SetWasmPath(path string)
}

// Manager runs loads through an Engine. Starting a load cancels the one in
// flight; the replaced load returns context.Canceled and its result is
// dropped.
type Manager struct {
	engine Engine

	mu       sync.Mutex
	cancel   context.CancelFunc
	gen      uint64
	roots    []*scene.Node
	wasmPath string

	log *zap.Logger
}

// NewManager creates a manager over engine.
func NewManager(engine Engine) *Manager {
	return &Manager{
		engine: engine,
		log:    logger.Named("loader"),
	}
}

// SetWasmPath forwards the engine module location.
func (m *Manager) SetWasmPath(path string) {
	m.mu.Lock()
	m.wasmPath = path
	m.mu.Unlock()

	m.engine.SetWasmPath(path)
	m.log.Debug("wasm path set", zap.String("path", path))
}

// WasmPath returns the last path passed to SetWasmPath.
func (m *Manager) WasmPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wasmPath
}

// Load loads src and records its root. Engine errors are returned as is.
func (m *Manager) Load(ctx context.Context, src Source) (*scene.Node, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
		m.log.Info("replacing in-flight load", zap.Stringer("source", src))
	}
	m.gen++
	gen := m.gen
	m.cancel = cancel
	m.mu.Unlock()

	m.log.Info("loading model", zap.Stringer("source", src))
	root, err := m.engine.Load(ctx, src)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return nil, context.Canceled
	}
	m.cancel = nil

	if err != nil {
		m.log.Warn("load failed", zap.Stringer("source", src), zap.Error(err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.roots = append(m.roots, root)
	m.log.Info("model loaded",
		zap.Stringer("source", src),
		zap.String("root", root.Name),
		zap.Int("models", len(m.roots)),
	)
	return root, nil
}

// Cancel aborts the in-flight load, if any.
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
		m.gen++
	}
}

// Loading reports whether a load is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Roots returns the loaded model roots in load order.
func (m *Manager) Roots() []*scene.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*scene.Node, len(m.roots))
	copy(out, m.roots)
	return out
}

// Forget drops root from the loaded list. It reports whether root was found.
func (m *Manager) Forget(root *scene.Node) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.roots {
		if r == root {
			m.roots = append(m.roots[:i], m.roots[i+1:]...)
			return true
		}
	}
	return false
}
