package surface

import (
	"errors"
	"sync"

	"github.com/embedhost/webbridge/internal/shared/id"
)

var (
	// ErrManagerClosed is returned when opening a surface after shutdown.
	ErrManagerClosed = errors.New("surface manager is closed")
	// ErrInvalidSurfaceID is returned when opening a surface under an ID
	// that is not a prefixed ULID.
	ErrInvalidSurfaceID = errors.New("invalid surface id")
)

// Manager tracks the live in-process surfaces. Each surface owns its own
// runtime; the manager only handles lifecycle, so concurrent surfaces (a
// parent and a child popup) never share a VM or bridge state.
type Manager struct {
	config Config

	mu       sync.RWMutex
	surfaces map[id.SurfaceID]*Runtime
	closed   bool
}

// NewManager creates a surface manager with the given runtime limits.
func NewManager(config Config) *Manager {
	return &Manager{
		config:   config,
		surfaces: make(map[id.SurfaceID]*Runtime),
	}
}

// Open creates a fresh runtime for the given surface. The ID must be a
// well-formed surface identifier; embedding hosts pick their own, so the
// shape is checked here rather than trusted.
func (m *Manager) Open(sid id.SurfaceID) (*Runtime, error) {
	if !id.IsValid(string(sid)) {
		return nil, ErrInvalidSurfaceID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	rt, err := New(m.config)
	if err != nil {
		return nil, err
	}
	m.surfaces[sid] = rt
	return rt, nil
}

// Get returns the runtime for a surface, if it is still open.
func (m *Manager) Get(sid id.SurfaceID) (*Runtime, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt, ok := m.surfaces[sid]
	return rt, ok
}

// CloseSurface tears down one surface. Unknown IDs are a no-op.
func (m *Manager) CloseSurface(sid id.SurfaceID) {
	m.mu.Lock()
	rt, ok := m.surfaces[sid]
	delete(m.surfaces, sid)
	m.mu.Unlock()

	if ok {
		rt.Close()
	}
}

// Close tears down all surfaces.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for sid, rt := range m.surfaces {
		rt.Close()
		delete(m.surfaces, sid)
	}
	return nil
}

// Count returns the number of open surfaces.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.surfaces)
}
