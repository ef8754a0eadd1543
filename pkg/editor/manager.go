package editor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/store"
)

// DefaultMaxSessions bounds the number of live sessions a Manager keeps.
const DefaultMaxSessions = 128

const timeLayout = time.RFC3339Nano

// Manager owns the live editing sessions. When more than the configured
// number are open, the least recently used one is dropped.
type Manager struct {
	parser   *extractor.Parser
	engine   *properties.Engine
	store    store.Store
	logger   *slog.Logger
	sessions *lru.Cache[string, *Session]
}

// NewManager creates a Manager. The store may be nil. A non-positive size
// uses DefaultMaxSessions.
func NewManager(p *extractor.Parser, e *properties.Engine, s store.Store, size int, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultMaxSessions
	}

	m := &Manager{parser: p, engine: e, store: s, logger: logger}
	cache, err := lru.NewWithEvict[string, *Session](size, func(id string, _ *Session) {
		m.logger.Debug("editor session dropped", "session", id)
	})
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	m.sessions = cache
	return m, nil
}

// Open starts a new empty session.
func (m *Manager) Open() *Session {
	s := NewSession(uuid.NewString(), m.parser, m.engine, m.store, m.logger)
	m.sessions.Add(s.ID(), s)
	m.logger.Debug("editor session opened", "session", s.ID())
	return s
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	return m.sessions.Get(id)
}

// Close drops a session. It reports whether the session existed.
func (m *Manager) Close(id string) bool {
	return m.sessions.Remove(id)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Engine returns the property engine shared by all sessions.
func (m *Manager) Engine() *properties.Engine {
	return m.engine
}

// Parser returns the extractor shared by all sessions.
func (m *Manager) Parser() *extractor.Parser {
	return m.parser
}

// Store returns the artifact store, which may be nil.
func (m *Manager) Store() store.Store {
	return m.store
}
