// Package editor holds the state of one component being edited: the parsed
// element tree, the current selection, the generated code and the link to a
// saved artifact.
//
// Every edit rebuilds the element tree immutably and regenerates the code
// straight away, so State always reflects the latest edit.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gnana997/compedit/pkg/codegen"
	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/extractor"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/store"
)

var (
	// ErrNoComponent is returned by edits made before anything was loaded.
	ErrNoComponent = errors.New("no component loaded")

	// ErrUnknownElement is returned when an element id is not in the tree.
	ErrUnknownElement = errors.New("unknown element")

	// ErrNoSelection is returned when an operation needs a selected element.
	ErrNoSelection = errors.New("no element selected")

	// ErrNoStore is returned by persistence operations on a session without
	// a store.
	ErrNoStore = errors.New("no artifact store configured")
)

// State is a point-in-time copy of a session.
type State struct {
	SessionID    string          `json:"sessionId"`
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	Dependencies []string        `json:"dependencies"`
	Elements     []*element.Node `json:"elements"`
	SelectedID   string          `json:"selectedElementId,omitempty"`
	Dirty        bool            `json:"isDirty"`
	ArtifactID   string          `json:"artifactId,omitempty"`
	Loaded       bool            `json:"loaded"`
}

// Session edits one component. It is safe for concurrent use.
type Session struct {
	id     string
	parser *extractor.Parser
	engine *properties.Engine
	store  store.Store
	logger *slog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	component  *element.ParsedComponent
	selected   string
	dirty      bool
	artifactID string
	lastUsed   time.Time
}

// NewSession creates an empty session. The store may be nil, in which case
// the persistence operations return ErrNoStore.
func NewSession(id string, p *extractor.Parser, e *properties.Engine, s store.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:       id,
		parser:   p,
		engine:   e,
		store:    s,
		logger:   logger.With("session", id),
		now:      time.Now,
		lastUsed: time.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns a copy of the session state. Elements are shared; nodes are
// never mutated in place.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		SessionID:  s.id,
		SelectedID: s.selected,
		Dirty:      s.dirty,
		ArtifactID: s.artifactID,
	}
	if s.component != nil {
		st.Loaded = true
		st.Name = s.component.Name
		st.Code = s.component.Code
		st.Dependencies = append([]string(nil), s.component.Dependencies...)
		st.Elements = append([]*element.Node(nil), s.component.Elements...)
	}
	return st
}

// Load parses code and replaces the session's component. The selection and
// artifact link are cleared. On a syntax error the session is unchanged.
func (s *Session) Load(ctx context.Context, code string) (*element.ParsedComponent, error) {
	pc, err := s.parser.Parse(ctx, code)
	if err != nil {
		s.logger.Warn("failed to parse component", "error", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(pc, "")
	s.logger.Debug("loaded component", "name", pc.Name, "elements", element.Count(pc.Elements))
	return pc, nil
}

// replace installs a freshly parsed component. Callers hold mu.
func (s *Session) replace(pc *element.ParsedComponent, artifactID string) {
	s.component = pc
	s.selected = ""
	s.dirty = false
	s.artifactID = artifactID
	s.touch()
}

func (s *Session) touch() {
	s.lastUsed = s.now()
}

// Select marks an element as selected.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.component == nil {
		return ErrNoComponent
	}
	if element.Find(s.component.Elements, id) == nil {
		return fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	s.selected = id
	s.touch()
	return nil
}

// ClearSelection deselects the current element.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Selected returns the selected element, or nil.
func (s *Session) Selected() *element.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.component == nil || s.selected == "" {
		return nil
	}
	return element.Find(s.component.Elements, s.selected)
}

// Properties lists the editable properties of the element with the given
// id. An empty id means the selected element.
func (s *Session) Properties(id string) ([]properties.EditableProperty, error) {
	n, err := s.target(id)
	if err != nil {
		return nil, err
	}
	return s.engine.Properties(n), nil
}

// GroupedProperties is Properties bucketed by category for display.
func (s *Session) GroupedProperties(id string) ([]properties.CategoryGroup, error) {
	props, err := s.Properties(id)
	if err != nil {
		return nil, err
	}
	return properties.Group(props), nil
}

func (s *Session) target(id string) (*element.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.component == nil {
		return nil, ErrNoComponent
	}
	if id == "" {
		id = s.selected
	}
	if id == "" {
		return nil, ErrNoSelection
	}
	n := element.Find(s.component.Elements, id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}
	return n, nil
}

// UpdateProperty applies one property edit and regenerates the code. An
// empty id edits the selected element. It reports whether the tree
// changed; a value the property's renderer rejects leaves the session
// untouched.
func (s *Session) UpdateProperty(id, key string, v element.Value) (bool, error) {
	return s.edit(id, func(roots []*element.Node, id string) ([]*element.Node, bool) {
		return s.engine.ApplyTo(roots, id, key, v)
	})
}

// UpdateDirectional sets the four sides of a directional property.
func (s *Session) UpdateDirectional(id, key string, sides properties.Sides) (bool, error) {
	return s.edit(id, func(roots []*element.Node, id string) ([]*element.Node, bool) {
		return s.engine.ApplyDirectionalTo(roots, id, key, sides)
	})
}

// UpdatePosition records layout metadata reported by the canvas.
func (s *Session) UpdatePosition(id string, p element.Position) (bool, error) {
	return s.edit(id, func(roots []*element.Node, id string) ([]*element.Node, bool) {
		return element.Update(roots, id, func(n *element.Node) *element.Node {
			if n.Position == p {
				return n
			}
			return n.WithPosition(p)
		})
	})
}

// edit runs fn against the element with the given id (or the selection) and
// installs the result when the node changed.
func (s *Session) edit(id string, fn func(roots []*element.Node, id string) ([]*element.Node, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.component == nil {
		return false, ErrNoComponent
	}
	if id == "" {
		id = s.selected
	}
	if id == "" {
		return false, ErrNoSelection
	}
	before := element.Find(s.component.Elements, id)
	if before == nil {
		return false, fmt.Errorf("%w: %s", ErrUnknownElement, id)
	}

	roots, _ := fn(s.component.Elements, id)
	if element.Find(roots, id) == before {
		return false, nil
	}

	next := *s.component
	next.Elements = roots
	next.Code = codegen.Generate(roots, next.Name)
	next.Tree = nil
	s.component = &next
	s.dirty = true
	s.touch()
	return true, nil
}

// Code returns the generated code for the current tree.
func (s *Session) Code() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.component == nil {
		return "", ErrNoComponent
	}
	return s.component.Code, nil
}

// Reset clears the session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.component = nil
	s.selected = ""
	s.dirty = false
	s.artifactID = ""
	s.touch()
}

// LastUsed reports when the session last changed.
func (s *Session) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}
