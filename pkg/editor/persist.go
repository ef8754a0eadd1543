package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/gnana997/compedit/pkg/codegen"
	"github.com/gnana997/compedit/pkg/store"
)

// Summary is the listing entry for a saved component.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	UpdatedAt string `json:"updatedAt"`
}

// VersionInfo is one entry of an artifact's history.
type VersionInfo struct {
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
}

func (s *Session) requireStore() error {
	if s.store == nil {
		return ErrNoStore
	}
	return nil
}

func (s *Session) saveMeta(deps []string) store.Meta {
	if deps == nil {
		deps = []string{}
	}
	return store.Meta{
		"dependencies": deps,
		"updatedAt":    s.now().UnixMilli(),
	}
}

// Save writes the component to the store. A session already linked to an
// artifact updates it, which records a new version when the code changed;
// otherwise a new artifact is created and linked.
func (s *Session) Save(ctx context.Context) (*store.Artifact, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.component == nil {
		return nil, ErrNoComponent
	}
	code := codegen.Generate(s.component.Elements, s.component.Name)
	meta := s.saveMeta(s.component.Dependencies)

	var (
		a   *store.Artifact
		err error
	)
	if s.artifactID != "" {
		a, err = s.store.Update(ctx, s.artifactID, store.ArtifactUpdate{Code: code, Meta: meta})
	} else {
		a, err = s.store.Create(ctx, store.NewArtifact{
			Type: store.TypeComponent,
			Name: s.component.Name,
			Code: code,
			Meta: meta,
		})
	}
	if err != nil {
		s.logger.Error("save failed", "name", s.component.Name, "error", err)
		return nil, fmt.Errorf("save component: %w", err)
	}

	next := *s.component
	next.Code = code
	s.component = &next
	s.artifactID = a.ID
	s.dirty = false
	s.touch()
	s.logger.Info("saved component", "name", next.Name, "artifact", a.ID)
	return a, nil
}

// SaveAs stores the component as a new artifact under name and links the
// session to it.
func (s *Session) SaveAs(ctx context.Context, name string) (*store.Artifact, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", store.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.component == nil {
		return nil, ErrNoComponent
	}
	code := codegen.Generate(s.component.Elements, name)
	a, err := s.store.Create(ctx, store.NewArtifact{
		Type: store.TypeComponent,
		Name: name,
		Code: code,
		Meta: s.saveMeta(s.component.Dependencies),
	})
	if err != nil {
		s.logger.Error("save as failed", "name", name, "error", err)
		return nil, fmt.Errorf("save component as %s: %w", name, err)
	}

	next := *s.component
	next.Name = name
	next.Code = code
	s.component = &next
	s.artifactID = a.ID
	s.dirty = false
	s.touch()
	s.logger.Info("saved component as new artifact", "name", name, "artifact", a.ID)
	return a, nil
}

// LoadArtifact replaces the session's component with a saved artifact.
func (s *Session) LoadArtifact(ctx context.Context, id string) (*store.Artifact, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", id, err)
	}
	pc, err := s.parser.Parse(ctx, a.Code)
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(pc, a.ID)
	return a, nil
}

// LoadVersion replaces the session's component with one recorded version.
// The session stays linked to the artifact, so a later Save appends a new
// version on top.
func (s *Session) LoadVersion(ctx context.Context, id string, version int) (*store.Version, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	v, err := s.store.Version(ctx, id, version)
	if err != nil {
		return nil, fmt.Errorf("load version %d of %s: %w", version, id, err)
	}
	pc, err := s.parser.Parse(ctx, v.Code)
	if err != nil {
		return nil, fmt.Errorf("load version %d of %s: %w", version, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replace(pc, id)
	return v, nil
}

// History lists an artifact's versions, newest first.
func (s *Session) History(ctx context.Context, id string) ([]VersionInfo, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	versions, err := s.store.Versions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("version history: %w", err)
	}
	out := make([]VersionInfo, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionInfo{Version: v.Version, CreatedAt: v.CreatedAt.Format(timeLayout)})
	}
	return out, nil
}

// List summarizes every saved artifact, most recently updated first.
func (s *Session) List(ctx context.Context) ([]Summary, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	artifacts, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	out := make([]Summary, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, Summary{ID: a.ID, Name: a.Name, Type: a.Type, UpdatedAt: a.UpdatedAt.Format(timeLayout)})
	}
	return out, nil
}

// Delete removes an artifact. When it is the one being edited the session
// is cleared.
func (s *Session) Delete(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete component: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifactID == id {
		s.component = nil
		s.selected = ""
		s.dirty = false
		s.artifactID = ""
	}
	s.touch()
	return nil
}
