// Package store persists saved components and their version history.
//
// Every saved component is an Artifact. Each change to an artifact's code
// appends a Version, so earlier revisions can be listed and reloaded.
// Implementations share the Store interface: SQLStore over SQLite or
// Postgres, and CachedStore as a read-through cache in front of either.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an artifact or version does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when required fields are missing.
	ErrInvalid = errors.New("invalid artifact")
)

// TypeComponent is the artifact type used for editor components.
const TypeComponent = "react-component"

// Meta is free-form artifact metadata stored as a JSON object.
type Meta map[string]any

// Clone returns a shallow copy of m. Nil stays nil.
func (m Meta) Clone() Meta {
	if m == nil {
		return nil
	}
	c := make(Meta, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func (m Meta) marshal() (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Artifact is a saved component.
type Artifact struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Meta      Meta      `json:"meta"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Version is one recorded revision of an artifact's code.
type Version struct {
	ID         string    `json:"id"`
	ArtifactID string    `json:"artifactId"`
	Version    int       `json:"version"`
	Code       string    `json:"code"`
	Meta       Meta      `json:"meta"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewArtifact holds the fields of an artifact to create.
type NewArtifact struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Code string `json:"code"`
	Meta Meta   `json:"meta,omitempty"`
}

// Validate reports missing required fields.
func (n NewArtifact) Validate() error {
	if n.Type == "" || n.Name == "" || n.Code == "" {
		return errors.Join(ErrInvalid, errors.New("missing required fields: type, name, code"))
	}
	return nil
}

// ArtifactUpdate holds the fields to change. Empty strings and a nil Meta
// leave the stored value alone.
type ArtifactUpdate struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
	Code string `json:"code,omitempty"`
	Meta Meta   `json:"meta,omitempty"`
}

// Store persists artifacts and their versions.
type Store interface {
	// Create stores a new artifact and records it as version 1.
	Create(ctx context.Context, a NewArtifact) (*Artifact, error)

	Get(ctx context.Context, id string) (*Artifact, error)

	// List returns all artifacts, most recently updated first.
	List(ctx context.Context) ([]Artifact, error)

	// Update changes an artifact. A new version is recorded only when the
	// code changes.
	Update(ctx context.Context, id string, u ArtifactUpdate) (*Artifact, error)

	// Delete removes an artifact and all of its versions.
	Delete(ctx context.Context, id string) error

	// Versions lists an artifact's versions, newest first.
	Versions(ctx context.Context, id string) ([]Version, error)

	Version(ctx context.Context, id string, version int) (*Version, error)

	// Ping checks that the backing database is reachable.
	Ping(ctx context.Context) error

	Close() error
}
