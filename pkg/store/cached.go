package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of artifacts and versions CachedStore keeps.
const DefaultCacheSize = 256

// CachedStore is a read-through cache in front of another Store. Get and
// Version are served from an LRU; writes go to the origin and invalidate
// the affected entries.
type CachedStore struct {
	origin   Store
	artifact *lru.Cache[string, Artifact]
	version  *lru.Cache[string, Version]
	logger   *slog.Logger
}

// NewCachedStore wraps origin. A non-positive size uses DefaultCacheSize.
func NewCachedStore(origin Store, size int, logger *slog.Logger) (*CachedStore, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	artifacts, err := lru.New[string, Artifact](size)
	if err != nil {
		return nil, fmt.Errorf("artifact cache: %w", err)
	}
	versions, err := lru.New[string, Version](size)
	if err != nil {
		return nil, fmt.Errorf("version cache: %w", err)
	}
	return &CachedStore{origin: origin, artifact: artifacts, version: versions, logger: logger}, nil
}

func versionKey(id string, n int) string {
	return fmt.Sprintf("%s:%d", id, n)
}

// Create implements Store.
func (c *CachedStore) Create(ctx context.Context, in NewArtifact) (*Artifact, error) {
	a, err := c.origin.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	c.artifact.Add(a.ID, copyArtifact(*a))
	return a, nil
}

// Get implements Store.
func (c *CachedStore) Get(ctx context.Context, id string) (*Artifact, error) {
	if a, ok := c.artifact.Get(id); ok {
		out := copyArtifact(a)
		return &out, nil
	}
	a, err := c.origin.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.artifact.Add(id, copyArtifact(*a))
	return a, nil
}

// List implements Store. Listings are never cached.
func (c *CachedStore) List(ctx context.Context) ([]Artifact, error) {
	return c.origin.List(ctx)
}

// Update implements Store.
func (c *CachedStore) Update(ctx context.Context, id string, u ArtifactUpdate) (*Artifact, error) {
	c.artifact.Remove(id)
	a, err := c.origin.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	c.artifact.Add(id, copyArtifact(*a))
	return a, nil
}

// Delete implements Store.
func (c *CachedStore) Delete(ctx context.Context, id string) error {
	c.artifact.Remove(id)
	prefix := id + ":"
	removed := 0
	for _, key := range c.version.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.version.Remove(key)
			removed++
		}
	}
	c.logger.Debug("invalidated cached artifact", "id", id, "versions", removed)
	return c.origin.Delete(ctx, id)
}

// Versions implements Store. Listings are never cached.
func (c *CachedStore) Versions(ctx context.Context, id string) ([]Version, error) {
	return c.origin.Versions(ctx, id)
}

// Version implements Store. Versions are immutable, so cached entries stay
// valid until their artifact is deleted.
func (c *CachedStore) Version(ctx context.Context, id string, n int) (*Version, error) {
	key := versionKey(id, n)
	if v, ok := c.version.Get(key); ok {
		v.Meta = v.Meta.Clone()
		return &v, nil
	}
	v, err := c.origin.Version(ctx, id, n)
	if err != nil {
		return nil, err
	}
	cached := *v
	cached.Meta = v.Meta.Clone()
	c.version.Add(key, cached)
	return v, nil
}

// Ping implements Store.
func (c *CachedStore) Ping(ctx context.Context) error {
	return c.origin.Ping(ctx)
}

// Close purges the cache and closes the origin.
func (c *CachedStore) Close() error {
	c.artifact.Purge()
	c.version.Purge()
	return c.origin.Close()
}

// Len reports the number of cached artifacts and versions.
func (c *CachedStore) Len() (artifacts, versions int) {
	return c.artifact.Len(), c.version.Len()
}

func copyArtifact(a Artifact) Artifact {
	a.Meta = a.Meta.Clone()
	return a
}
