package properties

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gnana997/compedit/pkg/element"
)

// installedExtractor remembers which plugin contributed an extractor.
type installedExtractor struct {
	PropertyExtractor
	pluginID string
}

// installedRenderer remembers which plugin contributed a renderer.
type installedRenderer struct {
	PropertyRenderer
	pluginID string
}

type pluginEntry struct {
	plugin    Plugin
	renderers []PropertyType
}

// Registry hosts property plugins.
//
// One Registry is built at startup and handed to every component that
// extracts or renders properties.
//
// Thread Safety:
//   - RegisterPlugin, UnregisterPlugin and Reset are serialised, including
//     the plugin lifecycle hooks they run, so two plugins never initialize
//     concurrently
//   - Lookups and extraction take a read lock and may run alongside each
//     other
type Registry struct {
	lifecycle sync.Mutex
	mu        sync.RWMutex

	plugins    *orderedmap.OrderedMap[string, *pluginEntry]
	extractors []installedExtractor
	renderers  map[PropertyType]installedRenderer

	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		plugins:   orderedmap.New[string, *pluginEntry](),
		renderers: make(map[PropertyType]installedRenderer),
		logger:    logger,
	}
}

// RegisterPlugin installs a plugin.
//
// A plugin whose id is already registered is skipped with a warning. When
// the plugin implements Initializer it is initialized first; an error aborts
// the registration and nothing of the plugin is installed.
func (r *Registry) RegisterPlugin(ctx context.Context, p Plugin) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	id := p.ID()

	r.mu.RLock()
	_, exists := r.plugins.Get(id)
	r.mu.RUnlock()
	if exists {
		r.logger.Warn("property plugin already registered", "plugin", id)
		return nil
	}

	if initializer, ok := p.(Initializer); ok {
		if err := initializer.Initialize(ctx); err != nil {
			r.logger.Error("failed to register property plugin", "plugin", id, "error", err)
			return fmt.Errorf("initialize plugin %s: %w", id, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := &pluginEntry{plugin: p}

	for _, ext := range p.Extractors() {
		if ext.ID == "" || ext.Extract == nil {
			r.logger.Warn("skipping incomplete property extractor",
				"plugin", id, "extractor", ext.ID)
			continue
		}
		r.extractors = append(r.extractors, installedExtractor{PropertyExtractor: ext, pluginID: id})
	}
	slices.SortStableFunc(r.extractors, func(a, b installedExtractor) int {
		return cmp.Compare(b.Priority, a.Priority)
	})

	for _, rend := range p.Renderers() {
		if !rend.Type.Valid() {
			r.logger.Warn("skipping renderer for unknown property type",
				"plugin", id, "type", rend.Type)
			continue
		}
		if owner, taken := r.renderers[rend.Type]; taken {
			r.logger.Warn("property renderer already registered",
				"plugin", id, "type", rend.Type, "owner", owner.pluginID)
			continue
		}
		r.renderers[rend.Type] = installedRenderer{PropertyRenderer: rend, pluginID: id}
		entry.renderers = append(entry.renderers, rend.Type)
	}

	r.plugins.Set(id, entry)

	r.logger.Info("registered property plugin",
		"plugin", id,
		"name", p.Name(),
		"version", p.Version())
	return nil
}

// UnregisterPlugin removes a plugin with its extractors and the renderers it
// installed. Unknown ids are logged and ignored. When the plugin's Cleanup
// fails the plugin stays registered and the error is returned.
func (r *Registry) UnregisterPlugin(ctx context.Context, id string) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.RLock()
	entry, ok := r.plugins.Get(id)
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("property plugin not registered", "plugin", id)
		return nil
	}

	if c, ok := entry.plugin.(Cleaner); ok {
		if err := c.Cleanup(ctx); err != nil {
			r.logger.Error("failed to unregister property plugin", "plugin", id, "error", err)
			return fmt.Errorf("cleanup plugin %s: %w", id, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.extractors = slices.DeleteFunc(r.extractors, func(e installedExtractor) bool {
		return e.pluginID == id
	})
	for _, t := range entry.renderers {
		delete(r.renderers, t)
	}
	r.plugins.Delete(id)

	r.logger.Info("unregistered property plugin", "plugin", id, "name", entry.plugin.Name())
	return nil
}

// ExtractProperties runs every applicable extractor against n in priority
// order. The first property produced for a key wins. Extractors that fail
// or panic are logged and skipped.
func (r *Registry) ExtractProperties(n *element.Node) []EditableProperty {
	if n == nil {
		return nil
	}

	r.mu.RLock()
	extractors := slices.Clone(r.extractors)
	r.mu.RUnlock()

	props := make([]EditableProperty, 0, len(extractors))
	seen := make(map[string]struct{}, len(extractors))

	for _, ext := range extractors {
		prop, err := r.runExtractor(ext, n)
		if err != nil {
			r.logger.Error("property extractor failed",
				"extractor", ext.ID,
				"plugin", ext.pluginID,
				"element", n.ID,
				"error", err)
			continue
		}
		if prop == nil {
			continue
		}
		if !prop.Type.Valid() {
			r.logger.Warn("extractor produced unknown property type",
				"extractor", ext.ID, "key", prop.Key, "type", prop.Type)
			continue
		}
		if _, dup := seen[prop.Key]; dup {
			continue
		}

		if prop.Category == "" {
			if len(ext.Categories) > 0 {
				prop.Category = ext.Categories[0]
			} else {
				prop.Category = DefaultCategory
			}
		}

		seen[prop.Key] = struct{}{}
		props = append(props, *prop)
	}

	return props
}

// runExtractor applies the CanExtract gate and converts panics into errors.
func (r *Registry) runExtractor(ext installedExtractor, n *element.Node) (prop *EditableProperty, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			prop, err = nil, fmt.Errorf("panic: %v", rec)
		}
	}()

	if ext.CanExtract != nil && !ext.CanExtract(n) {
		return nil, nil
	}

	prop, err = ext.Extract(n)
	if err == nil && prop == nil {
		r.logger.Debug("property extractor produced nothing",
			"extractor", ext.ID, "element", n.ID)
	}
	return prop, err
}

// Renderer returns the renderer installed for t.
func (r *Registry) Renderer(t PropertyType) (PropertyRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rend, ok := r.renderers[t]
	return rend.PropertyRenderer, ok
}

// Validate checks a candidate value with the renderer of p's type. Types
// without a renderer or without a validator accept every value.
func (r *Registry) Validate(p EditableProperty, v element.Value) bool {
	rend, ok := r.Renderer(p.Type)
	if !ok || rend.Validate == nil {
		return true
	}
	return rend.Validate(v)
}

// Transform normalises a value with the renderer of p's type. Types without
// a renderer or without a transform return v unchanged.
func (r *Registry) Transform(p EditableProperty, v element.Value) element.Value {
	rend, ok := r.Renderer(p.Type)
	if !ok || rend.Transform == nil {
		return v
	}
	return rend.Transform(v)
}

// Plugins lists installed plugins in registration order.
func (r *Registry) Plugins() []PluginInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]PluginInfo, 0, r.plugins.Len())
	for pair := r.plugins.Oldest(); pair != nil; pair = pair.Next() {
		infos = append(infos, r.info(pair.Value))
	}
	return infos
}

// Plugin returns one installed plugin.
func (r *Registry) Plugin(id string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.plugins.Get(id)
	if !ok {
		return nil, false
	}
	return entry.plugin, true
}

// Extractors returns the installed extractors in evaluation order.
func (r *Registry) Extractors() []PropertyExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]PropertyExtractor, len(r.extractors))
	for i, e := range r.extractors {
		out[i] = e.PropertyExtractor
	}
	return out
}

// ExtractorCount returns the number of installed extractors.
func (r *Registry) ExtractorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.extractors)
}

// RendererCount returns the number of installed renderers.
func (r *Registry) RendererCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.renderers)
}

// Reset cleans up every plugin and empties the registry. Cleanup errors are
// logged. Intended for test isolation.
func (r *Registry) Reset(ctx context.Context) {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.RLock()
	entries := make([]*pluginEntry, 0, r.plugins.Len())
	for pair := r.plugins.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, pair.Value)
	}
	r.mu.RUnlock()

	for _, entry := range entries {
		c, ok := entry.plugin.(Cleaner)
		if !ok {
			continue
		}
		if err := c.Cleanup(ctx); err != nil {
			r.logger.Error("property plugin cleanup failed",
				"plugin", entry.plugin.ID(), "error", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.plugins = orderedmap.New[string, *pluginEntry]()
	r.extractors = nil
	r.renderers = make(map[PropertyType]installedRenderer)
}

func (r *Registry) info(entry *pluginEntry) PluginInfo {
	info := PluginInfo{
		ID:         entry.plugin.ID(),
		Name:       entry.plugin.Name(),
		Version:    entry.plugin.Version(),
		Extractors: []string{},
		Renderers:  slices.Clone(entry.renderers),
	}
	for _, e := range r.extractors {
		if e.pluginID == info.ID {
			info.Extractors = append(info.Extractors, e.ID)
		}
	}
	if info.Renderers == nil {
		info.Renderers = []PropertyType{}
	}
	return info
}
