package properties

import "context"

// Plugin contributes extractors and renderers to a Registry.
type Plugin interface {
	ID() string
	Name() string
	Version() string
	Extractors() []PropertyExtractor
	Renderers() []PropertyRenderer
}

// Initializer is implemented by plugins that need setup before their rules
// are installed. A failing Initialize aborts the registration.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Cleaner is implemented by plugins that release resources when they are
// unregistered.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// StaticPlugin is a Plugin backed by plain values.
type StaticPlugin struct {
	PluginID      string
	PluginName    string
	PluginVersion string
	Extract       []PropertyExtractor
	Render        []PropertyRenderer
}

func (p *StaticPlugin) ID() string                      { return p.PluginID }
func (p *StaticPlugin) Name() string                    { return p.PluginName }
func (p *StaticPlugin) Version() string                 { return p.PluginVersion }
func (p *StaticPlugin) Extractors() []PropertyExtractor { return p.Extract }
func (p *StaticPlugin) Renderers() []PropertyRenderer   { return p.Render }

// PluginInfo summarises an installed plugin.
type PluginInfo struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	Extractors []string       `json:"extractors"`
	Renderers  []PropertyType `json:"renderers"`
}
