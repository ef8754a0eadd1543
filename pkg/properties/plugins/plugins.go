// Package plugins holds the built-in property plugins: text, layout,
// colors, appearance and borders.
package plugins

import (
	"context"
	"fmt"

	"github.com/gnana997/compedit/pkg/properties"
)

// Core returns the built-in plugins in registration order. Renderer
// conflicts resolve by this order: the first plugin to provide a type wins.
func Core() []properties.Plugin {
	return []properties.Plugin{
		Text(),
		Layout(),
		Colors(),
		Appearance(),
		Borders(),
	}
}

// Install registers the built-in plugins one at a time.
func Install(ctx context.Context, reg *properties.Registry) error {
	for _, p := range Core() {
		if err := reg.RegisterPlugin(ctx, p); err != nil {
			return fmt.Errorf("install %s: %w", p.ID(), err)
		}
	}
	return nil
}
