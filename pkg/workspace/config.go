// Package workspace finds component files in a project tree, extracts each one
// in parallel, and watches the tree so edits made outside the editor are picked
// up.
//
// Files are read through a memory-mapped util.SourceCache. Discovery uses
// doublestar globs relative to the workspace root.
package workspace

import (
	"errors"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDebounceMs groups rapid writes to one file into a single re-extract.
const DefaultDebounceMs = 200

// Config selects and processes workspace files.
type Config struct {
	// Include patterns, relative to the root. Empty includes every file.
	Include []string `yaml:"include"`

	// Exclude patterns. A matching directory is skipped entirely.
	Exclude []string `yaml:"exclude"`

	// Workers is the number of concurrent extractions. 0 auto-detects.
	Workers int `yaml:"workers"`

	// DebounceMs is the watcher's per-file debounce delay.
	DebounceMs int `yaml:"debounce_ms"`
}

// DefaultConfig returns the patterns for React component sources.
func DefaultConfig() Config {
	return Config{
		Include: []string{
			"**/*.tsx",
			"**/*.jsx",
		},
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
			"**/dist/**",
			"**/build/**",
			"**/.next/**",
			"**/coverage/**",
			"**/__tests__/**",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
		},
		DebounceMs: DefaultDebounceMs,
	}
}

// Validate checks every glob pattern.
func (c Config) Validate() error {
	var errs []error
	for _, p := range c.Include {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("invalid include pattern: %s", p))
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("invalid exclude pattern: %s", p))
		}
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	return errors.Join(errs...)
}

// excluded reports whether rel (slash separated) matches an exclude pattern.
func (c Config) excluded(rel string) bool {
	for _, p := range c.Exclude {
		if m, _ := doublestar.PathMatch(p, rel); m {
			return true
		}
	}
	return false
}

// included reports whether rel matches an include pattern.
func (c Config) included(rel string) bool {
	if len(c.Include) == 0 {
		return true
	}
	for _, p := range c.Include {
		if m, _ := doublestar.PathMatch(p, rel); m {
			return true
		}
	}
	return false
}
