// Package samples ships example components for the editor and its tests.
package samples

import (
	"embed"
	"path"
	"strings"
)

//go:embed components/*.tsx
var files embed.FS

// order is the presentation order of the samples.
var order = []string{"Button", "Card", "Modal", "Tabs", "Accordion", "Badge", "ProgressBar"}

// Sample is one example component.
type Sample struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Names lists the sample names in presentation order.
func Names() []string {
	return append([]string(nil), order...)
}

// Get returns a sample by name, ignoring case.
func Get(name string) (Sample, bool) {
	for _, n := range order {
		if strings.EqualFold(n, name) {
			data, err := files.ReadFile(path.Join("components", n+".tsx"))
			if err != nil {
				return Sample{}, false
			}
			return Sample{Name: n, Code: string(data)}, true
		}
	}
	return Sample{}, false
}

// All returns every sample in presentation order.
func All() []Sample {
	out := make([]Sample, 0, len(order))
	for _, n := range order {
		if s, ok := Get(n); ok {
			out = append(out, s)
		}
	}
	return out
}
