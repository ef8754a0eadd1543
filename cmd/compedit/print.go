package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/workspace"
)

const maxWidth = 80

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTree prints one line per element, indented by depth.
func printTree(w io.Writer, pc *element.ParsedComponent) {
	fmt.Fprintf(w, "%s\n", pc.Name)
	if len(pc.Dependencies) > 0 {
		fmt.Fprintf(w, "  imports: %s\n", strings.Join(pc.Dependencies, ", "))
	}
	fmt.Fprintln(w)

	element.Walk(pc.Elements, func(n *element.Node, depth int) bool {
		line := fmt.Sprintf("%s<%s>", strings.Repeat("  ", depth+1), n.TagName)
		line = fmt.Sprintf("%-32s %s", line, n.ID)
		if n.TextContent != "" {
			line += fmt.Sprintf("  %q", truncate(n.TextContent, 32))
		}
		if n.Style != nil && n.Style.Len() > 0 {
			line += fmt.Sprintf("  style{%s}", strings.Join(element.Keys(n.Style), ","))
		}
		fmt.Fprintln(w, line)
		return true
	})
}

// printProperties prints grouped properties as aligned tables.
func printProperties(w io.Writer, n *element.Node, groups []properties.CategoryGroup) {
	fmt.Fprintf(w, "%s  <%s>\n", n.ID, n.TagName)
	if len(groups) == 0 {
		fmt.Fprintln(w, "\n(no editable properties)")
		return
	}

	keyW, typeW := len("KEY"), len("TYPE")
	for _, g := range groups {
		for _, p := range g.Properties {
			keyW = max(keyW, len(p.Key))
			typeW = max(typeW, len(p.Type))
		}
	}

	for _, g := range groups {
		fmt.Fprintln(w)
		fmt.Fprintln(w, g.Category)
		fmt.Fprintf(w, "  %-*s  %-*s  %s\n", keyW, "KEY", typeW, "TYPE", "VALUE")
		fmt.Fprintf(w, "  %s\n", strings.Repeat("─", keyW+typeW+12))
		for _, p := range g.Properties {
			fmt.Fprintf(w, "  %-*s  %-*s  %s\n", keyW, p.Key, typeW, p.Type, displayValue(p))
			if len(p.Options) > 0 {
				values := make([]string, len(p.Options))
				for i, o := range p.Options {
					values[i] = o.Value
				}
				indent := keyW + 4
				fmt.Fprintf(w, "  %s  options: %s\n", strings.Repeat(" ", keyW), wrapOptions(strings.Join(values, " | "), indent+11))
			}
		}
	}
}

func displayValue(p properties.EditableProperty) string {
	if p.Sides != nil {
		return fmt.Sprintf("%s  (%s %s %s %s)", p.Value.String(),
			element.FormatNumber(p.Sides.Top), element.FormatNumber(p.Sides.Right),
			element.FormatNumber(p.Sides.Bottom), element.FormatNumber(p.Sides.Left))
	}
	if p.Value.IsNull() {
		return "—"
	}
	return p.Value.String()
}

// wrapOptions wraps the options string if it exceeds maxWidth.
func wrapOptions(options string, indent int) string {
	if indent+len(options) <= maxWidth {
		return options
	}
	parts := strings.Split(options, " | ")
	var sb strings.Builder
	lineLen := indent
	for i, part := range parts {
		addition := len(part)
		if i > 0 {
			addition += 3
		}
		if lineLen+addition > maxWidth && i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))
			lineLen = indent
		}
		if i > 0 {
			sb.WriteString(" | ")
			lineLen += 3
		}
		sb.WriteString(part)
		lineLen += len(part)
	}
	return sb.String()
}

// printReport prints one line per scanned file and a summary.
func printReport(w io.Writer, r *workspace.Report) {
	pathW := 0
	rels := make([]string, len(r.Files))
	for i, f := range r.Files {
		rels[i] = workspace.Relative(r.Root, f.Path)
		pathW = max(pathW, len(rels[i]))
	}

	for i, f := range r.Files {
		if f.Error != "" {
			fmt.Fprintf(w, "%-*s  error: %s\n", pathW, rels[i], f.Error)
			continue
		}
		fmt.Fprintf(w, "%-*s  %-24s %3d elements\n", pathW, rels[i], f.Name, f.Elements)
	}
	fmt.Fprintf(w, "\n%d files, %d failed, %dms\n", len(r.Files), r.Failed, r.DurationMs)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
