package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/compedit/pkg/codegen"
	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/samples"
)

// readSource returns the contents of path, or stdin when path is "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// loadComponent parses path with the grammar implied by its extension.
// Stdin is parsed as TSX.
func loadComponent(cmd *cobra.Command, c *core, path string) (*element.ParsedComponent, error) {
	code, err := readSource(cmd, path)
	if err != nil {
		return nil, err
	}
	if path == "-" {
		return c.parser.Parse(cmd.Context(), code)
	}
	return c.parser.ParseFile(cmd.Context(), path, code)
}

func newParseCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Print the element tree of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCore(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			pc, err := loadComponent(cmd, c, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), pc)
			}
			printTree(cmd.OutOrStdout(), pc)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the parsed component as JSON")
	return cmd
}

func newPropsCmd(opts *rootOptions) *cobra.Command {
	var (
		elementID string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "props <file|->",
		Short: "List the editable properties of an element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newCore(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			pc, err := loadComponent(cmd, c, args[0])
			if err != nil {
				return err
			}
			n := element.Find(pc.Elements, elementID)
			if n == nil {
				return fmt.Errorf("element %q not found", elementID)
			}

			groups := properties.Group(c.engine.Properties(n))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), groups)
			}
			printProperties(cmd.OutOrStdout(), n, groups)
			return nil
		},
	}
	cmd.Flags().StringVarP(&elementID, "element", "e", "", "element id, e.g. element-0")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the grouped properties as JSON")
	_ = cmd.MarkFlagRequired("element")
	return cmd
}

// parseValue reads a CLI value as JSON when it is a JSON scalar, and as a
// plain string otherwise.
func parseValue(s string) element.Value {
	var v element.Value
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return element.String(s)
}

// parseSides accepts one value for all sides, two (vertical horizontal), or
// four (top right bottom left), separated by commas or spaces.
func parseSides(s string) (properties.Sides, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil {
			return properties.Sides{}, fmt.Errorf("invalid side value %q", f)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return properties.Uniform(vals[0]), nil
	case 2:
		return properties.Sides{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 4:
		return properties.Sides{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return properties.Sides{}, fmt.Errorf("sides takes 1, 2 or 4 values, got %d", len(vals))
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	var (
		elementID string
		key       string
		value     string
		sides     string
		write     bool
	)
	cmd := &cobra.Command{
		Use:   "edit <file|->",
		Short: "Apply a property edit and print the regenerated component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (value == "") == (sides == "") {
				return errors.New("exactly one of --value or --sides is required")
			}
			if write && args[0] == "-" {
				return errors.New("--write needs a file argument")
			}

			c, err := newCore(cmd.Context(), opts.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			pc, err := loadComponent(cmd, c, args[0])
			if err != nil {
				return err
			}
			before := element.Find(pc.Elements, elementID)
			if before == nil {
				return fmt.Errorf("element %q not found", elementID)
			}
			if _, ok := c.engine.Property(before, key); !ok {
				return fmt.Errorf("element %s has no editable property %q", elementID, key)
			}

			var roots []*element.Node
			if sides != "" {
				s, err := parseSides(sides)
				if err != nil {
					return err
				}
				roots, _ = c.engine.ApplyDirectionalTo(pc.Elements, elementID, key, s)
			} else {
				roots, _ = c.engine.ApplyTo(pc.Elements, elementID, key, parseValue(value))
			}
			if element.Find(roots, elementID) == before {
				return fmt.Errorf("value rejected for %s", key)
			}

			code := codegen.Generate(roots, pc.Name)
			if write {
				if err := os.WriteFile(args[0], []byte(code), 0o644); err != nil {
					return err
				}
				opts.logger.Info("component updated", "file", args[0], "element", elementID, "key", key)
				return nil
			}
			_, err = io.WriteString(cmd.OutOrStdout(), code)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&elementID, "element", "e", "", "element id, e.g. element-0")
	f.StringVarP(&key, "key", "k", "", "property key, e.g. color")
	f.StringVar(&value, "value", "", "new value; JSON scalars are decoded")
	f.StringVar(&sides, "sides", "", "per-side values for padding or margin, e.g. 8,16")
	f.BoolVarP(&write, "write", "w", false, "write the result back to the file")
	_ = cmd.MarkFlagRequired("element")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func newGenerateCmd(_ *rootOptions) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "generate <elements.json|->",
		Short: "Generate component source from an element tree",
		Long:  "Reads a JSON array of elements, or a parsed component object with an elements field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			roots, parsedName, err := decodeElements([]byte(data))
			if err != nil {
				return err
			}
			if name == "" {
				name = parsedName
			}
			_, err = io.WriteString(cmd.OutOrStdout(), codegen.Generate(roots, name))
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "component name (default from input, else "+codegen.DefaultName+")")
	return cmd
}

func decodeElements(data []byte) ([]*element.Node, string, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var roots []*element.Node
		if err := json.Unmarshal(data, &roots); err != nil {
			return nil, "", fmt.Errorf("decode elements: %w", err)
		}
		return roots, "", nil
	}
	var pc element.ParsedComponent
	if err := json.Unmarshal(data, &pc); err != nil {
		return nil, "", fmt.Errorf("decode component: %w", err)
	}
	return pc.Elements, pc.Name, nil
}

func newSamplesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "samples [name]",
		Short: "List the bundled samples or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, n := range samples.Names() {
					fmt.Fprintln(w, n)
				}
				return nil
			}
			s, ok := samples.Get(args[0])
			if !ok {
				return fmt.Errorf("sample %q not found; available: %s", args[0], strings.Join(samples.Names(), ", "))
			}
			_, err := io.WriteString(w, s.Code)
			return err
		},
	}
}
