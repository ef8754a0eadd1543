package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/compedit/pkg/codegen"
	"github.com/gnana997/compedit/pkg/element"
	"github.com/gnana997/compedit/pkg/parser"
	"github.com/gnana997/compedit/pkg/properties"
	"github.com/gnana997/compedit/pkg/samples"
)

// editResult is returned by the edit tools.
type editResult struct {
	Changed bool   `json:"changed"`
	Code    string `json:"code"`
}

type propertyEntry struct {
	properties.EditableProperty
	Control properties.Control `json:"control"`
}

type propertiesResult struct {
	ElementID string                     `json:"element_id"`
	TagName   string                     `json:"tag_name"`
	Groups    []properties.CategoryGroup `json:"groups"`
	Controls  []propertyEntry            `json:"controls"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// parseError turns an extraction failure into a tool error. Syntax errors
// carry their position in the message.
func parseError(err error) *mcp.CallToolResult {
	var se *parser.SyntaxError
	if errors.As(err, &se) {
		return mcp.NewToolResultError(se.Error())
	}
	return mcp.NewToolResultError(fmt.Sprintf("parse component: %v", err))
}

// target parses code and finds the element named by the element_id
// argument.
func (s *Server) target(ctx context.Context, req mcp.CallToolRequest) (*element.ParsedComponent, *element.Node, *mcp.CallToolResult) {
	code, err := req.RequireString("code")
	if err != nil {
		return nil, nil, mcp.NewToolResultError("code parameter is required")
	}
	id, err := req.RequireString("element_id")
	if err != nil {
		return nil, nil, mcp.NewToolResultError("element_id parameter is required")
	}

	pc, err := s.parser.Parse(ctx, code)
	if err != nil {
		return nil, nil, parseError(err)
	}
	n := element.Find(pc.Elements, id)
	if n == nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("element %q not found", id))
	}
	return pc, n, nil
}

func (s *Server) handleParseComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError("code parameter is required"), nil
	}
	pc, err := s.parser.Parse(ctx, code)
	if err != nil {
		return parseError(err), nil
	}
	return jsonResult(pc)
}

func (s *Server) handleListProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, n, failed := s.target(ctx, req)
	if failed != nil {
		return failed, nil
	}

	props := s.engine.Properties(n)
	controls := make([]propertyEntry, 0, len(props))
	for _, p := range props {
		controls = append(controls, propertyEntry{EditableProperty: p, Control: s.engine.Render(p)})
	}
	return jsonResult(propertiesResult{
		ElementID: n.ID,
		TagName:   n.TagName,
		Groups:    properties.Group(props),
		Controls:  controls,
	})
}

func (s *Server) handleApplyEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key parameter is required"), nil
	}
	raw, ok := req.GetArguments()["value"]
	if !ok {
		return mcp.NewToolResultError("value parameter is required"), nil
	}

	pc, n, failed := s.target(ctx, req)
	if failed != nil {
		return failed, nil
	}
	if _, ok := s.engine.Property(n, key); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("element %s has no editable property %q", n.ID, key)), nil
	}

	roots, _ := s.engine.ApplyTo(pc.Elements, n.ID, key, element.ValueOf(raw))
	return s.editResult(pc, roots, n)
}

func (s *Server) handleApplyDirectional(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError("key parameter is required"), nil
	}
	var sides properties.Sides
	for _, side := range []struct {
		name string
		dst  *float64
	}{{"top", &sides.Top}, {"right", &sides.Right}, {"bottom", &sides.Bottom}, {"left", &sides.Left}} {
		v, err := req.RequireFloat(side.name)
		if err != nil {
			return mcp.NewToolResultError(side.name + " parameter is required"), nil
		}
		*side.dst = v
	}

	pc, n, failed := s.target(ctx, req)
	if failed != nil {
		return failed, nil
	}
	p, ok := s.engine.Property(n, key)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("element %s has no editable property %q", n.ID, key)), nil
	}
	if !p.Type.Directional() {
		return mcp.NewToolResultError(fmt.Sprintf("property %q is not directional", key)), nil
	}

	roots, _ := s.engine.ApplyDirectionalTo(pc.Elements, n.ID, key, sides)
	return s.editResult(pc, roots, n)
}

func (s *Server) editResult(pc *element.ParsedComponent, roots []*element.Node, before *element.Node) (*mcp.CallToolResult, error) {
	if element.Find(roots, before.ID) == before {
		return jsonResult(editResult{Changed: false, Code: pc.Code})
	}
	return jsonResult(editResult{Changed: true, Code: codegen.Generate(roots, pc.Name)})
}

func (s *Server) handleGenerateCode(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["elements"]
	if !ok {
		return mcp.NewToolResultError("elements parameter is required"), nil
	}

	// Arguments arrive decoded; round-trip them through JSON to reach the
	// element wire form.
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid elements: %v", err)), nil
	}
	var roots []*element.Node
	if err := json.Unmarshal(data, &roots); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid elements: %v", err)), nil
	}

	return mcp.NewToolResultText(codegen.Generate(roots, req.GetString("name", ""))), nil
}

func (s *Server) handleListPlugins(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.engine.Registry().Plugins())
}

func (s *Server) handleGetSample(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return jsonResult(samples.Names())
	}
	sample, ok := samples.Get(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("sample %q not found; available: %v", name, samples.Names())), nil
	}
	return jsonResult(sample)
}
