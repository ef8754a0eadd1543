package mcp

import "github.com/mark3labs/mcp-go/mcp"

func parseComponentTool() mcp.Tool {
	return mcp.NewTool("parse_component",
		mcp.WithDescription("Parse a React component (TSX) into its element tree. Returns the component name, dependencies and elements with their ids, props and inline styles."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Component source code")),
	)
}

func listPropertiesTool() mcp.Tool {
	return mcp.NewTool("list_properties",
		mcp.WithDescription("List the editable properties of one element, grouped by category, with their current values and control hints."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Component source code")),
		mcp.WithString("element_id", mcp.Required(), mcp.Description("Element id from parse_component, e.g. element-0")),
	)
}

func applyEditTool() mcp.Tool {
	return mcp.NewTool("apply_edit",
		mcp.WithDescription("Set one property of an element and return the regenerated component code. Values the property rejects leave the code unchanged."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Component source code")),
		mcp.WithString("element_id", mcp.Required(), mcp.Description("Element id from parse_component")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Property key from list_properties, e.g. color, fontSize, textContent")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value. Numbers and booleans may also be passed unquoted")),
	)
}

func applyDirectionalTool() mcp.Tool {
	return mcp.NewTool("apply_directional",
		mcp.WithDescription("Set the four sides of a spacing property (padding or margin) and return the regenerated code."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Component source code")),
		mcp.WithString("element_id", mcp.Required(), mcp.Description("Element id from parse_component")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Directional property key: padding or margin")),
		mcp.WithNumber("top", mcp.Required()),
		mcp.WithNumber("right", mcp.Required()),
		mcp.WithNumber("bottom", mcp.Required()),
		mcp.WithNumber("left", mcp.Required()),
	)
}

func generateCodeTool() mcp.Tool {
	return mcp.NewTool("generate_code",
		mcp.WithDescription("Generate component source from an element tree as returned by parse_component."),
		mcp.WithArray("elements", mcp.Required(), mcp.Description("Root elements")),
		mcp.WithString("name", mcp.Description("Component name (default Component)")),
	)
}

func listPluginsTool() mcp.Tool {
	return mcp.NewTool("list_plugins",
		mcp.WithDescription("List the installed property plugins with their extractors and renderers."),
	)
}

func getSampleTool() mcp.Tool {
	return mcp.NewTool("get_sample",
		mcp.WithDescription("Return a bundled sample component. Without a name, lists the available samples."),
		mcp.WithString("name", mcp.Description("Sample name, e.g. Badge")),
	)
}
