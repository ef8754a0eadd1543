package main

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// binaryPath is set by TestMain after building the binary.
var binaryPath string

func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	tmp, err := os.MkdirTemp("", "compedit-integration-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmp, "compedit")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmp)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmp)
	os.Exit(code)
}

func skipIfNotIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run integration tests")
	}
}

// startServer launches compedit mcp as a subprocess and returns an
// initialized client.
func startServer(t *testing.T) *client.Client {
	t.Helper()

	c, err := client.NewStdioMCPClient(binaryPath, []string{"COMPEDIT_LOG_LEVEL=error"}, "mcp")
	require.NoError(t, err, "failed to start MCP server")
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "compedit-integration-test",
		Version: "1.0.0",
	}

	result, err := c.Initialize(ctx, initReq)
	require.NoError(t, err, "failed to initialize MCP session")
	assert.Equal(t, "compedit", result.ServerInfo.Name)
	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}
	result, err := c.CallTool(ctx, req)
	require.NoError(t, err, "CallTool(%s) failed", name)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected content in result")
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return text.Text
}

func TestIntegration_ListTools(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)

	names := make([]string, len(tools.Tools))
	for i, tool := range tools.Tools {
		names[i] = tool.Name
	}
	assert.ElementsMatch(t, []string{
		"parse_component", "list_properties", "apply_edit", "apply_directional",
		"generate_code", "list_plugins", "get_sample",
	}, names)
}

func TestIntegration_ParseEditGenerate(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	result := callTool(t, c, "parse_component", map[string]any{"code": badge})
	require.False(t, result.IsError, resultText(t, result))
	var pc struct {
		Name     string            `json:"name"`
		Elements []json.RawMessage `json:"elements"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &pc))
	assert.Equal(t, "Badge", pc.Name)
	require.Len(t, pc.Elements, 1)

	result = callTool(t, c, "apply_edit", map[string]any{
		"code":       badge,
		"element_id": "element-0",
		"key":        "color",
		"value":      "blue",
	})
	require.False(t, result.IsError, resultText(t, result))
	var edit struct {
		Changed bool   `json:"changed"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &edit))
	assert.True(t, edit.Changed)
	assert.Contains(t, edit.Code, `"color": "blue"`)

	result = callTool(t, c, "generate_code", map[string]any{
		"elements": pc.Elements,
		"name":     "Pill",
	})
	require.False(t, result.IsError, resultText(t, result))
	assert.Contains(t, resultText(t, result), "export default function Pill()")
}

func TestIntegration_ToolErrors(t *testing.T) {
	skipIfNotIntegration(t)
	c := startServer(t)

	result := callTool(t, c, "list_properties", map[string]any{
		"code":       badge,
		"element_id": "element-9",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")

	result = callTool(t, c, "get_sample", map[string]any{"name": "Nope"})
	assert.True(t, result.IsError)
}
