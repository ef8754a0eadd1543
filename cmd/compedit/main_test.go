package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/compedit/pkg/properties"
)

const badge = `import React from "react";

export default function Badge() {
  return <span style={{color:"red"}}>Hi</span>;
}
`

const card = `export default function Card() {
  return (
    <div style={{ padding: "16px" }}>
      <h2>Title</h2>
    </div>
  );
}
`

// runCLI executes the root command and returns stdout.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeComponent(t *testing.T, name, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "compedit "+version+"\n", out)
}

func TestParseCmd(t *testing.T) {
	path := writeComponent(t, "Card.tsx", card)

	out, err := runCLI(t, "", "parse", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Card\n")
	assert.Contains(t, out, "<div>")
	assert.Contains(t, out, "element-1")
	assert.Contains(t, out, "style{padding}")

	out, err = runCLI(t, badge, "parse", "-", "--json")
	require.NoError(t, err)
	var pc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &pc))
	assert.Equal(t, "Badge", pc["name"])
	assert.Equal(t, []any{"react"}, pc["dependencies"])
}

func TestParseCmd_SyntaxError(t *testing.T) {
	path := writeComponent(t, "Broken.tsx", "export default function X() { return <div </span>; }")
	_, err := runCLI(t, "", "parse", path)
	assert.Error(t, err)
}

func TestPropsCmd(t *testing.T) {
	path := writeComponent(t, "Badge.tsx", badge)

	out, err := runCLI(t, "", "props", path, "-e", "element-0")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "element-0  <span>"))
	assert.Contains(t, out, "Typography")
	assert.Contains(t, out, "textContent")

	out, err = runCLI(t, "", "props", path, "-e", "element-0", "--json")
	require.NoError(t, err)
	var groups []properties.CategoryGroup
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.NotEmpty(t, groups)
	assert.Equal(t, properties.PrimaryCategory, groups[0].Category)

	_, err = runCLI(t, "", "props", path, "-e", "element-5")
	assert.ErrorContains(t, err, "not found")

	_, err = runCLI(t, "", "props", path)
	assert.Error(t, err, "--element is required")
}

func TestEditCmd(t *testing.T) {
	path := writeComponent(t, "Badge.tsx", badge)

	out, err := runCLI(t, "", "edit", path, "-e", "element-0", "-k", "color", "--value", "blue")
	require.NoError(t, err)
	assert.Contains(t, out, `style={{ "color": "blue" }}`)

	out, err = runCLI(t, "", "edit", path, "-e", "element-0", "-k", "fontSize", "--value", "24")
	require.NoError(t, err)
	assert.Contains(t, out, `"fontSize": 24`)

	_, err = runCLI(t, "", "edit", path, "-e", "element-0", "-k", "color", "--value", "not a colour")
	assert.ErrorContains(t, err, "rejected")

	_, err = runCLI(t, "", "edit", path, "-e", "element-0", "-k", "color")
	assert.ErrorContains(t, err, "--value or --sides")
}

func TestEditCmd_SidesAndWrite(t *testing.T) {
	path := writeComponent(t, "Card.tsx", card)

	out, err := runCLI(t, "", "edit", path, "-e", "element-1", "-k", "padding", "--sides", "2,4,6,8", "--write")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"padding": 5`)
	assert.Contains(t, string(data), `"paddingLeft": 8`)

	_, err = runCLI(t, card, "edit", "-", "-e", "element-1", "-k", "padding", "--sides", "1", "--write")
	assert.ErrorContains(t, err, "--write")
}

func TestParseSides(t *testing.T) {
	tests := []struct {
		in      string
		want    properties.Sides
		wantErr bool
	}{
		{in: "8", want: properties.Uniform(8)},
		{in: "8,16", want: properties.Sides{Top: 8, Right: 16, Bottom: 8, Left: 16}},
		{in: "1 2 3 4", want: properties.Sides{Top: 1, Right: 2, Bottom: 3, Left: 4}},
		{in: "4px,2px", want: properties.Sides{Top: 4, Right: 2, Bottom: 4, Left: 2}},
		{in: "1,2,3", wantErr: true},
		{in: "a", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseSides(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseValue(t *testing.T) {
	assert.True(t, parseValue("24").IsNumber())
	assert.True(t, parseValue("true").IsBool())
	assert.Equal(t, "blue", parseValue("blue").String())
	assert.Equal(t, "24", parseValue(`"24"`).String())
	assert.True(t, parseValue(`"24"`).IsString())
}

func TestGenerateCmd(t *testing.T) {
	path := writeComponent(t, "Card.tsx", card)
	parsed, err := runCLI(t, "", "parse", path, "--json")
	require.NoError(t, err)

	out, err := runCLI(t, parsed, "generate", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "export default function Card()")
	assert.Contains(t, out, "<h2>Title</h2>")

	var pc struct {
		Elements json.RawMessage `json:"elements"`
	}
	require.NoError(t, json.Unmarshal([]byte(parsed), &pc))
	out, err = runCLI(t, string(pc.Elements), "generate", "-", "--name", "Panel")
	require.NoError(t, err)
	assert.Contains(t, out, "export default function Panel()")

	_, err = runCLI(t, "{nope", "generate", "-")
	assert.Error(t, err)
}

func TestSamplesCmd(t *testing.T) {
	out, err := runCLI(t, "", "samples")
	require.NoError(t, err)
	assert.Contains(t, strings.Fields(out), "Badge")

	out, err = runCLI(t, "", "samples", "badge")
	require.NoError(t, err)
	assert.Contains(t, out, "export default function Badge")

	_, err = runCLI(t, "", "samples", "Nope")
	assert.ErrorContains(t, err, "available")
}

func TestScanCmd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Badge.tsx"), []byte(badge), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ui"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ui", "Card.jsx"), []byte(card), 0o644))

	out, err := runCLI(t, "", "scan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Badge.tsx")
	assert.Contains(t, out, "ui/Card.jsx")
	assert.Contains(t, out, "2 files, 0 failed")

	out, err = runCLI(t, "", "scan", dir, "--json", "--exclude", "ui/**")
	require.NoError(t, err)
	var report struct {
		Files []map[string]any `json:"files"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Files, 1)
	assert.Equal(t, "Badge", report.Files[0]["name"])

	_, err = runCLI(t, "", "scan", dir, "--include", "[bad")
	assert.Error(t, err)
}

func TestUnknownConfigFile(t *testing.T) {
	_, err := runCLI(t, "", "version", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}
