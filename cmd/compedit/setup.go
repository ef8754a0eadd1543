package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// serverName is the key the compedit MCP server is registered under, and
// the command the client launches.
const serverName = "compedit"

// mcpClient is an MCP-capable agent that compedit can register with. CLI
// clients are configured by running their own "mcp add" command; the rest
// by editing a JSON config file.
type mcpClient struct {
	name string

	// cli is the client's binary. Empty for config-file clients.
	cli string

	// marker is a directory whose presence means the client is in use. When
	// empty, the config file's parent directory is checked instead.
	marker     string
	configFile func() string
	serversKey string
	extra      map[string]string
}

var mcpClients = []mcpClient{
	{name: "Claude Code", cli: "claude"},
	{name: "OpenAI Codex", cli: "codex"},
	{
		name: "VS Code Copilot", marker: ".vscode",
		configFile: func() string { return filepath.Join(".vscode", "mcp.json") },
		serversKey: "servers",
		extra:      map[string]string{"type": "stdio"},
	},
	{
		name: "Cursor", marker: ".cursor",
		configFile: func() string { return filepath.Join(".cursor", "mcp.json") },
		serversKey: "mcpServers",
	},
	{name: "Claude Desktop", configFile: claudeDesktopConfig, serversKey: "mcpServers"},
}

func claudeDesktopConfig() string {
	const file = "claude_desktop_config.json"
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", file)
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", file)
	default:
		return filepath.Join(home, ".config", "Claude", file)
	}
}

// target is a client found on this machine.
type target struct {
	client mcpClient
	// path is the config file for config-file clients, and the project
	// .mcp.json that CLI clients write for project scope.
	path      string
	installed bool
}

// probe abstracts the PATH and filesystem checks used by detection.
type probe struct {
	lookPath func(string) (string, error)
	stat     func(string) (os.FileInfo, error)
}

var systemProbe = probe{lookPath: exec.LookPath, stat: os.Stat}

func (p probe) find(clients []mcpClient) []target {
	var found []target
	for _, c := range clients {
		if c.cli != "" {
			if _, err := p.lookPath(c.cli); err == nil {
				found = append(found, target{
					client:    c,
					path:      ".mcp.json",
					installed: registered(".mcp.json", "mcpServers"),
				})
			}
			continue
		}

		path := c.configFile()
		dir := c.marker
		if dir == "" {
			dir = filepath.Dir(path)
		}
		if _, err := p.stat(dir); err != nil {
			continue
		}
		found = append(found, target{client: c, path: path, installed: registered(path, c.serversKey)})
	}
	return found
}

// readConfig decodes a JSON config file. A missing or empty file is an
// empty config.
func readConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeConfig(data)
}

func decodeConfig(data []byte) (map[string]any, error) {
	doc := map[string]any{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return doc, nil
}

func registered(path, serversKey string) bool {
	doc, err := readConfig(path)
	if err != nil {
		return false
	}
	servers, _ := doc[serversKey].(map[string]any)
	_, ok := servers[serverName]
	return ok
}

// addServer registers compedit under serversKey in doc. It reports false
// when an entry already exists.
func addServer(doc map[string]any, serversKey string, extra map[string]string) bool {
	servers, ok := doc[serversKey].(map[string]any)
	if !ok {
		servers = map[string]any{}
		doc[serversKey] = servers
	}
	if _, exists := servers[serverName]; exists {
		return false
	}

	entry := map[string]any{"command": serverName, "args": []any{"mcp"}}
	for k, v := range extra {
		entry[k] = v
	}
	servers[serverName] = entry
	return true
}

// installFile adds compedit to a config-file client, creating the file and
// its directory when needed. Other servers in the file are preserved.
func installFile(c mcpClient, path string) error {
	doc, err := readConfig(path)
	if err != nil {
		return err
	}
	if !addServer(doc, c.serversKey, c.extra) {
		return nil
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

// installer walks the user through registering compedit with each target.
type installer struct {
	in   *bufio.Reader
	out  io.Writer
	auto bool

	// run executes a client's own CLI.
	run func(name string, args ...string) error
}

func newInstaller(in io.Reader, out io.Writer, auto bool) *installer {
	return &installer{
		in:   bufio.NewReader(in),
		out:  out,
		auto: auto,
		run: func(name string, args ...string) error {
			cmd := exec.Command(name, args...)
			cmd.Stdout = out
			cmd.Stderr = out
			return cmd.Run()
		},
	}
}

// answer reads one line. ok is false at EOF with nothing read.
func (in *installer) answer() (line string, ok bool) {
	s, err := in.in.ReadString('\n')
	if err != nil && s == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// confirm asks a Y/n question; empty input and EOF mean yes.
func (in *installer) confirm(question string) bool {
	fmt.Fprintf(in.out, "%s [Y/n] ", question)
	a, ok := in.answer()
	if !ok {
		return true
	}
	switch strings.ToLower(a) {
	case "", "y", "yes":
		return true
	}
	return false
}

// scope asks where a CLI client should record the server: "project",
// "user", or "" to skip.
func (in *installer) scope(client string) string {
	fmt.Fprintf(in.out, "\n%s: register the %s MCP server in\n", client, serverName)
	fmt.Fprintln(in.out, "  [1] this project (.mcp.json, shared)")
	fmt.Fprintln(in.out, "  [2] your user config")
	fmt.Fprintln(in.out, "  [3] skip")
	fmt.Fprint(in.out, "  > ")
	a, ok := in.answer()
	switch {
	case !ok, a == "", a == "1":
		return "project"
	case a == "2":
		return "user"
	}
	return ""
}

func (in *installer) install(t target) {
	c := t.client
	var (
		err  error
		done string
	)
	if c.cli != "" {
		scope := "project"
		if !in.auto {
			if scope = in.scope(c.name); scope == "" {
				fmt.Fprintln(in.out, "  skipped")
				return
			}
		}
		err = in.run(c.cli, "mcp", "add", "--scope", scope, serverName, "--", serverName, "mcp")
		done = scope + " scope"
	} else {
		if !in.auto && !in.confirm(fmt.Sprintf("\n%s: add %s to %s?", c.name, serverName, t.path)) {
			fmt.Fprintln(in.out, "  skipped")
			return
		}
		err = installFile(c, t.path)
		done = t.path
	}

	if err != nil {
		fmt.Fprintf(in.out, "  ! %s: %v\n", c.name, err)
		return
	}
	fmt.Fprintf(in.out, "  + %s configured (%s)\n", c.name, done)
}

func (in *installer) setup(targets []target) {
	if len(targets) == 0 {
		fmt.Fprintln(in.out, "No supported AI agents detected.")
		return
	}

	fmt.Fprintln(in.out, "Detected AI agents:")
	for _, t := range targets {
		status := ""
		if t.installed {
			status = " (already configured)"
		}
		fmt.Fprintf(in.out, "  * %s%s\n", t.client.name, status)
	}
	fmt.Fprintln(in.out)

	if !in.auto && !in.confirm("Configure agents?") {
		return
	}
	for _, t := range targets {
		if t.installed {
			fmt.Fprintf(in.out, "%s: already configured, skipping\n", t.client.name)
			continue
		}
		in.install(t)
	}
}

func newSetupCmd() *cobra.Command {
	var auto bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the compedit MCP server with installed AI agents",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			in := newInstaller(cmd.InOrStdin(), cmd.OutOrStdout(), auto)
			in.setup(systemProbe.find(mcpClients))
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "configure every detected agent without prompting")
	return cmd
}
