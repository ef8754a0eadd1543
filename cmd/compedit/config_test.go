package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/compedit/pkg/editor"
	"github.com/gnana997/compedit/pkg/store"
	"github.com/gnana997/compedit/pkg/util"
)

// clearEnv blanks every variable applyEnv reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"COMPEDIT_LOG_LEVEL", "COMPEDIT_LOG_FORMAT", "COMPEDIT_STORE_DRIVER",
		"COMPEDIT_STORE_PATH", "COMPEDIT_DATABASE_URL", "DATABASE_URL",
		"COMPEDIT_MCP_LOG", "PORT", "COMPEDIT_ADDR", "COMPEDIT_CORS_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, store.DefaultPath, cfg.Store.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, editor.DefaultMaxSessions, cfg.MaxSessions)
	assert.Contains(t, cfg.Workspace.Include, "**/*.tsx")
}

func TestLoadConfig_DefaultPathFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll(".compedit", 0o755))
	require.NoError(t, os.WriteFile(defaultConfigPath, []byte("max_sessions: 3\n"), 0o644))

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxSessions)
}

func TestLoadConfig_YAML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
store:
  driver: postgres
  dsn: postgres://localhost/compedit
server:
  addr: ":9090"
  read_timeout: 5s
  cors_origins: ["http://localhost:3000"]
workspace:
  include: ["src/**/*.tsx"]
  workers: 2
mcp:
  log_file: calls.jsonl
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/compedit", cfg.Store.DSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, []string{"src/**/*.tsx"}, cfg.Workspace.Include)
	assert.Equal(t, 2, cfg.Workspace.Workers)
	assert.Equal(t, "calls.jsonl", cfg.MCP.LogFile)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, store.DefaultPath, cfg.Store.Path)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	dir := t.TempDir()

	_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log: [unclosed"), 0o644))
	_, err = loadConfig(bad)
	assert.ErrorContains(t, err, "parse")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log:\n  format: xml\nmax_sessions: -1\n"), 0o644))
	_, err = loadConfig(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "max_sessions")
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("COMPEDIT_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg Config)
	}{
		{
			name: "empty values ignored",
			env:  map[string]string{"COMPEDIT_LOG_LEVEL": "", "PORT": ""},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "info", cfg.Log.Level)
				assert.Equal(t, ":8080", cfg.Server.Addr)
			},
		},
		{
			name: "store settings",
			env: map[string]string{
				"COMPEDIT_STORE_DRIVER": "sqlite",
				"COMPEDIT_STORE_PATH":   "/tmp/a.db",
				"DATABASE_URL":          "postgres://fallback",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "sqlite", cfg.Store.Driver)
				assert.Equal(t, "/tmp/a.db", cfg.Store.Path)
				assert.Equal(t, "postgres://fallback", cfg.Store.DSN)
			},
		},
		{
			name: "prefixed dsn wins",
			env: map[string]string{
				"COMPEDIT_DATABASE_URL": "postgres://primary",
				"DATABASE_URL":          "postgres://fallback",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "postgres://primary", cfg.Store.DSN)
			},
		},
		{
			name: "port",
			env:  map[string]string{"PORT": "3000"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, ":3000", cfg.Server.Addr)
			},
		},
		{
			name: "addr beats port",
			env:  map[string]string{"PORT": "3000", "COMPEDIT_ADDR": "127.0.0.1:4000"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "127.0.0.1:4000", cfg.Server.Addr)
			},
		},
		{
			name: "cors origins",
			env:  map[string]string{"COMPEDIT_CORS_ORIGINS": "http://a,http://b"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.CORSOrigins)
			},
		},
		{
			name: "mcp log and format",
			env:  map[string]string{"COMPEDIT_MCP_LOG": "mcp.jsonl", "COMPEDIT_LOG_FORMAT": "json"},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, "mcp.jsonl", cfg.MCP.LogFile)
				assert.Equal(t, "json", cfg.Log.Format)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			applyEnv(&cfg, lookupFrom(tc.env))
			tc.check(t, cfg)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.validate())

	cfg.Server.Addr = ""
	assert.ErrorContains(t, cfg.validate(), "server.addr")

	cfg = defaultConfig()
	cfg.Workspace.Include = []string{"[bad"}
	assert.ErrorContains(t, cfg.validate(), "include")

	cfg = defaultConfig()
	cfg.Log.Format = "JSON"
	assert.NoError(t, cfg.validate())
}

func TestLoggerConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	lc := cfg.loggerConfig()
	assert.Equal(t, util.LevelDebug, lc.Level)
	assert.Equal(t, util.FormatJSON, lc.Format)
}
