package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/compedit/pkg/api"
	"github.com/gnana997/compedit/pkg/editor"
	"github.com/gnana997/compedit/pkg/store"
	"github.com/gnana997/compedit/pkg/util"
	"github.com/gnana997/compedit/pkg/workspace"
)

// defaultConfigPath is read when --config is not given. A missing file is
// not an error.
const defaultConfigPath = ".compedit/config.yaml"

// Config holds the contents of .compedit/config.yaml.
type Config struct {
	Log         LogConfig        `yaml:"log"`
	Store       store.Config     `yaml:"store"`
	Server      api.Config       `yaml:"server"`
	Workspace   workspace.Config `yaml:"workspace"`
	MCP         MCPConfig        `yaml:"mcp"`
	MaxSessions int              `yaml:"max_sessions"`
}

// LogConfig selects the diagnostic logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MCPConfig configures the stdio tool server.
type MCPConfig struct {
	// LogFile receives one JSON line per tool call. Empty disables it.
	LogFile string `yaml:"log_file"`
}

func defaultConfig() Config {
	return Config{
		Log:         LogConfig{Level: string(util.LevelInfo), Format: string(util.FormatText)},
		Store:       store.Config{Path: store.DefaultPath, CacheSize: store.DefaultCacheSize},
		Server:      api.DefaultConfig(),
		Workspace:   workspace.DefaultConfig(),
		MaxSessions: editor.DefaultMaxSessions,
	}
}

// loadConfig applies, in order: defaults, the YAML file, .env, and the
// process environment. An explicit path must exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	_ = godotenv.Load()
	applyEnv(&cfg, os.LookupEnv)

	return cfg, cfg.validate()
}

// applyEnv overlays COMPEDIT_* variables. DATABASE_URL and PORT are honoured
// for hosting platforms that set them.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	set(&cfg.Log.Level, "COMPEDIT_LOG_LEVEL")
	set(&cfg.Log.Format, "COMPEDIT_LOG_FORMAT")
	set(&cfg.Store.Driver, "COMPEDIT_STORE_DRIVER")
	set(&cfg.Store.Path, "COMPEDIT_STORE_PATH")
	set(&cfg.Store.DSN, "COMPEDIT_DATABASE_URL", "DATABASE_URL")
	set(&cfg.MCP.LogFile, "COMPEDIT_MCP_LOG")

	if v, ok := lookup("PORT"); ok && v != "" {
		cfg.Server.Addr = ":" + v
	}
	set(&cfg.Server.Addr, "COMPEDIT_ADDR")

	if v, ok := lookup("COMPEDIT_CORS_ORIGINS"); ok && v != "" {
		cfg.Server.CORSOrigins = strings.Split(v, ",")
	}
}

func (c Config) validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Format) {
	case "", string(util.FormatText), string(util.FormatJSON):
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, fmt.Errorf("max_sessions must not be negative, got %d", c.MaxSessions))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if err := c.Workspace.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) loggerConfig() util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	lc.Level = util.ParseLogLevel(c.Log.Level)
	lc.Format = util.ParseLogFormat(c.Log.Format)
	return lc
}
