package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Config selects and configures the artifact store.
type Config struct {
	// Driver is "sqlite" or "postgres". Empty picks postgres when DSN is set
	// and sqlite otherwise.
	Driver string `yaml:"driver"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// DSN is the Postgres connection string.
	DSN string `yaml:"dsn"`

	// CacheSize bounds the read cache. Zero uses DefaultCacheSize; a
	// negative value disables caching.
	CacheSize int `yaml:"cache_size"`
}

// DefaultPath is where the SQLite store lives when no path is configured.
const DefaultPath = ".compedit/artifacts.db"

// Open builds the store described by cfg.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "sqlite"
		if strings.TrimSpace(cfg.DSN) != "" {
			driver = "postgres"
		}
	}

	var (
		origin Store
		err    error
	)
	switch driver {
	case "sqlite", "sqlite3":
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		origin, err = OpenSQLite(ctx, path, logger)
	case "postgres", "postgresql", "pgx":
		if strings.TrimSpace(cfg.DSN) == "" {
			return nil, fmt.Errorf("postgres store requires a dsn")
		}
		origin, err = OpenPostgres(ctx, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheSize < 0 {
		return origin, nil
	}
	cached, err := NewCachedStore(origin, cfg.CacheSize, logger)
	if err != nil {
		_ = origin.Close()
		return nil, err
	}
	return cached, nil
}
