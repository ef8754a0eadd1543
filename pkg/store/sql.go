package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed schema/*.sql
var schemas embed.FS

// sqliteTime is a fixed-width UTC layout so that stored timestamps sort
// lexically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// dialect captures what differs between the supported databases.
type dialect struct {
	name       string
	driver     string
	schema     string
	numbered   bool
	formatTime func(time.Time) any
}

var (
	sqliteDialect = dialect{
		name:   "sqlite",
		driver: "sqlite3",
		schema: "schema/sqlite.sql",
		formatTime: func(t time.Time) any {
			return t.UTC().Format(sqliteTime)
		},
	}
	postgresDialect = dialect{
		name:     "postgres",
		driver:   "pgx",
		schema:   "schema/postgres.sql",
		numbered: true,
		formatTime: func(t time.Time) any {
			return t.UTC()
		},
	}
)

// rebind rewrites ? placeholders to $n for databases that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// SQLStore is a Store over database/sql, backed by SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	now     func() time.Time
}

// OpenSQLite opens (creating if needed) a SQLite database at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, sqliteDialect, logger)
}

// OpenPostgres connects to Postgres with the pgx driver and applies the
// schema.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*SQLStore, error) {
	db, err := sql.Open(postgresDialect.driver, strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return newSQLStore(ctx, db, postgresDialect, logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &SQLStore{db: db, dialect: d, logger: logger, now: time.Now}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("artifact store ready", "dialect", d.name)
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ddl, err := schemas.ReadFile(s.dialect.schema)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Dialect names the backing database.
func (s *SQLStore) Dialect() string {
	return s.dialect.name
}

func (s *SQLStore) q(query string) string {
	return s.dialect.rebind(query)
}

// Create implements Store.
func (s *SQLStore) Create(ctx context.Context, in NewArtifact) (*Artifact, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	meta, err := in.Meta.marshal()
	if err != nil {
		return nil, fmt.Errorf("encode meta: %w", err)
	}

	now := s.now()
	a := &Artifact{
		ID:        uuid.NewString(),
		Type:      in.Type,
		Name:      in.Name,
		Code:      in.Code,
		Meta:      metaOrEmpty(in.Meta),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO artifacts (id, type, name, code, meta, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			a.ID, a.Type, a.Name, a.Code, meta,
			s.dialect.formatTime(now), s.dialect.formatTime(now)); err != nil {
			return fmt.Errorf("insert artifact: %w", err)
		}
		return s.insertVersion(ctx, tx, a.ID, 1, a.Code, meta, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created artifact", "id", a.ID, "name", a.Name)
	return a, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id string) (*Artifact, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, type, name, code, meta, created_at, updated_at
		FROM artifacts WHERE id = ?`), id)
	return scanArtifact(row)
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, name, code, meta, created_at, updated_at
		FROM artifacts ORDER BY updated_at DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	out := []Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update implements Store.
func (s *SQLStore) Update(ctx context.Context, id string, u ArtifactUpdate) (*Artifact, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	var updated *Artifact
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := scanArtifact(tx.QueryRowContext(ctx, s.q(`
			SELECT id, type, name, code, meta, created_at, updated_at
			FROM artifacts WHERE id = ?`), id))
		if err != nil {
			return err
		}

		var latest sql.NullInt64
		if err := tx.QueryRowContext(ctx, s.q(`
			SELECT MAX(version) FROM artifact_versions WHERE artifact_id = ?`), id).Scan(&latest); err != nil {
			return fmt.Errorf("latest version: %w", err)
		}

		next := *existing
		if u.Type != "" {
			next.Type = u.Type
		}
		if u.Name != "" {
			next.Name = u.Name
		}
		if u.Code != "" {
			next.Code = u.Code
		}
		if u.Meta != nil {
			next.Meta = u.Meta.Clone()
		}
		now := s.now()
		next.UpdatedAt = now.UTC()

		meta, err := next.Meta.marshal()
		if err != nil {
			return fmt.Errorf("encode meta: %w", err)
		}

		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE artifacts SET type = ?, name = ?, code = ?, meta = ?, updated_at = ?
			WHERE id = ?`),
			next.Type, next.Name, next.Code, meta, s.dialect.formatTime(now), id); err != nil {
			return fmt.Errorf("update artifact: %w", err)
		}

		if u.Code != "" && u.Code != existing.Code {
			versionMeta, err := u.Meta.marshal()
			if err != nil {
				return fmt.Errorf("encode meta: %w", err)
			}
			if err := s.insertVersion(ctx, tx, id, int(latest.Int64)+1, u.Code, versionMeta, now); err != nil {
				return err
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM artifact_versions WHERE artifact_id = ?`), id); err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM artifacts WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete artifact: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete artifact: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Versions implements Store. An unknown artifact has no versions.
func (s *SQLStore) Versions(ctx context.Context, id string) ([]Version, error) {
	out := []Version{}
	if !validID(id) {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, s.q(`
		SELECT id, artifact_id, version, code, meta, created_at
		FROM artifact_versions WHERE artifact_id = ? ORDER BY version DESC`), id)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

// Version implements Store.
func (s *SQLStore) Version(ctx context.Context, id string, version int) (*Version, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, s.q(`
		SELECT id, artifact_id, version, code, meta, created_at
		FROM artifact_versions WHERE artifact_id = ? AND version = ?`), id, version)
	return scanVersion(row)
}

// Ping implements Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) insertVersion(ctx context.Context, tx *sql.Tx, artifactID string, version int, code, meta string, at time.Time) error {
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO artifact_versions (id, artifact_id, version, code, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), artifactID, version, code, meta, s.dialect.formatTime(at)); err != nil {
		return fmt.Errorf("insert version %d: %w", version, err)
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row scanner) (*Artifact, error) {
	var (
		a                  Artifact
		meta               jsonColumn
		created, updatedAt timeColumn
	)
	if err := row.Scan(&a.ID, &a.Type, &a.Name, &a.Code, &meta, &created, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan artifact: %w", err)
	}
	a.Meta = Meta(meta)
	a.CreatedAt = time.Time(created)
	a.UpdatedAt = time.Time(updatedAt)
	return &a, nil
}

func scanVersion(row scanner) (*Version, error) {
	var (
		v       Version
		meta    jsonColumn
		created timeColumn
	)
	if err := row.Scan(&v.ID, &v.ArtifactID, &v.Version, &v.Code, &meta, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan version: %w", err)
	}
	v.Meta = Meta(meta)
	v.CreatedAt = time.Time(created)
	return &v, nil
}

// jsonColumn decodes a JSON object stored as text or jsonb.
type jsonColumn map[string]any

func (j *jsonColumn) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*j = jsonColumn{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported meta column type %T", src)
	}
	m := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("decode meta: %w", err)
		}
	}
	*j = m
	return nil
}

// timeColumn accepts native timestamps and the text layout used for SQLite.
type timeColumn time.Time

func (t *timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = timeColumn(v.UTC())
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case int64:
		*t = timeColumn(time.UnixMilli(v).UTC())
		return nil
	default:
		return fmt.Errorf("unsupported time column type %T", src)
	}
}

func (t *timeColumn) parse(s string) error {
	for _, layout := range []string{sqliteTime, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timeColumn(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func metaOrEmpty(m Meta) Meta {
	if m == nil {
		return Meta{}
	}
	return m.Clone()
}
