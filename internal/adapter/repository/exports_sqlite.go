package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"portfolio-generator/internal/domain"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS exports (
	id TEXT PRIMARY KEY,
	profile_id TEXT,
	template TEXT NOT NULL,
	format TEXT NOT NULL,
	status TEXT NOT NULL,
	size_bytes INTEGER NOT NULL DEFAULT 0,
	page_count INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS exports_created_at ON exports (created_at);`

// SQLiteExportsRepo keeps the export log in a local SQLite file. It is used
// when no Postgres database is configured.
type SQLiteExportsRepo struct {
	db *sql.DB
}

// OpenSQLiteExports opens (or creates) the database at path. Pass ":memory:"
// for an in-memory database.
func OpenSQLiteExports(path string) (*SQLiteExportsRepo, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// single connection: avoids "database is locked" and keeps :memory: shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating exports table: %w", err)
	}
	return &SQLiteExportsRepo{db: db}, nil
}

func (r *SQLiteExportsRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteExportsRepo) Save(ctx context.Context, e *domain.Export) error {
	metaB, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal export metadata: %w", err)
	}
	var profileID sql.NullString
	if e.ProfileID != nil {
		profileID = sql.NullString{String: e.ProfileID.String(), Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO exports (id, profile_id, template, format, status, size_bytes, page_count, error, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET status = excluded.status, size_bytes = excluded.size_bytes, page_count = excluded.page_count,
			error = excluded.error, metadata = excluded.metadata, updated_at = excluded.updated_at`,
		e.ID.String(), profileID, e.Template, string(e.Format), e.Status, e.SizeBytes, e.PageCount, e.Error, string(metaB),
		e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving export %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns the newest exports first.
func (r *SQLiteExportsRepo) Recent(ctx context.Context, limit int) ([]domain.Export, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, profile_id, template, format, status, size_bytes, page_count, error, metadata, created_at, updated_at
		FROM exports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	var out []domain.Export
	for rows.Next() {
		var (
			e                    domain.Export
			id, format, meta     string
			profileID            sql.NullString
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &profileID, &e.Template, &format, &e.Status, &e.SizeBytes, &e.PageCount, &e.Error, &meta, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("export id %q: %w", id, err)
		}
		if profileID.Valid {
			if pid, err := uuid.Parse(profileID.String); err == nil {
				e.ProfileID = &pid
			}
		}
		e.Format = domain.Format(format)
		e.CreatedAt, e.UpdatedAt = createdAt, updatedAt
		if meta != "" && meta != "null" {
			_ = json.Unmarshal([]byte(meta), &e.Metadata)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
