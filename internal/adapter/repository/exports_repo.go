package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"portfolio-generator/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ExportLog is implemented by both export stores.
type ExportLog interface {
	Save(ctx context.Context, e *domain.Export) error
	Recent(ctx context.Context, limit int) ([]domain.Export, error)
}

// ExportsRepo persists export records in Postgres. With a nil pool every
// call is a no-op.
type ExportsRepo struct {
	pool *pgxpool.Pool
}

func NewExportsRepo(pool *pgxpool.Pool) *ExportsRepo {
	return &ExportsRepo{pool: pool}
}

func (r *ExportsRepo) Save(ctx context.Context, e *domain.Export) error {
	if r == nil || r.pool == nil {
		return nil
	}
	metaB, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal export metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO exports (id, profile_id, template, format, status, size_bytes, page_count, error, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, size_bytes = EXCLUDED.size_bytes, page_count = EXCLUDED.page_count, error = EXCLUDED.error, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		e.ID, e.ProfileID, e.Template, string(e.Format), e.Status, e.SizeBytes, e.PageCount, e.Error, metaB, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *ExportsRepo) Recent(ctx context.Context, limit int) ([]domain.Export, error) {
	if r == nil || r.pool == nil {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, profile_id, template, format, status, size_bytes, page_count, error, metadata, created_at, updated_at
		FROM exports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Export
	for rows.Next() {
		var (
			e      domain.Export
			format string
			metaB  []byte
		)
		if err := rows.Scan(&e.ID, &e.ProfileID, &e.Template, &format, &e.Status, &e.SizeBytes, &e.PageCount, &e.Error, &metaB, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Format = domain.Format(format)
		if len(metaB) > 0 {
			_ = json.Unmarshal(metaB, &e.Metadata)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
