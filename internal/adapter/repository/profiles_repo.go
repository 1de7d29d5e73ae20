package repository

import (
	"context"
	"errors"
	"fmt"

	"portfolio-generator/internal/domain"
	"portfolio-generator/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ProfilesRepo reads profile documents from the profiles table. Columns are
// mapped by name onto the profile document (basic_info, skills, experience,
// ...); unknown columns are ignored.
type ProfilesRepo struct {
	db rowQuerier
}

func NewProfilesRepo(db rowQuerier) *ProfilesRepo {
	return &ProfilesRepo{db: db}
}

// queryJSON runs a SQL that returns a single json value.
func queryJSON(ctx context.Context, db rowQuerier, sql string, args ...interface{}) ([]byte, error) {
	var raw []byte
	if err := db.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (r *ProfilesRepo) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("%w: no profile store configured", domain.ErrProfileNotFound)
	}
	raw, err := queryJSON(ctx, r.db, `SELECT to_jsonb(p) FROM profiles p WHERE p.id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, id)
		}
		return nil, fmt.Errorf("query profile %s: %w", id, err)
	}
	p, err := model.DecodeProfile(raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	return p, nil
}
