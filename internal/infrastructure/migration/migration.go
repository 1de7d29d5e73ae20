package migration

import (
	"context"

	"portfolio-generator/internal/logger"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

var migrations = []Migration{
	{
		Name: "create_exports",
		SQL: `CREATE TABLE IF NOT EXISTS exports (
			id UUID PRIMARY KEY,
			profile_id UUID,
			template TEXT NOT NULL,
			format TEXT NOT NULL,
			status TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			page_count INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	},
	{
		Name: "index_exports_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS exports_created_at_idx ON exports (created_at DESC)`,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) error {
	log.Info("starting database migrations", "count", len(migrations))
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			log.Error("migration failed", "name", m.Name, "error", err)
			return err
		}
		log.Debug("migration completed", "name", m.Name)
	}
	log.Info("all migrations completed")
	return nil
}
