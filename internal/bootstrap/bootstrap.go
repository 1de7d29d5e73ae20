// Package bootstrap builds the adapters selected by configuration. It is
// shared by the server and the CLI.
package bootstrap

import (
	"context"
	"fmt"

	"portfolio-generator/internal/adapter/repository"
	"portfolio-generator/internal/adapter/templatestore"
	"portfolio-generator/internal/config"
	"portfolio-generator/internal/infrastructure/migration"
	"portfolio-generator/internal/logger"
	"portfolio-generator/internal/usecase"
	infra "portfolio-generator/pkg/infrastructure"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/microcosm-cc/bluemonday"
)

// TemplateStore returns the configured template source and a func releasing
// its resources.
func TemplateStore(ctx context.Context, cfg *config.Config) (templatestore.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.TemplateSource {
	case "dir":
		return templatestore.NewDir(cfg.TemplateDir), noop, nil
	case "http":
		return templatestore.NewHTTPStore(cfg.TemplateBaseURL, cfg.TemplateTimeout), noop, nil
	case "gcs":
		s, err := templatestore.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return templatestore.NewEmbedded(), noop, nil
}

// Converter returns the configured HTML to PDF converter.
func Converter(cfg *config.Config) usecase.Renderer {
	if cfg.PDFConverter == "chromedp" {
		return infra.NewChromedpConverter(cfg.ChromePath, cfg.PDFTimeout)
	}
	return infra.NewExecConverter(cfg.PDFConverterBin, cfg.PDFConverterArgs, cfg.PDFTimeout)
}

// Storage holds the optional persistence adapters.
type Storage struct {
	Pool     *pgxpool.Pool
	Profiles *repository.ProfilesRepo
	Exports  repository.ExportLog
	closers  []func()
}

func (s *Storage) Close() {
	for _, c := range s.closers {
		c()
	}
}

// EmptyStorage has no backing database.
func EmptyStorage() *Storage {
	return &Storage{Profiles: repository.NewProfilesRepo(nil), Exports: repository.NewExportsRepo(nil)}
}

// OpenStorage connects to Postgres when DATABASE_URL is set and otherwise
// falls back to a SQLite export log when SQLITE_PATH is set. With neither,
// profiles cannot be looked up by id and exports are not recorded.
func OpenStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	st := EmptyStorage()
	if cfg.DatabaseURL != "" {
		pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		if err := migration.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		st.Pool = pool
		st.Profiles = repository.NewProfilesRepo(pool)
		st.Exports = repository.NewExportsRepo(pool)
		st.closers = append(st.closers, pool.Close)
		return st, nil
	}
	if cfg.SQLitePath != "" {
		sq, err := repository.OpenSQLiteExports(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		st.Exports = sq
		st.closers = append(st.closers, func() { _ = sq.Close() })
	}
	return st, nil
}

// Processor builds the pipeline over the given adapters.
func Processor(cfg *config.Config, store templatestore.Store, conv usecase.Renderer, st *Storage, log *logger.Logger) *usecase.Processor {
	var opts []usecase.Option
	if cfg.SanitizeProfile {
		opts = append(opts, usecase.WithSanitizer(bluemonday.UGCPolicy()))
	}
	return usecase.NewProcessor(conv, store, st.Profiles, st.Exports, log, opts...)
}
