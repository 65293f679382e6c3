package pg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies schema migrations with goose. The pgx pool is bridged to
// database/sql because goose only speaks the standard library interface.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log *slog.Logger) error {
	if _, err := os.Stat(cfg.MigrationsPath); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	goose.SetLogger(&gooseSlogAdapter{log: log})
	goose.SetTableName(cfg.MigrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	return nil
}

// gooseSlogAdapter routes goose's Printf-style logging through slog.
type gooseSlogAdapter struct {
	log *slog.Logger
}

func (a *gooseSlogAdapter) Fatalf(format string, v ...any) {
	a.log.Error(fmt.Sprintf(format, v...))
}

func (a *gooseSlogAdapter) Printf(format string, v ...any) {
	a.log.Info(fmt.Sprintf(format, v...))
}
