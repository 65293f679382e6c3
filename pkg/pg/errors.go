package pg

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenConnection  = errors.New("pg: failed to open db connection")
	ErrFailedToParseConfig     = errors.New("pg: failed to parse db config")
	ErrHealthcheckFailed       = errors.New("pg: healthcheck failed")
	ErrFailedToApplyMigrations = errors.New("pg: failed to apply migrations")
	ErrMigrationsDirNotFound   = errors.New("pg: migrations directory not found")
)

// IsNotFound detects pgx.ErrNoRows for consistent "not found" handling.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation detects PostgreSQL unique constraint violations
// (SQLSTATE 23505). The unique indexes on users.email and users.profile_url
// rely on this to map double-registration races to "already exists" errors.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation detects referential integrity violations
// (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
