// Package postgres implements the credential-store and token-store
// interfaces on top of pgx and PostgreSQL.
package postgres

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// qb is the shared statement builder using PostgreSQL placeholders.
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Storage bundles the repositories sharing one connection pool.
type Storage struct {
	Users  *UserRepository
	Tokens *TokenRepository
}

// New creates the PostgreSQL storage layer.
func New(pool *pgxpool.Pool) *Storage {
	return &Storage{
		Users:  NewUserRepository(pool),
		Tokens: NewTokenRepository(pool),
	}
}

// constraintName extracts the violated constraint from a pg error, if any.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
