package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushare/campushare/pkg/auth"
	"github.com/campushare/campushare/pkg/pg"
)

var tokenColumns = []string{
	"id", "user_id", "token", "token_type", "expires_at", "used_at", "created_at",
}

// TokenRepository is the PostgreSQL implementation of auth.TokenStorage.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a verification-token repository.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// CreateToken inserts a verification token row.
func (r *TokenRepository) CreateToken(ctx context.Context, token *auth.VerificationToken) error {
	query, args, err := qb.Insert("verification_tokens").
		Columns(tokenColumns...).
		Values(
			token.ID, token.UserID, token.Token, token.TokenType,
			token.ExpiresAt, token.UsedAt, token.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert token: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert token: %w", err)
	}

	return nil
}

// GetToken fetches a token row by exact token string and type. Used and
// expired rows are returned as-is; the service decides how to treat them.
func (r *TokenRepository) GetToken(ctx context.Context, token, tokenType string) (*auth.VerificationToken, error) {
	query, args, err := qb.Select(tokenColumns...).
		From("verification_tokens").
		Where("token = ? AND token_type = ?", token, tokenType).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select token: %w", err)
	}

	var row auth.VerificationToken
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&row.ID, &row.UserID, &row.Token, &row.TokenType,
		&row.ExpiresAt, &row.UsedAt, &row.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, auth.ErrTokenInvalid
		}
		return nil, fmt.Errorf("select token: %w", err)
	}

	return &row, nil
}

// MarkTokenUsed stamps the token as consumed. Idempotent: a token already
// marked keeps its original timestamp.
func (r *TokenRepository) MarkTokenUsed(ctx context.Context, tokenID uuid.UUID, usedAt time.Time) error {
	query, args, err := qb.Update("verification_tokens").
		Set("used_at", usedAt).
		Where("id = ? AND used_at IS NULL", tokenID).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark used: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}

	return nil
}

// DeleteExpiredTokens removes rows past their expiry and reports how many
// were deleted.
func (r *TokenRepository) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	query, args, err := qb.Delete("verification_tokens").
		Where("expires_at < ?", time.Now()).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return tag.RowsAffected(), nil
}
