// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/nexus/internal/core"
)

type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	Rotate(ctx context.Context, oldHash string, now time.Time, next *RefreshToken) error
	Delete(ctx context.Context, userID, tokenHash string) error
	DeleteByHash(ctx context.Context, tokenHash string) (string, error)
	DeleteAllForUser(ctx context.Context, userID string) error
	PruneExpired(ctx context.Context, userID string, now time.Time) (int64, error)
	ListActiveForUser(ctx context.Context, userID string, now time.Time) ([]RefreshToken, error)
	DeleteForUserByID(ctx context.Context, userID, id string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := core.Conn(ctx, r.db).GetContext(ctx, &token.CreatedAt, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.UserAgent,
		token.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

// Rotate consumes the unexpired token identified by oldHash and stores next
// for the same user in one statement. Concurrent rotations of the same
// token serialize on the row lock, so at most one succeeds.
func (r *repository) Rotate(
	ctx context.Context,
	oldHash string,
	now time.Time,
	next *RefreshToken,
) error {
	query := `
		WITH old AS (
			DELETE FROM refresh_tokens
			WHERE token_hash = $1 AND expires_at > $2
			RETURNING user_id
		)
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, user_agent, ip_address)
		SELECT $3, user_id, $4, $5, $6, $7 FROM old
		RETURNING user_id, created_at`

	err := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		oldHash,
		now,
		next.ID,
		next.TokenHash,
		next.ExpiresAt,
		next.UserAgent,
		next.IPAddress,
	).Scan(&next.UserID, &next.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("rotate refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, userID, tokenHash string) error {
	_, err := core.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1 AND token_hash = $2`,
		userID, tokenHash)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// DeleteByHash returns the owning user ID, or "" when nothing matched.
func (r *repository) DeleteByHash(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := core.Conn(ctx, r.db).GetContext(ctx, &userID,
		`DELETE FROM refresh_tokens WHERE token_hash = $1 RETURNING user_id`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("delete refresh token: %w", err)
	}
	return userID, nil
}

func (r *repository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := core.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (r *repository) PruneExpired(ctx context.Context, userID string, now time.Time) (int64, error) {
	result, err := core.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_id = $1 AND expires_at <= $2`, userID, now)
	if err != nil {
		return 0, fmt.Errorf("prune refresh tokens: %w", err)
	}
	return result.RowsAffected()
}

func (r *repository) ListActiveForUser(
	ctx context.Context,
	userID string,
	now time.Time,
) ([]RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, user_agent, ip_address, created_at
		FROM refresh_tokens
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`

	tokens := []RefreshToken{}
	if err := core.Conn(ctx, r.db).SelectContext(ctx, &tokens, query, userID, now); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return tokens, nil
}

func (r *repository) DeleteForUserByID(ctx context.Context, userID, id string) error {
	result, err := core.Conn(ctx, r.db).ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("revoke session: %w", core.ErrNotFound)
	}

	return nil
}
