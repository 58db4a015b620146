// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/nexus/internal/core"
)

// OwnerIndex guarantees at most one owner per organization.
const OwnerIndex = "users_one_owner_per_organization"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, tokenHash string) (*User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
	ListByIDs(ctx context.Context, ids []string) ([]User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	RehashPassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	MarkEmailVerified(ctx context.Context, id string) error
	SetMembership(ctx context.Context, id string, orgID *string, role string) error
	Delete(ctx context.Context, id string) error
	ListByOrganization(ctx context.Context, orgID string) ([]User, error)
	CountByOrganization(ctx context.Context, orgID string) (int, error)
	CountCreatedSince(ctx context.Context, orgID string, since time.Time) (int, error)
	CountByRole(ctx context.Context, orgID string) (map[string]int, error)
	FindMemberByEmail(ctx context.Context, orgID, email string) (*User, error)
}

const userColumns = `
	id, email, password_hash, first_name, last_name, avatar, role,
	organization_id, email_verified, verification_token_hash,
	reset_token_hash, reset_token_expires_at, notify_email, notify_push,
	notify_weekly_digest, token_version, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name, avatar, role,
			organization_id, email_verified, verification_token_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING notify_email, notify_push, notify_weekly_digest,
		          token_version, created_at, updated_at`

	err := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Avatar,
		user.Role,
		user.OrganizationID,
		user.EmailVerified,
		user.VerificationTokenHash,
	).Scan(
		&user.NotifyEmail,
		&user.NotifyPush,
		&user.NotifyWeeklyDigest,
		&user.TokenVersion,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	op, where string,
	args ...any,
) (*User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE " + where

	var user User
	err := core.Conn(ctx, r.db).GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &user, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "get user", "id = $1", id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "get user by email", "email = $1", email)
}

func (r *repository) GetByVerificationToken(
	ctx context.Context,
	tokenHash string,
) (*User, error) {
	return r.getOne(ctx, "get user by verification token",
		"verification_token_hash = $1", tokenHash)
}

func (r *repository) GetByResetToken(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*User, error) {
	return r.getOne(ctx, "get user by reset token",
		"reset_token_hash = $1 AND reset_token_expires_at > $2", tokenHash, now)
}

func (r *repository) ListByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}

	query, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("list users by id: %w", err)
	}

	db := core.Conn(ctx, r.db)
	var users []User
	if err := db.SelectContext(ctx, &users, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list users by id: %w", err)
	}

	return users, nil
}

func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, avatar = $4,
		    notify_email = $5, notify_push = $6, notify_weekly_digest = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := core.Conn(ctx, r.db).GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Avatar,
		user.NotifyEmail,
		user.NotifyPush,
		user.NotifyWeeklyDigest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// UpdatePassword also clears any pending reset token and bumps
// token_version so outstanding access tokens stop verifying.
func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "update password", `
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_token_expires_at = NULL,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1`, id, passwordHash)
}

// RehashPassword stores an upgraded hash of the same password. Sessions
// stay valid.
func (r *repository) RehashPassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "rehash password", `
		UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash)
}

func (r *repository) SetResetToken(
	ctx context.Context,
	id, tokenHash string,
	expiresAt time.Time,
) error {
	return r.exec(ctx, "set reset token", `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1`, id, tokenHash, expiresAt)
}

func (r *repository) ClearResetToken(ctx context.Context, id string) error {
	return r.exec(ctx, "clear reset token", `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *repository) MarkEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, "mark email verified", `
		UPDATE users
		SET email_verified = TRUE, verification_token_hash = NULL, updated_at = NOW()
		WHERE id = $1`, id)
}

func (r *repository) SetMembership(
	ctx context.Context,
	id string,
	orgID *string,
	role string,
) error {
	err := r.exec(ctx, "set membership", `
		UPDATE users
		SET organization_id = $2, role = $3, updated_at = NOW()
		WHERE id = $1`, id, orgID, role)
	if core.IsUniqueViolation(err, OwnerIndex) {
		return fmt.Errorf("set membership: organization already has an owner: %w", core.ErrConflict)
	}
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete user", `DELETE FROM users WHERE id = $1`, id)
}

func (r *repository) ListByOrganization(ctx context.Context, orgID string) ([]User, error) {
	query := "SELECT " + userColumns + `
		FROM users
		WHERE organization_id = $1
		ORDER BY created_at ASC`

	users := []User{}
	if err := core.Conn(ctx, r.db).SelectContext(ctx, &users, query, orgID); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return users, nil
}

func (r *repository) CountByOrganization(ctx context.Context, orgID string) (int, error) {
	var n int
	err := core.Conn(ctx, r.db).GetContext(ctx, &n,
		`SELECT COUNT(*) FROM users WHERE organization_id = $1`, orgID)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func (r *repository) CountCreatedSince(
	ctx context.Context,
	orgID string,
	since time.Time,
) (int, error) {
	var n int
	err := core.Conn(ctx, r.db).GetContext(ctx, &n, `
		SELECT COUNT(*) FROM users
		WHERE organization_id = $1 AND created_at >= $2`, orgID, since)
	if err != nil {
		return 0, fmt.Errorf("count new members: %w", err)
	}
	return n, nil
}

func (r *repository) CountByRole(ctx context.Context, orgID string) (map[string]int, error) {
	var rows []struct {
		Role  string `db:"role"`
		Count int    `db:"count"`
	}
	err := core.Conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT role, COUNT(*) AS count
		FROM users
		WHERE organization_id = $1
		GROUP BY role`, orgID)
	if err != nil {
		return nil, fmt.Errorf("count members by role: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}

func (r *repository) FindMemberByEmail(
	ctx context.Context,
	orgID, email string,
) (*User, error) {
	return r.getOne(ctx, "find member by email",
		"organization_id = $1 AND email = $2", orgID, email)
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := core.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}
