// AngelaMos | 2026
// repository.go

package organization

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/nexus/internal/core"
)

type Repository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id string) (*Organization, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Organization, error)
	GetByCustomerID(ctx context.Context, customerID string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	UpdateBilling(ctx context.Context, org *Organization) error

	CreateInvite(ctx context.Context, invite *TeamInvite) error
	GetInviteByTokenHash(ctx context.Context, tokenHash string) (*TeamInvite, error)
	GetLiveInviteForEmail(ctx context.Context, orgID, email string, now time.Time) (*TeamInvite, error)
	ListLiveInvites(ctx context.Context, orgID string, now time.Time) ([]TeamInvite, error)
	DeleteInvite(ctx context.Context, id string) error
	DeleteInviteForOrganization(ctx context.Context, orgID, inviteID string) error
}

const orgColumns = `
	id, name, slug, logo, owner_id, plan, stripe_customer_id,
	stripe_subscription_id, timezone, date_format, currency,
	created_at, updated_at`

const inviteColumns = `
	id, email, organization_id, role, token_hash, expires_at,
	invited_by, created_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create relies on the deferred owner foreign key: the owner row may be
// inserted later in the same transaction.
func (r *repository) Create(ctx context.Context, org *Organization) error {
	query := `
		INSERT INTO organizations (id, name, slug, logo, owner_id, plan)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING timezone, date_format, currency, created_at, updated_at`

	err := core.Conn(ctx, r.db).QueryRowxContext(ctx, query,
		org.ID,
		org.Name,
		org.Slug,
		org.Logo,
		org.OwnerID,
		org.Plan,
	).Scan(&org.Timezone, &org.DateFormat, &org.Currency, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create organization: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create organization: %w", err)
	}

	return nil
}

func (r *repository) getOrg(ctx context.Context, op, where string, arg any) (*Organization, error) {
	var org Organization
	err := core.Conn(ctx, r.db).GetContext(ctx, &org,
		"SELECT "+orgColumns+" FROM organizations WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &org, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Organization, error) {
	return r.getOrg(ctx, "get organization", "id = $1", id)
}

func (r *repository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*Organization, error) {
	return r.getOrg(ctx, "get organization by subscription", "stripe_subscription_id = $1", subscriptionID)
}

func (r *repository) GetByCustomerID(ctx context.Context, customerID string) (*Organization, error) {
	return r.getOrg(ctx, "get organization by customer", "stripe_customer_id = $1", customerID)
}

func (r *repository) Update(ctx context.Context, org *Organization) error {
	query := `
		UPDATE organizations
		SET name = $2, logo = $3, timezone = $4, date_format = $5,
		    currency = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := core.Conn(ctx, r.db).GetContext(ctx, &org.UpdatedAt, query,
		org.ID,
		org.Name,
		org.Logo,
		org.Timezone,
		org.DateFormat,
		org.Currency,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update organization: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update organization: %w", err)
	}

	return nil
}

func (r *repository) UpdateBilling(ctx context.Context, org *Organization) error {
	query := `
		UPDATE organizations
		SET plan = $2, stripe_customer_id = $3, stripe_subscription_id = $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := core.Conn(ctx, r.db).GetContext(ctx, &org.UpdatedAt, query,
		org.ID,
		org.Plan,
		org.StripeCustomerID,
		org.StripeSubscriptionID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update billing: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update billing: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update billing: %w", err)
	}

	return nil
}

func (r *repository) CreateInvite(ctx context.Context, invite *TeamInvite) error {
	query := `
		INSERT INTO team_invites (id, email, organization_id, role, token_hash, expires_at, invited_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := core.Conn(ctx, r.db).GetContext(ctx, &invite.CreatedAt, query,
		invite.ID,
		invite.Email,
		invite.OrganizationID,
		invite.Role,
		invite.TokenHash,
		invite.ExpiresAt,
		invite.InvitedBy,
	)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create invite: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create invite: %w", err)
	}

	return nil
}

func (r *repository) GetInviteByTokenHash(ctx context.Context, tokenHash string) (*TeamInvite, error) {
	var invite TeamInvite
	err := core.Conn(ctx, r.db).GetContext(ctx, &invite,
		"SELECT "+inviteColumns+" FROM team_invites WHERE token_hash = $1", tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invite: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invite: %w", err)
	}
	return &invite, nil
}

func (r *repository) GetLiveInviteForEmail(
	ctx context.Context,
	orgID, email string,
	now time.Time,
) (*TeamInvite, error) {
	var invite TeamInvite
	err := core.Conn(ctx, r.db).GetContext(ctx, &invite, "SELECT "+inviteColumns+`
		FROM team_invites
		WHERE organization_id = $1 AND email = $2 AND expires_at > $3
		LIMIT 1`, orgID, email, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get live invite: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get live invite: %w", err)
	}
	return &invite, nil
}

func (r *repository) ListLiveInvites(
	ctx context.Context,
	orgID string,
	now time.Time,
) ([]TeamInvite, error) {
	invites := []TeamInvite{}
	err := core.Conn(ctx, r.db).SelectContext(ctx, &invites, "SELECT "+inviteColumns+`
		FROM team_invites
		WHERE organization_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`, orgID, now)
	if err != nil {
		return nil, fmt.Errorf("list invites: %w", err)
	}
	return invites, nil
}

func (r *repository) DeleteInvite(ctx context.Context, id string) error {
	return r.deleteInvite(ctx, `DELETE FROM team_invites WHERE id = $1`, id)
}

func (r *repository) DeleteInviteForOrganization(ctx context.Context, orgID, inviteID string) error {
	return r.deleteInvite(ctx,
		`DELETE FROM team_invites WHERE id = $1 AND organization_id = $2`, inviteID, orgID)
}

func (r *repository) deleteInvite(ctx context.Context, query string, args ...any) error {
	result, err := core.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete invite: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete invite: %w", core.ErrNotFound)
	}

	return nil
}
