// AngelaMos | 2026
// identity.go

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/organization"
	"github.com/carterperez-dev/nexus/internal/user"
)

// IdentityResolver turns verified access-token claims into the caller's
// current identity. Role and organization always come from the database.
type IdentityResolver struct {
	users user.Repository
	orgs  organization.Repository
}

func NewIdentityResolver(users user.Repository, orgs organization.Repository) *IdentityResolver {
	return &IdentityResolver{users: users, orgs: orgs}
}

func (r *IdentityResolver) ResolveIdentity(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) (*middleware.Identity, error) {
	u, err := r.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	if claims.TokenVersion < u.TokenVersion {
		return nil, fmt.Errorf("resolve identity: stale token version: %w", core.ErrTokenRevoked)
	}

	id := &middleware.Identity{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}

	if !u.HasOrganization() {
		return id, nil
	}

	org, err := r.orgs.GetByID(ctx, u.OrgID())
	if errors.Is(err, core.ErrNotFound) {
		return id, nil
	}
	if err != nil {
		return nil, err
	}

	id.OrganizationID = org.ID
	id.OrganizationName = org.Name
	id.OrganizationSlug = org.Slug
	id.Plan = org.Plan

	return id, nil
}

var _ middleware.IdentityResolver = (*IdentityResolver)(nil)
