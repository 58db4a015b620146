// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package organization_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/core/coretest"
	"github.com/carterperez-dev/nexus/internal/organization"
	"github.com/carterperez-dev/nexus/internal/user"
)

func seedOrganization(
	t *testing.T,
	db *core.Database,
	orgs organization.Repository,
	users user.Repository,
	slug string,
) (*organization.Organization, *user.User) {
	t.Helper()

	org := &organization.Organization{
		ID:      uuid.NewString(),
		Name:    "Acme " + slug,
		Slug:    slug,
		OwnerID: uuid.NewString(),
		Plan:    organization.PlanFree,
	}
	owner := &user.User{
		ID:             org.OwnerID,
		Email:          slug + "-owner@acme.com",
		PasswordHash:   "hash",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Role:           user.RoleOwner,
		OrganizationID: &org.ID,
	}

	// the owner foreign key is deferred, so the organization goes first
	err := db.WithinTx(context.Background(), func(ctx context.Context) error {
		if err := orgs.Create(ctx, org); err != nil {
			return err
		}
		return users.Create(ctx, owner)
	})
	require.NoError(t, err)

	return org, owner
}

func TestRepositoryIntegration(t *testing.T) {
	db := coretest.Postgres(t)
	ctx := context.Background()
	orgs := organization.NewRepository(db.DB)
	users := user.NewRepository(db.DB)

	org, owner := seedOrganization(t, db, orgs, users, "acme")

	t.Run("defaults", func(t *testing.T) {
		got, err := orgs.GetByID(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, "UTC", got.Timezone)
		require.Equal(t, "USD", got.Currency)
		require.Equal(t, owner.ID, got.OwnerID)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		err := db.WithinTx(ctx, func(ctx context.Context) error {
			return orgs.Create(ctx, &organization.Organization{
				ID:      uuid.NewString(),
				Name:    "Copy",
				Slug:    "acme",
				OwnerID: owner.ID,
				Plan:    organization.PlanFree,
			})
		})
		require.ErrorIs(t, err, core.ErrDuplicateKey)
	})

	t.Run("single owner", func(t *testing.T) {
		member := &user.User{
			ID:             uuid.NewString(),
			Email:          "grace@acme.com",
			PasswordHash:   "hash",
			FirstName:      "Grace",
			LastName:       "Hopper",
			Role:           user.RoleMember,
			OrganizationID: &org.ID,
		}
		require.NoError(t, users.Create(ctx, member))

		err := users.SetMembership(ctx, member.ID, &org.ID, user.RoleOwner)
		require.ErrorIs(t, err, core.ErrConflict)

		roles, err := users.CountByRole(ctx, org.ID)
		require.NoError(t, err)
		require.Equal(t, map[string]int{user.RoleOwner: 1, user.RoleMember: 1}, roles)
	})

	t.Run("billing lookups", func(t *testing.T) {
		customer, sub := "cus_1", "sub_1"
		org.Plan = organization.PlanPro
		org.StripeCustomerID = &customer
		org.StripeSubscriptionID = &sub
		require.NoError(t, orgs.UpdateBilling(ctx, org))

		got, err := orgs.GetBySubscriptionID(ctx, sub)
		require.NoError(t, err)
		require.Equal(t, organization.PlanPro, got.Plan)

		got, err = orgs.GetByCustomerID(ctx, customer)
		require.NoError(t, err)
		require.Equal(t, org.ID, got.ID)

		_, err = orgs.GetBySubscriptionID(ctx, "sub_missing")
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("live invites", func(t *testing.T) {
		now := time.Now().UTC()
		live := &organization.TeamInvite{
			ID:             uuid.NewString(),
			Email:          "alan@acme.com",
			OrganizationID: org.ID,
			Role:           user.RoleAdmin,
			TokenHash:      "live-hash",
			ExpiresAt:      now.Add(organization.InviteTTL),
			InvitedBy:      &owner.ID,
		}
		expired := &organization.TeamInvite{
			ID:             uuid.NewString(),
			Email:          "old@acme.com",
			OrganizationID: org.ID,
			Role:           user.RoleMember,
			TokenHash:      "expired-hash",
			ExpiresAt:      now.Add(-time.Hour),
		}
		require.NoError(t, orgs.CreateInvite(ctx, live))
		require.NoError(t, orgs.CreateInvite(ctx, expired))

		invites, err := orgs.ListLiveInvites(ctx, org.ID, now)
		require.NoError(t, err)
		require.Len(t, invites, 1)
		require.Equal(t, live.ID, invites[0].ID)

		_, err = orgs.GetLiveInviteForEmail(ctx, org.ID, "old@acme.com", now)
		require.ErrorIs(t, err, core.ErrNotFound)

		require.NoError(t, orgs.DeleteInviteForOrganization(ctx, org.ID, live.ID))
		require.ErrorIs(t, orgs.DeleteInviteForOrganization(ctx, org.ID, live.ID), core.ErrNotFound)
	})
}
