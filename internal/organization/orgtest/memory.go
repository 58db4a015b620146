// AngelaMos | 2026
// memory.go

package orgtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/organization"
)

// Repository is an in-memory organization.Repository.
type Repository struct {
	mu      sync.Mutex
	orgs    map[string]*organization.Organization
	invites map[string]*organization.TeamInvite

	// AfterInviteLookup runs once a token lookup has returned, letting a
	// test interleave a concurrent accept.
	AfterInviteLookup func()
}

func NewRepository() *Repository {
	return &Repository{
		orgs:    map[string]*organization.Organization{},
		invites: map[string]*organization.TeamInvite{},
	}
}

func (r *Repository) Create(_ context.Context, org *organization.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orgs {
		if o.Slug == org.Slug {
			return fmt.Errorf("create organization: %w", core.ErrDuplicateKey)
		}
	}

	now := time.Now().UTC()
	org.Timezone, org.DateFormat, org.Currency = "UTC", "MM/DD/YYYY", "USD"
	org.CreatedAt, org.UpdatedAt = now, now
	if org.Plan == "" {
		org.Plan = organization.PlanFree
	}

	c := *org
	r.orgs[org.ID] = &c
	return nil
}

func (r *Repository) findOrg(match func(*organization.Organization) bool) (*organization.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orgs {
		if match(o) {
			c := *o
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get organization: %w", core.ErrNotFound)
}

func (r *Repository) GetByID(_ context.Context, id string) (*organization.Organization, error) {
	return r.findOrg(func(o *organization.Organization) bool { return o.ID == id })
}

func (r *Repository) GetBySubscriptionID(_ context.Context, subID string) (*organization.Organization, error) {
	return r.findOrg(func(o *organization.Organization) bool { return o.SubscriptionID() == subID })
}

func (r *Repository) GetByCustomerID(_ context.Context, customerID string) (*organization.Organization, error) {
	return r.findOrg(func(o *organization.Organization) bool { return o.CustomerID() == customerID })
}

func (r *Repository) Update(_ context.Context, org *organization.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orgs[org.ID]
	if !ok {
		return fmt.Errorf("update organization: %w", core.ErrNotFound)
	}
	o.Name, o.Logo = org.Name, org.Logo
	o.Timezone, o.DateFormat, o.Currency = org.Timezone, org.DateFormat, org.Currency
	o.UpdatedAt = time.Now().UTC()
	org.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *Repository) UpdateBilling(_ context.Context, org *organization.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orgs[org.ID]
	if !ok {
		return fmt.Errorf("update billing: %w", core.ErrNotFound)
	}
	o.Plan = org.Plan
	o.StripeCustomerID = org.StripeCustomerID
	o.StripeSubscriptionID = org.StripeSubscriptionID
	o.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *Repository) CreateInvite(_ context.Context, invite *organization.TeamInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invite.CreatedAt = time.Now().UTC()
	c := *invite
	r.invites[invite.ID] = &c
	return nil
}

func (r *Repository) findInvite(match func(*organization.TeamInvite) bool) (*organization.TeamInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, i := range r.invites {
		if match(i) {
			c := *i
			return &c, nil
		}
	}
	return nil, fmt.Errorf("get invite: %w", core.ErrNotFound)
}

func (r *Repository) GetInviteByTokenHash(_ context.Context, hash string) (*organization.TeamInvite, error) {
	invite, err := r.findInvite(func(i *organization.TeamInvite) bool { return i.TokenHash == hash })
	if err == nil && r.AfterInviteLookup != nil {
		r.AfterInviteLookup()
	}
	return invite, err
}

// RemoveInvite drops an invite without the organization check.
func (r *Repository) RemoveInvite(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invites, id)
}

func (r *Repository) GetLiveInviteForEmail(
	_ context.Context,
	orgID, email string,
	now time.Time,
) (*organization.TeamInvite, error) {
	return r.findInvite(func(i *organization.TeamInvite) bool {
		return i.OrganizationID == orgID && i.Email == email && !i.IsExpired(now)
	})
}

func (r *Repository) ListLiveInvites(
	_ context.Context,
	orgID string,
	now time.Time,
) ([]organization.TeamInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []organization.TeamInvite{}
	for _, i := range r.invites {
		if i.OrganizationID == orgID && !i.IsExpired(now) {
			out = append(out, *i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r *Repository) DeleteInvite(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invites[id]; !ok {
		return fmt.Errorf("delete invite: %w", core.ErrNotFound)
	}
	delete(r.invites, id)
	return nil
}

func (r *Repository) DeleteInviteForOrganization(_ context.Context, orgID, inviteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.invites[inviteID]
	if !ok || i.OrganizationID != orgID {
		return fmt.Errorf("delete invite: %w", core.ErrNotFound)
	}
	delete(r.invites, inviteID)
	return nil
}

// InviteCount reports how many invites are stored, live or not.
func (r *Repository) InviteCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.invites)
}

// PutInvite stores an invite verbatim. Test setup only.
func (r *Repository) PutInvite(invite *organization.TeamInvite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *invite
	r.invites[invite.ID] = &c
}

var _ organization.Repository = (*Repository)(nil)
