// AngelaMos | 2026
// entity.go

package organization

import (
	"time"
)

const (
	PlanFree       = "free"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

const InviteTTL = 7 * 24 * time.Hour

type Organization struct {
	ID                   string    `db:"id"`
	Name                 string    `db:"name"`
	Slug                 string    `db:"slug"`
	Logo                 *string   `db:"logo"`
	OwnerID              string    `db:"owner_id"`
	Plan                 string    `db:"plan"`
	StripeCustomerID     *string   `db:"stripe_customer_id"`
	StripeSubscriptionID *string   `db:"stripe_subscription_id"`
	Timezone             string    `db:"timezone"`
	DateFormat           string    `db:"date_format"`
	Currency             string    `db:"currency"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

func (o *Organization) CustomerID() string {
	if o.StripeCustomerID == nil {
		return ""
	}
	return *o.StripeCustomerID
}

func (o *Organization) SubscriptionID() string {
	if o.StripeSubscriptionID == nil {
		return ""
	}
	return *o.StripeSubscriptionID
}

type TeamInvite struct {
	ID             string    `db:"id"`
	Email          string    `db:"email"`
	OrganizationID string    `db:"organization_id"`
	Role           string    `db:"role"`
	TokenHash      string    `db:"token_hash"`
	ExpiresAt      time.Time `db:"expires_at"`
	InvitedBy      *string   `db:"invited_by"`
	CreatedAt      time.Time `db:"created_at"`
}

func (i *TeamInvite) IsExpired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}
