// AngelaMos | 2026
// plans.go

package billing

import (
	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/organization"
)

// UnlimitedMembers marks a plan without a seat cap.
const UnlimitedMembers = -1

const gigabyte int64 = 1 << 30

type Limits struct {
	TeamMembers  int   `json:"team_members"`
	StorageBytes int64 `json:"storage_bytes"`
}

type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	PriceID  string   `json:"-"`
	Features []string `json:"features"`
	Limits   Limits   `json:"limits"`
}

// Purchasable reports whether a checkout can be started for the plan.
func (p Plan) Purchasable() bool {
	return p.Price > 0 && p.PriceID != ""
}

// Catalog is the fixed set of plans, in ascending price order.
type Catalog struct {
	plans []Plan
}

func NewCatalog(cfg config.BillingConfig) *Catalog {
	return &Catalog{plans: []Plan{
		{
			ID:    organization.PlanFree,
			Name:  "Free",
			Price: 0,
			Features: []string{
				"5 team members",
				"Basic analytics",
				"1GB storage",
				"Email support",
			},
			Limits: Limits{TeamMembers: 5, StorageBytes: gigabyte},
		},
		{
			ID:      organization.PlanPro,
			Name:    "Pro",
			Price:   29,
			PriceID: cfg.PriceIDPro,
			Features: []string{
				"25 team members",
				"Advanced analytics",
				"10GB storage",
				"Priority support",
				"Custom integrations",
			},
			Limits: Limits{TeamMembers: 25, StorageBytes: 10 * gigabyte},
		},
		{
			ID:      organization.PlanEnterprise,
			Name:    "Enterprise",
			Price:   99,
			PriceID: cfg.PriceIDEnterprise,
			Features: []string{
				"Unlimited team members",
				"Enterprise analytics",
				"100GB storage",
				"24/7 dedicated support",
				"Custom integrations",
				"SSO & advanced security",
				"SLA guarantee",
			},
			Limits: Limits{TeamMembers: UnlimitedMembers, StorageBytes: 100 * gigabyte},
		},
	}}
}

func (c *Catalog) All() []Plan {
	return append([]Plan(nil), c.plans...)
}

func (c *Catalog) Get(id string) (Plan, bool) {
	for _, p := range c.plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// MonthlyPrice is the list price of a plan in whole dollars; unknown plans
// are priced at zero.
func (c *Catalog) MonthlyPrice(id string) int {
	p, _ := c.Get(id)
	return p.Price
}

// IsUpgrade compares plans by price. Moving between plans of equal price
// counts as a downgrade.
func (c *Catalog) IsUpgrade(from, to string) bool {
	return c.MonthlyPrice(to) > c.MonthlyPrice(from)
}
