// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/organization"
)

const invoiceLimit = 10

// Deduper records which webhook deliveries have already been handled.
// core.Redis satisfies it.
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Service struct {
	orgs        organization.Repository
	catalog     *Catalog
	processor   Processor
	dedupe      Deduper
	activity    *activity.Recorder
	frontendURL string
}

func NewService(
	orgs organization.Repository,
	catalog *Catalog,
	processor Processor,
	dedupe Deduper,
	recorder *activity.Recorder,
	frontendURL string,
) *Service {
	return &Service{
		orgs:        orgs,
		catalog:     catalog,
		processor:   processor,
		dedupe:      dedupe,
		activity:    recorder,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *Service) billingURL(query string) string {
	return s.frontendURL + "/dashboard/billing" + query
}

// Plans lists the catalogue. identity may be nil for anonymous callers, in
// which case no plan is marked current.
func (s *Service) Plans(identity *middleware.Identity) []PlanResponse {
	current := ""
	if identity != nil && identity.HasOrganization() {
		current = identity.Plan
	}

	plans := s.catalog.All()
	out := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanResponse{Plan: p, Current: p.ID == current})
	}
	return out
}

func (s *Service) load(ctx context.Context, orgID string) (*organization.Organization, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, organization.ErrOrganizationNotFound
	}
	return org, err
}

func (s *Service) Checkout(
	ctx context.Context,
	actor *middleware.Identity,
	planID string,
) (*SessionResponse, error) {
	plan, ok := s.catalog.Get(planID)
	if !ok || plan.ID == organization.PlanFree {
		return nil, ErrInvalidPlan
	}
	if !s.processor.Enabled() {
		return nil, ErrBillingDisabled
	}
	if !plan.Purchasable() {
		return nil, ErrPlanUnavailable
	}

	org, err := s.load(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	if org.CustomerID() == "" {
		customerID, err := s.processor.CreateCustomer(ctx, CustomerParams{
			OrganizationID: org.ID,
			Name:           org.Name,
			Email:          actor.Email,
		})
		if err != nil {
			return nil, processorError(err)
		}

		org.StripeCustomerID = &customerID
		if err := s.orgs.UpdateBilling(ctx, org); err != nil {
			return nil, fmt.Errorf("store billing customer: %w", err)
		}
	}

	session, err := s.processor.CreateCheckoutSession(ctx, CheckoutParams{
		CustomerID:     org.CustomerID(),
		PriceID:        plan.PriceID,
		OrganizationID: org.ID,
		Plan:           plan.ID,
		SuccessURL:     s.billingURL("?success=true"),
		CancelURL:      s.billingURL("?canceled=true"),
	})
	if err != nil {
		return nil, processorError(err)
	}

	return &SessionResponse{SessionID: session.ID, URL: session.URL}, nil
}

func (s *Service) Portal(ctx context.Context, orgID string) (*SessionResponse, error) {
	org, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.CustomerID() == "" {
		return nil, ErrNoBillingInfo
	}

	session, err := s.processor.CreatePortalSession(ctx, org.CustomerID(), s.billingURL(""))
	if err != nil {
		return nil, processorError(err)
	}

	return &SessionResponse{URL: session.URL}, nil
}

// Subscription reports the organization's plan and what the processor knows
// about it. Processor read failures degrade to empty fields.
func (s *Service) Subscription(ctx context.Context, orgID string) (*SubscriptionResponse, error) {
	org, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}

	logger := middleware.LoggerFromContext(ctx)

	resp := &SubscriptionResponse{
		Plan:     org.Plan,
		Invoices: []InvoiceResponse{},
	}
	if plan, ok := s.catalog.Get(org.Plan); ok {
		resp.PlanDetails = &plan
	}

	sub, err := s.processor.GetSubscription(ctx, org.SubscriptionID())
	if err != nil {
		logger.Warn("failed to fetch subscription",
			"organization_id", org.ID,
			"error", err,
		)
	}
	resp.Subscription = toSubscriptionInfo(sub)

	if org.CustomerID() != "" {
		invoices, err := s.processor.ListInvoices(ctx, org.CustomerID(), invoiceLimit)
		if err != nil {
			logger.Warn("failed to fetch invoices",
				"organization_id", org.ID,
				"error", err,
			)
		} else {
			resp.Invoices = toInvoiceResponses(invoices)
		}
	}

	return resp, nil
}

// CancelSubscription schedules cancellation at the end of the current
// period. The plan itself only changes when the processor reports the
// subscription deleted.
func (s *Service) CancelSubscription(ctx context.Context, orgID string) (*SubscriptionInfo, error) {
	return s.updateSubscription(ctx, orgID, s.processor.CancelSubscription)
}

func (s *Service) ResumeSubscription(ctx context.Context, orgID string) (*SubscriptionInfo, error) {
	return s.updateSubscription(ctx, orgID, s.processor.ResumeSubscription)
}

func (s *Service) updateSubscription(
	ctx context.Context,
	orgID string,
	update func(context.Context, string) (*Subscription, error),
) (*SubscriptionInfo, error) {
	org, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if org.SubscriptionID() == "" {
		return nil, ErrNoSubscription
	}

	sub, err := update(ctx, org.SubscriptionID())
	if err != nil {
		return nil, processorError(err)
	}

	return toSubscriptionInfo(sub), nil
}

func processorError(err error) error {
	if core.IsAppError(err) {
		return err
	}
	return core.NewAppError(
		fmt.Errorf("%w: %w", core.ErrExternalService, err),
		ErrProcessorFailed.Message,
		ErrProcessorFailed.StatusCode,
		ErrProcessorFailed.Code,
	)
}
