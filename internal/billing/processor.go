// AngelaMos | 2026
// processor.go

package billing

import (
	"context"
	"errors"
	"time"

	"github.com/carterperez-dev/nexus/internal/config"
)

const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "invoice.payment_succeeded"
	EventPaymentFailed       = "invoice.payment_failed"
)

const SubscriptionStatusCanceled = "canceled"

var errWebhookUnverifiable = errors.New("billing is not configured; webhook cannot be verified")

type CustomerParams struct {
	OrganizationID string
	Name           string
	Email          string
}

type CheckoutParams struct {
	CustomerID     string
	PriceID        string
	OrganizationID string
	Plan           string
	SuccessURL     string
	CancelURL      string
}

type Session struct {
	ID  string
	URL string
}

type Subscription struct {
	ID                string
	Status            string
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
}

type Invoice struct {
	ID          string
	Number      string
	AmountCents int64
	Currency    string
	Status      string
	CreatedAt   time.Time
	PDFURL      string
	HostedURL   string
}

// Event is a verified webhook delivery reduced to the fields the state
// machine reads. Fields irrelevant to Type are left empty.
type Event struct {
	ID                 string
	Type               string
	OrganizationID     string
	Plan               string
	CustomerID         string
	SubscriptionID     string
	SubscriptionStatus string
	AmountCents        int64
	Currency           string
}

// Processor is the payment provider as seen by the service.
type Processor interface {
	Enabled() bool
	CreateCustomer(ctx context.Context, p CustomerParams) (string, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*Session, error)
	// GetSubscription returns nil with no error for an empty ID.
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	ResumeSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	ListInvoices(ctx context.Context, customerID string, limit int) ([]Invoice, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// NewProcessor returns the Stripe-backed processor when a secret key is
// configured and a DisabledProcessor otherwise.
func NewProcessor(cfg config.BillingConfig) Processor {
	if cfg.Enabled() {
		return NewStripeProcessor(cfg)
	}
	return DisabledProcessor{}
}

// DisabledProcessor stands in when no processor credentials are present.
// Read paths degrade to empty results; write paths fail with
// ErrBillingDisabled.
type DisabledProcessor struct{}

func (DisabledProcessor) Enabled() bool { return false }

func (DisabledProcessor) CreateCustomer(context.Context, CustomerParams) (string, error) {
	return "", ErrBillingDisabled
}

func (DisabledProcessor) CreateCheckoutSession(context.Context, CheckoutParams) (*Session, error) {
	return nil, ErrBillingDisabled
}

func (DisabledProcessor) CreatePortalSession(context.Context, string, string) (*Session, error) {
	return nil, ErrBillingDisabled
}

func (DisabledProcessor) GetSubscription(context.Context, string) (*Subscription, error) {
	return nil, nil
}

func (DisabledProcessor) CancelSubscription(context.Context, string) (*Subscription, error) {
	return nil, ErrBillingDisabled
}

func (DisabledProcessor) ResumeSubscription(context.Context, string) (*Subscription, error) {
	return nil, ErrBillingDisabled
}

func (DisabledProcessor) ListInvoices(context.Context, string, int) ([]Invoice, error) {
	return nil, nil
}

func (DisabledProcessor) ParseWebhook([]byte, string) (*Event, error) {
	return nil, errWebhookUnverifiable
}
