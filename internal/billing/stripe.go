// AngelaMos | 2026
// stripe.go

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/carterperez-dev/nexus/internal/config"
)

const (
	metadataOrganizationID = "organizationId"
	metadataPlan           = "plan"
)

type StripeProcessor struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProcessor(cfg config.BillingConfig) *StripeProcessor {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)

	return &StripeProcessor{
		api:           api,
		webhookSecret: cfg.StripeWebhookSecret,
	}
}

func (p *StripeProcessor) Enabled() bool { return true }

func (p *StripeProcessor) CreateCustomer(ctx context.Context, cp CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(cp.Email),
		Name:  stripe.String(cp.Name),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrganizationID, cp.OrganizationID)

	c, err := p.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return c.ID, nil
}

func (p *StripeProcessor) CreateCheckoutSession(
	ctx context.Context,
	cp CheckoutParams,
) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(cp.CustomerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(cp.PriceID),
			Quantity: stripe.Int64(1),
		}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(cp.SuccessURL),
		CancelURL:  stripe.String(cp.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrganizationID, cp.OrganizationID)
	params.AddMetadata(metadataPlan, cp.Plan)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProcessor) CreatePortalSession(
	ctx context.Context,
	customerID, returnURL string,
) (*Session, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	s, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create portal session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProcessor) GetSubscription(
	ctx context.Context,
	subscriptionID string,
) (*Subscription, error) {
	if subscriptionID == "" {
		return nil, nil
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get subscription: %w", err)
	}
	return toSubscription(sub), nil
}

func (p *StripeProcessor) CancelSubscription(
	ctx context.Context,
	subscriptionID string,
) (*Subscription, error) {
	return p.setCancelAtPeriodEnd(ctx, subscriptionID, true)
}

func (p *StripeProcessor) ResumeSubscription(
	ctx context.Context,
	subscriptionID string,
) (*Subscription, error) {
	return p.setCancelAtPeriodEnd(ctx, subscriptionID, false)
}

func (p *StripeProcessor) setCancelAtPeriodEnd(
	ctx context.Context,
	subscriptionID string,
	cancel bool,
) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx

	sub, err := p.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe update subscription: %w", err)
	}
	return toSubscription(sub), nil
}

func (p *StripeProcessor) ListInvoices(
	ctx context.Context,
	customerID string,
	limit int,
) ([]Invoice, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Limit = stripe.Int64(int64(limit))
	params.Context = ctx

	invoices := make([]Invoice, 0, limit)

	iter := p.api.Invoices.List(params)
	for len(invoices) < limit && iter.Next() {
		inv := iter.Invoice()
		invoices = append(invoices, Invoice{
			ID:          inv.ID,
			Number:      inv.Number,
			AmountCents: inv.AmountPaid,
			Currency:    string(inv.Currency),
			Status:      string(inv.Status),
			CreatedAt:   time.Unix(inv.Created, 0).UTC(),
			PDFURL:      inv.InvoicePDF,
			HostedURL:   inv.HostedInvoiceURL,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("stripe list invoices: %w", err)
	}

	return invoices, nil
}

// ParseWebhook verifies the Stripe-Signature header before decoding
// anything from payload.
func (p *StripeProcessor) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		out.OrganizationID = s.Metadata[metadataOrganizationID]
		out.Plan = s.Metadata[metadataPlan]
		if s.Subscription != nil {
			out.SubscriptionID = s.Subscription.ID
		}
		if s.Customer != nil {
			out.CustomerID = s.Customer.ID
		}

	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		out.SubscriptionID = sub.ID
		out.SubscriptionStatus = string(sub.Status)

	case EventPaymentSucceeded, EventPaymentFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("decode invoice: %w", err)
		}
		if inv.Customer != nil {
			out.CustomerID = inv.Customer.ID
		}
		out.Currency = string(inv.Currency)
		out.AmountCents = inv.AmountPaid
		if out.Type == EventPaymentFailed {
			out.AmountCents = inv.AmountDue
		}
	}

	return out, nil
}

func toSubscription(sub *stripe.Subscription) *Subscription {
	return &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
}
