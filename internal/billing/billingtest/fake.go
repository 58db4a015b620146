// AngelaMos | 2026
// fake.go

package billingtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/nexus/internal/billing"
)

// Processor is a scripted billing.Processor. Webhooks are accepted only
// when the signature equals ValidSignature.
type Processor struct {
	mu sync.Mutex

	ValidSignature string
	Events         map[string]*billing.Event

	Subscriptions map[string]*billing.Subscription
	Invoices      map[string][]billing.Invoice
	InvoiceErr    error
	Err           error

	Customers []billing.CustomerParams
	Checkouts []billing.CheckoutParams
	Portals   []string
}

func NewProcessor() *Processor {
	return &Processor{
		ValidSignature: "valid",
		Events:         map[string]*billing.Event{},
		Subscriptions:  map[string]*billing.Subscription{},
		Invoices:       map[string][]billing.Invoice{},
	}
}

func (p *Processor) Enabled() bool { return true }

func (p *Processor) CreateCustomer(_ context.Context, cp billing.CustomerParams) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return "", p.Err
	}
	p.Customers = append(p.Customers, cp)
	return fmt.Sprintf("cus_%d", len(p.Customers)), nil
}

func (p *Processor) CreateCheckoutSession(
	_ context.Context,
	cp billing.CheckoutParams,
) (*billing.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	p.Checkouts = append(p.Checkouts, cp)
	id := fmt.Sprintf("cs_%d", len(p.Checkouts))
	return &billing.Session{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (p *Processor) CreatePortalSession(
	_ context.Context,
	customerID, returnURL string,
) (*billing.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	p.Portals = append(p.Portals, returnURL)
	return &billing.Session{ID: "bps_1", URL: "https://portal.test/" + customerID}, nil
}

func (p *Processor) GetSubscription(_ context.Context, id string) (*billing.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id == "" {
		return nil, nil
	}
	if p.Err != nil {
		return nil, p.Err
	}
	sub, ok := p.Subscriptions[id]
	if !ok {
		return nil, errors.New("no such subscription")
	}
	c := *sub
	return &c, nil
}

func (p *Processor) CancelSubscription(_ context.Context, id string) (*billing.Subscription, error) {
	return p.setCancel(id, true)
}

func (p *Processor) ResumeSubscription(_ context.Context, id string) (*billing.Subscription, error) {
	return p.setCancel(id, false)
}

func (p *Processor) setCancel(id string, cancel bool) (*billing.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Err != nil {
		return nil, p.Err
	}
	sub, ok := p.Subscriptions[id]
	if !ok {
		return nil, errors.New("no such subscription")
	}
	sub.CancelAtPeriodEnd = cancel
	c := *sub
	return &c, nil
}

func (p *Processor) ListInvoices(_ context.Context, customerID string, limit int) ([]billing.Invoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.InvoiceErr != nil {
		return nil, p.InvoiceErr
	}
	invoices := p.Invoices[customerID]
	if len(invoices) > limit {
		invoices = invoices[:limit]
	}
	return append([]billing.Invoice(nil), invoices...), nil
}

// ParseWebhook treats payload as the key into Events.
func (p *Processor) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if signature != p.ValidSignature {
		return nil, errors.New("signature mismatch")
	}
	ev, ok := p.Events[string(payload)]
	if !ok {
		return nil, errors.New("unknown payload")
	}
	c := *ev
	return &c, nil
}

// Deduper is an in-memory billing.Deduper.
type Deduper struct {
	mu      sync.Mutex
	claimed map[string]struct{}
	Err     error
}

func NewDeduper() *Deduper {
	return &Deduper{claimed: map[string]struct{}{}}
}

func (d *Deduper) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Err != nil {
		return false, d.Err
	}
	if _, ok := d.claimed[key]; ok {
		return false, nil
	}
	d.claimed[key] = struct{}{}
	return true, nil
}

func (d *Deduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.claimed, key)
	return nil
}
