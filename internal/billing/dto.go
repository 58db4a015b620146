// AngelaMos | 2026
// dto.go

package billing

import (
	"time"
)

type CheckoutRequest struct {
	Plan string `json:"plan" validate:"required,max=32"`
}

type PlanResponse struct {
	Plan
	Current bool `json:"current"`
}

type SessionResponse struct {
	SessionID string `json:"session_id,omitempty"`
	URL       string `json:"url"`
}

type SubscriptionInfo struct {
	Status            string    `json:"status"`
	CurrentPeriodEnd  time.Time `json:"current_period_end"`
	CancelAtPeriodEnd bool      `json:"cancel_at_period_end"`
}

type InvoiceResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
	PDFURL    string    `json:"pdf_url,omitempty"`
	HostedURL string    `json:"hosted_url,omitempty"`
}

type SubscriptionResponse struct {
	Plan         string            `json:"plan"`
	PlanDetails  *Plan             `json:"plan_details"`
	Subscription *SubscriptionInfo `json:"subscription"`
	Invoices     []InvoiceResponse `json:"invoices"`
}

func toSubscriptionInfo(s *Subscription) *SubscriptionInfo {
	if s == nil {
		return nil
	}
	return &SubscriptionInfo{
		Status:            s.Status,
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

func toInvoiceResponses(invoices []Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, InvoiceResponse{
			ID:        inv.ID,
			Number:    inv.Number,
			Amount:    centsToAmount(inv.AmountCents),
			Currency:  inv.Currency,
			Status:    inv.Status,
			Date:      inv.CreatedAt,
			PDFURL:    inv.PDFURL,
			HostedURL: inv.HostedURL,
		})
	}
	return out
}
