// AngelaMos | 2026
// stripe_test.go

package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/carterperez-dev/nexus/internal/billing"
	"github.com/carterperez-dev/nexus/internal/config"
)

func signedHeader(payload []byte, secret string) string {
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestStripeParseWebhook(t *testing.T) {
	p := billing.NewStripeProcessor(testBilling)

	tests := []struct {
		name    string
		payload string
		want    billing.Event
	}{
		{
			name: "checkout completed",
			payload: `{"id":"evt_1","object":"event","api_version":"2023-10-16",
				"type":"checkout.session.completed",
				"data":{"object":{"id":"cs_1","object":"checkout.session",
				"customer":"cus_1","subscription":"sub_1",
				"metadata":{"organizationId":"org-1","plan":"pro"}}}}`,
			want: billing.Event{
				ID:             "evt_1",
				Type:           billing.EventCheckoutCompleted,
				OrganizationID: "org-1",
				Plan:           "pro",
				CustomerID:     "cus_1",
				SubscriptionID: "sub_1",
			},
		},
		{
			name: "subscription updated",
			payload: `{"id":"evt_2","object":"event","api_version":"2023-10-16",
				"type":"customer.subscription.updated",
				"data":{"object":{"id":"sub_1","object":"subscription","status":"canceled"}}}`,
			want: billing.Event{
				ID:                 "evt_2",
				Type:               billing.EventSubscriptionUpdated,
				SubscriptionID:     "sub_1",
				SubscriptionStatus: "canceled",
			},
		},
		{
			name: "payment failed uses amount due",
			payload: `{"id":"evt_3","object":"event","api_version":"2023-10-16",
				"type":"invoice.payment_failed",
				"data":{"object":{"id":"in_1","object":"invoice","customer":"cus_1",
				"amount_paid":0,"amount_due":9900,"currency":"usd"}}}`,
			want: billing.Event{
				ID:          "evt_3",
				Type:        billing.EventPaymentFailed,
				CustomerID:  "cus_1",
				AmountCents: 9900,
				Currency:    "usd",
			},
		},
		{
			name: "unknown type",
			payload: `{"id":"evt_4","object":"event","api_version":"2023-10-16",
				"type":"customer.created","data":{"object":{"id":"cus_2","object":"customer"}}}`,
			want: billing.Event{ID: "evt_4", Type: "customer.created"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := []byte(tt.payload)
			ev, err := p.ParseWebhook(payload, signedHeader(payload, testBilling.StripeWebhookSecret))
			require.NoError(t, err)
			require.Equal(t, tt.want, *ev)
		})
	}
}

func TestStripeParseWebhookRejects(t *testing.T) {
	p := billing.NewStripeProcessor(testBilling)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_1","object":"checkout.session"}}}`)

	_, err := p.ParseWebhook(payload, signedHeader(payload, "whsec_other"))
	require.Error(t, err)

	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-3] = ' '
	_, err = p.ParseWebhook(tampered, signedHeader(payload, testBilling.StripeWebhookSecret))
	require.Error(t, err)

	_, err = p.ParseWebhook(payload, "")
	require.Error(t, err)
}

func TestNewProcessorSelectsImplementation(t *testing.T) {
	require.True(t, billing.NewProcessor(testBilling).Enabled())

	disabled := billing.NewProcessor(config.BillingConfig{StripeSecretKey: "not-a-key"})
	require.False(t, disabled.Enabled())

	_, err := disabled.ParseWebhook([]byte(`{}`), "t=1,v1=abc")
	require.Error(t, err)
}
