// AngelaMos | 2026
// errors.go

package billing

import (
	"net/http"

	"github.com/carterperez-dev/nexus/internal/core"
)

func badRequest(message, code string) *core.AppError {
	return core.NewAppError(core.ErrInvalidInput, message, http.StatusBadRequest, code)
}

var (
	ErrBillingDisabled = core.NewAppError(
		core.ErrExternalService,
		"Billing is not configured",
		http.StatusServiceUnavailable,
		"BILLING_DISABLED",
	)

	ErrInvalidPlan     = badRequest("Invalid plan selected", "INVALID_PLAN")
	ErrNoBillingInfo   = badRequest("No billing information found", "NO_BILLING_INFO")
	ErrNoSubscription  = badRequest("No active subscription found", "NO_SUBSCRIPTION")
	ErrPlanUnavailable = badRequest(
		"Invalid plan or plan not available for subscription", "INVALID_PLAN")
	ErrInvalidSignature = badRequest(
		"Webhook signature verification failed", "INVALID_SIGNATURE")

	ErrProcessorFailed = core.ExternalServiceError("Payment processor request failed")
)
