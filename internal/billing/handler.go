// AngelaMos | 2026
// handler.go

package billing

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
)

const (
	maxWebhookBodySize = 1 << 20
	signatureHeader    = "Stripe-Signature"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/billing", func(r chi.Router) {
		r.Post("/webhook", h.Webhook)
		r.With(optionalAuth).Get("/plans", h.Plans)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.AnyMember)

			r.Get("/subscription", h.Subscription)

			r.Group(func(r chi.Router) {
				r.Use(middleware.OwnerOnly)

				r.Post("/checkout", h.Checkout)
				r.Post("/portal", h.Portal)
				r.Post("/subscription/cancel", h.CancelSubscription)
				r.Post("/subscription/resume", h.ResumeSubscription)
			})
		})
	})
}

func (h *Handler) Plans(w http.ResponseWriter, r *http.Request) {
	core.OK(w, h.service.Plans(middleware.GetIdentity(r.Context())))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	resp, err := h.service.Checkout(r.Context(), middleware.GetIdentity(r.Context()), req.Plan)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Portal(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Portal(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Subscription(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Subscription(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CancelSubscription(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.MessageWithData(w, http.StatusOK,
		"Subscription will be canceled at the end of the billing period", resp)
}

func (h *Handler) ResumeSubscription(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ResumeSubscription(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.MessageWithData(w, http.StatusOK, "Subscription resumed", resp)
}

// Webhook reads the body verbatim; signature verification covers the exact
// bytes the processor sent.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		core.BadRequest(w, "Unable to read request body")
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get(signatureHeader)); err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, map[string]bool{"received": true})
}
