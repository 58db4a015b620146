// AngelaMos | 2026
// handler.go

package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
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
) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.AnyMember)

		r.Get("/stats", h.Stats)
		r.Get("/activity", h.Activity)
		r.Get("/charts", h.Charts)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Stats(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", DefaultFeedLimit)

	resp, err := h.service.Feed(r.Context(), middleware.GetOrganizationID(r.Context()), page, limit)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Charts(
		r.Context(),
		middleware.GetOrganizationID(r.Context()),
		r.URL.Query().Get("period"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
