// AngelaMos | 2026
// handler.go

package user

import (
	"net/http"

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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Delete("/me", h.DeleteMe)
		r.Put("/me/password", h.ChangePassword)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateMeRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	u, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Password changed successfully. Please login again.")
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	var req DeleteMeRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.DeleteMe(r.Context(), middleware.GetUserID(r.Context()), req.Password); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Account deleted successfully")
}
