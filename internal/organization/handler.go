// AngelaMos | 2026
// handler.go

package organization

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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
	r.Route("/organization", func(r chi.Router) {
		r.Post("/accept-invite", h.AcceptInvite)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.AnyMember)

			r.Get("/", h.Get)
			r.Get("/members", h.ListMembers)

			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOrOwner)

				r.Put("/", h.Update)
				r.Get("/invites", h.ListInvites)
				r.Post("/invite", h.Invite)
				r.Delete("/members/{memberID}", h.RemoveMember)
				r.Delete("/invites/{inviteID}", h.CancelInvite)
			})

			r.With(middleware.OwnerOnly).Put("/members/{memberID}/role", h.ChangeMemberRole)
		})
	})
}

// pathID rejects non-UUID path parameters before they reach Postgres.
func pathID(r *http.Request, name string, notFound error) (string, error) {
	id := chi.URLParam(r, name)
	if _, err := uuid.Parse(id); err != nil {
		return "", notFound
	}
	return id, nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Get(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrganizationRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	resp, err := h.service.Update(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, members)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	invite, err := h.service.Invite(r.Context(), middleware.GetIdentity(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.MessageWithData(w, http.StatusCreated, fmt.Sprintf("Invitation sent to %s", invite.Email), invite)
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req AcceptInviteRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.AcceptInvite(r.Context(), req); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Successfully joined the organization")
}

func (h *Handler) ListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := h.service.ListInvites(r.Context(), middleware.GetOrganizationID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, invites)
}

func (h *Handler) CancelInvite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "inviteID", ErrInviteNotFound)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.CancelInvite(r.Context(), middleware.GetOrganizationID(r.Context()), id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Invitation cancelled")
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "memberID", ErrMemberNotFound)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.RemoveMember(r.Context(), middleware.GetIdentity(r.Context()), id); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Member removed successfully")
}

func (h *Handler) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "memberID", ErrMemberNotFound)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	var req ChangeRoleRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	m, err := h.service.ChangeMemberRole(r.Context(), middleware.GetIdentity(r.Context()), id, req.Role)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.MessageWithData(w, http.StatusOK,
		fmt.Sprintf("%s's role updated to %s", m.FirstName, m.Role),
		RoleChangeResponse{ID: m.ID, Role: m.Role},
	)
}
