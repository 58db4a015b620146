// AngelaMos | 2026
// handler.go

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
)

type Middleware = func(http.Handler) http.Handler

// Routes holds the middleware the auth endpoints are mounted with.
// Limiter guards every public endpoint; StrictLimiter additionally guards
// forgot-password.
type Routes struct {
	Authenticator Middleware
	OptionalAuth  Middleware
	Limiter       Middleware
	StrictLimiter Middleware
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router, mw Routes) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(mw.Limiter)

			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)
			r.Post("/reset-password", h.ResetPassword)
			r.Get("/verify-email/{token}", h.VerifyEmail)
			r.With(mw.StrictLimiter).Post("/forgot-password", h.ForgotPassword)
		})

		r.With(mw.OptionalAuth).Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticator)
			r.Get("/sessions", h.ListSessions)
			r.Delete("/sessions/{sessionID}", h.RevokeSession)
		})
	})
}

func clientInfo(r *http.Request) ClientInfo {
	return ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: middleware.ClientIP(r),
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), req, clientInfo(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.MessageWithData(w, http.StatusCreated,
		"Registration successful. Please check your email to verify your account.", resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), req, clientInfo(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if r.ContentLength != 0 {
		if err := core.Bind(w, r, &req); err != nil {
			core.JSONError(w, err)
			return
		}
	}

	if err := h.service.Logout(r.Context(), middleware.GetIdentity(r.Context()), req.RefreshToken); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	resp, err := h.service.Refresh(r.Context(), req.RefreshToken, clientInfo(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, forgotPasswordMessage)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := core.Bind(w, r, &req); err != nil {
		core.JSONError(w, err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Password reset successful. Please login with your new password.")
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.service.VerifyEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.Message(w, http.StatusOK, "Email verified successfully")
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ListSessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if _, err := uuid.Parse(sessionID); err != nil {
		core.JSONError(w, ErrSessionNotFound)
		return
	}

	if err := h.service.RevokeSession(r.Context(), middleware.GetUserID(r.Context()), sessionID); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
