// AngelaMos | 2026
// handler_test.go

package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/user"
)

func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithIdentity(r.Context(), &middleware.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestHandlerRoutes(t *testing.T) {
	f := newFixture(t)
	u := f.seed(t, user.RoleOwner, "password123")

	r := chi.NewRouter()
	user.NewHandler(f.svc).RegisterRoutes(r, asUser(u.ID))

	t.Run("get me", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				User struct {
					Email        string `json:"email"`
					PasswordHash string `json:"password_hash"`
				} `json:"user"`
			} `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.True(t, body.Success)
		require.Equal(t, u.Email, body.Data.User.Email)
		require.Empty(t, body.Data.User.PasswordHash)
	})

	t.Run("update validation", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/users/me", strings.NewReader(`{"avatar":"not a url"}`))
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner cannot delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/users/me", strings.NewReader(`{"password":"password123"}`))
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body core.Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		require.False(t, body.Success)
		require.Equal(t, "CANNOT_DELETE_OWNER", body.Code)
	})

	t.Run("change password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/users/me/password",
			strings.NewReader(`{"current_password":"password123","new_password":"brandnew123"}`))
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		stored, err := f.repo.GetByID(context.Background(), u.ID)
		require.NoError(t, err)
		require.Equal(t, 1, stored.TokenVersion)
	})
}
