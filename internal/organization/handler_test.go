// AngelaMos | 2026
// handler_test.go

package organization_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/organization"
	"github.com/carterperez-dev/nexus/internal/user"
)

func as(id *middleware.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithIdentity(r.Context(), id)))
		})
	}
}

func serve(t *testing.T, f *fixture, caller *middleware.Identity, method, path, body string) (*httptest.ResponseRecorder, core.Response) {
	t.Helper()

	r := chi.NewRouter()
	organization.NewHandler(f.svc).RegisterRoutes(r, as(caller))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))

	var resp core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandlerRoleGates(t *testing.T) {
	f := newFixture(t)
	member := f.addMember(t, "member@acme.com", user.RoleMember)
	admin := f.addMember(t, "admin@acme.com", user.RoleAdmin)

	rec, _ := serve(t, f, f.identity(member), http.MethodGet, "/organization/members", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := serve(t, f, f.identity(member), http.MethodPut, "/organization/", `{"name":"Hacked"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, resp.Success)

	rec, _ = serve(t, f, f.identity(f.owner), http.MethodPost, "/organization/invite", `{"email":"zed@acme.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, resp = serve(t, f, f.identity(member), http.MethodGet, "/organization/invites", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Nil(t, resp.Data)

	rec, resp = serve(t, f, f.identity(admin), http.MethodGet, "/organization/invites", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data, 1)

	rec, _ = serve(t, f, f.identity(admin), http.MethodPut,
		"/organization/members/"+member.ID+"/role", `{"role":"admin"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = serve(t, f, f.identity(f.owner), http.MethodPut,
		"/organization/members/"+member.ID+"/role", `{"role":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Test's role updated to admin", resp.Message)
}

func TestHandlerRejectsMalformedIDs(t *testing.T) {
	f := newFixture(t)

	rec, resp := serve(t, f, f.identity(f.owner), http.MethodDelete, "/organization/members/not-a-uuid", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Member not found", resp.Message)
}

func TestHandlerInviteMessage(t *testing.T) {
	f := newFixture(t)

	rec, resp := serve(t, f, f.identity(f.owner), http.MethodPost, "/organization/invite", `{"email":"zed@acme.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Invitation sent to zed@acme.com", resp.Message)
}

func TestHandlerNoOrganization(t *testing.T) {
	f := newFixture(t)

	rec, resp := serve(t, f, &middleware.Identity{UserID: "u", Role: user.RoleMember}, http.MethodGet, "/organization/", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "You are not a member of an organization", resp.Message)
}
