// AngelaMos | 2026
// rolegate.go

package middleware

import (
	"net/http"
	"strings"

	"github.com/carterperez-dev/nexus/internal/core"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

var errNoOrganization = core.ForbiddenError("You are not a member of an organization")

// RequireRole admits callers whose role within their organization is one of
// roles. It must run after Authenticator.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	denied := core.ForbiddenError(
		"Access denied. Required role: " + strings.Join(roles, " or "),
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				core.JSONError(w, core.UnauthorizedError("Not authenticated"))
				return
			}

			if !identity.HasOrganization() {
				core.JSONError(w, errNoOrganization)
				return
			}

			if _, ok := roleSet[identity.Role]; !ok {
				core.JSONError(w, denied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

var (
	OwnerOnly    = RequireRole(RoleOwner)
	AdminOrOwner = RequireRole(RoleOwner, RoleAdmin)
	AnyMember    = RequireRole(RoleOwner, RoleAdmin, RoleMember)
)
