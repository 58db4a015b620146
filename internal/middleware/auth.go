// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/nexus/internal/core"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

// IdentityResolver loads the user behind verified claims. It returns
// core.ErrNotFound when the user no longer exists and core.ErrTokenRevoked
// when the claims predate the user's current token version.
type IdentityResolver interface {
	ResolveIdentity(
		ctx context.Context,
		claims *AccessTokenClaims,
	) (*Identity, error)
}

var (
	errMissingToken = core.NewAppError(
		core.ErrUnauthorized,
		"Not authorized, no token provided",
		http.StatusUnauthorized,
		"MISSING_TOKEN",
	)
	errUserNotFound = core.NewAppError(
		core.ErrUnauthorized,
		"User not found",
		http.StatusUnauthorized,
		"USER_NOT_FOUND",
	)
)

func Authenticator(
	verifier TokenVerifier,
	resolver IdentityResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r, verifier, resolver)
			if err != nil {
				core.JSONError(w, err)
				return
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid token is present and
// otherwise lets the request through as a guest.
func OptionalAuth(
	verifier TokenVerifier,
	resolver IdentityResolver,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := authenticate(r, verifier, resolver); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func authenticate(
	r *http.Request,
	verifier TokenVerifier,
	resolver IdentityResolver,
) (*Identity, error) {
	token := ExtractToken(r)
	if token == "" {
		return nil, errMissingToken
	}

	claims, err := verifier.VerifyAccessToken(r.Context(), token)
	if err != nil {
		return nil, classifyTokenError(err)
	}

	identity, err := resolver.ResolveIdentity(r.Context(), claims)
	switch {
	case err == nil:
		core.TagSpan(r.Context(),
			core.AttrUserID.String(identity.UserID),
			core.AttrOrganizationID.String(identity.OrganizationID),
		)
		return identity, nil
	case errors.Is(err, core.ErrNotFound):
		return nil, errUserNotFound
	case errors.Is(err, core.ErrTokenRevoked), errors.Is(err, core.ErrTokenInvalid):
		return nil, core.TokenInvalidError()
	default:
		return nil, err
	}
}

func classifyTokenError(err error) error {
	if errors.Is(err, core.ErrTokenExpired) {
		return core.TokenExpiredError()
	}
	return core.TokenInvalidError()
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
