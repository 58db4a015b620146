// AngelaMos | 2026
// context.go

package middleware

import (
	"context"
	"time"
)

type contextKey string

const (
	identityKey  contextKey = "identity"
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

// AccessTokenClaims is what a verified access token asserts.
type AccessTokenClaims struct {
	UserID       string
	TokenVersion int
	ExpiresAt    time.Time
}

// Identity is the authenticated caller together with its organization.
type Identity struct {
	UserID           string
	Email            string
	FirstName        string
	LastName         string
	Role             string
	OrganizationID   string
	OrganizationName string
	OrganizationSlug string
	Plan             string
}

func (i *Identity) HasOrganization() bool {
	return i.OrganizationID != ""
}

func (i *Identity) FullName() string {
	return i.FirstName + " " + i.LastName
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func GetIdentity(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityKey).(*Identity); ok {
		return id
	}
	return nil
}

func GetUserID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.UserID
	}
	return ""
}

func GetUserRole(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.Role
	}
	return ""
}

func GetOrganizationID(ctx context.Context) string {
	if id := GetIdentity(ctx); id != nil {
		return id.OrganizationID
	}
	return ""
}

func IsAuthenticated(ctx context.Context) bool {
	return GetIdentity(ctx) != nil
}
