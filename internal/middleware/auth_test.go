// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/core"
)

type stubVerifier struct {
	claims map[string]*AccessTokenClaims
	errs   map[string]error
}

func (v stubVerifier) VerifyAccessToken(
	_ context.Context,
	token string,
) (*AccessTokenClaims, error) {
	if err, ok := v.errs[token]; ok {
		return nil, err
	}
	if c, ok := v.claims[token]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
}

type stubResolver struct {
	identities map[string]*Identity
	versions   map[string]int
}

func (s stubResolver) ResolveIdentity(
	_ context.Context,
	claims *AccessTokenClaims,
) (*Identity, error) {
	id, ok := s.identities[claims.UserID]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if claims.TokenVersion < s.versions[claims.UserID] {
		return nil, core.ErrTokenRevoked
	}
	return id, nil
}

func newAuthFixtures() (stubVerifier, stubResolver) {
	verifier := stubVerifier{
		claims: map[string]*AccessTokenClaims{
			"good":   {UserID: "u1", TokenVersion: 2},
			"stale":  {UserID: "u1", TokenVersion: 1},
			"ghost":  {UserID: "deleted", TokenVersion: 0},
			"member": {UserID: "u2"},
		},
		errs: map[string]error{
			"expired": fmt.Errorf("verify token: %w", core.ErrTokenExpired),
		},
	}
	resolver := stubResolver{
		identities: map[string]*Identity{
			"u1": {UserID: "u1", Role: RoleOwner, OrganizationID: "o1", Plan: "free"},
			"u2": {UserID: "u2", Role: RoleMember, OrganizationID: "o1"},
		},
		versions: map[string]int{"u1": 2},
	}
	return verifier, resolver
}

func doRequest(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	return body.Code
}

func TestAuthenticator(t *testing.T) {
	verifier, resolver := newAuthFixtures()

	var seen *Identity
	h := Authenticator(verifier, resolver)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			seen = GetIdentity(r.Context())
			w.WriteHeader(http.StatusOK)
		},
	))

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{name: "missing token", token: "", wantCode: "MISSING_TOKEN"},
		{name: "expired token", token: "expired", wantCode: "TOKEN_EXPIRED"},
		{name: "bad signature", token: "garbage", wantCode: "INVALID_TOKEN"},
		{name: "user deleted", token: "ghost", wantCode: "USER_NOT_FOUND"},
		{name: "stale token version", token: "stale", wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			rec := doRequest(h, tt.token)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, tt.wantCode, errorCode(t, rec))
			require.Nil(t, seen)
		})
	}

	t.Run("valid token attaches identity", func(t *testing.T) {
		rec := doRequest(h, "good")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, seen)
		require.Equal(t, "u1", seen.UserID)
		require.Equal(t, "o1", seen.OrganizationID)
	})
}

func TestOptionalAuth(t *testing.T) {
	verifier, resolver := newAuthFixtures()

	var authenticated bool
	h := OptionalAuth(verifier, resolver)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			authenticated = IsAuthenticated(r.Context())
			w.WriteHeader(http.StatusOK)
		},
	))

	for _, token := range []string{"", "expired", "garbage", "ghost", "stale"} {
		rec := doRequest(h, token)
		require.Equal(t, http.StatusOK, rec.Code, token)
		require.False(t, authenticated, token)
	}

	rec := doRequest(h, "good")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, authenticated)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer   abc  ", want: "abc"},
		{header: "Basic abc", want: ""},
		{header: "Bearer", want: ""},
		{header: "", want: ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		require.Equal(t, tt.want, ExtractToken(req), tt.header)
	}
}
