// AngelaMos | 2026
// jwt_test.go

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/auth"
	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/core"
)

func jwtConfig(t *testing.T) config.JWTConfig {
	t.Helper()

	dir := t.TempDir()
	return config.JWTConfig{
		PrivateKeyPath:     filepath.Join(dir, "keys", "private.pem"),
		PublicKeyPath:      filepath.Join(dir, "keys", "public.pem"),
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "nexus-test",
		Audience:           "nexus-test-api",
		AutoGenerateKeys:   true,
	}
}

func newJWTManager(t *testing.T, cfg config.JWTConfig) *auth.JWTManager {
	t.Helper()

	_, err := auth.EnsureKeys(cfg)
	require.NoError(t, err)

	m, err := auth.NewJWTManager(cfg)
	require.NoError(t, err)
	return m
}

func TestEnsureKeysGeneratesOnce(t *testing.T) {
	cfg := jwtConfig(t)

	generated, err := auth.EnsureKeys(cfg)
	require.NoError(t, err)
	require.True(t, generated)

	generated, err = auth.EnsureKeys(cfg)
	require.NoError(t, err)
	require.False(t, generated)

	cfg.AutoGenerateKeys = false
	cfg.PrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")
	generated, err = auth.EnsureKeys(cfg)
	require.NoError(t, err)
	require.False(t, generated)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newJWTManager(t, jwtConfig(t))

	token, expiresAt, err := m.IssueAccessToken("user-123", 4)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := m.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, 4, claims.TokenVersion)
}

func TestVerifyAccessTokenFailures(t *testing.T) {
	cfg := jwtConfig(t)
	m := newJWTManager(t, cfg)

	_, err := m.VerifyAccessToken(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, core.ErrTokenInvalid)

	t.Run("expired", func(t *testing.T) {
		expiredCfg := cfg
		expiredCfg.AccessTokenExpire = -time.Minute
		expired, err := auth.NewJWTManager(expiredCfg)
		require.NoError(t, err)

		token, _, err := expired.IssueAccessToken("user-1", 0)
		require.NoError(t, err)

		_, err = m.VerifyAccessToken(context.Background(), token)
		require.ErrorIs(t, err, core.ErrTokenExpired)
	})

	t.Run("other key", func(t *testing.T) {
		other := newJWTManager(t, jwtConfig(t))
		token, _, err := other.IssueAccessToken("user-1", 0)
		require.NoError(t, err)

		_, err = m.VerifyAccessToken(context.Background(), token)
		require.ErrorIs(t, err, core.ErrTokenInvalid)
	})

	t.Run("wrong audience", func(t *testing.T) {
		otherCfg := cfg
		otherCfg.Audience = "someone-else"
		other, err := auth.NewJWTManager(otherCfg)
		require.NoError(t, err)

		token, _, err := other.IssueAccessToken("user-1", 0)
		require.NoError(t, err)

		_, err = m.VerifyAccessToken(context.Background(), token)
		require.ErrorIs(t, err, core.ErrTokenInvalid)
	})
}

func TestRefreshTokenIsOpaque(t *testing.T) {
	m := newJWTManager(t, jwtConfig(t))

	a, err := m.IssueRefreshToken()
	require.NoError(t, err)
	b, err := m.IssueRefreshToken()
	require.NoError(t, err)

	require.NotEqual(t, a.Token, b.Token)
	require.Equal(t, core.HashToken(a.Token), a.Hash)
	require.NotEqual(t, a.Token, a.Hash)
}

func TestJWKSHandler(t *testing.T) {
	m := newJWTManager(t, jwtConfig(t))

	rec := httptest.NewRecorder()
	m.JWKSHandler()(rec, httptest.NewRequest(http.MethodGet, "/.well-known/jwks.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Keys, 1)
	require.Equal(t, m.KeyID(), body.Keys[0]["kid"])
	require.NotContains(t, body.Keys[0], "d")
}
