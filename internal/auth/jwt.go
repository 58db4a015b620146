// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
)

const (
	tokenTypeAccess   = "access"
	claimType         = "type"
	claimTokenVersion = "token_version"
)

// JWTManager signs ES256 access tokens and publishes the verifying key as
// a JWKS so other services can check tokens without sharing secrets.
type JWTManager struct {
	signingKey jwk.Key
	verifyKey  jwk.Key
	jwks       jwk.Set
	config     config.JWTConfig
}

// EnsureKeys writes a fresh key pair when auto generation is enabled and
// the private key file does not exist yet.
func EnsureKeys(cfg config.JWTConfig) (bool, error) {
	if !cfg.AutoGenerateKeys {
		return false, nil
	}

	switch _, err := os.Stat(cfg.PrivateKeyPath); {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat private key: %w", err)
	}

	if err := GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
		return false, err
	}
	return true, nil
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	signingKey, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	verifyKey, err := signingKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := verifyKey.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	jwks := jwk.NewSet()
	if err := jwks.AddKey(verifyKey); err != nil {
		return nil, fmt.Errorf("publish key: %w", err)
	}

	return &JWTManager{
		signingKey: signingKey,
		verifyKey:  verifyKey,
		jwks:       jwks,
		config:     cfg,
	}, nil
}

// loadSigningKey reads a PEM EC key and stamps it with ES256 and a kid
// derived from its thumbprint, so restarts keep publishing the same JWKS.
func loadSigningKey(path string) (jwk.Key, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	key, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	thumb, err := key.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("key thumbprint: %w", err)
	}

	for name, value := range map[string]any{
		jwk.AlgorithmKey: jwa.ES256(),
		jwk.KeyIDKey:     fmt.Sprintf("%x", thumb[:8]),
	} {
		if err := key.Set(name, value); err != nil {
			return nil, fmt.Errorf("set %s: %w", name, err)
		}
	}

	return key, nil
}

// GenerateKeyPair writes a P-256 key pair as PEM. Only the private half is
// kept owner-readable.
func GenerateKeyPair(privateKeyPath, publicKeyPath string) error {
	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}

	private, err := jwk.Import(raw)
	if err != nil {
		return fmt.Errorf("import private key: %w", err)
	}
	public, err := private.PublicKey()
	if err != nil {
		return fmt.Errorf("derive public key: %w", err)
	}

	if err := writePEM(privateKeyPath, private, 0o600); err != nil {
		return err
	}
	return writePEM(publicKeyPath, public, 0o644)
}

func writePEM(path string, key jwk.Key, mode os.FileMode) error {
	encoded, err := jwk.Pem(key)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, encoded, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// IssueAccessToken carries identity and token_version only. Role and
// organization are resolved per request so changes apply immediately.
func (m *JWTManager) IssueAccessToken(userID string, tokenVersion int) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.config.AccessTokenExpire)

	token, err := jwt.NewBuilder().
		JwtID(uuid.NewString()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(userID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim(claimTokenVersion, tokenVersion).
		Claim(claimType, tokenTypeAccess).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build access token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.signingKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}

	return string(signed), expiresAt, nil
}

// VerifyAccessToken distinguishes expiry from every other failure so the
// client knows to refresh rather than sign in again.
func (m *JWTManager) VerifyAccessToken(
	_ context.Context,
	raw string,
) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verifyKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
	)
	switch {
	case err != nil && isExpired(err):
		return nil, fmt.Errorf("verify access token: %w", core.ErrTokenExpired)
	case err != nil:
		return nil, fmt.Errorf("verify access token: %w", core.ErrTokenInvalid)
	}

	var (
		kind    string
		version float64
	)
	if err := token.Get(claimType, &kind); err != nil || kind != tokenTypeAccess {
		return nil, fmt.Errorf("verify access token: wrong type: %w", core.ErrTokenInvalid)
	}
	if err := token.Get(claimTokenVersion, &version); err != nil {
		return nil, fmt.Errorf("verify access token: no token_version: %w", core.ErrTokenInvalid)
	}
	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("verify access token: no subject: %w", core.ErrTokenInvalid)
	}

	expiresAt, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		UserID:       subject,
		TokenVersion: int(version),
		ExpiresAt:    expiresAt,
	}, nil
}

// isExpired matches jwx's validation message for a failed exp check.
func isExpired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied")
}

func (m *JWTManager) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		core.JSON(w, http.StatusOK, m.jwks)
	}
}

func (m *JWTManager) KeyID() string {
	var kid string
	_ = m.signingKey.Get(jwk.KeyIDKey, &kid) //nolint:errcheck // set by loadSigningKey
	return kid
}

type RefreshTokenData struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}

// IssueRefreshToken returns an opaque value; only Hash is persisted.
func (m *JWTManager) IssueRefreshToken() (*RefreshTokenData, error) {
	raw, hash, err := core.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &RefreshTokenData{
		Token:     raw,
		Hash:      hash,
		ExpiresAt: time.Now().Add(m.config.RefreshTokenExpire),
	}, nil
}
