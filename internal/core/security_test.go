// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "not-a-hash")
	require.Error(t, err)

	_, err = VerifyPassword("x", "$bcrypt$v=19$m=1,t=1,p=1$a$b")
	require.Error(t, err)
}

func TestVerifyPasswordWithRehash(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)

	ok, newHash, err := VerifyPasswordWithRehash("secret-password", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, newHash)

	original := currentArgon
	t.Cleanup(func() { currentArgon = original })
	currentArgon.time = 2

	ok, newHash, err = VerifyPasswordWithRehash("secret-password", hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, newHash, "t=2")
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	ok, newHash, err := VerifyPasswordTimingSafe("anything", nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, newHash)

	empty := ""
	ok, _, err = VerifyPasswordTimingSafe("anything", &empty)
	require.NoError(t, err)
	require.False(t, ok)

	hash, err := HashPassword("anything")
	require.NoError(t, err)
	ok, _, err = VerifyPasswordTimingSafe("anything", &hash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewOpaqueToken(t *testing.T) {
	raw, hash, err := NewOpaqueToken()
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.Len(t, hash, 64)
	require.Equal(t, HashToken(raw), hash)
	require.NotContains(t, raw, "=")

	raw2, _, err := NewOpaqueToken()
	require.NoError(t, err)
	require.NotEqual(t, raw, raw2)
}
