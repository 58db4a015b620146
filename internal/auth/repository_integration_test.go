// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/auth"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/core/coretest"
	"github.com/carterperez-dev/nexus/internal/user"
)

func TestRefreshTokenRotationIntegration(t *testing.T) {
	db := coretest.Postgres(t)
	ctx := context.Background()
	tokens := auth.NewRepository(db.DB)
	users := user.NewRepository(db.DB)

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        "ada@acme.com",
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         user.RoleMember,
	}
	require.NoError(t, users.Create(ctx, u))

	now := time.Now().UTC()
	first := &auth.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: "hash-0",
		ExpiresAt: now.Add(time.Hour),
		UserAgent: "test",
		IPAddress: "127.0.0.1",
	}
	require.NoError(t, tokens.Create(ctx, first))

	t.Run("single winner", func(t *testing.T) {
		const racers = 8

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners []string
		)
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				next := &auth.RefreshToken{
					ID:        uuid.NewString(),
					TokenHash: "hash-race-" + uuid.NewString(),
					ExpiresAt: now.Add(time.Hour),
				}
				if err := tokens.Rotate(ctx, "hash-0", now, next); err == nil {
					mu.Lock()
					winners = append(winners, next.UserID)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, []string{u.ID}, winners)

		active, err := tokens.ListActiveForUser(ctx, u.ID, now)
		require.NoError(t, err)
		require.Len(t, active, 1)
	})

	t.Run("expired token", func(t *testing.T) {
		stale := &auth.RefreshToken{
			ID:        uuid.NewString(),
			UserID:    u.ID,
			TokenHash: "hash-stale",
			ExpiresAt: now.Add(-time.Minute),
		}
		require.NoError(t, tokens.Create(ctx, stale))

		err := tokens.Rotate(ctx, "hash-stale", now, &auth.RefreshToken{
			ID:        uuid.NewString(),
			TokenHash: "hash-never",
			ExpiresAt: now.Add(time.Hour),
		})
		require.ErrorIs(t, err, core.ErrNotFound)

		pruned, err := tokens.PruneExpired(ctx, u.ID, now)
		require.NoError(t, err)
		require.EqualValues(t, 1, pruned)
	})

	t.Run("revoke other user session", func(t *testing.T) {
		active, err := tokens.ListActiveForUser(ctx, u.ID, now)
		require.NoError(t, err)
		require.Len(t, active, 1)

		err = tokens.DeleteForUserByID(ctx, uuid.NewString(), active[0].ID)
		require.ErrorIs(t, err, core.ErrNotFound)

		require.NoError(t, tokens.DeleteForUserByID(ctx, u.ID, active[0].ID))
	})
}
