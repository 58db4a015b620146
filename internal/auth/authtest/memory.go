// AngelaMos | 2026
// memory.go

package authtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/nexus/internal/auth"
	"github.com/carterperez-dev/nexus/internal/core"
)

// Repository is an in-memory auth.Repository keyed by token hash.
type Repository struct {
	mu     sync.Mutex
	tokens map[string]auth.RefreshToken
}

func NewRepository() *Repository {
	return &Repository{tokens: map[string]auth.RefreshToken{}}
}

func (r *Repository) Create(_ context.Context, t *auth.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.CreatedAt = time.Now().UTC()
	r.tokens[t.TokenHash] = *t
	return nil
}

func (r *Repository) Rotate(_ context.Context, oldHash string, now time.Time, next *auth.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.tokens[oldHash]
	if !ok || old.IsExpired(now) {
		return fmt.Errorf("rotate refresh token: %w", core.ErrNotFound)
	}

	delete(r.tokens, oldHash)
	next.UserID = old.UserID
	next.CreatedAt = now
	r.tokens[next.TokenHash] = *next
	return nil
}

func (r *Repository) Delete(_ context.Context, userID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tokens[hash]; ok && t.UserID == userID {
		delete(r.tokens, hash)
	}
	return nil
}

func (r *Repository) DeleteByHash(_ context.Context, hash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[hash]
	if !ok {
		return "", nil
	}
	delete(r.tokens, hash)
	return t.UserID, nil
}

func (r *Repository) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for h, t := range r.tokens {
		if t.UserID == userID {
			delete(r.tokens, h)
		}
	}
	return nil
}

func (r *Repository) PruneExpired(_ context.Context, userID string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for h, t := range r.tokens {
		if t.UserID == userID && t.IsExpired(now) {
			delete(r.tokens, h)
			n++
		}
	}
	return n, nil
}

func (r *Repository) ListActiveForUser(_ context.Context, userID string, now time.Time) ([]auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []auth.RefreshToken{}
	for _, t := range r.tokens {
		if t.UserID == userID && !t.IsExpired(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Repository) DeleteForUserByID(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for h, t := range r.tokens {
		if t.ID == id && t.UserID == userID {
			delete(r.tokens, h)
			return nil
		}
	}
	return fmt.Errorf("revoke session: %w", core.ErrNotFound)
}

// CountForUser reports stored tokens for userID, expired included.
func (r *Repository) CountForUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

// Put stores t verbatim. Test setup only.
func (r *Repository) Put(t auth.RefreshToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.TokenHash] = t
}

var _ auth.Repository = (*Repository)(nil)
