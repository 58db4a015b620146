// AngelaMos | 2026
// memory.go

package usertest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/user"
)

// Repository is an in-memory user.Repository that enforces the same unique
// email and single-owner rules as the Postgres schema.
type Repository struct {
	mu    sync.Mutex
	users map[string]*user.User
	Now   func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		users: map[string]*user.User{},
		Now:   time.Now,
	}
}

func clone(u *user.User) *user.User {
	c := *u
	return &c
}

func (r *Repository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	if err := r.checkOwner(u.ID, u.OrganizationID, u.Role); err != nil {
		return err
	}

	now := r.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if !u.NotifyEmail && !u.NotifyPush && !u.NotifyWeeklyDigest {
		u.NotifyEmail = true
		u.NotifyPush = true
	}
	r.users[u.ID] = clone(u)
	return nil
}

func (r *Repository) checkOwner(id string, orgID *string, role string) error {
	if role != user.RoleOwner || orgID == nil {
		return nil
	}
	for _, existing := range r.users {
		if existing.ID != id && existing.IsOwner() && existing.OrgID() == *orgID {
			return fmt.Errorf("organization already has an owner: %w", core.ErrConflict)
		}
	}
	return nil
}

func (r *Repository) find(match func(*user.User) bool) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func (r *Repository) GetByID(_ context.Context, id string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.ID == id })
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return r.find(func(u *user.User) bool { return u.Email == email })
}

func (r *Repository) GetByVerificationToken(_ context.Context, hash string) (*user.User, error) {
	return r.find(func(u *user.User) bool {
		return u.VerificationTokenHash != nil && *u.VerificationTokenHash == hash
	})
}

func (r *Repository) GetByResetToken(
	_ context.Context,
	hash string,
	now time.Time,
) (*user.User, error) {
	return r.find(func(u *user.User) bool {
		return u.ResetTokenHash != nil && *u.ResetTokenHash == hash &&
			u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
	})
}

func (r *Repository) ListByIDs(_ context.Context, ids []string) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []user.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *Repository) mutate(id string, fn func(*user.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = r.Now()
	return nil
}

func (r *Repository) Update(_ context.Context, in *user.User) error {
	return r.mutate(in.ID, func(u *user.User) error {
		u.FirstName = in.FirstName
		u.LastName = in.LastName
		u.Avatar = in.Avatar
		u.NotifyEmail = in.NotifyEmail
		u.NotifyPush = in.NotifyPush
		u.NotifyWeeklyDigest = in.NotifyWeeklyDigest
		return nil
	})
}

func (r *Repository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *user.User) error {
		u.PasswordHash = hash
		u.ResetTokenHash = nil
		u.ResetTokenExpiresAt = nil
		u.TokenVersion++
		return nil
	})
}

func (r *Repository) RehashPassword(_ context.Context, id, hash string) error {
	return r.mutate(id, func(u *user.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *Repository) SetResetToken(
	_ context.Context,
	id, hash string,
	expiresAt time.Time,
) error {
	return r.mutate(id, func(u *user.User) error {
		u.ResetTokenHash = &hash
		u.ResetTokenExpiresAt = &expiresAt
		return nil
	})
}

func (r *Repository) ClearResetToken(_ context.Context, id string) error {
	return r.mutate(id, func(u *user.User) error {
		u.ResetTokenHash = nil
		u.ResetTokenExpiresAt = nil
		return nil
	})
}

func (r *Repository) MarkEmailVerified(_ context.Context, id string) error {
	return r.mutate(id, func(u *user.User) error {
		u.EmailVerified = true
		u.VerificationTokenHash = nil
		return nil
	})
}

func (r *Repository) SetMembership(
	_ context.Context,
	id string,
	orgID *string,
	role string,
) error {
	return r.mutate(id, func(u *user.User) error {
		if err := r.checkOwner(id, orgID, role); err != nil {
			return err
		}
		u.OrganizationID = orgID
		u.Role = role
		return nil
	})
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

func (r *Repository) members(orgID string) []user.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []user.User{}
	for _, u := range r.users {
		if u.OrgID() == orgID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r *Repository) ListByOrganization(_ context.Context, orgID string) ([]user.User, error) {
	return r.members(orgID), nil
}

func (r *Repository) CountByOrganization(_ context.Context, orgID string) (int, error) {
	return len(r.members(orgID)), nil
}

func (r *Repository) CountCreatedSince(
	_ context.Context,
	orgID string,
	since time.Time,
) (int, error) {
	n := 0
	for _, u := range r.members(orgID) {
		if !u.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Repository) CountByRole(_ context.Context, orgID string) (map[string]int, error) {
	out := map[string]int{}
	for _, u := range r.members(orgID) {
		out[u.Role]++
	}
	return out, nil
}

func (r *Repository) FindMemberByEmail(
	_ context.Context,
	orgID, email string,
) (*user.User, error) {
	return r.find(func(u *user.User) bool {
		return u.OrgID() == orgID && u.Email == email
	})
}

// Put stores u as-is, bypassing uniqueness checks. Test setup only.
func (r *Repository) Put(u *user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = r.Now()
	}
	r.users[u.ID] = clone(u)
}

// SessionRevoker records which users were signed out.
type SessionRevoker struct {
	mu      sync.Mutex
	Revoked []string
}

func (s *SessionRevoker) DeleteAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Revoked = append(s.Revoked, userID)
	return nil
}

var _ user.Repository = (*Repository)(nil)
