// AngelaMos | 2026
// memory.go

package activitytest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/carterperez-dev/nexus/internal/activity"
)

// Repository is an in-memory activity.Repository.
type Repository struct {
	mu         sync.Mutex
	items      []activity.Activity
	FailInsert bool
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Insert(_ context.Context, a *activity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailInsert {
		return errors.New("activity store unavailable")
	}

	a.ID = primitive.NewObjectID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, *a)
	return nil
}

// All returns every stored activity in insertion order.
func (r *Repository) All() []activity.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]activity.Activity(nil), r.items...)
}

// Actions lists the recorded actions in insertion order.
func (r *Repository) Actions() []activity.Action {
	var out []activity.Action
	for _, a := range r.All() {
		out = append(out, a.Action)
	}
	return out
}

func (r *Repository) byOrg(orgID string) []activity.Activity {
	var out []activity.Activity
	for _, a := range r.All() {
		if a.OrganizationID == orgID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *Repository) ListByOrganization(
	_ context.Context,
	orgID string,
	offset, limit int,
) ([]activity.Activity, error) {
	all := r.byOrg(orgID)
	if offset >= len(all) {
		return []activity.Activity{}, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (r *Repository) CountByOrganization(_ context.Context, orgID string) (int, error) {
	return len(r.byOrg(orgID)), nil
}

func (r *Repository) CountSince(_ context.Context, orgID string, since time.Time) (int, error) {
	n := 0
	for _, a := range r.byOrg(orgID) {
		if !a.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Repository) CountPerDay(
	_ context.Context,
	orgID string,
	from time.Time,
) (map[string]int, error) {
	out := map[string]int{}
	for _, a := range r.byOrg(orgID) {
		if !a.CreatedAt.Before(from) {
			out[a.CreatedAt.UTC().Format(activity.DayFormat)]++
		}
	}
	return out, nil
}

func (r *Repository) DistinctActorsSince(
	_ context.Context,
	orgID string,
	since time.Time,
) (int, error) {
	seen := map[string]struct{}{}
	for _, a := range r.byOrg(orgID) {
		if !a.CreatedAt.Before(since) {
			seen[a.UserID] = struct{}{}
		}
	}
	return len(seen), nil
}

var _ activity.Repository = (*Repository)(nil)
