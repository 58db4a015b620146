// AngelaMos | 2026
// service_test.go

package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/activity/activitytest"
	"github.com/carterperez-dev/nexus/internal/billing"
	"github.com/carterperez-dev/nexus/internal/config"
	"github.com/carterperez-dev/nexus/internal/dashboard"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/user"
	"github.com/carterperez-dev/nexus/internal/user/usertest"
)

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	err     error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

type fixture struct {
	svc    *dashboard.Service
	users  *usertest.Repository
	events *activitytest.Repository
	cache  *memoryCache
	orgID  string
	owner  *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:  usertest.NewRepository(),
		events: activitytest.NewRepository(),
		cache:  newMemoryCache(),
		orgID:  uuid.NewString(),
	}
	f.svc = dashboard.NewService(f.users, f.events, billing.NewCatalog(config.BillingConfig{}), f.cache)
	f.owner = f.addMember(t, "Ada", "Lovelace", user.RoleOwner, time.Now().UTC().AddDate(0, -3, 0))
	return f
}

func (f *fixture) addMember(t *testing.T, first, last, role string, createdAt time.Time) *user.User {
	t.Helper()
	orgID := f.orgID
	u := &user.User{
		ID:             uuid.NewString(),
		Email:          fmt.Sprintf("%s@acme.com", first),
		FirstName:      first,
		LastName:       last,
		Role:           role,
		OrganizationID: &orgID,
		CreatedAt:      createdAt,
	}
	f.users.Put(u)
	return u
}

func (f *fixture) record(t *testing.T, userID string, action activity.Action, at time.Time, details map[string]any) {
	t.Helper()
	require.NoError(t, f.events.Insert(context.Background(), &activity.Activity{
		OrganizationID: f.orgID,
		UserID:         userID,
		Action:         action,
		Details:        details,
		CreatedAt:      at,
	}))
}

func (f *fixture) identity(plan string) *middleware.Identity {
	return &middleware.Identity{
		UserID:         f.owner.ID,
		Role:           user.RoleOwner,
		OrganizationID: f.orgID,
		Plan:           plan,
	}
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	member := f.addMember(t, "Grace", "Hopper", user.RoleMember, now)
	f.addMember(t, "Alan", "Turing", user.RoleAdmin, now.AddDate(0, -2, 0))

	f.record(t, f.owner.ID, activity.ActionUserLogin, now.Add(-time.Hour), nil)
	f.record(t, member.ID, activity.ActionUserLogin, now.Add(-2*time.Hour), nil)
	f.record(t, member.ID, activity.ActionUserLogout, now.Add(-3*time.Hour), nil)
	f.record(t, member.ID, activity.ActionUserLogin, now.Add(-10*24*time.Hour), nil)

	stats, err := f.svc.Stats(context.Background(), f.identity("pro"))
	require.NoError(t, err)

	require.Equal(t, 3, stats.TotalMembers.Value)
	require.Equal(t, "+1", stats.TotalMembers.Change)
	require.Equal(t, dashboard.ChangeIncrease, stats.TotalMembers.ChangeType)

	require.Equal(t, 2, stats.ActiveUsers.Value)
	require.Equal(t, "67%", stats.ActiveUsers.Change)

	require.Equal(t, 3, stats.ActivityThisWeek.Value)
	require.Equal(t, "+200%", stats.ActivityThisWeek.Change)
	require.Equal(t, dashboard.ChangeIncrease, stats.ActivityThisWeek.ChangeType)

	require.Equal(t, "$29", stats.Revenue.Value)
	require.Equal(t, "Pro", stats.Revenue.Change)
}

func TestStatsCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Stats(ctx, f.identity("free"))
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.sets)

	f.addMember(t, "Grace", "Hopper", user.RoleMember, time.Now().UTC())

	second, err := f.svc.Stats(ctx, f.identity("free"))
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.sets)
	require.EqualValues(t, 1, second.TotalMembers.Value)
	require.Equal(t, first.Revenue, second.Revenue)
}

func TestStatsWithoutCache(t *testing.T) {
	f := newFixture(t)
	f.cache.err = errors.New("redis down")

	stats, err := f.svc.Stats(context.Background(), f.identity("enterprise"))
	require.NoError(t, err)
	require.Equal(t, "$99", stats.Revenue.Value)
	require.Equal(t, "0", stats.TotalMembers.Change)
	require.Equal(t, dashboard.ChangeNeutral, stats.ActivityThisWeek.ChangeType)
}

func TestFeed(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	gone := uuid.NewString()

	f.record(t, f.owner.ID, activity.ActionTeamMemberInvited, now.Add(-3*time.Minute),
		map[string]any{"email": "grace@acme.com"})
	f.record(t, gone, activity.ActionUserLogin, now.Add(-2*time.Minute), nil)
	f.record(t, f.owner.ID, activity.ActionPlanUpgraded, now.Add(-time.Minute),
		map[string]any{"plan": "pro"})

	feed, err := f.svc.Feed(context.Background(), f.orgID, 1, 2)
	require.NoError(t, err)
	require.Len(t, feed.Activities, 2)
	require.Equal(t, 3, feed.Pagination.Total)
	require.Equal(t, 2, feed.Pagination.TotalPages)

	newest := feed.Activities[0]
	require.Equal(t, "billing.plan_upgraded", newest.Action)
	require.Equal(t, "upgraded to pro plan", newest.ActionText)
	require.Equal(t, "Ada Lovelace", newest.User.Name)
	require.Equal(t, "AL", newest.User.Initials)

	require.Nil(t, feed.Activities[1].User)

	feed, err = f.svc.Feed(context.Background(), f.orgID, 2, 2)
	require.NoError(t, err)
	require.Len(t, feed.Activities, 1)
	require.Equal(t, "invited grace@acme.com to the team", feed.Activities[0].ActionText)
}

func TestFeedClampsPaging(t *testing.T) {
	f := newFixture(t)

	feed, err := f.svc.Feed(context.Background(), f.orgID, 0, 1000)
	require.NoError(t, err)
	require.Equal(t, 1, feed.Pagination.Page)
	require.Equal(t, dashboard.MaxFeedLimit, feed.Pagination.Limit)
	require.Equal(t, 0, feed.Pagination.TotalPages)
	require.NotNil(t, feed.Activities)

	feed, err = f.svc.Feed(context.Background(), f.orgID, 1, -5)
	require.NoError(t, err)
	require.Equal(t, dashboard.DefaultFeedLimit, feed.Pagination.Limit)

	feed, err = f.svc.Feed(context.Background(), f.orgID, math.MaxInt, dashboard.MaxFeedLimit)
	require.NoError(t, err)
	require.Equal(t, dashboard.MaxFeedPage, feed.Pagination.Page)
	require.Empty(t, feed.Activities)
}

func TestCharts(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	f.addMember(t, "Grace", "Hopper", user.RoleMember, now)
	f.addMember(t, "Alan", "Turing", user.RoleMember, now.AddDate(0, 0, -3))
	f.addMember(t, "Edsger", "Dijkstra", user.RoleAdmin, now.AddDate(0, 0, -40))

	f.record(t, f.owner.ID, activity.ActionUserLogin, now, nil)
	f.record(t, f.owner.ID, activity.ActionUserLogout, now, nil)
	f.record(t, f.owner.ID, activity.ActionUserLogin, now.AddDate(0, 0, -6), nil)
	f.record(t, f.owner.ID, activity.ActionUserLogin, now.AddDate(0, 0, -20), nil)

	charts, err := f.svc.Charts(context.Background(), f.orgID, "")
	require.NoError(t, err)
	require.Equal(t, "7d", charts.Period)
	require.Len(t, charts.UserGrowth.Labels, 7)
	require.Equal(t, now.Format("Jan 2"), charts.UserGrowth.Labels[6])

	require.Equal(t, []int{2, 2, 2, 3, 3, 3, 4}, charts.UserGrowth.Data)
	require.Equal(t, []int{1, 0, 0, 0, 0, 0, 2}, charts.ActivityTrend.Data)

	require.Equal(t, []dashboard.RoleSlice{
		{Name: "Owner", Value: 1},
		{Name: "Admin", Value: 1},
		{Name: "Member", Value: 2},
	}, charts.RoleDistribution)

	charts, err = f.svc.Charts(context.Background(), f.orgID, "30d")
	require.NoError(t, err)
	require.Len(t, charts.ActivityTrend.Data, 30)
	require.Equal(t, 1, charts.ActivityTrend.Data[9])

	_, err = f.svc.Charts(context.Background(), f.orgID, "1y")
	require.ErrorIs(t, err, dashboard.ErrInvalidPeriod)
}
