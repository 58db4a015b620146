// AngelaMos | 2026
// service.go

package dashboard

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/user"
)

const (
	statsCacheTTL    = 60 * time.Second
	statsCachePrefix = "dashboard:stats:"

	DefaultFeedLimit = 10
	MaxFeedLimit     = 100
	MaxFeedPage      = 10000

	activeWindow = 7 * 24 * time.Hour
	labelFormat  = "Jan 2"
	day          = 24 * time.Hour
)

var periods = map[string]int{"7d": 7, "30d": 30, "90d": 90}

var ErrInvalidPeriod = core.NewAppError(
	core.ErrInvalidInput,
	"period must be one of: 7d, 30d, 90d",
	http.StatusBadRequest,
	"VALIDATION_ERROR",
)

// Cache holds rendered stats between requests. core.Redis satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type PlanPricer interface {
	MonthlyPrice(plan string) int
}

type Service struct {
	users      user.Repository
	activities activity.Repository
	pricer     PlanPricer
	cache      Cache
	now        func() time.Time
}

func NewService(
	users user.Repository,
	activities activity.Repository,
	pricer PlanPricer,
	cache Cache,
) *Service {
	return &Service{
		users:      users,
		activities: activities,
		pricer:     pricer,
		cache:      cache,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// Stats summarizes the caller's organization. Results are cached briefly per
// organization; cache failures fall through to the stores.
func (s *Service) Stats(ctx context.Context, identity *middleware.Identity) (*StatsResponse, error) {
	logger := middleware.LoggerFromContext(ctx)
	orgID := identity.OrganizationID
	key := statsCachePrefix + orgID

	var cached StatsResponse
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warn("dashboard cache read failed", "error", err)
	}
	if hit {
		return &cached, nil
	}

	stats, err := s.computeStats(ctx, orgID, identity.Plan)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, key, stats, statsCacheTTL); err != nil {
		logger.Warn("dashboard cache write failed", "error", err)
	}

	return stats, nil
}

func (s *Service) computeStats(ctx context.Context, orgID, plan string) (*StatsResponse, error) {
	now := s.now()
	weekAgo := now.Add(-activeWindow)

	total, err := s.users.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	newThisMonth, err := s.users.CountCreatedSince(ctx, orgID, startOfMonth(now))
	if err != nil {
		return nil, fmt.Errorf("count new members: %w", err)
	}

	active, err := s.activities.DistinctActorsSince(ctx, orgID, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("count active members: %w", err)
	}

	thisWeek, err := s.activities.CountSince(ctx, orgID, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}

	lastTwoWeeks, err := s.activities.CountSince(ctx, orgID, now.Add(-2*activeWindow))
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}

	stats := &StatsResponse{
		TotalMembers: Stat{Value: total, Change: "0", ChangeType: ChangeNeutral},
		ActiveUsers: Stat{
			Value:      active,
			Change:     fmt.Sprintf("%d%%", percentOf(active, total)),
			ChangeType: ChangeNeutral,
		},
		ActivityThisWeek: weekOverWeek(thisWeek, lastTwoWeeks-thisWeek),
		Revenue: Stat{
			Value:      fmt.Sprintf("$%d", s.pricer.MonthlyPrice(plan)),
			Change:     capitalize(plan),
			ChangeType: ChangeNeutral,
		},
	}

	if newThisMonth > 0 {
		stats.TotalMembers.Change = fmt.Sprintf("+%d", newThisMonth)
		stats.TotalMembers.ChangeType = ChangeIncrease
	}

	return stats, nil
}

func percentOf(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}

func weekOverWeek(current, previous int) Stat {
	st := Stat{Value: current, Change: "0%", ChangeType: ChangeNeutral}

	switch {
	case previous == 0 && current > 0:
		st.Change, st.ChangeType = "+100%", ChangeIncrease
	case previous == 0:
	case current > previous:
		st.Change = fmt.Sprintf("+%d%%", percentOf(current-previous, previous))
		st.ChangeType = ChangeIncrease
	case current < previous:
		st.Change = fmt.Sprintf("-%d%%", percentOf(previous-current, previous))
		st.ChangeType = ChangeDecrease
	}

	return st
}

// Feed pages through the organization's activity newest first. page and
// limit are clamped to valid ranges.
func (s *Service) Feed(ctx context.Context, orgID string, page, limit int) (*FeedResponse, error) {
	page = min(max(page, 1), MaxFeedPage)
	if limit < 1 {
		limit = DefaultFeedLimit
	}
	limit = min(limit, MaxFeedLimit)

	items, err := s.activities.ListByOrganization(ctx, orgID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	total, err := s.activities.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}

	actors, err := s.actors(ctx, items)
	if err != nil {
		return nil, err
	}

	feed := make([]FeedItem, 0, len(items))
	for i := range items {
		a := &items[i]
		feed = append(feed, FeedItem{
			ID:         a.ID.Hex(),
			User:       actors[a.UserID],
			Action:     string(a.Action),
			ActionText: a.ActionText(),
			Details:    a.Details,
			CreatedAt:  a.CreatedAt,
		})
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return &FeedResponse{
		Activities: feed,
		Pagination: core.PaginationMeta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: pages,
		},
	}, nil
}

// actors resolves activity authors in one query. Authors whose accounts no
// longer exist are absent from the map.
func (s *Service) actors(ctx context.Context, items []activity.Activity) (map[string]*Actor, error) {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(items))
	for _, a := range items {
		if _, ok := seen[a.UserID]; ok || a.UserID == "" {
			continue
		}
		seen[a.UserID] = struct{}{}
		ids = append(ids, a.UserID)
	}

	out := make(map[string]*Actor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load activity actors: %w", err)
	}

	for i := range users {
		u := &users[i]
		out[u.ID] = &Actor{
			ID:       u.ID,
			Name:     u.FullName(),
			Avatar:   u.Avatar,
			Initials: u.Initials(),
		}
	}

	return out, nil
}

func (s *Service) Charts(ctx context.Context, orgID, period string) (*ChartsResponse, error) {
	if period == "" {
		period = "7d"
	}
	days, ok := periods[period]
	if !ok {
		return nil, ErrInvalidPeriod
	}

	today := startOfDay(s.now())
	from := today.AddDate(0, 0, -(days - 1))

	members, err := s.users.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	perDay, err := s.activities.CountPerDay(ctx, orgID, from)
	if err != nil {
		return nil, fmt.Errorf("count activity per day: %w", err)
	}

	roles, err := s.users.CountByRole(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count roles: %w", err)
	}

	labels := make([]string, 0, days)
	growth := make([]int, 0, days)
	trend := make([]int, 0, days)

	for i := range days {
		dayStart := from.AddDate(0, 0, i)
		dayEnd := dayStart.Add(day)

		labels = append(labels, dayStart.Format(labelFormat))
		trend = append(trend, perDay[dayStart.Format(activity.DayFormat)])

		n := 0
		for _, m := range members {
			if m.CreatedAt.Before(dayEnd) {
				n++
			}
		}
		growth = append(growth, n)
	}

	return &ChartsResponse{
		Period:           period,
		UserGrowth:       Series{Labels: labels, Data: growth},
		ActivityTrend:    Series{Labels: labels, Data: trend},
		RoleDistribution: roleDistribution(roles),
	}, nil
}

func roleDistribution(counts map[string]int) []RoleSlice {
	out := []RoleSlice{}
	for _, role := range []string{user.RoleOwner, user.RoleAdmin, user.RoleMember} {
		if n := counts[role]; n > 0 {
			out = append(out, RoleSlice{Name: capitalize(role), Value: n})
		}
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
