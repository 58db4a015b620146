// AngelaMos | 2026
// dto.go

package dashboard

import (
	"time"

	"github.com/carterperez-dev/nexus/internal/core"
)

const (
	ChangeIncrease = "increase"
	ChangeDecrease = "decrease"
	ChangeNeutral  = "neutral"
)

type Stat struct {
	Value      any    `json:"value"`
	Change     string `json:"change"`
	ChangeType string `json:"change_type"`
}

type StatsResponse struct {
	TotalMembers     Stat `json:"total_members"`
	ActiveUsers      Stat `json:"active_users"`
	ActivityThisWeek Stat `json:"activity_this_week"`
	Revenue          Stat `json:"revenue"`
}

type Actor struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Avatar   *string `json:"avatar"`
	Initials string  `json:"initials"`
}

type FeedItem struct {
	ID         string         `json:"id"`
	User       *Actor         `json:"user"`
	Action     string         `json:"action"`
	ActionText string         `json:"action_text"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

type FeedResponse struct {
	Activities []FeedItem          `json:"activities"`
	Pagination core.PaginationMeta `json:"pagination"`
}

type Series struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type RoleSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type ChartsResponse struct {
	Period           string      `json:"period"`
	UserGrowth       Series      `json:"user_growth"`
	ActivityTrend    Series      `json:"activity_trend"`
	RoleDistribution []RoleSlice `json:"role_distribution"`
}
