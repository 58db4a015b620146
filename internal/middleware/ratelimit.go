// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/nexus/internal/core"
)

type RateLimitConfig struct {
	Limit   redis_rate.Limit
	KeyFunc func(*http.Request) string
}

// buckets counts requests in Redis so every replica shares one budget.
// While Redis is unreachable each replica enforces the limit on its own.
type buckets struct {
	remote *redis_rate.Limiter
	local  *memoryLimiter
}

func newBuckets(rdb *redis.Client) *buckets {
	return &buckets{
		remote: redis_rate.NewLimiter(rdb),
		local:  newMemoryLimiter(),
	}
}

func (b *buckets) take(ctx context.Context, key string, limit redis_rate.Limit) *redis_rate.Result {
	res, err := b.remote.Allow(ctx, key, limit)
	if err == nil {
		return res
	}

	LoggerFromContext(ctx).Warn("rate limit store unavailable, limiting locally",
		"error", err,
		"key", key,
	)
	return b.local.take(key, limit, time.Now())
}

type RateLimiter struct {
	buckets *buckets
	config  RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	return &RateLimiter{buckets: newBuckets(rdb), config: cfg}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := rl.buckets.take(r.Context(), rl.config.KeyFunc(r), rl.config.Limit)
		if !admit(w, res, rl.config.Limit) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

type PlanLimit struct {
	RequestsPerMinute int
	BurstSize         int
}

// DefaultPlanLimits scales the per-organization API budget with the plan.
var DefaultPlanLimits = map[string]PlanLimit{
	"free":       {RequestsPerMinute: 120, BurstSize: 20},
	"pro":        {RequestsPerMinute: 600, BurstSize: 100},
	"enterprise": {RequestsPerMinute: 3000, BurstSize: 500},
}

// PlanRateLimiter shares one budget across every member of an organization,
// sized by the organization's plan. It must run after Authenticator.
// Callers without an organization are keyed by user on the free budget.
func PlanRateLimiter(
	rdb *redis.Client,
	limits map[string]PlanLimit,
) func(http.Handler) http.Handler {
	b := newBuckets(rdb)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plan, key := planBucket(r)

			pl, ok := limits[plan]
			if !ok {
				plan = "free"
				pl = limits[plan]
			}
			limit := PerMinute(pl.RequestsPerMinute, pl.BurstSize)

			w.Header().Set("X-RateLimit-Plan", plan)
			if !admit(w, b.take(r.Context(), key, limit), limit) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func planBucket(r *http.Request) (plan, key string) {
	identity := GetIdentity(r.Context())
	switch {
	case identity == nil:
		return "free", KeyByIP(r)
	case identity.HasOrganization():
		return identity.Plan, "ratelimit:org:" + identity.OrganizationID
	default:
		return "free", "ratelimit:user:" + identity.UserID
	}
}

// admit writes the limit headers and, when the bucket is empty, the 429.
func admit(w http.ResponseWriter, res *redis_rate.Result, limit redis_rate.Limit) bool {
	h := w.Header()
	h.Set("RateLimit-Policy", fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, int(res.ResetAfter.Seconds())))
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

	if res.Allowed > 0 {
		return true
	}

	retry := max(int(res.RetryAfter.Seconds()), 1)
	h.Set("Retry-After", strconv.Itoa(retry))
	core.JSON(w, http.StatusTooManyRequests, core.Response{
		Message: "Too many requests, please try again later.",
		Code:    "RATE_LIMITED",
	})
	return false
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + ClientIP(r)
}

// KeyByIPAndPath gives each route its own per-address bucket. The prefix
// separates limiters that share one Redis.
func KeyByIPAndPath(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		return prefix + ":" + r.URL.Path + ":" + KeyByIP(r)
	}
}

func PerMinute(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Minute}
}

func PerHour(rate, burst int) redis_rate.Limit {
	return redis_rate.Limit{Rate: rate, Burst: burst, Period: time.Hour}
}

const (
	sweepEvery = time.Minute
	idleTTL    = 10 * time.Minute
)

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// memoryLimiter is a per-process token bucket keyed like the Redis one.
// Idle buckets are dropped lazily on the request path.
type memoryLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*localBucket
	lastSweep time.Time
}

func newMemoryLimiter() *memoryLimiter {
	return &memoryLimiter{buckets: make(map[string]*localBucket)}
}

func (m *memoryLimiter) take(key string, limit redis_rate.Limit, now time.Time) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	refill := time.Duration(float64(time.Second) / perSecond)

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > sweepEvery {
		for k, b := range m.buckets {
			if now.Sub(b.lastSeen) > idleTTL {
				delete(m.buckets, k)
			}
		}
		m.lastSweep = now
	}

	b, ok := m.buckets[key]
	if !ok {
		b = &localBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{
		Limit:      limit,
		RetryAfter: -1,
		ResetAfter: refill,
	}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = refill
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)

	return res
}
