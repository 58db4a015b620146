// AngelaMos | 2026
// slug.go

package core

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

var slugClock struct {
	mu   sync.Mutex
	last int64
}

// GenerateSlug lowercases name, collapses runs of anything outside [a-z0-9]
// into one dash and appends a base-36 millisecond suffix. Suffixes are
// strictly increasing within the process, so identical names registered in
// the same millisecond still get distinct slugs.
func GenerateSlug(name string, now time.Time) string {
	base := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	base = strings.Trim(base, "-")

	suffix := strconv.FormatInt(nextSlugTick(now.UnixMilli()), 36)
	if base == "" {
		return suffix
	}

	return base + "-" + suffix
}

func nextSlugTick(ms int64) int64 {
	slugClock.mu.Lock()
	defer slugClock.mu.Unlock()

	if ms <= slugClock.last {
		ms = slugClock.last + 1
	}
	slugClock.last = ms

	return ms
}
