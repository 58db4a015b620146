// AngelaMos | 2026
// recorder.go

package activity

import (
	"context"
	"time"

	"github.com/carterperez-dev/nexus/internal/middleware"
)

type Entry struct {
	OrganizationID string
	UserID         string
	Action         Action
	Details        map[string]any
	IP             string
	UserAgent      string
}

// Recorder appends audit events. A failed append is logged and never
// surfaces to the operation that triggered it.
type Recorder struct {
	repo Repository
	now  func() time.Time
}

func NewRecorder(repo Repository) *Recorder {
	return &Recorder{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	logger := middleware.LoggerFromContext(ctx)

	if e.OrganizationID == "" || !e.Action.Valid() {
		logger.Debug("activity skipped",
			"action", e.Action,
			"user_id", e.UserID,
		)
		return
	}

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}

	a := &Activity{
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		Action:         e.Action,
		Details:        details,
		CreatedAt:      r.now(),
	}
	if e.IP != "" || e.UserAgent != "" {
		a.Metadata = &Metadata{IP: e.IP, UserAgent: e.UserAgent}
	}

	if err := r.repo.Insert(ctx, a); err != nil {
		logger.Warn("failed to record activity",
			"action", e.Action,
			"organization_id", e.OrganizationID,
			"error", err,
		)
	}
}
