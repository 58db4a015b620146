// AngelaMos | 2026
// webhook.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/organization"
)

const (
	webhookDedupeTTL    = 24 * time.Hour
	webhookDedupePrefix = "billing:webhook:"
)

// HandleWebhook verifies and applies one processor event. Nothing in the
// payload is trusted before the signature checks out. Redeliveries of an
// already handled event are acknowledged without being applied again.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := middleware.LoggerFromContext(ctx)

	ev, err := s.processor.ParseWebhook(payload, signature)
	if err != nil {
		core.ObserveWebhook("unknown", "invalid_signature")
		logger.Warn("webhook rejected", "error", err)
		return ErrInvalidSignature
	}

	ctx, span := core.StartSpan(ctx, "billing.webhook",
		core.AttrEventID.String(ev.ID),
		core.AttrEventType.String(ev.Type),
	)
	defer span.End()

	logger = logger.With("event_id", ev.ID, "event_type", ev.Type)

	key := webhookDedupePrefix + ev.ID
	claimed, err := s.dedupe.Claim(ctx, key, webhookDedupeTTL)
	if err != nil {
		// plan transitions are idempotent, so processing without the
		// dedupe store is safe
		logger.Warn("webhook dedupe unavailable", "error", err)
		claimed = true
	}
	if !claimed {
		core.ObserveWebhook(ev.Type, "duplicate")
		logger.Info("duplicate webhook ignored")
		return nil
	}

	handled, err := s.applyEvent(ctx, ev)
	if err != nil {
		if relErr := s.dedupe.Release(ctx, key); relErr != nil {
			logger.Warn("failed to release webhook claim", "error", relErr)
		}
		core.RecordSpanError(ctx, err)
		core.ObserveWebhook(ev.Type, "error")
		return fmt.Errorf("handle %s: %w", ev.Type, err)
	}

	if !handled {
		core.ObserveWebhook(ev.Type, "ignored")
		logger.Debug("unhandled webhook event")
		return nil
	}

	core.ObserveWebhook(ev.Type, "processed")
	return nil
}

func (s *Service) applyEvent(ctx context.Context, ev *Event) (bool, error) {
	switch ev.Type {
	case EventCheckoutCompleted:
		return true, s.checkoutCompleted(ctx, ev)
	case EventSubscriptionUpdated:
		if ev.SubscriptionStatus != SubscriptionStatusCanceled {
			return true, nil
		}
		return true, s.revertToFree(ctx, ev.SubscriptionID)
	case EventSubscriptionDeleted:
		return true, s.revertToFree(ctx, ev.SubscriptionID)
	case EventPaymentSucceeded:
		return true, s.recordPayment(ctx, ev, activity.ActionPaymentSucceeded)
	case EventPaymentFailed:
		return true, s.recordPayment(ctx, ev, activity.ActionPaymentFailed)
	default:
		return false, nil
	}
}

func (s *Service) checkoutCompleted(ctx context.Context, ev *Event) error {
	logger := middleware.LoggerFromContext(ctx)

	plan, ok := s.catalog.Get(ev.Plan)
	if !ok || plan.ID == organization.PlanFree {
		logger.Warn("checkout completed for unknown plan", "plan", ev.Plan)
		return nil
	}

	if _, err := uuid.Parse(ev.OrganizationID); err != nil {
		logger.Warn("checkout completed without organization", "organization_id", ev.OrganizationID)
		return nil
	}

	org, err := s.orgs.GetByID(ctx, ev.OrganizationID)
	if errors.Is(err, core.ErrNotFound) {
		logger.Warn("checkout completed for missing organization", "organization_id", ev.OrganizationID)
		return nil
	}
	if err != nil {
		return err
	}

	oldPlan := org.Plan
	if oldPlan == plan.ID && (ev.SubscriptionID == "" || org.SubscriptionID() == ev.SubscriptionID) {
		return nil
	}

	org.Plan = plan.ID
	if ev.SubscriptionID != "" {
		org.StripeSubscriptionID = &ev.SubscriptionID
	}
	if org.CustomerID() == "" && ev.CustomerID != "" {
		org.StripeCustomerID = &ev.CustomerID
	}

	if err := s.orgs.UpdateBilling(ctx, org); err != nil {
		return err
	}

	if oldPlan == plan.ID {
		return nil
	}

	action := activity.ActionPlanDowngraded
	if s.catalog.IsUpgrade(oldPlan, plan.ID) {
		action = activity.ActionPlanUpgraded
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: org.ID,
		UserID:         org.OwnerID,
		Action:         action,
		Details:        map[string]any{"plan": plan.ID, "oldPlan": oldPlan},
	})

	return nil
}

func (s *Service) revertToFree(ctx context.Context, subscriptionID string) error {
	if subscriptionID == "" {
		return nil
	}

	org, err := s.orgs.GetBySubscriptionID(ctx, subscriptionID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	oldPlan := org.Plan
	org.Plan = organization.PlanFree
	org.StripeSubscriptionID = nil

	if err := s.orgs.UpdateBilling(ctx, org); err != nil {
		return err
	}

	if oldPlan == organization.PlanFree {
		return nil
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: org.ID,
		UserID:         org.OwnerID,
		Action:         activity.ActionPlanDowngraded,
		Details:        map[string]any{"plan": organization.PlanFree, "oldPlan": oldPlan},
	})

	return nil
}

func (s *Service) recordPayment(ctx context.Context, ev *Event, action activity.Action) error {
	if ev.CustomerID == "" {
		return nil
	}

	org, err := s.orgs.GetByCustomerID(ctx, ev.CustomerID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: org.ID,
		UserID:         org.OwnerID,
		Action:         action,
		Details: map[string]any{
			"amount":   centsToAmount(ev.AmountCents),
			"currency": ev.Currency,
		},
	})

	return nil
}
