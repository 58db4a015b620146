// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/core"
)

// SessionRevoker drops every refresh token a user holds.
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID string) error
}

type OrganizationLookup interface {
	Summary(ctx context.Context, orgID string) (*OrganizationSummary, error)
}

type Service struct {
	repo     Repository
	orgs     OrganizationLookup
	sessions SessionRevoker
	tx       core.Transactor
	activity *activity.Recorder
}

func NewService(
	repo Repository,
	orgs OrganizationLookup,
	sessions SessionRevoker,
	tx core.Transactor,
	recorder *activity.Recorder,
) *Service {
	return &Service{
		repo:     repo,
		orgs:     orgs,
		sessions: sessions,
		tx:       tx,
		activity: recorder,
	}
}

func (s *Service) load(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, core.UnauthorizedError("Not authenticated")
	}

	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *Service) GetMe(ctx context.Context, userID string) (*MeResponse, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &MeResponse{User: ToUserResponse(u)}
	if u.HasOrganization() {
		org, err := s.orgs.Summary(ctx, u.OrgID())
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		resp.Organization = org
	}

	return resp, nil
}

// UpdateMe applies only the fields present in req.
func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateMeRequest,
) (*User, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	changed := applyUpdate(u, req)
	if len(changed) == 0 {
		return u, nil
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: u.OrgID(),
		UserID:         u.ID,
		Action:         activity.ActionUserProfileUpdated,
		Details:        map[string]any{"fields": changed},
	})

	return u, nil
}

func applyUpdate(u *User, req UpdateMeRequest) []string {
	var changed []string

	if req.FirstName != nil {
		u.FirstName = strings.TrimSpace(*req.FirstName)
		changed = append(changed, "first_name")
	}
	if req.LastName != nil {
		u.LastName = strings.TrimSpace(*req.LastName)
		changed = append(changed, "last_name")
	}
	if req.Avatar != nil {
		avatar := *req.Avatar
		u.Avatar = &avatar
		changed = append(changed, "avatar")
	}
	if n := req.Notifications; n != nil {
		if n.Email != nil {
			u.NotifyEmail = *n.Email
		}
		if n.Push != nil {
			u.NotifyPush = *n.Push
		}
		if n.WeeklyDigest != nil {
			u.NotifyWeeklyDigest = *n.WeeklyDigest
		}
		changed = append(changed, "notifications")
	}

	return changed
}

// ChangePassword signs the user out everywhere once the new hash is stored.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID string,
	req ChangePasswordRequest,
) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := core.VerifyPassword(req.CurrentPassword, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrCurrentPasswordIncorrect
	}

	hash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
			return err
		}
		return s.sessions.DeleteAllForUser(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: u.OrgID(),
		UserID:         u.ID,
		Action:         activity.ActionUserPasswordChanged,
	})

	return nil
}

func (s *Service) DeleteMe(ctx context.Context, userID, password string) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := core.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return ErrPasswordIncorrect
	}

	if u.IsOwner() {
		return ErrCannotDeleteOwner
	}

	return s.repo.Delete(ctx, u.ID)
}
