// AngelaMos | 2026
// service.go

package organization

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/user"
)

type InviteMailer interface {
	SendTeamInvite(ctx context.Context, to, orgName, role, token string) error
}

type Service struct {
	repo     Repository
	users    user.Repository
	sessions user.SessionRevoker
	tx       core.Transactor
	mailer   InviteMailer
	activity *activity.Recorder
	now      func() time.Time
}

func NewService(
	repo Repository,
	users user.Repository,
	sessions user.SessionRevoker,
	tx core.Transactor,
	mailer InviteMailer,
	recorder *activity.Recorder,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		sessions: sessions,
		tx:       tx,
		mailer:   mailer,
		activity: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) load(ctx context.Context, orgID string) (*Organization, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrOrganizationNotFound
	}
	return org, err
}

func (s *Service) Get(ctx context.Context, orgID string) (*OrganizationResponse, error) {
	org, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}

	resp := toOrganizationResponse(org)

	resp.MemberCount, err = s.users.CountByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetByID(ctx, org.OwnerID)
	switch {
	case err == nil:
		resp.Owner = &OwnerSummary{
			ID:        owner.ID,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			Email:     owner.Email,
			Avatar:    owner.Avatar,
		}
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	return resp, nil
}

// Summary backs user.OrganizationLookup.
func (s *Service) Summary(ctx context.Context, orgID string) (*user.OrganizationSummary, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &user.OrganizationSummary{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
		Logo: org.Logo,
		Plan: org.Plan,
	}, nil
}

func (s *Service) Update(
	ctx context.Context,
	actor *middleware.Identity,
	req UpdateOrganizationRequest,
) (*OrganizationResponse, error) {
	org, err := s.load(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	var fields []string
	logoChanged := false

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
		fields = append(fields, "name")
	}
	if req.Logo != nil {
		logo := *req.Logo
		org.Logo = &logo
		logoChanged = true
		fields = append(fields, "logo")
	}
	if st := req.Settings; st != nil {
		if st.Timezone != nil {
			org.Timezone = *st.Timezone
		}
		if st.DateFormat != nil {
			org.DateFormat = *st.DateFormat
		}
		if st.Currency != nil {
			org.Currency = *st.Currency
		}
		fields = append(fields, "settings")
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, org); err != nil {
			return nil, err
		}

		action := activity.ActionOrgSettingsUpdated
		if logoChanged {
			action = activity.ActionOrgLogoUpdated
		}
		s.activity.Record(ctx, activity.Entry{
			OrganizationID: org.ID,
			UserID:         actor.UserID,
			Action:         action,
			Details:        map[string]any{"fields": fields},
		})
	}

	return s.Get(ctx, org.ID)
}

func (s *Service) ListMembers(ctx context.Context, orgID string) ([]MemberResponse, error) {
	members, err := s.users.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	out := make([]MemberResponse, 0, len(members))
	for i := range members {
		out = append(out, toMemberResponse(&members[i]))
	}
	return out, nil
}

func (s *Service) Invite(
	ctx context.Context,
	actor *middleware.Identity,
	req InviteRequest,
) (*InviteResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := req.Role
	if role == "" {
		role = user.RoleMember
	}

	org, err := s.load(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	_, err = s.users.FindMemberByEmail(ctx, org.ID, email)
	if err == nil {
		return nil, ErrAlreadyMember
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	_, err = s.repo.GetLiveInviteForEmail(ctx, org.ID, email, now)
	if err == nil {
		return nil, ErrInviteExists
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	raw, hash, err := core.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate invite token: %w", err)
	}

	inviterID := actor.UserID
	invite := &TeamInvite{
		ID:             uuid.NewString(),
		Email:          email,
		OrganizationID: org.ID,
		Role:           role,
		TokenHash:      hash,
		ExpiresAt:      now.Add(InviteTTL),
		InvitedBy:      &inviterID,
	}
	if err := s.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}

	if err := s.mailer.SendTeamInvite(ctx, email, org.Name, role, raw); err != nil {
		middleware.LoggerFromContext(ctx).Error("failed to send invite email",
			"organization_id", org.ID,
			"error", err,
		)
		if delErr := s.repo.DeleteInvite(ctx, invite.ID); delErr != nil {
			middleware.LoggerFromContext(ctx).Error("failed to roll back invite",
				"invite_id", invite.ID,
				"error", delErr,
			)
		}
		return nil, ErrInviteEmailFailed
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: org.ID,
		UserID:         actor.UserID,
		Action:         activity.ActionTeamMemberInvited,
		Details:        map[string]any{"email": email, "role": role},
	})

	resp := toInviteResponse(invite)
	return &resp, nil
}

// AcceptInvite attaches the invitee to the organization, creating a
// pre-verified account when the e-mail is unknown.
func (s *Service) AcceptInvite(ctx context.Context, req AcceptInviteRequest) error {
	invite, err := s.repo.GetInviteByTokenHash(ctx, core.HashToken(req.Token))
	if errors.Is(err, core.ErrNotFound) {
		return ErrInvalidOrExpiredInvite
	}
	if err != nil {
		return err
	}
	if invite.IsExpired(s.now()) {
		return ErrInvalidOrExpiredInvite
	}

	orgID := invite.OrganizationID
	var memberID string

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByEmail(ctx, invite.Email)
		switch {
		case err == nil:
			if existing.HasOrganization() {
				return ErrAlreadyInOrganization
			}
			memberID = existing.ID
			if err := s.users.SetMembership(ctx, existing.ID, &orgID, invite.Role); err != nil {
				return err
			}
		case errors.Is(err, core.ErrNotFound):
			u, err := s.newInvitee(invite, req)
			if err != nil {
				return err
			}
			memberID = u.ID
			if err := s.users.Create(ctx, u); err != nil {
				return err
			}
		default:
			return err
		}

		err = s.repo.DeleteInvite(ctx, invite.ID)
		if errors.Is(err, core.ErrNotFound) {
			// accepted concurrently
			return ErrInvalidOrExpiredInvite
		}
		return err
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: orgID,
		UserID:         memberID,
		Action:         activity.ActionTeamMemberJoined,
		Details:        map[string]any{"email": invite.Email, "role": invite.Role},
	})

	return nil
}

func (s *Service) newInvitee(invite *TeamInvite, req AcceptInviteRequest) (*user.User, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" || last == "" || req.Password == "" {
		return nil, ErrNewAccountDetails
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	orgID := invite.OrganizationID
	return &user.User{
		ID:             uuid.NewString(),
		Email:          invite.Email,
		PasswordHash:   hash,
		FirstName:      first,
		LastName:       last,
		Role:           invite.Role,
		OrganizationID: &orgID,
		EmailVerified:  true,
	}, nil
}

func (s *Service) ListInvites(ctx context.Context, orgID string) ([]InviteResponse, error) {
	invites, err := s.repo.ListLiveInvites(ctx, orgID, s.now())
	if err != nil {
		return nil, err
	}

	var inviterIDs []string
	for _, inv := range invites {
		if inv.InvitedBy != nil {
			inviterIDs = append(inviterIDs, *inv.InvitedBy)
		}
	}

	inviters, err := s.users.ListByIDs(ctx, inviterIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]user.User, len(inviters))
	for _, u := range inviters {
		byID[u.ID] = u
	}

	out := make([]InviteResponse, 0, len(invites))
	for i := range invites {
		resp := toInviteResponse(&invites[i])
		if invites[i].InvitedBy != nil {
			if u, ok := byID[*invites[i].InvitedBy]; ok {
				resp.InvitedBy = &InviterSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
			}
		}
		out = append(out, resp)
	}

	return out, nil
}

func (s *Service) CancelInvite(ctx context.Context, orgID, inviteID string) error {
	err := s.repo.DeleteInviteForOrganization(ctx, orgID, inviteID)
	if errors.Is(err, core.ErrNotFound) {
		return ErrInviteNotFound
	}
	return err
}

func (s *Service) member(ctx context.Context, orgID, memberID string) (*user.User, error) {
	m, err := s.users.GetByID(ctx, memberID)
	if errors.Is(err, core.ErrNotFound) || (err == nil && m.OrgID() != orgID) {
		return nil, ErrMemberNotFound
	}
	return m, err
}

// RemoveMember detaches the member and signs them out of every session.
func (s *Service) RemoveMember(
	ctx context.Context,
	actor *middleware.Identity,
	memberID string,
) error {
	m, err := s.member(ctx, actor.OrganizationID, memberID)
	if err != nil {
		return err
	}
	if m.IsOwner() {
		return ErrCannotRemoveOwner
	}
	if m.ID == actor.UserID {
		return ErrCannotRemoveSelf
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.SetMembership(ctx, m.ID, nil, user.RoleMember); err != nil {
			return err
		}
		return s.sessions.DeleteAllForUser(ctx, m.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		Action:         activity.ActionTeamMemberRemoved,
		Details:        map[string]any{"memberName": m.FullName(), "email": m.Email},
	})

	return nil
}

func (s *Service) ChangeMemberRole(
	ctx context.Context,
	actor *middleware.Identity,
	memberID, role string,
) (*user.User, error) {
	if role != user.RoleAdmin && role != user.RoleMember {
		return nil, ErrInvalidRole
	}

	m, err := s.member(ctx, actor.OrganizationID, memberID)
	if err != nil {
		return nil, err
	}
	if m.IsOwner() {
		return nil, ErrCannotChangeOwnerRole
	}

	oldRole := m.Role
	if err := s.users.SetMembership(ctx, m.ID, m.OrganizationID, role); err != nil {
		return nil, err
	}
	m.Role = role

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		Action:         activity.ActionTeamRoleChanged,
		Details: map[string]any{
			"memberName": m.FullName(),
			"oldRole":    oldRole,
			"newRole":    role,
		},
	})

	return m, nil
}
