// AngelaMos | 2026
// service.go

package auth

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
	"github.com/carterperez-dev/nexus/internal/organization"
	"github.com/carterperez-dev/nexus/internal/user"
)

const resetTokenTTL = time.Hour

type AccountMailer interface {
	SendVerification(ctx context.Context, to, firstName, token string) error
	SendPasswordReset(ctx context.Context, to, firstName, token string) error
}

type Service struct {
	repo     Repository
	jwt      *JWTManager
	users    user.Repository
	orgs     organization.Repository
	tx       core.Transactor
	mailer   AccountMailer
	activity *activity.Recorder
	now      func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	users user.Repository,
	orgs organization.Repository,
	tx core.Transactor,
	mailer AccountMailer,
	recorder *activity.Recorder,
) *Service {
	return &Service{
		repo:     repo,
		jwt:      jwt,
		users:    users,
		orgs:     orgs,
		tx:       tx,
		mailer:   mailer,
		activity: recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the owner and their organization atomically and signs
// the owner in.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
	client ClientInfo,
) (resp *AuthResponse, err error) {
	defer func() { core.ObserveAuth("register", err) }()

	email := normalizeEmail(req.Email)

	_, err = s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	verifyToken, verifyHash, err := core.NewOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	now := s.now()
	orgName := strings.TrimSpace(req.OrganizationName)
	org := &organization.Organization{
		ID:   uuid.NewString(),
		Name: orgName,
		Slug: core.GenerateSlug(orgName, now),
		Plan: organization.PlanFree,
	}
	owner := &user.User{
		ID:                    uuid.NewString(),
		Email:                 email,
		PasswordHash:          passwordHash,
		FirstName:             strings.TrimSpace(req.FirstName),
		LastName:              strings.TrimSpace(req.LastName),
		Role:                  user.RoleOwner,
		OrganizationID:        &org.ID,
		VerificationTokenHash: &verifyHash,
	}
	org.OwnerID = owner.ID

	var tokens *TokenResponse
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		if err := s.users.Create(ctx, owner); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return ErrEmailExists
			}
			return err
		}

		var err error
		tokens, err = s.issueTokens(ctx, owner, client)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: org.ID,
		UserID:         owner.ID,
		Action:         activity.ActionUserRegistered,
		IP:             client.IPAddress,
		UserAgent:      client.UserAgent,
	})

	if mailErr := s.mailer.SendVerification(ctx, owner.Email, owner.FirstName, verifyToken); mailErr != nil {
		middleware.LoggerFromContext(ctx).Error("failed to send verification email",
			"user_id", owner.ID,
			"error", mailErr,
		)
	}

	return &AuthResponse{
		User:         user.ToUserResponse(owner),
		Organization: orgSummary(org),
		Tokens:       *tokens,
	}, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	client ClientInfo,
) (resp *AuthResponse, err error) {
	defer func() { core.ObserveAuth("login", err) }()

	u, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, core.ErrNotFound) {
		//nolint:errcheck // equalises timing for unknown accounts
		_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(req.Password, &u.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	logger := middleware.LoggerFromContext(ctx)

	if newHash != "" {
		if rehashErr := s.users.RehashPassword(ctx, u.ID, newHash); rehashErr != nil {
			logger.Warn("password rehash failed", "user_id", u.ID, "error", rehashErr)
		}
	}

	if _, pruneErr := s.repo.PruneExpired(ctx, u.ID, s.now()); pruneErr != nil {
		logger.Warn("failed to prune expired sessions", "user_id", u.ID, "error", pruneErr)
	}

	tokens, err := s.issueTokens(ctx, u, client)
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: u.OrgID(),
		UserID:         u.ID,
		Action:         activity.ActionUserLogin,
		IP:             client.IPAddress,
		UserAgent:      client.UserAgent,
	})

	return &AuthResponse{
		User:         user.ToUserResponse(u),
		Organization: s.lookupOrg(ctx, u),
		Tokens:       *tokens,
	}, nil
}

// Logout forgets only the presented refresh token and succeeds even when
// the token is unknown.
func (s *Service) Logout(ctx context.Context, identity *middleware.Identity, refreshToken string) error {
	if refreshToken != "" {
		hash := core.HashToken(refreshToken)

		var err error
		if identity != nil {
			err = s.repo.Delete(ctx, identity.UserID, hash)
		} else {
			_, err = s.repo.DeleteByHash(ctx, hash)
		}
		if err != nil {
			return err
		}
	}

	if identity != nil {
		s.activity.Record(ctx, activity.Entry{
			OrganizationID: identity.OrganizationID,
			UserID:         identity.UserID,
			Action:         activity.ActionUserLogout,
		})
	}

	return nil
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
	client ClientInfo,
) (resp *TokenResponse, err error) {
	defer func() { core.ObserveAuth("refresh", err) }()

	next, err := s.jwt.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	record := &RefreshToken{
		ID:        uuid.NewString(),
		TokenHash: next.Hash,
		ExpiresAt: next.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}

	err = s.repo.Rotate(ctx, core.HashToken(refreshToken), s.now(), record)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	if _, pruneErr := s.repo.PruneExpired(ctx, record.UserID, s.now()); pruneErr != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to prune expired sessions",
			"user_id", record.UserID,
			"error", pruneErr,
		)
	}

	u, err := s.users.GetByID(ctx, record.UserID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}

	access, expiresAt, err := s.jwt.IssueAccessToken(u.ID, u.TokenVersion)
	if err != nil {
		return nil, err
	}

	return newTokenResponse(access, next.Token, expiresAt, s.now()), nil
}

// ForgotPassword never reveals whether the e-mail is registered.
func (s *Service) ForgotPassword(ctx context.Context, email string) (err error) {
	defer func() { core.ObserveAuth("forgot_password", err) }()

	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	raw, hash, err := core.NewOpaqueToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := s.users.SetResetToken(ctx, u.ID, hash, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	if mailErr := s.mailer.SendPasswordReset(ctx, u.Email, u.FirstName, raw); mailErr != nil {
		middleware.LoggerFromContext(ctx).Error("failed to send reset email",
			"user_id", u.ID,
			"error", mailErr,
		)
		if clearErr := s.users.ClearResetToken(ctx, u.ID); clearErr != nil {
			return clearErr
		}
		return ErrResetEmailFailed
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (err error) {
	defer func() { core.ObserveAuth("reset_password", err) }()

	u, err := s.users.GetByResetToken(ctx, core.HashToken(req.Token), s.now())
	if errors.Is(err, core.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
			return err
		}
		return s.repo.DeleteAllForUser(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, activity.Entry{
		OrganizationID: u.OrgID(),
		UserID:         u.ID,
		Action:         activity.ActionUserPasswordChanged,
		Details:        map[string]any{"via": "reset"},
	})

	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	u, err := s.users.GetByVerificationToken(ctx, core.HashToken(token))
	if errors.Is(err, core.ErrNotFound) {
		return ErrInvalidVerificationToken
	}
	if err != nil {
		return err
	}

	return s.users.MarkEmailVerified(ctx, u.ID)
}

func (s *Service) ListSessions(ctx context.Context, userID string) (*SessionsResponse, error) {
	tokens, err := s.repo.ListActiveForUser(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, SessionInfo{
			ID:        t.ID,
			UserAgent: t.UserAgent,
			IPAddress: t.IPAddress,
			CreatedAt: t.CreatedAt,
			ExpiresAt: t.ExpiresAt,
		})
	}

	return &SessionsResponse{Sessions: sessions}, nil
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	err := s.repo.DeleteForUserByID(ctx, userID, sessionID)
	if errors.Is(err, core.ErrNotFound) {
		return ErrSessionNotFound
	}
	return err
}

func (s *Service) issueTokens(ctx context.Context, u *user.User, client ClientInfo) (*TokenResponse, error) {
	access, expiresAt, err := s.jwt.IssueAccessToken(u.ID, u.TokenVersion)
	if err != nil {
		return nil, err
	}

	refresh, err := s.jwt.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	err = s.repo.Create(ctx, &RefreshToken{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		TokenHash: refresh.Hash,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	})
	if err != nil {
		return nil, err
	}

	return newTokenResponse(access, refresh.Token, expiresAt, s.now()), nil
}

func (s *Service) lookupOrg(ctx context.Context, u *user.User) *user.OrganizationSummary {
	if !u.HasOrganization() {
		return nil
	}

	org, err := s.orgs.GetByID(ctx, u.OrgID())
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("organization lookup failed",
			"organization_id", u.OrgID(),
			"error", err,
		)
		return nil
	}
	return orgSummary(org)
}

func orgSummary(o *organization.Organization) *user.OrganizationSummary {
	return &user.OrganizationSummary{
		ID:   o.ID,
		Name: o.Name,
		Slug: o.Slug,
		Logo: o.Logo,
		Plan: o.Plan,
	}
}

func newTokenResponse(access, refresh string, expiresAt, now time.Time) *TokenResponse {
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
		ExpiresAt:    expiresAt,
	}
}
