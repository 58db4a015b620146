// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/activity"
	"github.com/carterperez-dev/nexus/internal/activity/activitytest"
	"github.com/carterperez-dev/nexus/internal/auth"
	"github.com/carterperez-dev/nexus/internal/auth/authtest"
	"github.com/carterperez-dev/nexus/internal/core"
	"github.com/carterperez-dev/nexus/internal/core/coretest"
	"github.com/carterperez-dev/nexus/internal/middleware"
	"github.com/carterperez-dev/nexus/internal/organization/orgtest"
	"github.com/carterperez-dev/nexus/internal/user"
	"github.com/carterperez-dev/nexus/internal/user/usertest"
)

type fakeMailer struct {
	mu       sync.Mutex
	verify   map[string]string
	reset    map[string]string
	resetErr error
}

func (m *fakeMailer) SendVerification(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verify[to] = token
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, _, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resetErr != nil {
		return m.resetErr
	}
	m.reset[to] = token
	return nil
}

type fixture struct {
	svc      *auth.Service
	jwt      *auth.JWTManager
	tokens   *authtest.Repository
	users    *usertest.Repository
	orgs     *orgtest.Repository
	events   *activitytest.Repository
	mailer   *fakeMailer
	resolver *auth.IdentityResolver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		jwt:    newJWTManager(t, jwtConfig(t)),
		tokens: authtest.NewRepository(),
		users:  usertest.NewRepository(),
		orgs:   orgtest.NewRepository(),
		events: activitytest.NewRepository(),
		mailer: &fakeMailer{verify: map[string]string{}, reset: map[string]string{}},
	}
	f.svc = auth.NewService(f.tokens, f.jwt, f.users, f.orgs, &coretest.Transactor{},
		f.mailer, activity.NewRecorder(f.events))
	f.resolver = auth.NewIdentityResolver(f.users, f.orgs)
	return f
}

var client = auth.ClientInfo{UserAgent: "test-agent", IPAddress: "10.1.1.1"}

func (f *fixture) register(t *testing.T, email string) *auth.AuthResponse {
	t.Helper()

	resp, err := f.svc.Register(context.Background(), auth.RegisterRequest{
		Email:            email,
		Password:         "password123",
		FirstName:        "Ada",
		LastName:         "Lovelace",
		OrganizationName: "Analytical Engines",
	}, client)
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "Ada@Example.com")

	require.Equal(t, "ada@example.com", resp.User.Email)
	require.Equal(t, user.RoleOwner, resp.User.Role)
	require.False(t, resp.User.EmailVerified)
	require.NotNil(t, resp.Organization)
	require.Equal(t, "free", resp.Organization.Plan)
	require.Regexp(t, `^analytical-engines-[0-9a-z]+$`, resp.Organization.Slug)
	require.Equal(t, "Bearer", resp.Tokens.TokenType)
	require.NotEmpty(t, resp.Tokens.RefreshToken)

	org, err := f.orgs.GetByID(context.Background(), resp.Organization.ID)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, org.OwnerID)

	require.Equal(t, 1, f.tokens.CountForUser(resp.User.ID))
	require.Contains(t, f.mailer.verify, "ada@example.com")
	require.Equal(t, []activity.Action{activity.ActionUserRegistered}, f.events.Actions())

	_, err = f.svc.Register(context.Background(), auth.RegisterRequest{
		Email: "ADA@example.com", Password: "password123",
		FirstName: "A", LastName: "B", OrganizationName: "Other",
	}, client)
	require.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	_, err := f.svc.Login(ctx, auth.LoginRequest{Email: "ada@example.com", Password: "wrong-password"}, client)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "password123"}, client)
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	f.tokens.Put(auth.RefreshToken{
		ID: uuid.NewString(), UserID: reg.User.ID, TokenHash: "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	resp, err := f.svc.Login(ctx, auth.LoginRequest{Email: "ADA@example.com", Password: "password123"}, client)
	require.NoError(t, err)
	require.Equal(t, reg.Organization.ID, resp.Organization.ID)
	require.Equal(t, 2, f.tokens.CountForUser(reg.User.ID))

	events := f.events.All()
	last := events[len(events)-1]
	require.Equal(t, activity.ActionUserLogin, last.Action)
	require.Equal(t, "10.1.1.1", last.Metadata.IP)
}

func TestRefreshRotation(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	first := reg.Tokens.RefreshToken
	next, err := f.svc.Refresh(ctx, first, client)
	require.NoError(t, err)
	require.NotEqual(t, first, next.RefreshToken)

	claims, err := f.jwt.VerifyAccessToken(ctx, next.AccessToken)
	require.NoError(t, err)
	require.Equal(t, reg.User.ID, claims.UserID)

	_, err = f.svc.Refresh(ctx, first, client)
	require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	_, err = f.svc.Refresh(ctx, "garbage", client)
	require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	require.Equal(t, 1, f.tokens.CountForUser(reg.User.ID))
}

func TestRefreshRejectsExpired(t *testing.T) {
	f := newFixture(t)
	f.tokens.Put(auth.RefreshToken{
		ID: uuid.NewString(), UserID: "u", TokenHash: core.HashToken("old"),
		ExpiresAt: time.Now().Add(-time.Second),
	})

	_, err := f.svc.Refresh(context.Background(), "old", client)
	require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestRefreshPrunesExpired(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	f.tokens.Put(auth.RefreshToken{
		ID: uuid.NewString(), UserID: reg.User.ID, TokenHash: core.HashToken("stale"),
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	require.Equal(t, 2, f.tokens.CountForUser(reg.User.ID))

	_, err := f.svc.Refresh(context.Background(), reg.Tokens.RefreshToken, client)
	require.NoError(t, err)
	require.Equal(t, 1, f.tokens.CountForUser(reg.User.ID))
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	second, err := f.svc.Login(ctx, auth.LoginRequest{Email: "ada@example.com", Password: "password123"}, client)
	require.NoError(t, err)
	require.Equal(t, 2, f.tokens.CountForUser(reg.User.ID))

	identity := &middleware.Identity{UserID: reg.User.ID, OrganizationID: reg.Organization.ID}
	require.NoError(t, f.svc.Logout(ctx, identity, second.Tokens.RefreshToken))
	require.Equal(t, 1, f.tokens.CountForUser(reg.User.ID))

	require.NoError(t, f.svc.Logout(ctx, identity, second.Tokens.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, nil, reg.Tokens.RefreshToken))
	require.Zero(t, f.tokens.CountForUser(reg.User.ID))

	logouts := 0
	for _, a := range f.events.Actions() {
		if a == activity.ActionUserLogout {
			logouts++
		}
	}
	require.Equal(t, 2, logouts)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.ForgotPassword(ctx, "unknown@example.com"))
	require.Empty(t, f.mailer.reset)

	require.NoError(t, f.svc.ForgotPassword(ctx, "ada@example.com"))
	token := f.mailer.reset["ada@example.com"]
	require.NotEmpty(t, token)

	err := f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: "wrong", Password: "brandnew123"})
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)

	require.NoError(t, f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, Password: "brandnew123"}))
	require.Zero(t, f.tokens.CountForUser(reg.User.ID))

	_, err = f.svc.Refresh(ctx, reg.Tokens.RefreshToken, client)
	require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	err = f.svc.ResetPassword(ctx, auth.ResetPasswordRequest{Token: token, Password: "another123"})
	require.ErrorIs(t, err, auth.ErrInvalidResetToken)

	_, err = f.svc.Login(ctx, auth.LoginRequest{Email: "ada@example.com", Password: "brandnew123"}, client)
	require.NoError(t, err)

	claims, err := f.jwt.VerifyAccessToken(ctx, reg.Tokens.AccessToken)
	require.NoError(t, err)
	_, err = f.resolver.ResolveIdentity(ctx, claims)
	require.ErrorIs(t, err, core.ErrTokenRevoked)
}

type noOrganizations struct{}

func (noOrganizations) Summary(context.Context, string) (*user.OrganizationSummary, error) {
	return nil, core.ErrNotFound
}

func TestChangePasswordRejectsOldRefreshTokens(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	users := user.NewService(f.users, noOrganizations{}, f.tokens, &coretest.Transactor{},
		activity.NewRecorder(f.events))
	require.NoError(t, users.ChangePassword(ctx, reg.User.ID, user.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword456",
	}))

	_, err := f.svc.Refresh(ctx, reg.Tokens.RefreshToken, client)
	require.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestForgotPasswordMailFailure(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	f.mailer.resetErr = errors.New("smtp down")

	err := f.svc.ForgotPassword(context.Background(), "ada@example.com")
	require.ErrorIs(t, err, auth.ErrResetEmailFailed)

	u, err := f.users.GetByID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	require.Nil(t, u.ResetTokenHash)
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	require.ErrorIs(t, f.svc.VerifyEmail(ctx, "bogus"), auth.ErrInvalidVerificationToken)
	require.NoError(t, f.svc.VerifyEmail(ctx, f.mailer.verify["ada@example.com"]))

	u, err := f.users.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.True(t, u.EmailVerified)

	require.ErrorIs(t, f.svc.VerifyEmail(ctx, f.mailer.verify["ada@example.com"]), auth.ErrInvalidVerificationToken)
}

func TestSessions(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	sessions, err := f.svc.ListSessions(ctx, reg.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions.Sessions, 1)
	require.Equal(t, "test-agent", sessions.Sessions[0].UserAgent)

	require.ErrorIs(t, f.svc.RevokeSession(ctx, "someone-else", sessions.Sessions[0].ID), auth.ErrSessionNotFound)
	require.NoError(t, f.svc.RevokeSession(ctx, reg.User.ID, sessions.Sessions[0].ID))
	require.Zero(t, f.tokens.CountForUser(reg.User.ID))
}

func TestResolveIdentity(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "ada@example.com")
	ctx := context.Background()

	claims, err := f.jwt.VerifyAccessToken(ctx, reg.Tokens.AccessToken)
	require.NoError(t, err)

	id, err := f.resolver.ResolveIdentity(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, user.RoleOwner, id.Role)
	require.Equal(t, reg.Organization.ID, id.OrganizationID)
	require.Equal(t, "Analytical Engines", id.OrganizationName)
	require.Equal(t, "free", id.Plan)

	require.NoError(t, f.users.Delete(ctx, reg.User.ID))
	_, err = f.resolver.ResolveIdentity(ctx, claims)
	require.ErrorIs(t, err, core.ErrNotFound)
}
