// AngelaMos | 2026
// sender_test.go

package mail_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/mail"
)

type captureMailer struct {
	sent []mail.Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, msg mail.Message) error {
	c.sent = append(c.sent, msg)
	return c.err
}

func TestSenderTemplates(t *testing.T) {
	m := &captureMailer{}
	s, err := mail.NewSender(m, "https://app.nexus.test/")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.SendVerification(ctx, "ada@acme.com", "Ada", "tok-v"))
	require.NoError(t, s.SendPasswordReset(ctx, "ada@acme.com", "Ada", "tok-r"))
	require.NoError(t, s.SendTeamInvite(ctx, "bob@acme.com", "Acme & Co", "admin", "tok-i"))

	require.Len(t, m.sent, 3)

	require.Equal(t, "Verify your email - Nexus", m.sent[0].Subject)
	require.Contains(t, m.sent[0].HTML, "https://app.nexus.test/verify-email/tok-v")
	require.Contains(t, m.sent[0].HTML, "Welcome aboard, Ada!")

	require.Contains(t, m.sent[1].HTML, "https://app.nexus.test/reset-password/tok-r")

	require.Equal(t, "bob@acme.com", m.sent[2].To)
	require.Equal(t, "You've been invited to join Acme & Co on Nexus", m.sent[2].Subject)
	require.Contains(t, m.sent[2].HTML, "Acme &amp; Co")
	require.Contains(t, m.sent[2].HTML, "/accept-invite/tok-i")
}

func TestSenderPropagatesMailerError(t *testing.T) {
	m := &captureMailer{err: errors.New("connection refused")}
	s, err := mail.NewSender(m, "http://localhost:3000")
	require.NoError(t, err)

	err = s.SendVerification(context.Background(), "ada@acme.com", "Ada", "tok")
	require.ErrorContains(t, err, "connection refused")
}
