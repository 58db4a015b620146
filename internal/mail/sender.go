// AngelaMos | 2026
// sender.go

package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/carterperez-dev/nexus/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	templateVerifyEmail   = "verify_email"
	templateResetPassword = "reset_password"
	templateTeamInvite    = "team_invite"
)

// Sender renders the transactional templates and hands them to a Mailer.
type Sender struct {
	mailer      Mailer
	frontendURL string
	templates   map[string]*template.Template
}

func NewSender(mailer Mailer, frontendURL string) (*Sender, error) {
	s := &Sender{
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		templates:   map[string]*template.Template{},
	}

	for _, name := range []string{templateVerifyEmail, templateResetPassword, templateTeamInvite} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		s.templates[name] = t
	}

	return s, nil
}

func (s *Sender) SendVerification(ctx context.Context, to, firstName, token string) error {
	return s.send(ctx, templateVerifyEmail, to, "Verify your email - Nexus", map[string]string{
		"Name": firstName,
		"URL":  s.frontendURL + "/verify-email/" + token,
	})
}

func (s *Sender) SendPasswordReset(ctx context.Context, to, firstName, token string) error {
	return s.send(ctx, templateResetPassword, to, "Reset your password - Nexus", map[string]string{
		"Name": firstName,
		"URL":  s.frontendURL + "/reset-password/" + token,
	})
}

func (s *Sender) SendTeamInvite(ctx context.Context, to, orgName, role, token string) error {
	subject := fmt.Sprintf("You've been invited to join %s on Nexus", orgName)
	return s.send(ctx, templateTeamInvite, to, subject, map[string]string{
		"OrganizationName": orgName,
		"Role":             role,
		"URL":              s.frontendURL + "/accept-invite/" + token,
	})
}

func (s *Sender) send(ctx context.Context, name, to, subject string, data any) error {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	err := s.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: buf.String()})
	core.ObserveEmail(name, err)
	return err
}
