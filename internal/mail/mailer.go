// AngelaMos | 2026
// mailer.go

package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "gopkg.in/mail.v2"

	"github.com/carterperez-dev/nexus/internal/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a LogMailer when no SMTP host is set.
func New(cfg config.MailConfig, logger *slog.Logger) Mailer {
	if cfg.SMTPHost == "" {
		return &LogMailer{logger: logger}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTML)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}

	return nil
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email not delivered, smtp disabled",
		"to", msg.To,
		"subject", msg.Subject,
		"bytes", len(msg.HTML),
	)
	return nil
}
