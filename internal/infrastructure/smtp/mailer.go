// Package smtp delivers rendered digests over SMTP using go-mail with
// STARTTLS and multipart bodies.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	mail "github.com/wneessen/go-mail"

	"dailybrief/internal/config"
	"dailybrief/internal/domain"
	"dailybrief/internal/ports"
)

// Mailer sends one message per call over a fresh SMTP session.
type Mailer struct {
	client *mail.Client
	logger *slog.Logger
}

var _ ports.MailTransport = (*Mailer)(nil)

// New builds the SMTP client from config. Credentials are required; a
// missing username or password is a startup error, not a send-time one.
func New(cfg config.SMTPConfig, logger *slog.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("smtp credentials are not configured")
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &Mailer{client: client, logger: logger.With("component", "mailer")}, nil
}

// Send delivers a multipart message with the plain body as the primary
// part and the rich body as the alternative.
func (m *Mailer) Send(ctx context.Context, msg ports.Message) error {
	letter := mail.NewMsg()
	if err := letter.FromFormat(msg.FromName, msg.From); err != nil {
		return domain.Permanent(fmt.Errorf("invalid sender %q: %w", msg.From, err))
	}
	if err := letter.AddToFormat(msg.ToName, msg.To); err != nil {
		return domain.Permanent(fmt.Errorf("invalid recipient %q: %w", msg.To, err))
	}
	letter.Subject(msg.Subject)
	letter.SetBodyString(mail.TypeTextPlain, msg.Plain)
	letter.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, letter); err != nil {
		m.logger.Warn("smtp delivery failed", "to", msg.To, "error", err)
		return classify(err)
	}

	m.logger.Info("message delivered", "to", msg.To, "subject", msg.Subject)
	return nil
}

// classify maps SMTP outcomes onto the failure taxonomy: 4xx replies and
// connection errors are retryable, 5xx replies are not.
func classify(err error) error {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		if sendErr.IsTemp() {
			return domain.Transient(fmt.Errorf("send mail: %w", err))
		}
		return domain.Permanent(fmt.Errorf("send mail: %w", err))
	}
	// Dial and TLS failures have no reply code; treat them as retryable.
	return domain.Transient(fmt.Errorf("send mail: %w", err))
}
