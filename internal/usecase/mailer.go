package usecase

import (
	"context"
	"log/slog"

	"dailybrief/internal/config"
	"dailybrief/internal/ports"
	"dailybrief/pkg/retry"
)

// Mailer wraps the raw transport with the delivery retry policy. Transient
// SMTP failures retry with backoff; permanent rejections surface
// immediately.
type Mailer struct {
	transport ports.MailTransport
	from      string
	fromName  string
	policy    retry.Policy
	logger    *slog.Logger
}

// NewMailer binds the configured sender identity to the transport.
func NewMailer(transport ports.MailTransport, cfg config.SMTPConfig, logger *slog.Logger) *Mailer {
	return &Mailer{
		transport: transport,
		from:      cfg.From,
		fromName:  cfg.FromName,
		policy: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BackoffBase: cfg.BackoffBase,
		},
		logger: logger.With("component", "mailer"),
	}
}

// Deliver sends one digest message, retrying transient failures.
func (m *Mailer) Deliver(ctx context.Context, to, toName, subject, htmlBody, plainBody string) error {
	msg := ports.Message{
		From:     m.from,
		FromName: m.fromName,
		To:       to,
		ToName:   toName,
		Subject:  subject,
		HTML:     htmlBody,
		Plain:    plainBody,
	}

	_, err := retry.Do(ctx, m.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.transport.Send(ctx, msg)
	})
	if err != nil {
		m.logger.Error("digest delivery failed", "to", to, "error", err)
		return err
	}
	return nil
}
