package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendClient is the subset of *sendgrid.Client the mailer uses.
type SendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer delivers reminder digests through SendGrid.
type SendGridMailer struct {
	client    SendClient
	fromEmail string
	fromName  string
}

func NewSendGridMailer(apiKey, fromEmail, fromName string) *SendGridMailer {
	return NewSendGridMailerWithClient(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func NewSendGridMailerWithClient(client SendClient, fromEmail, fromName string) *SendGridMailer {
	return &SendGridMailer{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (m *SendGridMailer) SendReminder(ctx context.Context, r Reminder) error {
	if r.To == "" {
		return fmt.Errorf("reminder for %s has no recipient", r.CompanyName)
	}
	plain, html, err := r.Render()
	if err != nil {
		return err
	}

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(r.greeting(), r.To)
	message := mail.NewSingleEmail(from, r.Subject(), to, plain, html)

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

// LogMailer logs reminders instead of sending them. Used when no SendGrid
// key is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendReminder(ctx context.Context, r Reminder) error {
	m.logger.InfoContext(ctx, "deadline reminder",
		"to", r.To,
		"company", r.CompanyName,
		"subject", r.Subject(),
		"items", len(r.Items),
		"log_type", "event",
	)
	return nil
}
