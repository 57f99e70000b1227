package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
)

// Sender delivers transactional email. Failure is a distinct, catchable
// condition the caller decides how to surface.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Mailer sends email over SMTP.
type Mailer struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
}

// NewMailer creates a Mailer for the given SMTP endpoint. The connection is
// established per send; mailyak keeps no long-lived socket.
func NewMailer(host string, port int, username, password, from, fromName string) *Mailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &Mailer{
		addr:     fmt.Sprintf("%s:%d", host, port),
		auth:     auth,
		from:     from,
		fromName: fromName,
	}
}

// Send delivers a plain-text message, honoring context cancellation while the
// SMTP exchange runs in the background.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	msg := mailyak.New(m.addr, m.auth)
	msg.To(to)
	msg.From(m.from)
	msg.FromName(m.fromName)
	msg.Subject(subject)
	msg.Plain().Set(body)

	done := make(chan error, 1)
	go func() {
		done <- msg.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", to, err)
		}
	}
	return nil
}

// LogSender writes messages to the structured logger instead of delivering
// them. Used in development when SMTP is not configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender constructs a logging mail sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send writes the message to the structured logger.
func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("mail", "to", to, "subject", subject, "body", body)
	return nil
}
