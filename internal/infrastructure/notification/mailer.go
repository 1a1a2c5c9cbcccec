package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/traveldesk/travel-approval/internal/application/port"
	"go.uber.org/zap"
)

// SMTPConfig holds mail relay configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers outbox messages through an SMTP relay
type SMTPMailer struct {
	config SMTPConfig
	logger *zap.Logger
}

// NewSMTPMailer creates a mailer over an SMTP relay
func NewSMTPMailer(config SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: logger,
	}
}

// Send delivers one message. Called from the notification worker, never
// from a request path.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}

	m.logger.Debug("Mail sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// LogMailer writes messages to the log instead of delivering them. Used
// in development and tests.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a log-only mailer
func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("Mail (log only)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body))
	return nil
}

// Verify interface compliance
var (
	_ port.Mailer = (*SMTPMailer)(nil)
	_ port.Mailer = (*LogMailer)(nil)
)
