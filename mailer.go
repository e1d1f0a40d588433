package auth

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/goliatone/go-errors"
)

// SMTPConfig points the mailer at an SMTP relay
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers plain-text mail over an authenticated SMTP relay
type SMTPMailer struct {
	cfg    SMTPConfig
	logger Logger
}

// NewSMTPMailer builds a mailer for the given relay
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: defLogger{}}
}

// WithLogger replaces the diagnostic collaborator
func (m *SMTPMailer) WithLogger(logger Logger) *SMTPMailer {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// Send delivers one message, honoring context cancellation while the SMTP
// exchange is in flight.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled before mail delivery")
	default:
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	payload := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"",
		msg.Body,
	}, "\r\n")

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, []byte(payload))
	}()

	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.CategoryOperation, "context cancelled during mail delivery")
	case err := <-done:
		if err != nil {
			m.logger.Error("smtp delivery failed", "to", msg.To, "error", err)
			return errors.Wrap(err, errors.CategoryOperation, "smtp delivery failed")
		}
	}

	m.logger.Debug("mail delivered", "to", msg.To)
	return nil
}
