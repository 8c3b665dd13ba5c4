// Package mail sends outbound email over SMTP.
package mail

import (
	"io"

	"github.com/electrade/network-api/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends email with optional inline attachments.
type Mailer interface {
	// Send delivers a plain-text message. Attachments map filename to
	// raw content.
	Send(to, subject, body string, attachments map[string][]byte) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer from SMTP settings
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers a plain-text message with the given attachments
func (m *SMTPMailer) Send(to, subject, body string, attachments map[string][]byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	for name, content := range attachments {
		content := content
		msg.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	}

	return m.dialer.DialAndSend(msg)
}
