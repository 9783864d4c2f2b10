// Package mailer delivers transactional e-mail through a bounded background
// queue, so request handlers never wait on SMTP.
package mailer

import (
	"fmt"

	"inkwell/internal/config"

	"gopkg.in/gomail.v2"
)

// Sender delivers a single message. Implementations must be safe for
// concurrent use by multiple queue workers.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail over SMTP using the configured relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender builds a Sender from the SMTP settings in cfg.
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.MailFrom,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return s.dialer.DialAndSend(m)
}

const welcomeSubject = "Welcome to Inkwell!"

// welcomeBody renders the fixed plain-text welcome message.
func welcomeBody(username string) string {
	return fmt.Sprintf(`Hello %s,

Welcome to Inkwell!

Your account has been successfully created.

You can now access the API and start publishing posts.

Best regards,
The Inkwell Team
`, username)
}
