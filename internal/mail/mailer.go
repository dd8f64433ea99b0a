package mail

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers a single message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(to, subject, textBody, htmlBody string) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer for the given relay. The from address may be
// a bare address or a full "Name <addr>" header.
func NewSMTPMailer(host string, port int, user, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

// Send delivers one message with both plain-text and HTML bodies.
func (m *SMTPMailer) Send(to, subject, textBody, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", textBody)
	if htmlBody != "" {
		msg.AddAlternative("text/html", htmlBody)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
