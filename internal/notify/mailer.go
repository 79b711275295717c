package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender sends plain-text mail through an SMTP relay. It matches the
// local debug SMTP server setup this service is deployed against; no
// authentication is attempted.
type SMTPSender struct {
	Addr string
	From string
}

// Send implements common.EmailSender.
func (s SMTPSender) Send(to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("smtp send: recipient is required")
	}
	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
