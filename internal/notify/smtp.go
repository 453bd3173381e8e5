package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers mail directly over SMTP with PLAIN auth.
type SMTPSender struct {
	host   string
	port   int
	sender string
	auth   smtp.Auth
}

func NewSMTPSender(host string, port int, username, password, sender string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		host:   host,
		port:   port,
		sender: sender,
		auth:   auth,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	raw := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s\r\n\r\n%s",
		s.sender, strings.Join(msg.Recipients, ", "), msg.Subject, contentType, msg.Body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := smtp.SendMail(addr, s.auth, s.sender, msg.Recipients, []byte(raw)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", strings.Join(msg.Recipients, ","), err)
	}

	return nil
}
