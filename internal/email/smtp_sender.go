package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPSender envía correos vía SMTP con cuerpo de texto y alternativa HTML.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SMTPSender) Send(_ context.Context, to, subject, textBody, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("to email is required")
	}

	m := gomail.NewMessage()
	if strings.TrimSpace(s.fromName) != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)
	if strings.TrimSpace(htmlBody) != "" {
		m.AddAlternative("text/html", htmlBody)
	}

	return s.dialer.DialAndSend(m)
}
