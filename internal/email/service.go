package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// Service sends the optional email copy of a notification. Delivery is
// best-effort: the dispatch worker logs failures and moves on.
type Service interface {
	SendNotification(to, subject, body string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendNotification(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}
	return nil
}

// NoopService discards every email; used when SMTP is not configured.
type NoopService struct{}

func (NoopService) SendNotification(string, string, string) error { return nil }
