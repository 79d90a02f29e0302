package services

import (
	"context"
	"log"
	"time"

	"gopkg.in/gomail.v2"
)

type Email struct {
	To      string
	Subject string
	Text    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type EmailClient struct {
	dialer   *gomail.Dialer
	logger   *log.Logger
	from     string
	fromName string
}

func NewEmailClient(host string, port int, username, password, from, fromName string, logger *log.Logger) *EmailClient {
	return &EmailClient{
		dialer:   gomail.NewDialer(host, port, username, password),
		logger:   logger,
		from:     from,
		fromName: fromName,
	}
}

func (c *EmailClient) Send(ctx context.Context, e Email) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", c.from, c.fromName)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Text)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.dialer.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		c.logger.Printf("Email send to %s cancelled: %v", e.To, ctx.Err())
		return ctx.Err()
	case err := <-done:
		if err != nil {
			c.logger.Printf("Failed to send email to %s: %v", e.To, err)
			return err
		}
		c.logger.Printf("Email %q sent to %s", e.Subject, e.To)
		return nil
	}
}
