package notify

import (
	"context"
	"fmt"

	"github.com/fayiz2005/Kaze/config"
	"github.com/fayiz2005/Kaze/internal/service"

	gopkgmail "gopkg.in/gomail.v2"
)

// EmailSender отправляет plain-text письма напрямую через SMTP.
type EmailSender struct {
	from string
	send func(m *gopkgmail.Message) error
}

func NewEmailSender(cfg config.SMTP) *EmailSender {
	d := gopkgmail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.SSL
	return &EmailSender{
		from: cfg.From,
		send: func(m *gopkgmail.Message) error { return d.DialAndSend(m) },
	}
}

func (s *EmailSender) buildMessage(n service.Notification) *gopkgmail.Message {
	m := gopkgmail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", n.To)
	m.SetHeader("Subject", n.Subject)
	m.SetBody("text/plain", n.Body)
	return m
}

// Notify: gomail не умеет ctx, поэтому ждём отправку в горутине и
// отпускаем вызывающего по дедлайну.
func (s *EmailSender) Notify(ctx context.Context, n service.Notification) error {
	if n.To == "" {
		return fmt.Errorf("send email: empty recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := s.buildMessage(n)
	done := make(chan error, 1)
	go func() { done <- s.send(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send email: %w", ctx.Err())
	}
}
