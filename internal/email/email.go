// Package email sends outbound mail over SMTP. Handlers depend on the
// Mailer interface so tests can record messages instead of sending them.
package email

import (
	"fmt"
	"net/smtp"

	"simple-chats/config"
	"simple-chats/pkg/logger"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	log      *logger.Logger
}

func NewSMTPSender(cfg *config.Config, l *logger.Logger) *SMTPSender {
	return &SMTPSender{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		log:      l,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.from, to, subject, body)

	// Without a configured host the mail is only logged. Useful for
	// local development.
	if s.host == "" {
		if s.log != nil {
			s.log.Infof("mock email to %s: %s", to, subject)
		}
		return nil
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(message))
}
