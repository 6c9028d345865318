package mailer

import (
	"auth-portal/backend/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTP sends mail through the configured relay. It satisfies the auth
// package's Mailer interface.
type SMTP struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTP(cfg config.SMTPConfig) *SMTP {
	return &SMTP{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (m *SMTP) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	opts := []gomail.Option{gomail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.username),
			gomail.WithPassword(m.password),
		)
	}
	client, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}
