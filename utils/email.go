package utils

import (
	"fmt"

	mail "github.com/go-mail/mail/v2"
)

type Mailer struct {
	dialer *mail.Dialer
	sender string
}

func NewMailer(host string, port int, username, password, sender string) *Mailer {
	return &Mailer{
		dialer: mail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

// SendVerificationCode emails a signup verification code. Transient SMTP
// failures are retried twice before giving up.
func (m *Mailer) SendVerificationCode(to, code string) error {
	msg := mail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", "Verify your email")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Welcome! Your verification code is %s. It expires in 15 minutes.", code))

	var err error
	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}
