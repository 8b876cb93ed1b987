package mailer

import (
	"crypto/tls"
	"fmt"
	"time"

	"fitcabinet/coach-crm/internal/config"

	"github.com/charmbracelet/log"
	mail "github.com/xhit/go-simple-mail/v2"
)

// Mailer is fire-and-forget outbound delivery. Callers are expected to
// log a failure and move on; a failed send never fails the operation
// that requested it.
type Mailer interface {
	Send(to, subject, body string) error
}

// smtpMailer implements Mailer using go-simple-mail. All connection
// settings come from the config struct handed over at construction.
type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates a Mailer bound to the given SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

// Send connects, delivers one message and closes the connection.
func (m *smtpMailer) Send(to, subject, body string) error {
	if !m.cfg.Enabled {
		log.Debug("mail dispatch disabled, skipping", "to", to, "subject", subject)
		return nil
	}

	server := mail.NewSMTPClient()
	server.Host = m.cfg.Host
	server.Port = m.cfg.Port
	server.Username = m.cfg.Username
	server.Password = m.cfg.Password

	if m.cfg.UseSSL {
		server.Encryption = mail.EncryptionSSLTLS
	} else if m.cfg.UseTLS {
		server.Encryption = mail.EncryptionSTARTTLS
	} else {
		server.Encryption = mail.EncryptionNone
	}
	if m.cfg.InsecureSkipVerify {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	msg := mail.NewMSG()
	msg.SetFrom(m.cfg.From).
		AddTo(to).
		SetSubject(subject)
	msg.SetBody(mail.TextPlain, body)

	if msg.Error != nil {
		return fmt.Errorf("failed to build email: %w", msg.Error)
	}

	if err := msg.Send(client); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Debug("email sent", "to", to, "subject", subject)
	return nil
}
