// Package email implementa el envío de notificaciones por SMTP.
package email

import (
	"crypto/tls"
	"fmt"
	"strings"

	mail "github.com/go-mail/mail"

	"github.com/dropDatabas3/caregate/internal/observability/logger"
)

// Sender envía un email. La implementación productiva es SMTPSender.
type Sender interface {
	Send(to, subject, htmlBody, textBody string) error
}

// SMTPSender implementa Sender usando SMTP.
type SMTPSender struct {
	Host    string
	Port    int
	From    string
	User    string
	Pass    string
	TLSMode string // "auto" | "starttls" | "ssl" | "none"
}

// NewSMTPSender crea un nuevo SMTPSender con los parámetros dados.
// tlsMode vacío o desconocido cae a "auto" (STARTTLS oportunista).
func NewSMTPSender(host string, port int, from, user, pass, tlsMode string) *SMTPSender {
	switch tlsMode = strings.ToLower(strings.TrimSpace(tlsMode)); tlsMode {
	case "ssl", "starttls", "none":
	default:
		tlsMode = "auto"
	}
	return &SMTPSender{
		Host:    host,
		Port:    port,
		From:    from,
		User:    user,
		Pass:    pass,
		TLSMode: tlsMode,
	}
}

// Send envía un email con contenido HTML y texto plano.
func (s *SMTPSender) Send(to, subject, htmlBody, textBody string) error {
	log := logger.L().With(
		logger.Component("SMTPSender"),
		logger.Key(s.Host),
		logger.Email(to),
	)

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	// Preferimos multipart/alternative (txt + html)
	if textBody != "" {
		m.SetBody("text/plain", textBody)
	}
	if htmlBody != "" {
		if textBody == "" {
			m.SetBody("text/html", htmlBody)
		} else {
			m.AddAlternative("text/html", htmlBody)
		}
	}

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = mail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = mail.NoStartTLS
	default: // auto
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	d.TLSConfig = &tls.Config{ServerName: s.Host}

	if err := d.DialAndSend(m); err != nil {
		log.Warn("email send failed", logger.Err(err))
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Debug("email sent")
	return nil
}
