package mailer

import (
	"github.com/nthung-2k5/eventsphere/pkg/config"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}

// New picks the transport: the dev logger when EMAIL_DEV_MODE is set,
// MailerSend when an API key is configured, SMTP otherwise.
func New(cfg config.EmailConfig) Service {
	switch {
	case cfg.DevMode:
		logger.Info("Mailer: dev mode, emails are logged only")
		return NewDevMailer()
	case cfg.MailerSendKey != "":
		logger.Info("Mailer: MailerSend", "from", cfg.SMTPFrom)
		return NewMailer(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	default:
		logger.Info("Mailer: SMTP", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}
