package mailer

import (
	"fmt"

	"github.com/yardops/compliance-worker/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends notification emails over SMTP. Delivery is best-effort by
// contract: callers log and swallow any error returned here.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewMailer creates a new SMTP mailer
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Send delivers a single HTML email. When SMTP credentials are not
// configured the send is skipped with a warning so local and test
// environments run without a mail server.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if m.cfg.User == "" || m.cfg.Password == "" {
		m.logger.Warn("email configuration not set, skipping email send",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.logger.Info("email sent successfully",
		zap.String("to", to),
		zap.String("subject", subject))

	return nil
}
