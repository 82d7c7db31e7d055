package mailer

import (
	"qa_forum_backend/internal/config"
	"qa_forum_backend/pkg/logger"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(to, subject, html string) error
}

// SMTPMailer sends through the configured SMTP relay. With no host configured
// it only logs the message, which keeps local development working.
type SMTPMailer struct {
	mu  sync.RWMutex
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SetConfig swaps SMTP settings after a config reload.
func (m *SMTPMailer) SetConfig(cfg config.SMTPConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

func (m *SMTPMailer) Send(to, subject, html string) error {
	m.mu.RLock()
	cfg := m.cfg
	m.mu.RUnlock()

	if !cfg.Enabled() {
		logger.Log.Info("SMTP not configured, email skipped",
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return err
	}

	logger.Log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
