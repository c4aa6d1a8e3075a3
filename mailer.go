package sochx

import (
	"context"
	"fmt"
)

// LogMailer writes reset links to the log instead of delivering mail. It is
// the development default; production wires a real provider behind the same
// interface.
type LogMailer struct {
	frontendURL string
	logger      Logger
}

var _ Mailer = (*LogMailer)(nil)

func NewLogMailer(frontendURL string, logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	m.logger.Info("password reset for %s: %s", email, link)
	return nil
}
