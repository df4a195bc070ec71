package mailer

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer stands in for SMTP when no relay is configured. The link is not
// logged since it carries a live reset token.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendResetEmail(_ context.Context, to, name, _ string) error {
	m.logger.Warn("smtp not configured, reset email dropped",
		zap.String("to", to),
		zap.String("name", name),
	)
	return nil
}
