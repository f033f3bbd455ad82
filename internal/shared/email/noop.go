package email

import (
	"context"

	"go.uber.org/zap"
)

// NoopSender logs messages instead of sending them. Used in development.
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a no-op sender.
func NewNoopSender(logger *zap.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs but doesn't send.
func (s *NoopSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email (no-op)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
