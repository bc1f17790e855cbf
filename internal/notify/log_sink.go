package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogSink writes notifications to the structured log.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger.Named("notify")}
}

func (s *LogSink) Notify(_ context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("recipient", n.Recipient),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.String("severity", string(n.Severity)),
	}
	if n.Severity == SeverityError {
		s.logger.Warn("notification", fields...)
		return
	}
	s.logger.Info("notification", fields...)
}
