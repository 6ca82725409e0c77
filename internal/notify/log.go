package notify

import (
	"context"
	"log/slog"

	"github.com/erazemk/cmas/internal/alerting"
)

// LogSender writes messages to the log instead of sending them. Used in
// development and when no SMS provider is configured.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, body string) alerting.Delivery {
	s.logger.Info("sms", "to", to, "body", body)
	return alerting.Delivered()
}
