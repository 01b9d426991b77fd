package notification

import (
	"context"
	"log/slog"
)

// LogSink 只打日志, 不真正发送
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) NotifyUsersByEmail(ctx context.Context, messages map[string]string) error {
	for email, message := range messages {
		s.logger.InfoContext(ctx, "notify user", "email", email, "message", message)
	}
	return nil
}
