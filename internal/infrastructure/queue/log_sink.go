package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// LogSink writes notifications to the structured log.
type LogSink struct {
	log zerolog.Logger
}

var _ ports.NotificationSink = (*LogSink)(nil)

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, n domain.Notification) error {
	ev := s.log.Info()
	switch n.Severity {
	case domain.SeverityError:
		ev = s.log.Error()
	case domain.SeverityWarning:
		ev = s.log.Warn()
	}
	ev.Str("session_id", n.SessionID).
		Str("severity", string(n.Severity)).
		Time("at", n.At).
		Msg(n.Message)
	return nil
}
