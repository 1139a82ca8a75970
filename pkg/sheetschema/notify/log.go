package notify

import (
	"context"
	"log/slog"
)

// LogSink writes every event to a slog logger.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a LogSink writing to logger, or to slog.Default when nil.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{Logger: logger}
}

// Notify implements Sink.
func (s *LogSink) Notify(e Event) {
	attrs := []slog.Attr{slog.String("severity", string(e.Severity))}
	if e.Session != "" {
		attrs = append(attrs, slog.String("session", e.Session))
	}
	if e.Attachment != nil {
		group := []any{
			slog.String("kind", string(e.Attachment.Kind())),
			slog.String("label", e.Attachment.Title()),
		}
		if img, ok := e.Attachment.(BitmapImage); ok {
			group = append(group, slog.Int("bytes", len(img.PNG)))
		}
		attrs = append(attrs, slog.Group("attachment", group...))
	}
	s.Logger.LogAttrs(context.Background(), Level(e.Severity), e.Message, attrs...)
}

// Level maps a severity onto a slog level.
func Level(sev Severity) slog.Level {
	switch sev {
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	case Info, Success, AI:
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
