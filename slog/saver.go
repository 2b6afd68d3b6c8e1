package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/chatvault"
)

// Ensure LoggingSaver implements chatvault.Saver.
var _ chatvault.Saver = (*LoggingSaver)(nil)

// LoggingSaver wraps a Saver with logging.
type LoggingSaver struct {
	next   chatvault.Saver
	logger *slog.Logger
}

// NewLoggingSaver creates a new LoggingSaver.
func NewLoggingSaver(next chatvault.Saver, logger *slog.Logger) *LoggingSaver {
	return &LoggingSaver{next: next, logger: logger}
}

// Save delegates to the wrapped saver and logs the outcome. Failed
// outcomes are logged at warn level with the internal error detail.
func (s *LoggingSaver) Save(ctx context.Context, req chatvault.SaveRequest) (out chatvault.SaveOutcome) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if !out.Success {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "save",
			"service", req.Service,
			"type", req.MessageType,
			"bytes", len(req.Content),
			"method", out.Method,
			"filename", out.Filename,
			"duplicate", out.IsDuplicate,
			"success", out.Success,
			"duration", time.Since(begin),
			"err", out.Error,
		)
	}(time.Now())
	return s.next.Save(ctx, req)
}
