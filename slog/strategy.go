package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/chatvault"
)

// Ensure LoggingStrategy implements chatvault.SaveStrategy.
var _ chatvault.SaveStrategy = (*LoggingStrategy)(nil)

// LoggingStrategy wraps a SaveStrategy with debug logging of each attempt.
type LoggingStrategy struct {
	next   chatvault.SaveStrategy
	logger *slog.Logger
}

// NewLoggingStrategy creates a new LoggingStrategy.
func NewLoggingStrategy(next chatvault.SaveStrategy, logger *slog.Logger) *LoggingStrategy {
	return &LoggingStrategy{next: next, logger: logger}
}

// Method delegates to the wrapped strategy.
func (s *LoggingStrategy) Method() chatvault.SaveMethod {
	return s.next.Method()
}

// Save delegates to the wrapped strategy and logs the attempt. Attempts
// skipped for size are reported as such.
func (s *LoggingStrategy) Save(ctx context.Context, note chatvault.Note) (out chatvault.SaveOutcome, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save attempt",
			"method", s.next.Method(),
			"path", note.Path(),
			"bytes", len(note.Content),
			"skipped", chatvault.ErrorCode(err) == chatvault.ETOOLARGE,
			"success", err == nil && out.Success,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, note)
}
