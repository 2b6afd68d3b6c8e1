package mock

import (
	"context"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var (
	_ chatvault.Saver    = (*Saver)(nil)
	_ chatvault.Splitter = (*Splitter)(nil)
)

// Saver is a mock implementation of chatvault.Saver.
type Saver struct {
	SaveFn func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome
}

func (s *Saver) Save(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
	return s.SaveFn(ctx, req)
}

// Splitter is a mock implementation of chatvault.Splitter.
type Splitter struct {
	SplitFn func(ctx context.Context, text string, maxSize, overlapHint int) []chatvault.ContentPart
	HashFn  func(ctx context.Context, text string) string
}

func (s *Splitter) Split(ctx context.Context, text string, maxSize, overlapHint int) []chatvault.ContentPart {
	return s.SplitFn(ctx, text, maxSize, overlapHint)
}

func (s *Splitter) Hash(ctx context.Context, text string) string {
	return s.HashFn(ctx, text)
}

var _ chatvault.SaveStrategy = (*SaveStrategy)(nil)

// SaveStrategy is a mock implementation of chatvault.SaveStrategy.
type SaveStrategy struct {
	MethodFn func() chatvault.SaveMethod
	SaveFn   func(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error)
}

func (s *SaveStrategy) Method() chatvault.SaveMethod {
	return s.MethodFn()
}

func (s *SaveStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	return s.SaveFn(ctx, note)
}
