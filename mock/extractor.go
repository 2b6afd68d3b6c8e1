package mock

import "github.com/fwojciec/chatvault"

var _ chatvault.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of chatvault.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*chatvault.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*chatvault.ExtractResult, error) {
	return e.ExtractFn(html)
}
