package mock

import "github.com/fwojciec/chatvault"

var _ chatvault.Converter = (*Converter)(nil)

// Converter is a mock implementation of chatvault.Converter.
type Converter struct {
	ConvertFn func(html string) string
}

func (c *Converter) Convert(html string) string {
	return c.ConvertFn(html)
}
