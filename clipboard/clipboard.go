// Package clipboard writes to the system clipboard.
package clipboard

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/fwojciec/chatvault"
)

var _ chatvault.Clipboard = (*Clipboard)(nil)

// Clipboard implements chatvault.Clipboard.
type Clipboard struct {
	// WriteAll writes text to the clipboard. Defaults to clipboard.WriteAll.
	WriteAll func(text string) error

	// Unsupported reports that no clipboard utility is available.
	Unsupported bool
}

// NewClipboard creates a Clipboard backed by the system clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{
		WriteAll:    clipboard.WriteAll,
		Unsupported: clipboard.Unsupported,
	}
}

// WriteText replaces the clipboard content with text.
func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Unsupported {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "no clipboard utility available")
	}
	if err := c.WriteAll(text); err != nil {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "write clipboard: %v", err)
	}
	return nil
}
