// Package readability is the secondary main-content extractor for
// unrecognized chat pages.
package readability

import (
	"fmt"
	"strings"

	"github.com/fwojciec/chatvault"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements chatvault.Extractor at compile time.
var _ chatvault.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*chatvault.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, chatvault.Errorf(chatvault.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, fmt.Errorf("readability: %w", err)
	}
	if strings.TrimSpace(article.Content) == "" {
		return nil, chatvault.Errorf(chatvault.ENOCONTENT, "no main content found")
	}

	return &chatvault.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
