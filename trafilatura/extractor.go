// Package trafilatura extracts the main content of unrecognized chat pages
// using go-trafilatura.
package trafilatura

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fwojciec/chatvault"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements chatvault.Extractor at compile time.
var _ chatvault.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor. Tables and links are kept because
// assistant answers routinely contain both.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback: true,
			IncludeLinks:   true,
		},
	}
}

// Extract processes raw HTML and returns the main content.
// Returns ENOCONTENT when the page has no extractable body.
func (e *Extractor) Extract(rawHTML string) (*chatvault.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, chatvault.Errorf(chatvault.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, fmt.Errorf("trafilatura: %w", err)
	}
	if result.ContentNode == nil {
		return nil, chatvault.Errorf(chatvault.ENOCONTENT, "no main content found")
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}

	return &chatvault.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("rendering content: %w", err)
	}
	return buf.String(), nil
}
