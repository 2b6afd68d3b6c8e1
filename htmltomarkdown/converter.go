// Package htmltomarkdown converts chat message HTML to canonical Markdown.
package htmltomarkdown

import (
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
)

// Ensure Converter implements chatvault.Converter at compile time.
var _ chatvault.Converter = (*Converter)(nil)

// DefaultChromeSelectors match UI controls that never carry message content.
var DefaultChromeSelectors = []string{
	"button",
	"[role='button']",
	"[role='toolbar']",
	"[role='tooltip']",
	"." + chatvault.ControlClass,
	".copy-button",
	".copy-code-button",
	"[data-testid*='copy']",
	"[aria-label*='Copy']",
	"[class*='toolbar']",
	".sr-only",
	"svg",
	"style",
	"script",
	"noscript",
}

// Converter wraps html-to-markdown to convert HTML to Markdown. A pre-pass
// over the fragment normalizes code blocks, tables, math and page chrome
// before rendering.
type Converter struct {
	conv   *converter.Converter
	chrome []string
}

// Option configures a Converter.
type Option func(*Converter)

// WithChromeSelectors adds selectors for UI chrome to strip.
func WithChromeSelectors(selectors ...string) Option {
	return func(c *Converter) {
		c.chrome = append(c.chrome, selectors...)
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	c := &Converter{
		conv:   conv,
		chrome: append([]string(nil), DefaultChromeSelectors...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms an HTML fragment into Markdown. It never fails:
// empty input yields "" and any conversion error degrades to plain text.
func (c *Converter) Convert(html string) (md string) {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			md = StripTags(html)
		}
	}()

	out, err := c.convert(html)
	if err != nil {
		return StripTags(html)
	}
	return out
}

func (c *Converter) convert(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing fragment: %w", err)
	}

	body := doc.Find("body")
	p := newPrepass(c.chrome)
	p.run(body)

	prepared, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("rendering fragment: %w", err)
	}

	result, err := c.conv.ConvertString(prepared)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(p.restore(result)), nil
}
