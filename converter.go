package chatvault

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment into canonical Markdown.
	// It never fails: empty input yields an empty string and malformed
	// input degrades to plain text with line breaks preserved.
	Convert(html string) string
}
