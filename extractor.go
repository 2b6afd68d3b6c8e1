package chatvault

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
// It backs the generic provider used for unrecognized pages.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
