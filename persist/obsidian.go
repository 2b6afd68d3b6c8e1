package persist

import (
	"net/url"
	"strings"
)

// URI length limits above which the vault app or the OS truncates the URI.
const (
	MaxURILength         = 8000
	MaxAdvancedURILength = 30000
)

// NewNoteURI builds an obsidian://new URI creating file with content.
func NewNoteURI(vault, file, content string) string {
	return buildURI("new", []param{
		{"vault", vault},
		{"file", strings.TrimSuffix(file, ".md")},
		{"content", content},
	})
}

// AdvancedURI builds an Advanced URI plugin link writing data to filepath.
func AdvancedURI(vault, filepath, data string) string {
	return buildURI("advanced-uri", []param{
		{"vault", vault},
		{"filepath", filepath},
		{"data", data},
		{"mode", "new"},
	})
}

// AdvancedClipboardURI builds an Advanced URI plugin link that writes the
// clipboard content to filepath.
func AdvancedClipboardURI(vault, filepath string) string {
	return buildURI("advanced-uri", []param{
		{"vault", vault},
		{"filepath", filepath},
		{"clipboard", "true"},
		{"mode", "new"},
	})
}

type param struct {
	key, value string
}

// buildURI encodes params in order. Spaces are encoded as %20, which the
// vault app requires; empty values are omitted.
func buildURI(action string, params []param) string {
	var b strings.Builder
	b.WriteString("obsidian://")
	b.WriteString(action)

	sep := "?"
	for _, p := range params {
		if p.value == "" {
			continue
		}
		b.WriteString(sep)
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(encode(p.value))
		sep = "&"
	}
	return b.String()
}

func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
