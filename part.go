package chatvault

import (
	"context"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the size bound, in characters, above which artifact
// content is split into parts.
const DefaultChunkSize = 10000

// ContentPart is one bounded fragment of split content. Part and TotalParts
// are 1-based and zero when the content was not split.
type ContentPart struct {
	Content    string `json:"content"`
	Part       int    `json:"part,omitempty"`
	TotalParts int    `json:"totalParts,omitempty"`
}

// SplitText splits text into parts of at most maxSize characters along line
// boundaries. Lines are never split, so a single line longer than maxSize
// yields an oversized part. Concatenating the parts' content reproduces text.
//
// overlapHint is accepted for compatibility and ignored: parts never share
// content.
func SplitText(text string, maxSize, overlapHint int) []ContentPart {
	_ = overlapHint

	if maxSize <= 0 {
		maxSize = DefaultChunkSize
	}
	if utf8.RuneCountInString(text) <= maxSize {
		return []ContentPart{{Content: text}}
	}

	var chunks []string
	var buf strings.Builder
	bufSize := 0

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		size := utf8.RuneCountInString(line)
		if bufSize > 0 && bufSize+size > maxSize {
			chunks = append(chunks, buf.String())
			buf.Reset()
			bufSize = 0
		}
		buf.WriteString(line)
		bufSize += size
	}
	if bufSize > 0 {
		chunks = append(chunks, buf.String())
	}

	if len(chunks) == 1 {
		return []ContentPart{{Content: chunks[0]}}
	}

	parts := make([]ContentPart, len(chunks))
	for i, c := range chunks {
		parts[i] = ContentPart{
			Content:    c,
			Part:       i + 1,
			TotalParts: len(chunks),
		}
	}
	return parts
}

// Splitter splits and fingerprints content, possibly off the calling goroutine.
type Splitter interface {
	// Split behaves like SplitText.
	Split(ctx context.Context, text string, maxSize, overlapHint int) []ContentPart

	// Hash returns a stable hex fingerprint of text.
	Hash(ctx context.Context, text string) string
}
