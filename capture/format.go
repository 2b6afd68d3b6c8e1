package capture

import "fmt"

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatTokens formats a token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// FormatSummary renders a one-line summary of a capture.
func FormatSummary(r *Result) string {
	if r == nil {
		return ""
	}
	if !r.Outcome.Success {
		return fmt.Sprintf("not saved: %s", r.Outcome.Message)
	}

	s := fmt.Sprintf("saved %d message", r.Messages)
	if r.Messages != 1 {
		s += "s"
	}
	s += fmt.Sprintf(" (%s", FormatBytes(r.Bytes))
	if r.Tokens > 0 {
		s += ", " + FormatTokens(r.Tokens)
	}
	s += fmt.Sprintf(") via %s", r.Outcome.Method)
	if r.Outcome.Filename != "" {
		s += ": " + r.Outcome.Filename
	}
	if r.Outcome.IsDuplicate {
		s += " (unchanged)"
	}
	return s
}
