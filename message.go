package chatvault

import "strings"

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ExtractedMessage is a single message read from a conversation page.
type ExtractedMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"` // Markdown
	Title   string `json:"title"`

	// ID identifies the message within the page. It is the platform's own
	// message id when available, otherwise a positional id ("msg-3").
	ID string `json:"id"`

	// Index is the position of the message element among the elements
	// matching CaptureResult.Selector.
	Index int `json:"-"`

	// Source references the page element the message was read from.
	// It is only used for selection tests and is never serialized.
	Source any `json:"-"`
}

// CaptureMode selects which messages a batch capture returns.
type CaptureMode string

// Capture modes.
const (
	CaptureAll      CaptureMode = "all"
	CaptureRecent   CaptureMode = "recent"
	CaptureSelected CaptureMode = "selected"
)

// ParseCaptureMode converts s to a CaptureMode.
func ParseCaptureMode(s string) (CaptureMode, error) {
	switch mode := CaptureMode(s); mode {
	case CaptureAll, CaptureRecent, CaptureSelected:
		return mode, nil
	}
	return "", Errorf(EINVALID, "unknown capture mode %q", s)
}

// MessageType returns the save request type that corresponds to the mode.
func (m CaptureMode) MessageType() MessageType {
	switch m {
	case CaptureRecent:
		return MessageRecent
	case CaptureSelected:
		return MessageSelection
	default:
		return MessageAll
	}
}

// NoMessagesFound is the CaptureResult error reported when a page holds no
// messages for the requested mode.
const NoMessagesFound = "no messages found"

// CaptureResult holds the outcome of a batch capture.
type CaptureResult struct {
	Success  bool                `json:"success"`
	Messages []*ExtractedMessage `json:"messages"`
	Title    string              `json:"title"`
	Error    string              `json:"error,omitempty"`

	// Selector is the container selector that matched the page.
	Selector string `json:"-"`
}

// Artifact is a standalone document or code deliverable embedded in an
// assistant message.
type Artifact struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	Filename string `json:"filename"`
	Content  string `json:"content"` // Markdown, one fence per code region
}

// FormatConversation renders messages as a single Markdown document with a
// heading per message.
func FormatConversation(messages []*ExtractedMessage) string {
	if len(messages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, "## "+roleHeading(msg.Role)+"\n\n"+msg.Content)
	}

	return strings.Join(parts, "\n\n")
}

func roleHeading(r Role) string {
	if r == RoleUser {
		return "User"
	}
	return "Assistant"
}
