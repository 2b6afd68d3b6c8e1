package chatvault

import (
	"context"
	"path"
)

// MessageType describes what a save request contains.
type MessageType string

// Message types.
const (
	MessageSingle    MessageType = "single"
	MessageSelection MessageType = "selection"
	MessageRecent    MessageType = "recent"
	MessageAll       MessageType = "all"
	MessageArtifact  MessageType = "artifact"
)

// SaveMethod identifies the mechanism that persisted content.
type SaveMethod string

// Save methods.
const (
	MethodFilesystem           SaveMethod = "filesystem"
	MethodAdvancedURI          SaveMethod = "advanced-uri"
	MethodAdvancedURIClipboard SaveMethod = "advanced-uri-clipboard"
	MethodDownloads            SaveMethod = "downloads"
	MethodClipboard            SaveMethod = "clipboard"
	MethodURI                  SaveMethod = "uri"
)

// Metadata keys recognized on save requests.
const (
	MetaArtifactTitle    = "artifact_title"
	MetaArtifactLanguage = "artifact_language"
	MetaArtifactFilename = "artifact_filename"
	MetaPart             = "part"
	MetaTotalParts       = "totalParts"
	MetaURL              = "url"
)

// SaveRequest asks the persistence coordinator to store content.
// Requests are plain values; strategies receive copies.
type SaveRequest struct {
	Content           string            `json:"content"`
	ConversationTitle string            `json:"conversationTitle"`
	Service           string            `json:"service"`
	MessageType       MessageType       `json:"messageType"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Validate returns an error if the request contains invalid fields.
func (r *SaveRequest) Validate() error {
	if r.Content == "" {
		return Errorf(ENOCONTENT, "save request content required")
	}
	if r.Service == "" {
		return Errorf(EINVALID, "save request service required")
	}
	switch r.MessageType {
	case MessageSingle, MessageSelection, MessageRecent, MessageAll, MessageArtifact:
	default:
		return Errorf(EINVALID, "unknown message type %q", r.MessageType)
	}
	return nil
}

// Clone returns a deep copy of the request.
func (r SaveRequest) Clone() SaveRequest {
	if r.Metadata != nil {
		md := make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			md[k] = v
		}
		r.Metadata = md
	}
	return r
}

// SaveOutcome is the terminal result of a save request.
type SaveOutcome struct {
	Success     bool       `json:"success"`
	Method      SaveMethod `json:"method,omitempty"`
	Filename    string     `json:"filename,omitempty"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	IsDuplicate bool       `json:"isDuplicate,omitempty"`
}

// Saver persists save requests. Implementations always return an outcome;
// failures, including transport failures, are reported through it.
type Saver interface {
	Save(ctx context.Context, req SaveRequest) SaveOutcome
}

// FailedOutcome builds an unsuccessful outcome from err. The user-facing
// message is derived from the error code; the detail goes to Error.
func FailedOutcome(method SaveMethod, err error) SaveOutcome {
	return SaveOutcome{
		Success: false,
		Method:  method,
		Message: UserMessage(err),
		Error:   err.Error(),
	}
}

// Note is a save request rendered for the vault: a folder, a file name and
// the file content with frontmatter.
type Note struct {
	Folder   string
	Filename string
	Content  string

	// Vault is the configured vault name; empty selects the vault app's
	// current vault.
	Vault string

	// Request is a private copy of the originating request.
	Request SaveRequest
}

// Path returns the vault-relative path of the note.
func (n *Note) Path() string {
	if n.Folder == "" {
		return n.Filename
	}
	return path.Join(n.Folder, n.Filename)
}

// SaveStrategy is one mechanism of the save chain.
type SaveStrategy interface {
	// Method identifies the mechanism.
	Method() SaveMethod

	// Save persists note. Any error means the note was not saved by this
	// mechanism and the chain moves on to the next one.
	Save(ctx context.Context, note Note) (SaveOutcome, error)
}
