package chatvault

// Platform identifies a supported chat application.
type Platform string

// Supported platforms.
const (
	PlatformUnknown    Platform = ""
	PlatformChatGPT    Platform = "chatgpt"
	PlatformClaude     Platform = "claude"
	PlatformGemini     Platform = "gemini"
	PlatformPerplexity Platform = "perplexity"
)

// SelectorSet lists the CSS selectors a provider tries, in priority order.
// Earlier entries take precedence. Several candidates exist per concern
// because the platforms change their markup without notice.
type SelectorSet struct {
	Containers []string
	User       []string
	Assistant  []string
	Content    []string
	Title      []string

	ArtifactContainers []string
	ArtifactTitles     []string
	ArtifactCode       []string

	// Chrome lists UI controls that are removed from cloned content.
	Chrome []string
}

// Provider extracts conversation content from one platform's pages.
type Provider interface {
	// Name returns the provider's identifier (e.g., "chatgpt").
	Name() string

	// Selectors returns the selectors the provider tries.
	Selectors() SelectorSet

	// CaptureMessages parses page HTML and returns messages for the mode.
	// count is used by CaptureRecent; zero selects the provider default.
	// An unknown mode is a programming error and returns an error rather
	// than an unsuccessful CaptureResult.
	CaptureMessages(html string, mode CaptureMode, count int) (*CaptureResult, error)

	// ExtractMessageByID returns the message with the given ID.
	// Returns ENOTFOUND if no such message exists.
	ExtractMessageByID(html string, id string) (*ExtractedMessage, error)

	// ExtractArtifacts returns the artifacts embedded in the page.
	// Providers without artifact support return nil.
	ExtractArtifacts(html string) ([]*Artifact, error)
}

// PlatformDetector identifies the platform that rendered a page.
type PlatformDetector interface {
	// Detect returns PlatformUnknown if the platform cannot be determined.
	Detect(pageURL string, html string) Platform
}

// ProviderRegistry manages platform providers.
type ProviderRegistry interface {
	// Get returns the provider for a platform or nil if none is registered.
	Get(platform Platform) Provider

	// ForPage detects the platform and returns its provider.
	// Falls back to a generic provider if the platform is unknown.
	ForPage(pageURL string, html string) Provider

	// Register adds a provider for a platform.
	Register(platform Platform, provider Provider)

	// List returns all registered platforms.
	List() []Platform
}
