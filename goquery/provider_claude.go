package goquery

import "github.com/fwojciec/chatvault"

var _ chatvault.Provider = (*ClaudeProvider)(nil)

// ClaudeProvider extracts conversations and artifacts from claude.ai.
type ClaudeProvider struct {
	*BaseProvider
}

// NewClaudeProvider creates a new ClaudeProvider.
func NewClaudeProvider(conv chatvault.Converter) *ClaudeProvider {
	return &ClaudeProvider{BaseProvider: NewBaseProvider(ClaudeConfig(), conv)}
}

// ClaudeConfig returns the selectors for claude.ai.
//
// User turns are [data-testid='user-message'], assistant turns carry
// .font-claude-message (older markup) or .font-claude-response. Artifacts
// open in a side panel holding either a code view or rendered Markdown.
func ClaudeConfig() ProviderConfig {
	return ProviderConfig{
		Name: string(chatvault.PlatformClaude),
		Selectors: chatvault.SelectorSet{
			Containers: []string{
				"div[data-test-render-count]",
				"[data-testid='user-message'], .font-claude-message, .font-claude-response",
			},
			User: []string{
				"[data-testid='user-message']",
				".font-user-message",
			},
			Assistant: []string{
				".font-claude-message",
				".font-claude-response",
				"[data-is-streaming]",
			},
			Content: []string{
				"[data-testid='user-message']",
				".font-claude-message",
				".font-claude-response",
			},
			Title: []string{
				"[data-testid='chat-title-button']",
				"[data-testid='chat-menu-trigger']",
			},
			ArtifactContainers: []string{
				"#markdown-artifact",
				"[data-testid='artifact-view']",
				".artifact-panel",
			},
			ArtifactTitles: []string{
				"[data-testid='artifact-title']",
				".artifact-title",
				"h2",
			},
			ArtifactCode: []string{
				"pre code",
				".cm-content",
			},
			Chrome: []string{
				"[data-testid='action-bar-copy']",
				"[data-testid='action-bar-retry']",
				"[data-testid='message-actions']",
			},
		},
		IDAttributes:  []string{"data-message-id"},
		TitleSuffixes: []string{" - Claude", " \\ Claude", "Claude"},
	}
}
