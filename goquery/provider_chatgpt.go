package goquery

import "github.com/fwojciec/chatvault"

var _ chatvault.Provider = (*ChatGPTProvider)(nil)

// ChatGPTProvider extracts conversations from chatgpt.com.
//
// Each turn is an <article> whose message element carries
// data-message-author-role. Canvas documents are extracted as artifacts.
type ChatGPTProvider struct {
	*BaseProvider
}

// NewChatGPTProvider creates a new ChatGPTProvider.
func NewChatGPTProvider(conv chatvault.Converter) *ChatGPTProvider {
	return &ChatGPTProvider{BaseProvider: NewBaseProvider(ChatGPTConfig(), conv)}
}

// ChatGPTConfig returns the selectors for chatgpt.com.
func ChatGPTConfig() ProviderConfig {
	return ProviderConfig{
		Name: string(chatvault.PlatformChatGPT),
		Selectors: chatvault.SelectorSet{
			Containers: []string{
				"article[data-testid^='conversation-turn']",
				"[data-message-author-role]",
				"div.group.w-full",
			},
			User: []string{
				"[data-message-author-role='user']",
				"[data-turn='user']",
			},
			Assistant: []string{
				"[data-message-author-role='assistant']",
				"[data-turn='assistant']",
			},
			Content: []string{
				".markdown",
				".whitespace-pre-wrap",
				"[data-message-author-role]",
			},
			Title: []string{
				"[data-testid='conversation-title']",
				"nav a[aria-current='page']",
			},
			ArtifactContainers: []string{
				"[data-testid='canvas']",
				"section[data-canvas]",
			},
			ArtifactTitles: []string{
				"[data-testid='canvas-title']",
				"header h2",
			},
			ArtifactCode: []string{
				".cm-content",
				"pre code",
			},
			Chrome: []string{
				"[data-testid$='turn-action-button']",
				"[data-testid='message-actions']",
				".sr-only",
			},
		},
		IDAttributes:  []string{"data-message-id", "data-testid"},
		TitleSuffixes: []string{" - ChatGPT", " | ChatGPT", "ChatGPT"},
	}
}
