package goquery

import "github.com/fwojciec/chatvault"

var _ chatvault.Provider = (*GeminiProvider)(nil)

// GeminiProvider extracts conversations from gemini.google.com.
//
// Gemini renders turns as Angular custom elements (<user-query>,
// <model-response>). Canvas documents open in an immersive panel.
type GeminiProvider struct {
	*BaseProvider
}

// NewGeminiProvider creates a new GeminiProvider.
func NewGeminiProvider(conv chatvault.Converter) *GeminiProvider {
	return &GeminiProvider{BaseProvider: NewBaseProvider(GeminiConfig(), conv)}
}

// GeminiConfig returns the selectors for gemini.google.com.
func GeminiConfig() ProviderConfig {
	return ProviderConfig{
		Name: string(chatvault.PlatformGemini),
		Selectors: chatvault.SelectorSet{
			Containers: []string{
				"user-query, model-response",
				".user-query-container, .model-response-text",
			},
			User: []string{
				"user-query",
				".user-query-container",
			},
			Assistant: []string{
				"model-response",
				".model-response-text",
			},
			Content: []string{
				".query-text",
				"message-content",
				".markdown",
			},
			Title: []string{
				".conversation-title.selected",
				"[data-test-id='conversation-title']",
			},
			ArtifactContainers: []string{
				"immersive-editor",
				"code-immersive-panel",
				"[data-test-id='immersive-panel']",
			},
			ArtifactTitles: []string{
				"[data-test-id='immersive-title']",
				".title-text",
				"h2",
			},
			ArtifactCode: []string{
				".cm-content",
				"pre code",
			},
			Chrome: []string{
				"message-actions",
				".response-footer",
				"[data-test-id='copy-button']",
				".query-text-line .cdk-visually-hidden",
			},
		},
		IDAttributes:  []string{"data-message-id", "data-response-id"},
		TitleSuffixes: []string{" - Gemini", "Gemini", "Google Gemini"},
	}
}
