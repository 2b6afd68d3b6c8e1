package goquery

import "github.com/fwojciec/chatvault"

var _ chatvault.Provider = (*PerplexityProvider)(nil)

// PerplexityProvider extracts threads from perplexity.ai. Perplexity has no
// artifacts.
type PerplexityProvider struct {
	*BaseProvider
}

// NewPerplexityProvider creates a new PerplexityProvider.
func NewPerplexityProvider(conv chatvault.Converter) *PerplexityProvider {
	return &PerplexityProvider{BaseProvider: NewBaseProvider(PerplexityConfig(), conv)}
}

// PerplexityConfig returns the selectors for perplexity.ai.
func PerplexityConfig() ProviderConfig {
	return ProviderConfig{
		Name: string(chatvault.PlatformPerplexity),
		Selectors: chatvault.SelectorSet{
			Containers: []string{
				"[data-testid='user-query'], [data-testid='answer']",
				"h1[class*='group/query'], div.prose",
			},
			User: []string{
				"[data-testid='user-query']",
				"h1[class*='group/query']",
			},
			Assistant: []string{
				"[data-testid='answer']",
				".prose",
			},
			Content: []string{
				".prose",
				"span.select-text",
			},
			Title: []string{
				"h1[class*='group/query']",
				"[data-testid='user-query']",
			},
			Chrome: []string{
				"[data-testid='answer-actions']",
				"[aria-label='Copy']",
				".citation-nbsp",
			},
		},
		IDAttributes:  []string{"data-message-id", "id"},
		TitleSuffixes: []string{" - Perplexity", " | Perplexity", "Perplexity"},
	}
}
