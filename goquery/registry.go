package goquery

import "github.com/fwojciec/chatvault"

var _ chatvault.ProviderRegistry = (*Registry)(nil)

// Registry manages platform providers and detects the platform of a page.
// It uses a PlatformDetector to identify the platform and returns the
// matching provider, falling back to a generic provider when the platform
// is unknown or no provider is registered for it.
type Registry struct {
	detector  chatvault.PlatformDetector
	fallback  chatvault.Provider
	providers map[chatvault.Platform]chatvault.Provider
}

// NewRegistry creates a new Registry with the given detector and fallback
// provider.
func NewRegistry(detector chatvault.PlatformDetector, fallback chatvault.Provider) *Registry {
	return &Registry{
		detector:  detector,
		fallback:  fallback,
		providers: make(map[chatvault.Platform]chatvault.Provider),
	}
}

// NewDefaultRegistry returns a Registry with every supported platform
// registered and fallback used for unknown pages.
func NewDefaultRegistry(conv chatvault.Converter, fallback chatvault.Provider) *Registry {
	r := NewRegistry(NewDetector(), fallback)
	r.Register(chatvault.PlatformChatGPT, NewChatGPTProvider(conv))
	r.Register(chatvault.PlatformClaude, NewClaudeProvider(conv))
	r.Register(chatvault.PlatformGemini, NewGeminiProvider(conv))
	r.Register(chatvault.PlatformPerplexity, NewPerplexityProvider(conv))
	return r
}

// Get returns the provider for a specific platform.
// Returns nil if no provider is registered for the platform.
func (r *Registry) Get(platform chatvault.Platform) chatvault.Provider {
	return r.providers[platform]
}

// ForPage detects the platform of a page and returns its provider.
func (r *Registry) ForPage(pageURL string, html string) chatvault.Provider {
	platform := r.detector.Detect(pageURL, html)
	if provider, ok := r.providers[platform]; ok {
		return provider
	}
	return r.fallback
}

// Register adds a provider for a platform.
// If a provider is already registered for the platform, it is replaced.
func (r *Registry) Register(platform chatvault.Platform, provider chatvault.Provider) {
	r.providers[platform] = provider
}

// List returns all registered platforms.
func (r *Registry) List() []chatvault.Platform {
	platforms := make([]chatvault.Platform, 0, len(r.providers))
	for p := range r.providers {
		platforms = append(platforms, p)
	}
	return platforms
}
