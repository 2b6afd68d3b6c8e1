package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/chatvault"
)

// Ensure LoggingProviderRegistry implements chatvault.ProviderRegistry.
var _ chatvault.ProviderRegistry = (*LoggingProviderRegistry)(nil)

// LoggingProviderRegistry wraps a ProviderRegistry with logging for
// platform detection.
type LoggingProviderRegistry struct {
	next     chatvault.ProviderRegistry
	detector chatvault.PlatformDetector
	logger   *slog.Logger
}

// NewLoggingProviderRegistry creates a new LoggingProviderRegistry.
func NewLoggingProviderRegistry(next chatvault.ProviderRegistry, detector chatvault.PlatformDetector, logger *slog.Logger) *LoggingProviderRegistry {
	return &LoggingProviderRegistry{next: next, detector: detector, logger: logger}
}

// Get delegates to the wrapped registry.
func (r *LoggingProviderRegistry) Get(platform chatvault.Platform) chatvault.Provider {
	return r.next.Get(platform)
}

// ForPage detects the platform, logs it, and returns the provider.
func (r *LoggingProviderRegistry) ForPage(pageURL string, html string) chatvault.Provider {
	begin := time.Now()
	platform := r.detector.Detect(pageURL, html)
	platformName := string(platform)
	if platform == chatvault.PlatformUnknown {
		platformName = "(unknown)"
	}
	provider := r.next.ForPage(pageURL, html)
	r.logger.Info("platform detection",
		"url", pageURL,
		"platform", platformName,
		"provider", provider.Name(),
		"duration", time.Since(begin),
	)
	return provider
}

// Register delegates to the wrapped registry.
func (r *LoggingProviderRegistry) Register(platform chatvault.Platform, provider chatvault.Provider) {
	r.next.Register(platform, provider)
}

// List delegates to the wrapped registry.
func (r *LoggingProviderRegistry) List() []chatvault.Platform {
	return r.next.List()
}
