package mock

import "github.com/fwojciec/chatvault"

// Compile-time interface verification.
var (
	_ chatvault.Provider         = (*Provider)(nil)
	_ chatvault.PlatformDetector = (*PlatformDetector)(nil)
	_ chatvault.ProviderRegistry = (*ProviderRegistry)(nil)
)

// Provider is a mock implementation of chatvault.Provider.
type Provider struct {
	NameFn               func() string
	SelectorsFn          func() chatvault.SelectorSet
	CaptureMessagesFn    func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error)
	ExtractMessageByIDFn func(html string, id string) (*chatvault.ExtractedMessage, error)
	ExtractArtifactsFn   func(html string) ([]*chatvault.Artifact, error)
}

func (p *Provider) Name() string {
	return p.NameFn()
}

func (p *Provider) Selectors() chatvault.SelectorSet {
	return p.SelectorsFn()
}

func (p *Provider) CaptureMessages(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
	return p.CaptureMessagesFn(html, mode, count)
}

func (p *Provider) ExtractMessageByID(html string, id string) (*chatvault.ExtractedMessage, error) {
	return p.ExtractMessageByIDFn(html, id)
}

func (p *Provider) ExtractArtifacts(html string) ([]*chatvault.Artifact, error) {
	return p.ExtractArtifactsFn(html)
}

// PlatformDetector is a mock implementation of chatvault.PlatformDetector.
type PlatformDetector struct {
	DetectFn func(pageURL string, html string) chatvault.Platform
}

func (d *PlatformDetector) Detect(pageURL string, html string) chatvault.Platform {
	return d.DetectFn(pageURL, html)
}

// ProviderRegistry is a mock implementation of chatvault.ProviderRegistry.
type ProviderRegistry struct {
	GetFn      func(platform chatvault.Platform) chatvault.Provider
	ForPageFn  func(pageURL string, html string) chatvault.Provider
	RegisterFn func(platform chatvault.Platform, provider chatvault.Provider)
	ListFn     func() []chatvault.Platform
}

func (r *ProviderRegistry) Get(platform chatvault.Platform) chatvault.Provider {
	return r.GetFn(platform)
}

func (r *ProviderRegistry) ForPage(pageURL string, html string) chatvault.Provider {
	return r.ForPageFn(pageURL, html)
}

func (r *ProviderRegistry) Register(platform chatvault.Platform, provider chatvault.Provider) {
	r.RegisterFn(platform, provider)
}

func (r *ProviderRegistry) List() []chatvault.Platform {
	return r.ListFn()
}
