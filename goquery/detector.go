package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
)

var _ chatvault.PlatformDetector = (*Detector)(nil)

// hostPlatforms maps chat application hosts to platforms.
var hostPlatforms = map[string]chatvault.Platform{
	"chatgpt.com":       chatvault.PlatformChatGPT,
	"chat.openai.com":   chatvault.PlatformChatGPT,
	"claude.ai":         chatvault.PlatformClaude,
	"gemini.google.com": chatvault.PlatformGemini,
	"bard.google.com":   chatvault.PlatformGemini,
	"perplexity.ai":     chatvault.PlatformPerplexity,
}

// markerConfig lists DOM markers unique to one platform.
type markerConfig struct {
	Platform  chatvault.Platform
	Selectors []string
}

// domMarkers are checked in order when the URL is not conclusive, e.g. for
// saved pages opened from disk.
var domMarkers = []markerConfig{
	{Platform: chatvault.PlatformChatGPT, Selectors: []string{
		"[data-message-author-role]",
		"article[data-testid^='conversation-turn']",
	}},
	{Platform: chatvault.PlatformClaude, Selectors: []string{
		"[data-testid='user-message']",
		".font-claude-message",
		".font-claude-response",
	}},
	{Platform: chatvault.PlatformGemini, Selectors: []string{
		"user-query",
		"model-response",
	}},
	{Platform: chatvault.PlatformPerplexity, Selectors: []string{
		"h1[class*='group/query']",
		"[data-testid='answer']",
	}},
}

// Detector identifies chat platforms from the page URL and, failing that,
// from the rendered HTML.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the platform that rendered the page.
// Returns PlatformUnknown if the platform cannot be determined.
func (d *Detector) Detect(pageURL string, html string) chatvault.Platform {
	if platform := d.detectFromURL(pageURL); platform != chatvault.PlatformUnknown {
		return platform
	}

	if strings.TrimSpace(html) == "" {
		return chatvault.PlatformUnknown
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return chatvault.PlatformUnknown
	}

	// The og:site_name meta tag is the most reliable marker when present.
	if platform := d.detectFromSiteName(doc); platform != chatvault.PlatformUnknown {
		return platform
	}

	for _, m := range domMarkers {
		for _, s := range m.Selectors {
			if doc.Find(s).Length() > 0 {
				return m.Platform
			}
		}
	}

	return chatvault.PlatformUnknown
}

func (d *Detector) detectFromURL(pageURL string) chatvault.Platform {
	if pageURL == "" {
		return chatvault.PlatformUnknown
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return chatvault.PlatformUnknown
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return hostPlatforms[host]
}

func (d *Detector) detectFromSiteName(doc *goquery.Document) chatvault.Platform {
	name, _ := doc.Find("meta[property='og:site_name']").First().Attr("content")
	name = strings.ToLower(name)

	switch {
	case name == "":
		return chatvault.PlatformUnknown
	case strings.Contains(name, "chatgpt"):
		return chatvault.PlatformChatGPT
	case strings.Contains(name, "claude"):
		return chatvault.PlatformClaude
	case strings.Contains(name, "gemini"):
		return chatvault.PlatformGemini
	case strings.Contains(name, "perplexity"):
		return chatvault.PlatformPerplexity
	}
	return chatvault.PlatformUnknown
}
