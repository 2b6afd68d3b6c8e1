package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
)

var _ chatvault.Provider = (*BaseProvider)(nil)

// ProviderConfig describes a platform entirely through data. Platform
// providers differ only in their configs.
type ProviderConfig struct {
	Name      string
	Selectors chatvault.SelectorSet

	// IDAttributes are read, in order, from a message element or its
	// descendants to find the platform message id.
	IDAttributes []string

	// RecentCount is the default message count for CaptureRecent.
	RecentCount int

	// TitleSuffixes are trimmed from the document <title> when no title
	// selector matches (e.g. " - Claude").
	TitleSuffixes []string
}

// BaseProvider implements chatvault.Provider on top of a ProviderConfig.
type BaseProvider struct {
	cfg  ProviderConfig
	conv chatvault.Converter
}

// NewBaseProvider creates a provider for cfg. conv renders message HTML to
// Markdown.
func NewBaseProvider(cfg ProviderConfig, conv chatvault.Converter) *BaseProvider {
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = chatvault.DefaultRecentCount
	}
	return &BaseProvider{cfg: cfg, conv: conv}
}

// Name returns the provider's identifier.
func (p *BaseProvider) Name() string {
	return p.cfg.Name
}

// Selectors returns the selectors the provider tries.
func (p *BaseProvider) Selectors() chatvault.SelectorSet {
	return p.cfg.Selectors
}

// CaptureMessages parses page HTML and returns messages for mode.
func (p *BaseProvider) CaptureMessages(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}

	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	title := p.title(doc)
	messages, selector := p.messages(doc, title)

	switch mode {
	case chatvault.CaptureRecent:
		if count <= 0 {
			count = p.cfg.RecentCount
		}
		if len(messages) > count {
			messages = messages[len(messages)-count:]
		}
	case chatvault.CaptureSelected:
		messages = selected(messages)
	}

	return captureResult(messages, title, selector), nil
}

// ExtractMessageByID returns the message with the given id.
func (p *BaseProvider) ExtractMessageByID(html string, id string) (*chatvault.ExtractedMessage, error) {
	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	messages, _ := p.messages(doc, p.title(doc))
	for _, msg := range messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, chatvault.Errorf(chatvault.ENOTFOUND, "message %q not found", id)
}

// ExtractArtifacts returns the artifacts embedded in the page.
func (p *BaseProvider) ExtractArtifacts(html string) ([]*chatvault.Artifact, error) {
	if len(p.cfg.Selectors.ArtifactContainers) == 0 {
		return nil, nil
	}

	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	return extractArtifacts(doc, p.cfg.Selectors, p.conv), nil
}

// ExtractMessage converts a single message element. It returns nil when
// the element holds no content once UI controls are removed.
func (p *BaseProvider) ExtractMessage(sel *goquery.Selection, index int) *chatvault.ExtractedMessage {
	content := p.content(sel)
	if content == "" {
		return nil
	}

	return &chatvault.ExtractedMessage{
		Role:    DetectRole(sel, p.cfg.Selectors),
		Content: content,
		ID:      p.messageID(sel, index),
		Index:   index,
		Source:  sel,
	}
}

// messages extracts every message in document order together with the
// container selector that matched.
func (p *BaseProvider) messages(doc *goquery.Document, title string) ([]*chatvault.ExtractedMessage, string) {
	containers, selector := firstMatch(doc.Selection, p.cfg.Selectors.Containers)
	if containers == nil {
		return nil, ""
	}

	var messages []*chatvault.ExtractedMessage
	containers.Each(func(i int, sel *goquery.Selection) {
		if msg := p.ExtractMessage(sel, i); msg != nil {
			msg.Title = title
			messages = append(messages, msg)
		}
	})
	return messages, selector
}

// content clones the content region of sel, strips UI controls and
// converts it to Markdown.
func (p *BaseProvider) content(sel *goquery.Selection) string {
	region := contentRegion(sel, p.cfg.Selectors.Content)

	var parts []string
	region.Each(func(_ int, s *goquery.Selection) {
		clone := s.Clone()
		stripChrome(clone, p.cfg.Selectors.Chrome)
		html, err := goquery.OuterHtml(clone)
		if err != nil {
			return
		}
		if md := p.conv.Convert(html); md != "" {
			parts = append(parts, md)
		}
	})
	return strings.Join(parts, "\n\n")
}

func (p *BaseProvider) messageID(sel *goquery.Selection, index int) string {
	for _, attr := range p.cfg.IDAttributes {
		if v, ok := sel.Attr(attr); ok && v != "" {
			return v
		}
		if v, ok := sel.Find("[" + attr + "]").First().Attr(attr); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("msg-%d", index)
}

func (p *BaseProvider) title(doc *goquery.Document) string {
	for _, s := range p.cfg.Selectors.Title {
		if t := strings.TrimSpace(doc.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return documentTitle(doc, p.cfg.TitleSuffixes)
}

// contentRegion returns the elements holding message content: sel itself
// when it matches a content selector, else the outermost descendants
// matching the first content selector that matches, else sel.
func contentRegion(sel *goquery.Selection, selectors []string) *goquery.Selection {
	for _, s := range selectors {
		if sel.Is(s) {
			return sel
		}
		found := sel.Find(s)
		if found.Length() == 0 {
			continue
		}
		return found.FilterFunction(func(_ int, m *goquery.Selection) bool {
			return m.ParentsUntilSelection(sel).Filter(s).Length() == 0
		})
	}
	return sel
}

// stripChrome removes injected controls and the provider's UI chrome.
func stripChrome(sel *goquery.Selection, chrome []string) {
	sel.Find("." + chatvault.ControlClass).Remove()
	for _, c := range chrome {
		sel.Find(c).Remove()
	}
}

// firstMatch returns the matches of the first selector that matches
// anything below root, along with that selector.
func firstMatch(root *goquery.Selection, selectors []string) (*goquery.Selection, string) {
	for _, s := range selectors {
		if found := root.Find(s); found.Length() > 0 {
			return found, s
		}
	}
	return nil, ""
}

// documentTitle returns the <title> text with the first matching suffix
// removed. A title that is only a platform name yields "".
func documentTitle(doc *goquery.Document, suffixes []string) string {
	t := strings.TrimSpace(doc.Find("head title").First().Text())
	for _, suffix := range suffixes {
		if strings.HasSuffix(t, suffix) {
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
			break
		}
		if strings.EqualFold(t, strings.TrimLeft(suffix, " -|")) {
			return ""
		}
	}
	return t
}

// selected keeps messages whose element intersects the text selection.
func selected(messages []*chatvault.ExtractedMessage) []*chatvault.ExtractedMessage {
	var out []*chatvault.ExtractedMessage
	for _, msg := range messages {
		sel, ok := msg.Source.(*goquery.Selection)
		if !ok {
			continue
		}
		if isSelected(sel) {
			out = append(out, msg)
		}
	}
	return out
}

func isSelected(sel *goquery.Selection) bool {
	if _, ok := sel.Attr(chatvault.SelectedAttr); ok {
		return true
	}
	return sel.Find("["+chatvault.SelectedAttr+"]").Length() > 0
}

func captureResult(messages []*chatvault.ExtractedMessage, title, selector string) *chatvault.CaptureResult {
	if len(messages) == 0 {
		return &chatvault.CaptureResult{
			Success:  false,
			Title:    title,
			Error:    chatvault.NoMessagesFound,
			Selector: selector,
		}
	}
	return &chatvault.CaptureResult{
		Success:  true,
		Messages: messages,
		Title:    title,
		Selector: selector,
	}
}

func checkMode(mode chatvault.CaptureMode) error {
	switch mode {
	case chatvault.CaptureAll, chatvault.CaptureRecent, chatvault.CaptureSelected:
		return nil
	}
	return chatvault.Errorf(chatvault.EINTERNAL, "unknown capture mode %q", mode)
}

func parse(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, chatvault.Errorf(chatvault.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}
