package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
)

var _ chatvault.Provider = (*GenericProvider)(nil)

// genericBoilerplate is removed before the body fallback is converted.
const genericBoilerplate = "nav, header, footer, aside, form, [role='navigation'], [role='banner'], [role='contentinfo']"

// GenericProvider handles pages from unrecognized platforms. The page's
// main content, found by the configured extractors, becomes a single
// assistant message.
type GenericProvider struct {
	conv       chatvault.Converter
	extractors []chatvault.Extractor
}

// NewGenericProvider creates a new GenericProvider. Extractors are tried in
// order; when none yields content the page body is used.
func NewGenericProvider(conv chatvault.Converter, extractors ...chatvault.Extractor) *GenericProvider {
	return &GenericProvider{conv: conv, extractors: extractors}
}

// Name returns the provider's identifier.
func (p *GenericProvider) Name() string {
	return "generic"
}

// Selectors returns the selectors the provider tries.
func (p *GenericProvider) Selectors() chatvault.SelectorSet {
	return chatvault.SelectorSet{
		Containers: []string{"body"},
		Content:    []string{"main", "article", "[role='main']", "body"},
		Chrome:     []string{genericBoilerplate},
	}
}

// CaptureMessages returns the page's main content as one message. In
// CaptureSelected mode only the elements marked as selected are used.
func (p *GenericProvider) CaptureMessages(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}

	doc, err := parse(html)
	if err != nil {
		return nil, err
	}

	var msg *chatvault.ExtractedMessage
	if mode == chatvault.CaptureSelected {
		msg = p.selectedMessage(doc)
	} else {
		msg = p.mainMessage(html, doc)
	}

	var messages []*chatvault.ExtractedMessage
	title := documentTitle(doc, nil)
	if msg != nil {
		if msg.Title == "" {
			msg.Title = title
		}
		title = msg.Title
		messages = append(messages, msg)
	}
	return captureResult(messages, title, "body"), nil
}

// ExtractMessageByID returns the page message if id matches it.
func (p *GenericProvider) ExtractMessageByID(html string, id string) (*chatvault.ExtractedMessage, error) {
	result, err := p.CaptureMessages(html, chatvault.CaptureAll, 0)
	if err != nil {
		return nil, err
	}
	for _, msg := range result.Messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, chatvault.Errorf(chatvault.ENOTFOUND, "message %q not found", id)
}

// ExtractArtifacts returns nil; unknown pages have no artifact markup.
func (p *GenericProvider) ExtractArtifacts(html string) ([]*chatvault.Artifact, error) {
	return nil, nil
}

func (p *GenericProvider) mainMessage(html string, doc *goquery.Document) *chatvault.ExtractedMessage {
	for _, ext := range p.extractors {
		result, err := ext.Extract(html)
		if err != nil || result == nil {
			continue
		}
		if content := p.conv.Convert(result.ContentHTML); content != "" {
			return newGenericMessage(content, result.Title, doc.Selection)
		}
	}

	body := doc.Find("body").Clone()
	body.Find(genericBoilerplate).Remove()
	stripChrome(body, nil)
	inner, err := body.Html()
	if err != nil {
		return nil
	}
	if content := p.conv.Convert(inner); content != "" {
		return newGenericMessage(content, "", doc.Selection)
	}
	return nil
}

func (p *GenericProvider) selectedMessage(doc *goquery.Document) *chatvault.ExtractedMessage {
	var parts []string
	doc.Find("[" + chatvault.SelectedAttr + "]").Each(func(_ int, s *goquery.Selection) {
		// Nested marks are covered by their outermost marked ancestor.
		if s.ParentsFiltered("["+chatvault.SelectedAttr+"]").Length() > 0 {
			return
		}
		clone := s.Clone()
		stripChrome(clone, nil)
		html, err := goquery.OuterHtml(clone)
		if err != nil {
			return
		}
		if md := p.conv.Convert(html); md != "" {
			parts = append(parts, md)
		}
	})
	if len(parts) == 0 {
		return nil
	}
	return newGenericMessage(strings.Join(parts, "\n\n"), "", doc.Selection)
}

func newGenericMessage(content, title string, source *goquery.Selection) *chatvault.ExtractedMessage {
	return &chatvault.ExtractedMessage{
		Role:    chatvault.RoleAssistant,
		Content: content,
		Title:   strings.TrimSpace(title),
		ID:      "msg-0",
		Source:  source,
	}
}
