package htmltomarkdown

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	nethtml "golang.org/x/net/html"
)

// contentSelector matches elements that make a container worth keeping.
const contentSelector = "p, pre, code, table, ul, ol, blockquote, h1, h2, h3, h4, h5, h6, img, math, .katex"

// wrapperSelector matches presentational containers that are unwrapped.
const wrapperSelector = "font, .markdown, .prose, [class*='markdown-'], [class*='message-content']"

// cellSelector matches table cells, where code must stay inline.
const cellSelector = "td, th"

// preformattedClasses mark inline code elements that hold a block of code.
var preformattedClasses = []string{"preformatted", "code-block", "whitespace-pre", "block-code"}

// Placeholder tokens survive Markdown rendering untouched because they are
// plain alphanumerics. Each conversion uses its own nonce so that text that
// merely looks like a token is left alone.
const placeholderPrefix = "CHATVAULT"

var (
	langClassRe   = regexp.MustCompile(`(?:^|\s)(?:language|lang)-([A-Za-z0-9+#_.-]+)`)
	langLabelRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+#_.-]{0,19}$`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// prepass rewrites a parsed fragment so that html-to-markdown renders it in
// canonical form. Content that the renderer would escape (math, rules) is
// swapped for placeholders and restored afterwards.
type prepass struct {
	chrome       []string
	nonce        string
	tokenRe      *regexp.Regexp
	placeholders []string
}

func newPrepass(chrome []string) *prepass {
	nonce := strings.ReplaceAll(uuid.NewString(), "-", "")
	return &prepass{
		chrome:  chrome,
		nonce:   nonce,
		tokenRe: regexp.MustCompile(placeholderPrefix + nonce + `P(\d+)X`),
	}
}

func (p *prepass) run(root *goquery.Selection) {
	p.protectMath(root)
	p.normalizeCodeBlocks(root)
	p.promoteInlineCode(root)
	p.removeChrome(root)
	p.flattenTables(root)
	p.replaceRules(root)
	p.unwrapWrappers(root)
}

// placeholder stores replacement and returns the token that stands in for it.
func (p *prepass) placeholder(replacement string) string {
	p.placeholders = append(p.placeholders, replacement)
	return fmt.Sprintf("%s%sP%dX", placeholderPrefix, p.nonce, len(p.placeholders)-1)
}

// restore swaps placeholder tokens in rendered Markdown for their content.
func (p *prepass) restore(md string) string {
	if len(p.placeholders) == 0 {
		return md
	}
	return p.tokenRe.ReplaceAllStringFunc(md, func(tok string) string {
		m := p.tokenRe.FindStringSubmatch(tok)
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx >= len(p.placeholders) {
			return tok
		}
		return p.placeholders[idx]
	})
}

// protectMath replaces rendered math with its TeX source.
func (p *prepass) protectMath(root *goquery.Selection) {
	root.Find(".katex-display, .math-block, .math-display, mjx-container[display='true'], math[display='block']").Each(func(_ int, s *goquery.Selection) {
		tex := texSource(s)
		if tex == "" {
			return
		}
		s.ReplaceWithHtml("<p>" + p.placeholder("$$\n"+tex+"\n$$") + "</p>")
	})

	root.Find(".katex, .math-inline, mjx-container, math, script[type^='math/tex']").Each(func(_ int, s *goquery.Selection) {
		if s.Closest("body").Length() == 0 {
			return
		}
		tex := texSource(s)
		if tex == "" {
			return
		}
		s.ReplaceWithHtml(p.placeholder("$" + tex + "$"))
	})
}

// texSource returns the TeX source of a rendered math element.
func texSource(s *goquery.Selection) string {
	if v, ok := s.Attr("data-math"); ok {
		return strings.TrimSpace(v)
	}
	if goquery.NodeName(s) == "script" {
		return strings.TrimSpace(s.Text())
	}
	if ann := s.Find("annotation[encoding='application/x-tex']").First(); ann.Length() > 0 {
		return strings.TrimSpace(ann.Text())
	}
	if v, ok := s.Find("[data-math]").First().Attr("data-math"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// normalizeCodeBlocks rebuilds every <pre> holding code as a bare
// <pre><code class="language-x"> so that label chips, copy buttons and
// highlighting spans inside the block disappear.
func (p *prepass) normalizeCodeBlocks(root *goquery.Selection) {
	root.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		if pre.Closest(cellSelector).Length() > 0 {
			return
		}
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}

		lang := CodeLanguage(code)
		if lang == "" {
			lang = CodeLanguage(pre)
		}
		if lang == "" {
			lang = labelLanguage(pre)
		}

		pre.ReplaceWithHtml(codeBlockHTML(lang, code.Text()))
	})
}

// promoteInlineCode turns <code> elements outside <pre> that carry a
// language or preformatted class into fenced blocks.
func (p *prepass) promoteInlineCode(root *goquery.Selection) {
	root.Find("code").Each(func(_ int, code *goquery.Selection) {
		if code.ParentsFiltered("pre").Length() > 0 || code.Closest(cellSelector).Length() > 0 {
			return
		}
		lang := CodeLanguage(code)
		if lang == "" && !hasAnyClass(code, preformattedClasses) {
			return
		}
		code.ReplaceWithHtml(codeBlockHTML(lang, code.Text()))
	})
}

// removeChrome deletes UI controls. A match that contains content elements
// is kept, since it may be a container rather than a control.
func (p *prepass) removeChrome(root *goquery.Selection) {
	for _, sel := range p.chrome {
		root.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if s.Find(contentSelector).Length() > 0 {
				return
			}
			s.Remove()
		})
	}
}

// flattenTables keeps every table row on a single line by collapsing
// line breaks and block structure inside cells. Code blocks in a cell
// become inline code.
func (p *prepass) flattenTables(root *goquery.Selection) {
	root.Find(cellSelector).Each(func(_ int, cell *goquery.Selection) {
		cell.Find("button, [role='tooltip'], .tooltip").Remove()
		cell.Find("pre").Each(func(_ int, pre *goquery.Selection) {
			text := pre.Text()
			if code := pre.Find("code").First(); code.Length() > 0 {
				text = code.Text()
			}
			pre.ReplaceWithHtml(inlineCodeHTML(text))
		})
		cell.Find("code").Each(func(_ int, code *goquery.Selection) {
			code.ReplaceWithHtml(inlineCodeHTML(code.Text()))
		})
		cell.Find("br").ReplaceWithHtml(" ")
		cell.Find("p, div, li").Each(func(_ int, block *goquery.Selection) {
			block.AppendHtml(" ")
		})
		unwrap(cell.Find("p, div, ul, ol, li"))
		collapseText(cell)
	})
}

// replaceRules swaps horizontal rules for a placeholder rendered as "---".
func (p *prepass) replaceRules(root *goquery.Selection) {
	root.Find("hr").Each(func(_ int, hr *goquery.Selection) {
		hr.ReplaceWithHtml("<p>" + p.placeholder("---") + "</p>")
	})
}

// unwrapWrappers removes presentational containers while keeping their
// children. Custom elements (tag names with a hyphen) are treated as
// wrappers too.
func (p *prepass) unwrapWrappers(root *goquery.Selection) {
	var wrappers []*goquery.Selection
	root.Find("*").Each(func(_ int, s *goquery.Selection) {
		if s.Is(wrapperSelector) || strings.Contains(goquery.NodeName(s), "-") {
			wrappers = append(wrappers, s)
		}
	})
	// Innermost first so moved children are never revisited.
	for i := len(wrappers) - 1; i >= 0; i-- {
		unwrap(wrappers[i])
	}
}

// unwrap replaces each element in s with its children.
func unwrap(s *goquery.Selection) {
	s.Each(func(_ int, el *goquery.Selection) {
		el.ReplaceWithSelection(el.Contents())
	})
}

// collapseText replaces newlines and whitespace runs in all text below s
// with single spaces.
func collapseText(s *goquery.Selection) {
	for _, n := range s.Nodes {
		collapseNode(n)
	}
}

func collapseNode(n *nethtml.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == nethtml.TextNode {
			c.Data = whitespaceRe.ReplaceAllString(c.Data, " ")
			continue
		}
		collapseNode(c)
	}
}

// CodeLanguage returns the language declared on an element through a
// language-*/lang-* class token or a data-language attribute.
func CodeLanguage(s *goquery.Selection) string {
	if class, ok := s.Attr("class"); ok {
		if m := langClassRe.FindStringSubmatch(class); m != nil {
			return strings.ToLower(m[1])
		}
	}
	if lang, ok := s.Attr("data-language"); ok {
		return strings.ToLower(strings.TrimSpace(lang))
	}
	return ""
}

// labelLanguage reads a language label chip rendered inside a code block
// header (e.g. "python" next to a copy button).
func labelLanguage(pre *goquery.Selection) string {
	lang := ""
	pre.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Is("code") || s.ParentsFiltered("code").Length() > 0 || s.Is("button") {
			return true
		}
		text := strings.TrimSpace(ownText(s))
		if langLabelRe.MatchString(text) && !strings.EqualFold(text, "copy") && !strings.EqualFold(text, "copy code") {
			lang = strings.ToLower(text)
			return false
		}
		return true
	})
	return lang
}

// ownText returns the text of s's direct text children.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == nethtml.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

func hasAnyClass(s *goquery.Selection, classes []string) bool {
	for _, c := range classes {
		if s.HasClass(c) {
			return true
		}
	}
	return false
}

// inlineCodeHTML builds a bare inline code element on a single line.
func inlineCodeHTML(code string) string {
	code = strings.TrimSpace(whitespaceRe.ReplaceAllString(code, " "))
	return "<code>" + html.EscapeString(code) + "</code>"
}

// codeBlockHTML builds a bare code block.
func codeBlockHTML(lang, code string) string {
	code = strings.TrimRight(code, "\n")
	if lang == "" {
		return "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}
	return `<pre><code class="language-` + html.EscapeString(lang) + `">` + html.EscapeString(code) + "</code></pre>"
}
