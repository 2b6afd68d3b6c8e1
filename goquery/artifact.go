package goquery

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/htmltomarkdown"
)

// extensionLanguages maps file extensions to fence languages.
var extensionLanguages = map[string]string{
	"py":    "python",
	"js":    "javascript",
	"mjs":   "javascript",
	"jsx":   "jsx",
	"ts":    "typescript",
	"tsx":   "tsx",
	"go":    "go",
	"rs":    "rust",
	"rb":    "ruby",
	"java":  "java",
	"kt":    "kotlin",
	"swift": "swift",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"cs":    "csharp",
	"php":   "php",
	"sh":    "bash",
	"bash":  "bash",
	"zsh":   "zsh",
	"ps1":   "powershell",
	"sql":   "sql",
	"html":  "html",
	"css":   "css",
	"scss":  "scss",
	"json":  "json",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"xml":   "xml",
	"md":    "markdown",
	"tex":   "latex",
	"r":     "r",
	"lua":   "lua",
	"dart":  "dart",
	"vue":   "vue",
}

// languageExtensions is the preferred extension for each fence language.
var languageExtensions = map[string]string{
	"python":     "py",
	"javascript": "js",
	"jsx":        "jsx",
	"typescript": "ts",
	"tsx":        "tsx",
	"go":         "go",
	"rust":       "rs",
	"ruby":       "rb",
	"java":       "java",
	"kotlin":     "kt",
	"swift":      "swift",
	"c":          "c",
	"cpp":        "cpp",
	"csharp":     "cs",
	"php":        "php",
	"bash":       "sh",
	"shell":      "sh",
	"zsh":        "zsh",
	"powershell": "ps1",
	"sql":        "sql",
	"html":       "html",
	"css":        "css",
	"scss":       "scss",
	"json":       "json",
	"yaml":       "yaml",
	"toml":       "toml",
	"xml":        "xml",
	"markdown":   "md",
	"latex":      "tex",
	"r":          "r",
	"lua":        "lua",
	"dart":       "dart",
	"vue":        "vue",
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// LanguageFromTitle returns the fence language implied by the file
// extension in an artifact title, or "" if there is none.
func LanguageFromTitle(title string) string {
	ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(title)), ".")
	return extensionLanguages[strings.ToLower(ext)]
}

// ArtifactFilename derives a file name for an artifact. Titles that already
// carry a known extension are used as is.
func ArtifactFilename(title, language string) string {
	title = strings.TrimSpace(title)
	if LanguageFromTitle(title) != "" && !strings.ContainsAny(title, `/\`) {
		return title
	}

	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "artifact"
	}
	ext, ok := languageExtensions[language]
	if !ok {
		ext = "md"
	}
	return slug + "." + ext
}

// extractArtifacts reads artifacts from the first artifact container
// selector that matches. Each code region becomes one fence; containers
// without code regions are converted as documents.
func extractArtifacts(doc *goquery.Document, set chatvault.SelectorSet, conv chatvault.Converter) []*chatvault.Artifact {
	containers, _ := firstMatch(doc.Selection, set.ArtifactContainers)
	if containers == nil {
		return nil
	}

	var artifacts []*chatvault.Artifact
	containers.Each(func(i int, container *goquery.Selection) {
		title := artifactTitle(container, set.ArtifactTitles)
		if title == "" {
			title = fmt.Sprintf("Artifact %d", i+1)
		}

		language, content := artifactContent(container, title, set, conv)
		if content == "" {
			return
		}

		artifacts = append(artifacts, &chatvault.Artifact{
			Title:    title,
			Language: language,
			Filename: ArtifactFilename(title, language),
			Content:  content,
		})
	})
	return artifacts
}

func artifactTitle(container *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if t := strings.TrimSpace(container.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// artifactContent returns the artifact language and Markdown body.
func artifactContent(container *goquery.Selection, title string, set chatvault.SelectorSet, conv chatvault.Converter) (string, string) {
	regions, _ := firstMatch(container, set.ArtifactCode)
	if regions == nil {
		clone := container.Clone()
		stripChrome(clone, set.Chrome)
		if len(set.ArtifactTitles) > 0 {
			clone.Find(strings.Join(set.ArtifactTitles, ", ")).First().Remove()
		}
		html, err := goquery.OuterHtml(clone)
		if err != nil {
			return "", ""
		}
		return "markdown", conv.Convert(html)
	}

	titleLang := LanguageFromTitle(title)
	var language string
	var fences []string
	regions.Each(func(_ int, region *goquery.Selection) {
		code := regionText(region)
		if strings.TrimSpace(code) == "" {
			return
		}
		lang := regionLanguage(region)
		if lang == "" {
			lang = titleLang
		}
		if language == "" {
			language = lang
		}
		fences = append(fences, "```"+lang+"\n"+strings.TrimRight(code, "\n")+"\n```")
	})
	return language, strings.Join(fences, "\n\n")
}

// regionLanguage reads a language class from the region, its code child
// or its enclosing <pre>.
func regionLanguage(region *goquery.Selection) string {
	if lang := htmltomarkdown.CodeLanguage(region); lang != "" {
		return lang
	}
	if lang := htmltomarkdown.CodeLanguage(region.Find("code").First()); lang != "" {
		return lang
	}
	return htmltomarkdown.CodeLanguage(region.Closest("pre"))
}

// regionText returns the code text of a region. Editor views render one
// element per line, which are joined with newlines.
func regionText(region *goquery.Selection) string {
	lines := region.Find(".cm-line, .view-line")
	if lines.Length() == 0 {
		return region.Text()
	}
	out := make([]string, 0, lines.Length())
	lines.Each(func(_ int, line *goquery.Selection) {
		out = append(out, line.Text())
	})
	return strings.Join(out, "\n")
}
