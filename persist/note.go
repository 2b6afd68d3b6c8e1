package persist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/fwojciec/chatvault"
	"gopkg.in/yaml.v3"
)

// maxTitleRunes bounds the title portion of a file name.
const maxTitleRunes = 80

var (
	spaceRunRe = regexp.MustCompile(`\s+`)
	slashRunRe = regexp.MustCompile(`/{2,}`)
)

// SanitizeTitle turns a conversation title into a file name fragment.
// Characters that are invalid in file names are dropped, whitespace runs
// become underscores and the result is truncated to 80 runes. An empty
// result yields "Untitled".
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if strings.ContainsRune(`\/:*?"<>|`, r) || (unicode.IsControl(r) && !unicode.IsSpace(r)) {
			continue
		}
		b.WriteRune(r)
	}

	s := spaceRunRe.ReplaceAllString(strings.TrimSpace(b.String()), "_")
	if utf8.RuneCountInString(s) > maxTitleRunes {
		s = string([]rune(s)[:maxTitleRunes])
		s = strings.TrimRight(s, "_")
	}
	if s == "" {
		return "Untitled"
	}
	return s
}

// Filename builds YYYY-MM-DD_<title>_<hash8>.md. Parts of a split request
// carry a _partN suffix.
func Filename(date time.Time, title, hash string, part int) string {
	if len(hash) > 8 {
		hash = hash[:8]
	}
	name := date.Format(time.DateOnly) + "_" + SanitizeTitle(title) + "_" + hash
	if part > 0 {
		name += "_part" + strconv.Itoa(part)
	}
	return name + ".md"
}

// Folder expands a path template. Placeholders are substituted in the
// order {service}, {date}, {title}, {type}; repeated slashes collapse and
// a trailing slash is removed.
func Folder(template string, req chatvault.SaveRequest, date time.Time) string {
	if template == "" {
		template = chatvault.DefaultPathTemplate
	}

	folder := strings.ReplaceAll(template, "{service}", req.Service)
	folder = strings.ReplaceAll(folder, "{date}", date.Format(time.DateOnly))
	folder = strings.ReplaceAll(folder, "{title}", SanitizeTitle(req.ConversationTitle))
	folder = strings.ReplaceAll(folder, "{type}", string(req.MessageType))

	folder = slashRunRe.ReplaceAllString(folder, "/")
	return strings.TrimSuffix(folder, "/")
}

// frontmatter is the YAML header written above every note.
type frontmatter struct {
	Title            string `yaml:"title"`
	Service          string `yaml:"service"`
	Date             string `yaml:"date"`
	Type             string `yaml:"type"`
	URL              string `yaml:"url,omitempty"`
	ArtifactTitle    string `yaml:"artifact_title,omitempty"`
	ArtifactLanguage string `yaml:"artifact_language,omitempty"`
	ArtifactFilename string `yaml:"artifact_filename,omitempty"`
	Part             int    `yaml:"part,omitempty"`
	TotalParts       int    `yaml:"totalParts,omitempty"`
}

// Frontmatter renders the YAML frontmatter block for req, including the
// surrounding --- delimiters.
func Frontmatter(req chatvault.SaveRequest, date time.Time) (string, error) {
	title := req.ConversationTitle
	if title == "" {
		title = "Untitled"
	}

	fm := frontmatter{
		Title:            title,
		Service:          req.Service,
		Date:             date.Format(time.DateOnly),
		Type:             string(req.MessageType),
		URL:              req.Metadata[chatvault.MetaURL],
		ArtifactTitle:    req.Metadata[chatvault.MetaArtifactTitle],
		ArtifactLanguage: req.Metadata[chatvault.MetaArtifactLanguage],
		ArtifactFilename: req.Metadata[chatvault.MetaArtifactFilename],
	}
	var err error
	if fm.Part, err = metaInt(req.Metadata, chatvault.MetaPart); err != nil {
		return "", err
	}
	if fm.TotalParts, err = metaInt(req.Metadata, chatvault.MetaTotalParts); err != nil {
		return "", err
	}

	out, err := yaml.Marshal(&fm)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return "---\n" + string(out) + "---\n", nil
}

// Render turns req into a note. hash is the content fingerprint used in
// the file name.
func Render(req chatvault.SaveRequest, s chatvault.Settings, hash string, date time.Time) (chatvault.Note, error) {
	fm, err := Frontmatter(req, date)
	if err != nil {
		return chatvault.Note{}, err
	}

	part, err := metaInt(req.Metadata, chatvault.MetaPart)
	if err != nil {
		return chatvault.Note{}, err
	}

	title := req.ConversationTitle
	if req.MessageType == chatvault.MessageArtifact && req.Metadata[chatvault.MetaArtifactTitle] != "" {
		title = req.Metadata[chatvault.MetaArtifactTitle]
	}

	body := strings.TrimRight(req.Content, "\n")
	return chatvault.Note{
		Folder:   Folder(s.PathTemplate, req, date),
		Filename: Filename(date, title, hash, part),
		Content:  fm + "\n" + body + "\n",
		Vault:    s.VaultName,
		Request:  req.Clone(),
	}, nil
}

func metaInt(md map[string]string, key string) (int, error) {
	v, ok := md[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, chatvault.Errorf(chatvault.EINVALID, "metadata %s must be an integer, got %q", key, v)
	}
	return n, nil
}
