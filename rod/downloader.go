package rod

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/chatvault"
	"github.com/go-rod/rod/lib/proto"
)

// stagingDir is where the browser writes downloads before they are moved
// to their final name.
const stagingDir = ".chatvault-downloads"

// Ensure Downloader implements chatvault.Downloader at compile time.
var _ chatvault.Downloader = (*Downloader)(nil)

// Downloader saves content through the browser's download mechanism into
// Dir.
type Downloader struct {
	manager *BrowserManager

	// Dir is the download directory.
	Dir string
}

// NewDownloader creates a new Downloader writing below dir.
func NewDownloader(manager *BrowserManager, dir string) *Downloader {
	return &Downloader{manager: manager, Dir: dir}
}

// Download saves dataURI at relPath below Dir. An existing file is never
// replaced; a numbered name is used instead.
func (d *Downloader) Download(ctx context.Context, dataURI string, relPath string) error {
	clean := path.Clean(relPath)
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return chatvault.Errorf(chatvault.EINVALID, "download path %q escapes the download directory", relPath)
	}

	staging := filepath.Join(d.Dir, stagingDir)
	if err := os.MkdirAll(staging, 0755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	browser := d.manager.Browser().Context(ctx)
	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return err
	}
	defer page.Close()

	wait := browser.WaitDownload(staging)
	if _, err := page.Eval(downloadScript, dataURI, path.Base(clean)); err != nil {
		return err
	}
	info := wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	if info == nil {
		return chatvault.Errorf(chatvault.EUNAVAILABLE, "download did not start")
	}

	target, err := freeName(filepath.Join(d.Dir, filepath.FromSlash(clean)))
	if err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(staging, info.GUID), target); err != nil {
		return fmt.Errorf("move download: %w", err)
	}
	return nil
}

// freeName returns name, or name with a numeric suffix if it exists.
func freeName(name string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return "", err
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", chatvault.Errorf(chatvault.EINTERNAL, "no free file name for %s", name)
}
