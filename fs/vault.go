// Package fs writes notes into a vault directory on the local filesystem.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/chatvault"
)

// maxCollisions bounds the numeric suffixes tried for one file name.
const maxCollisions = 1000

// Ensure VaultWriter implements chatvault.VaultWriter at compile time.
var _ chatvault.VaultWriter = (*VaultWriter)(nil)

// VaultWriter writes files below a vault directory. Existing files are
// never overwritten: identical content is reported as a duplicate and
// different content gets a numbered name.
type VaultWriter struct{}

// NewVaultWriter creates a new VaultWriter.
func NewVaultWriter() *VaultWriter {
	return &VaultWriter{}
}

// CheckPermission verifies that the handle's directory exists and accepts
// new files.
func (w *VaultWriter) CheckPermission(ctx context.Context, handle *chatvault.VaultHandle) error {
	if err := handle.Validate(); err != nil {
		return err
	}

	info, err := os.Stat(handle.Path)
	if err != nil {
		return chatvault.Errorf(chatvault.EPERMISSION, "vault directory not accessible: %v", err)
	}
	if !info.IsDir() {
		return chatvault.Errorf(chatvault.EPERMISSION, "vault path %s is not a directory", handle.Path)
	}

	tmp, err := os.CreateTemp(handle.Path, ".chatvault-write-check-*")
	if err != nil {
		return chatvault.Errorf(chatvault.EPERMISSION, "vault directory not writable: %v", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(name)
	return nil
}

// WriteFile writes content at relPath below the handle's directory.
func (w *VaultWriter) WriteFile(ctx context.Context, handle *chatvault.VaultHandle, relPath string, content []byte) (*chatvault.WriteResult, error) {
	if err := handle.Validate(); err != nil {
		return nil, err
	}
	clean, err := cleanRelPath(relPath)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(handle.Path, filepath.FromSlash(path.Dir(clean)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, writeError(err)
	}

	ext := path.Ext(clean)
	stem := strings.TrimSuffix(path.Base(clean), ext)
	want := normalizeLineEndings(content)

	for i := 0; i < maxCollisions; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := stem + ext
		if i > 0 {
			name = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		rel := path.Join(path.Dir(clean), name)
		full := filepath.Join(dir, name)

		err := createExclusive(dir, full, content)
		if err == nil {
			return &chatvault.WriteResult{Path: rel}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, writeError(err)
		}

		existing, err := os.ReadFile(full)
		if err != nil {
			return nil, writeError(err)
		}
		if bytes.Equal(normalizeLineEndings(existing), want) {
			return &chatvault.WriteResult{Path: rel, Duplicate: true}, nil
		}
	}

	return nil, chatvault.Errorf(chatvault.EINTERNAL, "no free file name for %s after %d attempts", clean, maxCollisions)
}

// createExclusive writes content to a temporary file in dir and links it
// to full. The link fails with fs.ErrExist when full already exists, so
// an existing file is never replaced and readers never observe a partial
// file.
func createExclusive(dir, full string, content []byte) error {
	tmp, err := os.CreateTemp(dir, ".chatvault-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	err = os.Link(tmpName, full)
	if err == nil || errors.Is(err, fs.ErrExist) {
		return err
	}
	// Some filesystems (exFAT, SMB shares) have no hard links.
	return writeExclusive(full, content)
}

func writeExclusive(full string, content []byte) error {
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return err
	}
	return f.Close()
}

// cleanRelPath validates a vault-relative slash path.
func cleanRelPath(relPath string) (string, error) {
	if relPath == "" {
		return "", chatvault.Errorf(chatvault.EINVALID, "file path required")
	}
	clean := path.Clean(strings.ReplaceAll(relPath, `\`, "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(relPath) {
		return "", chatvault.Errorf(chatvault.EINVALID, "file path %q escapes the vault", relPath)
	}
	return clean, nil
}

func writeError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return chatvault.Errorf(chatvault.EPERMISSION, "vault write denied: %v", err)
	}
	return fmt.Errorf("vault write: %w", err)
}

func normalizeLineEndings(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}
