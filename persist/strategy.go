package persist

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/chatvault"
)

// DefaultDownloadTimeout bounds a single browser download.
const DefaultDownloadTimeout = 30 * time.Second

// Compile-time interface verification.
var (
	_ chatvault.SaveStrategy = (*FilesystemStrategy)(nil)
	_ chatvault.SaveStrategy = (*URIStrategy)(nil)
	_ chatvault.SaveStrategy = (*AdvancedURIStrategy)(nil)
	_ chatvault.SaveStrategy = (*AdvancedURIClipboardStrategy)(nil)
	_ chatvault.SaveStrategy = (*DownloadsStrategy)(nil)
	_ chatvault.SaveStrategy = (*ClipboardStrategy)(nil)
)

// FilesystemStrategy writes notes directly into the granted vault
// directory. Without a stored handle it asks the picker for a directory,
// which is only allowed while the context carries a user gesture.
type FilesystemStrategy struct {
	Handles chatvault.VaultHandleService
	Picker  chatvault.DirectoryPicker
	Writer  chatvault.VaultWriter
}

func (s *FilesystemStrategy) Method() chatvault.SaveMethod { return chatvault.MethodFilesystem }

func (s *FilesystemStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	handle, err := s.handle(ctx)
	if err != nil {
		return chatvault.SaveOutcome{}, err
	}

	result, err := s.Writer.WriteFile(ctx, handle, note.Path(), []byte(note.Content))
	if err != nil {
		return chatvault.SaveOutcome{}, err
	}

	msg := "Saved to " + result.Path
	if result.Duplicate {
		msg = "Already saved as " + result.Path
	}
	return chatvault.SaveOutcome{
		Success:     true,
		Method:      chatvault.MethodFilesystem,
		Filename:    result.Path,
		Message:     msg,
		IsDuplicate: result.Duplicate,
	}, nil
}

// handle returns a writable vault handle, acquiring a new one when the
// stored handle is missing or no longer writable and a gesture is present.
func (s *FilesystemStrategy) handle(ctx context.Context) (*chatvault.VaultHandle, error) {
	handle, err := s.Handles.FindVaultHandle(ctx, chatvault.VaultHandleName)
	switch {
	case err == nil:
		err = s.Writer.CheckPermission(ctx, handle)
		if err == nil {
			return handle, nil
		}
		if chatvault.ErrorCode(err) != chatvault.EPERMISSION {
			return nil, err
		}
	case chatvault.ErrorCode(err) != chatvault.ENOTFOUND:
		return nil, err
	}

	if !chatvault.HasUserGesture(ctx) || s.Picker == nil {
		return nil, chatvault.Errorf(chatvault.EPERMISSION, "no vault access granted")
	}

	dir, err := s.Picker.Pick(ctx)
	if err != nil {
		return nil, err
	}
	handle = &chatvault.VaultHandle{Name: chatvault.VaultHandleName, Path: dir}
	if err := s.Writer.CheckPermission(ctx, handle); err != nil {
		return nil, err
	}
	if err := s.Handles.SaveVaultHandle(ctx, handle); err != nil {
		return nil, fmt.Errorf("save vault handle: %w", err)
	}
	return handle, nil
}

// URIStrategy creates the note through an obsidian://new URI.
type URIStrategy struct {
	Opener chatvault.URIOpener
}

func (s *URIStrategy) Method() chatvault.SaveMethod { return chatvault.MethodURI }

func (s *URIStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	uri := NewNoteURI(note.Vault, note.Path(), note.Content)
	if len(uri) > MaxURILength {
		return chatvault.SaveOutcome{}, chatvault.Errorf(chatvault.ETOOLARGE, "uri length %d exceeds %d", len(uri), MaxURILength)
	}
	if err := s.Opener.Open(ctx, uri); err != nil {
		return chatvault.SaveOutcome{}, err
	}
	return sentOutcome(chatvault.MethodURI, note), nil
}

// AdvancedURIStrategy writes the note through the Advanced URI plugin.
type AdvancedURIStrategy struct {
	Opener chatvault.URIOpener
}

func (s *AdvancedURIStrategy) Method() chatvault.SaveMethod { return chatvault.MethodAdvancedURI }

func (s *AdvancedURIStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	uri := AdvancedURI(note.Vault, note.Path(), note.Content)
	if len(uri) > MaxAdvancedURILength {
		return chatvault.SaveOutcome{}, chatvault.Errorf(chatvault.ETOOLARGE, "uri length %d exceeds %d", len(uri), MaxAdvancedURILength)
	}
	if err := s.Opener.Open(ctx, uri); err != nil {
		return chatvault.SaveOutcome{}, err
	}
	return sentOutcome(chatvault.MethodAdvancedURI, note), nil
}

// AdvancedURIClipboardStrategy places the note on the clipboard and sends
// a short Advanced URI telling the plugin to write the clipboard content.
type AdvancedURIClipboardStrategy struct {
	Opener    chatvault.URIOpener
	Clipboard chatvault.Clipboard
}

func (s *AdvancedURIClipboardStrategy) Method() chatvault.SaveMethod {
	return chatvault.MethodAdvancedURIClipboard
}

func (s *AdvancedURIClipboardStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	uri := AdvancedClipboardURI(note.Vault, note.Path())
	if len(uri) > MaxAdvancedURILength {
		return chatvault.SaveOutcome{}, chatvault.Errorf(chatvault.ETOOLARGE, "uri length %d exceeds %d", len(uri), MaxAdvancedURILength)
	}
	if err := s.Clipboard.WriteText(ctx, note.Content); err != nil {
		return chatvault.SaveOutcome{}, err
	}
	if err := s.Opener.Open(ctx, uri); err != nil {
		return chatvault.SaveOutcome{}, err
	}
	return sentOutcome(chatvault.MethodAdvancedURIClipboard, note), nil
}

// DownloadsStrategy saves the note through the browser's downloads,
// bounded by Timeout.
type DownloadsStrategy struct {
	Downloader chatvault.Downloader
	Timeout    time.Duration
}

func (s *DownloadsStrategy) Method() chatvault.SaveMethod { return chatvault.MethodDownloads }

func (s *DownloadsStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dataURI := "data:text/markdown;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(note.Content))
	err := s.Downloader.Download(dctx, dataURI, note.Path())
	if err != nil {
		if errors.Is(dctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return chatvault.SaveOutcome{}, chatvault.Errorf(chatvault.ETIMEOUT, "download did not finish within %s", timeout)
		}
		return chatvault.SaveOutcome{}, err
	}

	return chatvault.SaveOutcome{
		Success:  true,
		Method:   chatvault.MethodDownloads,
		Filename: note.Path(),
		Message:  "Downloaded " + note.Path() + ". Move it into your vault.",
	}, nil
}

// ClipboardStrategy copies the note to the clipboard. It is the terminal
// fallback of every chain.
type ClipboardStrategy struct {
	Clipboard chatvault.Clipboard
}

func (s *ClipboardStrategy) Method() chatvault.SaveMethod { return chatvault.MethodClipboard }

func (s *ClipboardStrategy) Save(ctx context.Context, note chatvault.Note) (chatvault.SaveOutcome, error) {
	if err := s.Clipboard.WriteText(ctx, note.Content); err != nil {
		return chatvault.SaveOutcome{}, err
	}
	return chatvault.SaveOutcome{
		Success:  true,
		Method:   chatvault.MethodClipboard,
		Filename: note.Filename,
		Message:  "Copied to clipboard. Paste it into a new note named " + note.Filename + ".",
	}, nil
}

func sentOutcome(method chatvault.SaveMethod, note chatvault.Note) chatvault.SaveOutcome {
	return chatvault.SaveOutcome{
		Success:  true,
		Method:   method,
		Filename: note.Path(),
		Message:  "Sent " + note.Path() + " to the vault app.",
	}
}
