package fs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/chatvault"
)

// Compile-time interface verification.
var (
	_ chatvault.DirectoryPicker = (*TerminalPicker)(nil)
	_ chatvault.DirectoryPicker = (*StaticPicker)(nil)
)

// TerminalPicker asks for the vault directory on a terminal. One goroutine
// reads In for the picker's lifetime, so answers typed after a cancelled
// prompt go to the next Pick.
type TerminalPicker struct {
	In  io.Reader
	Out io.Writer

	once    sync.Once
	lines   chan string
	readErr error
}

// Pick prompts for a directory and returns its absolute path.
func (p *TerminalPicker) Pick(ctx context.Context) (string, error) {
	p.once.Do(p.startReader)
	fmt.Fprint(p.Out, "Vault directory: ")

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return "", chatvault.Errorf(chatvault.EPERMISSION, "no vault directory chosen: %v", p.readErr)
		}
		return ResolveDir(strings.TrimSpace(line))
	}
}

// startReader feeds lines from In until it fails, then closes lines.
func (p *TerminalPicker) startReader() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.In)
		for {
			line, err := r.ReadString('\n')
			if line != "" || err == nil {
				p.lines <- line
			}
			if err != nil {
				p.readErr = err
				return
			}
		}
	}()
}

// StaticPicker returns a preconfigured directory, e.g. from a flag.
type StaticPicker struct {
	Path string
}

// Pick returns the configured directory.
func (p *StaticPicker) Pick(ctx context.Context) (string, error) {
	return ResolveDir(p.Path)
}

// ResolveDir expands a leading ~ and returns the absolute path of an
// existing directory.
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		return "", chatvault.Errorf(chatvault.EPERMISSION, "no vault directory chosen")
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", chatvault.Errorf(chatvault.EINVALID, "invalid vault directory %q: %v", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", chatvault.Errorf(chatvault.ENOTFOUND, "vault directory %s does not exist", abs)
	}
	return abs, nil
}
