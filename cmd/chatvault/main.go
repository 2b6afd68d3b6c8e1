package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/browser"
	"github.com/fwojciec/chatvault/capture"
	"github.com/fwojciec/chatvault/clipboard"
	"github.com/fwojciec/chatvault/fs"
	"github.com/fwojciec/chatvault/gemini"
	"github.com/fwojciec/chatvault/goquery"
	"github.com/fwojciec/chatvault/htmltomarkdown"
	cvhttp "github.com/fwojciec/chatvault/http"
	"github.com/fwojciec/chatvault/persist"
	"github.com/fwojciec/chatvault/readability"
	"github.com/fwojciec/chatvault/rod"
	cvslog "github.com/fwojciec/chatvault/slog"
	"github.com/fwojciec/chatvault/split"
	"github.com/fwojciec/chatvault/sqlite"
	"github.com/fwojciec/chatvault/trafilatura"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); --db overrides it.
	DBPath string

	// Stdin is read by the interactive vault directory prompt.
	Stdin io.Reader

	// Interactive reports whether a person runs the program at a terminal.
	Interactive bool

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	Handles  chatvault.VaultHandleService
	Settings chatvault.SettingsService
	History  chatvault.SaveRecordService

	// Tokens replaces the Gemini tokenizer when set.
	Tokens chatvault.TokenCounter

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:      defaultDBPath(),
		Stdin:       os.Stdin,
		Interactive: isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil

	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:         ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		Interactive: m.Interactive,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("chatvault"),
		kong.Description("Save conversations from chat web applications into an Obsidian vault"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'chatvault --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CHATVAULT_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.Handles = sqlite.NewVaultHandleService(m.DB)
	m.Settings = sqlite.NewSettingsService(m.DB)
	m.History = sqlite.NewSaveRecordService(m.DB)
	deps.Handles = m.Handles
	deps.Settings = m.Settings
	deps.History = m.History
	deps.Writer = fs.NewVaultWriter()
	deps.Picker = m.picker(cli, stderr)

	switch cmd {
	case "capture", "artifacts":
		src := cli.Capture.From
		if cmd == "artifacts" {
			src = cli.Artifacts.From
		}

		var downloader chatvault.Downloader
		var fetcher chatvault.Fetcher
		if isURL(src.Source) {
			if src.HTTP {
				fetcher = cvhttp.NewFetcher()
			} else {
				manager, err := m.browserManager(cli, true)
				if err != nil {
					fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --http for public shared links")
					return fmt.Errorf("failed to start browser: %w", err)
				}
				fetcher = rod.NewLoggingFetcher(rod.NewFetcher(manager), deps.Logger)
				downloader = rod.NewDownloader(manager, defaultDownloadsDir())
			}
			m.closers = append(m.closers, fetcher.Close)
		}
		deps.LoadPage = loadPage(fetcher)

		m.wireExtraction(deps)
		if err := m.wireSaver(cli, deps, downloader); err != nil {
			return err
		}

	case "watch":
		manager, err := m.browserManager(cli, false)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		deps.OpenPage = func(ctx context.Context, url string) (chatvault.Page, func() error, error) {
			page, err := rod.OpenPage(ctx, manager.Browser(), url)
			if err != nil {
				return nil, nil, err
			}
			return page, page.Close, nil
		}

		m.wireExtraction(deps)
		if err := m.wireSaver(cli, deps, rod.NewDownloader(manager, defaultDownloadsDir())); err != nil {
			return err
		}

	case "serve":
		if cli.Coordinator != "" {
			return chatvault.Errorf(chatvault.EINVALID, "serve cannot forward to another coordinator")
		}
		if err := m.wireSaver(cli, deps, nil); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// wireExtraction sets up providers and token counting.
func (m *Main) wireExtraction(deps *Dependencies) {
	conv := htmltomarkdown.NewConverter()
	generic := goquery.NewGenericProvider(conv, trafilatura.NewExtractor(), readability.NewExtractor())
	registry := goquery.NewDefaultRegistry(conv, generic)
	deps.Providers = cvslog.NewLoggingProviderRegistry(registry, goquery.NewDetector(), deps.Logger)

	if m.Tokens != nil {
		deps.Tokens = m.Tokens
		return
	}
	tokens, err := gemini.NewTokenCounter(gemini.DefaultModel)
	if err != nil {
		deps.Logger.Debug("token counting disabled", "err", err)
		return
	}
	deps.Tokens = tokens
}

// wireSaver builds the saver: a client of a running coordinator when
// --coordinator is set, otherwise an in-process coordinator over the
// local save mechanisms.
func (m *Main) wireSaver(cli *CLI, deps *Dependencies, downloader chatvault.Downloader) error {
	if cli.Coordinator != "" {
		client := cvhttp.NewClient(cli.Coordinator)
		if err := client.Health(deps.Ctx); err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Start the coordinator with 'chatvault serve'")
			return fmt.Errorf("coordinator at %s: %w", cli.Coordinator, err)
		}
		deps.Saver = cvslog.NewLoggingSaver(client, deps.Logger)
		return nil
	}

	opener := browser.NewOpener()
	clip := clipboard.NewClipboard()

	strategies := []chatvault.SaveStrategy{
		&persist.FilesystemStrategy{Handles: deps.Handles, Picker: deps.Picker, Writer: deps.Writer},
		&persist.AdvancedURIStrategy{Opener: opener},
		&persist.AdvancedURIClipboardStrategy{Opener: opener, Clipboard: clip},
		&persist.URIStrategy{Opener: opener},
		&persist.ClipboardStrategy{Clipboard: clip},
	}
	if downloader != nil {
		strategies = append(strategies, &persist.DownloadsStrategy{Downloader: downloader})
	}
	for i, s := range strategies {
		strategies[i] = cvslog.NewLoggingStrategy(s, deps.Logger)
	}

	coordinator := &persist.Coordinator{
		Settings:   deps.Settings,
		Splitter:   split.NewWorker(runtime.NumCPU()),
		Strategies: strategies,
		History:    deps.History,
		Logger:     deps.Logger,
	}
	deps.Saver = cvslog.NewLoggingSaver(coordinator, deps.Logger)
	return nil
}

// picker returns the directory picker used when the filesystem strategy
// has no granted vault directory.
func (m *Main) picker(cli *CLI, stderr io.Writer) chatvault.DirectoryPicker {
	switch {
	case cli.VaultDir != "":
		return &fs.StaticPicker{Path: cli.VaultDir}
	case m.Interactive:
		return &fs.TerminalPicker{In: m.Stdin, Out: stderr}
	default:
		return nil
	}
}

func (m *Main) browserManager(cli *CLI, headless bool) (*rod.BrowserManager, error) {
	opts := []rod.ManagerOption{rod.WithHeadless(headless)}
	if cli.Browser != "" {
		opts = append(opts, rod.WithControlURL(cli.Browser))
	}
	if cli.Profile != "" {
		opts = append(opts, rod.WithUserDataDir(cli.Profile))
	}

	manager, err := rod.NewBrowserManager(opts...)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, manager.Close)
	return manager, nil
}

// loadPage returns a page loader that fetches URLs with fetcher and reads
// anything else as a saved HTML file.
func loadPage(fetcher chatvault.Fetcher) func(ctx context.Context, source, pageURL string) (chatvault.Page, error) {
	return func(ctx context.Context, source, pageURL string) (chatvault.Page, error) {
		if isURL(source) {
			if fetcher == nil {
				return nil, chatvault.Errorf(chatvault.EINTERNAL, "no fetcher configured")
			}
			html, err := fetcher.Fetch(ctx, source)
			if err != nil {
				return nil, err
			}
			if pageURL == "" {
				pageURL = source
			}
			return &capture.SnapshotPage{PageURL: pageURL, Content: html}, nil
		}

		data, err := os.ReadFile(source)
		if os.IsNotExist(err) {
			return nil, chatvault.Errorf(chatvault.ENOTFOUND, "file %q not found", source)
		} else if err != nil {
			return nil, fmt.Errorf("read %s: %w", source, err)
		}
		if pageURL == "" {
			abs, err := filepath.Abs(source)
			if err != nil {
				abs = source
			}
			pageURL = "file://" + filepath.ToSlash(abs)
		}
		return &capture.SnapshotPage{PageURL: pageURL, Content: string(data)}, nil
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func defaultDBPath() string {
	if path := os.Getenv("CHATVAULT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "chatvault.db"
	}
	dir := filepath.Join(home, ".chatvault")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "chatvault.db")
}

func defaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
