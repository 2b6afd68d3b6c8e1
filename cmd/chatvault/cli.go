package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/capture"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Interactive reports that a person runs the command at a terminal.
	// Their invocation counts as the user gesture for vault access.
	Interactive bool

	Handles   chatvault.VaultHandleService
	Settings  chatvault.SettingsService
	History   chatvault.SaveRecordService
	Writer    chatvault.VaultWriter
	Picker    chatvault.DirectoryPicker
	Providers chatvault.ProviderRegistry
	Tokens    chatvault.TokenCounter
	Saver     chatvault.Saver

	// LoadPage returns a snapshot of a conversation URL or saved HTML
	// file. pageURL overrides the URL used for platform detection.
	LoadPage func(ctx context.Context, source, pageURL string) (chatvault.Page, error)

	// OpenPage opens a live conversation page. The returned func closes it.
	OpenPage func(ctx context.Context, url string) (chatvault.Page, func() error, error)
}

// agent returns an extraction agent for page.
func (d *Dependencies) agent(page chatvault.Page) *capture.Agent {
	return &capture.Agent{
		Page:      page,
		Providers: d.Providers,
		Saver:     d.Saver,
		Tokens:    d.Tokens,
		Logger:    d.Logger,
	}
}

// gestureContext marks the context with a user gesture when a person runs
// the command.
func (d *Dependencies) gestureContext() context.Context {
	if d.Interactive {
		return chatvault.WithUserGesture(d.Ctx)
	}
	return d.Ctx
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB          string `name:"db" env:"CHATVAULT_DB" help:"Database path (default ~/.chatvault/chatvault.db)"`
	VaultDir    string `name:"vault-dir" env:"CHATVAULT_VAULT_DIR" help:"Vault directory to grant when none is stored"`
	Coordinator string `env:"CHATVAULT_COORDINATOR" help:"Save through a running 'chatvault serve' at this URL"`
	Browser     string `env:"CHATVAULT_BROWSER" help:"DevTools URL of a running Chrome to attach to"`
	Profile     string `env:"CHATVAULT_PROFILE" help:"Chrome profile directory for signed-in sessions"`
	Verbose     bool   `short:"v" env:"CHATVAULT_VERBOSE" help:"Enable debug logging"`

	Capture   CaptureCmd   `cmd:"" help:"Save messages from a conversation URL or saved HTML file"`
	Artifacts ArtifactsCmd `cmd:"" help:"Save the artifacts of a conversation"`
	Watch     WatchCmd     `cmd:"" help:"Open a conversation and add save buttons to its messages"`
	Serve     ServeCmd     `cmd:"" help:"Run the save coordinator over HTTP"`
	Vault     VaultCmd     `cmd:"" help:"Manage access to the vault directory"`
	Settings  SettingsCmd  `cmd:"" help:"Show or change settings"`
	History   HistoryCmd   `cmd:"" help:"List recent saves"`
}

// SourceFlags select the conversation a snapshot command reads.
type SourceFlags struct {
	Source string `arg:"" help:"Conversation URL or path to a saved HTML file"`
	URL    string `name:"url" help:"Page URL used for platform detection of a saved file"`
	HTTP   bool   `name:"http" help:"Fetch without a browser (public shared links)"`
}

// CaptureCmd is the "capture" subcommand.
type CaptureCmd struct {
	From SourceFlags `embed:""`

	Mode  string `short:"m" default:"all" enum:"all,recent,selected" help:"Messages to save (all, recent, selected)"`
	Count int    `short:"n" help:"Number of messages for --mode=recent (default from settings)"`
}

// ArtifactsCmd is the "artifacts" subcommand.
type ArtifactsCmd struct {
	From SourceFlags `embed:""`
}

// WatchCmd is the "watch" subcommand.
type WatchCmd struct {
	URL string `arg:"" help:"Conversation URL"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:"127.0.0.1:8765" help:"Listen address"`
}

// VaultCmd groups the vault subcommands.
type VaultCmd struct {
	Grant  VaultGrantCmd  `cmd:"" help:"Grant access to a vault directory"`
	Show   VaultShowCmd   `cmd:"" help:"Show the granted vault directory"`
	Revoke VaultRevokeCmd `cmd:"" help:"Forget the granted vault directory"`
}

// VaultGrantCmd is the "vault grant" subcommand.
type VaultGrantCmd struct {
	Dir string `arg:"" optional:"" help:"Vault directory (prompted when omitted)"`
}

// VaultShowCmd is the "vault show" subcommand.
type VaultShowCmd struct{}

// VaultRevokeCmd is the "vault revoke" subcommand.
type VaultRevokeCmd struct{}

// SettingsCmd groups the settings subcommands.
type SettingsCmd struct {
	List SettingsListCmd `cmd:"" default:"1" help:"List all settings"`
	Get  SettingsGetCmd  `cmd:"" help:"Print one setting"`
	Set  SettingsSetCmd  `cmd:"" help:"Change one setting; an empty value restores the default"`
}

// SettingsListCmd is the "settings list" subcommand.
type SettingsListCmd struct{}

// SettingsGetCmd is the "settings get" subcommand.
type SettingsGetCmd struct {
	Key string `arg:"" help:"Setting key"`
}

// SettingsSetCmd is the "settings set" subcommand.
type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key"`
	Value string `arg:"" optional:"" help:"New value"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Service string `short:"s" help:"Only show saves from this service"`
	Limit   int    `short:"n" default:"20" help:"Number of saves to show"`
}
