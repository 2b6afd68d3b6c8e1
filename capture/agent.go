// Package capture runs the extraction agent against a live conversation
// page. The agent watches the page for newly rendered messages, injects a
// save control into each assistant message, and turns control presses and
// batch captures into save requests.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/chatvault"
	"golang.org/x/time/rate"
)

// Agent defaults.
const (
	DefaultDebounce        = 300 * time.Millisecond
	DefaultForceInterval   = 2 * time.Second
	DefaultInitialAttempts = 10
	DefaultInitialInterval = time.Second
)

// ReportFunc receives the outcome of every save the agent performs.
// messageID is empty for batch captures.
type ReportFunc func(messageID string, outcome chatvault.SaveOutcome)

// Agent orchestrates extraction for one page.
type Agent struct {
	Page      chatvault.Page
	Providers chatvault.ProviderRegistry
	Saver     chatvault.Saver
	Tokens    chatvault.TokenCounter
	Logger    *slog.Logger
	Report    ReportFunc

	// Debounce is the quiet period after a content change before the page
	// is rescanned.
	Debounce time.Duration

	// ForceInterval bounds how long continuous changes can postpone a
	// rescan.
	ForceInterval time.Duration

	// InitialAttempts and InitialInterval bound the initial scan retries
	// while the page hydrates.
	InitialAttempts int
	InitialInterval time.Duration

	mu      sync.Mutex
	session *Session
}

// Result describes a batch capture.
type Result struct {
	Title    string
	Messages int
	Bytes    int
	Tokens   int
	Outcome  chatvault.SaveOutcome
}

// Session returns the session of the current or last Run, or nil.
func (a *Agent) Session() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Run watches the page until ctx is done or the page stops sending events.
// Content changes are debounced before a rescan; during continuous changes
// a rescan is forced at most once per ForceInterval. Save control presses
// are handled in the same loop.
func (a *Agent) Run(ctx context.Context) error {
	session := NewSession(a.Page.URL())
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()
	defer session.Stop()

	events, err := a.Page.Events(ctx)
	if err != nil {
		return fmt.Errorf("page events: %w", err)
	}

	if err := a.initialScan(ctx, session); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	if err := session.Activate(); err != nil {
		return err
	}
	a.logger().Info("agent active", "url", session.URL(), "controls", session.InjectedCount())

	debounce := time.NewTimer(a.debounce())
	debounce.Stop()
	defer debounce.Stop()

	limiter := rate.NewLimiter(rate.Every(a.forceInterval()), 1)
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case chatvault.EventContentChanged:
				if !pending {
					// A burst starts now; spend the token so a forced scan
					// waits a full interval.
					limiter.Allow()
					pending = true
					debounce.Reset(a.debounce())
					continue
				}
				if limiter.Allow() {
					debounce.Stop()
					pending = false
					a.rescan(ctx, session)
					continue
				}
				debounce.Reset(a.debounce())

			case chatvault.EventSaveClicked:
				a.SaveMessage(ctx, ev.MessageID)
			}

		case <-debounce.C:
			if pending {
				pending = false
				a.rescan(ctx, session)
			}
		}
	}
}

// SaveMessage extracts the message with id from the page and saves it.
// The save carries a user gesture since it answers a control press.
func (a *Agent) SaveMessage(ctx context.Context, id string) chatvault.SaveOutcome {
	outcome := a.saveMessage(ctx, id)
	a.report(id, outcome)
	return outcome
}

func (a *Agent) saveMessage(ctx context.Context, id string) chatvault.SaveOutcome {
	html, err := a.Page.HTML(ctx)
	if err != nil {
		return chatvault.FailedOutcome("", err)
	}

	provider := a.Providers.ForPage(a.Page.URL(), html)
	msg, err := provider.ExtractMessageByID(html, id)
	if err != nil {
		return chatvault.FailedOutcome("", err)
	}

	req := chatvault.SaveRequest{
		Content:           msg.Content,
		ConversationTitle: msg.Title,
		Service:           provider.Name(),
		MessageType:       chatvault.MessageSingle,
		Metadata:          a.metadata(),
	}
	return a.Saver.Save(chatvault.WithUserGesture(ctx), req)
}

// Capture saves the messages selected by mode as one conversation note.
// count applies to CaptureRecent. A page without matching messages yields
// an unsuccessful outcome with code ENOCONTENT rather than an error.
func (a *Agent) Capture(ctx context.Context, mode chatvault.CaptureMode, count int) (*Result, error) {
	html, err := a.Page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("page snapshot: %w", err)
	}

	provider := a.Providers.ForPage(a.Page.URL(), html)
	captured, err := provider.CaptureMessages(html, mode, count)
	if err != nil {
		return nil, err
	}

	result := &Result{Title: captured.Title}
	if !captured.Success {
		result.Outcome = chatvault.FailedOutcome("", chatvault.Errorf(chatvault.ENOCONTENT, "%s", captured.Error))
		a.report("", result.Outcome)
		return result, nil
	}

	content := chatvault.FormatConversation(captured.Messages)
	result.Messages = len(captured.Messages)
	result.Bytes = len(content)
	result.Tokens = a.countTokens(ctx, content)

	req := chatvault.SaveRequest{
		Content:           content,
		ConversationTitle: captured.Title,
		Service:           provider.Name(),
		MessageType:       mode.MessageType(),
		Metadata:          a.metadata(),
	}
	result.Outcome = a.Saver.Save(ctx, req)
	a.report("", result.Outcome)
	return result, nil
}

// SaveArtifacts saves every artifact on the page as its own note and
// returns one outcome per artifact. Oversized artifacts are split into
// parts by the saver.
func (a *Agent) SaveArtifacts(ctx context.Context) ([]chatvault.SaveOutcome, error) {
	html, err := a.Page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("page snapshot: %w", err)
	}

	provider := a.Providers.ForPage(a.Page.URL(), html)
	artifacts, err := provider.ExtractArtifacts(html)
	if err != nil {
		return nil, err
	}
	if len(artifacts) == 0 {
		return nil, chatvault.Errorf(chatvault.ENOCONTENT, "no artifacts found")
	}

	var title string
	if captured, err := provider.CaptureMessages(html, chatvault.CaptureAll, 0); err == nil {
		title = captured.Title
	}

	outcomes := make([]chatvault.SaveOutcome, 0, len(artifacts))
	for _, art := range artifacts {
		md := a.metadata()
		md[chatvault.MetaArtifactTitle] = art.Title
		md[chatvault.MetaArtifactLanguage] = art.Language
		md[chatvault.MetaArtifactFilename] = art.Filename

		out := a.Saver.Save(ctx, chatvault.SaveRequest{
			Content:           art.Content,
			ConversationTitle: title,
			Service:           provider.Name(),
			MessageType:       chatvault.MessageArtifact,
			Metadata:          md,
		})
		a.report("", out)
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// initialScan retries the first scan until messages appear or the attempts
// run out. Running out is not an error: later content changes rescan.
func (a *Agent) initialScan(ctx context.Context, session *Session) error {
	attempts := a.initialAttempts()
	for attempt := 1; ; attempt++ {
		n, err := a.scan(ctx, session)
		if err == nil && n > 0 {
			return nil
		}
		if err != nil {
			a.logger().Debug("initial scan", "attempt", attempt, "err", err)
		}
		if attempt >= attempts {
			a.logger().Info("no messages after initial scan", "url", session.URL(), "attempts", attempts)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.initialInterval()):
		}
	}
}

func (a *Agent) rescan(ctx context.Context, session *Session) {
	if _, err := a.scan(ctx, session); err != nil && ctx.Err() == nil {
		a.logger().Warn("rescan", "url", session.URL(), "err", err)
	}
}

// scan snapshots the page and injects a control into every assistant
// message that does not carry one yet. It returns the number of messages
// found.
func (a *Agent) scan(ctx context.Context, session *Session) (int, error) {
	html, err := a.Page.HTML(ctx)
	if err != nil {
		return 0, fmt.Errorf("page snapshot: %w", err)
	}

	provider := a.Providers.ForPage(a.Page.URL(), html)
	result, err := provider.CaptureMessages(html, chatvault.CaptureAll, 0)
	if err != nil {
		return 0, err
	}
	if !result.Success {
		return 0, nil
	}

	for _, msg := range result.Messages {
		if msg.Role != chatvault.RoleAssistant || session.Injected(msg.ID) {
			continue
		}
		err := a.Page.InjectControl(ctx, result.Selector, msg.Index, msg.ID)
		if chatvault.ErrorCode(err) == chatvault.ENOTFOUND {
			// Re-rendered between snapshot and injection; the next scan
			// sees the new element.
			continue
		}
		if err != nil {
			return len(result.Messages), fmt.Errorf("inject control %s: %w", msg.ID, err)
		}
		session.MarkInjected(msg.ID)
	}
	return len(result.Messages), nil
}

func (a *Agent) countTokens(ctx context.Context, content string) int {
	if a.Tokens == nil {
		return 0
	}
	n, err := a.Tokens.CountTokens(ctx, content)
	if err != nil {
		a.logger().Debug("count tokens", "err", err)
		return 0
	}
	return n
}

func (a *Agent) metadata() map[string]string {
	md := make(map[string]string)
	if u := a.Page.URL(); u != "" {
		md[chatvault.MetaURL] = u
	}
	return md
}

func (a *Agent) report(id string, outcome chatvault.SaveOutcome) {
	if a.Report != nil {
		a.Report(id, outcome)
	}
}

func (a *Agent) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

func (a *Agent) debounce() time.Duration {
	if a.Debounce <= 0 {
		return DefaultDebounce
	}
	return a.Debounce
}

func (a *Agent) forceInterval() time.Duration {
	if a.ForceInterval <= 0 {
		return DefaultForceInterval
	}
	return a.ForceInterval
}

func (a *Agent) initialAttempts() int {
	if a.InitialAttempts <= 0 {
		return DefaultInitialAttempts
	}
	return a.InitialAttempts
}

func (a *Agent) initialInterval() time.Duration {
	if a.InitialInterval <= 0 {
		return DefaultInitialInterval
	}
	return a.InitialInterval
}

