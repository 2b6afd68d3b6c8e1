// Package persist implements the persistence coordinator: it renders save
// requests into notes and runs them through an ordered chain of save
// strategies that ends with the clipboard.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/chatvault"
	"golang.org/x/sync/errgroup"
)

var _ chatvault.Saver = (*Coordinator)(nil)

// autoOrder is the strategy order for the "auto" preference.
var autoOrder = []chatvault.SaveMethod{
	chatvault.MethodFilesystem,
	chatvault.MethodAdvancedURI,
	chatvault.MethodDownloads,
	chatvault.MethodClipboard,
}

// Coordinator implements chatvault.Saver. It is safe for concurrent use.
type Coordinator struct {
	Settings   chatvault.SettingsService
	Splitter   chatvault.Splitter
	Strategies []chatvault.SaveStrategy

	// History, if set, receives one record per terminal outcome.
	History chatvault.SaveRecordService

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// Logger receives internal failures that do not fail a save.
	Logger *slog.Logger

	once    sync.Once
	methods map[chatvault.SaveMethod]chatvault.SaveStrategy
}

// Save validates req and persists it. Artifact requests larger than the
// configured chunk size are split and every part is saved on its own.
func (c *Coordinator) Save(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
	req = req.Clone()
	if err := req.Validate(); err != nil {
		return chatvault.FailedOutcome("", err)
	}

	s := c.settings(ctx)

	if req.MessageType == chatvault.MessageArtifact && utf8.RuneCountInString(req.Content) > s.ChunkSize {
		return c.saveParts(ctx, req, s)
	}
	return c.saveOne(ctx, req, s)
}

// Chain returns the strategies tried for a preference, in order. Methods
// without a registered strategy are left out.
func (c *Coordinator) Chain(pref chatvault.SaveMethod) []chatvault.SaveStrategy {
	c.once.Do(func() {
		c.methods = make(map[chatvault.SaveMethod]chatvault.SaveStrategy, len(c.Strategies))
		for _, st := range c.Strategies {
			c.methods[st.Method()] = st
		}
	})

	order := autoOrder
	if pref != "" && pref != chatvault.PreferAuto {
		order = []chatvault.SaveMethod{pref}
		if pref != chatvault.MethodClipboard {
			order = append(order, chatvault.MethodClipboard)
		}
	}

	chain := make([]chatvault.SaveStrategy, 0, len(order))
	for _, m := range order {
		if st, ok := c.methods[m]; ok {
			chain = append(chain, st)
		}
	}
	return chain
}

// settings reads the settings collaborator. Unreadable or malformed
// settings fall back to the defaults so that saving still works.
func (c *Coordinator) settings(ctx context.Context) chatvault.Settings {
	if c.Settings == nil {
		return chatvault.DefaultSettings()
	}
	m, err := c.Settings.Settings(ctx)
	if err != nil {
		c.logger().Warn("read settings, using defaults", "err", err)
		return chatvault.DefaultSettings()
	}
	s, err := chatvault.ParseSettings(m)
	if err != nil {
		c.logger().Warn("parse settings, using defaults", "err", err)
		return chatvault.DefaultSettings()
	}
	return s
}

func (c *Coordinator) saveOne(ctx context.Context, req chatvault.SaveRequest, s chatvault.Settings) chatvault.SaveOutcome {
	hash := c.Splitter.Hash(ctx, req.Content)
	note, err := Render(req, s, hash, c.now())
	if err != nil {
		out := chatvault.FailedOutcome("", err)
		c.record(ctx, req, hash, out)
		return out
	}

	out := c.run(ctx, note, s.SaveMethod)
	c.record(ctx, req, hash, out)
	return out
}

// run tries each strategy of the chain with its own copy of the note and
// returns the first success.
func (c *Coordinator) run(ctx context.Context, note chatvault.Note, pref chatvault.SaveMethod) chatvault.SaveOutcome {
	chain := c.Chain(pref)
	if len(chain) == 0 {
		return chatvault.FailedOutcome("", chatvault.Errorf(chatvault.EINTERNAL, "no save strategy available"))
	}

	var lastErr error
	var lastMethod chatvault.SaveMethod
	for _, st := range chain {
		if err := ctx.Err(); err != nil {
			return chatvault.FailedOutcome(lastMethod, err)
		}

		attempt := note
		attempt.Request = note.Request.Clone()

		out, err := st.Save(ctx, attempt)
		if err == nil && out.Success {
			return out
		}
		if err == nil {
			err = chatvault.Errorf(chatvault.EINTERNAL, "%s: %s", st.Method(), out.Error)
		}
		lastErr, lastMethod = err, st.Method()
	}
	return chatvault.FailedOutcome(lastMethod, lastErr)
}

// saveParts splits req and saves all parts concurrently. The aggregate
// succeeds only if every part succeeded.
func (c *Coordinator) saveParts(ctx context.Context, req chatvault.SaveRequest, s chatvault.Settings) chatvault.SaveOutcome {
	parts := c.Splitter.Split(ctx, req.Content, s.ChunkSize, 0)
	if len(parts) <= 1 {
		return c.saveOne(ctx, req, s)
	}

	outcomes := make([]chatvault.SaveOutcome, len(parts))
	var g errgroup.Group
	for i, part := range parts {
		preq := req.Clone()
		preq.Content = part.Content
		if preq.Metadata == nil {
			preq.Metadata = make(map[string]string, 2)
		}
		preq.Metadata[chatvault.MetaPart] = strconv.Itoa(part.Part)
		preq.Metadata[chatvault.MetaTotalParts] = strconv.Itoa(part.TotalParts)

		g.Go(func() error {
			outcomes[i] = c.saveOne(ctx, preq, s)
			return nil
		})
	}
	_ = g.Wait()

	return aggregate(outcomes)
}

func aggregate(outcomes []chatvault.SaveOutcome) chatvault.SaveOutcome {
	agg := chatvault.SaveOutcome{
		Success:     true,
		Method:      outcomes[0].Method,
		Filename:    outcomes[0].Filename,
		IsDuplicate: true,
	}

	var errs []string
	failed := 0
	for i, out := range outcomes {
		if !out.Success {
			agg.Success = false
			failed++
			errs = append(errs, fmt.Sprintf("part %d: %s", i+1, out.Error))
			if agg.Message == "" {
				agg.Message = out.Message
			}
		}
		agg.IsDuplicate = agg.IsDuplicate && out.IsDuplicate
	}

	if agg.Success {
		agg.Message = fmt.Sprintf("Saved %d parts.", len(outcomes))
		return agg
	}
	agg.IsDuplicate = false
	agg.Error = strings.Join(errs, "; ")
	agg.Message = fmt.Sprintf("%d of %d parts failed. %s", failed, len(outcomes), agg.Message)
	return agg
}

// record stores out in the history. History failures never fail a save.
func (c *Coordinator) record(ctx context.Context, req chatvault.SaveRequest, hash string, out chatvault.SaveOutcome) {
	if c.History == nil {
		return
	}
	err := c.History.CreateSaveRecord(context.WithoutCancel(ctx), &chatvault.SaveRecord{
		Service:     req.Service,
		Title:       req.ConversationTitle,
		MessageType: req.MessageType,
		Method:      out.Method,
		Filename:    out.Filename,
		ContentHash: hash,
		Bytes:       len(req.Content),
		Duplicate:   out.IsDuplicate,
		Success:     out.Success,
		Error:       out.Error,
	})
	if err != nil {
		c.logger().Warn("record save history", "filename", out.Filename, "err", err)
	}
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
