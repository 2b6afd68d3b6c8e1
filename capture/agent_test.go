package capture_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/capture"
	"github.com/fwojciec/chatvault/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://chatgpt.com/c/abc"

// testPage records snapshots and injections and forwards events from a
// channel the test owns.
type testPage struct {
	events    chan chatvault.PageEvent
	snapshots atomic.Int32

	mu       sync.Mutex
	injected map[string]int
}

func newTestPage() *testPage {
	return &testPage{
		events:   make(chan chatvault.PageEvent, 16),
		injected: make(map[string]int),
	}
}

func (p *testPage) mock() *mock.Page {
	return &mock.Page{
		URLFn: func() string { return pageURL },
		HTMLFn: func(ctx context.Context) (string, error) {
			p.snapshots.Add(1)
			return "<html></html>", nil
		},
		InjectControlFn: func(ctx context.Context, containerSelector string, index int, messageID string) error {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.injected[messageID]++
			return nil
		},
		EventsFn: func(ctx context.Context) (<-chan chatvault.PageEvent, error) {
			return p.events, nil
		},
	}
}

func (p *testPage) injections(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.injected[id]
}

func conversation() []*chatvault.ExtractedMessage {
	return []*chatvault.ExtractedMessage{
		{Role: chatvault.RoleUser, Content: "Question", Title: "Chat", ID: "u1", Index: 0},
		{Role: chatvault.RoleAssistant, Content: "Answer", Title: "Chat", ID: "a1", Index: 1},
	}
}

func testProvider(messages []*chatvault.ExtractedMessage) *mock.Provider {
	return &mock.Provider{
		NameFn: func() string { return "chatgpt" },
		CaptureMessagesFn: func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			return &chatvault.CaptureResult{Success: true, Messages: messages, Title: "Chat", Selector: ".msg"}, nil
		},
		ExtractMessageByIDFn: func(html string, id string) (*chatvault.ExtractedMessage, error) {
			for _, m := range messages {
				if m.ID == id {
					return m, nil
				}
			}
			return nil, chatvault.Errorf(chatvault.ENOTFOUND, "message %q not found", id)
		},
		ExtractArtifactsFn: func(html string) ([]*chatvault.Artifact, error) {
			return nil, nil
		},
	}
}

func registryFor(p chatvault.Provider) *mock.ProviderRegistry {
	return &mock.ProviderRegistry{
		ForPageFn: func(pageURL string, html string) chatvault.Provider { return p },
	}
}

func okSaver() *mock.Saver {
	return &mock.Saver{
		SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
			return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem, Filename: "note.md"}
		},
	}
}

// runAgent starts a.Run and returns a function that stops it and returns
// its error.
func runAgent(t *testing.T, a *capture.Agent) func() error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	var once sync.Once
	var err error
	stop := func() error {
		once.Do(func() {
			cancel()
			select {
			case err = <-done:
			case <-time.After(5 * time.Second):
				t.Error("agent did not stop")
			}
		})
		return err
	}
	t.Cleanup(func() { stop() })
	return stop
}

func waitActive(t *testing.T, a *capture.Agent) {
	t.Helper()
	require.Eventually(t, func() bool {
		s := a.Session()
		return s != nil && s.State() == capture.StateActive
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAgent_Run(t *testing.T) {
	t.Parallel()

	t.Run("injects one control per assistant message", func(t *testing.T) {
		t.Parallel()

		page := newTestPage()
		a := &capture.Agent{
			Page:          page.mock(),
			Providers:     registryFor(testProvider(conversation())),
			Saver:         okSaver(),
			Debounce:      5 * time.Millisecond,
			ForceInterval: time.Hour,
		}
		runAgent(t, a)
		waitActive(t, a)

		for i := 0; i < 3; i++ {
			page.events <- chatvault.PageEvent{Type: chatvault.EventContentChanged}
			time.Sleep(20 * time.Millisecond)
		}
		require.Eventually(t, func() bool { return page.snapshots.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)

		assert.Equal(t, 1, page.injections("a1"))
		assert.Equal(t, 0, page.injections("u1"))
		assert.Equal(t, 1, a.Session().InjectedCount())
	})

	t.Run("retries initial scan until messages appear", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		provider := testProvider(conversation())
		provider.CaptureMessagesFn = func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			if calls.Add(1) < 3 {
				return &chatvault.CaptureResult{Success: false, Error: chatvault.NoMessagesFound}, nil
			}
			return &chatvault.CaptureResult{Success: true, Messages: conversation(), Selector: ".msg"}, nil
		}

		page := newTestPage()
		a := &capture.Agent{
			Page:            page.mock(),
			Providers:       registryFor(provider),
			Saver:           okSaver(),
			InitialInterval: 5 * time.Millisecond,
		}
		runAgent(t, a)
		waitActive(t, a)

		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, 1, page.injections("a1"))
	})

	t.Run("becomes active when initial attempts run out", func(t *testing.T) {
		t.Parallel()

		provider := testProvider(nil)
		provider.CaptureMessagesFn = func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			return &chatvault.CaptureResult{Success: false, Error: chatvault.NoMessagesFound}, nil
		}

		page := newTestPage()
		a := &capture.Agent{
			Page:            page.mock(),
			Providers:       registryFor(provider),
			Saver:           okSaver(),
			InitialAttempts: 2,
			InitialInterval: time.Millisecond,
		}
		runAgent(t, a)
		waitActive(t, a)

		assert.Equal(t, int32(2), page.snapshots.Load())
	})

	t.Run("debounces bursts of changes into one rescan", func(t *testing.T) {
		t.Parallel()

		page := newTestPage()
		a := &capture.Agent{
			Page:          page.mock(),
			Providers:     registryFor(testProvider(conversation())),
			Saver:         okSaver(),
			Debounce:      50 * time.Millisecond,
			ForceInterval: time.Hour,
		}
		runAgent(t, a)
		waitActive(t, a)
		require.Equal(t, int32(1), page.snapshots.Load())

		for i := 0; i < 5; i++ {
			page.events <- chatvault.PageEvent{Type: chatvault.EventContentChanged}
		}

		require.Eventually(t, func() bool { return page.snapshots.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
		time.Sleep(150 * time.Millisecond)
		assert.Equal(t, int32(2), page.snapshots.Load())
	})

	t.Run("forces a rescan during continuous changes", func(t *testing.T) {
		t.Parallel()

		page := newTestPage()
		a := &capture.Agent{
			Page:          page.mock(),
			Providers:     registryFor(testProvider(conversation())),
			Saver:         okSaver(),
			Debounce:      time.Hour,
			ForceInterval: 20 * time.Millisecond,
		}
		runAgent(t, a)
		waitActive(t, a)

		for i := 0; i < 20; i++ {
			page.events <- chatvault.PageEvent{Type: chatvault.EventContentChanged}
			time.Sleep(5 * time.Millisecond)
		}

		assert.GreaterOrEqual(t, page.snapshots.Load(), int32(2))
	})

	t.Run("saves message when control is pressed", func(t *testing.T) {
		t.Parallel()

		var (
			mu       sync.Mutex
			got      chatvault.SaveRequest
			gesture  bool
			reported string
		)
		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				mu.Lock()
				defer mu.Unlock()
				got = req
				gesture = chatvault.HasUserGesture(ctx)
				return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem}
			},
		}

		page := newTestPage()
		a := &capture.Agent{
			Page:      page.mock(),
			Providers: registryFor(testProvider(conversation())),
			Saver:     saver,
			Report: func(messageID string, outcome chatvault.SaveOutcome) {
				mu.Lock()
				defer mu.Unlock()
				reported = messageID
			},
		}
		runAgent(t, a)
		waitActive(t, a)

		page.events <- chatvault.PageEvent{Type: chatvault.EventSaveClicked, MessageID: "a1"}

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return reported == "a1"
		}, 2*time.Second, 5*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.True(t, gesture)
		assert.Equal(t, "Answer", got.Content)
		assert.Equal(t, "Chat", got.ConversationTitle)
		assert.Equal(t, "chatgpt", got.Service)
		assert.Equal(t, chatvault.MessageSingle, got.MessageType)
		assert.Equal(t, pageURL, got.Metadata[chatvault.MetaURL])
	})

	t.Run("stops when events close", func(t *testing.T) {
		t.Parallel()

		page := newTestPage()
		a := &capture.Agent{
			Page:      page.mock(),
			Providers: registryFor(testProvider(conversation())),
			Saver:     okSaver(),
		}

		done := make(chan error, 1)
		go func() { done <- a.Run(context.Background()) }()
		waitActive(t, a)
		close(page.events)

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("agent did not stop")
		}
		assert.Equal(t, capture.StateStopped, a.Session().State())
	})

	t.Run("stops on cancellation", func(t *testing.T) {
		t.Parallel()

		page := newTestPage()
		a := &capture.Agent{
			Page:      page.mock(),
			Providers: registryFor(testProvider(conversation())),
			Saver:     okSaver(),
		}
		stop := runAgent(t, a)
		waitActive(t, a)

		require.NoError(t, stop())
		assert.Equal(t, capture.StateStopped, a.Session().State())
	})
}

func TestAgent_SaveMessage(t *testing.T) {
	t.Parallel()

	t.Run("reports unknown message without saving", func(t *testing.T) {
		t.Parallel()

		saved := false
		a := &capture.Agent{
			Page:      newTestPage().mock(),
			Providers: registryFor(testProvider(conversation())),
			Saver: &mock.Saver{
				SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
					saved = true
					return chatvault.SaveOutcome{Success: true}
				},
			},
		}

		out := a.SaveMessage(context.Background(), "missing")

		assert.False(t, saved)
		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Message)
	})
}

func TestAgent_Capture(t *testing.T) {
	t.Parallel()

	t.Run("saves recent messages as one note", func(t *testing.T) {
		t.Parallel()

		var gotMode chatvault.CaptureMode
		var gotCount int
		provider := testProvider(conversation())
		provider.CaptureMessagesFn = func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			gotMode, gotCount = mode, count
			return &chatvault.CaptureResult{Success: true, Messages: conversation(), Title: "Chat"}, nil
		}

		var got chatvault.SaveRequest
		a := &capture.Agent{
			Page:      newTestPage().mock(),
			Providers: registryFor(provider),
			Saver: &mock.Saver{
				SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
					got = req
					return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodClipboard}
				},
			},
			Tokens: &mock.TokenCounter{
				CountTokensFn: func(ctx context.Context, text string) (int, error) { return 42, nil },
			},
		}

		result, err := a.Capture(context.Background(), chatvault.CaptureRecent, 5)

		require.NoError(t, err)
		assert.Equal(t, chatvault.CaptureRecent, gotMode)
		assert.Equal(t, 5, gotCount)
		assert.Equal(t, chatvault.MessageRecent, got.MessageType)
		assert.Equal(t, "## User\n\nQuestion\n\n## Assistant\n\nAnswer", got.Content)
		assert.Equal(t, 2, result.Messages)
		assert.Equal(t, len(got.Content), result.Bytes)
		assert.Equal(t, 42, result.Tokens)
		assert.True(t, result.Outcome.Success)
	})

	t.Run("reports no content without saving", func(t *testing.T) {
		t.Parallel()

		provider := testProvider(nil)
		provider.CaptureMessagesFn = func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			return &chatvault.CaptureResult{Success: false, Error: chatvault.NoMessagesFound}, nil
		}
		saved := false
		a := &capture.Agent{
			Page:      newTestPage().mock(),
			Providers: registryFor(provider),
			Saver: &mock.Saver{
				SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
					saved = true
					return chatvault.SaveOutcome{}
				},
			},
		}

		result, err := a.Capture(context.Background(), chatvault.CaptureSelected, 0)

		require.NoError(t, err)
		assert.False(t, saved)
		assert.False(t, result.Outcome.Success)
		assert.Contains(t, result.Outcome.Error, chatvault.NoMessagesFound)
	})

	t.Run("returns provider error for unknown mode", func(t *testing.T) {
		t.Parallel()

		provider := testProvider(nil)
		provider.CaptureMessagesFn = func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			return nil, chatvault.Errorf(chatvault.EINTERNAL, "unknown capture mode %q", mode)
		}
		a := &capture.Agent{
			Page:      newTestPage().mock(),
			Providers: registryFor(provider),
			Saver:     okSaver(),
		}

		_, err := a.Capture(context.Background(), chatvault.CaptureMode("bogus"), 0)

		assert.Equal(t, chatvault.EINTERNAL, chatvault.ErrorCode(err))
	})
}

func TestAgent_SaveArtifacts(t *testing.T) {
	t.Parallel()

	t.Run("saves each artifact with its metadata", func(t *testing.T) {
		t.Parallel()

		provider := testProvider(conversation())
		provider.ExtractArtifactsFn = func(html string) ([]*chatvault.Artifact, error) {
			return []*chatvault.Artifact{
				{Title: "main.py", Language: "python", Filename: "main.py", Content: "```python\nprint(1)\n```"},
				{Title: "Notes", Language: "markdown", Filename: "notes.md", Content: "text"},
			}, nil
		}

		var reqs []chatvault.SaveRequest
		a := &capture.Agent{
			Page:      newTestPage().mock(),
			Providers: registryFor(provider),
			Saver: &mock.Saver{
				SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
					reqs = append(reqs, req)
					return chatvault.SaveOutcome{Success: true}
				},
			},
		}

		outcomes, err := a.SaveArtifacts(context.Background())

		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		require.Len(t, reqs, 2)
		assert.Equal(t, chatvault.MessageArtifact, reqs[0].MessageType)
		assert.Equal(t, "Chat", reqs[0].ConversationTitle)
		assert.Equal(t, "main.py", reqs[0].Metadata[chatvault.MetaArtifactTitle])
		assert.Equal(t, "python", reqs[0].Metadata[chatvault.MetaArtifactLanguage])
		assert.Equal(t, "notes.md", reqs[1].Metadata[chatvault.MetaArtifactFilename])
	})

	t.Run("returns ENOCONTENT without artifacts", func(t *testing.T) {
		t.Parallel()

		a := &capture.Agent{
			Page:      newTestPage().mock(),
			Providers: registryFor(testProvider(conversation())),
			Saver:     okSaver(),
		}

		_, err := a.SaveArtifacts(context.Background())

		assert.Equal(t, chatvault.ENOCONTENT, chatvault.ErrorCode(err))
	})
}
