package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/chatvault"
	main "github.com/fwojciec/chatvault/cmd/chatvault"
	"github.com/fwojciec/chatvault/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticPage(url string) *mock.Page {
	return &mock.Page{
		URLFn:  func() string { return url },
		HTMLFn: func(ctx context.Context) (string, error) { return "<html></html>", nil },
	}
}

func chatProvider() *mock.Provider {
	return &mock.Provider{
		NameFn: func() string { return "claude" },
		CaptureMessagesFn: func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			return &chatvault.CaptureResult{
				Success: true,
				Title:   "Plan",
				Messages: []*chatvault.ExtractedMessage{
					{Role: chatvault.RoleUser, Content: "Hi"},
					{Role: chatvault.RoleAssistant, Content: "Hello"},
				},
			}, nil
		},
		ExtractArtifactsFn: func(html string) ([]*chatvault.Artifact, error) {
			return nil, nil
		},
	}
}

func captureDeps(provider chatvault.Provider, saver chatvault.Saver) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Providers: &mock.ProviderRegistry{
			ForPageFn: func(pageURL string, html string) chatvault.Provider { return provider },
		},
		Saver: saver,
		Settings: &mock.SettingsService{
			SettingsFn: func(ctx context.Context) (map[string]string, error) {
				return map[string]string{chatvault.SettingRecentCount: "7"}, nil
			},
		},
		LoadPage: func(ctx context.Context, source, pageURL string) (chatvault.Page, error) {
			return staticPage("https://claude.ai/chat/1"), nil
		},
	}, stdout, stderr
}

func TestCaptureCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("saves conversation and prints summary", func(t *testing.T) {
		t.Parallel()

		var got chatvault.SaveRequest
		var gesture bool
		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				got = req
				gesture = chatvault.HasUserGesture(ctx)
				return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem, Filename: "ChatVault/claude/plan.md"}
			},
		}
		deps, stdout, _ := captureDeps(chatProvider(), saver)
		deps.Interactive = true

		cmd := &main.CaptureCmd{Mode: "all"}
		cmd.From.Source = "chat.html"
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.True(t, gesture)
		assert.Equal(t, "claude", got.Service)
		assert.Equal(t, chatvault.MessageAll, got.MessageType)
		assert.Contains(t, stdout.String(), "saved 2 messages")
		assert.Contains(t, stdout.String(), "ChatVault/claude/plan.md")
	})

	t.Run("uses configured recent count", func(t *testing.T) {
		t.Parallel()

		var gotCount int
		provider := chatProvider()
		capture := provider.CaptureMessagesFn
		provider.CaptureMessagesFn = func(html string, mode chatvault.CaptureMode, count int) (*chatvault.CaptureResult, error) {
			gotCount = count
			return capture(html, mode, count)
		}
		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodClipboard}
			},
		}
		deps, _, _ := captureDeps(provider, saver)

		cmd := &main.CaptureCmd{Mode: "recent"}
		cmd.From.Source = "chat.html"
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, 7, gotCount)
	})

	t.Run("omits gesture when not interactive", func(t *testing.T) {
		t.Parallel()

		gesture := true
		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				gesture = chatvault.HasUserGesture(ctx)
				return chatvault.SaveOutcome{Success: true}
			},
		}
		deps, _, _ := captureDeps(chatProvider(), saver)

		cmd := &main.CaptureCmd{Mode: "all"}
		cmd.From.Source = "chat.html"
		require.NoError(t, cmd.Run(deps))

		assert.False(t, gesture)
	})

	t.Run("returns error when nothing was saved", func(t *testing.T) {
		t.Parallel()

		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				return chatvault.FailedOutcome(chatvault.MethodClipboard, chatvault.Errorf(chatvault.EUNAVAILABLE, "no clipboard"))
			},
		}
		deps, stdout, _ := captureDeps(chatProvider(), saver)

		cmd := &main.CaptureCmd{Mode: "all"}
		cmd.From.Source = "chat.html"
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stdout.String(), "not saved")
	})

	t.Run("reports missing source file", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := captureDeps(chatProvider(), nil)
		deps.LoadPage = func(ctx context.Context, source, pageURL string) (chatvault.Page, error) {
			return nil, chatvault.Errorf(chatvault.ENOTFOUND, "file %q not found", source)
		}

		cmd := &main.CaptureCmd{Mode: "all"}
		cmd.From.Source = "missing.html"
		err := cmd.Run(deps)

		assert.Equal(t, chatvault.ENOTFOUND, chatvault.ErrorCode(err))
		assert.Contains(t, stderr.String(), "missing.html")
	})
}

func TestArtifactsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("saves every artifact", func(t *testing.T) {
		t.Parallel()

		provider := chatProvider()
		provider.ExtractArtifactsFn = func(html string) ([]*chatvault.Artifact, error) {
			return []*chatvault.Artifact{
				{Title: "a.py", Language: "python", Filename: "a.py", Content: "```python\n1\n```"},
				{Title: "b.go", Language: "go", Filename: "b.go", Content: "```go\n2\n```"},
			}, nil
		}
		saves := 0
		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				saves++
				return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem, Message: "Saved to " + req.Metadata[chatvault.MetaArtifactFilename]}
			},
		}
		deps, stdout, _ := captureDeps(provider, saver)

		cmd := &main.ArtifactsCmd{}
		cmd.From.Source = "chat.html"
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, 2, saves)
		assert.Contains(t, stdout.String(), "Saved to a.py")
		assert.Contains(t, stdout.String(), "Saved to b.go")
	})

	t.Run("reports pages without artifacts", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := captureDeps(chatProvider(), nil)

		cmd := &main.ArtifactsCmd{}
		cmd.From.Source = "chat.html"
		require.NoError(t, cmd.Run(deps))

		assert.Contains(t, stdout.String(), "No artifacts found")
	})

	t.Run("returns error when an artifact fails", func(t *testing.T) {
		t.Parallel()

		provider := chatProvider()
		provider.ExtractArtifactsFn = func(html string) ([]*chatvault.Artifact, error) {
			return []*chatvault.Artifact{{Title: "a.py", Content: "x"}}, nil
		}
		saver := &mock.Saver{
			SaveFn: func(ctx context.Context, req chatvault.SaveRequest) chatvault.SaveOutcome {
				return chatvault.FailedOutcome("", chatvault.Errorf(chatvault.EPERMISSION, "denied"))
			},
		}
		deps, _, stderr := captureDeps(provider, saver)

		cmd := &main.ArtifactsCmd{}
		cmd.From.Source = "chat.html"
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "denied")
	})
}
