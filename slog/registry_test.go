package slog_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/mock"
	cvslog "github.com/fwojciec/chatvault/slog"
	"github.com/stretchr/testify/assert"
)

func namedProvider(name string) *mock.Provider {
	return &mock.Provider{NameFn: func() string { return name }}
}

func TestLoggingProviderRegistry_ForPage(t *testing.T) {
	t.Parallel()

	t.Run("logs detected platform with duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		provider := namedProvider("claude")
		inner := &mock.ProviderRegistry{
			ForPageFn: func(pageURL string, html string) chatvault.Provider {
				return provider
			},
		}
		detector := &mock.PlatformDetector{
			DetectFn: func(pageURL string, html string) chatvault.Platform {
				return chatvault.PlatformClaude
			},
		}

		registry := cvslog.NewLoggingProviderRegistry(inner, detector, logger)
		got := registry.ForPage("https://claude.ai/chat/1", "<html></html>")

		assert.Equal(t, provider, got)
		output := buf.String()
		assert.Contains(t, output, "platform detection")
		assert.Contains(t, output, "platform=claude")
		assert.Contains(t, output, "provider=claude")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs unknown platform", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ProviderRegistry{
			ForPageFn: func(pageURL string, html string) chatvault.Provider {
				return namedProvider("generic")
			},
		}
		detector := &mock.PlatformDetector{
			DetectFn: func(pageURL string, html string) chatvault.Platform {
				return chatvault.PlatformUnknown
			},
		}

		registry := cvslog.NewLoggingProviderRegistry(inner, detector, logger)
		registry.ForPage("https://example.com", "<html></html>")

		output := buf.String()
		assert.Contains(t, output, "platform=(unknown)")
		assert.Contains(t, output, "provider=generic")
	})
}

func TestLoggingProviderRegistry_Get(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner registry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		provider := namedProvider("chatgpt")
		inner := &mock.ProviderRegistry{
			GetFn: func(platform chatvault.Platform) chatvault.Provider {
				return provider
			},
		}

		registry := cvslog.NewLoggingProviderRegistry(inner, nil, logger)

		assert.Equal(t, provider, registry.Get(chatvault.PlatformChatGPT))
	})
}

func TestLoggingProviderRegistry_Register(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner registry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		var registeredPlatform chatvault.Platform
		var registeredProvider chatvault.Provider
		provider := namedProvider("gemini")
		inner := &mock.ProviderRegistry{
			RegisterFn: func(platform chatvault.Platform, p chatvault.Provider) {
				registeredPlatform = platform
				registeredProvider = p
			},
		}

		registry := cvslog.NewLoggingProviderRegistry(inner, nil, logger)
		registry.Register(chatvault.PlatformGemini, provider)

		assert.Equal(t, chatvault.PlatformGemini, registeredPlatform)
		assert.Equal(t, provider, registeredProvider)
	})
}

func TestLoggingProviderRegistry_List(t *testing.T) {
	t.Parallel()

	t.Run("delegates to inner registry", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ProviderRegistry{
			ListFn: func() []chatvault.Platform {
				return []chatvault.Platform{chatvault.PlatformChatGPT, chatvault.PlatformClaude}
			},
		}

		registry := cvslog.NewLoggingProviderRegistry(inner, nil, logger)

		assert.Equal(t, []chatvault.Platform{chatvault.PlatformChatGPT, chatvault.PlatformClaude}, registry.List())
	})
}
