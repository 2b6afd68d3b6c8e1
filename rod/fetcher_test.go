//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Fetcher implements chatvault.Fetcher.
var _ chatvault.Fetcher = (*rod.Fetcher)(nil)

func newFetcher(t *testing.T) *rod.Fetcher {
	t.Helper()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	fetcher := rod.NewFetcher(manager)
	t.Cleanup(func() { fetcher.Close() })
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns client-rendered messages", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><main id="thread"></main><script>
				setTimeout(() => {
					document.getElementById('thread').innerHTML =
						'<div data-message-author-role="user">Hydrated question</div>';
				}, 200);
			</script></body></html>`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		html, err := newFetcher(t).Fetch(ctx, srv.URL)

		require.NoError(t, err)
		assert.Contains(t, html, "Hydrated question")
	})

	t.Run("returns error for cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newFetcher(t).Fetch(ctx, "http://127.0.0.1:1")

		require.Error(t, err)
	})
}
