package goquery_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/goquery"
	"github.com/fwojciec/chatvault/htmltomarkdown"
	"github.com/fwojciec/chatvault/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genericPage = `<html><head><title>Some Chat</title></head><body>
<nav><a href="/">Home</a></nav>
<main><p>The answer body.</p><p data-chatvault-selected="true">Selected line.</p></main>
<footer>Footer text</footer>
</body></html>`

func TestGenericProvider_CaptureMessages(t *testing.T) {
	t.Parallel()

	t.Run("uses first extractor that yields content", func(t *testing.T) {
		t.Parallel()

		failing := &mock.Extractor{
			ExtractFn: func(string) (*chatvault.ExtractResult, error) {
				return nil, errors.New("boom")
			},
		}
		working := &mock.Extractor{
			ExtractFn: func(string) (*chatvault.ExtractResult, error) {
				return &chatvault.ExtractResult{Title: "Extracted", ContentHTML: "<p>Main content</p>"}, nil
			},
		}
		p := goquery.NewGenericProvider(htmltomarkdown.NewConverter(), failing, working)

		result, err := p.CaptureMessages(genericPage, chatvault.CaptureAll, 0)

		require.NoError(t, err)
		require.True(t, result.Success)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, "Extracted", result.Title)
		assert.Equal(t, "Main content", result.Messages[0].Content)
		assert.Equal(t, chatvault.RoleAssistant, result.Messages[0].Role)
		assert.Equal(t, "msg-0", result.Messages[0].ID)
	})

	t.Run("falls back to body without boilerplate", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewGenericProvider(htmltomarkdown.NewConverter())

		result, err := p.CaptureMessages(genericPage, chatvault.CaptureRecent, 5)

		require.NoError(t, err)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, "Some Chat", result.Title)
		assert.Contains(t, result.Messages[0].Content, "The answer body.")
		assert.NotContains(t, result.Messages[0].Content, "Home")
		assert.NotContains(t, result.Messages[0].Content, "Footer text")
	})

	t.Run("captures selected elements", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewGenericProvider(htmltomarkdown.NewConverter())

		result, err := p.CaptureMessages(genericPage, chatvault.CaptureSelected, 0)

		require.NoError(t, err)
		require.Len(t, result.Messages, 1)
		assert.Equal(t, "Selected line.", result.Messages[0].Content)
	})

	t.Run("reports no messages when nothing is selected", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewGenericProvider(htmltomarkdown.NewConverter())

		result, err := p.CaptureMessages(`<html><body><p>x</p></body></html>`, chatvault.CaptureSelected, 0)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, chatvault.NoMessagesFound, result.Error)
	})

	t.Run("reports no messages for empty page", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewGenericProvider(htmltomarkdown.NewConverter())

		result, err := p.CaptureMessages(`<html><body><nav>menu</nav></body></html>`, chatvault.CaptureAll, 0)

		require.NoError(t, err)
		assert.False(t, result.Success)
	})

	t.Run("returns internal error for unknown mode", func(t *testing.T) {
		t.Parallel()

		p := goquery.NewGenericProvider(htmltomarkdown.NewConverter())

		_, err := p.CaptureMessages(genericPage, chatvault.CaptureMode("bogus"), 0)

		assert.Equal(t, chatvault.EINTERNAL, chatvault.ErrorCode(err))
	})
}

func TestGenericProvider_ExtractMessageByID(t *testing.T) {
	t.Parallel()

	p := goquery.NewGenericProvider(htmltomarkdown.NewConverter())

	msg, err := p.ExtractMessageByID(genericPage, "msg-0")
	require.NoError(t, err)
	assert.Contains(t, msg.Content, "The answer body.")

	_, err = p.ExtractMessageByID(genericPage, "msg-1")
	assert.Equal(t, chatvault.ENOTFOUND, chatvault.ErrorCode(err))
}
