package goquery_test

import (
	"strings"
	"testing"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstElement(t *testing.T, html string) *gq.Selection {
	t.Helper()

	doc, err := gq.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc.Find("body").Children().First()
}

func TestDetectRole(t *testing.T) {
	t.Parallel()

	set := chatvault.SelectorSet{
		User:      []string{".from-user"},
		Assistant: []string{".from-bot"},
	}

	t.Run("uses user selector on the element", func(t *testing.T) {
		t.Parallel()

		sel := firstElement(t, `<div class="from-user"><p>hello</p></div>`)

		assert.Equal(t, chatvault.RoleUser, goquery.DetectRole(sel, set))
	})

	t.Run("uses assistant selector on the element", func(t *testing.T) {
		t.Parallel()

		sel := firstElement(t, `<div class="from-bot"><p>You: quoted prompt</p></div>`)

		assert.Equal(t, chatvault.RoleAssistant, goquery.DetectRole(sel, set))
	})

	t.Run("uses matching descendant", func(t *testing.T) {
		t.Parallel()

		sel := firstElement(t, `<section><div class="from-user">hello</div></section>`)

		assert.Equal(t, chatvault.RoleUser, goquery.DetectRole(sel, set))
	})

	t.Run("element match wins over descendant match", func(t *testing.T) {
		t.Parallel()

		sel := firstElement(t, `<div class="from-bot"><span class="from-user">nested</span></div>`)

		assert.Equal(t, chatvault.RoleAssistant, goquery.DetectRole(sel, set))
	})

	t.Run("uses text prefixes", func(t *testing.T) {
		t.Parallel()

		for _, text := range []string{"You said: hi", "You: hi", "user: hi", "  YOU SAID: hi"} {
			sel := firstElement(t, `<div>`+text+`</div>`)
			assert.Equal(t, chatvault.RoleUser, goquery.DetectRole(sel, set), text)
		}
	})

	// Unrecognized messages are attributed to the assistant. A user
	// message with unfamiliar markup is therefore misattributed.
	t.Run("defaults to assistant when nothing matches", func(t *testing.T) {
		t.Parallel()

		sel := firstElement(t, `<div><p>What is a goroutine?</p></div>`)

		assert.Equal(t, chatvault.RoleAssistant, goquery.DetectRole(sel, set))
	})
}
