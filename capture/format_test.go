package capture_test

import (
	"testing"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/capture"
	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	t.Run("formats bytes as B", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "512 B", capture.FormatBytes(512))
	})

	t.Run("formats kilobytes as KB", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "1.5 KB", capture.FormatBytes(1536))
	})

	t.Run("formats megabytes as MB", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "2.0 MB", capture.FormatBytes(2*1024*1024))
	})
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()

	t.Run("formats small token counts", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "~500 tokens", capture.FormatTokens(500))
	})

	t.Run("rounds large token counts to k", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "~2k tokens", capture.FormatTokens(1500))
	})
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	t.Run("describes a saved capture", func(t *testing.T) {
		t.Parallel()

		s := capture.FormatSummary(&capture.Result{
			Messages: 2,
			Bytes:    2048,
			Tokens:   300,
			Outcome: chatvault.SaveOutcome{
				Success:  true,
				Method:   chatvault.MethodFilesystem,
				Filename: "2026-10-19_Chat_abcd1234.md",
			},
		})

		assert.Equal(t, "saved 2 messages (2.0 KB, ~300 tokens) via filesystem: 2026-10-19_Chat_abcd1234.md", s)
	})

	t.Run("marks duplicates", func(t *testing.T) {
		t.Parallel()

		s := capture.FormatSummary(&capture.Result{
			Messages: 1,
			Bytes:    10,
			Outcome:  chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem, IsDuplicate: true},
		})

		assert.Equal(t, "saved 1 message (10 B) via filesystem (unchanged)", s)
	})

	t.Run("describes a failed capture", func(t *testing.T) {
		t.Parallel()

		s := capture.FormatSummary(&capture.Result{
			Outcome: chatvault.SaveOutcome{Message: "No messages were found on this page."},
		})

		assert.Equal(t, "not saved: No messages were found on this page.", s)
	})
}
