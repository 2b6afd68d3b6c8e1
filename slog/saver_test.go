package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/chatvault"
	"github.com/fwojciec/chatvault/mock"
	cvslog "github.com/fwojciec/chatvault/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingSaver_Save(t *testing.T) {
	t.Parallel()

	req := chatvault.SaveRequest{
		Content:     "hello",
		Service:     "claude",
		MessageType: chatvault.MessageSingle,
	}

	t.Run("logs successful save", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Saver{
			SaveFn: func(ctx context.Context, r chatvault.SaveRequest) chatvault.SaveOutcome {
				return chatvault.SaveOutcome{Success: true, Method: chatvault.MethodFilesystem, Filename: "a.md"}
			},
		}

		out := cvslog.NewLoggingSaver(inner, logger).Save(context.Background(), req)

		assert.True(t, out.Success)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "msg=save")
		assert.Contains(t, output, "service=claude")
		assert.Contains(t, output, "type=single")
		assert.Contains(t, output, "method=filesystem")
		assert.Contains(t, output, "filename=a.md")
		assert.Contains(t, output, "bytes=5")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs failed save at warn level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Saver{
			SaveFn: func(ctx context.Context, r chatvault.SaveRequest) chatvault.SaveOutcome {
				return chatvault.SaveOutcome{Success: false, Method: chatvault.MethodClipboard, Error: "clipboard gone"}
			},
		}

		out := cvslog.NewLoggingSaver(inner, logger).Save(context.Background(), req)

		assert.False(t, out.Success)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, `err="clipboard gone"`)
	})
}
