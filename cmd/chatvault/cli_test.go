package main_test

import (
	"bytes"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/chatvault/cmd/chatvault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"capture", "artifacts", "watch", "serve", "vault", "settings", "history"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_ParsesCaptureFlags(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"capture", "chat.html", "--url", "https://claude.ai/chat/1", "-m", "recent", "-n", "5"})

	require.NoError(t, err)
	assert.Equal(t, "chat.html", cli.Capture.From.Source)
	assert.Equal(t, "https://claude.ai/chat/1", cli.Capture.From.URL)
	assert.Equal(t, "recent", cli.Capture.Mode)
	assert.Equal(t, 5, cli.Capture.Count)
}

func TestCLI_RejectsUnknownCaptureMode(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	parser, err := kong.New(cli, kong.Exit(func(int) {}), kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	_, err = parser.Parse([]string{"capture", "chat.html", "-m", "newest"})

	assert.Error(t, err)
}
