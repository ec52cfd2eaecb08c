package sendmail

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/courier/pkg/mailer"
)

// fakeSendmail writes a script that records its arguments and stdin.
func fakeSendmail(t *testing.T, exitCode int) (bin, outFile, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script sendmail stub requires a unix shell")
	}

	dir := t.TempDir()
	bin = filepath.Join(dir, "sendmail")
	outFile = filepath.Join(dir, "message.eml")
	argsFile = filepath.Join(dir, "args")
	script := "#!/bin/sh\necho \"$@\" > " + argsFile + "\ncat > " + outFile + "\n"
	if exitCode != 0 {
		script += "echo 'mailbox unavailable' >&2\nexit 1\n"
	}
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin, outFile, argsFile
}

func testEmail() *mailer.Email {
	return &mailer.Email{
		From:    "shop@example.com",
		To:      []string{"alice@example.com"},
		Subject: "Shipped",
		HTML:    "<p>On its way</p>",
		Text:    "On its way",
	}
}

func TestSender_Send_Unix(t *testing.T) {
	t.Parallel()

	bin, outFile, argsFile := fakeSendmail(t, 0)
	s := New(Config{Path: bin, Args: []string{"-fbounce@example.com"}})
	require.NoError(t, s.Send(context.Background(), testEmail()))

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Subject: Shipped")
	assert.False(t, bytes.Contains(raw, []byte("\r\n")), "unix newline mode must strip CR")

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "-oi -t -fbounce@example.com\n", string(args))
}

func TestSender_Send_Windows(t *testing.T) {
	t.Parallel()

	bin, outFile, _ := fakeSendmail(t, 0)
	s := New(Config{Path: bin, Newline: NewlineWindows})
	require.NoError(t, s.Send(context.Background(), testEmail()))

	raw, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\r\n")
}

func TestSender_Send_Failure(t *testing.T) {
	t.Parallel()

	bin, _, _ := fakeSendmail(t, 1)
	err := New(Config{Path: bin}).Send(context.Background(), testEmail())
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	assert.Contains(t, err.Error(), "mailbox unavailable")
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	assert.NotEmpty(t, s.config.Path)
	assert.Equal(t, NewlineUnix, s.config.Newline)
}
