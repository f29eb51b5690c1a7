package termx

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal_AskTrimsLineEndings(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("first\r\nsecond"), &out)
	ctx := context.Background()

	got, err := term.Ask(ctx, "a: ")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	got, err = term.AskSecret(ctx, "b: ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = term.Ask(ctx, "c: ")
	assert.ErrorIs(t, err, io.EOF)
	_, err = term.Ask(ctx, "d: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "a: b: c: ", out.String())
}

func TestTerminal_AbandonedPromptCarriesOver(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := term.Ask(ctx, "first: ")
	require.ErrorIs(t, err, context.Canceled)

	go func() { _, _ = io.WriteString(pw, "late\n") }()
	got, err := term.Ask(context.Background(), "second: ")
	require.NoError(t, err)
	assert.Equal(t, "late", got)
}

func TestTerminal_SecretUsesPasswordReader(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "tty")
	require.NoError(t, err)
	defer f.Close()

	origRead, origIs := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origIs })
	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var out bytes.Buffer
	term := NewTerminal(f, &out)
	got, err := term.AskSecret(context.Background(), "Password: ")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.Equal(t, "Password: \n", out.String())
}
