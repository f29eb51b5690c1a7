// Package termx reads interactive console input on a background goroutine,
// so a console can wait for the user and for other events at once.
package termx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// Input is one line read from the terminal. Pass it to Accept.
type Input struct {
	line string
	err  error
}

// Terminal owns the console input and output. It must be used from one
// goroutine.
//
// At most one read is in flight. A prompt abandoned before the user answered
// keeps its read; the line is delivered to the next prompt.
type Terminal struct {
	in       io.Reader
	reader   *bufio.Reader
	out      io.Writer
	lines    chan Input
	inflight bool
	eof      bool
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
		lines:  make(chan Input, 1),
	}
}

// Printf writes to the console output.
func (t *Terminal) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}

func (t *Terminal) Println(args ...any) {
	_, _ = fmt.Fprintln(t.out, args...)
}

// Next prints prompt and returns the channel the answer arrives on, for use
// in a select. Whatever is received must be passed to Accept.
func (t *Terminal) Next(prompt string) <-chan Input {
	return t.next(prompt, false)
}

func (t *Terminal) next(prompt string, secret bool) <-chan Input {
	t.Printf("%s", prompt)
	if !t.inflight {
		t.inflight = true
		go t.read(secret)
	}
	return t.lines
}

// Accept completes a read started by Next.
func (t *Terminal) Accept(in Input) (string, error) {
	t.inflight = false
	if errors.Is(in.err, io.EOF) {
		t.eof = true
	}
	return in.line, in.err
}

// Ask prompts and waits for one line. It returns ctx.Err() if ctx ends
// first; the pending read then carries over to the next prompt.
func (t *Terminal) Ask(ctx context.Context, prompt string) (string, error) {
	return t.ask(ctx, prompt, false)
}

// AskSecret is Ask without echo when the input is a terminal.
func (t *Terminal) AskSecret(ctx context.Context, prompt string) (string, error) {
	return t.ask(ctx, prompt, true)
}

func (t *Terminal) ask(ctx context.Context, prompt string, secret bool) (string, error) {
	if t.eof {
		return "", io.EOF
	}
	select {
	case in := <-t.next(prompt, secret):
		return t.Accept(in)
	case <-ctx.Done():
		t.Println()
		return "", ctx.Err()
	}
}

func (t *Terminal) read(secret bool) {
	if secret {
		if f, ok := t.in.(*os.File); ok && isTerminal(int(f.Fd())) {
			pw, err := readPassword(int(f.Fd()))
			t.Println()
			line := string(pw)
			common.WipeByteArray(pw)
			t.lines <- Input{line: line, err: err}
			return
		}
	}

	line, err := t.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		t.lines <- Input{err: err}
		return
	}
	t.lines <- Input{line: strings.TrimRight(line, "\r\n")}
}
