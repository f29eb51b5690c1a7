// Package cli is the requester's command loop: it asks the identity holder
// to vouch for the user and shows who signed in.
package cli

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/logging"
	"github.com/dmitrijs2005/quickauth/internal/requester/client"
	"github.com/dmitrijs2005/quickauth/internal/requester/config"
	"github.com/dmitrijs2005/quickauth/internal/requester/flow"
	"github.com/dmitrijs2005/quickauth/internal/termx"
)

// Holder is the identity holder as the requester sees it.
type Holder interface {
	flow.Authorizer
	Ping(ctx context.Context) error
}

type App struct {
	holder      Holder
	closer      io.Closer
	term        *termx.Terminal
	flow        flow.Flow
	pingTimeout time.Duration
	log         logging.Logger
}

// NewApp connects to the holder configured in c. Connections are lazy, so
// an absent holder only shows up on the first request.
func NewApp(c *config.Config, in io.Reader, out, logOut io.Writer) (*App, error) {
	log := logging.New(logOut, c.LogFormat, c.LogLevel)

	hc, err := client.NewIdentityHolderClient(c.HolderAddress)
	if err != nil {
		return nil, err
	}

	a := newApp(hc, in, out, log, c.PingTimeout)
	a.closer = hc
	return a, nil
}

func newApp(h Holder, in io.Reader, out io.Writer, log logging.Logger, pingTimeout time.Duration) *App {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &App{
		holder:      h,
		term:        termx.NewTerminal(in, out),
		flow:        flow.New(),
		pingTimeout: pingTimeout,
		log:         log.With("module", "requester"),
	}
}

// Run reads commands until ctx is done, input ends, or the user exits.
//
//	help      show available commands
//	login     sign in through the identity holder
//	whoami    show the signed-in user
//	signout   forget the signed-in user
//	status    check whether the identity holder is reachable
//	exit      leave the program
func (a *App) Run(ctx context.Context) error {
	if a.closer != nil {
		defer a.closer.Close()
	}

	a.term.Println("quickauth requester (type 'help' for commands)")

	for {
		select {
		case <-ctx.Done():
			return nil
		case in := <-a.term.Next(a.prompt()):
			line, err := a.term.Accept(in)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if !a.dispatch(ctx, line) {
				a.term.Println("Bye!")
				return nil
			}
		}
	}
}

func (a *App) prompt() string {
	if v, ok := a.flow.View().(flow.WelcomeView); ok {
		return "requester (" + v.Username + ")> "
	}
	return "requester> "
}

func (a *App) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}

	switch cmd := parts[0]; cmd {
	case "help":
		a.term.Println("Available commands: login, whoami, signout, status, exit")
	case "login":
		a.login(ctx)
	case "whoami":
		a.whoami()
	case "signout", "logout":
		a.signOut(ctx)
	case "status":
		a.status(ctx)
	case "exit", "quit":
		return false
	default:
		a.term.Println("Unknown command:", cmd)
	}
	return true
}
