// Package console is the interactive front end of the identity holder. It
// runs the command loop and answers authorization requests from the inbox
// by walking the user through the handshake.
package console

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/quickauth/internal/holder/handshake"
	"github.com/dmitrijs2005/quickauth/internal/holder/identity"
	"github.com/dmitrijs2005/quickauth/internal/holder/inbox"
	"github.com/dmitrijs2005/quickauth/internal/holder/login"
	"github.com/dmitrijs2005/quickauth/internal/logging"
	"github.com/dmitrijs2005/quickauth/internal/termx"
)

type Identities interface {
	login.Identities
	handshake.Nicknames
	Get(ctx context.Context, username string) (*identity.Identity, error)
	ListAll(ctx context.Context) ([]identity.Identity, error)
	UpdateNickname(ctx context.Context, username, nickname string) (bool, error)
	UpdatePassword(ctx context.Context, username, credential string) (bool, error)
}

type Sessions interface {
	login.Sessions
	Logout(ctx context.Context) error
	Signature(ctx context.Context) (string, error)
	SetSignature(ctx context.Context, signature string) error
}

type Avatars interface {
	Enabled() bool
	SetFromFile(ctx context.Context, username, path string) (string, error)
	URL(ctx context.Context, username string) (string, error)
}

type Deps struct {
	Identities Identities
	Sessions   Sessions
	Avatars    Avatars
	Observer   login.Observer
	Log        logging.Logger
}

type Console struct {
	ids       Identities
	sessions  Sessions
	avatars   Avatars
	term      *termx.Terminal
	requests  <-chan *inbox.Request
	loginDeps *login.Deps
	handshake *handshake.Deps
	log       logging.Logger
}

// New builds a console reading commands from in and answering requests
// from requests. A nil requests channel disables authorization prompts.
func New(deps Deps, in io.Reader, out io.Writer, requests <-chan *inbox.Request) *Console {
	log := deps.Log
	if log == nil {
		log = logging.NopLogger{}
	}
	log = log.With("module", "console")

	ld := &login.Deps{
		Identities: deps.Identities,
		Sessions:   deps.Sessions,
		Observer:   deps.Observer,
		Log:        log.With("flow", "login"),
	}

	return &Console{
		ids:       deps.Identities,
		sessions:  deps.Sessions,
		avatars:   deps.Avatars,
		term:      termx.NewTerminal(in, out),
		requests:  requests,
		loginDeps: ld,
		handshake: &handshake.Deps{
			Sessions:  deps.Sessions,
			Nicknames: deps.Identities,
			Login:     ld,
			Log:       log.With("flow", "handshake"),
		},
		log: log,
	}
}

// Run loops until ctx is done, input ends, or the user exits.
//
//	help                 show available commands
//	login                sign in and open the profile
//	register             create an account
//	logout               sign out
//	whoami | profile     show the signed-in profile
//	accounts             list accounts by last login
//	switch <username>    sign in as another listed account
//	nickname <text>      change the nickname
//	passwd               change the password, then sign out
//	avatar <path>        upload an avatar image
//	signature [text]     show or change the signature
//	exit | quit          leave the program
func (c *Console) Run(ctx context.Context) error {
	c.term.Println("quickauth identity holder (type 'help' for commands)")

	for {
		select {
		case <-ctx.Done():
			return nil

		case r := <-c.requests:
			c.authorize(ctx, r)

		case in := <-c.term.Next(c.prompt(ctx)):
			line, err := c.term.Accept(in)
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
			if !c.dispatch(ctx, line) {
				c.term.Println("Bye!")
				return nil
			}
		}
	}
}

func (c *Console) prompt(ctx context.Context) string {
	sess, err := c.sessions.Get(ctx)
	if err != nil || !sess.IsAuthenticated || sess.CurrentUser == "" {
		return "quickauth> "
	}
	return "quickauth (" + sess.CurrentUser + ")> "
}

// dispatch runs one command line and reports whether the loop continues.
func (c *Console) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	var err error
	switch cmd {
	case "help":
		c.help(ctx)
	case "login":
		err = c.standalone(ctx, false)
	case "register":
		err = c.standalone(ctx, true)
	case "logout":
		err = c.logout(ctx)
	case "whoami", "profile":
		err = c.profile(ctx)
	case "accounts":
		err = c.accounts(ctx)
	case "switch":
		err = c.switchAccount(ctx, args)
	case "nickname":
		err = c.nickname(ctx, strings.Join(args, " "))
	case "passwd":
		err = c.passwd(ctx)
	case "avatar":
		err = c.avatar(ctx, args)
	case "signature":
		err = c.signature(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
	case "exit", "quit":
		return false
	default:
		c.term.Println("Unknown command:", cmd)
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		c.log.Error(ctx, "command failed", "command", cmd, "error", err)
		c.term.Println("Error:", err)
	}
	return true
}

func (c *Console) help(ctx context.Context) {
	if c.signedIn(ctx) != "" {
		c.term.Println("Available commands: whoami, nickname, passwd, avatar, signature, accounts, switch, logout, exit")
		return
	}
	c.term.Println("Available commands: login, register, accounts, switch, exit")
}

// signedIn returns the current user, or "" when nobody is signed in.
func (c *Console) signedIn(ctx context.Context) string {
	sess, err := c.sessions.Get(ctx)
	if err != nil {
		c.log.Error(ctx, "read session", "error", err)
		return ""
	}
	if !sess.IsAuthenticated {
		return ""
	}
	return sess.CurrentUser
}
