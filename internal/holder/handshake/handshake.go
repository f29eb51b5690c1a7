// Package handshake implements the authorization handshake: decide whether
// a login is needed, run the nested login, then ask the user to approve or
// deny disclosing (username, nickname) to the requester.
package handshake

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/holder/login"
	"github.com/dmitrijs2005/quickauth/internal/holder/session"
	"github.com/dmitrijs2005/quickauth/internal/logging"
	"github.com/google/uuid"
)

type Phase int

const (
	Start Phase = iota
	NeedsLogin
	// AwaitingLogin is suspended on a nested login identified by a
	// continuation token.
	AwaitingLogin
	ReadyToConsent
	Approved
	Denied
)

func (p Phase) String() string {
	switch p {
	case Start:
		return "start"
	case NeedsLogin:
		return "needs-login"
	case AwaitingLogin:
		return "awaiting-login"
	case ReadyToConsent:
		return "ready-to-consent"
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Sessions interface {
	Get(ctx context.Context) (session.Session, error)
}

type Nicknames interface {
	Nickname(ctx context.Context, username string) string
}

type Deps struct {
	Sessions  Sessions
	Nicknames Nicknames
	Log       logging.Logger

	// Login starts the nested login sub-flow.
	Login *login.Deps

	// NewToken mints continuation tokens; defaults to random UUIDs.
	NewToken func() string
}

func (d *Deps) token() string {
	if d.NewToken != nil {
		return d.NewToken()
	}
	return uuid.NewString()
}

func (d *Deps) logger() logging.Logger {
	if d.Log == nil {
		return logging.NopLogger{}
	}
	return d.Log
}

type Event interface{ isEvent() }

// InvokeLogin starts the nested login from NeedsLogin.
type InvokeLogin struct{}

// LoginInput forwards an event to the nested login.
type LoginInput struct {
	Event login.Event
}

// LoginCompleted resumes a suspended handshake. It is emitted automatically
// when a forwarded LoginInput finishes the nested login.
type LoginCompleted struct {
	Token     string
	Succeeded bool
}

type Approve struct{}

type Cancel struct{}

func (InvokeLogin) isEvent()    {}
func (LoginInput) isEvent()     {}
func (LoginCompleted) isEvent() {}
func (Approve) isEvent()        {}
func (Cancel) isEvent()         {}

type Handshake struct {
	deps      *Deps
	requestID string
	phase     Phase
	user      string
	nickname  string
	token     string
	login     login.Flow
	result    assertion.Result
}

// Begin starts a handshake for one authorization request and evaluates the
// Start state right away.
func Begin(ctx context.Context, deps *Deps, requestID string) (Handshake, error) {
	h := Handshake{deps: deps, requestID: requestID, phase: Start}
	return h.evaluate(ctx)
}

func (h Handshake) RequestID() string { return h.requestID }
func (h Handshake) Phase() Phase      { return h.phase }

// Token returns the pending continuation token while AwaitingLogin.
func (h Handshake) Token() string { return h.token }

// Login returns the nested login flow while AwaitingLogin.
func (h Handshake) Login() login.Flow { return h.login }

func (h Handshake) Done() bool {
	return h.phase == Approved || h.phase == Denied
}

// Result returns the outcome once the handshake is terminal.
func (h Handshake) Result() (assertion.Result, bool) {
	return h.result, h.Done()
}

func (h Handshake) evaluate(ctx context.Context) (Handshake, error) {
	sess, err := h.deps.Sessions.Get(ctx)
	if err != nil {
		return h, fmt.Errorf("read session: %w", err)
	}

	h.token = ""
	h.login = login.Flow{}

	if !sess.IsAuthenticated || sess.CurrentUser == "" {
		h.phase = NeedsLogin
		h.user, h.nickname = "", ""
		return h, nil
	}

	h.phase = ReadyToConsent
	h.user = sess.CurrentUser
	h.nickname = h.deps.Nicknames.Nickname(ctx, sess.CurrentUser)
	return h, nil
}

// Resume applies ev and returns the next handshake. Terminal handshakes
// reject every event.
func (h Handshake) Resume(ctx context.Context, ev Event) (Handshake, error) {
	if h.deps == nil {
		return h, fmt.Errorf("handshake not started: %w", common.ErrInvalidTransition)
	}

	switch h.phase {
	case NeedsLogin:
		switch ev.(type) {
		case InvokeLogin:
			return h.invokeLogin(ctx)
		case Cancel:
			return h.deny(ctx), nil
		}

	case AwaitingLogin:
		switch e := ev.(type) {
		case LoginInput:
			return h.forward(ctx, e.Event)
		case Cancel:
			return h.forward(ctx, login.Cancel{})
		case LoginCompleted:
			return h.loginCompleted(ctx, e)
		}

	case ReadyToConsent:
		switch ev.(type) {
		case Approve:
			h.phase = Approved
			h.result = assertion.Approve(h.user, h.nickname)
			h.deps.logger().Info(ctx, "authorization approved", "request_id", h.requestID, "username", h.user)
			return h, nil
		case Cancel:
			return h.deny(ctx), nil
		}
	}

	return h, fmt.Errorf("%T in %s: %w", ev, h.phase, common.ErrInvalidTransition)
}

func (h Handshake) deny(ctx context.Context) Handshake {
	h.phase = Denied
	h.result = assertion.Deny()
	h.token = ""
	h.login = login.Flow{}
	h.deps.logger().Info(ctx, "authorization denied", "request_id", h.requestID)
	return h
}

func (h Handshake) invokeLogin(ctx context.Context) (Handshake, error) {
	f, err := login.Start(ctx, h.deps.Login, login.Nested)
	if err != nil {
		return h, err
	}
	h.phase = AwaitingLogin
	h.token = h.deps.token()
	h.login = f
	return h, nil
}

func (h Handshake) forward(ctx context.Context, ev login.Event) (Handshake, error) {
	f, err := h.login.Resume(ctx, ev)
	if err != nil {
		return h, err
	}
	h.login = f
	if !f.Done() {
		return h, nil
	}
	return h.loginCompleted(ctx, LoginCompleted{Token: h.token, Succeeded: f.Completion().Succeeded()})
}

func (h Handshake) loginCompleted(ctx context.Context, e LoginCompleted) (Handshake, error) {
	if e.Token == "" || e.Token != h.token {
		return h, common.ErrStaleContinuation
	}
	if !e.Succeeded {
		h.phase = NeedsLogin
		h.token = ""
		h.login = login.Flow{}
		return h, nil
	}
	// The nested login has written the session; re-read it.
	h.phase = Start
	return h.evaluate(ctx)
}
