// Package login implements the login sub-flow of the holder: credential
// entry against the identity store, registration, and the completion signal
// handed back to whoever started it.
//
// A Flow is a value. Each Resume returns the next Flow; the caller keeps it.
package login

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/holder/identity"
	"github.com/dmitrijs2005/quickauth/internal/holder/session"
	"github.com/dmitrijs2005/quickauth/internal/logging"
)

type Phase int

const (
	Idle Phase = iota
	// Submitted is held only while a submission is being checked.
	Submitted
	Accepted
	Rejected
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitted:
		return "submitted"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Reason int

const (
	NoReason Reason = iota
	MissingInput
	BadCredentials
	UsernameTaken
)

func (r Reason) String() string {
	switch r {
	case MissingInput:
		return "missing input"
	case BadCredentials:
		return "bad credentials"
	case UsernameTaken:
		return "username taken"
	default:
		return ""
	}
}

// Mode selects what happens after a successful login.
type Mode int

const (
	// Standalone lands on the profile view.
	Standalone Mode = iota
	// Nested returns control to the invoking handshake.
	Nested
)

type Notice int

const (
	NoNotice Notice = iota
	Registered
)

// Identities is the part of the identity store the flow needs.
type Identities interface {
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, credential string) (*identity.Identity, error)
	Verify(ctx context.Context, username, credential string) (bool, error)
	TouchLogin(ctx context.Context, username string) error
}

// Sessions is the part of the session state the flow needs.
type Sessions interface {
	Get(ctx context.Context) (session.Session, error)
	RecordLogin(ctx context.Context, username string) error
}

// Observer receives one outcome per submission: "accepted", "rejected",
// "registered" or "taken".
type Observer interface {
	LoginAttempt(outcome string)
}

type Deps struct {
	Identities Identities
	Sessions   Sessions
	Observer   Observer
	Log        logging.Logger
}

func (d *Deps) observe(outcome string) {
	if d.Observer != nil {
		d.Observer.LoginAttempt(outcome)
	}
}

func (d *Deps) logger() logging.Logger {
	if d.Log == nil {
		return logging.NopLogger{}
	}
	return d.Log
}

type Event interface{ isEvent() }

type Submit struct {
	Username string
	Password string
}

type Register struct {
	Username string
	Password string
}

type Cancel struct{}

func (Submit) isEvent()   {}
func (Register) isEvent() {}
func (Cancel) isEvent()   {}

type Flow struct {
	deps     *Deps
	mode     Mode
	phase    Phase
	reason   Reason
	notice   Notice
	hint     string
	prefill  Submit
	username string
}

// Start opens a login flow. The last successfully used username is offered
// as a hint.
func Start(ctx context.Context, deps *Deps, mode Mode) (Flow, error) {
	sess, err := deps.Sessions.Get(ctx)
	if err != nil {
		return Flow{}, fmt.Errorf("read login hint: %w", err)
	}
	return Flow{deps: deps, mode: mode, phase: Idle, hint: sess.LastUsername}, nil
}

func (f Flow) Phase() Phase     { return f.phase }
func (f Flow) Reason() Reason   { return f.reason }
func (f Flow) Mode() Mode       { return f.mode }
func (f Flow) Hint() string     { return f.hint }
func (f Flow) Username() string { return f.username }

// Done reports whether the flow reached Accepted or Cancelled.
func (f Flow) Done() bool {
	return f.phase == Accepted || f.phase == Cancelled
}

// Resume applies ev and returns the next flow. Infrastructure failures are
// returned as errors and leave the flow where it was.
func (f Flow) Resume(ctx context.Context, ev Event) (Flow, error) {
	if f.deps == nil {
		return f, fmt.Errorf("login flow not started: %w", common.ErrInvalidTransition)
	}
	if f.Done() {
		return f, fmt.Errorf("login %s: %w", f.phase, common.ErrInvalidTransition)
	}

	switch e := ev.(type) {
	case Submit:
		return f.submit(ctx, e)
	case Register:
		return f.register(ctx, e)
	case Cancel:
		next := f.reset()
		next.phase = Cancelled
		f.deps.logger().Debug(ctx, "login cancelled", "mode", f.mode)
		return next, nil
	default:
		return f, fmt.Errorf("login event %T: %w", ev, common.ErrInvalidTransition)
	}
}

func (f Flow) reset() Flow {
	f.reason = NoReason
	f.notice = NoNotice
	f.prefill = Submit{}
	return f
}

func (f Flow) submit(ctx context.Context, e Submit) (Flow, error) {
	username := strings.TrimSpace(e.Username)
	password := strings.TrimSpace(e.Password)

	next := f.reset()
	if username == "" || password == "" {
		next.phase = Rejected
		next.reason = MissingInput
		next.prefill = Submit{Username: username}
		return next, nil
	}

	next.phase = Submitted
	ok, err := f.deps.Identities.Verify(ctx, username, password)
	if err != nil {
		return f, fmt.Errorf("verify: %w", err)
	}
	if !ok {
		f.deps.observe("rejected")
		f.deps.logger().Info(ctx, "login rejected", "username", username)
		next.phase = Rejected
		next.reason = BadCredentials
		next.prefill = Submit{Username: username}
		return next, nil
	}

	if err := f.deps.Sessions.RecordLogin(ctx, username); err != nil {
		return f, err
	}
	if err := f.deps.Identities.TouchLogin(ctx, username); err != nil {
		return f, err
	}

	f.deps.observe("accepted")
	f.deps.logger().Info(ctx, "login accepted", "username", username)
	next.phase = Accepted
	next.username = username
	next.hint = username
	return next, nil
}

// register creates the identity and pre-fills the login form with it. It
// never signs the new user in.
func (f Flow) register(ctx context.Context, e Register) (Flow, error) {
	username := strings.TrimSpace(e.Username)
	password := strings.TrimSpace(e.Password)

	next := f.reset()
	if username == "" || password == "" {
		next.phase = Rejected
		next.reason = MissingInput
		next.prefill = Submit{Username: username}
		return next, nil
	}

	exists, err := f.deps.Identities.Exists(ctx, username)
	if err != nil {
		return f, fmt.Errorf("exists: %w", err)
	}
	if exists {
		f.deps.observe("taken")
		next.phase = Rejected
		next.reason = UsernameTaken
		next.prefill = Submit{Username: username}
		return next, nil
	}

	if _, err := f.deps.Identities.Create(ctx, username, password); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// created concurrently between Exists and Create
			f.deps.observe("taken")
			next.phase = Rejected
			next.reason = UsernameTaken
			next.prefill = Submit{Username: username}
			return next, nil
		}
		return f, fmt.Errorf("create: %w", err)
	}

	f.deps.observe("registered")
	next.phase = Idle
	next.notice = Registered
	next.prefill = Submit{Username: username, Password: password}
	return next, nil
}
