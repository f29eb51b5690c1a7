// Package flow is the requester's side of the handshake: one authorization
// request per user action, a welcome screen on approval, and a notice on
// denial or when the holder cannot be reached. Nothing is retried.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/google/uuid"
)

type Phase int

const (
	Idle Phase = iota
	// Awaiting is suspended on the holder's answer.
	Awaiting
	Welcome
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Awaiting:
		return "awaiting"
	case Welcome:
		return "welcome"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type Notice int

const (
	NoNotice Notice = iota
	DeniedNotice
	UnreachableNotice
	FailedNotice
)

func (n Notice) String() string {
	switch n {
	case DeniedNotice:
		return "authorization was denied"
	case UnreachableNotice:
		return "identity holder is not available"
	case FailedNotice:
		return "authorization failed"
	default:
		return ""
	}
}

type Event interface{ isEvent() }

// Request starts an authorization.
type Request struct{}

// Delivered carries the holder's answer for the request identified by Token.
type Delivered struct {
	Token  string
	Result assertion.Result
}

// Failed reports a transport failure for the request identified by Token.
type Failed struct {
	Token string
	Err   error
}

// Abort gives up waiting; the caller cancels the call.
type Abort struct{}

type SignOut struct{}

func (Request) isEvent()   {}
func (Delivered) isEvent() {}
func (Failed) isEvent()    {}
func (Abort) isEvent()     {}
func (SignOut) isEvent()   {}

type Flow struct {
	phase    Phase
	token    string
	user     assertion.Assertion
	notice   Notice
	err      error
	newToken func() string
}

func New() Flow {
	return Flow{phase: Idle, newToken: uuid.NewString}
}

func (f Flow) Phase() Phase   { return f.phase }
func (f Flow) Token() string  { return f.token }
func (f Flow) Notice() Notice { return f.notice }

// Err is the transport error behind a FailedNotice or UnreachableNotice.
func (f Flow) Err() error { return f.err }

// User is the identity shown on the welcome screen.
func (f Flow) User() assertion.Assertion { return f.user }

func (f Flow) Resume(_ context.Context, ev Event) (Flow, error) {
	switch f.phase {
	case Idle:
		if _, ok := ev.(Request); ok {
			next := f
			if next.newToken == nil {
				next.newToken = uuid.NewString
			}
			next.phase = Awaiting
			next.token = next.newToken()
			next.notice = NoNotice
			next.err = nil
			return next, nil
		}

	case Awaiting:
		switch e := ev.(type) {
		case Delivered:
			if e.Token != f.token {
				return f, common.ErrStaleContinuation
			}
			if e.Result.Approved {
				return f.welcome(e.Result.Assertion), nil
			}
			return f.idle(DeniedNotice, nil), nil
		case Failed:
			if e.Token != f.token {
				return f, common.ErrStaleContinuation
			}
			if errors.Is(e.Err, common.ErrUnreachablePeer) {
				return f.idle(UnreachableNotice, e.Err), nil
			}
			return f.idle(FailedNotice, e.Err), nil
		case Abort:
			return f.idle(NoNotice, nil), nil
		}

	case Welcome:
		if _, ok := ev.(SignOut); ok {
			return f.idle(NoNotice, nil), nil
		}
	}

	return f, fmt.Errorf("%T in %s: %w", ev, f.phase, common.ErrInvalidTransition)
}

func (f Flow) idle(n Notice, err error) Flow {
	f.phase = Idle
	f.token = ""
	f.user = assertion.Assertion{}
	f.notice = n
	f.err = err
	return f
}

func (f Flow) welcome(a assertion.Assertion) Flow {
	f.phase = Welcome
	f.token = ""
	f.user = a
	f.notice = NoNotice
	f.err = nil
	return f
}

type View interface{ isView() }

type IdleView struct {
	Notice Notice
}

type AwaitingView struct{}

type WelcomeView struct {
	Username string
	Nickname string
	Initial  string
}

func (IdleView) isView()     {}
func (AwaitingView) isView() {}
func (WelcomeView) isView()  {}

func (f Flow) View() View {
	switch f.phase {
	case Awaiting:
		return AwaitingView{}
	case Welcome:
		return WelcomeView{Username: f.user.Username, Nickname: f.user.Nickname, Initial: initial(f.user.Nickname)}
	default:
		return IdleView{Notice: f.notice}
	}
}

// initial is the upper-cased first letter shown in place of an avatar.
func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}
