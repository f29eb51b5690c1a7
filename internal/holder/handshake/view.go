package handshake

import (
	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/holder/login"
)

type View interface{ isView() }

// LoginRequiredView offers to sign in or deny.
type LoginRequiredView struct {
	RequestID string
}

// LoginView renders the nested login form.
type LoginView struct {
	RequestID string
	Login     login.View
}

// ConsentView asks to disclose the given identity.
type ConsentView struct {
	RequestID string
	Username  string
	Nickname  string
}

type DoneView struct {
	RequestID string
	Result    assertion.Result
}

func (LoginRequiredView) isView() {}
func (LoginView) isView()         {}
func (ConsentView) isView()       {}
func (DoneView) isView()          {}

func (h Handshake) View() View {
	switch h.phase {
	case NeedsLogin:
		return LoginRequiredView{RequestID: h.requestID}
	case AwaitingLogin:
		return LoginView{RequestID: h.requestID, Login: h.login.View()}
	case ReadyToConsent:
		return ConsentView{RequestID: h.requestID, Username: h.user, Nickname: h.nickname}
	default:
		return DoneView{RequestID: h.requestID, Result: h.result}
	}
}
