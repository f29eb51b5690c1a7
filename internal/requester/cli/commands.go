package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/requester/flow"
)

type outcome struct {
	flow flow.Flow
	err  error
}

// login sends one authorization request and waits for the answer. Any line
// typed while waiting cancels the request.
func (a *App) login(ctx context.Context) {
	if a.flow.Phase() == flow.Welcome {
		a.term.Println("Already signed in; signout first.")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome, 1)
	go func(f flow.Flow) {
		next, err := flow.Authorize(ctx, f, a.holder)
		done <- outcome{flow: next, err: err}
	}(a.flow)

	a.term.Println("Waiting for approval in the identity holder...")

	var res outcome
	select {
	case res = <-done:
	case in := <-a.term.Next("(press Enter to cancel) "):
		_, _ = a.term.Accept(in)
		cancel()
		res = <-done
	}
	a.term.Println()

	if res.err != nil {
		a.log.Error(ctx, "authorize", "error", res.err)
		a.term.Println("Error:", res.err)
		return
	}
	a.flow = res.flow
	a.render()
}

func (a *App) render() {
	switch v := a.flow.View().(type) {
	case flow.WelcomeView:
		a.term.Printf("[%s] Welcome, %s!\n", v.Initial, v.Nickname)
		a.term.Printf("Signed in as %s.\n", v.Username)
	case flow.IdleView:
		if v.Notice == flow.NoNotice {
			a.term.Println("Cancelled.")
			return
		}
		a.term.Println("Sign-in failed:", v.Notice)
		if err := a.flow.Err(); err != nil && !errors.Is(err, common.ErrUnreachablePeer) {
			a.term.Println("Details:", err)
		}
	}
}

func (a *App) whoami() {
	v, ok := a.flow.View().(flow.WelcomeView)
	if !ok {
		a.term.Println("Not signed in.")
		return
	}
	a.term.Printf("username: %s\nnickname: %s\n", v.Username, v.Nickname)
}

func (a *App) signOut(ctx context.Context) {
	next, err := a.flow.Resume(ctx, flow.SignOut{})
	if err != nil {
		a.term.Println("Not signed in.")
		return
	}
	a.flow = next
	a.term.Println("Signed out.")
}

func (a *App) status(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.pingTimeout)
	defer cancel()

	if err := a.holder.Ping(ctx); err != nil {
		a.log.Debug(ctx, "ping", "error", err)
		a.term.Println(flow.UnreachableNotice.String())
		return
	}
	a.term.Println("identity holder is available")
}
