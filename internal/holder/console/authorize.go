package console

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/quickauth/internal/assertion"
	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/holder/handshake"
	"github.com/dmitrijs2005/quickauth/internal/holder/inbox"
	"github.com/dmitrijs2005/quickauth/internal/holder/login"
)

// authorize answers one request by running the handshake with the user.
// Anything that stops the dialog early resolves the request as denied.
func (c *Console) authorize(ctx context.Context, r *inbox.Request) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.Abandoned():
			cancel()
		case <-ctx.Done():
		}
	}()

	c.term.Println()
	c.term.Printf("An application requests your identity (%s).\n", common.ActionAuthLogin)

	res := assertion.Deny()
	h, err := handshake.Begin(ctx, c.handshake, r.ID)
	if err != nil {
		c.log.Error(ctx, "begin handshake", "request_id", r.ID, "error", err)
	} else {
		res = c.runHandshake(ctx, h)
	}

	if err := r.Resolve(res); err != nil {
		c.term.Println("The request was withdrawn by the application.")
		return
	}
	if res.Approved {
		c.term.Printf("Shared %s with the application.\n", res.Username)
	} else {
		c.term.Println("Request denied.")
	}
}

func (c *Console) runHandshake(ctx context.Context, h handshake.Handshake) assertion.Result {
	for !h.Done() {
		ev, err := c.handshakeEvent(ctx, h.View())
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				c.log.Warn(ctx, "authorization dialog ended", "request_id", h.RequestID(), "error", err)
			}
			return assertion.Deny()
		}

		next, err := h.Resume(ctx, ev)
		if err != nil {
			c.log.Error(ctx, "handshake", "request_id", h.RequestID(), "phase", h.Phase(), "error", err)
			c.term.Println("Error:", err)
			if ctx.Err() != nil {
				return assertion.Deny()
			}
			continue
		}
		h = next
	}

	res, _ := h.Result()
	return res
}

func (c *Console) handshakeEvent(ctx context.Context, v handshake.View) (handshake.Event, error) {
	switch v := v.(type) {
	case handshake.LoginRequiredView:
		ok, err := c.confirm(ctx, "You are not signed in. Sign in to continue? [y/N]: ")
		if err != nil {
			return nil, err
		}
		if ok {
			return handshake.InvokeLogin{}, nil
		}
		return handshake.Cancel{}, nil

	case handshake.LoginView:
		form, ok := v.Login.(login.FormView)
		if !ok {
			return nil, common.ErrInvalidTransition
		}
		ev, err := c.fillForm(ctx, form, false)
		if err != nil {
			return nil, err
		}
		return handshake.LoginInput{Event: ev}, nil

	case handshake.ConsentView:
		c.term.Printf("Share your identity with the application?\n  username: %s\n  nickname: %s\n", v.Username, v.Nickname)
		ok, err := c.confirm(ctx, "Approve? [y/N]: ")
		if err != nil {
			return nil, err
		}
		if ok {
			return handshake.Approve{}, nil
		}
		return handshake.Cancel{}, nil
	}
	return nil, common.ErrInvalidTransition
}

func (c *Console) confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := c.term.Ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
