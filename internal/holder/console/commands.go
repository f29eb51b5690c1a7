package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/quickauth/internal/common"
	"github.com/dmitrijs2005/quickauth/internal/holder/avatar"
)

func (c *Console) requireUser(ctx context.Context) (string, bool) {
	u := c.signedIn(ctx)
	if u == "" {
		c.term.Println("Sign in first (login).")
		return "", false
	}
	return u, true
}

func (c *Console) logout(ctx context.Context) error {
	if c.signedIn(ctx) == "" {
		c.term.Println("Not signed in.")
		return nil
	}
	if err := c.sessions.Logout(ctx); err != nil {
		return err
	}
	c.term.Println("Signed out.")
	return nil
}

// profile prints the personal center of the signed-in user.
func (c *Console) profile(ctx context.Context) error {
	u := c.signedIn(ctx)
	if u == "" {
		c.term.Println("Not signed in.")
		return nil
	}

	i, err := c.ids.Get(ctx, u)
	if err != nil {
		return err
	}
	if i == nil {
		return fmt.Errorf("identity %q: %w", u, common.ErrNotFound)
	}

	c.term.Printf("username:   %s\n", i.Username)
	c.term.Printf("nickname:   %s\n", i.DisplayName())
	if !i.LastAuthenticatedAt.IsZero() {
		c.term.Printf("last login: %s\n", i.LastAuthenticatedAt.Local().Format(time.DateTime))
	}

	if c.avatars != nil && c.avatars.Enabled() {
		url, err := c.avatars.URL(ctx, u)
		if err != nil {
			c.log.Warn(ctx, "avatar url", "username", u, "error", err)
		} else if url != "" {
			c.term.Printf("avatar:     %s\n", url)
		}
	}

	sig, err := c.sessions.Signature(ctx)
	if err != nil {
		return err
	}
	if sig != "" {
		c.term.Printf("signature:  %s\n", sig)
	}
	return nil
}

func (c *Console) accounts(ctx context.Context) error {
	list, err := c.ids.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		c.term.Println("No accounts.")
		return nil
	}

	current := c.signedIn(ctx)
	for _, i := range list {
		mark := " "
		if i.Username == current {
			mark = "*"
		}
		last := "never"
		if !i.LastAuthenticatedAt.IsZero() {
			last = i.LastAuthenticatedAt.Local().Format(time.DateTime)
		}
		c.term.Printf("%s %-20s %-20s %s\n", mark, i.Username, i.DisplayName(), last)
	}
	return nil
}

// switchAccount signs in as an account already known on this device
// without asking for its password again.
func (c *Console) switchAccount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		c.term.Println("Usage: switch <username>")
		return nil
	}
	username := args[0]

	ok, err := c.ids.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !ok {
		c.term.Printf("No account %q.\n", username)
		return nil
	}

	if err := c.sessions.RecordLogin(ctx, username); err != nil {
		return err
	}
	if err := c.ids.TouchLogin(ctx, username); err != nil {
		return err
	}
	c.log.Info(ctx, "account switched", "username", username)
	c.term.Printf("Switched to %s.\n", username)
	return nil
}

func (c *Console) nickname(ctx context.Context, nickname string) error {
	u, ok := c.requireUser(ctx)
	if !ok {
		return nil
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		c.term.Println("Usage: nickname <text>")
		return nil
	}

	ok, err := c.ids.UpdateNickname(ctx, u, nickname)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("identity %q: %w", u, common.ErrNotFound)
	}
	c.term.Printf("Nickname set to %s.\n", nickname)
	return nil
}

// passwd changes the password of the signed-in user and signs them out.
func (c *Console) passwd(ctx context.Context) error {
	u, ok := c.requireUser(ctx)
	if !ok {
		return nil
	}

	pw, err := c.term.AskSecret(ctx, "New password: ")
	if err != nil {
		return err
	}
	again, err := c.term.AskSecret(ctx, "Repeat password: ")
	if err != nil {
		return err
	}
	pw = strings.TrimSpace(pw)
	if pw == "" {
		c.term.Println("Password must not be empty.")
		return nil
	}
	if pw != strings.TrimSpace(again) {
		c.term.Println("Passwords do not match.")
		return nil
	}

	ok, err = c.ids.UpdatePassword(ctx, u, pw)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("identity %q: %w", u, common.ErrNotFound)
	}
	if err := c.sessions.Logout(ctx); err != nil {
		return err
	}
	c.log.Info(ctx, "password changed", "username", u)
	c.term.Println("Password changed. Sign in again.")
	return nil
}

func (c *Console) avatar(ctx context.Context, args []string) error {
	u, ok := c.requireUser(ctx)
	if !ok {
		return nil
	}
	if c.avatars == nil || !c.avatars.Enabled() {
		c.term.Println("Avatar storage is not configured.")
		return nil
	}
	if len(args) != 1 {
		c.term.Println("Usage: avatar <path>")
		return nil
	}

	key, err := c.avatars.SetFromFile(ctx, u, args[0])
	if err != nil {
		if errors.Is(err, avatar.ErrDisabled) {
			c.term.Println("Avatar storage is not configured.")
			return nil
		}
		return err
	}
	c.log.Info(ctx, "avatar updated", "username", u, "key", key)
	c.term.Println("Avatar updated.")
	return nil
}

func (c *Console) signature(ctx context.Context, text string) error {
	if text == "" {
		sig, err := c.sessions.Signature(ctx)
		if err != nil {
			return err
		}
		c.term.Println(sig)
		return nil
	}
	if err := c.sessions.SetSignature(ctx, text); err != nil {
		return err
	}
	c.term.Println("Signature updated.")
	return nil
}
