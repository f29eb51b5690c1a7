package console

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/quickauth/internal/holder/login"
)

// fillForm asks for one login form submission. register selects the
// registration path as the default choice.
func (c *Console) fillForm(ctx context.Context, v login.FormView, register bool) (login.Event, error) {
	switch {
	case v.Notice == login.Registered:
		c.term.Println("Account created. Sign in to continue.")
		register = false
	case v.Reason != login.NoReason:
		c.term.Println("Rejected:", v.Reason)
	}

	def := "l"
	if register {
		def = "r"
	}
	choice, err := c.term.Ask(ctx, "[l]ogin, [r]egister or [c]ancel ["+def+"]: ")
	if err != nil {
		return nil, err
	}
	choice = strings.ToLower(strings.TrimSpace(choice))
	if choice == "" {
		choice = def
	}
	if strings.HasPrefix(choice, "c") {
		return login.Cancel{}, nil
	}
	register = strings.HasPrefix(choice, "r")

	userPrompt := "Username: "
	defUser := v.DefaultUsername()
	if register {
		defUser = ""
	}
	if defUser != "" {
		userPrompt = "Username [" + defUser + "]: "
	}
	username, err := c.term.Ask(ctx, userPrompt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(username) == "" {
		username = defUser
	}

	passPrompt := "Password: "
	if !register && v.PrefillPassword != "" && username == v.PrefillUsername {
		passPrompt = "Password [just set]: "
	}
	password, err := c.term.AskSecret(ctx, passPrompt)
	if err != nil {
		return nil, err
	}

	if register {
		return login.Register{Username: username, Password: password}, nil
	}
	if password == "" && username == v.PrefillUsername {
		password = v.PrefillPassword
	}
	return login.Submit{Username: username, Password: password}, nil
}

// standalone runs the login flow from the command prompt and lands on the
// profile when it succeeds.
func (c *Console) standalone(ctx context.Context, register bool) error {
	f, err := login.Start(ctx, c.loginDeps, login.Standalone)
	if err != nil {
		return err
	}

	for {
		switch v := f.View().(type) {
		case login.LandingView:
			c.term.Printf("Signed in as %s.\n", v.Username)
			return c.profile(ctx)
		case login.ClosedView:
			return nil
		case login.FormView:
			ev, err := c.fillForm(ctx, v, register)
			if err != nil {
				return err
			}
			if f, err = f.Resume(ctx, ev); err != nil {
				return err
			}
		}
	}
}
