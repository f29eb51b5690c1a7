package login

// View is what the presentation layer renders for a flow.
type View interface{ isView() }

// FormView asks for credentials. Prefill fields, when set, are offered as
// defaults; Hint is used for the username when nothing is pre-filled.
type FormView struct {
	Mode            Mode
	Hint            string
	PrefillUsername string
	PrefillPassword string
	Reason          Reason
	Notice          Notice
}

// LandingView is the profile screen reached after a standalone login.
type LandingView struct {
	Username string
}

// ClosedView ends a nested or cancelled flow.
type ClosedView struct {
	Succeeded bool
	Username  string
}

func (FormView) isView()    {}
func (LandingView) isView() {}
func (ClosedView) isView()  {}

func (f Flow) View() View {
	switch c := f.Completion(); c.Kind {
	case Landing:
		return LandingView{Username: c.Username}
	case ReturnToInvoker:
		return ClosedView{Succeeded: true, Username: c.Username}
	case Aborted:
		return ClosedView{}
	}

	return FormView{
		Mode:            f.mode,
		Hint:            f.hint,
		PrefillUsername: f.prefill.Username,
		PrefillPassword: f.prefill.Password,
		Reason:          f.reason,
		Notice:          f.notice,
	}
}

// DefaultUsername is the username a blank entry should fall back to.
func (v FormView) DefaultUsername() string {
	if v.PrefillUsername != "" {
		return v.PrefillUsername
	}
	return v.Hint
}
