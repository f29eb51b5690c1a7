package login

type CompletionKind int

const (
	Pending CompletionKind = iota
	// ReturnToInvoker signals a nested login finished successfully.
	ReturnToInvoker
	// Landing continues a standalone login to the profile view.
	Landing
	// Aborted signals the flow ended without a login.
	Aborted
)

type Completion struct {
	Kind     CompletionKind
	Username string
}

// Succeeded reports whether the completion carries a signed-in user.
func (c Completion) Succeeded() bool {
	return c.Kind == ReturnToInvoker || c.Kind == Landing
}

func (f Flow) Completion() Completion {
	switch f.phase {
	case Accepted:
		if f.mode == Nested {
			return Completion{Kind: ReturnToInvoker, Username: f.username}
		}
		return Completion{Kind: Landing, Username: f.username}
	case Cancelled:
		return Completion{Kind: Aborted}
	default:
		return Completion{Kind: Pending}
	}
}
