// Package assertion holds the minimal identity statement the holder
// discloses to a requester, and the outcome of an authorization request.
package assertion

type Assertion struct {
	Username string
	Nickname string
}

// Result is Approved with an Assertion, or Denied.
type Result struct {
	Approved bool
	Assertion
}

func Approve(username, nickname string) Result {
	return Result{Approved: true, Assertion: Assertion{Username: username, Nickname: nickname}}
}

func Deny() Result {
	return Result{}
}

func (r Result) String() string {
	if r.Approved {
		return "approved(" + r.Username + ")"
	}
	return "denied"
}
