// Package identity implements the identity store of the holder: registered
// users, their credentials and profile fields, looked up by username.
package identity

import "time"

type Identity struct {
	ID                  int64
	Username            string
	Credential          string
	Nickname            string
	AvatarRef           string
	LastAuthenticatedAt time.Time
}

// DisplayName returns the nickname, or the username when no nickname is set.
func (i Identity) DisplayName() string {
	if i.Nickname == "" {
		return i.Username
	}
	return i.Nickname
}
