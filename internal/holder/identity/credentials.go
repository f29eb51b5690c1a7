package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Credentials turns a supplied secret into its stored form and compares a
// supplied secret against a stored one.
type Credentials interface {
	Seal(secret string) (string, error)
	Match(stored, secret string) bool
}

const (
	ModePlain    = "plain"
	ModeArgon2id = "argon2id"
)

// NewCredentials returns the credential scheme configured by mode.
func NewCredentials(mode string) (Credentials, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModePlain:
		return PlainCredentials{}, nil
	case ModeArgon2id:
		return NewArgon2Credentials(DefaultArgon2Params), nil
	default:
		return nil, fmt.Errorf("unknown credentials mode %q", mode)
	}
}

// PlainCredentials stores the secret as is and compares for exact equality.
type PlainCredentials struct{}

func (PlainCredentials) Seal(secret string) (string, error) { return secret, nil }

func (PlainCredentials) Match(stored, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(secret)) == 1
}

type Argon2Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var DefaultArgon2Params = Argon2Params{Memory: 64 * 1024, Time: 1, Parallelism: 4, KeyLen: 32}

const argon2Prefix = "$argon2id$"

// Argon2Credentials stores PHC strings:
//
//	$argon2id$v=19$m=<mem>,t=<time>,p=<par>$<salt b64>$<key b64>
//
// Stored values without the argon2id prefix are compared as plain text, so a
// database seeded in plain mode keeps working after switching modes.
type Argon2Credentials struct {
	params Argon2Params
}

func NewArgon2Credentials(p Argon2Params) Argon2Credentials {
	return Argon2Credentials{params: p}
}

func (a Argon2Credentials) Seal(secret string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	p := a.params
	key := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2Prefix, argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (a Argon2Credentials) Match(stored, secret string) bool {
	if !strings.HasPrefix(stored, argon2Prefix) {
		return PlainCredentials{}.Match(stored, secret)
	}

	p, salt, want, ok := parsePHC(stored)
	if !ok {
		return false
	}
	got := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}

// parsePHC splits on '$' rather than using Sscanf, since %s would swallow
// the remaining segments.
func parsePHC(s string) (Argon2Params, []byte, []byte, bool) {
	var p Argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, false
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, false
	}

	for _, kv := range strings.Split(parts[3], ",") {
		k, v, found := strings.Cut(kv, "=")
		if !found {
			return p, nil, nil, false
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return p, nil, nil, false
		}
		switch k {
		case "m":
			p.Memory = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, false
			}
			p.Parallelism = uint8(n)
		default:
			return p, nil, nil, false
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, false
	}
	return p, salt, key, true
}
