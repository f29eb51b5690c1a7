package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the tests fast
var testArgon2 = NewArgon2Credentials(Argon2Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 16})

func TestNewCredentials(t *testing.T) {
	c, err := NewCredentials("")
	require.NoError(t, err)
	assert.IsType(t, PlainCredentials{}, c)

	c, err = NewCredentials("ARGON2ID")
	require.NoError(t, err)
	assert.IsType(t, Argon2Credentials{}, c)

	_, err = NewCredentials("md5")
	require.Error(t, err)
}

func TestPlainCredentials(t *testing.T) {
	c := PlainCredentials{}
	sealed, err := c.Seal("123456")
	require.NoError(t, err)
	assert.Equal(t, "123456", sealed)
	assert.True(t, c.Match(sealed, "123456"))
	assert.False(t, c.Match(sealed, "1234567"))
	assert.False(t, c.Match(sealed, ""))
}

func TestArgon2Credentials_RoundTrip(t *testing.T) {
	sealed, err := testArgon2.Seal("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, testArgon2.Match(sealed, "s3cret"))
	assert.False(t, testArgon2.Match(sealed, "s3cre"))

	again, err := testArgon2.Seal("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "salt must differ per seal")
}

func TestArgon2Credentials_PlainFallback(t *testing.T) {
	assert.True(t, testArgon2.Match("123456", "123456"))
	assert.False(t, testArgon2.Match("123456", "654321"))
}

func TestArgon2Credentials_Malformed(t *testing.T) {
	for _, stored := range []string{
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		assert.False(t, testArgon2.Match(stored, "anything"), stored)
	}
}
