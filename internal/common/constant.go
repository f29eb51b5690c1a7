package common

// ActionAuthLogin names the authorization action offered by the identity holder.
const ActionAuthLogin = "quickauth.ACTION_AUTH_LOGIN"

// Keys of the authorization result payload.
const (
	ResultCodeKey   = "result_code"
	AuthUsernameKey = "AUTH_USERNAME"
	AuthNicknameKey = "AUTH_NICKNAME"
)

// Result codes carried in ResultCodeKey.
const (
	ResultOK       = "OK"
	ResultCanceled = "CANCELED"
)

// DefaultSignature is seeded into the session store the first time the holder starts.
const DefaultSignature = "This is your signature, welcome to quickauth"
