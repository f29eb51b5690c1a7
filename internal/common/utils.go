package common

import "strings"

// WipeByteArray overwrites the contents of b with zeros. Used for passwords
// read from the terminal once they have been converted to a credential.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Blank reports whether s is empty after trimming surrounding whitespace.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
