package auth

import "crypto/subtle"

// APIKeys authenticates the main application's publish calls.
type APIKeys []string

func (k APIKeys) Verify(candidate string) bool {
	matched := false

	for _, key := range k {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(key)) == 1 {
			matched = true
		}
	}

	return matched
}
