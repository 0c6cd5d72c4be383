// Package auth decides whether an API key may call the protect endpoint.
package auth

import "crypto/subtle"

// Authenticator validates an API key.
type Authenticator interface {
	Validate(key string) bool
}

var (
	_ Authenticator = PresenceOnly{}
	_ Authenticator = (*StaticKeys)(nil)
)

// PresenceOnly accepts any non-empty key. It verifies nothing and exists
// to keep the public endpoint compatible with clients that send arbitrary
// keys; use StaticKeys wherever keys are actually issued.
type PresenceOnly struct{}

func (PresenceOnly) Validate(key string) bool {
	return key != ""
}

// StaticKeys accepts keys from a fixed list.
type StaticKeys struct {
	keys [][]byte
}

func NewStaticKeys(keys ...string) *StaticKeys {
	s := &StaticKeys{}
	for _, k := range keys {
		if k != "" {
			s.keys = append(s.keys, []byte(k))
		}
	}
	return s
}

func (s *StaticKeys) Validate(key string) bool {
	if key == "" {
		return false
	}
	ok := 0
	for _, k := range s.keys {
		ok |= subtle.ConstantTimeCompare(k, []byte(key))
	}
	return ok == 1
}
