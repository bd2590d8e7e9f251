// Package domain defines the core domain models for NoteChain.
package domain

import "strings"

// Owner identifies the entity that created a note. The value is opaque:
// two owners are the same caller exactly when the strings are equal.
type Owner string

// AnonymousOwner is the identity assigned to callers that present none.
// The text form matches the anonymous principal of the hosting platform
// the first releases ran on, so notes created then keep their owner.
const AnonymousOwner Owner = "2vxsx-fae"

// MaxOwnerLength bounds the caller identifier accepted from transports.
const MaxOwnerLength = 128

// ParseOwner normalizes a caller identifier received from a transport.
// An empty identifier yields AnonymousOwner and ok=false.
func ParseOwner(raw string) (owner Owner, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return AnonymousOwner, false
	}
	return Owner(raw), true
}

// IsAnonymous reports whether o is the anonymous identity.
func (o Owner) IsAnonymous() bool {
	return o == AnonymousOwner
}

// String implements fmt.Stringer.
func (o Owner) String() string {
	return string(o)
}
