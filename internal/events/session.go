package events

import (
	"crypto/rand"
	"encoding/base64"
)

// NewSessionID generates a URL-safe session token with 128 bits of
// entropy. Tokens are issued when a request carries no Session-Id header
// and are echoed back so the client can reuse them for the rest of the
// visit.
func NewSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
