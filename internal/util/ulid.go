package util

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewULID returns a fresh ULID string for tagging feedback receipts.
// Entropy comes from crypto/rand, so concurrent callers never collide.
func NewULID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
