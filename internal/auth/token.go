package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateSessionToken digests the current time and a random UUID into an
// opaque 64-char hex token. Uniqueness is probabilistic.
func GenerateSessionToken() string {
	seed := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString())
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// NewID returns a random record id.
func NewID() string {
	return uuid.NewString()
}
