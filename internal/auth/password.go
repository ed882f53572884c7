package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 100
)

// Hasher turns a plaintext password into a stored digest.
type Hasher interface {
	Hash(password string) (string, error)
}

// LegacyHasher produces the unsalted hex SHA-256 digest already stored for
// existing accounts. The same password always yields the same digest.
type LegacyHasher struct{}

func (LegacyHasher) Hash(password string) (string, error) {
	return HashPassword(password), nil
}

// BcryptHasher produces salted, iterated digests. The password is reduced to
// its hex SHA-256 first since bcrypt only reads 72 bytes of input.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(HashPassword(password)), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// NewHasher maps a configuration name to a Hasher.
func NewHasher(name string, bcryptCost int) (Hasher, error) {
	switch name {
	case "", "legacy":
		return LegacyHasher{}, nil
	case "bcrypt":
		return BcryptHasher{Cost: bcryptCost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

// HashPassword returns the hex SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes and compares. Both legacy SHA-256 digests and
// bcrypt digests are accepted so accounts created under either hasher can
// log in.
func VerifyPassword(password, digest string) bool {
	if isBcrypt(digest) {
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(HashPassword(password))) == nil
	}
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(digest))) == 1
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

type Validation struct {
	Valid  bool
	Reason string
}

func ValidatePasswordStrength(password string) Validation {
	if len(password) < MinPasswordLength {
		return Validation{Reason: "Password must be at least 6 characters long"}
	}
	if len(password) > MaxPasswordLength {
		return Validation{Reason: "Password is too long"}
	}
	return Validation{Valid: true}
}
