// Package cryptox implements password hashing for user accounts.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 16
	keySize  = 32
)

// NewSalt returns a random salt suitable for HashPassword.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id key from password and salt.
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// VerifyPassword recomputes the hash for candidate and compares it with
// stored in constant time.
func VerifyPassword(stored, salt, candidate []byte) bool {
	return subtle.ConstantTimeCompare(stored, HashPassword(candidate, salt)) == 1
}
