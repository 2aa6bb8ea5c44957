// Package cryptox implements the one-way password hashing used by the
// credential store: PBKDF2 with HMAC-SHA256 over the UTF-8 password and a
// random salt, verified with a constant-time comparison.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/esgtools/esgkeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the number of random bytes generated for a fresh salt.
	SaltSize = 32

	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000

	// DigestSize is the derived key length in bytes.
	DigestSize = 32
)

// HashPassword derives a digest from password and salt. A nil or empty salt
// causes a fresh random salt to be generated; the salt actually used is
// returned alongside the digest so the two are always stored together.
func HashPassword(password string, salt []byte) (digest, usedSalt []byte) {
	if len(salt) == 0 {
		salt = common.GenerateRandByteArray(SaltSize)
	}
	digest = pbkdf2.Key([]byte(password), salt, Iterations, DigestSize, sha256.New)
	return digest, salt
}

// VerifyPassword recomputes the digest for password with the stored salt and
// compares it to the stored digest in constant time.
func VerifyPassword(password string, digest, salt []byte) bool {
	candidate, _ := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}
