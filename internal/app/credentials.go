package app

import (
	"crypto/subtle"
	"errors"

	"board/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// Credentials hashes and verifies passwords. Verify never panics and returns
// false for empty or malformed digests.
type Credentials interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) bool
}

// BcryptCredentials implements Credentials with bcrypt. The salt is generated
// per call and embedded in the digest.
type BcryptCredentials struct {
	Cost int
}

// NewBcryptCredentials returns bcrypt credentials at bcrypt.DefaultCost.
func NewBcryptCredentials() *BcryptCredentials {
	return &BcryptCredentials{Cost: bcrypt.DefaultCost}
}

// Hash returns a bcrypt digest of plaintext.
func (c *BcryptCredentials) Hash(plaintext string) (string, error) {
	cost := c.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domain.Wrap(domain.KindValidation, "비밀번호가 너무 깁니다.", err)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext produced digest. bcrypt compares in
// constant time.
func (c *BcryptCredentials) Verify(digest, plaintext string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
