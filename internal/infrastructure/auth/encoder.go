// Package auth provides credential encoding and principal token transport.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"principal/internal/domain/identity"
)

// BcryptEncoder hashes passwords with bcrypt.
type BcryptEncoder struct {
	cost int
}

func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

func (e *BcryptEncoder) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), e.cost)
	if err != nil {
		return "", fmt.Errorf("failed to generate password hash: %w", err)
	}
	return string(hash), nil
}

func (e *BcryptEncoder) Matches(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// Return a generic error message regardless of the actual cause
		// so a mismatched password and a malformed hash are indistinguishable
		return fmt.Errorf("password verification failed")
	}
	return nil
}

// Func adapts the encoder to the builder's PasswordEncoder slot. bcrypt only
// fails on inputs over 72 bytes, which is a programmer error here, so the
// adapter panics instead of returning an error.
func (e *BcryptEncoder) Func() identity.PasswordEncoder {
	return func(raw string) string {
		hash, err := e.Hash(raw)
		if err != nil {
			panic(fmt.Sprintf("bcrypt password encoding failed: %v", err))
		}
		return hash
	}
}
