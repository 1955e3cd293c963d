package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxLength is the longest input bcrypt reads; the rest is ignored.
const bcryptMaxLength = 72

// Bcrypt hashes with bcrypt. The zero value uses bcrypt.DefaultCost and
// a minimum length of 8.
type Bcrypt struct {
	Cost      int
	MinLength int
}

func (b *Bcrypt) Hash(plain string) (string, error) {
	minLen := b.MinLength
	if minLen <= 0 {
		minLen = defaultMinLength
	}
	if err := checkLength(plain, minLen, bcryptMaxLength); err != nil {
		return "", err
	}
	cost := b.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("password: bcrypt: %w", err)
	}
	return string(out), nil
}

func (b *Bcrypt) Verify(plain, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return nil
	case err == bcrypt.ErrMismatchedHashAndPassword:
		return ErrMismatch
	default:
		return fmt.Errorf("password: bcrypt: %w", err)
	}
}
